package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pitchside/matchday/internal/domains/dtos"
)

// LiveConfig bounds the live client: how hard it retries the initial
// handshake and how long each call waits for its confirmation frame.
type LiveConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
	AckTimeout time.Duration
}

func DefaultLiveConfig() LiveConfig {
	return LiveConfig{
		MaxRetries: 4,
		BaseDelay:  500 * time.Millisecond,
		MaxDelay:   8 * time.Second,
		AckTimeout: 5 * time.Second,
	}
}

// Frame is one server message: its type plus the raw bytes for the
// caller to decode.
type Frame struct {
	Type string
	Raw  json.RawMessage
}

type MatchState struct {
	MatchId        string      `json:"matchId"`
	HomeTeamId     string      `json:"homeTeamId"`
	AwayTeamId     string      `json:"awayTeamId"`
	HomeScore      int         `json:"homeScore"`
	AwayScore      int         `json:"awayScore"`
	ElapsedSeconds int         `json:"elapsedSeconds"`
	IsRunning      bool        `json:"isRunning"`
	Period         string      `json:"period"`
	Events         []LiveEvent `json:"events"`
}

type LiveEvent struct {
	Id        string `json:"id"`
	Category  string `json:"category"`
	SubjectId string `json:"subjectId"`
	Minute    string `json:"minute"`
	AddedBy   string `json:"addedBy"`
}

type Reporter struct {
	UserId   string `json:"userId"`
	Name     string `json:"name"`
	TeamId   string `json:"teamId"`
	JoinedAt string `json:"joinedAt"`
}

type PlayerShift struct {
	PlayerId  string `json:"playerId"`
	TeamId    string `json:"teamId"`
	IsActive  bool   `json:"isActive"`
	UpdatedBy string `json:"updatedBy"`
}

// RoomSnapshot is the replay a joiner receives: state, presence,
// shifts, in that order.
type RoomSnapshot struct {
	State     MatchState
	Reporters []Reporter
	Shifts    []PlayerShift
}

type clientMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

type waiter struct {
	accepts []string
	ch      chan Frame
}

// LiveClient is one authenticated connection to a live room. Calls
// block until the server echoes the confirmed update or the ack window
// closes; unsolicited broadcasts are drained through Updates.
type LiveClient struct {
	conn *websocket.Conn
	cfg  LiveConfig

	writeMu sync.Mutex

	mu      sync.Mutex
	waiters []*waiter
	err     error

	updates chan Frame
	closed  chan struct{}
	once    sync.Once
}

/*
Dial connects and authenticates against /live/{matchId}. Handshake
failures are retried with doubling delays up to MaxDelay, at most
MaxRetries extra attempts, then surface as ErrAuthenticationFailed
wrapping the last cause.
*/
func Dial(ctx context.Context, baseUrl, matchId, token string, cfg LiveConfig) (*LiveClient, error) {
	var lastErr error
	delay := cfg.BaseDelay
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > cfg.MaxDelay {
				delay = cfg.MaxDelay
			}
		}
		client, err := dialOnce(ctx, baseUrl, matchId, token, cfg)
		if err == nil {
			return client, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("%w after %d attempts: %v",
		ErrAuthenticationFailed, cfg.MaxRetries+1, lastErr)
}

func dialOnce(ctx context.Context, baseUrl, matchId, token string, cfg LiveConfig) (*LiveClient, error) {
	u, err := url.Parse(baseUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	u = u.JoinPath("live", matchId)
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	query := u.Query()
	query.Set("token", token)
	u.RawQuery = query.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to dial: %w", err)
	}

	// The session only counts once the server says so.
	conn.SetReadDeadline(time.Now().Add(cfg.AckTimeout))
	var head struct {
		Type string `json:"type"`
	}
	if err := conn.ReadJSON(&head); err != nil || head.Type != "authentication_success" {
		conn.Close()
		if err != nil {
			return nil, fmt.Errorf("no authentication confirmation: %w", err)
		}
		return nil, fmt.Errorf("unexpected handshake frame %q", head.Type)
	}
	conn.SetReadDeadline(time.Time{})

	client := &LiveClient{
		conn:    conn,
		cfg:     cfg,
		updates: make(chan Frame, 64),
		closed:  make(chan struct{}),
	}
	go client.readPump()
	return client, nil
}

// Updates streams broadcasts no call is waiting on, for tailing a room.
func (client *LiveClient) Updates() <-chan Frame {
	return client.updates
}

// Done is closed once the connection is lost; Err says why.
func (client *LiveClient) Done() <-chan struct{} {
	return client.closed
}

func (client *LiveClient) Err() error {
	client.mu.Lock()
	defer client.mu.Unlock()
	return client.err
}

func (client *LiveClient) Close() error {
	client.fail(fmt.Errorf("closed"))
	return client.conn.Close()
}

func (client *LiveClient) readPump() {
	for {
		_, message, err := client.conn.ReadMessage()
		if err != nil {
			client.fail(err)
			return
		}
		var head struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &head); err != nil {
			continue
		}
		client.dispatch(Frame{Type: head.Type, Raw: message})
	}
}

// dispatch hands a frame to the oldest call waiting for its type;
// error frames settle the oldest waiter regardless. Everything else
// flows to Updates, dropped if nobody drains it.
func (client *LiveClient) dispatch(frame Frame) {
	client.mu.Lock()
	for i, w := range client.waiters {
		if !w.acceptsType(frame.Type) {
			continue
		}
		client.waiters = append(client.waiters[:i], client.waiters[i+1:]...)
		client.mu.Unlock()
		w.ch <- frame
		return
	}
	client.mu.Unlock()

	select {
	case client.updates <- frame:
	default:
	}
}

func (w *waiter) acceptsType(frameType string) bool {
	if frameType == "error" {
		return true
	}
	for _, accepted := range w.accepts {
		if accepted == frameType {
			return true
		}
	}
	return false
}

func (client *LiveClient) fail(err error) {
	client.once.Do(func() {
		client.mu.Lock()
		client.err = err
		waiters := client.waiters
		client.waiters = nil
		client.mu.Unlock()
		close(client.closed)
		for _, w := range waiters {
			close(w.ch)
		}
	})
}

func (client *LiveClient) addWaiter(accepts ...string) *waiter {
	w := &waiter{accepts: accepts, ch: make(chan Frame, 1)}
	client.mu.Lock()
	client.waiters = append(client.waiters, w)
	client.mu.Unlock()
	return w
}

func (client *LiveClient) removeWaiter(w *waiter) {
	client.mu.Lock()
	defer client.mu.Unlock()
	for i, candidate := range client.waiters {
		if candidate == w {
			client.waiters = append(client.waiters[:i], client.waiters[i+1:]...)
			return
		}
	}
}

func (client *LiveClient) send(msgType string, data interface{}) error {
	client.writeMu.Lock()
	defer client.writeMu.Unlock()
	return client.conn.WriteJSON(clientMessage{Type: msgType, Data: data})
}

func (client *LiveClient) call(ctx context.Context, msgType string, data interface{}, ackType string) (Frame, error) {
	w := client.addWaiter(ackType)
	if err := client.send(msgType, data); err != nil {
		client.removeWaiter(w)
		return Frame{}, fmt.Errorf("failed to send %s: %w", msgType, err)
	}
	return client.await(ctx, w)
}

func (client *LiveClient) await(ctx context.Context, w *waiter) (Frame, error) {
	select {
	case frame, ok := <-w.ch:
		if !ok {
			return Frame{}, fmt.Errorf("connection lost: %w", client.err)
		}
		if frame.Type == "error" {
			var rejection struct {
				Error string `json:"error"`
			}
			_ = json.Unmarshal(frame.Raw, &rejection)
			return Frame{}, &ServerRejectionError{Code: rejection.Error}
		}
		return frame, nil
	case <-time.After(client.cfg.AckTimeout):
		client.removeWaiter(w)
		return Frame{}, ErrCallTimeout
	case <-ctx.Done():
		client.removeWaiter(w)
		return Frame{}, ctx.Err()
	}
}

// JoinMatch enters the room and collects the replayed snapshot.
func (client *LiveClient) JoinMatch(ctx context.Context, teamId string) (RoomSnapshot, error) {
	stateWaiter := client.addWaiter("match_state")
	reportersWaiter := client.addWaiter("active_reporters")
	shiftsWaiter := client.addWaiter("player_shifts")

	err := client.send("join_match", map[string]string{"teamId": teamId})
	if err != nil {
		client.removeWaiter(stateWaiter)
		client.removeWaiter(reportersWaiter)
		client.removeWaiter(shiftsWaiter)
		return RoomSnapshot{}, fmt.Errorf("failed to send join_match: %w", err)
	}

	var snapshot RoomSnapshot
	stateFrame, err := client.await(ctx, stateWaiter)
	if err == nil {
		err = json.Unmarshal(stateFrame.Raw, &snapshot.State)
	}
	if err != nil {
		client.removeWaiter(reportersWaiter)
		client.removeWaiter(shiftsWaiter)
		return RoomSnapshot{}, err
	}

	reportersFrame, err := client.await(ctx, reportersWaiter)
	if err == nil {
		var body struct {
			Reporters []Reporter `json:"reporters"`
		}
		err = json.Unmarshal(reportersFrame.Raw, &body)
		snapshot.Reporters = body.Reporters
	}
	if err != nil {
		client.removeWaiter(shiftsWaiter)
		return RoomSnapshot{}, err
	}

	shiftsFrame, err := client.await(ctx, shiftsWaiter)
	if err != nil {
		return RoomSnapshot{}, err
	}
	var body struct {
		Shifts []PlayerShift `json:"shifts"`
	}
	if err := json.Unmarshal(shiftsFrame.Raw, &body); err != nil {
		return RoomSnapshot{}, err
	}
	snapshot.Shifts = body.Shifts
	return snapshot, nil
}

func (client *LiveClient) LeaveMatch() error {
	return client.send("leave_match", nil)
}

func (client *LiveClient) UpdateScore(ctx context.Context, homeScore, awayScore int) error {
	_, err := client.call(ctx, "update_score", map[string]int{
		"homeScore": homeScore,
		"awayScore": awayScore,
	}, "score_updated")
	return err
}

func (client *LiveClient) UpdateTimer(ctx context.Context, elapsedSeconds int, isRunning bool, period string) error {
	_, err := client.call(ctx, "update_timer", map[string]interface{}{
		"elapsedSeconds": elapsedSeconds,
		"isRunning":      isRunning,
		"period":         period,
	}, "timer_updated")
	return err
}

func (client *LiveClient) AddEvent(ctx context.Context, category, subjectId, minute string) (LiveEvent, error) {
	frame, err := client.call(ctx, "add_event", map[string]string{
		"category":  category,
		"subjectId": subjectId,
		"minute":    minute,
	}, "event_added")
	if err != nil {
		return LiveEvent{}, err
	}
	var body struct {
		Event LiveEvent `json:"event"`
	}
	if err := json.Unmarshal(frame.Raw, &body); err != nil {
		return LiveEvent{}, err
	}
	return body.Event, nil
}

func (client *LiveClient) UpdatePlayerShift(ctx context.Context, playerId, teamId string, isActive bool) error {
	_, err := client.call(ctx, "update_player_shift", map[string]interface{}{
		"playerId": playerId,
		"teamId":   teamId,
		"isActive": isActive,
	}, "player_shift_updated")
	return err
}

func (client *LiveClient) SubmitReport(ctx context.Context, req dtos.SubmitReportRequest) (dtos.SubmitReportResponse, error) {
	frame, err := client.call(ctx, "submit_report", req, "report_submitted")
	if err != nil {
		return dtos.SubmitReportResponse{}, err
	}
	var body struct {
		Result dtos.SubmitReportResponse `json:"result"`
	}
	if err := json.Unmarshal(frame.Raw, &body); err != nil {
		return dtos.SubmitReportResponse{}, err
	}
	return body.Result, nil
}

func (client *LiveClient) Ping(ctx context.Context) error {
	_, err := client.call(ctx, "ping", nil, "pong")
	return err
}
