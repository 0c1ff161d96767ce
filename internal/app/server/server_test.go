package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pitchside/matchday/internal/app/api"
	"github.com/pitchside/matchday/internal/auth"
	"github.com/pitchside/matchday/internal/domains/entities"
	"github.com/pitchside/matchday/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

// fakeStore backs both the room loader and the report service in tests.
type fakeStore struct {
	mu        sync.Mutex
	record    entities.MatchRecord
	teams     []string
	submitted *storage.ReportSubmission
}

func (f *fakeStore) GetMatchRecord(ctx context.Context, matchId string) (entities.MatchRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if matchId != f.record.MatchId {
		return entities.MatchRecord{}, storage.ErrMatchNotFound
	}
	return f.record, nil
}

func (f *fakeStore) FetchMatchEvents(ctx context.Context, matchId string) ([]entities.MatchEvent, error) {
	return nil, nil
}

func (f *fakeStore) GetCoachTeams(ctx context.Context, userId string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.teams, nil
}

func (f *fakeStore) GetStanding(ctx context.Context, teamId string) (entities.Standing, error) {
	return entities.Standing{TeamId: teamId}, nil
}

func (f *fakeStore) SubmitReport(ctx context.Context, sub storage.ReportSubmission) ([]entities.MatchEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = &sub
	f.record.HomeScore = sub.HomeScore
	f.record.AwayScore = sub.AwayScore
	f.record.Reported = true
	f.record.Version++
	return nil, nil
}

func testServerConfig() Config {
	return Config{
		AuthSecret:  testSecret,
		AuthTimeout: 2 * time.Second,
		IdleTimeout: 5 * time.Second,
		PongTimeout: time.Second,
	}
}

func newTestServer(t *testing.T, store *fakeStore) *httptest.Server {
	t.Helper()
	return newTestServerWithConfig(t, store, testServerConfig())
}

func newTestServerWithConfig(t *testing.T, store *fakeStore, cfg Config) *httptest.Server {
	t.Helper()
	s := &server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		config:        cfg,
		authSecret:    []byte(cfg.AuthSecret),
		matchLoader:   store,
		reportService: api.NewService(store),
	}
	router := mux.NewRouter()
	router.HandleFunc("/live/{matchId}", s.handleLive)
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func issueTestToken(t *testing.T, userId, name string) string {
	t.Helper()
	token, err := auth.IssueToken([]byte(testSecret), userId, name, time.Hour)
	require.NoError(t, err)
	return token
}

func dialLive(t *testing.T, ts *httptest.Server, matchId, token string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/live/" + matchId + "?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) map[string]interface{} {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg map[string]interface{}
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func readUntil(t *testing.T, conn *websocket.Conn, msgType string) map[string]interface{} {
	t.Helper()
	for i := 0; i < 20; i++ {
		msg := readFrame(t, conn)
		if msg["type"] == msgType {
			return msg
		}
	}
	t.Fatalf("never received %q", msgType)
	return nil
}

func sendFrame(t *testing.T, conn *websocket.Conn, msgType string, data interface{}) {
	t.Helper()
	require.NoError(t, conn.WriteJSON(map[string]interface{}{
		"type": msgType,
		"data": data,
	}))
}

func joinMatch(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	readUntil(t, conn, "authentication_success")
	sendFrame(t, conn, "join_match", joinData{})
	readUntil(t, conn, "player_shifts")
}

func testRecord() entities.MatchRecord {
	return entities.MatchRecord{
		MatchId:    "m1",
		HomeTeamId: "t-home",
		AwayTeamId: "t-away",
		Version:    3,
	}
}

func TestLiveRejectsInvalidToken(t *testing.T) {
	ts := newTestServer(t, &fakeStore{record: testRecord()})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/live/m1?token=garbage"
	_, resp, err := websocket.DefaultDialer.Dial(url, nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAuthenticationPrecedesRoomTraffic(t *testing.T) {
	ts := newTestServer(t, &fakeStore{record: testRecord()})
	conn := dialLive(t, ts, "m1", issueTestToken(t, "u1", "Alice"))

	msg := readFrame(t, conn)
	assert.Equal(t, "authentication_success", msg["type"])
	assert.Equal(t, "u1", msg["userId"])
}

func TestMutationBeforeJoinRejected(t *testing.T) {
	ts := newTestServer(t, &fakeStore{record: testRecord()})
	conn := dialLive(t, ts, "m1", issueTestToken(t, "u1", "Alice"))
	readUntil(t, conn, "authentication_success")

	sendFrame(t, conn, "update_score", scoreData{HomeScore: 1})

	msg := readUntil(t, conn, "error")
	assert.Equal(t, ErrStatusNotJoined, msg["error"])
}

func TestJoinReplaysSeededState(t *testing.T) {
	record := testRecord()
	record.HomeScore = 1
	record.AwayScore = 1
	ts := newTestServer(t, &fakeStore{record: record})
	conn := dialLive(t, ts, "m1", issueTestToken(t, "u1", "Alice"))
	readUntil(t, conn, "authentication_success")

	sendFrame(t, conn, "join_match", joinData{})

	// Replay order: state, then presence, then shifts.
	state := readFrame(t, conn)
	require.Equal(t, "match_state", state["type"])
	assert.Equal(t, float64(1), state["homeScore"])
	assert.Equal(t, float64(1), state["awayScore"])
	reporters := readFrame(t, conn)
	require.Equal(t, "active_reporters", reporters["type"])
	shifts := readFrame(t, conn)
	require.Equal(t, "player_shifts", shifts["type"])
}

func TestBroadcastIncludesSender(t *testing.T) {
	ts := newTestServer(t, &fakeStore{record: testRecord()})
	conn := dialLive(t, ts, "m1", issueTestToken(t, "u1", "Alice"))
	joinMatch(t, conn)

	sendFrame(t, conn, "update_score", scoreData{HomeScore: 2, AwayScore: 0})

	msg := readUntil(t, conn, "score_updated")
	assert.Equal(t, float64(2), msg["homeScore"])
	assert.Equal(t, float64(0), msg["awayScore"])
	assert.Equal(t, "u1", msg["updatedBy"])
}

func TestLateJoinerReceivesAccumulatedState(t *testing.T) {
	ts := newTestServer(t, &fakeStore{record: testRecord()})
	first := dialLive(t, ts, "m1", issueTestToken(t, "u1", "Alice"))
	joinMatch(t, first)

	sendFrame(t, first, "update_score", scoreData{HomeScore: 2, AwayScore: 1})
	readUntil(t, first, "score_updated")
	sendFrame(t, first, "add_event", eventData{Category: "goal", SubjectId: "p7", Minute: "43"})
	readUntil(t, first, "event_added")
	sendFrame(t, first, "update_player_shift", shiftData{PlayerId: "p3", IsActive: true})
	readUntil(t, first, "player_shift_updated")

	second := dialLive(t, ts, "m1", issueTestToken(t, "u2", "Bob"))
	readUntil(t, second, "authentication_success")
	sendFrame(t, second, "join_match", joinData{})

	state := readUntil(t, second, "match_state")
	assert.Equal(t, float64(2), state["homeScore"])
	assert.Equal(t, float64(1), state["awayScore"])
	events := state["events"].([]interface{})
	require.Len(t, events, 1)
	event := events[0].(map[string]interface{})
	assert.Equal(t, "goal", event["category"])
	assert.Equal(t, "p7", event["subjectId"])
	assert.NotEmpty(t, event["id"], "confirmed events carry server identities")

	reporters := readUntil(t, second, "active_reporters")
	assert.Len(t, reporters["reporters"].([]interface{}), 2)

	shifts := readUntil(t, second, "player_shifts")
	require.Len(t, shifts["shifts"].([]interface{}), 1)
	shift := shifts["shifts"].([]interface{})[0].(map[string]interface{})
	assert.Equal(t, "p3", shift["playerId"])
	assert.Equal(t, true, shift["isActive"])
}

func TestPresenceJoinAndLeave(t *testing.T) {
	ts := newTestServer(t, &fakeStore{record: testRecord()})
	first := dialLive(t, ts, "m1", issueTestToken(t, "u1", "Alice"))
	joinMatch(t, first)

	second := dialLive(t, ts, "m1", issueTestToken(t, "u2", "Bob"))
	joinMatch(t, second)

	joined := readUntil(t, first, "reporter_joined")
	reporter := joined["reporter"].(map[string]interface{})
	assert.Equal(t, "u2", reporter["userId"])
	assert.Equal(t, "Bob", reporter["name"])

	sendFrame(t, second, "leave_match", nil)

	left := readUntil(t, first, "reporter_left")
	assert.Equal(t, "u2", left["userId"])
}

func TestAbruptDisconnectTreatedAsLeave(t *testing.T) {
	ts := newTestServer(t, &fakeStore{record: testRecord()})
	first := dialLive(t, ts, "m1", issueTestToken(t, "u1", "Alice"))
	joinMatch(t, first)

	second := dialLive(t, ts, "m1", issueTestToken(t, "u2", "Bob"))
	joinMatch(t, second)
	readUntil(t, first, "reporter_joined")

	second.Close()

	left := readUntil(t, first, "reporter_left")
	assert.Equal(t, "u2", left["userId"])
}

func TestInvalidLiveEventRejectedToSenderOnly(t *testing.T) {
	ts := newTestServer(t, &fakeStore{record: testRecord()})
	conn := dialLive(t, ts, "m1", issueTestToken(t, "u1", "Alice"))
	joinMatch(t, conn)

	// Goals need a player subject.
	sendFrame(t, conn, "add_event", eventData{Category: "goal", Minute: "10"})

	msg := readUntil(t, conn, "error")
	assert.Equal(t, ErrStatusInvalidEvent, msg["error"])
}

func TestLiveSubmitAnchorsToStoredVersion(t *testing.T) {
	store := &fakeStore{record: testRecord(), teams: []string{"t-home"}}
	ts := newTestServer(t, store)
	conn := dialLive(t, ts, "m1", issueTestToken(t, "u1", "Alice"))
	joinMatch(t, conn)

	sendFrame(t, conn, "submit_report", map[string]interface{}{
		"homeScore": 2,
		"awayScore": 1,
	})

	msg := readUntil(t, conn, "report_submitted")
	assert.Equal(t, "u1", msg["submittedBy"])
	result := msg["result"].(map[string]interface{})
	assert.Equal(t, true, result["success"])

	store.mu.Lock()
	defer store.mu.Unlock()
	require.NotNil(t, store.submitted)
	assert.Equal(t, int64(3), store.submitted.ExpectedVersion)
	assert.Equal(t, 2, store.submitted.HomeScore)
}

func TestIdleRoomTornDownAndReseededOnRejoin(t *testing.T) {
	cfg := testServerConfig()
	cfg.IdleTimeout = 100 * time.Millisecond
	store := &fakeStore{record: testRecord()}
	ts := newTestServerWithConfig(t, store, cfg)

	first := dialLive(t, ts, "m1", issueTestToken(t, "u1", "Alice"))
	joinMatch(t, first)
	sendFrame(t, first, "update_score", scoreData{HomeScore: 5, AwayScore: 5})
	readUntil(t, first, "score_updated")
	sendFrame(t, first, "leave_match", nil)

	// The empty room winds down once the idle window passes.
	time.Sleep(4 * cfg.IdleTimeout)

	second := dialLive(t, ts, "m1", issueTestToken(t, "u2", "Bob"))
	readUntil(t, second, "authentication_success")
	sendFrame(t, second, "join_match", joinData{})

	// Unsubmitted live state died with the room; the fresh one seeds
	// from the stored record.
	state := readUntil(t, second, "match_state")
	assert.Equal(t, float64(0), state["homeScore"])
	assert.Equal(t, float64(0), state["awayScore"])
}

func TestPingAnsweredWithPong(t *testing.T) {
	ts := newTestServer(t, &fakeStore{record: testRecord()})
	conn := dialLive(t, ts, "m1", issueTestToken(t, "u1", "Alice"))
	readUntil(t, conn, "authentication_success")

	sendFrame(t, conn, "ping", nil)

	msg := readUntil(t, conn, "pong")
	assert.NotEmpty(t, msg["time"])
}

func TestRoomsAreIndependent(t *testing.T) {
	store := &fakeStore{record: testRecord()}
	ts := newTestServer(t, store)

	first := dialLive(t, ts, "m1", issueTestToken(t, "u1", "Alice"))
	joinMatch(t, first)

	// A second match gets its own room.
	store.mu.Lock()
	store.record.MatchId = "m2"
	store.mu.Unlock()
	second := dialLive(t, ts, "m2", issueTestToken(t, "u2", "Bob"))
	joinMatch(t, second)

	sendFrame(t, second, "update_score", scoreData{HomeScore: 3})
	readUntil(t, second, "score_updated")

	// The first room never sees the other room's update.
	sendFrame(t, first, "ping", nil)
	for i := 0; i < 20; i++ {
		msg := readFrame(t, first)
		require.NotEqual(t, "score_updated", msg["type"])
		if msg["type"] == "pong" {
			break
		}
	}
}
