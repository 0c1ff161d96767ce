package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/pitchside/matchday/internal/domains/dtos"
	"github.com/pitchside/matchday/internal/report"
	"github.com/pitchside/matchday/pkg/logging"
	"github.com/pitchside/matchday/pkg/utils"
	"go.uber.org/zap"
)

// Room owns the live state of one match. All mutations flow through
// updateCh and are applied by the single goroutine running start(), so
// members always observe the same ordering of confirmed updates.
type Room struct {
	matchId    string
	homeTeamId string
	awayTeamId string

	state     roomState
	reporters map[string]*reporter
	updateCh  chan update
	idleTimer *utils.Timer
	config    RoomConfig

	closedHandler func(*Room)
	submitHandler func(matchId, userId string, req dtos.SubmitReportRequest) (dtos.SubmitReportResponse, error)

	done chan struct{}
}

type RoomConfig struct {
	IdleTimeout time.Duration
}

// roomState is only touched from the room goroutine.
type roomState struct {
	homeScore      int
	awayScore      int
	elapsedSeconds int
	timerRunning   bool
	period         string
	timerUpdatedAt time.Time
	events         []liveEventResponse
	shifts         map[string]playerShiftResponse
}

type updateKind int

const (
	JOIN updateKind = iota
	LEAVE
	SCORE
	TIMER
	EVENT
	SHIFT
	SUBMIT
	CLOSE
)

type update struct {
	kind     updateKind
	reporter *reporter
	score    scoreData
	timer    timerData
	event    eventData
	shift    shiftData
	submit   dtos.SubmitReportRequest
}

func (room *Room) start() {
	for update := range room.updateCh {
		switch update.kind {
		case JOIN:
			room.applyJoin(update.reporter)
		case LEAVE:
			room.applyLeave(update.reporter)
		case SCORE:
			room.applyScore(update.reporter, update.score)
		case TIMER:
			room.applyTimer(update.reporter, update.timer)
		case EVENT:
			room.applyEvent(update.reporter, update.event)
		case SHIFT:
			room.applyShift(update.reporter, update.shift)
		case SUBMIT:
			room.applySubmit(update.reporter, update.submit)
		case CLOSE:
			if room.applyClose() {
				return
			}
		}
	}
}

func (room *Room) applyJoin(joiner *reporter) {
	joiner.JoinedAt = time.Now()
	room.reporters[joiner.Id] = joiner
	room.idleTimer.Stop()

	// Replay order is fixed: state first, then who is here, then shifts.
	joiner.writeJson(room.matchState())
	joiner.writeJson(room.activeReporters())
	joiner.writeJson(room.playerShifts())

	joined := reporterJoinedResponse{
		Type:     "reporter_joined",
		Reporter: joiner.response(),
	}
	for id, member := range room.reporters {
		if id == joiner.Id {
			continue
		}
		member.writeJson(joined)
	}
	logging.Info("reporter joined",
		zap.String("match_id", room.matchId),
		zap.String("user_id", joiner.Id),
	)
}

func (room *Room) applyLeave(leaver *reporter) {
	if _, exist := room.reporters[leaver.Id]; !exist {
		return
	}
	delete(room.reporters, leaver.Id)
	room.notifyReporters(reporterLeftResponse{
		Type:   "reporter_left",
		UserId: leaver.Id,
	})
	logging.Info("reporter left",
		zap.String("match_id", room.matchId),
		zap.String("user_id", leaver.Id),
	)
	if len(room.reporters) == 0 {
		room.idleTimer.Reset(room.config.IdleTimeout)
	}
}

func (room *Room) applyScore(from *reporter, data scoreData) {
	if data.HomeScore < 0 || data.AwayScore < 0 {
		from.writeJson(errorResponse{Type: "error", Error: ErrStatusInvalidPayload})
		return
	}
	room.state.homeScore = data.HomeScore
	room.state.awayScore = data.AwayScore
	room.notifyReporters(scoreUpdatedResponse{
		Type:      "score_updated",
		MatchId:   room.matchId,
		HomeScore: room.state.homeScore,
		AwayScore: room.state.awayScore,
		UpdatedBy: from.Id,
	})
}

func (room *Room) applyTimer(from *reporter, data timerData) {
	if data.ElapsedSeconds < 0 {
		from.writeJson(errorResponse{Type: "error", Error: ErrStatusInvalidPayload})
		return
	}
	room.state.elapsedSeconds = data.ElapsedSeconds
	room.state.timerRunning = data.IsRunning
	room.state.period = data.Period
	room.state.timerUpdatedAt = time.Now()
	room.notifyReporters(timerUpdatedResponse{
		Type:           "timer_updated",
		MatchId:        room.matchId,
		ElapsedSeconds: room.state.elapsedSeconds,
		IsRunning:      room.state.timerRunning,
		Period:         room.state.period,
		UpdatedBy:      from.Id,
	})
}

func (room *Room) applyEvent(from *reporter, data eventData) {
	event := report.MatchEvent{
		Category:  report.Category(data.Category),
		SubjectId: data.SubjectId,
		Minute:    data.Minute,
	}
	if err := event.Validate(); err != nil {
		from.writeJson(errorResponse{Type: "error", Error: ErrStatusInvalidEvent})
		return
	}
	confirmed := liveEventResponse{
		Id:        uuid.NewString(),
		Category:  data.Category,
		SubjectId: data.SubjectId,
		Minute:    data.Minute,
		AddedBy:   from.Id,
	}
	room.state.events = append(room.state.events, confirmed)
	room.notifyReporters(eventAddedResponse{
		Type:    "event_added",
		MatchId: room.matchId,
		Event:   confirmed,
	})
}

func (room *Room) applyShift(from *reporter, data shiftData) {
	if data.PlayerId == "" {
		from.writeJson(errorResponse{Type: "error", Error: ErrStatusInvalidPayload})
		return
	}
	shift := playerShiftResponse{
		PlayerId:  data.PlayerId,
		TeamId:    data.TeamId,
		IsActive:  data.IsActive,
		UpdatedBy: from.Id,
	}
	room.state.shifts[data.PlayerId] = shift
	room.notifyReporters(playerShiftUpdatedResponse{
		Type:    "player_shift_updated",
		MatchId: room.matchId,
		Shift:   shift,
	})
}

func (room *Room) applySubmit(from *reporter, req dtos.SubmitReportRequest) {
	result, err := room.submitHandler(room.matchId, from.Id, req)
	if err != nil {
		logging.Error("live submit failed",
			zap.String("match_id", room.matchId),
			zap.String("user_id", from.Id),
			zap.Error(err),
		)
		from.writeJson(errorResponse{Type: "error", Error: ErrStatusSubmitFailed})
		return
	}
	room.notifyReporters(reportSubmittedResponse{
		Type:        "report_submitted",
		MatchId:     room.matchId,
		SubmittedBy: from.Id,
		Result:      result,
	})
}

func (room *Room) notifyReporters(msg interface{}) {
	for _, member := range room.reporters {
		if err := member.writeJson(msg); err != nil {
			logging.Error("couldn't notify reporter",
				zap.String("match_id", room.matchId),
				zap.String("user_id", member.Id),
			)
		}
	}
}

func (room *Room) matchState() matchStateResponse {
	events := make([]liveEventResponse, len(room.state.events))
	copy(events, room.state.events)
	return matchStateResponse{
		Type:           "match_state",
		MatchId:        room.matchId,
		HomeTeamId:     room.homeTeamId,
		AwayTeamId:     room.awayTeamId,
		HomeScore:      room.state.homeScore,
		AwayScore:      room.state.awayScore,
		ElapsedSeconds: room.elapsed(),
		IsRunning:      room.state.timerRunning,
		Period:         room.state.period,
		Events:         events,
	}
}

// elapsed projects the clock forward when it is running so a joiner
// sees the current reading, not the one from the last timer update.
func (room *Room) elapsed() int {
	if !room.state.timerRunning {
		return room.state.elapsedSeconds
	}
	return room.state.elapsedSeconds + int(time.Since(room.state.timerUpdatedAt).Seconds())
}

func (room *Room) activeReporters() activeReportersResponse {
	reporters := make([]reporterResponse, 0, len(room.reporters))
	for _, member := range room.reporters {
		reporters = append(reporters, member.response())
	}
	return activeReportersResponse{
		Type:      "active_reporters",
		Reporters: reporters,
	}
}

func (room *Room) playerShifts() playerShiftsResponse {
	shifts := make([]playerShiftResponse, 0, len(room.state.shifts))
	for _, shift := range room.state.shifts {
		shifts = append(shifts, shift)
	}
	return playerShiftsResponse{
		Type:   "player_shifts",
		Shifts: shifts,
	}
}

// post hands an update to the room goroutine. It returns false once
// the room has been torn down.
func (room *Room) post(u update) bool {
	select {
	case <-room.done:
		return false
	default:
	}
	select {
	case room.updateCh <- u:
		return true
	case <-room.done:
		return false
	}
}

func (room *Room) processJoin(r *reporter) bool {
	return room.post(update{kind: JOIN, reporter: r})
}

func (room *Room) processLeave(r *reporter) bool {
	return room.post(update{kind: LEAVE, reporter: r})
}

func (room *Room) processScore(r *reporter, data scoreData) bool {
	return room.post(update{kind: SCORE, reporter: r, score: data})
}

func (room *Room) processTimer(r *reporter, data timerData) bool {
	return room.post(update{kind: TIMER, reporter: r, timer: data})
}

func (room *Room) processEvent(r *reporter, data eventData) bool {
	return room.post(update{kind: EVENT, reporter: r, event: data})
}

func (room *Room) processShift(r *reporter, data shiftData) bool {
	return room.post(update{kind: SHIFT, reporter: r, shift: data})
}

func (room *Room) processSubmit(r *reporter, req dtos.SubmitReportRequest) bool {
	return room.post(update{kind: SUBMIT, reporter: r, submit: req})
}

func (room *Room) processClose() bool {
	return room.post(update{kind: CLOSE})
}

// applyClose tears the room down from its own goroutine, so nothing
// else ever touches the reporter map. A join that slipped in between
// the idle timer firing and this update keeps the room alive.
func (room *Room) applyClose() bool {
	if len(room.reporters) > 0 {
		return false
	}
	if !utils.IsClosed(room.done) {
		close(room.done)
	}
	room.idleTimer.Stop()
	room.closedHandler(room)
	logging.Info("room closed", zap.String("match_id", room.matchId))
	return true
}

func (room *Room) isEnded() bool {
	return utils.IsClosed(room.done)
}
