package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pitchside/matchday/internal/domains/dtos"
	"github.com/pitchside/matchday/pkg/logging"
	"go.uber.org/zap"
)

// Handler for when a room winds down: drop it from the registry so the
// next join builds a fresh one from storage.
func (s *server) handleRoomClosed(room *Room) {
	s.removeRoom(room.matchId)
}

/*
Handler for a live submit. Live reporters do not track the report
version, so the submit is anchored to the version currently stored and
applied through the same reconciliation path as the REST surface.
*/
func (s *server) handleLiveSubmit(
	matchId, userId string,
	req dtos.SubmitReportRequest,
) (dtos.SubmitReportResponse, error) {
	ctx := context.Background()
	record, err := s.matchLoader.GetMatchRecord(ctx, matchId)
	if err != nil {
		return dtos.SubmitReportResponse{}, err
	}
	req.Version = record.Version
	return s.reportService.Submit(ctx, matchId, userId, req)
}

// Handler for when a reporter sends a message. Returns the room the
// connection is a member of after the message, nil when not joined.
func (s *server) handleReporterMessage(
	member *reporter,
	room *Room,
	matchId string,
	payload payload,
) *Room {
	switch payload.Type {
	case "join_match":
		if room != nil {
			member.writeJson(errorResponse{Type: "error", Error: ErrStatusAlreadyJoined})
			return room
		}
		var data joinData
		if len(payload.Data) > 0 {
			if err := json.Unmarshal(payload.Data, &data); err != nil {
				member.writeJson(errorResponse{Type: "error", Error: ErrStatusInvalidPayload})
				return nil
			}
		}
		member.TeamId = data.TeamId
		loaded, err := s.loadRoom(matchId)
		if err != nil {
			logging.Error("failed to load room",
				zap.String("match_id", matchId),
				zap.Error(err),
			)
			member.writeJson(errorResponse{Type: "error", Error: ErrStatusRoomClosed})
			return nil
		}
		if !loaded.processJoin(member) {
			member.writeJson(errorResponse{Type: "error", Error: ErrStatusRoomClosed})
			return nil
		}
		return loaded

	case "leave_match":
		if room == nil {
			member.writeJson(errorResponse{Type: "error", Error: ErrStatusNotJoined})
			return nil
		}
		room.processLeave(member)
		return nil

	case "update_score":
		var data scoreData
		if !s.decodeInRoom(member, room, payload.Data, &data) {
			return room
		}
		room.processScore(member, data)

	case "update_timer":
		var data timerData
		if !s.decodeInRoom(member, room, payload.Data, &data) {
			return room
		}
		room.processTimer(member, data)

	case "add_event":
		var data eventData
		if !s.decodeInRoom(member, room, payload.Data, &data) {
			return room
		}
		room.processEvent(member, data)

	case "update_player_shift":
		var data shiftData
		if !s.decodeInRoom(member, room, payload.Data, &data) {
			return room
		}
		room.processShift(member, data)

	case "submit_report":
		var req dtos.SubmitReportRequest
		if !s.decodeInRoom(member, room, payload.Data, &req) {
			return room
		}
		room.processSubmit(member, req)

	case "ping":
		member.writeJson(pongResponse{
			Type: "pong",
			Time: time.Now().UTC().Format(time.RFC3339),
		})

	default:
		logging.Info("invalid payload type:", zap.String("type", payload.Type))
		member.writeJson(errorResponse{Type: "error", Error: ErrStatusInvalidPayload})
	}
	return room
}

// decodeInRoom rejects mutations from connections that have not joined
// a room, then decodes the payload data.
func (s *server) decodeInRoom(member *reporter, room *Room, data json.RawMessage, v interface{}) bool {
	if room == nil {
		member.writeJson(errorResponse{Type: "error", Error: ErrStatusNotJoined})
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		member.writeJson(errorResponse{Type: "error", Error: ErrStatusInvalidPayload})
		return false
	}
	return true
}
