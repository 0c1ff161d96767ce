package server

import (
	"encoding/json"

	"github.com/pitchside/matchday/internal/domains/dtos"
)

type payload struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Client to server message data.

type joinData struct {
	TeamId string `json:"teamId"`
}

type scoreData struct {
	HomeScore int `json:"homeScore"`
	AwayScore int `json:"awayScore"`
}

type timerData struct {
	ElapsedSeconds int    `json:"elapsedSeconds"`
	IsRunning      bool   `json:"isRunning"`
	Period         string `json:"period"`
}

type eventData struct {
	Category  string `json:"category"`
	SubjectId string `json:"subjectId"`
	Minute    string `json:"minute"`
}

type shiftData struct {
	PlayerId string `json:"playerId"`
	TeamId   string `json:"teamId"`
	IsActive bool   `json:"isActive"`
}

// Server to client messages. Every frame carries its type so clients
// can dispatch without a wrapper.

type authSuccessResponse struct {
	Type   string `json:"type"`
	UserId string `json:"userId"`
	Name   string `json:"name"`
}

type matchStateResponse struct {
	Type           string              `json:"type"`
	MatchId        string              `json:"matchId"`
	HomeTeamId     string              `json:"homeTeamId"`
	AwayTeamId     string              `json:"awayTeamId"`
	HomeScore      int                 `json:"homeScore"`
	AwayScore      int                 `json:"awayScore"`
	ElapsedSeconds int                 `json:"elapsedSeconds"`
	IsRunning      bool                `json:"isRunning"`
	Period         string              `json:"period"`
	Events         []liveEventResponse `json:"events"`
}

type liveEventResponse struct {
	Id        string `json:"id"`
	Category  string `json:"category"`
	SubjectId string `json:"subjectId"`
	Minute    string `json:"minute,omitempty"`
	AddedBy   string `json:"addedBy"`
}

type reporterResponse struct {
	UserId   string `json:"userId"`
	Name     string `json:"name"`
	TeamId   string `json:"teamId,omitempty"`
	JoinedAt string `json:"joinedAt"`
}

type activeReportersResponse struct {
	Type      string             `json:"type"`
	Reporters []reporterResponse `json:"reporters"`
}

type playerShiftResponse struct {
	PlayerId  string `json:"playerId"`
	TeamId    string `json:"teamId,omitempty"`
	IsActive  bool   `json:"isActive"`
	UpdatedBy string `json:"updatedBy"`
}

type playerShiftsResponse struct {
	Type   string                `json:"type"`
	Shifts []playerShiftResponse `json:"shifts"`
}

type reporterJoinedResponse struct {
	Type     string           `json:"type"`
	Reporter reporterResponse `json:"reporter"`
}

type reporterLeftResponse struct {
	Type   string `json:"type"`
	UserId string `json:"userId"`
}

type scoreUpdatedResponse struct {
	Type      string `json:"type"`
	MatchId   string `json:"matchId"`
	HomeScore int    `json:"homeScore"`
	AwayScore int    `json:"awayScore"`
	UpdatedBy string `json:"updatedBy"`
}

type timerUpdatedResponse struct {
	Type           string `json:"type"`
	MatchId        string `json:"matchId"`
	ElapsedSeconds int    `json:"elapsedSeconds"`
	IsRunning      bool   `json:"isRunning"`
	Period         string `json:"period"`
	UpdatedBy      string `json:"updatedBy"`
}

type eventAddedResponse struct {
	Type    string            `json:"type"`
	MatchId string            `json:"matchId"`
	Event   liveEventResponse `json:"event"`
}

type playerShiftUpdatedResponse struct {
	Type    string              `json:"type"`
	MatchId string              `json:"matchId"`
	Shift   playerShiftResponse `json:"shift"`
}

type reportSubmittedResponse struct {
	Type        string                    `json:"type"`
	MatchId     string                    `json:"matchId"`
	SubmittedBy string                    `json:"submittedBy"`
	Result      dtos.SubmitReportResponse `json:"result"`
}

type errorResponse struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

type pongResponse struct {
	Type string `json:"type"`
	Time string `json:"time"`
}
