package dtos

import (
	"time"

	"github.com/pitchside/matchday/internal/domains/entities"
	"github.com/pitchside/matchday/internal/report"
)

type MatchEventResponse struct {
	Id        string `json:"id"`
	Category  string `json:"category"`
	SubjectId string `json:"subjectId"`
	Minute    string `json:"minute,omitempty"`
}

type VerificationResponse struct {
	HomeVerified   bool       `json:"homeVerified"`
	HomeVerifiedBy string     `json:"homeVerifiedBy,omitempty"`
	HomeVerifiedAt *time.Time `json:"homeVerifiedAt,omitempty"`
	AwayVerified   bool       `json:"awayVerified"`
	AwayVerifiedBy string     `json:"awayVerifiedBy,omitempty"`
	AwayVerifiedAt *time.Time `json:"awayVerifiedAt,omitempty"`
	Status         string     `json:"status"`
}

// MatchReportResponse is the snapshot shape shared by the GET endpoint
// and the submit response: everything an editing session needs as a
// diff baseline, including the concurrency token and the caller's
// verification eligibility.
type MatchReportResponse struct {
	MatchId      string                          `json:"matchId"`
	HomeTeamId   string                          `json:"homeTeamId"`
	AwayTeamId   string                          `json:"awayTeamId"`
	HomeScore    int                             `json:"homeScore"`
	AwayScore    int                             `json:"awayScore"`
	Reported     bool                            `json:"reported"`
	Notes        string                          `json:"notes"`
	Events       map[string][]MatchEventResponse `json:"events"`
	Verification VerificationResponse            `json:"verification"`
	CanVerify    EligibilityResponse             `json:"canVerify"`
	Version      int64                           `json:"version"`
}

type EligibilityResponse struct {
	Home bool `json:"home"`
	Away bool `json:"away"`
}

func MatchEventResponseFromEntity(event entities.MatchEvent) MatchEventResponse {
	return MatchEventResponse{
		Id:        event.EventId,
		Category:  event.Category,
		SubjectId: event.SubjectId,
		Minute:    event.Minute,
	}
}

func MatchReportResponseFromEntity(
	record entities.MatchRecord,
	events []entities.MatchEvent,
	eligibility report.Eligibility,
) MatchReportResponse {
	categorized := make(map[string][]MatchEventResponse, len(report.Categories))
	for _, category := range report.Categories {
		categorized[string(category)] = []MatchEventResponse{}
	}
	for _, event := range events {
		categorized[event.Category] = append(
			categorized[event.Category],
			MatchEventResponseFromEntity(event),
		)
	}
	return MatchReportResponse{
		MatchId:    record.MatchId,
		HomeTeamId: record.HomeTeamId,
		AwayTeamId: record.AwayTeamId,
		HomeScore:  record.HomeScore,
		AwayScore:  record.AwayScore,
		Reported:   record.Reported,
		Notes:      record.Notes,
		Events:     categorized,
		Verification: VerificationResponse{
			HomeVerified:   record.HomeVerified,
			HomeVerifiedBy: record.HomeVerifiedBy,
			HomeVerifiedAt: record.HomeVerifiedAt,
			AwayVerified:   record.AwayVerified,
			AwayVerifiedBy: record.AwayVerifiedBy,
			AwayVerifiedAt: record.AwayVerifiedAt,
			Status:         string(report.StatusOf(record.HomeVerified, record.AwayVerified)),
		},
		CanVerify: EligibilityResponse{
			Home: eligibility.Home,
			Away: eligibility.Away,
		},
		Version: record.Version,
	}
}

// SubmitReportRequest is the POST body: scoreboard fields, per-category
// change-sets, verification checkboxes and the version captured at
// snapshot time.
type SubmitReportRequest struct {
	HomeScore  int                         `json:"homeScore"`
	AwayScore  int                         `json:"awayScore"`
	Notes      string                      `json:"notes"`
	ChangeSets map[string]report.ChangeSet `json:"changeSets"`
	VerifyHome bool                        `json:"verifyHome"`
	VerifyAway bool                        `json:"verifyAway"`
	Version    int64                       `json:"version"`
}

type SubmitReportResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Report  MatchReportResponse `json:"report"`
}

type StandingResponse struct {
	TeamId         string `json:"teamId"`
	Played         int    `json:"played"`
	Wins           int    `json:"wins"`
	Draws          int    `json:"draws"`
	Losses         int    `json:"losses"`
	GoalsFor       int    `json:"goalsFor"`
	GoalsAgainst   int    `json:"goalsAgainst"`
	GoalDifference int    `json:"goalDifference"`
	Points         int    `json:"points"`
}

func StandingResponseFromEntity(standing entities.Standing) StandingResponse {
	return StandingResponse{
		TeamId:         standing.TeamId,
		Played:         standing.Played,
		Wins:           standing.Wins,
		Draws:          standing.Draws,
		Losses:         standing.Losses,
		GoalsFor:       standing.GoalsFor,
		GoalsAgainst:   standing.GoalsAgainst,
		GoalDifference: standing.GoalDifference,
		Points:         standing.Points,
	}
}
