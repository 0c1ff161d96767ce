package api

import (
	"context"
	"fmt"

	"github.com/pitchside/matchday/internal/domains/dtos"
	"github.com/pitchside/matchday/internal/domains/entities"
	"github.com/pitchside/matchday/internal/report"
	"github.com/pitchside/matchday/internal/storage"
	"github.com/pitchside/matchday/pkg/logging"
	"go.uber.org/zap"
)

// Store is the slice of the match store the report service uses.
type Store interface {
	GetMatchRecord(ctx context.Context, matchId string) (entities.MatchRecord, error)
	FetchMatchEvents(ctx context.Context, matchId string) ([]entities.MatchEvent, error)
	GetCoachTeams(ctx context.Context, userId string) ([]string, error)
	GetStanding(ctx context.Context, teamId string) (entities.Standing, error)
	SubmitReport(ctx context.Context, sub storage.ReportSubmission) ([]entities.MatchEvent, error)
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Snapshot assembles the GET report payload: record, categorized
// events, and the caller's verification eligibility.
func (s *Service) Snapshot(ctx context.Context, matchId, userId string) (dtos.MatchReportResponse, error) {
	record, err := s.store.GetMatchRecord(ctx, matchId)
	if err != nil {
		return dtos.MatchReportResponse{}, err
	}
	events, err := s.store.FetchMatchEvents(ctx, matchId)
	if err != nil {
		return dtos.MatchReportResponse{}, fmt.Errorf("failed to fetch match events: %w", err)
	}
	eligibility, err := s.eligibility(ctx, userId, record)
	if err != nil {
		return dtos.MatchReportResponse{}, err
	}
	return dtos.MatchReportResponseFromEntity(record, events, eligibility), nil
}

/*
Submit applies a report submission atomically: scoreboard fields, all
category change-sets, verification flags for sides the caller is
eligible to verify, and the standings adjustment derived from the old
and new scorelines. A stale version surfaces as
storage.VersionConflictError untouched so the handler can answer 409
with the current version.
*/
func (s *Service) Submit(
	ctx context.Context,
	matchId, userId string,
	req dtos.SubmitReportRequest,
) (dtos.SubmitReportResponse, error) {
	if req.HomeScore < 0 || req.AwayScore < 0 {
		return dtos.SubmitReportResponse{}, report.ValidationError{Field: "score", Reason: "negative"}
	}

	changeSets := make(map[report.Category]report.ChangeSet, len(req.ChangeSets))
	for name, cs := range req.ChangeSets {
		category := report.Category(name)
		if !category.Valid() {
			return dtos.SubmitReportResponse{}, report.ValidationError{Field: "category", Reason: name}
		}
		for _, ev := range cs.ToAdd {
			ev.Category = category
			if err := ev.Validate(); err != nil {
				return dtos.SubmitReportResponse{}, err
			}
		}
		changeSets[category] = cs
	}

	record, err := s.store.GetMatchRecord(ctx, matchId)
	if err != nil {
		return dtos.SubmitReportResponse{}, err
	}
	eligibility, err := s.eligibility(ctx, userId, record)
	if err != nil {
		return dtos.SubmitReportResponse{}, err
	}

	// Verification is server-gated: requested flags only stick for
	// sides this user coaches, and stored flags never come back off.
	homeVerified, awayVerified := report.AdvanceVerification(
		record.HomeVerified, record.AwayVerified,
		req.VerifyHome, req.VerifyAway,
		eligibility,
	)

	sub := storage.ReportSubmission{
		MatchId:      matchId,
		HomeScore:    req.HomeScore,
		AwayScore:    req.AwayScore,
		Notes:        req.Notes,
		ChangeSets:   changeSets,
		HomeVerified: homeVerified,
		AwayVerified: awayVerified,
		StandingDeltas: report.ReportDeltas(
			record.HomeTeamId, record.AwayTeamId,
			record.Reported,
			record.HomeScore, record.AwayScore,
			req.HomeScore, req.AwayScore,
		),
		ExpectedVersion: req.Version,
	}
	if homeVerified && !record.HomeVerified {
		sub.HomeVerifiedBy = userId
	}
	if awayVerified && !record.AwayVerified {
		sub.AwayVerifiedBy = userId
	}

	if _, err := s.store.SubmitReport(ctx, sub); err != nil {
		return dtos.SubmitReportResponse{}, err
	}

	logging.Info("match report submitted",
		zap.String("match_id", matchId),
		zap.String("user_id", userId),
		zap.Int("home_score", req.HomeScore),
		zap.Int("away_score", req.AwayScore),
	)

	snapshot, err := s.Snapshot(ctx, matchId, userId)
	if err != nil {
		return dtos.SubmitReportResponse{}, err
	}
	return dtos.SubmitReportResponse{
		Success: true,
		Message: submitMessage(report.StatusOf(homeVerified, awayVerified)),
		Report:  snapshot,
	}, nil
}

func (s *Service) Standing(ctx context.Context, teamId string) (dtos.StandingResponse, error) {
	standing, err := s.store.GetStanding(ctx, teamId)
	if err != nil {
		return dtos.StandingResponse{}, err
	}
	return dtos.StandingResponseFromEntity(standing), nil
}

func (s *Service) eligibility(
	ctx context.Context,
	userId string,
	record entities.MatchRecord,
) (report.Eligibility, error) {
	teamIds, err := s.store.GetCoachTeams(ctx, userId)
	if err != nil {
		return report.Eligibility{}, fmt.Errorf("failed to fetch coach teams: %w", err)
	}
	var eligibility report.Eligibility
	for _, teamId := range teamIds {
		if teamId == record.HomeTeamId {
			eligibility.Home = true
		}
		if teamId == record.AwayTeamId {
			eligibility.Away = true
		}
	}
	return eligibility, nil
}

// submitMessage keeps the three verification outcomes distinguishable
// in the response.
func submitMessage(status report.VerificationStatus) string {
	switch status {
	case report.FullyVerified:
		return "Match report submitted and verified by both teams."
	case report.PartiallyVerified:
		return "Match report submitted, awaiting verification by the other team."
	default:
		return "Match report submitted."
	}
}
