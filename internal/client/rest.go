package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/pitchside/matchday/internal/domains/dtos"
)

// ReportClient talks to the REST report surface.
type ReportClient struct {
	http    *http.Client
	baseUrl *url.URL
	token   string
}

func NewReportClient(baseUrl, token string) (*ReportClient, error) {
	u, err := url.Parse(baseUrl)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	return &ReportClient{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseUrl: u,
		token:   token,
	}, nil
}

// FetchReport loads the report snapshot that later edits diff against.
func (client *ReportClient) FetchReport(ctx context.Context, matchId string) (dtos.MatchReportResponse, error) {
	u := client.baseUrl.JoinPath("api", "matches", matchId, "report")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return dtos.MatchReportResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+client.token)

	resp, err := client.http.Do(req)
	if err != nil {
		return dtos.MatchReportResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return dtos.MatchReportResponse{}, responseError(resp)
	}
	var report dtos.MatchReportResponse
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return dtos.MatchReportResponse{}, fmt.Errorf("failed to decode body: %w", err)
	}
	return report, nil
}

/*
SubmitReport posts a reconciliation submission. Before anything goes
over the wire, the verification gate runs locally: a caller who is
eligible to verify at least one side but checked neither gets
ErrVerificationRequired and nothing is sent.
*/
func (client *ReportClient) SubmitReport(
	ctx context.Context,
	matchId string,
	eligibility dtos.EligibilityResponse,
	req dtos.SubmitReportRequest,
) (dtos.SubmitReportResponse, error) {
	if (eligibility.Home || eligibility.Away) && !req.VerifyHome && !req.VerifyAway {
		return dtos.SubmitReportResponse{}, ErrVerificationRequired
	}

	u := client.baseUrl.JoinPath("api", "matches", matchId, "report")
	body := new(bytes.Buffer)
	if err := json.NewEncoder(body).Encode(req); err != nil {
		return dtos.SubmitReportResponse{}, fmt.Errorf("failed to encode body: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), body)
	if err != nil {
		return dtos.SubmitReportResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+client.token)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := client.http.Do(httpReq)
	if err != nil {
		return dtos.SubmitReportResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return dtos.SubmitReportResponse{}, responseError(resp)
	}
	var result dtos.SubmitReportResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return dtos.SubmitReportResponse{}, fmt.Errorf("failed to decode body: %w", err)
	}
	return result, nil
}

func (client *ReportClient) FetchStanding(ctx context.Context, teamId string) (dtos.StandingResponse, error) {
	u := client.baseUrl.JoinPath("api", "standings", teamId)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return dtos.StandingResponse{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+client.token)

	resp, err := client.http.Do(req)
	if err != nil {
		return dtos.StandingResponse{}, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return dtos.StandingResponse{}, responseError(resp)
	}
	var standing dtos.StandingResponse
	if err := json.NewDecoder(resp.Body).Decode(&standing); err != nil {
		return dtos.StandingResponse{}, fmt.Errorf("failed to decode body: %w", err)
	}
	return standing, nil
}

func responseError(resp *http.Response) error {
	var body struct {
		Error          string `json:"error"`
		Message        string `json:"message"`
		CurrentVersion int64  `json:"currentVersion"`
	}
	_ = json.NewDecoder(resp.Body).Decode(&body)

	switch resp.StatusCode {
	case http.StatusConflict:
		return &VersionConflictError{CurrentVersion: body.CurrentVersion}
	case http.StatusNotFound:
		return ErrMatchNotFound
	default:
		message := body.Message
		if message == "" {
			message = body.Error
		}
		return &SubmitError{StatusCode: resp.StatusCode, Message: message}
	}
}
