package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"github.com/pitchside/matchday/internal/domains/entities"
	"github.com/pitchside/matchday/internal/report"
)

func (client *Client) GetMatchRecord(ctx context.Context, matchId string) (entities.MatchRecord, error) {
	output, err := client.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: client.cfg.MatchesTableName,
		Key: map[string]types.AttributeValue{
			"MatchId": &types.AttributeValueMemberS{
				Value: matchId,
			},
		},
	})
	if err != nil {
		return entities.MatchRecord{}, err
	}
	if output.Item == nil {
		return entities.MatchRecord{}, ErrMatchNotFound
	}
	var record entities.MatchRecord
	if err := attributevalue.UnmarshalMap(output.Item, &record); err != nil {
		return entities.MatchRecord{}, err
	}
	return record, nil
}

func (client *Client) PutMatchRecord(ctx context.Context, record entities.MatchRecord) error {
	av, err := attributevalue.MarshalMap(record)
	if err != nil {
		return fmt.Errorf("failed to marshal match record: %w", err)
	}
	_, err = client.dynamodb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: client.cfg.MatchesTableName,
		Item:      av,
	})
	if err != nil {
		return fmt.Errorf("failed to put match record: %w", err)
	}
	return nil
}

func (client *Client) FetchMatchEvents(ctx context.Context, matchId string) ([]entities.MatchEvent, error) {
	input := &dynamodb.QueryInput{
		TableName:              client.cfg.MatchEventsTableName,
		KeyConditionExpression: aws.String("MatchId = :matchId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":matchId": &types.AttributeValueMemberS{Value: matchId},
		},
		ScanIndexForward: aws.Bool(true),
	}
	output, err := client.dynamodb.Query(ctx, input)
	if err != nil {
		return nil, err
	}
	var events []entities.MatchEvent
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &events); err != nil {
		return nil, err
	}
	return events, nil
}

// GetCoachTeams returns the team ids a user reports for.
func (client *Client) GetCoachTeams(ctx context.Context, userId string) ([]string, error) {
	input := &dynamodb.QueryInput{
		TableName:              client.cfg.CoachesTableName,
		KeyConditionExpression: aws.String("UserId = :userId"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":userId": &types.AttributeValueMemberS{Value: userId},
		},
	}
	output, err := client.dynamodb.Query(ctx, input)
	if err != nil {
		return nil, err
	}
	var assignments []entities.CoachAssignment
	if err := attributevalue.UnmarshalListOfMaps(output.Items, &assignments); err != nil {
		return nil, err
	}
	teamIds := make([]string, 0, len(assignments))
	for _, a := range assignments {
		teamIds = append(teamIds, a.TeamId)
	}
	return teamIds, nil
}

func (client *Client) GetStanding(ctx context.Context, teamId string) (entities.Standing, error) {
	output, err := client.dynamodb.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: client.cfg.StandingsTableName,
		Key: map[string]types.AttributeValue{
			"TeamId": &types.AttributeValueMemberS{Value: teamId},
		},
	})
	if err != nil {
		return entities.Standing{}, err
	}
	standing := entities.Standing{TeamId: teamId}
	if output.Item != nil {
		if err := attributevalue.UnmarshalMap(output.Item, &standing); err != nil {
			return entities.Standing{}, err
		}
	}
	return standing, nil
}

// ReportSubmission is one atomic report write: scoreboard fields,
// per-category change-sets, resolved verification flags and the
// standings adjustments, guarded by the expected version.
type ReportSubmission struct {
	MatchId   string
	HomeScore int
	AwayScore int
	Notes     string

	ChangeSets map[report.Category]report.ChangeSet

	HomeVerified   bool
	HomeVerifiedBy string
	AwayVerified   bool
	AwayVerifiedBy string

	StandingDeltas []report.StandingDelta

	ExpectedVersion int64
}

/*
SubmitReport applies a report submission in a single transaction: the
match row is updated under the condition Version = ExpectedVersion and
incremented, event rows are put/deleted per category, and standings
rows are adjusted. Either everything commits or nothing does. A failed
condition check is surfaced as VersionConflictError carrying the
version currently stored.
*/
func (client *Client) SubmitReport(ctx context.Context, sub ReportSubmission) ([]entities.MatchEvent, error) {
	now := time.Now().UTC()

	items := []types.TransactWriteItem{
		{Update: client.matchUpdateItem(sub, now)},
	}

	var created []entities.MatchEvent
	for _, category := range report.Categories {
		cs := sub.ChangeSets[category]
		for _, ev := range cs.ToAdd {
			row := entities.MatchEvent{
				MatchId:   sub.MatchId,
				EventId:   uuid.NewString(),
				Category:  string(category),
				SubjectId: ev.SubjectId,
				Minute:    ev.Minute,
				CreatedAt: now,
			}
			av, err := attributevalue.MarshalMap(row)
			if err != nil {
				return nil, fmt.Errorf("failed to marshal event: %w", err)
			}
			items = append(items, types.TransactWriteItem{
				Put: &types.Put{
					TableName: client.cfg.MatchEventsTableName,
					Item:      av,
				},
			})
			created = append(created, row)
		}
		for _, ev := range cs.ToRemove {
			if ev.Id == "" {
				continue
			}
			items = append(items, types.TransactWriteItem{
				Delete: &types.Delete{
					TableName: client.cfg.MatchEventsTableName,
					Key: map[string]types.AttributeValue{
						"MatchId": &types.AttributeValueMemberS{Value: sub.MatchId},
						"EventId": &types.AttributeValueMemberS{Value: ev.Id},
					},
				},
			})
		}
	}

	// DynamoDB rejects two operations on one item in a transaction, and
	// a re-report carries revert+apply deltas for the same teams.
	for _, delta := range report.CoalesceDeltas(sub.StandingDeltas) {
		items = append(items, types.TransactWriteItem{
			Update: standingUpdateItem(client.cfg.StandingsTableName, delta),
		})
	}

	_, err := client.dynamodb.TransactWriteItems(ctx, &dynamodb.TransactWriteItemsInput{
		TransactItems: items,
	})
	if err != nil {
		if isConditionalCheckFailure(err) {
			current, readErr := client.GetMatchRecord(ctx, sub.MatchId)
			if readErr != nil {
				return nil, fmt.Errorf("version conflict, failed to read current version: %w", readErr)
			}
			return nil, &VersionConflictError{
				MatchId:        sub.MatchId,
				CurrentVersion: current.Version,
			}
		}
		return nil, fmt.Errorf("failed to submit report: %w", err)
	}
	return created, nil
}

func (client *Client) matchUpdateItem(sub ReportSubmission, now time.Time) *types.Update {
	updateExpression := []string{
		"HomeScore = :homeScore",
		"AwayScore = :awayScore",
		"Notes = :notes",
		"Reported = :reported",
		"HomeVerified = :homeVerified",
		"AwayVerified = :awayVerified",
		"UpdatedAt = :updatedAt",
		"Version = Version + :one",
	}
	expressionAttributeValues := map[string]types.AttributeValue{
		":homeScore":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", sub.HomeScore)},
		":awayScore":    &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", sub.AwayScore)},
		":notes":        &types.AttributeValueMemberS{Value: sub.Notes},
		":reported":     &types.AttributeValueMemberBOOL{Value: true},
		":homeVerified": &types.AttributeValueMemberBOOL{Value: sub.HomeVerified},
		":awayVerified": &types.AttributeValueMemberBOOL{Value: sub.AwayVerified},
		":updatedAt":    &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)},
		":one":          &types.AttributeValueMemberN{Value: "1"},
		":expected":     &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", sub.ExpectedVersion)},
	}
	if sub.HomeVerified && sub.HomeVerifiedBy != "" {
		updateExpression = append(updateExpression,
			"HomeVerifiedBy = :homeVerifiedBy",
			"HomeVerifiedAt = :verifiedAt",
		)
		expressionAttributeValues[":homeVerifiedBy"] = &types.AttributeValueMemberS{Value: sub.HomeVerifiedBy}
	}
	if sub.AwayVerified && sub.AwayVerifiedBy != "" {
		updateExpression = append(updateExpression,
			"AwayVerifiedBy = :awayVerifiedBy",
			"AwayVerifiedAt = :verifiedAt",
		)
		expressionAttributeValues[":awayVerifiedBy"] = &types.AttributeValueMemberS{Value: sub.AwayVerifiedBy}
	}
	if sub.HomeVerifiedBy != "" || sub.AwayVerifiedBy != "" {
		expressionAttributeValues[":verifiedAt"] = &types.AttributeValueMemberS{Value: now.Format(time.RFC3339)}
	}

	return &types.Update{
		TableName: client.cfg.MatchesTableName,
		Key: map[string]types.AttributeValue{
			"MatchId": &types.AttributeValueMemberS{Value: sub.MatchId},
		},
		ConditionExpression:       aws.String("Version = :expected"),
		UpdateExpression:          aws.String("SET " + strings.Join(updateExpression, ", ")),
		ExpressionAttributeValues: expressionAttributeValues,
	}
}

func standingUpdateItem(tableName *string, delta report.StandingDelta) *types.Update {
	n := func(v int) types.AttributeValue {
		return &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", v)}
	}
	return &types.Update{
		TableName: tableName,
		Key: map[string]types.AttributeValue{
			"TeamId": &types.AttributeValueMemberS{Value: delta.TeamId},
		},
		UpdateExpression: aws.String(
			"ADD Played :played, Wins :wins, Draws :draws, Losses :losses, " +
				"GoalsFor :goalsFor, GoalsAgainst :goalsAgainst, " +
				"GoalDifference :goalDifference, Points :points",
		),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":played":         n(delta.Played),
			":wins":           n(delta.Wins),
			":draws":          n(delta.Draws),
			":losses":         n(delta.Losses),
			":goalsFor":       n(delta.GoalsFor),
			":goalsAgainst":   n(delta.GoalsAgainst),
			":goalDifference": n(delta.GoalDifference),
			":points":         n(delta.Points),
		},
	}
}

func isConditionalCheckFailure(err error) bool {
	var canceled *types.TransactionCanceledException
	if errors.As(err, &canceled) {
		for _, reason := range canceled.CancellationReasons {
			if reason.Code != nil && *reason.Code == "ConditionalCheckFailed" {
				return true
			}
		}
		return false
	}
	var conditionFailed *types.ConditionalCheckFailedException
	return errors.As(err, &conditionFailed)
}
