package report

import (
	"fmt"
	"regexp"

	"github.com/google/uuid"
)

type Category string

const (
	Goal       Category = "goal"
	Assist     Category = "assist"
	YellowCard Category = "yellow_card"
	RedCard    Category = "red_card"
	OwnGoal    Category = "own_goal"
)

// Categories lists every event category in submission order.
var Categories = []Category{Goal, Assist, YellowCard, RedCard, OwnGoal}

func (c Category) Valid() bool {
	switch c {
	case Goal, Assist, YellowCard, RedCard, OwnGoal:
		return true
	}
	return false
}

// minutePattern accepts "45", "90+4", etc. Minute is optional on an event.
var minutePattern = regexp.MustCompile(`^\d{1,3}(\+\d{1,2})?$`)

func ValidMinute(minute string) bool {
	if minute == "" {
		return true
	}
	return minutePattern.MatchString(minute)
}

// MatchEvent is one scoring occurrence as held by an editing session.
// Id is the server-assigned identity, empty until the event is stored.
// LocalKey is generated client-side and stays stable for the session.
// SubjectId is a player id, except for own goals where it is the team
// credited against.
type MatchEvent struct {
	Id        string   `json:"id,omitempty"`
	LocalKey  string   `json:"localKey,omitempty"`
	Category  Category `json:"category"`
	SubjectId string   `json:"subjectId"`
	Minute    string   `json:"minute,omitempty"`
	Removed   bool     `json:"removed,omitempty"`
}

type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewPlayerEvent builds a not-yet-saved event for the player-subject
// categories. Own goals must go through NewOwnGoalEvent.
func NewPlayerEvent(category Category, playerId, minute string) (MatchEvent, error) {
	if !category.Valid() || category == OwnGoal {
		return MatchEvent{}, ValidationError{Field: "category", Reason: string(category)}
	}
	if playerId == "" {
		return MatchEvent{}, ValidationError{Field: "subjectId", Reason: "player required"}
	}
	if !ValidMinute(minute) {
		return MatchEvent{}, ValidationError{Field: "minute", Reason: minute}
	}
	return MatchEvent{
		LocalKey:  uuid.NewString(),
		Category:  category,
		SubjectId: playerId,
		Minute:    minute,
	}, nil
}

// NewOwnGoalEvent builds a not-yet-saved own goal, credited against teamId.
func NewOwnGoalEvent(teamId, minute string) (MatchEvent, error) {
	if teamId == "" {
		return MatchEvent{}, ValidationError{Field: "subjectId", Reason: "team required"}
	}
	if !ValidMinute(minute) {
		return MatchEvent{}, ValidationError{Field: "minute", Reason: minute}
	}
	return MatchEvent{
		LocalKey:  uuid.NewString(),
		Category:  OwnGoal,
		SubjectId: teamId,
		Minute:    minute,
	}, nil
}

// Validate checks an event arriving from the wire, where construction
// rules could not be enforced.
func (e MatchEvent) Validate() error {
	if !e.Category.Valid() {
		return ValidationError{Field: "category", Reason: string(e.Category)}
	}
	if e.SubjectId == "" {
		return ValidationError{Field: "subjectId", Reason: "required"}
	}
	if !ValidMinute(e.Minute) {
		return ValidationError{Field: "minute", Reason: e.Minute}
	}
	return nil
}
