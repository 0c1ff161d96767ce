package entities

import "time"

// MatchEvent is one stored scoring occurrence. SubjectId is a player id
// for goals, assists and cards, and a team id for own goals.
type MatchEvent struct {
	MatchId   string    `dynamodbav:"MatchId"`
	EventId   string    `dynamodbav:"EventId"`
	Category  string    `dynamodbav:"Category"`
	SubjectId string    `dynamodbav:"SubjectId"`
	Minute    string    `dynamodbav:"Minute,omitempty"`
	CreatedAt time.Time `dynamodbav:"CreatedAt"`
}
