package entities

import "time"

// MatchRecord is the persisted match aggregate. Version increments on
// every successful mutating write and guards the compare-and-swap in
// storage.
type MatchRecord struct {
	MatchId    string `dynamodbav:"MatchId"`
	HomeTeamId string `dynamodbav:"HomeTeamId"`
	AwayTeamId string `dynamodbav:"AwayTeamId"`

	HomeScore int    `dynamodbav:"HomeScore"`
	AwayScore int    `dynamodbav:"AwayScore"`
	Reported  bool   `dynamodbav:"Reported"`
	Notes     string `dynamodbav:"Notes"`

	HomeVerified   bool       `dynamodbav:"HomeVerified"`
	HomeVerifiedBy string     `dynamodbav:"HomeVerifiedBy,omitempty"`
	HomeVerifiedAt *time.Time `dynamodbav:"HomeVerifiedAt,omitempty"`
	AwayVerified   bool       `dynamodbav:"AwayVerified"`
	AwayVerifiedBy string     `dynamodbav:"AwayVerifiedBy,omitempty"`
	AwayVerifiedAt *time.Time `dynamodbav:"AwayVerifiedAt,omitempty"`

	Version   int64     `dynamodbav:"Version"`
	UpdatedAt time.Time `dynamodbav:"UpdatedAt"`
}

// FullyVerified reports whether both sides confirmed the result.
func (m MatchRecord) FullyVerified() bool {
	return m.HomeVerified && m.AwayVerified
}

// PartiallyVerified reports whether exactly one side confirmed.
func (m MatchRecord) PartiallyVerified() bool {
	return m.HomeVerified != m.AwayVerified
}
