package entities

// CoachAssignment links a user to a team they report for. Consulted to
// decide which side of a match a user may verify.
type CoachAssignment struct {
	UserId string `dynamodbav:"UserId"`
	TeamId string `dynamodbav:"TeamId"`
}
