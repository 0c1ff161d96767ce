package entities

// Standing is one team's league table row. Points follow the 3-1-0 rule.
type Standing struct {
	TeamId         string `dynamodbav:"TeamId"`
	Played         int    `dynamodbav:"Played"`
	Wins           int    `dynamodbav:"Wins"`
	Draws          int    `dynamodbav:"Draws"`
	Losses         int    `dynamodbav:"Losses"`
	GoalsFor       int    `dynamodbav:"GoalsFor"`
	GoalsAgainst   int    `dynamodbav:"GoalsAgainst"`
	GoalDifference int    `dynamodbav:"GoalDifference"`
	Points         int    `dynamodbav:"Points"`
}
