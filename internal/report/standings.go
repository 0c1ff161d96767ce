package report

import "github.com/pitchside/matchday/internal/domains/entities"

// StandingDelta is the signed adjustment one reported scoreline makes to
// a team's table row. Re-reporting a match first applies the previous
// scoreline with a negative sign, then the new one.
type StandingDelta struct {
	TeamId         string
	Played         int
	Wins           int
	Draws          int
	Losses         int
	GoalsFor       int
	GoalsAgainst   int
	GoalDifference int
	Points         int
}

// StandingDeltas converts a scoreline into per-team deltas. sign is +1
// to apply a result, -1 to revert one.
func StandingDeltas(homeTeamId, awayTeamId string, homeScore, awayScore, sign int) []StandingDelta {
	home := StandingDelta{TeamId: homeTeamId, Played: sign}
	away := StandingDelta{TeamId: awayTeamId, Played: sign}

	switch {
	case homeScore > awayScore:
		home.Wins, away.Losses = sign, sign
		home.Points = 3 * sign
	case homeScore < awayScore:
		home.Losses, away.Wins = sign, sign
		away.Points = 3 * sign
	default:
		home.Draws, away.Draws = sign, sign
		home.Points, away.Points = sign, sign
	}

	home.GoalsFor = homeScore * sign
	home.GoalsAgainst = awayScore * sign
	home.GoalDifference = (homeScore - awayScore) * sign
	away.GoalsFor = awayScore * sign
	away.GoalsAgainst = homeScore * sign
	away.GoalDifference = (awayScore - homeScore) * sign

	return []StandingDelta{home, away}
}

// ApplyDelta folds a delta into a standing row.
func ApplyDelta(standing *entities.Standing, d StandingDelta) {
	standing.Played += d.Played
	standing.Wins += d.Wins
	standing.Draws += d.Draws
	standing.Losses += d.Losses
	standing.GoalsFor += d.GoalsFor
	standing.GoalsAgainst += d.GoalsAgainst
	standing.GoalDifference += d.GoalDifference
	standing.Points += d.Points
}

// CoalesceDeltas merges the deltas per team into one net delta each,
// preserving first-appearance order. A transactional write may touch
// each standings row at most once, so revert and apply for the same
// team must land as a single adjustment.
func CoalesceDeltas(deltas []StandingDelta) []StandingDelta {
	index := make(map[string]int, len(deltas))
	merged := make([]StandingDelta, 0, len(deltas))
	for _, d := range deltas {
		i, ok := index[d.TeamId]
		if !ok {
			index[d.TeamId] = len(merged)
			merged = append(merged, d)
			continue
		}
		merged[i].Played += d.Played
		merged[i].Wins += d.Wins
		merged[i].Draws += d.Draws
		merged[i].Losses += d.Losses
		merged[i].GoalsFor += d.GoalsFor
		merged[i].GoalsAgainst += d.GoalsAgainst
		merged[i].GoalDifference += d.GoalDifference
		merged[i].Points += d.Points
	}
	return merged
}

// ReportDeltas yields the full delta set for a (re-)reported match:
// the old result reverted when one was on record, then the new result.
func ReportDeltas(
	homeTeamId, awayTeamId string,
	hadResult bool,
	oldHome, oldAway int,
	newHome, newAway int,
) []StandingDelta {
	var deltas []StandingDelta
	if hadResult {
		deltas = append(deltas, StandingDeltas(homeTeamId, awayTeamId, oldHome, oldAway, -1)...)
	}
	deltas = append(deltas, StandingDeltas(homeTeamId, awayTeamId, newHome, newAway, +1)...)
	return deltas
}
