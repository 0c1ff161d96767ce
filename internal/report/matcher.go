package report

import "strings"

// Matches decides whether two events represent the same occurrence.
// Server identities win over local keys, local keys over structure.
// An event staged for removal never matches anything, so it cannot be
// counted as still present.
func Matches(a, b MatchEvent) bool {
	if a.Removed || b.Removed {
		return false
	}
	if a.Id != "" || b.Id != "" {
		// A stored event only ever equals another stored event. Without
		// this, a fresh row structurally identical to a stored one would
		// be swallowed instead of added.
		return a.Id != "" && b.Id != "" && normalizeId(a.Id) == normalizeId(b.Id)
	}
	if a.LocalKey != "" && b.LocalKey != "" {
		return a.LocalKey == b.LocalKey
	}
	// Best-effort structural match for rows that have neither form of
	// identity, only meaningful within a single editing session.
	return a.SubjectId == b.SubjectId && a.Minute == b.Minute
}

func normalizeId(id string) string {
	return strings.TrimSpace(id)
}
