package report

// ChangeSet is the reconciliation result for one event category. ToAdd
// and ToRemove are disjoint; an unchanged stored event appears in
// neither.
type ChangeSet struct {
	ToAdd    []MatchEvent `json:"toAdd"`
	ToRemove []MatchEvent `json:"toRemove"`
}

func (cs ChangeSet) Empty() bool {
	return len(cs.ToAdd) == 0 && len(cs.ToRemove) == 0
}

// Categorized holds event lists keyed by category. Categories never
// cross-match during reconciliation.
type Categorized map[Category][]MatchEvent

// Build diffs one category's server snapshot against the edited list.
// Rows missing a subject are excluded from the final list entirely, so
// empty form rows never become additions. Events explicitly staged
// removed land in ToRemove regardless of any structural counterpart:
// a user can remove an old row and leave a similar new one.
func Build(initial, final []MatchEvent) ChangeSet {
	var cs ChangeSet

	for _, ev := range final {
		if ev.Removed || ev.SubjectId == "" {
			continue
		}
		if !containsMatch(initial, ev) {
			cs.ToAdd = append(cs.ToAdd, ev)
		}
	}

	for _, ev := range initial {
		if ev.SubjectId == "" {
			continue
		}
		if !matchedInFinal(final, ev) {
			cs.ToRemove = append(cs.ToRemove, ev)
		}
	}

	return cs
}

// BuildAll runs Build once per category independently.
func BuildAll(initial, final Categorized) map[Category]ChangeSet {
	sets := make(map[Category]ChangeSet, len(Categories))
	for _, category := range Categories {
		sets[category] = Build(initial[category], final[category])
	}
	return sets
}

func containsMatch(events []MatchEvent, target MatchEvent) bool {
	for _, ev := range events {
		if Matches(ev, target) {
			return true
		}
	}
	return false
}

// matchedInFinal reports whether a snapshot event survives in the edited
// list. An explicit removal of the same identity wins over any
// structural match elsewhere in the list.
func matchedInFinal(final []MatchEvent, initial MatchEvent) bool {
	for _, ev := range final {
		if ev.Removed && ev.Id != "" && initial.Id != "" &&
			normalizeId(ev.Id) == normalizeId(initial.Id) {
			return false
		}
	}
	for _, ev := range final {
		if Matches(ev, initial) {
			return true
		}
	}
	return false
}
