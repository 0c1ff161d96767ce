package report

// EditSession owns the per-match editing state: the server snapshot
// taken at load time and the working lists the reporter mutates. Each
// open match gets its own session, so edits on one match can never
// bleed into another.
type EditSession struct {
	matchId  string
	version  int64
	snapshot Categorized
	working  Categorized
}

// NewEditSession captures the snapshot as the diff baseline and seeds
// the working lists with a copy of it.
func NewEditSession(matchId string, version int64, snapshot Categorized) *EditSession {
	s := &EditSession{
		matchId:  matchId,
		version:  version,
		snapshot: make(Categorized, len(snapshot)),
		working:  make(Categorized, len(snapshot)),
	}
	for category, events := range snapshot {
		s.snapshot[category] = append([]MatchEvent(nil), events...)
		s.working[category] = append([]MatchEvent(nil), events...)
	}
	return s
}

func (s *EditSession) MatchId() string { return s.matchId }

// Version is the concurrency token captured at load time.
func (s *EditSession) Version() int64 { return s.version }

// Add appends a new row to the working list for its category.
func (s *EditSession) Add(ev MatchEvent) {
	s.working[ev.Category] = append(s.working[ev.Category], ev)
}

// StageRemoval marks the working row identified by server id or local
// key as removed. Staged rows stay visible to the session but are
// treated as gone by reconciliation.
func (s *EditSession) StageRemoval(category Category, key string) bool {
	events := s.working[category]
	for i := range events {
		if (events[i].Id != "" && normalizeId(events[i].Id) == normalizeId(key)) ||
			(events[i].Id == "" && events[i].LocalKey == key) {
			events[i].Removed = true
			return true
		}
	}
	return false
}

// Events returns the working list for a category.
func (s *EditSession) Events(category Category) []MatchEvent {
	return s.working[category]
}

// ChangeSets reconciles the working lists against the snapshot.
func (s *EditSession) ChangeSets() map[Category]ChangeSet {
	return BuildAll(s.snapshot, s.working)
}
