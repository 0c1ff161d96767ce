package report

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildAddedEvent(t *testing.T) {
	initial := []MatchEvent{
		{Id: "1", Category: Goal, SubjectId: "P1", Minute: "10"},
	}
	final := []MatchEvent{
		{Id: "1", Category: Goal, SubjectId: "P1", Minute: "10"},
		{LocalKey: "new-1", Category: Goal, SubjectId: "P2", Minute: "55"},
	}

	cs := Build(initial, final)

	require.Len(t, cs.ToAdd, 1)
	assert.Equal(t, "P2", cs.ToAdd[0].SubjectId)
	assert.Equal(t, "55", cs.ToAdd[0].Minute)
	assert.Empty(t, cs.ToRemove)
}

func TestBuildRemovedEvent(t *testing.T) {
	initial := []MatchEvent{
		{Id: "1", Category: Goal, SubjectId: "P1", Minute: "10"},
	}

	cs := Build(initial, nil)

	assert.Empty(t, cs.ToAdd)
	require.Len(t, cs.ToRemove, 1)
	assert.Equal(t, "1", cs.ToRemove[0].Id)
}

func TestBuildUnchangedIsEmpty(t *testing.T) {
	events := []MatchEvent{
		{Id: "1", Category: Goal, SubjectId: "P1", Minute: "10"},
		{Id: "2", Category: Goal, SubjectId: "P2", Minute: "45+2"},
		{LocalKey: "k3", Category: Goal, SubjectId: "P3"},
	}

	cs := Build(events, events)

	assert.True(t, cs.Empty(), "build(X, X) must yield an empty change-set")
}

func TestBuildExplicitRemovalWins(t *testing.T) {
	initial := []MatchEvent{
		{Id: "7", Category: Goal, SubjectId: "P1", Minute: "30"},
	}
	// Same stored row staged removed, plus a structurally identical new
	// row: the removal must still go through and the new row is an add.
	final := []MatchEvent{
		{Id: "7", Category: Goal, SubjectId: "P1", Minute: "30", Removed: true},
		{LocalKey: "new-1", Category: Goal, SubjectId: "P1", Minute: "30"},
	}

	cs := Build(initial, final)

	require.Len(t, cs.ToRemove, 1)
	assert.Equal(t, "7", cs.ToRemove[0].Id)
	require.Len(t, cs.ToAdd, 1)
	assert.Equal(t, "new-1", cs.ToAdd[0].LocalKey)
}

func TestBuildDisjointAndComplete(t *testing.T) {
	initial := []MatchEvent{
		{Id: "1", Category: Goal, SubjectId: "P1", Minute: "10"},
		{Id: "2", Category: Goal, SubjectId: "P2", Minute: "20"},
	}
	final := []MatchEvent{
		{Id: "2", Category: Goal, SubjectId: "P2", Minute: "20"},
		{LocalKey: "a", Category: Goal, SubjectId: "P4", Minute: "80"},
	}

	cs := Build(initial, final)

	for _, added := range cs.ToAdd {
		for _, removed := range cs.ToRemove {
			assert.False(t, Matches(added, removed), "toAdd and toRemove must be disjoint")
		}
	}
	// Every surviving final event corresponds to an unchanged initial one.
	require.Len(t, cs.ToAdd, 1)
	require.Len(t, cs.ToRemove, 1)
	assert.Equal(t, "1", cs.ToRemove[0].Id)
}

func TestBuildExcludesSubjectlessRows(t *testing.T) {
	final := []MatchEvent{
		{LocalKey: "empty-row", Category: Goal, Minute: "12"},
	}

	cs := Build(nil, final)

	assert.True(t, cs.Empty(), "rows with no subject never become additions")
}

func TestBuildAllKeepsCategoriesApart(t *testing.T) {
	initial := Categorized{
		Goal: {{Id: "1", Category: Goal, SubjectId: "P1", Minute: "10"}},
	}
	final := Categorized{
		Assist: {{LocalKey: "a", Category: Assist, SubjectId: "P1", Minute: "10"}},
	}

	sets := BuildAll(initial, final)

	// The goal is gone and the assist is new; identical subject and
	// minute across categories must not cross-match.
	assert.Len(t, sets[Goal].ToRemove, 1)
	assert.Empty(t, sets[Goal].ToAdd)
	assert.Len(t, sets[Assist].ToAdd, 1)
	assert.Empty(t, sets[Assist].ToRemove)
	assert.True(t, sets[YellowCard].Empty())
	assert.True(t, sets[RedCard].Empty())
	assert.True(t, sets[OwnGoal].Empty())
}

func TestBuildAllIdempotentOnSnapshot(t *testing.T) {
	snapshot := Categorized{
		Goal:       {{Id: "1", Category: Goal, SubjectId: "P1", Minute: "10"}},
		YellowCard: {{Id: "9", Category: YellowCard, SubjectId: "P5", Minute: "71"}},
	}

	sets := BuildAll(snapshot, snapshot)

	for category, cs := range sets {
		assert.True(t, cs.Empty(), "category %s should be unchanged", category)
	}
}

func TestSessionChangeSets(t *testing.T) {
	snapshot := Categorized{
		Goal: {{Id: "1", Category: Goal, SubjectId: "P1", Minute: "10"}},
	}
	session := NewEditSession("m1", 5, snapshot)

	added, err := NewPlayerEvent(Goal, "P2", "55")
	require.NoError(t, err)
	session.Add(added)
	require.True(t, session.StageRemoval(Goal, "1"))

	sets := session.ChangeSets()

	require.Len(t, sets[Goal].ToAdd, 1)
	require.Len(t, sets[Goal].ToRemove, 1)
	assert.Equal(t, "1", sets[Goal].ToRemove[0].Id)

	// The snapshot baseline must stay untouched by session edits.
	want := []MatchEvent{{Id: "1", Category: Goal, SubjectId: "P1", Minute: "10"}}
	if diff := cmp.Diff(want, session.snapshot[Goal]); diff != "" {
		t.Errorf("snapshot mutated (-want +got):\n%s", diff)
	}
}

func TestSessionStageRemovalByLocalKey(t *testing.T) {
	session := NewEditSession("m1", 1, Categorized{})
	ev, err := NewPlayerEvent(Assist, "P3", "")
	require.NoError(t, err)
	session.Add(ev)

	require.True(t, session.StageRemoval(Assist, ev.LocalKey))

	sets := session.ChangeSets()
	assert.True(t, sets[Assist].Empty(), "an added-then-removed row produces no change")
}
