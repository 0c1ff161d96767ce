package storage

import (
	"errors"
	"fmt"
)

var ErrMatchNotFound = errors.New("match not found")

// VersionConflictError reports a compare-and-swap failure on a match
// record, carrying the version currently stored so the caller can
// re-fetch and retry deliberately.
type VersionConflictError struct {
	MatchId        string
	CurrentVersion int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf(
		"version conflict on match %s: stored version is %d",
		e.MatchId, e.CurrentVersion,
	)
}

func AsVersionConflict(err error) (*VersionConflictError, bool) {
	var conflict *VersionConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}
