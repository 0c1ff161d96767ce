package client

import (
	"errors"
	"fmt"
)

var (
	// ErrVerificationRequired is raised locally, before any network
	// call, when the caller could verify a side but checked neither.
	ErrVerificationRequired = errors.New("verification required: eligible to verify but no side checked")

	ErrMatchNotFound = errors.New("match not found")

	// ErrCallTimeout means a live call saw no confirmation within the
	// ack window. The update must not be assumed applied; resending is
	// safe.
	ErrCallTimeout = errors.New("live call timed out waiting for confirmation")

	ErrAuthenticationFailed = errors.New("authentication failed")
)

// VersionConflictError mirrors the server's 409: the submission was
// built against a stale snapshot. No silent retry; the caller decides
// what survives a re-fetch.
type VersionConflictError struct {
	CurrentVersion int64
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("report version conflict, current version is %d", e.CurrentVersion)
}

func AsVersionConflict(err error) (*VersionConflictError, bool) {
	var conflict *VersionConflictError
	if errors.As(err, &conflict) {
		return conflict, true
	}
	return nil, false
}

// SubmitError carries a server rejection verbatim.
type SubmitError struct {
	StatusCode int
	Message    string
}

func (e *SubmitError) Error() string {
	return fmt.Sprintf("submit rejected (%d): %s", e.StatusCode, e.Message)
}

// ServerRejectionError is a live-channel rejection, carrying the wire
// code unchanged.
type ServerRejectionError struct {
	Code string
}

func (e *ServerRejectionError) Error() string {
	return fmt.Sprintf("server rejected live call: %s", e.Code)
}
