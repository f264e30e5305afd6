package sync

import (
	"errors"
	"fmt"
)

// Sentinel errors callers can branch on with errors.Is.
var (
	// ErrNoConnection is returned when a sync is attempted offline without force
	ErrNoConnection = errors.New("no connection to remote authority")
	// ErrSyncInFlight is returned when a sync is already running for this user
	ErrSyncInFlight = errors.New("sync already in progress")
)

// FetchError wraps a transport or server failure for one entity type.
// Fetch errors are retryable; the orchestrator backs off and tries again
// before surfacing them.
type FetchError struct {
	Entity string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to sync %s: %v", e.Entity, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }
