package mutate

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned by operations on a closed Coordinator.
	ErrClosed = errors.New("coordinator closed")
	// ErrSuperseded is the cause of a PersistenceError for a commit that was queued behind a
	// failed commit; the rollback replaced the state it was built on.
	ErrSuperseded = errors.New("superseded by reconciliation")
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}
