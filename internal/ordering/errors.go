package ordering

import (
	"fmt"
	"strings"

	"replydesk/internal/model"
)

// ValidationError reports a malformed operation. Nothing was changed.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Reason)
}

// Invalid builds a ValidationError.
func Invalid(op, format string, args ...any) error {
	return &ValidationError{Op: op, Reason: fmt.Sprintf(format, args...)}
}

// PersistenceError reports a failed authoritative or override write.
// The in-memory state has been rolled back when this is returned.
type PersistenceError struct {
	Op        string
	Container model.ContainerID
	Path      string
	Err       error
}

func (e *PersistenceError) Error() string {
	if e.Container != "" {
		return fmt.Sprintf("%s %s (%s): %v", e.Op, e.Container, e.Path, e.Err)
	}
	return fmt.Sprintf("%s (%s): %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// ConflictError reports that the record store's order after a refetch differs from the order
// the client attempted to write. The server order has replaced the client order.
type ConflictError struct {
	Container model.ContainerID
	Attempted []string
	Server    []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("conflict in %s: attempted [%s], server has [%s]",
		e.Container, strings.Join(e.Attempted, " "), strings.Join(e.Server, " "))
}
