package mutate

import (
	"context"

	"replydesk/internal/perm"
)

// Result is returned once an operation has been applied in memory. Authoritative writes are
// persisted later by the commit worker; Wait blocks until that finishes.
type Result struct {
	Op      Operation
	Path    perm.WritePath
	Changed bool

	done chan struct{}
	err  error
}

func newResult(op Operation, path perm.WritePath, changed bool) *Result {
	return &Result{Op: op, Path: path, Changed: changed, done: make(chan struct{})}
}

func completedResult(op Operation, path perm.WritePath, changed bool) *Result {
	r := newResult(op, path, changed)
	close(r.done)
	return r
}

func (r *Result) finish(err error) {
	r.err = err
	close(r.done)
}

// Done is closed when persistence has finished.
func (r *Result) Done() <-chan struct{} { return r.done }

// Wait returns the persistence outcome: nil, or a *ordering.PersistenceError joined with any
// *ordering.ConflictError found by the reconciliation refetch.
func (r *Result) Wait(ctx context.Context) error {
	select {
	case <-r.done:
		return r.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
