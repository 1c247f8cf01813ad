package mutate

import (
	"context"
	"errors"

	"replydesk/internal/model"
	"replydesk/internal/ordering"
	"replydesk/internal/perm"
)

// job is one queued authoritative write (or a queued reload).
type job struct {
	ctx    context.Context
	gen    uint64
	reload bool
	result *Result

	// snapshot is the state before the operation; restored when persist fails.
	snapshot  *snapshot
	attempted map[model.ContainerID][]string
	persist   func(ctx context.Context) error
}

type snapshot struct {
	orders    map[model.ContainerID][]string
	groupList []string
	groups    map[string]model.Group
	templates map[string]model.Template
}

func (c *Coordinator) snapshotLocked() *snapshot {
	s := &snapshot{
		orders:    make(map[model.ContainerID][]string, len(c.containers)),
		groupList: c.groupList.Authoritative(),
		groups:    make(map[string]model.Group, len(c.groups)),
		templates: make(map[string]model.Template, len(c.templates)),
	}
	for id, st := range c.containers {
		s.orders[id] = st.Authoritative()
	}
	for id, g := range c.groups {
		s.groups[id] = g
	}
	for id, t := range c.templates {
		s.templates[id] = t
	}
	return s
}

func (c *Coordinator) restoreLocked(s *snapshot) {
	for id, ids := range s.orders {
		if st, ok := c.containers[id]; ok {
			st.SetAuthoritative(ids)
		}
	}
	c.groupList.SetAuthoritative(s.groupList)
	c.groups = s.groups
	c.templates = s.templates
}

// enqueueLocked queues an authoritative write. The caller holds c.mu, so queue order is
// gesture order.
func (c *Coordinator) enqueueLocked(ctx context.Context, r *Result, snap *snapshot, attempted map[model.ContainerID][]string, persist func(context.Context) error) {
	c.queue = append(c.queue, &job{
		ctx:       ctx,
		gen:       c.gen,
		result:    r,
		snapshot:  snap,
		attempted: attempted,
		persist:   persist,
	})
}

func (c *Coordinator) signal() {
	select {
	case c.wake <- struct{}{}:
	default:
	}
}

func (c *Coordinator) worker() {
	defer c.wg.Done()
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			closed := c.closed
			c.mu.Unlock()
			if closed {
				return
			}
			<-c.wake
			continue
		}
		j := c.queue[0]
		c.queue[0] = nil
		c.queue = c.queue[1:]
		c.mu.Unlock()

		c.run(j)
	}
}

func (c *Coordinator) run(j *job) {
	if j.reload {
		conflicts, err := c.refetch(j.ctx, nil)
		j.result.finish(errors.Join(append([]error{err}, conflicts...)...))
		return
	}

	c.mu.Lock()
	stale := j.gen != c.gen
	c.mu.Unlock()
	if stale {
		j.result.finish(&ordering.PersistenceError{
			Op:        string(j.result.Op.Kind),
			Container: j.result.Op.To,
			Path:      perm.WriteAuthoritative.String(),
			Err:       ErrSuperseded,
		})
		return
	}

	err := j.persist(j.ctx)
	if err == nil {
		j.result.finish(nil)
		return
	}

	var perr *ordering.PersistenceError
	if !errors.As(err, &perr) {
		err = &ordering.PersistenceError{Op: string(j.result.Op.Kind), Container: j.result.Op.To, Path: perm.WriteAuthoritative.String(), Err: err}
	}
	c.logger.Warn().Err(err).Str("op", string(j.result.Op.Kind)).Msg("authoritative commit failed; reverting and reconciling")

	c.mu.Lock()
	c.restoreLocked(j.snapshot)
	c.gen++
	c.mu.Unlock()

	// Reconcile even when the caller's context is gone.
	conflicts, rerr := c.refetch(context.WithoutCancel(j.ctx), j.attempted)
	if rerr != nil {
		c.logger.Error().Err(rerr).Msg("reconciliation refetch failed")
	}
	j.result.finish(errors.Join(append([]error{err, rerr}, conflicts...)...))
}
