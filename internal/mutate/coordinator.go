// Package mutate owns group membership and ordering changes for one domain of templates.
// Every change is applied in memory first; authoritative writes are then persisted in gesture
// order by a single commit worker.
package mutate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"replydesk/internal/model"
	"replydesk/internal/ordering"
	"replydesk/internal/perm"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// RecordSource is the read side of the record store, used for initial load and reconciliation.
type RecordSource interface {
	ListGroups(ctx context.Context, domain model.Domain) ([]model.Group, error)
	ListTemplates(ctx context.Context, domain model.Domain) ([]model.Template, error)
}

type Options struct {
	Domain    model.Domain
	Adapter   ordering.PersistenceAdapter
	Source    RecordSource
	Overrides ordering.SessionOverrideStore
	Logger    zerolog.Logger
}

// Scope carries who is acting and from which surface. It selects the write path.
type Scope struct {
	Actor   model.Actor
	Surface model.Surface
}

func (s Scope) WritePath() perm.WritePath {
	return perm.SelectWritePath(s.Actor, s.Surface)
}

type Coordinator struct {
	domain    model.Domain
	adapter   ordering.PersistenceAdapter
	source    RecordSource
	overrides ordering.SessionOverrideStore
	logger    zerolog.Logger

	mu         sync.Mutex
	groups     map[string]model.Group
	templates  map[string]model.Template
	containers map[model.ContainerID]*ordering.Store
	groupList  *ordering.Store
	gen        uint64
	queue      []*job
	closed     bool

	wake chan struct{}
	wg   sync.WaitGroup
}

// New loads groups, templates and session overrides for opts.Domain and starts the commit
// worker. Close must be called to stop it.
func New(ctx context.Context, opts Options) (*Coordinator, error) {
	if opts.Source == nil {
		return nil, errors.New("mutate: missing record source")
	}
	if opts.Domain == "" {
		opts.Domain = model.DomainReplies
	}
	c := &Coordinator{
		domain:     opts.Domain,
		adapter:    opts.Adapter,
		source:     opts.Source,
		overrides:  opts.Overrides,
		logger:     opts.Logger.With().Str("domain", string(opts.Domain)).Logger(),
		groups:     map[string]model.Group{},
		templates:  map[string]model.Template{},
		containers: map[model.ContainerID]*ordering.Store{},
		wake:       make(chan struct{}, 1),
	}
	c.groupList = c.newStore(model.GroupList, nil)
	if err := c.groupList.LoadOverride(ctx); err != nil {
		return nil, err
	}
	if _, err := c.refetch(ctx, nil); err != nil {
		return nil, err
	}
	c.wg.Add(1)
	go c.worker()
	return c, nil
}

// Close waits for queued commits to finish and stops the worker.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()
	c.signal()
	c.wg.Wait()
	return nil
}

func (c *Coordinator) Domain() model.Domain { return c.domain }

// Template returns the template as last synced with the record store.
func (c *Coordinator) Template(id string) (model.Template, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	t, ok := c.templates[id]
	return t, ok
}

// Reload refetches groups and templates; the record store's state replaces the client's.
// It is queued behind pending commits. Changes made after it was queued are kept and still
// committed.
func (c *Coordinator) Reload(ctx context.Context) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	j := &job{ctx: ctx, gen: c.gen, reload: true, result: newResult(Operation{Kind: OpReload}, perm.WriteAuthoritative, false)}
	c.queue = append(c.queue, j)
	c.mu.Unlock()
	c.signal()
	return j.result.Wait(ctx)
}

// ResetOverrides clears the session overrides of every container (or only of the given ones).
func (c *Coordinator) ResetOverrides(ctx context.Context, containers ...model.ContainerID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(containers) == 0 {
		containers = append(c.containerIDsLocked(), model.GroupList)
	}
	var errs []error
	for _, id := range containers {
		st := c.storeLocked(id)
		if st == nil {
			errs = append(errs, ordering.Invalid("reset", "%v", NotFoundError{Kind: "container", ID: string(id)}))
			continue
		}
		if err := st.ResetOverride(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Coordinator) newStore(id model.ContainerID, ids []string) *ordering.Store {
	return ordering.New(ordering.Options{
		Domain:    c.domain,
		Container: id,
		Adapter:   c.adapter,
		Overrides: c.overrides,
		Logger:    c.logger,
	}, ids)
}

func (c *Coordinator) storeLocked(id model.ContainerID) *ordering.Store {
	if id == model.GroupList {
		return c.groupList
	}
	return c.containers[id]
}

// containerIDsLocked returns group containers in authoritative order, then the ungrouped pool.
func (c *Coordinator) containerIDsLocked() []model.ContainerID {
	ids := c.groupList.Authoritative()
	out := make([]model.ContainerID, 0, len(ids)+1)
	for _, id := range ids {
		out = append(out, model.ContainerID(id))
	}
	return append(out, model.Ungrouped)
}

// refetch loads the record store's state and replaces the client's wholesale. attempted holds
// the orders a failed commit tried to write; containers whose server order differs are
// reported as conflicts.
func (c *Coordinator) refetch(ctx context.Context, attempted map[model.ContainerID][]string) ([]error, error) {
	var (
		groups    []model.Group
		templates []model.Template
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		groups, err = c.source.ListGroups(gctx, c.domain)
		return err
	})
	g.Go(func() error {
		var err error
		templates, err = c.source.ListTemplates(gctx, c.domain)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("reconcile %s: %w", c.domain, err)
	}

	c.mu.Lock()
	pending := c.pendingOrdersLocked()
	added := c.applyLocked(groups, templates)
	var conflicts []error
	for id, want := range attempted {
		st := c.storeLocked(id)
		if st == nil {
			continue
		}
		if server := st.Authoritative(); !equalIDs(want, server) {
			conflicts = append(conflicts, &ordering.ConflictError{Container: id, Attempted: want, Server: server})
		}
	}
	c.keepPendingLocked(pending)
	c.mu.Unlock()

	var errs []error
	for _, st := range added {
		if err := st.LoadOverride(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	sort.Slice(conflicts, func(i, j int) bool {
		return conflicts[i].(*ordering.ConflictError).Container < conflicts[j].(*ordering.ConflictError).Container
	})
	return conflicts, errors.Join(errs...)
}

// pendingOrdersLocked returns the current order of every container a queued, still valid
// commit is going to write. Those orders are applied in memory but not yet persisted.
func (c *Coordinator) pendingOrdersLocked() map[model.ContainerID][]string {
	pending := map[model.ContainerID][]string{}
	for _, j := range c.queue {
		if j.reload || j.gen != c.gen {
			continue
		}
		for id := range j.attempted {
			if _, ok := pending[id]; ok {
				continue
			}
			if st := c.storeLocked(id); st != nil {
				pending[id] = st.Authoritative()
			}
		}
	}
	return pending
}

// keepPendingLocked lays the pending orders back over a freshly applied snapshot so queued
// gestures stay visible until their commits run. Ids the record store no longer knows are
// dropped; ids no pending order claims stay where the record store put them.
func (c *Coordinator) keepPendingLocked(pending map[model.ContainerID][]string) {
	if staged, ok := pending[model.GroupList]; ok {
		delete(pending, model.GroupList)
		order := make([]string, 0, len(c.groups))
		seen := map[string]bool{}
		for _, id := range staged {
			if _, ok := c.groups[id]; ok && !seen[id] {
				seen[id] = true
				order = append(order, id)
			}
		}
		for _, id := range c.groupList.Authoritative() {
			if !seen[id] {
				order = append(order, id)
			}
		}
		c.groupList.SetAuthoritative(order)
		for i, id := range order {
			g := c.groups[id]
			g.OrderIndex = i
			c.groups[id] = g
		}
	}

	claim := map[string]model.ContainerID{}
	for cid, ids := range pending {
		if _, ok := c.containers[cid]; !ok {
			delete(pending, cid)
			continue
		}
		for _, id := range ids {
			if _, ok := c.templates[id]; ok {
				claim[id] = cid
			}
		}
	}
	if len(pending) == 0 {
		return
	}
	for cid, st := range c.containers {
		server := st.Authoritative()
		staged := pending[cid]
		out := make([]string, 0, len(server)+len(staged))
		for _, id := range staged {
			if claim[id] == cid {
				out = append(out, id)
			}
		}
		for _, id := range server {
			if _, claimed := claim[id]; !claimed {
				out = append(out, id)
			}
		}
		st.SetAuthoritative(out)
	}
	for id, cid := range claim {
		t := c.templates[id]
		t.GroupID = model.GroupIDFor(cid)
		c.templates[id] = t
	}
}

// applyLocked installs a fresh snapshot. Existing stores keep their session overrides; stores
// for new containers are returned so their overrides can be loaded.
func (c *Coordinator) applyLocked(groups []model.Group, templates []model.Template) []*ordering.Store {
	c.groups = map[string]model.Group{}
	for _, g := range groups {
		if err := g.Validate(); err != nil {
			c.logger.Warn().Err(err).Str("group", g.ID).Msg("skipping invalid group")
			continue
		}
		if g.Domain != "" && g.Domain != c.domain {
			continue
		}
		if _, dup := c.groups[g.ID]; dup {
			c.logger.Warn().Str("group", g.ID).Msg("skipping duplicate group")
			continue
		}
		c.groups[g.ID] = g
	}
	c.groupList.SetAuthoritative(sortedGroupIDs(c.groups))

	c.templates = map[string]model.Template{}
	members := map[model.ContainerID][]model.Template{model.Ungrouped: nil}
	for id := range c.groups {
		members[model.ContainerID(id)] = nil
	}
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			c.logger.Warn().Err(err).Str("template", t.ID).Msg("skipping invalid template")
			continue
		}
		if t.Domain != "" && t.Domain != c.domain {
			continue
		}
		if _, dup := c.templates[t.ID]; dup {
			c.logger.Warn().Str("template", t.ID).Msg("skipping duplicate template")
			continue
		}
		cid := t.Container()
		if _, ok := members[cid]; !ok {
			c.logger.Warn().Str("template", t.ID).Str("group", string(cid)).Msg("skipping template in unknown group")
			continue
		}
		c.templates[t.ID] = t
		members[cid] = append(members[cid], t)
	}

	var added []*ordering.Store
	for cid, ts := range members {
		ids := sortedTemplateIDs(ts)
		if st, ok := c.containers[cid]; ok {
			st.SetAuthoritative(ids)
			continue
		}
		st := c.newStore(cid, ids)
		c.containers[cid] = st
		added = append(added, st)
	}
	for cid := range c.containers {
		if _, ok := members[cid]; !ok {
			delete(c.containers, cid)
		}
	}
	return added
}

func sortedGroupIDs(groups map[string]model.Group) []string {
	list := make([]model.Group, 0, len(groups))
	for _, g := range groups {
		list = append(list, g)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].OrderIndex != list[j].OrderIndex {
			return list[i].OrderIndex < list[j].OrderIndex
		}
		return list[i].ID < list[j].ID
	})
	out := make([]string, 0, len(list))
	for _, g := range list {
		out = append(out, g.ID)
	}
	return out
}

// sortedTemplateIDs orders by container position, then global position, then id.
func sortedTemplateIDs(ts []model.Template) []string {
	sort.Slice(ts, func(i, j int) bool {
		if ts[i].Position != ts[j].Position {
			return ts[i].Position < ts[j].Position
		}
		if ts[i].GlobalPosition != ts[j].GlobalPosition {
			return ts[i].GlobalPosition < ts[j].GlobalPosition
		}
		return ts[i].ID < ts[j].ID
	})
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
