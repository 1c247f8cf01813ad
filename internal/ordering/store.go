// Package ordering keeps the display order of one container (a group, the ungrouped pool, or
// the list of groups) and persists it through one of two write paths.
package ordering

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"replydesk/internal/model"
	"replydesk/internal/perm"

	"github.com/rs/zerolog"
)

type Options struct {
	Domain    model.Domain
	Container model.ContainerID
	Adapter   PersistenceAdapter
	Overrides SessionOverrideStore
	Logger    zerolog.Logger
}

// Store holds the authoritative order of a container (as last synced with the record store)
// and an optional session override layered on top of it.
type Store struct {
	domain    model.Domain
	container model.ContainerID
	adapter   PersistenceAdapter
	overrides SessionOverrideStore
	logger    zerolog.Logger

	mu            sync.Mutex
	authoritative []string
	override      []string // nil when the session has no override
}

func New(opts Options, authoritative []string) *Store {
	return &Store{
		domain:        opts.Domain,
		container:     opts.Container,
		adapter:       opts.Adapter,
		overrides:     opts.Overrides,
		logger:        opts.Logger.With().Str("container", string(opts.Container)).Logger(),
		authoritative: cloneIDs(authoritative),
	}
}

func (s *Store) Container() model.ContainerID { return s.container }

func (s *Store) ScopeKey() string { return ScopeKey(s.domain, s.container) }

// Authoritative returns a copy of the last synced order.
func (s *Store) Authoritative() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneIDs(s.authoritative)
}

// Override returns a copy of the session override, or nil when there is none.
func (s *Store) Override() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.override == nil {
		return nil
	}
	return cloneIDs(s.override)
}

// SetAuthoritative replaces the synced order, as after a refetch.
func (s *Store) SetAuthoritative(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.authoritative = cloneIDs(ids)
}

// View returns the order shown for a write path. The authoritative path shows the synced order;
// the override path shows the override first, then synced items the override does not list.
func (s *Store) View(path perm.WritePath) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if path == perm.WriteAuthoritative || s.override == nil {
		return cloneIDs(s.authoritative)
	}
	return Layer(s.override, s.authoritative)
}

// Reorder moves the item at from to index to within the view for path and returns the new list.
// changed is false when from == to. Nothing is persisted.
func (s *Store) Reorder(path perm.WritePath, from, to int) (ids []string, changed bool, err error) {
	return MoveIndex(s.View(path), from, to)
}

// CommitAuthoritative applies ids as the synced order and writes it to the record store.
// On failure the previous order is restored.
func (s *Store) CommitAuthoritative(ctx context.Context, ids []string) error {
	sc, err := s.StageAuthoritative(ids)
	if err != nil {
		return err
	}
	return sc.Persist(ctx)
}

// StagedCommit is an authoritative order that has been applied in memory but not yet written.
type StagedCommit struct {
	store *Store
	ids   []string
	prev  []string
}

// StageAuthoritative applies ids in memory and returns the pending write.
func (s *Store) StageAuthoritative(ids []string) (*StagedCommit, error) {
	if err := checkIDs("commit", ids); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sc := &StagedCommit{store: s, ids: cloneIDs(ids), prev: s.authoritative}
	s.authoritative = cloneIDs(ids)
	return sc, nil
}

func (sc *StagedCommit) Container() model.ContainerID { return sc.store.container }

// IDs returns the staged order.
func (sc *StagedCommit) IDs() []string { return cloneIDs(sc.ids) }

// Persist writes the staged order as positions 0..n-1. On failure it reverts the in-memory order.
func (sc *StagedCommit) Persist(ctx context.Context) error {
	s := sc.store
	if s.adapter == nil {
		sc.Revert()
		return &PersistenceError{Op: "reorder", Container: s.container, Path: perm.WriteAuthoritative.String(), Err: errors.New("no record store configured")}
	}
	updates := model.PositionUpdates(sc.ids)
	var err error
	if s.container == model.GroupList {
		err = s.adapter.ReorderContainers(ctx, updates)
	} else {
		err = s.adapter.Reorder(ctx, s.container, updates)
	}
	if err != nil {
		sc.Revert()
		s.logger.Warn().Err(err).Int("items", len(sc.ids)).Msg("authoritative reorder failed; reverted")
		return &PersistenceError{Op: "reorder", Container: s.container, Path: perm.WriteAuthoritative.String(), Err: err}
	}
	s.logger.Debug().Int("items", len(sc.ids)).Msg("authoritative reorder persisted")
	return nil
}

// Revert restores the pre-commit order unless a later change already replaced the staged one.
func (sc *StagedCommit) Revert() {
	s := sc.store
	s.mu.Lock()
	defer s.mu.Unlock()
	if equalIDs(s.authoritative, sc.ids) {
		s.authoritative = cloneIDs(sc.prev)
	}
}

// CommitOverride writes ids as {id -> position} to the session store and makes it the override.
// The record store is never touched.
func (s *Store) CommitOverride(ctx context.Context, ids []string) error {
	if err := checkIDs("commit", ids); err != nil {
		return err
	}
	if s.overrides == nil {
		return &PersistenceError{Op: "override", Container: s.container, Path: perm.WriteOverride.String(), Err: errors.New("no session store configured")}
	}
	if err := s.overrides.Set(ctx, s.ScopeKey(), Positions(ids)); err != nil {
		s.logger.Warn().Err(err).Msg("override write failed")
		return &PersistenceError{Op: "override", Container: s.container, Path: perm.WriteOverride.String(), Err: err}
	}
	s.mu.Lock()
	s.override = cloneIDs(ids)
	s.mu.Unlock()
	return nil
}

// LoadOverride reads the session override for this container.
func (s *Store) LoadOverride(ctx context.Context) error {
	if s.overrides == nil {
		return nil
	}
	positions, err := s.overrides.Get(ctx, s.ScopeKey())
	if err != nil {
		return &PersistenceError{Op: "load override", Container: s.container, Path: perm.WriteOverride.String(), Err: err}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if positions == nil {
		s.override = nil
		return nil
	}
	s.override = OrderFromPositions(positions)
	return nil
}

// ResetOverride drops the session override for this container.
func (s *Store) ResetOverride(ctx context.Context) error {
	if s.overrides != nil {
		if err := s.overrides.Clear(ctx, s.ScopeKey()); err != nil {
			return &PersistenceError{Op: "reset override", Container: s.container, Path: perm.WriteOverride.String(), Err: err}
		}
	}
	s.mu.Lock()
	s.override = nil
	s.mu.Unlock()
	return nil
}

// RollbackOverride puts back a previous override (nil clears it) in memory and in the session
// store. It is used when a multi-container override write fails halfway.
func (s *Store) RollbackOverride(ctx context.Context, prev []string) error {
	if prev == nil {
		return s.ResetOverride(ctx)
	}
	return s.CommitOverride(ctx, prev)
}

// MoveIndex removes the item at from and reinserts it so it ends up at index to.
func MoveIndex(ids []string, from, to int) ([]string, bool, error) {
	if from < 0 || from >= len(ids) {
		return nil, false, Invalid("reorder", "from index %d out of range [0,%d)", from, len(ids))
	}
	if to < 0 || to >= len(ids) {
		return nil, false, Invalid("reorder", "to index %d out of range [0,%d)", to, len(ids))
	}
	if from == to {
		return cloneIDs(ids), false, nil
	}
	moved := ids[from]
	rest := make([]string, 0, len(ids)-1)
	rest = append(rest, ids[:from]...)
	rest = append(rest, ids[from+1:]...)

	out := make([]string, 0, len(ids))
	out = append(out, rest[:to]...)
	out = append(out, moved)
	out = append(out, rest[to:]...)
	return out, true, nil
}

// Layer returns override followed by the base items it does not mention.
func Layer(override, base []string) []string {
	listed := make(map[string]bool, len(override))
	out := make([]string, 0, len(base)+len(override))
	for _, id := range override {
		if listed[id] {
			continue
		}
		listed[id] = true
		out = append(out, id)
	}
	for _, id := range base {
		if listed[id] {
			continue
		}
		out = append(out, id)
	}
	return out
}

// Positions expresses an order as {id -> index}.
func Positions(ids []string) map[string]int {
	out := make(map[string]int, len(ids))
	for i, id := range ids {
		out[id] = i
	}
	return out
}

// OrderFromPositions sorts ids by position, then id.
func OrderFromPositions(positions map[string]int) []string {
	out := make([]string, 0, len(positions))
	for id := range positions {
		if strings.TrimSpace(id) == "" {
			continue
		}
		out = append(out, id)
	}
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := positions[out[i]], positions[out[j]]
		if pi != pj {
			return pi < pj
		}
		return out[i] < out[j]
	})
	return out
}

func checkIDs(op string, ids []string) error {
	seen := make(map[string]bool, len(ids))
	for i, id := range ids {
		if strings.TrimSpace(id) == "" {
			return Invalid(op, "blank id at index %d", i)
		}
		if seen[id] {
			return Invalid(op, "duplicate id %s", id)
		}
		seen[id] = true
	}
	return nil
}

func cloneIDs(ids []string) []string {
	out := make([]string, len(ids))
	copy(out, ids)
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
