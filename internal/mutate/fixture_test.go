package mutate

import (
	"context"
	"errors"
	"sync"
	"testing"

	"replydesk/internal/model"
	"replydesk/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory record store: the persistence adapter and the record source
// share its state, so a refetch sees exactly what was written.
type fakeBackend struct {
	mu        sync.Mutex
	groups    map[string]model.Group
	templates map[string]model.Template
	fail      error
	gate      chan struct{}
	writes    int
	lists     int
}

func strPtr(s string) *string { return &s }

func newFakeBackend() *fakeBackend {
	b := &fakeBackend{groups: map[string]model.Group{}, templates: map[string]model.Template{}}
	b.groups["g1"] = model.Group{ID: "g1", Domain: model.DomainReplies, Name: "Billing", OrderIndex: 0, Active: true}
	b.groups["g2"] = model.Group{ID: "g2", Domain: model.DomainReplies, Name: "Shipping", OrderIndex: 1, Active: true}
	for _, t := range []model.Template{
		{ID: "a", GroupID: strPtr("g1"), Position: 0},
		{ID: "b", GroupID: strPtr("g1"), Position: 1},
		{ID: "c", GroupID: strPtr("g2"), Position: 0},
		{ID: "u", Position: 0},
	} {
		t.Domain = model.DomainReplies
		t.Title = "Template " + t.ID
		t.Bodies = []model.LocalizedBody{{Locale: "en", Body: "Hi {name}"}}
		b.templates[t.ID] = t
	}
	return b
}

func (b *fakeBackend) wait() {
	b.mu.Lock()
	gate := b.gate
	b.mu.Unlock()
	if gate != nil {
		<-gate
	}
}

func (b *fakeBackend) Reorder(ctx context.Context, container model.ContainerID, updates []model.PositionUpdate) error {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes++
	if b.fail != nil {
		return b.fail
	}
	for _, u := range updates {
		t, ok := b.templates[u.ID]
		if !ok || t.Container() != container {
			return errors.New("template " + u.ID + " not in " + string(container))
		}
		t.Position = u.OrderIndex
		b.templates[u.ID] = t
	}
	return nil
}

func (b *fakeBackend) MoveItem(ctx context.Context, itemID string, target *string) error {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes++
	if b.fail != nil {
		return b.fail
	}
	t, ok := b.templates[itemID]
	if !ok {
		return errors.New("no template " + itemID)
	}
	if target != nil {
		gid := *target
		t.GroupID = &gid
	} else {
		t.GroupID = nil
	}
	b.templates[itemID] = t
	return nil
}

func (b *fakeBackend) ReorderContainers(ctx context.Context, updates []model.PositionUpdate) error {
	b.wait()
	b.mu.Lock()
	defer b.mu.Unlock()
	b.writes++
	if b.fail != nil {
		return b.fail
	}
	for _, u := range updates {
		g := b.groups[u.ID]
		g.OrderIndex = u.OrderIndex
		b.groups[u.ID] = g
	}
	return nil
}

func (b *fakeBackend) ListGroups(ctx context.Context, domain model.Domain) ([]model.Group, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lists++
	out := make([]model.Group, 0, len(b.groups))
	for _, g := range b.groups {
		out = append(out, g)
	}
	return out, nil
}

func (b *fakeBackend) ListTemplates(ctx context.Context, domain model.Domain) ([]model.Template, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.Template, 0, len(b.templates))
	for _, t := range b.templates {
		out = append(out, t)
	}
	return out, nil
}

func (b *fakeBackend) writeCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writes
}

func (b *fakeBackend) listCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lists
}

func (b *fakeBackend) template(id string) model.Template {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.templates[id]
}

var (
	adminOnAdmin = Scope{Actor: model.Actor{ID: "act-admin", Privilege: model.PrivilegeAdmin}, Surface: model.SurfaceAdmin}
	adminOnHome  = Scope{Actor: model.Actor{ID: "act-admin", Privilege: model.PrivilegeAdmin}, Surface: model.SurfaceHome}
	agentOnAdmin = Scope{Actor: model.Actor{ID: "act-agent", Privilege: model.PrivilegeAgent}, Surface: model.SurfaceAdmin}
	agentOnHome  = Scope{Actor: model.Actor{ID: "act-agent", Privilege: model.PrivilegeAgent}, Surface: model.SurfaceHome}
)

func newTestCoordinator(t *testing.T, backend *fakeBackend, overrides store.Overrides) *Coordinator {
	t.Helper()
	if overrides == nil {
		overrides = store.NewMemoryOverrides()
	}
	c, err := New(context.Background(), Options{
		Domain:    model.DomainReplies,
		Adapter:   backend,
		Source:    backend,
		Overrides: overrides,
		Logger:    zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func laneIDs(t *testing.T, b *Board, id model.ContainerID) []string {
	t.Helper()
	l, ok := b.Lane(id)
	require.True(t, ok, "lane %s", id)
	return l.IDs()
}

// failingOverrides fails every Set after the first okSets calls.
type failingOverrides struct {
	*store.MemoryOverrides
	mu     sync.Mutex
	okSets int
}

func (f *failingOverrides) Set(ctx context.Context, scope string, positions map[string]int) error {
	f.mu.Lock()
	if f.okSets <= 0 {
		f.mu.Unlock()
		return errors.New("session store unavailable")
	}
	f.okSets--
	f.mu.Unlock()
	return f.MemoryOverrides.Set(ctx, scope, positions)
}
