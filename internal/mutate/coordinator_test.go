package mutate

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"replydesk/internal/model"
	"replydesk/internal/ordering"
	"replydesk/internal/perm"
	"replydesk/internal/store"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (b *fakeBackend) setGate(ch chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.gate = ch
}

func (b *fakeBackend) setFail(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fail = err
}

func allIDs(b *Board) []string {
	var out []string
	for _, l := range b.Groups {
		out = append(out, l.IDs()...)
	}
	out = append(out, b.Ungrouped.IDs()...)
	sort.Strings(out)
	return out
}

func TestMoveItem_AuthoritativeAppendToOtherGroup(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newFakeBackend()
	c := newTestCoordinator(t, backend, nil)

	r, err := c.MoveItem(ctx, adminOnAdmin, "a", "g1", "g2", nil)
	require.NoError(t, err)
	assert.Equal(t, perm.WriteAuthoritative, r.Path)

	board := c.Board(perm.WriteAuthoritative)
	assert.Equal(t, []string{"b"}, laneIDs(t, board, "g1"))
	assert.Equal(t, []string{"c", "a"}, laneIDs(t, board, "g2"))
	assert.Equal(t, []string{"a", "b", "c", "u"}, allIDs(board), "no item duplicated or lost")

	tpl, ok := c.Template("a")
	require.True(t, ok)
	require.NotNil(t, tpl.GroupID)
	assert.Equal(t, "g2", *tpl.GroupID)

	require.NoError(t, r.Wait(ctx))
	assert.Equal(t, 3, backend.writeCount(), "move + reorder target + reorder source")
	stored := backend.template("a")
	require.NotNil(t, stored.GroupID)
	assert.Equal(t, "g2", *stored.GroupID)
	assert.Equal(t, 1, stored.Position)
	assert.Equal(t, 0, backend.template("b").Position)
}

func TestReorderWithinContainer_ThreeItems(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newFakeBackend()
	backend.templates["b"] = withPosition(backend.templates["b"], 0)
	backend.templates["a"] = withPosition(backend.templates["a"], 1)
	backend.templates["d"] = model.Template{ID: "d", Domain: model.DomainReplies, GroupID: strPtr("g1"), Position: 2}
	c := newTestCoordinator(t, backend, nil)

	before, err := c.View(perm.WriteAuthoritative, "g1")
	require.NoError(t, err)
	require.Equal(t, []string{"b", "a", "d"}, before)

	r, err := c.ReorderWithinContainer(ctx, adminOnAdmin, "g1", 0, 2)
	require.NoError(t, err)
	require.NoError(t, r.Wait(ctx))

	after, err := c.View(perm.WriteAuthoritative, "g1")
	require.NoError(t, err)
	if diff := cmp.Diff([]string{"a", "d", "b"}, after); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "b", r.Op.ItemID)
	assert.Equal(t, 2, backend.template("b").Position)
	assert.Equal(t, 0, backend.template("a").Position)
}

func withPosition(t model.Template, pos int) model.Template {
	t.Position = pos
	return t
}

func TestReorder_SameIndexIsNoop(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newFakeBackend()
	c := newTestCoordinator(t, backend, nil)

	r, err := c.ReorderWithinContainer(ctx, adminOnAdmin, "g1", 1, 1)
	require.NoError(t, err)
	assert.False(t, r.Changed)
	require.NoError(t, r.Wait(ctx))
	assert.Equal(t, 0, backend.writeCount())
}

func TestOverridePath_NeverReachesRecordStore(t *testing.T) {
	t.Parallel()

	for name, scope := range map[string]Scope{
		"admin on home":  adminOnHome,
		"agent on home":  agentOnHome,
		"agent on admin": agentOnAdmin,
	} {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			ctx := context.Background()
			backend := newFakeBackend()
			c := newTestCoordinator(t, backend, nil)
			initial := c.Board(perm.WriteAuthoritative)

			r, err := c.ReorderWithinContainer(ctx, scope, "g1", 0, 1)
			require.NoError(t, err)
			assert.Equal(t, perm.WriteOverride, r.Path)
			require.NoError(t, r.Wait(ctx))

			r, err = c.MoveItem(ctx, scope, "u", model.Ungrouped, "g2", nil)
			require.NoError(t, err)
			require.NoError(t, r.Wait(ctx))

			r, err = c.ReorderContainers(ctx, scope, 0, 1)
			require.NoError(t, err)
			require.NoError(t, r.Wait(ctx))

			assert.Equal(t, 0, backend.writeCount())
			require.NoError(t, c.Reload(ctx))
			if diff := cmp.Diff(initial, c.Board(perm.WriteAuthoritative), cmp.AllowUnexported(Board{})); diff != "" {
				t.Fatalf("authoritative board changed (-want +got):\n%s", diff)
			}

			ob := c.Board(perm.WriteOverride)
			assert.Equal(t, []string{"g2", "g1"}, []string{string(ob.Groups[0].Container), string(ob.Groups[1].Container)})
			assert.Equal(t, []string{"b", "a"}, laneIDs(t, ob, "g1"))
			assert.Equal(t, []string{"c", "u"}, laneIDs(t, ob, "g2"))
			assert.Empty(t, laneIDs(t, ob, model.Ungrouped))
		})
	}
}

func TestAuthoritativeFailure_RevertsAndRefetches(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newFakeBackend()
	c := newTestCoordinator(t, backend, nil)
	listsBefore := backend.listCount()

	gate := make(chan struct{})
	backend.setGate(gate)
	boom := errors.New("503 service unavailable")
	backend.setFail(boom)

	r, err := c.ReorderWithinContainer(ctx, adminOnAdmin, "g1", 0, 1)
	require.NoError(t, err)
	got, err := c.View(perm.WriteAuthoritative, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, got, "applied before persistence resolves")

	close(gate)
	err = r.Wait(ctx)
	require.Error(t, err)

	var perr *ordering.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "authoritative", perr.Path)
	assert.ErrorIs(t, err, boom)

	var cerr *ordering.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, model.ContainerID("g1"), cerr.Container)
	assert.Equal(t, []string{"b", "a"}, cerr.Attempted)
	assert.Equal(t, []string{"a", "b"}, cerr.Server)

	got, err = c.View(perm.WriteAuthoritative, "g1")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, listsBefore+1, backend.listCount(), "reconciliation refetch issued")
}

func TestAuthoritativeFailure_RevertsMove(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newFakeBackend()
	backend.setFail(errors.New("timeout"))
	c := newTestCoordinator(t, backend, nil)

	r, err := c.MoveItem(ctx, adminOnAdmin, "a", "g1", "g2", nil)
	require.NoError(t, err)
	require.Error(t, r.Wait(ctx))

	board := c.Board(perm.WriteAuthoritative)
	assert.Equal(t, []string{"a", "b"}, laneIDs(t, board, "g1"))
	assert.Equal(t, []string{"c"}, laneIDs(t, board, "g2"))
	tpl, _ := c.Template("a")
	require.NotNil(t, tpl.GroupID)
	assert.Equal(t, "g1", *tpl.GroupID)
}

func TestAuthoritativeFailure_SupersedesQueuedCommits(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newFakeBackend()
	c := newTestCoordinator(t, backend, nil)

	gate := make(chan struct{})
	backend.setGate(gate)
	backend.setFail(errors.New("connection reset"))

	r1, err := c.ReorderWithinContainer(ctx, adminOnAdmin, "g1", 0, 1)
	require.NoError(t, err)
	r2, err := c.ReorderContainers(ctx, adminOnAdmin, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"g2", "g1"}, mustView(t, c, perm.WriteAuthoritative, model.GroupList))

	close(gate)
	require.Error(t, r1.Wait(ctx))
	err = r2.Wait(ctx)
	require.ErrorIs(t, err, ErrSuperseded)

	assert.Equal(t, []string{"g1", "g2"}, mustView(t, c, perm.WriteAuthoritative, model.GroupList))
	assert.Equal(t, 1, backend.writeCount())
}

func TestCommitsRunInGestureOrder(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newFakeBackend()
	c := newTestCoordinator(t, backend, nil)

	gate := make(chan struct{})
	backend.setGate(gate)
	var results []*Result
	for i := 0; i < 3; i++ {
		r, err := c.ReorderWithinContainer(ctx, adminOnAdmin, "g1", 0, 1)
		require.NoError(t, err)
		results = append(results, r)
	}
	close(gate)
	for _, r := range results {
		require.NoError(t, r.Wait(ctx))
	}
	assert.Equal(t, []string{"b", "a"}, mustView(t, c, perm.WriteAuthoritative, "g1"))
	assert.Equal(t, 0, backend.template("b").Position)
	assert.Equal(t, 1, backend.template("a").Position)
}

func mustView(t *testing.T, c *Coordinator, path perm.WritePath, id model.ContainerID) []string {
	t.Helper()
	ids, err := c.View(path, id)
	require.NoError(t, err)
	return ids
}

func TestReorderContainers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newFakeBackend()
	c := newTestCoordinator(t, backend, nil)

	r, err := c.ReorderContainers(ctx, adminOnAdmin, 1, 0)
	require.NoError(t, err)
	require.NoError(t, r.Wait(ctx))

	board := c.Board(perm.WriteAuthoritative)
	require.Len(t, board.Groups, 2)
	assert.Equal(t, model.ContainerID("g2"), board.Groups[0].Container)
	assert.Equal(t, 0, board.Groups[0].Group.OrderIndex)
	assert.Equal(t, model.Ungrouped, board.Ungrouped.Container)

	backend.mu.Lock()
	assert.Equal(t, 0, backend.groups["g2"].OrderIndex)
	assert.Equal(t, 1, backend.groups["g1"].OrderIndex)
	backend.mu.Unlock()

	_, err = c.ReorderContainers(ctx, adminOnAdmin, 0, 2)
	var verr *ordering.ValidationError
	require.ErrorAs(t, err, &verr, "ungrouped pool is not part of the group list")
}

func TestOverrideMove_PersistsInSessionStore(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newFakeBackend()
	overrides := store.NewMemoryOverrides()
	c1 := newTestCoordinator(t, backend, overrides)

	at := 0
	r, err := c1.MoveItem(ctx, agentOnHome, "a", "g1", "g2", &at)
	require.NoError(t, err)
	require.NoError(t, r.Wait(ctx))

	ob := c1.Board(perm.WriteOverride)
	assert.Equal(t, []string{"b"}, laneIDs(t, ob, "g1"))
	assert.Equal(t, []string{"a", "c"}, laneIDs(t, ob, "g2"))
	lane, _ := ob.Lane("g2")
	require.NotNil(t, lane.Templates[0].GroupID)
	assert.Equal(t, "g2", *lane.Templates[0].GroupID)

	ab := c1.Board(perm.WriteAuthoritative)
	assert.Equal(t, []string{"a", "b"}, laneIDs(t, ab, "g1"))

	scopes, err := overrides.Scopes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"replies:g1", "replies:g2"}, scopes)

	c2 := newTestCoordinator(t, backend, overrides)
	ob2 := c2.Board(perm.WriteOverride)
	assert.Equal(t, laneIDs(t, ob, "g2"), laneIDs(t, ob2, "g2"))
	assert.Equal(t, laneIDs(t, ob, "g1"), laneIDs(t, ob2, "g1"))

	r, err = c2.MoveItem(ctx, agentOnHome, "a", "g2", model.Ungrouped, nil)
	require.NoError(t, err)
	require.NoError(t, r.Wait(ctx))
	ob2 = c2.Board(perm.WriteOverride)
	assert.Equal(t, []string{"c"}, laneIDs(t, ob2, "g2"))
	assert.Equal(t, []string{"u", "a"}, laneIDs(t, ob2, model.Ungrouped))
	assert.Equal(t, []string{"a", "b", "c", "u"}, allIDs(ob2))
}

func TestOverrideLayering_StaleAndUnknownIDs(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	overrides := store.NewMemoryOverrides()
	require.NoError(t, overrides.Set(ctx, "replies:g1", map[string]int{"a": 0, "b": 1}))
	require.NoError(t, overrides.Set(ctx, "replies:g2", map[string]int{"a": 0, "c": 1}))
	require.NoError(t, overrides.Set(ctx, "replies:ungrouped", map[string]int{"gone": 0}))
	c := newTestCoordinator(t, newFakeBackend(), overrides)

	ob := c.Board(perm.WriteOverride)
	assert.Equal(t, []string{"a", "b"}, laneIDs(t, ob, "g1"), "first container in display order claims a")
	assert.Equal(t, []string{"c"}, laneIDs(t, ob, "g2"))
	assert.Equal(t, []string{"u"}, laneIDs(t, ob, model.Ungrouped))
	assert.Equal(t, []string{"a", "b", "c", "u"}, allIDs(ob))
}

func TestOverrideMove_ScrubsStaleListings(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	overrides := store.NewMemoryOverrides()
	// g2 lists a too, but g1 comes first and shows it.
	require.NoError(t, overrides.Set(ctx, "replies:g1", map[string]int{"a": 0, "b": 1}))
	require.NoError(t, overrides.Set(ctx, "replies:g2", map[string]int{"c": 0, "a": 1}))
	backend := newFakeBackend()
	c := newTestCoordinator(t, backend, overrides)
	require.Equal(t, []string{"c"}, mustView(t, c, perm.WriteOverride, "g2"))

	r, err := c.MoveItem(ctx, agentOnHome, "a", "g1", model.Ungrouped, nil)
	require.NoError(t, err)
	require.NoError(t, r.Wait(ctx))

	assert.Equal(t, []string{"b"}, mustView(t, c, perm.WriteOverride, "g1"))
	assert.Equal(t, []string{"c"}, mustView(t, c, perm.WriteOverride, "g2"))
	assert.Equal(t, []string{"u", "a"}, mustView(t, c, perm.WriteOverride, model.Ungrouped))
}

func TestOverrideStoreFailure_RollsBack(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newFakeBackend()
	overrides := &failingOverrides{MemoryOverrides: store.NewMemoryOverrides(), okSets: 1}
	c := newTestCoordinator(t, backend, overrides)

	_, err := c.MoveItem(ctx, agentOnHome, "a", "g1", "g2", nil)
	var perr *ordering.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "override", perr.Path)

	ob := c.Board(perm.WriteOverride)
	assert.Equal(t, []string{"a", "b"}, laneIDs(t, ob, "g1"))
	assert.Equal(t, []string{"c"}, laneIDs(t, ob, "g2"))
	scopes, err := overrides.Scopes(ctx)
	require.NoError(t, err)
	assert.Empty(t, scopes)

	_, err = c.ReorderWithinContainer(ctx, agentOnHome, "g1", 0, 1)
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, []string{"a", "b"}, mustView(t, c, perm.WriteOverride, "g1"))
	assert.Equal(t, 0, backend.writeCount())
}

func TestValidationErrors_LeaveStateUnchanged(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newFakeBackend()
	c := newTestCoordinator(t, backend, nil)
	before := c.Board(perm.WriteAuthoritative)
	five := 5

	cases := map[string]func() error{
		"unknown template": func() error {
			_, err := c.MoveItem(ctx, adminOnAdmin, "zz", "g1", "g2", nil)
			return err
		},
		"template not in source": func() error {
			_, err := c.MoveItem(ctx, adminOnAdmin, "a", "g2", "g1", nil)
			return err
		},
		"drop index out of range": func() error {
			_, err := c.MoveItem(ctx, adminOnAdmin, "a", "g1", "g2", &five)
			return err
		},
		"unknown container": func() error {
			_, err := c.ReorderWithinContainer(ctx, adminOnAdmin, "g9", 0, 1)
			return err
		},
		"index out of range": func() error {
			_, err := c.ReorderWithinContainer(ctx, adminOnAdmin, "g1", 0, 2)
			return err
		},
	}
	for name, fn := range cases {
		var verr *ordering.ValidationError
		require.ErrorAs(t, fn(), &verr, name)
	}
	if diff := cmp.Diff(before, c.Board(perm.WriteAuthoritative), cmp.AllowUnexported(Board{})); diff != "" {
		t.Fatalf("board changed (-want +got):\n%s", diff)
	}
	assert.Equal(t, 0, backend.writeCount())
}

func TestMoveItem_SameContainerReorders(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newTestCoordinator(t, newFakeBackend(), nil)

	r, err := c.MoveItem(ctx, adminOnAdmin, "a", "g1", "g1", nil)
	require.NoError(t, err)
	assert.Equal(t, OpReorder, r.Op.Kind)
	require.NoError(t, r.Wait(ctx))
	assert.Equal(t, []string{"b", "a"}, mustView(t, c, perm.WriteAuthoritative, "g1"))
}

func TestReload_PicksUpExternalChanges(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newFakeBackend()
	c := newTestCoordinator(t, backend, nil)

	backend.mu.Lock()
	backend.templates["n"] = model.Template{ID: "n", Domain: model.DomainReplies, GroupID: strPtr("g2"), Position: 1}
	backend.templates["bad"] = model.Template{ID: "bad", Domain: model.DomainReplies, GroupID: strPtr("g-missing")}
	backend.groups["g3"] = model.Group{ID: "g3", Domain: model.DomainReplies, Name: "Returns", OrderIndex: 2}
	backend.mu.Unlock()

	require.NoError(t, c.Reload(ctx))
	board := c.Board(perm.WriteAuthoritative)
	assert.Equal(t, []string{"c", "n"}, laneIDs(t, board, "g2"))
	require.Len(t, board.Groups, 3)
	assert.Empty(t, laneIDs(t, board, "g3"))
	_, ok := c.Template("bad")
	assert.False(t, ok, "template in unknown group is skipped")
}

func (c *Coordinator) queuedReloads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, j := range c.queue {
		if j.reload {
			n++
		}
	}
	return n
}

// reloadBehindBlockedCommit queues a reorder of g1 whose write blocks, then a Reload behind
// it. It returns the reorder result, the Reload error channel and the gate to release.
func reloadBehindBlockedCommit(t *testing.T, c *Coordinator, backend *fakeBackend) (*Result, <-chan error, chan struct{}) {
	t.Helper()
	ctx := context.Background()
	gate := make(chan struct{})
	backend.setGate(gate)

	r1, err := c.ReorderWithinContainer(ctx, adminOnAdmin, "g1", 0, 1)
	require.NoError(t, err)
	reloaded := make(chan error, 1)
	go func() { reloaded <- c.Reload(ctx) }()
	require.Eventually(t, func() bool { return c.queuedReloads() == 1 }, 5*time.Second, time.Millisecond)
	return r1, reloaded, gate
}

func TestReload_KeepsGesturesQueuedBehindIt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newFakeBackend()
	c := newTestCoordinator(t, backend, nil)
	r1, reloaded, gate := reloadBehindBlockedCommit(t, c, backend)

	r3, err := c.ReorderContainers(ctx, adminOnAdmin, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"g2", "g1"}, mustView(t, c, perm.WriteAuthoritative, model.GroupList))

	close(gate)
	require.NoError(t, r1.Wait(ctx))
	require.NoError(t, <-reloaded)
	require.NoError(t, r3.Wait(ctx))

	assert.Equal(t, []string{"g2", "g1"}, mustView(t, c, perm.WriteAuthoritative, model.GroupList))
	assert.Equal(t, []string{"b", "a"}, mustView(t, c, perm.WriteAuthoritative, "g1"))
	assert.Equal(t, 2, backend.writeCount())

	require.NoError(t, c.Reload(ctx))
	assert.Equal(t, []string{"g2", "g1"}, mustView(t, c, perm.WriteAuthoritative, model.GroupList), "record store agrees")
}

func TestReload_KeepsMoveQueuedBehindIt(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := newFakeBackend()
	c := newTestCoordinator(t, backend, nil)
	r1, reloaded, gate := reloadBehindBlockedCommit(t, c, backend)

	backend.mu.Lock()
	backend.templates["n"] = model.Template{ID: "n", Domain: model.DomainReplies, GroupID: strPtr("g2"), Position: 1}
	backend.mu.Unlock()

	r3, err := c.MoveItem(ctx, adminOnAdmin, "a", "g1", "g2", nil)
	require.NoError(t, err)

	close(gate)
	require.NoError(t, r1.Wait(ctx))
	require.NoError(t, <-reloaded)
	board := c.Board(perm.WriteAuthoritative)
	assert.Equal(t, []string{"b"}, laneIDs(t, board, "g1"))
	assert.Equal(t, []string{"c", "a", "n"}, laneIDs(t, board, "g2"), "queued move kept, new template picked up")
	tpl, ok := c.Template("a")
	require.True(t, ok)
	require.NotNil(t, tpl.GroupID)
	assert.Equal(t, "g2", *tpl.GroupID)

	require.NoError(t, r3.Wait(ctx))
	require.NotNil(t, backend.template("a").GroupID)
	assert.Equal(t, "g2", *backend.template("a").GroupID)
}

func TestResetOverrides(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	overrides := store.NewMemoryOverrides()
	c := newTestCoordinator(t, newFakeBackend(), overrides)

	_, err := c.ReorderWithinContainer(ctx, agentOnHome, "g1", 0, 1)
	require.NoError(t, err)
	_, err = c.ReorderContainers(ctx, agentOnHome, 0, 1)
	require.NoError(t, err)

	require.NoError(t, c.ResetOverrides(ctx, "g1"))
	assert.Equal(t, []string{"a", "b"}, mustView(t, c, perm.WriteOverride, "g1"))
	assert.Equal(t, []string{"g2", "g1"}, mustView(t, c, perm.WriteOverride, model.GroupList))

	require.NoError(t, c.ResetOverrides(ctx))
	assert.Equal(t, []string{"g1", "g2"}, mustView(t, c, perm.WriteOverride, model.GroupList))
	scopes, err := overrides.Scopes(ctx)
	require.NoError(t, err)
	assert.Empty(t, scopes)

	var verr *ordering.ValidationError
	require.ErrorAs(t, c.ResetOverrides(ctx, "g9"), &verr)
}

func TestClose(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	c := newTestCoordinator(t, newFakeBackend(), nil)
	require.NoError(t, c.Close())
	require.NoError(t, c.Close())

	_, err := c.ReorderWithinContainer(ctx, adminOnAdmin, "g1", 0, 1)
	require.ErrorIs(t, err, ErrClosed)
	require.ErrorIs(t, c.Reload(ctx), ErrClosed)
}

func TestNew_RequiresSource(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Options{Domain: model.DomainReplies})
	require.Error(t, err)
}
