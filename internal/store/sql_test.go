package store

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"replydesk/internal/model"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func openTestSQLite(t *testing.T) *SQLStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "replydesk.sqlite"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seedFixture(t *testing.T, s *SQLStore) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.UpsertGroup(ctx, model.Group{ID: "grp-1", Domain: model.DomainReplies, Name: "Billing", OrderIndex: 0, Active: true}))
	require.NoError(t, s.UpsertGroup(ctx, model.Group{ID: "grp-2", Domain: model.DomainReplies, Name: "Shipping", OrderIndex: 1, Active: true}))
	tpls := []model.Template{
		{ID: "tpl-a", GroupID: strPtr("grp-1"), Position: 0},
		{ID: "tpl-b", GroupID: strPtr("grp-1"), Position: 1},
		{ID: "tpl-c", GroupID: strPtr("grp-2"), Position: 0},
		{ID: "tpl-d", Position: 0},
	}
	for _, tpl := range tpls {
		tpl.Domain = model.DomainReplies
		tpl.Title = "Title " + tpl.ID
		tpl.Bodies = []model.LocalizedBody{{Locale: "en", Body: "Hi {name}"}}
		require.NoError(t, s.UpsertTemplate(ctx, tpl))
	}
}

func TestSQLStore_ListAndGet(t *testing.T) {
	t.Parallel()

	s := openTestSQLite(t)
	seedFixture(t, s)
	ctx := context.Background()

	groups, err := s.ListGroups(ctx, model.DomainReplies)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, "grp-1", groups[0].ID)
	assert.True(t, groups[0].Active)

	empty, err := s.ListGroups(ctx, model.DomainEmails)
	require.NoError(t, err)
	assert.Empty(t, empty)

	tpls, err := s.ListTemplates(ctx, model.DomainReplies)
	require.NoError(t, err)
	require.Len(t, tpls, 4)

	got, err := s.GetTemplate(ctx, "tpl-d")
	require.NoError(t, err)
	assert.Nil(t, got.GroupID)
	assert.Equal(t, model.Ungrouped, got.Container())
	assert.Equal(t, "Hi {name}", got.BodyFor("en"))
	assert.False(t, got.CreatedAt.IsZero())

	_, err = s.GetTemplate(ctx, "tpl-missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLStore_ReorderWritesPositionsAndEvent(t *testing.T) {
	t.Parallel()

	s := openTestSQLite(t).WithActor("act-admin")
	seedFixture(t, s)
	ctx := context.Background()

	require.NoError(t, s.Reorder(ctx, "grp-1", model.PositionUpdates([]string{"tpl-b", "tpl-a"})))

	a, err := s.GetTemplate(ctx, "tpl-a")
	require.NoError(t, err)
	b, err := s.GetTemplate(ctx, "tpl-b")
	require.NoError(t, err)
	assert.Equal(t, 1, a.Position)
	assert.Equal(t, 0, b.Position)

	events, err := s.ReadEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "template.reorder", events[0].Type)
	assert.Equal(t, "grp-1", events[0].EntityID)
	assert.Equal(t, "act-admin", events[0].ActorID)
	assert.Len(t, events[0].ID, 36)

	var payload struct {
		Updates []model.PositionUpdate `json:"updates"`
	}
	require.NoError(t, json.Unmarshal(events[0].Payload, &payload))
	assert.Equal(t, "tpl-b", payload.Updates[0].ID)
}

func TestSQLStore_ReorderRejectsForeignItems(t *testing.T) {
	t.Parallel()

	s := openTestSQLite(t)
	seedFixture(t, s)
	ctx := context.Background()

	err := s.Reorder(ctx, "grp-1", model.PositionUpdates([]string{"tpl-c", "tpl-a"}))
	require.ErrorIs(t, err, ErrNotFound)

	// The transaction rolled back.
	a, err := s.GetTemplate(ctx, "tpl-a")
	require.NoError(t, err)
	assert.Equal(t, 0, a.Position)
	events, err := s.ReadEvents(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, events)

	require.NoError(t, s.Reorder(ctx, model.Ungrouped, model.PositionUpdates([]string{"tpl-d"})))
}

func TestSQLStore_MoveItem(t *testing.T) {
	t.Parallel()

	s := openTestSQLite(t)
	seedFixture(t, s)
	ctx := context.Background()

	require.NoError(t, s.MoveItem(ctx, "tpl-a", strPtr("grp-2")))
	a, err := s.GetTemplate(ctx, "tpl-a")
	require.NoError(t, err)
	require.NotNil(t, a.GroupID)
	assert.Equal(t, "grp-2", *a.GroupID)

	require.NoError(t, s.MoveItem(ctx, "tpl-a", nil))
	a, err = s.GetTemplate(ctx, "tpl-a")
	require.NoError(t, err)
	assert.Nil(t, a.GroupID)

	assert.ErrorIs(t, s.MoveItem(ctx, "tpl-a", strPtr("grp-nope")), ErrNotFound)
	assert.ErrorIs(t, s.MoveItem(ctx, "tpl-nope", nil), ErrNotFound)

	events, err := s.ReadEvents(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, events, 2)
}

func TestSQLStore_ReorderContainers(t *testing.T) {
	t.Parallel()

	s := openTestSQLite(t)
	seedFixture(t, s)
	ctx := context.Background()

	require.NoError(t, s.ReorderContainers(ctx, model.PositionUpdates([]string{"grp-2", "grp-1"})))
	groups, err := s.ListGroups(ctx, model.DomainReplies)
	require.NoError(t, err)
	assert.Equal(t, "grp-2", groups[0].ID)
	assert.Equal(t, "grp-1", groups[1].ID)

	err = s.ReorderContainers(ctx, model.PositionUpdates([]string{"grp-x"}))
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLStore_UpsertValidates(t *testing.T) {
	t.Parallel()

	s := openTestSQLite(t)
	ctx := context.Background()
	assert.Error(t, s.UpsertGroup(ctx, model.Group{ID: "ungrouped"}))
	assert.Error(t, s.UpsertTemplate(ctx, model.Template{ID: ""}))
}

func TestRebind(t *testing.T) {
	t.Parallel()

	pg := &SQLStore{dialect: DialectPostgres}
	assert.Equal(t, "UPDATE t SET a = $1 WHERE id = $2", pg.rebind("UPDATE t SET a = ? WHERE id = ?"))
	lite := &SQLStore{dialect: DialectSQLite}
	assert.Equal(t, "SELECT ?", lite.rebind("SELECT ?"))
}

func TestOpenPostgres_FromEnv(t *testing.T) {
	dsn := os.Getenv("REPLYDESK_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("REPLYDESK_TEST_DATABASE_URL not set")
	}
	s, err := OpenPostgres(context.Background(), dsn, zerolog.Nop())
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, DialectPostgres, s.Dialect())
	_, err = s.ListGroups(context.Background(), model.DomainReplies)
	require.NoError(t, err)
}

func TestOpenPostgres_MissingDSN(t *testing.T) {
	t.Parallel()

	_, err := OpenPostgres(context.Background(), " ", zerolog.Nop())
	require.Error(t, err)
}
