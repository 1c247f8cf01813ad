package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Dialect selects placeholder and upsert syntax.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// SQLStore is the shared record store for groups and templates. It implements the ordering
// persistence contract and appends an activity row for every ordering write.
type SQLStore struct {
	db      *sql.DB
	dialect Dialect
	actorID string
	logger  zerolog.Logger
}

// OpenSQLite opens (creating if needed) a local database file.
func OpenSQLite(ctx context.Context, path string, logger zerolog.Logger) (*SQLStore, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("sqlite: missing path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// modernc.org/sqlite driver name is "sqlite".
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// WAL allows one writer and many readers; busy_timeout avoids "database is locked" between processes.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA foreign_keys=ON;",
		"PRAGMA busy_timeout=5000;",
	}
	for _, p := range pragmas {
		if _, err := db.ExecContext(ctx, p); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return newSQLStore(ctx, db, DialectSQLite, logger)
}

// OpenPostgres connects through the pgx database/sql driver.
func OpenPostgres(ctx context.Context, dsn string, logger zerolog.Logger) (*SQLStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		return nil, errors.New("postgres: missing dsn (set store.dsn or DATABASE_URL)")
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return newSQLStore(ctx, db, DialectPostgres, logger)
}

func newSQLStore(ctx context.Context, db *sql.DB, dialect Dialect, logger zerolog.Logger) (*SQLStore, error) {
	s := &SQLStore{db: db, dialect: dialect, actorID: "system", logger: logger}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) Dialect() Dialect { return s.dialect }

// WithActor returns a store that attributes activity rows to actorID.
func (s *SQLStore) WithActor(actorID string) *SQLStore {
	cp := *s
	if actorID = strings.TrimSpace(actorID); actorID != "" {
		cp.actorID = actorID
	}
	return &cp
}

func (s *SQLStore) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS template_groups (
			id TEXT PRIMARY KEY,
			domain TEXT NOT NULL,
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			order_index INTEGER NOT NULL DEFAULT 0,
			active INTEGER NOT NULL DEFAULT 1
		);`,
		`CREATE INDEX IF NOT EXISTS idx_groups_domain ON template_groups(domain, order_index);`,
		`CREATE TABLE IF NOT EXISTS templates (
			id TEXT PRIMARY KEY,
			domain TEXT NOT NULL,
			title TEXT NOT NULL,
			bodies_json TEXT NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			genre TEXT NOT NULL DEFAULT '',
			group_id TEXT,
			position INTEGER NOT NULL DEFAULT 0,
			global_position INTEGER NOT NULL DEFAULT 0,
			created_at_unixms BIGINT NOT NULL,
			updated_at_unixms BIGINT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_templates_container ON templates(domain, group_id, position);`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			actor_id TEXT NOT NULL,
			type TEXT NOT NULL,
			entity_id TEXT NOT NULL,
			payload_json TEXT NOT NULL,
			issued_at_unixms BIGINT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS idx_events_issued ON events(issued_at_unixms);`,
	}
	for _, st := range stmts {
		if _, err := s.db.ExecContext(ctx, st); err != nil {
			return fmt.Errorf("migrate %s: %w", s.dialect, err)
		}
	}
	return nil
}

// rebind rewrites ? placeholders to $n for postgres.
func (s *SQLStore) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *SQLStore) exec(ctx context.Context, x execer, query string, args ...any) (sql.Result, error) {
	return x.ExecContext(ctx, s.rebind(query), args...)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
