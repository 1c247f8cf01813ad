package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"replydesk/internal/model"
)

var ErrNotFound = errors.New("not found")

func (s *SQLStore) ListGroups(ctx context.Context, domain model.Domain) ([]model.Group, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT id, domain, name, color, order_index, active
		FROM template_groups WHERE domain = ? ORDER BY order_index, id`), string(domain))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Group
	for rows.Next() {
		var (
			g      model.Group
			dom    string
			active int
		)
		if err := rows.Scan(&g.ID, &dom, &g.Name, &g.Color, &g.OrderIndex, &active); err != nil {
			return nil, err
		}
		g.Domain = model.Domain(dom)
		g.Active = active != 0
		out = append(out, g)
	}
	return out, rows.Err()
}

const templateColumns = `id, domain, title, bodies_json, category, genre, group_id, position, global_position, created_at_unixms, updated_at_unixms`

func (s *SQLStore) ListTemplates(ctx context.Context, domain model.Domain) ([]model.Template, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT `+templateColumns+`
		FROM templates WHERE domain = ? ORDER BY position, global_position, id`), string(domain))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Template
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *SQLStore) GetTemplate(ctx context.Context, id string) (model.Template, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+templateColumns+` FROM templates WHERE id = ?`), strings.TrimSpace(id))
	t, err := scanTemplate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Template{}, fmt.Errorf("%w: template %s", ErrNotFound, id)
	}
	return t, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTemplate(sc scanner) (model.Template, error) {
	var (
		t                model.Template
		dom, bodies      string
		groupID          sql.NullString
		created, updated int64
	)
	if err := sc.Scan(&t.ID, &dom, &t.Title, &bodies, &t.Category, &t.Genre, &groupID, &t.Position, &t.GlobalPosition, &created, &updated); err != nil {
		return model.Template{}, err
	}
	t.Domain = model.Domain(dom)
	if err := json.Unmarshal([]byte(bodies), &t.Bodies); err != nil {
		return model.Template{}, fmt.Errorf("template %s: decode bodies: %w", t.ID, err)
	}
	if groupID.Valid && groupID.String != "" {
		gid := groupID.String
		t.GroupID = &gid
	}
	t.CreatedAt = time.UnixMilli(created).UTC()
	t.UpdatedAt = time.UnixMilli(updated).UTC()
	return t, nil
}

func (s *SQLStore) UpsertGroup(ctx context.Context, g model.Group) error {
	if err := g.Validate(); err != nil {
		return err
	}
	_, err := s.exec(ctx, s.db, `INSERT INTO template_groups(id, domain, name, color, order_index, active)
		VALUES(?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET domain = excluded.domain, name = excluded.name, color = excluded.color,
			order_index = excluded.order_index, active = excluded.active`,
		g.ID, string(g.Domain), g.Name, g.Color, g.OrderIndex, boolToInt(g.Active))
	return err
}

// UpsertTemplate inserts or replaces a template. Zero timestamps are filled with the current time.
func (s *SQLStore) UpsertTemplate(ctx context.Context, t model.Template) error {
	if err := t.Validate(); err != nil {
		return err
	}
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	if t.UpdatedAt.IsZero() {
		t.UpdatedAt = now
	}
	bodies, err := json.Marshal(t.Bodies)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, s.db, `INSERT INTO templates(`+templateColumns+`)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET domain = excluded.domain, title = excluded.title, bodies_json = excluded.bodies_json,
			category = excluded.category, genre = excluded.genre, group_id = excluded.group_id, position = excluded.position,
			global_position = excluded.global_position, updated_at_unixms = excluded.updated_at_unixms`,
		t.ID, string(t.Domain), t.Title, string(bodies), t.Category, t.Genre, nullableGroup(t.GroupID),
		t.Position, t.GlobalPosition, t.CreatedAt.UnixMilli(), t.UpdatedAt.UnixMilli())
	return err
}

// Reorder writes sequential positions for the templates of one container. Every id must
// currently belong to that container.
func (s *SQLStore) Reorder(ctx context.Context, container model.ContainerID, updates []model.PositionUpdate) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		nowMs := time.Now().UTC().UnixMilli()
		for _, u := range updates {
			var (
				res sql.Result
				err error
			)
			if container == model.Ungrouped {
				res, err = s.exec(ctx, tx, `UPDATE templates SET position = ?, updated_at_unixms = ?
					WHERE id = ? AND (group_id IS NULL OR group_id = '')`, u.OrderIndex, nowMs, u.ID)
			} else {
				res, err = s.exec(ctx, tx, `UPDATE templates SET position = ?, updated_at_unixms = ?
					WHERE id = ? AND group_id = ?`, u.OrderIndex, nowMs, u.ID, string(container))
			}
			if err != nil {
				return err
			}
			if err := expectOne(res, "template %s in %s", u.ID, container); err != nil {
				return err
			}
		}
		return s.appendEvent(ctx, tx, "template.reorder", string(container), map[string]any{"updates": updates})
	})
}

// MoveItem reassigns a template's group; nil moves it to the ungrouped pool.
func (s *SQLStore) MoveItem(ctx context.Context, itemID string, target *string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if target != nil {
			var one int
			err := tx.QueryRowContext(ctx, s.rebind(`SELECT 1 FROM template_groups WHERE id = ?`), *target).Scan(&one)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: group %s", ErrNotFound, *target)
			}
			if err != nil {
				return err
			}
		}
		res, err := s.exec(ctx, tx, `UPDATE templates SET group_id = ?, updated_at_unixms = ? WHERE id = ?`,
			nullableGroup(target), time.Now().UTC().UnixMilli(), itemID)
		if err != nil {
			return err
		}
		if err := expectOne(res, "template %s", itemID); err != nil {
			return err
		}
		return s.appendEvent(ctx, tx, "template.move", itemID, map[string]any{"to": string(model.ContainerOf(target))})
	})
}

func (s *SQLStore) ReorderContainers(ctx context.Context, updates []model.PositionUpdate) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, u := range updates {
			res, err := s.exec(ctx, tx, `UPDATE template_groups SET order_index = ? WHERE id = ?`, u.OrderIndex, u.ID)
			if err != nil {
				return err
			}
			if err := expectOne(res, "group %s", u.ID); err != nil {
				return err
			}
		}
		return s.appendEvent(ctx, tx, "group.reorder", string(model.GroupList), map[string]any{"updates": updates})
	})
}

func (s *SQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func expectOne(res sql.Result, format string, args ...any) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
	}
	return nil
}

func nullableGroup(id *string) any {
	if id == nil || *id == "" {
		return nil
	}
	return *id
}
