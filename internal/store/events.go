package store

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is one activity-log row written alongside an ordering change.
type Event struct {
	ID       string          `json:"id" yaml:"id"`
	ActorID  string          `json:"actorId" yaml:"actorId"`
	Type     string          `json:"type" yaml:"type"`
	EntityID string          `json:"entityId" yaml:"entityId"`
	Payload  json.RawMessage `json:"payload" yaml:"-"`
	IssuedAt time.Time       `json:"issuedAt" yaml:"issuedAt"`
}

func (s *SQLStore) appendEvent(ctx context.Context, x execer, typ, entityID string, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.exec(ctx, x, `INSERT INTO events(event_id, actor_id, type, entity_id, payload_json, issued_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), s.actorID, strings.TrimSpace(typ), strings.TrimSpace(entityID), string(raw), time.Now().UTC().UnixMilli())
	return err
}

// ReadEvents returns the most recent events, newest first. limit <= 0 means all.
func (s *SQLStore) ReadEvents(ctx context.Context, limit int) ([]Event, error) {
	q := `SELECT event_id, actor_id, type, entity_id, payload_json, issued_at_unixms FROM events ORDER BY issued_at_unixms DESC, event_id`
	args := []any{}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, s.rebind(q), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		var (
			ev      Event
			payload string
			ms      int64
		)
		if err := rows.Scan(&ev.ID, &ev.ActorID, &ev.Type, &ev.EntityID, &payload, &ms); err != nil {
			return nil, err
		}
		ev.Payload = json.RawMessage(payload)
		ev.IssuedAt = time.UnixMilli(ms).UTC()
		out = append(out, ev)
	}
	return out, rows.Err()
}
