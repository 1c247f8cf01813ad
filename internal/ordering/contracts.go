package ordering

import (
	"context"
	"fmt"

	"replydesk/internal/model"
)

// PersistenceAdapter is the shared record store's ordering surface.
// Implementations own network timeouts.
type PersistenceAdapter interface {
	Reorder(ctx context.Context, container model.ContainerID, updates []model.PositionUpdate) error
	// MoveItem sets the item's group; a nil target moves it to the ungrouped pool.
	MoveItem(ctx context.Context, itemID string, target *string) error
	ReorderContainers(ctx context.Context, updates []model.PositionUpdate) error
}

// SessionOverrideStore is a process-wide key/value store local to the session.
// Get returns nil when nothing is stored under scope.
type SessionOverrideStore interface {
	Get(ctx context.Context, scope string) (map[string]int, error)
	Set(ctx context.Context, scope string, positions map[string]int) error
	Clear(ctx context.Context, scope string) error
}

// ScopeKey is the override key for one container of one domain.
func ScopeKey(domain model.Domain, container model.ContainerID) string {
	return fmt.Sprintf("%s:%s", domain, container)
}
