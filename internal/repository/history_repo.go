package repository

import (
	"context"
	"time"

	"school-inventory/internal/domain"
)

// HistoryRepository is the append-only audit log. Entries are never updated
// or deleted.
type HistoryRepository interface {
	AppendHistory(ctx context.Context, e *domain.HistoryEntry) error

	// ListHistory returns entries within [from, to], newest first. Zero
	// bounds are open.
	ListHistory(ctx context.Context, from, to time.Time) ([]*domain.HistoryEntry, error)

	ListHistoryForEquipment(ctx context.Context, equipmentID string) ([]*domain.HistoryEntry, error)
}
