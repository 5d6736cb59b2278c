package repository

import (
	"context"

	"school-inventory/internal/domain"
)

// EquipmentFilter narrows ListEquipment.
type EquipmentFilter struct {
	State      domain.EquipmentState // optional
	CategoryID string                // optional
	Search     string                // optional, matches name/brand/model
	// OnlyLendable keeps entries the loan form offers: state=available
	// with at least one unit free.
	OnlyLendable bool
}

// EquipmentRepository is the catalog's storage boundary.
type EquipmentRepository interface {
	GetEquipment(ctx context.Context, id string) (*domain.Equipment, error)
	ListEquipment(ctx context.Context, filter EquipmentFilter) ([]*domain.Equipment, error)
	CreateEquipment(ctx context.Context, e *domain.Equipment) error
	UpdateEquipment(ctx context.Context, e *domain.Equipment) error
	DeleteEquipment(ctx context.Context, id string) error

	// AdjustAvailability applies delta clamped to [0, quantity] as one
	// conditional update and returns the resulting row.
	AdjustAvailability(ctx context.Context, id string, delta int) (*domain.Equipment, error)

	// ListLowStock returns entries with available_quantity below threshold,
	// ordered ascending. includeZero selects between the report semantics
	// (zero included) and the alert semantics (zero excluded).
	ListLowStock(ctx context.Context, threshold int, includeZero bool) ([]*domain.Equipment, error)
}
