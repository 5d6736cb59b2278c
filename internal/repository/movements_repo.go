package repository

import (
	"context"
	"time"

	"school-inventory/internal/domain"
)

// MovementFilter narrows ListMovements.
type MovementFilter struct {
	Status      domain.MovementStatus // optional
	Type        domain.MovementType   // optional
	EquipmentID string                // optional
	TeacherID   string                // optional
	Search      string                // optional, matches equipment/teacher name
}

// MovementRepository is the ledger's storage boundary. CreateMovement and
// CompleteMovement carry the availability adjustment inside one transaction
// so two concurrent loans cannot both spend the same units.
type MovementRepository interface {
	GetMovement(ctx context.Context, id string) (*domain.Movement, error)
	ListMovements(ctx context.Context, filter MovementFilter) ([]*domain.Movement, error)

	// CreateMovement inserts m and applies the clamped availability delta
	// (debit for assignments, credit for return-type movements) atomically.
	// Returns domain.ErrInsufficientStock when an assignment asks for more
	// than is available, domain.ErrNotFound when the equipment is absent.
	// Neither leaves any mutation behind.
	CreateMovement(ctx context.Context, m *domain.Movement) error

	// CompleteMovement marks an active assignment as completed, stamps the
	// actual return date and credits the quantity back, atomically. Returns
	// domain.ErrNotFound when the movement is absent, already completed or
	// not an assignment; availability is never double-credited.
	CompleteMovement(ctx context.Context, id string, returnDate time.Time) (*domain.Movement, error)

	// DeleteMovement is an unconditional hard delete. It does not restore
	// availability.
	DeleteMovement(ctx context.Context, id string) error
}
