package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"school-inventory/internal/domain"
	"school-inventory/internal/repository"
)

// CatalogService manages the equipment catalog and writes the audit trail
// for every mutation.
type CatalogService struct {
	equipment repository.EquipmentRepository
	history   repository.HistoryRepository
	logger    *zap.Logger
}

func NewCatalogService(
	equipment repository.EquipmentRepository,
	history repository.HistoryRepository,
	logger *zap.Logger,
) *CatalogService {
	return &CatalogService{
		equipment: equipment,
		history:   history,
		logger:    logger,
	}
}

func (s *CatalogService) GetEquipment(ctx context.Context, id string) (*domain.Equipment, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	return s.equipment.GetEquipment(ctx, id)
}

func (s *CatalogService) ListEquipment(ctx context.Context, filter repository.EquipmentFilter) ([]*domain.Equipment, error) {
	return s.equipment.ListEquipment(ctx, filter)
}

func (s *CatalogService) CreateEquipment(ctx context.Context, e *domain.Equipment) (*domain.Equipment, error) {
	if err := validateEquipment(e); err != nil {
		return nil, err
	}

	e.ID = uuid.NewString()
	if e.State == "" {
		e.State = domain.StateAvailable
	}
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	if err := s.equipment.CreateEquipment(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create equipment: %w", err)
	}

	s.appendHistory(ctx, &domain.HistoryEntry{
		ID:          uuid.NewString(),
		EquipmentID: e.ID,
		Action:      domain.ActionCreate,
		NewValues:   equipmentSnapshot(e),
		ChangedBy:   e.CreatedBy,
	})

	s.logger.Info("equipment created",
		zap.String("equipment_id", e.ID),
		zap.String("name", e.Name),
		zap.Int("quantity", e.Quantity))

	return s.equipment.GetEquipment(ctx, e.ID)
}

func (s *CatalogService) UpdateEquipment(ctx context.Context, e *domain.Equipment) (*domain.Equipment, error) {
	if e.ID == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	if err := validateEquipment(e); err != nil {
		return nil, err
	}

	old, err := s.equipment.GetEquipment(ctx, e.ID)
	if err != nil {
		return nil, err
	}

	if err := s.equipment.UpdateEquipment(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to update equipment: %w", err)
	}

	s.appendHistory(ctx, &domain.HistoryEntry{
		ID:          uuid.NewString(),
		EquipmentID: e.ID,
		Action:      domain.ActionUpdate,
		OldValues:   equipmentSnapshot(old),
		NewValues:   equipmentSnapshot(e),
		ChangedBy:   e.CreatedBy,
	})

	return s.equipment.GetEquipment(ctx, e.ID)
}

// DeleteEquipment removes the catalog entry permanently. The audit record
// keeps the last known snapshot.
func (s *CatalogService) DeleteEquipment(ctx context.Context, id, changedBy string) error {
	if id == "" {
		return domain.NewValidationError("id", "is required")
	}

	old, err := s.equipment.GetEquipment(ctx, id)
	if err != nil {
		return err
	}

	if err := s.equipment.DeleteEquipment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete equipment: %w", err)
	}

	s.appendHistory(ctx, &domain.HistoryEntry{
		ID:          uuid.NewString(),
		EquipmentID: id,
		Action:      domain.ActionDelete,
		OldValues:   equipmentSnapshot(old),
		ChangedBy:   changedBy,
	})

	s.logger.Info("equipment deleted", zap.String("equipment_id", id))
	return nil
}

// AdjustAvailability applies delta to the free count, clamped to
// [0, quantity]. Over-adjustments are absorbed rather than rejected.
func (s *CatalogService) AdjustAvailability(ctx context.Context, id string, delta int) (*domain.Equipment, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	return s.equipment.AdjustAvailability(ctx, id, delta)
}

// AlertLowStock lists entries the periodic alert should fire for: below
// threshold but not fully depleted.
func (s *CatalogService) AlertLowStock(ctx context.Context, threshold int) ([]*domain.Equipment, error) {
	return s.equipment.ListLowStock(ctx, threshold, false)
}

// ReportLowStock lists entries for the printed report, zero included.
func (s *CatalogService) ReportLowStock(ctx context.Context, threshold int) ([]*domain.Equipment, error) {
	return s.equipment.ListLowStock(ctx, threshold, true)
}

func (s *CatalogService) ListHistoryForEquipment(ctx context.Context, equipmentID string) ([]*domain.HistoryEntry, error) {
	if equipmentID == "" {
		return nil, domain.NewValidationError("equipment_id", "is required")
	}
	return s.history.ListHistoryForEquipment(ctx, equipmentID)
}

// appendHistory is best-effort: a failed audit write never fails the
// operation it records.
func (s *CatalogService) appendHistory(ctx context.Context, e *domain.HistoryEntry) {
	if err := s.history.AppendHistory(ctx, e); err != nil {
		s.logger.Warn("failed to append history",
			zap.String("equipment_id", e.EquipmentID),
			zap.String("action", string(e.Action)),
			zap.Error(err))
	}
}

func validateEquipment(e *domain.Equipment) error {
	if e.Name == "" {
		return domain.NewValidationError("name", "is required")
	}
	if e.Quantity < 0 {
		return domain.NewValidationError("quantity", "must not be negative")
	}
	if e.AvailableQuantity < 0 {
		return domain.NewValidationError("available_quantity", "must not be negative")
	}
	if e.AvailableQuantity > e.Quantity {
		return domain.NewValidationError("available_quantity", "must not exceed quantity")
	}
	if e.State != "" && !e.State.Valid() {
		return domain.NewValidationError("state", "is not a valid state")
	}
	return nil
}

func equipmentSnapshot(e *domain.Equipment) map[string]any {
	return map[string]any{
		"name":               e.Name,
		"brand":              e.Brand,
		"model":              e.Model,
		"serial_number":      e.SerialNumber,
		"quantity":           e.Quantity,
		"available_quantity": e.AvailableQuantity,
		"state":              string(e.State),
		"category_id":        e.CategoryID,
	}
}
