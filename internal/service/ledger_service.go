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

// LoanInput is the request to hand equipment out.
type LoanInput struct {
	EquipmentID         string    `json:"equipment_id"`
	TeacherID           string    `json:"teacher_id"`
	ClassroomID         string    `json:"classroom_id"`
	Quantity            int       `json:"quantity"`
	Description         string    `json:"description"`
	ScheduledReturnDate time.Time `json:"scheduled_return_date"`
	CreatedBy           string    `json:"created_by"`
}

// RegistryInput is the request to file a damage/maintenance report.
type RegistryInput struct {
	EquipmentID  string    `json:"equipment_id"`
	Reason       string    `json:"reason"`
	Description  string    `json:"description"`
	DateOccurred time.Time `json:"date_occurred"`
	ReportedBy   string    `json:"reported_by"`
	Status       string    `json:"status"`
}

// LedgerService records loans, returns and damage reports, keeping stock
// counts, the audit trail and the notification fan-out in step.
type LedgerService struct {
	movements repository.MovementRepository
	equipment repository.EquipmentRepository
	registry  repository.RegistryRepository
	history   repository.HistoryRepository
	lookup    repository.LookupRepository
	notifier  *Notifier
	logger    *zap.Logger

	now func() time.Time
}

func NewLedgerService(
	movements repository.MovementRepository,
	equipment repository.EquipmentRepository,
	registry repository.RegistryRepository,
	history repository.HistoryRepository,
	lookup repository.LookupRepository,
	notifier *Notifier,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		movements: movements,
		equipment: equipment,
		registry:  registry,
		history:   history,
		lookup:    lookup,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordLoan debits stock and opens an active assignment in one transaction.
func (s *LedgerService) RecordLoan(ctx context.Context, input LoanInput) (*domain.Movement, error) {
	if input.EquipmentID == "" {
		return nil, domain.NewValidationError("equipment_id", "is required")
	}
	if input.TeacherID == "" {
		return nil, domain.NewValidationError("teacher_id", "is required")
	}
	if input.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity", "must be positive")
	}
	if input.ScheduledReturnDate.IsZero() {
		return nil, domain.NewValidationError("scheduled_return_date", "is required")
	}

	teacher, err := s.lookup.GetTeacher(ctx, input.TeacherID)
	if err != nil {
		if err == domain.ErrNotFound {
			return nil, domain.NewValidationError("teacher_id", "does not exist")
		}
		return nil, err
	}

	m := &domain.Movement{
		ID:                  uuid.NewString(),
		EquipmentID:         input.EquipmentID,
		TeacherID:           input.TeacherID,
		ClassroomID:         input.ClassroomID,
		Type:                domain.MovementAssignment,
		Quantity:            input.Quantity,
		Description:         input.Description,
		ScheduledReturnDate: input.ScheduledReturnDate,
		Status:              domain.MovementActive,
		CreatedBy:           input.CreatedBy,
		CreatedAt:           s.now().UTC(),
	}

	if err := s.movements.CreateMovement(ctx, m); err != nil {
		return nil, err
	}

	created, err := s.movements.GetMovement(ctx, m.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload movement: %w", err)
	}
	created.TeacherName = teacher.FullName

	s.appendHistory(ctx, &domain.HistoryEntry{
		ID:          uuid.NewString(),
		EquipmentID: m.EquipmentID,
		Action:      domain.ActionLoan,
		NewValues: map[string]any{
			"movement_id":           m.ID,
			"teacher_id":            m.TeacherID,
			"quantity":              m.Quantity,
			"scheduled_return_date": m.ScheduledReturnDate,
		},
		ChangedBy: input.CreatedBy,
	})

	if _, err := s.notifier.LoanRecorded(ctx, created); err != nil {
		s.logger.Warn("failed to notify loan", zap.String("movement_id", m.ID), zap.Error(err))
	}

	s.logger.Info("loan recorded",
		zap.String("movement_id", m.ID),
		zap.String("equipment_id", m.EquipmentID),
		zap.Int("quantity", m.Quantity))

	return created, nil
}

// RecordReturn completes an active assignment and credits the stock back.
func (s *LedgerService) RecordReturn(ctx context.Context, movementID, changedBy string) (*domain.Movement, error) {
	if movementID == "" {
		return nil, domain.NewValidationError("movement_id", "is required")
	}

	m, err := s.movements.CompleteMovement(ctx, movementID, s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.appendHistory(ctx, &domain.HistoryEntry{
		ID:          uuid.NewString(),
		EquipmentID: m.EquipmentID,
		Action:      domain.ActionReturn,
		NewValues: map[string]any{
			"movement_id":        m.ID,
			"quantity":           m.Quantity,
			"actual_return_date": m.ActualReturnDate,
		},
		ChangedBy: changedBy,
	})

	if _, err := s.notifier.ReturnRecorded(ctx, m); err != nil {
		s.logger.Warn("failed to notify return", zap.String("movement_id", m.ID), zap.Error(err))
	}

	s.logger.Info("return recorded",
		zap.String("movement_id", m.ID),
		zap.String("equipment_id", m.EquipmentID))

	return m, nil
}

func (s *LedgerService) GetMovement(ctx context.Context, id string) (*domain.Movement, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	m, err := s.movements.GetMovement(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Status = m.EffectiveStatus(s.now())
	return m, nil
}

// ListMovements lists the ledger with statuses as presented: an active
// assignment past its scheduled date reads as overdue.
func (s *LedgerService) ListMovements(ctx context.Context, filter repository.MovementFilter) ([]*domain.Movement, error) {
	// Overdue is a read-time view over active rows, so it cannot be pushed
	// into the stored-status filter.
	wantOverdue := filter.Status == domain.MovementOverdue
	if wantOverdue {
		filter.Status = domain.MovementActive
	}

	items, err := s.movements.ListMovements(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := items[:0]
	for _, m := range items {
		m.Status = m.EffectiveStatus(now)
		if wantOverdue && m.Status != domain.MovementOverdue {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

// DeleteMovement removes a ledger row outright. Availability is not
// restored; use a return-type movement to credit stock back.
func (s *LedgerService) DeleteMovement(ctx context.Context, id string) error {
	if id == "" {
		return domain.NewValidationError("id", "is required")
	}
	return s.movements.DeleteMovement(ctx, id)
}

// RecordRegistryEvent files a damage/maintenance report. The report is an
// independent record; it does not change the equipment's state.
func (s *LedgerService) RecordRegistryEvent(ctx context.Context, input RegistryInput) (*domain.RegistryEntry, error) {
	if input.EquipmentID == "" {
		return nil, domain.NewValidationError("equipment_id", "is required")
	}
	reason := domain.RegistryReason(input.Reason)
	if !reason.Valid() {
		return nil, domain.NewValidationError("reason", "is not a valid reason")
	}
	if input.Description == "" {
		return nil, domain.NewValidationError("description", "is required")
	}

	if _, err := s.equipment.GetEquipment(ctx, input.EquipmentID); err != nil {
		return nil, err
	}

	status := domain.RegistryPending
	if input.Status != "" {
		status = domain.RegistryStatus(input.Status)
		if !status.Valid() {
			return nil, domain.NewValidationError("status", "is not a valid status")
		}
	}

	occurred := input.DateOccurred
	if occurred.IsZero() {
		occurred = s.now().UTC()
	}

	e := &domain.RegistryEntry{
		ID:           uuid.NewString(),
		EquipmentID:  input.EquipmentID,
		Reason:       reason,
		Description:  input.Description,
		DateOccurred: occurred,
		ReportedBy:   input.ReportedBy,
		Status:       status,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.registry.CreateRegistryEntry(ctx, e); err != nil {
		return nil, fmt.Errorf("failed to create registry entry: %w", err)
	}

	s.appendHistory(ctx, &domain.HistoryEntry{
		ID:          uuid.NewString(),
		EquipmentID: e.EquipmentID,
		Action:      domain.ActionRegistry,
		NewValues: map[string]any{
			"registry_id": e.ID,
			"reason":      string(e.Reason),
			"description": e.Description,
		},
		ChangedBy: input.ReportedBy,
	})

	s.logger.Info("registry event recorded",
		zap.String("registry_id", e.ID),
		zap.String("equipment_id", e.EquipmentID),
		zap.String("reason", string(e.Reason)))

	return s.registry.GetRegistryEntry(ctx, e.ID)
}

func (s *LedgerService) GetRegistryEntry(ctx context.Context, id string) (*domain.RegistryEntry, error) {
	if id == "" {
		return nil, domain.NewValidationError("id", "is required")
	}
	return s.registry.GetRegistryEntry(ctx, id)
}

func (s *LedgerService) ListRegistry(ctx context.Context, filter repository.RegistryFilter) ([]*domain.RegistryEntry, error) {
	return s.registry.ListRegistry(ctx, filter)
}

func (s *LedgerService) UpdateRegistryStatus(ctx context.Context, id string, status domain.RegistryStatus) error {
	if id == "" {
		return domain.NewValidationError("id", "is required")
	}
	if !status.Valid() {
		return domain.NewValidationError("status", "is not a valid status")
	}
	return s.registry.UpdateRegistryStatus(ctx, id, status)
}

func (s *LedgerService) DeleteRegistryEntry(ctx context.Context, id string) error {
	if id == "" {
		return domain.NewValidationError("id", "is required")
	}
	return s.registry.DeleteRegistryEntry(ctx, id)
}

// ListHistory returns the audit log within [from, to], newest first. Zero
// bounds are open.
func (s *LedgerService) ListHistory(ctx context.Context, from, to time.Time) ([]*domain.HistoryEntry, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, domain.NewValidationError("to", "must not precede from")
	}
	return s.history.ListHistory(ctx, from, to)
}

func (s *LedgerService) appendHistory(ctx context.Context, e *domain.HistoryEntry) {
	if err := s.history.AppendHistory(ctx, e); err != nil {
		s.logger.Warn("failed to append history",
			zap.String("equipment_id", e.EquipmentID),
			zap.String("action", string(e.Action)),
			zap.Error(err))
	}
}
