package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"school-inventory/internal/domain"
	"school-inventory/internal/repository"
	"school-inventory/internal/store"
)

type ledgerFixture struct {
	equipment *repository.MemoryEquipmentRepository
	movements *repository.MemoryMovementRepository
	registry  *repository.MemoryRegistryRepository
	history   *repository.MemoryHistoryRepository
	inbox     *repository.MemoryNotificationRepository
	lookup    *repository.MemoryLookupRepository
	ledger    *LedgerService
}

func newLedgerFixture(t *testing.T) *ledgerFixture {
	t.Helper()

	equipment := repository.NewMemoryEquipmentRepository()
	movements := repository.NewMemoryMovementRepository(equipment)
	registry := repository.NewMemoryRegistryRepository()
	history := repository.NewMemoryHistoryRepository()
	inbox := repository.NewMemoryNotificationRepository()
	lookup := repository.NewMemoryLookupRepository()

	logger := zap.NewNop()
	notifier := NewNotifier(inbox, store.NewMemoryKV(), 30*time.Minute, logger)
	ledger := NewLedgerService(movements, equipment, registry, history, lookup, notifier, logger)

	lookup.AddTeacher(&domain.Teacher{ID: "t-1", FullName: "Maria Lopez"})

	return &ledgerFixture{
		equipment: equipment,
		movements: movements,
		registry:  registry,
		history:   history,
		inbox:     inbox,
		lookup:    lookup,
		ledger:    ledger,
	}
}

func (f *ledgerFixture) seedEquipment(t *testing.T, quantity int) *domain.Equipment {
	t.Helper()
	e := &domain.Equipment{
		ID:                "eq-1",
		Name:              "Projector",
		Quantity:          quantity,
		AvailableQuantity: quantity,
		State:             domain.StateAvailable,
	}
	require.NoError(t, f.equipment.CreateEquipment(context.Background(), e))
	return e
}

func TestLoanReturnRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	f.seedEquipment(t, 10)

	m, err := f.ledger.RecordLoan(ctx, LoanInput{
		EquipmentID:         "eq-1",
		TeacherID:           "t-1",
		Quantity:            3,
		ScheduledReturnDate: time.Now().Add(7 * 24 * time.Hour),
	})
	require.NoError(t, err)
	require.Equal(t, domain.MovementActive, m.Status)
	require.Equal(t, "Projector", m.EquipmentName)

	e, err := f.equipment.GetEquipment(ctx, "eq-1")
	require.NoError(t, err)
	require.Equal(t, 7, e.AvailableQuantity)

	returned, err := f.ledger.RecordReturn(ctx, m.ID, "admin")
	require.NoError(t, err)
	require.Equal(t, domain.MovementCompleted, returned.Status)
	require.NotNil(t, returned.ActualReturnDate)

	e, err = f.equipment.GetEquipment(ctx, "eq-1")
	require.NoError(t, err)
	require.Equal(t, 10, e.AvailableQuantity)

	entries, err := f.history.ListHistoryForEquipment(ctx, "eq-1")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	actions := []domain.HistoryAction{entries[0].Action, entries[1].Action}
	require.Contains(t, actions, domain.ActionLoan)
	require.Contains(t, actions, domain.ActionReturn)
}

func TestLoanInsufficientStockLeavesNoTrace(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	f.seedEquipment(t, 2)

	_, err := f.ledger.RecordLoan(ctx, LoanInput{
		EquipmentID:         "eq-1",
		TeacherID:           "t-1",
		Quantity:            5,
		ScheduledReturnDate: time.Now().Add(24 * time.Hour),
	})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	e, err := f.equipment.GetEquipment(ctx, "eq-1")
	require.NoError(t, err)
	require.Equal(t, 2, e.AvailableQuantity)

	movements, err := f.ledger.ListMovements(ctx, repository.MovementFilter{})
	require.NoError(t, err)
	require.Empty(t, movements)

	entries, err := f.history.ListHistoryForEquipment(ctx, "eq-1")
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestDoubleReturnNeverDoubleCredits(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	f.seedEquipment(t, 10)

	m, err := f.ledger.RecordLoan(ctx, LoanInput{
		EquipmentID:         "eq-1",
		TeacherID:           "t-1",
		Quantity:            4,
		ScheduledReturnDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	_, err = f.ledger.RecordReturn(ctx, m.ID, "admin")
	require.NoError(t, err)

	_, err = f.ledger.RecordReturn(ctx, m.ID, "admin")
	require.ErrorIs(t, err, domain.ErrNotFound)

	e, err := f.equipment.GetEquipment(ctx, "eq-1")
	require.NoError(t, err)
	require.Equal(t, 10, e.AvailableQuantity)
}

func TestLoanValidation(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	f.seedEquipment(t, 10)

	due := time.Now().Add(24 * time.Hour)
	tests := []struct {
		name  string
		input LoanInput
	}{
		{"missing equipment", LoanInput{TeacherID: "t-1", Quantity: 1, ScheduledReturnDate: due}},
		{"missing teacher", LoanInput{EquipmentID: "eq-1", Quantity: 1, ScheduledReturnDate: due}},
		{"zero quantity", LoanInput{EquipmentID: "eq-1", TeacherID: "t-1", ScheduledReturnDate: due}},
		{"negative quantity", LoanInput{EquipmentID: "eq-1", TeacherID: "t-1", Quantity: -1, ScheduledReturnDate: due}},
		{"missing return date", LoanInput{EquipmentID: "eq-1", TeacherID: "t-1", Quantity: 1}},
		{"unknown teacher", LoanInput{EquipmentID: "eq-1", TeacherID: "nobody", Quantity: 1, ScheduledReturnDate: due}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.ledger.RecordLoan(ctx, tt.input)
			require.True(t, domain.IsValidationError(err), "expected validation error, got %v", err)
		})
	}
}

func TestOverdueComputedAtReadTime(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	f.seedEquipment(t, 5)

	m, err := f.ledger.RecordLoan(ctx, LoanInput{
		EquipmentID:         "eq-1",
		TeacherID:           "t-1",
		Quantity:            1,
		ScheduledReturnDate: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	// Shift the clock past the due date.
	f.ledger.now = func() time.Time { return time.Now().Add(48 * time.Hour) }

	got, err := f.ledger.GetMovement(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, domain.MovementOverdue, got.Status)

	overdue, err := f.ledger.ListMovements(ctx, repository.MovementFilter{Status: domain.MovementOverdue})
	require.NoError(t, err)
	require.Len(t, overdue, 1)

	// The stored row stays active; a return still works.
	f.ledger.now = time.Now
	_, err = f.ledger.RecordReturn(ctx, m.ID, "admin")
	require.NoError(t, err)
}

func TestDeleteMovementDoesNotRestoreAvailability(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	f.seedEquipment(t, 10)

	m, err := f.ledger.RecordLoan(ctx, LoanInput{
		EquipmentID:         "eq-1",
		TeacherID:           "t-1",
		Quantity:            3,
		ScheduledReturnDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	require.NoError(t, f.ledger.DeleteMovement(ctx, m.ID))

	_, err = f.ledger.GetMovement(ctx, m.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// The units stay debited: deletion erases the record, not the effect.
	e, err := f.equipment.GetEquipment(ctx, "eq-1")
	require.NoError(t, err)
	require.Equal(t, 7, e.AvailableQuantity)
}

func TestRegistryEventDoesNotTouchEquipmentState(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	f.seedEquipment(t, 3)

	entry, err := f.ledger.RecordRegistryEvent(ctx, RegistryInput{
		EquipmentID: "eq-1",
		Reason:      "malfunction",
		Description: "screen flickers",
		ReportedBy:  "admin",
	})
	require.NoError(t, err)
	require.Equal(t, domain.RegistryPending, entry.Status)

	e, err := f.equipment.GetEquipment(ctx, "eq-1")
	require.NoError(t, err)
	require.Equal(t, domain.StateAvailable, e.State)

	require.NoError(t, f.ledger.UpdateRegistryStatus(ctx, entry.ID, domain.RegistryResolved))
	got, err := f.ledger.GetRegistryEntry(ctx, entry.ID)
	require.NoError(t, err)
	require.Equal(t, domain.RegistryResolved, got.Status)

	err = f.ledger.UpdateRegistryStatus(ctx, entry.ID, domain.RegistryStatus("broken"))
	require.True(t, domain.IsValidationError(err))
}

func TestRegistryEventValidation(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	f.seedEquipment(t, 3)

	_, err := f.ledger.RecordRegistryEvent(ctx, RegistryInput{
		EquipmentID: "eq-1",
		Reason:      "not-a-reason",
		Description: "x",
	})
	require.True(t, domain.IsValidationError(err))

	_, err = f.ledger.RecordRegistryEvent(ctx, RegistryInput{
		EquipmentID: "eq-1",
		Reason:      "repair",
	})
	require.True(t, domain.IsValidationError(err))

	_, err = f.ledger.RecordRegistryEvent(ctx, RegistryInput{
		EquipmentID: "missing",
		Reason:      "repair",
		Description: "x",
	})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoanNotifiesSubscribers(t *testing.T) {
	ctx := context.Background()
	f := newLedgerFixture(t)
	f.seedEquipment(t, 10)

	require.NoError(t, f.inbox.UpsertSettings(ctx, domain.DefaultNotificationSettings("u-1")))
	optedOut := domain.DefaultNotificationSettings("u-2")
	optedOut.EquipmentLoans = false
	require.NoError(t, f.inbox.UpsertSettings(ctx, optedOut))

	_, err := f.ledger.RecordLoan(ctx, LoanInput{
		EquipmentID:         "eq-1",
		TeacherID:           "t-1",
		Quantity:            1,
		ScheduledReturnDate: time.Now().Add(24 * time.Hour),
	})
	require.NoError(t, err)

	got, err := f.inbox.ListNotifications(ctx, "u-1", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, domain.NotifyInfo, got[0].Type)

	none, err := f.inbox.ListNotifications(ctx, "u-2", 10)
	require.NoError(t, err)
	require.Empty(t, none)
}
