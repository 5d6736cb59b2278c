package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"school-inventory/internal/domain"
	"school-inventory/internal/repository"
	"school-inventory/internal/store"
)

const debouncePrefix = "notify:last:"

// Notifier fans notifications out to every user whose settings enable the
// relevant category, and manages the per-user inbox and settings.
type Notifier struct {
	repo   repository.NotificationRepository
	kv     store.KV
	logger *zap.Logger

	// debounce suppresses repeats of the same low-stock title within the
	// window. now is swappable for tests.
	debounce time.Duration
	now      func() time.Time
}

func NewNotifier(
	repo repository.NotificationRepository,
	kv store.KV,
	debounce time.Duration,
	logger *zap.Logger,
) *Notifier {
	return &Notifier{
		repo:     repo,
		kv:       kv,
		logger:   logger,
		debounce: debounce,
		now:      time.Now,
	}
}

// Broadcast delivers one notification to every user with pref enabled.
// Returns the number of inbox rows written.
func (n *Notifier) Broadcast(ctx context.Context, pref domain.NotificationPreference, typ domain.NotificationType, title, message string) (int, error) {
	userIDs, err := n.repo.ListRecipients(ctx, pref)
	if err != nil {
		return 0, fmt.Errorf("failed to list recipients: %w", err)
	}
	if len(userIDs) == 0 {
		return 0, nil
	}

	rows := make([]*domain.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, &domain.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Title:     title,
			Message:   message,
			Type:      typ,
			CreatedAt: n.now().UTC(),
		})
	}

	if err := n.repo.InsertNotifications(ctx, rows); err != nil {
		return 0, fmt.Errorf("failed to insert notifications: %w", err)
	}

	n.logger.Info("notification broadcast",
		zap.String("title", title),
		zap.String("preference", string(pref)),
		zap.Int("recipients", len(rows)))
	return len(rows), nil
}

// Send delivers one notification to the given users, or to every user with
// email notifications enabled when no targets are named.
func (n *Notifier) Send(ctx context.Context, typ domain.NotificationType, title, message string, userIDs ...string) (int, error) {
	if len(userIDs) == 0 {
		return n.Broadcast(ctx, domain.PrefEmail, typ, title, message)
	}

	rows := make([]*domain.Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, &domain.Notification{
			ID:        uuid.NewString(),
			UserID:    userID,
			Title:     title,
			Message:   message,
			Type:      typ,
			CreatedAt: n.now().UTC(),
		})
	}
	if err := n.repo.InsertNotifications(ctx, rows); err != nil {
		return 0, fmt.Errorf("failed to insert notifications: %w", err)
	}
	return len(rows), nil
}

// LowStock raises one aggregate alert for the given depleted entries.
// Repeats of the same title within the debounce window are dropped silently,
// so the periodic scan does not flood inboxes.
func (n *Notifier) LowStock(ctx context.Context, items []*domain.Equipment) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	const title = "Low Stock Alert"
	if n.debounced(ctx, title) {
		return 0, nil
	}

	lines := make([]string, 0, len(items))
	for _, e := range items {
		lines = append(lines, fmt.Sprintf("%s (%d available)", e.Name, e.AvailableQuantity))
	}
	message := "Running low: " + strings.Join(lines, ", ")

	sent, err := n.Broadcast(ctx, domain.PrefLowStock, domain.NotifyWarning, title, message)
	if err != nil {
		return 0, err
	}

	// A delivery to nobody must not start the window, or the first real
	// subscriber would be silenced until it elapses.
	if sent > 0 {
		n.stamp(ctx, title)
	}
	return sent, nil
}

// LoanRecorded announces a new loan to users following equipment movements.
func (n *Notifier) LoanRecorded(ctx context.Context, m *domain.Movement) (int, error) {
	title := fmt.Sprintf("Equipment loaned: %s", m.EquipmentName)
	message := fmt.Sprintf("%d x %s assigned to %s, due back %s.",
		m.Quantity, m.EquipmentName, m.TeacherName,
		m.ScheduledReturnDate.Format("2006-01-02"))
	return n.Broadcast(ctx, domain.PrefLoans, domain.NotifyInfo, title, message)
}

// ReturnRecorded announces a completed return.
func (n *Notifier) ReturnRecorded(ctx context.Context, m *domain.Movement) (int, error) {
	title := fmt.Sprintf("Equipment returned: %s", m.EquipmentName)
	message := fmt.Sprintf("%d x %s returned by %s.",
		m.Quantity, m.EquipmentName, m.TeacherName)
	return n.Broadcast(ctx, domain.PrefLoans, domain.NotifySuccess, title, message)
}

// SystemUpdate announces a system-wide change to users who opted in.
func (n *Notifier) SystemUpdate(ctx context.Context, title, message string) (int, error) {
	return n.Broadcast(ctx, domain.PrefSystem, domain.NotifyInfo, title, message)
}

// debounced reports whether title was already sent within the window.
func (n *Notifier) debounced(ctx context.Context, title string) bool {
	if n.debounce <= 0 {
		return false
	}
	val, err := n.kv.Get(ctx, debouncePrefix+title)
	if err != nil {
		if err != store.ErrMiss {
			n.logger.Warn("failed to read debounce key", zap.String("title", title), zap.Error(err))
		}
		return false
	}
	last, err := time.Parse(time.RFC3339, val)
	if err != nil {
		return false
	}
	return n.now().Sub(last) < n.debounce
}

func (n *Notifier) stamp(ctx context.Context, title string) {
	err := n.kv.Set(ctx, debouncePrefix+title, n.now().UTC().Format(time.RFC3339), n.debounce)
	if err != nil {
		n.logger.Warn("failed to write debounce key", zap.String("title", title), zap.Error(err))
	}
}

// --- inbox ---

func (n *Notifier) Inbox(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	if userID == "" {
		return nil, domain.NewValidationError("user_id", "is required")
	}
	return n.repo.ListNotifications(ctx, userID, limit)
}

func (n *Notifier) UnreadCount(ctx context.Context, userID string) (int, error) {
	if userID == "" {
		return 0, domain.NewValidationError("user_id", "is required")
	}
	return n.repo.UnreadCount(ctx, userID)
}

func (n *Notifier) MarkRead(ctx context.Context, id, userID string) error {
	if id == "" {
		return domain.NewValidationError("id", "is required")
	}
	if userID == "" {
		return domain.NewValidationError("user_id", "is required")
	}
	return n.repo.MarkRead(ctx, id, userID)
}

func (n *Notifier) MarkAllRead(ctx context.Context, userID string) error {
	if userID == "" {
		return domain.NewValidationError("user_id", "is required")
	}
	return n.repo.MarkAllRead(ctx, userID)
}

// --- settings ---

// Settings returns the user's notification toggles, creating the default
// row on first access.
func (n *Notifier) Settings(ctx context.Context, userID string) (*domain.NotificationSettings, error) {
	if userID == "" {
		return nil, domain.NewValidationError("user_id", "is required")
	}

	s, err := n.repo.GetSettings(ctx, userID)
	if err == nil {
		return s, nil
	}
	if err != domain.ErrNotFound {
		return nil, err
	}

	s = domain.DefaultNotificationSettings(userID)
	if err := n.repo.UpsertSettings(ctx, s); err != nil {
		return nil, fmt.Errorf("failed to create default settings: %w", err)
	}
	return s, nil
}

func (n *Notifier) UpdateSettings(ctx context.Context, s *domain.NotificationSettings) error {
	if s.UserID == "" {
		return domain.NewValidationError("user_id", "is required")
	}
	return n.repo.UpsertSettings(ctx, s)
}
