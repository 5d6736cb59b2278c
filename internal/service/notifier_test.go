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

func newNotifierFixture(t *testing.T) (*Notifier, *repository.MemoryNotificationRepository) {
	t.Helper()
	repo := repository.NewMemoryNotificationRepository()
	n := NewNotifier(repo, store.NewMemoryKV(), 30*time.Minute, zap.NewNop())
	return n, repo
}

func TestLowStockDebounce(t *testing.T) {
	ctx := context.Background()
	n, repo := newNotifierFixture(t)
	require.NoError(t, repo.UpsertSettings(ctx, domain.DefaultNotificationSettings("u-1")))

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return base }

	items := []*domain.Equipment{{Name: "Tablet", Quantity: 20, AvailableQuantity: 2}}

	sent, err := n.LowStock(ctx, items)
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	// 10 minutes later: inside the window, suppressed.
	n.now = func() time.Time { return base.Add(10 * time.Minute) }
	sent, err = n.LowStock(ctx, items)
	require.NoError(t, err)
	require.Zero(t, sent)

	// 40 minutes later: window elapsed, delivered again.
	n.now = func() time.Time { return base.Add(40 * time.Minute) }
	sent, err = n.LowStock(ctx, items)
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	inbox, err := repo.ListNotifications(ctx, "u-1", 10)
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	require.Equal(t, "Low Stock Alert", inbox[0].Title)
	require.Contains(t, inbox[0].Message, "Tablet (2 available)")
}

func TestLowStockSkipsUsersWithAlertsOff(t *testing.T) {
	ctx := context.Background()
	n, repo := newNotifierFixture(t)

	require.NoError(t, repo.UpsertSettings(ctx, domain.DefaultNotificationSettings("on")))
	off := domain.DefaultNotificationSettings("off")
	off.LowStockAlerts = false
	require.NoError(t, repo.UpsertSettings(ctx, off))

	sent, err := n.LowStock(ctx, []*domain.Equipment{{Name: "Cable", Quantity: 5, AvailableQuantity: 1}})
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	got, err := repo.ListNotifications(ctx, "off", 10)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestLowStockNoRecipientsDoesNotStartDebounce(t *testing.T) {
	ctx := context.Background()
	n, repo := newNotifierFixture(t)

	base := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	n.now = func() time.Time { return base }

	items := []*domain.Equipment{{Name: "Microphone", Quantity: 8, AvailableQuantity: 1}}

	// Nobody subscribed yet: nothing is delivered and no window starts.
	sent, err := n.LowStock(ctx, items)
	require.NoError(t, err)
	require.Zero(t, sent)

	require.NoError(t, repo.UpsertSettings(ctx, domain.DefaultNotificationSettings("u-1")))

	// The first subscriber hears the very next alert.
	n.now = func() time.Time { return base.Add(5 * time.Minute) }
	sent, err = n.LowStock(ctx, items)
	require.NoError(t, err)
	require.Equal(t, 1, sent)
}

func TestLowStockNoItemsSendsNothing(t *testing.T) {
	ctx := context.Background()
	n, repo := newNotifierFixture(t)
	require.NoError(t, repo.UpsertSettings(ctx, domain.DefaultNotificationSettings("u-1")))

	sent, err := n.LowStock(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, sent)
}

func TestSendExplicitTargets(t *testing.T) {
	ctx := context.Background()
	n, repo := newNotifierFixture(t)

	sent, err := n.Send(ctx, domain.NotifySuccess, "Welcome", "hello", "u-7")
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	got, err := repo.ListNotifications(ctx, "u-7", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "Welcome", got[0].Title)
	require.False(t, got[0].Read)
}

func TestSystemUpdateGatedOnOptIn(t *testing.T) {
	ctx := context.Background()
	n, repo := newNotifierFixture(t)

	// Defaults leave system updates off.
	require.NoError(t, repo.UpsertSettings(ctx, domain.DefaultNotificationSettings("default")))
	optedIn := domain.DefaultNotificationSettings("fan")
	optedIn.SystemUpdates = true
	require.NoError(t, repo.UpsertSettings(ctx, optedIn))

	sent, err := n.SystemUpdate(ctx, "Maintenance window", "Saturday 22:00")
	require.NoError(t, err)
	require.Equal(t, 1, sent)

	got, err := repo.ListNotifications(ctx, "fan", 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestSettingsCreatedOnFirstRead(t *testing.T) {
	ctx := context.Background()
	n, repo := newNotifierFixture(t)

	s, err := n.Settings(ctx, "new-user")
	require.NoError(t, err)
	require.True(t, s.EmailNotifications)
	require.True(t, s.LowStockAlerts)
	require.True(t, s.EquipmentLoans)
	require.False(t, s.SystemUpdates)

	// The defaults are persisted, not just returned.
	stored, err := repo.GetSettings(ctx, "new-user")
	require.NoError(t, err)
	require.Equal(t, s, stored)
}

func TestInboxReadTracking(t *testing.T) {
	ctx := context.Background()
	n, _ := newNotifierFixture(t)

	for i := 0; i < 3; i++ {
		_, err := n.Send(ctx, domain.NotifyInfo, "ping", "pong", "u-1")
		require.NoError(t, err)
	}

	unread, err := n.UnreadCount(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, 3, unread)

	items, err := n.Inbox(ctx, "u-1", 10)
	require.NoError(t, err)
	require.Len(t, items, 3)

	require.NoError(t, n.MarkRead(ctx, items[0].ID, "u-1"))
	unread, err = n.UnreadCount(ctx, "u-1")
	require.NoError(t, err)
	require.Equal(t, 2, unread)

	// Wrong owner cannot mark someone else's row.
	require.ErrorIs(t, n.MarkRead(ctx, items[1].ID, "u-2"), domain.ErrNotFound)

	require.NoError(t, n.MarkAllRead(ctx, "u-1"))
	unread, err = n.UnreadCount(ctx, "u-1")
	require.NoError(t, err)
	require.Zero(t, unread)
}
