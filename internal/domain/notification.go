package domain

import "time"

// NotificationType is the severity shown in the inbox.
type NotificationType string

const (
	NotifyInfo    NotificationType = "info"
	NotifyWarning NotificationType = "warning"
	NotifyError   NotificationType = "error"
	NotifySuccess NotificationType = "success"
)

// Notification is one per-user inbox entry.
type Notification struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Type      NotificationType `json:"type"`
	Read      bool             `json:"read"`
	CreatedAt time.Time        `json:"created_at"`
}

// NotificationPreference selects which per-user toggle gates a fan-out.
type NotificationPreference string

const (
	PrefEmail    NotificationPreference = "email_notifications"
	PrefLowStock NotificationPreference = "low_stock_alerts"
	PrefLoans    NotificationPreference = "equipment_loans"
	PrefSystem   NotificationPreference = "system_updates"
)

// NotificationSettings are the per-user notification toggles.
type NotificationSettings struct {
	UserID             string `json:"user_id"`
	EmailNotifications bool   `json:"email_notifications"`
	LowStockAlerts     bool   `json:"low_stock_alerts"`
	EquipmentLoans     bool   `json:"equipment_loans"`
	SystemUpdates      bool   `json:"system_updates"`
}

// DefaultNotificationSettings mirrors the defaults created on first access:
// everything on except system update announcements.
func DefaultNotificationSettings(userID string) *NotificationSettings {
	return &NotificationSettings{
		UserID:             userID,
		EmailNotifications: true,
		LowStockAlerts:     true,
		EquipmentLoans:     true,
		SystemUpdates:      false,
	}
}

// Enabled reports whether the given preference toggle is on.
func (s *NotificationSettings) Enabled(pref NotificationPreference) bool {
	switch pref {
	case PrefEmail:
		return s.EmailNotifications
	case PrefLowStock:
		return s.LowStockAlerts
	case PrefLoans:
		return s.EquipmentLoans
	case PrefSystem:
		return s.SystemUpdates
	}
	return false
}
