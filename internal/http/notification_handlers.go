package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"school-inventory/internal/domain"
	"school-inventory/internal/service"
)

// NotificationHandler serves the per-user inbox and settings endpoints. The
// acting user comes from the X-User-ID header.
type NotificationHandler struct {
	notifier *service.Notifier
	logger   *zap.Logger
}

func NewNotificationHandler(notifier *service.Notifier, logger *zap.Logger) *NotificationHandler {
	return &NotificationHandler{notifier: notifier, logger: logger}
}

type settingsRequest struct {
	EmailNotifications bool `json:"email_notifications"`
	LowStockAlerts     bool `json:"low_stock_alerts"`
	EquipmentLoans     bool `json:"equipment_loans"`
	SystemUpdates      bool `json:"system_updates"`
}

// Inbox handles GET /api/v1/notifications.
func (h *NotificationHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	userID := actingUser(r)
	limit := parseInt(r.URL.Query().Get("limit"), 10)

	items, err := h.notifier.Inbox(r.Context(), userID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	unread, err := h.notifier.UnreadCount(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"items":  items,
		"total":  len(items),
		"unread": unread,
	}))
}

// Actions handles /api/v1/notifications/{id}/read, /read-all and /settings.
func (h *NotificationHandler) Actions(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/notifications/")
	userID := actingUser(r)

	switch {
	case rest == "read-all":
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := h.notifier.MarkAllRead(r.Context(), userID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"read": true}))

	case rest == "settings":
		h.settings(w, r, userID)

	default:
		id, ok := strings.CutSuffix(rest, "/read")
		if !ok || id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := h.notifier.MarkRead(r.Context(), id, userID); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"read": true}))
	}
}

func (h *NotificationHandler) settings(w http.ResponseWriter, r *http.Request, userID string) {
	switch r.Method {
	case http.MethodGet:
		s, err := h.notifier.Settings(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(s))

	case http.MethodPut:
		var req settingsRequest
		if err := decodeValid(r, &req); err != nil {
			writeError(w, err)
			return
		}
		s := &domain.NotificationSettings{
			UserID:             userID,
			EmailNotifications: req.EmailNotifications,
			LowStockAlerts:     req.LowStockAlerts,
			EquipmentLoans:     req.EquipmentLoans,
			SystemUpdates:      req.SystemUpdates,
		}
		if err := h.notifier.UpdateSettings(r.Context(), s); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(s))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
