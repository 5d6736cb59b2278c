package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps the standard library http.ServeMux.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterHealthRoutes wires the liveness probe.
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, Ok(map[string]any{"status": "ok"}))
	})
}

// RegisterEquipmentRoutes wires the catalog endpoints.
func (r *Router) RegisterEquipmentRoutes(h *EquipmentHandler) {
	r.Handle("/api/v1/equipment", h.Collection)
	r.Handle("/api/v1/equipment/", h.Item)
}

// RegisterLedgerRoutes wires movements, registry and history.
func (r *Router) RegisterLedgerRoutes(h *MovementHandler) {
	r.Handle("/api/v1/movements", h.Movements)
	r.Handle("/api/v1/movements/", h.MovementByID)
	r.Handle("/api/v1/registry", h.Registry)
	r.Handle("/api/v1/registry/", h.RegistryByID)
	r.Handle("/api/v1/history", h.History)
}

// RegisterNotificationRoutes wires the inbox and settings.
func (r *Router) RegisterNotificationRoutes(h *NotificationHandler) {
	r.Handle("/api/v1/notifications", h.Inbox)
	r.Handle("/api/v1/notifications/", h.Actions)
}

// RegisterReportRoutes wires the JSON reports and workbook downloads.
func (r *Router) RegisterReportRoutes(h *ReportHandler) {
	r.Handle("/api/v1/reports/low-stock", h.LowStock)
	r.Handle("/api/v1/reports/low-stock/export", h.LowStock)
	r.Handle("/api/v1/reports/movements/export", h.Movements)
}

// RegisterLookupRoutes wires the reference lists and dashboard counters.
func (r *Router) RegisterLookupRoutes(h *LookupHandler) {
	r.Handle("/api/v1/lookup/", h.Lookups)
	r.Handle("/api/v1/dashboard/stats", h.Stats)
}

// RegisterAssistantRoutes wires the chat relay.
func (r *Router) RegisterAssistantRoutes(h *AssistantHandler) {
	r.Handle("/api/v1/assistant/chat", h.Chat)
}
