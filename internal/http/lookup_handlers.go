package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"school-inventory/internal/domain"
	"school-inventory/internal/repository"
	"school-inventory/internal/service"
)

// LookupHandler serves the reference lists the forms depend on and the
// dashboard counters.
type LookupHandler struct {
	lookup  repository.LookupRepository
	catalog *service.CatalogService
	ledger  *service.LedgerService
	logger  *zap.Logger
}

func NewLookupHandler(
	lookup repository.LookupRepository,
	catalog *service.CatalogService,
	ledger *service.LedgerService,
	logger *zap.Logger,
) *LookupHandler {
	return &LookupHandler{lookup: lookup, catalog: catalog, ledger: ledger, logger: logger}
}

// Lookups handles GET /api/v1/lookup/{teachers|classrooms|categories}.
func (h *LookupHandler) Lookups(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	kind := strings.TrimPrefix(r.URL.Path, "/api/v1/lookup/")
	var (
		items any
		err   error
	)
	switch kind {
	case "teachers":
		items, err = h.lookup.ListTeachers(r.Context())
	case "classrooms":
		items, err = h.lookup.ListClassrooms(r.Context())
	case "categories":
		items, err = h.lookup.ListCategories(r.Context())
	default:
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		h.logger.Error("failed to list lookup", zap.String("kind", kind), zap.Error(err))
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": items}))
}

// Stats handles GET /api/v1/dashboard/stats.
func (h *LookupHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	equipment, err := h.catalog.ListEquipment(r.Context(), repository.EquipmentFilter{})
	if err != nil {
		writeError(w, err)
		return
	}
	var totalUnits, availableUnits int
	for _, e := range equipment {
		totalUnits += e.Quantity
		availableUnits += e.AvailableQuantity
	}

	movements, err := h.ledger.ListMovements(r.Context(), repository.MovementFilter{Status: domain.MovementActive})
	if err != nil {
		writeError(w, err)
		return
	}
	var active, overdue int
	for _, m := range movements {
		if m.Status == domain.MovementOverdue {
			overdue++
		} else {
			active++
		}
	}

	pending, err := h.ledger.ListRegistry(r.Context(), repository.RegistryFilter{Status: domain.RegistryPending})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, Ok(map[string]any{
		"equipment_entries": len(equipment),
		"total_units":       totalUnits,
		"available_units":   availableUnits,
		"active_loans":      active,
		"overdue_loans":     overdue,
		"pending_reports":   len(pending),
	}))
}
