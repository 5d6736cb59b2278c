package httpapi

import (
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"school-inventory/internal/domain"
	"school-inventory/internal/repository"
	"school-inventory/internal/service"
)

// MovementHandler serves the loan/return ledger, the damage registry and the
// audit history.
type MovementHandler struct {
	ledger *service.LedgerService
	logger *zap.Logger
}

func NewMovementHandler(ledger *service.LedgerService, logger *zap.Logger) *MovementHandler {
	return &MovementHandler{ledger: ledger, logger: logger}
}

type loanRequest struct {
	EquipmentID         string    `json:"equipment_id" validate:"required"`
	TeacherID           string    `json:"teacher_id" validate:"required"`
	ClassroomID         string    `json:"classroom_id"`
	Quantity            int       `json:"quantity" validate:"gt=0"`
	Description         string    `json:"description"`
	ScheduledReturnDate time.Time `json:"scheduled_return_date" validate:"required"`
}

type registryRequest struct {
	EquipmentID  string    `json:"equipment_id" validate:"required"`
	Reason       string    `json:"reason" validate:"required,oneof=malfunction decommission maintenance repair"`
	Description  string    `json:"description" validate:"required"`
	DateOccurred time.Time `json:"date_occurred"`
	Status       string    `json:"status" validate:"omitempty,oneof=pending in_progress resolved irreparable"`
}

type registryStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=pending in_progress resolved irreparable"`
}

// Movements handles /api/v1/movements.
func (h *MovementHandler) Movements(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := repository.MovementFilter{
			Status:      domain.MovementStatus(r.URL.Query().Get("status")),
			Type:        domain.MovementType(r.URL.Query().Get("type")),
			EquipmentID: r.URL.Query().Get("equipment_id"),
			TeacherID:   r.URL.Query().Get("teacher_id"),
			Search:      r.URL.Query().Get("search"),
		}
		items, err := h.ledger.ListMovements(r.Context(), filter)
		if err != nil {
			h.logger.Error("failed to list movements", zap.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"items": items, "total": len(items)}))

	case http.MethodPost:
		var req loanRequest
		if err := decodeValid(r, &req); err != nil {
			writeError(w, err)
			return
		}
		m, err := h.ledger.RecordLoan(r.Context(), service.LoanInput{
			EquipmentID:         req.EquipmentID,
			TeacherID:           req.TeacherID,
			ClassroomID:         req.ClassroomID,
			Quantity:            req.Quantity,
			Description:         req.Description,
			ScheduledReturnDate: req.ScheduledReturnDate,
			CreatedBy:           actingUser(r),
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(m))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// MovementByID handles /api/v1/movements/{id} and /api/v1/movements/{id}/return.
func (h *MovementHandler) MovementByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/movements/")
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if id, ok := strings.CutSuffix(rest, "/return"); ok {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		m, err := h.ledger.RecordReturn(r.Context(), id, actingUser(r))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(m))
		return
	}

	if strings.Contains(rest, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := rest

	switch r.Method {
	case http.MethodGet:
		m, err := h.ledger.GetMovement(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(m))

	case http.MethodDelete:
		if err := h.ledger.DeleteMovement(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": true}))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Registry handles /api/v1/registry.
func (h *MovementHandler) Registry(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := repository.RegistryFilter{
			Reason:      domain.RegistryReason(r.URL.Query().Get("reason")),
			Status:      domain.RegistryStatus(r.URL.Query().Get("status")),
			EquipmentID: r.URL.Query().Get("equipment_id"),
		}
		items, err := h.ledger.ListRegistry(r.Context(), filter)
		if err != nil {
			h.logger.Error("failed to list registry", zap.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"items": items, "total": len(items)}))

	case http.MethodPost:
		var req registryRequest
		if err := decodeValid(r, &req); err != nil {
			writeError(w, err)
			return
		}
		e, err := h.ledger.RecordRegistryEvent(r.Context(), service.RegistryInput{
			EquipmentID:  req.EquipmentID,
			Reason:       req.Reason,
			Description:  req.Description,
			DateOccurred: req.DateOccurred,
			ReportedBy:   actingUser(r),
			Status:       req.Status,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(e))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// RegistryByID handles /api/v1/registry/{id} and /api/v1/registry/{id}/status.
func (h *MovementHandler) RegistryByID(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/registry/")
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if id, ok := strings.CutSuffix(rest, "/status"); ok {
		if r.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		var req registryStatusRequest
		if err := decodeValid(r, &req); err != nil {
			writeError(w, err)
			return
		}
		if err := h.ledger.UpdateRegistryStatus(r.Context(), id, domain.RegistryStatus(req.Status)); err != nil {
			writeError(w, err)
			return
		}
		e, err := h.ledger.GetRegistryEntry(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(e))
		return
	}

	if strings.Contains(rest, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := rest

	switch r.Method {
	case http.MethodGet:
		e, err := h.ledger.GetRegistryEntry(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(e))

	case http.MethodDelete:
		if err := h.ledger.DeleteRegistryEntry(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": true}))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// History handles GET /api/v1/history?from=&to=.
func (h *MovementHandler) History(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	from := parseDate(r.URL.Query().Get("from"))
	rawTo := r.URL.Query().Get("to")
	to := parseDate(rawTo)
	if !to.IsZero() && len(rawTo) == len("2006-01-02") {
		// An inclusive end date covers the whole day.
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	items, err := h.ledger.ListHistory(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, Ok(map[string]any{"items": items, "total": len(items)}))
}
