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

// EquipmentHandler serves the catalog CRUD endpoints.
type EquipmentHandler struct {
	catalog *service.CatalogService
	logger  *zap.Logger
}

func NewEquipmentHandler(catalog *service.CatalogService, logger *zap.Logger) *EquipmentHandler {
	return &EquipmentHandler{catalog: catalog, logger: logger}
}

type equipmentRequest struct {
	Name               string     `json:"name" validate:"required"`
	Description        string     `json:"description"`
	Brand              string     `json:"brand"`
	Model              string     `json:"model"`
	SerialNumber       string     `json:"serial_number"`
	Quantity           int        `json:"quantity" validate:"gte=0"`
	AvailableQuantity  *int       `json:"available_quantity" validate:"omitempty,gte=0"`
	State              string     `json:"state" validate:"omitempty,oneof=available in_use maintenance damaged decommissioned"`
	CategoryID         string     `json:"category_id"`
	PurchaseDate       *time.Time `json:"purchase_date"`
	WarrantyExpiration *time.Time `json:"warranty_expiration"`
}

func (req *equipmentRequest) toDomain(createdBy string) *domain.Equipment {
	e := &domain.Equipment{
		Name:               req.Name,
		Description:        req.Description,
		Brand:              req.Brand,
		Model:              req.Model,
		SerialNumber:       req.SerialNumber,
		Quantity:           req.Quantity,
		State:              domain.EquipmentState(req.State),
		CategoryID:         req.CategoryID,
		PurchaseDate:       req.PurchaseDate,
		WarrantyExpiration: req.WarrantyExpiration,
		CreatedBy:          createdBy,
	}
	// New stock starts fully available unless stated otherwise.
	if req.AvailableQuantity != nil {
		e.AvailableQuantity = *req.AvailableQuantity
	} else {
		e.AvailableQuantity = req.Quantity
	}
	return e
}

// Collection handles /api/v1/equipment.
func (h *EquipmentHandler) Collection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		filter := repository.EquipmentFilter{
			State:        domain.EquipmentState(r.URL.Query().Get("state")),
			CategoryID:   r.URL.Query().Get("category_id"),
			Search:       r.URL.Query().Get("search"),
			OnlyLendable: r.URL.Query().Get("lendable") == "true",
		}
		items, err := h.catalog.ListEquipment(r.Context(), filter)
		if err != nil {
			h.logger.Error("failed to list equipment", zap.Error(err))
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"items": items, "total": len(items)}))

	case http.MethodPost:
		var req equipmentRequest
		if err := decodeValid(r, &req); err != nil {
			writeError(w, err)
			return
		}
		created, err := h.catalog.CreateEquipment(r.Context(), req.toDomain(actingUser(r)))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, Ok(created))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

// Item handles /api/v1/equipment/{id} and /api/v1/equipment/{id}/history.
func (h *EquipmentHandler) Item(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/v1/equipment/")
	if rest == "" {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	if id, ok := strings.CutSuffix(rest, "/history"); ok {
		if r.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		entries, err := h.catalog.ListHistoryForEquipment(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"items": entries, "total": len(entries)}))
		return
	}

	if strings.Contains(rest, "/") {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	id := rest

	switch r.Method {
	case http.MethodGet:
		e, err := h.catalog.GetEquipment(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(e))

	case http.MethodPut:
		var req equipmentRequest
		if err := decodeValid(r, &req); err != nil {
			writeError(w, err)
			return
		}
		e := req.toDomain(actingUser(r))
		e.ID = id
		if req.AvailableQuantity == nil {
			// An omitted available_quantity keeps the stored value, so an
			// edit cannot erase open loan debits.
			current, err := h.catalog.GetEquipment(r.Context(), id)
			if err != nil {
				writeError(w, err)
				return
			}
			e.AvailableQuantity = current.AvailableQuantity
		}
		updated, err := h.catalog.UpdateEquipment(r.Context(), e)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(updated))

	case http.MethodDelete:
		if err := h.catalog.DeleteEquipment(r.Context(), id, actingUser(r)); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, Ok(map[string]any{"deleted": true}))

	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}
