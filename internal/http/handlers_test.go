package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"school-inventory/internal/domain"
	"school-inventory/internal/repository"
	"school-inventory/internal/service"
	"school-inventory/internal/store"
)

type testAPI struct {
	router *Router
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	logger := zap.NewNop()
	equipment := repository.NewMemoryEquipmentRepository()
	movements := repository.NewMemoryMovementRepository(equipment)
	registry := repository.NewMemoryRegistryRepository()
	history := repository.NewMemoryHistoryRepository()
	inbox := repository.NewMemoryNotificationRepository()
	lookup := repository.NewMemoryLookupRepository()
	lookup.AddTeacher(&domain.Teacher{ID: "t-1", FullName: "Maria Lopez"})
	lookup.AddCategory(&domain.Category{ID: "c-1", Name: "Audio"})

	notifier := service.NewNotifier(inbox, store.NewMemoryKV(), 30*time.Minute, logger)
	catalog := service.NewCatalogService(equipment, history, logger)
	ledger := service.NewLedgerService(movements, equipment, registry, history, lookup, notifier, logger)
	assistant := service.NewAssistantClient("", time.Second, logger)

	router := NewRouter(logger)
	router.RegisterHealthRoutes()
	router.RegisterEquipmentRoutes(NewEquipmentHandler(catalog, logger))
	router.RegisterLedgerRoutes(NewMovementHandler(ledger, logger))
	router.RegisterNotificationRoutes(NewNotificationHandler(notifier, logger))
	router.RegisterReportRoutes(NewReportHandler(catalog, ledger, 5, logger))
	router.RegisterLookupRoutes(NewLookupHandler(lookup, catalog, ledger, logger))
	router.RegisterAssistantRoutes(NewAssistantHandler(assistant, logger))

	return &testAPI{router: router}
}

func (a *testAPI) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-User-ID", "admin")
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func decodeResult(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope struct {
		Code   int            `json:"code"`
		Result map[string]any `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Equal(t, ResultSuccess, envelope.Code)
	return envelope.Result
}

func (a *testAPI) createEquipment(t *testing.T, name string, quantity int) string {
	t.Helper()
	rec := a.do(t, http.MethodPost, "/api/v1/equipment", map[string]any{
		"name":     name,
		"quantity": quantity,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	return decodeResult(t, rec)["id"].(string)
}

func TestHealthz(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestEquipmentCRUD(t *testing.T) {
	api := newTestAPI(t)

	id := api.createEquipment(t, "Projector", 10)

	rec := api.do(t, http.MethodGet, "/api/v1/equipment/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeResult(t, rec)
	require.Equal(t, "Projector", got["name"])
	// New stock starts fully available.
	require.EqualValues(t, 10, got["available_quantity"])

	rec = api.do(t, http.MethodPut, "/api/v1/equipment/"+id, map[string]any{
		"name":     "HD Projector",
		"quantity": 10,
		"state":    "maintenance",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "HD Projector", decodeResult(t, rec)["name"])

	rec = api.do(t, http.MethodGet, "/api/v1/equipment", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, decodeResult(t, rec)["total"])

	rec = api.do(t, http.MethodDelete, "/api/v1/equipment/"+id, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/equipment/"+id, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	// The audit trail survives the delete.
	rec = api.do(t, http.MethodGet, "/api/v1/equipment/"+id+"/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 3, decodeResult(t, rec)["total"])
}

func TestEquipmentValidation(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodPost, "/api/v1/equipment", map[string]any{"quantity": 5})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/v1/equipment", map[string]any{
		"name": "x", "quantity": 1, "state": "lost",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoanLifecycleOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	id := api.createEquipment(t, "Tablet", 10)

	rec := api.do(t, http.MethodPost, "/api/v1/movements", map[string]any{
		"equipment_id":          id,
		"teacher_id":            "t-1",
		"quantity":              3,
		"scheduled_return_date": time.Now().Add(7 * 24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	movementID := decodeResult(t, rec)["id"].(string)

	rec = api.do(t, http.MethodGet, "/api/v1/equipment/"+id, nil)
	require.EqualValues(t, 7, decodeResult(t, rec)["available_quantity"])

	// More than remains available.
	rec = api.do(t, http.MethodPost, "/api/v1/movements", map[string]any{
		"equipment_id":          id,
		"teacher_id":            "t-1",
		"quantity":              8,
		"scheduled_return_date": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodPost, fmt.Sprintf("/api/v1/movements/%s/return", movementID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "completed", decodeResult(t, rec)["status"])

	rec = api.do(t, http.MethodGet, "/api/v1/equipment/"+id, nil)
	require.EqualValues(t, 10, decodeResult(t, rec)["available_quantity"])

	// Second return of the same movement.
	rec = api.do(t, http.MethodPost, fmt.Sprintf("/api/v1/movements/%s/return", movementID), nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestEquipmentUpdatePreservesAvailability(t *testing.T) {
	api := newTestAPI(t)
	id := api.createEquipment(t, "Camera", 10)

	rec := api.do(t, http.MethodPost, "/api/v1/movements", map[string]any{
		"equipment_id":          id,
		"teacher_id":            "t-1",
		"quantity":              4,
		"scheduled_return_date": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	movementID := decodeResult(t, rec)["id"].(string)

	// An edit that does not restate available_quantity keeps the loan debit.
	rec = api.do(t, http.MethodPut, "/api/v1/equipment/"+id, map[string]any{
		"name":     "Camera Mk2",
		"quantity": 10,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 6, decodeResult(t, rec)["available_quantity"])

	// The return then credits back to exactly full, not past it.
	rec = api.do(t, http.MethodPost, fmt.Sprintf("/api/v1/movements/%s/return", movementID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = api.do(t, http.MethodGet, "/api/v1/equipment/"+id, nil)
	require.EqualValues(t, 10, decodeResult(t, rec)["available_quantity"])

	// An explicit available_quantity still wins.
	rec = api.do(t, http.MethodPut, "/api/v1/equipment/"+id, map[string]any{
		"name":               "Camera Mk2",
		"quantity":           10,
		"available_quantity": 3,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 3, decodeResult(t, rec)["available_quantity"])
}

func TestRegistryOverHTTP(t *testing.T) {
	api := newTestAPI(t)
	id := api.createEquipment(t, "Printer", 2)

	rec := api.do(t, http.MethodPost, "/api/v1/registry", map[string]any{
		"equipment_id": id,
		"reason":       "malfunction",
		"description":  "paper jam sensor broken",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	entryID := decodeResult(t, rec)["id"].(string)

	rec = api.do(t, http.MethodPut, fmt.Sprintf("/api/v1/registry/%s/status", entryID), map[string]any{
		"status": "in_progress",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "in_progress", decodeResult(t, rec)["status"])

	rec = api.do(t, http.MethodPost, "/api/v1/registry", map[string]any{
		"equipment_id": id,
		"reason":       "exploded",
		"description":  "x",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotificationSettingsOverHTTP(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/notifications/settings", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeResult(t, rec)
	require.Equal(t, true, got["low_stock_alerts"])
	require.Equal(t, false, got["system_updates"])

	rec = api.do(t, http.MethodPut, "/api/v1/notifications/settings", map[string]any{
		"email_notifications": false,
		"low_stock_alerts":    false,
		"equipment_loans":     true,
		"system_updates":      true,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/notifications/settings", nil)
	got = decodeResult(t, rec)
	require.Equal(t, false, got["low_stock_alerts"])
	require.Equal(t, true, got["system_updates"])
}

func TestDashboardStats(t *testing.T) {
	api := newTestAPI(t)
	id := api.createEquipment(t, "Router", 6)

	rec := api.do(t, http.MethodPost, "/api/v1/movements", map[string]any{
		"equipment_id":          id,
		"teacher_id":            "t-1",
		"quantity":              2,
		"scheduled_return_date": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	got := decodeResult(t, rec)
	require.EqualValues(t, 1, got["equipment_entries"])
	require.EqualValues(t, 6, got["total_units"])
	require.EqualValues(t, 4, got["available_units"])
	require.EqualValues(t, 1, got["active_loans"])
}

func TestLookups(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/v1/lookup/teachers", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/lookup/unknown", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAssistantUnconfigured(t *testing.T) {
	api := newTestAPI(t)
	rec := api.do(t, http.MethodPost, "/api/v1/assistant/chat", map[string]any{"message": "hi"})
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLowStockReportAndExport(t *testing.T) {
	api := newTestAPI(t)
	api.createEquipment(t, "Plenty", 10)

	id := api.createEquipment(t, "Scarce", 10)
	rec := api.do(t, http.MethodPost, "/api/v1/movements", map[string]any{
		"equipment_id":          id,
		"teacher_id":            "t-1",
		"quantity":              9,
		"scheduled_return_date": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/v1/reports/low-stock", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.EqualValues(t, 1, decodeResult(t, rec)["total"])

	rec = api.do(t, http.MethodGet, "/api/v1/reports/low-stock/export", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Disposition"), "low_stock_")
	require.NotEmpty(t, rec.Body.Bytes())
}
