package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"school-inventory/internal/service"
)

// ReportHandler serves low-stock and movement reports, JSON and as
// downloadable workbooks.
type ReportHandler struct {
	catalog   *service.CatalogService
	ledger    *service.LedgerService
	threshold int
	logger    *zap.Logger
}

func NewReportHandler(catalog *service.CatalogService, ledger *service.LedgerService, threshold int, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{catalog: catalog, ledger: ledger, threshold: threshold, logger: logger}
}

// LowStock handles GET /api/v1/reports/low-stock and its /export variant.
func (h *ReportHandler) LowStock(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	threshold := parseInt(r.URL.Query().Get("threshold"), h.threshold)
	// The report view includes depleted entries; the periodic alert does not.
	items, err := h.catalog.ReportLowStock(r.Context(), threshold)
	if err != nil {
		h.logger.Error("failed to build low stock report", zap.Error(err))
		writeError(w, err)
		return
	}

	if !strings.HasSuffix(r.URL.Path, "/export") {
		writeJSON(w, http.StatusOK, Ok(map[string]any{
			"items":     items,
			"total":     len(items),
			"threshold": threshold,
		}))
		return
	}

	data, err := GenerateLowStockExport(items)
	if err != nil {
		h.logger.Error("failed to generate low stock export", zap.Error(err))
		writeError(w, err)
		return
	}
	filename := fmt.Sprintf("low_stock_%s.xlsx", time.Now().Format("2006-01-02"))
	writeWorkbook(w, filename, data)
}

// Movements handles GET /api/v1/reports/movements/export?from=&to=.
func (h *ReportHandler) Movements(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	rawFrom := r.URL.Query().Get("from")
	rawTo := r.URL.Query().Get("to")
	from := parseDate(rawFrom)
	to := parseDate(rawTo)
	if !to.IsZero() && len(rawTo) == len("2006-01-02") {
		to = to.Add(24*time.Hour - time.Nanosecond)
	}

	entries, err := h.ledger.ListHistory(r.Context(), from, to)
	if err != nil {
		writeError(w, err)
		return
	}

	data, err := GenerateMovementExport(entries)
	if err != nil {
		h.logger.Error("failed to generate movement export", zap.Error(err))
		writeError(w, err)
		return
	}

	if rawFrom == "" {
		rawFrom = "start"
	}
	if rawTo == "" {
		rawTo = time.Now().Format("2006-01-02")
	}
	filename := fmt.Sprintf("movements_%s_%s.xlsx", rawFrom, rawTo)
	writeWorkbook(w, filename, data)
}

func writeWorkbook(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
