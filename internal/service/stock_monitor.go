package service

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// StockMonitor periodically scans the catalog and pushes low-stock alerts
// through the notifier. The notifier's debounce keeps repeated scans from
// flooding inboxes.
type StockMonitor struct {
	catalog  *CatalogService
	notifier *Notifier
	logger   *zap.Logger

	threshold int
	interval  time.Duration
}

func NewStockMonitor(
	catalog *CatalogService,
	notifier *Notifier,
	threshold int,
	interval time.Duration,
	logger *zap.Logger,
) *StockMonitor {
	return &StockMonitor{
		catalog:   catalog,
		notifier:  notifier,
		logger:    logger,
		threshold: threshold,
		interval:  interval,
	}
}

// Run blocks, scanning every interval until ctx is cancelled.
func (m *StockMonitor) Run(ctx context.Context) {
	m.logger.Info("stock monitor started",
		zap.Int("threshold", m.threshold),
		zap.Duration("interval", m.interval))

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("stock monitor stopped")
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

// Check performs one scan. Failures are logged, never fatal.
func (m *StockMonitor) Check(ctx context.Context) {
	items, err := m.catalog.AlertLowStock(ctx, m.threshold)
	if err != nil {
		m.logger.Error("failed to scan for low stock", zap.Error(err))
		return
	}

	if len(items) == 0 {
		return
	}
	if _, err := m.notifier.LowStock(ctx, items); err != nil {
		m.logger.Warn("failed to send low stock alert",
			zap.Int("items", len(items)),
			zap.Error(err))
	}
}
