package repository

import (
	"context"
	"database/sql"
	"fmt"

	"school-inventory/internal/domain"
)

// PostgresNotificationRepository stores inbox rows and per-user settings.
type PostgresNotificationRepository struct {
	db *sql.DB
}

func NewPostgresNotificationRepository(db *sql.DB) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{db: db}
}

var _ NotificationRepository = (*PostgresNotificationRepository)(nil)

func (r *PostgresNotificationRepository) InsertNotifications(ctx context.Context, rows []*domain.Notification) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO notifications (id, user_id, title, message, type, read)
		VALUES ($1, $2, $3, $4, $5, $6)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, n := range rows {
		if _, err := stmt.ExecContext(ctx, n.ID, n.UserID, n.Title, n.Message, string(n.Type), n.Read); err != nil {
			return fmt.Errorf("failed to insert notification: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit notifications: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) ListNotifications(ctx context.Context, userID string, limit int) ([]*domain.Notification, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT id::text, user_id::text, title, message, type, read, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	items := []*domain.Notification{}
	for rows.Next() {
		var n domain.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		items = append(items, &n)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate notifications: %w", err)
	}
	return items, nil
}

func (r *PostgresNotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND read = FALSE`,
		userID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return n, nil
}

func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, id, userID string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresNotificationRepository) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE user_id = $1 AND read = FALSE`,
		userID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return nil
}

func (r *PostgresNotificationRepository) ListRecipients(ctx context.Context, pref domain.NotificationPreference) ([]string, error) {
	var column string
	switch pref {
	case domain.PrefEmail:
		column = "email_notifications"
	case domain.PrefLowStock:
		column = "low_stock_alerts"
	case domain.PrefLoans:
		column = "equipment_loans"
	case domain.PrefSystem:
		column = "system_updates"
	default:
		return nil, fmt.Errorf("unknown notification preference: %s", pref)
	}

	query := fmt.Sprintf(
		`SELECT user_id::text FROM user_notifications WHERE %s = TRUE`,
		column,
	)
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipients: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan recipient: %w", err)
		}
		ids = append(ids, id)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate recipients: %w", err)
	}
	return ids, nil
}

func (r *PostgresNotificationRepository) GetSettings(ctx context.Context, userID string) (*domain.NotificationSettings, error) {
	var s domain.NotificationSettings
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id::text, email_notifications, low_stock_alerts, equipment_loans, system_updates
		FROM user_notifications
		WHERE user_id = $1
	`, userID).Scan(&s.UserID, &s.EmailNotifications, &s.LowStockAlerts, &s.EquipmentLoans, &s.SystemUpdates)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get notification settings: %w", err)
	}
	return &s, nil
}

func (r *PostgresNotificationRepository) UpsertSettings(ctx context.Context, s *domain.NotificationSettings) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO user_notifications (user_id, email_notifications, low_stock_alerts, equipment_loans, system_updates)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id)
		DO UPDATE SET email_notifications = EXCLUDED.email_notifications,
		              low_stock_alerts = EXCLUDED.low_stock_alerts,
		              equipment_loans = EXCLUDED.equipment_loans,
		              system_updates = EXCLUDED.system_updates
	`, s.UserID, s.EmailNotifications, s.LowStockAlerts, s.EquipmentLoans, s.SystemUpdates)
	if err != nil {
		return fmt.Errorf("failed to upsert notification settings: %w", err)
	}
	return nil
}
