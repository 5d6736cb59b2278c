package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"school-inventory/internal/domain"
)

// PostgresHistoryRepository stores the equipment audit log.
type PostgresHistoryRepository struct {
	db *sql.DB
}

func NewPostgresHistoryRepository(db *sql.DB) *PostgresHistoryRepository {
	return &PostgresHistoryRepository{db: db}
}

var _ HistoryRepository = (*PostgresHistoryRepository)(nil)

func (r *PostgresHistoryRepository) AppendHistory(ctx context.Context, e *domain.HistoryEntry) error {
	oldJSON, err := marshalValues(e.OldValues)
	if err != nil {
		return fmt.Errorf("failed to marshal old values: %w", err)
	}
	newJSON, err := marshalValues(e.NewValues)
	if err != nil {
		return fmt.Errorf("failed to marshal new values: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO equipment_history (
			id, equipment_id, action, old_values, new_values, changed_by
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid)
	`,
		e.ID, e.EquipmentID, string(e.Action), oldJSON, newJSON, e.ChangedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to append history: %w", err)
	}
	return nil
}

func marshalValues(values map[string]any) (any, error) {
	if values == nil {
		return nil, nil
	}
	return json.Marshal(values)
}

const historyColumns = `
	h.id::text,
	h.equipment_id::text,
	h.action,
	h.old_values,
	h.new_values,
	COALESCE(h.changed_by::text, ''),
	h.created_at,
	COALESCE(e.name, ''),
	COALESCE(p.full_name, '')`

func scanHistoryEntry(row interface{ Scan(...any) error }) (*domain.HistoryEntry, error) {
	var e domain.HistoryEntry
	var oldJSON, newJSON []byte
	err := row.Scan(
		&e.ID,
		&e.EquipmentID,
		&e.Action,
		&oldJSON,
		&newJSON,
		&e.ChangedBy,
		&e.CreatedAt,
		&e.EquipmentName,
		&e.ChangedByName,
	)
	if err != nil {
		return nil, err
	}
	if len(oldJSON) > 0 {
		if err := json.Unmarshal(oldJSON, &e.OldValues); err != nil {
			return nil, fmt.Errorf("failed to unmarshal old values: %w", err)
		}
	}
	if len(newJSON) > 0 {
		if err := json.Unmarshal(newJSON, &e.NewValues); err != nil {
			return nil, fmt.Errorf("failed to unmarshal new values: %w", err)
		}
	}
	return &e, nil
}

func (r *PostgresHistoryRepository) ListHistory(ctx context.Context, from, to time.Time) ([]*domain.HistoryEntry, error) {
	where := "1=1"
	args := []any{}
	argIdx := 1

	if !from.IsZero() {
		where += fmt.Sprintf(" AND h.created_at >= $%d", argIdx)
		args = append(args, from)
		argIdx++
	}
	if !to.IsZero() {
		where += fmt.Sprintf(" AND h.created_at <= $%d", argIdx)
		args = append(args, to)
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM equipment_history h
		LEFT JOIN equipment e ON e.id = h.equipment_id
		LEFT JOIN profiles p ON p.id = h.changed_by
		WHERE %s
		ORDER BY h.created_at DESC
	`, historyColumns, where)

	return r.queryHistory(ctx, query, args...)
}

func (r *PostgresHistoryRepository) ListHistoryForEquipment(ctx context.Context, equipmentID string) ([]*domain.HistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM equipment_history h
		LEFT JOIN equipment e ON e.id = h.equipment_id
		LEFT JOIN profiles p ON p.id = h.changed_by
		WHERE h.equipment_id = $1
		ORDER BY h.created_at DESC
	`, historyColumns)

	return r.queryHistory(ctx, query, equipmentID)
}

func (r *PostgresHistoryRepository) queryHistory(ctx context.Context, query string, args ...any) ([]*domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list history: %w", err)
	}
	defer rows.Close()

	items := []*domain.HistoryEntry{}
	for rows.Next() {
		e, err := scanHistoryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan history entry: %w", err)
		}
		items = append(items, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate history: %w", err)
	}
	return items, nil
}
