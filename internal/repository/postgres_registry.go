package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"school-inventory/internal/domain"
)

// PostgresRegistryRepository stores damage/maintenance reports in the DB.
type PostgresRegistryRepository struct {
	db *sql.DB
}

func NewPostgresRegistryRepository(db *sql.DB) *PostgresRegistryRepository {
	return &PostgresRegistryRepository{db: db}
}

var _ RegistryRepository = (*PostgresRegistryRepository)(nil)

const registryColumns = `
	r.id::text,
	r.equipment_id::text,
	r.reason,
	r.description,
	r.date_occurred,
	COALESCE(r.reported_by::text, ''),
	r.status,
	r.created_at,
	COALESCE(e.name, '')`

func scanRegistryEntry(row interface{ Scan(...any) error }) (*domain.RegistryEntry, error) {
	var e domain.RegistryEntry
	err := row.Scan(
		&e.ID,
		&e.EquipmentID,
		&e.Reason,
		&e.Description,
		&e.DateOccurred,
		&e.ReportedBy,
		&e.Status,
		&e.CreatedAt,
		&e.EquipmentName,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PostgresRegistryRepository) GetRegistryEntry(ctx context.Context, id string) (*domain.RegistryEntry, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM equipment_registry r
		LEFT JOIN equipment e ON e.id = r.equipment_id
		WHERE r.id = $1
	`, registryColumns)

	e, err := scanRegistryEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get registry entry: %w", err)
	}
	return e, nil
}

func (r *PostgresRegistryRepository) ListRegistry(ctx context.Context, filter RegistryFilter) ([]*domain.RegistryEntry, error) {
	where := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if filter.Reason != "" {
		where = append(where, fmt.Sprintf("r.reason = $%d", argIdx))
		args = append(args, string(filter.Reason))
		argIdx++
	}
	if filter.Status != "" {
		where = append(where, fmt.Sprintf("r.status = $%d", argIdx))
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.EquipmentID != "" {
		where = append(where, fmt.Sprintf("r.equipment_id = $%d", argIdx))
		args = append(args, filter.EquipmentID)
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM equipment_registry r
		LEFT JOIN equipment e ON e.id = r.equipment_id
		WHERE %s
		ORDER BY r.created_at DESC
	`, registryColumns, strings.Join(where, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list registry: %w", err)
	}
	defer rows.Close()

	items := []*domain.RegistryEntry{}
	for rows.Next() {
		e, err := scanRegistryEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan registry entry: %w", err)
		}
		items = append(items, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate registry: %w", err)
	}
	return items, nil
}

func (r *PostgresRegistryRepository) CreateRegistryEntry(ctx context.Context, e *domain.RegistryEntry) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO equipment_registry (
			id, equipment_id, reason, description, date_occurred, reported_by, status
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid, $7)
	`,
		e.ID, e.EquipmentID, string(e.Reason), e.Description, e.DateOccurred, e.ReportedBy, string(e.Status),
	)
	if err != nil {
		return fmt.Errorf("failed to create registry entry: %w", err)
	}
	return nil
}

func (r *PostgresRegistryRepository) UpdateRegistryStatus(ctx context.Context, id string, status domain.RegistryStatus) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE equipment_registry SET status = $2 WHERE id = $1`,
		id, string(status),
	)
	if err != nil {
		return fmt.Errorf("failed to update registry status: %w", err)
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

func (r *PostgresRegistryRepository) DeleteRegistryEntry(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM equipment_registry WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete registry entry: %w", err)
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
