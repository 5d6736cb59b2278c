package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"school-inventory/internal/domain"
)

// PostgresEquipmentRepository is the DB-backed equipment catalog.
type PostgresEquipmentRepository struct {
	db *sql.DB
}

func NewPostgresEquipmentRepository(db *sql.DB) *PostgresEquipmentRepository {
	return &PostgresEquipmentRepository{db: db}
}

var _ EquipmentRepository = (*PostgresEquipmentRepository)(nil)

const equipmentColumns = `
	e.id::text,
	e.name,
	COALESCE(e.description, ''),
	COALESCE(e.brand, ''),
	COALESCE(e.model, ''),
	COALESCE(e.serial_number, ''),
	e.quantity,
	e.available_quantity,
	e.state,
	COALESCE(e.category_id::text, ''),
	COALESCE(c.name, ''),
	e.purchase_date,
	e.warranty_expiration,
	COALESCE(e.created_by::text, ''),
	e.created_at,
	e.updated_at`

func scanEquipment(row interface{ Scan(...any) error }) (*domain.Equipment, error) {
	var e domain.Equipment
	err := row.Scan(
		&e.ID,
		&e.Name,
		&e.Description,
		&e.Brand,
		&e.Model,
		&e.SerialNumber,
		&e.Quantity,
		&e.AvailableQuantity,
		&e.State,
		&e.CategoryID,
		&e.CategoryName,
		&e.PurchaseDate,
		&e.WarrantyExpiration,
		&e.CreatedBy,
		&e.CreatedAt,
		&e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *PostgresEquipmentRepository) GetEquipment(ctx context.Context, id string) (*domain.Equipment, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM equipment e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE e.id = $1
	`, equipmentColumns)

	e, err := scanEquipment(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get equipment: %w", err)
	}
	return e, nil
}

func (r *PostgresEquipmentRepository) ListEquipment(ctx context.Context, filter EquipmentFilter) ([]*domain.Equipment, error) {
	where := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if filter.State != "" {
		where = append(where, fmt.Sprintf("e.state = $%d", argIdx))
		args = append(args, string(filter.State))
		argIdx++
	}
	if filter.CategoryID != "" {
		where = append(where, fmt.Sprintf("e.category_id = $%d", argIdx))
		args = append(args, filter.CategoryID)
		argIdx++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(e.name ILIKE $%d OR e.brand ILIKE $%d OR e.model ILIKE $%d)", argIdx, argIdx, argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}
	if filter.OnlyLendable {
		where = append(where, "e.state = 'available'", "e.available_quantity > 0")
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM equipment e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE %s
		ORDER BY e.name
	`, equipmentColumns, strings.Join(where, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list equipment: %w", err)
	}
	defer rows.Close()

	items := []*domain.Equipment{}
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		items = append(items, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate equipment: %w", err)
	}
	return items, nil
}

func (r *PostgresEquipmentRepository) CreateEquipment(ctx context.Context, e *domain.Equipment) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO equipment (
			id, name, description, brand, model, serial_number,
			quantity, available_quantity, state, category_id,
			purchase_date, warranty_expiration, created_by
		) VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''),
			$7, $8, $9, NULLIF($10, '')::uuid, $11, $12, NULLIF($13, '')::uuid)
	`,
		e.ID, e.Name, e.Description, e.Brand, e.Model, e.SerialNumber,
		e.Quantity, e.AvailableQuantity, string(e.State), e.CategoryID,
		e.PurchaseDate, e.WarrantyExpiration, e.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to create equipment: %w", err)
	}
	return nil
}

func (r *PostgresEquipmentRepository) UpdateEquipment(ctx context.Context, e *domain.Equipment) error {
	result, err := r.db.ExecContext(ctx, `
		UPDATE equipment SET
			name = $2,
			description = NULLIF($3, ''),
			brand = NULLIF($4, ''),
			model = NULLIF($5, ''),
			serial_number = NULLIF($6, ''),
			quantity = $7,
			available_quantity = $8,
			state = $9,
			category_id = NULLIF($10, '')::uuid,
			purchase_date = $11,
			warranty_expiration = $12,
			updated_at = now()
		WHERE id = $1
	`,
		e.ID, e.Name, e.Description, e.Brand, e.Model, e.SerialNumber,
		e.Quantity, e.AvailableQuantity, string(e.State), e.CategoryID,
		e.PurchaseDate, e.WarrantyExpiration,
	)
	if err != nil {
		return fmt.Errorf("failed to update equipment: %w", err)
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

func (r *PostgresEquipmentRepository) DeleteEquipment(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM equipment WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete equipment: %w", err)
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

// AdjustAvailability clamps in SQL so concurrent adjustments cannot drive
// the value outside [0, quantity].
func (r *PostgresEquipmentRepository) AdjustAvailability(ctx context.Context, id string, delta int) (*domain.Equipment, error) {
	query := fmt.Sprintf(`
		WITH updated AS (
			UPDATE equipment
			SET available_quantity = LEAST(quantity, GREATEST(0, available_quantity + $2)),
			    updated_at = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT %s
		FROM updated e
		LEFT JOIN categories c ON c.id = e.category_id
	`, equipmentColumns)

	e, err := scanEquipment(r.db.QueryRowContext(ctx, query, id, delta))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to adjust availability: %w", err)
	}
	return e, nil
}

func (r *PostgresEquipmentRepository) ListLowStock(ctx context.Context, threshold int, includeZero bool) ([]*domain.Equipment, error) {
	where := "e.available_quantity < $1"
	if !includeZero {
		where += " AND e.available_quantity > 0"
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM equipment e
		LEFT JOIN categories c ON c.id = e.category_id
		WHERE %s
		ORDER BY e.available_quantity ASC, e.name
	`, equipmentColumns, where)

	rows, err := r.db.QueryContext(ctx, query, threshold)
	if err != nil {
		return nil, fmt.Errorf("failed to list low stock: %w", err)
	}
	defer rows.Close()

	items := []*domain.Equipment{}
	for rows.Next() {
		e, err := scanEquipment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan equipment: %w", err)
		}
		items = append(items, e)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate equipment: %w", err)
	}
	return items, nil
}
