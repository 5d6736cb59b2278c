package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"school-inventory/internal/domain"
)

// PostgresMovementRepository is the DB-backed movement ledger.
type PostgresMovementRepository struct {
	db *sql.DB
}

func NewPostgresMovementRepository(db *sql.DB) *PostgresMovementRepository {
	return &PostgresMovementRepository{db: db}
}

var _ MovementRepository = (*PostgresMovementRepository)(nil)

const movementColumns = `
	m.id::text,
	m.equipment_id::text,
	m.teacher_id::text,
	COALESCE(m.classroom_id::text, ''),
	m.movement_type,
	m.quantity,
	COALESCE(m.description, ''),
	m.scheduled_return_date,
	m.actual_return_date,
	m.status,
	COALESCE(m.created_by::text, ''),
	m.created_at,
	COALESCE(e.name, ''),
	COALESCE(t.full_name, '')`

func scanMovement(row interface{ Scan(...any) error }) (*domain.Movement, error) {
	var m domain.Movement
	err := row.Scan(
		&m.ID,
		&m.EquipmentID,
		&m.TeacherID,
		&m.ClassroomID,
		&m.Type,
		&m.Quantity,
		&m.Description,
		&m.ScheduledReturnDate,
		&m.ActualReturnDate,
		&m.Status,
		&m.CreatedBy,
		&m.CreatedAt,
		&m.EquipmentName,
		&m.TeacherName,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PostgresMovementRepository) GetMovement(ctx context.Context, id string) (*domain.Movement, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM movements m
		LEFT JOIN equipment e ON e.id = m.equipment_id
		LEFT JOIN teachers t ON t.id = m.teacher_id
		WHERE m.id = $1
	`, movementColumns)

	m, err := scanMovement(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get movement: %w", err)
	}
	return m, nil
}

func (r *PostgresMovementRepository) ListMovements(ctx context.Context, filter MovementFilter) ([]*domain.Movement, error) {
	where := []string{"1=1"}
	args := []any{}
	argIdx := 1

	if filter.Status != "" {
		where = append(where, fmt.Sprintf("m.status = $%d", argIdx))
		args = append(args, string(filter.Status))
		argIdx++
	}
	if filter.Type != "" {
		where = append(where, fmt.Sprintf("m.movement_type = $%d", argIdx))
		args = append(args, string(filter.Type))
		argIdx++
	}
	if filter.EquipmentID != "" {
		where = append(where, fmt.Sprintf("m.equipment_id = $%d", argIdx))
		args = append(args, filter.EquipmentID)
		argIdx++
	}
	if filter.TeacherID != "" {
		where = append(where, fmt.Sprintf("m.teacher_id = $%d", argIdx))
		args = append(args, filter.TeacherID)
		argIdx++
	}
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(e.name ILIKE $%d OR t.full_name ILIKE $%d)", argIdx, argIdx))
		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	query := fmt.Sprintf(`
		SELECT %s
		FROM movements m
		LEFT JOIN equipment e ON e.id = m.equipment_id
		LEFT JOIN teachers t ON t.id = m.teacher_id
		WHERE %s
		ORDER BY m.created_at DESC
	`, movementColumns, strings.Join(where, " AND "))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements: %w", err)
	}
	defer rows.Close()

	items := []*domain.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement: %w", err)
		}
		items = append(items, m)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movements: %w", err)
	}
	return items, nil
}

// CreateMovement inserts the movement and moves stock in one transaction:
// lock the equipment row, check availability for assignments, insert, then
// apply the clamped delta.
func (r *PostgresMovementRepository) CreateMovement(ctx context.Context, m *domain.Movement) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var available int
	err = tx.QueryRowContext(ctx,
		`SELECT available_quantity FROM equipment WHERE id = $1 FOR UPDATE`,
		m.EquipmentID,
	).Scan(&available)
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.ErrNotFound
		}
		return fmt.Errorf("failed to lock equipment: %w", err)
	}

	if m.Type == domain.MovementAssignment && m.Quantity > available {
		return domain.ErrInsufficientStock
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO movements (
			id, equipment_id, teacher_id, classroom_id, movement_type,
			quantity, description, scheduled_return_date, status, created_by
		) VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5,
			$6, NULLIF($7, ''), $8, $9, NULLIF($10, '')::uuid)
	`,
		m.ID, m.EquipmentID, m.TeacherID, m.ClassroomID, string(m.Type),
		m.Quantity, m.Description, m.ScheduledReturnDate, string(m.Status), m.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert movement: %w", err)
	}

	delta := -m.Quantity
	if m.Type == domain.MovementReturn {
		delta = m.Quantity
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE equipment
		SET available_quantity = LEAST(quantity, GREATEST(0, available_quantity + $2)),
		    updated_at = now()
		WHERE id = $1
	`, m.EquipmentID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust availability: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit movement: %w", err)
	}
	return nil
}

// CompleteMovement closes an active assignment and credits the quantity
// back in one transaction. Already-completed movements are rejected, so a
// repeated return can never double-credit availability.
func (r *PostgresMovementRepository) CompleteMovement(ctx context.Context, id string, returnDate time.Time) (*domain.Movement, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var equipmentID string
	var quantity int
	err = tx.QueryRowContext(ctx, `
		SELECT equipment_id::text, quantity
		FROM movements
		WHERE id = $1 AND status = 'active' AND movement_type = 'assignment'
		FOR UPDATE
	`, id).Scan(&equipmentID, &quantity)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to lock movement: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE movements
		SET status = 'completed', actual_return_date = $2
		WHERE id = $1
	`, id, returnDate)
	if err != nil {
		return nil, fmt.Errorf("failed to complete movement: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE equipment
		SET available_quantity = LEAST(quantity, GREATEST(0, available_quantity + $2)),
		    updated_at = now()
		WHERE id = $1
	`, equipmentID, quantity)
	if err != nil {
		return nil, fmt.Errorf("failed to restore availability: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit return: %w", err)
	}

	return r.GetMovement(ctx, id)
}

func (r *PostgresMovementRepository) DeleteMovement(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM movements WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete movement: %w", err)
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
