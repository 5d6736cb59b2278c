package repository

import (
	"context"
	"database/sql"
	"fmt"

	"school-inventory/internal/domain"
)

// PostgresLookupRepository reads the reference tables.
type PostgresLookupRepository struct {
	db *sql.DB
}

func NewPostgresLookupRepository(db *sql.DB) *PostgresLookupRepository {
	return &PostgresLookupRepository{db: db}
}

var _ LookupRepository = (*PostgresLookupRepository)(nil)

func (r *PostgresLookupRepository) GetTeacher(ctx context.Context, id string) (*domain.Teacher, error) {
	var t domain.Teacher
	err := r.db.QueryRowContext(ctx, `
		SELECT id::text, full_name, COALESCE(dni, ''), COALESCE(email, '')
		FROM teachers
		WHERE id = $1
	`, id).Scan(&t.ID, &t.FullName, &t.DNI, &t.Email)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get teacher: %w", err)
	}
	return &t, nil
}

func (r *PostgresLookupRepository) ListTeachers(ctx context.Context) ([]*domain.Teacher, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id::text, full_name, COALESCE(dni, ''), COALESCE(email, '')
		FROM teachers
		ORDER BY full_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teachers: %w", err)
	}
	defer rows.Close()

	items := []*domain.Teacher{}
	for rows.Next() {
		var t domain.Teacher
		if err := rows.Scan(&t.ID, &t.FullName, &t.DNI, &t.Email); err != nil {
			return nil, fmt.Errorf("failed to scan teacher: %w", err)
		}
		items = append(items, &t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate teachers: %w", err)
	}
	return items, nil
}

func (r *PostgresLookupRepository) ListClassrooms(ctx context.Context) ([]*domain.Classroom, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id::text, name, COALESCE(location, '')
		FROM classrooms
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list classrooms: %w", err)
	}
	defer rows.Close()

	items := []*domain.Classroom{}
	for rows.Next() {
		var c domain.Classroom
		if err := rows.Scan(&c.ID, &c.Name, &c.Location); err != nil {
			return nil, fmt.Errorf("failed to scan classroom: %w", err)
		}
		items = append(items, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate classrooms: %w", err)
	}
	return items, nil
}

func (r *PostgresLookupRepository) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id::text, name
		FROM categories
		ORDER BY name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	defer rows.Close()

	items := []*domain.Category{}
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("failed to scan category: %w", err)
		}
		items = append(items, &c)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return items, nil
}
