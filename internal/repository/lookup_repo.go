package repository

import (
	"context"

	"school-inventory/internal/domain"
)

// LookupRepository reads the reference tables the workflow depends on but
// does not manage: teachers, classrooms and categories.
type LookupRepository interface {
	GetTeacher(ctx context.Context, id string) (*domain.Teacher, error)
	ListTeachers(ctx context.Context) ([]*domain.Teacher, error)
	ListClassrooms(ctx context.Context) ([]*domain.Classroom, error)
	ListCategories(ctx context.Context) ([]*domain.Category, error)
}
