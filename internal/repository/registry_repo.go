package repository

import (
	"context"

	"school-inventory/internal/domain"
)

// RegistryFilter narrows ListRegistry.
type RegistryFilter struct {
	Reason      domain.RegistryReason // optional
	Status      domain.RegistryStatus // optional
	EquipmentID string                // optional
}

// RegistryRepository stores damage/maintenance reports.
type RegistryRepository interface {
	GetRegistryEntry(ctx context.Context, id string) (*domain.RegistryEntry, error)
	ListRegistry(ctx context.Context, filter RegistryFilter) ([]*domain.RegistryEntry, error)
	CreateRegistryEntry(ctx context.Context, e *domain.RegistryEntry) error
	UpdateRegistryStatus(ctx context.Context, id string, status domain.RegistryStatus) error
	DeleteRegistryEntry(ctx context.Context, id string) error
}
