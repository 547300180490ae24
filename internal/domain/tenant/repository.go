package tenant

import (
	"context"
	"errors"
)

var (
	ErrTenantNotFound      = errors.New("tenant not found")
	ErrTenantDuplicateSlug = errors.New("tenant with the same slug already exists")
)

// Repository persists tenants
type Repository interface {
	// Create stores a new tenant
	Create(ctx context.Context, t *Tenant) error

	// FindByID returns ErrTenantNotFound when the id is unknown
	FindByID(ctx context.Context, id string) (*Tenant, error)

	// FindBySlug returns ErrTenantNotFound when the slug is unknown
	FindBySlug(ctx context.Context, slug string) (*Tenant, error)

	// List returns tenants ordered by name
	List(ctx context.Context, limit, offset int) ([]*Tenant, error)

	// Update replaces the mutable attributes of a tenant
	Update(ctx context.Context, t *Tenant) error
}
