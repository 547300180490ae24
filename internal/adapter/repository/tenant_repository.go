package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/hugohenrick/arte-ideas/internal/domain/tenant"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const tenantColumns = `id, slug, name, business_name, address, phone, email, tax_id,
	currency, location, tax_rate, active, created_at, updated_at`

// TenantRepository implements tenant.Repository
type TenantRepository struct {
	db DBTX
}

// NewTenantRepository creates a TenantRepository
func NewTenantRepository(db DBTX) *TenantRepository {
	return &TenantRepository{db: db}
}

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var t tenant.Tenant
	var taxRate decimal.NullDecimal
	err := row.Scan(&t.ID, &t.Slug, &t.Name, &t.BusinessName, &t.Address, &t.Phone,
		&t.Email, &t.TaxID, &t.Currency, &t.Location, &taxRate, &t.Active, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if taxRate.Valid {
		t.TaxRate = &taxRate.Decimal
	}
	return &t, nil
}

// Create implements tenant.Repository.Create
func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO tenants (`+tenantColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		t.ID, t.Slug, t.Name, t.BusinessName, t.Address, t.Phone, t.Email, t.TaxID,
		t.Currency, t.Location, nullTaxRate(t), t.Active, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return tenant.ErrTenantDuplicateSlug
		}
		return fmt.Errorf("failed to create tenant: %w", err)
	}
	return nil
}

// FindByID implements tenant.Repository.FindByID. Selectors that are not
// UUIDs cannot match and are reported as not found.
func (r *TenantRepository) FindByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	if uuid.Validate(id) != nil {
		return nil, tenant.ErrTenantNotFound
	}
	return r.findOne(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
}

// FindBySlug implements tenant.Repository.FindBySlug
func (r *TenantRepository) FindBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return r.findOne(ctx, `SELECT `+tenantColumns+` FROM tenants WHERE slug = $1`, slug)
}

func (r *TenantRepository) findOne(ctx context.Context, query string, arg string) (*tenant.Tenant, error) {
	t, err := scanTenant(r.db.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrTenantNotFound
		}
		return nil, fmt.Errorf("failed to find tenant: %w", err)
	}
	return t, nil
}

// List implements tenant.Repository.List
func (r *TenantRepository) List(ctx context.Context, limit, offset int) ([]*tenant.Tenant, error) {
	rows, err := r.db.Query(ctx, `SELECT `+tenantColumns+` FROM tenants ORDER BY name`+limitClause(limit, offset))
	if err != nil {
		return nil, fmt.Errorf("failed to list tenants: %w", err)
	}
	defer rows.Close()

	tenants := []*tenant.Tenant{}
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan tenant: %w", err)
		}
		tenants = append(tenants, t)
	}
	return tenants, rows.Err()
}

// Update implements tenant.Repository.Update
func (r *TenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE tenants SET slug = $2, name = $3, business_name = $4, address = $5, phone = $6,
			email = $7, tax_id = $8, currency = $9, location = $10, tax_rate = $11, active = $12,
			updated_at = $13
		WHERE id = $1`,
		t.ID, t.Slug, t.Name, t.BusinessName, t.Address, t.Phone, t.Email, t.TaxID,
		t.Currency, t.Location, nullTaxRate(t), t.Active, t.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return tenant.ErrTenantDuplicateSlug
		}
		return fmt.Errorf("failed to update tenant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return tenant.ErrTenantNotFound
	}
	return nil
}

func nullTaxRate(t *tenant.Tenant) decimal.NullDecimal {
	if t.TaxRate == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *t.TaxRate, Valid: true}
}

var _ tenant.Repository = (*TenantRepository)(nil)
