// Package tenants manages the studios of the platform. Only super-admins
// reach it, with or without a selected tenant.
package tenants

import (
	"context"
	"errors"

	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/domain"
	"github.com/hugohenrick/arte-ideas/internal/domain/tenant"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/hugohenrick/arte-ideas/pkg/logger"
	"github.com/shopspring/decimal"
)

// CreateInput carries the attributes of a new tenant
type CreateInput struct {
	Slug         string           `json:"slug"`
	Name         string           `json:"name"`
	BusinessName string           `json:"business_name,omitempty"`
	Address      string           `json:"address,omitempty"`
	Phone        string           `json:"phone,omitempty"`
	Email        string           `json:"email,omitempty"`
	TaxID        string           `json:"tax_id,omitempty"`
	Currency     tenant.Currency  `json:"currency,omitempty"`
	Location     tenant.Location  `json:"location,omitempty"`
	TaxRate      *decimal.Decimal `json:"tax_rate,omitempty"`
}

// Service implements the tenant operations
type Service struct {
	uow   domain.UnitOfWork
	guard *access.Guard
	log   logger.Logger
}

// NewService creates the tenant service
func NewService(uow domain.UnitOfWork, guard *access.Guard, log logger.Logger) *Service {
	if log == nil {
		log = logger.NewNop()
	}
	return &Service{uow: uow, guard: guard, log: log.With("component", "tenants")}
}

func (s *Service) fail(op string, err error) error {
	switch {
	case errors.Is(err, tenant.ErrTenantNotFound):
		return apperror.NotFound("tenant")
	case errors.Is(err, tenant.ErrTenantDuplicateSlug):
		return apperror.Validation(map[string]string{"slug": "already in use"})
	}
	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		s.log.Error("tenant operation failed", "operation", op, "error", err)
	}
	return appErr
}

// Create registers a studio
func (s *Service) Create(ctx context.Context, c access.Caller, in CreateInput) (*tenant.Tenant, error) {
	scope, err := s.guard.Enter(ctx, c, access.ActionCreate, access.ResourceTenant)
	if err != nil {
		return nil, err
	}

	t, err := tenant.NewTenant(in.Slug, in.Name)
	if err != nil {
		return nil, err
	}
	t.BusinessName = in.BusinessName
	t.Address = in.Address
	t.Phone = in.Phone
	t.Email = in.Email
	t.TaxID = in.TaxID
	if in.Currency != "" {
		t.Currency = in.Currency
	}
	if in.Location != "" {
		t.Location = in.Location
	}
	t.TaxRate = in.TaxRate
	if err := t.Validate(); err != nil {
		return nil, err
	}

	err = s.uow.Within(ctx, func(ctx context.Context, repos domain.Repositories) error {
		return repos.Tenants.Create(ctx, t)
	})
	if err != nil {
		return nil, s.fail("createTenant", err)
	}
	s.log.Info("tenant created", "tenant_id", t.ID, "slug", t.Slug, "user_id", scope.UserID)
	return t, nil
}

// Get returns a tenant by id or slug
func (s *Service) Get(ctx context.Context, c access.Caller, ref string) (*tenant.Tenant, error) {
	if _, err := s.guard.Enter(ctx, c, access.ActionRead, access.ResourceTenant); err != nil {
		return nil, err
	}
	repos := s.uow.Reader()
	t, err := repos.Tenants.FindByID(ctx, ref)
	if errors.Is(err, tenant.ErrTenantNotFound) {
		t, err = repos.Tenants.FindBySlug(ctx, ref)
	}
	if err != nil {
		return nil, s.fail("getTenant", err)
	}
	return t, nil
}

// List returns tenants ordered by name
func (s *Service) List(ctx context.Context, c access.Caller, limit, offset int) ([]*tenant.Tenant, error) {
	if _, err := s.guard.Enter(ctx, c, access.ActionRead, access.ResourceTenant); err != nil {
		return nil, err
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	list, err := s.uow.Reader().Tenants.List(ctx, limit, offset)
	if err != nil {
		return nil, s.fail("listTenants", err)
	}
	return list, nil
}

// SetActive activates or deactivates a tenant. Inactive tenants reject
// every scoped request.
func (s *Service) SetActive(ctx context.Context, c access.Caller, id string, active bool) (*tenant.Tenant, error) {
	scope, err := s.guard.Enter(ctx, c, access.ActionUpdate, access.ResourceTenant)
	if err != nil {
		return nil, err
	}

	var t *tenant.Tenant
	err = s.uow.Within(ctx, func(ctx context.Context, repos domain.Repositories) error {
		t, err = repos.Tenants.FindByID(ctx, id)
		if err != nil {
			return err
		}
		if active {
			t.Activate()
		} else {
			t.Deactivate()
		}
		return repos.Tenants.Update(ctx, t)
	})
	if err != nil {
		return nil, s.fail("setTenantActive", err)
	}
	s.log.Info("tenant status changed", "tenant_id", t.ID, "active", active, "user_id", scope.UserID)
	return t, nil
}
