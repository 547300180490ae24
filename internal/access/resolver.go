package access

import (
	"context"
	"errors"
	"strings"

	"github.com/hugohenrick/arte-ideas/internal/domain/tenant"
	"github.com/hugohenrick/arte-ideas/internal/domain/user"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
)

// Resolver turns a principal and an optional tenant selector into a Scope
type Resolver struct {
	tenants tenant.Repository
}

// NewResolver creates a Resolver reading tenants from repo
func NewResolver(repo tenant.Repository) *Resolver {
	return &Resolver{tenants: repo}
}

// Resolve applies the tenant binding rules. selector is the tenant id or
// slug requested explicitly by the caller, or "".
func (r *Resolver) Resolve(ctx context.Context, p *Principal, selector string) (*Scope, error) {
	if p == nil || strings.TrimSpace(p.UserID) == "" {
		return nil, apperror.Unauthenticated("authentication required")
	}

	role, err := user.ParseRole(p.Role)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.KindUnauthenticated, "credential carries an unsupported role")
	}

	scope := &Scope{UserID: p.UserID, Login: p.Login, Role: role}
	selector = strings.TrimSpace(selector)

	if role == user.RoleSuperAdmin {
		if selector == "" {
			return scope, nil
		}
		t, err := r.lookup(ctx, selector)
		if err != nil && !errors.Is(err, tenant.ErrTenantNotFound) {
			return nil, apperror.Internal(err)
		}
		if t != nil && t.Active {
			scope.Tenant = t
		}
		return scope, nil
	}

	if p.TenantID == "" {
		return nil, apperror.Unauthenticated("credential is not bound to a tenant")
	}

	t, err := r.tenants.FindByID(ctx, p.TenantID)
	if err != nil {
		if errors.Is(err, tenant.ErrTenantNotFound) {
			return nil, apperror.Forbidden("tenant is not available")
		}
		return nil, apperror.Internal(err)
	}
	if selector != "" && selector != t.ID && selector != t.Slug {
		return nil, apperror.TenantMismatch()
	}
	if !t.Active {
		return nil, apperror.Forbidden("tenant is inactive")
	}

	scope.Tenant = t
	return scope, nil
}

func (r *Resolver) lookup(ctx context.Context, selector string) (*tenant.Tenant, error) {
	t, err := r.tenants.FindByID(ctx, selector)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, tenant.ErrTenantNotFound) {
		return nil, err
	}
	return r.tenants.FindBySlug(ctx, selector)
}
