// Package access resolves who is calling and on behalf of which tenant, and
// decides what that caller may do.
package access

import (
	"github.com/hugohenrick/arte-ideas/internal/domain/tenant"
	"github.com/hugohenrick/arte-ideas/internal/domain/user"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
)

// Principal is the authenticated identity carried by a request. Role is the
// raw literal from the credential; it is checked by Resolve.
type Principal struct {
	UserID   string
	Login    string
	Role     string
	TenantID string
}

// Scope is the resolved (user, role, tenant) triple every operation runs in
type Scope struct {
	UserID string
	Login  string
	Role   user.Role
	Tenant *tenant.Tenant
}

// TenantID returns the bound tenant, or "" for a tenant-less super-admin
func (s *Scope) TenantID() string {
	if s.Tenant == nil {
		return ""
	}
	return s.Tenant.ID
}

// HasTenant reports whether a tenant is bound
func (s *Scope) HasTenant() bool {
	return s.Tenant != nil
}

// IsSuperAdmin reports whether the caller may act across tenants
func (s *Scope) IsSuperAdmin() bool {
	return s.Role == user.RoleSuperAdmin
}

// RequireTenant fails for a tenant-less super-admin; tenant-owned
// aggregates cannot be written without a bound tenant.
func (s *Scope) RequireTenant() error {
	if s.Tenant == nil {
		return apperror.Forbidden("select a tenant before operating on tenant data")
	}
	return nil
}

// Restricted reports whether the bound tenant hides financial data
func (s *Scope) Restricted() bool {
	return s.Tenant != nil && s.Tenant.IsRestricted()
}
