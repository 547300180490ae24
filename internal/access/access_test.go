package access

import (
	"context"
	"errors"
	"testing"

	"github.com/hugohenrick/arte-ideas/internal/domain/tenant"
	"github.com/hugohenrick/arte-ideas/internal/domain/user"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTenantRepo struct {
	tenants map[string]*tenant.Tenant
	err     error
}

func (s *stubTenantRepo) Create(ctx context.Context, t *tenant.Tenant) error { return nil }

func (s *stubTenantRepo) FindByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	if s.err != nil {
		return nil, s.err
	}
	if t, ok := s.tenants[id]; ok {
		return t, nil
	}
	return nil, tenant.ErrTenantNotFound
}

func (s *stubTenantRepo) FindBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	for _, t := range s.tenants {
		if t.Slug == slug {
			return t, nil
		}
	}
	return nil, tenant.ErrTenantNotFound
}

func (s *stubTenantRepo) List(ctx context.Context, limit, offset int) ([]*tenant.Tenant, error) {
	return nil, nil
}

func (s *stubTenantRepo) Update(ctx context.Context, t *tenant.Tenant) error { return nil }

func newRepo(t *testing.T) (*stubTenantRepo, *tenant.Tenant, *tenant.Tenant) {
	t.Helper()
	lima, err := tenant.NewTenant("lima", "Lima")
	require.NoError(t, err)
	cusco, err := tenant.NewTenant("cusco", "Cusco")
	require.NoError(t, err)
	return &stubTenantRepo{tenants: map[string]*tenant.Tenant{lima.ID: lima, cusco.ID: cusco}}, lima, cusco
}

func TestResolveRequiresPrincipal(t *testing.T) {
	repo, _, _ := newRepo(t)
	r := NewResolver(repo)

	_, err := r.Resolve(context.Background(), nil, "")
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))

	_, err = r.Resolve(context.Background(), &Principal{UserID: "u", Role: "ventas", TenantID: "x"}, "")
	assert.True(t, apperror.Is(err, apperror.KindUnauthenticated))
}

func TestResolveBindsPrincipalTenant(t *testing.T) {
	repo, lima, cusco := newRepo(t)
	r := NewResolver(repo)
	p := &Principal{UserID: "u-1", Role: "sales", TenantID: lima.ID}

	scope, err := r.Resolve(context.Background(), p, "")
	require.NoError(t, err)
	assert.Equal(t, lima.ID, scope.TenantID())
	assert.Equal(t, user.RoleSales, scope.Role)

	scope, err = r.Resolve(context.Background(), p, "lima")
	require.NoError(t, err)
	assert.Equal(t, lima.ID, scope.TenantID())

	_, err = r.Resolve(context.Background(), p, cusco.ID)
	assert.True(t, apperror.Is(err, apperror.KindTenantMismatch))

	lima.Deactivate()
	_, err = r.Resolve(context.Background(), p, "")
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
}

func TestResolveSuperAdmin(t *testing.T) {
	repo, lima, cusco := newRepo(t)
	r := NewResolver(repo)
	p := &Principal{UserID: "root", Role: "super-admin"}

	scope, err := r.Resolve(context.Background(), p, "")
	require.NoError(t, err)
	assert.False(t, scope.HasTenant())
	assert.True(t, apperror.Is(scope.RequireTenant(), apperror.KindForbidden))

	scope, err = r.Resolve(context.Background(), p, cusco.ID)
	require.NoError(t, err)
	assert.Equal(t, cusco.ID, scope.TenantID())

	scope, err = r.Resolve(context.Background(), p, "lima")
	require.NoError(t, err)
	assert.Equal(t, lima.ID, scope.TenantID())

	scope, err = r.Resolve(context.Background(), p, "nowhere")
	require.NoError(t, err)
	assert.False(t, scope.HasTenant())

	cusco.Deactivate()
	scope, err = r.Resolve(context.Background(), p, cusco.ID)
	require.NoError(t, err)
	assert.False(t, scope.HasTenant())
}

func TestResolveInfrastructureFailure(t *testing.T) {
	repo, lima, _ := newRepo(t)
	repo.err = errors.New("connection refused")
	r := NewResolver(repo)

	_, err := r.Resolve(context.Background(), &Principal{UserID: "u", Role: "admin", TenantID: lima.ID}, "")
	assert.True(t, apperror.Is(err, apperror.KindInternal))
}

func scopeFor(role user.Role, location tenant.Location) *Scope {
	t := &tenant.Tenant{ID: "t-1", Slug: "lima", Active: true, Location: location}
	return &Scope{UserID: "u", Role: role, Tenant: t}
}

func TestPolicyMatrix(t *testing.T) {
	p, err := NewPolicy()
	require.NoError(t, err)

	type check struct {
		action   Action
		resource Resource
		want     bool
	}
	matrix := map[user.Role][]check{
		user.RoleSuperAdmin: {
			{ActionDelete, ResourceOrder, true},
			{ActionCreate, ResourceTenant, true},
			{ActionViewCosts, ResourceProduct, true},
		},
		user.RoleAdmin: {
			{ActionDelete, ResourceOrder, true},
			{ActionRegisterPayment, ResourceOrder, true},
			{ActionViewFinancials, ResourceOrder, true},
			{ActionViewCosts, ResourceProduct, true},
			{ActionCreate, ResourceTenant, false},
		},
		user.RoleSales: {
			{ActionRead, ResourceOrder, true},
			{ActionCreate, ResourceOrder, true},
			{ActionUpdate, ResourceOrder, true},
			{ActionDelete, ResourceOrder, false},
			{ActionRegisterPayment, ResourceOrder, true},
			{ActionViewFinancials, ResourceOrder, true},
			{ActionEditPrice, ResourceOrderItem, true},
			{ActionViewCosts, ResourceProduct, false},
			{ActionCreate, ResourceProduct, false},
		},
		user.RoleProduction: {
			{ActionRead, ResourceOrder, true},
			{ActionTransition, ResourceOrder, true},
			{ActionCreate, ResourceOrder, false},
			{ActionRegisterPayment, ResourceOrder, false},
			{ActionViewFinancials, ResourceOrder, false},
			{ActionRead, ResourceOrderItem, true},
			{ActionRead, ResourceOrderPayment, false},
		},
		user.RoleOperator: {
			{ActionRead, ResourceOrder, true},
			{ActionRead, ResourceOrderItem, false},
			{ActionTransition, ResourceOrder, false},
			{ActionViewFinancials, ResourceOrder, false},
			{ActionRead, ResourceClient, true},
		},
	}

	for role, checks := range matrix {
		scope := scopeFor(role, tenant.LocationFullAccess)
		for _, c := range checks {
			assert.Equal(t, c.want, p.Permit(scope, c.action, c.resource), "%s %s %s", role, c.action, c.resource)
		}
	}
}

func TestRestrictedTenantHidesFinancials(t *testing.T) {
	p, err := NewPolicy()
	require.NoError(t, err)

	assert.False(t, p.Permit(scopeFor(user.RoleSales, tenant.LocationRestricted), ActionViewFinancials, ResourceOrder))
	assert.True(t, p.Permit(scopeFor(user.RoleAdmin, tenant.LocationRestricted), ActionViewFinancials, ResourceOrder))
	assert.True(t, p.Permit(scopeFor(user.RoleSuperAdmin, tenant.LocationRestricted), ActionViewFinancials, ResourceOrder))
	// other sales grants are untouched
	assert.True(t, p.Permit(scopeFor(user.RoleSales, tenant.LocationRestricted), ActionRegisterPayment, ResourceOrder))
}

func TestAuthorizeAndVisibility(t *testing.T) {
	p, err := NewPolicy()
	require.NoError(t, err)

	err = p.Authorize(scopeFor(user.RoleOperator, tenant.LocationFullAccess), ActionCreate, ResourceOrder)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
	assert.False(t, p.Permit(nil, ActionRead, ResourceOrder))

	v := p.VisibilityFor(scopeFor(user.RoleProduction, tenant.LocationFullAccess))
	assert.Equal(t, Visibility{Items: true, History: true}, v)

	v = p.VisibilityFor(scopeFor(user.RoleSales, tenant.LocationFullAccess))
	assert.Equal(t, Visibility{Financials: true, Items: true, Payments: true, History: true}, v)

	assert.True(t, p.MayCompensate(scopeFor(user.RoleAdmin, tenant.LocationFullAccess)))
	assert.False(t, p.MayCompensate(scopeFor(user.RoleSales, tenant.LocationFullAccess)))
}
