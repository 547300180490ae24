package tenants

import (
	"context"
	"testing"

	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/adapter/repository/memory"
	"github.com/hugohenrick/arte-ideas/internal/domain/tenant"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var root = access.Caller{Principal: &access.Principal{UserID: "root", Login: "root", Role: "super-admin"}}

func newService(t *testing.T) (*Service, *access.Guard) {
	t.Helper()
	uow := memory.NewUnitOfWork(memory.NewDB())
	policy, err := access.NewPolicy()
	require.NoError(t, err)
	guard := access.NewGuard(access.NewResolver(uow.Reader().Tenants), policy)
	return NewService(uow, guard, nil), guard
}

func TestTenantLifecycle(t *testing.T) {
	svc, guard := newService(t)
	ctx := context.Background()

	created, err := svc.Create(ctx, root, CreateInput{Slug: "lima", Name: "Estudio Lima", Location: tenant.LocationRestricted})
	require.NoError(t, err)
	assert.True(t, created.Active)
	assert.True(t, created.IsRestricted())

	_, err = svc.Create(ctx, root, CreateInput{Slug: "lima", Name: "Other"})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	bySlug, err := svc.Get(ctx, root, "lima")
	require.NoError(t, err)
	assert.Equal(t, created.ID, bySlug.ID)

	list, err := svc.List(ctx, root, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	admin := access.Caller{Principal: &access.Principal{UserID: "a", Login: "a", Role: "admin", TenantID: created.ID}}
	_, err = svc.List(ctx, admin, 0, 0)
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	_, err = svc.SetActive(ctx, root, created.ID, false)
	require.NoError(t, err)
	_, err = guard.EnterTenant(ctx, admin, access.ActionRead, access.ResourceOrder)
	assert.True(t, apperror.Is(err, apperror.KindForbidden), "inactive tenant rejects its users")

	reactivated, err := svc.SetActive(ctx, root, created.ID, true)
	require.NoError(t, err)
	assert.True(t, reactivated.Active)
	_, err = guard.EnterTenant(ctx, admin, access.ActionRead, access.ResourceOrder)
	assert.NoError(t, err)

	_, err = svc.Get(ctx, root, "missing")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
