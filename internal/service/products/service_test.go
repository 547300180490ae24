package products

import (
	"context"
	"testing"

	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/adapter/repository/memory"
	"github.com/hugohenrick/arte-ideas/internal/domain/product"
	"github.com/hugohenrick/arte-ideas/internal/domain/tenant"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService(t *testing.T) (*Service, *tenant.Tenant) {
	t.Helper()
	uow := memory.NewUnitOfWork(memory.NewDB())
	repos := uow.Reader()

	lima, err := tenant.NewTenant("lima", "Estudio Lima")
	require.NoError(t, err)
	require.NoError(t, repos.Tenants.Create(context.Background(), lima))

	policy, err := access.NewPolicy()
	require.NoError(t, err)
	guard := access.NewGuard(access.NewResolver(repos.Tenants), policy)
	return NewService(uow, guard, nil, nil), lima
}

func callerIn(t *tenant.Tenant, role string) access.Caller {
	return access.Caller{Principal: &access.Principal{UserID: role + "-1", Login: role, Role: role, TenantID: t.ID}}
}

func createBook(t *testing.T, svc *Service, lima *tenant.Tenant) *ProductDTO {
	t.Helper()
	p, err := svc.Create(context.Background(), callerIn(lima, "admin"), CreateInput{
		Name:      "Photo book A4",
		Stock:     10,
		CostPrice: decimal.RequireFromString("80"),
		SalePrice: decimal.RequireFromString("150"),
	})
	require.NoError(t, err)
	return p
}

func TestCostPriceVisibility(t *testing.T) {
	svc, lima := newService(t)
	created := createBook(t, svc, lima)
	require.NotNil(t, created.CostPrice)
	assert.Equal(t, "80.00", *created.CostPrice)
	assert.Equal(t, "150.00", created.SalePrice)

	got, err := svc.Get(context.Background(), callerIn(lima, "sales"), created.ID)
	require.NoError(t, err)
	assert.Nil(t, got.CostPrice)

	list, err := svc.List(context.Background(), callerIn(lima, "operator"), product.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].CostPrice)
}

func TestAdjustStock(t *testing.T) {
	svc, lima := newService(t)
	ctx := context.Background()
	created := createBook(t, svc, lima)

	adjusted, err := svc.AdjustStock(ctx, callerIn(lima, "admin"), created.ID, -3, "damaged")
	require.NoError(t, err)
	assert.Equal(t, 7, adjusted.Stock)

	_, err = svc.AdjustStock(ctx, callerIn(lima, "admin"), created.ID, -8, "")
	require.True(t, apperror.Is(err, apperror.KindInsufficientStock))
	assert.Equal(t, 7, apperror.From(err).Shortage.Available)

	_, err = svc.AdjustStock(ctx, callerIn(lima, "admin"), created.ID, 0, "")
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	_, err = svc.AdjustStock(ctx, callerIn(lima, "sales"), created.ID, 1, "")
	assert.True(t, apperror.Is(err, apperror.KindForbidden))

	movements, err := svc.Movements(ctx, callerIn(lima, "operator"), created.ID, 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, product.MovementManual, movements[0].Kind)
	assert.Equal(t, -3, movements[0].Delta)
	assert.Equal(t, "damaged", movements[0].Note)

	_, err = svc.Movements(ctx, callerIn(lima, "operator"), "missing", 0)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}
