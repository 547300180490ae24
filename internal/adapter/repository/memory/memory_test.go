package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hugohenrick/arte-ideas/internal/domain"
	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/hugohenrick/arte-ideas/internal/domain/product"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newOrder(tenantID, number string, status order.Status, delivery time.Time) *order.Order {
	o := order.NewOrder(tenantID, number, "client-1", order.DocumentProforma, order.ClientIndividual, status, "user-1", time.Now().UTC())
	o.DeliveryDate = order.Day(delivery)
	return o
}

func TestWithinRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	uow := NewUnitOfWork(NewDB())
	boom := errors.New("boom")

	err := uow.Within(ctx, func(ctx context.Context, repos domain.Repositories) error {
		require.NoError(t, repos.Orders.Create(ctx, newOrder("t1", "ORD-1", order.StatusDraft, time.Now())))
		return boom
	})
	require.ErrorIs(t, err, boom)

	_, total, err := uow.Reader().Orders.List(ctx, order.ListFilter{TenantID: "t1"})
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestWithinCommits(t *testing.T) {
	ctx := context.Background()
	uow := NewUnitOfWork(NewDB())
	o := newOrder("t1", "ORD-1", order.StatusDraft, time.Now())

	err := uow.Within(ctx, func(ctx context.Context, repos domain.Repositories) error {
		return repos.Orders.Create(ctx, o)
	})
	require.NoError(t, err)

	got, err := uow.Reader().Orders.FindByID(ctx, "t1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, "ORD-1", got.OrderNumber)
}

func TestOrdersAreTenantScoped(t *testing.T) {
	ctx := context.Background()
	repos := NewUnitOfWork(NewDB()).Reader()
	o := newOrder("t1", "ORD-1", order.StatusDraft, time.Now())
	require.NoError(t, repos.Orders.Create(ctx, o))

	_, err := repos.Orders.FindByID(ctx, "t2", o.ID)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)

	_, err = repos.Orders.FindByID(ctx, "", o.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, repos.Orders.Create(ctx, newOrder("t1", "ORD-1", order.StatusDraft, time.Now())), order.ErrOrderDuplicateNumber)
	assert.NoError(t, repos.Orders.Create(ctx, newOrder("t2", "ORD-1", order.StatusDraft, time.Now())))
}

func TestReturnedOrdersAreCopies(t *testing.T) {
	ctx := context.Background()
	repos := NewUnitOfWork(NewDB()).Reader()
	o := newOrder("t1", "ORD-1", order.StatusDraft, time.Now())
	require.NoError(t, repos.Orders.Create(ctx, o))

	got, err := repos.Orders.FindByID(ctx, "t1", o.ID)
	require.NoError(t, err)
	got.Status = order.StatusCancelled

	again, err := repos.Orders.FindByID(ctx, "t1", o.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusDraft, again.Status)
}

func TestListSortsAndPaginates(t *testing.T) {
	ctx := context.Background()
	repos := NewUnitOfWork(NewDB()).Reader()
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	for i, n := range []string{"ORD-3", "ORD-1", "ORD-2"} {
		require.NoError(t, repos.Orders.Create(ctx, newOrder("t1", n, order.StatusPending, base.AddDate(0, 0, 3-i))))
	}

	got, total, err := repos.Orders.List(ctx, order.ListFilter{TenantID: "t1", Sort: order.SortNumberAsc, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 2)
	assert.Equal(t, "ORD-1", got[0].OrderNumber)
	assert.Equal(t, "ORD-2", got[1].OrderNumber)

	got, _, err = repos.Orders.List(ctx, order.ListFilter{TenantID: "t1", Sort: order.SortDeliveryAsc})
	require.NoError(t, err)
	assert.Equal(t, "ORD-2", got[0].OrderNumber)
}

func TestNextSequenceIsPerScope(t *testing.T) {
	ctx := context.Background()
	repos := NewUnitOfWork(NewDB()).Reader()

	n, err := repos.Orders.NextSequence(ctx, "t1", "2024")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	n, _ = repos.Orders.NextSequence(ctx, "t1", "2024")
	assert.EqualValues(t, 2, n)
	n, _ = repos.Orders.NextSequence(ctx, "t2", "2024")
	assert.EqualValues(t, 1, n)
}

func TestItemBalancesSumTheLedger(t *testing.T) {
	ctx := context.Background()
	repos := NewUnitOfWork(NewDB()).Reader()
	p, err := product.NewProduct("t1", "Marco", "", "", 10, decimal.Zero, decimal.Zero)
	require.NoError(t, err)
	require.NoError(t, repos.Products.Create(ctx, p))

	for _, delta := range []int{-3, 1} {
		require.NoError(t, repos.Products.AddMovement(ctx, &product.Movement{
			ID: "m", TenantID: "t1", ProductID: p.ID, OrderID: "o1", ItemID: "i1",
			Kind: product.MovementSale, Delta: delta,
		}))
	}

	balances, err := repos.Products.ItemBalances(ctx, "t1", "o1")
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, -2, balances[0].Net)

	locked, err := repos.Products.LockByIDs(ctx, "t1", []string{"missing", p.ID})
	require.NoError(t, err)
	require.Len(t, locked, 1)
	assert.Equal(t, p.ID, locked[0].ID)
}
