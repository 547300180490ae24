package orders

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/adapter/repository/memory"
	"github.com/hugohenrick/arte-ideas/internal/domain"
	"github.com/hugohenrick/arte-ideas/internal/domain/client"
	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/hugohenrick/arte-ideas/internal/domain/product"
	"github.com/hugohenrick/arte-ideas/internal/domain/tenant"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/hugohenrick/arte-ideas/pkg/idempotency"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)

type fixture struct {
	svc     *Service
	repos   domain.Repositories
	tenant  *tenant.Tenant
	other   *tenant.Tenant
	client  *client.Client
	product *product.Product
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	uow := memory.NewUnitOfWork(memory.NewDB())
	repos := uow.Reader()

	lima, err := tenant.NewTenant("lima", "Estudio Lima")
	require.NoError(t, err)
	require.NoError(t, repos.Tenants.Create(ctx, lima))
	cusco, err := tenant.NewTenant("cusco", "Estudio Cusco")
	require.NoError(t, err)
	require.NoError(t, repos.Tenants.Create(ctx, cusco))

	cl, err := client.NewClient(lima.ID, client.TypeIndividual, "Ana Quispe", "12345678", "", "999111222", "", "")
	require.NoError(t, err)
	require.NoError(t, repos.Clients.Create(ctx, cl))

	p, err := product.NewProduct(lima.ID, "Photo book A4", "PB-A4", "", 10, dec("80.00"), dec("150.00"))
	require.NoError(t, err)
	require.NoError(t, repos.Products.Create(ctx, p))

	policy, err := access.NewPolicy()
	require.NoError(t, err)
	guard := access.NewGuard(access.NewResolver(repos.Tenants), policy)

	svc, err := NewService(Deps{
		UnitOfWork:  uow,
		Guard:       guard,
		Idempotency: idempotency.NewMemoryStore(),
		Clock:       func() time.Time { return fixedNow },
	}, Options{TaxRate: dec("0.18")})
	require.NoError(t, err)

	return &fixture{svc: svc, repos: repos, tenant: lima, other: cusco, client: cl, product: p}
}

func (f *fixture) caller(role string) access.Caller {
	return access.Caller{Principal: &access.Principal{UserID: role + "-1", Login: role, Role: role, TenantID: f.tenant.ID}}
}

func (f *fixture) stock(t *testing.T) int {
	t.Helper()
	p, err := f.repos.Products.FindByID(context.Background(), f.tenant.ID, f.product.ID)
	require.NoError(t, err)
	return p.Stock
}

func (f *fixture) saleNote() CreateOrderCommand {
	return CreateOrderCommand{
		ClientID:     f.client.ID,
		DocumentType: order.DocumentSaleNote,
		DeliveryDate: fixedNow.AddDate(0, 0, 5),
		Items: []ItemInput{{
			ProductName:     f.product.Name,
			Quantity:        2,
			UnitPrice:       dec("150.00"),
			InventoryItemID: f.product.ID,
		}},
		InitialPayment: &PaymentInput{Amount: dec("300.00"), Method: order.MethodCash},
	}
}

func (f *fixture) createSaleNote(t *testing.T) *OrderDTO {
	t.Helper()
	dto, err := f.svc.CreateOrder(context.Background(), f.caller("admin"), f.saleNote())
	require.NoError(t, err)
	return dto
}

func requireKind(t *testing.T, err error, kind apperror.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.True(t, apperror.Is(err, kind), "want %s, got %v", kind, err)
}

func TestCreateSaleNote(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	dto := f.createSaleNote(t)

	assert.Equal(t, "300.00", *dto.Subtotal)
	assert.Equal(t, "54.00", *dto.Tax)
	assert.Equal(t, "354.00", *dto.Total)
	assert.Equal(t, "300.00", *dto.PaidAmount)
	assert.Equal(t, "54.00", *dto.Balance)
	assert.Equal(t, "partial", dto.PaymentStatus)
	assert.Equal(t, "pending", dto.Status)
	assert.Equal(t, "ORD-2026-0001", dto.OrderNumber)
	assert.True(t, dto.AffectsInventory)
	assert.Len(t, dto.Items, 1)
	assert.Len(t, dto.Payments, 1)
	assert.Equal(t, 8, f.stock(t))

	history, err := f.svc.ListHistory(ctx, f.caller("admin"), dto.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Nil(t, history[0].PreviousStatus)
	assert.Equal(t, "pending", history[0].NewStatus)

	movements, err := f.repos.Products.ListMovements(ctx, f.tenant.ID, f.product.ID, 0)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, product.MovementSale, movements[0].Kind)
	assert.Equal(t, -2, movements[0].Delta)
}

func TestOverpaymentIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto := f.createSaleNote(t)

	_, err := f.svc.RegisterPayment(ctx, f.caller("admin"), RegisterPaymentCommand{
		OrderID: dto.ID,
		Payment: PaymentInput{Amount: dec("100.00"), Method: order.MethodCash},
	})
	requireKind(t, err, apperror.KindOverpayment)

	got, err := f.svc.GetOrder(ctx, f.caller("admin"), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "300.00", *got.PaidAmount)
	assert.Len(t, got.Payments, 1)
}

func TestCancelReversesStockOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto := f.createSaleNote(t)
	require.Equal(t, 8, f.stock(t))

	got, err := f.svc.Transition(ctx, f.caller("admin"), TransitionCommand{OrderID: dto.ID, Status: order.StatusCancelled, Reason: "client withdrew"})
	require.NoError(t, err)
	assert.Equal(t, "cancelled", got.Status)
	assert.Equal(t, "300.00", *got.PaidAmount)
	assert.Equal(t, "54.00", *got.Balance)
	assert.Equal(t, 10, f.stock(t))

	history, err := f.svc.ListHistory(ctx, f.caller("admin"), dto.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "pending", *history[1].PreviousStatus)
	assert.Equal(t, "cancelled", history[1].NewStatus)

	// same status again is a no-op
	_, err = f.svc.Transition(ctx, f.caller("admin"), TransitionCommand{OrderID: dto.ID, Status: order.StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t))

	_, err = f.svc.Transition(ctx, f.caller("admin"), TransitionCommand{OrderID: dto.ID, Status: order.StatusPending})
	requireKind(t, err, apperror.KindIllegalTransition)

	_, err = f.svc.RegisterPayment(ctx, f.caller("admin"), RegisterPaymentCommand{
		OrderID: dto.ID,
		Payment: PaymentInput{Amount: dec("54.00"), Method: order.MethodCash},
	})
	requireKind(t, err, apperror.KindIllegalTransition)
}

func TestOverdueOverlay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cmd := f.saleNote()
	cmd.DocumentType = order.DocumentProforma
	cmd.DeliveryDate = fixedNow.AddDate(0, 0, -1)
	cmd.InitialPayment = nil
	dto, err := f.svc.CreateOrder(ctx, f.caller("admin"), cmd)
	require.NoError(t, err)

	assert.Equal(t, "pending", dto.StoredStatus)
	assert.Equal(t, "overdue", dto.Status)
	assert.True(t, dto.IsOverdue)
	assert.Equal(t, -1, dto.DaysUntilDelivery)
	assert.Equal(t, 10, f.stock(t), "proformas never touch stock")

	page, err := f.svc.Overdue(ctx, f.caller("admin"), 0, 0)
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, dto.ID, page.Orders[0].ID)

	_, err = f.svc.Transition(ctx, f.caller("admin"), TransitionCommand{OrderID: dto.ID, Status: order.StatusOverdue})
	requireKind(t, err, apperror.KindIllegalTransition)
}

func TestTenantIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto := f.createSaleNote(t)

	outsider := access.Caller{Principal: &access.Principal{UserID: "admin-2", Role: "admin", TenantID: f.other.ID}}
	_, err := f.svc.GetOrder(ctx, outsider, dto.ID)
	requireKind(t, err, apperror.KindNotFound)

	_, err = f.svc.Transition(ctx, outsider, TransitionCommand{OrderID: dto.ID, Status: order.StatusCancelled})
	requireKind(t, err, apperror.KindNotFound)

	mismatch := f.caller("admin")
	mismatch.Tenant = f.other.ID
	_, err = f.svc.GetOrder(ctx, mismatch, dto.ID)
	requireKind(t, err, apperror.KindTenantMismatch)

	root := access.Caller{Principal: &access.Principal{UserID: "root", Role: "super-admin"}}
	_, err = f.svc.CreateOrder(ctx, root, f.saleNote())
	requireKind(t, err, apperror.KindForbidden)

	root.Tenant = f.tenant.Slug
	got, err := f.svc.GetOrder(ctx, root, dto.ID)
	require.NoError(t, err)
	assert.Equal(t, dto.ID, got.ID)
}

func TestTenantTaxRateOverridesPlatformRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	rate := dec("0.10")
	f.tenant.TaxRate = &rate
	require.NoError(t, f.repos.Tenants.Update(ctx, f.tenant))

	dto := f.createSaleNote(t)
	assert.Equal(t, "300.00", *dto.Subtotal)
	assert.Equal(t, "30.00", *dto.Tax)
	assert.Equal(t, "330.00", *dto.Total)
	assert.Equal(t, "30.00", *dto.Balance)

	// the cusco studio keeps the platform rate
	cl, err := client.NewClient(f.other.ID, client.TypeIndividual, "Luis Mamani", "87654321", "", "988777666", "", "")
	require.NoError(t, err)
	require.NoError(t, f.repos.Clients.Create(ctx, cl))
	cusco := access.Caller{Principal: &access.Principal{UserID: "admin-2", Role: "admin", TenantID: f.other.ID}}
	other, err := f.svc.CreateOrder(ctx, cusco, CreateOrderCommand{
		ClientID:     cl.ID,
		DocumentType: order.DocumentProforma,
		DeliveryDate: fixedNow.AddDate(0, 0, 5),
		Items:        []ItemInput{{ProductName: "Frame", Quantity: 1, UnitPrice: dec("100.00")}},
	})
	require.NoError(t, err)
	assert.Equal(t, "18.00", *other.Tax)
}

func TestCompletionRequiresFullPayment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.caller("admin")
	dto := f.createSaleNote(t)

	_, err := f.svc.Transition(ctx, admin, TransitionCommand{OrderID: dto.ID, Status: order.StatusCompleted})
	requireKind(t, err, apperror.KindIllegalTransition)
	assert.Contains(t, err.Error(), "not fully paid")

	for _, st := range []order.Status{order.StatusConfirmed, order.StatusInProcess} {
		_, err := f.svc.Transition(ctx, admin, TransitionCommand{OrderID: dto.ID, Status: st})
		require.NoError(t, err)
	}

	_, err = f.svc.Transition(ctx, admin, TransitionCommand{OrderID: dto.ID, Status: order.StatusCompleted})
	requireKind(t, err, apperror.KindIllegalTransition)
	assert.Contains(t, err.Error(), "not fully paid")

	// in-process orders still accept payments
	_, err = f.svc.RegisterPayment(ctx, admin, RegisterPaymentCommand{
		OrderID: dto.ID,
		Payment: PaymentInput{Amount: dec("54.00"), Method: order.MethodYape},
	})
	require.NoError(t, err)

	got, err := f.svc.Transition(ctx, admin, TransitionCommand{OrderID: dto.ID, Status: order.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, "completed", got.Status)
	assert.Equal(t, "paid", got.PaymentStatus)
	assert.Equal(t, "0.00", *got.Balance)

	history, err := f.svc.ListHistory(ctx, admin, dto.ID)
	require.NoError(t, err)
	require.Len(t, history, 4)
	for i := 1; i < len(history); i++ {
		assert.True(t, history[i].CreatedAt.After(history[i-1].CreatedAt), "history must be strictly ordered")
	}
}

func TestInsufficientStockRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cmd := f.saleNote()
	cmd.Items[0].Quantity = 11
	cmd.InitialPayment = nil
	_, err := f.svc.CreateOrder(ctx, f.caller("admin"), cmd)
	requireKind(t, err, apperror.KindInsufficientStock)

	assert.Equal(t, 10, f.stock(t))
	page, err := f.svc.ListOrders(ctx, f.caller("admin"), ListQuery{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestItemChangesFollowStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.caller("admin")

	cmd := f.saleNote()
	cmd.InitialPayment = nil
	dto, err := f.svc.CreateOrder(ctx, admin, cmd)
	require.NoError(t, err)
	itemID := dto.Items[0].ID

	qty := 5
	got, err := f.svc.UpdateItem(ctx, admin, dto.ID, itemID, order.ItemPatch{Quantity: &qty})
	require.NoError(t, err)
	assert.Equal(t, "885.00", *got.Total)
	assert.Equal(t, 5, f.stock(t))

	_, err = f.svc.RemoveItem(ctx, admin, dto.ID, itemID)
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t))

	// the ledger is settled, so cancelling gives nothing back twice
	_, err = f.svc.Transition(ctx, admin, TransitionCommand{OrderID: dto.ID, Status: order.StatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t))
}

func TestValidationReportsEveryField(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateOrder(context.Background(), f.caller("admin"), CreateOrderCommand{
		ClientID:     "missing",
		DocumentType: order.DocumentContract,
		Status:       order.StatusConfirmed,
		Items:        []ItemInput{{ProductName: "", Quantity: 0, UnitPrice: dec("10")}},
	})
	requireKind(t, err, apperror.KindValidation)

	var appErr *apperror.Error
	require.ErrorAs(t, err, &appErr)
	for _, field := range []string{"status", "client_id", "contract_ref", "delivery_date", "items[0].product_name", "items[0].quantity"} {
		assert.Contains(t, appErr.Fields, field)
	}
	assert.NotContains(t, appErr.Fields, "order_number")
}

func TestDuplicateOrderNumber(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cmd := f.saleNote()
	cmd.OrderNumber = "N-1"
	cmd.InitialPayment = nil
	_, err := f.svc.CreateOrder(ctx, f.caller("admin"), cmd)
	require.NoError(t, err)

	_, err = f.svc.CreateOrder(ctx, f.caller("admin"), cmd)
	requireKind(t, err, apperror.KindValidation)
	assert.Equal(t, 8, f.stock(t), "the rejected order must not debit stock")
}

func TestRoleRedaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto := f.createSaleNote(t)

	got, err := f.svc.GetOrder(ctx, f.caller("operator"), dto.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Total)
	assert.Nil(t, got.Balance)
	assert.Nil(t, got.Items)
	assert.Nil(t, got.Payments)

	got, err = f.svc.GetOrder(ctx, f.caller("sales"), dto.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Total)
	assert.Len(t, got.Items, 1)
	assert.Len(t, got.Payments, 1)

	_, err = f.svc.Transition(ctx, f.caller("operator"), TransitionCommand{OrderID: dto.ID, Status: order.StatusConfirmed})
	requireKind(t, err, apperror.KindForbidden)

	_, err = f.svc.ListPayments(ctx, f.caller("production"), dto.ID)
	requireKind(t, err, apperror.KindForbidden)
}

func TestRestrictedTenantHidesFinancials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto := f.createSaleNote(t)

	f.tenant.Location = tenant.LocationRestricted
	require.NoError(t, f.repos.Tenants.Update(ctx, f.tenant))

	got, err := f.svc.GetOrder(ctx, f.caller("sales"), dto.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Total)
	assert.Nil(t, got.Payments)

	got, err = f.svc.GetOrder(ctx, f.caller("admin"), dto.ID)
	require.NoError(t, err)
	assert.NotNil(t, got.Total)
}

func TestCompensatingPayments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto := f.createSaleNote(t)

	refund := RegisterPaymentCommand{
		OrderID: dto.ID,
		Payment: PaymentInput{Amount: dec("-100.00"), Method: order.MethodCash, Note: "partial refund"},
	}
	_, err := f.svc.RegisterPayment(ctx, f.caller("sales"), refund)
	requireKind(t, err, apperror.KindForbidden)

	got, err := f.svc.RegisterPayment(ctx, f.caller("admin"), refund)
	require.NoError(t, err)
	assert.Equal(t, "200.00", *got.PaidAmount)
	assert.Len(t, got.Payments, 2)

	refund.Payment.Amount = dec("-500.00")
	_, err = f.svc.RegisterPayment(ctx, f.caller("admin"), refund)
	requireKind(t, err, apperror.KindValidation)

	err = f.svc.UpdatePayment(ctx, f.caller("admin"), dto.ID, got.Payments[0].ID)
	requireKind(t, err, apperror.KindImmutableRecord)
}

func TestConcurrentPaymentsNeverOverpay(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cmd := f.saleNote()
	cmd.InitialPayment = nil
	dto, err := f.svc.CreateOrder(ctx, f.caller("admin"), cmd)
	require.NoError(t, err)

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.RegisterPayment(ctx, f.caller("sales"), RegisterPaymentCommand{
				OrderID: dto.ID,
				Payment: PaymentInput{Amount: dec("100.00"), Method: order.MethodCard},
			})
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.True(t, apperror.Is(err, apperror.KindOverpayment), "unexpected error: %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, accepted)
	got, err := f.svc.GetOrder(ctx, f.caller("admin"), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "300.00", *got.PaidAmount)
}

func TestConcurrentSaleNotesNeverOversell(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd := f.saleNote()
			cmd.Items[0].Quantity = 3
			cmd.InitialPayment = nil
			_, err := f.svc.CreateOrder(ctx, f.caller("sales"), cmd)
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
				return
			}
			assert.True(t, apperror.Is(err, apperror.KindInsufficientStock), "unexpected error: %v", err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 3, accepted)
	assert.Equal(t, 1, f.stock(t))

	page, err := f.svc.ListOrders(ctx, f.caller("admin"), ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
}

type countingOrders struct {
	order.Repository
	finds *atomic.Int32
}

func (r countingOrders) FindByID(ctx context.Context, tenantID, id string) (*order.Order, error) {
	r.finds.Add(1)
	return r.Repository.FindByID(ctx, tenantID, id)
}

type countingReader struct {
	domain.UnitOfWork
	finds *atomic.Int32
}

func (u countingReader) Reader() domain.Repositories {
	repos := u.UnitOfWork.Reader()
	repos.Orders = countingOrders{Repository: repos.Orders, finds: u.finds}
	return repos
}

func TestMissingOrderIsNotRetried(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto := f.createSaleNote(t)

	finds := &atomic.Int32{}
	svc := *f.svc
	svc.uow = countingReader{UnitOfWork: f.svc.uow, finds: finds}

	outsider := access.Caller{Principal: &access.Principal{UserID: "admin-2", Role: "admin", TenantID: f.other.ID}}
	_, err := svc.GetOrder(ctx, outsider, dto.ID)
	requireKind(t, err, apperror.KindNotFound)
	assert.Equal(t, int32(1), finds.Load())

	_, err = svc.GetOrder(ctx, f.caller("admin"), "00000000-0000-0000-0000-000000000000")
	requireKind(t, err, apperror.KindNotFound)
	assert.Equal(t, int32(2), finds.Load())
}

func TestIdempotentCreate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cmd := f.saleNote()
	cmd.IdempotencyKey = "create-1"
	first, err := f.svc.CreateOrder(ctx, f.caller("admin"), cmd)
	require.NoError(t, err)

	again, err := f.svc.CreateOrder(ctx, f.caller("admin"), cmd)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, 8, f.stock(t))

	cmd.Notes = "different payload"
	_, err = f.svc.CreateOrder(ctx, f.caller("admin"), cmd)
	requireKind(t, err, apperror.KindConflict)
}

func TestPaymentReplayReturnsStoredResponse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	dto := f.createSaleNote(t)

	cmd := RegisterPaymentCommand{
		OrderID:        dto.ID,
		Payment:        PaymentInput{Amount: dec("20.00"), Method: order.MethodYape},
		IdempotencyKey: "pay-1",
	}
	first, err := f.svc.RegisterPayment(ctx, f.caller("sales"), cmd)
	require.NoError(t, err)
	assert.Equal(t, "320.00", *first.PaidAmount)

	_, err = f.svc.RegisterPayment(ctx, f.caller("sales"), RegisterPaymentCommand{
		OrderID: dto.ID,
		Payment: PaymentInput{Amount: dec("10.00"), Method: order.MethodCash},
	})
	require.NoError(t, err)

	again, err := f.svc.RegisterPayment(ctx, f.caller("sales"), cmd)
	require.NoError(t, err)
	assert.Equal(t, "320.00", *again.PaidAmount)
	assert.Equal(t, first.PaymentsCount, again.PaymentsCount)
	assert.Len(t, again.Payments, 2)
	assert.True(t, first.UpdatedAt.Equal(again.UpdatedAt))

	current, err := f.svc.GetOrder(ctx, f.caller("admin"), dto.ID)
	require.NoError(t, err)
	assert.Equal(t, "330.00", *current.PaidAmount)
}

func TestReplayIsRedactedForTheRetryingCaller(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.tenant.Location = tenant.LocationRestricted
	require.NoError(t, f.repos.Tenants.Update(ctx, f.tenant))

	cmd := f.saleNote()
	cmd.InitialPayment = nil
	cmd.IdempotencyKey = "create-restricted"
	first, err := f.svc.CreateOrder(ctx, f.caller("sales"), cmd)
	require.NoError(t, err)
	assert.Nil(t, first.Total)
	require.Len(t, first.Items, 1)
	assert.Nil(t, first.Items[0].UnitPrice)

	again, err := f.svc.CreateOrder(ctx, f.caller("admin"), cmd)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	require.NotNil(t, again.Total)
	assert.Equal(t, "354.00", *again.Total)
	assert.Equal(t, "150.00", *again.Items[0].UnitPrice)
	assert.Equal(t, 8, f.stock(t))
}

func TestIdempotencyKeyIsReleasedOnFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cmd := f.saleNote()
	cmd.IdempotencyKey = "create-2"
	cmd.Items[0].Quantity = 50
	cmd.InitialPayment = nil
	_, err := f.svc.CreateOrder(ctx, f.caller("admin"), cmd)
	requireKind(t, err, apperror.KindInsufficientStock)

	cmd.Items[0].Quantity = 1
	// a different payload is fine once the failed attempt released the key
	dto, err := f.svc.CreateOrder(ctx, f.caller("admin"), cmd)
	require.NoError(t, err)
	assert.Equal(t, 9, f.stock(t))
	assert.NotEmpty(t, dto.ID)
}

func TestDeleteOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.caller("admin")

	paid := f.createSaleNote(t)
	err := f.svc.DeleteOrder(ctx, admin, paid.ID)
	requireKind(t, err, apperror.KindConflict)

	cmd := f.saleNote()
	cmd.InitialPayment = nil
	unpaid, err := f.svc.CreateOrder(ctx, admin, cmd)
	require.NoError(t, err)
	require.Equal(t, 6, f.stock(t))

	err = f.svc.DeleteOrder(ctx, f.caller("sales"), unpaid.ID)
	requireKind(t, err, apperror.KindForbidden)

	require.NoError(t, f.svc.DeleteOrder(ctx, admin, unpaid.ID))
	assert.Equal(t, 8, f.stock(t))

	_, err = f.svc.GetOrder(ctx, admin, unpaid.ID)
	requireKind(t, err, apperror.KindNotFound)
}

func TestUpdateOrderHeaderRespectsStatus(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.caller("admin")
	dto := f.createSaleNote(t)

	notes := "bring the frames"
	got, err := f.svc.UpdateOrder(ctx, admin, dto.ID, order.HeaderPatch{Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, notes, got.Notes)

	_, err = f.svc.Transition(ctx, admin, TransitionCommand{OrderID: dto.ID, Status: order.StatusConfirmed})
	require.NoError(t, err)

	grade := "5"
	_, err = f.svc.UpdateOrder(ctx, admin, dto.ID, order.HeaderPatch{Grade: &grade})
	requireKind(t, err, apperror.KindIllegalTransition)

	_, err = f.svc.Transition(ctx, admin, TransitionCommand{OrderID: dto.ID, Status: order.StatusInProcess})
	require.NoError(t, err)
	_, err = f.svc.AddItem(ctx, admin, dto.ID, ItemInput{ProductName: "Frame", Quantity: 1, UnitPrice: dec("20")})
	requireKind(t, err, apperror.KindIllegalTransition)
}

func TestReports(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.caller("admin")

	f.createSaleNote(t)
	late := f.saleNote()
	late.DocumentType = order.DocumentProforma
	late.DeliveryDate = fixedNow.AddDate(0, 0, -3)
	late.InitialPayment = nil
	_, err := f.svc.CreateOrder(ctx, admin, late)
	require.NoError(t, err)

	summary, err := f.svc.Summary(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.ByStatus["pending"])
	assert.Equal(t, 0, summary.ByStatus["draft"])
	assert.Equal(t, 1, summary.ByDocumentType["sale-note"])
	assert.Equal(t, 1, summary.ByDocumentType["proforma"])
	assert.Equal(t, 1, summary.Overdue)
	assert.Equal(t, 1, summary.UpcomingDeliveries)
	assert.Equal(t, "708.00", *summary.Total)
	assert.Equal(t, "408.00", *summary.Balance)

	op, err := f.svc.Summary(ctx, f.caller("operator"))
	require.NoError(t, err)
	assert.Nil(t, op.Total)

	_, err = f.svc.TotalsSummary(ctx, f.caller("operator"))
	requireKind(t, err, apperror.KindForbidden)

	totals, err := f.svc.TotalsSummary(ctx, admin)
	require.NoError(t, err)
	assert.Equal(t, "708.00", totals.AbsoluteTotal)

	upcoming, err := f.svc.UpcomingDeliveries(ctx, admin, 0, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, upcoming.Total)

	rollup, err := f.svc.ByStatus(ctx, admin, "", 0, 0)
	require.NoError(t, err)
	assert.Len(t, rollup.Rollup, len(order.StoredStatuses))

	byStatus, err := f.svc.ByStatus(ctx, admin, order.StatusOverdue, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, byStatus.Orders.Total)

	months, err := f.svc.MonthlyStats(ctx, admin, 0)
	require.NoError(t, err)
	require.Len(t, months, 6)
	assert.Equal(t, "2025-10", months[0].Month)
	assert.Equal(t, "2026-03", months[5].Month)
	assert.Equal(t, 2, months[5].Count)
	assert.Equal(t, 0, months[0].Count)
}

func TestListOrdersRejectsUnknownSort(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListOrders(context.Background(), f.caller("admin"), ListQuery{Sort: "price"})
	requireKind(t, err, apperror.KindValidation)
}

func TestExpiredDeadlineTimesOut(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := f.svc.CreateOrder(ctx, f.caller("admin"), f.saleNote())
	require.Error(t, err)
	assert.Equal(t, 10, f.stock(t))
}
