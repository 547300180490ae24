// Package orders is the order service facade. Every entry point resolves
// the caller, authorizes it, runs the aggregate change in one transaction
// and returns a DTO built from the committed state.
package orders

import (
	"context"
	"errors"
	"time"

	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/domain"
	"github.com/hugohenrick/arte-ideas/internal/domain/client"
	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/hugohenrick/arte-ideas/internal/domain/product"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/hugohenrick/arte-ideas/pkg/idempotency"
	"github.com/hugohenrick/arte-ideas/pkg/logger"
	"github.com/hugohenrick/arte-ideas/pkg/retry"
	"github.com/shopspring/decimal"
)

// Options are the read-only settings of the service
type Options struct {
	// TaxRate applies to tenants without a rate of their own
	TaxRate             decimal.Decimal
	NumberFormat        order.NumberFormat
	UpcomingHorizonDays int
	MonthlyMonths       int
	IdempotencyTTL      time.Duration
	RequestTimeout      time.Duration
}

// Deps are the collaborators of the service. Idempotency and Clock are
// optional.
type Deps struct {
	UnitOfWork  domain.UnitOfWork
	Guard       *access.Guard
	Idempotency idempotency.Store
	Logger      logger.Logger
	Clock       func() time.Time
}

// Service implements the order operations
type Service struct {
	uow    domain.UnitOfWork
	guard  *access.Guard
	idem   idempotency.Store
	log    logger.Logger
	clock  func() time.Time
	opts   Options
	policy *access.Policy
}

// NewService creates the order service
func NewService(deps Deps, opts Options) (*Service, error) {
	if deps.UnitOfWork == nil {
		return nil, errors.New("orders: unit of work is required")
	}
	if deps.Guard == nil {
		return nil, errors.New("orders: guard is required")
	}
	if opts.TaxRate.IsNegative() || opts.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return nil, errors.New("orders: tax rate must be in [0, 1)")
	}
	if opts.NumberFormat == (order.NumberFormat{}) {
		f, err := order.NewNumberFormat("ORD-{YYYY}-{seq:04d}")
		if err != nil {
			return nil, err
		}
		opts.NumberFormat = f
	}
	if opts.UpcomingHorizonDays <= 0 {
		opts.UpcomingHorizonDays = 7
	}
	if opts.MonthlyMonths <= 0 {
		opts.MonthlyMonths = 6
	}
	if opts.IdempotencyTTL <= 0 {
		opts.IdempotencyTTL = idempotency.DefaultTTL
	}

	log := deps.Logger
	if log == nil {
		log = logger.NewNop()
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &Service{
		uow:    deps.UnitOfWork,
		guard:  deps.Guard,
		idem:   deps.Idempotency,
		log:    log.With("component", "orders"),
		clock:  clock,
		opts:   opts,
		policy: deps.Guard.Policy(),
	}, nil
}

// taxRate is the rate of the scope's tenant, or the platform rate
func (s *Service) taxRate(scope *access.Scope) decimal.Decimal {
	return scope.Tenant.TaxRateOr(s.opts.TaxRate)
}

// now is truncated to the precision the database keeps
func (s *Service) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}

func (s *Service) today() time.Time {
	return order.Day(s.now())
}

// stamp returns a timestamp strictly after the last change of o, which
// keeps history entries of one order strictly ordered.
func (s *Service) stamp(o *order.Order) time.Time {
	at := s.now()
	if !at.After(o.UpdatedAt) {
		at = o.UpdatedAt.Add(time.Microsecond)
	}
	return at
}

// deadline bounds the request when the caller did not
func (s *Service) deadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || s.opts.RequestTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.opts.RequestTimeout)
}

// lookupErrors are repository outcomes another attempt cannot change
var lookupErrors = []error{
	order.ErrOrderNotFound,
	order.ErrItemNotFound,
	client.ErrClientNotFound,
	product.ErrProductNotFound,
}

// read runs an idempotent read, retrying once on infrastructure faults
func (s *Service) read(ctx context.Context, fn func(ctx context.Context, repos domain.Repositories) error) error {
	repos := s.uow.Reader()
	return retry.ExecuteWithRetry(ctx, retry.ReadConfig, func(ctx context.Context) error {
		err := fn(ctx, repos)
		for _, final := range lookupErrors {
			if errors.Is(err, final) {
				return retry.Permanent(err)
			}
		}
		return err
	})
}

// fail converts err into a typed error. Unknown errors are logged.
func (s *Service) fail(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		return apperror.NotFound("order")
	case errors.Is(err, order.ErrItemNotFound):
		return apperror.NotFound("order item")
	case errors.Is(err, order.ErrOrderDuplicateNumber):
		return apperror.Validation(map[string]string{"order_number": "already exists in the tenant"})
	case errors.Is(err, order.ErrPaymentImmutable), errors.Is(err, order.ErrHistoryImmutable):
		return apperror.ImmutableRecord(err.Error())
	case errors.Is(err, client.ErrClientNotFound):
		return apperror.NotFound("client")
	case errors.Is(err, product.ErrProductNotFound):
		return apperror.NotFound("product")
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		s.log.Warn("order operation timed out", "operation", op)
		return apperror.Timeout(err)
	}

	appErr := apperror.From(err)
	if appErr.Kind == apperror.KindInternal {
		s.log.Error("order operation failed", "operation", op, "error", err)
	}
	return appErr
}

// orderView loads o after commit and renders it for scope
func (s *Service) orderView(ctx context.Context, scope *access.Scope, id string) (*OrderDTO, error) {
	return s.render(ctx, scope, id, s.policy.VisibilityFor(scope))
}

func (s *Service) render(ctx context.Context, scope *access.Scope, id string, vis access.Visibility) (*OrderDTO, error) {
	var o *order.Order
	err := s.read(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		o, err = repos.Orders.FindByID(ctx, scope.TenantID(), id)
		return err
	})
	if err != nil {
		return nil, err
	}
	dto := buildOrderDTO(o, vis, s.today())
	return &dto, nil
}

// mutate runs fn on the locked order inside one transaction, checks the
// money invariants before commit, and returns the committed view.
func (s *Service) mutate(ctx context.Context, scope *access.Scope, orderID string, fn func(ctx context.Context, repos domain.Repositories, o *order.Order) error) (*OrderDTO, error) {
	if err := s.apply(ctx, scope, orderID, fn); err != nil {
		return nil, err
	}
	return s.orderView(ctx, scope, orderID)
}

// apply is mutate without the committed view
func (s *Service) apply(ctx context.Context, scope *access.Scope, orderID string, fn func(ctx context.Context, repos domain.Repositories, o *order.Order) error) error {
	return s.uow.Within(ctx, func(ctx context.Context, repos domain.Repositories) error {
		o, err := repos.Orders.FindByIDForUpdate(ctx, scope.TenantID(), orderID)
		if err != nil {
			return err
		}
		if err := fn(ctx, repos, o); err != nil {
			return err
		}
		return s.verify(o, s.taxRate(scope))
	})
}

// GetOrder returns one order with its items and payments
func (s *Service) GetOrder(ctx context.Context, c access.Caller, id string) (*OrderDTO, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.Enter(ctx, c, access.ActionRead, access.ResourceOrder)
	if err != nil {
		return nil, err
	}
	dto, err := s.orderView(ctx, scope, id)
	if err != nil {
		return nil, s.fail(ctx, "getOrder", err)
	}
	return dto, nil
}

// ListOrders returns one page of order headers
func (s *Service) ListOrders(ctx context.Context, c access.Caller, q ListQuery) (*OrderPage, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.Enter(ctx, c, access.ActionRead, access.ResourceOrder)
	if err != nil {
		return nil, err
	}

	filter, err := s.listFilter(scope, q)
	if err != nil {
		return nil, err
	}
	page, err := s.listPage(ctx, scope, filter)
	if err != nil {
		return nil, s.fail(ctx, "listOrders", err)
	}
	return page, nil
}

func (s *Service) listFilter(scope *access.Scope, q ListQuery) (order.ListFilter, error) {
	limit, offset := q.page()
	f := order.ListFilter{
		TenantID:     scope.TenantID(),
		DocumentType: q.DocumentType,
		ClientID:     q.ClientID,
		DeliveryFrom: q.DeliveryFrom,
		DeliveryTo:   q.DeliveryTo,
		Sort:         q.Sort,
		Limit:        limit,
		Offset:       offset,
	}
	switch q.Sort {
	case "", order.SortNewest, order.SortDeliveryAsc, order.SortDeliveryDesc, order.SortNumberAsc:
	default:
		return f, apperror.Validation(map[string]string{"sort": "must be newest, delivery_asc, delivery_desc or number_asc"})
	}

	switch q.Status {
	case "":
	case order.StatusOverdue:
		today := s.today()
		f.Statuses = order.OpenStatuses
		f.DeliveryBefore = &today
	default:
		f.Statuses = []order.Status{q.Status}
	}
	return f, nil
}

func (s *Service) listPage(ctx context.Context, scope *access.Scope, f order.ListFilter) (*OrderPage, error) {
	var (
		orders []*order.Order
		total  int
	)
	err := s.read(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		orders, total, err = repos.Orders.List(ctx, f)
		return err
	})
	if err != nil {
		return nil, err
	}

	vis := s.policy.VisibilityFor(scope)
	today := s.today()
	page := &OrderPage{Orders: make([]OrderDTO, 0, len(orders)), Total: total, Limit: f.Limit, Offset: f.Offset}
	for _, o := range orders {
		page.Orders = append(page.Orders, buildOrderDTO(o, vis, today))
	}
	return page, nil
}

// ListHistory returns the status log of an order, oldest first
func (s *Service) ListHistory(ctx context.Context, c access.Caller, orderID string) ([]HistoryDTO, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.Enter(ctx, c, access.ActionRead, access.ResourceStatusHistory)
	if err != nil {
		return nil, err
	}

	var entries []*order.StatusHistory
	err = s.read(ctx, func(ctx context.Context, repos domain.Repositories) error {
		var err error
		entries, err = repos.Orders.ListHistory(ctx, scope.TenantID(), orderID)
		return err
	})
	if err != nil {
		return nil, s.fail(ctx, "listHistory", err)
	}
	return buildHistoryDTOs(entries), nil
}

// ListPayments returns the payments of an order in registration order
func (s *Service) ListPayments(ctx context.Context, c access.Caller, orderID string) ([]PaymentDTO, error) {
	ctx, cancel := s.deadline(ctx)
	defer cancel()

	scope, err := s.guard.Enter(ctx, c, access.ActionRead, access.ResourceOrderPayment)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Policy().Authorize(scope, access.ActionViewFinancials, access.ResourceOrder); err != nil {
		return nil, err
	}

	var payments []*order.Payment
	err = s.read(ctx, func(ctx context.Context, repos domain.Repositories) error {
		o, err := repos.Orders.FindByID(ctx, scope.TenantID(), orderID)
		if err != nil {
			return err
		}
		payments = o.Payments
		return nil
	})
	if err != nil {
		return nil, s.fail(ctx, "listPayments", err)
	}
	return buildPaymentDTOs(payments), nil
}
