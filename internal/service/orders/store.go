package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/domain"
	"github.com/hugohenrick/arte-ideas/internal/domain/client"
	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/hugohenrick/arte-ideas/internal/domain/product"
	"github.com/hugohenrick/arte-ideas/internal/money"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/shopspring/decimal"
)

// maxNumberAttempts bounds the search for a free generated order number
const maxNumberAttempts = 20

// verify re-checks the money invariants of o before commit. A failure is a
// bug in this package, so it is logged and reported as internal.
func (s *Service) verify(o *order.Order, taxRate decimal.Decimal) error {
	lines := make([]decimal.Decimal, 0, len(o.Items))
	for _, it := range o.Items {
		if !it.Subtotal.Equal(money.LineSubtotal(it.Quantity, it.UnitPrice, it.DiscountPct)) {
			return s.violation(o, fmt.Sprintf("item %s subtotal %s is stale", it.ID, it.Subtotal))
		}
		lines = append(lines, it.Subtotal)
	}
	amounts := make([]decimal.Decimal, 0, len(o.Payments))
	for _, p := range o.Payments {
		amounts = append(amounts, p.Amount)
	}
	t := money.Compute(lines, taxRate, amounts)

	switch {
	case !o.Total.Equal(t.Total) || !o.Subtotal.Equal(t.Subtotal) || !o.Tax.Equal(t.Tax):
		return s.violation(o, "stored totals differ from the calculator")
	case !o.PaidAmount.Equal(t.Paid):
		return s.violation(o, "paid amount differs from the sum of payments")
	case o.PaidAmount.IsNegative() || o.PaidAmount.GreaterThan(o.Total):
		return s.violation(o, "paid amount outside [0, total]")
	case !o.Balance.Equal(t.Balance):
		return s.violation(o, "balance differs from total minus paid")
	case o.PaymentStatus != t.PaymentStatus:
		return s.violation(o, "payment status is stale")
	case o.AffectsInventory != (o.DocumentType == order.DocumentSaleNote):
		return s.violation(o, "inventory flag does not match the document type")
	}
	return nil
}

func (s *Service) violation(o *order.Order, msg string) error {
	s.log.Error("order invariant violated", "order_id", o.ID, "tenant_id", o.TenantID, "violation", msg)
	return apperror.Internal(errors.New("order invariant violated: " + msg))
}

// orderNumber returns the caller's number when it is free, otherwise the
// next generated one
func (s *Service) orderNumber(ctx context.Context, repos domain.Repositories, tenantID, requested string, o *order.Order) (string, error) {
	if requested != "" {
		exists, err := repos.Orders.ExistsByNumber(ctx, tenantID, requested)
		if err != nil {
			return "", err
		}
		if exists {
			return "", apperror.Validation(map[string]string{"order_number": "already exists in the tenant"})
		}
		return requested, nil
	}

	at := o.CreatedAt
	scope := s.opts.NumberFormat.Scope(at)
	for i := 0; i < maxNumberAttempts; i++ {
		seq, err := repos.Orders.NextSequence(ctx, tenantID, scope)
		if err != nil {
			return "", err
		}
		number := s.opts.NumberFormat.Format(at, seq)
		exists, err := repos.Orders.ExistsByNumber(ctx, tenantID, number)
		if err != nil {
			return "", err
		}
		if !exists {
			return number, nil
		}
	}
	return "", apperror.Conflict("could not allocate a free order number")
}

// createOrder builds and persists a new order with its lines, optional
// initial payment, creation history entry and stock debits.
func (s *Service) createOrder(ctx context.Context, repos domain.Repositories, scope *access.Scope, cmd CreateOrderCommand) (*order.Order, error) {
	tenantID := scope.TenantID()
	now := s.now()
	fields := apperror.FieldErrors{}

	status := cmd.Status
	if status == "" {
		status = order.StatusPending
	}
	if !status.IsInitial() {
		fields.Add("status", "must be draft or pending")
	}

	cl, err := repos.Clients.FindByID(ctx, tenantID, cmd.ClientID)
	if err != nil {
		if !errors.Is(err, client.ErrClientNotFound) {
			return nil, err
		}
		fields.Add("client_id", "does not exist in the tenant")
	}
	kind := cmd.ClientKind
	if kind == "" && cl != nil {
		kind = order.ClientKind(cl.Type)
	}

	o := order.NewOrder(tenantID, cmd.OrderNumber, cmd.ClientID, cmd.DocumentType, kind, status, scope.UserID, now)
	o.SchoolLevel = cmd.SchoolLevel
	o.Grade = cmd.Grade
	o.Section = cmd.Section
	if cmd.OrderDate != nil {
		o.OrderDate = order.Day(*cmd.OrderDate)
	}
	if cmd.StartDate != nil {
		d := order.Day(*cmd.StartDate)
		o.StartDate = &d
	}
	if !cmd.DeliveryDate.IsZero() {
		o.DeliveryDate = order.Day(cmd.DeliveryDate)
	}
	o.ContractRef = cmd.ContractRef
	if cmd.Schedule != nil {
		o.Schedule = *cmd.Schedule
	}
	o.Notes = cmd.Notes

	for i, in := range cmd.Items {
		it := order.NewItem(o, in.ProductName, in.ProductDescription, in.ProductCode,
			in.Quantity, in.UnitPrice, in.DiscountPct, in.InventoryItemID, now)
		fields.Merge(fmt.Sprintf("items[%d].", i), it.Validate())
		o.Items = append(o.Items, it)
	}

	if in := cmd.InitialPayment; in != nil {
		p := s.newPayment(o, *in, scope.UserID, now)
		pf := p.Validate()
		if p.IsCompensation() {
			pf.Add("amount", "must be positive")
		}
		fields.Merge("initial_payment.", pf)
		o.Payments = append(o.Payments, p)
	}

	mergeValidation(fields, o.Validate())
	// generated numbers are allocated after validation so that a rejected
	// payload does not consume a sequence value
	if strings.TrimSpace(cmd.OrderNumber) == "" {
		delete(fields, "order_number")
	}
	if err := fields.Err(); err != nil {
		return nil, err
	}
	if err := o.Recalculate(s.taxRate(scope)); err != nil {
		return nil, err
	}

	if o.OrderNumber, err = s.orderNumber(ctx, repos, tenantID, strings.TrimSpace(cmd.OrderNumber), o); err != nil {
		return nil, err
	}
	if err := repos.Orders.Create(ctx, o); err != nil {
		return nil, err
	}
	if err := repos.Orders.AddHistory(ctx, o.CreationHistory(scope.UserID, now)); err != nil {
		return nil, err
	}
	if o.AffectsInventory {
		if err := s.syncStock(ctx, repos, o, product.MovementSale, scope.UserID, now); err != nil {
			return nil, err
		}
	}
	return o, nil
}

func (s *Service) newPayment(o *order.Order, in PaymentInput, by string, now time.Time) *order.Payment {
	date := now
	if in.PaymentDate != nil {
		date = *in.PaymentDate
	}
	return order.NewPayment(o, date, in.Amount, in.Method, in.ReferenceNumber, in.Note, by, now)
}

// mergeValidation copies the field messages of a validation error
func mergeValidation(fields apperror.FieldErrors, err error) {
	var appErr *apperror.Error
	if errors.As(err, &appErr) && appErr.Kind == apperror.KindValidation {
		fields.Merge("", appErr.Fields)
	}
}
