package order

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderDuplicateNumber = errors.New("order with the same number already exists in the tenant")
	ErrItemNotFound         = errors.New("order item not found")
	ErrPaymentImmutable     = errors.New("order payments cannot be modified")
	ErrHistoryImmutable     = errors.New("order status history cannot be modified")
)

// SortOrder selects the ordering of a listing
type SortOrder string

const (
	SortNewest       SortOrder = "newest"
	SortDeliveryAsc  SortOrder = "delivery_asc"
	SortNumberAsc    SortOrder = "number_asc"
	SortDeliveryDesc SortOrder = "delivery_desc"
)

// ListFilter narrows an order listing. An empty TenantID lists every
// tenant and is only used for super-admin reads.
type ListFilter struct {
	TenantID       string
	Statuses       []Status
	DocumentType   DocumentType
	ClientID       string
	DeliveryFrom   *time.Time
	DeliveryTo     *time.Time
	DeliveryBefore *time.Time
	Sort           SortOrder
	Limit          int
	Offset         int
}

// Repository persists the order aggregate. Every lookup is tenant-scoped;
// an empty tenant id is only accepted by FindByID and List.
type Repository interface {
	// Create inserts the header with its items and payments
	Create(ctx context.Context, o *Order) error

	// FindByID loads the header, items and payments
	FindByID(ctx context.Context, tenantID, id string) (*Order, error)

	// FindByIDForUpdate loads the aggregate holding a row lock on the header
	// until the surrounding transaction ends
	FindByIDForUpdate(ctx context.Context, tenantID, id string) (*Order, error)

	// Update writes header fields and derived amounts
	Update(ctx context.Context, o *Order) error

	// Delete removes the order and every row it owns
	Delete(ctx context.Context, tenantID, id string) error

	ExistsByNumber(ctx context.Context, tenantID, number string) (bool, error)

	// NextSequence returns the next value of the tenant's numbering scope
	NextSequence(ctx context.Context, tenantID, scope string) (int64, error)

	AddItem(ctx context.Context, it *Item) error
	UpdateItem(ctx context.Context, it *Item) error
	RemoveItem(ctx context.Context, tenantID, orderID, itemID string) error

	AddPayment(ctx context.Context, p *Payment) error
	ListPayments(ctx context.Context, tenantID, orderID string) ([]*Payment, error)

	AddHistory(ctx context.Context, h *StatusHistory) error
	// ListHistory returns entries ordered by creation time
	ListHistory(ctx context.Context, tenantID, orderID string) ([]*StatusHistory, error)

	// List returns headers with item and payment counts, plus the total
	// number of matching rows
	List(ctx context.Context, filter ListFilter) ([]*Order, int, error)
}

// StatusRollup is the count and value of orders in one stored status
type StatusRollup struct {
	Status Status          `json:"status"`
	Count  int             `json:"count"`
	Total  decimal.Decimal `json:"total"`
}

// AmountTotals sums the money columns of every order
type AmountTotals struct {
	Total   decimal.Decimal
	Paid    decimal.Decimal
	Balance decimal.Decimal
}

// MonthlyStat is the activity of one calendar month
type MonthlyStat struct {
	Month time.Time       `json:"month"`
	Count int             `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// ReportRepository runs read-only aggregates over the order table. An empty
// tenant id aggregates every tenant.
type ReportRepository interface {
	StatusRollup(ctx context.Context, tenantID string) ([]StatusRollup, error)
	DocumentTypeCounts(ctx context.Context, tenantID string) (map[DocumentType]int, error)
	Totals(ctx context.Context, tenantID string) (AmountTotals, error)
	// CountOverdue counts open orders whose delivery date is before today
	CountOverdue(ctx context.Context, tenantID string, today time.Time) (int, error)
	// CountDeliveriesBetween counts non-terminal orders delivering in [from, to]
	CountDeliveriesBetween(ctx context.Context, tenantID string, from, to time.Time) (int, error)
	// MonthlyStats groups orders by the month of their order date, from
	// the first day of since onwards
	MonthlyStats(ctx context.Context, tenantID string, since time.Time) ([]MonthlyStat, error)
}
