package orders

import (
	"time"

	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/shopspring/decimal"
)

// ItemInput is a new order line
type ItemInput struct {
	ProductName        string          `json:"product_name"`
	ProductDescription string          `json:"product_description,omitempty"`
	ProductCode        string          `json:"product_code,omitempty"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPct        decimal.Decimal `json:"discount_percentage"`
	InventoryItemID    string          `json:"inventory_item_id,omitempty"`
}

// PaymentInput is a cash event to append. A nil date means today.
type PaymentInput struct {
	PaymentDate     *time.Time          `json:"payment_date,omitempty"`
	Amount          decimal.Decimal     `json:"amount"`
	Method          order.PaymentMethod `json:"method"`
	ReferenceNumber string              `json:"reference_number,omitempty"`
	Note            string              `json:"note,omitempty"`
}

// CreateOrderCommand carries everything needed to open an order. An empty
// OrderNumber is generated from the configured template; an empty Status
// means pending; an empty ClientKind copies the client's type.
type CreateOrderCommand struct {
	OrderNumber    string             `json:"order_number,omitempty"`
	ClientID       string             `json:"client_id"`
	DocumentType   order.DocumentType `json:"document_type"`
	ClientKind     order.ClientKind   `json:"client_kind,omitempty"`
	SchoolLevel    string             `json:"school_level,omitempty"`
	Grade          string             `json:"grade,omitempty"`
	Section        string             `json:"section,omitempty"`
	OrderDate      *time.Time         `json:"order_date,omitempty"`
	StartDate      *time.Time         `json:"start_date,omitempty"`
	DeliveryDate   time.Time          `json:"delivery_date"`
	Status         order.Status       `json:"status,omitempty"`
	ContractRef    string             `json:"contract_ref,omitempty"`
	Schedule       *order.Schedule    `json:"schedule,omitempty"`
	Notes          string             `json:"notes,omitempty"`
	Items          []ItemInput        `json:"items"`
	InitialPayment *PaymentInput      `json:"initial_payment,omitempty"`

	// IdempotencyKey deduplicates retries; it is not part of the payload
	IdempotencyKey string `json:"-"`
}

// RegisterPaymentCommand appends a payment to an order
type RegisterPaymentCommand struct {
	OrderID string       `json:"order_id"`
	Payment PaymentInput `json:"payment"`

	IdempotencyKey string `json:"-"`
}

// TransitionCommand moves an order to another status
type TransitionCommand struct {
	OrderID string       `json:"order_id"`
	Status  order.Status `json:"status"`
	Reason  string       `json:"reason,omitempty"`
}

// ListQuery narrows an order listing. Status may be "overdue", which
// selects by the overlay rather than the stored status.
type ListQuery struct {
	Status       order.Status
	DocumentType order.DocumentType
	ClientID     string
	DeliveryFrom *time.Time
	DeliveryTo   *time.Time
	Sort         order.SortOrder
	Limit        int
	Offset       int
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

func (q ListQuery) page() (limit, offset int) {
	limit, offset = q.Limit, q.Offset
	if limit <= 0 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
