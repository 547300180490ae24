package orders

import (
	"time"

	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/hugohenrick/arte-ideas/internal/money"
	"github.com/shopspring/decimal"
)

// OrderDTO is the wire form of an order. Money fields are nil when the
// caller may not view financials; Items and Payments are nil when the
// caller may not read them.
type OrderDTO struct {
	ID                string         `json:"id"`
	TenantID          string         `json:"tenant_id"`
	OrderNumber       string         `json:"order_number"`
	ClientID          string         `json:"client_id"`
	DocumentType      string         `json:"document_type"`
	ClientKind        string         `json:"client_kind"`
	SchoolLevel       string         `json:"school_level,omitempty"`
	Grade             string         `json:"grade,omitempty"`
	Section           string         `json:"section,omitempty"`
	OrderDate         string         `json:"order_date"`
	StartDate         *string        `json:"start_date,omitempty"`
	DeliveryDate      string         `json:"delivery_date"`
	Subtotal          *string        `json:"subtotal,omitempty"`
	Tax               *string        `json:"tax,omitempty"`
	Total             *string        `json:"total,omitempty"`
	PaidAmount        *string        `json:"paid_amount,omitempty"`
	Balance           *string        `json:"balance,omitempty"`
	PaymentStatus     string         `json:"payment_status"`
	Status            string         `json:"status"`
	StoredStatus      string         `json:"stored_status"`
	IsOverdue         bool           `json:"is_overdue"`
	DaysUntilDelivery int            `json:"days_until_delivery"`
	AffectsInventory  bool           `json:"affects_inventory"`
	ContractRef       string         `json:"contract_ref,omitempty"`
	Schedule          order.Schedule `json:"schedule"`
	Notes             string         `json:"notes,omitempty"`
	CreatedBy         string         `json:"created_by"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
	ItemsCount        int            `json:"items_count"`
	PaymentsCount     int            `json:"payments_count"`
	Items             []ItemDTO      `json:"items,omitempty"`
	Payments          []PaymentDTO   `json:"payments,omitempty"`
}

// ItemDTO is the wire form of an order line
type ItemDTO struct {
	ID                 string    `json:"id"`
	ProductName        string    `json:"product_name"`
	ProductDescription string    `json:"product_description,omitempty"`
	ProductCode        string    `json:"product_code,omitempty"`
	Quantity           int       `json:"quantity"`
	UnitPrice          *string   `json:"unit_price,omitempty"`
	DiscountPct        *string   `json:"discount_percentage,omitempty"`
	Subtotal           *string   `json:"subtotal,omitempty"`
	AffectsInventory   bool      `json:"affects_inventory"`
	InventoryItemID    string    `json:"inventory_item_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// PaymentDTO is the wire form of a payment
type PaymentDTO struct {
	ID              string    `json:"id"`
	PaymentDate     string    `json:"payment_date"`
	Amount          string    `json:"amount"`
	Method          string    `json:"method"`
	ReferenceNumber string    `json:"reference_number,omitempty"`
	Note            string    `json:"note,omitempty"`
	RegisteredBy    string    `json:"registered_by"`
	CreatedAt       time.Time `json:"created_at"`
}

// HistoryDTO is the wire form of a status history entry
type HistoryDTO struct {
	ID             string    `json:"id"`
	PreviousStatus *string   `json:"previous_status"`
	NewStatus      string    `json:"new_status"`
	Reason         string    `json:"reason,omitempty"`
	ActorID        string    `json:"actor_id"`
	CreatedAt      time.Time `json:"created_at"`
}

// OrderPage is one page of an order listing
type OrderPage struct {
	Orders []OrderDTO `json:"orders"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}

// fullVisibility renders every field. Idempotent replays store this form
// and redact it for whoever retries.
var fullVisibility = access.Visibility{Financials: true, Items: true, Payments: true, History: true, Costs: true}

// redact drops from a fully rendered order whatever vis does not allow
func (d OrderDTO) redact(vis access.Visibility) OrderDTO {
	if !vis.Financials {
		d.Subtotal, d.Tax, d.Total, d.PaidAmount, d.Balance = nil, nil, nil, nil, nil
		d.Payments = nil
		if d.Items != nil {
			items := make([]ItemDTO, len(d.Items))
			for i, it := range d.Items {
				it.UnitPrice, it.DiscountPct, it.Subtotal = nil, nil, nil
				items[i] = it
			}
			d.Items = items
		}
	}
	if !vis.Items {
		d.Items = nil
	}
	if !vis.Payments {
		d.Payments = nil
	}
	return d
}

func amount(d decimal.Decimal, visible bool) *string {
	if !visible {
		return nil
	}
	s := money.Format(d)
	return &s
}

func date(t time.Time) string {
	return t.UTC().Format(order.DateLayout)
}

// buildOrderDTO renders o for the scope, applying the overdue overlay for
// today and dropping whatever vis does not allow.
func buildOrderDTO(o *order.Order, vis access.Visibility, today time.Time) OrderDTO {
	fin := vis.Financials
	dto := OrderDTO{
		ID:                o.ID,
		TenantID:          o.TenantID,
		OrderNumber:       o.OrderNumber,
		ClientID:          o.ClientID,
		DocumentType:      string(o.DocumentType),
		ClientKind:        string(o.ClientKind),
		SchoolLevel:       o.SchoolLevel,
		Grade:             o.Grade,
		Section:           o.Section,
		OrderDate:         date(o.OrderDate),
		DeliveryDate:      date(o.DeliveryDate),
		Subtotal:          amount(o.Subtotal, fin),
		Tax:               amount(o.Tax, fin),
		Total:             amount(o.Total, fin),
		PaidAmount:        amount(o.PaidAmount, fin),
		Balance:           amount(o.Balance, fin),
		PaymentStatus:     string(o.PaymentStatus),
		Status:            string(o.EffectiveStatus(today)),
		StoredStatus:      string(o.Status),
		IsOverdue:         o.IsOverdue(today),
		DaysUntilDelivery: o.DaysUntilDelivery(today),
		AffectsInventory:  o.AffectsInventory,
		ContractRef:       o.ContractRef,
		Schedule:          o.Schedule,
		Notes:             o.Notes,
		CreatedBy:         o.CreatedBy,
		CreatedAt:         o.CreatedAt,
		UpdatedAt:         o.UpdatedAt,
		ItemsCount:        o.ItemsCount,
		PaymentsCount:     o.PaymentsCount,
	}
	if o.StartDate != nil {
		s := date(*o.StartDate)
		dto.StartDate = &s
	}

	if vis.Items && o.Items != nil {
		dto.Items = make([]ItemDTO, 0, len(o.Items))
		for _, it := range o.Items {
			dto.Items = append(dto.Items, ItemDTO{
				ID:                 it.ID,
				ProductName:        it.ProductName,
				ProductDescription: it.ProductDescription,
				ProductCode:        it.ProductCode,
				Quantity:           it.Quantity,
				UnitPrice:          amount(it.UnitPrice, fin),
				DiscountPct:        amount(it.DiscountPct, fin),
				Subtotal:           amount(it.Subtotal, fin),
				AffectsInventory:   it.AffectsInventory,
				InventoryItemID:    it.InventoryItemID,
				CreatedAt:          it.CreatedAt,
				UpdatedAt:          it.UpdatedAt,
			})
		}
	}
	if vis.Payments && fin && o.Payments != nil {
		dto.Payments = buildPaymentDTOs(o.Payments)
	}
	return dto
}

func buildPaymentDTOs(payments []*order.Payment) []PaymentDTO {
	out := make([]PaymentDTO, 0, len(payments))
	for _, p := range payments {
		out = append(out, PaymentDTO{
			ID:              p.ID,
			PaymentDate:     date(p.PaymentDate),
			Amount:          money.Format(p.Amount),
			Method:          string(p.Method),
			ReferenceNumber: p.ReferenceNumber,
			Note:            p.Note,
			RegisteredBy:    p.RegisteredBy,
			CreatedAt:       p.CreatedAt,
		})
	}
	return out
}

func buildHistoryDTOs(entries []*order.StatusHistory) []HistoryDTO {
	out := make([]HistoryDTO, 0, len(entries))
	for _, h := range entries {
		var prev *string
		if h.PreviousStatus != nil {
			s := string(*h.PreviousStatus)
			prev = &s
		}
		out = append(out, HistoryDTO{
			ID:             h.ID,
			PreviousStatus: prev,
			NewStatus:      string(h.NewStatus),
			Reason:         h.Reason,
			ActorID:        h.ActorID,
			CreatedAt:      h.CreatedAt,
		})
	}
	return out
}
