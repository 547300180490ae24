package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how the money was received
type PaymentMethod string

const (
	MethodCash     PaymentMethod = "cash"
	MethodTransfer PaymentMethod = "transfer"
	MethodCard     PaymentMethod = "card"
	MethodYape     PaymentMethod = "yape"
	MethodPlin     PaymentMethod = "plin"
	MethodCheque   PaymentMethod = "cheque"
	MethodOther    PaymentMethod = "other"
)

func (m PaymentMethod) valid() bool {
	switch m {
	case MethodCash, MethodTransfer, MethodCard, MethodYape, MethodPlin, MethodCheque, MethodOther:
		return true
	}
	return false
}

// Payment is an append-only cash event. A negative amount compensates an
// earlier payment.
type Payment struct {
	ID              string          `json:"id"`
	TenantID        string          `json:"tenant_id"`
	OrderID         string          `json:"order_id"`
	PaymentDate     time.Time       `json:"payment_date"`
	Amount          decimal.Decimal `json:"amount"`
	Method          PaymentMethod   `json:"method"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
	Note            string          `json:"note,omitempty"`
	RegisteredBy    string          `json:"registered_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// NewPayment creates a payment owned by the order
func NewPayment(o *Order, date time.Time, amount decimal.Decimal, method PaymentMethod, reference, note, registeredBy string, now time.Time) *Payment {
	return &Payment{
		ID:              uuid.New().String(),
		TenantID:        o.TenantID,
		OrderID:         o.ID,
		PaymentDate:     Day(date),
		Amount:          amount,
		Method:          method,
		ReferenceNumber: strings.TrimSpace(reference),
		Note:            strings.TrimSpace(note),
		RegisteredBy:    registeredBy,
		CreatedAt:       now,
	}
}

// IsCompensation reports whether the event reverses money
func (p *Payment) IsCompensation() bool {
	return p.Amount.IsNegative()
}

// Validate reports invalid fields. Compensations need a note.
func (p *Payment) Validate() apperror.FieldErrors {
	fields := apperror.FieldErrors{}
	if p.Amount.IsZero() {
		fields.Add("amount", "must not be zero")
	}
	if p.Amount.Exponent() < -2 && !p.Amount.Equal(p.Amount.Round(2)) {
		fields.Add("amount", "must have at most two decimals")
	}
	if !p.Method.valid() {
		fields.Add("method", "must be cash, transfer, card, yape, plin, cheque or other")
	}
	if p.PaymentDate.IsZero() {
		fields.Add("payment_date", "is required")
	}
	if p.IsCompensation() && p.Note == "" {
		fields.Add("note", "is required for compensating adjustments")
	}
	return fields
}
