package product

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/shopspring/decimal"
)

// Product is a row of the stock table sale-notes draw from
type Product struct {
	ID          string          `json:"id"`
	TenantID    string          `json:"tenant_id"`
	Name        string          `json:"name"`
	Code        string          `json:"code,omitempty"`
	Description string          `json:"description,omitempty"`
	Stock       int             `json:"stock"`
	CostPrice   decimal.Decimal `json:"cost_price"`
	SalePrice   decimal.Decimal `json:"sale_price"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewProduct creates a validated product
func NewProduct(tenantID, name, code, description string, stock int, cost, sale decimal.Decimal) (*Product, error) {
	now := time.Now().UTC()
	p := &Product{
		ID:          uuid.New().String(),
		TenantID:    tenantID,
		Name:        strings.TrimSpace(name),
		Code:        strings.TrimSpace(code),
		Description: strings.TrimSpace(description),
		Stock:       stock,
		CostPrice:   cost,
		SalePrice:   sale,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}

// Validate reports every invalid field
func (p *Product) Validate() error {
	fields := apperror.FieldErrors{}
	if p.TenantID == "" {
		fields.Add("tenant_id", "is required")
	}
	if p.Name == "" {
		fields.Add("name", "is required")
	}
	if p.Stock < 0 {
		fields.Add("stock", "must not be negative")
	}
	if p.CostPrice.IsNegative() {
		fields.Add("cost_price", "must not be negative")
	}
	if p.SalePrice.IsNegative() {
		fields.Add("sale_price", "must not be negative")
	}
	return fields.Err()
}

// MovementKind tells why stock moved
type MovementKind string

const (
	MovementSale           MovementKind = "sale"
	MovementSaleAdjustment MovementKind = "sale-adjustment"
	MovementSaleReversal   MovementKind = "sale-reversal"
	MovementManual         MovementKind = "manual"
)

// Movement is an append-only stock ledger entry. Delta is negative for
// debits and positive for credits.
type Movement struct {
	ID        string       `json:"id"`
	TenantID  string       `json:"tenant_id"`
	ProductID string       `json:"product_id"`
	OrderID   string       `json:"order_id,omitempty"`
	ItemID    string       `json:"item_id,omitempty"`
	Kind      MovementKind `json:"kind"`
	Delta     int          `json:"delta"`
	Note      string       `json:"note,omitempty"`
	CreatedBy string       `json:"created_by"`
	CreatedAt time.Time    `json:"created_at"`
}

// ItemBalance is the net stock effect an order item has had on a product
type ItemBalance struct {
	ItemID    string
	ProductID string
	Net       int
}
