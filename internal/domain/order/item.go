package order

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/arte-ideas/internal/money"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Item is one line of an order
type Item struct {
	ID                 string          `json:"id"`
	TenantID           string          `json:"tenant_id"`
	OrderID            string          `json:"order_id"`
	ProductName        string          `json:"product_name"`
	ProductDescription string          `json:"product_description,omitempty"`
	ProductCode        string          `json:"product_code,omitempty"`
	Quantity           int             `json:"quantity"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPct        decimal.Decimal `json:"discount_percentage"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	AffectsInventory   bool            `json:"affects_inventory"`
	InventoryItemID    string          `json:"inventory_item_id,omitempty"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`
}

// NewItem creates a line owned by the order
func NewItem(o *Order, name, description, code string, quantity int, unitPrice, discount decimal.Decimal, inventoryItemID string, now time.Time) *Item {
	it := &Item{
		ID:                 uuid.New().String(),
		TenantID:           o.TenantID,
		OrderID:            o.ID,
		ProductName:        strings.TrimSpace(name),
		ProductDescription: strings.TrimSpace(description),
		ProductCode:        strings.TrimSpace(code),
		Quantity:           quantity,
		UnitPrice:          unitPrice,
		DiscountPct:        discount,
		AffectsInventory:   o.AffectsInventory,
		InventoryItemID:    strings.TrimSpace(inventoryItemID),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	it.Recalculate()
	return it
}

// Recalculate derives the line subtotal
func (i *Item) Recalculate() {
	i.Subtotal = money.LineSubtotal(i.Quantity, i.UnitPrice, i.DiscountPct)
}

// Validate reports invalid fields of the line
func (i *Item) Validate() apperror.FieldErrors {
	fields := apperror.FieldErrors{}
	if i.ProductName == "" {
		fields.Add("product_name", "is required")
	}
	if i.Quantity < 1 {
		fields.Add("quantity", "must be at least 1")
	}
	if i.UnitPrice.IsNegative() {
		fields.Add("unit_price", "must not be negative")
	}
	if i.DiscountPct.IsNegative() || i.DiscountPct.GreaterThan(hundred) {
		fields.Add("discount_percentage", "must be between 0 and 100")
	}
	return fields
}

// ItemPatch carries optional line changes
type ItemPatch struct {
	ProductName        *string
	ProductDescription *string
	ProductCode        *string
	Quantity           *int
	UnitPrice          *decimal.Decimal
	DiscountPct        *decimal.Decimal
	InventoryItemID    *string
}

// TouchesPrice reports whether the patch changes how the line is priced
func (p ItemPatch) TouchesPrice() bool {
	return p.UnitPrice != nil || p.DiscountPct != nil
}

// Apply changes the line and recomputes its subtotal
func (i *Item) Apply(p ItemPatch, now time.Time) apperror.FieldErrors {
	if p.ProductName != nil {
		i.ProductName = strings.TrimSpace(*p.ProductName)
	}
	if p.ProductDescription != nil {
		i.ProductDescription = strings.TrimSpace(*p.ProductDescription)
	}
	if p.ProductCode != nil {
		i.ProductCode = strings.TrimSpace(*p.ProductCode)
	}
	if p.Quantity != nil {
		i.Quantity = *p.Quantity
	}
	if p.UnitPrice != nil {
		i.UnitPrice = *p.UnitPrice
	}
	if p.DiscountPct != nil {
		i.DiscountPct = *p.DiscountPct
	}
	if p.InventoryItemID != nil {
		i.InventoryItemID = strings.TrimSpace(*p.InventoryItemID)
	}
	i.UpdatedAt = now
	i.Recalculate()
	return i.Validate()
}
