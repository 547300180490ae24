package dto

import (
	"fmt"

	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/hugohenrick/arte-ideas/internal/service/orders"
)

// ItemRequest is an order line in a request. Money fields are decimal
// strings.
type ItemRequest struct {
	ProductName        string `json:"product_name" binding:"required" example:"Photo book A4"`
	ProductDescription string `json:"product_description,omitempty"`
	ProductCode        string `json:"product_code,omitempty"`
	Quantity           int    `json:"quantity" binding:"min=1" example:"2"`
	UnitPrice          string `json:"unit_price" example:"150.00"`
	DiscountPct        string `json:"discount_percentage,omitempty" example:"0"`
	InventoryItemID    string `json:"inventory_item_id,omitempty" binding:"omitempty,uuid"`
}

func (r ItemRequest) toInput(p *fieldParser, prefix string) orders.ItemInput {
	return orders.ItemInput{
		ProductName:        r.ProductName,
		ProductDescription: r.ProductDescription,
		ProductCode:        r.ProductCode,
		Quantity:           r.Quantity,
		UnitPrice:          p.decimal(prefix+"unit_price", r.UnitPrice),
		DiscountPct:        p.decimal(prefix+"discount_percentage", r.DiscountPct),
		InventoryItemID:    r.InventoryItemID,
	}
}

// ToInput converts the request into a service input
func (r ItemRequest) ToInput() (orders.ItemInput, error) {
	p := newParser()
	in := r.toInput(p, "")
	return in, p.err()
}

// PaymentRequest is a payment in a request
type PaymentRequest struct {
	PaymentDate     string `json:"payment_date,omitempty" example:"2026-03-10"`
	Amount          string `json:"amount" binding:"required" example:"300.00"`
	Method          string `json:"method" binding:"required,oneof=cash transfer card yape plin cheque other" example:"cash"`
	ReferenceNumber string `json:"reference_number,omitempty"`
	Note            string `json:"note,omitempty"`
}

func (r PaymentRequest) toInput(p *fieldParser, prefix string) orders.PaymentInput {
	return orders.PaymentInput{
		PaymentDate:     p.optDate(prefix+"payment_date", &r.PaymentDate),
		Amount:          p.decimal(prefix+"amount", r.Amount),
		Method:          order.PaymentMethod(r.Method),
		ReferenceNumber: r.ReferenceNumber,
		Note:            r.Note,
	}
}

// ToCommand converts the request into a payment command
func (r PaymentRequest) ToCommand(orderID, idempotencyKey string) (orders.RegisterPaymentCommand, error) {
	p := newParser()
	cmd := orders.RegisterPaymentCommand{
		OrderID:        orderID,
		Payment:        r.toInput(p, ""),
		IdempotencyKey: idempotencyKey,
	}
	return cmd, p.err()
}

// CreateOrderRequest is the body of POST /orders
type CreateOrderRequest struct {
	OrderNumber    string          `json:"order_number,omitempty"`
	ClientID       string          `json:"client_id" binding:"required"`
	DocumentType   string          `json:"document_type" binding:"required,oneof=proforma sale-note contract" example:"sale-note"`
	ClientKind     string          `json:"client_kind,omitempty" binding:"omitempty,oneof=individual school company" example:"individual"`
	SchoolLevel    string          `json:"school_level,omitempty"`
	Grade          string          `json:"grade,omitempty"`
	Section        string          `json:"section,omitempty"`
	OrderDate      string          `json:"order_date,omitempty" example:"2026-03-10"`
	StartDate      string          `json:"start_date,omitempty"`
	DeliveryDate   string          `json:"delivery_date" binding:"required" example:"2026-03-20"`
	Status         string          `json:"status,omitempty" example:"pending"`
	ContractRef    string          `json:"contract_ref,omitempty"`
	Schedule       *order.Schedule `json:"schedule,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	Items          []ItemRequest   `json:"items" binding:"dive"`
	InitialPayment *PaymentRequest `json:"initial_payment,omitempty"`
}

// ToCommand converts the request, reporting every malformed field
func (r CreateOrderRequest) ToCommand(idempotencyKey string) (orders.CreateOrderCommand, error) {
	p := newParser()
	cmd := orders.CreateOrderCommand{
		OrderNumber:    r.OrderNumber,
		ClientID:       r.ClientID,
		DocumentType:   order.DocumentType(r.DocumentType),
		ClientKind:     order.ClientKind(r.ClientKind),
		SchoolLevel:    r.SchoolLevel,
		Grade:          r.Grade,
		Section:        r.Section,
		OrderDate:      p.optDate("order_date", &r.OrderDate),
		StartDate:      p.optDate("start_date", &r.StartDate),
		DeliveryDate:   p.date("delivery_date", r.DeliveryDate),
		Status:         p.status("status", r.Status),
		ContractRef:    r.ContractRef,
		Schedule:       r.Schedule,
		Notes:          r.Notes,
		IdempotencyKey: idempotencyKey,
	}
	for i, it := range r.Items {
		cmd.Items = append(cmd.Items, it.toInput(p, fmt.Sprintf("items[%d].", i)))
	}
	if r.InitialPayment != nil {
		in := r.InitialPayment.toInput(p, "initial_payment.")
		cmd.InitialPayment = &in
	}
	return cmd, p.err()
}

// UpdateOrderRequest is the body of PATCH /orders/{id}. Absent fields are
// left unchanged.
type UpdateOrderRequest struct {
	ClientID     *string         `json:"client_id,omitempty"`
	ClientKind   *string         `json:"client_kind,omitempty" binding:"omitempty,oneof=individual school company"`
	DocumentType *string         `json:"document_type,omitempty" binding:"omitempty,oneof=proforma sale-note contract"`
	SchoolLevel  *string         `json:"school_level,omitempty"`
	Grade        *string         `json:"grade,omitempty"`
	Section      *string         `json:"section,omitempty"`
	OrderDate    *string         `json:"order_date,omitempty"`
	StartDate    *string         `json:"start_date,omitempty"`
	DeliveryDate *string         `json:"delivery_date,omitempty"`
	ContractRef  *string         `json:"contract_ref,omitempty"`
	Schedule     *order.Schedule `json:"schedule,omitempty"`
	Notes        *string         `json:"notes,omitempty"`
}

// ToPatch converts the request into a header patch
func (r UpdateOrderRequest) ToPatch() (order.HeaderPatch, error) {
	p := newParser()
	patch := order.HeaderPatch{
		ClientID:     r.ClientID,
		SchoolLevel:  r.SchoolLevel,
		Grade:        r.Grade,
		Section:      r.Section,
		OrderDate:    p.optDate("order_date", r.OrderDate),
		StartDate:    p.optDate("start_date", r.StartDate),
		DeliveryDate: p.optDate("delivery_date", r.DeliveryDate),
		ContractRef:  r.ContractRef,
		Schedule:     r.Schedule,
		Notes:        r.Notes,
	}
	if r.ClientKind != nil {
		k := order.ClientKind(*r.ClientKind)
		patch.ClientKind = &k
	}
	if r.DocumentType != nil {
		d := order.DocumentType(*r.DocumentType)
		patch.DocumentType = &d
	}
	return patch, p.err()
}

// UpdateItemRequest is the body of PATCH /orders/{id}/items/{itemId}
type UpdateItemRequest struct {
	ProductName        *string `json:"product_name,omitempty"`
	ProductDescription *string `json:"product_description,omitempty"`
	ProductCode        *string `json:"product_code,omitempty"`
	Quantity           *int    `json:"quantity,omitempty" binding:"omitempty,min=1"`
	UnitPrice          *string `json:"unit_price,omitempty"`
	DiscountPct        *string `json:"discount_percentage,omitempty"`
	InventoryItemID    *string `json:"inventory_item_id,omitempty" binding:"omitempty,uuid"`
}

// ToPatch converts the request into an item patch
func (r UpdateItemRequest) ToPatch() (order.ItemPatch, error) {
	p := newParser()
	patch := order.ItemPatch{
		ProductName:        r.ProductName,
		ProductDescription: r.ProductDescription,
		ProductCode:        r.ProductCode,
		Quantity:           r.Quantity,
		UnitPrice:          p.optDecimal("unit_price", r.UnitPrice),
		DiscountPct:        p.optDecimal("discount_percentage", r.DiscountPct),
		InventoryItemID:    r.InventoryItemID,
	}
	return patch, p.err()
}

// TransitionRequest is the body of POST /orders/{id}/transitions
type TransitionRequest struct {
	Status string `json:"status" binding:"required" example:"confirmed"`
	Reason string `json:"reason,omitempty"`
}

// ToCommand converts the request, rejecting legacy status literals
func (r TransitionRequest) ToCommand(orderID string) (orders.TransitionCommand, error) {
	p := newParser()
	cmd := orders.TransitionCommand{OrderID: orderID, Status: p.status("status", r.Status), Reason: r.Reason}
	return cmd, p.err()
}

// OrderQuery are the query parameters of GET /orders
type OrderQuery struct {
	Status       string `form:"status"`
	DocumentType string `form:"document_type"`
	ClientID     string `form:"client_id"`
	DeliveryFrom string `form:"delivery_from"`
	DeliveryTo   string `form:"delivery_to"`
	Sort         string `form:"sort"`
	Limit        int    `form:"limit"`
	Offset       int    `form:"offset"`
}

// ToQuery converts the parameters into a listing query
func (q OrderQuery) ToQuery() (orders.ListQuery, error) {
	p := newParser()
	out := orders.ListQuery{
		Status:       p.status("status", q.Status),
		DocumentType: order.DocumentType(q.DocumentType),
		ClientID:     q.ClientID,
		DeliveryFrom: p.optDate("delivery_from", &q.DeliveryFrom),
		DeliveryTo:   p.optDate("delivery_to", &q.DeliveryTo),
		Sort:         order.SortOrder(q.Sort),
		Limit:        q.Limit,
		Offset:       q.Offset,
	}
	return out, p.err()
}
