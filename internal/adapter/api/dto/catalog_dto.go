package dto

import (
	"github.com/hugohenrick/arte-ideas/internal/domain/client"
	"github.com/hugohenrick/arte-ideas/internal/domain/tenant"
	"github.com/hugohenrick/arte-ideas/internal/service/clients"
	"github.com/hugohenrick/arte-ideas/internal/service/products"
	"github.com/hugohenrick/arte-ideas/internal/service/tenants"
	"github.com/shopspring/decimal"
)

// ClientRequest is the body of POST /clients
type ClientRequest struct {
	Type     string `json:"type" binding:"required,oneof=individual school company" example:"individual"`
	FullName string `json:"full_name" binding:"required" example:"Ana Quispe"`
	DNI      string `json:"dni,omitempty" example:"12345678"`
	RUC      string `json:"ruc,omitempty"`
	Phone    string `json:"phone" example:"999111222"`
	Email    string `json:"email,omitempty" binding:"omitempty,email"`
	Address  string `json:"address,omitempty"`
}

// ToInput converts the request into a service input
func (r ClientRequest) ToInput() clients.CreateInput {
	return clients.CreateInput{
		Type:     client.Type(r.Type),
		FullName: r.FullName,
		DNI:      r.DNI,
		RUC:      r.RUC,
		Phone:    r.Phone,
		Email:    r.Email,
		Address:  r.Address,
	}
}

// UpdateClientRequest is the body of PATCH /clients/{id}
type UpdateClientRequest struct {
	FullName *string `json:"full_name,omitempty"`
	Phone    *string `json:"phone,omitempty"`
	Email    *string `json:"email,omitempty" binding:"omitempty,email"`
	Address  *string `json:"address,omitempty"`
}

// ToPatch converts the request into a client patch
func (r UpdateClientRequest) ToPatch() client.Patch {
	return client.Patch{FullName: r.FullName, Phone: r.Phone, Email: r.Email, Address: r.Address}
}

// ProductRequest is the body of POST /products
type ProductRequest struct {
	Name        string `json:"name" binding:"required" example:"Photo book A4"`
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	Stock       int    `json:"stock" binding:"min=0" example:"10"`
	CostPrice   string `json:"cost_price" binding:"required" example:"80.00"`
	SalePrice   string `json:"sale_price" binding:"required" example:"150.00"`
}

// ToInput converts the request into a service input
func (r ProductRequest) ToInput() (products.CreateInput, error) {
	p := newParser()
	in := products.CreateInput{
		Name:        r.Name,
		Code:        r.Code,
		Description: r.Description,
		Stock:       r.Stock,
		CostPrice:   p.decimal("cost_price", r.CostPrice),
		SalePrice:   p.decimal("sale_price", r.SalePrice),
	}
	return in, p.err()
}

// StockAdjustmentRequest is the body of POST /products/{id}/stock
type StockAdjustmentRequest struct {
	Delta int    `json:"delta" binding:"required" example:"-1"`
	Note  string `json:"note,omitempty" example:"damaged in storage"`
}

// TenantRequest is the body of POST /tenants
type TenantRequest struct {
	Slug         string `json:"slug" binding:"required" example:"lima-centro"`
	Name         string `json:"name" binding:"required" example:"Arte Ideas Lima Centro"`
	BusinessName string `json:"business_name,omitempty"`
	Address      string `json:"address,omitempty"`
	Phone        string `json:"phone,omitempty"`
	Email        string `json:"email,omitempty" binding:"omitempty,email"`
	TaxID        string `json:"tax_id,omitempty"`
	Currency     string `json:"currency,omitempty" binding:"omitempty,oneof=PEN USD EUR" example:"PEN"`
	Location     string `json:"location,omitempty" binding:"omitempty,oneof=full-access restricted" example:"full-access"`
	TaxRate      string `json:"tax_rate,omitempty" example:"0.18"`
}

// ToInput converts the request into a service input. An empty tax rate
// keeps the platform rate.
func (r TenantRequest) ToInput() (tenants.CreateInput, error) {
	p := newParser()
	var taxRate *decimal.Decimal
	if r.TaxRate != "" {
		taxRate = p.optDecimal("tax_rate", &r.TaxRate)
	}
	in := tenants.CreateInput{
		Slug:         r.Slug,
		Name:         r.Name,
		BusinessName: r.BusinessName,
		Address:      r.Address,
		Phone:        r.Phone,
		Email:        r.Email,
		TaxID:        r.TaxID,
		Currency:     tenant.Currency(r.Currency),
		Location:     tenant.Location(r.Location),
		TaxRate:      taxRate,
	}
	return in, p.err()
}

// TenantStatusRequest is the body of PATCH /tenants/{id}/status
type TenantStatusRequest struct {
	Active bool `json:"active"`
}
