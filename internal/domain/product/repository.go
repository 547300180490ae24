package product

import (
	"context"
	"errors"
)

var (
	ErrProductNotFound      = errors.New("product not found")
	ErrProductDuplicateName = errors.New("product with the same name already exists in the tenant")
)

// ListFilter narrows a product listing
type ListFilter struct {
	Search string
	Limit  int
	Offset int
}

// Repository persists the stock table and its movement ledger
type Repository interface {
	Create(ctx context.Context, p *Product) error

	// FindByID returns ErrProductNotFound when the product is not in the tenant
	FindByID(ctx context.Context, tenantID, id string) (*Product, error)

	// FindByName matches the exact product name inside the tenant
	FindByName(ctx context.Context, tenantID, name string) (*Product, error)

	List(ctx context.Context, tenantID string, filter ListFilter) ([]*Product, error)

	Update(ctx context.Context, p *Product) error

	// LockByIDs row-locks the products in ascending id order and returns them
	// in that order. Unknown ids are skipped.
	LockByIDs(ctx context.Context, tenantID string, ids []string) ([]*Product, error)

	// AdjustStock adds delta to the stock of a product
	AdjustStock(ctx context.Context, tenantID, productID string, delta int) error

	// AddMovement appends an entry to the stock ledger
	AddMovement(ctx context.Context, m *Movement) error

	// ItemBalances sums the ledger per (item, product) for one order
	ItemBalances(ctx context.Context, tenantID, orderID string) ([]ItemBalance, error)

	// ListMovements returns the ledger of a product, newest first
	ListMovements(ctx context.Context, tenantID, productID string, limit int) ([]*Movement, error)
}
