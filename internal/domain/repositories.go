// Package domain groups the repository contracts the services depend on.
package domain

import (
	"context"

	"github.com/hugohenrick/arte-ideas/internal/domain/client"
	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/hugohenrick/arte-ideas/internal/domain/product"
	"github.com/hugohenrick/arte-ideas/internal/domain/tenant"
	"github.com/hugohenrick/arte-ideas/internal/domain/user"
)

// Repositories is a set of repositories bound to the same connection or
// transaction
type Repositories struct {
	Orders   order.Repository
	Reports  order.ReportRepository
	Clients  client.Repository
	Products product.Repository
	Tenants  tenant.Repository
	Users    user.Repository
}

// UnitOfWork runs a function inside one transaction. The repositories
// handed to fn see and write only that transaction; returning an error or
// letting ctx expire rolls everything back.
type UnitOfWork interface {
	Within(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error

	// Reader returns repositories outside any transaction, for reads
	Reader() Repositories
}
