package client

import (
	"context"
	"errors"
)

var (
	ErrClientNotFound     = errors.New("client not found")
	ErrClientDuplicateDNI = errors.New("client with the same DNI already exists in the tenant")
	ErrClientDuplicateRUC = errors.New("client with the same RUC already exists in the tenant")
)

// ListFilter narrows a client listing
type ListFilter struct {
	Type   Type
	Search string // matches full name, DNI or RUC
	Limit  int
	Offset int
}

// Repository persists clients. Every method is scoped to one tenant.
type Repository interface {
	// Create returns ErrClientDuplicateDNI or ErrClientDuplicateRUC on conflicts
	Create(ctx context.Context, c *Client) error

	// FindByID returns ErrClientNotFound when the client is not in the tenant
	FindByID(ctx context.Context, tenantID, id string) (*Client, error)

	List(ctx context.Context, tenantID string, filter ListFilter) ([]*Client, error)

	Update(ctx context.Context, c *Client) error
}
