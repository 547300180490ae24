package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/hugohenrick/arte-ideas/internal/domain/client"
	"github.com/jackc/pgx/v5"
)

const clientColumns = `id, tenant_id, type, full_name, dni, ruc, phone, email, address, created_at, updated_at`

// ClientRepository implements client.Repository
type ClientRepository struct {
	db DBTX
}

// NewClientRepository creates a ClientRepository
func NewClientRepository(db DBTX) *ClientRepository {
	return &ClientRepository{db: db}
}

func scanClient(row pgx.Row) (*client.Client, error) {
	var c client.Client
	err := row.Scan(&c.ID, &c.TenantID, &c.Type, &c.FullName, &c.DNI, &c.RUC,
		&c.Phone, &c.Email, &c.Address, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func clientDuplicate(err error) error {
	if !isUniqueViolation(err) {
		return nil
	}
	if strings.Contains(pgConstraint(err), "ruc") {
		return client.ErrClientDuplicateRUC
	}
	return client.ErrClientDuplicateDNI
}

// Create implements client.Repository.Create
func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO clients (`+clientColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		c.ID, c.TenantID, c.Type, c.FullName, c.DNI, c.RUC, c.Phone, c.Email, c.Address, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if dup := clientDuplicate(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to create client: %w", err)
	}
	return nil
}

// FindByID implements client.Repository.FindByID
func (r *ClientRepository) FindByID(ctx context.Context, tenantID, id string) (*client.Client, error) {
	if uuid.Validate(id) != nil {
		return nil, client.ErrClientNotFound
	}
	c, err := scanClient(r.db.QueryRow(ctx,
		`SELECT `+clientColumns+` FROM clients WHERE tenant_id = $1 AND id = $2`, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, client.ErrClientNotFound
		}
		return nil, fmt.Errorf("failed to find client: %w", err)
	}
	return c, nil
}

// List implements client.Repository.List
func (r *ClientRepository) List(ctx context.Context, tenantID string, f client.ListFilter) ([]*client.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients WHERE tenant_id = $1`
	args := []any{tenantID}
	if f.Type != "" {
		args = append(args, f.Type)
		query += fmt.Sprintf(" AND type = $%d", len(args))
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		n := len(args)
		query += fmt.Sprintf(" AND (full_name ILIKE $%d OR dni LIKE $%d OR ruc LIKE $%d)", n, n, n)
	}
	query += " ORDER BY full_name" + limitClause(f.Limit, f.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list clients: %w", err)
	}
	defer rows.Close()

	clients := []*client.Client{}
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// Update implements client.Repository.Update
func (r *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE clients SET full_name = $3, phone = $4, email = $5, address = $6, updated_at = $7
		WHERE tenant_id = $1 AND id = $2`,
		c.TenantID, c.ID, c.FullName, c.Phone, c.Email, c.Address, c.UpdatedAt)
	if err != nil {
		if dup := clientDuplicate(err); dup != nil {
			return dup
		}
		return fmt.Errorf("failed to update client: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return client.ErrClientNotFound
	}
	return nil
}

var _ client.Repository = (*ClientRepository)(nil)
