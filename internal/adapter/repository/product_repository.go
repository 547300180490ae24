package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/hugohenrick/arte-ideas/internal/domain/product"
	"github.com/jackc/pgx/v5"
)

const productColumns = `id, tenant_id, name, code, description, stock, cost_price, sale_price, created_at, updated_at`

// ProductRepository implements product.Repository
type ProductRepository struct {
	db DBTX
}

// NewProductRepository creates a ProductRepository
func NewProductRepository(db DBTX) *ProductRepository {
	return &ProductRepository{db: db}
}

func scanProduct(row pgx.Row) (*product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.Code, &p.Description, &p.Stock,
		&p.CostPrice, &p.SalePrice, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *ProductRepository) queryProducts(ctx context.Context, query string, args ...any) ([]*product.Product, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []*product.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// Create implements product.Repository.Create
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO products (`+productColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.TenantID, p.Name, p.Code, p.Description, p.Stock, p.CostPrice, p.SalePrice, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return product.ErrProductDuplicateName
		}
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// FindByID implements product.Repository.FindByID
func (r *ProductRepository) FindByID(ctx context.Context, tenantID, id string) (*product.Product, error) {
	if uuid.Validate(id) != nil {
		return nil, product.ErrProductNotFound
	}
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND id = $2`, tenantID, id)
}

// FindByName implements product.Repository.FindByName
func (r *ProductRepository) FindByName(ctx context.Context, tenantID, name string) (*product.Product, error) {
	return r.findOne(ctx, `SELECT `+productColumns+` FROM products WHERE tenant_id = $1 AND name = $2`, tenantID, name)
}

func (r *ProductRepository) findOne(ctx context.Context, query string, args ...any) (*product.Product, error) {
	p, err := scanProduct(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrProductNotFound
		}
		return nil, fmt.Errorf("failed to find product: %w", err)
	}
	return p, nil
}

// List implements product.Repository.List
func (r *ProductRepository) List(ctx context.Context, tenantID string, f product.ListFilter) ([]*product.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE tenant_id = $1`
	args := []any{tenantID}
	if s := strings.TrimSpace(f.Search); s != "" {
		args = append(args, "%"+s+"%")
		query += " AND (name ILIKE $2 OR code ILIKE $2)"
	}
	query += " ORDER BY name" + limitClause(f.Limit, f.Offset)
	return r.queryProducts(ctx, query, args...)
}

// Update implements product.Repository.Update
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET name = $3, code = $4, description = $5, stock = $6,
			cost_price = $7, sale_price = $8, updated_at = $9
		WHERE tenant_id = $1 AND id = $2`,
		p.TenantID, p.ID, p.Name, p.Code, p.Description, p.Stock, p.CostPrice, p.SalePrice, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return product.ErrProductDuplicateName
		}
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

// LockByIDs implements product.Repository.LockByIDs
func (r *ProductRepository) LockByIDs(ctx context.Context, tenantID string, ids []string) ([]*product.Product, error) {
	valid := make([]string, 0, len(ids))
	for _, id := range ids {
		if uuid.Validate(id) == nil {
			valid = append(valid, id)
		}
	}
	if len(valid) == 0 {
		return []*product.Product{}, nil
	}
	sort.Strings(valid)
	return r.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products
		WHERE tenant_id = $1 AND id = ANY($2::uuid[])
		ORDER BY id
		FOR UPDATE`, tenantID, valid)
}

// AdjustStock implements product.Repository.AdjustStock
func (r *ProductRepository) AdjustStock(ctx context.Context, tenantID, productID string, delta int) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE products SET stock = stock + $3, updated_at = now() WHERE tenant_id = $1 AND id = $2`,
		tenantID, productID, delta)
	if err != nil {
		return fmt.Errorf("failed to adjust stock: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return product.ErrProductNotFound
	}
	return nil
}

// AddMovement implements product.Repository.AddMovement
func (r *ProductRepository) AddMovement(ctx context.Context, m *product.Movement) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO stock_movements (id, tenant_id, product_id, order_id, item_id, kind, delta, note, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.TenantID, m.ProductID, nullable(m.OrderID), nullable(m.ItemID), m.Kind, m.Delta, m.Note, m.CreatedBy, m.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to record stock movement: %w", err)
	}
	return nil
}

// ItemBalances implements product.Repository.ItemBalances
func (r *ProductRepository) ItemBalances(ctx context.Context, tenantID, orderID string) ([]product.ItemBalance, error) {
	rows, err := r.db.Query(ctx,
		`SELECT item_id, product_id, SUM(delta)
		FROM stock_movements
		WHERE tenant_id = $1 AND order_id = $2
		GROUP BY item_id, product_id
		ORDER BY MIN(created_at)`, tenantID, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum stock movements: %w", err)
	}
	defer rows.Close()

	balances := []product.ItemBalance{}
	for rows.Next() {
		var b product.ItemBalance
		var itemID *string
		if err := rows.Scan(&itemID, &b.ProductID, &b.Net); err != nil {
			return nil, fmt.Errorf("failed to scan stock balance: %w", err)
		}
		b.ItemID = deref(itemID)
		balances = append(balances, b)
	}
	return balances, rows.Err()
}

// ListMovements implements product.Repository.ListMovements
func (r *ProductRepository) ListMovements(ctx context.Context, tenantID, productID string, limit int) ([]*product.Movement, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, tenant_id, product_id, order_id, item_id, kind, delta, note, created_by, created_at
		FROM stock_movements
		WHERE tenant_id = $1 AND product_id = $2
		ORDER BY created_at DESC`+limitClause(limit, 0), tenantID, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stock movements: %w", err)
	}
	defer rows.Close()

	movements := []*product.Movement{}
	for rows.Next() {
		var m product.Movement
		var orderID, itemID *string
		if err := rows.Scan(&m.ID, &m.TenantID, &m.ProductID, &orderID, &itemID, &m.Kind,
			&m.Delta, &m.Note, &m.CreatedBy, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan stock movement: %w", err)
		}
		m.OrderID = deref(orderID)
		m.ItemID = deref(itemID)
		movements = append(movements, &m)
	}
	return movements, rows.Err()
}

var _ product.Repository = (*ProductRepository)(nil)
