package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/jackc/pgx/v5"
)

const orderColumns = `o.id, o.tenant_id, o.order_number, o.client_id, o.document_type, o.client_kind,
	o.school_level, o.grade, o.section, o.order_date, o.start_date, o.delivery_date,
	o.subtotal, o.tax, o.total, o.paid_amount, o.balance, o.payment_status, o.status,
	o.affects_inventory, o.contract_ref, o.schedule, o.notes, o.created_by, o.created_at, o.updated_at`

const itemColumns = `id, tenant_id, order_id, product_name, product_description, product_code, quantity,
	unit_price, discount_percentage, subtotal, affects_inventory, inventory_item_id, created_at, updated_at`

const paymentColumns = `id, tenant_id, order_id, payment_date, amount, method, reference_number, note,
	registered_by, created_at`

// OrderRepository implements order.Repository
type OrderRepository struct {
	db DBTX
}

// NewOrderRepository creates an OrderRepository
func NewOrderRepository(db DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

func scanOrder(row pgx.Row, extra ...any) (*order.Order, error) {
	var o order.Order
	var schedule []byte
	dest := []any{&o.ID, &o.TenantID, &o.OrderNumber, &o.ClientID, &o.DocumentType, &o.ClientKind,
		&o.SchoolLevel, &o.Grade, &o.Section, &o.OrderDate, &o.StartDate, &o.DeliveryDate,
		&o.Subtotal, &o.Tax, &o.Total, &o.PaidAmount, &o.Balance, &o.PaymentStatus, &o.Status,
		&o.AffectsInventory, &o.ContractRef, &schedule, &o.Notes, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	if len(schedule) > 0 {
		if err := json.Unmarshal(schedule, &o.Schedule); err != nil {
			return nil, fmt.Errorf("failed to decode schedule: %w", err)
		}
	}
	if o.Schedule.PhotoSessions == nil {
		o.Schedule.PhotoSessions = []order.ScheduledDate{}
	}
	if o.Schedule.Deliveries == nil {
		o.Schedule.Deliveries = []order.ScheduledDate{}
	}
	return &o, nil
}

// Create implements order.Repository.Create
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	schedule, err := json.Marshal(o.Schedule)
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO orders (
			id, tenant_id, order_number, client_id, document_type, client_kind,
			school_level, grade, section, order_date, start_date, delivery_date,
			subtotal, tax, total, paid_amount, balance, payment_status, status,
			affects_inventory, contract_ref, schedule, notes, created_by, created_at, updated_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			$14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
		)`,
		o.ID, o.TenantID, o.OrderNumber, o.ClientID, o.DocumentType, o.ClientKind,
		o.SchoolLevel, o.Grade, o.Section, o.OrderDate, o.StartDate, o.DeliveryDate,
		o.Subtotal, o.Tax, o.Total, o.PaidAmount, o.Balance, o.PaymentStatus, o.Status,
		o.AffectsInventory, o.ContractRef, schedule, o.Notes, o.CreatedBy, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return order.ErrOrderDuplicateNumber
		}
		return fmt.Errorf("failed to create order: %w", err)
	}

	for _, it := range o.Items {
		if err := r.AddItem(ctx, it); err != nil {
			return err
		}
	}
	for _, p := range o.Payments {
		if err := r.AddPayment(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// FindByID implements order.Repository.FindByID
func (r *OrderRepository) FindByID(ctx context.Context, tenantID, id string) (*order.Order, error) {
	return r.find(ctx, tenantID, id, false)
}

// FindByIDForUpdate implements order.Repository.FindByIDForUpdate
func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id string) (*order.Order, error) {
	if tenantID == "" {
		return nil, order.ErrOrderNotFound
	}
	return r.find(ctx, tenantID, id, true)
}

func (r *OrderRepository) find(ctx context.Context, tenantID, id string, lock bool) (*order.Order, error) {
	if uuid.Validate(id) != nil {
		return nil, order.ErrOrderNotFound
	}

	var w where
	w.add("o.id = $%d", id)
	w.tenant("o.tenant_id", tenantID)
	query := `SELECT ` + orderColumns + ` FROM orders o` + w.clause()
	if lock {
		query += " FOR UPDATE"
	}
	o, err := scanOrder(r.db.QueryRow(ctx, query, w.args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, order.ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to find order: %w", err)
	}

	if o.Items, err = r.listItems(ctx, o.TenantID, o.ID); err != nil {
		return nil, err
	}
	if o.Payments, err = r.ListPayments(ctx, o.TenantID, o.ID); err != nil {
		return nil, err
	}
	o.ItemsCount = len(o.Items)
	o.PaymentsCount = len(o.Payments)
	return o, nil
}

// Update implements order.Repository.Update
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	schedule, err := json.Marshal(o.Schedule)
	if err != nil {
		return fmt.Errorf("failed to encode schedule: %w", err)
	}

	tag, err := r.db.Exec(ctx,
		`UPDATE orders SET
			order_number = $3, client_id = $4, client_kind = $5, school_level = $6, grade = $7,
			section = $8, order_date = $9, start_date = $10, delivery_date = $11, subtotal = $12,
			tax = $13, total = $14, paid_amount = $15, balance = $16, payment_status = $17,
			status = $18, contract_ref = $19, schedule = $20, notes = $21, updated_at = $22
		WHERE tenant_id = $1 AND id = $2`,
		o.TenantID, o.ID, o.OrderNumber, o.ClientID, o.ClientKind, o.SchoolLevel, o.Grade,
		o.Section, o.OrderDate, o.StartDate, o.DeliveryDate, o.Subtotal,
		o.Tax, o.Total, o.PaidAmount, o.Balance, o.PaymentStatus,
		o.Status, o.ContractRef, schedule, o.Notes, o.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return order.ErrOrderDuplicateNumber
		}
		return fmt.Errorf("failed to update order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// Delete implements order.Repository.Delete. Items, payments and history
// go with the header through ON DELETE CASCADE.
func (r *OrderRepository) Delete(ctx context.Context, tenantID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM orders WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrOrderNotFound
	}
	return nil
}

// ExistsByNumber implements order.Repository.ExistsByNumber
func (r *OrderRepository) ExistsByNumber(ctx context.Context, tenantID, number string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM orders WHERE tenant_id = $1 AND order_number = $2)`,
		tenantID, number).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check order number: %w", err)
	}
	return exists, nil
}

// NextSequence implements order.Repository.NextSequence. The upsert locks
// the sequence row until the transaction ends.
func (r *OrderRepository) NextSequence(ctx context.Context, tenantID, scope string) (int64, error) {
	var next int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO order_sequences (tenant_id, scope, last_value) VALUES ($1, $2, 1)
		ON CONFLICT (tenant_id, scope) DO UPDATE SET last_value = order_sequences.last_value + 1
		RETURNING last_value`, tenantID, scope).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to advance order sequence: %w", err)
	}
	return next, nil
}

func (r *OrderRepository) listItems(ctx context.Context, tenantID, orderID string) ([]*order.Item, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+itemColumns+` FROM order_items WHERE tenant_id = $1 AND order_id = $2 ORDER BY created_at, id`,
		tenantID, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to list order items: %w", err)
	}
	defer rows.Close()

	items := []*order.Item{}
	for rows.Next() {
		var it order.Item
		var inventoryID *string
		if err := rows.Scan(&it.ID, &it.TenantID, &it.OrderID, &it.ProductName, &it.ProductDescription,
			&it.ProductCode, &it.Quantity, &it.UnitPrice, &it.DiscountPct, &it.Subtotal,
			&it.AffectsInventory, &inventoryID, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		it.InventoryItemID = deref(inventoryID)
		items = append(items, &it)
	}
	return items, rows.Err()
}

// AddItem implements order.Repository.AddItem
func (r *OrderRepository) AddItem(ctx context.Context, it *order.Item) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO order_items (`+itemColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		it.ID, it.TenantID, it.OrderID, it.ProductName, it.ProductDescription, it.ProductCode,
		it.Quantity, it.UnitPrice, it.DiscountPct, it.Subtotal, it.AffectsInventory,
		nullable(it.InventoryItemID), it.CreatedAt, it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to add order item: %w", err)
	}
	return nil
}

// UpdateItem implements order.Repository.UpdateItem
func (r *OrderRepository) UpdateItem(ctx context.Context, it *order.Item) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE order_items SET product_name = $4, product_description = $5, product_code = $6,
			quantity = $7, unit_price = $8, discount_percentage = $9, subtotal = $10,
			inventory_item_id = $11, updated_at = $12
		WHERE tenant_id = $1 AND order_id = $2 AND id = $3`,
		it.TenantID, it.OrderID, it.ID, it.ProductName, it.ProductDescription, it.ProductCode,
		it.Quantity, it.UnitPrice, it.DiscountPct, it.Subtotal, nullable(it.InventoryItemID), it.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to update order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrItemNotFound
	}
	return nil
}

// RemoveItem implements order.Repository.RemoveItem
func (r *OrderRepository) RemoveItem(ctx context.Context, tenantID, orderID, itemID string) error {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM order_items WHERE tenant_id = $1 AND order_id = $2 AND id = $3`,
		tenantID, orderID, itemID)
	if err != nil {
		return fmt.Errorf("failed to remove order item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return order.ErrItemNotFound
	}
	return nil
}

// AddPayment implements order.Repository.AddPayment
func (r *OrderRepository) AddPayment(ctx context.Context, p *order.Payment) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO order_payments (`+paymentColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		p.ID, p.TenantID, p.OrderID, p.PaymentDate, p.Amount, p.Method, p.ReferenceNumber, p.Note,
		p.RegisteredBy, p.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) || pgCode(err) == codeRaiseException {
			return order.ErrPaymentImmutable
		}
		return fmt.Errorf("failed to add payment: %w", err)
	}
	return nil
}

// ListPayments implements order.Repository.ListPayments
func (r *OrderRepository) ListPayments(ctx context.Context, tenantID, orderID string) ([]*order.Payment, error) {
	var w where
	w.tenant("tenant_id", tenantID)
	w.add("order_id = $%d", orderID)
	rows, err := r.db.Query(ctx,
		`SELECT `+paymentColumns+` FROM order_payments`+w.clause()+` ORDER BY created_at, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := []*order.Payment{}
	for rows.Next() {
		var p order.Payment
		if err := rows.Scan(&p.ID, &p.TenantID, &p.OrderID, &p.PaymentDate, &p.Amount, &p.Method,
			&p.ReferenceNumber, &p.Note, &p.RegisteredBy, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, &p)
	}
	return payments, rows.Err()
}

// AddHistory implements order.Repository.AddHistory
func (r *OrderRepository) AddHistory(ctx context.Context, h *order.StatusHistory) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO order_status_history (id, tenant_id, order_id, previous_status, new_status, reason, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.ID, h.TenantID, h.OrderID, h.PreviousStatus, h.NewStatus, h.Reason, h.ActorID, h.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) || pgCode(err) == codeRaiseException {
			return order.ErrHistoryImmutable
		}
		return fmt.Errorf("failed to add status history: %w", err)
	}
	return nil
}

// ListHistory implements order.Repository.ListHistory
func (r *OrderRepository) ListHistory(ctx context.Context, tenantID, orderID string) ([]*order.StatusHistory, error) {
	if uuid.Validate(orderID) != nil {
		return nil, order.ErrOrderNotFound
	}
	var w where
	w.tenant("tenant_id", tenantID)
	w.add("order_id = $%d", orderID)
	rows, err := r.db.Query(ctx,
		`SELECT id, tenant_id, order_id, previous_status, new_status, reason, actor_id, created_at
		FROM order_status_history`+w.clause()+` ORDER BY created_at, id`, w.args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list status history: %w", err)
	}
	defer rows.Close()

	history := []*order.StatusHistory{}
	for rows.Next() {
		var h order.StatusHistory
		if err := rows.Scan(&h.ID, &h.TenantID, &h.OrderID, &h.PreviousStatus, &h.NewStatus,
			&h.Reason, &h.ActorID, &h.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan status history: %w", err)
		}
		history = append(history, &h)
	}
	return history, rows.Err()
}

func orderWhere(f order.ListFilter) (string, []any) {
	var w where
	w.tenant("o.tenant_id", f.TenantID)
	if len(f.Statuses) > 0 {
		statuses := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			statuses[i] = string(s)
		}
		w.add("o.status = ANY($%d)", statuses)
	}
	if f.DocumentType != "" {
		w.add("o.document_type = $%d", string(f.DocumentType))
	}
	if f.ClientID != "" {
		w.add("o.client_id = $%d", f.ClientID)
	}
	if f.DeliveryFrom != nil {
		w.add("o.delivery_date >= $%d", *f.DeliveryFrom)
	}
	if f.DeliveryTo != nil {
		w.add("o.delivery_date <= $%d", *f.DeliveryTo)
	}
	if f.DeliveryBefore != nil {
		w.add("o.delivery_date < $%d", *f.DeliveryBefore)
	}
	return w.clause(), w.args
}

func orderBy(s order.SortOrder) string {
	switch s {
	case order.SortDeliveryAsc:
		return " ORDER BY o.delivery_date ASC, o.order_number ASC"
	case order.SortDeliveryDesc:
		return " ORDER BY o.delivery_date DESC, o.order_number ASC"
	case order.SortNumberAsc:
		return " ORDER BY o.order_number ASC"
	default:
		return " ORDER BY o.created_at DESC, o.order_number DESC"
	}
}

// List implements order.Repository.List
func (r *OrderRepository) List(ctx context.Context, f order.ListFilter) ([]*order.Order, int, error) {
	cond, args := orderWhere(f)

	var total int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders o`+cond, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + `,
		(SELECT COUNT(*) FROM order_items i WHERE i.tenant_id = o.tenant_id AND i.order_id = o.id),
		(SELECT COUNT(*) FROM order_payments p WHERE p.tenant_id = o.tenant_id AND p.order_id = o.id)
		FROM orders o` + cond + orderBy(f.Sort) + limitClause(f.Limit, f.Offset)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list orders: %w", err)
	}
	defer rows.Close()

	orders := []*order.Order{}
	for rows.Next() {
		var items, payments int
		o, err := scanOrder(rows, &items, &payments)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan order: %w", err)
		}
		o.ItemsCount = items
		o.PaymentsCount = payments
		orders = append(orders, o)
	}
	return orders, total, rows.Err()
}

// day normalizes a date parameter
func day(t time.Time) time.Time {
	return order.Day(t)
}

var _ order.Repository = (*OrderRepository)(nil)
