package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/hugohenrick/arte-ideas/internal/domain/order"
)

// OrderRepository implements order.Repository
type OrderRepository struct {
	s *session
}

func cloneOrder(o *order.Order) *order.Order {
	c := *o
	if o.StartDate != nil {
		d := *o.StartDate
		c.StartDate = &d
	}
	c.Schedule = order.Schedule{
		PhotoSessions: append([]order.ScheduledDate{}, o.Schedule.PhotoSessions...),
		Deliveries:    append([]order.ScheduledDate{}, o.Schedule.Deliveries...),
	}
	c.Items = make([]*order.Item, len(o.Items))
	for i, it := range o.Items {
		cp := *it
		c.Items[i] = &cp
	}
	c.Payments = make([]*order.Payment, len(o.Payments))
	for i, p := range o.Payments {
		cp := *p
		c.Payments[i] = &cp
	}
	c.ItemsCount = len(o.Items)
	c.PaymentsCount = len(o.Payments)
	return &c
}

func cloneHistory(h *order.StatusHistory) *order.StatusHistory {
	c := *h
	if h.PreviousStatus != nil {
		prev := *h.PreviousStatus
		c.PreviousStatus = &prev
	}
	return &c
}

func visible(o *order.Order, tenantID string) bool {
	return tenantID == "" || o.TenantID == tenantID
}

// Create implements order.Repository.Create
func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	return r.s.write(func(st *state) error {
		for _, existing := range st.orders {
			if existing.TenantID == o.TenantID && existing.OrderNumber == o.OrderNumber {
				return order.ErrOrderDuplicateNumber
			}
		}
		st.orders[o.ID] = cloneOrder(o)
		return nil
	})
}

// FindByID implements order.Repository.FindByID
func (r *OrderRepository) FindByID(ctx context.Context, tenantID, id string) (*order.Order, error) {
	var out *order.Order
	err := r.s.read(func(st *state) error {
		o, ok := st.orders[id]
		if !ok || !visible(o, tenantID) {
			return order.ErrOrderNotFound
		}
		out = cloneOrder(o)
		return nil
	})
	return out, err
}

// FindByIDForUpdate implements order.Repository.FindByIDForUpdate. The
// transaction already holds the database lock.
func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, tenantID, id string) (*order.Order, error) {
	if tenantID == "" {
		return nil, order.ErrOrderNotFound
	}
	return r.FindByID(ctx, tenantID, id)
}

// Update implements order.Repository.Update
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	return r.s.write(func(st *state) error {
		current, ok := st.orders[o.ID]
		if !ok || current.TenantID != o.TenantID {
			return order.ErrOrderNotFound
		}
		for _, existing := range st.orders {
			if existing.ID != o.ID && existing.TenantID == o.TenantID && existing.OrderNumber == o.OrderNumber {
				return order.ErrOrderDuplicateNumber
			}
		}
		updated := cloneOrder(o)
		// rows are written through their own methods
		updated.Items = current.Items
		updated.Payments = current.Payments
		st.orders[o.ID] = updated
		return nil
	})
}

// Delete implements order.Repository.Delete
func (r *OrderRepository) Delete(ctx context.Context, tenantID, id string) error {
	return r.s.write(func(st *state) error {
		o, ok := st.orders[id]
		if !ok || o.TenantID != tenantID {
			return order.ErrOrderNotFound
		}
		delete(st.orders, id)
		kept := st.history[:0]
		for _, h := range st.history {
			if h.OrderID != id {
				kept = append(kept, h)
			}
		}
		st.history = kept
		return nil
	})
}

// ExistsByNumber implements order.Repository.ExistsByNumber
func (r *OrderRepository) ExistsByNumber(ctx context.Context, tenantID, number string) (bool, error) {
	found := false
	err := r.s.read(func(st *state) error {
		for _, o := range st.orders {
			if o.TenantID == tenantID && o.OrderNumber == number {
				found = true
				return nil
			}
		}
		return nil
	})
	return found, err
}

// NextSequence implements order.Repository.NextSequence
func (r *OrderRepository) NextSequence(ctx context.Context, tenantID, scope string) (int64, error) {
	var next int64
	err := r.s.write(func(st *state) error {
		key := tenantID + "/" + scope
		st.sequences[key]++
		next = st.sequences[key]
		return nil
	})
	return next, err
}

func (r *OrderRepository) withOrder(tenantID, orderID string, fn func(o *order.Order) error) error {
	return r.s.write(func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok || o.TenantID != tenantID {
			return order.ErrOrderNotFound
		}
		return fn(o)
	})
}

// AddItem implements order.Repository.AddItem
func (r *OrderRepository) AddItem(ctx context.Context, it *order.Item) error {
	return r.withOrder(it.TenantID, it.OrderID, func(o *order.Order) error {
		cp := *it
		o.Items = append(o.Items, &cp)
		return nil
	})
}

// UpdateItem implements order.Repository.UpdateItem
func (r *OrderRepository) UpdateItem(ctx context.Context, it *order.Item) error {
	return r.withOrder(it.TenantID, it.OrderID, func(o *order.Order) error {
		for i, existing := range o.Items {
			if existing.ID == it.ID {
				cp := *it
				o.Items[i] = &cp
				return nil
			}
		}
		return order.ErrItemNotFound
	})
}

// RemoveItem implements order.Repository.RemoveItem
func (r *OrderRepository) RemoveItem(ctx context.Context, tenantID, orderID, itemID string) error {
	return r.withOrder(tenantID, orderID, func(o *order.Order) error {
		if !o.RemoveItem(itemID) {
			return order.ErrItemNotFound
		}
		return nil
	})
}

// AddPayment implements order.Repository.AddPayment
func (r *OrderRepository) AddPayment(ctx context.Context, p *order.Payment) error {
	return r.withOrder(p.TenantID, p.OrderID, func(o *order.Order) error {
		for _, existing := range o.Payments {
			if existing.ID == p.ID {
				return order.ErrPaymentImmutable
			}
		}
		cp := *p
		o.Payments = append(o.Payments, &cp)
		return nil
	})
}

// ListPayments implements order.Repository.ListPayments
func (r *OrderRepository) ListPayments(ctx context.Context, tenantID, orderID string) ([]*order.Payment, error) {
	o, err := r.FindByID(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}
	return o.Payments, nil
}

// AddHistory implements order.Repository.AddHistory
func (r *OrderRepository) AddHistory(ctx context.Context, h *order.StatusHistory) error {
	return r.s.write(func(st *state) error {
		o, ok := st.orders[h.OrderID]
		if !ok || o.TenantID != h.TenantID {
			return order.ErrOrderNotFound
		}
		for _, existing := range st.history {
			if existing.ID == h.ID {
				return order.ErrHistoryImmutable
			}
		}
		st.history = append(st.history, cloneHistory(h))
		return nil
	})
}

// ListHistory implements order.Repository.ListHistory
func (r *OrderRepository) ListHistory(ctx context.Context, tenantID, orderID string) ([]*order.StatusHistory, error) {
	var out []*order.StatusHistory
	err := r.s.read(func(st *state) error {
		o, ok := st.orders[orderID]
		if !ok || !visible(o, tenantID) {
			return order.ErrOrderNotFound
		}
		for _, h := range st.history {
			if h.OrderID == orderID {
				out = append(out, cloneHistory(h))
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

func matches(o *order.Order, f order.ListFilter) bool {
	if !visible(o, f.TenantID) {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if o.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if f.DocumentType != "" && o.DocumentType != f.DocumentType {
		return false
	}
	if f.ClientID != "" && o.ClientID != f.ClientID {
		return false
	}
	if f.DeliveryFrom != nil && o.DeliveryDate.Before(*f.DeliveryFrom) {
		return false
	}
	if f.DeliveryTo != nil && o.DeliveryDate.After(*f.DeliveryTo) {
		return false
	}
	if f.DeliveryBefore != nil && !o.DeliveryDate.Before(*f.DeliveryBefore) {
		return false
	}
	return true
}

func sortOrders(orders []*order.Order, by order.SortOrder) {
	sort.SliceStable(orders, func(i, j int) bool {
		a, b := orders[i], orders[j]
		switch by {
		case order.SortDeliveryAsc:
			if !a.DeliveryDate.Equal(b.DeliveryDate) {
				return a.DeliveryDate.Before(b.DeliveryDate)
			}
			return strings.Compare(a.OrderNumber, b.OrderNumber) < 0
		case order.SortDeliveryDesc:
			if !a.DeliveryDate.Equal(b.DeliveryDate) {
				return a.DeliveryDate.After(b.DeliveryDate)
			}
			return strings.Compare(a.OrderNumber, b.OrderNumber) < 0
		case order.SortNumberAsc:
			return strings.Compare(a.OrderNumber, b.OrderNumber) < 0
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return strings.Compare(a.OrderNumber, b.OrderNumber) > 0
		}
	})
}

// List implements order.Repository.List
func (r *OrderRepository) List(ctx context.Context, f order.ListFilter) ([]*order.Order, int, error) {
	var matched []*order.Order
	err := r.s.read(func(st *state) error {
		for _, o := range st.orders {
			if matches(o, f) {
				header := cloneOrder(o)
				header.Items = nil
				header.Payments = nil
				matched = append(matched, header)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}

	sortOrders(matched, f.Sort)
	total := len(matched)
	if f.Offset > 0 {
		if f.Offset >= len(matched) {
			return []*order.Order{}, total, nil
		}
		matched = matched[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(matched) {
		matched = matched[:f.Limit]
	}
	return matched, total, nil
}
