package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/hugohenrick/arte-ideas/internal/domain/product"
)

// ProductRepository implements product.Repository
type ProductRepository struct {
	s *session
}

func productConflict(st *state, p *product.Product) error {
	for _, existing := range st.products {
		if existing.ID != p.ID && existing.TenantID == p.TenantID && existing.Name == p.Name {
			return product.ErrProductDuplicateName
		}
	}
	return nil
}

// Create implements product.Repository.Create
func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	return r.s.write(func(st *state) error {
		if err := productConflict(st, p); err != nil {
			return err
		}
		cp := *p
		st.products[p.ID] = &cp
		return nil
	})
}

// FindByID implements product.Repository.FindByID
func (r *ProductRepository) FindByID(ctx context.Context, tenantID, id string) (*product.Product, error) {
	var out *product.Product
	err := r.s.read(func(st *state) error {
		p, ok := st.products[id]
		if !ok || p.TenantID != tenantID {
			return product.ErrProductNotFound
		}
		cp := *p
		out = &cp
		return nil
	})
	return out, err
}

// FindByName implements product.Repository.FindByName
func (r *ProductRepository) FindByName(ctx context.Context, tenantID, name string) (*product.Product, error) {
	var out *product.Product
	err := r.s.read(func(st *state) error {
		for _, p := range st.products {
			if p.TenantID == tenantID && p.Name == name {
				cp := *p
				out = &cp
				return nil
			}
		}
		return product.ErrProductNotFound
	})
	return out, err
}

// List implements product.Repository.List
func (r *ProductRepository) List(ctx context.Context, tenantID string, f product.ListFilter) ([]*product.Product, error) {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*product.Product
	err := r.s.read(func(st *state) error {
		for _, p := range st.products {
			if p.TenantID != tenantID {
				continue
			}
			if search != "" && !strings.Contains(strings.ToLower(p.Name), search) &&
				!strings.Contains(strings.ToLower(p.Code), search) {
				continue
			}
			cp := *p
			out = append(out, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, f.Limit, f.Offset), nil
}

// Update implements product.Repository.Update
func (r *ProductRepository) Update(ctx context.Context, p *product.Product) error {
	return r.s.write(func(st *state) error {
		existing, ok := st.products[p.ID]
		if !ok || existing.TenantID != p.TenantID {
			return product.ErrProductNotFound
		}
		if err := productConflict(st, p); err != nil {
			return err
		}
		cp := *p
		st.products[p.ID] = &cp
		return nil
	})
}

// LockByIDs implements product.Repository.LockByIDs. The transaction
// already holds the database lock, so only the ordering matters here.
func (r *ProductRepository) LockByIDs(ctx context.Context, tenantID string, ids []string) ([]*product.Product, error) {
	sorted := append([]string{}, ids...)
	sort.Strings(sorted)
	var out []*product.Product
	err := r.s.read(func(st *state) error {
		seen := map[string]bool{}
		for _, id := range sorted {
			p, ok := st.products[id]
			if !ok || p.TenantID != tenantID || seen[id] {
				continue
			}
			seen[id] = true
			cp := *p
			out = append(out, &cp)
		}
		return nil
	})
	return out, err
}

// AdjustStock implements product.Repository.AdjustStock
func (r *ProductRepository) AdjustStock(ctx context.Context, tenantID, productID string, delta int) error {
	return r.s.write(func(st *state) error {
		p, ok := st.products[productID]
		if !ok || p.TenantID != tenantID {
			return product.ErrProductNotFound
		}
		p.Stock += delta
		return nil
	})
}

// AddMovement implements product.Repository.AddMovement
func (r *ProductRepository) AddMovement(ctx context.Context, m *product.Movement) error {
	return r.s.write(func(st *state) error {
		cp := *m
		st.movements = append(st.movements, &cp)
		return nil
	})
}

// ItemBalances implements product.Repository.ItemBalances
func (r *ProductRepository) ItemBalances(ctx context.Context, tenantID, orderID string) ([]product.ItemBalance, error) {
	type key struct{ item, product string }
	sums := map[key]int{}
	var order []key
	err := r.s.read(func(st *state) error {
		for _, m := range st.movements {
			if m.TenantID != tenantID || m.OrderID != orderID {
				continue
			}
			k := key{m.ItemID, m.ProductID}
			if _, ok := sums[k]; !ok {
				order = append(order, k)
			}
			sums[k] += m.Delta
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	out := make([]product.ItemBalance, 0, len(order))
	for _, k := range order {
		out = append(out, product.ItemBalance{ItemID: k.item, ProductID: k.product, Net: sums[k]})
	}
	return out, nil
}

// ListMovements implements product.Repository.ListMovements
func (r *ProductRepository) ListMovements(ctx context.Context, tenantID, productID string, limit int) ([]*product.Movement, error) {
	var out []*product.Movement
	err := r.s.read(func(st *state) error {
		for i := len(st.movements) - 1; i >= 0; i-- {
			m := st.movements[i]
			if m.TenantID == tenantID && m.ProductID == productID {
				cp := *m
				out = append(out, &cp)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return paginate(out, limit, 0), nil
}
