package memory

import (
	"context"
	"sort"

	"github.com/hugohenrick/arte-ideas/internal/domain/tenant"
)

// TenantRepository implements tenant.Repository
type TenantRepository struct {
	s *session
}

// Create implements tenant.Repository.Create
func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) error {
	return r.s.write(func(st *state) error {
		for _, existing := range st.tenants {
			if existing.Slug == t.Slug {
				return tenant.ErrTenantDuplicateSlug
			}
		}
		cp := *t
		st.tenants[t.ID] = &cp
		return nil
	})
}

// FindByID implements tenant.Repository.FindByID
func (r *TenantRepository) FindByID(ctx context.Context, id string) (*tenant.Tenant, error) {
	var out *tenant.Tenant
	err := r.s.read(func(st *state) error {
		t, ok := st.tenants[id]
		if !ok {
			return tenant.ErrTenantNotFound
		}
		cp := *t
		out = &cp
		return nil
	})
	return out, err
}

// FindBySlug implements tenant.Repository.FindBySlug
func (r *TenantRepository) FindBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	var out *tenant.Tenant
	err := r.s.read(func(st *state) error {
		for _, t := range st.tenants {
			if t.Slug == slug {
				cp := *t
				out = &cp
				return nil
			}
		}
		return tenant.ErrTenantNotFound
	})
	return out, err
}

// List implements tenant.Repository.List
func (r *TenantRepository) List(ctx context.Context, limit, offset int) ([]*tenant.Tenant, error) {
	var out []*tenant.Tenant
	err := r.s.read(func(st *state) error {
		for _, t := range st.tenants {
			cp := *t
			out = append(out, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return paginate(out, limit, offset), nil
}

// Update implements tenant.Repository.Update
func (r *TenantRepository) Update(ctx context.Context, t *tenant.Tenant) error {
	return r.s.write(func(st *state) error {
		if _, ok := st.tenants[t.ID]; !ok {
			return tenant.ErrTenantNotFound
		}
		for _, existing := range st.tenants {
			if existing.ID != t.ID && existing.Slug == t.Slug {
				return tenant.ErrTenantDuplicateSlug
			}
		}
		cp := *t
		st.tenants[t.ID] = &cp
		return nil
	})
}
