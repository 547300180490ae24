package memory

import (
	"context"
	"sort"
	"strings"

	"github.com/hugohenrick/arte-ideas/internal/domain/client"
)

// ClientRepository implements client.Repository
type ClientRepository struct {
	s *session
}

func clientConflict(st *state, c *client.Client) error {
	for _, existing := range st.clients {
		if existing.ID == c.ID || existing.TenantID != c.TenantID {
			continue
		}
		if c.DNI != "" && existing.DNI == c.DNI {
			return client.ErrClientDuplicateDNI
		}
		if c.RUC != "" && existing.RUC == c.RUC {
			return client.ErrClientDuplicateRUC
		}
	}
	return nil
}

// Create implements client.Repository.Create
func (r *ClientRepository) Create(ctx context.Context, c *client.Client) error {
	return r.s.write(func(st *state) error {
		if err := clientConflict(st, c); err != nil {
			return err
		}
		cp := *c
		st.clients[c.ID] = &cp
		return nil
	})
}

// FindByID implements client.Repository.FindByID
func (r *ClientRepository) FindByID(ctx context.Context, tenantID, id string) (*client.Client, error) {
	var out *client.Client
	err := r.s.read(func(st *state) error {
		c, ok := st.clients[id]
		if !ok || c.TenantID != tenantID {
			return client.ErrClientNotFound
		}
		cp := *c
		out = &cp
		return nil
	})
	return out, err
}

// List implements client.Repository.List
func (r *ClientRepository) List(ctx context.Context, tenantID string, f client.ListFilter) ([]*client.Client, error) {
	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []*client.Client
	err := r.s.read(func(st *state) error {
		for _, c := range st.clients {
			if c.TenantID != tenantID || (f.Type != "" && c.Type != f.Type) {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(c.FullName), search) &&
				!strings.Contains(c.DNI, search) && !strings.Contains(c.RUC, search) {
				continue
			}
			cp := *c
			out = append(out, &cp)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName < out[j].FullName })
	return paginate(out, f.Limit, f.Offset), nil
}

// Update implements client.Repository.Update
func (r *ClientRepository) Update(ctx context.Context, c *client.Client) error {
	return r.s.write(func(st *state) error {
		existing, ok := st.clients[c.ID]
		if !ok || existing.TenantID != c.TenantID {
			return client.ErrClientNotFound
		}
		if err := clientConflict(st, c); err != nil {
			return err
		}
		cp := *c
		st.clients[c.ID] = &cp
		return nil
	})
}

func paginate[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return []T{}
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
