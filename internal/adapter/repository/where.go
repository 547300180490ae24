package repository

import (
	"fmt"
	"strings"
)

// where collects AND-ed conditions and their positional arguments
type where struct {
	conds []string
	args  []any
}

// add appends cond, whose single %d verb becomes the argument position
func (w *where) add(cond string, v any) {
	w.args = append(w.args, v)
	w.conds = append(w.conds, fmt.Sprintf(cond, len(w.args)))
}

// tenant restricts column to tenantID. An empty id adds nothing so the
// query still matches the (tenant_id, ...) indexes when a tenant is set.
func (w *where) tenant(column, tenantID string) {
	if tenantID != "" {
		w.add(column+" = $%d", tenantID)
	}
}

// clause renders " WHERE ..." or an empty string
func (w *where) clause() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}
