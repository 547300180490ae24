// Package tenant extracts the tenant a request selects. The selector is only
// a request: the access layer decides whether the caller may use it.
package tenant

import (
	"context"
)

type contextKey string

const selectorKey contextKey = "tenant_selector"

// HeaderName is the header carrying an explicit tenant id or slug
const HeaderName = "X-Tenant-ID"

// PathParam is the route parameter carrying a tenant id or slug
const PathParam = "tenantID"

// SetSelectorContext stores the selector in ctx
func SetSelectorContext(ctx context.Context, selector string) context.Context {
	return context.WithValue(ctx, selectorKey, selector)
}

// SelectorFromContext returns the selector stored in ctx, or ""
func SelectorFromContext(ctx context.Context) string {
	if s, ok := ctx.Value(selectorKey).(string); ok {
		return s
	}
	return ""
}
