package access

import "context"

// Caller is what a transport knows about a request before resolution: the
// authenticated principal, if any, and the tenant it selected.
type Caller struct {
	Principal *Principal
	Tenant    string
}

// Guard resolves a caller and checks one grant. Every service entry point
// goes through it before touching storage.
type Guard struct {
	resolver *Resolver
	policy   *Policy
}

// NewGuard creates a Guard
func NewGuard(resolver *Resolver, policy *Policy) *Guard {
	return &Guard{resolver: resolver, policy: policy}
}

// Policy returns the policy used by the guard
func (g *Guard) Policy() *Policy {
	return g.policy
}

// Enter resolves the scope and authorizes action on resource
func (g *Guard) Enter(ctx context.Context, c Caller, action Action, resource Resource) (*Scope, error) {
	scope, err := g.resolver.Resolve(ctx, c.Principal, c.Tenant)
	if err != nil {
		return nil, err
	}
	if err := g.policy.Authorize(scope, action, resource); err != nil {
		return nil, err
	}
	return scope, nil
}

// EnterTenant is Enter for operations on tenant-owned aggregates, which
// need a bound tenant
func (g *Guard) EnterTenant(ctx context.Context, c Caller, action Action, resource Resource) (*Scope, error) {
	scope, err := g.Enter(ctx, c, action, resource)
	if err != nil {
		return nil, err
	}
	if err := scope.RequireTenant(); err != nil {
		return nil, err
	}
	return scope, nil
}
