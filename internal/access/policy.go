package access

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
)

// Action is something a caller may attempt on a resource
type Action string

const (
	ActionRead            Action = "read"
	ActionCreate          Action = "create"
	ActionUpdate          Action = "update"
	ActionDelete          Action = "delete"
	ActionTransition      Action = "transition"
	ActionRegisterPayment Action = "register-payment"
	ActionViewFinancials  Action = "view-financials"
	ActionViewCosts       Action = "view-costs"
	ActionEditPrice       Action = "edit-price"
)

// Resource is a kind of record the policy guards
type Resource string

const (
	ResourceOrder         Resource = "Order"
	ResourceOrderItem     Resource = "OrderItem"
	ResourceOrderPayment  Resource = "OrderPayment"
	ResourceStatusHistory Resource = "OrderStatusHistory"
	ResourceClient        Resource = "Client"
	ResourceProduct       Resource = "Product"
	ResourceTenant        Resource = "Tenant"
)

const modelText = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && (p.obj == "*" || r.obj == p.obj) && (p.act == "*" || r.act == p.act)
`

// grants is the static role matrix loaded into the enforcer at start.
// Tenant records are reserved to super-admins.
var grants = [][]string{
	{"super-admin", "*", "*"},

	{"admin", "Order", "*"},
	{"admin", "OrderItem", "*"},
	{"admin", "OrderPayment", "*"},
	{"admin", "OrderStatusHistory", "*"},
	{"admin", "Client", "*"},
	{"admin", "Product", "*"},

	{"sales", "Order", "read"},
	{"sales", "Order", "create"},
	{"sales", "Order", "update"},
	{"sales", "Order", "transition"},
	{"sales", "Order", "register-payment"},
	{"sales", "Order", "view-financials"},
	{"sales", "Order", "edit-price"},
	{"sales", "OrderItem", "read"},
	{"sales", "OrderItem", "create"},
	{"sales", "OrderItem", "update"},
	{"sales", "OrderItem", "delete"},
	{"sales", "OrderItem", "edit-price"},
	{"sales", "OrderPayment", "read"},
	{"sales", "OrderPayment", "create"},
	{"sales", "OrderPayment", "register-payment"},
	{"sales", "OrderStatusHistory", "read"},
	{"sales", "Client", "read"},
	{"sales", "Client", "create"},
	{"sales", "Client", "update"},
	{"sales", "Product", "read"},

	{"production", "Order", "read"},
	{"production", "Order", "transition"},
	{"production", "OrderItem", "read"},
	{"production", "OrderStatusHistory", "read"},
	{"production", "Client", "read"},
	{"production", "Product", "read"},

	{"operator", "Order", "read"},
	{"operator", "Client", "read"},
	{"operator", "Product", "read"},
}

// Policy decides (role, action, resource) questions. It is pure: the
// matrix is fixed once the process starts.
type Policy struct {
	enforcer *casbin.SyncedEnforcer
}

// NewPolicy compiles the model and loads the static matrix
func NewPolicy() (*Policy, error) {
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, fmt.Errorf("failed to parse authorization model: %w", err)
	}
	enforcer, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to create authorization enforcer: %w", err)
	}
	if _, err := enforcer.AddPolicies(grants); err != nil {
		return nil, fmt.Errorf("failed to load authorization matrix: %w", err)
	}
	return &Policy{enforcer: enforcer}, nil
}

// Permit reports whether the scope may perform action on resource. In a
// restricted tenant only administrators see financial figures.
func (p *Policy) Permit(scope *Scope, action Action, resource Resource) bool {
	if scope == nil {
		return false
	}
	if action == ActionViewFinancials && scope.Restricted() && !scope.Role.IsAdministrative() {
		return false
	}
	ok, err := p.enforcer.Enforce(string(scope.Role), string(resource), string(action))
	return err == nil && ok
}

// Authorize is Permit returning Forbidden on denial
func (p *Policy) Authorize(scope *Scope, action Action, resource Resource) error {
	if !p.Permit(scope, action, resource) {
		return apperror.Forbidden(fmt.Sprintf("role %s may not %s %s", scope.Role, action, resource))
	}
	return nil
}

// Visibility is what the DTO builder may reveal to a scope
type Visibility struct {
	Financials bool
	Items      bool
	Payments   bool
	History    bool
	Costs      bool
}

// VisibilityFor evaluates every read grant the DTO boundary needs
func (p *Policy) VisibilityFor(scope *Scope) Visibility {
	return Visibility{
		Financials: p.Permit(scope, ActionViewFinancials, ResourceOrder),
		Items:      p.Permit(scope, ActionRead, ResourceOrderItem),
		Payments:   p.Permit(scope, ActionRead, ResourceOrderPayment),
		History:    p.Permit(scope, ActionRead, ResourceStatusHistory),
		Costs:      p.Permit(scope, ActionViewCosts, ResourceProduct),
	}
}

// MayCompensate reports whether the scope may register negative payments
func (p *Policy) MayCompensate(scope *Scope) bool {
	return scope != nil && scope.Role.IsAdministrative() &&
		p.Permit(scope, ActionRegisterPayment, ResourceOrder)
}
