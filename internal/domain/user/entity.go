package user

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUnknownRole       = errors.New("unknown role")
	ErrLegacyRole        = errors.New("legacy role literal is no longer accepted")
	ErrTenantRequired    = errors.New("tenant is required unless role is super-admin")
	ErrSuperAdminTenant  = errors.New("super-admin must not belong to a tenant")
	ErrEmptyLogin        = errors.New("login must not be empty")
	ErrPasswordTooShort  = errors.New("password must have at least 8 characters")
	ErrInvalidCredential = errors.New("invalid credentials")
)

// Role is the function an operator performs inside a studio
type Role string

const (
	RoleSuperAdmin Role = "super-admin"
	RoleAdmin      Role = "admin"
	RoleSales      Role = "sales"
	RoleProduction Role = "production"
	RoleOperator   Role = "operator"
)

// Roles lists every accepted role
var Roles = []Role{RoleSuperAdmin, RoleAdmin, RoleSales, RoleProduction, RoleOperator}

// legacyRoles are literals from earlier releases; they are rejected on input
var legacyRoles = map[string]struct{}{
	"employee":     {},
	"photographer": {},
	"assistant":    {},
	"ventas":       {},
	"produccion":   {},
	"operario":     {},
}

// ParseRole converts a literal into a Role, rejecting legacy literals
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	if _, legacy := legacyRoles[strings.ToLower(s)]; legacy {
		return "", fmt.Errorf("%w: %q", ErrLegacyRole, s)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// IsAdministrative reports whether the role manages the whole tenant
func (r Role) IsAdministrative() bool {
	return r == RoleSuperAdmin || r == RoleAdmin
}

// User is an operator of the back-office
type User struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id,omitempty"`
	Login     string    `json:"login"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser creates an active user after checking the role/tenant invariant
func NewUser(tenantID, login, email string, role Role) (*User, error) {
	now := time.Now().UTC()
	u := &User{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Login:     strings.TrimSpace(login),
		Email:     strings.TrimSpace(email),
		Role:      role,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := u.Validate(); err != nil {
		return nil, err
	}
	return u, nil
}

// Validate enforces role != super-admin => tenant present
func (u *User) Validate() error {
	if u.Login == "" {
		return ErrEmptyLogin
	}
	if _, err := ParseRole(string(u.Role)); err != nil {
		return err
	}
	if u.Role == RoleSuperAdmin && u.TenantID != "" {
		return ErrSuperAdminTenant
	}
	if u.Role != RoleSuperAdmin && u.TenantID == "" {
		return ErrTenantRequired
	}
	return nil
}

// SetPassword stores the bcrypt hash of password
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

// CheckPassword compares password against the stored hash
func (u *User) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) == nil
}
