package tenant

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName       = errors.New("name must not be empty")
	ErrInvalidSlug     = errors.New("slug must be lowercase letters, digits and dashes")
	ErrInvalidCurrency = errors.New("currency must be one of PEN, USD, EUR")
	ErrInvalidLocation = errors.New("location must be full-access or restricted")
	ErrInvalidTaxRate  = errors.New("tax rate must be at least 0 and below 1")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Currency is the ISO code every amount of the tenant is expressed in
type Currency string

const (
	CurrencyPEN Currency = "PEN"
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
)

// Location classifies what a studio may see of its own financial data
type Location string

const (
	LocationFullAccess Location = "full-access"
	LocationRestricted Location = "restricted"
)

// Tenant is a studio whose data is isolated from every other studio. A nil
// TaxRate means the platform rate applies.
type Tenant struct {
	ID           string           `json:"id"`
	Slug         string           `json:"slug"`
	Name         string           `json:"name"`
	BusinessName string           `json:"business_name"`
	Address      string           `json:"address"`
	Phone        string           `json:"phone"`
	Email        string           `json:"email"`
	TaxID        string           `json:"tax_id"`
	Currency     Currency         `json:"currency"`
	Location     Location         `json:"location"`
	TaxRate      *decimal.Decimal `json:"tax_rate,omitempty"`
	Active       bool             `json:"active"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewTenant creates an active tenant with PEN currency and full access
func NewTenant(slug, name string) (*Tenant, error) {
	now := time.Now().UTC()
	t := &Tenant{
		ID:        uuid.New().String(),
		Slug:      strings.TrimSpace(slug),
		Name:      strings.TrimSpace(name),
		Currency:  CurrencyPEN,
		Location:  LocationFullAccess,
		Active:    true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// Validate checks the tenant attributes and reports every failing field
func (t *Tenant) Validate() error {
	fields := apperror.FieldErrors{}
	if t.Name == "" {
		fields.Add("name", ErrEmptyName.Error())
	}
	if !slugPattern.MatchString(t.Slug) {
		fields.Add("slug", ErrInvalidSlug.Error())
	}
	switch t.Currency {
	case CurrencyPEN, CurrencyUSD, CurrencyEUR:
	default:
		fields.Add("currency", ErrInvalidCurrency.Error())
	}
	switch t.Location {
	case LocationFullAccess, LocationRestricted:
	default:
		fields.Add("location", ErrInvalidLocation.Error())
	}
	if t.TaxRate != nil && (t.TaxRate.IsNegative() || t.TaxRate.GreaterThanOrEqual(decimal.NewFromInt(1))) {
		fields.Add("tax_rate", ErrInvalidTaxRate.Error())
	}
	return fields.Err()
}

// TaxRateOr returns the tenant's own tax rate, or fallback when it has none
func (t *Tenant) TaxRateOr(fallback decimal.Decimal) decimal.Decimal {
	if t == nil || t.TaxRate == nil {
		return fallback
	}
	return *t.TaxRate
}

// IsRestricted reports whether financial data is hidden from non-admins
func (t *Tenant) IsRestricted() bool {
	return t.Location == LocationRestricted
}

// Deactivate blocks every operation scoped to the tenant
func (t *Tenant) Deactivate() {
	t.Active = false
	t.UpdatedAt = time.Now().UTC()
}

// Activate re-enables the tenant
func (t *Tenant) Activate() {
	t.Active = true
	t.UpdatedAt = time.Now().UTC()
}
