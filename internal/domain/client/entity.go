package client

import (
	"net/mail"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
)

var (
	dniPattern = regexp.MustCompile(`^\d{8}$`)
	rucPattern = regexp.MustCompile(`^\d{11}$`)
)

// Type classifies a client; it also drives which tax id is required
type Type string

const (
	TypeIndividual Type = "individual"
	TypeSchool     Type = "school"
	TypeCompany    Type = "company"
)

// ParseType validates a client type literal
func ParseType(s string) (Type, bool) {
	switch t := Type(strings.TrimSpace(s)); t {
	case TypeIndividual, TypeSchool, TypeCompany:
		return t, true
	}
	return "", false
}

// Client is a customer of a tenant
type Client struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id"`
	Type      Type      `json:"type"`
	FullName  string    `json:"full_name"`
	DNI       string    `json:"dni,omitempty"`
	RUC       string    `json:"ruc,omitempty"`
	Phone     string    `json:"phone"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewClient creates a validated client for the tenant
func NewClient(tenantID string, typ Type, fullName, dni, ruc, phone, email, address string) (*Client, error) {
	now := time.Now().UTC()
	c := &Client{
		ID:        uuid.New().String(),
		TenantID:  tenantID,
		Type:      typ,
		FullName:  strings.TrimSpace(fullName),
		DNI:       strings.TrimSpace(dni),
		RUC:       strings.TrimSpace(ruc),
		Phone:     strings.TrimSpace(phone),
		Email:     strings.TrimSpace(email),
		Address:   strings.TrimSpace(address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every field and the DNI/RUC rule of the client type
func (c *Client) Validate() error {
	fields := apperror.FieldErrors{}
	if c.TenantID == "" {
		fields.Add("tenant_id", "is required")
	}
	if c.FullName == "" {
		fields.Add("full_name", "is required")
	}
	if c.Phone == "" {
		fields.Add("phone", "is required")
	}
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			fields.Add("email", "is not a valid address")
		}
	}

	switch c.Type {
	case TypeIndividual:
		if !dniPattern.MatchString(c.DNI) {
			fields.Add("dni", "must have exactly 8 digits for individual clients")
		}
		if c.RUC != "" {
			fields.Add("ruc", "must be empty for individual clients")
		}
	case TypeSchool, TypeCompany:
		if !rucPattern.MatchString(c.RUC) {
			fields.Add("ruc", "must have exactly 11 digits for school and company clients")
		}
		if c.DNI != "" {
			fields.Add("dni", "must be empty for school and company clients")
		}
	default:
		fields.Add("type", "must be individual, school or company")
	}

	return fields.Err()
}

// Patch holds the client fields an update may change
type Patch struct {
	FullName *string
	Phone    *string
	Email    *string
	Address  *string
}

// Apply changes the client and revalidates it
func (c *Client) Apply(p Patch) error {
	if p.FullName != nil {
		c.FullName = strings.TrimSpace(*p.FullName)
	}
	if p.Phone != nil {
		c.Phone = strings.TrimSpace(*p.Phone)
	}
	if p.Email != nil {
		c.Email = strings.TrimSpace(*p.Email)
	}
	if p.Address != nil {
		c.Address = strings.TrimSpace(*p.Address)
	}
	c.UpdatedAt = time.Now().UTC()
	return c.Validate()
}

// TaxID returns whichever tax identifier the client carries
func (c *Client) TaxID() string {
	if c.DNI != "" {
		return c.DNI
	}
	return c.RUC
}
