package order

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/arte-ideas/internal/money"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire and storage layout of calendar dates
const DateLayout = "2006-01-02"

// DocumentType is the document an order materializes as
type DocumentType string

const (
	DocumentProforma DocumentType = "proforma"
	DocumentSaleNote DocumentType = "sale-note"
	DocumentContract DocumentType = "contract"
)

// DocumentTypes lists every document type
var DocumentTypes = []DocumentType{DocumentProforma, DocumentSaleNote, DocumentContract}

func (d DocumentType) valid() bool {
	return d == DocumentProforma || d == DocumentSaleNote || d == DocumentContract
}

// ClientKind mirrors the client type at the moment the order was taken
type ClientKind string

const (
	ClientIndividual ClientKind = "individual"
	ClientSchool     ClientKind = "school"
	ClientCompany    ClientKind = "company"
)

func (k ClientKind) valid() bool {
	return k == ClientIndividual || k == ClientSchool || k == ClientCompany
}

// ScheduledDate is one planned photo session or delivery
type ScheduledDate struct {
	Date string `json:"date"`
	Time string `json:"time,omitempty"`
	Note string `json:"note,omitempty"`
}

// Schedule groups the planned dates of an order
type Schedule struct {
	PhotoSessions []ScheduledDate `json:"photo_sessions"`
	Deliveries    []ScheduledDate `json:"deliveries"`
}

func (s Schedule) validate(fields apperror.FieldErrors) {
	check := func(prefix string, dates []ScheduledDate) {
		for i, d := range dates {
			if _, err := time.Parse(DateLayout, d.Date); err != nil {
				fields.Add(fmt.Sprintf("schedule.%s[%d].date", prefix, i), "must be a YYYY-MM-DD date")
			}
			if d.Time != "" {
				if _, err := time.Parse("15:04", d.Time); err != nil {
					fields.Add(fmt.Sprintf("schedule.%s[%d].time", prefix, i), "must be HH:MM")
				}
			}
		}
	}
	check("photo_sessions", s.PhotoSessions)
	check("deliveries", s.Deliveries)
}

// Order is the header of a sale together with the rows it owns
type Order struct {
	ID               string              `json:"id"`
	TenantID         string              `json:"tenant_id"`
	OrderNumber      string              `json:"order_number"`
	ClientID         string              `json:"client_id"`
	DocumentType     DocumentType        `json:"document_type"`
	ClientKind       ClientKind          `json:"client_kind"`
	SchoolLevel      string              `json:"school_level,omitempty"`
	Grade            string              `json:"grade,omitempty"`
	Section          string              `json:"section,omitempty"`
	OrderDate        time.Time           `json:"order_date"`
	StartDate        *time.Time          `json:"start_date,omitempty"`
	DeliveryDate     time.Time           `json:"delivery_date"`
	Subtotal         decimal.Decimal     `json:"subtotal"`
	Tax              decimal.Decimal     `json:"tax"`
	Total            decimal.Decimal     `json:"total"`
	PaidAmount       decimal.Decimal     `json:"paid_amount"`
	Balance          decimal.Decimal     `json:"balance"`
	PaymentStatus    money.PaymentStatus `json:"payment_status"`
	Status           Status              `json:"status"`
	AffectsInventory bool                `json:"affects_inventory"`
	ContractRef      string              `json:"contract_ref,omitempty"`
	Schedule         Schedule            `json:"schedule"`
	Notes            string              `json:"notes,omitempty"`
	CreatedBy        string              `json:"created_by"`
	CreatedAt        time.Time           `json:"created_at"`
	UpdatedAt        time.Time           `json:"updated_at"`

	Items    []*Item    `json:"items,omitempty"`
	Payments []*Payment `json:"payments,omitempty"`

	// Filled by listings that do not load the rows themselves
	ItemsCount    int `json:"items_count"`
	PaymentsCount int `json:"payments_count"`
}

// NewOrder builds an order header. Items and payments are attached by the
// caller before Recalculate and Validate run.
func NewOrder(tenantID, number, clientID string, doc DocumentType, kind ClientKind, status Status, createdBy string, now time.Time) *Order {
	return &Order{
		ID:               uuid.New().String(),
		TenantID:         tenantID,
		OrderNumber:      strings.TrimSpace(number),
		ClientID:         clientID,
		DocumentType:     doc,
		ClientKind:       kind,
		OrderDate:        Day(now),
		Status:           status,
		AffectsInventory: doc == DocumentSaleNote,
		PaymentStatus:    money.Unpaid,
		Schedule:         Schedule{PhotoSessions: []ScheduledDate{}, Deliveries: []ScheduledDate{}},
		CreatedBy:        createdBy,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// Day truncates t to midnight UTC
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Validate checks the header invariants
func (o *Order) Validate() error {
	fields := apperror.FieldErrors{}
	if o.TenantID == "" {
		fields.Add("tenant_id", "is required")
	}
	if o.OrderNumber == "" {
		fields.Add("order_number", "is required")
	}
	if o.ClientID == "" {
		fields.Add("client_id", "is required")
	}
	if !o.DocumentType.valid() {
		fields.Add("document_type", "must be proforma, sale-note or contract")
	}
	if !o.ClientKind.valid() {
		fields.Add("client_kind", "must be individual, school or company")
	}
	if o.ClientKind == ClientSchool {
		if strings.TrimSpace(o.SchoolLevel) == "" {
			fields.Add("school_level", "is required for school orders")
		}
		if strings.TrimSpace(o.Grade) == "" {
			fields.Add("grade", "is required for school orders")
		}
		if strings.TrimSpace(o.Section) == "" {
			fields.Add("section", "is required for school orders")
		}
	}
	hasContract := strings.TrimSpace(o.ContractRef) != ""
	if o.DocumentType == DocumentContract && !hasContract {
		fields.Add("contract_ref", "is required for contract documents")
	}
	if o.DocumentType != DocumentContract && hasContract {
		fields.Add("contract_ref", "is only allowed on contract documents")
	}
	if o.DeliveryDate.IsZero() {
		fields.Add("delivery_date", "is required")
	}
	if o.StartDate != nil && !o.DeliveryDate.IsZero() && o.StartDate.After(o.DeliveryDate) {
		fields.Add("start_date", "must not be after delivery_date")
	}
	if o.AffectsInventory != (o.DocumentType == DocumentSaleNote) {
		fields.Add("affects_inventory", "must be set exactly for sale-note documents")
	}
	o.Schedule.validate(fields)
	return fields.Err()
}

// Recalculate derives item subtotals and every order amount. It fails with
// Overpayment when the registered payments exceed the new total, and with
// Validation when a compensation would leave the paid amount negative.
func (o *Order) Recalculate(rate decimal.Decimal) error {
	lines := make([]decimal.Decimal, 0, len(o.Items))
	for _, it := range o.Items {
		it.Recalculate()
		lines = append(lines, it.Subtotal)
	}
	amounts := make([]decimal.Decimal, 0, len(o.Payments))
	for _, p := range o.Payments {
		amounts = append(amounts, p.Amount)
	}

	t := money.Compute(lines, rate, amounts)
	if t.Paid.IsNegative() {
		return apperror.Validation(map[string]string{"amount": "payments of the order would sum below zero"})
	}
	if t.Paid.GreaterThan(t.Total) {
		return apperror.Overpayment(fmt.Sprintf("paid amount %s would exceed total %s", money.Format(t.Paid), money.Format(t.Total)))
	}

	o.Subtotal = t.Subtotal
	o.Tax = t.Tax
	o.Total = t.Total
	o.PaidAmount = t.Paid
	o.Balance = t.Balance
	o.PaymentStatus = t.PaymentStatus
	o.ItemsCount = len(o.Items)
	o.PaymentsCount = len(o.Payments)
	return nil
}

// IsOverdue reports whether the overdue overlay applies on the given day
func (o *Order) IsOverdue(today time.Time) bool {
	return o.Status.IsOpen() && Day(today).After(o.DeliveryDate)
}

// EffectiveStatus is the stored status with the overdue overlay applied
func (o *Order) EffectiveStatus(today time.Time) Status {
	if o.IsOverdue(today) {
		return StatusOverdue
	}
	return o.Status
}

// DaysUntilDelivery is negative once the delivery date has passed
func (o *Order) DaysUntilDelivery(today time.Time) int {
	return int(o.DeliveryDate.Sub(Day(today)).Hours() / 24)
}

// ItemsEditable reports whether lines may still be added, changed or removed
func (o *Order) ItemsEditable() bool {
	return o.Status == StatusDraft || o.Status == StatusPending || o.Status == StatusConfirmed
}

// FindItem returns the item with the given id, or nil
func (o *Order) FindItem(id string) *Item {
	for _, it := range o.Items {
		if it.ID == id {
			return it
		}
	}
	return nil
}

// RemoveItem detaches the item with the given id
func (o *Order) RemoveItem(id string) bool {
	for i, it := range o.Items {
		if it.ID == id {
			o.Items = append(o.Items[:i], o.Items[i+1:]...)
			return true
		}
	}
	return false
}

// HeaderPatch carries the optional header changes of an update. A nil
// field is left unchanged.
type HeaderPatch struct {
	ClientID     *string
	ClientKind   *ClientKind
	DocumentType *DocumentType
	SchoolLevel  *string
	Grade        *string
	Section      *string
	OrderDate    *time.Time
	StartDate    *time.Time
	DeliveryDate *time.Time
	ContractRef  *string
	Schedule     *Schedule
	Notes        *string
}

// lateFields may change once an order is confirmed
func (p HeaderPatch) onlyLateFields() bool {
	return p.ClientID == nil && p.ClientKind == nil && p.SchoolLevel == nil &&
		p.Grade == nil && p.Section == nil && p.OrderDate == nil &&
		p.StartDate == nil && p.ContractRef == nil
}

// ApplyHeader applies the patch honoring what the current status allows:
// draft and pending accept every field, confirmed and in-process accept only
// delivery date, schedule and notes, terminal states accept nothing. The
// document type never changes after creation.
func (o *Order) ApplyHeader(p HeaderPatch, now time.Time) error {
	if p.DocumentType != nil && *p.DocumentType != o.DocumentType {
		return apperror.Validation(map[string]string{"document_type": "cannot change after creation"})
	}
	if o.Status.IsTerminal() {
		return apperror.IllegalTransition(fmt.Sprintf("order is %s; the header can no longer change", o.Status))
	}
	if (o.Status == StatusConfirmed || o.Status == StatusInProcess) && !p.onlyLateFields() {
		return apperror.IllegalTransition(fmt.Sprintf("order is %s; only delivery date, schedule and notes can change", o.Status))
	}

	if p.ClientID != nil {
		o.ClientID = *p.ClientID
	}
	if p.ClientKind != nil {
		o.ClientKind = *p.ClientKind
	}
	if p.SchoolLevel != nil {
		o.SchoolLevel = strings.TrimSpace(*p.SchoolLevel)
	}
	if p.Grade != nil {
		o.Grade = strings.TrimSpace(*p.Grade)
	}
	if p.Section != nil {
		o.Section = strings.TrimSpace(*p.Section)
	}
	if p.OrderDate != nil {
		o.OrderDate = Day(*p.OrderDate)
	}
	if p.StartDate != nil {
		d := Day(*p.StartDate)
		o.StartDate = &d
	}
	if p.DeliveryDate != nil {
		o.DeliveryDate = Day(*p.DeliveryDate)
	}
	if p.ContractRef != nil {
		o.ContractRef = strings.TrimSpace(*p.ContractRef)
	}
	if p.Schedule != nil {
		o.Schedule = *p.Schedule
	}
	if p.Notes != nil {
		o.Notes = *p.Notes
	}
	o.UpdatedAt = now
	return o.Validate()
}
