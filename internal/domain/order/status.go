package order

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hugohenrick/arte-ideas/internal/money"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
)

var (
	ErrUnknownStatus = errors.New("unknown order status")
	ErrLegacyStatus  = errors.New("legacy status literal is no longer accepted")
)

// Status is the stored lifecycle state of an order. StatusOverdue is never
// stored; it is an overlay computed on read.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusInProcess Status = "in-process"
	StatusCompleted Status = "completed"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every literal accepted on input, overlay included
var Statuses = []Status{
	StatusDraft, StatusPending, StatusConfirmed, StatusInProcess,
	StatusCompleted, StatusOverdue, StatusCancelled,
}

// StoredStatuses lists the states a row can hold
var StoredStatuses = []Status{
	StatusDraft, StatusPending, StatusConfirmed, StatusInProcess,
	StatusCompleted, StatusCancelled,
}

// OpenStatuses are the states the overdue overlay applies to
var OpenStatuses = []Status{StatusPending, StatusConfirmed, StatusInProcess}

var legacyStatuses = map[string]struct{}{
	"borrador":   {},
	"pendiente":  {},
	"confirmado": {},
	"en_proceso": {},
	"completado": {},
	"cancelado":  {},
	"vencido":    {},
}

var transitions = map[Status][]Status{
	StatusDraft:     {StatusPending, StatusCancelled},
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusInProcess, StatusCancelled},
	StatusInProcess: {StatusCompleted, StatusCancelled},
}

// ParseStatus converts a literal into a Status, rejecting legacy literals
func ParseStatus(s string) (Status, error) {
	s = strings.TrimSpace(s)
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	if _, legacy := legacyStatuses[strings.ToLower(s)]; legacy {
		return "", fmt.Errorf("%w: %q", ErrLegacyStatus, s)
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// IsTerminal reports whether no transition may leave the status
func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// IsOpen reports whether the overdue overlay may apply
func (s Status) IsOpen() bool {
	return s == StatusPending || s == StatusConfirmed || s == StatusInProcess
}

// IsInitial reports whether an order may be created in the status
func (s Status) IsInitial() bool {
	return s == StatusDraft || s == StatusPending
}

// CanTransition reports whether the edge from -> to exists
func CanTransition(from, to Status) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// StatusHistory is one append-only entry of the order status log. A nil
// PreviousStatus marks the creation entry.
type StatusHistory struct {
	ID             string    `json:"id"`
	TenantID       string    `json:"tenant_id"`
	OrderID        string    `json:"order_id"`
	PreviousStatus *Status   `json:"previous_status"`
	NewStatus      Status    `json:"new_status"`
	Reason         string    `json:"reason,omitempty"`
	ActorID        string    `json:"actor_id"`
	CreatedAt      time.Time `json:"created_at"`
}

func newHistory(o *Order, previous *Status, reason, actorID string, at time.Time) *StatusHistory {
	return &StatusHistory{
		ID:             uuid.New().String(),
		TenantID:       o.TenantID,
		OrderID:        o.ID,
		PreviousStatus: previous,
		NewStatus:      o.Status,
		Reason:         reason,
		ActorID:        actorID,
		CreatedAt:      at,
	}
}

// Transition moves the order to the target status and returns the history
// entry to persist. Moving to the current status is a no-op and returns nil.
func (o *Order) Transition(to Status, reason, actorID string, at time.Time) (*StatusHistory, error) {
	if to == o.Status {
		return nil, nil
	}
	if to == StatusOverdue {
		return nil, apperror.IllegalTransition("overdue is computed from the delivery date and cannot be set")
	}
	if o.Status.IsTerminal() {
		return nil, apperror.IllegalTransition(fmt.Sprintf("order is %s; no further transitions are allowed", o.Status))
	}
	// an unpaid order reports the balance before the missing steps
	if to == StatusCompleted && o.PaymentStatus != money.Paid {
		return nil, apperror.IllegalTransition("not fully paid")
	}
	if !CanTransition(o.Status, to) {
		return nil, apperror.IllegalTransition(fmt.Sprintf("cannot move order from %s to %s", o.Status, to))
	}

	previous := o.Status
	o.Status = to
	o.UpdatedAt = at
	return newHistory(o, &previous, reason, actorID, at), nil
}

// CreationHistory returns the entry recording the initial status
func (o *Order) CreationHistory(actorID string, at time.Time) *StatusHistory {
	return newHistory(o, nil, "order created", actorID, at)
}
