// Package apperror defines the typed errors surfaced by the order core.
// Infrastructure failures never leave the service layer unwrapped: they are
// converted to KindInternal (or KindTimeout) by From.
package apperror

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Kind identifies the category of an application error
type Kind string

const (
	KindUnauthenticated   Kind = "UNAUTHENTICATED"
	KindForbidden         Kind = "FORBIDDEN"
	KindTenantMismatch    Kind = "TENANT_MISMATCH"
	KindNotFound          Kind = "NOT_FOUND"
	KindValidation        Kind = "VALIDATION_ERROR"
	KindIllegalTransition Kind = "ILLEGAL_TRANSITION"
	KindOverpayment       Kind = "OVERPAYMENT"
	KindInsufficientStock Kind = "INSUFFICIENT_STOCK"
	KindImmutableRecord   Kind = "IMMUTABLE_RECORD"
	KindConflict          Kind = "CONFLICT"
	KindTimeout           Kind = "TIMEOUT"
	KindInternal          Kind = "INTERNAL_ERROR"
)

// StockShortage describes the product that blocked a sale
type StockShortage struct {
	Product   string `json:"product"`
	Requested int    `json:"requested"`
	Available int    `json:"available"`
}

// Error is the application error carried across layers
type Error struct {
	Kind     Kind              `json:"code"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Shortage *StockShortage    `json:"shortage,omitempty"`
	Err      error             `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (%v)", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus returns the HTTP status code for the error kind
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindForbidden, KindTenantMismatch:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation:
		return http.StatusBadRequest
	case KindIllegalTransition, KindOverpayment, KindInsufficientStock, KindImmutableRecord:
		return http.StatusUnprocessableEntity
	case KindConflict:
		return http.StatusConflict
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// New creates an error of the given kind
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind keeping the cause
func Wrap(err error, kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func Unauthenticated(message string) *Error {
	return New(KindUnauthenticated, message)
}

func Forbidden(message string) *Error {
	return New(KindForbidden, message)
}

func TenantMismatch() *Error {
	return New(KindTenantMismatch, "principal tenant does not match the requested tenant")
}

// NotFound reports a resource that is not visible in the caller's tenant
func NotFound(resource string) *Error {
	return New(KindNotFound, resource+" not found")
}

func IllegalTransition(message string) *Error {
	return New(KindIllegalTransition, message)
}

func Overpayment(message string) *Error {
	return New(KindOverpayment, message)
}

func InsufficientStock(product string, requested, available int) *Error {
	return &Error{
		Kind:     KindInsufficientStock,
		Message:  fmt.Sprintf("insufficient stock for %s: requested %d, available %d", product, requested, available),
		Shortage: &StockShortage{Product: product, Requested: requested, Available: available},
	}
}

func ImmutableRecord(message string) *Error {
	return New(KindImmutableRecord, message)
}

func Conflict(message string) *Error {
	return New(KindConflict, message)
}

func Timeout(err error) *Error {
	return Wrap(err, KindTimeout, "request deadline exceeded")
}

func Internal(err error) *Error {
	return Wrap(err, KindInternal, "internal server error")
}

// Validation builds a validation error from per-field messages
func Validation(fields map[string]string) *Error {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Error{
		Kind:    KindValidation,
		Message: "invalid fields: " + strings.Join(keys, ", "),
		Fields:  fields,
	}
}

// FieldErrors accumulates per-field validation messages
type FieldErrors map[string]string

// Add records the first message reported for a field
func (f FieldErrors) Add(field, message string) {
	if _, exists := f[field]; !exists {
		f[field] = message
	}
}

// Merge copies messages from other, prefixing field names
func (f FieldErrors) Merge(prefix string, other FieldErrors) {
	for k, v := range other {
		f.Add(prefix+k, v)
	}
}

// Err returns nil when no field failed
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return Validation(f)
}

// Is reports whether err carries the given kind
func Is(err error, kind Kind) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind == kind
	}
	return false
}

// From converts any error into an *Error
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(err)
	}
	return Internal(err)
}
