package dto

import (
	"strings"
	"time"

	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/shopspring/decimal"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code      string                  `json:"code"`
	Message   string                  `json:"message"`
	Fields    map[string]string       `json:"fields,omitempty"`
	Shortage  *apperror.StockShortage `json:"shortage,omitempty"`
	RequestID string                  `json:"request_id,omitempty"`
}

// SuccessResponse wraps the payload of a successful request
type SuccessResponse struct {
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
}

// NewErrorResponse renders an application error
func NewErrorResponse(err *apperror.Error, requestID string) ErrorResponse {
	return ErrorResponse{
		Code:      string(err.Kind),
		Message:   err.Message,
		Fields:    err.Fields,
		Shortage:  err.Shortage,
		RequestID: requestID,
	}
}

// NewSuccessResponse wraps data
func NewSuccessResponse(message string, data interface{}) SuccessResponse {
	return SuccessResponse{Message: message, Data: data}
}

// Pagination is the limit/offset window of a listing
type Pagination struct {
	Limit  int `form:"limit"`
	Offset int `form:"offset"`
}

// fieldParser accumulates conversion failures of a request body
type fieldParser struct {
	fields apperror.FieldErrors
}

func newParser() *fieldParser {
	return &fieldParser{fields: apperror.FieldErrors{}}
}

func (p *fieldParser) err() error {
	return p.fields.Err()
}

// decimal parses a money or percentage string. Empty means zero.
func (p *fieldParser) decimal(field, s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		p.fields.Add(field, "must be a decimal number")
		return decimal.Zero
	}
	return d
}

// optDecimal parses s when present
func (p *fieldParser) optDecimal(field string, s *string) *decimal.Decimal {
	if s == nil {
		return nil
	}
	d := p.decimal(field, *s)
	return &d
}

// date parses a YYYY-MM-DD string. Empty means the zero time.
func (p *fieldParser) date(field, s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(order.DateLayout, s)
	if err != nil {
		p.fields.Add(field, "must be a date formatted as YYYY-MM-DD")
		return time.Time{}
	}
	return t
}

// optDate parses s when present and not empty
func (p *fieldParser) optDate(field string, s *string) *time.Time {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	t := p.date(field, *s)
	if t.IsZero() {
		return nil
	}
	return &t
}

// status parses a status literal, rejecting legacy literals
func (p *fieldParser) status(field, s string) order.Status {
	if strings.TrimSpace(s) == "" {
		return ""
	}
	st, err := order.ParseStatus(s)
	if err != nil {
		p.fields.Add(field, err.Error())
		return ""
	}
	return st
}
