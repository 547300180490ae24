// Package money holds the pure derivations of order amounts. Every function
// keeps intermediate products exact and rounds to cents with banker's
// rounding only once, at the end of its own derivation.
package money

import (
	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits of every stored amount
const Places = 2

var hundred = decimal.NewFromInt(100)

// PaymentStatus is derived from paid amount against total
type PaymentStatus string

const (
	Unpaid  PaymentStatus = "unpaid"
	Partial PaymentStatus = "partial"
	Paid    PaymentStatus = "paid"
)

// Round2 rounds half to even at two decimals
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Places)
}

// LineSubtotal returns round2(q * unit * (1 - discount/100))
func LineSubtotal(quantity int, unitPrice, discountPct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(discountPct.Div(hundred))
	return Round2(unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Mul(factor))
}

// OrderSubtotal sums already rounded line subtotals
func OrderSubtotal(lines []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l)
	}
	return Round2(sum)
}

// Tax returns round2(subtotal * rate)
func Tax(subtotal, rate decimal.Decimal) decimal.Decimal {
	return Round2(subtotal.Mul(rate))
}

// Total returns subtotal + tax
func Total(subtotal, tax decimal.Decimal) decimal.Decimal {
	return Round2(subtotal.Add(tax))
}

// Balance returns max(total - paid, 0)
func Balance(total, paid decimal.Decimal) decimal.Decimal {
	b := total.Sub(paid)
	if b.IsNegative() {
		return decimal.Zero.Round(Places)
	}
	return Round2(b)
}

// StatusFor derives the payment status. An order whose total is zero and
// that has no payments stays unpaid.
func StatusFor(total, paid decimal.Decimal) PaymentStatus {
	switch {
	case paid.IsZero():
		return Unpaid
	case paid.GreaterThanOrEqual(total):
		return Paid
	default:
		return Partial
	}
}

// Totals is the full set of derived order amounts
type Totals struct {
	Subtotal      decimal.Decimal
	Tax           decimal.Decimal
	Total         decimal.Decimal
	Paid          decimal.Decimal
	Balance       decimal.Decimal
	PaymentStatus PaymentStatus
}

// Compute derives every order amount from the line subtotals, the tax rate
// and the payments registered so far.
func Compute(lines []decimal.Decimal, rate decimal.Decimal, payments []decimal.Decimal) Totals {
	subtotal := OrderSubtotal(lines)
	tax := Tax(subtotal, rate)
	total := Total(subtotal, tax)
	paid := Sum(payments)
	return Totals{
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
		Paid:          paid,
		Balance:       Balance(total, paid),
		PaymentStatus: StatusFor(total, paid),
	}
}

// Sum adds amounts and rounds the result to cents
func Sum(amounts []decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, a := range amounts {
		sum = sum.Add(a)
	}
	return Round2(sum)
}

// Format renders an amount with exactly two decimals
func Format(d decimal.Decimal) string {
	return d.StringFixedBank(Places)
}
