package orders

import (
	"testing"

	"github.com/hugohenrick/arte-ideas/internal/access"
	"github.com/hugohenrick/arte-ideas/internal/domain/order"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedactMatchesDirectRendering(t *testing.T) {
	o := order.NewOrder("tenant-1", "ORD-2026-0001", "client-1", order.DocumentSaleNote, order.ClientIndividual,
		order.StatusPending, "user-1", fixedNow)
	o.DeliveryDate = order.Day(fixedNow.AddDate(0, 0, 3))
	o.Items = append(o.Items, order.NewItem(o, "Photo book A4", "", "PB-A4", 2, dec("150.00"), dec("0"), "", fixedNow))
	o.Payments = append(o.Payments, order.NewPayment(o, fixedNow, dec("100.00"), order.MethodCash, "", "", "user-1", fixedNow))
	require.NoError(t, o.Recalculate(dec("0.18")))

	today := order.Day(fixedNow)
	full := buildOrderDTO(o, fullVisibility, today)

	tests := []struct {
		name string
		vis  access.Visibility
	}{
		{"everything", fullVisibility},
		{"no financials", access.Visibility{Items: true, Payments: true}},
		{"no items", access.Visibility{Financials: true, Payments: true}},
		{"no payments", access.Visibility{Financials: true, Items: true}},
		{"nothing", access.Visibility{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, buildOrderDTO(o, tt.vis, today), full.redact(tt.vis))
		})
	}

	// redacting a copy leaves the stored form intact
	_ = full.redact(access.Visibility{Items: true})
	require.Len(t, full.Items, 1)
	assert.NotNil(t, full.Items[0].UnitPrice)
}
