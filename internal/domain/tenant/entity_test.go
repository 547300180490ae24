package tenant

import (
	"testing"

	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTenant(t *testing.T) {
	tn, err := NewTenant("estudio-lima", "Estudio Lima")
	require.NoError(t, err)
	assert.True(t, tn.Active)
	assert.Equal(t, CurrencyPEN, tn.Currency)
	assert.False(t, tn.IsRestricted())
	assert.NotEmpty(t, tn.ID)
}

func TestTenantValidate(t *testing.T) {
	_, err := NewTenant("Estudio Lima", "")
	require.Error(t, err)
	appErr := apperror.From(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "slug")
	assert.Contains(t, appErr.Fields, "name")

	tn, err := NewTenant("cusco", "Cusco")
	require.NoError(t, err)
	tn.Currency = "BRL"
	tn.Location = "partial"
	appErr = apperror.From(tn.Validate())
	assert.Contains(t, appErr.Fields, "currency")
	assert.Contains(t, appErr.Fields, "location")
}

func TestTenantTaxRate(t *testing.T) {
	platform := decimal.RequireFromString("0.18")
	tn, err := NewTenant("trujillo", "Trujillo")
	require.NoError(t, err)
	assert.True(t, platform.Equal(tn.TaxRateOr(platform)))

	own := decimal.RequireFromString("0.10")
	tn.TaxRate = &own
	require.NoError(t, tn.Validate())
	assert.True(t, own.Equal(tn.TaxRateOr(platform)))

	tooHigh := decimal.NewFromInt(1)
	tn.TaxRate = &tooHigh
	assert.Contains(t, apperror.From(tn.Validate()).Fields, "tax_rate")
}

func TestDeactivate(t *testing.T) {
	tn, err := NewTenant("arequipa", "Arequipa")
	require.NoError(t, err)
	tn.Deactivate()
	assert.False(t, tn.Active)
	tn.Activate()
	assert.True(t, tn.Active)
}
