package product

import (
	"testing"

	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	p, err := NewProduct("t-1", " Marco 20x30 ", "MC-2030", "", 10, decimal.RequireFromString("35.50"), decimal.RequireFromString("60"))
	require.NoError(t, err)
	assert.Equal(t, "Marco 20x30", p.Name)
	assert.Equal(t, 10, p.Stock)
}

func TestProductValidate(t *testing.T) {
	_, err := NewProduct("t-1", "", "", "", -1, decimal.NewFromInt(-1), decimal.Zero)
	require.Error(t, err)
	appErr := apperror.From(err)
	assert.Equal(t, apperror.KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Fields, "name")
	assert.Contains(t, appErr.Fields, "stock")
	assert.Contains(t, appErr.Fields, "cost_price")
	assert.NotContains(t, appErr.Fields, "sale_price")
}
