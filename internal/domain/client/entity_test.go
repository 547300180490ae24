package client

import (
	"testing"

	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRules(t *testing.T) {
	tests := []struct {
		name      string
		typ       Type
		dni, ruc  string
		phone     string
		badFields []string
	}{
		{name: "individual with dni", typ: TypeIndividual, dni: "12345678", phone: "999111222"},
		{name: "school with ruc", typ: TypeSchool, ruc: "20123456789", phone: "999111222"},
		{name: "company with ruc", typ: TypeCompany, ruc: "10123456789", phone: "999111222"},
		{name: "individual without dni", typ: TypeIndividual, phone: "999", badFields: []string{"dni"}},
		{name: "individual with short dni", typ: TypeIndividual, dni: "1234", phone: "999", badFields: []string{"dni"}},
		{name: "individual with ruc", typ: TypeIndividual, dni: "12345678", ruc: "20123456789", phone: "999", badFields: []string{"ruc"}},
		{name: "school with dni", typ: TypeSchool, dni: "12345678", ruc: "20123456789", phone: "999", badFields: []string{"dni"}},
		{name: "company without ruc", typ: TypeCompany, phone: "999", badFields: []string{"ruc"}},
		{name: "missing phone", typ: TypeIndividual, dni: "12345678", badFields: []string{"phone"}},
		{name: "unknown type", typ: "agency", phone: "999", badFields: []string{"type"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := NewClient("tenant-1", tt.typ, "Juan Perez", tt.dni, tt.ruc, tt.phone, "", "")
			if len(tt.badFields) == 0 {
				require.NoError(t, err)
				assert.Equal(t, "tenant-1", c.TenantID)
				return
			}
			require.Error(t, err)
			appErr := apperror.From(err)
			assert.Equal(t, apperror.KindValidation, appErr.Kind)
			for _, f := range tt.badFields {
				assert.Contains(t, appErr.Fields, f)
			}
		})
	}
}

func TestApplyRevalidates(t *testing.T) {
	c, err := NewClient("tenant-1", TypeIndividual, "Ana", "87654321", "", "987654321", "ana@example.com", "")
	require.NoError(t, err)

	empty := ""
	err = c.Apply(Patch{Phone: &empty})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	phone := "911222333"
	bad := "not-an-email"
	err = c.Apply(Patch{Phone: &phone, Email: &bad})
	assert.True(t, apperror.Is(err, apperror.KindValidation))

	good := "ana@studio.pe"
	require.NoError(t, c.Apply(Patch{Phone: &phone, Email: &good}))
	assert.Equal(t, "87654321", c.TaxID())
}
