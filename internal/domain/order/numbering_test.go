package order

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberFormat(t *testing.T) {
	at := time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC)

	f, err := NewNumberFormat("ORD-{YYYY}-{seq:04d}")
	require.NoError(t, err)
	assert.Equal(t, "ORD-2026-0007", f.Format(at, 7))
	assert.Equal(t, "ORD-2026-12345", f.Format(at, 12345))
	assert.Equal(t, "2026", f.Scope(at))

	f, err = NewNumberFormat("AI{YY}{MM}-{seq}")
	require.NoError(t, err)
	assert.Equal(t, "AI2607-42", f.Format(at, 42))
	assert.Equal(t, "202607", f.Scope(at))

	f, err = NewNumberFormat("N-{seq:06d}")
	require.NoError(t, err)
	assert.Equal(t, "N-000001", f.Format(at, 1))
	assert.Equal(t, "all", f.Scope(at))

	_, err = NewNumberFormat("ORD-{YYYY}")
	assert.Error(t, err)
}
