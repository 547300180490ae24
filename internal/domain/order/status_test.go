package order

import (
	"testing"
	"time"

	"github.com/hugohenrick/arte-ideas/internal/money"
	"github.com/hugohenrick/arte-ideas/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	for _, legacy := range []string{"pendiente", "confirmado", "en_proceso", "completado", "cancelado", "vencido", "borrador"} {
		_, err := ParseStatus(legacy)
		assert.ErrorIs(t, err, ErrLegacyStatus, legacy)
	}
	_, err := ParseStatus("shipped")
	assert.ErrorIs(t, err, ErrUnknownStatus)
}

func TestCanTransition(t *testing.T) {
	legal := [][2]Status{
		{StatusDraft, StatusPending},
		{StatusPending, StatusConfirmed},
		{StatusConfirmed, StatusInProcess},
		{StatusInProcess, StatusCompleted},
		{StatusDraft, StatusCancelled},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCancelled},
		{StatusInProcess, StatusCancelled},
	}
	for _, e := range legal {
		assert.True(t, CanTransition(e[0], e[1]), "%s -> %s", e[0], e[1])
	}

	illegal := [][2]Status{
		{StatusDraft, StatusConfirmed},
		{StatusPending, StatusCompleted},
		{StatusConfirmed, StatusPending},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusPending},
		{StatusPending, StatusOverdue},
	}
	for _, e := range illegal {
		assert.False(t, CanTransition(e[0], e[1]), "%s -> %s", e[0], e[1])
	}
}

func newTestOrder(status Status) *Order {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	o := NewOrder("tenant-1", "ORD-2026-0001", "client-1", DocumentProforma, ClientIndividual, status, "user-1", now)
	o.DeliveryDate = Day(now.AddDate(0, 0, 5))
	return o
}

func TestTransitionWritesHistory(t *testing.T) {
	o := newTestOrder(StatusPending)
	at := time.Date(2026, 3, 11, 9, 0, 0, 0, time.UTC)

	h, err := o.Transition(StatusConfirmed, "client approved", "user-2", at)
	require.NoError(t, err)
	require.NotNil(t, h)
	assert.Equal(t, StatusConfirmed, o.Status)
	require.NotNil(t, h.PreviousStatus)
	assert.Equal(t, StatusPending, *h.PreviousStatus)
	assert.Equal(t, StatusConfirmed, h.NewStatus)
	assert.Equal(t, "user-2", h.ActorID)
	assert.Equal(t, at, h.CreatedAt)
}

func TestTransitionIdentityIsNoop(t *testing.T) {
	o := newTestOrder(StatusConfirmed)
	h, err := o.Transition(StatusConfirmed, "", "user-1", time.Now())
	require.NoError(t, err)
	assert.Nil(t, h)

	o.Status = StatusCancelled
	h, err = o.Transition(StatusCancelled, "again", "user-1", time.Now())
	require.NoError(t, err)
	assert.Nil(t, h)
}

func TestTransitionRejections(t *testing.T) {
	tests := []struct {
		name string
		from Status
		to   Status
	}{
		{"terminal completed", StatusCompleted, StatusCancelled},
		{"terminal cancelled", StatusCancelled, StatusPending},
		{"skipping a step", StatusDraft, StatusConfirmed},
		{"backwards", StatusInProcess, StatusPending},
		{"overdue is virtual", StatusPending, StatusOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOrder(tt.from)
			_, err := o.Transition(tt.to, "", "user-1", time.Now())
			assert.True(t, apperror.Is(err, apperror.KindIllegalTransition))
			assert.Equal(t, tt.from, o.Status)
		})
	}
}

func TestCompletionRequiresFullPayment(t *testing.T) {
	o := newTestOrder(StatusInProcess)
	o.PaymentStatus = money.Partial

	_, err := o.Transition(StatusCompleted, "", "user-1", time.Now())
	require.Error(t, err)
	appErr := apperror.From(err)
	assert.Equal(t, apperror.KindIllegalTransition, appErr.Kind)
	assert.Equal(t, "not fully paid", appErr.Message)

	o.PaymentStatus = money.Paid
	h, err := o.Transition(StatusCompleted, "", "user-1", time.Now())
	require.NoError(t, err)
	assert.NotNil(t, h)
}

func TestCompletingUnpaidPendingOrderReportsBalance(t *testing.T) {
	o := newTestOrder(StatusPending)
	o.PaymentStatus = money.Partial

	_, err := o.Transition(StatusCompleted, "", "user-1", time.Now())
	assert.Equal(t, "not fully paid", apperror.From(err).Message)
	assert.Equal(t, StatusPending, o.Status)

	o.PaymentStatus = money.Paid
	_, err = o.Transition(StatusCompleted, "", "user-1", time.Now())
	assert.Equal(t, "cannot move order from pending to completed", apperror.From(err).Message)
}

func TestCreationHistory(t *testing.T) {
	o := newTestOrder(StatusPending)
	h := o.CreationHistory("user-1", o.CreatedAt)
	assert.Nil(t, h.PreviousStatus)
	assert.Equal(t, StatusPending, h.NewStatus)
	assert.Equal(t, o.ID, h.OrderID)
}
