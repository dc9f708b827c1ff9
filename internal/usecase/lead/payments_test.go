package lead

import (
	"context"
	"strings"
	"testing"

	domain "lead-origination/internal/domain/lead"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayments_Lifecycle(t *testing.T) {
	u, _ := newEmpty(t, WithPaymentLinkBase("https://pay.test/"))
	ctx := context.Background()
	l, _ := u.Create(ctx)

	p, err := u.CreatePayment(ctx, l.ID, "processing_fee", decimal.RequireFromString("2500.499"))
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPending, p.Status)
	assert.Equal(t, "2500.5", p.Amount.String())
	assert.True(t, strings.HasPrefix(p.Link, "https://pay.test/"+p.ID))
	assert.Equal(t, fixedNow, p.Timeline.CreatedAt)

	sent, err := u.MarkPaymentSent(ctx, l.ID, p.ID)
	require.NoError(t, err)
	require.NotNil(t, sent.Timeline.SentAt)

	paid, err := u.RecordPaymentResult(ctx, l.ID, p.ID, domain.PaymentPaid)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentPaid, paid.Status)
	require.NotNil(t, paid.Timeline.ReceivedAt)

	_, err = u.RecordPaymentResult(ctx, l.ID, p.ID, domain.PaymentFailed)
	assert.ErrorIs(t, err, domain.ErrPaymentSettled)
	_, err = u.MarkPaymentSent(ctx, l.ID, p.ID)
	assert.ErrorIs(t, err, domain.ErrPaymentSettled)

	got, _ := u.Get(ctx, l.ID)
	require.Len(t, got.Payments, 1)
	assert.Equal(t, domain.PaymentPaid, got.Payments[0].Status)
}

func TestPayments_Errors(t *testing.T) {
	u, _ := newEmpty(t)
	ctx := context.Background()
	l, _ := u.Create(ctx)

	_, err := u.CreatePayment(ctx, l.ID, "fee", decimal.Zero)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = u.CreatePayment(ctx, "missing", "fee", decimal.NewFromInt(10))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = u.MarkPaymentSent(ctx, l.ID, "nope")
	assert.ErrorIs(t, err, domain.ErrPaymentNotFound)

	p, _ := u.CreatePayment(ctx, l.ID, "fee", decimal.NewFromInt(10))
	_, err = u.RecordPaymentResult(ctx, l.ID, p.ID, domain.PaymentPending)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}
