package lead

import (
	"context"
	"fmt"

	domain "lead-origination/internal/domain/lead"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreatePayment opens a pending payment link for a fee owed on the lead.
func (u *Usecase) CreatePayment(ctx context.Context, leadID, feeType string, amount decimal.Decimal) (*domain.PaymentSession, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	var created domain.PaymentSession
	out, err := u.mutate(ctx, leadID, func(l *domain.Lead) error {
		sid := uuid.NewString()
		created = domain.PaymentSession{
			ID:       sid,
			FeeType:  feeType,
			Amount:   amount.Round(2),
			Status:   domain.PaymentPending,
			Link:     u.linkBase + sid,
			Timeline: domain.PaymentTimeline{CreatedAt: u.now()},
		}
		l.Payments = append(l.Payments, created)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, domain.ErrNotFound
	}
	u.log.Info("payment link created",
		zap.String("lead_id", leadID),
		zap.String("payment_id", created.ID),
		zap.String("amount", created.Amount.StringFixed(2)))
	return &created, nil
}

// MarkPaymentSent records when the link was shared with the customer.
func (u *Usecase) MarkPaymentSent(ctx context.Context, leadID, paymentID string) (*domain.PaymentSession, error) {
	return u.updatePayment(ctx, leadID, paymentID, func(p *domain.PaymentSession) error {
		if p.Status != domain.PaymentPending {
			return domain.ErrPaymentSettled
		}
		if p.Timeline.SentAt == nil {
			at := u.now()
			p.Timeline.SentAt = &at
		}
		return nil
	})
}

// RecordPaymentResult settles a pending payment as Paid or Failed.
func (u *Usecase) RecordPaymentResult(ctx context.Context, leadID, paymentID string, status domain.PaymentStatus) (*domain.PaymentSession, error) {
	if status != domain.PaymentPaid && status != domain.PaymentFailed {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	return u.updatePayment(ctx, leadID, paymentID, func(p *domain.PaymentSession) error {
		if p.Status != domain.PaymentPending {
			return domain.ErrPaymentSettled
		}
		p.Status = status
		if status == domain.PaymentPaid {
			at := u.now()
			p.Timeline.ReceivedAt = &at
		}
		return nil
	})
}

func (u *Usecase) updatePayment(ctx context.Context, leadID, paymentID string, fn func(p *domain.PaymentSession) error) (*domain.PaymentSession, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	var updated domain.PaymentSession
	out, err := u.mutate(ctx, leadID, func(l *domain.Lead) error {
		for i := range l.Payments {
			if l.Payments[i].ID == paymentID {
				if err := fn(&l.Payments[i]); err != nil {
					return err
				}
				updated = l.Payments[i]
				return nil
			}
		}
		return domain.ErrPaymentNotFound
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, domain.ErrNotFound
	}
	u.log.Info("payment updated",
		zap.String("lead_id", leadID),
		zap.String("payment_id", paymentID),
		zap.String("status", string(updated.Status)))
	return &updated, nil
}
