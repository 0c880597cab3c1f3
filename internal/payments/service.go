package payments

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaldera/localmart-backend/pkg/enums"
	pkgerrors "github.com/avaldera/localmart-backend/pkg/errors"
	"github.com/avaldera/localmart-backend/pkg/gateway"
	"github.com/avaldera/localmart-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

// CallbackInput is a gateway confirmation callback.
type CallbackInput struct {
	GatewayOrderRef   string
	GatewayPaymentRef string
	Signature         string
}

// FailureInput is an explicit gateway failure callback.
type FailureInput struct {
	GatewayOrderRef string
	Reason          string
}

// Service reconciles external gateway callbacks against the payment mirror
// and the order's payment status.
type Service interface {
	Confirm(ctx context.Context, input CallbackInput) error
	Fail(ctx context.Context, input FailureInput) error
}

type service struct {
	repo   Repository
	tx     txRunner
	outbox outboxPublisher
	secret string
}

// PaymentConfirmedEvent is emitted when a gateway payment settles.
type PaymentConfirmedEvent struct {
	OrderID           uuid.UUID `json:"order_id"`
	OrderNumber       string    `json:"order_number"`
	AmountCents       int64     `json:"amount_cents"`
	GatewayPaymentRef string    `json:"gateway_payment_ref"`
}

// PaymentFailedEvent is emitted when a callback marks a payment failed.
type PaymentFailedEvent struct {
	OrderID     uuid.UUID `json:"order_id"`
	OrderNumber string    `json:"order_number"`
	Reason      string    `json:"reason"`
}

// NewService builds a payment reconciler with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, secret string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("payments repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if secret == "" {
		return nil, fmt.Errorf("gateway secret required")
	}
	return &service{repo: repo, tx: tx, outbox: ob, secret: secret}, nil
}

func (s *service) Confirm(ctx context.Context, input CallbackInput) error {
	if input.GatewayOrderRef == "" || input.GatewayPaymentRef == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "gateway references required")
	}

	if !gateway.VerifySignature(s.secret, input.GatewayOrderRef, input.GatewayPaymentRef, input.Signature) {
		// The failed mark is best effort: it leaves an audit trail when the
		// reference exists, but the caller always sees the signature error.
		// Reporting anything else would tell a forger whether the reference
		// is real.
		_ = s.markFailed(ctx, input.GatewayOrderRef, "signature mismatch")
		return pkgerrors.New(pkgerrors.CodeSignatureInvalid, "payment callback signature mismatch")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payment, err := repo.FindByGatewayOrderRef(ctx, input.GatewayOrderRef)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found for gateway reference")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}

		// Replayed confirmation: the money already moved, nothing to do.
		if payment.Status == enums.PaymentStatusPaid {
			return nil
		}
		if payment.Status != enums.PaymentStatusPending {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "payment is not awaiting confirmation")
		}

		updates := map[string]any{
			"status":              enums.PaymentStatusPaid,
			"gateway_payment_ref": input.GatewayPaymentRef,
		}
		if err := repo.Update(ctx, payment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment mirror")
		}

		affected, err := repo.MarkOrderPaid(ctx, payment.OrderID, input.GatewayPaymentRef)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order paid")
		}
		if affected == 0 {
			return pkgerrors.New(pkgerrors.CodeConcurrentModification, "order payment status changed concurrently")
		}

		if err := repo.AppendOrderTimeline(ctx, payment.OrderID, "payment_confirmed"); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPaymentConfirmed,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Version:       1,
			Data: PaymentConfirmedEvent{
				OrderID:           payment.OrderID,
				OrderNumber:       payment.OrderNumber,
				AmountCents:       payment.AmountCents,
				GatewayPaymentRef: input.GatewayPaymentRef,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

func (s *service) Fail(ctx context.Context, input FailureInput) error {
	if input.GatewayOrderRef == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "gateway order reference required")
	}
	reason := input.Reason
	if reason == "" {
		reason = "gateway reported failure"
	}
	return s.markFailed(ctx, input.GatewayOrderRef, reason)
}

// markFailed records the failure on the mirror and the order. The order's
// lifecycle status is left alone: a failed payment stays visible to the
// customer instead of silently cancelling the order.
func (s *service) markFailed(ctx context.Context, gatewayOrderRef, reason string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		payment, err := repo.FindByGatewayOrderRef(ctx, gatewayOrderRef)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return pkgerrors.New(pkgerrors.CodeNotFound, "payment not found for gateway reference")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load payment")
		}

		// Never downgrade a settled payment.
		if payment.Status != enums.PaymentStatusPending {
			return nil
		}

		updates := map[string]any{
			"status":         enums.PaymentStatusFailed,
			"failure_reason": reason,
		}
		if err := repo.Update(ctx, payment.ID, updates); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update payment mirror")
		}
		if _, err := repo.MarkOrderPaymentFailed(ctx, payment.OrderID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order payment failed")
		}
		if err := repo.AppendOrderTimeline(ctx, payment.OrderID, "payment_failed"); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventPaymentFailed,
			AggregateType: enums.AggregatePayment,
			AggregateID:   payment.ID,
			Version:       1,
			Data: PaymentFailedEvent{
				OrderID:     payment.OrderID,
				OrderNumber: payment.OrderNumber,
				Reason:      reason,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}
