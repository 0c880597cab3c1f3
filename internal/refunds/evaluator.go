package refunds

import (
	"fmt"
	"time"

	"github.com/avaldera/localmart-backend/pkg/db/models"
	"github.com/avaldera/localmart-backend/pkg/enums"
	pkgerrors "github.com/avaldera/localmart-backend/pkg/errors"
)

// Decision is the outcome of a successful cancellation eligibility check.
type Decision struct {
	RefundDue         bool
	RefundAmountCents int64
	Reference         string
}

// Evaluator decides whether a customer may still cancel an order and what
// compensation the cancellation owes.
type Evaluator struct {
	window time.Duration
	now    func() time.Time
}

// NewEvaluator builds an evaluator with the configured cancellation window.
func NewEvaluator(window time.Duration) *Evaluator {
	return &Evaluator{window: window, now: time.Now}
}

// WithClock overrides the evaluator's clock. Test helper.
func (e *Evaluator) WithClock(now func() time.Time) *Evaluator {
	e.now = now
	return e
}

// Evaluate checks cancellation eligibility against the stored order. A
// customer can only cancel before the seller starts processing and within
// the window measured from order placement.
func (e *Evaluator) Evaluate(order *models.Order) (Decision, error) {
	if order == nil {
		return Decision{}, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}

	switch order.Status {
	case enums.OrderStatusPendingApproval, enums.OrderStatusAccepted:
	default:
		return Decision{}, pkgerrors.New(pkgerrors.CodeInvalidTransition, "order can no longer be cancelled")
	}

	if e.now().After(order.PlacedAt.Add(e.window)) {
		return Decision{}, pkgerrors.New(pkgerrors.CodeDeadlineExpired, "cancellation window has closed")
	}

	decision := Decision{}
	if order.PaymentMethod == enums.PaymentMethodGateway && order.PaymentStatus == enums.PaymentStatusPaid {
		decision.RefundDue = true
		decision.RefundAmountCents = order.TotalCents
		decision.Reference = RefundReference(order.OrderNumber)
	}
	return decision, nil
}

// RefundReference is the ledger idempotency key for a cancellation refund.
func RefundReference(orderNumber string) string {
	return fmt.Sprintf("REFUND_%s", orderNumber)
}
