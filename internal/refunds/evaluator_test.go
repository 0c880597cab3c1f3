package refunds

import (
	"testing"
	"time"

	"github.com/avaldera/localmart-backend/pkg/db/models"
	"github.com/avaldera/localmart-backend/pkg/enums"
	pkgerrors "github.com/avaldera/localmart-backend/pkg/errors"
)

func testOrder(status enums.OrderStatus, method enums.PaymentMethod, payment enums.PaymentStatus, placed time.Time) *models.Order {
	return &models.Order{
		OrderNumber:   "LM-2001",
		Status:        status,
		PaymentMethod: method,
		PaymentStatus: payment,
		TotalCents:    4200,
		PlacedAt:      placed,
	}
}

func evaluatorAt(now time.Time) *Evaluator {
	return NewEvaluator(6 * time.Minute).WithClock(func() time.Time { return now })
}

func TestEvaluateAllowsCancellationInsideWindow(t *testing.T) {
	placed := time.Now()
	ev := evaluatorAt(placed.Add(5*time.Minute + 59*time.Second))

	decision, err := ev.Evaluate(testOrder(enums.OrderStatusPendingApproval, enums.PaymentMethodCOD, enums.PaymentStatusPending, placed))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if decision.RefundDue {
		t.Fatal("pending COD order must not owe a refund")
	}
}

func TestEvaluateRejectsExpiredWindow(t *testing.T) {
	placed := time.Now()
	ev := evaluatorAt(placed.Add(6*time.Minute + time.Second))

	_, err := ev.Evaluate(testOrder(enums.OrderStatusPendingApproval, enums.PaymentMethodCOD, enums.PaymentStatusPending, placed))
	if !pkgerrors.HasCode(err, pkgerrors.CodeDeadlineExpired) {
		t.Fatalf("expected deadline expired, got %v", err)
	}
}

func TestEvaluateRejectsLateStatuses(t *testing.T) {
	placed := time.Now()
	ev := evaluatorAt(placed)

	for _, status := range []enums.OrderStatus{
		enums.OrderStatusProcessing,
		enums.OrderStatusReadyForDelivery,
		enums.OrderStatusOutForDelivery,
		enums.OrderStatusDelivered,
		enums.OrderStatusCancelled,
		enums.OrderStatusRejected,
	} {
		_, err := ev.Evaluate(testOrder(status, enums.PaymentMethodCOD, enums.PaymentStatusPending, placed))
		if !pkgerrors.HasCode(err, pkgerrors.CodeInvalidTransition) {
			t.Fatalf("status %s: expected invalid transition, got %v", status, err)
		}
	}
}

func TestEvaluateOwesRefundForPaidGatewayOrder(t *testing.T) {
	placed := time.Now()
	ev := evaluatorAt(placed.Add(time.Minute))

	decision, err := ev.Evaluate(testOrder(enums.OrderStatusAccepted, enums.PaymentMethodGateway, enums.PaymentStatusPaid, placed))
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	if !decision.RefundDue {
		t.Fatal("expected refund due")
	}
	if decision.RefundAmountCents != 4200 {
		t.Fatalf("refund amount = %d", decision.RefundAmountCents)
	}
	if decision.Reference != "REFUND_LM-2001" {
		t.Fatalf("reference = %s", decision.Reference)
	}
}

func TestEvaluateNilOrder(t *testing.T) {
	ev := evaluatorAt(time.Now())
	if _, err := ev.Evaluate(nil); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
