package payments

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaldera/localmart-backend/pkg/db/models"
)

// Repository defines persistence operations for the payment mirror and the
// order columns the reconciler is allowed to touch.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, payment *models.Payment) error
	FindByOrderID(ctx context.Context, orderID uuid.UUID) (*models.Payment, error)
	FindByGatewayOrderRef(ctx context.Context, gatewayOrderRef string) (*models.Payment, error)
	Update(ctx context.Context, paymentID uuid.UUID, updates map[string]any) error
	MarkOrderPaid(ctx context.Context, orderID uuid.UUID, gatewayPaymentRef string) (int64, error)
	MarkOrderPaymentFailed(ctx context.Context, orderID uuid.UUID) (int64, error)
	AppendOrderTimeline(ctx context.Context, orderID uuid.UUID, label string) error
}
