package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaldera/localmart-backend/pkg/db/models"
	"github.com/avaldera/localmart-backend/pkg/enums"
)

// Repository defines persistence operations for order tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	CreatePayment(ctx context.Context, payment *models.Payment) error
	SetGatewayOrderRef(ctx context.Context, orderID uuid.UUID, gatewayOrderRef string) error
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID, filters ListFilters) ([]models.Order, error)
	ListBySeller(ctx context.Context, sellerID uuid.UUID, filters ListFilters) ([]models.Order, error)
	FindApprovalExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
	UpdateStatusIf(ctx context.Context, orderID uuid.UUID, expected, next enums.OrderStatus, updates map[string]any) (int64, error)
	SetDeliveryCode(ctx context.Context, orderID uuid.UUID, otp, qrCodeURL string) (int64, error)
	UpdatePaymentStatusIf(ctx context.Context, orderID uuid.UUID, expected, next enums.PaymentStatus) (int64, error)
	MarkPaymentRecordStatus(ctx context.Context, orderID uuid.UUID, expected, next enums.PaymentStatus) (int64, error)
	AppendTimeline(ctx context.Context, orderID uuid.UUID, label string) error
}
