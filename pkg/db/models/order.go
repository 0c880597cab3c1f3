package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/avaldera/localmart-backend/pkg/enums"
	"github.com/avaldera/localmart-backend/pkg/types"
)

// Order is the transactional aggregate for a customer purchase. Status and
// payment status only change through guarded conditional updates; the
// status timeline is append-only.
type Order struct {
	ID                     uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderNumber            string               `gorm:"column:order_number;not null;uniqueIndex:ux_orders_order_number"`
	CustomerID             uuid.UUID            `gorm:"column:customer_id;type:uuid;not null"`
	SellerID               uuid.UUID            `gorm:"column:seller_id;type:uuid;not null"`
	Currency               enums.Currency       `gorm:"column:currency;type:text;not null;default:'INR'"`
	Status                 enums.OrderStatus    `gorm:"column:status;type:order_status;not null;default:'pending_approval'"`
	PaymentMethod          enums.PaymentMethod  `gorm:"column:payment_method;type:payment_method;not null"`
	PaymentStatus          enums.PaymentStatus  `gorm:"column:payment_status;type:payment_status;not null;default:'pending'"`
	SubtotalCents          int64                `gorm:"column:subtotal_cents;not null"`
	DeliveryFeeCents       int64                `gorm:"column:delivery_fee_cents;not null;default:0"`
	TotalCents             int64                `gorm:"column:total_cents;not null"`
	DeliveryAddress        *types.Address       `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	StoreDetails           *types.StoreSnapshot `gorm:"column:store_details;type:jsonb;serializer:json"`
	DeliveryOTP            *string              `gorm:"column:delivery_otp"`
	QRCodeURL              *string              `gorm:"column:qr_code_url"`
	GatewayOrderRef        *string              `gorm:"column:gateway_order_ref"`
	GatewayPaymentRef      *string              `gorm:"column:gateway_payment_ref"`
	SellerApprovalDeadline time.Time            `gorm:"column:seller_approval_deadline;not null"`
	PlacedAt               time.Time            `gorm:"column:placed_at;not null"`
	DeliveredAt            *time.Time           `gorm:"column:delivered_at"`
	CancelledAt            *time.Time           `gorm:"column:cancelled_at"`
	Items                  []OrderLineItem      `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	StatusEvents           []OrderStatusEvent   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt              time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt              time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
