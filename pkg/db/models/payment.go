package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/avaldera/localmart-backend/pkg/enums"
	"github.com/avaldera/localmart-backend/pkg/types"
)

// Payment mirrors the financial facts of an order so reconciliation never
// has to re-derive them from the mutable aggregate. Items and address are
// snapshots taken at purchase time.
type Payment struct {
	ID                uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID           uuid.UUID           `gorm:"column:order_id;type:uuid;not null;uniqueIndex:ux_payments_order_id"`
	OrderNumber       string              `gorm:"column:order_number;not null"`
	Method            enums.PaymentMethod `gorm:"column:method;type:payment_method;not null"`
	Status            enums.PaymentStatus `gorm:"column:status;type:payment_status;not null;default:'pending'"`
	AmountCents       int64               `gorm:"column:amount_cents;not null"`
	Currency          enums.Currency      `gorm:"column:currency;type:text;not null;default:'INR'"`
	GatewayOrderRef   *string             `gorm:"column:gateway_order_ref"`
	GatewayPaymentRef *string             `gorm:"column:gateway_payment_ref"`
	ItemsSnapshot     json.RawMessage     `gorm:"column:items_snapshot;type:jsonb"`
	DeliveryAddress   *types.Address      `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	FailureReason     *string             `gorm:"column:failure_reason"`
	CreatedAt         time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
