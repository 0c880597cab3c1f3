package models

import (
	"time"

	"github.com/google/uuid"
)

// OrderStatusEvent is one append-only timeline entry. Labels cover both
// status transitions and payment facts (e.g. "payment_failed") so the
// timeline doubles as an audit trail for reconciliation review.
type OrderStatusEvent struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID   uuid.UUID `gorm:"column:order_id;type:uuid;not null"`
	Label     string    `gorm:"column:label;not null"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
}
