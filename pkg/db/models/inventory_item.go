package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryItem tracks sellable stock per product. Decrements happen through
// conditional SQL so availability can never go negative.
type InventoryItem struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ProductID    uuid.UUID `gorm:"column:product_id;type:uuid;not null;uniqueIndex:ux_inventory_items_product_id"`
	SellerID     uuid.UUID `gorm:"column:seller_id;type:uuid;not null"`
	AvailableQty int       `gorm:"column:available_qty;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
