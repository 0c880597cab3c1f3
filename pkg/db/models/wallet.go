package models

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds one non-negative balance per account (customer, seller or
// platform). The balance always equals completed credits minus completed
// debits; a CHECK constraint enforces non-negativity at the storage layer.
type Wallet struct {
	ID           uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID    uuid.UUID `gorm:"column:account_id;type:uuid;not null;uniqueIndex:ux_wallets_account_id"`
	BalanceCents int64     `gorm:"column:balance_cents;not null;default:0"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
