package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/avaldera/localmart-backend/pkg/enums"
)

// WalletTransaction is one append-only ledger entry. Reference is the
// idempotency key for the logical money movement; the unique index on
// (account_id, reference) makes duplicate application a storage-level error
// rather than a caller discipline.
type WalletTransaction struct {
	ID          uuid.UUID                     `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	AccountID   uuid.UUID                     `gorm:"column:account_id;type:uuid;not null;uniqueIndex:ux_wallet_tx_account_reference"`
	Type        enums.WalletTransactionType   `gorm:"column:type;type:wallet_tx_type;not null"`
	AmountCents int64                         `gorm:"column:amount_cents;not null"`
	Description string                        `gorm:"column:description;not null"`
	Reference   string                        `gorm:"column:reference;not null;uniqueIndex:ux_wallet_tx_account_reference"`
	Status      enums.WalletTransactionStatus `gorm:"column:status;type:wallet_tx_status;not null;default:'completed'"`
	CreatedAt   time.Time                     `gorm:"column:created_at;autoCreateTime"`
}
