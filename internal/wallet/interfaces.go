package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaldera/localmart-backend/pkg/db/models"
)

// Repository defines persistence operations for wallet tables.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
	EnsureWallet(ctx context.Context, accountID uuid.UUID) (*models.Wallet, error)
	FindWalletByAccount(ctx context.Context, accountID uuid.UUID) (*models.Wallet, error)
	FindTransactionByReference(ctx context.Context, accountID uuid.UUID, reference string) (*models.WalletTransaction, error)
	CreateTransaction(ctx context.Context, entry *models.WalletTransaction) error
	AddToBalance(ctx context.Context, accountID uuid.UUID, amountCents int64) (int64, error)
	SubtractFromBalance(ctx context.Context, accountID uuid.UUID, amountCents int64) (int64, error)
	ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error)
}
