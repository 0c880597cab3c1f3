package wallet

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avaldera/localmart-backend/pkg/db/models"
	"github.com/avaldera/localmart-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a wallet repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *repository) EnsureWallet(ctx context.Context, accountID uuid.UUID) (*models.Wallet, error) {
	seed := models.Wallet{ID: uuid.New(), AccountID: accountID}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "account_id"}},
			DoNothing: true,
		}).
		Create(&seed).Error
	if err != nil {
		return nil, err
	}
	return r.FindWalletByAccount(ctx, accountID)
}

func (r *repository) FindWalletByAccount(ctx context.Context, accountID uuid.UUID) (*models.Wallet, error) {
	var wallet models.Wallet
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		First(&wallet).Error
	if err != nil {
		return nil, err
	}
	return &wallet, nil
}

func (r *repository) FindTransactionByReference(ctx context.Context, accountID uuid.UUID, reference string) (*models.WalletTransaction, error) {
	var entry models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("account_id = ? AND reference = ?", accountID, reference).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) CreateTransaction(ctx context.Context, entry *models.WalletTransaction) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) AddToBalance(ctx context.Context, accountID uuid.UUID, amountCents int64) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE wallets
		SET balance_cents = balance_cents + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE account_id = ?
	`, amountCents, accountID)
	return res.RowsAffected, res.Error
}

// SubtractFromBalance only applies the debit when funds cover it; zero rows
// affected means the guard rejected the update.
func (r *repository) SubtractFromBalance(ctx context.Context, accountID uuid.UUID, amountCents int64) (int64, error) {
	res := r.db.WithContext(ctx).Exec(`
		UPDATE wallets
		SET balance_cents = balance_cents - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE account_id = ? AND balance_cents >= ?
	`, amountCents, accountID, amountCents)
	return res.RowsAffected, res.Error
}

func (r *repository) ListTransactions(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error) {
	limit = pagination.NormalizeLimit(limit)
	offset = pagination.NormalizeOffset(offset)
	var entries []models.WalletTransaction
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
