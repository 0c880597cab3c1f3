package wallet

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgdb "github.com/avaldera/localmart-backend/pkg/db"
	"github.com/avaldera/localmart-backend/pkg/db/models"
	"github.com/avaldera/localmart-backend/pkg/enums"
	pkgerrors "github.com/avaldera/localmart-backend/pkg/errors"
)

// EntryInput captures one logical money movement. Reference is the
// idempotency key: applying the same reference to the same account twice
// returns the original entry without moving money again.
type EntryInput struct {
	AccountID   uuid.UUID
	AmountCents int64
	Description string
	Reference   string
}

// Service defines ledger operations. Credit and Debit accept an optional
// transaction handle so callers can settle money atomically with the state
// change that caused it.
type Service interface {
	Credit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error)
	Debit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error)
	Balance(ctx context.Context, accountID uuid.UUID) (*models.Wallet, error)
	History(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error)
}

type service struct {
	repo Repository
}

// NewService builds a wallet service with the required dependencies.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("wallet repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Credit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error) {
	return s.apply(ctx, tx, input, enums.WalletTransactionTypeCredit)
}

func (s *service) Debit(ctx context.Context, tx *gorm.DB, input EntryInput) (*models.WalletTransaction, error) {
	return s.apply(ctx, tx, input, enums.WalletTransactionTypeDebit)
}

func (s *service) apply(ctx context.Context, tx *gorm.DB, input EntryInput, kind enums.WalletTransactionType) (*models.WalletTransaction, error) {
	if err := validateEntry(input); err != nil {
		return nil, err
	}
	if tx != nil {
		return s.applyInTx(ctx, tx, input, kind)
	}
	// No caller transaction: open one so the balance move and the ledger
	// row commit or roll back together.
	var entry *models.WalletTransaction
	err := s.repo.Transaction(ctx, func(inner *gorm.DB) error {
		var applyErr error
		entry, applyErr = s.applyInTx(ctx, inner, input, kind)
		return applyErr
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) applyInTx(ctx context.Context, tx *gorm.DB, input EntryInput, kind enums.WalletTransactionType) (*models.WalletTransaction, error) {
	repo := s.repo.WithTx(tx)

	prior, err := repo.FindTransactionByReference(ctx, input.AccountID, input.Reference)
	if err == nil {
		return prior, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check ledger reference")
	}

	if _, err := repo.EnsureWallet(ctx, input.AccountID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ensure wallet")
	}

	// Move the balance before recording the entry: a rejected debit must
	// leave no ledger row behind, or a retry of the same reference would
	// read it back as an already-applied movement.
	switch kind {
	case enums.WalletTransactionTypeCredit:
		affected, err := repo.AddToBalance(ctx, input.AccountID, input.AmountCents)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply credit")
		}
		if affected == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeDependency, "wallet missing for credited account")
		}
	default:
		affected, err := repo.SubtractFromBalance(ctx, input.AccountID, input.AmountCents)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "apply debit")
		}
		if affected == 0 {
			return nil, pkgerrors.New(pkgerrors.CodeInsufficientBalance, "wallet balance does not cover debit")
		}
	}

	entry := &models.WalletTransaction{
		ID:          uuid.New(),
		AccountID:   input.AccountID,
		Type:        kind,
		AmountCents: input.AmountCents,
		Description: input.Description,
		Reference:   input.Reference,
		Status:      enums.WalletTransactionStatusCompleted,
	}
	if err := repo.CreateTransaction(ctx, entry); err != nil {
		return nil, mapInsertError(err)
	}
	return entry, nil
}

func (s *service) Balance(ctx context.Context, accountID uuid.UUID) (*models.Wallet, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	wallet, err := s.repo.FindWalletByAccount(ctx, accountID)
	if err == gorm.ErrRecordNotFound {
		// An account with no wallet yet has a zero balance, not an error.
		return &models.Wallet{AccountID: accountID, BalanceCents: 0}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load wallet")
	}
	return wallet, nil
}

func (s *service) History(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.WalletTransaction, error) {
	if accountID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	entries, err := s.repo.ListTransactions(ctx, accountID, limit, offset)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list wallet transactions")
	}
	return entries, nil
}

func validateEntry(input EntryInput) error {
	if input.AccountID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "account id required")
	}
	if input.AmountCents <= 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.Reference == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "reference required")
	}
	return nil
}

func mapInsertError(err error) error {
	// A concurrent writer beat us to the reference between the read and the
	// insert. The caller retries and the read path returns the prior entry.
	if pkgdb.IsUniqueViolation(err, "ux_wallet_tx_account_reference") {
		return pkgerrors.Wrap(pkgerrors.CodeConcurrentModification, err, "ledger reference already applied")
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert ledger entry")
}
