package inventory

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	pkgerrors "github.com/avaldera/localmart-backend/pkg/errors"
)

// Decrementer removes sold stock once an order is accepted.
type Decrementer interface {
	Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

type decrementerImpl struct{}

// NewDecrementer exposes the default stock decrement implementation.
func NewDecrementer() Decrementer {
	return decrementerImpl{}
}

// Decrement subtracts qty from available stock. The guard in the WHERE clause
// keeps availability from going negative; zero rows affected means stock did
// not cover the order.
func (decrementerImpl) Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error {
	if qty <= 0 {
		return nil
	}
	if tx == nil {
		return pkgerrors.New(pkgerrors.CodeDependency, "transaction required for stock decrement")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE inventory_items
		SET available_qty = available_qty - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE product_id = ? AND available_qty >= ?
	`, qty, productID, qty)
	if res.Error != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "decrement inventory")
	}
	if res.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeConflict, "stock does not cover order quantity")
	}
	return nil
}
