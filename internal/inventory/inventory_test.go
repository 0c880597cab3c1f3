package inventory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/avaldera/localmart-backend/pkg/errors"
)

func setupInventoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	ddl := `
CREATE TABLE IF NOT EXISTS inventory_items (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL UNIQUE,
  seller_id TEXT NOT NULL,
  available_qty INTEGER NOT NULL DEFAULT 0 CHECK (available_qty >= 0),
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(ddl).Error)
	return db
}

func seedStock(t *testing.T, db *gorm.DB, productID uuid.UUID, qty int) {
	t.Helper()
	require.NoError(t, db.Exec(
		`INSERT INTO inventory_items (id, product_id, seller_id, available_qty) VALUES (?, ?, ?, ?)`,
		uuid.NewString(), productID, uuid.NewString(), qty,
	).Error)
}

func availableQty(t *testing.T, db *gorm.DB, productID uuid.UUID) int {
	t.Helper()
	var qty int
	require.NoError(t, db.Raw(
		`SELECT available_qty FROM inventory_items WHERE product_id = ?`, productID,
	).Scan(&qty).Error)
	return qty
}

func TestDecrementReducesStock(t *testing.T) {
	db := setupInventoryTestDB(t)
	dec := NewDecrementer()
	productID := uuid.New()
	seedStock(t, db, productID, 10)

	require.NoError(t, dec.Decrement(context.Background(), db, productID, 4))
	assert.Equal(t, 6, availableQty(t, db, productID))
}

func TestDecrementRefusesOverdraw(t *testing.T) {
	db := setupInventoryTestDB(t)
	dec := NewDecrementer()
	productID := uuid.New()
	seedStock(t, db, productID, 3)

	err := dec.Decrement(context.Background(), db, productID, 5)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeConflict))
	assert.Equal(t, 3, availableQty(t, db, productID))
}

func TestDecrementIgnoresNonPositiveQty(t *testing.T) {
	db := setupInventoryTestDB(t)
	dec := NewDecrementer()
	require.NoError(t, dec.Decrement(context.Background(), db, uuid.New(), 0))
}
