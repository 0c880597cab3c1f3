package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/avaldera/localmart-backend/pkg/db/models"
	"github.com/avaldera/localmart-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  order_number TEXT NOT NULL UNIQUE,
  customer_id TEXT NOT NULL,
  seller_id TEXT NOT NULL,
  currency TEXT NOT NULL DEFAULT 'INR',
  status TEXT NOT NULL DEFAULT 'pending_approval',
  payment_method TEXT NOT NULL,
  payment_status TEXT NOT NULL DEFAULT 'pending',
  subtotal_cents INTEGER NOT NULL,
  delivery_fee_cents INTEGER NOT NULL DEFAULT 0,
  total_cents INTEGER NOT NULL,
  delivery_address TEXT,
  store_details TEXT,
  delivery_otp TEXT,
  qr_code_url TEXT,
  gateway_order_ref TEXT,
  gateway_payment_ref TEXT,
  seller_approval_deadline DATETIME NOT NULL,
  placed_at DATETIME NOT NULL,
  delivered_at DATETIME,
  cancelled_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	lineItems := `
CREATE TABLE IF NOT EXISTS order_line_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  unit_price_cents INTEGER NOT NULL,
  qty INTEGER NOT NULL,
  total_cents INTEGER NOT NULL,
  category_flags TEXT,
  created_at DATETIME
);`
	statusEvents := `
CREATE TABLE IF NOT EXISTS order_status_events (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  label TEXT NOT NULL,
  created_at DATETIME
);`
	payments := `
CREATE TABLE IF NOT EXISTS payments (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL UNIQUE,
  order_number TEXT NOT NULL,
  method TEXT NOT NULL,
  status TEXT NOT NULL DEFAULT 'pending',
  amount_cents INTEGER NOT NULL,
  currency TEXT NOT NULL DEFAULT 'INR',
  gateway_order_ref TEXT,
  gateway_payment_ref TEXT,
  items_snapshot TEXT,
  delivery_address TEXT,
  failure_reason TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	for _, ddl := range []string{orders, lineItems, statusEvents, payments} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedOrder(t *testing.T, repo Repository, status enums.OrderStatus) *models.Order {
	t.Helper()

	now := time.Now().UTC()
	order := &models.Order{
		ID:                     uuid.New(),
		OrderNumber:            "LM-" + uuid.NewString()[:8],
		CustomerID:             uuid.New(),
		SellerID:               uuid.New(),
		Currency:               enums.CurrencyINR,
		Status:                 status,
		PaymentMethod:          enums.PaymentMethodCOD,
		PaymentStatus:          enums.PaymentStatusPending,
		SubtotalCents:          1000,
		DeliveryFeeCents:       100,
		TotalCents:             1100,
		SellerApprovalDeadline: now.Add(24 * time.Hour),
		PlacedAt:               now,
		Items: []models.OrderLineItem{{
			ID:             uuid.New(),
			ProductID:      uuid.New(),
			Name:           "Basmati Rice 5kg",
			UnitPriceCents: 500,
			Qty:            2,
			TotalCents:     1000,
		}},
	}
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func TestRepositoryUpdateStatusIfGuardsPrecondition(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, repo, enums.OrderStatusPendingApproval)

	affected, err := repo.UpdateStatusIf(context.Background(), order.ID, enums.OrderStatusPendingApproval, enums.OrderStatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	// Same precondition again: the stored status moved on, the guard rejects.
	affected, err = repo.UpdateStatusIf(context.Background(), order.ID, enums.OrderStatusPendingApproval, enums.OrderStatusAccepted, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	loaded, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusAccepted, loaded.Status)
}

func TestRepositorySetDeliveryCodeIsSetOnce(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, repo, enums.OrderStatusProcessing)

	affected, err := repo.SetDeliveryCode(context.Background(), order.ID, "123456", "https://qr.example/1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.SetDeliveryCode(context.Background(), order.ID, "999999", "https://qr.example/2")
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	loaded, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded.DeliveryOTP)
	assert.Equal(t, "123456", *loaded.DeliveryOTP)
}

func TestRepositoryUpdatePaymentStatusIf(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, repo, enums.OrderStatusOutForDelivery)

	affected, err := repo.UpdatePaymentStatusIf(context.Background(), order.ID, enums.PaymentStatusPending, enums.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.UpdatePaymentStatusIf(context.Background(), order.ID, enums.PaymentStatusPending, enums.PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)
}

func TestRepositoryTimelineAndReads(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, repo, enums.OrderStatusPendingApproval)

	require.NoError(t, repo.AppendTimeline(context.Background(), order.ID, "order_placed"))
	require.NoError(t, repo.AppendTimeline(context.Background(), order.ID, "order_accepted"))

	loaded, err := repo.FindByOrderNumber(context.Background(), order.OrderNumber)
	require.NoError(t, err)
	require.Len(t, loaded.StatusEvents, 2)
	assert.Equal(t, "order_placed", loaded.StatusEvents[0].Label)
	require.Len(t, loaded.Items, 1)

	mine, err := repo.ListByCustomer(context.Background(), order.CustomerID, ListFilters{Limit: 10})
	require.NoError(t, err)
	require.Len(t, mine, 1)

	status := enums.OrderStatusPendingApproval
	sellers, err := repo.ListBySeller(context.Background(), order.SellerID, ListFilters{Status: &status, Limit: 10})
	require.NoError(t, err)
	require.Len(t, sellers, 1)
}

func TestRepositoryFindApprovalExpired(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	stale := seedOrder(t, repo, enums.OrderStatusPendingApproval)
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", stale.ID).
		Update("seller_approval_deadline", time.Now().UTC().Add(-time.Hour)).Error)

	// Fresh pending order and an accepted stale order are both excluded.
	seedOrder(t, repo, enums.OrderStatusPendingApproval)
	accepted := seedOrder(t, repo, enums.OrderStatusAccepted)
	require.NoError(t, db.Model(&models.Order{}).
		Where("id = ?", accepted.ID).
		Update("seller_approval_deadline", time.Now().UTC().Add(-time.Hour)).Error)

	expired, err := repo.FindApprovalExpired(context.Background(), time.Now().UTC(), 10)
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, stale.ID, expired[0].ID)
}

func TestRepositorySetGatewayOrderRefMirrorsPayment(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)
	order := seedOrder(t, repo, enums.OrderStatusPendingApproval)

	payment := &models.Payment{
		ID:          uuid.New(),
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		Method:      enums.PaymentMethodGateway,
		Status:      enums.PaymentStatusPending,
		AmountCents: order.TotalCents,
		Currency:    enums.CurrencyINR,
	}
	require.NoError(t, repo.CreatePayment(context.Background(), payment))

	require.NoError(t, repo.SetGatewayOrderRef(context.Background(), order.ID, "go_abc"))

	var ref string
	require.NoError(t, db.Raw(`SELECT gateway_order_ref FROM payments WHERE order_id = ?`, order.ID).Scan(&ref).Error)
	assert.Equal(t, "go_abc", ref)
}
