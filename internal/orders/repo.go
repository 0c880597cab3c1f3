package orders

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaldera/localmart-backend/pkg/db/models"
	"github.com/avaldera/localmart-backend/pkg/enums"
	"github.com/avaldera/localmart-backend/pkg/pagination"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreatePayment(ctx context.Context, payment *models.Payment) error {
	return r.db.WithContext(ctx).Create(payment).Error
}

func (r *repository) SetGatewayOrderRef(ctx context.Context, orderID uuid.UUID, gatewayOrderRef string) error {
	err := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("gateway_order_ref", gatewayOrderRef).Error
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("order_id = ?", orderID).
		Update("gateway_order_ref", gatewayOrderRef).Error
}

func (r *repository) FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusEvents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("id = ?", orderID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) FindByOrderNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("StatusEvents", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		Where("order_number = ?", orderNumber).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByCustomer(ctx context.Context, customerID uuid.UUID, filters ListFilters) ([]models.Order, error) {
	return r.list(ctx, "customer_id = ?", customerID, filters)
}

func (r *repository) ListBySeller(ctx context.Context, sellerID uuid.UUID, filters ListFilters) ([]models.Order, error) {
	return r.list(ctx, "seller_id = ?", sellerID, filters)
}

func (r *repository) list(ctx context.Context, where string, id uuid.UUID, filters ListFilters) ([]models.Order, error) {
	limit := pagination.NormalizeLimit(filters.Limit)
	offset := pagination.NormalizeOffset(filters.Offset)
	q := r.db.WithContext(ctx).
		Preload("Items").
		Where(where, id).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset)
	if filters.Status != nil {
		q = q.Where("status = ?", *filters.Status)
	}
	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// FindApprovalExpired returns pending orders whose seller approval deadline
// passed before the cutoff.
func (r *repository) FindApprovalExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND seller_approval_deadline < ?", enums.OrderStatusPendingApproval, cutoff).
		Order("seller_approval_deadline ASC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// UpdateStatusIf applies a guarded status transition. Zero rows affected
// means the stored status no longer matched the precondition.
func (r *repository) UpdateStatusIf(ctx context.Context, orderID uuid.UUID, expected, next enums.OrderStatus, updates map[string]any) (int64, error) {
	merged := map[string]any{"status": next}
	for k, v := range updates {
		merged[k] = v
	}
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND status = ?", orderID, expected).
		Updates(merged)
	return res.RowsAffected, res.Error
}

// SetDeliveryCode stores the OTP and QR URL only while unset so an existing
// code the customer has seen is never invalidated.
func (r *repository) SetDeliveryCode(ctx context.Context, orderID uuid.UUID, otp, qrCodeURL string) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND delivery_otp IS NULL", orderID).
		Updates(map[string]any{
			"delivery_otp": otp,
			"qr_code_url":  qrCodeURL,
		})
	return res.RowsAffected, res.Error
}

func (r *repository) UpdatePaymentStatusIf(ctx context.Context, orderID uuid.UUID, expected, next enums.PaymentStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ? AND payment_status = ?", orderID, expected).
		Update("payment_status", next)
	return res.RowsAffected, res.Error
}

func (r *repository) MarkPaymentRecordStatus(ctx context.Context, orderID uuid.UUID, expected, next enums.PaymentStatus) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("order_id = ? AND status = ?", orderID, expected).
		Update("status", next)
	return res.RowsAffected, res.Error
}

func (r *repository) AppendTimeline(ctx context.Context, orderID uuid.UUID, label string) error {
	event := models.OrderStatusEvent{
		ID:      uuid.New(),
		OrderID: orderID,
		Label:   label,
	}
	return r.db.WithContext(ctx).Create(&event).Error
}
