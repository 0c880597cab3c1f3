package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/avaldera/localmart-backend/internal/orders"
	"github.com/avaldera/localmart-backend/internal/refunds"
	"github.com/avaldera/localmart-backend/pkg/db/models"
	"github.com/avaldera/localmart-backend/pkg/enums"
	"github.com/avaldera/localmart-backend/pkg/logger"
	"github.com/avaldera/localmart-backend/pkg/outbox"
)

const defaultExpiryBatch = 100

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxEmitter interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type expiredOrderReader interface {
	FindApprovalExpired(ctx context.Context, cutoff time.Time, limit int) ([]models.Order, error)
}

type expiryOrderRepo interface {
	FindByID(ctx context.Context, orderID uuid.UUID) (*models.Order, error)
	UpdateStatusIf(ctx context.Context, orderID uuid.UUID, expected, next enums.OrderStatus, updates map[string]any) (int64, error)
	UpdatePaymentStatusIf(ctx context.Context, orderID uuid.UUID, expected, next enums.PaymentStatus) (int64, error)
	MarkPaymentRecordStatus(ctx context.Context, orderID uuid.UUID, expected, next enums.PaymentStatus) (int64, error)
	AppendTimeline(ctx context.Context, orderID uuid.UUID, label string) error
}

type expiryRepoFactory func(tx *gorm.DB) expiryOrderRepo

func defaultExpiryRepo(tx *gorm.DB) expiryOrderRepo {
	return orders.NewRepository(tx)
}

// OrderExpiryJobParams configure the stale order sweeper.
type OrderExpiryJobParams struct {
	Logger      *logger.Logger
	DB          txRunner
	Reader      expiredOrderReader
	Outbox      outboxEmitter
	RepoFactory expiryRepoFactory
	BatchSize   int
}

// NewOrderExpiryJob builds the job that cancels orders the seller never
// answered before their approval deadline.
func NewOrderExpiryJob(params OrderExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.DB == nil {
		return nil, fmt.Errorf("db runner required")
	}
	if params.Reader == nil {
		return nil, fmt.Errorf("expired orders reader required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	repoFactory := params.RepoFactory
	if repoFactory == nil {
		repoFactory = defaultExpiryRepo
	}
	batch := params.BatchSize
	if batch <= 0 {
		batch = defaultExpiryBatch
	}
	return &orderExpiryJob{
		logg:        params.Logger,
		db:          params.DB,
		reader:      params.Reader,
		outbox:      params.Outbox,
		repoFactory: repoFactory,
		batch:       batch,
		now:         time.Now,
	}, nil
}

type orderExpiryJob struct {
	logg        *logger.Logger
	db          txRunner
	reader      expiredOrderReader
	outbox      outboxEmitter
	repoFactory expiryRepoFactory
	batch       int
	now         func() time.Time
}

func (j *orderExpiryJob) Name() string { return "order-expiry" }

func (j *orderExpiryJob) Run(ctx context.Context) error {
	stale, err := j.reader.FindApprovalExpired(ctx, j.now().UTC(), j.batch)
	if err != nil {
		return fmt.Errorf("query expired orders: %w", err)
	}
	var errs []error
	expired := 0
	for i := range stale {
		if err := j.expireOrder(ctx, &stale[i]); err != nil {
			errs = append(errs, fmt.Errorf("expire order %s: %w", stale[i].OrderNumber, err))
			continue
		}
		expired++
	}
	logCtx := j.logg.WithFields(ctx, map[string]any{
		"candidates": len(stale),
		"expired":    expired,
	})
	j.logg.Info(logCtx, "order expiry sweep complete")
	return multierr.Combine(errs...)
}

// expireOrder re-reads the order inside its own transaction; the guarded
// status update makes the sweep safe against a seller accepting concurrently.
func (j *orderExpiryJob) expireOrder(ctx context.Context, order *models.Order) error {
	return j.db.WithTx(ctx, func(tx *gorm.DB) error {
		repo := j.repoFactory(tx)
		current, err := repo.FindByID(ctx, order.ID)
		if err != nil {
			if err == gorm.ErrRecordNotFound {
				return nil
			}
			return err
		}
		if current.Status != enums.OrderStatusPendingApproval {
			return nil
		}

		now := j.now()
		affected, err := repo.UpdateStatusIf(ctx, current.ID, enums.OrderStatusPendingApproval, enums.OrderStatusCancelled, map[string]any{"cancelled_at": now})
		if err != nil {
			return err
		}
		if affected == 0 {
			return nil
		}
		if err := repo.AppendTimeline(ctx, current.ID, "order_expired"); err != nil {
			return err
		}

		data := orders.OrderCancelledEvent{
			OrderID:     current.ID,
			OrderNumber: current.OrderNumber,
			CustomerID:  current.CustomerID,
		}
		if current.PaymentMethod == enums.PaymentMethodGateway && current.PaymentStatus == enums.PaymentStatusPaid {
			if _, err := repo.UpdatePaymentStatusIf(ctx, current.ID, enums.PaymentStatusPaid, enums.PaymentStatusRefunded); err != nil {
				return err
			}
			if _, err := repo.MarkPaymentRecordStatus(ctx, current.ID, enums.PaymentStatusPaid, enums.PaymentStatusRefunded); err != nil {
				return err
			}
			if err := repo.AppendTimeline(ctx, current.ID, "payment_refunded"); err != nil {
				return err
			}
			data.RefundDue = true
			data.RefundAmountCents = current.TotalCents
			data.LedgerReference = refunds.RefundReference(current.OrderNumber)
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   current.ID,
			Version:       1,
			OccurredAt:    now.UTC(),
			Data:          data,
		}
		return j.outbox.Emit(ctx, tx, event)
	})
}
