package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/avaldera/localmart-backend/internal/notifications"
	"github.com/avaldera/localmart-backend/internal/orders"
	"github.com/avaldera/localmart-backend/internal/wallet"
	"github.com/avaldera/localmart-backend/pkg/config"
	"github.com/avaldera/localmart-backend/pkg/db/models"
	"github.com/avaldera/localmart-backend/pkg/enums"
	pkgerrors "github.com/avaldera/localmart-backend/pkg/errors"
	"github.com/avaldera/localmart-backend/pkg/logger"
	"github.com/avaldera/localmart-backend/pkg/metrics"
	"github.com/avaldera/localmart-backend/pkg/outbox"
)

const (
	defaultBatchSize   = 50
	defaultPollMs      = 500
	defaultMaxAttempts = 10
	maxBackoff         = 10 * time.Second
	jitterWindow       = 250 * time.Millisecond

	jobDispatch = "outbox_dispatch"
)

var jitterSource = rand.New(rand.NewSource(time.Now().UnixNano()))

type dbClient interface {
	Ping(context.Context) error
	WithTx(context.Context, func(tx *gorm.DB) error) error
}

type outboxRepository interface {
	FetchUnprocessed(limit, maxAttempts int) ([]models.OutboxEvent, error)
	MarkProcessed(id uuid.UUID) error
	MarkFailed(id uuid.UUID, err error) error
}

type ledger interface {
	Credit(ctx context.Context, tx *gorm.DB, input wallet.EntryInput) (*models.WalletTransaction, error)
}

type stockDecrementer interface {
	Decrement(ctx context.Context, tx *gorm.DB, productID uuid.UUID, qty int) error
}

type notifier interface {
	Publish(ctx context.Context, event notifications.Event) error
}

type ServiceParams struct {
	Config     *config.Config
	Logger     *logger.Logger
	DB         dbClient
	Repository outboxRepository
	Ledger     ledger
	Stock      stockDecrementer
	Notifier   notifier
	Metrics    *metrics.WorkerJobMetrics
}

// Service drains the outbox: it applies the money and stock side effects a
// committed transition owes, publishes the notification, and marks the row
// processed. Every side effect is idempotent so at-least-once delivery is
// safe.
type Service struct {
	cfg          *config.Config
	logg         *logger.Logger
	db           dbClient
	repo         outboxRepository
	ledger       ledger
	stock        stockDecrementer
	notifier     notifier
	metrics      *metrics.WorkerJobMetrics
	batchSize    int
	maxAttempts  int
	pollInterval time.Duration
}

func NewService(params ServiceParams) (*Service, error) {
	if params.Config == nil {
		return nil, errors.New("config is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.DB == nil {
		return nil, errors.New("database client is required")
	}
	if params.Repository == nil {
		return nil, errors.New("outbox repository is required")
	}
	if params.Ledger == nil {
		return nil, errors.New("wallet service is required")
	}
	if params.Stock == nil {
		return nil, errors.New("stock decrementer is required")
	}
	if params.Notifier == nil {
		return nil, errors.New("notifier is required")
	}

	batch := params.Config.Outbox.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	pollMs := params.Config.Outbox.PollIntervalMS
	if pollMs <= 0 {
		pollMs = defaultPollMs
	}
	maxAttempts := params.Config.Outbox.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}

	return &Service{
		cfg:          params.Config,
		logg:         params.Logger,
		db:           params.DB,
		repo:         params.Repository,
		ledger:       params.Ledger,
		stock:        params.Stock,
		notifier:     params.Notifier,
		metrics:      params.Metrics,
		batchSize:    batch,
		maxAttempts:  maxAttempts,
		pollInterval: time.Duration(pollMs) * time.Millisecond,
	}, nil
}

func (s *Service) Run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if err := s.db.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}

	interval := s.pollInterval
	backoff := interval

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "outbox worker context canceled")
			return ctx.Err()
		default:
		}

		processed, err := s.processBatch(ctx)
		if err != nil {
			s.logg.Error(ctx, "outbox worker batch error", err)
			backoff = nextBackoff(backoff, interval, maxBackoff)
			if err := s.sleep(ctx, withJitter(backoff)); err != nil {
				return err
			}
			continue
		}

		backoff = interval
		if processed {
			continue
		}
		if err := s.sleep(ctx, withJitter(interval)); err != nil {
			return err
		}
	}
}

func (s *Service) processBatch(ctx context.Context) (bool, error) {
	events, err := s.repo.FetchUnprocessed(s.batchSize, s.maxAttempts)
	if err != nil {
		return false, err
	}
	if len(events) == 0 {
		return false, nil
	}

	for _, event := range events {
		start := time.Now()
		fields := map[string]any{
			"event_id":      event.ID.String(),
			"event_type":    event.EventType,
			"attempt_count": event.AttemptCount,
		}
		eventCtx := s.logg.WithFields(ctx, fields)

		if err := s.handle(ctx, event); err != nil {
			s.metrics.IncFailure(jobDispatch)
			s.logg.Error(eventCtx, "outbox event dispatch failed", err)
			if markErr := s.repo.MarkFailed(event.ID, err); markErr != nil {
				return true, markErr
			}
			continue
		}

		s.metrics.ObserveDuration(jobDispatch, time.Since(start))
		s.metrics.IncSuccess(jobDispatch)
		if err := s.repo.MarkProcessed(event.ID); err != nil {
			return true, err
		}
	}
	return true, nil
}

func (s *Service) handle(ctx context.Context, event models.OutboxEvent) error {
	data, err := decodeEnvelope(event)
	if err != nil {
		// Undecodable payloads burn their retry budget and fall out of the
		// fetch window instead of wedging the queue.
		return err
	}

	switch event.EventType {
	case enums.EventOrderAccepted:
		return s.handleOrderAccepted(ctx, event, data)
	case enums.EventOrderCancelled:
		return s.handleOrderCancelled(ctx, event, data)
	case enums.EventOrderDelivered:
		return s.handleOrderDelivered(ctx, event, data)
	default:
		return s.notify(ctx, event, data)
	}
}

// handleOrderAccepted settles the seller and takes sold stock. The credit
// lands first; a stock shortfall is logged and surfaced through metrics but
// never claws the credit back.
func (s *Service) handleOrderAccepted(ctx context.Context, event models.OutboxEvent, data json.RawMessage) error {
	var payload orders.OrderAcceptedEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode order accepted payload: %w", err)
	}

	err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.ledger.Credit(ctx, tx, wallet.EntryInput{
			AccountID:   payload.SellerID,
			AmountCents: payload.SubtotalCents,
			Description: fmt.Sprintf("settlement for order %s", payload.OrderNumber),
			Reference:   payload.LedgerReference,
		})
		return err
	})
	if err != nil {
		return fmt.Errorf("credit seller: %w", err)
	}

	var stockErrs error
	for _, item := range payload.Items {
		item := item
		err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
			return s.stock.Decrement(ctx, tx, item.ProductID, item.Qty)
		})
		if err == nil {
			continue
		}
		if pkgerrors.HasCode(err, pkgerrors.CodeConflict) {
			s.metrics.IncFailure("stock_decrement")
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
				"order_number": payload.OrderNumber,
				"product_id":   item.ProductID.String(),
			}), "stock did not cover accepted order")
			continue
		}
		stockErrs = multierr.Append(stockErrs, err)
	}
	if stockErrs != nil {
		return fmt.Errorf("decrement stock: %w", stockErrs)
	}

	return s.notify(ctx, event, data)
}

func (s *Service) handleOrderCancelled(ctx context.Context, event models.OutboxEvent, data json.RawMessage) error {
	var payload orders.OrderCancelledEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode order cancelled payload: %w", err)
	}

	if payload.RefundDue {
		err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
			_, err := s.ledger.Credit(ctx, tx, wallet.EntryInput{
				AccountID:   payload.CustomerID,
				AmountCents: payload.RefundAmountCents,
				Description: fmt.Sprintf("refund for order %s", payload.OrderNumber),
				Reference:   payload.LedgerReference,
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("credit refund: %w", err)
		}
	}

	return s.notify(ctx, event, data)
}

func (s *Service) handleOrderDelivered(ctx context.Context, event models.OutboxEvent, data json.RawMessage) error {
	var payload orders.OrderDeliveredEvent
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("decode order delivered payload: %w", err)
	}

	platformID, err := uuid.Parse(s.cfg.Wallet.PlatformAccountID)
	if err == nil && platformID != uuid.Nil && payload.DeliveryFeeCents > 0 {
		err := s.db.WithTx(ctx, func(tx *gorm.DB) error {
			_, err := s.ledger.Credit(ctx, tx, wallet.EntryInput{
				AccountID:   platformID,
				AmountCents: payload.DeliveryFeeCents,
				Description: fmt.Sprintf("delivery fee for order %s", payload.OrderNumber),
				Reference:   deliveryFeeReference(payload.OrderNumber),
			})
			return err
		})
		if err != nil {
			return fmt.Errorf("credit platform fee: %w", err)
		}
	}

	return s.notify(ctx, event, data)
}

func (s *Service) notify(ctx context.Context, event models.OutboxEvent, data json.RawMessage) error {
	var header struct {
		OrderID     uuid.UUID `json:"order_id"`
		OrderNumber string    `json:"order_number"`
		CustomerID  uuid.UUID `json:"customer_id"`
	}
	// Best effort: every payload carries the order header fields.
	_ = json.Unmarshal(data, &header)

	return s.notifier.Publish(ctx, notifications.Event{
		Type:        string(event.EventType),
		OrderID:     header.OrderID,
		OrderNumber: header.OrderNumber,
		CustomerID:  header.CustomerID,
		Data:        data,
	})
}

func decodeEnvelope(event models.OutboxEvent) (json.RawMessage, error) {
	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(event.Payload, &envelope); err != nil {
		return nil, fmt.Errorf("decode outbox envelope: %w", err)
	}
	if len(envelope.Data) == 0 {
		return nil, errors.New("outbox envelope has no data")
	}
	return envelope.Data, nil
}

func deliveryFeeReference(orderNumber string) string {
	return fmt.Sprintf("DELIVERY_FEE_%s", orderNumber)
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func nextBackoff(current, floor, ceiling time.Duration) time.Duration {
	next := current * 2
	if next < floor {
		next = floor
	}
	if next > ceiling {
		next = ceiling
	}
	return next
}

func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return d
	}
	return d + time.Duration(jitterSource.Int63n(int64(jitterWindow)))
}
