package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/avaldera/localmart-backend/internal/delivery"
	"github.com/avaldera/localmart-backend/internal/refunds"
	"github.com/avaldera/localmart-backend/pkg/config"
	"github.com/avaldera/localmart-backend/pkg/db/models"
	"github.com/avaldera/localmart-backend/pkg/enums"
	pkgerrors "github.com/avaldera/localmart-backend/pkg/errors"
	"github.com/avaldera/localmart-backend/pkg/gateway"
	"github.com/avaldera/localmart-backend/pkg/outbox"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type gatewayIntents interface {
	CreateOrder(ctx context.Context, input gateway.CreateOrderInput) (string, error)
}

// Service defines the order lifecycle operations.
type Service interface {
	Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error)
	Accept(ctx context.Context, input TransitionInput) error
	Reject(ctx context.Context, input TransitionInput) error
	StartProcessing(ctx context.Context, input TransitionInput) error
	MarkReady(ctx context.Context, input TransitionInput) error
	StartDelivery(ctx context.Context, input TransitionInput) error
	Deliver(ctx context.Context, input DeliverInput) error
	Cancel(ctx context.Context, input CancelInput) error
	GetForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*models.Order, error)
	ListForCustomer(ctx context.Context, customerID uuid.UUID, filters ListFilters) ([]models.Order, error)
	ListForSeller(ctx context.Context, sellerID uuid.UUID, filters ListFilters) ([]models.Order, error)
}

type service struct {
	repo      Repository
	tx        txRunner
	outbox    outboxPublisher
	gateway   gatewayIntents
	codes     delivery.Generator
	evaluator *refunds.Evaluator
	cfg       config.OrdersConfig
	now       func() time.Time
}

// AcceptedLineItem carries what the stock decrement needs per item.
type AcceptedLineItem struct {
	ProductID uuid.UUID `json:"product_id"`
	Qty       int       `json:"qty"`
}

// OrderPlacedEvent is emitted when an order is created.
type OrderPlacedEvent struct {
	OrderID       uuid.UUID           `json:"order_id"`
	OrderNumber   string              `json:"order_number"`
	CustomerID    uuid.UUID           `json:"customer_id"`
	SellerID      uuid.UUID           `json:"seller_id"`
	TotalCents    int64               `json:"total_cents"`
	PaymentMethod enums.PaymentMethod `json:"payment_method"`
}

// OrderAcceptedEvent is emitted when a seller accepts an order. The worker
// uses it to credit the seller and decrement stock.
type OrderAcceptedEvent struct {
	OrderID         uuid.UUID          `json:"order_id"`
	OrderNumber     string             `json:"order_number"`
	SellerID        uuid.UUID          `json:"seller_id"`
	SubtotalCents   int64              `json:"subtotal_cents"`
	LedgerReference string             `json:"ledger_reference"`
	Items           []AcceptedLineItem `json:"items"`
}

// OrderTransitionEvent is emitted for transitions with no money movement.
type OrderTransitionEvent struct {
	OrderID     uuid.UUID         `json:"order_id"`
	OrderNumber string            `json:"order_number"`
	CustomerID  uuid.UUID         `json:"customer_id"`
	Status      enums.OrderStatus `json:"status"`
}

// OrderDeliveredEvent is emitted on delivery confirmation. The worker uses
// it to settle the platform's delivery fee.
type OrderDeliveredEvent struct {
	OrderID          uuid.UUID           `json:"order_id"`
	OrderNumber      string              `json:"order_number"`
	CustomerID       uuid.UUID           `json:"customer_id"`
	SellerID         uuid.UUID           `json:"seller_id"`
	DeliveryFeeCents int64               `json:"delivery_fee_cents"`
	PaymentMethod    enums.PaymentMethod `json:"payment_method"`
	CODCollected     bool                `json:"cod_collected"`
}

// OrderCancelledEvent is emitted on customer cancellation. The worker uses
// it to credit the refund when one is due.
type OrderCancelledEvent struct {
	OrderID           uuid.UUID `json:"order_id"`
	OrderNumber       string    `json:"order_number"`
	CustomerID        uuid.UUID `json:"customer_id"`
	RefundDue         bool      `json:"refund_due"`
	RefundAmountCents int64     `json:"refund_amount_cents"`
	LedgerReference   string    `json:"ledger_reference,omitempty"`
}

// OrderReference is the ledger idempotency key for a seller settlement.
func OrderReference(orderNumber string) string {
	return fmt.Sprintf("ORDER_%s", orderNumber)
}

var newOrderNumber = func() string {
	return "LM-" + strings.ToUpper(uuid.NewString()[:8])
}

// maxTotalMismatch is the epsilon the creation invariant tolerates between
// the submitted total and subtotal + delivery fee.
var maxTotalMismatch = decimal.NewFromFloat(0.01)

// NewService builds an order service with the required dependencies.
func NewService(repo Repository, tx txRunner, ob outboxPublisher, gw gatewayIntents, codes delivery.Generator, evaluator *refunds.Evaluator, cfg config.OrdersConfig) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if ob == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if gw == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	if codes == nil {
		return nil, fmt.Errorf("delivery code generator required")
	}
	if evaluator == nil {
		return nil, fmt.Errorf("cancellation evaluator required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		outbox:    ob,
		gateway:   gw,
		codes:     codes,
		evaluator: evaluator,
		cfg:       cfg,
		now:       time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, input CreateOrderInput) (*CreateOrderResult, error) {
	if err := validateCreateInput(input); err != nil {
		return nil, err
	}

	now := s.now()
	order := &models.Order{
		ID:                     uuid.New(),
		OrderNumber:            newOrderNumber(),
		CustomerID:             input.CustomerID,
		SellerID:               input.SellerID,
		Currency:               enums.CurrencyINR,
		Status:                 enums.OrderStatusPendingApproval,
		PaymentMethod:          input.PaymentMethod,
		PaymentStatus:          enums.PaymentStatusPending,
		SubtotalCents:          toCents(input.Subtotal),
		DeliveryFeeCents:       toCents(input.DeliveryFee),
		TotalCents:             toCents(input.Total),
		DeliveryAddress:        input.DeliveryAddress,
		StoreDetails:           input.StoreDetails,
		SellerApprovalDeadline: now.Add(s.cfg.SellerApprovalWindow),
		PlacedAt:               now,
	}
	for _, item := range input.Items {
		unitCents := toCents(item.UnitPrice)
		order.Items = append(order.Items, models.OrderLineItem{
			ID:             uuid.New(),
			OrderID:        order.ID,
			ProductID:      item.ProductID,
			Name:           item.Name,
			UnitPriceCents: unitCents,
			Qty:            item.Qty,
			TotalCents:     unitCents * int64(item.Qty),
			CategoryFlags:  item.CategoryFlags,
		})
	}

	itemsSnapshot, err := snapshotItems(order.Items)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "snapshot line items")
	}
	payment := &models.Payment{
		ID:              uuid.New(),
		OrderID:         order.ID,
		OrderNumber:     order.OrderNumber,
		Method:          input.PaymentMethod,
		Status:          enums.PaymentStatusPending,
		AmountCents:     order.TotalCents,
		Currency:        order.Currency,
		ItemsSnapshot:   itemsSnapshot,
		DeliveryAddress: input.DeliveryAddress,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := repo.CreatePayment(ctx, payment); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment mirror")
		}
		if err := repo.AppendTimeline(ctx, order.ID, "order_placed"); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderPlaced,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.CustomerID, Role: "customer"},
			Data: OrderPlacedEvent{
				OrderID:       order.ID,
				OrderNumber:   order.OrderNumber,
				CustomerID:    order.CustomerID,
				SellerID:      order.SellerID,
				TotalCents:    order.TotalCents,
				PaymentMethod: order.PaymentMethod,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	result := &CreateOrderResult{Order: order}
	if input.PaymentMethod != enums.PaymentMethodGateway {
		return result, nil
	}

	// The order is already committed; a gateway outage leaves it pending
	// rather than rolling back placement.
	gatewayRef, err := s.gateway.CreateOrder(ctx, gateway.CreateOrderInput{
		AmountCents: order.TotalCents,
		Currency:    string(order.Currency),
		Receipt:     order.OrderNumber,
	})
	if err != nil {
		// Surface the committed order number so the caller can resume
		// payment setup instead of placing a second order.
		return nil, withPlacedOrder(err, order.OrderNumber)
	}
	if err := s.repo.SetGatewayOrderRef(ctx, order.ID, gatewayRef); err != nil {
		wrapped := pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store gateway reference")
		return nil, withPlacedOrder(wrapped, order.OrderNumber)
	}
	order.GatewayOrderRef = &gatewayRef
	result.GatewayOrderRef = gatewayRef
	return result, nil
}

func (s *service) Accept(ctx context.Context, input TransitionInput) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadForSeller(ctx, repo, input.OrderID, input.ActorID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusAccepted {
			return nil
		}
		if order.Status != enums.OrderStatusPendingApproval {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "only pending orders can be accepted")
		}
		if s.now().After(order.SellerApprovalDeadline) {
			return pkgerrors.New(pkgerrors.CodeDeadlineExpired, "seller approval window has closed")
		}

		if err := s.applyTransition(ctx, repo, order, enums.OrderStatusPendingApproval, enums.OrderStatusAccepted, "order_accepted", nil); err != nil {
			return err
		}

		items := make([]AcceptedLineItem, 0, len(order.Items))
		for _, item := range order.Items {
			items = append(items, AcceptedLineItem{ProductID: item.ProductID, Qty: item.Qty})
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventOrderAccepted,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID, Role: "seller"},
			Data: OrderAcceptedEvent{
				OrderID:         order.ID,
				OrderNumber:     order.OrderNumber,
				SellerID:        order.SellerID,
				SubtotalCents:   order.SubtotalCents,
				LedgerReference: OrderReference(order.OrderNumber),
				Items:           items,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

func (s *service) Reject(ctx context.Context, input TransitionInput) error {
	return s.simpleTransition(ctx, input, enums.OrderStatusPendingApproval, enums.OrderStatusRejected, "order_rejected", enums.EventOrderRejected)
}

func (s *service) StartProcessing(ctx context.Context, input TransitionInput) error {
	return s.simpleTransition(ctx, input, enums.OrderStatusAccepted, enums.OrderStatusProcessing, "order_processing", enums.EventOrderProcessing)
}

func (s *service) MarkReady(ctx context.Context, input TransitionInput) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadForSeller(ctx, repo, input.OrderID, input.ActorID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusReadyForDelivery {
			return nil
		}
		if order.Status != enums.OrderStatusProcessing {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "only processing orders can be marked ready")
		}

		if err := s.applyTransition(ctx, repo, order, enums.OrderStatusProcessing, enums.OrderStatusReadyForDelivery, "order_ready", nil); err != nil {
			return err
		}

		// The delivery code is set once; an existing code is reused so the
		// customer's copy stays valid.
		if order.DeliveryOTP == nil || *order.DeliveryOTP == "" {
			otp, err := s.codes.GenerateOTP()
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "generate delivery code")
			}
			qrURL := s.codes.QRCodeURL(order.OrderNumber, otp)
			if _, err := repo.SetDeliveryCode(ctx, order.ID, otp, qrURL); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store delivery code")
			}
		}

		return s.emitTransition(ctx, tx, order, input.ActorID, enums.OrderStatusReadyForDelivery, enums.EventOrderReady)
	})
}

func (s *service) StartDelivery(ctx context.Context, input TransitionInput) error {
	return s.simpleTransition(ctx, input, enums.OrderStatusReadyForDelivery, enums.OrderStatusOutForDelivery, "order_out_for_delivery", enums.EventOrderOutForDelivery)
}

func (s *service) Deliver(ctx context.Context, input DeliverInput) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.Status == enums.OrderStatusDelivered {
			return nil
		}
		if order.Status != enums.OrderStatusOutForDelivery {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, "only out-for-delivery orders can be delivered")
		}
		if err := delivery.VerifyOTP(order.DeliveryOTP, input.OTP); err != nil {
			return err
		}

		now := s.now()
		if err := s.applyTransition(ctx, repo, order, enums.OrderStatusOutForDelivery, enums.OrderStatusDelivered, "order_delivered", map[string]any{"delivered_at": now}); err != nil {
			return err
		}

		codCollected := false
		if order.PaymentMethod == enums.PaymentMethodCOD && order.PaymentStatus == enums.PaymentStatusPending {
			if _, err := repo.UpdatePaymentStatusIf(ctx, order.ID, enums.PaymentStatusPending, enums.PaymentStatusPaid); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark cod order paid")
			}
			if _, err := repo.MarkPaymentRecordStatus(ctx, order.ID, enums.PaymentStatusPending, enums.PaymentStatusPaid); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment record paid")
			}
			if err := repo.AppendTimeline(ctx, order.ID, "payment_confirmed"); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
			}
			codCollected = true
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderDelivered,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.ActorID, Role: "agent"},
			Data: OrderDeliveredEvent{
				OrderID:          order.ID,
				OrderNumber:      order.OrderNumber,
				CustomerID:       order.CustomerID,
				SellerID:         order.SellerID,
				DeliveryFeeCents: order.DeliveryFeeCents,
				PaymentMethod:    order.PaymentMethod,
				CODCollected:     codCollected,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

func (s *service) Cancel(ctx context.Context, input CancelInput) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadOrder(ctx, repo, input.OrderID)
		if err != nil {
			return err
		}
		if order.CustomerID != input.CustomerID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
		}
		if order.Status == enums.OrderStatusCancelled {
			return nil
		}

		decision, err := s.evaluator.Evaluate(order)
		if err != nil {
			return err
		}

		now := s.now()
		if err := s.applyTransition(ctx, repo, order, order.Status, enums.OrderStatusCancelled, "order_cancelled", map[string]any{"cancelled_at": now}); err != nil {
			return err
		}

		if decision.RefundDue {
			if _, err := repo.UpdatePaymentStatusIf(ctx, order.ID, enums.PaymentStatusPaid, enums.PaymentStatusRefunded); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark order refunded")
			}
			if _, err := repo.MarkPaymentRecordStatus(ctx, order.ID, enums.PaymentStatusPaid, enums.PaymentStatusRefunded); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "mark payment record refunded")
			}
			if err := repo.AppendTimeline(ctx, order.ID, "payment_refunded"); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
			}
		}

		event := outbox.DomainEvent{
			EventType:     enums.EventOrderCancelled,
			AggregateType: enums.AggregateOrder,
			AggregateID:   order.ID,
			Version:       1,
			Actor:         &outbox.ActorRef{UserID: input.CustomerID, Role: "customer"},
			Data: OrderCancelledEvent{
				OrderID:           order.ID,
				OrderNumber:       order.OrderNumber,
				CustomerID:        order.CustomerID,
				RefundDue:         decision.RefundDue,
				RefundAmountCents: decision.RefundAmountCents,
				LedgerReference:   decision.Reference,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
}

func (s *service) GetForCustomer(ctx context.Context, orderID, customerID uuid.UUID) (*models.Order, error) {
	order, err := s.loadOrder(ctx, s.repo, orderID)
	if err != nil {
		return nil, err
	}
	if order.CustomerID != customerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to customer")
	}
	return order, nil
}

func (s *service) ListForCustomer(ctx context.Context, customerID uuid.UUID, filters ListFilters) ([]models.Order, error) {
	if customerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	orders, err := s.repo.ListByCustomer(ctx, customerID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customer orders")
	}
	return orders, nil
}

func (s *service) ListForSeller(ctx context.Context, sellerID uuid.UUID, filters ListFilters) ([]models.Order, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	orders, err := s.repo.ListBySeller(ctx, sellerID, filters)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list seller orders")
	}
	return orders, nil
}

func (s *service) simpleTransition(ctx context.Context, input TransitionInput, from, to enums.OrderStatus, label string, eventType enums.OutboxEventType) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, err := s.loadForSeller(ctx, repo, input.OrderID, input.ActorID)
		if err != nil {
			return err
		}
		if order.Status == to {
			return nil
		}
		if order.Status != from {
			return pkgerrors.New(pkgerrors.CodeInvalidTransition, fmt.Sprintf("transition to %s not allowed from %s", to, order.Status))
		}
		if err := s.applyTransition(ctx, repo, order, from, to, label, nil); err != nil {
			return err
		}
		return s.emitTransition(ctx, tx, order, input.ActorID, to, eventType)
	})
}

// applyTransition performs the guarded status write and appends the timeline
// entry. A rejected guard means another writer changed the order first.
func (s *service) applyTransition(ctx context.Context, repo Repository, order *models.Order, from, to enums.OrderStatus, label string, updates map[string]any) error {
	affected, err := repo.UpdateStatusIf(ctx, order.ID, from, to, updates)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeConcurrentModification, "order status changed concurrently")
	}
	if err := repo.AppendTimeline(ctx, order.ID, label); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "append timeline")
	}
	order.Status = to
	return nil
}

func (s *service) emitTransition(ctx context.Context, tx *gorm.DB, order *models.Order, actorID uuid.UUID, status enums.OrderStatus, eventType enums.OutboxEventType) error {
	event := outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateOrder,
		AggregateID:   order.ID,
		Version:       1,
		Actor:         &outbox.ActorRef{UserID: actorID, Role: "seller"},
		Data: OrderTransitionEvent{
			OrderID:     order.ID,
			OrderNumber: order.OrderNumber,
			CustomerID:  order.CustomerID,
			Status:      status,
		},
	}
	return s.outbox.Emit(ctx, tx, event)
}

func (s *service) loadOrder(ctx context.Context, repo Repository, orderID uuid.UUID) (*models.Order, error) {
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id required")
	}
	order, err := repo.FindByID(ctx, orderID)
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return order, nil
}

func (s *service) loadForSeller(ctx context.Context, repo Repository, orderID, sellerID uuid.UUID) (*models.Order, error) {
	if sellerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "seller identity missing")
	}
	order, err := s.loadOrder(ctx, repo, orderID)
	if err != nil {
		return nil, err
	}
	if order.SellerID != sellerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "order does not belong to seller")
	}
	return order, nil
}

func validateCreateInput(input CreateOrderInput) error {
	if input.CustomerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "customer id required")
	}
	if input.SellerID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller id required")
	}
	if !input.PaymentMethod.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method must be cod or gateway")
	}
	if len(input.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "order requires at least one line item")
	}
	for _, item := range input.Items {
		if item.Qty <= 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "line item quantity must be positive")
		}
		if item.UnitPrice.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeValidation, "line item price cannot be negative")
		}
	}
	mismatch := input.Subtotal.Add(input.DeliveryFee).Sub(input.Total).Abs()
	if mismatch.GreaterThan(maxTotalMismatch) {
		return pkgerrors.New(pkgerrors.CodeValidation, "total does not match subtotal plus delivery fee")
	}
	return nil
}

func toCents(amount decimal.Decimal) int64 {
	return amount.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
}

// withPlacedOrder tags a post-commit failure with the order number of the
// placement that already went through.
func withPlacedOrder(err error, orderNumber string) error {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.WithDetails(map[string]any{"order_number": orderNumber})
	}
	return pkgerrors.Wrap(pkgerrors.CodeGatewayUnavailable, err, "create gateway order intent").
		WithDetails(map[string]any{"order_number": orderNumber})
}
