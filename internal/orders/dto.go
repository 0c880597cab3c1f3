package orders

import (
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avaldera/localmart-backend/pkg/db/models"
	"github.com/avaldera/localmart-backend/pkg/enums"
	"github.com/avaldera/localmart-backend/pkg/types"
)

// LineItemInput is one purchased item as submitted by the customer.
type LineItemInput struct {
	ProductID     uuid.UUID
	Name          string
	UnitPrice     decimal.Decimal
	Qty           int
	CategoryFlags []string
}

// CreateOrderInput carries everything order placement needs. Money arrives
// as decimal amounts from the API boundary and is converted to cents here.
type CreateOrderInput struct {
	CustomerID      uuid.UUID
	SellerID        uuid.UUID
	PaymentMethod   enums.PaymentMethod
	Items           []LineItemInput
	Subtotal        decimal.Decimal
	DeliveryFee     decimal.Decimal
	Total           decimal.Decimal
	DeliveryAddress *types.Address
	StoreDetails    *types.StoreSnapshot
}

// CreateOrderResult is returned from order placement. GatewayOrderRef is
// empty for cash-on-delivery orders.
type CreateOrderResult struct {
	Order           *models.Order
	GatewayOrderRef string
}

// TransitionInput identifies the order and the seller acting on it.
type TransitionInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
}

// DeliverInput confirms handover with the customer's delivery code.
type DeliverInput struct {
	OrderID uuid.UUID
	ActorID uuid.UUID
	OTP     string
}

// CancelInput is a customer cancellation request.
type CancelInput struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
}

// ListFilters narrows order list queries.
type ListFilters struct {
	Status *enums.OrderStatus
	Limit  int
	Offset int
}

func snapshotItems(items []models.OrderLineItem) (json.RawMessage, error) {
	return json.Marshal(items)
}
