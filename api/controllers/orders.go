package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/avaldera/localmart-backend/api/middleware"
	"github.com/avaldera/localmart-backend/api/responses"
	"github.com/avaldera/localmart-backend/api/validators"
	"github.com/avaldera/localmart-backend/internal/orders"
	"github.com/avaldera/localmart-backend/pkg/enums"
	pkgerrors "github.com/avaldera/localmart-backend/pkg/errors"
	"github.com/avaldera/localmart-backend/pkg/logger"
	"github.com/avaldera/localmart-backend/pkg/pagination"
)

type createOrderLineItem struct {
	ProductID     uuid.UUID       `json:"product_id" validate:"required"`
	Name          string          `json:"name" validate:"required"`
	UnitPrice     decimal.Decimal `json:"unit_price" validate:"required"`
	Qty           int             `json:"qty" validate:"required,min=1"`
	CategoryFlags []string        `json:"category_flags,omitempty"`
}

type createOrderRequest struct {
	SellerID        uuid.UUID             `json:"seller_id" validate:"required"`
	PaymentMethod   string                `json:"payment_method" validate:"required"`
	Items           []createOrderLineItem `json:"items" validate:"required,min=1,dive"`
	Subtotal        decimal.Decimal       `json:"subtotal" validate:"required"`
	DeliveryFee     decimal.Decimal       `json:"delivery_fee"`
	Total           decimal.Decimal       `json:"total" validate:"required"`
	DeliveryAddress *addressRequest       `json:"delivery_address,omitempty"`
	StoreDetails    *storeDetailsRequest  `json:"store_details,omitempty"`
}

type createOrderResponse struct {
	Order           orderView `json:"order"`
	GatewayOrderRef string    `json:"gateway_order_ref,omitempty"`
}

// CreateOrder places a customer order. For gateway orders the response
// carries the payment intent reference the client completes payment against.
func CreateOrder(service orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		method, err := enums.ParsePaymentMethod(req.PaymentMethod)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method"))
			return
		}

		input := orders.CreateOrderInput{
			CustomerID:      customerID,
			SellerID:        req.SellerID,
			PaymentMethod:   method,
			Subtotal:        req.Subtotal,
			DeliveryFee:     req.DeliveryFee,
			Total:           req.Total,
			DeliveryAddress: req.DeliveryAddress.toType(),
			StoreDetails:    req.StoreDetails.toType(),
		}
		for _, item := range req.Items {
			input.Items = append(input.Items, orders.LineItemInput{
				ProductID:     item.ProductID,
				Name:          item.Name,
				UnitPrice:     item.UnitPrice,
				Qty:           item.Qty,
				CategoryFlags: item.CategoryFlags,
			})
		}

		result, err := service.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, createOrderResponse{
			Order:           orderToView(result.Order, true),
			GatewayOrderRef: result.GatewayOrderRef,
		})
	}
}

// ListOrders returns the calling customer's orders, newest first.
func ListOrders(service orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := listFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := service.ListForCustomer(r.Context(), customerID, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ordersToViews(list))
	}
}

// OrderDetail returns one order with its line items and status timeline.
func OrderDetail(service orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := service.GetForCustomer(r.Context(), orderID, customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, orderToView(order, true))
	}
}

// CancelOrder cancels within the cancellation window; paid gateway orders
// are refunded to the customer wallet.
func CancelOrder(service orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := service.Cancel(r.Context(), orders.CancelInput{OrderID: orderID, CustomerID: customerID}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "cancelled"})
	}
}

func actorID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing actor")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid actor id")
	}
	return id, nil
}

func orderIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "orderId")
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order id")
	}
	return id, nil
}

func listFilters(r *http.Request) (orders.ListFilters, error) {
	limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
	if err != nil {
		return orders.ListFilters{}, err
	}
	offset, err := validators.ParseQueryInt(r, "offset", 0, 0, pagination.MaxOffset)
	if err != nil {
		return orders.ListFilters{}, err
	}

	filters := orders.ListFilters{Limit: limit, Offset: offset}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status, err := enums.ParseOrderStatus(raw)
		if err != nil {
			return orders.ListFilters{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filters.Status = &status
	}
	return filters, nil
}
