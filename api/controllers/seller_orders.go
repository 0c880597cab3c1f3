package controllers

import (
	"context"
	"net/http"

	"github.com/avaldera/localmart-backend/api/responses"
	"github.com/avaldera/localmart-backend/internal/orders"
	"github.com/avaldera/localmart-backend/pkg/logger"
)

// SellerListOrders returns the seller's order queue, filterable by status.
func SellerListOrders(service orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filters, err := listFilters(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		list, err := service.ListForSeller(r.Context(), sellerID, filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, ordersToViews(list))
	}
}

// SellerAcceptOrder accepts a pending order before its approval deadline.
func SellerAcceptOrder(service orders.Service, logg *logger.Logger) http.HandlerFunc {
	return sellerTransition(service.Accept, logg, "accepted")
}

// SellerRejectOrder declines a pending order.
func SellerRejectOrder(service orders.Service, logg *logger.Logger) http.HandlerFunc {
	return sellerTransition(service.Reject, logg, "rejected")
}

// SellerStartProcessing moves an accepted order into preparation.
func SellerStartProcessing(service orders.Service, logg *logger.Logger) http.HandlerFunc {
	return sellerTransition(service.StartProcessing, logg, "processing")
}

// SellerMarkReady marks the order packed; the delivery code is generated here.
func SellerMarkReady(service orders.Service, logg *logger.Logger) http.HandlerFunc {
	return sellerTransition(service.MarkReady, logg, "ready")
}

// SellerStartDelivery hands the order to a delivery agent.
func SellerStartDelivery(service orders.Service, logg *logger.Logger) http.HandlerFunc {
	return sellerTransition(service.StartDelivery, logg, "out_for_delivery")
}

func sellerTransition(apply func(ctx context.Context, input orders.TransitionInput) error, logg *logger.Logger, status string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sellerID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := apply(r.Context(), orders.TransitionInput{OrderID: orderID, ActorID: sellerID}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": status})
	}
}
