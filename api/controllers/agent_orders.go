package controllers

import (
	"net/http"

	"github.com/avaldera/localmart-backend/api/responses"
	"github.com/avaldera/localmart-backend/api/validators"
	"github.com/avaldera/localmart-backend/internal/orders"
	"github.com/avaldera/localmart-backend/pkg/logger"
)

type deliverOrderRequest struct {
	OTP string `json:"otp" validate:"required,len=6,numeric"`
}

// AgentDeliverOrder confirms handover against the customer's delivery code.
// COD orders collect payment at this step.
func AgentDeliverOrder(service orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID, err := actorID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := orderIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req deliverOrderRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := orders.DeliverInput{
			OrderID: orderID,
			ActorID: agentID,
			OTP:     req.OTP,
		}
		if err := service.Deliver(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "delivered"})
	}
}
