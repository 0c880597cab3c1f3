package webhooks

import (
	"net/http"

	"github.com/avaldera/localmart-backend/api/responses"
	"github.com/avaldera/localmart-backend/api/validators"
	"github.com/avaldera/localmart-backend/internal/payments"
	"github.com/avaldera/localmart-backend/pkg/logger"
)

type gatewayCallbackRequest struct {
	GatewayOrderRef   string `json:"gateway_order_ref" validate:"required"`
	GatewayPaymentRef string `json:"gateway_payment_ref" validate:"required"`
	Signature         string `json:"signature" validate:"required"`
}

type gatewayFailureRequest struct {
	GatewayOrderRef string `json:"gateway_order_ref" validate:"required"`
	Reason          string `json:"reason"`
}

// GatewayCallback reconciles a payment-success callback. Forged signatures
// are recorded as failed payments and rejected; replays of an already-paid
// order succeed without re-applying.
func GatewayCallback(service payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gatewayCallbackRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := payments.CallbackInput{
			GatewayOrderRef:   req.GatewayOrderRef,
			GatewayPaymentRef: req.GatewayPaymentRef,
			Signature:         req.Signature,
		}
		if err := service.Confirm(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "confirmed"})
	}
}

// GatewayFailure records an explicit gateway failure callback.
func GatewayFailure(service payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gatewayFailureRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input := payments.FailureInput{
			GatewayOrderRef: req.GatewayOrderRef,
			Reason:          req.Reason,
		}
		if err := service.Fail(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "recorded"})
	}
}
