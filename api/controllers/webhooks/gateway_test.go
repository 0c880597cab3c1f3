package webhooks

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/avaldera/localmart-backend/internal/payments"
	pkgerrors "github.com/avaldera/localmart-backend/pkg/errors"
)

type stubPayments struct {
	confirmInput *payments.CallbackInput
	failInput    *payments.FailureInput
	confirmErr   error
}

func (s *stubPayments) Confirm(_ context.Context, input payments.CallbackInput) error {
	s.confirmInput = &input
	return s.confirmErr
}

func (s *stubPayments) Fail(_ context.Context, input payments.FailureInput) error {
	s.failInput = &input
	return nil
}

func postJSON(target, body string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestGatewayCallbackForwardsPayload(t *testing.T) {
	stub := &stubPayments{}
	body := `{"gateway_order_ref":"go_1","gateway_payment_ref":"gp_1","signature":"abc"}`
	resp := httptest.NewRecorder()
	GatewayCallback(stub, nil)(resp, postJSON("/api/v1/webhooks/gateway", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
	if stub.confirmInput == nil || stub.confirmInput.GatewayOrderRef != "go_1" || stub.confirmInput.Signature != "abc" {
		t.Fatalf("unexpected input %+v", stub.confirmInput)
	}
}

func TestGatewayCallbackRequiresSignature(t *testing.T) {
	stub := &stubPayments{}
	body := `{"gateway_order_ref":"go_1","gateway_payment_ref":"gp_1"}`
	resp := httptest.NewRecorder()
	GatewayCallback(stub, nil)(resp, postJSON("/api/v1/webhooks/gateway", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	if stub.confirmInput != nil {
		t.Fatal("service must not run for invalid payloads")
	}
}

func TestGatewayCallbackMapsSignatureErrors(t *testing.T) {
	stub := &stubPayments{confirmErr: pkgerrors.New(pkgerrors.CodeSignatureInvalid, "signature mismatch")}
	body := `{"gateway_order_ref":"go_1","gateway_payment_ref":"gp_1","signature":"bad"}`
	resp := httptest.NewRecorder()
	GatewayCallback(stub, nil)(resp, postJSON("/api/v1/webhooks/gateway", body))

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &payload); err != nil {
		t.Fatalf("parse response: %v", err)
	}
	if payload.Error.Code != string(pkgerrors.CodeSignatureInvalid) {
		t.Fatalf("unexpected code %s", payload.Error.Code)
	}
}

func TestGatewayFailureRecordsReason(t *testing.T) {
	stub := &stubPayments{}
	body := `{"gateway_order_ref":"go_1","reason":"card declined"}`
	resp := httptest.NewRecorder()
	GatewayFailure(stub, nil)(resp, postJSON("/api/v1/webhooks/gateway/failure", body))

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
	if stub.failInput == nil || stub.failInput.Reason != "card declined" {
		t.Fatalf("unexpected input %+v", stub.failInput)
	}
}
