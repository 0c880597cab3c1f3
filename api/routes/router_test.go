package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/avaldera/localmart-backend/internal/orders"
	"github.com/avaldera/localmart-backend/internal/payments"
	"github.com/avaldera/localmart-backend/internal/wallet"
	pkgauth "github.com/avaldera/localmart-backend/pkg/auth"
	"github.com/avaldera/localmart-backend/pkg/config"
	"github.com/avaldera/localmart-backend/pkg/db/models"
	"github.com/avaldera/localmart-backend/pkg/enums"
	"github.com/avaldera/localmart-backend/pkg/logger"
)

type stubOrdersService struct{}

func (stubOrdersService) Create(context.Context, orders.CreateOrderInput) (*orders.CreateOrderResult, error) {
	return &orders.CreateOrderResult{Order: &models.Order{ID: uuid.New(), OrderNumber: "LM-STUB0001"}}, nil
}
func (stubOrdersService) Accept(context.Context, orders.TransitionInput) error          { return nil }
func (stubOrdersService) Reject(context.Context, orders.TransitionInput) error          { return nil }
func (stubOrdersService) StartProcessing(context.Context, orders.TransitionInput) error { return nil }
func (stubOrdersService) MarkReady(context.Context, orders.TransitionInput) error       { return nil }
func (stubOrdersService) StartDelivery(context.Context, orders.TransitionInput) error   { return nil }
func (stubOrdersService) Deliver(context.Context, orders.DeliverInput) error            { return nil }
func (stubOrdersService) Cancel(context.Context, orders.CancelInput) error              { return nil }
func (stubOrdersService) GetForCustomer(context.Context, uuid.UUID, uuid.UUID) (*models.Order, error) {
	return &models.Order{ID: uuid.New(), OrderNumber: "LM-STUB0001"}, nil
}
func (stubOrdersService) ListForCustomer(context.Context, uuid.UUID, orders.ListFilters) ([]models.Order, error) {
	return nil, nil
}
func (stubOrdersService) ListForSeller(context.Context, uuid.UUID, orders.ListFilters) ([]models.Order, error) {
	return nil, nil
}

type stubPaymentsService struct{}

func (stubPaymentsService) Confirm(context.Context, payments.CallbackInput) error { return nil }
func (stubPaymentsService) Fail(context.Context, payments.FailureInput) error     { return nil }

type stubWalletService struct{}

func (stubWalletService) Credit(context.Context, *gorm.DB, wallet.EntryInput) (*models.WalletTransaction, error) {
	return &models.WalletTransaction{}, nil
}
func (stubWalletService) Debit(context.Context, *gorm.DB, wallet.EntryInput) (*models.WalletTransaction, error) {
	return &models.WalletTransaction{}, nil
}
func (stubWalletService) Balance(context.Context, uuid.UUID) (*models.Wallet, error) {
	return &models.Wallet{}, nil
}
func (stubWalletService) History(context.Context, uuid.UUID, int, int) ([]models.WalletTransaction, error) {
	return nil, nil
}

func testRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{}
	cfg.App.Env = "test"
	cfg.JWT = config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}

	return NewRouter(RouterParams{
		Config:   cfg,
		Logger:   logger.New(logger.Options{ServiceName: "router-test"}),
		Orders:   stubOrdersService{},
		Payments: stubPaymentsService{},
		Wallet:   stubWalletService{},
	})
}

func mintToken(t *testing.T, role enums.ActorRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(config.JWTConfig{Secret: "secret", Issuer: "issuer", ExpirationMinutes: 60}, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}

func TestOrdersRequireAuthentication(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestCustomerCanListOrders(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.RoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestSellerBlockedFromCustomerRoutes(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer "+mintToken(t, enums.RoleSeller))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", resp.Code)
	}
}

func TestGatewayWebhookIsPublic(t *testing.T) {
	router := testRouter(t)

	body := `{"gateway_order_ref":"go_1","gateway_payment_ref":"gp_1","signature":"sig"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhooks/gateway", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d: %s", resp.Code, resp.Body.String())
	}
}

func TestMetricsRouteExposed(t *testing.T) {
	router := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", resp.Code)
	}
}
