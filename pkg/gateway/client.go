package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/avaldera/localmart-backend/pkg/config"
	pkgerrors "github.com/avaldera/localmart-backend/pkg/errors"
	"github.com/avaldera/localmart-backend/pkg/logger"
)

var (
	errKeyIDRequired  = errors.New("gateway key id is required")
	errSecretRequired = errors.New("gateway secret is required")
	errBaseURLNeeded  = errors.New("gateway base url is required")
)

// Client talks to the external payment gateway's order-intent API and owns
// the callback-signature secret.
type Client struct {
	httpClient *http.Client
	baseURL    string
	keyID      string
	secret     string
	currency   string
}

// NewClient wires the gateway client from configuration.
func NewClient(ctx context.Context, cfg config.GatewayConfig, logg *logger.Logger) (*Client, error) {
	keyID := strings.TrimSpace(cfg.KeyID)
	if keyID == "" {
		return nil, errKeyIDRequired
	}
	secret := strings.TrimSpace(cfg.Secret)
	if secret == "" {
		return nil, errSecretRequired
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, errBaseURLNeeded
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	if logg != nil {
		logg.Info(ctx, "payment gateway client initialized")
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		keyID:      keyID,
		secret:     secret,
		currency:   cfg.Currency,
	}, nil
}

// Secret exposes the callback-signature secret for verification.
func (c *Client) Secret() string {
	if c == nil {
		return ""
	}
	return c.secret
}

// CreateOrderInput registers a payment intent with the gateway.
type CreateOrderInput struct {
	AmountCents int64
	Currency    string
	Receipt     string
}

type createOrderRequest struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
}

type createOrderResponse struct {
	ID string `json:"id"`
}

// CreateOrder registers an order intent and returns the gateway order
// reference the client completes payment against. Timeouts and gateway
// failures surface as GATEWAY_UNAVAILABLE; the local order must stay pending.
func (c *Client) CreateOrder(ctx context.Context, input CreateOrderInput) (string, error) {
	if input.AmountCents <= 0 {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "gateway amount must be positive")
	}
	currency := input.Currency
	if currency == "" {
		currency = c.currency
	}

	body, err := json.Marshal(createOrderRequest{
		Amount:   input.AmountCents,
		Currency: currency,
		Receipt:  input.Receipt,
	})
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode gateway order")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/orders", bytes.NewReader(body))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build gateway request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.SetBasicAuth(c.keyID, c.secret)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeGatewayUnavailable, err, "gateway order request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusInternalServerError {
		return "", pkgerrors.New(pkgerrors.CodeGatewayUnavailable, fmt.Sprintf("gateway returned status %d", resp.StatusCode))
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", pkgerrors.New(pkgerrors.CodeDependency, fmt.Sprintf("gateway rejected order intent with status %d", resp.StatusCode))
	}

	var decoded createOrderResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gateway response")
	}
	if decoded.ID == "" {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "gateway response missing order id")
	}
	return decoded.ID, nil
}
