package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avaldera/localmart-backend/api/controllers"
	webhookcontrollers "github.com/avaldera/localmart-backend/api/controllers/webhooks"
	"github.com/avaldera/localmart-backend/api/middleware"
	"github.com/avaldera/localmart-backend/internal/orders"
	"github.com/avaldera/localmart-backend/internal/payments"
	"github.com/avaldera/localmart-backend/internal/wallet"
	"github.com/avaldera/localmart-backend/pkg/config"
	"github.com/avaldera/localmart-backend/pkg/enums"
	"github.com/avaldera/localmart-backend/pkg/logger"
	"github.com/avaldera/localmart-backend/pkg/metrics"
	pkgredis "github.com/avaldera/localmart-backend/pkg/redis"
)

// RouterParams bundles everything the HTTP surface depends on.
type RouterParams struct {
	Config      *config.Config
	Logger      *logger.Logger
	Redis       *pkgredis.Client
	HTTPMetrics *metrics.HTTPMetrics
	Readiness   map[string]controllers.Pinger
	Orders      orders.Service
	Payments    payments.Service
	Wallet      wallet.Service
}

func NewRouter(p RouterParams) http.Handler {
	r := chi.NewRouter()

	// A typed nil *redis.Client must not reach the middleware as a non-nil
	// interface.
	var idemStore pkgredis.IdempotencyStore
	var limiterStore middleware.RateLimiterStore
	if p.Redis != nil {
		idemStore = p.Redis
		limiterStore = p.Redis
	}

	r.Use(
		middleware.Recoverer(p.Logger),
		middleware.RequestID(p.Logger),
		middleware.Logging(p.Logger),
		middleware.CORS(),
	)
	if p.HTTPMetrics != nil {
		r.Use(p.HTTPMetrics.Middleware)
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(p.Config))
		r.Get("/ready", controllers.HealthReady(p.Config, p.Logger, p.Readiness))
	})
	r.Handle("/metrics", promhttp.Handler())

	webhookPolicy := middleware.NewRateLimitPolicy("gateway-webhook", time.Minute, 120)
	r.Route("/api/v1/webhooks", func(r chi.Router) {
		r.Use(middleware.RateLimit(webhookPolicy, limiterStore, p.Logger))
		r.Post("/gateway", webhookcontrollers.GatewayCallback(p.Payments, p.Logger))
		r.Post("/gateway/failure", webhookcontrollers.GatewayFailure(p.Payments, p.Logger))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(p.Config.JWT, p.Logger))
		r.Use(middleware.Idempotency(idemStore, p.Logger))

		r.Route("/wallet", func(r chi.Router) {
			r.Get("/balance", controllers.WalletBalance(p.Wallet, p.Logger))
			r.Get("/transactions", controllers.WalletHistory(p.Wallet, p.Logger))
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.RoleCustomer), p.Logger))
			r.Post("/", controllers.CreateOrder(p.Orders, p.Logger))
			r.Get("/", controllers.ListOrders(p.Orders, p.Logger))
			r.Get("/{orderId}", controllers.OrderDetail(p.Orders, p.Logger))
			r.Post("/{orderId}/cancel", controllers.CancelOrder(p.Orders, p.Logger))
		})

		r.Route("/seller/orders", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.RoleSeller), p.Logger))
			r.Get("/", controllers.SellerListOrders(p.Orders, p.Logger))
			r.Post("/{orderId}/accept", controllers.SellerAcceptOrder(p.Orders, p.Logger))
			r.Post("/{orderId}/reject", controllers.SellerRejectOrder(p.Orders, p.Logger))
			r.Post("/{orderId}/process", controllers.SellerStartProcessing(p.Orders, p.Logger))
			r.Post("/{orderId}/ready", controllers.SellerMarkReady(p.Orders, p.Logger))
			r.Post("/{orderId}/out-for-delivery", controllers.SellerStartDelivery(p.Orders, p.Logger))
		})

		r.Route("/agent/orders", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.RoleAgent), p.Logger))
			r.Post("/{orderId}/deliver", controllers.AgentDeliverOrder(p.Orders, p.Logger))
		})
	})

	return r
}
