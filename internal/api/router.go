package api

import (
	"net/http"

	"github.com/ayo6706/org-balance-ledger/internal/api/handler"
	"github.com/ayo6706/org-balance-ledger/internal/api/middleware"
	"github.com/ayo6706/org-balance-ledger/internal/api/spec"
	"github.com/ayo6706/org-balance-ledger/internal/config"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
)

type Router struct {
	cfg      *config.Config
	logger   *zap.Logger
	db       handler.Pinger
	redis    redis.Cmdable
	payments handler.PaymentIngester
	balances handler.BalanceReader
}

// NewRouter wires handlers to their dependencies. redis may be nil.
func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db handler.Pinger,
	redis redis.Cmdable,
	payments handler.PaymentIngester,
	balances handler.BalanceReader,
) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{cfg: cfg, logger: logger, db: db, redis: redis, payments: payments, balances: balances}
}

func (api *Router) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.TraceMiddleware)
	r.Use(middleware.RecoverMiddleware(api.logger))
	r.Use(middleware.LoggingMiddleware(api.logger))
	r.Use(middleware.MetricsMiddleware)
	r.Use(chiMiddleware.StripSlashes)

	healthHandler := handler.NewHealthHandler(api.db, api.redis)
	webhookHandler := handler.NewWebhookHandler(api.payments)
	organizationHandler := handler.NewOrganizationHandler(api.balances)
	auth := middleware.NewJWTAuth(api.cfg.JWTSecret, api.cfg.JWTIssuer, api.cfg.JWTAudience)

	r.Get("/healthz", healthHandler.Live)
	r.Get("/readyz", healthHandler.Ready)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/openapi.yaml", spec.OpenAPIHandler())
	r.Get("/swagger", http.RedirectHandler("/swagger/index.html", http.StatusMovedPermanently).ServeHTTP)
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.WebhookSignature(api.cfg.WebhookHMACKey, api.logger)).
			Post("/webhook/bank", webhookHandler.HandleBankWebhook)

		r.Route("/organizations/{inn}", func(r chi.Router) {
			r.With(middleware.PublicRateLimiter(api.cfg.PublicRateLimitRPS)).
				Get("/balance", organizationHandler.GetBalance)

			r.Group(func(r chi.Router) {
				r.Use(auth.Middleware)
				r.Use(middleware.RequireRole(middleware.RoleAdmin))
				r.Use(middleware.OperatorRateLimiter(api.cfg.AuthRateLimitRPS))
				r.Get("/balance-logs", organizationHandler.GetStatement)
			})
		})
	})

	return r
}
