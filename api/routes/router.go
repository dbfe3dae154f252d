package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/omarhassan/retailops-backend/api/controllers"
	"github.com/omarhassan/retailops-backend/api/middleware"
	"github.com/omarhassan/retailops-backend/internal/audit"
	"github.com/omarhassan/retailops-backend/internal/catalog"
	"github.com/omarhassan/retailops-backend/internal/ledger"
	"github.com/omarhassan/retailops-backend/internal/receiving"
	"github.com/omarhassan/retailops-backend/internal/returns"
	"github.com/omarhassan/retailops-backend/internal/sales"
	"github.com/omarhassan/retailops-backend/pkg/config"
	"github.com/omarhassan/retailops-backend/pkg/db"
	"github.com/omarhassan/retailops-backend/pkg/logger"
	"github.com/omarhassan/retailops-backend/pkg/redis"
)

// Services groups the domain services the router exposes.
type Services struct {
	Catalog   catalog.Service
	Ledger    ledger.Service
	Audit     audit.Service
	Receiving receiving.Service
	Sales     sales.Service
	Returns   returns.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	promRegistry *prometheus.Registry,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	writePolicy := middleware.NewWriteRateLimitPolicy("write", cfg.RateLimit)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	if promRegistry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/lookup", controllers.LookupProduct(svcs.Catalog, logg))
			r.Get("/{productId}", controllers.GetProduct(svcs.Catalog, logg))
			r.Get("/{productId}/audit", controllers.ProductAuditTrail(svcs.Audit, logg))
		})

		r.Route("/stock", func(r chi.Router) {
			r.Get("/levels/{productId}", controllers.StockLevel(svcs.Ledger, logg))
			r.Get("/low", controllers.LowStock(svcs.Ledger, logg))
			r.Get("/movements", controllers.StockMovements(svcs.Ledger, logg))
		})

		r.Route("/purchasing/grn", func(r chi.Router) {
			r.With(middleware.WriteRateLimit(writePolicy, redisClient, logg)).
				Post("/", controllers.CreateGoodsReceipt(svcs.Receiving, logg))
			r.Get("/", controllers.ListGoodsReceipts(svcs.Receiving, logg))
			r.Get("/{receiptId}", controllers.GetGoodsReceipt(svcs.Receiving, logg))
		})

		r.Route("/sales", func(r chi.Router) {
			r.With(middleware.WriteRateLimit(writePolicy, redisClient, logg)).
				Post("/", controllers.CreateSale(svcs.Sales, logg))
			r.Get("/", controllers.ListSales(svcs.Sales, logg))
			r.Get("/daily-summary", controllers.DailySalesSummary(svcs.Sales, logg))
			r.Get("/{invoiceId}", controllers.GetSale(svcs.Sales, logg))
			r.With(middleware.WriteRateLimit(writePolicy, redisClient, logg)).
				Post("/{invoiceId}/payments", controllers.AddSalePayment(svcs.Sales, logg))
			r.With(middleware.WriteRateLimit(writePolicy, redisClient, logg)).
				Post("/{invoiceId}/deliver", controllers.DeliverSale(svcs.Sales, logg))
		})

		r.Route("/returns", func(r chi.Router) {
			r.With(middleware.WriteRateLimit(writePolicy, redisClient, logg)).
				Post("/", controllers.CreateSalesReturn(svcs.Returns, logg))
			r.Get("/", controllers.ListSalesReturns(svcs.Returns, logg))
			r.Get("/{returnId}", controllers.GetSalesReturn(svcs.Returns, logg))
		})

		r.Get("/customers/{customerId}/pending-payments", controllers.CustomerPendingPayments(svcs.Sales, logg))
	})

	return r
}
