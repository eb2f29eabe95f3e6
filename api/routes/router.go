package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mercadito-app/mercadito-backend/api/controllers"
	"github.com/mercadito-app/mercadito-backend/api/middleware"
	cartsvc "github.com/mercadito-app/mercadito-backend/internal/cart"
	checkoutsvc "github.com/mercadito-app/mercadito-backend/internal/checkout"
	"github.com/mercadito-app/mercadito-backend/internal/coupons"
	guardsvc "github.com/mercadito-app/mercadito-backend/internal/guard"
	orderssvc "github.com/mercadito-app/mercadito-backend/internal/orders"
	"github.com/mercadito-app/mercadito-backend/internal/vendors"
	"github.com/mercadito-app/mercadito-backend/pkg/auth"
	"github.com/mercadito-app/mercadito-backend/pkg/config"
	"github.com/mercadito-app/mercadito-backend/pkg/db"
	"github.com/mercadito-app/mercadito-backend/pkg/logger"
	"github.com/mercadito-app/mercadito-backend/pkg/redis"
)

type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Revalidator *auth.Revalidator
	Registry    *prometheus.Registry

	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Orders   orderssvc.Service
	Guard    guardsvc.Service
	Vendors  *vendors.Repository
	Coupons  *coupons.Repository
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Config
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	var redisP redis.Pinger
	if d.Redis != nil {
		redisP = d.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, redisP, d.Revalidator))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	var idemStore redis.IdempotencyStore
	if d.Redis != nil {
		idemStore = d.Redis
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idemStore, logg))

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", controllers.CartFetch(d.Cart, logg))
			r.Delete("/", controllers.CartClear(d.Cart, logg))
			r.Post("/lines", controllers.CartAddLine(d.Cart, logg))
			r.Post("/lines/decrement", controllers.CartDecrementLine(d.Cart, logg))
			r.Post("/lines/delete", controllers.CartDeleteLine(d.Cart, logg))
		})

		r.Post("/checkout/quote", controllers.CheckoutQuote(d.Checkout, logg))
		r.Post("/checkout", controllers.CheckoutSubmit(d.Checkout, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersMine(d.Orders, logg))
			r.Get("/received", controllers.OrdersReceived(d.Orders, logg))
			r.Get("/{orderId}", controllers.OrderDetail(d.Orders, logg))
			r.Post("/{orderId}/confirm", controllers.OrderConfirm(d.Orders, logg))
			r.Post("/{orderId}/reject", controllers.OrderReject(d.Orders, logg))
			r.Post("/{orderId}/cancel", controllers.OrderCancel(d.Orders, logg))
			r.Post("/{orderId}/ack-rejection", controllers.OrderAckRejection(d.Orders, logg))
			r.Post("/{orderId}/ack-cancellation", controllers.OrderAckCancellation(d.Orders, logg))
			r.Post("/{orderId}/confirm-delivery", controllers.OrderConfirmDelivery(d.Orders, logg))
		})

		r.Route("/guard", func(r chi.Router) {
			r.Get("/pending", controllers.GuardPending(d.Guard, logg))
			r.Post("/intercept", controllers.GuardIntercept(d.Guard, logg))
			r.Post("/resolve", controllers.GuardResolve(d.Guard, logg))
		})
	})

	// Config surface for vendor pricing profiles and coupons. Not routed
	// in prod; production rows arrive through migrations and ops tooling.
	if !cfg.App.IsProd() {
		r.Route("/api/admin/v1", func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))
			r.Put("/vendors", controllers.AdminUpsertVendor(d.Vendors, logg))
			r.Post("/coupons", controllers.AdminCreateCoupon(d.Coupons, logg))
		})
	}

	return r
}
