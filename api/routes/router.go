package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rikscandle/rikscandle-backend/api/controllers"
	ordercontrollers "github.com/rikscandle/rikscandle-backend/api/controllers/orders"
	paymentcontrollers "github.com/rikscandle/rikscandle-backend/api/controllers/payments"
	productcontrollers "github.com/rikscandle/rikscandle-backend/api/controllers/products"
	webhookcontrollers "github.com/rikscandle/rikscandle-backend/api/controllers/webhooks"
	"github.com/rikscandle/rikscandle-backend/api/middleware"
	internalorders "github.com/rikscandle/rikscandle-backend/internal/orders"
	internalpayments "github.com/rikscandle/rikscandle-backend/internal/payments"
	"github.com/rikscandle/rikscandle-backend/pkg/config"
	"github.com/rikscandle/rikscandle-backend/pkg/logger"
	"github.com/rikscandle/rikscandle-backend/pkg/redis"
)

// Deps bundles everything the HTTP surface needs. Collaborators are consumed
// through the controller interfaces so tests can swap them freely.
type Deps struct {
	Cfg          *config.Config
	Logger       *logger.Logger
	DB           controllers.Pinger
	Redis        *redis.Client
	Orders       *internalorders.Service
	Payments     *internalpayments.Service
	Catalog      productcontrollers.Catalog
	Renderer     ordercontrollers.InvoiceRenderer
	Login        controllers.LoginService
	WebhookGuard *internalpayments.IdempotencyGuard
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Cfg
	logg := d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	r.Route("/api", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Redis, logg)).
			Post("/auth/login", controllers.AuthLogin(d.Login, d.Orders, logg))

		r.Route("/products", func(r chi.Router) {
			r.Get("/", productcontrollers.List(d.Catalog, logg))
			r.Get("/{productId}", productcontrollers.Detail(d.Catalog, logg))
		})

		r.Route("/orders", func(r chi.Router) {
			// Guest checkout is allowed; a presented token must still be valid.
			r.Group(func(r chi.Router) {
				r.Use(middleware.OptionalAuth(cfg.JWT, logg))
				r.Post("/", ordercontrollers.Create(d.Orders, logg))
			})

			// Reads expose contact and shipping details, so they always
			// require a signed-in caller.
			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg))
				r.Get("/my", ordercontrollers.ListMine(d.Orders, logg))
				r.Get("/{orderId}", ordercontrollers.Detail(d.Orders, logg))
				r.Get("/{orderId}/invoice", ordercontrollers.Invoice(d.Orders, d.Renderer, logg))
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.Auth(cfg.JWT, logg), middleware.RequireAdmin(logg))
				r.Get("/", ordercontrollers.ListAll(d.Orders, logg))
				r.Put("/{orderId}", ordercontrollers.UpdateStatus(d.Orders, logg))
				r.Delete("/{orderId}", ordercontrollers.Remove(d.Orders, logg))
			})
		})

		r.Route("/payments/razorpay", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.OptionalAuth(cfg.JWT, logg))
				r.Post("/order", paymentcontrollers.CreateGatewayOrder(d.Payments, logg))
				r.Post("/verify", paymentcontrollers.Verify(d.Payments, logg))
			})

			// No auth: the gateway signs the payload itself.
			r.Post("/webhook", webhookcontrollers.RazorpayWebhook(d.Payments, d.WebhookGuard, logg))
		})
	})

	return r
}
