package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/angelmondragon/retailpos-backend/api/controllers"
	vouchercontrollers "github.com/angelmondragon/retailpos-backend/api/controllers/vouchers"
	"github.com/angelmondragon/retailpos-backend/api/middleware"
	"github.com/angelmondragon/retailpos-backend/internal/catalog"
	"github.com/angelmondragon/retailpos-backend/internal/fulfillment"
	"github.com/angelmondragon/retailpos-backend/internal/notifications"
	"github.com/angelmondragon/retailpos-backend/internal/promotions"
	"github.com/angelmondragon/retailpos-backend/internal/shoppinglist"
	"github.com/angelmondragon/retailpos-backend/internal/vouchers"
	"github.com/angelmondragon/retailpos-backend/pkg/auth/session"
	"github.com/angelmondragon/retailpos-backend/pkg/config"
	"github.com/angelmondragon/retailpos-backend/pkg/enums"
	"github.com/angelmondragon/retailpos-backend/pkg/logger"
	"github.com/angelmondragon/retailpos-backend/pkg/metrics"
	"github.com/angelmondragon/retailpos-backend/pkg/redis"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Store is the redis surface the request pipeline needs. *redis.Client satisfies it.
type Store interface {
	redis.IdempotencyStore
	FixedWindowAllow(ctx context.Context, scope string, limit int64, window time.Duration) (bool, int64, error)
	Ping(ctx context.Context) error
}

// Dependencies carries everything NewRouter mounts.
type Dependencies struct {
	DB          controllers.Pinger
	Redis       Store
	Revocations session.RevocationChecker
	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Catalog       catalog.Reader
	Promotions    promotions.Service
	ShoppingList  shoppinglist.Service
	Vouchers      vouchers.Service
	Ledger        vouchercontrollers.Redeemer
	Fulfillment   fulfillment.Service
	Notifications notifications.Service
}

func NewRouter(cfg *config.Config, logg *logger.Logger, deps Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.CORS(cfg.App.CORSOrigins),
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg, deps.HTTPMetrics),
	)

	pingers := map[string]controllers.Pinger{}
	if deps.DB != nil {
		pingers["database"] = deps.DB
	}
	if deps.Redis != nil {
		pingers["redis"] = deps.Redis
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, pingers))
	})

	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	redeemPolicy := middleware.NewRateLimitPolicy("redeem", cfg.RateLimit.RedeemWindow, cfg.RateLimit.RedeemLimit)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, deps.Revocations, logg))
		r.Use(middleware.Idempotency(deps.Redis, logg))

		r.Route("/catalog", func(r chi.Router) {
			r.Get("/products", controllers.ListProducts(deps.Catalog, logg))
			r.Get("/products/{productId}", controllers.GetProduct(deps.Catalog, logg))
		})
		r.Get("/promotions/active", controllers.ActivePromotions(deps.Promotions, logg))

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(deps.Notifications, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(deps.Notifications, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(deps.Notifications, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCustomer(logg))

			r.Route("/list", func(r chi.Router) {
				r.Get("/", controllers.ListItems(deps.ShoppingList, logg))
				r.Delete("/", controllers.ClearList(deps.ShoppingList, logg))
				r.Post("/items", controllers.AddListItem(deps.ShoppingList, logg))
				r.Patch("/items/{itemId}/complete", controllers.ToggleListItem(deps.ShoppingList, logg))
				r.Delete("/items/{itemId}", controllers.DeleteListItem(deps.ShoppingList, logg))
			})

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", controllers.GetCart(deps.ShoppingList, logg))
				r.Post("/items/{itemId}", controllers.StageCartItem(deps.ShoppingList, logg))
				r.Delete("/items/{itemId}", controllers.RemoveCartItem(deps.ShoppingList, logg))
				r.Post("/submit", controllers.SubmitCart(deps.ShoppingList, logg))
			})

			r.Route("/vouchers", func(r chi.Router) {
				r.Get("/wallet", vouchercontrollers.Wallet(deps.Vouchers, logg))
				r.Get("/redeemed", vouchercontrollers.Redeemed(deps.Vouchers, logg))
				r.Get("/{voucherId}/discount", vouchercontrollers.PreviewDiscount(deps.Vouchers, logg))
				r.With(middleware.RateLimit(redeemPolicy, deps.Redis, logg)).
					Post("/{voucherId}/redeem", vouchercontrollers.Redeem(deps.Ledger, logg))
			})
		})

		r.Route("/staff", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.ActorRoleStaff, enums.ActorRoleAdmin))
			r.Get("/click-and-collect", controllers.PendingPickups(deps.Fulfillment, logg))
			r.Post("/click-and-collect/{customerId}/collect", controllers.MarkCollected(deps.Fulfillment, logg))
		})

		r.Route("/admin/vouchers", func(r chi.Router) {
			r.Use(middleware.RequireRole(logg, enums.ActorRoleStaff, enums.ActorRoleAdmin))
			r.Get("/", vouchercontrollers.AdminList(deps.Vouchers, logg))
			r.Post("/", vouchercontrollers.AdminCreate(deps.Vouchers, logg))
			r.Put("/{voucherId}", vouchercontrollers.AdminUpdate(deps.Vouchers, logg))
			r.Patch("/{voucherId}/active", vouchercontrollers.AdminSetActive(deps.Vouchers, logg))
			r.Delete("/{voucherId}", vouchercontrollers.AdminDelete(deps.Vouchers, logg))
		})
	})

	return r
}
