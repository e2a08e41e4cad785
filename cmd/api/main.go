package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/angelmondragon/retailpos-backend/api/routes"
	"github.com/angelmondragon/retailpos-backend/internal/catalog"
	"github.com/angelmondragon/retailpos-backend/internal/fulfillment"
	"github.com/angelmondragon/retailpos-backend/internal/notifications"
	"github.com/angelmondragon/retailpos-backend/internal/promotions"
	"github.com/angelmondragon/retailpos-backend/internal/shoppinglist"
	"github.com/angelmondragon/retailpos-backend/internal/vouchers"
	"github.com/angelmondragon/retailpos-backend/pkg/auth/session"
	"github.com/angelmondragon/retailpos-backend/pkg/bootstrap"
	"github.com/angelmondragon/retailpos-backend/pkg/metrics"
	"github.com/angelmondragon/retailpos-backend/pkg/outbox"
	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, err := bootstrap.Start(ctx, "api", bootstrap.Needs{DB: true, Migrate: true, Redis: true})
	if err != nil {
		os.Exit(1)
	}
	defer rt.Close()
	cfg, logg := rt.Config, rt.Logger
	dbClient, redisClient := rt.DB, rt.Redis

	revocations, err := session.NewRevocations(redisClient, cfg.JWT.Expiration())
	if err != nil {
		bootstrap.Exit(ctx, logg, "failed to create token revocation list", err)
	}

	engineMetrics := metrics.NewEngineMetrics(prometheus.DefaultRegisterer)
	httpMetrics := metrics.NewHTTPMetrics(prometheus.DefaultRegisterer)

	emitter := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	catalogRepo := catalog.NewRepository(dbClient.DB())

	dispatcher, err := fulfillment.NewOutboxDispatcher(dbClient, emitter)
	if err != nil {
		bootstrap.Exit(ctx, logg, "failed to create fulfillment dispatcher", err)
	}
	fulfillmentService, err := fulfillment.NewService(fulfillment.NewRepository(dbClient.DB()), dbClient, emitter)
	if err != nil {
		bootstrap.Exit(ctx, logg, "failed to create fulfillment service", err)
	}

	listService, err := shoppinglist.NewService(shoppinglist.NewRepository(dbClient.DB()), dbClient, catalogRepo, dispatcher, engineMetrics, logg)
	if err != nil {
		bootstrap.Exit(ctx, logg, "failed to create shopping list service", err)
	}

	voucherRepo := vouchers.NewRepository(dbClient.DB())
	voucherService, err := vouchers.NewService(voucherRepo, cfg.App.CurrencySymbol)
	if err != nil {
		bootstrap.Exit(ctx, logg, "failed to create voucher service", err)
	}
	ledger, err := vouchers.NewLedger(voucherRepo, dbClient, emitter, vouchers.LedgerOptions{
		CodeAttempts: cfg.Vouchers.CodeAttempts,
		Metrics:      engineMetrics,
		Logger:       logg,
	})
	if err != nil {
		bootstrap.Exit(ctx, logg, "failed to create voucher ledger", err)
	}

	promotionService, err := promotions.NewService(promotions.NewRepository(dbClient.DB()), catalogRepo, cfg.App.CurrencySymbol)
	if err != nil {
		bootstrap.Exit(ctx, logg, "failed to create promotions service", err)
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		bootstrap.Exit(ctx, logg, "failed to create notifications service", err)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx = logg.WithField(rt.Context(ctx), "addr", addr)
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(cfg, logg, routes.Dependencies{
			DB:            dbClient,
			Redis:         redisClient,
			Revocations:   revocations,
			HTTPMetrics:   httpMetrics,
			Gatherer:      prometheus.DefaultGatherer,
			Catalog:       catalogRepo,
			Promotions:    promotionService,
			ShoppingList:  listService,
			Vouchers:      voucherService,
			Ledger:        ledger,
			Fulfillment:   fulfillmentService,
			Notifications: notificationService,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shutting down gracefully")
	}
}
