// Package bootstrap wires the process-level dependencies shared by every binary:
// configuration, logging, the database, redis and the worker metrics listener.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/angelmondragon/retailpos-backend/pkg/config"
	"github.com/angelmondragon/retailpos-backend/pkg/db"
	"github.com/angelmondragon/retailpos-backend/pkg/instance"
	"github.com/angelmondragon/retailpos-backend/pkg/logger"
	"github.com/angelmondragon/retailpos-backend/pkg/migrate"
	"github.com/angelmondragon/retailpos-backend/pkg/redis"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Needs selects which backing services Start connects to.
type Needs struct {
	DB      bool
	Migrate bool
	Redis   bool
}

// Runtime owns the shared clients of one process. Close releases them.
type Runtime struct {
	Service string
	Config  *config.Config
	Logger  *logger.Logger
	DB      *db.Client
	Redis   *redis.Client
}

// LoadConfig reads .env (when present) and the RETAILPOS_* environment, and
// returns a logger configured from it.
func LoadConfig(service string) (*config.Config, *logger.Logger, error) {
	envErr := godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return nil, logger.New(logger.Options{ServiceName: service}), err
	}
	cfg.Service.Kind = service
	logg := logger.New(logger.Options{
		ServiceName: service,
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	if envErr != nil {
		logg.Debug(context.Background(), ".env file not loaded, relying on environment")
	}
	return cfg, logg, nil
}

// Start loads configuration and connects the requested services. Failures are
// logged before they are returned, so callers only need to exit.
func Start(ctx context.Context, service string, needs Needs) (*Runtime, error) {
	cfg, logg, err := LoadConfig(service)
	if err != nil {
		logg.Error(ctx, "failed to load config", err)
		return nil, err
	}
	rt := &Runtime{Service: service, Config: cfg, Logger: logg}
	if err := rt.connect(ctx, needs); err != nil {
		logg.Error(ctx, "failed to bootstrap "+service, err)
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *Runtime) connect(ctx context.Context, needs Needs) error {
	var err error
	if needs.DB || needs.Migrate {
		if rt.DB, err = db.New(ctx, rt.Config.DB, rt.Logger); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	if needs.Migrate {
		if err := migrate.MaybeRunDev(ctx, rt.Config, rt.Logger, rt.DB); err != nil {
			return fmt.Errorf("dev migrations: %w", err)
		}
	}
	if needs.Redis {
		if rt.Redis, err = redis.New(ctx, rt.Config.Redis, rt.Logger); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	return nil
}

// Context decorates ctx with the fields every log line of this process carries.
func (rt *Runtime) Context(ctx context.Context) context.Context {
	return rt.Logger.WithFields(ctx, map[string]any{
		"env":         rt.Config.App.Env,
		"serviceKind": rt.Service,
		"instance":    instance.ID("local"),
	})
}

// ServeMetrics exposes gatherer on RETAILPOS_METRICS_ADDR until ctx ends.
// It does nothing when the address is unset.
func (rt *Runtime) ServeMetrics(ctx context.Context, gatherer prometheus.Gatherer) {
	addr := rt.Config.Service.MetricsAddr
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			rt.Logger.Error(ctx, "metrics listener stopped", err)
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()
	rt.Logger.Info(rt.Logger.WithField(ctx, "metrics_addr", addr), "serving worker metrics")
}

func (rt *Runtime) Close() {
	ctx := context.Background()
	if rt.Redis != nil {
		if err := rt.Redis.Close(); err != nil {
			rt.Logger.Error(ctx, "error closing redis", err)
		}
	}
	if rt.DB != nil {
		if err := rt.DB.Close(); err != nil {
			rt.Logger.Error(ctx, "error closing database", err)
		}
	}
}

// Exit logs err and terminates the process.
func Exit(ctx context.Context, logg *logger.Logger, msg string, err error) {
	logg.Error(ctx, msg, err)
	os.Exit(1)
}
