package main

import (
	"context"

	"github.com/angelmondragon/retailpos-backend/pkg/bootstrap"
	"github.com/angelmondragon/retailpos-backend/pkg/config"
	"github.com/angelmondragon/retailpos-backend/pkg/db"
	"github.com/angelmondragon/retailpos-backend/pkg/logger"
	"github.com/angelmondragon/retailpos-backend/pkg/redis"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "posctl",
		Short: "Operator tooling for the retail POS backend",
		Long: `posctl mints and revokes access tokens for local testing, manages the
voucher catalog, previews voucher codes and discounts, and runs the
housekeeping jobs once outside the cron worker. It also lists outbox
events that landed in the dead letter queue.`,
		SilenceUsage: true,
	}
	root.AddCommand(
		newTokenCmd(),
		newVoucherCmd(),
		newCodeCmd(),
		newDiscountCmd(),
		newCronCmd(),
		newDLQCmd(),
	)
	return root
}

// env holds the clients a command asked for. Close releases them.
type env struct {
	rt    *bootstrap.Runtime
	cfg   *config.Config
	logg  *logger.Logger
	db    *db.Client
	redis *redis.Client
}

func loadConfig() (*config.Config, *logger.Logger, error) {
	return bootstrap.LoadConfig("posctl")
}

func connect(ctx context.Context, withDB, withRedis bool) (*env, error) {
	rt, err := bootstrap.Start(ctx, "posctl", bootstrap.Needs{DB: withDB, Redis: withRedis})
	if err != nil {
		return nil, err
	}
	return &env{rt: rt, cfg: rt.Config, logg: rt.Logger, db: rt.DB, redis: rt.Redis}, nil
}

func (e *env) Close() {
	e.rt.Close()
}
