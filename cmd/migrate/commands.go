package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/angelmondragon/retailpos-backend/pkg/bootstrap"
	"github.com/angelmondragon/retailpos-backend/pkg/migrate"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "migrate",
		Short:        "Apply and author goose migrations for the retail POS schema",
		SilenceUsage: true,
	}

	root.AddCommand(
		dbCommand("up", "Apply every pending migration", func(ctx context.Context, m *migrate.Migrator, _ []string) error {
			return m.Up(ctx)
		}),
		dbCommand("down", "Roll back the most recent migration", func(ctx context.Context, m *migrate.Migrator, _ []string) error {
			return m.Down(ctx)
		}),
		dbCommand("status", "Show applied and pending migrations", func(ctx context.Context, m *migrate.Migrator, _ []string) error {
			return m.Status(ctx)
		}),
		newVersionCmd(),
		newToCmd(),
		newCreateCmd(),
		newValidateCmd(),
	)
	return root
}

type migratorFunc func(ctx context.Context, m *migrate.Migrator, args []string) error

func dbCommand(use, short string, fn migratorFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, args, fn)
		},
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the schema version recorded in the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withMigrator(cmd, args, func(ctx context.Context, m *migrate.Migrator, _ []string) error {
				v, err := m.Version(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), v)
				return nil
			})
		},
	}
}

func newToCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "to VERSION",
		Short: "Migrate up or down to VERSION (YYYYMMDDHHMMSS)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := migrate.ParseVersion(args[0]); err != nil {
				return err
			}
			return withMigrator(cmd, args, func(ctx context.Context, m *migrate.Migrator, args []string) error {
				return m.To(ctx, args[0])
			})
		},
	}
}

func newCreateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Write an empty SQL migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := migrate.Create(dir, args[0], time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "created migration:", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", migrate.SourceDir, "directory to write the migration into")
	return cmd
}

func newValidateCmd() *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check migration names and goose sections",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fsys := migrate.Migrations()
			if dir != "" {
				fsys = os.DirFS(dir)
			}
			names, err := migrate.Validate(fsys)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d migrations valid\n", len(names))
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "validate files on disk instead of the embedded set")
	return cmd
}

func withMigrator(cmd *cobra.Command, args []string, fn migratorFunc) error {
	rt, err := bootstrap.Start(cmd.Context(), "migrate", bootstrap.Needs{DB: true})
	if err != nil {
		return err
	}
	defer rt.Close()
	logg := rt.Logger
	ctx := logg.WithField(rt.Context(cmd.Context()), "cmd", cmd.Name())

	sqlDB, err := rt.DB.DB().DB()
	if err != nil {
		return fmt.Errorf("extracting sql.DB: %w", err)
	}
	m, err := migrate.New(sqlDB)
	if err != nil {
		return err
	}
	if err := fn(ctx, m, args); err != nil {
		logg.Error(ctx, "migration command failed", err)
		return err
	}
	logg.Info(ctx, "migration command complete")
	return nil
}
