// Package cli holds the cobra commands of the travel-booking binary.
package cli

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/database"
	"github.com/iliyamo/travel-booking/internal/logger"
)

var (
	Version   = "dev"
	CommitSHA = "none"
	BuildDate = "unknown"
)

// ServiceName tags every log line.
const ServiceName = "travel-booking"

func NewRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "travel-booking",
		Short:         "Reservation engine for restaurant tables and accommodation units",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if envFile == "" {
				return config.LoadDotEnv()
			}
			return config.LoadDotEnv(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env when present)")

	root.AddCommand(newServeCmd())
	root.AddCommand(newMigrateCmd())
	root.AddCommand(newReconcileCmd())
	root.AddCommand(newTokenCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env is what every database-backed command starts from.
type env struct {
	cfg     config.Config
	log     *zap.Logger
	db      *sql.DB
	dialect database.Dialect
}

func (e *env) close() {
	if e.db != nil {
		_ = e.db.Close()
	}
	_ = e.log.Sync()
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: ServiceName})

	dialect, err := database.ParseDialect(cfg.DBDriver)
	if err != nil {
		return nil, err
	}
	db, err := database.Open(ctx, database.Options{
		Dialect: dialect,
		User:    cfg.DBUser,
		Pass:    cfg.DBPass,
		Host:    cfg.DBHost,
		Port:    cfg.DBPort,
		Name:    cfg.DBName,
		SSLMode: cfg.DBSSLMode,
	})
	if err != nil {
		return nil, err
	}
	return &env{cfg: cfg, log: log, db: db, dialect: dialect}, nil
}

func runMigrations(ctx context.Context, e *env) error {
	applied, err := database.Migrate(ctx, e.db, e.dialect)
	if err != nil {
		return err
	}
	for _, name := range applied {
		e.log.Info("migration applied", zap.String("file", name))
	}
	return nil
}
