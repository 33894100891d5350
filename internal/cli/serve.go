package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/travel-booking/internal/config"
	"github.com/iliyamo/travel-booking/internal/queue"
	"github.com/iliyamo/travel-booking/internal/repository"
	"github.com/iliyamo/travel-booking/internal/router"
	"github.com/iliyamo/travel-booking/internal/service"
)

func newServeCmd() *cobra.Command {
	var migrateUp bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			e, err := setup(ctx)
			if err != nil {
				return err
			}
			defer e.close()

			if migrateUp {
				if err := runMigrations(ctx, e); err != nil {
					return err
				}
			}

			rdb := config.NewRedisClient(ctx)
			if rdb == nil {
				e.log.Warn("redis unavailable, running without cache and rate limiting")
			} else {
				defer rdb.Close()
			}

			opts := service.Options{Log: e.log}
			if cc := config.LoadCacheConfig(); cc.Enabled && rdb != nil {
				opts.Redis, opts.CacheTTL, opts.CachePrefix = rdb, cc.TTL, cc.Prefix
			}
			if e.cfg.EventsEnabled {
				opts.Publisher = queue.NewPublisher(e.cfg.RabbitURL)
			}
			if e.cfg.EventsConsumer {
				consumer := queue.NewConsumer(e.cfg.RabbitURL, e.cfg.EventsLogDir, e.log)
				go func() {
					if err := consumer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
						e.log.Error("reservation consumer stopped", zap.Error(err))
					}
				}()
			}

			app := router.New(router.Deps{
				Reservations: service.New(repository.NewSQLStore(e.db, e.dialect), opts),
				DB:           e.db,
				Redis:        rdb,
				JWTSecret:    e.cfg.JWTSecret,
				CSRFEnabled:  e.cfg.CSRFEnabled,
				RateLimit:    config.LoadRateLimitConfig(),
				Log:          e.log,
			})

			errCh := make(chan error, 1)
			go func() {
				e.log.Info("listening", zap.String("addr", e.cfg.Addr()), zap.String("env", e.cfg.Env), zap.String("db", string(e.dialect)))
				errCh <- app.Start(e.cfg.Addr())
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			e.log.Info("shutting down")
			shutdownCtx, stop := context.WithTimeout(context.Background(), 10*time.Second)
			defer stop()
			return app.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().BoolVar(&migrateUp, "migrate", false, "apply pending migrations before serving")
	cmd.Flags().Lookup("migrate").NoOptDefVal = "true"
	return cmd
}
