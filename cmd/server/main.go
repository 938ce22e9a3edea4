package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/storefixhq/storefix/internal/server"
	"github.com/storefixhq/storefix/modules"
	auditServices "github.com/storefixhq/storefix/modules/audit/services"
	"github.com/storefixhq/storefix/modules/notifications/email"
	"github.com/storefixhq/storefix/modules/notifications/notify"
	"github.com/storefixhq/storefix/pkg/application"
	"github.com/storefixhq/storefix/pkg/composables"
	"github.com/storefixhq/storefix/pkg/configuration"
	"github.com/storefixhq/storefix/pkg/eventbus"
	"github.com/storefixhq/storefix/pkg/outbox"
)

func main() {
	conf := configuration.Use()
	logger := conf.Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		logger.WithError(err).Fatal("failed to connect to database")
	}
	defer pool.Close()

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app); err != nil {
		logger.WithError(err).Fatal("failed to load modules")
	}
	if err := app.Migrations().Run(ctx, pool); err != nil {
		logger.WithError(err).Fatal("failed to run migrations")
	}

	// The audit trail listens outside request scope, so its context carries
	// the pool directly.
	auditCtx := composables.WithPool(context.Background(), pool)
	application.Use[*auditServices.ActivityLogService](app).
		RegisterHandlers(app.EventPublisher(), auditCtx)

	if conf.Outbox.RelayEnabled {
		relay, err := outbox.NewRelay(pool, notify.Table,
			application.Use[*email.Dispatcher](app),
			outbox.RelayOptions{
				PollInterval: conf.Outbox.PollInterval,
				BatchSize:    conf.Outbox.BatchSize,
				MaxAttempts:  conf.Outbox.MaxAttempts,
				Logger:       logger.WithField("component", "outbox-relay"),
			},
		)
		if err != nil {
			logger.WithError(err).Fatal("failed to build outbox relay")
		}
		go func() {
			if err := relay.Run(ctx); err != nil && ctx.Err() == nil {
				logger.WithError(err).Error("outbox relay stopped")
			}
		}()
	}

	srv, err := server.Default(&server.DefaultOptions{
		Logger:        logger,
		Configuration: conf,
		Application:   app,
	})
	if err != nil {
		logger.WithError(err).Fatal("failed to assemble server")
	}

	logger.WithField("address", conf.SocketAddress).Info("starting server")
	if err := srv.Start(ctx, conf.SocketAddress); err != nil {
		logger.WithError(err).Fatal("server stopped")
	}
	logger.Info("server shut down")
}
