package main

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/storefixhq/storefix/modules"
	auditServices "github.com/storefixhq/storefix/modules/audit/services"
	"github.com/storefixhq/storefix/pkg/application"
	"github.com/storefixhq/storefix/pkg/composables"
	"github.com/storefixhq/storefix/pkg/configuration"
	"github.com/storefixhq/storefix/pkg/eventbus"
)

type cliEnv struct {
	app  application.Application
	pool *pgxpool.Pool
	conf *configuration.Configuration
}

// bootstrap loads configuration and modules the same way cmd/server does.
// The returned context carries the pool so repositories resolve without
// request middleware.
func bootstrap(ctx context.Context) (*cliEnv, context.Context, func(), error) {
	conf := configuration.Use()
	logger := conf.Logger()

	pool, err := pgxpool.New(ctx, conf.Database.Opts)
	if err != nil {
		return nil, nil, nil, errors.Wrap(err, "connect to database")
	}

	app := application.New(&application.ApplicationOptions{
		Pool:     pool,
		EventBus: eventbus.NewEventPublisher(logger),
		Logger:   logger,
	})
	if err := modules.Load(app); err != nil {
		pool.Close()
		return nil, nil, nil, errors.Wrap(err, "load modules")
	}

	poolCtx := composables.WithPool(ctx, pool)
	application.Use[*auditServices.ActivityLogService](app).
		RegisterHandlers(app.EventPublisher(), poolCtx)

	env := &cliEnv{app: app, pool: pool, conf: conf}
	return env, poolCtx, pool.Close, nil
}
