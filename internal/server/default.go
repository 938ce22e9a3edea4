package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/ulule/limiter/v3"

	"github.com/storefixhq/storefix/pkg/application"
	"github.com/storefixhq/storefix/pkg/configuration"
	"github.com/storefixhq/storefix/pkg/constants"
	"github.com/storefixhq/storefix/pkg/httpapi"
	"github.com/storefixhq/storefix/pkg/metrics"
	"github.com/storefixhq/storefix/pkg/middleware"
	"github.com/storefixhq/storefix/pkg/server"
)

type DefaultOptions struct {
	Logger        *logrus.Logger
	Configuration *configuration.Configuration
	Application   application.Application
}

// Default assembles the HTTP server: the shared middleware stack, the health
// endpoint, optional metrics, and every controller the modules registered.
func Default(options *DefaultOptions) (*server.HTTPServer, error) {
	app := options.Application
	conf := options.Configuration

	app.RegisterMiddleware(
		middleware.Provide(constants.AppKey, app),
		middleware.Provide(constants.PoolKey, app.Pool()),
		middleware.WithLogger(options.Logger, conf),
		middleware.Cors(conf.Intake.AllowedOrigins...),
	)

	if conf.RateLimit.Enabled {
		store, err := rateLimitStore(conf)
		if err != nil {
			return nil, fmt.Errorf("rate limit store: %w", err)
		}
		app.RegisterMiddleware(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerPeriod: conf.RateLimit.GlobalRPS,
			Period:            time.Second,
			Store:             store,
		}))
	}

	app.RegisterControllers(NewHealthController())
	if conf.Metrics.Enabled {
		app.RegisterControllers(metrics.NewPrometheusController(conf.Metrics.Path))
	}

	notFound := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusNotFound, "NOT_FOUND", "resource not found", nil)
	})
	notAllowed := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = httpapi.WriteError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "method not allowed", nil)
	})

	return server.NewHTTPServer(app, notFound, notAllowed), nil
}

func rateLimitStore(conf *configuration.Configuration) (limiter.Store, error) {
	if conf.RateLimit.Storage == "redis" {
		return middleware.NewRedisStore(conf.RateLimit.RedisURL)
	}
	return middleware.NewMemoryStore(), nil
}
