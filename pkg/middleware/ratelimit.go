package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	libredis "github.com/redis/go-redis/v9"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	redisstore "github.com/ulule/limiter/v3/drivers/store/redis"

	"github.com/storefixhq/storefix/pkg/configuration"
	"github.com/storefixhq/storefix/pkg/httpapi"
)

// RateLimitConfig configures the global request limiter. This is the coarse
// transport-level cap; the per-submitter quota lives in pkg/ratelimit and is
// enforced inside the submission service.
type RateLimitConfig struct {
	RequestsPerPeriod int
	Period            time.Duration
	Store             limiter.Store
	KeyFunc           func(r *http.Request) string
}

func NewMemoryStore() limiter.Store {
	return memory.NewStore()
}

func NewRedisStore(redisURL string) (limiter.Store, error) {
	opts, err := libredis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	client := libredis.NewClient(opts)
	return redisstore.NewStoreWithOptions(client, limiter.StoreOptions{
		Prefix: "storefix:ratelimit",
	})
}

func RateLimit(config RateLimitConfig) mux.MiddlewareFunc {
	period := config.Period
	if period == 0 {
		period = time.Second
	}
	keyFunc := config.KeyFunc
	if keyFunc == nil {
		conf := configuration.Use()
		keyFunc = func(r *http.Request) string {
			return getRealIP(r, conf)
		}
	}
	instance := limiter.New(config.Store, limiter.Rate{
		Period: period,
		Limit:  int64(config.RequestsPerPeriod),
	})
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lctx, err := instance.Get(r.Context(), keyFunc(r))
			if err != nil {
				// Limiter store failures must not take the site down.
				next.ServeHTTP(w, r)
				return
			}
			if lctx.Reached {
				_ = httpapi.WriteError(w, http.StatusTooManyRequests,
					"RATE_LIMITED", "Too many requests. Please try again later.", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
