package constants

import (
	"github.com/go-playground/validator/v10"
)

type ContextKey string

const (
	AppKey       ContextKey = "app"
	PoolKey      ContextKey = "pool"
	TxKey        ContextKey = "tx"
	LoggerKey    ContextKey = "logger"
	RequestIDKey ContextKey = "requestID"
	ParamsKey    ContextKey = "params"
)

// Validate is the shared validator instance. DTOs register their struct tags
// against it instead of constructing one per request.
var Validate = validator.New(validator.WithRequiredStructEnabled())
