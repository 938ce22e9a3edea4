package application

import (
	"fmt"
	"reflect"

	"github.com/gorilla/mux"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/storefixhq/storefix/pkg/eventbus"
)

// Controller registers HTTP routes on the shared router.
type Controller interface {
	Key() string
	Register(r *mux.Router)
}

// Module is a self-contained feature area that wires its services and
// controllers into the application.
type Module interface {
	Name() string
	Register(app Application) error
}

type Application interface {
	Pool() *pgxpool.Pool
	Logger() *logrus.Logger
	EventPublisher() eventbus.EventBus
	Migrations() *MigrationRegistry

	RegisterControllers(controllers ...Controller)
	RegisterMiddleware(middleware ...mux.MiddlewareFunc)
	RegisterServices(services ...any)

	Controllers() []Controller
	Middleware() []mux.MiddlewareFunc
	Service(t reflect.Type) any
}

type ApplicationOptions struct {
	Pool     *pgxpool.Pool
	EventBus eventbus.EventBus
	Logger   *logrus.Logger
}

func New(opts *ApplicationOptions) Application {
	return &application{
		pool:       opts.Pool,
		eventBus:   opts.EventBus,
		logger:     opts.Logger,
		services:   make(map[reflect.Type]any),
		migrations: NewMigrationRegistry(),
	}
}

type application struct {
	pool        *pgxpool.Pool
	eventBus    eventbus.EventBus
	logger      *logrus.Logger
	controllers []Controller
	middleware  []mux.MiddlewareFunc
	services    map[reflect.Type]any
	migrations  *MigrationRegistry
}

func (a *application) Pool() *pgxpool.Pool {
	return a.pool
}

func (a *application) Logger() *logrus.Logger {
	return a.logger
}

func (a *application) EventPublisher() eventbus.EventBus {
	return a.eventBus
}

func (a *application) Migrations() *MigrationRegistry {
	return a.migrations
}

func (a *application) RegisterControllers(controllers ...Controller) {
	a.controllers = append(a.controllers, controllers...)
}

func (a *application) RegisterMiddleware(middleware ...mux.MiddlewareFunc) {
	a.middleware = append(a.middleware, middleware...)
}

func (a *application) RegisterServices(services ...any) {
	for _, service := range services {
		a.services[reflect.TypeOf(service)] = service
	}
}

func (a *application) Controllers() []Controller {
	return a.controllers
}

func (a *application) Middleware() []mux.MiddlewareFunc {
	return a.middleware
}

func (a *application) Service(t reflect.Type) any {
	return a.services[t]
}

// Use resolves a registered service by type. Panics when the service was
// never registered, which is a wiring bug, not a runtime condition.
func Use[T any](app Application) T {
	var zero T
	svc := app.Service(reflect.TypeOf(zero))
	if svc == nil {
		panic(fmt.Sprintf("application: service %T not registered", zero))
	}
	return svc.(T)
}

// Load registers the given modules in order.
func Load(app Application, modules ...Module) error {
	for _, module := range modules {
		if err := module.Register(app); err != nil {
			return fmt.Errorf("register module %s: %w", module.Name(), err)
		}
	}
	return nil
}
