package billing

import (
	"embed"

	"github.com/storefixhq/storefix/modules/billing/infrastructure/persistence"
	"github.com/storefixhq/storefix/modules/billing/presentation/controllers"
	"github.com/storefixhq/storefix/modules/billing/services"
	"github.com/storefixhq/storefix/modules/notifications/notify"
	workflowPersistence "github.com/storefixhq/storefix/modules/workflow/infrastructure/persistence"
	"github.com/storefixhq/storefix/pkg/application"
	"github.com/storefixhq/storefix/pkg/configuration"
	"github.com/storefixhq/storefix/pkg/outbox"
)

//go:embed infrastructure/persistence/schema/00003_billing.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "billing"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	app.RegisterServices(
		services.NewInvoiceService(services.InvoiceServiceConfig{
			Repo:      persistence.NewInvoiceRepository(),
			JobRepo:   workflowPersistence.NewJobRepository(),
			Publisher: app.EventPublisher(),
			Notifier:  notify.NewOutboxNotifier(outbox.NewPublisher()),
			Billing:   conf.Billing,
		}),
	)
	app.RegisterControllers(
		controllers.NewInvoicesAPIController(controllers.InvoicesAPIControllerConfig{
			BasePath: "/api/v1",
			App:      app,
		}),
	)
	app.Migrations().RegisterSchema(&MigrationFiles, "infrastructure/persistence/schema")
	return nil
}
