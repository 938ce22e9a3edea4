package workflow

import (
	"embed"

	intakePersistence "github.com/storefixhq/storefix/modules/intake/infrastructure/persistence"
	"github.com/storefixhq/storefix/modules/notifications/notify"
	"github.com/storefixhq/storefix/modules/workflow/infrastructure/persistence"
	"github.com/storefixhq/storefix/modules/workflow/presentation/controllers"
	"github.com/storefixhq/storefix/modules/workflow/services"
	"github.com/storefixhq/storefix/pkg/application"
	"github.com/storefixhq/storefix/pkg/configuration"
	"github.com/storefixhq/storefix/pkg/outbox"
)

//go:embed infrastructure/persistence/schema/00002_workflow.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "workflow"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	app.RegisterServices(
		services.NewJobService(services.JobServiceConfig{
			Repo:           persistence.NewJobRepository(),
			SubmissionRepo: intakePersistence.NewSubmissionRepository(),
			Publisher:      app.EventPublisher(),
			Notifier:       notify.NewOutboxNotifier(outbox.NewPublisher()),
			Workflow:       conf.Workflow,
			Currency:       conf.Billing.Currency,
		}),
	)
	app.RegisterControllers(
		controllers.NewJobsAPIController(controllers.JobsAPIControllerConfig{
			BasePath: "/api/v1",
			App:      app,
		}),
	)
	app.Migrations().RegisterSchema(&MigrationFiles, "infrastructure/persistence/schema")
	return nil
}
