package audit

import (
	"embed"

	"github.com/storefixhq/storefix/modules/audit/infrastructure/persistence"
	"github.com/storefixhq/storefix/modules/audit/presentation/controllers"
	"github.com/storefixhq/storefix/modules/audit/services"
	"github.com/storefixhq/storefix/pkg/application"
)

//go:embed infrastructure/persistence/schema/00004_audit.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "audit"
}

func (m *Module) Register(app application.Application) error {
	app.RegisterServices(
		services.NewActivityLogService(services.ActivityLogServiceConfig{
			Repo: persistence.NewActivityLogRepository(),
		}),
	)
	app.RegisterControllers(
		controllers.NewActivityAPIController(controllers.ActivityAPIControllerConfig{
			BasePath: "/api/v1",
			App:      app,
		}),
	)
	app.Migrations().RegisterSchema(&MigrationFiles, "infrastructure/persistence/schema")
	return nil
}
