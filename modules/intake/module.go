package intake

import (
	"embed"

	"github.com/storefixhq/storefix/modules/intake/infrastructure/persistence"
	"github.com/storefixhq/storefix/modules/intake/infrastructure/voicestore"
	"github.com/storefixhq/storefix/modules/intake/presentation/controllers"
	"github.com/storefixhq/storefix/modules/intake/services"
	"github.com/storefixhq/storefix/modules/notifications/notify"
	"github.com/storefixhq/storefix/pkg/application"
	"github.com/storefixhq/storefix/pkg/configuration"
	"github.com/storefixhq/storefix/pkg/outbox"
	"github.com/storefixhq/storefix/pkg/ratelimit"
)

//go:embed infrastructure/persistence/schema/00001_intake.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "intake"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	store, err := m.voiceStore(conf)
	if err != nil {
		return err
	}

	app.RegisterServices(
		services.NewSubmissionService(services.SubmissionServiceConfig{
			Repo:       persistence.NewSubmissionRepository(),
			Publisher:  app.EventPublisher(),
			Notifier:   notify.NewOutboxNotifier(outbox.NewPublisher()),
			VoiceStore: store,
			Limiter: ratelimit.New(
				conf.RateLimit.SubmissionMax,
				conf.RateLimit.SubmissionWindow,
			),
			Options: conf.Intake,
		}),
	)
	app.RegisterControllers(
		controllers.NewSubmissionsAPIController(controllers.SubmissionsAPIControllerConfig{
			BasePath: "/api/v1",
			App:      app,
			Debug:    conf.Environment != "production",
		}),
	)
	app.Migrations().RegisterSchema(&MigrationFiles, "infrastructure/persistence/schema")
	return nil
}

// voiceStore picks object storage when credentials are configured and falls
// back to process memory otherwise, which suits local development.
func (m *Module) voiceStore(conf *configuration.Configuration) (voicestore.Store, error) {
	if conf.Storage.AccessKey == "" {
		return voicestore.NewInMemoryStore(), nil
	}
	return voicestore.NewS3Store(conf.Storage)
}
