package notifications

import (
	"embed"

	"github.com/storefixhq/storefix/modules/notifications/email"
	"github.com/storefixhq/storefix/pkg/application"
	"github.com/storefixhq/storefix/pkg/configuration"
	"github.com/storefixhq/storefix/pkg/mailer"
)

//go:embed infrastructure/persistence/schema/00005_notifications.sql
var MigrationFiles embed.FS

func NewModule() application.Module {
	return &Module{}
}

type Module struct{}

func (m *Module) Name() string {
	return "notifications"
}

func (m *Module) Register(app application.Application) error {
	conf := configuration.Use()

	app.RegisterServices(
		email.NewDispatcher(email.DispatcherConfig{
			Mailer: mailer.NewSMTP(mailer.SMTPConfig{
				Host:     conf.SMTP.Host,
				Port:     conf.SMTP.Port,
				Username: conf.SMTP.Username,
				Password: conf.SMTP.Password,
				From:     conf.SMTP.From,
			}),
			AdminEmail: conf.SMTP.AdminEmail,
		}),
	)
	app.Migrations().RegisterSchema(&MigrationFiles, "infrastructure/persistence/schema")
	return nil
}
