package modules

import (
	"github.com/storefixhq/storefix/modules/audit"
	"github.com/storefixhq/storefix/modules/billing"
	"github.com/storefixhq/storefix/modules/intake"
	"github.com/storefixhq/storefix/modules/notifications"
	"github.com/storefixhq/storefix/modules/workflow"
	"github.com/storefixhq/storefix/pkg/application"
)

// BuiltInModules returns every module in registration order. Intake comes
// first so later modules can depend on its services being present.
func BuiltInModules() []application.Module {
	return []application.Module{
		intake.NewModule(),
		workflow.NewModule(),
		billing.NewModule(),
		audit.NewModule(),
		notifications.NewModule(),
	}
}

// Load registers the built-in modules into the application.
func Load(app application.Application) error {
	return application.Load(app, BuiltInModules()...)
}
