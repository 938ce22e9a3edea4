package services

import (
	"context"
	"fmt"
	"time"

	"github.com/storefixhq/storefix/modules/audit/domain/entities/activitylog"
	"github.com/storefixhq/storefix/modules/billing/domain/aggregates/invoice"
	"github.com/storefixhq/storefix/modules/intake/domain/aggregates/submission"
	"github.com/storefixhq/storefix/modules/workflow/domain/aggregates/job"
	"github.com/storefixhq/storefix/pkg/composables"
	"github.com/storefixhq/storefix/pkg/eventbus"
)

type ActivityLogServiceConfig struct {
	Repo  activitylog.Repository
	Clock func() time.Time
}

// ActivityLogService writes the audit trail. Entries are recorded after the
// fact from published events, outside the originating transaction: a failed
// audit write never rolls back the action it describes.
type ActivityLogService struct {
	repo  activitylog.Repository
	clock func() time.Time
}

func NewActivityLogService(config ActivityLogServiceConfig) *ActivityLogService {
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}
	return &ActivityLogService{
		repo:  config.Repo,
		clock: clock,
	}
}

func (s *ActivityLogService) Log(ctx context.Context, kind, reference, actor, detail string) {
	entry := activitylog.New(kind, reference, actor, detail, s.clock())
	if _, err := s.repo.Create(ctx, entry); err != nil {
		composables.UseLogger(ctx).
			WithError(err).
			WithField("kind", kind).
			WithField("reference", reference).
			Warn("failed to write activity log entry")
	}
}

func (s *ActivityLogService) List(ctx context.Context, params *activitylog.FindParams) ([]activitylog.Entry, error) {
	return s.repo.List(ctx, params)
}

func (s *ActivityLogService) Count(ctx context.Context, params *activitylog.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

// RegisterHandlers subscribes the audit trail to every domain event worth
// recording. baseCtx carries the pool; handlers run synchronously on the
// publishing goroutine.
func (s *ActivityLogService) RegisterHandlers(bus eventbus.EventBus, baseCtx context.Context) {
	bus.Subscribe(func(evt submission.CreatedEvent) {
		s.Log(baseCtx, "submission.created", evt.Reference, evt.Email,
			fmt.Sprintf("submission from %s", evt.Name))
	})
	bus.Subscribe(func(evt submission.StatusChangedEvent) {
		s.Log(baseCtx, "submission.status_changed", evt.Reference, evt.Actor,
			fmt.Sprintf("%s -> %s", evt.From, evt.To))
	})
	bus.Subscribe(func(evt job.CreatedEvent) {
		s.Log(baseCtx, "job.created", evt.Reference, evt.Actor,
			fmt.Sprintf("job for %s", evt.Customer))
	})
	bus.Subscribe(func(evt job.TransitionEvent) {
		s.Log(baseCtx, "job.transition", evt.Reference, evt.Actor,
			fmt.Sprintf("%s -> %s", evt.From, evt.To))
	})
	bus.Subscribe(func(evt invoice.GeneratedEvent) {
		s.Log(baseCtx, "invoice.generated", evt.Number, evt.Actor,
			fmt.Sprintf("%s invoice for %s", evt.Kind, evt.Total))
	})
	bus.Subscribe(func(evt invoice.SentEvent) {
		s.Log(baseCtx, "invoice.sent", evt.Number, evt.Actor, "")
	})
	bus.Subscribe(func(evt invoice.PaidEvent) {
		s.Log(baseCtx, "invoice.paid", evt.Number, evt.Actor,
			fmt.Sprintf("paid via %s", evt.Method))
	})
	bus.Subscribe(func(evt invoice.ReminderEvent) {
		s.Log(baseCtx, "invoice.reminder", evt.Number, "system", "")
	})
}
