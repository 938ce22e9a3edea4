package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefixhq/storefix/modules/audit/domain/entities/activitylog"
	"github.com/storefixhq/storefix/modules/audit/infrastructure/persistence"
	"github.com/storefixhq/storefix/modules/audit/services"
	"github.com/storefixhq/storefix/modules/intake/domain/aggregates/submission"
	"github.com/storefixhq/storefix/modules/workflow/domain/aggregates/job"
	"github.com/storefixhq/storefix/pkg/eventbus"
)

func setup(t *testing.T) (*services.ActivityLogService, *persistence.InmemActivityLogRepository, eventbus.EventBus) {
	t.Helper()

	repo := persistence.NewInmemActivityLogRepository()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	bus := eventbus.NewEventPublisher(logger)

	service := services.NewActivityLogService(services.ActivityLogServiceConfig{Repo: repo})
	service.RegisterHandlers(bus, context.Background())
	return service, repo, bus
}

func TestActivityLog_RecordsSubmissionEvents(t *testing.T) {
	t.Parallel()

	service, _, bus := setup(t)
	ctx := context.Background()

	bus.Publish(submission.CreatedEvent{
		ID:        uuid.New(),
		Reference: "SF-20250401-00001",
		Name:      "Priya Shah",
		Email:     "priya@corniche-bakery.co.uk",
		CreatedAt: time.Now(),
	})
	bus.Publish(submission.StatusChangedEvent{
		ID:        uuid.New(),
		Reference: "SF-20250401-00001",
		From:      submission.StatusNew,
		To:        submission.StatusInReview,
		Actor:     "ops@storefix.co.uk",
	})

	entries, err := service.List(ctx, &activitylog.FindParams{Reference: "SF-20250401-00001"})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	byKind := make(map[string]activitylog.Entry, len(entries))
	for _, entry := range entries {
		byKind[entry.Kind] = entry
	}
	assert.Equal(t, "priya@corniche-bakery.co.uk", byKind["submission.created"].Actor)
	assert.Equal(t, "new -> in_review", byKind["submission.status_changed"].Detail)
}

func TestActivityLog_RecordsJobTransitions(t *testing.T) {
	t.Parallel()

	service, _, bus := setup(t)
	ctx := context.Background()

	bus.Publish(job.TransitionEvent{
		ID:        uuid.New(),
		Reference: "JOB-20250401-00001",
		From:      job.StateQuoted,
		To:        job.StateAccepted,
		Actor:     "ops@storefix.co.uk",
		At:        time.Now(),
	})

	entries, err := service.List(ctx, &activitylog.FindParams{Kind: "job.transition"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "quoted -> accepted", entries[0].Detail)
	assert.Equal(t, "ops@storefix.co.uk", entries[0].Actor)
}

func TestActivityLog_ListFiltersAndCounts(t *testing.T) {
	t.Parallel()

	service, repo, _ := setup(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, activitylog.New("job.transition", "JOB-1", "ops", "", time.Now()))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, activitylog.New("invoice.paid", "INV-1", "ops", "", time.Now()))
	require.NoError(t, err)

	count, err := service.Count(ctx, &activitylog.FindParams{Kind: "job.transition"})
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	limited, err := service.List(ctx, &activitylog.FindParams{Kind: "job.transition", Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}
