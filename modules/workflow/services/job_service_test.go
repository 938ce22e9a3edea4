package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefixhq/storefix/modules/intake/domain/aggregates/submission"
	intakePersistence "github.com/storefixhq/storefix/modules/intake/infrastructure/persistence"
	"github.com/storefixhq/storefix/modules/notifications/notify"
	"github.com/storefixhq/storefix/modules/workflow/domain/aggregates/job"
	"github.com/storefixhq/storefix/modules/workflow/infrastructure/persistence"
	"github.com/storefixhq/storefix/modules/workflow/services"
	"github.com/storefixhq/storefix/pkg/configuration"
	"github.com/storefixhq/storefix/pkg/eventbus"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

type fixture struct {
	service     *services.JobService
	jobs        *persistence.InmemJobRepository
	submissions *intakePersistence.InmemSubmissionRepository
	notifier    *notify.InMemoryNotifier
	bus         eventbus.EventBus
	clock       *fakeClock
}

func setup(t *testing.T, mutate func(*configuration.WorkflowOptions)) (*services.JobService, *fixture) {
	t.Helper()

	workflow := configuration.WorkflowOptions{TurnaroundDays: 7}
	if mutate != nil {
		mutate(&workflow)
	}

	clock := &fakeClock{current: time.Date(2025, time.April, 1, 10, 0, 0, 0, time.UTC)}
	jobs := persistence.NewInmemJobRepository(clock.Now)
	submissions := intakePersistence.NewInmemSubmissionRepository()
	notifier := notify.NewInMemoryNotifier()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	bus := eventbus.NewEventPublisher(logger)

	service := services.NewJobService(services.JobServiceConfig{
		Repo:           jobs,
		SubmissionRepo: submissions,
		Publisher:      bus,
		Notifier:       notifier,
		Workflow:       workflow,
		Currency:       "GBP",
		Clock:          clock.Now,
	})

	return service, &fixture{
		service:     service,
		jobs:        jobs,
		submissions: submissions,
		notifier:    notifier,
		bus:         bus,
		clock:       clock,
	}
}

func seedSubmission(t *testing.T, f *fixture) submission.Submission {
	t.Helper()
	sub, err := f.submissions.Create(context.Background(), submission.New(
		"SF-20250401-00001",
		"Priya Shah",
		"priya@corniche-bakery.co.uk",
		submission.WithMessage("The checkout button does nothing on mobile."),
		submission.WithStatus(submission.StatusInReview),
	))
	require.NoError(t, err)
	return sub
}

func createJob(t *testing.T, f *fixture) job.Job {
	t.Helper()
	created, err := f.service.CreateJob(context.Background(), services.CreateJobDTO{
		SubmissionID: seedSubmission(t, f).ID(),
		Category:     "bugfix",
		Actor:        "ops@storefix.co.uk",
	})
	require.NoError(t, err)
	return created
}

func TestJobService_CreateJob(t *testing.T) {
	t.Parallel()

	service, f := setup(t, nil)
	ctx := context.Background()

	var events []job.CreatedEvent
	f.bus.Subscribe(func(evt job.CreatedEvent) {
		events = append(events, evt)
	})

	sub := seedSubmission(t, f)
	created, err := service.CreateJob(ctx, services.CreateJobDTO{
		SubmissionID: sub.ID(),
		Category:     "bugfix",
		Actor:        "ops@storefix.co.uk",
	})
	require.NoError(t, err)

	assert.Equal(t, job.StatePendingQuote, created.State())
	assert.Equal(t, sub.ID(), created.SubmissionID())
	assert.Equal(t, "Priya Shah", created.CustomerName())
	// The submission's message rides along as the work description.
	assert.Equal(t, "The checkout button does nothing on mobile.", created.Description())

	// The source submission is consumed.
	updated, err := f.submissions.GetByID(ctx, sub.ID())
	require.NoError(t, err)
	assert.Equal(t, submission.StatusJobCreated, updated.Status())

	require.Len(t, events, 1)
	assert.Equal(t, created.Reference(), events[0].Reference)

	// A second job from the same submission is rejected.
	_, err = service.CreateJob(ctx, services.CreateJobDTO{SubmissionID: sub.ID(), Actor: "ops@storefix.co.uk"})
	require.ErrorIs(t, err, job.ErrSubmissionConsumed)
}

func TestJobService_SendQuoteQueuesEmail(t *testing.T) {
	t.Parallel()

	service, f := setup(t, nil)
	created := createJob(t, f)

	quotedJob, err := service.SendQuote(context.Background(), created.ID(), 45000, "ops@storefix.co.uk")
	require.NoError(t, err)
	assert.Equal(t, job.StateQuoted, quotedJob.State())
	assert.Equal(t, "GBP", quotedJob.Quote().Currency().Code)

	requests := f.notifier.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, notify.TopicQuoteSent, requests[0].Topic)
	payload := requests[0].Payload.(notify.QuoteIssued)
	assert.Equal(t, created.Reference(), payload.JobReference)
	assert.Equal(t, "priya@corniche-bakery.co.uk", payload.CustomerEmail)
}

func TestJobService_PreparedQuoteSendsWithoutAmount(t *testing.T) {
	t.Parallel()

	service, f := setup(t, nil)
	created := createJob(t, f)

	drafted, err := service.PrepareQuote(context.Background(), created.ID(), 45000, "ops@storefix.co.uk")
	require.NoError(t, err)
	assert.Equal(t, job.StatePendingQuote, drafted.State())
	assert.Empty(t, f.notifier.Requests())

	quotedJob, err := service.SendQuote(context.Background(), created.ID(), 0, "ops@storefix.co.uk")
	require.NoError(t, err)
	assert.Equal(t, job.StateQuoted, quotedJob.State())
	assert.Equal(t, int64(45000), quotedJob.Quote().Amount())
	require.Len(t, f.notifier.Requests(), 1)
}

func TestJobService_TransitionsPublishForAudit(t *testing.T) {
	t.Parallel()

	service, f := setup(t, nil)
	ctx := context.Background()

	var transitions []job.TransitionEvent
	f.bus.Subscribe(func(evt job.TransitionEvent) {
		transitions = append(transitions, evt)
	})

	created := createJob(t, f)
	_, err := service.SendQuote(ctx, created.ID(), 45000, "ops@storefix.co.uk")
	require.NoError(t, err)
	_, err = service.AcceptQuote(ctx, created.ID(), "ops@storefix.co.uk")
	require.NoError(t, err)
	_, err = service.StartWork(ctx, created.ID(), "ops@storefix.co.uk")
	require.NoError(t, err)
	_, err = service.Complete(ctx, created.ID(), "ops@storefix.co.uk")
	require.NoError(t, err)

	require.Len(t, transitions, 4)
	assert.Equal(t, job.StatePendingQuote, transitions[0].From)
	assert.Equal(t, job.StateQuoted, transitions[0].To)
	assert.Equal(t, job.StateCompleted, transitions[3].To)
}

func TestJobService_FailedTransitionLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	service, f := setup(t, nil)
	ctx := context.Background()

	created := createJob(t, f)

	// Accept is not legal before a quote goes out.
	_, err := service.AcceptQuote(ctx, created.ID(), "ops@storefix.co.uk")
	require.ErrorIs(t, err, job.ErrInvalidTransition)

	stored, err := f.jobs.GetByID(ctx, created.ID())
	require.NoError(t, err)
	assert.Equal(t, job.StatePendingQuote, stored.State())
}

func TestJobService_SLAScenario(t *testing.T) {
	t.Parallel()

	service, f := setup(t, nil)
	ctx := context.Background()

	created := createJob(t, f)
	_, err := service.SendQuote(ctx, created.ID(), 45000, "ops@storefix.co.uk")
	require.NoError(t, err)

	acceptedAt := f.clock.Now()
	acceptedJob, err := service.AcceptQuote(ctx, created.ID(), "ops@storefix.co.uk")
	require.NoError(t, err)

	assert.Equal(t, acceptedAt.Add(7*24*time.Hour), acceptedJob.DueAt())
	assert.Equal(t, job.BucketOnTrack, service.Bucket(acceptedJob))

	f.clock.Advance(5 * 24 * time.Hour)
	assert.Equal(t, job.BucketAtRisk, service.Bucket(acceptedJob))

	f.clock.Advance(3 * 24 * time.Hour)
	assert.Equal(t, job.BucketOverdue, service.Bucket(acceptedJob))

	overdue, err := service.List(ctx, &job.FindParams{Bucket: job.BucketOverdue})
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, created.ID(), overdue[0].ID())
}

func TestJobService_HoldExtendsSLAWhenConfigured(t *testing.T) {
	t.Parallel()

	service, f := setup(t, func(o *configuration.WorkflowOptions) {
		o.HoldExtendsSLA = true
	})
	ctx := context.Background()

	created := createJob(t, f)
	_, err := service.SendQuote(ctx, created.ID(), 45000, "ops@storefix.co.uk")
	require.NoError(t, err)
	acceptedJob, err := service.AcceptQuote(ctx, created.ID(), "ops@storefix.co.uk")
	require.NoError(t, err)
	_, err = service.StartWork(ctx, created.ID(), "ops@storefix.co.uk")
	require.NoError(t, err)

	_, err = service.Hold(ctx, created.ID(), "ops@storefix.co.uk")
	require.NoError(t, err)

	f.clock.Advance(2 * 24 * time.Hour)
	resumed, err := service.Resume(ctx, created.ID(), "ops@storefix.co.uk")
	require.NoError(t, err)

	assert.Equal(t, job.StateInProgress, resumed.State())
	assert.Equal(t, acceptedJob.DueAt().Add(2*24*time.Hour), resumed.DueAt())
}

func TestJobService_HoldCountsAgainstSLAByDefault(t *testing.T) {
	t.Parallel()

	service, f := setup(t, nil)
	ctx := context.Background()

	created := createJob(t, f)
	_, err := service.SendQuote(ctx, created.ID(), 45000, "ops@storefix.co.uk")
	require.NoError(t, err)
	acceptedJob, err := service.AcceptQuote(ctx, created.ID(), "ops@storefix.co.uk")
	require.NoError(t, err)
	_, err = service.StartWork(ctx, created.ID(), "ops@storefix.co.uk")
	require.NoError(t, err)
	_, err = service.Hold(ctx, created.ID(), "ops@storefix.co.uk")
	require.NoError(t, err)

	f.clock.Advance(2 * 24 * time.Hour)
	resumed, err := service.Resume(ctx, created.ID(), "ops@storefix.co.uk")
	require.NoError(t, err)

	assert.Equal(t, acceptedJob.DueAt(), resumed.DueAt())
}
