package services

import (
	"context"
	"errors"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"

	"github.com/storefixhq/storefix/modules/intake/domain/aggregates/submission"
	"github.com/storefixhq/storefix/modules/notifications/notify"
	"github.com/storefixhq/storefix/modules/workflow/domain/aggregates/job"
	"github.com/storefixhq/storefix/pkg/composables"
	"github.com/storefixhq/storefix/pkg/configuration"
	"github.com/storefixhq/storefix/pkg/eventbus"
)

type CreateJobDTO struct {
	SubmissionID uuid.UUID
	Category     string
	Description  string
	Actor        string
}

type JobServiceConfig struct {
	Repo           job.Repository
	SubmissionRepo submission.Repository
	Publisher      eventbus.EventBus
	Notifier       notify.Notifier
	Workflow       configuration.WorkflowOptions
	Currency       string
	Clock          func() time.Time
}

// JobService is the command API operators drive: every workflow transition
// is an explicit action taken by a named actor, and every committed
// transition is published for the activity log.
type JobService struct {
	repo           job.Repository
	submissionRepo submission.Repository
	publisher      eventbus.EventBus
	notifier       notify.Notifier
	workflow       configuration.WorkflowOptions
	currency       string
	clock          func() time.Time
}

func NewJobService(config JobServiceConfig) *JobService {
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}
	currency := config.Currency
	if currency == "" {
		currency = money.USD
	}
	return &JobService{
		repo:           config.Repo,
		submissionRepo: config.SubmissionRepo,
		publisher:      config.Publisher,
		notifier:       config.Notifier,
		workflow:       config.Workflow,
		currency:       currency,
		clock:          clock,
	}
}

func (s *JobService) turnaround() time.Duration {
	return time.Duration(s.workflow.TurnaroundDays) * 24 * time.Hour
}

// CreateJob turns a reviewed submission into a job awaiting a quote. The
// submission moves to job_created in the same transaction; a submission can
// back at most one job.
func (s *JobService) CreateJob(ctx context.Context, dto CreateJobDTO) (job.Job, error) {
	now := s.clock()

	var created job.Job
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		sub, txErr := s.submissionRepo.GetByID(txCtx, dto.SubmissionID)
		if txErr != nil {
			return txErr
		}

		if _, txErr = s.repo.GetBySubmissionID(txCtx, sub.ID()); txErr == nil {
			return job.ErrSubmissionConsumed
		} else if !errors.Is(txErr, job.ErrNotFound) {
			return txErr
		}

		description := dto.Description
		if description == "" {
			description = sub.Message()
		}

		newJob := job.New(
			job.GenerateReference(now),
			sub.ID(),
			sub.Name(),
			sub.Email(),
			job.WithStoreURL(sub.StoreURL()),
			job.WithCategory(dto.Category),
			job.WithDescription(description),
			job.WithCreatedAt(now),
			job.WithUpdatedAt(now),
		)
		created, txErr = s.repo.Create(txCtx, newJob)
		if txErr != nil {
			return txErr
		}

		if _, txErr = s.submissionRepo.Update(txCtx, sub.WithStatus(submission.StatusJobCreated)); txErr != nil {
			return txErr
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(job.CreatedEvent{
		ID:           created.ID(),
		Reference:    created.Reference(),
		SubmissionID: created.SubmissionID(),
		Customer:     created.CustomerName(),
		Actor:        dto.Actor,
		CreatedAt:    now,
	})
	return created, nil
}

// transition loads, applies and saves a state change atomically, then
// publishes it. The apply callback receives the load-time aggregate; its
// guards decide whether the change is legal.
func (s *JobService) transition(ctx context.Context, id uuid.UUID, actor string, apply func(context.Context, job.Job) (job.Job, error)) (job.Job, error) {
	var (
		updated job.Job
		from    job.State
	)
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		current, txErr := s.repo.GetByID(txCtx, id)
		if txErr != nil {
			return txErr
		}
		from = current.State()

		next, txErr := apply(txCtx, current)
		if txErr != nil {
			return txErr
		}
		updated, txErr = s.repo.Update(txCtx, next)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(job.TransitionEvent{
		ID:        updated.ID(),
		Reference: updated.Reference(),
		From:      from,
		To:        updated.State(),
		Actor:     actor,
		At:        s.clock(),
	})
	return updated, nil
}

// PrepareQuote drafts the quote amount without notifying the customer. The
// job stays in pending_quote; SendQuote without an amount sends the draft.
func (s *JobService) PrepareQuote(ctx context.Context, id uuid.UUID, amountMinor int64, actor string) (job.Job, error) {
	now := s.clock()
	amount := money.New(amountMinor, s.currency)

	var updated job.Job
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		current, txErr := s.repo.GetByID(txCtx, id)
		if txErr != nil {
			return txErr
		}
		next, txErr := current.PrepareQuote(amount, now)
		if txErr != nil {
			return txErr
		}
		updated, txErr = s.repo.Update(txCtx, next)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SendQuote prices the job and queues the quote email to the client. A zero
// amount falls back to a previously prepared draft.
func (s *JobService) SendQuote(ctx context.Context, id uuid.UUID, amountMinor int64, actor string) (job.Job, error) {
	now := s.clock()
	var amount *money.Money
	if amountMinor != 0 {
		amount = money.New(amountMinor, s.currency)
	}

	return s.transition(ctx, id, actor, func(txCtx context.Context, current job.Job) (job.Job, error) {
		next, err := current.SendQuote(amount, now)
		if err != nil {
			return nil, err
		}
		if err := s.notifier.QuoteSent(txCtx, notify.QuoteIssued{
			JobReference:  next.Reference(),
			CustomerName:  next.CustomerName(),
			CustomerEmail: next.CustomerEmail(),
			Amount:        next.Quote().Display(),
		}); err != nil {
			composables.UseLogger(txCtx).WithError(err).Warn("failed to queue quote email")
		}
		return next, nil
	})
}

func (s *JobService) AcceptQuote(ctx context.Context, id uuid.UUID, actor string) (job.Job, error) {
	now := s.clock()
	return s.transition(ctx, id, actor, func(_ context.Context, current job.Job) (job.Job, error) {
		return current.Accept(now, s.turnaround())
	})
}

func (s *JobService) StartWork(ctx context.Context, id uuid.UUID, actor string) (job.Job, error) {
	now := s.clock()
	return s.transition(ctx, id, actor, func(_ context.Context, current job.Job) (job.Job, error) {
		return current.Start(now)
	})
}

func (s *JobService) Hold(ctx context.Context, id uuid.UUID, actor string) (job.Job, error) {
	now := s.clock()
	return s.transition(ctx, id, actor, func(_ context.Context, current job.Job) (job.Job, error) {
		return current.Hold(now)
	})
}

func (s *JobService) Resume(ctx context.Context, id uuid.UUID, actor string) (job.Job, error) {
	now := s.clock()
	return s.transition(ctx, id, actor, func(_ context.Context, current job.Job) (job.Job, error) {
		return current.Resume(now, s.workflow.HoldExtendsSLA)
	})
}

func (s *JobService) Complete(ctx context.Context, id uuid.UUID, actor string) (job.Job, error) {
	now := s.clock()
	return s.transition(ctx, id, actor, func(_ context.Context, current job.Job) (job.Job, error) {
		return current.Complete(now)
	})
}

func (s *JobService) Decline(ctx context.Context, id uuid.UUID, actor string) (job.Job, error) {
	now := s.clock()
	return s.transition(ctx, id, actor, func(_ context.Context, current job.Job) (job.Job, error) {
		return current.Decline(now)
	})
}

func (s *JobService) GetByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *JobService) GetByReference(ctx context.Context, reference string) (job.Job, error) {
	return s.repo.GetByReference(ctx, reference)
}

func (s *JobService) List(ctx context.Context, params *job.FindParams) ([]job.Job, error) {
	return s.repo.List(ctx, params)
}

func (s *JobService) Count(ctx context.Context, params *job.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

// Bucket evaluates the SLA bucket for j at the service clock.
func (s *JobService) Bucket(j job.Job) job.SLABucket {
	return job.SLA(j.State(), j.DueAt(), s.clock())
}
