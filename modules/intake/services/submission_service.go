package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/storefixhq/storefix/modules/intake/domain/aggregates/submission"
	"github.com/storefixhq/storefix/modules/intake/infrastructure/voicestore"
	"github.com/storefixhq/storefix/modules/notifications/notify"
	"github.com/storefixhq/storefix/pkg/composables"
	"github.com/storefixhq/storefix/pkg/configuration"
	"github.com/storefixhq/storefix/pkg/eventbus"
	"github.com/storefixhq/storefix/pkg/ratelimit"
)

type SubmissionServiceConfig struct {
	Repo       submission.Repository
	Publisher  eventbus.EventBus
	Notifier   notify.Notifier
	VoiceStore voicestore.Store
	Limiter    *ratelimit.Limiter
	Options    configuration.IntakeOptions
	Clock      func() time.Time
}

// SubmissionService runs the public intake pipeline: validate, rate limit,
// persist, store the recording, queue the notification emails.
type SubmissionService struct {
	repo       submission.Repository
	publisher  eventbus.EventBus
	notifier   notify.Notifier
	voiceStore voicestore.Store
	limiter    *ratelimit.Limiter
	options    configuration.IntakeOptions
	clock      func() time.Time
}

func NewSubmissionService(config SubmissionServiceConfig) *SubmissionService {
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}
	return &SubmissionService{
		repo:       config.Repo,
		publisher:  config.Publisher,
		notifier:   config.Notifier,
		voiceStore: config.VoiceStore,
		limiter:    config.Limiter,
		options:    config.Options,
		clock:      clock,
	}
}

func (s *SubmissionService) limits() submission.Limits {
	return submission.Limits{
		MaxNameLength:    s.options.MaxNameLength,
		MaxEmailLength:   s.options.MaxEmailLength,
		MaxURLLength:     s.options.MaxURLLength,
		MaxMessageLength: s.options.MaxMessageLength,
		VoiceNote: submission.VoiceNoteLimits{
			MaxBytes:     s.options.MaxVoiceNoteBytes,
			MaxSeconds:   s.options.MaxVoiceNoteSeconds,
			AllowedTypes: s.options.AllowedAudioTypes,
		},
	}
}

// CheckOrigin enforces the submission origin allow-list. An empty list
// disables the check; an empty origin header is allowed so direct API
// clients keep working.
func (s *SubmissionService) CheckOrigin(origin string) error {
	if len(s.options.AllowedOrigins) == 0 || origin == "" {
		return nil
	}
	for _, allowed := range s.options.AllowedOrigins {
		if strings.EqualFold(strings.TrimSuffix(allowed, "/"), strings.TrimSuffix(origin, "/")) {
			return nil
		}
	}
	return submission.ErrOriginNotAllowed
}

// Create validates dto and persists a new submission. Rate limiting keys on
// the submitter's email: the sixth attempt within the window is rejected
// before anything is written. The limiter only records attempts that
// actually persist, so rejected payloads never consume quota.
func (s *SubmissionService) Create(ctx context.Context, dto *submission.CreateDTO) (submission.Submission, error) {
	validated, err := dto.Validate(s.limits())
	if err != nil {
		return nil, err
	}

	email := validated.Email.Value()
	if !s.limiter.Allow(email) {
		return nil, submission.ErrRateLimited
	}

	now := s.clock()
	reference := validated.Reference
	if reference == "" {
		reference = submission.GenerateReference(now)
	}

	opts := []submission.Option{
		submission.WithCreatedAt(now),
	}
	if !validated.StoreURL.IsZero() {
		opts = append(opts, submission.WithStoreURL(validated.StoreURL.Value()))
	}
	if validated.Message != "" {
		opts = append(opts, submission.WithMessage(validated.Message))
	}

	voiceNoteLink := ""
	if validated.VoiceNote != nil {
		opts = append(opts, submission.WithHasVoiceNote(true))
		voiceNoteLink = s.storeVoiceNote(ctx, reference, validated.VoiceNote)
		if voiceNoteLink != "" {
			opts = append(opts, submission.WithVoiceNote(voiceNoteLink))
		}
	}

	sub := submission.New(reference, validated.Name, email, opts...)

	var created submission.Submission
	err = composables.InTx(ctx, func(txCtx context.Context) error {
		var txErr error
		created, txErr = s.repo.Create(txCtx, sub)
		if txErr != nil {
			return txErr
		}
		s.queueNotifications(txCtx, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.limiter.Record(email, now)
	s.publisher.Publish(submission.CreatedEvent{
		ID:           created.ID(),
		Reference:    created.Reference(),
		Name:         created.Name(),
		Email:        created.Email(),
		HasVoiceNote: created.HasVoiceNote(),
		CreatedAt:    created.CreatedAt(),
	})
	return created, nil
}

// storeVoiceNote uploads the recording. Upload failures degrade to a
// submission without a playback link rather than losing the lead.
func (s *SubmissionService) storeVoiceNote(ctx context.Context, reference string, note *submission.VoiceNote) string {
	if s.voiceStore == nil {
		return ""
	}
	objectKey := fmt.Sprintf("%s%s", reference, extensionFor(note.MIME))
	link, err := s.voiceStore.Put(ctx, objectKey, note.Data, note.MIME)
	if err != nil {
		composables.UseLogger(ctx).
			WithError(err).
			WithField("reference", reference).
			Warn("voice note upload failed")
		return ""
	}
	return link
}

// queueNotifications enqueues the admin alert and the submitter confirmation
// inside the open transaction. Both are best effort: a full outbox table must
// not take the intake form down.
func (s *SubmissionService) queueNotifications(txCtx context.Context, sub submission.Submission) {
	logger := composables.UseLogger(txCtx)
	if err := s.notifier.SubmissionReceived(txCtx, notify.NewSubmission{
		Reference:     sub.Reference(),
		Name:          sub.Name(),
		Email:         sub.Email(),
		StoreURL:      sub.StoreURL(),
		Message:       sub.Message(),
		HasVoiceNote:  sub.HasVoiceNote(),
		VoiceNoteLink: sub.VoiceNoteLink(),
	}); err != nil {
		logger.WithError(err).Warn("failed to queue admin notification")
	}
	if err := s.notifier.ConfirmSubmission(txCtx, notify.SubmissionAck{
		Reference: sub.Reference(),
		Name:      sub.Name(),
		Email:     sub.Email(),
	}); err != nil {
		logger.WithError(err).Warn("failed to queue submitter confirmation")
	}
}

func (s *SubmissionService) GetByID(ctx context.Context, id uuid.UUID) (submission.Submission, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *SubmissionService) GetByReference(ctx context.Context, reference string) (submission.Submission, error) {
	return s.repo.GetByReference(ctx, reference)
}

func (s *SubmissionService) List(ctx context.Context, params *submission.FindParams) ([]submission.Submission, error) {
	return s.repo.List(ctx, params)
}

func (s *SubmissionService) Count(ctx context.Context, params *submission.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}

// UpdateStatus moves a submission between review statuses and publishes the
// change for the activity log.
func (s *SubmissionService) UpdateStatus(ctx context.Context, id uuid.UUID, status submission.Status, actor string) (submission.Submission, error) {
	if !status.Valid() {
		return nil, submission.ErrInvalidStatus
	}

	var updated submission.Submission
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		current, txErr := s.repo.GetByID(txCtx, id)
		if txErr != nil {
			return txErr
		}
		from := current.Status()
		if from == status {
			updated = current
			return nil
		}
		updated, txErr = s.repo.Update(txCtx, current.WithStatus(status))
		if txErr != nil {
			return txErr
		}
		s.publisher.Publish(submission.StatusChangedEvent{
			ID:        updated.ID(),
			Reference: updated.Reference(),
			From:      from,
			To:        status,
			Actor:     actor,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// ResetAll wipes every submission. Refuses to run unless the deployment
// opted in, which only local and CI environments do.
func (s *SubmissionService) ResetAll(ctx context.Context) error {
	if !s.options.AllowBulkReset {
		return submission.ErrResetDisabled
	}
	if err := s.repo.DeleteAll(ctx); err != nil {
		return err
	}
	s.limiter.Reset()
	return nil
}

func extensionFor(mime string) string {
	switch mime {
	case "audio/webm":
		return ".webm"
	case "audio/ogg":
		return ".ogg"
	case "audio/mp4":
		return ".m4a"
	case "audio/mpeg":
		return ".mp3"
	case "audio/wav":
		return ".wav"
	default:
		return ".bin"
	}
}
