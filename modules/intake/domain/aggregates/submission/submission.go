package submission

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusNew        Status = "new"
	StatusInReview   Status = "in_review"
	StatusJobCreated Status = "job_created"
	StatusDeclined   Status = "declined"
	StatusSpam       Status = "spam"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusInReview, StatusJobCreated, StatusDeclined, StatusSpam:
		return true
	}
	return false
}

type Submission interface {
	ID() uuid.UUID
	Reference() string
	Name() string
	Email() string
	StoreURL() string
	Message() string
	HasVoiceNote() bool
	VoiceNoteLink() string
	Status() Status
	CreatedAt() time.Time

	WithStatus(status Status) Submission
	WithVoiceNoteLink(link string) Submission
}

type submissionImpl struct {
	id            uuid.UUID
	reference     string
	name          string
	email         string
	storeURL      string
	message       string
	voiceNoteLink string
	hasVoiceNote  bool
	status        Status
	createdAt     time.Time
}

func New(reference, name, email string, opts ...Option) Submission {
	s := &submissionImpl{
		id:        uuid.New(),
		reference: reference,
		name:      name,
		email:     email,
		status:    StatusNew,
		createdAt: time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type Option func(*submissionImpl)

func WithID(id uuid.UUID) Option {
	return func(s *submissionImpl) {
		if id != uuid.Nil {
			s.id = id
		}
	}
}

func WithStoreURL(url string) Option {
	return func(s *submissionImpl) {
		s.storeURL = url
	}
}

func WithMessage(message string) Option {
	return func(s *submissionImpl) {
		s.message = message
	}
}

func WithVoiceNote(link string) Option {
	return func(s *submissionImpl) {
		s.hasVoiceNote = true
		s.voiceNoteLink = link
	}
}

// WithHasVoiceNote marks the submission as carrying audio even when the
// stored link is empty (upload failed but the submission was accepted).
func WithHasVoiceNote(has bool) Option {
	return func(s *submissionImpl) {
		s.hasVoiceNote = has
	}
}

func WithStatus(status Status) Option {
	return func(s *submissionImpl) {
		if status.Valid() {
			s.status = status
		}
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(s *submissionImpl) {
		if !createdAt.IsZero() {
			s.createdAt = createdAt
		}
	}
}

func (s *submissionImpl) ID() uuid.UUID         { return s.id }
func (s *submissionImpl) Reference() string     { return s.reference }
func (s *submissionImpl) Name() string          { return s.name }
func (s *submissionImpl) Email() string         { return s.email }
func (s *submissionImpl) StoreURL() string      { return s.storeURL }
func (s *submissionImpl) Message() string       { return s.message }
func (s *submissionImpl) HasVoiceNote() bool    { return s.hasVoiceNote }
func (s *submissionImpl) VoiceNoteLink() string { return s.voiceNoteLink }
func (s *submissionImpl) Status() Status        { return s.status }
func (s *submissionImpl) CreatedAt() time.Time  { return s.createdAt }

func (s *submissionImpl) WithStatus(status Status) Submission {
	out := *s
	out.status = status
	return &out
}

func (s *submissionImpl) WithVoiceNoteLink(link string) Submission {
	out := *s
	out.voiceNoteLink = link
	out.hasVoiceNote = true
	return &out
}
