package job

import (
	"time"

	"github.com/google/uuid"
)

// CreatedEvent is published when an operator turns a submission into a job.
type CreatedEvent struct {
	ID           uuid.UUID
	Reference    string
	SubmissionID uuid.UUID
	Customer     string
	Actor        string
	CreatedAt    time.Time
}

// TransitionEvent is published after every committed state change.
type TransitionEvent struct {
	ID        uuid.UUID
	Reference string
	From      State
	To        State
	Actor     string
	At        time.Time
}
