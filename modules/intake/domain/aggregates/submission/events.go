package submission

import (
	"time"

	"github.com/google/uuid"
)

// CreatedEvent is published after a submission commits.
type CreatedEvent struct {
	ID           uuid.UUID
	Reference    string
	Name         string
	Email        string
	HasVoiceNote bool
	CreatedAt    time.Time
}

// StatusChangedEvent is published when a reviewer or the workflow moves a
// submission between statuses.
type StatusChangedEvent struct {
	ID        uuid.UUID
	Reference string
	From      Status
	To        Status
	Actor     string
}
