package invoice

import (
	"time"

	"github.com/google/uuid"
)

type GeneratedEvent struct {
	ID       uuid.UUID
	Number   string
	JobID    uuid.UUID
	Kind     Kind
	Total    string
	Actor    string
	IssuedAt time.Time
}

type SentEvent struct {
	ID     uuid.UUID
	Number string
	Actor  string
	At     time.Time
}

type PaidEvent struct {
	ID     uuid.UUID
	Number string
	Method string
	Actor  string
	At     time.Time
}

// ReminderEvent records that the sweep nudged a client about an unpaid
// invoice.
type ReminderEvent struct {
	ID     uuid.UUID
	Number string
	At     time.Time
}
