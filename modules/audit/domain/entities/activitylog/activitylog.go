// Package activitylog records who did what, when. Every committed workflow
// action lands here so the history of a lead can be reconstructed without
// trawling server logs.
package activitylog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Entry struct {
	ID uuid.UUID
	// Kind names the action, e.g. "submission.created" or
	// "job.transition".
	Kind string
	// Reference is the human-readable code of the record acted on.
	Reference string
	Actor     string
	Detail    string
	CreatedAt time.Time
}

func New(kind, reference, actor, detail string, at time.Time) Entry {
	return Entry{
		ID:        uuid.New(),
		Kind:      kind,
		Reference: reference,
		Actor:     actor,
		Detail:    detail,
		CreatedAt: at,
	}
}

type FindParams struct {
	Kind      string
	Reference string
	Limit     int
	Offset    int
}

type Repository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)
	List(ctx context.Context, params *FindParams) ([]Entry, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
}
