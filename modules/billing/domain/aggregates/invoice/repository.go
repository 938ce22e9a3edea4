package invoice

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type FindParams struct {
	JobID  uuid.UUID
	Status Status
	// SentBefore narrows to invoices sent before the given time that have
	// not been reminded since. The reminder sweep uses it.
	SentBefore time.Time
	Limit      int
	Offset     int
}

type Repository interface {
	Create(ctx context.Context, inv Invoice) (Invoice, error)
	GetByID(ctx context.Context, id uuid.UUID) (Invoice, error)
	GetByNumber(ctx context.Context, number string) (Invoice, error)
	Update(ctx context.Context, inv Invoice) (Invoice, error)
	List(ctx context.Context, params *FindParams) ([]Invoice, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
}
