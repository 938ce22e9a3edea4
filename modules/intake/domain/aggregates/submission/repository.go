package submission

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	Status Status
	Email  string
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, sub Submission) (Submission, error)
	GetByID(ctx context.Context, id uuid.UUID) (Submission, error)
	GetByReference(ctx context.Context, reference string) (Submission, error)
	Update(ctx context.Context, sub Submission) (Submission, error)
	List(ctx context.Context, params *FindParams) ([]Submission, error)
	Count(ctx context.Context, params *FindParams) (int64, error)

	// DeleteAll removes every submission. Only the bulk reset path may call
	// it, and only when the deployment explicitly allows resets.
	DeleteAll(ctx context.Context) error
}
