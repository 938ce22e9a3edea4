package job

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	State  State
	Bucket SLABucket
	Limit  int
	Offset int
}

type Repository interface {
	Create(ctx context.Context, j Job) (Job, error)
	GetByID(ctx context.Context, id uuid.UUID) (Job, error)
	GetByReference(ctx context.Context, reference string) (Job, error)
	GetBySubmissionID(ctx context.Context, submissionID uuid.UUID) (Job, error)
	Update(ctx context.Context, j Job) (Job, error)
	List(ctx context.Context, params *FindParams) ([]Job, error)
	Count(ctx context.Context, params *FindParams) (int64, error)
}
