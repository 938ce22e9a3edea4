package persistence

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/storefixhq/storefix/modules/workflow/domain/aggregates/job"
)

// InmemJobRepository backs service tests and local development. Bucket
// filters evaluate against the injected clock so tests can move time.
type InmemJobRepository struct {
	mu    sync.RWMutex
	jobs  map[uuid.UUID]job.Job
	clock func() time.Time
}

func NewInmemJobRepository(clock func() time.Time) *InmemJobRepository {
	if clock == nil {
		clock = time.Now
	}
	return &InmemJobRepository{
		jobs:  make(map[uuid.UUID]job.Job),
		clock: clock,
	}
}

func (r *InmemJobRepository) Create(ctx context.Context, j job.Job) (job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.jobs[j.ID()] = j
	return j, nil
}

func (r *InmemJobRepository) GetByID(ctx context.Context, id uuid.UUID) (job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, found := r.jobs[id]
	if !found {
		return nil, job.ErrNotFound
	}
	return j, nil
}

func (r *InmemJobRepository) GetByReference(ctx context.Context, reference string) (job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, j := range r.jobs {
		if j.Reference() == reference {
			return j, nil
		}
	}
	return nil, job.ErrNotFound
}

func (r *InmemJobRepository) GetBySubmissionID(ctx context.Context, submissionID uuid.UUID) (job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, j := range r.jobs {
		if j.SubmissionID() == submissionID {
			return j, nil
		}
	}
	return nil, job.ErrNotFound
}

func (r *InmemJobRepository) Update(ctx context.Context, j job.Job) (job.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, found := r.jobs[j.ID()]; !found {
		return nil, job.ErrNotFound
	}
	r.jobs[j.ID()] = j
	return j, nil
}

func (r *InmemJobRepository) List(ctx context.Context, params *job.FindParams) ([]job.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	now := r.clock()
	var results []job.Job
	for _, j := range r.jobs {
		if params != nil && params.State != "" && j.State() != params.State {
			continue
		}
		if params != nil && params.Bucket != job.BucketNone && job.SLA(j.State(), j.DueAt(), now) != params.Bucket {
			continue
		}
		results = append(results, j)
	}
	sort.Slice(results, func(i, k int) bool {
		return results[i].CreatedAt().After(results[k].CreatedAt())
	})
	if params != nil && params.Offset > 0 {
		if params.Offset >= len(results) {
			return nil, nil
		}
		results = results[params.Offset:]
	}
	if params != nil && params.Limit > 0 && params.Limit < len(results) {
		results = results[:params.Limit]
	}
	return results, nil
}

func (r *InmemJobRepository) Count(ctx context.Context, params *job.FindParams) (int64, error) {
	filter := &job.FindParams{}
	if params != nil {
		filter.State = params.State
		filter.Bucket = params.Bucket
	}
	results, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(results)), nil
}
