package persistence

import (
	"context"
	"maps"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/storefixhq/storefix/modules/intake/domain/aggregates/submission"
)

type SafeMap[K comparable, V any] struct {
	mu sync.RWMutex
	m  map[K]V
}

func NewSafeMap[K comparable, V any]() *SafeMap[K, V] {
	return &SafeMap[K, V]{
		m: make(map[K]V),
	}
}

func (s *SafeMap[K, V]) Set(key K, value V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *SafeMap[K, V]) Get(key K) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, found := s.m[key]
	return val, found
}

func (s *SafeMap[K, V]) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m = make(map[K]V)
}

func (s *SafeMap[K, V]) Values() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Collect(maps.Values(s.m))
}

// InmemSubmissionRepository backs service tests and local development.
type InmemSubmissionRepository struct {
	storage *SafeMap[uuid.UUID, submission.Submission]
}

func NewInmemSubmissionRepository() *InmemSubmissionRepository {
	return &InmemSubmissionRepository{
		storage: NewSafeMap[uuid.UUID, submission.Submission](),
	}
}

func (r *InmemSubmissionRepository) Create(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	r.storage.Set(sub.ID(), sub)
	return sub, nil
}

func (r *InmemSubmissionRepository) GetByID(ctx context.Context, id uuid.UUID) (submission.Submission, error) {
	sub, found := r.storage.Get(id)
	if !found {
		return nil, submission.ErrNotFound
	}
	return sub, nil
}

func (r *InmemSubmissionRepository) GetByReference(ctx context.Context, reference string) (submission.Submission, error) {
	for _, sub := range r.storage.Values() {
		if sub.Reference() == reference {
			return sub, nil
		}
	}
	return nil, submission.ErrNotFound
}

func (r *InmemSubmissionRepository) Update(ctx context.Context, sub submission.Submission) (submission.Submission, error) {
	if _, found := r.storage.Get(sub.ID()); !found {
		return nil, submission.ErrNotFound
	}
	r.storage.Set(sub.ID(), sub)
	return sub, nil
}

func (r *InmemSubmissionRepository) List(ctx context.Context, params *submission.FindParams) ([]submission.Submission, error) {
	var results []submission.Submission
	for _, sub := range r.storage.Values() {
		if params != nil && params.Status != "" && sub.Status() != params.Status {
			continue
		}
		if params != nil && params.Email != "" && sub.Email() != params.Email {
			continue
		}
		results = append(results, sub)
	}
	sort.Slice(results, func(i, j int) bool {
		return results[i].CreatedAt().After(results[j].CreatedAt())
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

func (r *InmemSubmissionRepository) Count(ctx context.Context, params *submission.FindParams) (int64, error) {
	filter := &submission.FindParams{}
	if params != nil {
		filter.Status = params.Status
		filter.Email = params.Email
	}
	results, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(results)), nil
}

func (r *InmemSubmissionRepository) DeleteAll(ctx context.Context) error {
	r.storage.Clear()
	return nil
}
