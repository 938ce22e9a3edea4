package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/storefixhq/storefix/modules/audit/domain/entities/activitylog"
)

type InmemActivityLogRepository struct {
	mu      sync.RWMutex
	entries []activitylog.Entry
}

func NewInmemActivityLogRepository() *InmemActivityLogRepository {
	return &InmemActivityLogRepository{}
}

func (r *InmemActivityLogRepository) Create(ctx context.Context, entry activitylog.Entry) (activitylog.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *InmemActivityLogRepository) List(ctx context.Context, params *activitylog.FindParams) ([]activitylog.Entry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []activitylog.Entry
	for _, entry := range r.entries {
		if params != nil && params.Kind != "" && entry.Kind != params.Kind {
			continue
		}
		if params != nil && params.Reference != "" && entry.Reference != params.Reference {
			continue
		}
		results = append(results, entry)
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].CreatedAt.After(results[j].CreatedAt)
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

func (r *InmemActivityLogRepository) Count(ctx context.Context, params *activitylog.FindParams) (int64, error) {
	filter := &activitylog.FindParams{}
	if params != nil {
		filter.Kind = params.Kind
		filter.Reference = params.Reference
	}
	results, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(results)), nil
}
