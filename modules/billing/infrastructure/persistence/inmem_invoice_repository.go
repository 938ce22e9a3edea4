package persistence

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/storefixhq/storefix/modules/billing/domain/aggregates/invoice"
)

type InmemInvoiceRepository struct {
	mu       sync.RWMutex
	invoices map[uuid.UUID]invoice.Invoice
}

func NewInmemInvoiceRepository() *InmemInvoiceRepository {
	return &InmemInvoiceRepository{
		invoices: make(map[uuid.UUID]invoice.Invoice),
	}
}

func (r *InmemInvoiceRepository) Create(ctx context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.invoices[inv.ID()] = inv
	return inv, nil
}

func (r *InmemInvoiceRepository) GetByID(ctx context.Context, id uuid.UUID) (invoice.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	inv, found := r.invoices[id]
	if !found {
		return nil, invoice.ErrNotFound
	}
	return inv, nil
}

func (r *InmemInvoiceRepository) GetByNumber(ctx context.Context, number string) (invoice.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, inv := range r.invoices {
		if inv.Number() == number {
			return inv, nil
		}
	}
	return nil, invoice.ErrNotFound
}

func (r *InmemInvoiceRepository) Update(ctx context.Context, inv invoice.Invoice) (invoice.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, found := r.invoices[inv.ID()]; !found {
		return nil, invoice.ErrNotFound
	}
	r.invoices[inv.ID()] = inv
	return inv, nil
}

func (r *InmemInvoiceRepository) List(ctx context.Context, params *invoice.FindParams) ([]invoice.Invoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var results []invoice.Invoice
	for _, inv := range r.invoices {
		if params != nil && params.JobID != uuid.Nil && inv.JobID() != params.JobID {
			continue
		}
		if params != nil && params.Status != "" && inv.Status() != params.Status {
			continue
		}
		if params != nil && !params.SentBefore.IsZero() {
			if inv.SentAt().IsZero() || !inv.SentAt().Before(params.SentBefore) {
				continue
			}
			if !inv.RemindedAt().IsZero() && !inv.RemindedAt().Before(inv.SentAt()) {
				continue
			}
		}
		results = append(results, inv)
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

func (r *InmemInvoiceRepository) Count(ctx context.Context, params *invoice.FindParams) (int64, error) {
	filter := &invoice.FindParams{}
	if params != nil {
		filter.JobID = params.JobID
		filter.Status = params.Status
		filter.SentBefore = params.SentBefore
	}
	results, err := r.List(ctx, filter)
	if err != nil {
		return 0, err
	}
	return int64(len(results)), nil
}
