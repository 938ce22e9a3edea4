package services

import (
	"context"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefixhq/storefix/modules/billing/domain/aggregates/invoice"
	"github.com/storefixhq/storefix/modules/notifications/notify"
	"github.com/storefixhq/storefix/modules/workflow/domain/aggregates/job"
	"github.com/storefixhq/storefix/pkg/composables"
	"github.com/storefixhq/storefix/pkg/configuration"
	"github.com/storefixhq/storefix/pkg/eventbus"
)

type GenerateInvoiceDTO struct {
	JobID uuid.UUID
	Kind  invoice.Kind
	// AmountMinor overrides the billed net amount. Zero derives it from
	// the job's quote: the full quote for full invoices, the quote minus
	// prior deposits for balance invoices. Deposits must state an amount.
	AmountMinor int64
	Actor       string
}

type InvoiceServiceConfig struct {
	Repo      invoice.Repository
	JobRepo   job.Repository
	Publisher eventbus.EventBus
	Notifier  notify.Notifier
	Billing   configuration.BillingOptions
	Clock     func() time.Time
}

type InvoiceService struct {
	repo      invoice.Repository
	jobRepo   job.Repository
	publisher eventbus.EventBus
	notifier  notify.Notifier
	billing   configuration.BillingOptions
	clock     func() time.Time
}

func NewInvoiceService(config InvoiceServiceConfig) *InvoiceService {
	clock := config.Clock
	if clock == nil {
		clock = time.Now
	}
	return &InvoiceService{
		repo:      config.Repo,
		jobRepo:   config.JobRepo,
		publisher: config.Publisher,
		notifier:  config.Notifier,
		billing:   config.Billing,
		clock:     clock,
	}
}

func (s *InvoiceService) taxRate() decimal.Decimal {
	if !s.billing.TaxRegistered {
		return decimal.Zero
	}
	rate, err := decimal.NewFromString(s.billing.TaxRate)
	if err != nil {
		return decimal.Zero
	}
	return rate
}

// Generate bills a job. Full and balance invoices require a completed job;
// deposits may be requested as soon as a quote exists.
func (s *InvoiceService) Generate(ctx context.Context, dto GenerateInvoiceDTO) (invoice.Invoice, error) {
	if !dto.Kind.Valid() {
		return nil, invoice.ErrInvalidKind
	}
	now := s.clock()

	var created invoice.Invoice
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		j, txErr := s.jobRepo.GetByID(txCtx, dto.JobID)
		if txErr != nil {
			return txErr
		}
		if j.Quote() == nil {
			return invoice.ErrJobNotQuoted
		}
		if dto.Kind != invoice.KindDeposit && j.State() != job.StateCompleted {
			return invoice.ErrJobNotCompleted
		}

		amountMinor, txErr := s.netAmount(txCtx, j, dto)
		if txErr != nil {
			return txErr
		}

		created, txErr = s.repo.Create(txCtx, invoice.New(
			invoice.GenerateNumber(now),
			j.ID(),
			dto.Kind,
			money.New(amountMinor, j.Quote().Currency().Code),
			s.taxRate(),
			now,
		))
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(invoice.GeneratedEvent{
		ID:       created.ID(),
		Number:   created.Number(),
		JobID:    created.JobID(),
		Kind:     created.Kind(),
		Total:    created.Total().Display(),
		Actor:    dto.Actor,
		IssuedAt: now,
	})
	return created, nil
}

// netAmount resolves what the invoice bills, in the quote currency's minor
// unit.
func (s *InvoiceService) netAmount(ctx context.Context, j job.Job, dto GenerateInvoiceDTO) (int64, error) {
	if dto.AmountMinor > 0 {
		return dto.AmountMinor, nil
	}
	switch dto.Kind {
	case invoice.KindFull:
		return j.Quote().Amount(), nil
	case invoice.KindDeposit:
		return 0, invoice.ErrInvalidKind.WithDetail("deposit invoices require an amount")
	case invoice.KindBalance:
		existing, err := s.repo.List(ctx, &invoice.FindParams{JobID: j.ID()})
		if err != nil {
			return 0, err
		}
		remaining := j.Quote().Amount()
		for _, inv := range existing {
			if inv.Kind() == invoice.KindDeposit {
				remaining -= inv.Net().Amount()
			}
		}
		if remaining <= 0 {
			return 0, invoice.ErrInvalidKind.WithDetail("deposits already cover the quote")
		}
		return remaining, nil
	}
	return 0, invoice.ErrInvalidKind
}

// MarkSent records that the invoice went to the client and queues the
// invoice email.
func (s *InvoiceService) MarkSent(ctx context.Context, id uuid.UUID, actor string) (invoice.Invoice, error) {
	now := s.clock()

	var updated invoice.Invoice
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		current, txErr := s.repo.GetByID(txCtx, id)
		if txErr != nil {
			return txErr
		}
		sent, txErr := current.MarkSent(now)
		if txErr != nil {
			return txErr
		}
		updated, txErr = s.repo.Update(txCtx, sent)
		if txErr != nil {
			return txErr
		}

		j, txErr := s.jobRepo.GetByID(txCtx, updated.JobID())
		if txErr != nil {
			return txErr
		}
		if nErr := s.notifier.InvoiceSent(txCtx, notify.InvoiceIssued{
			InvoiceNumber: updated.Number(),
			Kind:          string(updated.Kind()),
			CustomerName:  j.CustomerName(),
			CustomerEmail: j.CustomerEmail(),
			Amount:        updated.Total().Display(),
		}); nErr != nil {
			composables.UseLogger(txCtx).WithError(nErr).Warn("failed to queue invoice email")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(invoice.SentEvent{
		ID:     updated.ID(),
		Number: updated.Number(),
		Actor:  actor,
		At:     now,
	})
	return updated, nil
}

func (s *InvoiceService) RecordPayment(ctx context.Context, id uuid.UUID, method, reference, actor string) (invoice.Invoice, error) {
	now := s.clock()

	var updated invoice.Invoice
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		current, txErr := s.repo.GetByID(txCtx, id)
		if txErr != nil {
			return txErr
		}
		paid, txErr := current.RecordPayment(method, reference, now)
		if txErr != nil {
			return txErr
		}
		updated, txErr = s.repo.Update(txCtx, paid)
		return txErr
	})
	if err != nil {
		return nil, err
	}

	s.publisher.Publish(invoice.PaidEvent{
		ID:     updated.ID(),
		Number: updated.Number(),
		Method: method,
		Actor:  actor,
		At:     now,
	})
	return updated, nil
}

// ReminderSweep nudges clients about invoices that have sat unpaid past the
// reminder threshold. Each invoice is reminded at most once per send; the
// sweep scans full current state so overlapping runs stay harmless.
func (s *InvoiceService) ReminderSweep(ctx context.Context) (int, error) {
	now := s.clock()
	cutoff := now.Add(-s.billing.ReminderAfter)

	pending, err := s.repo.List(ctx, &invoice.FindParams{
		Status:     invoice.StatusInvoiced,
		SentBefore: cutoff,
	})
	if err != nil {
		return 0, err
	}

	reminded := 0
	for _, inv := range pending {
		err := composables.InTx(ctx, func(txCtx context.Context) error {
			j, txErr := s.jobRepo.GetByID(txCtx, inv.JobID())
			if txErr != nil {
				return txErr
			}
			if nErr := s.notifier.RemindInvoice(txCtx, notify.PaymentReminder{
				InvoiceNumber:   inv.Number(),
				CustomerEmail:   j.CustomerEmail(),
				Amount:          inv.Total().Display(),
				DaysOutstanding: int(now.Sub(inv.SentAt()).Hours() / 24),
			}); nErr != nil {
				return nErr
			}
			_, txErr = s.repo.Update(txCtx, inv.MarkReminded(now))
			return txErr
		})
		if err != nil {
			composables.UseLogger(ctx).
				WithError(err).
				WithField("invoice", inv.Number()).
				Warn("reminder failed")
			continue
		}
		reminded++
		s.publisher.Publish(invoice.ReminderEvent{
			ID:     inv.ID(),
			Number: inv.Number(),
			At:     now,
		})
	}
	return reminded, nil
}

func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (invoice.Invoice, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *InvoiceService) GetByNumber(ctx context.Context, number string) (invoice.Invoice, error) {
	return s.repo.GetByNumber(ctx, number)
}

func (s *InvoiceService) List(ctx context.Context, params *invoice.FindParams) ([]invoice.Invoice, error) {
	return s.repo.List(ctx, params)
}

func (s *InvoiceService) Count(ctx context.Context, params *invoice.FindParams) (int64, error) {
	return s.repo.Count(ctx, params)
}
