package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefixhq/storefix/modules/billing/domain/aggregates/invoice"
	"github.com/storefixhq/storefix/modules/billing/infrastructure/persistence"
	"github.com/storefixhq/storefix/modules/billing/services"
	"github.com/storefixhq/storefix/modules/notifications/notify"
	"github.com/storefixhq/storefix/modules/workflow/domain/aggregates/job"
	workflowPersistence "github.com/storefixhq/storefix/modules/workflow/infrastructure/persistence"
	"github.com/storefixhq/storefix/pkg/configuration"
	"github.com/storefixhq/storefix/pkg/eventbus"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time { return c.current }

func (c *fakeClock) Advance(d time.Duration) { c.current = c.current.Add(d) }

type fixture struct {
	service  *services.InvoiceService
	invoices *persistence.InmemInvoiceRepository
	jobs     *workflowPersistence.InmemJobRepository
	notifier *notify.InMemoryNotifier
	bus      eventbus.EventBus
	clock    *fakeClock
}

func setup(t *testing.T, mutate func(*configuration.BillingOptions)) *fixture {
	t.Helper()

	billing := configuration.BillingOptions{
		Currency:      "GBP",
		TaxRegistered: true,
		TaxRate:       "0.20",
		ReminderAfter: 14 * 24 * time.Hour,
	}
	if mutate != nil {
		mutate(&billing)
	}

	clock := &fakeClock{current: time.Date(2025, time.April, 10, 9, 0, 0, 0, time.UTC)}
	invoices := persistence.NewInmemInvoiceRepository()
	jobs := workflowPersistence.NewInmemJobRepository(clock.Now)
	notifier := notify.NewInMemoryNotifier()
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	bus := eventbus.NewEventPublisher(logger)

	service := services.NewInvoiceService(services.InvoiceServiceConfig{
		Repo:      invoices,
		JobRepo:   jobs,
		Publisher: bus,
		Notifier:  notifier,
		Billing:   billing,
		Clock:     clock.Now,
	})

	return &fixture{
		service:  service,
		invoices: invoices,
		jobs:     jobs,
		notifier: notifier,
		bus:      bus,
		clock:    clock,
	}
}

// seedJob persists a job in the given state with a 450.00 GBP quote.
func seedJob(t *testing.T, f *fixture, state job.State) job.Job {
	t.Helper()
	j := job.New(
		job.GenerateReference(f.clock.Now()),
		uuid.New(),
		"Priya Shah",
		"priya@corniche-bakery.co.uk",
		job.WithState(state),
		job.WithQuote(money.New(45000, money.GBP)),
	)
	created, err := f.jobs.Create(context.Background(), j)
	require.NoError(t, err)
	return created
}

func TestInvoiceService_GenerateFull(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)
	completed := seedJob(t, f, job.StateCompleted)

	inv, err := f.service.Generate(context.Background(), services.GenerateInvoiceDTO{
		JobID: completed.ID(),
		Kind:  invoice.KindFull,
		Actor: "ops@storefix.co.uk",
	})
	require.NoError(t, err)

	assert.Equal(t, invoice.StatusUnpaid, inv.Status())
	assert.Equal(t, int64(45000), inv.Net().Amount())
	assert.Equal(t, int64(9000), inv.Tax().Amount())
	assert.Equal(t, int64(54000), inv.Total().Amount())
}

func TestInvoiceService_GenerateRequiresCompletedJob(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)
	inProgress := seedJob(t, f, job.StateInProgress)

	_, err := f.service.Generate(context.Background(), services.GenerateInvoiceDTO{
		JobID: inProgress.ID(),
		Kind:  invoice.KindFull,
		Actor: "ops@storefix.co.uk",
	})
	require.ErrorIs(t, err, invoice.ErrJobNotCompleted)

	// Deposits are the exception: billable before completion, with an
	// explicit amount.
	dep, err := f.service.Generate(context.Background(), services.GenerateInvoiceDTO{
		JobID:       inProgress.ID(),
		Kind:        invoice.KindDeposit,
		AmountMinor: 20000,
		Actor:       "ops@storefix.co.uk",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(20000), dep.Net().Amount())
}

func TestInvoiceService_BalanceDerivesFromDeposits(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)
	ctx := context.Background()
	j := seedJob(t, f, job.StateInProgress)

	_, err := f.service.Generate(ctx, services.GenerateInvoiceDTO{
		JobID:       j.ID(),
		Kind:        invoice.KindDeposit,
		AmountMinor: 20000,
		Actor:       "ops@storefix.co.uk",
	})
	require.NoError(t, err)

	// Finish the job so the balance can be billed.
	completed, err := j.Complete(f.clock.Now())
	require.NoError(t, err)
	_, err = f.jobs.Update(ctx, completed)
	require.NoError(t, err)

	balance, err := f.service.Generate(ctx, services.GenerateInvoiceDTO{
		JobID: j.ID(),
		Kind:  invoice.KindBalance,
		Actor: "ops@storefix.co.uk",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(25000), balance.Net().Amount())
}

func TestInvoiceService_SendAndPay(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)
	ctx := context.Background()
	completed := seedJob(t, f, job.StateCompleted)

	var paidEvents []invoice.PaidEvent
	f.bus.Subscribe(func(evt invoice.PaidEvent) {
		paidEvents = append(paidEvents, evt)
	})

	inv, err := f.service.Generate(ctx, services.GenerateInvoiceDTO{
		JobID: completed.ID(),
		Kind:  invoice.KindFull,
		Actor: "ops@storefix.co.uk",
	})
	require.NoError(t, err)

	sent, err := f.service.MarkSent(ctx, inv.ID(), "ops@storefix.co.uk")
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusInvoiced, sent.Status())

	requests := f.notifier.Requests()
	require.Len(t, requests, 1)
	assert.Equal(t, notify.TopicInvoiceIssued, requests[0].Topic)

	paid, err := f.service.RecordPayment(ctx, inv.ID(), "bank_transfer", "TXN-4471", "ops@storefix.co.uk")
	require.NoError(t, err)
	assert.Equal(t, invoice.StatusPaid, paid.Status())
	assert.Equal(t, "TXN-4471", paid.PaymentReference())

	require.Len(t, paidEvents, 1)
	assert.Equal(t, inv.Number(), paidEvents[0].Number)
}

func TestInvoiceService_ReminderSweep(t *testing.T) {
	t.Parallel()

	f := setup(t, nil)
	ctx := context.Background()
	completed := seedJob(t, f, job.StateCompleted)

	inv, err := f.service.Generate(ctx, services.GenerateInvoiceDTO{
		JobID: completed.ID(),
		Kind:  invoice.KindFull,
		Actor: "ops@storefix.co.uk",
	})
	require.NoError(t, err)
	_, err = f.service.MarkSent(ctx, inv.ID(), "ops@storefix.co.uk")
	require.NoError(t, err)

	// Too early: nothing to remind.
	f.clock.Advance(7 * 24 * time.Hour)
	count, err := f.service.ReminderSweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Past the threshold the client gets one nudge.
	f.clock.Advance(8 * 24 * time.Hour)
	count, err = f.service.ReminderSweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	var reminder *notify.Request
	for _, req := range f.notifier.Requests() {
		if req.Topic == notify.TopicInvoiceReminder {
			reminder = &req
			break
		}
	}
	require.NotNil(t, reminder)
	payload := reminder.Payload.(notify.PaymentReminder)
	assert.Equal(t, inv.Number(), payload.InvoiceNumber)
	assert.Equal(t, 15, payload.DaysOutstanding)

	// Re-running the sweep does not remind again.
	count, err = f.service.ReminderSweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	// A paid invoice drops out of the sweep entirely.
	_, err = f.service.RecordPayment(ctx, inv.ID(), "card", "", "ops@storefix.co.uk")
	require.NoError(t, err)
	count, err = f.service.ReminderSweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}
