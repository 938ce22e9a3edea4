// Package notify is how the rest of the application asks for an email to be
// sent. Requests are written to the notification outbox inside the caller's
// transaction; a relay picks them up and hands them to the mailer, so a slow
// or unreachable SMTP server never blocks or fails a business operation.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/storefixhq/storefix/pkg/composables"
	"github.com/storefixhq/storefix/pkg/outbox"
)

const (
	TopicSubmissionReceived     = "submission.received"
	TopicSubmissionConfirmation = "submission.confirmation"
	TopicQuoteSent              = "quote.sent"
	TopicInvoiceIssued          = "invoice.issued"
	TopicInvoiceReminder        = "invoice.reminder"
)

// Table holds pending notification emails.
var Table = pgx.Identifier{"notification_outbox"}

type NewSubmission struct {
	Reference     string `json:"reference"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	StoreURL      string `json:"storeUrl,omitempty"`
	Message       string `json:"message,omitempty"`
	HasVoiceNote  bool   `json:"hasVoiceNote"`
	VoiceNoteLink string `json:"voiceNoteLink,omitempty"`
}

type SubmissionAck struct {
	Reference string `json:"reference"`
	Name      string `json:"name"`
	Email     string `json:"email"`
}

type QuoteIssued struct {
	JobReference  string `json:"jobReference"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	Amount        string `json:"amount"`
}

type InvoiceIssued struct {
	InvoiceNumber string `json:"invoiceNumber"`
	Kind          string `json:"kind"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	Amount        string `json:"amount"`
	DueAt         string `json:"dueAt,omitempty"`
}

type PaymentReminder struct {
	InvoiceNumber   string `json:"invoiceNumber"`
	CustomerEmail   string `json:"customerEmail"`
	Amount          string `json:"amount"`
	DaysOutstanding int    `json:"daysOutstanding"`
}

type Notifier interface {
	SubmissionReceived(ctx context.Context, p NewSubmission) error
	ConfirmSubmission(ctx context.Context, p SubmissionAck) error
	QuoteSent(ctx context.Context, p QuoteIssued) error
	InvoiceSent(ctx context.Context, p InvoiceIssued) error
	RemindInvoice(ctx context.Context, p PaymentReminder) error
}

// OutboxNotifier writes requests through the transaction bound to the
// context, so a rolled back submission never produces an email.
type OutboxNotifier struct {
	publisher outbox.Publisher
	eventID   func() uuid.UUID
}

func NewOutboxNotifier(publisher outbox.Publisher) *OutboxNotifier {
	return &OutboxNotifier{
		publisher: publisher,
		eventID:   uuid.New,
	}
}

func (n *OutboxNotifier) enqueue(ctx context.Context, topic string, payload any) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", topic, err)
	}
	_, err = n.publisher.Enqueue(ctx, tx, Table, outbox.Message{
		Topic:   topic,
		EventID: n.eventID(),
		Payload: body,
	})
	return err
}

func (n *OutboxNotifier) SubmissionReceived(ctx context.Context, p NewSubmission) error {
	return n.enqueue(ctx, TopicSubmissionReceived, p)
}

func (n *OutboxNotifier) ConfirmSubmission(ctx context.Context, p SubmissionAck) error {
	return n.enqueue(ctx, TopicSubmissionConfirmation, p)
}

func (n *OutboxNotifier) QuoteSent(ctx context.Context, p QuoteIssued) error {
	return n.enqueue(ctx, TopicQuoteSent, p)
}

func (n *OutboxNotifier) InvoiceSent(ctx context.Context, p InvoiceIssued) error {
	return n.enqueue(ctx, TopicInvoiceIssued, p)
}

func (n *OutboxNotifier) RemindInvoice(ctx context.Context, p PaymentReminder) error {
	return n.enqueue(ctx, TopicInvoiceReminder, p)
}

// Request is a recorded in-memory notification.
type Request struct {
	Topic   string
	Payload any
	SentAt  time.Time
}

// InMemoryNotifier records requests for tests.
type InMemoryNotifier struct {
	mu       sync.Mutex
	requests []Request
	failNext error
}

func NewInMemoryNotifier() *InMemoryNotifier {
	return &InMemoryNotifier{}
}

// FailNext makes the next request return err.
func (n *InMemoryNotifier) FailNext(err error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.failNext = err
}

func (n *InMemoryNotifier) Requests() []Request {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]Request, len(n.requests))
	copy(out, n.requests)
	return out
}

func (n *InMemoryNotifier) record(topic string, payload any) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.failNext != nil {
		err := n.failNext
		n.failNext = nil
		return err
	}
	n.requests = append(n.requests, Request{Topic: topic, Payload: payload, SentAt: time.Now()})
	return nil
}

func (n *InMemoryNotifier) SubmissionReceived(ctx context.Context, p NewSubmission) error {
	return n.record(TopicSubmissionReceived, p)
}

func (n *InMemoryNotifier) ConfirmSubmission(ctx context.Context, p SubmissionAck) error {
	return n.record(TopicSubmissionConfirmation, p)
}

func (n *InMemoryNotifier) QuoteSent(ctx context.Context, p QuoteIssued) error {
	return n.record(TopicQuoteSent, p)
}

func (n *InMemoryNotifier) InvoiceSent(ctx context.Context, p InvoiceIssued) error {
	return n.record(TopicInvoiceIssued, p)
}

func (n *InMemoryNotifier) RemindInvoice(ctx context.Context, p PaymentReminder) error {
	return n.record(TopicInvoiceReminder, p)
}
