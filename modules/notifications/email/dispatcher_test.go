package email_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefixhq/storefix/modules/notifications/email"
	"github.com/storefixhq/storefix/modules/notifications/notify"
	"github.com/storefixhq/storefix/pkg/mailer"
	"github.com/storefixhq/storefix/pkg/outbox"
)

func message(t *testing.T, topic string, payload any) outbox.DispatchedMessage {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return outbox.DispatchedMessage{
		Meta:    outbox.Meta{Topic: topic, EventID: uuid.New()},
		Payload: body,
	}
}

func TestDispatcher_SubmissionReceivedGoesToAdmin(t *testing.T) {
	t.Parallel()

	sink := mailer.NewInMemory()
	dispatcher := email.NewDispatcher(email.DispatcherConfig{
		Mailer:     sink,
		AdminEmail: "admin@storefix.example",
	})

	err := dispatcher.Dispatch(context.Background(), message(t, notify.TopicSubmissionReceived, notify.NewSubmission{
		Reference:     "SF-20250401-00001",
		Name:          "Priya Shah",
		Email:         "priya@corniche-bakery.co.uk",
		StoreURL:      "https://corniche-bakery.co.uk",
		Message:       "The hero image is stretched on mobile.",
		HasVoiceNote:  true,
		VoiceNoteLink: "https://files.storefix.example/SF-20250401-00001.webm",
	}))
	require.NoError(t, err)

	sent := sink.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "admin@storefix.example", sent[0].To)
	assert.Equal(t, "priya@corniche-bakery.co.uk", sent[0].ReplyTo)
	assert.Equal(t, "New enquiry SF-20250401-00001 from Priya Shah", sent[0].Subject)
	assert.Contains(t, sent[0].Body, "hero image is stretched")
	assert.Contains(t, sent[0].Body, "https://files.storefix.example/SF-20250401-00001.webm")
}

func TestDispatcher_ConfirmationGoesToSubmitter(t *testing.T) {
	t.Parallel()

	sink := mailer.NewInMemory()
	dispatcher := email.NewDispatcher(email.DispatcherConfig{Mailer: sink, AdminEmail: "admin@storefix.example"})

	err := dispatcher.Dispatch(context.Background(), message(t, notify.TopicSubmissionConfirmation, notify.SubmissionAck{
		Reference: "SF-20250401-00002",
		Name:      "Marco",
		Email:     "marco@trattoria.example",
	}))
	require.NoError(t, err)

	sent := sink.Sent()
	require.Len(t, sent, 1)
	assert.Equal(t, "marco@trattoria.example", sent[0].To)
	assert.Contains(t, sent[0].Body, "SF-20250401-00002")
}

func TestDispatcher_InvoiceAndReminder(t *testing.T) {
	t.Parallel()

	sink := mailer.NewInMemory()
	dispatcher := email.NewDispatcher(email.DispatcherConfig{Mailer: sink, AdminEmail: "admin@storefix.example"})
	ctx := context.Background()

	require.NoError(t, dispatcher.Dispatch(ctx, message(t, notify.TopicInvoiceIssued, notify.InvoiceIssued{
		InvoiceNumber: "INV-20250401-00001",
		Kind:          "deposit",
		CustomerName:  "Priya",
		CustomerEmail: "priya@corniche-bakery.co.uk",
		Amount:        "£180.00",
	})))
	require.NoError(t, dispatcher.Dispatch(ctx, message(t, notify.TopicInvoiceReminder, notify.PaymentReminder{
		InvoiceNumber:   "INV-20250401-00001",
		CustomerEmail:   "priya@corniche-bakery.co.uk",
		Amount:          "£180.00",
		DaysOutstanding: 15,
	})))

	sent := sink.Sent()
	require.Len(t, sent, 2)
	assert.Contains(t, sent[0].Body, "deposit invoice INV-20250401-00001")
	assert.Contains(t, sent[1].Body, "outstanding for 15 days")
}

func TestDispatcher_UnknownTopicFails(t *testing.T) {
	t.Parallel()

	dispatcher := email.NewDispatcher(email.DispatcherConfig{Mailer: mailer.NewInMemory()})
	err := dispatcher.Dispatch(context.Background(), outbox.DispatchedMessage{
		Meta:    outbox.Meta{Topic: "sms.sent"},
		Payload: []byte(`{}`),
	})
	assert.Error(t, err)
}

func TestDispatcher_MailerFailurePropagates(t *testing.T) {
	t.Parallel()

	sink := mailer.NewInMemory()
	sink.FailNext = assert.AnError
	dispatcher := email.NewDispatcher(email.DispatcherConfig{Mailer: sink, AdminEmail: "admin@storefix.example"})

	err := dispatcher.Dispatch(context.Background(), message(t, notify.TopicQuoteSent, notify.QuoteIssued{
		JobReference:  "JOB-20250401-00001",
		CustomerName:  "Priya",
		CustomerEmail: "priya@corniche-bakery.co.uk",
		Amount:        "£450.00",
	}))
	assert.ErrorIs(t, err, assert.AnError)
}
