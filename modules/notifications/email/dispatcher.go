// Package email turns queued notification requests into outbound mail. It is
// the delivery end of the notification outbox: the relay hands it raw rows and
// it renders the matching template and passes the result to the mailer.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"text/template"

	"github.com/storefixhq/storefix/modules/notifications/notify"
	"github.com/storefixhq/storefix/pkg/mailer"
	"github.com/storefixhq/storefix/pkg/outbox"
)

var bodies = template.Must(template.New("notifications").Parse(`
{{define "submission.received" -}}
New enquiry {{.Reference}} from {{.Name}} <{{.Email}}>.
{{if .StoreURL}}
Store: {{.StoreURL}}
{{end}}
{{- if .Message}}
Message:
{{.Message}}
{{end}}
{{- if .HasVoiceNote}}
A voice note was attached.{{if .VoiceNoteLink}} Listen: {{.VoiceNoteLink}}{{end}}
{{end -}}
{{end}}

{{define "submission.confirmation" -}}
Hi {{.Name}},

Thanks for getting in touch. Your enquiry reference is {{.Reference}} and we
aim to reply with a quote within two working days.

The Storefix team
{{end}}

{{define "quote.sent" -}}
Hi {{.CustomerName}},

Your quote for job {{.JobReference}} is ready: {{.Amount}}.

Reply to this email to accept and we will schedule the work.

The Storefix team
{{end}}

{{define "invoice.issued" -}}
Hi {{.CustomerName}},

{{if eq .Kind "deposit"}}Your deposit invoice {{.InvoiceNumber}} for {{.Amount}} is ready.
{{else}}Invoice {{.InvoiceNumber}} for {{.Amount}} is ready.
{{end -}}
{{if .DueAt}}Payment is due by {{.DueAt}}.
{{end}}
The Storefix team
{{end}}

{{define "invoice.reminder" -}}
Hi,

This is a reminder that invoice {{.InvoiceNumber}} for {{.Amount}} has been
outstanding for {{.DaysOutstanding}} days.

The Storefix team
{{end}}
`))

type DispatcherConfig struct {
	Mailer     mailer.Mailer
	AdminEmail string
}

// Dispatcher implements outbox.Dispatch for notification rows. Unknown topics
// and undecodable payloads fail permanently through the relay's retry budget
// rather than being dropped on the floor.
type Dispatcher struct {
	mailer     mailer.Mailer
	adminEmail string
}

func NewDispatcher(cfg DispatcherConfig) *Dispatcher {
	return &Dispatcher{
		mailer:     cfg.Mailer,
		adminEmail: cfg.AdminEmail,
	}
}

func (d *Dispatcher) Dispatch(ctx context.Context, msg outbox.DispatchedMessage) error {
	switch msg.Meta.Topic {
	case notify.TopicSubmissionReceived:
		var p notify.NewSubmission
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Meta.Topic, err)
		}
		return d.send(ctx, mailer.Message{
			To:      d.adminEmail,
			ReplyTo: p.Email,
			Subject: fmt.Sprintf("New enquiry %s from %s", p.Reference, p.Name),
		}, msg.Meta.Topic, p)

	case notify.TopicSubmissionConfirmation:
		var p notify.SubmissionAck
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Meta.Topic, err)
		}
		return d.send(ctx, mailer.Message{
			To:      p.Email,
			Subject: fmt.Sprintf("We received your enquiry %s", p.Reference),
		}, msg.Meta.Topic, p)

	case notify.TopicQuoteSent:
		var p notify.QuoteIssued
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Meta.Topic, err)
		}
		return d.send(ctx, mailer.Message{
			To:      p.CustomerEmail,
			Subject: fmt.Sprintf("Your quote for %s", p.JobReference),
		}, msg.Meta.Topic, p)

	case notify.TopicInvoiceIssued:
		var p notify.InvoiceIssued
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Meta.Topic, err)
		}
		return d.send(ctx, mailer.Message{
			To:      p.CustomerEmail,
			Subject: fmt.Sprintf("Invoice %s from Storefix", p.InvoiceNumber),
		}, msg.Meta.Topic, p)

	case notify.TopicInvoiceReminder:
		var p notify.PaymentReminder
		if err := json.Unmarshal(msg.Payload, &p); err != nil {
			return fmt.Errorf("decode %s: %w", msg.Meta.Topic, err)
		}
		return d.send(ctx, mailer.Message{
			To:      p.CustomerEmail,
			Subject: fmt.Sprintf("Payment reminder for invoice %s", p.InvoiceNumber),
		}, msg.Meta.Topic, p)

	default:
		return fmt.Errorf("unknown notification topic %q", msg.Meta.Topic)
	}
}

func (d *Dispatcher) send(ctx context.Context, msg mailer.Message, topic string, payload any) error {
	var buf bytes.Buffer
	if err := bodies.ExecuteTemplate(&buf, topic, payload); err != nil {
		return fmt.Errorf("render %s: %w", topic, err)
	}
	msg.Body = strings.TrimSpace(buf.String()) + "\n"
	return d.mailer.Send(ctx, msg)
}
