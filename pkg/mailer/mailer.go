// Package mailer abstracts outbound email. The SMTP implementation is the
// production transport; InMemory backs tests and local development.
package mailer

import (
	"context"
	"sync"

	"gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	ReplyTo string
	Subject string
	Body    string
}

type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

type smtpMailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTP(cfg SMTPConfig) Mailer {
	return &smtpMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (m *smtpMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	mail := gomail.NewMessage()
	mail.SetHeader("From", m.from)
	mail.SetHeader("To", msg.To)
	if msg.ReplyTo != "" {
		mail.SetHeader("Reply-To", msg.ReplyTo)
	}
	mail.SetHeader("Subject", msg.Subject)
	mail.SetBody("text/plain", msg.Body)
	return m.dialer.DialAndSend(mail)
}

// InMemory records sent messages for assertions in tests.
type InMemory struct {
	mu   sync.Mutex
	sent []Message

	// FailNext makes the next Send return this error, then clears it.
	FailNext error
}

func NewInMemory() *InMemory {
	return &InMemory{}
}

func (m *InMemory) Send(ctx context.Context, msg Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNext != nil {
		err := m.FailNext
		m.FailNext = nil
		return err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *InMemory) Sent() []Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
