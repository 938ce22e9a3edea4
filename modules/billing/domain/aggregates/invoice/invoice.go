package invoice

import (
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusUnpaid   Status = "unpaid"
	StatusInvoiced Status = "invoiced"
	StatusPaid     Status = "paid"
)

func (s Status) Valid() bool {
	switch s {
	case StatusUnpaid, StatusInvoiced, StatusPaid:
		return true
	}
	return false
}

type Kind string

const (
	// KindFull bills the whole quote after completion.
	KindFull Kind = "full"
	// KindDeposit bills part of the quote up front, before the job
	// completes.
	KindDeposit Kind = "deposit"
	// KindBalance bills the remainder after a deposit.
	KindBalance Kind = "balance"
)

func (k Kind) Valid() bool {
	switch k {
	case KindFull, KindDeposit, KindBalance:
		return true
	}
	return false
}

// Invoice bills a job. Net, tax and total are fixed at generation time so a
// later tax-rate change never alters an issued invoice.
type Invoice interface {
	ID() uuid.UUID
	Number() string
	JobID() uuid.UUID
	Kind() Kind
	Status() Status
	Net() *money.Money
	Tax() *money.Money
	Total() *money.Money
	TaxRate() decimal.Decimal
	IssuedAt() time.Time
	SentAt() time.Time
	PaidAt() time.Time
	RemindedAt() time.Time
	PaymentMethod() string
	PaymentReference() string
	CreatedAt() time.Time
	UpdatedAt() time.Time

	MarkSent(at time.Time) (Invoice, error)
	RecordPayment(method, reference string, at time.Time) (Invoice, error)
	MarkReminded(at time.Time) Invoice
}

type Option func(*invoiceImpl)

func WithID(id uuid.UUID) Option {
	return func(i *invoiceImpl) {
		i.id = id
	}
}

// WithTax overrides the computed tax amount. Rehydration uses it so the
// stored breakdown always wins over recomputation.
func WithTax(tax *money.Money) Option {
	return func(i *invoiceImpl) {
		i.tax = tax
	}
}

func WithStatus(status Status) Option {
	return func(i *invoiceImpl) {
		i.status = status
	}
}

func WithSentAt(at time.Time) Option {
	return func(i *invoiceImpl) {
		i.sentAt = at
	}
}

func WithPayment(method, reference string, at time.Time) Option {
	return func(i *invoiceImpl) {
		i.paymentMethod = method
		i.paymentReference = reference
		i.paidAt = at
	}
}

func WithRemindedAt(at time.Time) Option {
	return func(i *invoiceImpl) {
		i.remindedAt = at
	}
}

func WithCreatedAt(at time.Time) Option {
	return func(i *invoiceImpl) {
		i.createdAt = at
	}
}

func WithUpdatedAt(at time.Time) Option {
	return func(i *invoiceImpl) {
		i.updatedAt = at
	}
}

// New fixes the tax breakdown from the net amount and rate. Rate only
// applies for tax-registered deployments; pass decimal.Zero otherwise.
func New(number string, jobID uuid.UUID, kind Kind, net *money.Money, taxRate decimal.Decimal, issuedAt time.Time, opts ...Option) Invoice {
	taxMinor := decimal.NewFromInt(net.Amount()).Mul(taxRate).Round(0).IntPart()
	i := &invoiceImpl{
		id:        uuid.New(),
		number:    number,
		jobID:     jobID,
		kind:      kind,
		status:    StatusUnpaid,
		net:       net,
		tax:       money.New(taxMinor, net.Currency().Code),
		taxRate:   taxRate,
		issuedAt:  issuedAt,
		createdAt: issuedAt,
		updatedAt: issuedAt,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

type invoiceImpl struct {
	id               uuid.UUID
	number           string
	jobID            uuid.UUID
	kind             Kind
	status           Status
	net              *money.Money
	tax              *money.Money
	taxRate          decimal.Decimal
	issuedAt         time.Time
	sentAt           time.Time
	paidAt           time.Time
	remindedAt       time.Time
	paymentMethod    string
	paymentReference string
	createdAt        time.Time
	updatedAt        time.Time
}

func (i *invoiceImpl) ID() uuid.UUID            { return i.id }
func (i *invoiceImpl) Number() string           { return i.number }
func (i *invoiceImpl) JobID() uuid.UUID         { return i.jobID }
func (i *invoiceImpl) Kind() Kind               { return i.kind }
func (i *invoiceImpl) Status() Status           { return i.status }
func (i *invoiceImpl) Net() *money.Money        { return i.net }
func (i *invoiceImpl) Tax() *money.Money        { return i.tax }
func (i *invoiceImpl) TaxRate() decimal.Decimal { return i.taxRate }
func (i *invoiceImpl) IssuedAt() time.Time      { return i.issuedAt }
func (i *invoiceImpl) SentAt() time.Time        { return i.sentAt }
func (i *invoiceImpl) PaidAt() time.Time        { return i.paidAt }
func (i *invoiceImpl) RemindedAt() time.Time    { return i.remindedAt }
func (i *invoiceImpl) PaymentMethod() string    { return i.paymentMethod }
func (i *invoiceImpl) PaymentReference() string { return i.paymentReference }
func (i *invoiceImpl) CreatedAt() time.Time     { return i.createdAt }
func (i *invoiceImpl) UpdatedAt() time.Time     { return i.updatedAt }

func (i *invoiceImpl) Total() *money.Money {
	total, err := i.net.Add(i.tax)
	if err != nil {
		return i.net
	}
	return total
}

func (i *invoiceImpl) clone() *invoiceImpl {
	out := *i
	return &out
}

func (i *invoiceImpl) MarkSent(at time.Time) (Invoice, error) {
	if i.status != StatusUnpaid {
		return nil, transitionError(i.status, StatusInvoiced)
	}
	out := i.clone()
	out.status = StatusInvoiced
	out.sentAt = at
	out.updatedAt = at
	return out, nil
}

func (i *invoiceImpl) RecordPayment(method, reference string, at time.Time) (Invoice, error) {
	if i.status != StatusInvoiced {
		return nil, transitionError(i.status, StatusPaid)
	}
	if method == "" {
		return nil, ErrPaymentMethodRequired
	}
	out := i.clone()
	out.status = StatusPaid
	out.paymentMethod = method
	out.paymentReference = reference
	out.paidAt = at
	out.updatedAt = at
	return out, nil
}

func (i *invoiceImpl) MarkReminded(at time.Time) Invoice {
	out := i.clone()
	out.remindedAt = at
	out.updatedAt = at
	return out
}
