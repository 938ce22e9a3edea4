package job

import (
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
)

type State string

const (
	StatePendingQuote State = "pending_quote"
	StateQuoted       State = "quoted"
	StateAccepted     State = "accepted"
	StateInProgress   State = "in_progress"
	StateOnHold       State = "on_hold"
	StateCompleted    State = "completed"
	StateDeclined     State = "declined"
)

func (s State) Valid() bool {
	switch s {
	case StatePendingQuote, StateQuoted, StateAccepted, StateInProgress,
		StateOnHold, StateCompleted, StateDeclined:
		return true
	}
	return false
}

// Terminal states accept no further transitions.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateDeclined
}

// Job tracks one piece of client work from quote to completion. All
// transition methods return a new value; the receiver is never mutated.
type Job interface {
	ID() uuid.UUID
	Reference() string
	SubmissionID() uuid.UUID
	CustomerName() string
	CustomerEmail() string
	StoreURL() string
	Category() string
	Description() string
	State() State
	Quote() *money.Money
	QuotedAt() time.Time
	AcceptedAt() time.Time
	DueAt() time.Time
	HeldAt() time.Time
	HeldFrom() State
	CompletedAt() time.Time
	CreatedAt() time.Time
	UpdatedAt() time.Time

	PrepareQuote(amount *money.Money, at time.Time) (Job, error)
	SendQuote(amount *money.Money, at time.Time) (Job, error)
	Accept(at time.Time, turnaround time.Duration) (Job, error)
	Start(at time.Time) (Job, error)
	Hold(at time.Time) (Job, error)
	Resume(at time.Time, extendDue bool) (Job, error)
	Complete(at time.Time) (Job, error)
	Decline(at time.Time) (Job, error)
}

type Option func(*jobImpl)

func WithID(id uuid.UUID) Option {
	return func(j *jobImpl) {
		j.id = id
	}
}

func WithStoreURL(url string) Option {
	return func(j *jobImpl) {
		j.storeURL = url
	}
}

func WithCategory(category string) Option {
	return func(j *jobImpl) {
		j.category = category
	}
}

func WithDescription(description string) Option {
	return func(j *jobImpl) {
		j.description = description
	}
}

func WithState(state State) Option {
	return func(j *jobImpl) {
		j.state = state
	}
}

func WithQuote(amount *money.Money) Option {
	return func(j *jobImpl) {
		j.quote = amount
	}
}

func WithQuotedAt(at time.Time) Option {
	return func(j *jobImpl) {
		j.quotedAt = at
	}
}

func WithAcceptedAt(at time.Time) Option {
	return func(j *jobImpl) {
		j.acceptedAt = at
	}
}

func WithDueAt(at time.Time) Option {
	return func(j *jobImpl) {
		j.dueAt = at
	}
}

func WithHold(heldAt time.Time, heldFrom State) Option {
	return func(j *jobImpl) {
		j.heldAt = heldAt
		j.heldFrom = heldFrom
	}
}

func WithCompletedAt(at time.Time) Option {
	return func(j *jobImpl) {
		j.completedAt = at
	}
}

func WithCreatedAt(at time.Time) Option {
	return func(j *jobImpl) {
		j.createdAt = at
	}
}

func WithUpdatedAt(at time.Time) Option {
	return func(j *jobImpl) {
		j.updatedAt = at
	}
}

func New(reference string, submissionID uuid.UUID, customerName, customerEmail string, opts ...Option) Job {
	j := &jobImpl{
		id:            uuid.New(),
		reference:     reference,
		submissionID:  submissionID,
		customerName:  customerName,
		customerEmail: customerEmail,
		state:         StatePendingQuote,
		createdAt:     time.Now(),
		updatedAt:     time.Now(),
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

type jobImpl struct {
	id            uuid.UUID
	reference     string
	submissionID  uuid.UUID
	customerName  string
	customerEmail string
	storeURL      string
	category      string
	description   string
	state         State
	quote         *money.Money
	quotedAt      time.Time
	acceptedAt    time.Time
	dueAt         time.Time
	heldAt        time.Time
	heldFrom      State
	completedAt   time.Time
	createdAt     time.Time
	updatedAt     time.Time
}

func (j *jobImpl) ID() uuid.UUID           { return j.id }
func (j *jobImpl) Reference() string       { return j.reference }
func (j *jobImpl) SubmissionID() uuid.UUID { return j.submissionID }
func (j *jobImpl) CustomerName() string    { return j.customerName }
func (j *jobImpl) CustomerEmail() string   { return j.customerEmail }
func (j *jobImpl) StoreURL() string        { return j.storeURL }
func (j *jobImpl) Category() string        { return j.category }
func (j *jobImpl) Description() string     { return j.description }
func (j *jobImpl) State() State            { return j.state }
func (j *jobImpl) Quote() *money.Money     { return j.quote }
func (j *jobImpl) QuotedAt() time.Time     { return j.quotedAt }
func (j *jobImpl) AcceptedAt() time.Time   { return j.acceptedAt }
func (j *jobImpl) DueAt() time.Time        { return j.dueAt }
func (j *jobImpl) HeldAt() time.Time       { return j.heldAt }
func (j *jobImpl) HeldFrom() State         { return j.heldFrom }
func (j *jobImpl) CompletedAt() time.Time  { return j.completedAt }
func (j *jobImpl) CreatedAt() time.Time    { return j.createdAt }
func (j *jobImpl) UpdatedAt() time.Time    { return j.updatedAt }

func (j *jobImpl) clone() *jobImpl {
	out := *j
	return &out
}

func (j *jobImpl) guard(target State, allowedFrom ...State) error {
	for _, from := range allowedFrom {
		if j.state == from {
			return nil
		}
	}
	return transitionError(j.state, target)
}

// PrepareQuote drafts the quote amount without sending it; the job stays in
// pending_quote until SendQuote.
func (j *jobImpl) PrepareQuote(amount *money.Money, at time.Time) (Job, error) {
	if j.state != StatePendingQuote {
		return nil, transitionError(j.state, StatePendingQuote)
	}
	if amount == nil || amount.IsNegative() {
		return nil, ErrInvalidQuote
	}
	out := j.clone()
	out.quote = amount
	out.updatedAt = at
	return out, nil
}

// SendQuote accepts a nil amount when a quote was prepared earlier.
func (j *jobImpl) SendQuote(amount *money.Money, at time.Time) (Job, error) {
	if err := j.guard(StateQuoted, StatePendingQuote); err != nil {
		return nil, err
	}
	if amount == nil {
		amount = j.quote
	}
	if amount == nil || amount.IsNegative() {
		return nil, ErrInvalidQuote
	}
	out := j.clone()
	out.state = StateQuoted
	out.quote = amount
	out.quotedAt = at
	out.updatedAt = at
	return out, nil
}

// Accept starts the turnaround clock. Accepting twice is rejected so the
// due date can never be silently pushed back.
func (j *jobImpl) Accept(at time.Time, turnaround time.Duration) (Job, error) {
	if err := j.guard(StateAccepted, StateQuoted); err != nil {
		return nil, err
	}
	out := j.clone()
	out.state = StateAccepted
	out.acceptedAt = at
	out.dueAt = at.Add(turnaround)
	out.updatedAt = at
	return out, nil
}

func (j *jobImpl) Start(at time.Time) (Job, error) {
	if err := j.guard(StateInProgress, StateAccepted); err != nil {
		return nil, err
	}
	out := j.clone()
	out.state = StateInProgress
	out.updatedAt = at
	return out, nil
}

func (j *jobImpl) Hold(at time.Time) (Job, error) {
	if err := j.guard(StateOnHold, StateAccepted, StateInProgress); err != nil {
		return nil, err
	}
	out := j.clone()
	out.heldFrom = j.state
	out.heldAt = at
	out.state = StateOnHold
	out.updatedAt = at
	return out, nil
}

// Resume returns the job to the state it was held from. When extendDue is
// set, the due date moves forward by the time spent on hold, so the pause
// does not eat into the turnaround promise.
func (j *jobImpl) Resume(at time.Time, extendDue bool) (Job, error) {
	if j.state != StateOnHold {
		return nil, transitionError(j.state, StateInProgress)
	}
	out := j.clone()
	out.state = j.heldFrom
	if out.state == "" {
		out.state = StateInProgress
	}
	if extendDue && !out.dueAt.IsZero() {
		out.dueAt = out.dueAt.Add(at.Sub(j.heldAt))
	}
	out.heldAt = time.Time{}
	out.heldFrom = ""
	out.updatedAt = at
	return out, nil
}

func (j *jobImpl) Complete(at time.Time) (Job, error) {
	if err := j.guard(StateCompleted, StateInProgress); err != nil {
		return nil, err
	}
	out := j.clone()
	out.state = StateCompleted
	out.completedAt = at
	out.updatedAt = at
	return out, nil
}

func (j *jobImpl) Decline(at time.Time) (Job, error) {
	if err := j.guard(StateDeclined, StatePendingQuote, StateQuoted); err != nil {
		return nil, err
	}
	out := j.clone()
	out.state = StateDeclined
	out.updatedAt = at
	return out, nil
}
