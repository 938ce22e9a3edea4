package job_test

import (
	"testing"
	"time"

	"github.com/Rhymond/go-money"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefixhq/storefix/modules/workflow/domain/aggregates/job"
)

var (
	t0         = time.Date(2025, time.April, 1, 10, 0, 0, 0, time.UTC)
	turnaround = 7 * 24 * time.Hour
)

func newJob() job.Job {
	return job.New("JOB-20250401-00001", uuid.New(), "Priya Shah", "priya@corniche-bakery.co.uk")
}

func quoted(t *testing.T) job.Job {
	t.Helper()
	j, err := newJob().SendQuote(money.New(45000, money.GBP), t0)
	require.NoError(t, err)
	return j
}

func accepted(t *testing.T) job.Job {
	t.Helper()
	j, err := quoted(t).Accept(t0, turnaround)
	require.NoError(t, err)
	return j
}

func inProgress(t *testing.T) job.Job {
	t.Helper()
	j, err := accepted(t).Start(t0.Add(time.Hour))
	require.NoError(t, err)
	return j
}

func TestJob_HappyPath(t *testing.T) {
	t.Parallel()

	j := newJob()
	assert.Equal(t, job.StatePendingQuote, j.State())

	j, err := j.SendQuote(money.New(45000, money.GBP), t0)
	require.NoError(t, err)
	assert.Equal(t, job.StateQuoted, j.State())
	assert.Equal(t, int64(45000), j.Quote().Amount())

	j, err = j.Accept(t0, turnaround)
	require.NoError(t, err)
	assert.Equal(t, job.StateAccepted, j.State())
	assert.Equal(t, t0, j.AcceptedAt())
	assert.Equal(t, t0.Add(7*24*time.Hour), j.DueAt())

	j, err = j.Start(t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, job.StateInProgress, j.State())

	j, err = j.Complete(t0.Add(48 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, job.StateCompleted, j.State())
	assert.Equal(t, t0.Add(48*time.Hour), j.CompletedAt())
}

func TestJob_AcceptTwiceRejected(t *testing.T) {
	t.Parallel()

	j := accepted(t)
	due := j.DueAt()

	_, err := j.Accept(t0.Add(24*time.Hour), turnaround)
	require.ErrorIs(t, err, job.ErrInvalidTransition)

	// The original value is untouched; the clock did not reset.
	assert.Equal(t, due, j.DueAt())
	assert.Equal(t, t0, j.AcceptedAt())
}

func TestJob_InvalidTransitions(t *testing.T) {
	t.Parallel()

	fresh := newJob()

	_, err := fresh.Accept(t0, turnaround)
	require.ErrorIs(t, err, job.ErrInvalidTransition)

	_, err = fresh.Start(t0)
	require.ErrorIs(t, err, job.ErrInvalidTransition)

	_, err = fresh.Complete(t0)
	require.ErrorIs(t, err, job.ErrInvalidTransition)

	done, err := inProgress(t).Complete(t0.Add(time.Hour))
	require.NoError(t, err)

	_, err = done.Start(t0)
	require.ErrorIs(t, err, job.ErrInvalidTransition)
	_, err = done.Decline(t0)
	require.ErrorIs(t, err, job.ErrInvalidTransition)
}

func TestJob_SendQuoteRequiresAmount(t *testing.T) {
	t.Parallel()

	_, err := newJob().SendQuote(nil, t0)
	require.ErrorIs(t, err, job.ErrInvalidQuote)

	_, err = newJob().SendQuote(money.New(-100, money.GBP), t0)
	require.ErrorIs(t, err, job.ErrInvalidQuote)
}

func TestJob_PrepareQuoteDraftsWithoutSending(t *testing.T) {
	t.Parallel()

	j, err := newJob().PrepareQuote(money.New(45000, money.GBP), t0)
	require.NoError(t, err)
	assert.Equal(t, job.StatePendingQuote, j.State())
	assert.Equal(t, int64(45000), j.Quote().Amount())

	sent, err := j.SendQuote(nil, t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, job.StateQuoted, sent.State())
	assert.Equal(t, int64(45000), sent.Quote().Amount())

	_, err = sent.PrepareQuote(money.New(100, money.GBP), t0)
	require.ErrorIs(t, err, job.ErrInvalidTransition)
}

func TestJob_Decline(t *testing.T) {
	t.Parallel()

	j, err := quoted(t).Decline(t0.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, job.StateDeclined, j.State())

	// Leads can be declined before a quote goes out.
	j, err = newJob().Decline(t0)
	require.NoError(t, err)
	assert.Equal(t, job.StateDeclined, j.State())

	// Not after acceptance.
	_, err = accepted(t).Decline(t0)
	require.ErrorIs(t, err, job.ErrInvalidTransition)
}

func TestJob_HoldAndResume(t *testing.T) {
	t.Parallel()

	j := inProgress(t)
	due := j.DueAt()

	held, err := j.Hold(t0.Add(24 * time.Hour))
	require.NoError(t, err)
	assert.Equal(t, job.StateOnHold, held.State())

	_, err = held.Hold(t0.Add(25 * time.Hour))
	require.ErrorIs(t, err, job.ErrInvalidTransition)

	// Default: the pause counts against the turnaround promise.
	resumed, err := held.Resume(t0.Add(72*time.Hour), false)
	require.NoError(t, err)
	assert.Equal(t, job.StateInProgress, resumed.State())
	assert.Equal(t, due, resumed.DueAt())

	// Opt-in: the due date moves by the time spent on hold.
	extended, err := held.Resume(t0.Add(72*time.Hour), true)
	require.NoError(t, err)
	assert.Equal(t, due.Add(48*time.Hour), extended.DueAt())
}

func TestJob_ResumeReturnsToHeldFromState(t *testing.T) {
	t.Parallel()

	held, err := accepted(t).Hold(t0.Add(time.Hour))
	require.NoError(t, err)

	resumed, err := held.Resume(t0.Add(2*time.Hour), false)
	require.NoError(t, err)
	assert.Equal(t, job.StateAccepted, resumed.State())
}

func TestSLA_Buckets(t *testing.T) {
	t.Parallel()

	due := t0.Add(7 * 24 * time.Hour)

	cases := []struct {
		name string
		now  time.Time
		want job.SLABucket
	}{
		{"at acceptance", t0, job.BucketOnTrack},
		{"exactly three days left", due.Add(-3 * 24 * time.Hour), job.BucketOnTrack},
		{"exactly two days left", due.Add(-2 * 24 * time.Hour), job.BucketAtRisk},
		{"five days in", t0.Add(5 * 24 * time.Hour), job.BucketAtRisk},
		{"due this instant", due, job.BucketOverdue},
		{"a day late", t0.Add(8 * 24 * time.Hour), job.BucketOverdue},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, job.SLA(job.StateInProgress, due, tc.now))
		})
	}
}

func TestSLA_OnlyAppliesAfterAcceptance(t *testing.T) {
	t.Parallel()

	due := t0.Add(7 * 24 * time.Hour)
	assert.Equal(t, job.BucketNone, job.SLA(job.StatePendingQuote, time.Time{}, t0))
	assert.Equal(t, job.BucketNone, job.SLA(job.StateQuoted, time.Time{}, t0))
	assert.Equal(t, job.BucketNone, job.SLA(job.StateCompleted, due, t0))
	assert.Equal(t, job.BucketNone, job.SLA(job.StateDeclined, due, t0))
	assert.Equal(t, job.BucketOnTrack, job.SLA(job.StateOnHold, due, t0))
}
