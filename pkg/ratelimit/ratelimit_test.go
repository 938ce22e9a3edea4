package ratelimit_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefixhq/storefix/pkg/ratelimit"
)

type fakeClock struct {
	current time.Time
}

func (c *fakeClock) Now() time.Time {
	return c.current
}

func (c *fakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func TestLimiter_MaxThenRejected(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := ratelimit.New(5, time.Hour, ratelimit.WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		require.True(t, l.Allow("jo@x.com"), "submission %d should be allowed", i+1)
		l.Record("jo@x.com", time.Time{})
	}

	assert.False(t, l.Allow("jo@x.com"))
	assert.Greater(t, l.RetryAfter("jo@x.com"), time.Duration(0))
}

func TestLimiter_WindowExpiryReadmits(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := ratelimit.New(5, time.Hour, ratelimit.WithClock(clock.Now))

	for i := 0; i < 5; i++ {
		l.Record("jo@x.com", time.Time{})
	}
	require.False(t, l.Allow("jo@x.com"))

	clock.Advance(time.Hour + time.Second)
	assert.True(t, l.Allow("jo@x.com"))
	assert.Zero(t, l.RetryAfter("jo@x.com"))
}

func TestLimiter_PartialExpiry(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	l := ratelimit.New(2, time.Hour, ratelimit.WithClock(clock.Now))

	l.Record("a@x.com", time.Time{})
	clock.Advance(40 * time.Minute)
	l.Record("a@x.com", time.Time{})
	require.False(t, l.Allow("a@x.com"))

	// Oldest hit ages out 20 minutes later; one slot frees up.
	clock.Advance(21 * time.Minute)
	assert.True(t, l.Allow("a@x.com"))
}

func TestLimiter_IdentityNormalization(t *testing.T) {
	t.Parallel()
	l := ratelimit.New(1, time.Hour)

	l.Record("Jo@X.com ", time.Time{})
	assert.False(t, l.Allow("jo@x.com"))
}

func TestLimiter_IdentitiesAreIndependent(t *testing.T) {
	t.Parallel()
	l := ratelimit.New(1, time.Hour)

	l.Record("a@x.com", time.Time{})
	assert.False(t, l.Allow("a@x.com"))
	assert.True(t, l.Allow("b@x.com"))
}
