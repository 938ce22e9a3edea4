package outbox

import (
	"math/rand"
	"testing"
	"time"
)

func TestRetryDelay(t *testing.T) {
	t.Parallel()

	r := &Relay{opts: RelayOptions{MaxBackoff: 60 * time.Second}}

	cases := []struct {
		attempts int
		want     time.Duration
	}{
		{attempts: 0, want: 0},
		{attempts: 1, want: 1 * time.Second},
		{attempts: 2, want: 2 * time.Second},
		{attempts: 3, want: 4 * time.Second},
		{attempts: 7, want: 60 * time.Second},  // cap
		{attempts: 50, want: 60 * time.Second}, // shift stays bounded
	}

	for _, tc := range cases {
		if got := r.retryDelay(tc.attempts); got != tc.want {
			t.Fatalf("attempts=%d: want %s got %s", tc.attempts, tc.want, got)
		}
	}
}

func TestRetryDelayJitterBounds(t *testing.T) {
	t.Parallel()

	r := &Relay{opts: RelayOptions{
		MaxBackoff: 60 * time.Second,
		JitterMax:  200 * time.Millisecond,
		Rand:       rand.New(rand.NewSource(42)),
	}}

	base := 2 * time.Second
	for i := 0; i < 100; i++ {
		got := r.retryDelay(2)
		if got < base || got > base+r.opts.JitterMax {
			t.Fatalf("delay out of range: %s", got)
		}
	}

	bare := &Relay{opts: RelayOptions{MaxBackoff: 60 * time.Second, JitterMax: 200 * time.Millisecond}}
	if got := bare.retryDelay(2); got != base {
		t.Fatalf("nil rand should add no jitter, got %s", got)
	}
}
