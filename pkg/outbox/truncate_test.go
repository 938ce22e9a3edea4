package outbox

import (
	"errors"
	"strings"
	"testing"
)

func TestTruncateError(t *testing.T) {
	t.Parallel()

	if got := truncateError(nil, 10); got != "" {
		t.Fatalf("expected empty for nil error, got %q", got)
	}

	err := errors.New("dial tcp: connection refused")
	if got := truncateError(err, 8); got != "dial tcp" {
		t.Fatalf("expected %q, got %q", "dial tcp", got)
	}
}

func TestTruncateString_MultibyteBoundary(t *testing.T) {
	t.Parallel()

	s := "héllo"
	got := truncateString(s, 2) // cuts into the two-byte é
	if !strings.HasPrefix(s, got) {
		t.Fatalf("truncation produced non-prefix %q", got)
	}
	if got != "h" {
		t.Fatalf("expected %q, got %q", "h", got)
	}
}
