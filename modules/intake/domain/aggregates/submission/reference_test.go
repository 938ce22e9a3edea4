package submission_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/storefixhq/storefix/modules/intake/domain/aggregates/submission"
)

func TestValidReference(t *testing.T) {
	t.Parallel()

	valid := []string{"SF-OAK-001", "SF-HARBOR-042", "SF-20250601-00042"}
	for _, ref := range valid {
		assert.True(t, submission.ValidReference(ref), "reference %q", ref)
	}

	invalid := []string{"", "OAK-001", "SF-oak-001", "SF-OAK-1", "SF-2025-00042", "SF-OAK-0001"}
	for _, ref := range invalid {
		assert.False(t, submission.ValidReference(ref), "reference %q", ref)
	}
}

func TestGenerateReference(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	ref := submission.GenerateReference(now)
	assert.True(t, submission.ValidReference(ref), "generated %q", ref)
	assert.Contains(t, ref, "SF-20250601-")
}
