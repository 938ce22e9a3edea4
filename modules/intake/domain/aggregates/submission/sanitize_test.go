package submission_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storefixhq/storefix/modules/intake/domain/aggregates/submission"
)

func TestContainsSuspiciousInput(t *testing.T) {
	t.Parallel()

	suspicious := []string{
		"<script>alert(1)</script>",
		"< SCRIPT src=x>",
		"<iframe src='x'>",
		"javascript:void(0)",
		"click data:text/html,payload",
		`<img onerror=alert(1)>`,
	}
	for _, input := range suspicious {
		assert.True(t, submission.ContainsSuspiciousInput(input), "input %q", input)
	}

	clean := []string{
		"my cart is broken",
		"discount script for my theme", // the word alone is fine
		"update the on-sale banner",
		"we ship data/exports weekly",
	}
	for _, input := range clean {
		assert.False(t, submission.ContainsSuspiciousInput(input), "input %q", input)
	}
}

func TestEscapeHTML_RoundTrip(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"plain text",
		`a & b < c > d "e" 'f' g/h`,
		"already &amp; escaped",
		"",
	}
	for _, input := range inputs {
		escaped := submission.EscapeHTML(input)
		assert.Equal(t, input, submission.UnescapeHTML(escaped), "input %q", input)
	}
}

func TestEscapeHTML_Metacharacters(t *testing.T) {
	t.Parallel()

	escaped := submission.EscapeHTML(`<b onclick="x">it's</b>`)
	assert.NotContains(t, escaped, "<")
	assert.NotContains(t, escaped, ">")
	assert.NotContains(t, escaped, `"`)
	assert.NotContains(t, escaped, "'")
}
