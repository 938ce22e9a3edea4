package submission

import (
	"regexp"
	"strings"
)

// denyPatterns match known XSS/injection markers. A match rejects the whole
// submission; nothing is ever silently stripped or truncated.
var denyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*script`),
	regexp.MustCompile(`(?i)<\s*iframe`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)data\s*:\s*[a-z]+/`),
	regexp.MustCompile(`(?i)\son\w+\s*=`),
}

func ContainsSuspiciousInput(s string) bool {
	for _, pattern := range denyPatterns {
		if pattern.MatchString(s) {
			return true
		}
	}
	return false
}

var htmlEscaper = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&#39;",
	"/", "&#x2F;",
)

// EscapeHTML escapes metacharacters so stored values are safe to interpolate
// into operator-facing HTML (sheets, email bodies, admin pages).
func EscapeHTML(s string) string {
	return htmlEscaper.Replace(s)
}

var htmlUnescaper = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&#39;", "'",
	"&#x2F;", "/",
	"&amp;", "&",
)

// UnescapeHTML inverts EscapeHTML. Escape then unescape round-trips any
// input exactly.
func UnescapeHTML(s string) string {
	return htmlUnescaper.Replace(s)
}
