package submission

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"
)

// Reference codes come in two shapes: the form generates a memorable
// SF-WORD-NNN code, and the server falls back to SF-YYYYMMDD-NNNNN when a
// submission arrives without one.
var (
	wordReferencePattern = regexp.MustCompile(`^SF-[A-Z]{3,12}-\d{3}$`)
	dateReferencePattern = regexp.MustCompile(`^SF-\d{8}-\d{5}$`)
)

func ValidReference(reference string) bool {
	reference = strings.TrimSpace(reference)
	return wordReferencePattern.MatchString(reference) || dateReferencePattern.MatchString(reference)
}

// GenerateReference produces the server-side fallback code.
func GenerateReference(now time.Time) string {
	return fmt.Sprintf("SF-%s-%05d", now.Format("20060102"), rand.Intn(100000)) //nolint:gosec
}
