package invoice

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateNumber produces an invoice number in the INV-YYYYMMDD-NNNNN shape.
func GenerateNumber(now time.Time) string {
	return fmt.Sprintf("INV-%s-%05d", now.Format("20060102"), rand.Intn(100000)) //nolint:gosec
}
