package job

import (
	"fmt"
	"math/rand"
	"time"
)

// GenerateReference produces a job number in the JOB-YYYYMMDD-NNNNN shape.
func GenerateReference(now time.Time) string {
	return fmt.Sprintf("JOB-%s-%05d", now.Format("20060102"), rand.Intn(100000)) //nolint:gosec
}
