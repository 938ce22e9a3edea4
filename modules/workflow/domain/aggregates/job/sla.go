package job

import "time"

// SLABucket groups jobs by how much turnaround time is left.
type SLABucket string

const (
	// BucketNone applies while the clock has not started or no longer
	// matters: before acceptance and after a terminal state.
	BucketNone    SLABucket = ""
	BucketOnTrack SLABucket = "on_track"
	BucketAtRisk  SLABucket = "at_risk"
	BucketOverdue SLABucket = "overdue"
)

const atRiskThreshold = 3 * 24 * time.Hour

// SLA buckets the remaining time before due. Exactly three days left is
// still on track; exactly two days is at risk; due now or past due is
// overdue.
func SLA(state State, due time.Time, now time.Time) SLABucket {
	switch state {
	case StateAccepted, StateInProgress, StateOnHold:
	default:
		return BucketNone
	}
	if due.IsZero() {
		return BucketNone
	}
	remaining := due.Sub(now)
	switch {
	case remaining >= atRiskThreshold:
		return BucketOnTrack
	case remaining > 0:
		return BucketAtRisk
	default:
		return BucketOverdue
	}
}
