package job

import (
	"fmt"

	"github.com/storefixhq/storefix/pkg/serrors"
)

var (
	ErrNotFound = serrors.NewError("JOB_NOT_FOUND", "Job not found.", "")

	ErrInvalidTransition = serrors.NewError("INVALID_TRANSITION",
		"This action is not available for the job's current state.", "")

	ErrInvalidQuote = serrors.NewError("INVALID_QUOTE",
		"Quote amount must be present and not negative.", "")

	ErrSubmissionConsumed = serrors.NewError("SUBMISSION_CONSUMED",
		"A job already exists for this submission.", "")
)

func transitionError(from, to State) error {
	return ErrInvalidTransition.WithDetail(fmt.Sprintf("%s -> %s", from, to))
}
