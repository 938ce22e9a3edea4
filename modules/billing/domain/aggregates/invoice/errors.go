package invoice

import (
	"fmt"

	"github.com/storefixhq/storefix/pkg/serrors"
)

var (
	ErrNotFound = serrors.NewError("INVOICE_NOT_FOUND", "Invoice not found.", "")

	ErrInvalidTransition = serrors.NewError("INVALID_INVOICE_TRANSITION",
		"This action is not available for the invoice's current status.", "")

	ErrInvalidKind = serrors.NewError("INVALID_INVOICE_KIND",
		"Unknown invoice kind.", "")

	ErrJobNotCompleted = serrors.NewError("JOB_NOT_COMPLETED",
		"Only completed jobs can be invoiced. Request a deposit instead.", "")

	ErrJobNotQuoted = serrors.NewError("JOB_NOT_QUOTED",
		"The job has no quote to bill against.", "")

	ErrPaymentMethodRequired = serrors.NewError("PAYMENT_METHOD_REQUIRED",
		"A payment method is required to record a payment.", "")
)

func transitionError(from, to Status) error {
	return ErrInvalidTransition.WithDetail(fmt.Sprintf("%s -> %s", from, to))
}
