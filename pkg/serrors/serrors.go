package serrors

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Base is a structured error carrying a stable machine code, a message that
// is safe to show to end users and an optional internal detail that only
// reaches operator-facing logs.
type Base struct {
	Code    string
	Message string
	Detail  string
}

func (e *Base) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// UserMessage returns the text safe to surface to the caller.
func (e *Base) UserMessage() string {
	return e.Message
}

func NewError(code, message, detail string) *Base {
	return &Base{Code: code, Message: message, Detail: detail}
}

// WithDetail returns a copy of the error with the internal detail replaced.
// The original stays untouched so package-level sentinels remain comparable
// with errors.Is.
func (e *Base) WithDetail(detail string) *Base {
	return &Base{Code: e.Code, Message: e.Message, Detail: detail}
}

// Is matches on code so detail-enriched copies still compare equal to their
// sentinel.
func (e *Base) Is(target error) bool {
	t, ok := target.(*Base)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ValidationErrors maps a field name to the error reported for it.
type ValidationErrors map[string]*Base

func (v ValidationErrors) Error() string {
	for field, err := range v {
		return fmt.Sprintf("validation failed on %s: %s", field, err.Message)
	}
	return "validation failed"
}

// Fields returns field -> user message pairs for API responses.
func (v ValidationErrors) Fields() map[string]string {
	out := make(map[string]string, len(v))
	for field, err := range v {
		out[field] = err.Message
	}
	return out
}

// ProcessValidatorErrors converts go-playground validator errors into
// structured errors, using messageFor to produce the user-facing text for a
// given field and tag.
func ProcessValidatorErrors(
	errs validator.ValidationErrors,
	messageFor func(field, tag string) string,
) ValidationErrors {
	out := make(ValidationErrors, len(errs))
	for _, fieldErr := range errs {
		field := fieldErr.Field()
		out[field] = NewError(
			"VALIDATION_"+fieldErr.Tag(),
			messageFor(field, fieldErr.Tag()),
			fmt.Sprintf("field %s failed %q", field, fieldErr.Tag()),
		)
	}
	return out
}
