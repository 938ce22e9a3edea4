package submission

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/storefixhq/storefix/modules/intake/domain/value_objects/internet"
	"github.com/storefixhq/storefix/pkg/constants"
	"github.com/storefixhq/storefix/pkg/serrors"
)

// CreateDTO is the raw form payload. Field names match the public form
// contract.
type CreateDTO struct {
	Reference       string `json:"submissionNumber"`
	Name            string `json:"name" validate:"required"`
	Email           string `json:"email" validate:"required"`
	StoreURL        string `json:"storeUrl"`
	Message         string `json:"message"`
	HasVoiceNote    bool   `json:"hasVoiceNote"`
	VoiceNoteData   string `json:"voiceNoteData"`
	VoiceNoteLength int    `json:"voiceNoteSeconds"`
}

// Limits are the server-side copies of the client-side constraints; the two
// must agree.
type Limits struct {
	MaxNameLength    int
	MaxEmailLength   int
	MaxURLLength     int
	MaxMessageLength int
	VoiceNote        VoiceNoteLimits
}

// Validated carries the sanitized values that are safe to persist.
type Validated struct {
	Reference string
	Name      string
	Email     internet.Email
	StoreURL  internet.URL
	Message   string
	VoiceNote *VoiceNote
}

func (d *CreateDTO) Normalize() {
	d.Reference = strings.TrimSpace(d.Reference)
	d.Name = strings.TrimSpace(d.Name)
	d.Email = strings.TrimSpace(d.Email)
	d.StoreURL = strings.TrimSpace(d.StoreURL)
	d.Message = strings.TrimSpace(d.Message)
}

// Validate checks every field and returns the sanitized record. Field
// failures come back as serrors.ValidationErrors; the cross-field
// message-or-voice-note rule fails with ErrIncomplete.
func (d *CreateDTO) Validate(limits Limits) (*Validated, error) {
	d.Normalize()

	if errs := constants.Validate.Struct(d); errs != nil {
		validatorErrs := errs.(validator.ValidationErrors)
		return nil, serrors.ProcessValidatorErrors(validatorErrs, fieldMessage)
	}

	out := &Validated{}

	if d.Reference != "" {
		if !ValidReference(d.Reference) {
			return nil, serrors.ValidationErrors{"submissionNumber": ErrInvalidReference}
		}
		out.Reference = d.Reference
	}

	if len(d.Name) > limits.MaxNameLength {
		return nil, serrors.ValidationErrors{"name": tooLong("name", limits.MaxNameLength)}
	}
	if ContainsSuspiciousInput(d.Name) {
		return nil, serrors.ValidationErrors{"name": ErrSuspiciousInput}
	}
	out.Name = EscapeHTML(d.Name)

	if len(d.Email) > limits.MaxEmailLength {
		return nil, serrors.ValidationErrors{"email": tooLong("email", limits.MaxEmailLength)}
	}
	email, err := internet.ParseEmail(d.Email)
	if err != nil {
		return nil, serrors.ValidationErrors{"email": asBase(err)}
	}
	out.Email = email

	if d.StoreURL != "" {
		if len(d.StoreURL) > limits.MaxURLLength {
			return nil, serrors.ValidationErrors{"storeUrl": tooLong("storeUrl", limits.MaxURLLength)}
		}
		if ContainsSuspiciousInput(d.StoreURL) {
			return nil, serrors.ValidationErrors{"storeUrl": ErrSuspiciousInput}
		}
		url, err := internet.ParseURL(d.StoreURL)
		if err != nil {
			return nil, serrors.ValidationErrors{"storeUrl": asBase(err)}
		}
		out.StoreURL = url
	}

	if d.Message != "" {
		if len(d.Message) > limits.MaxMessageLength {
			return nil, serrors.ValidationErrors{"message": tooLong("message", limits.MaxMessageLength)}
		}
		if ContainsSuspiciousInput(d.Message) {
			return nil, serrors.ValidationErrors{"message": ErrSuspiciousInput}
		}
		out.Message = EscapeHTML(d.Message)
	}

	hasVoiceData := d.HasVoiceNote && d.VoiceNoteData != ""
	if out.Message == "" && !hasVoiceData {
		return nil, ErrIncomplete
	}

	if hasVoiceData {
		note, err := ParseVoiceNote(d.VoiceNoteData, d.VoiceNoteLength, limits.VoiceNote)
		if err != nil {
			return nil, serrors.ValidationErrors{"voiceNoteData": asBase(err)}
		}
		out.VoiceNote = note
	}

	return out, nil
}

func fieldMessage(field, tag string) string {
	switch tag {
	case "required":
		return fmt.Sprintf("Please fill in the %s field.", strings.ToLower(field))
	default:
		return fmt.Sprintf("The %s field is invalid.", strings.ToLower(field))
	}
}

func tooLong(field string, limit int) *serrors.Base {
	return serrors.NewError(
		"FIELD_TOO_LONG",
		fmt.Sprintf("The %s field must be %d characters or fewer.", field, limit),
		fmt.Sprintf("field %s exceeded %d chars", field, limit),
	)
}

func asBase(err error) *serrors.Base {
	if base, ok := err.(*serrors.Base); ok {
		return base
	}
	return serrors.NewError("VALIDATION_FAILED", "This value is invalid.", err.Error())
}
