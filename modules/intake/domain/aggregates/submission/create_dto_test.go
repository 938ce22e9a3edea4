package submission_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefixhq/storefix/modules/intake/domain/aggregates/submission"
	"github.com/storefixhq/storefix/pkg/serrors"
)

func dtoLimits() submission.Limits {
	return submission.Limits{
		MaxNameLength:    100,
		MaxEmailLength:   254,
		MaxURLLength:     2048,
		MaxMessageLength: 5000,
		VoiceNote:        testLimits(),
	}
}

func validDTO() submission.CreateDTO {
	return submission.CreateDTO{
		Name:    "Jo",
		Email:   "jo@x.com",
		Message: "fix cart",
	}
}

func fieldError(t *testing.T, err error, field string) *serrors.Base {
	t.Helper()
	var verrs serrors.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	require.Contains(t, verrs, field)
	return verrs[field]
}

func TestValidate_Success(t *testing.T) {
	t.Parallel()

	dto := validDTO()
	dto.StoreURL = "myshop.example.com"
	out, err := dto.Validate(dtoLimits())
	require.NoError(t, err)

	assert.Equal(t, "Jo", out.Name)
	assert.Equal(t, "jo@x.com", out.Email.Value())
	assert.Equal(t, "https://myshop.example.com", out.StoreURL.Value())
	assert.Equal(t, "fix cart", out.Message)
}

func TestValidate_TrimsAndLowercasesEmail(t *testing.T) {
	t.Parallel()

	dto := validDTO()
	dto.Email = "  JO@X.COM  "
	out, err := dto.Validate(dtoLimits())
	require.NoError(t, err)
	assert.Equal(t, "jo@x.com", out.Email.Value())
}

func TestValidate_RequiredFields(t *testing.T) {
	t.Parallel()

	dto := validDTO()
	dto.Name = "  "
	_, err := dto.Validate(dtoLimits())
	fieldError(t, err, "Name")

	dto = validDTO()
	dto.Email = ""
	_, err = dto.Validate(dtoLimits())
	fieldError(t, err, "Email")
}

func TestValidate_FieldTooLong(t *testing.T) {
	t.Parallel()

	dto := validDTO()
	dto.Name = strings.Repeat("x", 101)
	base := fieldError(t, mustErr(dto.Validate(dtoLimits())), "name")
	assert.Equal(t, "FIELD_TOO_LONG", base.Code)

	dto = validDTO()
	dto.Message = strings.Repeat("x", 5001)
	base = fieldError(t, mustErr(dto.Validate(dtoLimits())), "message")
	assert.Equal(t, "FIELD_TOO_LONG", base.Code)
}

func TestValidate_SuspiciousMessageRejected(t *testing.T) {
	t.Parallel()

	dto := validDTO()
	dto.Message = "hello <script>alert(1)</script>"
	base := fieldError(t, mustErr(dto.Validate(dtoLimits())), "message")
	assert.Equal(t, "SUSPICIOUS_INPUT", base.Code)
}

func TestValidate_JavascriptURLRejected(t *testing.T) {
	t.Parallel()

	dto := validDTO()
	dto.StoreURL = "javascript:alert(1)"
	base := fieldError(t, mustErr(dto.Validate(dtoLimits())), "storeUrl")
	assert.Equal(t, "SUSPICIOUS_INPUT", base.Code)
}

func TestValidate_Incomplete(t *testing.T) {
	t.Parallel()

	dto := validDTO()
	dto.Message = ""
	dto.HasVoiceNote = false
	_, err := dto.Validate(dtoLimits())
	assert.ErrorIs(t, err, submission.ErrIncomplete)

	// hasVoiceNote without payload is still incomplete.
	dto.HasVoiceNote = true
	dto.VoiceNoteData = ""
	_, err = dto.Validate(dtoLimits())
	assert.ErrorIs(t, err, submission.ErrIncomplete)
}

func TestValidate_MessageEscaped(t *testing.T) {
	t.Parallel()

	dto := validDTO()
	dto.Message = `price < 100 & currency "USD"`
	out, err := dto.Validate(dtoLimits())
	require.NoError(t, err)
	assert.Equal(t, "price &lt; 100 &amp; currency &quot;USD&quot;", out.Message)
	assert.Equal(t, dto.Message, submission.UnescapeHTML(out.Message))
}

func TestValidate_BadReference(t *testing.T) {
	t.Parallel()

	dto := validDTO()
	dto.Reference = "not-a-reference"
	base := fieldError(t, mustErr(dto.Validate(dtoLimits())), "submissionNumber")
	assert.Equal(t, "INVALID_REFERENCE", base.Code)
}

func mustErr(_ *submission.Validated, err error) error {
	if err == nil {
		panic(errors.New("expected validation error"))
	}
	return err
}
