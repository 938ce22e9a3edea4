package internet

import (
	"regexp"
	"strings"

	"github.com/storefixhq/storefix/pkg/serrors"
)

var (
	ErrInvalidEmail = serrors.NewError("INVALID_EMAIL", "Please enter a valid email address.", "")
	ErrEmailTooLong = serrors.NewError("EMAIL_TOO_LONG", "Email address is too long.", "")
)

// emailPattern approximates RFC 5322 addr-spec. Addresses are lower-cased
// before matching, so the pattern only needs lower-case letters.
var emailPattern = regexp.MustCompile(
	`^[a-z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?(?:\.[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?)+$`,
)

const maxEmailLength = 254

type Email struct {
	value string
}

func ParseEmail(raw string) (Email, error) {
	normalized := strings.ToLower(strings.TrimSpace(raw))
	if len(normalized) > maxEmailLength {
		return Email{}, ErrEmailTooLong
	}
	if !emailPattern.MatchString(normalized) {
		return Email{}, ErrInvalidEmail
	}
	return Email{value: normalized}, nil
}

func MustParseEmail(raw string) Email {
	e, err := ParseEmail(raw)
	if err != nil {
		panic(err)
	}
	return e
}

func (e Email) Value() string {
	return e.value
}

func (e Email) IsZero() bool {
	return e.value == ""
}
