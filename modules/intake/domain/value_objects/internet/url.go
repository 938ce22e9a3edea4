package internet

import (
	"net"
	"net/url"
	"regexp"
	"strings"

	"github.com/storefixhq/storefix/pkg/serrors"
)

var (
	ErrInvalidURL = serrors.NewError("INVALID_URL", "Please enter a valid store URL.", "")
	ErrBlockedURL = serrors.NewError("BLOCKED_URL", "This URL is not allowed.", "")
	ErrURLTooLong = serrors.NewError("URL_TOO_LONG", "Store URL is too long.", "")
)

// blockedSchemes reject scheme tricks anywhere in the value, including
// nested ones like https://example.com/?u=javascript:alert(1).
var blockedSchemes = []string{
	"javascript:",
	"data:",
	"file:",
}

var urlPattern = regexp.MustCompile(`^https?://[^\s]+\.[^\s]{2,}$`)

const maxURLLength = 2048

type URL struct {
	value string
}

// ParseURL normalizes and validates a store URL. A missing scheme is
// assumed to be https.
func ParseURL(raw string) (URL, error) {
	normalized := strings.TrimSpace(raw)
	if normalized == "" {
		return URL{}, ErrInvalidURL
	}
	if len(normalized) > maxURLLength {
		return URL{}, ErrURLTooLong
	}
	if !strings.Contains(normalized, "://") {
		normalized = "https://" + normalized
	}

	lowered := strings.ToLower(normalized)
	for _, scheme := range blockedSchemes {
		if strings.Contains(lowered, scheme) {
			return URL{}, ErrBlockedURL
		}
	}
	parsed, err := url.Parse(normalized)
	if err != nil || parsed.Host == "" {
		return URL{}, ErrInvalidURL
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return URL{}, ErrBlockedURL
	}
	if hostIsInternal(parsed.Hostname()) {
		return URL{}, ErrBlockedURL
	}
	if !urlPattern.MatchString(lowered) {
		return URL{}, ErrInvalidURL
	}
	return URL{value: normalized}, nil
}

// hostIsInternal rejects hosts the form must never link to: the form only
// ever points at a public storefront. Matching on the parsed host keeps
// names like shop10.example.com valid.
func hostIsInternal(host string) bool {
	host = strings.ToLower(host)
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(host)
	if ip == nil {
		return false
	}
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() || ip.IsLinkLocalUnicast()
}

func (u URL) Value() string {
	return u.value
}

func (u URL) IsZero() bool {
	return u.value == ""
}
