package logging

import (
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// RedactedString returns a zap field that records the value's length but not
// its content. Use for API keys and other opaque secrets.
func RedactedString(key, value string) zap.Field {
	if value == "" {
		return zap.String(key, "")
	}
	return zap.String(key, fmt.Sprintf("[REDACTED:%d]", len(value)))
}

// RedactedURI returns a zap field with any userinfo stripped from the URI so
// connection strings can be logged without leaking credentials. The host and
// path are preserved for debugging. Unparseable URIs are fully redacted.
func RedactedURI(key, uri string) zap.Field {
	if uri == "" {
		return zap.String(key, "")
	}
	parsed, err := url.Parse(uri)
	if err != nil {
		return zap.String(key, "[REDACTED]")
	}
	if parsed.User == nil {
		return zap.String(key, parsed.String())
	}
	// The userinfo encoder percent-escapes the mask, so strip the
	// credentials and splice it in literally.
	parsed.User = nil
	return zap.String(key, strings.Replace(parsed.String(), "://", "://***@", 1))
}
