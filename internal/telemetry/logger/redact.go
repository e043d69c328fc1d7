package logger

import (
	"log/slog"
	"strings"
)

// Key fragments whose values are never logged. Paths such as key_file are
// deliberately not matched: the location of a key is not a secret.
var sensitiveKeyPatterns = []string{
	"password",
	"passphrase",
	"secret",
	"private_key",
	"authorization",
	"cookie",
	"token",
}

// pemPrivateMarker identifies PEM-encoded private key material in a value.
const pemPrivateMarker = "PRIVATE KEY-----"

const redactedValue = "***REDACTED***"

// redactSensitive replaces sensitive string attributes, recursing into groups.
func redactSensitive(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindString:
		v := a.Value.String()
		if v == "" {
			return a
		}
		if IsSensitiveValue(v) || IsSensitiveKey(a.Key) {
			return slog.String(a.Key, redactedValue)
		}
	case slog.KindGroup:
		attrs := a.Value.Group()
		out := make([]slog.Attr, len(attrs))
		for i, attr := range attrs {
			out[i] = redactSensitive(attr)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(out...)}
	}
	return a
}

// IsSensitiveKey checks if a key name suggests sensitive content.
func IsSensitiveKey(key string) bool {
	keyLower := strings.ToLower(key)
	for _, pattern := range sensitiveKeyPatterns {
		if strings.Contains(keyLower, pattern) {
			return true
		}
	}
	return false
}

// IsSensitiveValue reports whether value carries private key material.
func IsSensitiveValue(value string) bool {
	return strings.Contains(value, pemPrivateMarker)
}
