package models

import (
	"fmt"
	"strings"
	"time"
)

// Timestamp is an ISO-8601 instant kept exactly as it was received.
// Fixture and import data is not guaranteed to be well formed, so parsing is
// deferred to the point of use and each caller decides how to degrade.
type Timestamp string

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// TS converts a time into its canonical Timestamp form.
func TS(t time.Time) Timestamp {
	if t.IsZero() {
		return ""
	}
	return Timestamp(t.UTC().Format(time.RFC3339))
}

// IsZero reports whether no instant was recorded.
func (t Timestamp) IsZero() bool {
	return strings.TrimSpace(string(t)) == ""
}

// Time parses the timestamp. Missing values and malformed values both return an error.
func (t Timestamp) Time() (time.Time, error) {
	raw := strings.TrimSpace(string(t))
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty timestamp")
	}
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}

// Valid returns the parsed time and whether parsing succeeded.
func (t Timestamp) Valid() (time.Time, bool) {
	parsed, err := t.Time()
	return parsed, err == nil
}
