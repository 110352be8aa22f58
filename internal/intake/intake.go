// Package intake handles ingestion of citizen reports from files and
// requests: decoding, sanitizing, and validating them before triage.
package intake

import (
	"errors"
	"fmt"
	"html"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// ErrMissingField is returned when a required report field is empty.
	ErrMissingField = errors.New("missing required field")
	// ErrInvalidElapsed is returned for negative or non-finite elapsed times.
	ErrInvalidElapsed = errors.New("invalid elapsed time")
)

// Record is one incoming report before triage.
type Record struct {
	Title       string
	Description string
	Location    string
	CreatedAt   time.Time // zero if unknown

	// HoursElapsed overrides CreatedAt when set.
	HoursElapsed *float64
}

// strict strips all markup; citizen text is stored and displayed as plain text.
var strict = bluemonday.StrictPolicy()

// markup matches a tag or comment starting at a '<'.
var markup = regexp.MustCompile(`^(?:</?[A-Za-z][A-Za-z0-9:-]*(?:\s[^<>]*)?/?>|<!--(?s:.*?)-->)`)

// Sanitize removes HTML from s and trims surrounding whitespace. A '<' that
// does not open a tag or comment is kept as text ("level<drain" survives).
// The policy escapes entities on output; they are decoded again since the
// result is plain text, not markup.
func Sanitize(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(escapeStray(s))))
}

// escapeStray entity-escapes every '<' in s that markup does not match.
func escapeStray(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		if s[i] == '<' && !markup.MatchString(s[i:]) {
			b.WriteString("&lt;")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// Clean returns a copy of rec with every text field sanitized.
func Clean(rec Record) Record {
	rec.Title = Sanitize(rec.Title)
	rec.Description = Sanitize(rec.Description)
	rec.Location = Sanitize(rec.Location)
	return rec
}

// Validate checks that a record has a title and a description.
func Validate(rec Record) error {
	if strings.TrimSpace(rec.Title) == "" {
		return fmt.Errorf("title: %w", ErrMissingField)
	}
	if strings.TrimSpace(rec.Description) == "" {
		return fmt.Errorf("description: %w", ErrMissingField)
	}
	return nil
}

// ValidateHours rejects elapsed times the scorer is not defined for.
func ValidateHours(h float64) error {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return fmt.Errorf("%w: %v", ErrInvalidElapsed, h)
	}
	if h < 0 {
		return fmt.Errorf("%w: %v hours is negative", ErrInvalidElapsed, h)
	}
	return nil
}

// Elapsed returns how many hours the report has been open at now. An explicit
// HoursElapsed wins; a record with neither field is treated as brand new.
func Elapsed(rec Record, now time.Time) (float64, error) {
	var h float64
	switch {
	case rec.HoursElapsed != nil:
		h = *rec.HoursElapsed
	case !rec.CreatedAt.IsZero():
		h = now.Sub(rec.CreatedAt).Hours()
	}
	if err := ValidateHours(h); err != nil {
		return 0, err
	}
	return h, nil
}

// ParseTimestamp accepts RFC 3339 timestamps plus the two plain layouts
// spreadsheets tend to export. Empty input yields the zero time.
func ParseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
