// Package todo holds the task list: task records, validation, and the store.
package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// Text length bounds, counted in characters after trimming.
const (
	MinTextLength = 3
	MaxTextLength = 255
)

// DeadlineLayout is the canonical stored form of a deadline.
const DeadlineLayout = "2006-01-02T15:04"

const deadlineLayoutSeconds = "2006-01-02T15:04:05"

// Task represents a single entry in the list.
type Task struct {
	ID       int64  `json:"id"`
	Text     string `json:"text"`
	Deadline string `json:"deadline"`
}

// HasDeadline returns true if the task carries a deadline.
func (t Task) HasDeadline() bool {
	return t.Deadline != ""
}

// DeadlineTime parses the stored deadline in local time.
// It returns false when the deadline is empty or unparseable.
func (t Task) DeadlineTime() (time.Time, bool) {
	if t.Deadline == "" {
		return time.Time{}, false
	}
	d, err := parseDeadlineTime(t.Deadline)
	if err != nil {
		return time.Time{}, false
	}
	return d, true
}

// Validation failures. The messages are shown to the user as-is.
var (
	ErrTextTooShort    = errors.New("text must be at least 3 characters")
	ErrTextTooLong     = errors.New("text must be at most 255 characters")
	ErrDeadlineInvalid = errors.New("deadline must be empty or in the future")
)

// ErrTaskNotFound is returned by Update when no task has the given id.
var ErrTaskNotFound = errors.New("task not found")

// ValidationError represents a rejected text or deadline value.
type ValidationError struct {
	Field string // "text" or "deadline"
	Value string // offending input, trimmed
	Err   error  // one of the Err* sentinels
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// Validate checks text and deadline and returns their accepted forms:
// the trimmed text and the canonical deadline ("" when absent).
func Validate(text, deadline string, now time.Time) (string, string, error) {
	trimmed := strings.TrimSpace(text)
	n := utf8.RuneCountInString(trimmed)
	if n < MinTextLength {
		return "", "", &ValidationError{Field: "text", Value: trimmed, Err: ErrTextTooShort}
	}
	if n > MaxTextLength {
		return "", "", &ValidationError{Field: "text", Value: trimmed, Err: ErrTextTooLong}
	}

	canonical, err := ParseDeadline(deadline, now)
	if err != nil {
		return "", "", err
	}
	return trimmed, canonical, nil
}

// ParseDeadline validates a deadline input and returns its canonical form.
// Empty input is valid and yields "". Anything else must parse and be
// strictly after now.
func ParseDeadline(s string, now time.Time) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	d, err := parseDeadlineTime(s)
	if err != nil {
		return "", &ValidationError{Field: "deadline", Value: s, Err: ErrDeadlineInvalid}
	}
	// Compare what will be stored: the canonical form has no sub-second part.
	d = d.Truncate(time.Second)
	if !d.After(now) {
		return "", &ValidationError{Field: "deadline", Value: s, Err: ErrDeadlineInvalid}
	}
	return FormatDeadline(d), nil
}

// FormatDeadline renders t in the canonical stored form, in local time.
func FormatDeadline(t time.Time) string {
	t = t.In(time.Local)
	if t.Second() != 0 {
		return t.Format(deadlineLayoutSeconds)
	}
	return t.Format(DeadlineLayout)
}

// inputLayouts are tried in order; all but RFC 3339 are read as local time.
var inputLayouts = []string{
	DeadlineLayout,
	deadlineLayoutSeconds,
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDeadlineTime(s string) (time.Time, error) {
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unrecognized deadline %q", s)
	}
	return t.In(time.Local), nil
}
