package tasks

import (
	"errors"
	"regexp"
	"strings"
	"time"
)

// DateLayout is the user-facing date format, DD.MM.YYYY HH:MM.
const DateLayout = "02.01.2006 15:04"

var (
	// ErrInvalidDate is returned for input that is not a DateLayout date in 2000-2099.
	ErrInvalidDate = errors.New("tasks: invalid date")
	// ErrEndNotAfterStart is returned when the end is not strictly after the start.
	ErrEndNotAfterStart = errors.New("tasks: end must be after start")
)

var dateRe = regexp.MustCompile(`^(0[1-9]|[12][0-9]|3[01])\.(0[1-9]|1[0-2])\.20([0-9][0-9]) ([0-1][0-9]|2[0-3]):([0-5][0-9])$`)

// ParseDate parses s as a UTC time in DateLayout.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !dateRe.MatchString(s) {
		return time.Time{}, ErrInvalidDate
	}
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		// e.g. 31.02
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ValidateRange requires end to be strictly after start.
func ValidateRange(start, end time.Time) error {
	if !end.After(start) {
		return ErrEndNotAfterStart
	}
	return nil
}

// FormatDate renders t in DateLayout, UTC.
func FormatDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}
