package tasks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	got, err := ParseDate(" 01.01.2025 10:00 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC), got)

	for _, bad := range []string{
		"2025-01-01 10:00",
		"01.01.1999 10:00",
		"1.1.2025 10:00",
		"01.13.2025 10:00",
		"01.01.2025 24:00",
		"31.02.2025 10:00",
		"01.01.2025 10:00 extra",
		"",
	} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrInvalidDate, bad)
	}
}

func TestValidateRange(t *testing.T) {
	start, err := ParseDate("01.01.2025 10:00")
	require.NoError(t, err)
	before, _ := ParseDate("01.01.2025 09:00")
	after, _ := ParseDate("01.01.2025 11:00")

	assert.ErrorIs(t, ValidateRange(start, before), ErrEndNotAfterStart)
	assert.ErrorIs(t, ValidateRange(start, start), ErrEndNotAfterStart)
	assert.NoError(t, ValidateRange(start, after))
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "05.03.2026 07:09", FormatDate(time.Date(2026, 3, 5, 7, 9, 0, 0, time.UTC)))
}
