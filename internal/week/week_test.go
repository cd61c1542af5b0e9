package week

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func TestOf(t *testing.T) {
	tests := []struct {
		name string
		at   time.Time
		want string
	}{
		{"monday opening 2026 week 1 falls in december", date(2025, time.December, 29), "2026-W01"},
		{"new year thursday", date(2026, time.January, 1), "2026-W01"},
		{"sunday closes the week", date(2026, time.January, 4), "2026-W01"},
		{"next monday", date(2026, time.January, 5), "2026-W02"},
		{"early january belongs to previous iso year", date(2021, time.January, 1), "2020-W53"},
		{"single digit week is padded", date(2026, time.March, 2), "2026-W10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Of(tt.at))
		})
	}
}

func TestParse_RejectsMalformedIDs(t *testing.T) {
	for _, id := range []string{"", "2026-W9", "2026-W00", "2026-W54", "26-W01", "2026W01", "2026-w01", "2025-W53"} {
		_, _, err := Parse(id)
		assert.ErrorIs(t, err, ErrInvalidFormat, "id %q", id)
	}
}

func TestParse_AcceptsWeek53InLongYears(t *testing.T) {
	year, w, err := Parse("2026-W53")
	require.NoError(t, err)
	assert.Equal(t, 2026, year)
	assert.Equal(t, 53, w)
}

func TestWeeksInYear(t *testing.T) {
	assert.Equal(t, 53, WeeksInYear(2020))
	assert.Equal(t, 52, WeeksInYear(2025))
	assert.Equal(t, 53, WeeksInYear(2026))
	assert.Equal(t, 52, WeeksInYear(2027))
}

func TestStart(t *testing.T) {
	start, err := Start("2026-W01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC), start)
	assert.Equal(t, time.Monday, start.Weekday())

	start, err = Start("2027-W01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2027, time.January, 4, 0, 0, 0, 0, time.UTC), start)
}

func TestOffset(t *testing.T) {
	tests := []struct {
		id   string
		n    int
		want string
	}{
		{"2026-W01", 3, "2026-W04"},
		{"2026-W01", 0, "2026-W01"},
		{"2025-W52", 1, "2026-W01"},
		{"2026-W52", 1, "2026-W53"},
		{"2026-W53", 1, "2027-W01"},
		{"2026-W01", -1, "2025-W52"},
		{"2020-W50", 5, "2021-W02"},
		{"2026-W10", 52, "2027-W09"},
	}

	for _, tt := range tests {
		got, err := Offset(tt.id, tt.n)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "Offset(%q, %d)", tt.id, tt.n)
	}

	_, err := Offset("bogus", 1)
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestCompare(t *testing.T) {
	c, err := Compare("2026-W09", "2026-W10")
	require.NoError(t, err)
	assert.Equal(t, -1, c)

	c, err = Compare("2027-W01", "2026-W53")
	require.NoError(t, err)
	assert.Equal(t, 1, c)

	c, err = Compare("2026-W05", "2026-W05")
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	_, err = Compare("2026-W9", "2026-W10")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}
