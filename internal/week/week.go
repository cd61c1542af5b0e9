// Package week converts calendar dates to and from ISO-8601 week ids ("YYYY-Www").
package week

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var ErrInvalidFormat = errors.New("invalid week id")

var idPattern = regexp.MustCompile(`^(\d{4})-W(\d{2})$`)

// Of returns the ISO week id of the calendar date of t (in t's location).
func Of(t time.Time) string {
	year, w := t.ISOWeek()
	return Format(year, w)
}

// Format renders a week id with the week zero-padded so ids sort correctly as strings.
func Format(year, w int) string {
	return fmt.Sprintf("%04d-W%02d", year, w)
}

// Parse splits a week id into its ISO year and week number.
func Parse(id string) (year, w int, err error) {
	m := idPattern.FindStringSubmatch(id)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidFormat, id)
	}

	year, _ = strconv.Atoi(m[1])
	w, _ = strconv.Atoi(m[2])

	if w < 1 || w > 53 {
		return 0, 0, fmt.Errorf("%w: %q: week out of range", ErrInvalidFormat, id)
	}
	if w > WeeksInYear(year) {
		return 0, 0, fmt.Errorf("%w: %q: %d has only %d weeks", ErrInvalidFormat, id, year, WeeksInYear(year))
	}

	return year, w, nil
}

// Validate reports whether id is a well-formed week id.
func Validate(id string) error {
	_, _, err := Parse(id)
	return err
}

// WeeksInYear returns 52 or 53. December 28th always falls in the last ISO week.
func WeeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// Start returns the Monday (00:00 UTC) that opens the week.
func Start(id string) (time.Time, error) {
	year, w, err := Parse(id)
	if err != nil {
		return time.Time{}, err
	}
	return monday(year, w), nil
}

func monday(year, w int) time.Time {
	// January 4th is always in week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	week1 := jan4.AddDate(0, 0, -offset)
	return week1.AddDate(0, 0, (w-1)*7)
}

// Offset adds n weeks (n may be negative) to id, rolling across ISO year boundaries.
func Offset(id string, n int) (string, error) {
	start, err := Start(id)
	if err != nil {
		return "", err
	}
	return Of(start.AddDate(0, 0, n*7)), nil
}

// Compare orders two week ids by (year, week): -1, 0 or 1.
func Compare(a, b string) (int, error) {
	ay, aw, err := Parse(a)
	if err != nil {
		return 0, err
	}
	by, bw, err := Parse(b)
	if err != nil {
		return 0, err
	}

	switch {
	case ay < by:
		return -1, nil
	case ay > by:
		return 1, nil
	case aw < bw:
		return -1, nil
	case aw > bw:
		return 1, nil
	default:
		return 0, nil
	}
}
