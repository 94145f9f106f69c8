package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var ErrUnrecognizedDate = errors.New("unrecognized date")

// ParseDate tries each layout in order and returns the calendar date at 00:00 UTC.
// The wall-clock date is kept as written; any zone in the input is not converted.
// Upper-case month names ("05-OCT-23") are retried in title case.
func ParseDate(raw string, layouts ...string) (time.Time, error) {
	s := strings.Join(strings.Fields(raw), " ")
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrUnrecognizedDate)
	}

	candidates := []string{s}
	if titled := cases.Title(language.English).String(strings.ToLower(s)); titled != s {
		candidates = append(candidates, titled)
	}

	for _, c := range candidates {
		for _, layout := range layouts {
			t, err := time.Parse(layout, c)
			if err != nil {
				continue
			}

			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrUnrecognizedDate, raw)
}

// DateOf returns the calendar date of t in its own location, at 00:00 UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
