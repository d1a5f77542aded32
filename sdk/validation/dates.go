package validation

import (
	"fmt"
	"time"
)

// ParseFlexibleDate tries to parse a date string using the formats clients
// actually send: ISO dates, RFC3339 timestamps, and slash-separated forms.
func ParseFlexibleDate(dateStr string) (time.Time, error) {
	formats := []string{
		time.RFC3339,
		time.DateOnly,
		"01/02/2006",
		"2006/01/02",
		"01-02-2006",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, dateStr); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unable to parse date: %s", dateStr)
}
