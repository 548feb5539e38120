// Package season handles season labels and their date bounds.
package season

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

var labelRe = regexp.MustCompile(`^(\d{4})-(\d{2})$`)

// Bounds returns the inclusive date range a season label covers. A season
// like "2024-25" runs from October 1 of the first year through September 30
// of the next, which covers preseason through the finals and summer
// makeup windows.
func Bounds(label string) (start, end time.Time, err error) {
	m := labelRe.FindStringSubmatch(label)
	if m == nil {
		return time.Time{}, time.Time{}, fmt.Errorf("season must look like 2024-25, got %q", label)
	}
	year, _ := strconv.Atoi(m[1])
	suffix, _ := strconv.Atoi(m[2])
	if (year+1)%100 != suffix {
		return time.Time{}, time.Time{}, fmt.Errorf("season %q: years are not consecutive", label)
	}

	start = time.Date(year, time.October, 1, 0, 0, 0, 0, time.UTC)
	end = time.Date(year+1, time.September, 30, 0, 0, 0, 0, time.UTC)
	return start, end, nil
}

// ForDate returns the season label a date falls in. Dates from October on
// belong to the season starting that year; earlier dates belong to the
// season that started the previous year.
func ForDate(day time.Time) string {
	year := day.Year()
	if day.Month() < time.October {
		year--
	}
	return fmt.Sprintf("%d-%02d", year, (year+1)%100)
}

// ParseDay parses a YYYY-MM-DD date in UTC.
func ParseDay(s string) (time.Time, error) {
	day, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("date must look like 2024-12-25, got %q", s)
	}
	return day.UTC(), nil
}
