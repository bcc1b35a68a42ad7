package utils

import (
	"strconv"
	"time"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// AddMonthsClamped adds n calendar months to t. When the day of month does not
// exist in the target month the result is the last day of that month
// (Jan 31 + 1 month = Feb 29 in a leap year). Clock time and location are kept.
func AddMonthsClamped(t time.Time, n int) time.Time {
	year, month, day := t.Date()
	hour, min, sec := t.Clock()

	firstOfTarget := time.Date(year, month+time.Month(n), 1, hour, min, sec, t.Nanosecond(), t.Location())
	if last := DaysIn(firstOfTarget.Year(), firstOfTarget.Month()); day > last {
		day = last
	}

	return time.Date(firstOfTarget.Year(), firstOfTarget.Month(), day, hour, min, sec, t.Nanosecond(), t.Location())
}

// DaysIn returns the number of days in the given month
func DaysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Offset converts a 1-based page number and page size into a row offset
func Offset(page, limit int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * limit
}

// TotalPages returns how many pages of size limit are needed for total rows
func TotalPages(total, limit int) int {
	if limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

// ParsePagination reads page and limit query values, falling back to defaults
// for anything missing or out of range
func ParsePagination(pageParam, limitParam string) (page, limit int) {
	page, err := strconv.Atoi(pageParam)
	if err != nil || page < 1 {
		page = DefaultPage
	}

	limit, err = strconv.Atoi(limitParam)
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	return page, limit
}
