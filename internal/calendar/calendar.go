// Package calendar answers working-day questions against a fixed bank holiday table.
package calendar

import (
	"fmt"
	"time"

	"payfile-synth/internal/domain"
)

const dayLayout = "2006-01-02"

// Calendar is an immutable working-day calendar.
type Calendar struct {
	holidays map[int]map[string]struct{}
}

// New builds a calendar from the built-in England & Wales table.
func New() *Calendar {
	return NewWithHolidays(bankHolidays)
}

// NewWithHolidays builds a calendar from a custom table keyed by year.
func NewWithHolidays(table map[int][]string) *Calendar {
	c := &Calendar{holidays: make(map[int]map[string]struct{}, len(table))}
	for year, days := range table {
		set := make(map[string]struct{}, len(days))
		for _, d := range days {
			set[d] = struct{}{}
		}
		c.holidays[year] = set
	}
	return c
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// IsWeekend reports whether date falls on a Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsBankHoliday reports whether date is a listed bank holiday.
func (c *Calendar) IsBankHoliday(date time.Time) (bool, error) {
	year, ok := c.holidays[date.Year()]
	if !ok {
		return false, fmt.Errorf("%w: %d", domain.ErrHolidayTableMissing, date.Year())
	}
	_, holiday := year[date.Format(dayLayout)]
	return holiday, nil
}

// IsWorkingDay reports whether date is neither a weekend day nor a bank holiday.
func (c *Calendar) IsWorkingDay(date time.Time) (bool, error) {
	if IsWeekend(date) {
		return false, nil
	}
	holiday, err := c.IsBankHoliday(date)
	if err != nil {
		return false, err
	}
	return !holiday, nil
}

// AddWorkingDays advances date by n working days. For n == 0 the date is
// returned unchanged, even when it is not itself a working day.
func (c *Calendar) AddWorkingDays(date time.Time, n int) (time.Time, error) {
	if n < 0 {
		return time.Time{}, fmt.Errorf("working day offset must not be negative, got %d", n)
	}
	current := Day(date)
	for added := 0; added < n; {
		current = current.AddDate(0, 0, 1)
		working, err := c.IsWorkingDay(current)
		if err != nil {
			return time.Time{}, err
		}
		if working {
			added++
		}
	}
	return current, nil
}

// WorkingDaysBetween counts the working-day increments needed to get from
// from to to. It returns -1 when to is before from.
func (c *Calendar) WorkingDaysBetween(from, to time.Time) (int, error) {
	start, end := Day(from), Day(to)
	if end.Before(start) {
		return -1, nil
	}
	count := 0
	for current := start; current.Before(end); {
		current = current.AddDate(0, 0, 1)
		working, err := c.IsWorkingDay(current)
		if err != nil {
			return 0, err
		}
		if working {
			count++
		}
	}
	return count, nil
}
