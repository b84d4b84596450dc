package posixtz

import "github.com/ngrash/tzresolve/internal/unixtime"

// dayOf returns the day d falls on in year, in days since the Unix epoch.
func (d DateRule) dayOf(year int64) int64 {
	jan1 := unixtime.DaysFromCivil(year, 1, 1)
	switch d.Kind {
	case Julian:
		// February 29 is never counted, so days after it shift by one in
		// leap years.
		n := int64(d.Day - 1)
		if unixtime.IsLeapYear(year) && d.Day > 31+28 {
			n++
		}
		return jan1 + n
	case ZeroBasedDay:
		return jan1 + int64(d.Day)
	}
	if d.Week == 5 {
		return lastWeekdayOfMonth(year, d.Month, d.Weekday)
	}
	return nthWeekdayOfMonth(year, d.Month, d.Week, d.Weekday)
}

// nthWeekdayOfMonth finds the n-th (1-based) instance of a given weekday in
// a specific month and year.
func nthWeekdayOfMonth(year int64, month, n, weekday int) int64 {
	first := unixtime.DaysFromCivil(year, month, 1)
	offset := (weekday - unixtime.Weekday(first) + 7) % 7
	return first + int64(offset+(n-1)*7)
}

// lastWeekdayOfMonth finds the last instance of a given weekday in a
// specific month and year.
func lastWeekdayOfMonth(year int64, month, weekday int) int64 {
	last := unixtime.DaysFromCivil(year, month, unixtime.DaysInMonth(month, year))
	// Calculate how many days to subtract from the last day to get the last
	// instance of the given weekday.
	offset := (unixtime.Weekday(last) - weekday + 7) % 7
	return last - int64(offset)
}
