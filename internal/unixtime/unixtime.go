// Package unixtime converts between proleptic Gregorian calendar dates and
// Unix time without going through time.Location.
//
// All arithmetic is on signed 64-bit day counts, so dates hundreds of
// millions of years away from the epoch are handled without overflow.
package unixtime

const (
	SecondsPerMinute = 60
	SecondsPerHour   = 60 * SecondsPerMinute
	SecondsPerDay    = 24 * SecondsPerHour

	MillisPerSecond = 1000
	MillisPerDay    = SecondsPerDay * MillisPerSecond

	daysPer400Years = 365*400 + 97
)

// DaysFromCivil returns the number of days from 1970-01-01 to the given date.
//
// The algorithm shifts the year to start in March so that the leap day is
// the last day of the year, then counts whole 400-year eras.
func DaysFromCivil(year int64, month, day int) int64 {
	y := year
	if month <= 2 {
		y--
	}
	era := floorDiv(y, 400)
	yoe := y - era*400                     // [0, 399]
	mp := int64((month + 9) % 12)          // March = 0
	doy := (153*mp+2)/5 + int64(day) - 1   // [0, 365]
	doe := yoe*365 + yoe/4 - yoe/100 + doy // [0, 146096]
	// 719468 is the number of days from 0000-03-01 to 1970-01-01.
	return era*daysPer400Years + doe - 719468
}

// CivilFromDays is the inverse of DaysFromCivil.
func CivilFromDays(days int64) (year int64, month, day int) {
	z := days + 719468
	era := floorDiv(z, daysPer400Years)
	doe := z - era*daysPer400Years
	yoe := (doe - doe/1460 + doe/36524 - doe/146096) / 365
	doy := doe - (365*yoe + yoe/4 - yoe/100)
	mp := (5*doy + 2) / 153
	day = int(doy - (153*mp+2)/5 + 1)
	month = int(mp + 3)
	if month > 12 {
		month -= 12
	}
	year = yoe + era*400
	if month <= 2 {
		year++
	}
	return year, month, day
}

// Weekday returns the day of the week of the given day number,
// where 0=Sunday, 1=Monday, ..., 6=Saturday.
func Weekday(days int64) int {
	// 1970-01-01 was a Thursday.
	return int(floorMod(days+4, 7))
}

// IsLeapYear determines if the year is a leap year.
func IsLeapYear(year int64) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// DaysInMonth returns the number of days in a given month for a specific year.
func DaysInMonth(month int, year int64) int {
	switch month {
	case 2:
		if IsLeapYear(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	}
	return 31
}

// YearOf returns the calendar year, in UTC, of the instant ms milliseconds
// after the epoch.
func YearOf(ms int64) int64 {
	y, _, _ := CivilFromDays(floorDiv(ms, MillisPerDay))
	return y
}

// Add returns a+b and whether the sum did not overflow.
func Add(a, b int64) (int64, bool) {
	c := a + b
	if (c > a) != (b > 0) {
		return c, false
	}
	return c, true
}

// Mul returns a*b and whether the product did not overflow.
func Mul(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	c := a * b
	if c/b != a || (a == -1 && b == -1<<63) || (b == -1 && a == -1<<63) {
		return c, false
	}
	return c, true
}

func floorDiv(a, b int64) int64 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b int64) int64 {
	return a - floorDiv(a, b)*b
}
