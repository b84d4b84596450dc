// Package posixtz parses and evaluates POSIX TZ rule strings such as
// "CET-1CEST,M3.5.0,M10.5.0/3", as found in the footer of version 2+ TZif
// files and in the TZ environment variable.
//
// Offsets are stored in seconds east of UTC, the inverse of the sign used
// in the rule text.
package posixtz

import (
	"fmt"
	"strings"
)

// DateKind identifies the form of a DateRule.
type DateKind int

const (
	// MonthWeekDay is Mm.w.d: day d (0=Sunday) of week w (1-5, 5 meaning
	// the last) of month m.
	MonthWeekDay DateKind = iota
	// Julian is Jn: day n (1-365) of the year, never counting February 29.
	Julian
	// ZeroBasedDay is n: day n (0-365) of the year, counting February 29.
	ZeroBasedDay
)

// DateRule is the date part of a DST start or end rule.
type DateRule struct {
	Kind DateKind

	// Month, Week and Weekday are set for MonthWeekDay.
	Month   int
	Week    int
	Weekday int

	// Day is set for Julian and ZeroBasedDay.
	Day int
}

func (d DateRule) String() string {
	switch d.Kind {
	case Julian:
		return fmt.Sprintf("J%d", d.Day)
	case ZeroBasedDay:
		return fmt.Sprintf("%d", d.Day)
	}
	return fmt.Sprintf("M%d.%d.%d", d.Month, d.Week, d.Weekday)
}

// DefaultClock is the local time of day of a transition when the rule
// does not name one.
const DefaultClock = 2 * secondsPerHour

const (
	secondsPerMinute = 60
	secondsPerHour   = 60 * secondsPerMinute
)

// Rule is a parsed POSIX TZ string.
type Rule struct {
	StdName   string
	StdOffset int32

	// DSTName is empty for zones without daylight saving time, in which
	// case the remaining fields are zero.
	DSTName   string
	DSTOffset int32

	Start, End DateRule
	// StartClock and EndClock are the local wall-clock times of the
	// transitions in seconds after midnight of the rule's day. They may be
	// negative or exceed a day.
	StartClock, EndClock int32
}

// HasDST reports whether r describes daylight saving time.
func (r Rule) HasDST() bool {
	return r.DSTName != ""
}

// String formats r in canonical POSIX form. Parse(r.String()) returns r.
func (r Rule) String() string {
	var b strings.Builder
	writeName(&b, r.StdName)
	writeOffset(&b, -r.StdOffset)
	if !r.HasDST() {
		return b.String()
	}
	writeName(&b, r.DSTName)
	if r.DSTOffset != r.StdOffset+secondsPerHour {
		writeOffset(&b, -r.DSTOffset)
	}
	for _, part := range []struct {
		date  DateRule
		clock int32
	}{{r.Start, r.StartClock}, {r.End, r.EndClock}} {
		b.WriteByte(',')
		b.WriteString(part.date.String())
		if part.clock != DefaultClock {
			b.WriteByte('/')
			writeOffset(&b, part.clock)
		}
	}
	return b.String()
}

func writeName(b *strings.Builder, name string) {
	for _, c := range name {
		if !isAlpha(byte(c)) {
			b.WriteString("<" + name + ">")
			return
		}
	}
	b.WriteString(name)
}

func writeOffset(b *strings.Builder, secs int32) {
	if secs < 0 {
		b.WriteByte('-')
		secs = -secs
	}
	h, m, s := secs/secondsPerHour, secs/secondsPerMinute%60, secs%60
	fmt.Fprintf(b, "%d", h)
	if m != 0 || s != 0 {
		fmt.Fprintf(b, ":%02d", m)
	}
	if s != 0 {
		fmt.Fprintf(b, ":%02d", s)
	}
}
