package posixtz

import (
	"math"

	"github.com/ngrash/tzresolve/internal/unixtime"
)

// Boundary is the instant, in milliseconds since the epoch, at which
// permanent transitions are dated: the earliest representable instant.
const Boundary = math.MinInt64 + 1

// Years outside [MinYear, MaxYear] are not evaluated; their transitions
// would not be representable in milliseconds.
const (
	MinYear = -292_000_000
	MaxYear = 292_000_000
)

// Transition is a change of local time computed from a Rule.
type Transition struct {
	// At is the UTC instant of the change in milliseconds since the epoch.
	At int64
	// Offset is the total offset from UTC in effect from At, in seconds.
	Offset         int32
	StandardOffset int32
	DaylightOffset int32
	Abbreviation   string
	// Permanent marks a year in which local time never changes. At is
	// Boundary in that case.
	Permanent bool
}

// Transitions returns the transitions of r in year, ordered by instant.
//
// The start of daylight saving time is read as a standard time clock and
// the end as a daylight saving time clock. When both readings of a year lie
// outside it, so that the year is entirely daylight saving or entirely
// standard time, and for rules without daylight saving time, a single
// permanent transition is returned.
func (r Rule) Transitions(year int64) []Transition {
	if year < MinYear || year > MaxYear {
		return nil
	}
	std := Transition{
		Offset:         r.StdOffset,
		StandardOffset: r.StdOffset,
		Abbreviation:   r.StdName,
	}
	if !r.HasDST() {
		std.At, std.Permanent = Boundary, true
		return []Transition{std}
	}
	dst := Transition{
		Offset:         r.DSTOffset,
		StandardOffset: r.StdOffset,
		DaylightOffset: r.DSTOffset - r.StdOffset,
		Abbreviation:   r.DSTName,
	}

	// Local wall-clock readings, in milliseconds.
	startLocal := localMillis(r.Start.dayOf(year), r.StartClock)
	endLocal := localMillis(r.End.dayOf(year), r.EndClock)
	yearStart := localMillis(unixtime.DaysFromCivil(year, 1, 1), 0)
	yearEnd := localMillis(unixtime.DaysFromCivil(year+1, 1, 1), 0)

	if startLocal < endLocal {
		if startLocal <= yearStart && endLocal >= yearEnd {
			dst.At, dst.Permanent = Boundary, true
			return []Transition{dst}
		}
	} else if endLocal <= yearStart && startLocal >= yearEnd {
		std.At, std.Permanent = Boundary, true
		return []Transition{std}
	}

	dst.At = startLocal - int64(r.StdOffset)*unixtime.MillisPerSecond
	std.At = endLocal - int64(r.DSTOffset)*unixtime.MillisPerSecond
	if std.At < dst.At {
		return []Transition{std, dst}
	}
	return []Transition{dst, std}
}

// localMillis returns the local wall-clock reading clock seconds after the
// start of day as milliseconds. Within [MinYear, MaxYear] it cannot
// overflow.
func localMillis(day int64, clock int32) int64 {
	return (day*unixtime.SecondsPerDay + int64(clock)) * unixtime.MillisPerSecond
}
