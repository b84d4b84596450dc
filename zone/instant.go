package zone

import (
	"fmt"
	"math"
	"time"

	"github.com/ngrash/tzresolve/internal/unixtime"
)

// Instant is a point in time in milliseconds since 1970-01-01 00:00:00 UTC,
// or, where documented, a local wall-clock reading on the same scale.
type Instant int64

const (
	// InvalidInstant marks the absence of an instant.
	InvalidInstant Instant = math.MinInt64
	MinInstant     Instant = math.MinInt64 + 1
	MaxInstant     Instant = math.MaxInt64
)

// FromTime returns the instant of t.
func FromTime(t time.Time) Instant {
	return Instant(t.UnixMilli())
}

// Time returns i as a time.Time in UTC.
func (i Instant) Time() time.Time {
	return time.UnixMilli(int64(i)).UTC()
}

// Valid reports whether i is not InvalidInstant.
func (i Instant) Valid() bool {
	return i != InvalidInstant
}

func (i Instant) String() string {
	if !i.Valid() {
		return "invalid"
	}
	return i.Time().Format("2006-01-02T15:04:05.000Z")
}

// add returns i+ms, reporting false if the result leaves the valid range.
func (i Instant) add(ms int64) (Instant, bool) {
	s, ok := unixtime.Add(int64(i), ms)
	if !ok || Instant(s) == InvalidInstant {
		return 0, false
	}
	return Instant(s), true
}

// addClamped returns i+ms clipped to [MinInstant, MaxInstant].
func (i Instant) addClamped(ms int64) Instant {
	s, ok := i.add(ms)
	switch {
	case ok:
		return s
	case ms < 0:
		return MinInstant
	}
	return MaxInstant
}

// Offset is a difference from UTC in seconds, positive east of Greenwich.
type Offset int32

// InvalidOffset marks the absence of an offset.
const InvalidOffset Offset = math.MinInt32

func (o Offset) millis() int64 {
	return int64(o) * 1000
}

func (o Offset) String() string {
	if o == InvalidOffset {
		return "invalid"
	}
	sign := '+'
	s := int64(o)
	if s < 0 {
		sign, s = '-', -s
	}
	if s%60 != 0 {
		return fmt.Sprintf("%c%02d:%02d:%02d", sign, s/3600, s/60%60, s%60)
	}
	return fmt.Sprintf("%c%02d:%02d", sign, s/3600, s/60%60)
}
