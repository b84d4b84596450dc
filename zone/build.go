package zone

import (
	"fmt"

	"github.com/ngrash/tzresolve/internal/unixtime"
	"github.com/ngrash/tzresolve/posixtz"
	"github.com/ngrash/tzresolve/tzif"
)

// ParseError reports a zone whose data could not be turned into a Table.
// Err wraps one of the tzif sentinel errors or a *posixtz.SyntaxError.
type ParseError struct {
	ID  string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("zone %q: %v", e.ID, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Parse decodes, validates and builds the TZif file b.
func Parse(id string, b []byte) (*Table, error) {
	d, err := tzif.Decode(b)
	if err != nil {
		return nil, &ParseError{ID: id, Err: err}
	}
	return build(id, d)
}

// FromTZif validates and builds the table of decoded TZif data. Leap-second
// records and the standard/wall and UT/local indicators are ignored.
func FromTZif(id string, d tzif.Data) (*Table, error) {
	if err := tzif.Validate(d); err != nil {
		return nil, &ParseError{ID: id, Err: err}
	}
	return build(id, d)
}

func build(id string, d tzif.Data) (*Table, error) {
	block := d.Block()
	t := &Table{id: id}

	if tz := string(d.Footer.TZString); tz != "" {
		r, err := posixtz.Parse(tz)
		if err != nil {
			return nil, &ParseError{ID: id, Err: fmt.Errorf("footer: %w", err)}
		}
		t.posix = &r
		t.hasDST = r.HasDST()
	}

	types := block.LocalTimeTypes
	abbr := func(lt tzif.LocalTimeType) string {
		s, _ := block.Designation(lt.Idx)
		return s
	}

	// The combined offset of a local time type does not say how much of it
	// is daylight saving time, so track the standard offset as transitions
	// go by. It starts out as the first standard time type in use.
	stdOffset := types[0].Utoff
	for _, lt := range types {
		if !lt.Dst {
			stdOffset = lt.Utoff
			break
		}
	}
	t.preZone = TransitionRule{StandardOffset: Offset(types[0].Utoff), Abbreviation: abbr(types[0])}
	if types[0].Dst {
		t.preZone.StandardOffset = Offset(stdOffset)
		t.preZone.DaylightOffset = Offset(types[0].Utoff - stdOffset)
	}
	for _, idx := range block.TransitionTypes {
		if !types[idx].Dst {
			stdOffset = types[idx].Utoff
			break
		}
	}

	var lastDSTOffset int32 = 3600
	for i, idx := range block.TransitionTypes {
		lt := types[idx]
		if !lt.Dst {
			stdOffset = lt.Utoff
		} else if lt.Utoff != stdOffset+lastDSTOffset {
			stdOffset = recoverStdOffset(types, block.TransitionTypes[i+1:], lt.Utoff, stdOffset, lastDSTOffset)
			lastDSTOffset = lt.Utoff - stdOffset
		}
		rule := TransitionRule{
			StandardOffset: Offset(stdOffset),
			DaylightOffset: Offset(lt.Utoff - stdOffset),
			Abbreviation:   abbr(lt),
		}
		if rule.DaylightOffset != 0 {
			t.hasDST = true
		}

		at, ok := unixtime.Mul(block.TransitionTimes[i], unixtime.MillisPerSecond)
		switch {
		case !ok && block.TransitionTimes[i] < 0, ok && Instant(at) < MinInstant:
			// Before any representable instant; the rule is in effect
			// from the start of time.
			t.preZone = rule
			continue
		case !ok:
			// After any representable instant.
			continue
		}
		t.records = append(t.records, Record{At: Instant(at), Rule: t.ruleIndex(rule)})
	}
	return t, nil
}

// recoverStdOffset chooses the standard offset in effect during a daylight
// saving time type of combined offset utoff whose daylight component does
// not match the previous one. It looks at the next standard time
// transition in types and prefers, in order: keeping the current standard
// offset, the standard offset implied by the previous daylight component,
// a one-hour daylight component from either end, and the daylight
// component closest to the previous one with positive ones preferred.
func recoverStdOffset(types []tzif.LocalTimeType, following []uint8, utoff, stdOffset, lastDSTOffset int32) int32 {
	inferred := utoff - lastDSTOffset
	for _, idx := range following {
		next := types[idx]
		if next.Dst {
			continue
		}
		newStd := next.Utoff
		switch {
		case newStd == stdOffset:
		case newStd == inferred:
			stdOffset = newStd
		case utoff-3600 == stdOffset:
		case utoff-3600 == newStd:
			stdOffset = newStd
		case newStd < utoff:
			if stdOffset >= utoff || abs(newStd-inferred) < abs(stdOffset-inferred) {
				stdOffset = newStd
			}
		default:
			if stdOffset >= utoff && abs(newStd-inferred) < abs(stdOffset-inferred) {
				stdOffset = newStd
			}
		}
		break
	}
	return stdOffset
}

func abs(n int32) int32 {
	if n < 0 {
		return -n
	}
	return n
}

// ruleIndex returns the index of r in t.rules, appending it if needed.
func (t *Table) ruleIndex(r TransitionRule) int {
	for i, have := range t.rules {
		if have == r {
			return i
		}
	}
	t.rules = append(t.rules, r)
	return len(t.rules) - 1
}

// FromPosix builds a table with no explicit transitions from a POSIX TZ
// rule such as "CET-1CEST,M3.5.0,M10.5.0/3".
func FromPosix(id, rule string) (*Table, error) {
	r, err := posixtz.Parse(rule)
	if err != nil {
		return nil, &ParseError{ID: id, Err: err}
	}
	return &Table{
		id:      id,
		preZone: TransitionRule{StandardOffset: Offset(r.StdOffset), Abbreviation: r.StdName},
		posix:   &r,
		hasDST:  r.HasDST(),
	}, nil
}

// Fixed returns a table with a constant offset.
func Fixed(id string, offset Offset, abbr string) *Table {
	return &Table{
		id:      id,
		preZone: TransitionRule{StandardOffset: offset, Abbreviation: abbr},
	}
}

var utc = Fixed("UTC", 0, "UTC")

// UTC returns the table of Coordinated Universal Time.
func UTC() *Table {
	return utc
}
