package zone

import (
	"sort"

	"github.com/ngrash/tzresolve/internal/unixtime"
)

// maxListed bounds the number of transitions Transitions returns.
const maxListed = 10000

// DataAt returns the local time in effect at the UTC instant at. The At
// field of the result is the start of the period it describes, or
// MinInstant before the first transition. For InvalidInstant the result is
// not Valid.
func (t *Table) DataAt(at Instant) Data {
	if at == InvalidInstant {
		return invalidData
	}
	if t.posix != nil && (len(t.records) == 0 || at > t.lastAt()) {
		y := unixtime.YearOf(int64(at))
		ts := t.posixTransitions(y-1, y+1)
		i := sort.Search(len(ts), func(i int) bool { return ts[i].At > at })
		if i > 0 {
			return ts[i-1]
		}
	}
	i := sort.Search(len(t.records), func(i int) bool { return t.records[i].At > at })
	if i == 0 {
		return dataFromRule(MinInstant, t.preZone)
	}
	return t.recordData(i - 1)
}

// NextTransition returns the first transition strictly after the UTC
// instant after, or invalid Data if there is none.
func (t *Table) NextTransition(after Instant) Data {
	if after == InvalidInstant || after == MaxInstant {
		return invalidData
	}
	if t.posix != nil && (len(t.records) == 0 || after >= t.lastAt()) {
		y := unixtime.YearOf(int64(after))
		for _, d := range t.posixTransitions(y, y+1) {
			if d.At > after {
				return d
			}
		}
		return invalidData
	}
	i := sort.Search(len(t.records), func(i int) bool { return t.records[i].At > after })
	if i == len(t.records) {
		return invalidData
	}
	return t.recordData(i)
}

// PreviousTransition returns the last transition strictly before the UTC
// instant before, or invalid Data if there is none.
func (t *Table) PreviousTransition(before Instant) Data {
	if before == InvalidInstant || before <= MinInstant {
		return invalidData
	}
	if t.posix != nil && (len(t.records) == 0 || before > t.lastAt()) {
		y := unixtime.YearOf(int64(before))
		ts := t.posixTransitions(y-1, y)
		i := sort.Search(len(ts), func(i int) bool { return ts[i].At >= before })
		// A permanent rule dated at the floor is not a transition.
		if i > 0 && ts[i-1].At > t.floor() {
			return ts[i-1]
		}
	}
	i := sort.Search(len(t.records), func(i int) bool { return t.records[i].At >= before })
	if i == 0 {
		return invalidData
	}
	return t.recordData(i - 1)
}

// Transitions returns the transitions in (from, to], at most a fixed
// number of them.
func (t *Table) Transitions(from, to Instant) []Data {
	var out []Data
	for d := t.NextTransition(from); d.Valid() && d.At <= to && len(out) < maxListed; d = t.NextTransition(d.At) {
		out = append(out, d)
	}
	return out
}

func (t *Table) lastAt() Instant {
	return t.records[len(t.records)-1].At
}

// floor is the instant from which the trailing rule applies.
func (t *Table) floor() Instant {
	if len(t.records) == 0 {
		return MinInstant
	}
	return t.lastAt()
}

func (t *Table) recordData(i int) Data {
	r := t.records[i]
	return dataFromRule(r.At, t.rules[r.Rule])
}

// posixTransitions evaluates the trailing rule for the years from through
// to. Only transitions after the last record are kept; permanent ones are
// dated at the last record, or at MinInstant if there are no records.
func (t *Table) posixTransitions(from, to int64) []Data {
	floor := t.floor()
	var out []Data
	for y := from; y <= to; y++ {
		for _, tr := range t.posix.Transitions(y) {
			d := Data{
				At:             Instant(tr.At),
				Offset:         Offset(tr.Offset),
				StandardOffset: Offset(tr.StandardOffset),
				DaylightOffset: Offset(tr.DaylightOffset),
				Abbreviation:   tr.Abbreviation,
			}
			if tr.Permanent {
				d.At = floor
			} else if d.At <= floor {
				continue
			}
			out = append(out, d)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].At < out[j].At })
	// Keep the last of several transitions at the same instant.
	n := 0
	for i, d := range out {
		if i+1 < len(out) && out[i+1].At == d.At {
			continue
		}
		out[n] = d
		n++
	}
	return out[:n]
}
