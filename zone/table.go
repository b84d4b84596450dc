// Package zone models the transitions of a time zone and answers queries
// against them: the offset in effect at a UTC instant, the neighbouring
// transitions, and the UTC instant of a local wall-clock reading.
//
// A Table is built once from TZif data or a POSIX TZ rule and is immutable
// afterwards. All methods are safe for concurrent use.
package zone

import (
	"slices"

	"github.com/ngrash/tzresolve/posixtz"
)

// TransitionRule is the local time in effect after a transition.
type TransitionRule struct {
	StandardOffset Offset
	// DaylightOffset is added to StandardOffset while daylight saving time
	// is in effect. It is zero for standard time and may be negative.
	DaylightOffset Offset
	Abbreviation   string
}

// Offset returns the total offset from UTC.
func (r TransitionRule) Offset() Offset {
	return r.StandardOffset + r.DaylightOffset
}

// Record is an explicit transition: from At on, Rules()[Rule] applies.
type Record struct {
	At   Instant
	Rule int
}

// Data describes the local time in effect from At on.
type Data struct {
	At             Instant
	Offset         Offset
	StandardOffset Offset
	DaylightOffset Offset
	Abbreviation   string
}

var invalidData = Data{
	At:             InvalidInstant,
	Offset:         InvalidOffset,
	StandardOffset: InvalidOffset,
	DaylightOffset: InvalidOffset,
}

// Valid reports whether d describes a local time.
func (d Data) Valid() bool {
	return d.At != InvalidInstant
}

// IsDST reports whether daylight saving time is in effect.
func (d Data) IsDST() bool {
	return d.Valid() && d.DaylightOffset != 0
}

func dataFromRule(at Instant, r TransitionRule) Data {
	return Data{
		At:             at,
		Offset:         r.Offset(),
		StandardOffset: r.StandardOffset,
		DaylightOffset: r.DaylightOffset,
		Abbreviation:   r.Abbreviation,
	}
}

// Zone is the set of queries the local-time resolver needs. *Table
// implements it; other backends may too.
type Zone interface {
	ID() string
	DataAt(at Instant) Data
	NextTransition(after Instant) Data
	PreviousTransition(before Instant) Data
	HasDaylightTime() bool
	// HasTransitions reports whether the zone has explicit transition
	// records, as opposed to a fixed offset or a rule alone.
	HasTransitions() bool
}

// Table is the transition model of a zone.
type Table struct {
	id      string
	records []Record
	rules   []TransitionRule
	// preZone applies before the first record.
	preZone TransitionRule
	// posix, if set, describes local time after the last record.
	posix  *posixtz.Rule
	hasDST bool
}

var _ Zone = (*Table)(nil)

// ID returns the identifier the table was built for.
func (t *Table) ID() string {
	return t.id
}

// Records returns the explicit transitions in ascending order.
func (t *Table) Records() []Record {
	return slices.Clone(t.records)
}

// Rules returns the deduplicated rules referenced by Records.
func (t *Table) Rules() []TransitionRule {
	return slices.Clone(t.rules)
}

// PreZone returns the rule in effect before the first transition.
func (t *Table) PreZone() TransitionRule {
	return t.preZone
}

// Posix returns the rule describing local time after the last record.
func (t *Table) Posix() (posixtz.Rule, bool) {
	if t.posix == nil {
		return posixtz.Rule{}, false
	}
	return *t.posix, true
}

// HasDaylightTime reports whether any rule, including the trailing POSIX
// rule, has a daylight saving component.
func (t *Table) HasDaylightTime() bool {
	return t.hasDST
}

func (t *Table) HasTransitions() bool {
	return len(t.records) > 0
}

// WithID returns a copy of t identified by id. The copy shares t's data.
func (t *Table) WithID(id string) *Table {
	c := *t
	c.id = id
	return &c
}
