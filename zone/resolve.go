package zone

// Policy selects how ResolveLocal treats local times that occur twice or
// not at all. Gap and fold flags are independent.
type Policy uint8

const (
	// GapUseBefore resolves a skipped local time with the offset in effect
	// before the transition.
	GapUseBefore Policy = 1 << iota
	// GapUseAfter resolves a skipped local time with the offset in effect
	// after the transition.
	GapUseAfter
	// FoldUseBefore resolves a repeated local time to its first occurrence.
	FoldUseBefore
	// FoldUseAfter resolves a repeated local time to its second occurrence.
	FoldUseAfter
	// FlipForReverseDST swaps before and after at transitions where
	// daylight saving time has a negative offset, so that they refer to
	// standard and daylight time the way they do for ordinary zones.
	FlipForReverseDST
)

// State is the result of ResolveLocal.
type State struct {
	// Instant is the UTC instant of the local time, or the local time
	// itself if Resolved is false.
	Instant  Instant
	Offset   Offset
	IsDST    bool
	Resolved bool
}

// bracket is half the width of the window searched for transitions around a
// local time. It exceeds the largest offset of any real zone, and real
// transitions are never closer than twice that.
const bracket = 17 * 3600 * 1000

func unresolved(local Instant) State {
	return State{Instant: local, Offset: InvalidOffset}
}

// resolveWith returns the state for local read with the offset of d.
func resolveWith(local Instant, d Data) State {
	at, ok := local.add(-d.Offset.millis())
	if !ok {
		return unresolved(local)
	}
	return State{Instant: at, Offset: d.Offset, IsDST: d.IsDST(), Resolved: true}
}

// ResolveLocal returns the UTC instant of the local wall-clock reading
// local, given in milliseconds on the same scale as UTC instants. Local
// times that are skipped or repeated by a transition are resolved
// according to p; if p has no flag for the case at hand the result is
// unresolved.
func ResolveLocal(z Zone, local Instant, p Policy) State {
	if local == InvalidInstant {
		return unresolved(local)
	}
	recent := local.addClamped(-bracket)
	imminent := local.addClamped(bracket)

	past, future := z.DataAt(recent), z.DataAt(imminent)
	if !past.Valid() || !future.Valid() {
		return unresolved(local)
	}
	if past.Offset == future.Offset &&
		past.StandardOffset == future.StandardOffset &&
		past.Abbreviation == future.Abbreviation {
		return resolveWith(local, future)
	}

	if z.HasTransitions() {
		return resolveByTransitions(z, local, imminent, p)
	}
	return resolveBySamples(z, local, past, future, p)
}

// resolveByTransitions walks the transitions of z from the bracket start
// to the pair whose local start times enclose local.
func resolveByTransitions(z Zone, local, imminent Instant, p Policy) State {
	tran := z.DataAt(local.addClamped(-bracket))
	next := z.NextTransition(tran.At)
	for next.Valid() && local > localStart(next) {
		after := z.NextTransition(next.At)
		if !after.Valid() || localStart(after) > imminent {
			break
		}
		tran, next = next, after
	}

	tranUTC, ok := local.add(-tran.Offset.millis())
	if !ok {
		return unresolved(local)
	}
	if !next.Valid() {
		return resolveWith(local, tran)
	}
	nextUTC, ok := local.add(-next.Offset.millis())
	if !ok {
		return unresolved(local)
	}

	fold := false
	if next.At > nextUTC {
		if next.At > tranUTC {
			return resolveWith(local, tran)
		}
		// Neither reading is valid: local falls in a gap.
	} else {
		if next.At <= tranUTC {
			return resolveWith(local, next)
		}
		// Both readings are valid: local falls in a fold.
		fold = true
	}

	return choose(local, tran, next, fold, p)
}

// choose resolves a local time that falls in a fold or a gap between
// before and after according to p. Folds prefer the before flag and gaps
// the after flag when both are set.
func choose(local Instant, before, after Data, fold bool, p Policy) State {
	useBefore, useAfter := GapUseBefore, GapUseAfter
	if fold {
		useBefore, useAfter = FoldUseBefore, FoldUseAfter
	}
	if p&FlipForReverseDST != 0 && reversed(before, after, fold) {
		useBefore, useAfter = useAfter, useBefore
	}
	if fold {
		switch {
		case p&useBefore != 0:
			return resolveWith(local, before)
		case p&useAfter != 0:
			return resolveWith(local, after)
		}
		return unresolved(local)
	}
	switch {
	case p&useAfter != 0:
		return resolveWith(local, after)
	case p&useBefore != 0:
		return resolveWith(local, before)
	}
	return unresolved(local)
}

// reversed reports whether the transition from tran to next runs against
// the usual direction because daylight saving time has a negative offset:
// a fold into daylight saving time, or a gap out of it.
func reversed(tran, next Data, fold bool) bool {
	if fold {
		return !tran.IsDST() && next.IsDST() && next.DaylightOffset < 0
	}
	return tran.IsDST() && !next.IsDST() && tran.DaylightOffset < 0
}

// localStart returns the local time at which d takes effect.
func localStart(d Data) Instant {
	return d.At.addClamped(d.Offset.millis())
}

// resolveBySamples classifies local using only the local times sampled at
// either end of the bracket, for zones without explicit transitions.
func resolveBySamples(z Zone, local Instant, early, late Data, p Policy) State {
	forEarly, okEarly := local.add(-early.Offset.millis())
	forLate, okLate := local.add(-late.Offset.millis())
	if early.Offset == late.Offset {
		if !okLate {
			return unresolved(local)
		}
		return resolveWith(local, z.DataAt(forLate))
	}
	earlyOK := okEarly && z.DataAt(forEarly).Offset == early.Offset
	lateOK := okLate && z.DataAt(forLate).Offset == late.Offset

	switch {
	case earlyOK && lateOK:
		return choose(local, early, late, true, p)
	case earlyOK:
		return resolveWith(local, early)
	case lateOK:
		return resolveWith(local, late)
	}
	return choose(local, early, late, false, p)
}
