package tzif

import (
	"errors"
	"fmt"
	"math"
)

// Validate checks the block of d that describes the zone for the structural
// requirements of RFC8536 that the decoder does not enforce while reading.
// All violations are reported, each wrapping ErrInvalid.
func Validate(d Data) error {
	var errs []error
	if d.Version != d.V1Header.Version {
		errs = append(errs, fmt.Errorf("%w: inconsistent version: file = %v, v1 header = %v", ErrInvalid, d.Version, d.V1Header.Version))
	}

	// Version 2+ readers ignore the version 1 block, and writers are free
	// to leave it empty (see RFC8536 example B.3).
	if d.Version > V1 {
		if d.V2Header.Version != d.Version {
			errs = append(errs, fmt.Errorf("%w: inconsistent version: file = %v, v2 header = %v", ErrInvalid, d.Version, d.V2Header.Version))
		}
		errs = append(errs, validateBlock("v2", d.V2Header, d.V2Data)...)
	} else {
		errs = append(errs, validateBlock("v1", d.V1Header, d.V1Data)...)
	}

	return errors.Join(errs...)
}

func validateBlock(name string, header Header, data DataBlock) []error {
	var err []error
	fail := func(format string, args ...any) {
		err = append(err, fmt.Errorf("%w: %s %s", ErrInvalid, name, fmt.Sprintf(format, args...)))
	}

	if len(data.UTLocalIndicators) != int(header.Isutcnt) {
		fail("isutcnt: header = %d, data = %d", header.Isutcnt, len(data.UTLocalIndicators))
	}
	if len(data.StandardWallIndicators) != int(header.Isstdcnt) {
		fail("isstdcnt: header = %d, data = %d", header.Isstdcnt, len(data.StandardWallIndicators))
	}
	if len(data.LeapSeconds) != int(header.Leapcnt) {
		fail("leapcnt: header = %d, data = %d", header.Leapcnt, len(data.LeapSeconds))
	}

	// Timecnt
	if len(data.TransitionTimes) != int(header.Timecnt) {
		fail("timecnt: header = %d, transition times = %d", header.Timecnt, len(data.TransitionTimes))
	}
	if times, types := len(data.TransitionTimes), len(data.TransitionTypes); times != types {
		fail("transitions: transition times = %d, transition types = %d", times, types)
	}
	for i := 1; i < len(data.TransitionTimes); i++ {
		if data.TransitionTimes[i] <= data.TransitionTimes[i-1] {
			fail("transition time %d (%d) not after its predecessor (%d)", i, data.TransitionTimes[i], data.TransitionTimes[i-1])
			break
		}
	}
	for i, typ := range data.TransitionTypes {
		if int(typ) >= len(data.LocalTimeTypes) {
			fail("transition %d: type index %d out of range [0, %d)", i, typ, len(data.LocalTimeTypes))
		}
	}

	// Typecnt
	if header.Typecnt == 0 {
		fail("typecnt: must not be zero")
	}
	if len(data.LocalTimeTypes) != int(header.Typecnt) {
		fail("typecnt: header = %d, data = %d", header.Typecnt, len(data.LocalTimeTypes))
	}
	for i, t := range data.LocalTimeTypes {
		if t.Utoff == math.MinInt32 {
			fail("local time type %d: utoff must not be -2**31", i)
		}
		if _, ok := data.Designation(t.Idx); !ok {
			fail("local time type %d: designation index %d invalid", i, t.Idx)
		}
	}

	// Charcnt
	if header.Charcnt == 0 {
		fail("charcnt: must not be zero")
	}
	if len(data.Designations) != int(header.Charcnt) {
		fail("charcnt: header = %d, data = %d", header.Charcnt, len(data.Designations))
	}
	if len(data.Designations) > 0 && data.Designations[len(data.Designations)-1] != 0 {
		fail("time zone designations: missing null terminator")
	}
	return err
}
