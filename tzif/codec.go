package tzif

import (
	"bytes"
	"errors"
	"fmt"
	"io"
)

var (
	// ErrMagic is returned when the input does not start with Magic.
	ErrMagic = errors.New("tzif: invalid magic")
	// ErrVersion is returned for versions other than V1, V2 and V3.
	ErrVersion = errors.New("tzif: unsupported version")
	// ErrBounds is returned when a header count exceeds its limit.
	ErrBounds = errors.New("tzif: count out of bounds")
	// ErrTruncated is returned when the input ends inside a structure.
	ErrTruncated = errors.New("tzif: truncated data")
	// ErrInvalid is returned for structurally inconsistent data.
	ErrInvalid = errors.New("tzif: invalid data")
)

// Data represents a TZif file.
type Data struct {
	Version Version

	V1Header Header
	V1Data   DataBlock

	V2Header Header
	V2Data   DataBlock
	Footer   Footer
}

// Block returns the data block that describes the zone: the 64-bit block
// for version 2+ files, which supersedes the 32-bit one, and the version 1
// block otherwise.
func (d Data) Block() DataBlock {
	if d.Version > V1 {
		return d.V2Data
	}
	return d.V1Data
}

// Encode writes the given TZif data to the given writer.
// If the version is V1, the V2 fields are not written.
func (d Data) Encode(w io.Writer) error {
	if err := d.V1Header.Write(w); err != nil {
		return fmt.Errorf("write v1 header: %w", err)
	}
	if err := d.V1Data.Write(w, Time32); err != nil {
		return fmt.Errorf("write v1 data: %w", err)
	}
	if d.Version > V1 {
		if err := d.V2Header.Write(w); err != nil {
			return fmt.Errorf("write v2 header: %w", err)
		}
		if err := d.V2Data.Write(w, Time64); err != nil {
			return fmt.Errorf("write v2 data: %w", err)
		}
		if err := d.Footer.Write(w); err != nil {
			return fmt.Errorf("write v2 footer: %w", err)
		}
	}
	return nil
}

// DecodeData reads the TZif Data from the given reader.
// If the version is V1, the V2 fields are left empty. Any error means no
// usable data was read.
func DecodeData(r io.Reader) (Data, error) {
	var (
		d   Data
		err error
	)
	d.V1Header, err = ReadHeader(r)
	if err != nil {
		return Data{}, fmt.Errorf("read v1 header: %w", err)
	}
	d.Version = d.V1Header.Version

	d.V1Data, err = ReadDataBlock(r, d.V1Header, Time32)
	if err != nil {
		return Data{}, fmt.Errorf("read v1 data block: %w", err)
	}

	if d.Version > V1 {
		d.V2Header, err = ReadHeader(r)
		if err != nil {
			return Data{}, fmt.Errorf("read v2 header: %w", err)
		}
		d.V2Data, err = ReadDataBlock(r, d.V2Header, Time64)
		if err != nil {
			return Data{}, fmt.Errorf("read v2 data block: %w", err)
		}
		d.Footer, err = ReadFooter(r)
		if err != nil {
			return Data{}, fmt.Errorf("read footer: %w", err)
		}
	}

	return d, nil
}

// Decode decodes a complete TZif file held in memory and validates it.
func Decode(b []byte) (Data, error) {
	d, err := DecodeData(bytes.NewReader(b))
	if err != nil {
		return Data{}, err
	}
	if err := Validate(d); err != nil {
		return Data{}, err
	}
	return d, nil
}

// New returns version v Data for block b and the TZ string tz, filling in
// headers and, for version 2+, a version 1 block holding the transitions
// that fit in 32 bits. It is the inverse of Decode for well-formed input.
func New(v Version, b DataBlock, tz string) Data {
	d := Data{Version: v}
	if v == V1 {
		d.V1Header = b.Header(v)
		d.V1Data = b
		return d
	}
	d.V2Header = b.Header(v)
	d.V2Data = b
	d.Footer = Footer{TZString: []byte(tz)}

	v1 := b
	v1.TransitionTimes, v1.TransitionTypes = nil, nil
	for i, t := range b.TransitionTimes {
		if t < -1<<31 || t > 1<<31-1 {
			continue
		}
		v1.TransitionTimes = append(v1.TransitionTimes, t)
		v1.TransitionTypes = append(v1.TransitionTypes, b.TransitionTypes[i])
	}
	v1.LeapSeconds = nil
	for _, l := range b.LeapSeconds {
		if l.Occur >= -1<<31 && l.Occur <= 1<<31-1 {
			v1.LeapSeconds = append(v1.LeapSeconds, l)
		}
	}
	d.V1Header = v1.Header(v)
	d.V1Data = v1
	return d
}
