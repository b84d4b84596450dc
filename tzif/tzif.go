// Package tzif implements the TZif file format according to RFC8536.
// https://datatracker.ietf.org/doc/html/rfc8536
//
// Reading is strict: a file that violates the magic, the version set or the
// header count limits is rejected as a whole. Leap-second records and the
// standard/wall and UT/local indicators are decoded so that the data blocks
// can be skipped and re-encoded, but carry no meaning for callers of this
// module.
package tzif

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// NOTE: All multi-octet integer values MUST be stored in network octet
// order format (high-order octet first, otherwise known as big-endian),
// with all bits significant.  Signed integer values MUST be represented
// using two's complement.
var order = binary.BigEndian

// Version represents the version of a TZif file.
// In V1, time values are 32bit (four-octets) and in V2 upwards time values are 64bit (eight-octets).
type Version byte

func (v Version) String() string {
	switch v {
	case V1:
		return "V1 (0x00)"
	case V2:
		return "V2 (0x32)"
	case V3:
		return "V3 (0x33)"
	default:
		return fmt.Sprintf("<undefined version (%d)>", v)
	}
}

// Supported reports whether v is one of the versions this package reads.
func (v Version) Supported() bool {
	return v == V1 || v == V2 || v == V3
}

const (
	// V1 files contain only the version 1 header and data block.
	V1 Version = 0x00
	// V2 files contain the version 1 header and data block, a version 2+
	// header and data block, and a footer.
	V2 Version = 0x32 // '2'
	// V3 is laid out like V2 but the footer's TZ string may use the
	// extensions of RFC8536 section 3.3.1.
	V3 Version = 0x33 // '3'
)

// Magic is the four-octet ASCII sequence "TZif" (0x54 0x5A 0x69 0x66),
// which identifies the file as utilizing the Time Zone Information Format.
var Magic = [4]byte{'T', 'Z', 'i', 'f'}

// HeaderSize is the encoded size of a Header including the magic.
const HeaderSize = 44

// Upper bounds on the header counts. Zone data compiled by zic stays well
// below them; anything larger is treated as corrupt.
const (
	MaxTimecnt = 1200
	MaxTypecnt = 256
	MaxCharcnt = 50
	MaxLeapcnt = 50
)

// Header is the header of a TZif file.
//
//	+---------------+---+
//	|  magic    (4) |ver|
//	+---------------+---+---------------------------------------+
//	|           [unused - reserved for future use] (15)         |
//	+---------------+---------------+---------------+-----------+
//	|  isutcnt  (4) |  isstdcnt (4) |  leapcnt  (4) |
//	+---------------+---------------+---------------+
//	|  timecnt  (4) |  typecnt  (4) |  charcnt  (4) |
//	+---------------+---------------+---------------+
type Header struct {
	Version  Version
	Reserved [15]byte

	// Isutcnt is the number of UT/local indicators.
	Isutcnt uint32
	// Isstdcnt is the number of standard/wall indicators.
	Isstdcnt uint32
	// Leapcnt is the number of leap-second records.
	Leapcnt uint32
	// Timecnt is the number of transition times.
	Timecnt uint32
	// Typecnt is the number of local time type records.
	Typecnt uint32
	// Charcnt is the number of octets of time zone designations,
	// including the trailing NUL.
	Charcnt uint32
}

// Write writes the Header to w.
func (h Header) Write(w io.Writer) error {
	if _, err := w.Write(Magic[:]); err != nil {
		return err
	}
	return binary.Write(w, order, h)
}

// CheckBounds reports an error wrapping ErrBounds if any count exceeds the
// limits accepted by this package.
func (h Header) CheckBounds() error {
	switch {
	case h.Timecnt > MaxTimecnt:
		return fmt.Errorf("%w: timecnt %d > %d", ErrBounds, h.Timecnt, MaxTimecnt)
	case h.Typecnt > MaxTypecnt:
		return fmt.Errorf("%w: typecnt %d > %d", ErrBounds, h.Typecnt, MaxTypecnt)
	case h.Charcnt > MaxCharcnt:
		return fmt.Errorf("%w: charcnt %d > %d", ErrBounds, h.Charcnt, MaxCharcnt)
	case h.Leapcnt > MaxLeapcnt:
		return fmt.Errorf("%w: leapcnt %d > %d", ErrBounds, h.Leapcnt, MaxLeapcnt)
	case h.Isutcnt > h.Typecnt:
		return fmt.Errorf("%w: isutcnt %d > typecnt %d", ErrBounds, h.Isutcnt, h.Typecnt)
	case h.Isstdcnt > h.Typecnt:
		return fmt.Errorf("%w: isstdcnt %d > typecnt %d", ErrBounds, h.Isstdcnt, h.Typecnt)
	}
	return nil
}

// ReadHeader reads a header from r, rejecting unknown magic, unsupported
// versions and counts outside the bounds.
func ReadHeader(r io.Reader) (Header, error) {
	var h Header
	magic := make([]byte, len(Magic))
	if err := read(r, magic); err != nil {
		return h, fmt.Errorf("reading magic: %w", err)
	}
	if !bytes.Equal(magic, Magic[:]) {
		return h, fmt.Errorf("%w: %q", ErrMagic, magic)
	}
	if err := read(r, &h); err != nil {
		return h, fmt.Errorf("reading header: %w", err)
	}
	if !h.Version.Supported() {
		return h, fmt.Errorf("%w: %v", ErrVersion, h.Version)
	}
	return h, h.CheckBounds()
}

// TimeSize is the width in octets of time values in a data block.
type TimeSize int

const (
	// Time32 is used by the version 1 data block.
	Time32 TimeSize = 4
	// Time64 is used by the version 2+ data block.
	Time64 TimeSize = 8
)

// DataBlock is a TZif data block. Time values are held as int64 regardless
// of the TimeSize they are encoded with.
//
//	+---------------------------------------------------------+
//	|  transition times          (timecnt x TIME_SIZE)        |
//	+---------------------------------------------------------+
//	|  transition types          (timecnt)                    |
//	+---------------------------------------------------------+
//	|  local time type records   (typecnt x 6)                |
//	+---------------------------------------------------------+
//	|  time zone designations    (charcnt)                    |
//	+---------------------------------------------------------+
//	|  leap-second records       (leapcnt x (TIME_SIZE + 4))  |
//	+---------------------------------------------------------+
//	|  standard/wall indicators  (isstdcnt)                   |
//	+---------------------------------------------------------+
//	|  UT/local indicators       (isutcnt)                    |
//	+---------------------------------------------------------+
type DataBlock struct {
	// TransitionTimes are UNIX times, in seconds, in strictly ascending
	// order at which the rules for computing local time change.
	TransitionTimes []int64

	// TransitionTypes are zero-based indices into LocalTimeTypes, one for
	// each transition time.
	TransitionTypes []uint8

	LocalTimeTypes []LocalTimeType

	// Designations holds NUL-terminated abbreviation strings. Two
	// designations may overlap if one is a suffix of the other.
	Designations []byte

	LeapSeconds []LeapSecond

	StandardWallIndicators []bool
	UTLocalIndicators      []bool
}

// Header returns a header describing b.
func (b DataBlock) Header(v Version) Header {
	return Header{
		Version:  v,
		Isutcnt:  uint32(len(b.UTLocalIndicators)),
		Isstdcnt: uint32(len(b.StandardWallIndicators)),
		Leapcnt:  uint32(len(b.LeapSeconds)),
		Timecnt:  uint32(len(b.TransitionTimes)),
		Typecnt:  uint32(len(b.LocalTimeTypes)),
		Charcnt:  uint32(len(b.Designations)),
	}
}

// Designation returns the NUL-terminated designation starting at idx.
func (b DataBlock) Designation(idx uint8) (string, bool) {
	if int(idx) >= len(b.Designations) {
		return "", false
	}
	p := b.Designations[idx:]
	i := bytes.IndexByte(p, 0)
	if i < 0 {
		return "", false
	}
	return string(p[:i]), true
}

// Write writes b to w using time values of the given size.
func (b DataBlock) Write(w io.Writer, size TimeSize) error {
	if err := writeTimes(w, b.TransitionTimes, size); err != nil {
		return err
	}
	if _, err := w.Write(b.TransitionTypes); err != nil {
		return err
	}
	for _, r := range b.LocalTimeTypes {
		if err := r.Write(w); err != nil {
			return err
		}
	}
	if _, err := w.Write(b.Designations); err != nil {
		return err
	}
	for _, r := range b.LeapSeconds {
		if err := r.Write(w, size); err != nil {
			return err
		}
	}
	if err := binary.Write(w, order, b.StandardWallIndicators); err != nil {
		return err
	}
	return binary.Write(w, order, b.UTLocalIndicators)
}

func writeTimes(w io.Writer, times []int64, size TimeSize) error {
	if size == Time64 {
		return binary.Write(w, order, times)
	}
	short := make([]int32, len(times))
	for i, t := range times {
		if t < math.MinInt32 || t > math.MaxInt32 {
			return fmt.Errorf("transition time %d does not fit in 32 bits", t)
		}
		short[i] = int32(t)
	}
	return binary.Write(w, order, short)
}

// ReadDataBlock reads the data block described by h from r.
func ReadDataBlock(r io.Reader, h Header, size TimeSize) (DataBlock, error) {
	var b DataBlock
	if h.Timecnt > 0 {
		times, err := readTimes(r, int(h.Timecnt), size)
		if err != nil {
			return b, fmt.Errorf("reading transition times: %w", err)
		}
		b.TransitionTimes = times
		b.TransitionTypes = make([]uint8, h.Timecnt)
		if err := read(r, b.TransitionTypes); err != nil {
			return b, fmt.Errorf("reading transition types: %w", err)
		}
	}
	if h.Typecnt > 0 {
		b.LocalTimeTypes = make([]LocalTimeType, h.Typecnt)
		for i := range b.LocalTimeTypes {
			if err := read(r, &b.LocalTimeTypes[i]); err != nil {
				return b, fmt.Errorf("reading local time type record: %w", err)
			}
		}
	}
	if h.Charcnt > 0 {
		b.Designations = make([]byte, h.Charcnt)
		if err := read(r, b.Designations); err != nil {
			return b, fmt.Errorf("reading time zone designations: %w", err)
		}
	}
	if h.Leapcnt > 0 {
		b.LeapSeconds = make([]LeapSecond, h.Leapcnt)
		for i := range b.LeapSeconds {
			occur, err := readTimes(r, 1, size)
			if err != nil {
				return b, fmt.Errorf("reading leap second record: %w", err)
			}
			b.LeapSeconds[i].Occur = occur[0]
			if err := read(r, &b.LeapSeconds[i].Corr); err != nil {
				return b, fmt.Errorf("reading leap second record: %w", err)
			}
		}
	}
	if h.Isstdcnt > 0 {
		b.StandardWallIndicators = make([]bool, h.Isstdcnt)
		if err := read(r, b.StandardWallIndicators); err != nil {
			return b, fmt.Errorf("reading standard/wall indicators: %w", err)
		}
	}
	if h.Isutcnt > 0 {
		b.UTLocalIndicators = make([]bool, h.Isutcnt)
		if err := read(r, b.UTLocalIndicators); err != nil {
			return b, fmt.Errorf("reading UT/local indicators: %w", err)
		}
	}
	return b, nil
}

func readTimes(r io.Reader, n int, size TimeSize) ([]int64, error) {
	times := make([]int64, n)
	if size == Time64 {
		return times, read(r, times)
	}
	short := make([]int32, n)
	if err := read(r, short); err != nil {
		return nil, err
	}
	for i, t := range short {
		times[i] = int64(t)
	}
	return times, nil
}

// read decodes into data, reporting short input as ErrTruncated.
func read(r io.Reader, data any) error {
	err := binary.Read(r, order, data)
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}

// LeapSecond is a leap-second record. Occur is encoded with the block's
// TimeSize, Corr always with four octets.
//
//	+---------------+---------------+
//	|  occur (T)    |  corr (4)     |
//	+---------------+---------------+
type LeapSecond struct {
	Occur int64
	Corr  int32
}

func (r LeapSecond) Write(w io.Writer, size TimeSize) error {
	if err := writeTimes(w, []int64{r.Occur}, size); err != nil {
		return err
	}
	return binary.Write(w, order, r.Corr)
}

// LocalTimeType is a local time type record.
//
//	+---------------+---+---+
//	|  utoff (4)    |dst|idx|
//	+---------------+---+---+
type LocalTimeType struct {
	// Utoff is the number of seconds added to UT to obtain local time.
	// It combines the standard offset and any daylight saving amount.
	Utoff int32
	// Dst marks the type as daylight saving time.
	Dst bool
	// Idx is a zero-based index into the designations.
	Idx uint8
}

func (r LocalTimeType) Write(w io.Writer) error {
	return binary.Write(w, order, r)
}

// Footer represents the footer of a version 2+ TZif file.
//
//	+---+--------------------+---+
//	| NL|  TZ string (0...)  |NL |
//	+---+--------------------+---+
type Footer struct {
	// TZString is a POSIX TZ rule describing local time after the last
	// transition, or empty if the information is not available.
	TZString []byte
}

const asciiNewLine = byte(0x0A)

// maxFooterLen bounds the TZ string so a corrupt footer cannot make the
// reader consume arbitrary amounts of input.
const maxFooterLen = 255

func (f Footer) Write(w io.Writer) error {
	if _, err := w.Write([]byte{asciiNewLine}); err != nil {
		return err
	}
	if _, err := w.Write(f.TZString); err != nil {
		return err
	}
	_, err := w.Write([]byte{asciiNewLine})
	return err
}

func ReadFooter(r io.Reader) (Footer, error) {
	var f Footer
	buf := make([]byte, 1)
	if err := read(r, buf); err != nil {
		return f, fmt.Errorf("reading newline: %w", err)
	}
	if buf[0] != asciiNewLine {
		return f, fmt.Errorf("%w: footer starts with %#x, want newline", ErrInvalid, buf[0])
	}
	var b []byte
	for {
		if err := read(r, buf); err != nil {
			return f, fmt.Errorf("reading TZ string: %w", err)
		}
		if buf[0] == asciiNewLine {
			break
		}
		if len(b) == maxFooterLen {
			return f, fmt.Errorf("%w: TZ string longer than %d bytes", ErrInvalid, maxFooterLen)
		}
		b = append(b, buf[0])
	}
	f.TZString = b
	return f, nil
}
