package posixtz

import (
	"errors"
	"fmt"
)

// ErrMissingRules is reported for rules that name a daylight saving time
// zone without giving its start and end.
var ErrMissingRules = errors.New("posixtz: daylight saving time without start and end rules")

// SyntaxError describes a malformed rule string.
type SyntaxError struct {
	Rule string
	// Pos is the byte offset in Rule at which parsing failed.
	Pos int
	Msg string
	Err error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("posixtz: %s at offset %d of %q", e.Msg, e.Pos, e.Rule)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

const (
	maxOffsetHours = 24
	// RFC 8536 section 3.3.1 extends the transition time to -167..167
	// hours.
	maxClockHours = 24*7 - 1
)

// Parse parses a POSIX TZ rule of the form
//
//	std offset [dst [offset] , start[/time] , end[/time]]
//
// The standard offset is required. Errors are of type *SyntaxError.
func Parse(s string) (Rule, error) {
	return parse(s, true)
}

// Validation is the result of Validate.
type Validation struct {
	Valid  bool
	HasDST bool
}

// Validate checks that s is a well-formed rule. With requireOffset false a
// rule consisting of only a standard name, such as "UTC", is accepted with
// a zero offset.
func Validate(s string, requireOffset bool) Validation {
	r, err := parse(s, requireOffset)
	if err != nil {
		return Validation{}
	}
	return Validation{Valid: true, HasDST: r.HasDST()}
}

func parse(s string, requireOffset bool) (Rule, error) {
	p := &parser{s: s}
	var (
		r   Rule
		err error
	)
	if r.StdName, err = p.name(); err != nil {
		return Rule{}, err
	}
	if p.eof() && !requireOffset {
		return r, nil
	}
	off, err := p.offset(maxOffsetHours)
	if err != nil {
		return Rule{}, err
	}
	r.StdOffset = -off
	if p.eof() {
		return r, nil
	}

	if r.DSTName, err = p.name(); err != nil {
		return Rule{}, err
	}
	if p.eof() || p.peek() == ',' {
		r.DSTOffset = r.StdOffset + secondsPerHour
	} else {
		off, err := p.offset(maxOffsetHours)
		if err != nil {
			return Rule{}, err
		}
		r.DSTOffset = -off
	}
	if p.eof() {
		return Rule{}, &SyntaxError{Rule: s, Pos: p.pos, Msg: "missing start and end rules", Err: ErrMissingRules}
	}

	if err := p.expect(','); err != nil {
		return Rule{}, err
	}
	if r.Start, r.StartClock, err = p.transition(); err != nil {
		return Rule{}, err
	}
	if p.eof() {
		return Rule{}, &SyntaxError{Rule: s, Pos: p.pos, Msg: "missing end rule", Err: ErrMissingRules}
	}
	if err := p.expect(','); err != nil {
		return Rule{}, err
	}
	if r.End, r.EndClock, err = p.transition(); err != nil {
		return Rule{}, err
	}
	if !p.eof() {
		return Rule{}, p.errorf("unexpected %q after end rule", p.s[p.pos:])
	}
	return r, nil
}

type parser struct {
	s   string
	pos int
}

func (p *parser) errorf(format string, args ...any) error {
	return &SyntaxError{Rule: p.s, Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) eof() bool {
	return p.pos >= len(p.s)
}

func (p *parser) peek() byte {
	return p.s[p.pos]
}

func (p *parser) expect(c byte) error {
	if p.eof() || p.peek() != c {
		return p.errorf("expected %q", c)
	}
	p.pos++
	return nil
}

// name reads an unquoted name of at least three letters or a name of at
// least three alphanumerics, '+' or '-' between '<' and '>'.
func (p *parser) name() (string, error) {
	if p.eof() {
		return "", p.errorf("missing zone name")
	}
	if p.peek() == '<' {
		start := p.pos + 1
		for i := start; i < len(p.s); i++ {
			c := p.s[i]
			if c == '>' {
				if i-start < 3 {
					p.pos = start
					return "", p.errorf("quoted zone name shorter than 3 characters")
				}
				p.pos = i + 1
				return p.s[start:i], nil
			}
			if !isAlpha(c) && !isDigit(c) && c != '+' && c != '-' {
				p.pos = i
				return "", p.errorf("invalid character %q in quoted zone name", c)
			}
		}
		p.pos = len(p.s)
		return "", p.errorf("unterminated quoted zone name")
	}
	start := p.pos
	for !p.eof() && isAlpha(p.peek()) {
		p.pos++
	}
	if p.pos-start < 3 {
		p.pos = start
		return "", p.errorf("zone name shorter than 3 letters")
	}
	return p.s[start:p.pos], nil
}

// offset reads [+-]hh[:mm[:ss]] and returns it in seconds, sign as written.
func (p *parser) offset(maxHour int) (int32, error) {
	if p.eof() {
		return 0, p.errorf("missing offset")
	}
	neg := false
	switch p.peek() {
	case '-':
		neg = true
		p.pos++
	case '+':
		p.pos++
	}
	hours, err := p.num(0, maxHour)
	if err != nil {
		return 0, err
	}
	off := hours * secondsPerHour
	if !p.eof() && p.peek() == ':' {
		p.pos++
		mins, err := p.num(0, 59)
		if err != nil {
			return 0, err
		}
		off += mins * secondsPerMinute
		if !p.eof() && p.peek() == ':' {
			p.pos++
			secs, err := p.num(0, 59)
			if err != nil {
				return 0, err
			}
			off += secs
		}
	}
	if neg {
		off = -off
	}
	return int32(off), nil
}

// num reads a decimal number in [min, max].
func (p *parser) num(min, max int) (int, error) {
	start := p.pos
	n := 0
	for !p.eof() && isDigit(p.peek()) {
		n = n*10 + int(p.peek()-'0')
		if n > max {
			p.pos = start
			return 0, p.errorf("number out of range [%d, %d]", min, max)
		}
		p.pos++
	}
	if p.pos == start {
		return 0, p.errorf("expected number")
	}
	if n < min {
		p.pos = start
		return 0, p.errorf("number out of range [%d, %d]", min, max)
	}
	return n, nil
}

// transition reads date[/time].
func (p *parser) transition() (DateRule, int32, error) {
	d, err := p.date()
	if err != nil {
		return DateRule{}, 0, err
	}
	if p.eof() || p.peek() != '/' {
		return d, DefaultClock, nil
	}
	p.pos++
	clock, err := p.offset(maxClockHours)
	if err != nil {
		return DateRule{}, 0, err
	}
	return d, clock, nil
}

func (p *parser) date() (DateRule, error) {
	if p.eof() {
		return DateRule{}, p.errorf("missing date rule")
	}
	var (
		d   DateRule
		err error
	)
	switch c := p.peek(); {
	case c == 'J':
		p.pos++
		d.Kind = Julian
		d.Day, err = p.num(1, 365)
	case c == 'M':
		p.pos++
		d.Kind = MonthWeekDay
		if d.Month, err = p.num(1, 12); err != nil {
			return DateRule{}, err
		}
		if err = p.expect('.'); err != nil {
			return DateRule{}, err
		}
		if d.Week, err = p.num(1, 5); err != nil {
			return DateRule{}, err
		}
		if err = p.expect('.'); err != nil {
			return DateRule{}, err
		}
		d.Weekday, err = p.num(0, 6)
	case isDigit(c):
		d.Kind = ZeroBasedDay
		d.Day, err = p.num(0, 365)
	default:
		return DateRule{}, p.errorf("invalid date rule")
	}
	if err != nil {
		return DateRule{}, err
	}
	return d, nil
}

func isAlpha(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}
