package posixtz

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Rule
	}{
		{
			in:   "UTC0",
			want: Rule{StdName: "UTC"},
		},
		{
			in:   "<+0845>-8:45",
			want: Rule{StdName: "+0845", StdOffset: 8*3600 + 45*60},
		},
		{
			in:   "<-0930>9:30",
			want: Rule{StdName: "-0930", StdOffset: -(9*3600 + 30*60)},
		},
		{
			in:   "<+0845>-8:45:15",
			want: Rule{StdName: "+0845", StdOffset: 8*3600 + 45*60 + 15},
		},
		{
			in: "CET-1CEST,M3.5.0,M10.5.0/3",
			want: Rule{
				StdName: "CET", StdOffset: 3600,
				DSTName: "CEST", DSTOffset: 7200,
				Start:      DateRule{Kind: MonthWeekDay, Month: 3, Week: 5, Weekday: 0},
				StartClock: 2 * 3600,
				End:        DateRule{Kind: MonthWeekDay, Month: 10, Week: 5, Weekday: 0},
				EndClock:   3 * 3600,
			},
		},
		{
			in: "NST3:30NDT,M3.2.0,M11.1.0",
			want: Rule{
				StdName: "NST", StdOffset: -(3*3600 + 30*60),
				DSTName: "NDT", DSTOffset: -(2*3600 + 30*60),
				Start:      DateRule{Kind: MonthWeekDay, Month: 3, Week: 2, Weekday: 0},
				StartClock: 2 * 3600,
				End:        DateRule{Kind: MonthWeekDay, Month: 11, Week: 1, Weekday: 0},
				EndClock:   2 * 3600,
			},
		},
		{
			in: "<+1030>-10:30<+11>-11,M10.1.0,M4.1.0",
			want: Rule{
				StdName: "+1030", StdOffset: 10*3600 + 30*60,
				DSTName: "+11", DSTOffset: 11 * 3600,
				Start:      DateRule{Kind: MonthWeekDay, Month: 10, Week: 1},
				StartClock: 2 * 3600,
				End:        DateRule{Kind: MonthWeekDay, Month: 4, Week: 1},
				EndClock:   2 * 3600,
			},
		},
		{
			in: "<-02>2<-01>,M3.5.0/-1,M10.5.0/0",
			want: Rule{
				StdName: "-02", StdOffset: -7200,
				DSTName: "-01", DSTOffset: -3600,
				Start:      DateRule{Kind: MonthWeekDay, Month: 3, Week: 5},
				StartClock: -3600,
				End:        DateRule{Kind: MonthWeekDay, Month: 10, Week: 5},
				EndClock:   0,
			},
		},
		{
			in: "<+00>0<+01>,0/0,J365/25",
			want: Rule{
				StdName: "+00", StdOffset: 0,
				DSTName: "+01", DSTOffset: 3600,
				Start:      DateRule{Kind: ZeroBasedDay, Day: 0},
				StartClock: 0,
				End:        DateRule{Kind: Julian, Day: 365},
				EndClock:   25 * 3600,
			},
		},
		{
			in: "EET-2EEST,M3.4.4/50,M10.4.4/50",
			want: Rule{
				StdName: "EET", StdOffset: 7200,
				DSTName: "EEST", DSTOffset: 10800,
				Start:      DateRule{Kind: MonthWeekDay, Month: 3, Week: 4, Weekday: 4},
				StartClock: 50 * 3600,
				End:        DateRule{Kind: MonthWeekDay, Month: 10, Week: 4, Weekday: 4},
				EndClock:   50 * 3600,
			},
		},
		{
			in: "XXX3YYY,M3.2.0/-167,M11.1.0/167",
			want: Rule{
				StdName: "XXX", StdOffset: -3 * 3600,
				DSTName: "YYY", DSTOffset: -2 * 3600,
				Start:      DateRule{Kind: MonthWeekDay, Month: 3, Week: 2},
				StartClock: -167 * 3600,
				End:        DateRule{Kind: MonthWeekDay, Month: 11, Week: 1},
				EndClock:   167 * 3600,
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := Parse(tt.in)
			if err != nil {
				t.Fatalf("Parse() failed: %v", err)
			}
			if diff := cmp.Diff(got, tt.want); diff != "" {
				t.Errorf("Parse() mismatch (-got +want):\n%s", diff)
			}
		})
	}
}

// Rules found in the footers of the IANA zoneinfo distribution.
var zoneinfoRules = []string{
	"<+00>0<+01>,0/0,J365/25",
	"<+00>0<+02>-2,M3.5.0/1,M10.5.0/3",
	"<+01>-1",
	"<+0330>-3:30",
	"<+0545>-5:45",
	"<+0845>-8:45",
	"<+1030>-10:30<+11>-11,M10.1.0,M4.1.0",
	"<+11>-11<+12>,M10.1.0,M4.1.0/3",
	"<+1245>-12:45<+1345>,M9.5.0/2:45,M4.1.0/3:45",
	"<+14>-14",
	"<-00>0",
	"<-01>1<+00>,M3.5.0/0,M10.5.0/1",
	"<-02>2<-01>,M3.5.0/-1,M10.5.0/0",
	"<-03>3<-02>,M3.2.0,M11.1.0",
	"<-04>4<-03>,M9.1.6/24,M4.1.6/24",
	"<-06>6<-05>,M9.1.6/22,M4.1.6/22",
	"<-0930>9:30",
	"<-12>12",
	"ACST-9:30ACDT,M10.1.0,M4.1.0/3",
	"AEST-10AEDT,M10.1.0,M4.1.0/3",
	"AKST9AKDT,M3.2.0,M11.1.0",
	"CET-1CEST,M3.5.0,M10.5.0/3",
	"CST5CDT,M3.2.0/0,M11.1.0/1",
	"ChST-10",
	"EET-2EEST,M3.4.4/50,M10.4.4/50",
	"EET-2EEST,M3.5.0/0,M10.5.0/0",
	"EET-2EEST,M4.5.5/0,M10.5.4/24",
	"GMT0BST,M3.5.0/1,M10.5.0",
	"HST10",
	"IST-2IDT,M3.4.4/26,M10.5.0",
	"IST-5:30",
	"NST3:30NDT,M3.2.0,M11.1.0",
	"NZST-12NZDT,M9.5.0,M4.1.0/3",
	"PST8PDT,M3.2.0,M11.1.0",
	"WITA-8",
	"EST5EDT,M3.2.0/02:00:00,M11.1.0/02:00:00",
	"HAST10HADT,M4.2.0/03:0:0,M10.2.0/03:0:00",
}

func TestParseZoneinfoRules(t *testing.T) {
	for _, s := range zoneinfoRules {
		t.Run(s, func(t *testing.T) {
			r, err := Parse(s)
			if err != nil {
				t.Fatalf("Parse() failed: %v", err)
			}
			again, err := Parse(r.String())
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", r.String(), err)
			}
			if diff := cmp.Diff(again, r); diff != "" {
				t.Errorf("Parse(String()) mismatch (-got +want):\n%s", diff)
			}
			if v := Validate(s, true); !v.Valid || v.HasDST != r.HasDST() {
				t.Errorf("Validate() = %+v, want valid with HasDST %v", v, r.HasDST())
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		in      string
		pos     int
		missing bool
	}{
		{in: "", pos: 0},
		{in: "UT0", pos: 0},
		{in: "UTC", pos: 3},
		{in: "UTC+", pos: 4},
		{in: "UTC25", pos: 3},
		{in: "UTC1:60", pos: 5},
		{in: "<+1>-1", pos: 1},
		{in: "<+01-1", pos: 6},
		{in: "<+0_1>-1", pos: 3},
		{in: "EST5EDT", pos: 7, missing: true},
		{in: "EST5EDT4", pos: 8, missing: true},
		{in: "EST5EDT,M3.2.0", pos: 14, missing: true},
		{in: "EST5EDT;M3.2.0,M11.1.0", pos: 7},
		{in: "EST5EDT,M13.2.0,M11.1.0", pos: 9},
		{in: "EST5EDT,M3.6.0,M11.1.0", pos: 11},
		{in: "EST5EDT,M3.2.7,M11.1.0", pos: 13},
		{in: "EST5EDT,M3.2,M11.1.0", pos: 12},
		{in: "EST5EDT,J0,J365", pos: 9},
		{in: "EST5EDT,366,J365", pos: 8},
		{in: "EST5EDT,X,J365", pos: 8},
		{in: "EST5EDT,M3.2.0/168,M11.1.0", pos: 15},
		{in: "EST5EDT,M3.2.0,M11.1.0x", pos: 22},
		{in: "Europe/Berlin", pos: 6},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			_, err := Parse(tt.in)
			var serr *SyntaxError
			if !errors.As(err, &serr) {
				t.Fatalf("Parse() error = %v, want *SyntaxError", err)
			}
			if serr.Pos != tt.pos {
				t.Errorf("Parse() error position = %d, want %d (%v)", serr.Pos, tt.pos, err)
			}
			if got := errors.Is(err, ErrMissingRules); got != tt.missing {
				t.Errorf("errors.Is(err, ErrMissingRules) = %v, want %v", got, tt.missing)
			}
			if Validate(tt.in, true).Valid {
				t.Errorf("Validate() reports %q valid", tt.in)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		in            string
		requireOffset bool
		want          Validation
	}{
		{"UTC", false, Validation{Valid: true}},
		{"UTC", true, Validation{}},
		{"UTC0", true, Validation{Valid: true}},
		{"CET-1CEST,M3.5.0,M10.5.0/3", true, Validation{Valid: true, HasDST: true}},
		{"CET-1CEST", false, Validation{}},
		{"Europe/Berlin", false, Validation{}},
		{"", false, Validation{}},
	}
	for _, tt := range tests {
		if got := Validate(tt.in, tt.requireOffset); got != tt.want {
			t.Errorf("Validate(%q, %v) = %+v, want %+v", tt.in, tt.requireOffset, got, tt.want)
		}
	}
}

func utc(year int, month time.Month, day, hour, min int) int64 {
	return time.Date(year, month, day, hour, min, 0, 0, time.UTC).UnixMilli()
}

func TestTransitions(t *testing.T) {
	tests := []struct {
		rule string
		year int64
		want []Transition
	}{
		{
			rule: "XST-2XDT,M3.5.0/3,M10.5.0/4",
			year: 2024,
			want: []Transition{
				{At: utc(2024, time.March, 31, 1, 0), Offset: 10800, StandardOffset: 7200, DaylightOffset: 3600, Abbreviation: "XDT"},
				{At: utc(2024, time.October, 27, 1, 0), Offset: 7200, StandardOffset: 7200, Abbreviation: "XST"},
			},
		},
		{
			rule: "CET-1CEST,M3.5.0,M10.5.0/3",
			year: 2023,
			want: []Transition{
				{At: utc(2023, time.March, 26, 1, 0), Offset: 7200, StandardOffset: 3600, DaylightOffset: 3600, Abbreviation: "CEST"},
				{At: utc(2023, time.October, 29, 1, 0), Offset: 3600, StandardOffset: 3600, Abbreviation: "CET"},
			},
		},
		{
			rule: "AEST-10AEDT,M10.1.0,M4.1.0/3",
			year: 2024,
			want: []Transition{
				{At: utc(2024, time.April, 6, 16, 0), Offset: 36000, StandardOffset: 36000, Abbreviation: "AEST"},
				{At: utc(2024, time.October, 5, 16, 0), Offset: 39600, StandardOffset: 36000, DaylightOffset: 3600, Abbreviation: "AEDT"},
			},
		},
		{
			rule: "IST-2IDT,M3.4.4/26,M10.5.0",
			year: 2024,
			want: []Transition{
				{At: utc(2024, time.March, 29, 0, 0), Offset: 10800, StandardOffset: 7200, DaylightOffset: 3600, Abbreviation: "IDT"},
				{At: utc(2024, time.October, 26, 23, 0), Offset: 7200, StandardOffset: 7200, Abbreviation: "IST"},
			},
		},
		{
			rule: "<-02>2<-01>,M3.5.0/-1,M10.5.0/0",
			year: 2024,
			want: []Transition{
				{At: utc(2024, time.March, 31, 1, 0), Offset: -3600, StandardOffset: -7200, DaylightOffset: 3600, Abbreviation: "-01"},
				{At: utc(2024, time.October, 27, 1, 0), Offset: -7200, StandardOffset: -7200, Abbreviation: "-02"},
			},
		},
		{
			rule: "XXX0YYY,J60,J300",
			year: 2024,
			want: []Transition{
				{At: utc(2024, time.March, 1, 2, 0), Offset: 3600, DaylightOffset: 3600, Abbreviation: "YYY"},
				{At: utc(2024, time.October, 27, 1, 0), Offset: 0, Abbreviation: "XXX"},
			},
		},
		{
			rule: "XXX0YYY,59,300",
			year: 2024,
			want: []Transition{
				{At: utc(2024, time.February, 29, 2, 0), Offset: 3600, DaylightOffset: 3600, Abbreviation: "YYY"},
				{At: utc(2024, time.October, 27, 1, 0), Offset: 0, Abbreviation: "XXX"},
			},
		},
		{
			rule: "<+00>0<+01>,0/0,J365/25",
			year: 2024,
			want: []Transition{
				{At: Boundary, Offset: 3600, DaylightOffset: 3600, Abbreviation: "+01", Permanent: true},
			},
		},
		{
			rule: "XXX0YYY,J365/25,0/0",
			year: 2023,
			want: []Transition{
				{At: Boundary, Offset: 0, Abbreviation: "XXX", Permanent: true},
			},
		},
		{
			rule: "JST-9",
			year: 2024,
			want: []Transition{
				{At: Boundary, Offset: 32400, StandardOffset: 32400, Abbreviation: "JST", Permanent: true},
			},
		},
		{
			rule: "CET-1CEST,M3.5.0,M10.5.0/3",
			year: MaxYear + 1,
			want: nil,
		},
		{
			rule: "CET-1CEST,M3.5.0,M10.5.0/3",
			year: MinYear - 1,
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.rule, func(t *testing.T) {
			r, err := Parse(tt.rule)
			if err != nil {
				t.Fatalf("Parse() failed: %v", err)
			}
			if diff := cmp.Diff(r.Transitions(tt.year), tt.want); diff != "" {
				t.Errorf("Transitions(%d) mismatch (-got +want):\n%s", tt.year, diff)
			}
		})
	}
}

func TestTransitionsAtRangeEnds(t *testing.T) {
	r, err := Parse("CET-1CEST,M3.5.0,M10.5.0/3")
	if err != nil {
		t.Fatal(err)
	}
	for _, year := range []int64{MinYear, MaxYear} {
		ts := r.Transitions(year)
		if len(ts) != 2 {
			t.Fatalf("Transitions(%d) returned %d transitions, want 2", year, len(ts))
		}
		if ts[0].At >= ts[1].At {
			t.Errorf("Transitions(%d) not ordered: %d, %d", year, ts[0].At, ts[1].At)
		}
		if (year > 0) != (ts[0].At > 0) {
			t.Errorf("Transitions(%d) overflowed: %d", year, ts[0].At)
		}
	}
}
