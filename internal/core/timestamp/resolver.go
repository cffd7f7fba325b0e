package timestamp

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const (
	minYear = 1970
	maxYear = 3000
)

// Time examples: 21:36:49.335, 7:05:00
var timePattern = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})(?:\.(\d{1,3}))?$`)

// Resolver turns HWiNFO date/time text pairs into epoch milliseconds.
type Resolver struct {
	location *time.Location
	matchers []DateMatcher
}

// NewResolver creates a resolver that interprets wall clock times in loc.
// A nil location means time.Local.
func NewResolver(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{
		location: loc,
		matchers: DefaultDateMatchers(),
	}
}

// Location returns the zone wall clock times are interpreted in.
func (r *Resolver) Location() *time.Location {
	return r.location
}

// Resolve returns the epoch millisecond timestamp for the pair, or false when
// either part cannot be parsed.
func (r *Resolver) Resolve(dateText, timeText string) (int64, bool) {
	date := strings.TrimSpace(dateText)
	clock := strings.TrimSpace(timeText)
	if date == "" || clock == "" {
		return 0, false
	}

	d, ok := r.ResolveDate(date)
	if !ok {
		return 0, false
	}

	hh, mm, ss, ms, ok := parseClock(clock)
	if !ok {
		return 0, false
	}

	t := time.Date(d.Year, time.Month(d.Month), d.Day, hh, mm, ss, ms*int(time.Millisecond), r.location)
	return t.UnixMilli(), true
}

// ResolveDate runs the matchers in order and validates the result.
func (r *Resolver) ResolveDate(date string) (CalendarDate, bool) {
	tokens, ok := tokenizeDate(date)
	if !ok {
		return CalendarDate{}, false
	}

	year, _ := atoi(tokens.parts[tokens.yearIndex])
	if year < minYear || year > maxYear {
		return CalendarDate{}, false
	}

	for _, m := range r.matchers {
		d, matched := m.Match(tokens)
		if !matched {
			continue
		}
		// No per-month day count check: 31.2.2025 rolls over like the source data tools do.
		if d.Month < 1 || d.Month > 12 || d.Day < 1 || d.Day > 31 {
			return CalendarDate{}, false
		}
		return d, true
	}
	return CalendarDate{}, false
}

func parseClock(clock string) (hh, mm, ss, ms int, ok bool) {
	m := timePattern.FindStringSubmatch(clock)
	if m == nil {
		return 0, 0, 0, 0, false
	}

	hh, _ = strconv.Atoi(m[1])
	mm, _ = strconv.Atoi(m[2])
	ss, _ = strconv.Atoi(m[3])
	if m[4] != "" {
		frac := m[4] + strings.Repeat("0", 3-len(m[4]))
		ms, _ = strconv.Atoi(frac)
	}

	if hh > 23 || mm > 59 || ss > 59 {
		return 0, 0, 0, 0, false
	}
	return hh, mm, ss, ms, true
}
