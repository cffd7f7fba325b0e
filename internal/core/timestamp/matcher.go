package timestamp

import (
	"regexp"
	"strconv"
	"strings"
)

var (
	yearPattern  = regexp.MustCompile(`^\d{4}$`)
	digitPattern = regexp.MustCompile(`^\d+$`)
)

// CalendarDate is a date resolved from text, before range validation.
type CalendarDate struct {
	Year  int
	Month int
	Day   int
}

// dateTokens is a date string split into its three parts.
type dateTokens struct {
	parts     []string
	yearIndex int
}

// DateMatcher recognizes one ordering of day, month and year.
type DateMatcher interface {
	// Name returns a short identifier such as "ymd".
	Name() string
	// Match returns the date when the tokens follow this matcher's ordering.
	Match(tokens dateTokens) (CalendarDate, bool)
}

// yearFirstMatcher handles Y-M-D, e.g. 2025-03-22.
type yearFirstMatcher struct{}

func (yearFirstMatcher) Name() string { return "ymd" }

func (yearFirstMatcher) Match(tokens dateTokens) (CalendarDate, bool) {
	if tokens.yearIndex != 0 {
		return CalendarDate{}, false
	}
	year, _ := atoi(tokens.parts[0])
	month, ok := atoi(tokens.parts[1])
	if !ok {
		return CalendarDate{}, false
	}
	day, ok := atoi(tokens.parts[2])
	if !ok {
		return CalendarDate{}, false
	}
	return CalendarDate{Year: year, Month: month, Day: day}, true
}

// yearLastMatcher handles D.M.Y and M.D.Y, e.g. 22.3.2025 and 3/22/2025.
// A first part above 12 must be the day; otherwise a second part above 12
// must be the day; otherwise day-first is assumed.
type yearLastMatcher struct{}

func (yearLastMatcher) Name() string { return "dmy/mdy" }

func (yearLastMatcher) Match(tokens dateTokens) (CalendarDate, bool) {
	if tokens.yearIndex != 2 {
		return CalendarDate{}, false
	}
	year, _ := atoi(tokens.parts[2])
	a, ok := atoi(tokens.parts[0])
	if !ok {
		return CalendarDate{}, false
	}
	b, ok := atoi(tokens.parts[1])
	if !ok {
		return CalendarDate{}, false
	}

	switch {
	case a > 12:
		return CalendarDate{Year: year, Month: b, Day: a}, true
	case b > 12:
		return CalendarDate{Year: year, Month: a, Day: b}, true
	default:
		return CalendarDate{Year: year, Month: b, Day: a}, true
	}
}

// DefaultDateMatchers is the ordered matcher list. A year in the middle
// position is deliberately not matched.
func DefaultDateMatchers() []DateMatcher {
	return []DateMatcher{yearFirstMatcher{}, yearLastMatcher{}}
}

// tokenizeDate splits on '.', '/' or '-', dropping empty parts, and locates
// the four digit year.
func tokenizeDate(date string) (dateTokens, bool) {
	raw := strings.FieldsFunc(date, func(r rune) bool {
		return r == '.' || r == '/' || r == '-'
	})
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) != 3 {
		return dateTokens{}, false
	}

	yearIndex := -1
	for i, p := range parts {
		if yearPattern.MatchString(p) {
			yearIndex = i
			break
		}
	}
	if yearIndex == -1 {
		return dateTokens{}, false
	}
	return dateTokens{parts: parts, yearIndex: yearIndex}, true
}

func atoi(s string) (int, bool) {
	if !digitPattern.MatchString(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}
