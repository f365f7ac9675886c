// Package hours implements the opening-hours mini-language used by location
// records: a day is either closed or a comma-separated list of HH:MM-HH:MM
// ranges, and special hours override single dates with a day value.
//
// Parsing never panics and never returns a Go error; malformed input comes
// back as Issue values so callers can surface every problem at once.
package hours

import (
	"strings"
)

// TimeRange is one open/close pair in zero-padded 24-hour HH:MM form.
type TimeRange struct {
	Open  string `json:"open"`
	Close string `json:"close"`
}

// DayHours is one weekday's opening hours. Closed and a non-empty Ranges
// list are mutually exclusive.
type DayHours struct {
	Closed bool        `json:"closed"`
	Ranges []TimeRange `json:"ranges,omitempty"`
}

// ClosedDay is the canonical closed value.
func ClosedDay() DayHours {
	return DayHours{Closed: true}
}

// Equal compares two DayHours values structurally.
func (d DayHours) Equal(other DayHours) bool {
	if d.Closed != other.Closed || len(d.Ranges) != len(other.Ranges) {
		return false
	}
	for i := range d.Ranges {
		if d.Ranges[i] != other.Ranges[i] {
			return false
		}
	}
	return true
}

const closedLiteral = "x"

// ParseDay parses a single day's hours text.
//
// Empty string, the lowercase literal "x" and "closed" (any case) all mean
// closed. A range with close <= open is accepted but flagged with a
// KindSuspectRange warning; overnight shifts are a real use case and the
// grammar stays permissive about them.
//
// When any non-warning issue is returned the DayHours value is the zero
// value and must not be stored.
func ParseDay(text string) (DayHours, []Issue) {
	trimmed := strings.TrimSpace(text)
	if isClosedText(trimmed) {
		return ClosedDay(), nil
	}

	if strings.Contains(trimmed, ";") {
		return DayHours{}, []Issue{{Kind: KindWrongSeparator, Raw: text}}
	}

	var (
		day      DayHours
		issues   []Issue
		failed   bool
		segments = strings.Split(trimmed, ",")
	)
	for _, segment := range segments {
		segment = strings.TrimSpace(segment)
		r, segIssues := parseRange(segment)
		for _, issue := range segIssues {
			issues = append(issues, issue)
			if !issue.Kind.Warning() {
				failed = true
			}
		}
		if !failed {
			day.Ranges = append(day.Ranges, r)
		}
	}
	if failed {
		return DayHours{}, issues
	}
	return day, issues
}

// FormatDay serializes a DayHours back to grammar text. Closed days always
// come out as the canonical "x", regardless of which closed spelling was
// parsed.
func FormatDay(day DayHours) string {
	if day.Closed || len(day.Ranges) == 0 {
		return closedLiteral
	}
	parts := make([]string, 0, len(day.Ranges))
	for _, r := range day.Ranges {
		parts = append(parts, r.Open+"-"+r.Close)
	}
	return strings.Join(parts, ", ")
}

// Normalize parses and reformats day text, collapsing every closed spelling
// to "x" and canonicalizing separators. Text that does not parse is returned
// unchanged so the raw value stays visible to validation.
func Normalize(text string) string {
	day, issues := ParseDay(text)
	for _, issue := range issues {
		if !issue.Kind.Warning() {
			return text
		}
	}
	return FormatDay(day)
}

func isClosedText(trimmed string) bool {
	if trimmed == "" || trimmed == closedLiteral {
		return true
	}
	return strings.EqualFold(trimmed, "closed")
}

func parseRange(segment string) (TimeRange, []Issue) {
	if segment == "" {
		return TimeRange{}, []Issue{{Kind: KindInvalidCharacters, Raw: segment}}
	}
	for _, r := range segment {
		if (r < '0' || r > '9') && r != ':' && r != '-' {
			return TimeRange{}, []Issue{{Kind: KindInvalidCharacters, Raw: segment}}
		}
	}

	dash := strings.Index(segment, "-")
	if dash < 0 {
		return TimeRange{}, []Issue{{Kind: KindMissingRangeDash, Raw: segment}}
	}
	openText, closeText := segment[:dash], segment[dash+1:]

	var issues []Issue
	open, openIssues := parseTime(openText)
	issues = append(issues, openIssues...)
	closeAt, closeIssues := parseTime(closeText)
	issues = append(issues, closeIssues...)
	if len(issues) > 0 {
		return TimeRange{}, issues
	}

	if closeAt <= open {
		issues = append(issues, Issue{Kind: KindSuspectRange, Raw: segment})
	}
	return TimeRange{Open: openText, Close: closeText}, issues
}

// parseTime validates a zero-padded HH:MM value, returning minutes since
// midnight for range comparison.
func parseTime(text string) (int, []Issue) {
	if !strings.Contains(text, ":") {
		if len(text) == 4 && allDigits(text) {
			return 0, []Issue{{Kind: KindBareTimeDigits, Raw: text}}
		}
		return 0, []Issue{{Kind: KindMissingTimeColon, Raw: text}}
	}
	parts := strings.SplitN(text, ":", 2)
	hh, mm := parts[0], parts[1]
	if len(hh) != 2 || len(mm) != 2 || !allDigits(hh) || !allDigits(mm) {
		return 0, []Issue{{Kind: KindInvalidTime, Raw: text}}
	}
	hour := int(hh[0]-'0')*10 + int(hh[1]-'0')
	minute := int(mm[0]-'0')*10 + int(mm[1]-'0')
	if hour > 23 || minute > 59 {
		return 0, []Issue{{Kind: KindInvalidTime, Raw: text}}
	}
	return hour*60 + minute, nil
}

func allDigits(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
