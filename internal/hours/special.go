package hours

import (
	"regexp"
	"strings"
	"time"
)

// SpecialDay overrides one calendar date with a DayHours value.
type SpecialDay struct {
	Date  string   `json:"date"` // YYYY-MM-DD
	Hours DayHours `json:"hours"`
}

var datePrefixRe = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}\s*:`)

// ParseSpecial parses a special-hours block: comma-separated
// "YYYY-MM-DD: <day-or-x>" entries. Each entry splits on its FIRST colon only,
// so the time values after it keep theirs. A comma segment that does not open
// with a date continues the previous entry's hours list.
func ParseSpecial(text string) ([]SpecialDay, []Issue) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, nil
	}

	var entries []string
	for _, segment := range strings.Split(trimmed, ",") {
		if datePrefixRe.MatchString(strings.TrimSpace(segment)) || len(entries) == 0 {
			entries = append(entries, segment)
			continue
		}
		entries[len(entries)-1] += "," + segment
	}

	var (
		days   []SpecialDay
		issues []Issue
		failed bool
	)
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		colon := strings.Index(entry, ":")
		if colon < 0 {
			issues = append(issues, Issue{Kind: KindInvalidDate, Raw: entry})
			failed = true
			continue
		}
		dateText := strings.TrimSpace(entry[:colon])
		if _, err := time.Parse("2006-01-02", dateText); err != nil {
			issues = append(issues, Issue{Kind: KindInvalidDate, Raw: entry})
			failed = true
			continue
		}

		day, dayIssues := ParseDay(entry[colon+1:])
		for _, issue := range dayIssues {
			issues = append(issues, issue)
			if !issue.Kind.Warning() {
				failed = true
			}
		}
		if !failed {
			days = append(days, SpecialDay{Date: dateText, Hours: day})
		}
	}
	if failed {
		return nil, issues
	}
	return days, issues
}

// FormatSpecial serializes special days back to grammar text.
func FormatSpecial(days []SpecialDay) string {
	parts := make([]string, 0, len(days))
	for _, day := range days {
		parts = append(parts, day.Date+": "+FormatDay(day.Hours))
	}
	return strings.Join(parts, ", ")
}

// NormalizeSpecial parses and reformats a special-hours block, leaving
// unparseable text unchanged.
func NormalizeSpecial(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	days, issues := ParseSpecial(text)
	for _, issue := range issues {
		if !issue.Kind.Warning() {
			return text
		}
	}
	return FormatSpecial(days)
}
