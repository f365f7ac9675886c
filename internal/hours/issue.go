package hours

// Kind classifies a parse failure precisely enough for the caller to render
// an actionable message. The engine never renders human language itself.
type Kind string

const (
	// KindWrongSeparator flags semicolon-separated ranges.
	KindWrongSeparator Kind = "wrong_separator"
	// KindInvalidCharacters flags anything outside digits, ':' and '-'.
	KindInvalidCharacters Kind = "invalid_characters"
	// KindMissingTimeColon flags a time value without its colon.
	KindMissingTimeColon Kind = "missing_time_colon"
	// KindBareTimeDigits flags a 4-digit time written without a colon (0900).
	KindBareTimeDigits Kind = "bare_time_digits"
	// KindMissingRangeDash flags a range without the open-close separator.
	KindMissingRangeDash Kind = "missing_range_dash"
	// KindInvalidTime flags a time that has the right shape but bad values.
	KindInvalidTime Kind = "invalid_time"
	// KindInvalidDate flags an unparseable special-hours date.
	KindInvalidDate Kind = "invalid_date"
	// KindSuspectRange is a warning for close <= open; the range still parses.
	KindSuspectRange Kind = "suspect_range"
)

// Warning reports whether the kind flags a non-blocking oddity rather than a
// parse failure.
func (k Kind) Warning() bool {
	return k == KindSuspectRange
}

// Issue is one structured parse problem carrying the offending raw text.
type Issue struct {
	Kind Kind   `json:"kind"`
	Raw  string `json:"raw"`
}
