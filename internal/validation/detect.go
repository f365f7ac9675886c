package validation

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	htmlTagRe = regexp.MustCompile(`<\s*/?\s*[a-zA-Z][^>]*>`)
	urlLikeRe = regexp.MustCompile(`(?i)\bhttps?://|\bwww\.`)
	// Degree/minute/second notation: 40°26'46"N, 40d 26m 46s, 40 26 46.302
	dmsSymbolRe = regexp.MustCompile(`[°º′″'"]|(?i)\d\s*[dms]\b`)
	dmsTripleRe = regexp.MustCompile(`^\s*-?\d{1,3}\s+\d{1,2}\s+\d{1,2}(\.\d+)?\s*[NSEWnsew]?\s*$`)
)

// ContainsHTML reports whether free text carries markup tags.
func ContainsHTML(text string) bool {
	return htmlTagRe.MatchString(text)
}

// ContainsURL reports whether free text embeds something URL-shaped.
func ContainsURL(text string) bool {
	return urlLikeRe.MatchString(text)
}

// LooksLikeDMS reports whether raw coordinate text is written in
// degrees-minutes-seconds notation instead of a decimal degree. Detection
// only flags; conversion is left to the operator.
func LooksLikeDMS(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return false
	}
	return dmsSymbolRe.MatchString(raw) || dmsTripleRe.MatchString(raw)
}

// CheckURL validates a URL value. It returns ok=true for a well-formed
// absolute http(s) URL, otherwise the Kind describing what is wrong.
func CheckURL(value string) (Kind, bool) {
	parsed, err := url.Parse(strings.TrimSpace(value))
	if err != nil {
		return KindInvalidURL, false
	}
	if parsed.Scheme == "" {
		return KindMissingScheme, false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return KindInvalidURL, false
	}
	if parsed.Host == "" {
		return KindInvalidURL, false
	}
	return "", true
}
