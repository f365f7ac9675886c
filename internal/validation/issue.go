package validation

import "github.com/openlocus/locuspoint-backend/internal/hours"

// Kind is the machine-readable classification of a validation failure.
// Rendering kinds into user language is the caller's job; the Message field
// is a terse developer-facing convenience, not localized copy.
type Kind string

const (
	KindMissingRequired    Kind = "missing_required"
	KindEmptyRequired      Kind = "empty_required"
	KindOpeningDateTooFar  Kind = "opening_date_too_far"
	KindLatitudeOutOfRange Kind = "latitude_out_of_range"
	KindLongitudeOutOfRange Kind = "longitude_out_of_range"
	KindDuplicateStoreCode Kind = "duplicate_store_code"
	KindDMSCoordinates     Kind = "dms_coordinates"
	KindHTMLInText         Kind = "html_in_text"
	KindMissingScheme      Kind = "missing_scheme"
	KindInvalidURL         Kind = "invalid_url"
	KindDescriptionHasURL  Kind = "description_has_url"
	KindExternalPending    Kind = "external_pending"
)

// Hours grammar kinds surface with an "hours_" prefix so every distinct parse
// failure keeps its own identity at the validation layer.
func hoursKind(k hours.Kind) Kind {
	return Kind("hours_" + string(k))
}

// Issue is one validation finding on a single field.
type Issue struct {
	Field   string `json:"field"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// Warning reports whether the issue never blocks publish eligibility.
func (i Issue) Warning() bool {
	return i.Kind == hoursKind(hours.KindSuspectRange)
}

// blocking filters out warning-level issues.
func blocking(issues []Issue) []Issue {
	out := issues[:0:0]
	for _, issue := range issues {
		if !issue.Warning() {
			out = append(out, issue)
		}
	}
	return out
}
