// Package validation is the single rule set deciding whether a location
// record is fit for entry, import or publish. All three tiers are pure
// functions over a record snapshot; the authoring path, the import
// collaborator and the export feed all call the same predicates, so
// eligibility can never diverge between them.
package validation

import (
	"fmt"
	"strings"
	"time"

	"github.com/openlocus/locuspoint-backend/internal/hours"
	"github.com/openlocus/locuspoint-backend/pkg/db/models"
)

// openingDateHorizon caps how far in the future an opening date may sit.
const openingDateHorizon = 6 // months

// requiredField pairs a field identifier with its accessor.
type requiredField struct {
	name  string
	value func(*models.Location) string
}

var requiredFields = []requiredField{
	{"store_code", func(l *models.Location) string { return l.StoreCode }},
	{"business_name", func(l *models.Location) string { return l.BusinessName }},
	{"address_line1", func(l *models.Location) string { return l.AddressLine1 }},
	{"country_code", func(l *models.Location) string { return l.CountryCode }},
	{"primary_category", func(l *models.Location) string { return l.PrimaryCategory }},
}

// DayHoursField pairs a weekday column with its accessor so every caller
// iterates the seven fields the same way.
type DayHoursField struct {
	Name  string
	Value func(*models.Location) string
}

// DayHoursFields lists the seven weekday columns in week order.
func DayHoursFields() []DayHoursField {
	return []DayHoursField{
		{"monday_hours", func(l *models.Location) string { return l.MondayHours }},
		{"tuesday_hours", func(l *models.Location) string { return l.TuesdayHours }},
		{"wednesday_hours", func(l *models.Location) string { return l.WednesdayHours }},
		{"thursday_hours", func(l *models.Location) string { return l.ThursdayHours }},
		{"friday_hours", func(l *models.Location) string { return l.FridayHours }},
		{"saturday_hours", func(l *models.Location) string { return l.SaturdayHours }},
		{"sunday_hours", func(l *models.Location) string { return l.SundayHours }},
	}
}

type urlField struct {
	name  string
	value func(*models.Location) *string
}

var urlFields = []urlField{
	{"website", func(l *models.Location) *string { return l.Website }},
	{"menu_url", func(l *models.Location) *string { return l.MenuURL }},
	{"order_ahead_url", func(l *models.Location) *string { return l.OrderAheadURL }},
	{"reservation_url", func(l *models.Location) *string { return l.ReservationURL }},
	{"booking_url", func(l *models.Location) *string { return l.BookingURL }},
}

var socialURLFields = []urlField{
	{"facebook_url", func(l *models.Location) *string { return l.FacebookURL }},
	{"instagram_url", func(l *models.Location) *string { return l.InstagramURL }},
	{"x_url", func(l *models.Location) *string { return l.XURL }},
	{"youtube_url", func(l *models.Location) *string { return l.YoutubeURL }},
	{"pinterest_url", func(l *models.Location) *string { return l.PinterestURL }},
}

var freeTextFields = []requiredField{
	{"business_name", func(l *models.Location) string { return l.BusinessName }},
	{"description", func(l *models.Location) string { return l.Description }},
	{"address_line1", func(l *models.Location) string { return l.AddressLine1 }},
	{"address_line2", func(l *models.Location) string { return deref(l.AddressLine2) }},
	{"address_line3", func(l *models.Location) string { return deref(l.AddressLine3) }},
	{"address_line4", func(l *models.Location) string { return deref(l.AddressLine4) }},
	{"address_line5", func(l *models.Location) string { return deref(l.AddressLine5) }},
	{"city", func(l *models.Location) string { return deref(l.City) }},
	{"district", func(l *models.Location) string { return deref(l.District) }},
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Tier1 runs the entry-level checks: required presence, opening-date horizon
// and coordinate ranges. Save paths treat these as warnings; publish treats
// them as blockers via Tier3.
func Tier1(rec *models.Location, now time.Time) []Issue {
	var issues []Issue

	for _, f := range requiredFields {
		if f.value(rec) == "" {
			issues = append(issues, Issue{
				Field:   f.name,
				Kind:    KindMissingRequired,
				Message: fmt.Sprintf("%s is required", f.name),
			})
		}
	}

	if rec.OpeningDate != nil {
		horizon := now.AddDate(0, openingDateHorizon, 0)
		if rec.OpeningDate.After(horizon) {
			issues = append(issues, Issue{
				Field:   "opening_date",
				Kind:    KindOpeningDateTooFar,
				Message: fmt.Sprintf("opening date is more than %d months out", openingDateHorizon),
			})
		}
	}

	if rec.Latitude != nil && (*rec.Latitude < -90 || *rec.Latitude > 90) {
		issues = append(issues, Issue{
			Field:   "latitude",
			Kind:    KindLatitudeOutOfRange,
			Message: fmt.Sprintf("latitude %v outside [-90, 90]", *rec.Latitude),
		})
	}
	if rec.Longitude != nil && (*rec.Longitude < -180 || *rec.Longitude > 180) {
		issues = append(issues, Issue{
			Field:   "longitude",
			Kind:    KindLongitudeOutOfRange,
			Message: fmt.Sprintf("longitude %v outside [-180, 180]", *rec.Longitude),
		})
	}

	return issues
}

// Tier2 runs the import-level checks on a single record: Tier1 plus format
// scans (HTML in free text, URL schemes, hours grammar, URLs inside the
// description). Batch-only checks live in Tier2Batch.
func Tier2(rec *models.Location, now time.Time) []Issue {
	issues := Tier1(rec, now)

	for _, f := range freeTextFields {
		if value := f.value(rec); ContainsHTML(value) {
			issues = append(issues, Issue{
				Field:   f.name,
				Kind:    KindHTMLInText,
				Message: "HTML tags are not allowed",
			})
		}
	}

	for _, f := range urlFields {
		issues = append(issues, urlIssues(f.name, f.value(rec))...)
	}

	if ContainsURL(rec.Description) {
		issues = append(issues, Issue{
			Field:   "description",
			Kind:    KindDescriptionHasURL,
			Message: "description must not contain URLs",
		})
	}

	for _, f := range DayHoursFields() {
		_, hourIssues := hours.ParseDay(f.Value(rec))
		for _, hi := range hourIssues {
			issues = append(issues, Issue{
				Field:   f.Name,
				Kind:    hoursKind(hi.Kind),
				Message: fmt.Sprintf("hours value %q: %s", hi.Raw, hi.Kind),
			})
		}
	}

	return issues
}

// BatchItem carries one record through Tier2Batch together with the raw
// coordinate text the import supplied. DMS notation can only be seen before
// the import parses coordinates into floats, so the raw text rides along.
type BatchItem struct {
	Record       *models.Location
	RawLatitude  string
	RawLongitude string
}

// Tier2Batch validates an import batch, adding the cross-record duplicate
// store code check and DMS coordinate detection to each record's Tier2
// result. The i-th issue list belongs to the i-th item.
func Tier2Batch(items []BatchItem, now time.Time) [][]Issue {
	results := make([][]Issue, len(items))
	seen := make(map[string]int, len(items))

	for i, item := range items {
		issues := Tier2(item.Record, now)

		if code := item.Record.StoreCode; code != "" {
			if _, dup := seen[code]; dup {
				issues = append(issues, Issue{
					Field:   "store_code",
					Kind:    KindDuplicateStoreCode,
					Message: fmt.Sprintf("store code %q appears more than once in this batch", code),
				})
			} else {
				seen[code] = i
			}
		}

		if LooksLikeDMS(item.RawLatitude) {
			issues = append(issues, Issue{
				Field:   "latitude",
				Kind:    KindDMSCoordinates,
				Message: fmt.Sprintf("coordinate %q looks like degrees-minutes-seconds", item.RawLatitude),
			})
		}
		if LooksLikeDMS(item.RawLongitude) {
			issues = append(issues, Issue{
				Field:   "longitude",
				Kind:    KindDMSCoordinates,
				Message: fmt.Sprintf("coordinate %q looks like degrees-minutes-seconds", item.RawLongitude),
			})
		}

		results[i] = issues
	}
	return results
}

// Tier3 runs the publish-level checks: Tier2 plus trimmed-required
// enforcement, social URL validation, a fully parsing special-hours block and
// a clear external-pending flag. Warning-level hours issues do not block.
func Tier3(rec *models.Location, now time.Time) []Issue {
	issues := Tier2(rec, now)

	for _, f := range requiredFields {
		value := f.value(rec)
		if value != "" && strings.TrimSpace(value) == "" {
			issues = append(issues, Issue{
				Field:   f.name,
				Kind:    KindEmptyRequired,
				Message: fmt.Sprintf("%s must not be blank", f.name),
			})
		}
	}

	for _, f := range socialURLFields {
		issues = append(issues, urlIssues(f.name, f.value(rec))...)
	}

	_, specialIssues := hours.ParseSpecial(rec.SpecialHours)
	for _, si := range specialIssues {
		issues = append(issues, Issue{
			Field:   "special_hours",
			Kind:    hoursKind(si.Kind),
			Message: fmt.Sprintf("special hours entry %q: %s", si.Raw, si.Kind),
		})
	}

	if rec.ExternalPending {
		issues = append(issues, Issue{
			Field:   "external_pending",
			Kind:    KindExternalPending,
			Message: "record is awaiting external confirmation",
		})
	}

	return issues
}

// Publishable is THE publish predicate. The lifecycle classifier and the
// export feed both call it; nothing else may re-derive eligibility.
func Publishable(rec *models.Location, now time.Time) bool {
	return len(blocking(Tier3(rec, now))) == 0
}

func urlIssues(field string, value *string) []Issue {
	if value == nil || *value == "" {
		return nil
	}
	kind, ok := CheckURL(*value)
	if ok {
		return nil
	}
	msg := "URL is invalid"
	if kind == KindMissingScheme {
		msg = "URL must include a scheme such as https://"
	}
	return []Issue{{Field: field, Kind: kind, Message: msg}}
}
