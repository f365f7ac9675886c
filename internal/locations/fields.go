package locations

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/openlocus/locuspoint-backend/pkg/db/models"
	"github.com/openlocus/locuspoint-backend/pkg/enums"
)

// openingDateLayout is the canonical serialization for date-only fields.
const openingDateLayout = "2006-01-02"

// fieldDef binds a tracked field name to its canonical string accessor and
// mutator. The ledger stores canonical strings, so the pair must round-trip:
// SetField(rec, f, FieldValue(rec, f)) is always a no-op.
type fieldDef struct {
	name string
	get  func(*models.Location) string
	set  func(*models.Location, string) error
}

var trackedFields = []fieldDef{
	{"store_code", func(l *models.Location) string { return l.StoreCode },
		func(l *models.Location, v string) error { l.StoreCode = v; return nil }},
	{"business_name", func(l *models.Location) string { return l.BusinessName },
		func(l *models.Location, v string) error { l.BusinessName = v; return nil }},
	{"primary_category", func(l *models.Location) string { return l.PrimaryCategory },
		func(l *models.Location, v string) error { l.PrimaryCategory = v; return nil }},
	{"additional_categories", func(l *models.Location) string { return joinList(l.AdditionalCategories) },
		func(l *models.Location, v string) error { l.AdditionalCategories = splitList(v); return nil }},

	{"address_line1", func(l *models.Location) string { return l.AddressLine1 },
		func(l *models.Location, v string) error { l.AddressLine1 = v; return nil }},
	{"address_line2", func(l *models.Location) string { return fromPtr(l.AddressLine2) },
		func(l *models.Location, v string) error { l.AddressLine2 = toPtr(v); return nil }},
	{"address_line3", func(l *models.Location) string { return fromPtr(l.AddressLine3) },
		func(l *models.Location, v string) error { l.AddressLine3 = toPtr(v); return nil }},
	{"address_line4", func(l *models.Location) string { return fromPtr(l.AddressLine4) },
		func(l *models.Location, v string) error { l.AddressLine4 = toPtr(v); return nil }},
	{"address_line5", func(l *models.Location) string { return fromPtr(l.AddressLine5) },
		func(l *models.Location, v string) error { l.AddressLine5 = toPtr(v); return nil }},
	{"city", func(l *models.Location) string { return fromPtr(l.City) },
		func(l *models.Location, v string) error { l.City = toPtr(v); return nil }},
	{"state_province", func(l *models.Location) string { return fromPtr(l.StateProvince) },
		func(l *models.Location, v string) error { l.StateProvince = toPtr(v); return nil }},
	{"postal_code", func(l *models.Location) string { return fromPtr(l.PostalCode) },
		func(l *models.Location, v string) error { l.PostalCode = toPtr(v); return nil }},
	{"district", func(l *models.Location) string { return fromPtr(l.District) },
		func(l *models.Location, v string) error { l.District = toPtr(v); return nil }},
	{"country_code", func(l *models.Location) string { return l.CountryCode },
		func(l *models.Location, v string) error { l.CountryCode = v; return nil }},

	{"latitude", func(l *models.Location) string { return fromFloatPtr(l.Latitude) },
		func(l *models.Location, v string) error { return setFloatPtr(&l.Latitude, "latitude", v) }},
	{"longitude", func(l *models.Location) string { return fromFloatPtr(l.Longitude) },
		func(l *models.Location, v string) error { return setFloatPtr(&l.Longitude, "longitude", v) }},

	{"phone", func(l *models.Location) string { return fromPtr(l.Phone) },
		func(l *models.Location, v string) error { l.Phone = toPtr(v); return nil }},
	{"secondary_phone", func(l *models.Location) string { return fromPtr(l.SecondaryPhone) },
		func(l *models.Location, v string) error { l.SecondaryPhone = toPtr(v); return nil }},
	{"website", func(l *models.Location) string { return fromPtr(l.Website) },
		func(l *models.Location, v string) error { l.Website = toPtr(v); return nil }},

	{"opening_date", func(l *models.Location) string { return fromDatePtr(l.OpeningDate) },
		func(l *models.Location, v string) error { return setDatePtr(&l.OpeningDate, v) }},

	{"monday_hours", func(l *models.Location) string { return l.MondayHours },
		func(l *models.Location, v string) error { l.MondayHours = v; return nil }},
	{"tuesday_hours", func(l *models.Location) string { return l.TuesdayHours },
		func(l *models.Location, v string) error { l.TuesdayHours = v; return nil }},
	{"wednesday_hours", func(l *models.Location) string { return l.WednesdayHours },
		func(l *models.Location, v string) error { l.WednesdayHours = v; return nil }},
	{"thursday_hours", func(l *models.Location) string { return l.ThursdayHours },
		func(l *models.Location, v string) error { l.ThursdayHours = v; return nil }},
	{"friday_hours", func(l *models.Location) string { return l.FridayHours },
		func(l *models.Location, v string) error { l.FridayHours = v; return nil }},
	{"saturday_hours", func(l *models.Location) string { return l.SaturdayHours },
		func(l *models.Location, v string) error { l.SaturdayHours = v; return nil }},
	{"sunday_hours", func(l *models.Location) string { return l.SundayHours },
		func(l *models.Location, v string) error { l.SundayHours = v; return nil }},
	{"special_hours", func(l *models.Location) string { return l.SpecialHours },
		func(l *models.Location, v string) error { l.SpecialHours = v; return nil }},

	{"menu_url", func(l *models.Location) string { return fromPtr(l.MenuURL) },
		func(l *models.Location, v string) error { l.MenuURL = toPtr(v); return nil }},
	{"order_ahead_url", func(l *models.Location) string { return fromPtr(l.OrderAheadURL) },
		func(l *models.Location, v string) error { l.OrderAheadURL = toPtr(v); return nil }},
	{"reservation_url", func(l *models.Location) string { return fromPtr(l.ReservationURL) },
		func(l *models.Location, v string) error { l.ReservationURL = toPtr(v); return nil }},
	{"booking_url", func(l *models.Location) string { return fromPtr(l.BookingURL) },
		func(l *models.Location, v string) error { l.BookingURL = toPtr(v); return nil }},

	{"facebook_url", func(l *models.Location) string { return fromPtr(l.FacebookURL) },
		func(l *models.Location, v string) error { l.FacebookURL = toPtr(v); return nil }},
	{"instagram_url", func(l *models.Location) string { return fromPtr(l.InstagramURL) },
		func(l *models.Location, v string) error { l.InstagramURL = toPtr(v); return nil }},
	{"x_url", func(l *models.Location) string { return fromPtr(l.XURL) },
		func(l *models.Location, v string) error { l.XURL = toPtr(v); return nil }},
	{"youtube_url", func(l *models.Location) string { return fromPtr(l.YoutubeURL) },
		func(l *models.Location, v string) error { l.YoutubeURL = toPtr(v); return nil }},
	{"pinterest_url", func(l *models.Location) string { return fromPtr(l.PinterestURL) },
		func(l *models.Location, v string) error { l.PinterestURL = toPtr(v); return nil }},

	{"description", func(l *models.Location) string { return l.Description },
		func(l *models.Location, v string) error { l.Description = v; return nil }},
	{"temporarily_closed", func(l *models.Location) string { return strconv.FormatBool(l.TemporarilyClosed) },
		func(l *models.Location, v string) error { return setBool(&l.TemporarilyClosed, "temporarily_closed", v) }},
	{"external_pending", func(l *models.Location) string { return strconv.FormatBool(l.ExternalPending) },
		func(l *models.Location, v string) error { return setBool(&l.ExternalPending, "external_pending", v) }},
	{"status", func(l *models.Location) string { return l.Status.String() },
		func(l *models.Location, v string) error {
			status, err := enums.ParseLocationStatus(v)
			if err != nil {
				return err
			}
			l.Status = status
			return nil
		}},
	{"service_ids", func(l *models.Location) string { return joinList(l.ServiceIDs) },
		func(l *models.Location, v string) error { l.ServiceIDs = splitList(v); return nil }},
}

var fieldsByName = func() map[string]fieldDef {
	byName := make(map[string]fieldDef, len(trackedFields))
	for _, f := range trackedFields {
		byName[f.name] = f
	}
	return byName
}()

// TrackedFields lists every field the ledger records, in declaration order.
func TrackedFields() []string {
	names := make([]string, len(trackedFields))
	for i, f := range trackedFields {
		names[i] = f.name
	}
	return names
}

// IsTrackedField reports whether the name identifies a ledger-tracked field.
func IsTrackedField(name string) bool {
	_, ok := fieldsByName[name]
	return ok
}

// FieldValue returns the canonical string serialization of a tracked field.
func FieldValue(rec *models.Location, field string) (string, error) {
	def, ok := fieldsByName[field]
	if !ok {
		return "", fmt.Errorf("unknown field %q", field)
	}
	return def.get(rec), nil
}

// SetField writes a canonical string value back onto the record.
func SetField(rec *models.Location, field, value string) error {
	def, ok := fieldsByName[field]
	if !ok {
		return fmt.Errorf("unknown field %q", field)
	}
	return def.set(rec, value)
}

// FieldChange is one field-level difference between two record snapshots.
type FieldChange struct {
	Field string
	Old   string
	New   string
}

// Diff compares two snapshots field by field and returns the changes in
// declaration order. Fields whose canonical serializations match produce
// nothing, so nil-vs-empty never shows up as a change.
func Diff(before, after *models.Location) []FieldChange {
	var changes []FieldChange
	for _, f := range trackedFields {
		oldVal, newVal := f.get(before), f.get(after)
		if oldVal != newVal {
			changes = append(changes, FieldChange{Field: f.name, Old: oldVal, New: newVal})
		}
	}
	return changes
}

func fromPtr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func toPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func fromFloatPtr(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', -1, 64)
}

func setFloatPtr(dst **float64, field, value string) error {
	if value == "" {
		*dst = nil
		return nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q", field, value)
	}
	*dst = &parsed
	return nil
}

func fromDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(openingDateLayout)
}

func setDatePtr(dst **time.Time, value string) error {
	if value == "" {
		*dst = nil
		return nil
	}
	parsed, err := time.Parse(openingDateLayout, value)
	if err != nil {
		return fmt.Errorf("invalid date %q", value)
	}
	*dst = &parsed
	return nil
}

func setBool(dst *bool, field, value string) error {
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q", field, value)
	}
	*dst = parsed
	return nil
}

func joinList(values pq.StringArray) string {
	return strings.Join(values, ",")
}

func splitList(value string) pq.StringArray {
	if value == "" {
		return nil
	}
	return pq.StringArray(strings.Split(value, ","))
}
