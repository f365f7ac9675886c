package enums

import "fmt"

// LocationStatus is the stored half of lifecycle classification.
// Records only ever move pending<->active; the Needs-Attention bucket is
// derived, never stored.
type LocationStatus string

const (
	LocationStatusPending LocationStatus = "pending"
	LocationStatusActive  LocationStatus = "active"
)

var validLocationStatuses = []LocationStatus{
	LocationStatusPending,
	LocationStatusActive,
}

// String implements fmt.Stringer.
func (s LocationStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known LocationStatus.
func (s LocationStatus) IsValid() bool {
	for _, candidate := range validLocationStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseLocationStatus converts raw input into a LocationStatus.
func ParseLocationStatus(value string) (LocationStatus, error) {
	for _, candidate := range validLocationStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid location status %q", value)
}
