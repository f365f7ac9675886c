package enums

import "fmt"

// ChangeSource tags where a field history entry originated.
type ChangeSource string

const (
	ChangeSourceManualEdit ChangeSource = "manual_edit"
	ChangeSourceImport     ChangeSource = "import"
	ChangeSourceMultiEdit  ChangeSource = "multi_edit"
	ChangeSourceBulkUpdate ChangeSource = "bulk_update"
	ChangeSourceRollback   ChangeSource = "rollback"
	ChangeSourceCRUD       ChangeSource = "crud"
)

var validChangeSources = []ChangeSource{
	ChangeSourceManualEdit,
	ChangeSourceImport,
	ChangeSourceMultiEdit,
	ChangeSourceBulkUpdate,
	ChangeSourceRollback,
	ChangeSourceCRUD,
}

// String implements fmt.Stringer.
func (s ChangeSource) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ChangeSource.
func (s ChangeSource) IsValid() bool {
	for _, candidate := range validChangeSources {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseChangeSource converts raw input into a ChangeSource.
func ParseChangeSource(value string) (ChangeSource, error) {
	for _, candidate := range validChangeSources {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid change source %q", value)
}
