package enums

import "fmt"

// BackupCadence names a snapshot schedule with its own retention window.
type BackupCadence string

const (
	BackupCadenceOnWrite BackupCadence = "on_write"
	BackupCadenceWeekly  BackupCadence = "weekly"
)

var validBackupCadences = []BackupCadence{
	BackupCadenceOnWrite,
	BackupCadenceWeekly,
}

// String implements fmt.Stringer.
func (c BackupCadence) String() string {
	return string(c)
}

// IsValid reports whether the value is a known BackupCadence.
func (c BackupCadence) IsValid() bool {
	for _, candidate := range validBackupCadences {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseBackupCadence converts raw input into a BackupCadence.
func ParseBackupCadence(value string) (BackupCadence, error) {
	for _, candidate := range validBackupCadences {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid backup cadence %q", value)
}
