package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/openlocus/locuspoint-backend/pkg/enums"
)

// Sentinel field names for whole-record ledger events. Ordinary field names
// never start with an underscore.
const (
	HistoryFieldCreated = "_created"
	HistoryFieldDeleted = "_deleted"
)

// FieldHistoryEntry is one immutable row in the field history ledger.
//
// LocationID is a weak reference: deleting the location must not cascade into
// its history, so there is deliberately no foreign key.
type FieldHistoryEntry struct {
	ID         uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID   uuid.UUID `gorm:"column:tenant_id;type:uuid;not null;index:idx_history_tenant_created" json:"tenant_id"`
	LocationID uuid.UUID `gorm:"column:location_id;type:uuid;not null;index:idx_history_location_field" json:"location_id"`

	Field    string `gorm:"column:field;not null;index:idx_history_location_field" json:"field"`
	OldValue string `gorm:"column:old_value;not null;default:''" json:"old_value"`
	NewValue string `gorm:"column:new_value;not null;default:''" json:"new_value"`

	ActorID    uuid.UUID          `gorm:"column:actor_id;type:uuid;not null" json:"actor_id"`
	ActorEmail string             `gorm:"column:actor_email;not null" json:"actor_email"`
	Source     enums.ChangeSource `gorm:"column:source;type:change_source;not null" json:"source"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:idx_history_location_field;index:idx_history_tenant_created" json:"created_at"`
}

// TableName pins the table name.
func (FieldHistoryEntry) TableName() string {
	return "field_history_entries"
}

// IsSentinel reports whether the entry records record creation or deletion
// rather than an ordinary field change.
func (e FieldHistoryEntry) IsSentinel() bool {
	return e.Field == HistoryFieldCreated || e.Field == HistoryFieldDeleted
}
