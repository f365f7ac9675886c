package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/openlocus/locuspoint-backend/pkg/enums"
)

// BackupSnapshot is one full-tenant export blob produced by backup rotation.
// Rows beyond the cadence's rolling window are deleted by the insert that
// pushed them out.
type BackupSnapshot struct {
	ID       uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TenantID uuid.UUID           `gorm:"column:tenant_id;type:uuid;not null;index:idx_backups_tenant_cadence" json:"tenant_id"`
	Cadence  enums.BackupCadence `gorm:"column:cadence;type:backup_cadence;not null;index:idx_backups_tenant_cadence" json:"cadence"`

	Name    string `gorm:"column:name;not null;uniqueIndex" json:"name"`
	Content []byte `gorm:"column:content;not null" json:"-"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime;index:idx_backups_tenant_cadence" json:"created_at"`
}

// TableName pins the table name.
func (BackupSnapshot) TableName() string {
	return "backup_snapshots"
}
