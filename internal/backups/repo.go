package backups

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openlocus/locuspoint-backend/internal/repo"
	"github.com/openlocus/locuspoint-backend/pkg/db/models"
	"github.com/openlocus/locuspoint-backend/pkg/enums"
)

// Repository manages persistence for backup snapshots.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, snapshot *models.BackupSnapshot) error
	FindByID(ctx context.Context, tenantID, snapshotID uuid.UUID) (*models.BackupSnapshot, error)
	List(ctx context.Context, tenantID uuid.UUID, cadence enums.BackupCadence) ([]models.BackupSnapshot, error)
	PruneCadence(ctx context.Context, tenantID uuid.UUID, cadence enums.BackupCadence, keep int) (int64, error)
}

type repository struct {
	base repo.Base
}

// NewRepository returns a backup repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: r.base.Rebind(tx)}
}

func (r *repository) Insert(ctx context.Context, snapshot *models.BackupSnapshot) error {
	return r.base.DB(ctx).Create(snapshot).Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, snapshotID uuid.UUID) (*models.BackupSnapshot, error) {
	var snapshot models.BackupSnapshot
	err := r.base.DB(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, snapshotID).
		First(&snapshot).Error
	if err != nil {
		return nil, err
	}
	return &snapshot, nil
}

// List returns snapshot metadata newest-first. Content blobs are omitted;
// fetch a single snapshot for the payload.
func (r *repository) List(ctx context.Context, tenantID uuid.UUID, cadence enums.BackupCadence) ([]models.BackupSnapshot, error) {
	query := r.base.DB(ctx).
		Model(&models.BackupSnapshot{}).
		Select("id, tenant_id, cadence, name, created_at").
		Where("tenant_id = ?", tenantID)
	if cadence != "" {
		query = query.Where("cadence = ?", cadence)
	}

	var snapshots []models.BackupSnapshot
	if err := query.Order("created_at DESC, id DESC").Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (r *repository) PruneCadence(ctx context.Context, tenantID uuid.UUID, cadence enums.BackupCadence, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	survivors := r.base.DB(ctx).
		Model(&models.BackupSnapshot{}).
		Select("id").
		Where("tenant_id = ? AND cadence = ?", tenantID, cadence).
		Order("created_at DESC, id DESC").
		Limit(keep)

	result := r.base.DB(ctx).
		Where("tenant_id = ? AND cadence = ?", tenantID, cadence).
		Where("id NOT IN (?)", survivors).
		Delete(&models.BackupSnapshot{})
	return result.RowsAffected, result.Error
}
