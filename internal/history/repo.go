package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openlocus/locuspoint-backend/internal/repo"
	"github.com/openlocus/locuspoint-backend/pkg/db/models"
	"github.com/openlocus/locuspoint-backend/pkg/pagination"
)

// ListFilter narrows a history listing. All populated filters apply
// conjunctively.
type ListFilter struct {
	TenantID   uuid.UUID
	LocationID uuid.UUID
	Field      string
	ActorID    uuid.UUID
	Query      string
	From       *time.Time
	To         *time.Time
}

// Repository manages persistence for field history entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, entry *models.FieldHistoryEntry) error
	FindByID(ctx context.Context, tenantID, entryID uuid.UUID) (*models.FieldHistoryEntry, error)
	List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.FieldHistoryEntry, string, error)
	PruneField(ctx context.Context, locationID uuid.UUID, field string, keep int) (int64, error)
	PruneAll(ctx context.Context, keep int) (int64, error)
}

type repository struct {
	base repo.Base
}

// NewRepository returns a history repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: r.base.Rebind(tx)}
}

func (r *repository) Insert(ctx context.Context, entry *models.FieldHistoryEntry) error {
	return r.base.DB(ctx).Create(entry).Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, entryID uuid.UUID) (*models.FieldHistoryEntry, error) {
	var entry models.FieldHistoryEntry
	err := r.base.DB(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, entryID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *repository) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.FieldHistoryEntry, string, error) {
	query := r.base.DB(ctx).
		Model(&models.FieldHistoryEntry{}).
		Where("tenant_id = ?", filter.TenantID)

	if filter.LocationID != uuid.Nil {
		query = query.Where("location_id = ?", filter.LocationID)
	}
	if filter.Field != "" {
		query = query.Where("field = ?", filter.Field)
	}
	if filter.ActorID != uuid.Nil {
		query = query.Where("actor_id = ?", filter.ActorID)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("old_value LIKE ? OR new_value LIKE ?", like, like)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}

	cursor, err := pagination.ParseCursor(page.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"created_at < ? OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(page.Limit)
	var entries []models.FieldHistoryEntry
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&entries).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(entries) > limit {
		entries = entries[:limit]
		last := entries[len(entries)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return entries, next, nil
}

func (r *repository) PruneField(ctx context.Context, locationID uuid.UUID, field string, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	survivors := r.base.DB(ctx).
		Model(&models.FieldHistoryEntry{}).
		Select("id").
		Where("location_id = ? AND field = ?", locationID, field).
		Order("created_at DESC, id DESC").
		Limit(keep)

	result := r.base.DB(ctx).
		Where("location_id = ? AND field = ?", locationID, field).
		Where("id NOT IN (?)", survivors).
		Delete(&models.FieldHistoryEntry{})
	return result.RowsAffected, result.Error
}

// PruneAll sweeps every (location, field) pair holding more rows than the
// retention window allows. Used by the weekly maintenance job to clean up
// after rows that slipped past the on-write prune.
func (r *repository) PruneAll(ctx context.Context, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	type pair struct {
		LocationID uuid.UUID
		Field      string
	}
	var overfull []pair
	err := r.base.DB(ctx).
		Model(&models.FieldHistoryEntry{}).
		Select("location_id, field").
		Group("location_id, field").
		Having("COUNT(*) > ?", keep).
		Scan(&overfull).Error
	if err != nil {
		return 0, err
	}

	var pruned int64
	for _, p := range overfull {
		n, err := r.PruneField(ctx, p.LocationID, p.Field, keep)
		if err != nil {
			return pruned, err
		}
		pruned += n
	}
	return pruned, nil
}
