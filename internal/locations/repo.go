package locations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openlocus/locuspoint-backend/internal/repo"
	"github.com/openlocus/locuspoint-backend/pkg/db/models"
	"github.com/openlocus/locuspoint-backend/pkg/enums"
	"github.com/openlocus/locuspoint-backend/pkg/pagination"
)

// ListFilter narrows a location listing.
type ListFilter struct {
	Status enums.LocationStatus
	Query  string
}

// Repository manages persistence for location records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, rec *models.Location) error
	Update(ctx context.Context, rec *models.Location) error
	Delete(ctx context.Context, tenantID, locationID uuid.UUID) error
	FindByID(ctx context.Context, tenantID, locationID uuid.UUID) (*models.Location, error)
	FindByStoreCode(ctx context.Context, tenantID uuid.UUID, storeCode string) (*models.Location, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, page pagination.Params) ([]models.Location, string, error)
	ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.Location, error)
	ListTenantIDs(ctx context.Context) ([]uuid.UUID, error)
	ExistingStoreCodes(ctx context.Context, tenantID uuid.UUID, codes []string) (map[string]bool, error)
}

type repository struct {
	base repo.Base
}

// NewRepository returns a location repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{base: repo.NewBase(db)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{base: r.base.Rebind(tx)}
}

func (r *repository) Create(ctx context.Context, rec *models.Location) error {
	return r.base.DB(ctx).Create(rec).Error
}

func (r *repository) Update(ctx context.Context, rec *models.Location) error {
	return r.base.DB(ctx).Save(rec).Error
}

func (r *repository) Delete(ctx context.Context, tenantID, locationID uuid.UUID) error {
	return r.base.DB(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, locationID).
		Delete(&models.Location{}).Error
}

func (r *repository) FindByID(ctx context.Context, tenantID, locationID uuid.UUID) (*models.Location, error) {
	var rec models.Location
	err := r.base.DB(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, locationID).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) FindByStoreCode(ctx context.Context, tenantID uuid.UUID, storeCode string) (*models.Location, error) {
	var rec models.Location
	err := r.base.DB(ctx).
		Where("tenant_id = ? AND store_code = ?", tenantID, storeCode).
		First(&rec).Error
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

func (r *repository) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, page pagination.Params) ([]models.Location, string, error) {
	query := r.base.DB(ctx).
		Model(&models.Location{}).
		Where("tenant_id = ?", tenantID)

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Query != "" {
		like := "%" + filter.Query + "%"
		query = query.Where("store_code LIKE ? OR business_name LIKE ?", like, like)
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
	var records []models.Location
	err = query.
		Order("created_at DESC, id DESC").
		Limit(limit + 1).
		Find(&records).Error
	if err != nil {
		return nil, "", err
	}

	next := ""
	if len(records) > limit {
		records = records[:limit]
		last := records[len(records)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return records, next, nil
}

// ListAll returns every record for a tenant ordered by store code. Export and
// backup paths depend on the stable ordering.
func (r *repository) ListAll(ctx context.Context, tenantID uuid.UUID) ([]models.Location, error) {
	var records []models.Location
	err := r.base.DB(ctx).
		Where("tenant_id = ?", tenantID).
		Order("store_code ASC, id ASC").
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (r *repository) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.base.DB(ctx).
		Model(&models.Location{}).
		Distinct("tenant_id").
		Order("tenant_id ASC").
		Pluck("tenant_id", &ids).Error
	if err != nil {
		return nil, err
	}
	return ids, nil
}

// ExistingStoreCodes reports which of the given codes are already taken
// within the tenant.
func (r *repository) ExistingStoreCodes(ctx context.Context, tenantID uuid.UUID, codes []string) (map[string]bool, error) {
	taken := make(map[string]bool, len(codes))
	if len(codes) == 0 {
		return taken, nil
	}

	var existing []string
	err := r.base.DB(ctx).
		Model(&models.Location{}).
		Where("tenant_id = ? AND store_code IN ?", tenantID, codes).
		Pluck("store_code", &existing).Error
	if err != nil {
		return nil, err
	}
	for _, code := range existing {
		taken[code] = true
	}
	return taken, nil
}
