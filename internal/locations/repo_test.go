package locations

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/openlocus/locuspoint-backend/pkg/db/models"
	"github.com/openlocus/locuspoint-backend/pkg/enums"
	"github.com/openlocus/locuspoint-backend/pkg/pagination"
)

func setupLocationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS locations (
  id TEXT PRIMARY KEY,
  tenant_id TEXT NOT NULL,
  store_code TEXT NOT NULL,
  business_name TEXT NOT NULL DEFAULT '',
  primary_category TEXT NOT NULL DEFAULT '',
  additional_categories TEXT,
  address_line1 TEXT NOT NULL DEFAULT '',
  address_line2 TEXT,
  address_line3 TEXT,
  address_line4 TEXT,
  address_line5 TEXT,
  city TEXT,
  state_province TEXT,
  postal_code TEXT,
  district TEXT,
  country_code TEXT NOT NULL DEFAULT '',
  latitude REAL,
  longitude REAL,
  phone TEXT,
  secondary_phone TEXT,
  website TEXT,
  opening_date DATETIME,
  monday_hours TEXT NOT NULL DEFAULT '',
  tuesday_hours TEXT NOT NULL DEFAULT '',
  wednesday_hours TEXT NOT NULL DEFAULT '',
  thursday_hours TEXT NOT NULL DEFAULT '',
  friday_hours TEXT NOT NULL DEFAULT '',
  saturday_hours TEXT NOT NULL DEFAULT '',
  sunday_hours TEXT NOT NULL DEFAULT '',
  special_hours TEXT NOT NULL DEFAULT '',
  menu_url TEXT,
  order_ahead_url TEXT,
  reservation_url TEXT,
  booking_url TEXT,
  facebook_url TEXT,
  instagram_url TEXT,
  x_url TEXT,
  youtube_url TEXT,
  pinterest_url TEXT,
  description TEXT NOT NULL DEFAULT '',
  temporarily_closed INTEGER NOT NULL DEFAULT 0,
  external_pending INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'pending',
  service_ids TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (tenant_id, store_code)
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedLocation(t *testing.T, repo Repository, tenantID uuid.UUID, storeCode string, at time.Time) *models.Location {
	t.Helper()

	rec := &models.Location{
		ID:           uuid.New(),
		TenantID:     tenantID,
		StoreCode:    storeCode,
		BusinessName: "Shop " + storeCode,
		Status:       enums.LocationStatusPending,
		CreatedAt:    at,
		UpdatedAt:    at,
	}
	require.NoError(t, repo.Create(context.Background(), rec))
	return rec
}

func TestLocationCRUDRoundTrip(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	rec := seedLocation(t, repo, tenantID, "S-001", time.Now().UTC())

	loaded, err := repo.FindByID(ctx, tenantID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "S-001", loaded.StoreCode)

	loaded.BusinessName = "Renamed"
	require.NoError(t, repo.Update(ctx, loaded))

	byCode, err := repo.FindByStoreCode(ctx, tenantID, "S-001")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", byCode.BusinessName)

	require.NoError(t, repo.Delete(ctx, tenantID, rec.ID))
	_, err = repo.FindByID(ctx, tenantID, rec.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestFindScopedToTenant(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	rec := seedLocation(t, repo, tenantID, "S-001", time.Now().UTC())

	_, err := repo.FindByID(ctx, uuid.New(), rec.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)

	_, err = repo.FindByStoreCode(ctx, uuid.New(), "S-001")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListFiltersAndPages(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	base := time.Date(2025, 7, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedLocation(t, repo, tenantID, fmt.Sprintf("S-%03d", i), base.Add(time.Duration(i)*time.Hour))
	}
	activated := seedLocation(t, repo, tenantID, "S-900", base.Add(10*time.Hour))
	activated.Status = enums.LocationStatusActive
	require.NoError(t, repo.Update(ctx, activated))

	page, next, err := repo.List(ctx, tenantID, ListFilter{}, pagination.Params{Limit: 4})
	require.NoError(t, err)
	require.Len(t, page, 4)
	require.NotEmpty(t, next)
	assert.Equal(t, "S-900", page[0].StoreCode)

	rest, next, err := repo.List(ctx, tenantID, ListFilter{}, pagination.Params{Limit: 4, Cursor: next})
	require.NoError(t, err)
	assert.Len(t, rest, 2)
	assert.Empty(t, next)

	active, _, err := repo.List(ctx, tenantID, ListFilter{Status: enums.LocationStatusActive}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "S-900", active[0].StoreCode)

	matched, _, err := repo.List(ctx, tenantID, ListFilter{Query: "Shop S-002"}, pagination.Params{})
	require.NoError(t, err)
	require.Len(t, matched, 1)
	assert.Equal(t, "S-002", matched[0].StoreCode)
}

func TestListAllOrdersByStoreCode(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	now := time.Now().UTC()
	seedLocation(t, repo, tenantID, "S-200", now)
	seedLocation(t, repo, tenantID, "S-100", now)
	seedLocation(t, repo, uuid.New(), "S-050", now)

	records, err := repo.ListAll(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "S-100", records[0].StoreCode)
	assert.Equal(t, "S-200", records[1].StoreCode)
}

func TestExistingStoreCodes(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	tenantID := uuid.New()
	now := time.Now().UTC()
	seedLocation(t, repo, tenantID, "S-001", now)
	seedLocation(t, repo, uuid.New(), "S-002", now)

	taken, err := repo.ExistingStoreCodes(ctx, tenantID, []string{"S-001", "S-002", "S-003"})
	require.NoError(t, err)
	assert.True(t, taken["S-001"])
	assert.False(t, taken["S-002"], "other tenant's code must not count")
	assert.False(t, taken["S-003"])

	empty, err := repo.ExistingStoreCodes(ctx, tenantID, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestListTenantIDs(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	first := uuid.New()
	second := uuid.New()
	now := time.Now().UTC()
	seedLocation(t, repo, first, "S-001", now)
	seedLocation(t, repo, first, "S-002", now)
	seedLocation(t, repo, second, "S-001", now)

	ids, err := repo.ListTenantIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}
