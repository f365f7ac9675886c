package locations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/openlocus/locuspoint-backend/pkg/errors"
)

func TestApplyFieldRestoresCanonicalValue(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)
	store := NewRecordStore(repo)
	ctx := context.Background()

	tenantID := uuid.New()
	rec := seedLocation(t, repo, tenantID, "S-001", time.Now().UTC())

	previous, err := store.ApplyField(ctx, tenantID, rec.ID, "business_name", "Old Name")
	require.NoError(t, err)
	assert.Equal(t, "Shop S-001", previous)

	loaded, err := repo.FindByID(ctx, tenantID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Old Name", loaded.BusinessName)
}

func TestApplyFieldNormalizesHoursColumns(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)
	store := NewRecordStore(repo)
	ctx := context.Background()

	tenantID := uuid.New()
	rec := seedLocation(t, repo, tenantID, "S-001", time.Now().UTC())

	_, err := store.ApplyField(ctx, tenantID, rec.ID, "monday_hours", "CLOSED")
	require.NoError(t, err)

	loaded, err := repo.FindByID(ctx, tenantID, rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "x", loaded.MondayHours)
}

func TestApplyFieldOnDeletedRecordIsNotFound(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)
	store := NewRecordStore(repo)
	ctx := context.Background()

	tenantID := uuid.New()
	rec := seedLocation(t, repo, tenantID, "S-001", time.Now().UTC())
	require.NoError(t, repo.Delete(ctx, tenantID, rec.ID))

	_, err := store.ApplyField(ctx, tenantID, rec.ID, "business_name", "anything")
	assert.True(t, apperrors.Is(err, apperrors.CodeNotFound), "got %v", err)
}

func TestApplyFieldRejectsUntrackedField(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)
	store := NewRecordStore(repo)
	ctx := context.Background()

	tenantID := uuid.New()
	rec := seedLocation(t, repo, tenantID, "S-001", time.Now().UTC())

	_, err := store.ApplyField(ctx, tenantID, rec.ID, "_created", "{}")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation), "got %v", err)

	_, err = store.ApplyField(ctx, tenantID, rec.ID, "latitude", "not-a-number")
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation), "got %v", err)
}

func TestRecordSourceListsTenantRecords(t *testing.T) {
	db := setupLocationsTestDB(t)
	repo := NewRepository(db)
	source := NewRecordSource(repo)
	ctx := context.Background()

	tenantID := uuid.New()
	now := time.Now().UTC()
	seedLocation(t, repo, tenantID, "S-002", now)
	seedLocation(t, repo, tenantID, "S-001", now)
	seedLocation(t, repo, uuid.New(), "S-001", now)

	records, err := source.ListForExport(ctx, tenantID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "S-001", records[0].StoreCode)

	ids, err := source.ListTenantIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2)
}
