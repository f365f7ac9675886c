package locations

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openlocus/locuspoint-backend/internal/backups"
	"github.com/openlocus/locuspoint-backend/internal/history"
	"github.com/openlocus/locuspoint-backend/pkg/db/models"
	apperrors "github.com/openlocus/locuspoint-backend/pkg/errors"
)

// recordStore adapts the location repository to the history package's
// rollback surface.
type recordStore struct {
	repo Repository
}

// NewRecordStore returns the history.RecordStore implementation backed by the
// location repository.
func NewRecordStore(repo Repository) history.RecordStore {
	return &recordStore{repo: repo}
}

func (a *recordStore) WithTx(tx *gorm.DB) history.RecordStore {
	if tx == nil {
		return a
	}
	return &recordStore{repo: a.repo.WithTx(tx)}
}

// ApplyField writes a canonical value onto the identified record and returns
// the canonical value it replaced. Rolling back onto a deleted record is a
// not-found error; the ledger entry itself stays untouched.
func (a *recordStore) ApplyField(ctx context.Context, tenantID, locationID uuid.UUID, field, value string) (string, error) {
	if !IsTrackedField(field) {
		return "", apperrors.New(apperrors.CodeValidation, fmt.Sprintf("field %q cannot be rolled back", field))
	}

	rec, err := a.repo.FindByID(ctx, tenantID, locationID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.New(apperrors.CodeNotFound, "location no longer exists")
		}
		return "", apperrors.Wrap(apperrors.CodeDependency, err, "load location")
	}

	previous, err := FieldValue(rec, field)
	if err != nil {
		return "", apperrors.Wrap(apperrors.CodeValidation, err, "read field")
	}
	if err := SetField(rec, field, value); err != nil {
		return "", apperrors.Wrap(apperrors.CodeValidation, err, "write field")
	}
	normalizeHours(rec)

	if err := a.repo.Update(ctx, rec); err != nil {
		return "", apperrors.Wrap(apperrors.CodeDependency, err, "update location")
	}
	return previous, nil
}

// recordSource adapts the location repository to the backup package's export
// surface.
type recordSource struct {
	repo Repository
}

// NewRecordSource returns the backups.RecordSource implementation backed by
// the location repository.
func NewRecordSource(repo Repository) backups.RecordSource {
	return &recordSource{repo: repo}
}

func (a *recordSource) ListForExport(ctx context.Context, tenantID uuid.UUID) ([]models.Location, error) {
	return a.repo.ListAll(ctx, tenantID)
}

func (a *recordSource) ListTenantIDs(ctx context.Context) ([]uuid.UUID, error) {
	return a.repo.ListTenantIDs(ctx)
}
