package backups

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/openlocus/locuspoint-backend/pkg/db/models"
	"github.com/openlocus/locuspoint-backend/pkg/enums"
	apperrors "github.com/openlocus/locuspoint-backend/pkg/errors"
)

// Rolling window defaults per cadence.
const (
	DefaultOnWriteKeep = 5
	DefaultWeeklyKeep  = 12
)

// RecordSource supplies the location records a snapshot serializes. The
// locations package provides the implementation.
type RecordSource interface {
	ListForExport(ctx context.Context, tenantID uuid.UUID) ([]models.Location, error)
	ListTenantIDs(ctx context.Context) ([]uuid.UUID, error)
}

// TxRunner runs a function inside a database transaction. *db.Client
// satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines operations over tenant backup snapshots.
type Service interface {
	// Capture serializes the tenant's records into a new snapshot and prunes
	// rows that fell out of the cadence's rolling window, atomically.
	Capture(ctx context.Context, tenantID uuid.UUID, cadence enums.BackupCadence) (*models.BackupSnapshot, error)

	// CaptureAll runs Capture for every known tenant and returns how many
	// snapshots were taken. Tenant failures are collected, not fatal.
	CaptureAll(ctx context.Context, cadence enums.BackupCadence) (int, error)

	List(ctx context.Context, tenantID uuid.UUID, cadence enums.BackupCadence) ([]models.BackupSnapshot, error)
	Get(ctx context.Context, tenantID, snapshotID uuid.UUID) (*models.BackupSnapshot, error)
}

// ServiceParams wires a backup service.
type ServiceParams struct {
	Repo        Repository
	Source      RecordSource
	Tx          TxRunner
	OnWriteKeep int
	WeeklyKeep  int
	Now         func() time.Time
}

type service struct {
	repo        Repository
	source      RecordSource
	tx          TxRunner
	onWriteKeep int
	weeklyKeep  int
	now         func() time.Time
}

// NewService validates dependencies and returns a backup service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("backup repository required")
	}
	if params.Source == nil {
		return nil, fmt.Errorf("record source required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}

	svc := &service{
		repo:        params.Repo,
		source:      params.Source,
		tx:          params.Tx,
		onWriteKeep: params.OnWriteKeep,
		weeklyKeep:  params.WeeklyKeep,
		now:         params.Now,
	}
	if svc.onWriteKeep <= 0 {
		svc.onWriteKeep = DefaultOnWriteKeep
	}
	if svc.weeklyKeep <= 0 {
		svc.weeklyKeep = DefaultWeeklyKeep
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

func (s *service) keepFor(cadence enums.BackupCadence) int {
	if cadence == enums.BackupCadenceWeekly {
		return s.weeklyKeep
	}
	return s.onWriteKeep
}

func (s *service) Capture(ctx context.Context, tenantID uuid.UUID, cadence enums.BackupCadence) (*models.BackupSnapshot, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}
	if !cadence.IsValid() {
		return nil, fmt.Errorf("invalid backup cadence %q", cadence)
	}

	records, err := s.source.ListForExport(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	content, err := serialize(records)
	if err != nil {
		return nil, err
	}

	taken := s.now().UTC()
	snapshot := &models.BackupSnapshot{
		TenantID: tenantID,
		Cadence:  cadence,
		Name:     fmt.Sprintf("%s/%s/%s", tenantID, cadence, taken.Format(time.RFC3339Nano)),
		Content:  content,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.Insert(ctx, snapshot); err != nil {
			return err
		}
		_, err := txRepo.PruneCadence(ctx, tenantID, cadence, s.keepFor(cadence))
		return err
	})
	if err != nil {
		return nil, err
	}
	return snapshot, nil
}

func (s *service) CaptureAll(ctx context.Context, cadence enums.BackupCadence) (int, error) {
	tenantIDs, err := s.source.ListTenantIDs(ctx)
	if err != nil {
		return 0, err
	}

	var taken int
	var errs error
	for _, tenantID := range tenantIDs {
		if _, err := s.Capture(ctx, tenantID, cadence); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("tenant %s: %w", tenantID, err))
			continue
		}
		taken++
	}
	return taken, errs
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, cadence enums.BackupCadence) ([]models.BackupSnapshot, error) {
	if tenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}
	if cadence != "" && !cadence.IsValid() {
		return nil, fmt.Errorf("invalid backup cadence %q", cadence)
	}
	return s.repo.List(ctx, tenantID, cadence)
}

func (s *service) Get(ctx context.Context, tenantID, snapshotID uuid.UUID) (*models.BackupSnapshot, error) {
	snapshot, err := s.repo.FindByID(ctx, tenantID, snapshotID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "backup snapshot not found")
		}
		return nil, err
	}
	return snapshot, nil
}

// serialize produces a deterministic JSON document for the tenant's records.
// Records sort by id so identical datasets always serialize identically.
func serialize(records []models.Location) ([]byte, error) {
	sorted := make([]models.Location, len(records))
	copy(sorted, records)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].ID.String() < sorted[j].ID.String()
	})
	return json.Marshal(sorted)
}
