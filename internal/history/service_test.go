package history

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openlocus/locuspoint-backend/pkg/db/models"
	"github.com/openlocus/locuspoint-backend/pkg/enums"
	apperrors "github.com/openlocus/locuspoint-backend/pkg/errors"
	"github.com/openlocus/locuspoint-backend/pkg/logger"
	"github.com/openlocus/locuspoint-backend/pkg/pagination"
)

type fakeHistoryRepo struct {
	entries     []models.FieldHistoryEntry
	pruneCalls  []string
	findErr     error
	insertErr   error
	listFilters []ListFilter
}

func (f *fakeHistoryRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeHistoryRepo) Insert(ctx context.Context, entry *models.FieldHistoryEntry) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	f.entries = append(f.entries, *entry)
	return nil
}

func (f *fakeHistoryRepo) FindByID(ctx context.Context, tenantID, entryID uuid.UUID) (*models.FieldHistoryEntry, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	for i := range f.entries {
		if f.entries[i].TenantID == tenantID && f.entries[i].ID == entryID {
			entry := f.entries[i]
			return &entry, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeHistoryRepo) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.FieldHistoryEntry, string, error) {
	f.listFilters = append(f.listFilters, filter)
	return f.entries, "", nil
}

func (f *fakeHistoryRepo) PruneField(ctx context.Context, locationID uuid.UUID, field string, keep int) (int64, error) {
	f.pruneCalls = append(f.pruneCalls, field)
	return 0, nil
}

func (f *fakeHistoryRepo) PruneAll(ctx context.Context, keep int) (int64, error) {
	return int64(keep), nil
}

type fakeRecordStore struct {
	previous string
	applyErr error
	applied  []ChangeInput
}

func (f *fakeRecordStore) WithTx(tx *gorm.DB) RecordStore { return f }

func (f *fakeRecordStore) ApplyField(ctx context.Context, tenantID, locationID uuid.UUID, field, value string) (string, error) {
	if f.applyErr != nil {
		return "", f.applyErr
	}
	f.applied = append(f.applied, ChangeInput{
		TenantID:   tenantID,
		LocationID: locationID,
		Field:      field,
		NewValue:   value,
	})
	return f.previous, nil
}

type fakeTxRunner struct{}

func (fakeTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fakeBackupService struct {
	captures chan enums.BackupCadence
}

func newFakeBackupService() *fakeBackupService {
	return &fakeBackupService{captures: make(chan enums.BackupCadence, 16)}
}

func (f *fakeBackupService) Capture(ctx context.Context, tenantID uuid.UUID, cadence enums.BackupCadence) (*models.BackupSnapshot, error) {
	f.captures <- cadence
	return &models.BackupSnapshot{}, nil
}

func (f *fakeBackupService) CaptureAll(ctx context.Context, cadence enums.BackupCadence) (int, error) {
	return 0, nil
}

func (f *fakeBackupService) List(ctx context.Context, tenantID uuid.UUID, cadence enums.BackupCadence) ([]models.BackupSnapshot, error) {
	return nil, nil
}

func (f *fakeBackupService) Get(ctx context.Context, tenantID, snapshotID uuid.UUID) (*models.BackupSnapshot, error) {
	return nil, nil
}

func (f *fakeBackupService) awaitCapture(t *testing.T) enums.BackupCadence {
	t.Helper()
	select {
	case cadence := <-f.captures:
		return cadence
	case <-time.After(2 * time.Second):
		t.Fatal("no backup capture observed")
		return ""
	}
}

func (f *fakeBackupService) assertNoCapture(t *testing.T) {
	t.Helper()
	select {
	case cadence := <-f.captures:
		t.Fatalf("unexpected backup capture %s", cadence)
	case <-time.After(50 * time.Millisecond):
	}
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test-history", Output: io.Discard})
}

func newTestService(t *testing.T, repo *fakeHistoryRepo, store *fakeRecordStore) Service {
	t.Helper()
	return newTestServiceWithBackups(t, repo, store, newFakeBackupService())
}

func newTestServiceWithBackups(t *testing.T, repo *fakeHistoryRepo, store *fakeRecordStore, backups *fakeBackupService) Service {
	t.Helper()

	svc, err := NewService(ServiceParams{
		Repo:    repo,
		Store:   store,
		Backups: backups,
		Tx:      fakeTxRunner{},
		Logger:  testLogger(),
	})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func validChange() ChangeInput {
	return ChangeInput{
		TenantID:   uuid.New(),
		LocationID: uuid.New(),
		Field:      "phone",
		OldValue:   "555-0100",
		NewValue:   "555-0200",
		Actor:      Actor{ID: uuid.New(), Email: "ops@example.com"},
		Source:     enums.ChangeSourceManualEdit,
	}
}

func TestRecordChangeWritesAndPrunes(t *testing.T) {
	repo := &fakeHistoryRepo{}
	svc := newTestService(t, repo, &fakeRecordStore{})

	entry, err := svc.RecordChange(context.Background(), validChange())
	if err != nil {
		t.Fatalf("RecordChange: %v", err)
	}
	if entry == nil {
		t.Fatal("expected an entry for a real change")
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 stored entry, got %d", len(repo.entries))
	}
	if len(repo.pruneCalls) != 1 || repo.pruneCalls[0] != "phone" {
		t.Fatalf("expected prune on phone, got %v", repo.pruneCalls)
	}
}

func TestRecordChangeSkipsNoOps(t *testing.T) {
	repo := &fakeHistoryRepo{}
	svc := newTestService(t, repo, &fakeRecordStore{})

	input := validChange()
	input.OldValue = "same"
	input.NewValue = "same"

	entry, err := svc.RecordChange(context.Background(), input)
	if err != nil {
		t.Fatalf("RecordChange: %v", err)
	}
	if entry != nil {
		t.Fatal("no-op change must not produce an entry")
	}
	if len(repo.entries) != 0 {
		t.Fatalf("no-op change stored %d entries", len(repo.entries))
	}
}

func TestRecordChangeRejectsBadInput(t *testing.T) {
	svc := newTestService(t, &fakeHistoryRepo{}, &fakeRecordStore{})
	ctx := context.Background()

	missing := validChange()
	missing.TenantID = uuid.Nil
	if _, err := svc.RecordChange(ctx, missing); err == nil {
		t.Fatal("missing tenant id accepted")
	}

	badSource := validChange()
	badSource.Source = "telepathy"
	if _, err := svc.RecordChange(ctx, badSource); err == nil {
		t.Fatal("invalid source accepted")
	}

	reserved := validChange()
	reserved.Field = models.HistoryFieldDeleted
	if _, err := svc.RecordChange(ctx, reserved); err == nil {
		t.Fatal("sentinel field name accepted")
	}
}

func TestSentinelEntriesCarrySnapshot(t *testing.T) {
	repo := &fakeHistoryRepo{}
	svc := newTestService(t, repo, &fakeRecordStore{})
	ctx := context.Background()

	rec := &models.Location{
		ID:           uuid.New(),
		TenantID:     uuid.New(),
		StoreCode:    "S-001",
		BusinessName: "Acme",
	}
	actor := Actor{ID: uuid.New(), Email: "ops@example.com"}

	if err := svc.RecordCreation(ctx, rec, actor, enums.ChangeSourceCRUD); err != nil {
		t.Fatalf("RecordCreation: %v", err)
	}
	if err := svc.RecordDeletion(ctx, rec, actor, enums.ChangeSourceCRUD); err != nil {
		t.Fatalf("RecordDeletion: %v", err)
	}

	if len(repo.entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(repo.entries))
	}

	created := repo.entries[0]
	if created.Field != models.HistoryFieldCreated || created.OldValue != "" {
		t.Fatalf("creation entry = %+v", created)
	}
	if !strings.Contains(created.NewValue, `"store_code":"S-001"`) {
		t.Fatalf("creation snapshot missing store code: %s", created.NewValue)
	}

	deleted := repo.entries[1]
	if deleted.Field != models.HistoryFieldDeleted || deleted.NewValue != "" {
		t.Fatalf("deletion entry = %+v", deleted)
	}
	if !strings.Contains(deleted.OldValue, `"business_name":"Acme"`) {
		t.Fatalf("deletion snapshot missing business name: %s", deleted.OldValue)
	}
}

func TestRollbackRestoresOldValueAndAudits(t *testing.T) {
	repo := &fakeHistoryRepo{}
	store := &fakeRecordStore{previous: "555-0300"}
	svc := newTestService(t, repo, store)
	ctx := context.Background()

	original, err := svc.RecordChange(ctx, validChange())
	if err != nil {
		t.Fatalf("seed change: %v", err)
	}

	entry, err := svc.Rollback(ctx, RollbackInput{
		TenantID: original.TenantID,
		EntryID:  original.ID,
		Actor:    Actor{ID: uuid.New(), Email: "admin@example.com"},
	})
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	if len(store.applied) != 1 {
		t.Fatalf("expected one apply, got %d", len(store.applied))
	}
	if store.applied[0].NewValue != original.OldValue {
		t.Fatalf("applied %q, want the entry's old value %q", store.applied[0].NewValue, original.OldValue)
	}

	if entry == nil {
		t.Fatal("rollback must append an audit entry")
	}
	if entry.Source != enums.ChangeSourceRollback {
		t.Fatalf("audit entry source = %s", entry.Source)
	}
	if entry.OldValue != "555-0300" || entry.NewValue != original.OldValue {
		t.Fatalf("audit entry transition = %q -> %q", entry.OldValue, entry.NewValue)
	}
	// The original entry stays untouched.
	stored, err := svc.(*service).repo.FindByID(ctx, original.TenantID, original.ID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.NewValue != original.NewValue {
		t.Fatal("original entry was mutated")
	}
}

func TestRollbackTriggersOnWriteBackup(t *testing.T) {
	repo := &fakeHistoryRepo{}
	store := &fakeRecordStore{previous: "555-0300"}
	backups := newFakeBackupService()
	svc := newTestServiceWithBackups(t, repo, store, backups)
	ctx := context.Background()

	original, err := svc.RecordChange(ctx, validChange())
	if err != nil {
		t.Fatalf("seed change: %v", err)
	}

	if _, err := svc.Rollback(ctx, RollbackInput{
		TenantID: original.TenantID,
		EntryID:  original.ID,
		Actor:    Actor{ID: uuid.New()},
	}); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	if cadence := backups.awaitCapture(t); cadence != enums.BackupCadenceOnWrite {
		t.Fatalf("backup cadence = %s", cadence)
	}
}

func TestRollbackToCurrentValueSkipsBackup(t *testing.T) {
	repo := &fakeHistoryRepo{}
	store := &fakeRecordStore{previous: "555-0100"}
	backups := newFakeBackupService()
	svc := newTestServiceWithBackups(t, repo, store, backups)
	ctx := context.Background()

	original, err := svc.RecordChange(ctx, validChange())
	if err != nil {
		t.Fatalf("seed change: %v", err)
	}

	if _, err := svc.Rollback(ctx, RollbackInput{
		TenantID: original.TenantID,
		EntryID:  original.ID,
		Actor:    Actor{ID: uuid.New()},
	}); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	backups.assertNoCapture(t)
}

func TestRollbackUnknownEntryIsNotFound(t *testing.T) {
	svc := newTestService(t, &fakeHistoryRepo{}, &fakeRecordStore{})

	_, err := svc.Rollback(context.Background(), RollbackInput{
		TenantID: uuid.New(),
		EntryID:  uuid.New(),
		Actor:    Actor{ID: uuid.New()},
	})
	if !apperrors.Is(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestRollbackSentinelIsRejected(t *testing.T) {
	repo := &fakeHistoryRepo{}
	svc := newTestService(t, repo, &fakeRecordStore{})
	ctx := context.Background()

	rec := &models.Location{ID: uuid.New(), TenantID: uuid.New(), StoreCode: "S-001", BusinessName: "Acme"}
	if err := svc.RecordDeletion(ctx, rec, Actor{ID: uuid.New()}, enums.ChangeSourceCRUD); err != nil {
		t.Fatalf("RecordDeletion: %v", err)
	}

	_, err := svc.Rollback(ctx, RollbackInput{
		TenantID: rec.TenantID,
		EntryID:  repo.entries[0].ID,
		Actor:    Actor{ID: uuid.New()},
	})
	if !apperrors.Is(err, apperrors.CodeStateConflict) {
		t.Fatalf("expected state-conflict, got %v", err)
	}
}

func TestRollbackOnDeletedRecordPropagatesNotFound(t *testing.T) {
	repo := &fakeHistoryRepo{}
	store := &fakeRecordStore{applyErr: apperrors.New(apperrors.CodeNotFound, "location not found")}
	svc := newTestService(t, repo, store)
	ctx := context.Background()

	original, err := svc.RecordChange(ctx, validChange())
	if err != nil {
		t.Fatalf("seed change: %v", err)
	}

	_, err = svc.Rollback(ctx, RollbackInput{
		TenantID: original.TenantID,
		EntryID:  original.ID,
		Actor:    Actor{ID: uuid.New()},
	})
	if !apperrors.Is(err, apperrors.CodeNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestRollbackToIdenticalValueWritesNothing(t *testing.T) {
	repo := &fakeHistoryRepo{}
	store := &fakeRecordStore{previous: "555-0100"}
	svc := newTestService(t, repo, store)
	ctx := context.Background()

	original, err := svc.RecordChange(ctx, validChange())
	if err != nil {
		t.Fatalf("seed change: %v", err)
	}

	entry, err := svc.Rollback(ctx, RollbackInput{
		TenantID: original.TenantID,
		EntryID:  original.ID,
		Actor:    Actor{ID: uuid.New()},
	})
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if entry != nil {
		t.Fatal("restoring the current value must not append an entry")
	}
}

func TestListRequiresTenant(t *testing.T) {
	svc := newTestService(t, &fakeHistoryRepo{}, &fakeRecordStore{})

	if _, _, err := svc.List(context.Background(), ListFilter{}, pagination.Params{}); err == nil {
		t.Fatal("missing tenant id accepted")
	}
}
