package history

import (
	"context"
	"encoding/json"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openlocus/locuspoint-backend/internal/backups"
	"github.com/openlocus/locuspoint-backend/pkg/db/models"
	"github.com/openlocus/locuspoint-backend/pkg/enums"
	apperrors "github.com/openlocus/locuspoint-backend/pkg/errors"
	"github.com/openlocus/locuspoint-backend/pkg/logger"
	"github.com/openlocus/locuspoint-backend/pkg/pagination"
)

// DefaultRetainPerField is how many ledger rows survive per (location, field)
// pair when no retention override is configured.
const DefaultRetainPerField = 6

// backupTimeout bounds the detached on-write backup capture.
const backupTimeout = time.Minute

// Actor identifies who performed a change.
type Actor struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
}

// ChangeInput captures one field transition on a location record. Values are
// the canonical string serializations of the field before and after.
type ChangeInput struct {
	TenantID   uuid.UUID
	LocationID uuid.UUID
	Field      string
	OldValue   string
	NewValue   string
	Actor      Actor
	Source     enums.ChangeSource
}

// RollbackInput identifies the ledger entry whose old value should be
// restored, and who asked for it.
type RollbackInput struct {
	TenantID uuid.UUID
	EntryID  uuid.UUID
	Actor    Actor
}

// RecordStore applies rolled-back field values to the owning record. The
// locations package provides the implementation; the indirection keeps this
// package free of a dependency on it.
type RecordStore interface {
	WithTx(tx *gorm.DB) RecordStore

	// ApplyField sets field to the canonical value on the identified record
	// and returns the canonical value it replaced. Returns a not-found error
	// when the record no longer exists and a validation error when the field
	// does not accept writes.
	ApplyField(ctx context.Context, tenantID, locationID uuid.UUID, field, value string) (string, error)
}

// Service defines operations over the append-only field history ledger.
type Service interface {
	// WithTx returns a Service whose writes join the given transaction.
	WithTx(tx *gorm.DB) Service

	RecordChange(ctx context.Context, input ChangeInput) (*models.FieldHistoryEntry, error)
	RecordCreation(ctx context.Context, rec *models.Location, actor Actor, source enums.ChangeSource) error
	RecordDeletion(ctx context.Context, rec *models.Location, actor Actor, source enums.ChangeSource) error
	List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.FieldHistoryEntry, string, error)
	Rollback(ctx context.Context, input RollbackInput) (*models.FieldHistoryEntry, error)
	PruneAll(ctx context.Context) (int64, error)
}

// TxRunner runs a function inside a database transaction. *db.Client
// satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ServiceParams wires a history service.
type ServiceParams struct {
	Repo    Repository
	Store   RecordStore
	Backups backups.Service
	Tx      TxRunner
	Logger  *logger.Logger
	Retain  int
}

type service struct {
	repo    Repository
	store   RecordStore
	backups backups.Service
	tx      TxRunner
	log     *logger.Logger
	retain  int
}

// NewService validates dependencies and returns a history service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("history repository required")
	}
	if params.Store == nil {
		return nil, fmt.Errorf("record store required")
	}
	if params.Backups == nil {
		return nil, fmt.Errorf("backup service required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	retain := params.Retain
	if retain <= 0 {
		retain = DefaultRetainPerField
	}
	return &service{
		repo:    params.Repo,
		store:   params.Store,
		backups: params.Backups,
		tx:      params.Tx,
		log:     params.Logger,
		retain:  retain,
	}, nil
}

func (s *service) WithTx(tx *gorm.DB) Service {
	if tx == nil {
		return s
	}
	return &service{
		repo:    s.repo.WithTx(tx),
		store:   s.store.WithTx(tx),
		backups: s.backups,
		tx:      s.tx,
		log:     s.log,
		retain:  s.retain,
	}
}

func (s *service) RecordChange(ctx context.Context, input ChangeInput) (*models.FieldHistoryEntry, error) {
	if err := validateChange(input); err != nil {
		return nil, err
	}
	if input.Field == models.HistoryFieldCreated || input.Field == models.HistoryFieldDeleted {
		return nil, fmt.Errorf("field %q is reserved", input.Field)
	}

	// A write that does not change the canonical value leaves no trace.
	if input.OldValue == input.NewValue {
		return nil, nil
	}

	entry := &models.FieldHistoryEntry{
		TenantID:   input.TenantID,
		LocationID: input.LocationID,
		Field:      input.Field,
		OldValue:   input.OldValue,
		NewValue:   input.NewValue,
		ActorID:    input.Actor.ID,
		ActorEmail: input.Actor.Email,
		Source:     input.Source,
	}
	if err := s.repo.Insert(ctx, entry); err != nil {
		return nil, err
	}
	if _, err := s.repo.PruneField(ctx, input.LocationID, input.Field, s.retain); err != nil {
		return nil, err
	}
	return entry, nil
}

// recordStamp is the identifying snapshot stored in creation and deletion
// sentinel entries so the ledger stays readable after the record is gone.
type recordStamp struct {
	StoreCode    string `json:"store_code"`
	BusinessName string `json:"business_name"`
}

func stampJSON(rec *models.Location) (string, error) {
	raw, err := json.Marshal(recordStamp{
		StoreCode:    rec.StoreCode,
		BusinessName: rec.BusinessName,
	})
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func (s *service) RecordCreation(ctx context.Context, rec *models.Location, actor Actor, source enums.ChangeSource) error {
	return s.recordSentinel(ctx, rec, actor, source, models.HistoryFieldCreated)
}

func (s *service) RecordDeletion(ctx context.Context, rec *models.Location, actor Actor, source enums.ChangeSource) error {
	return s.recordSentinel(ctx, rec, actor, source, models.HistoryFieldDeleted)
}

func (s *service) recordSentinel(ctx context.Context, rec *models.Location, actor Actor, source enums.ChangeSource, field string) error {
	if rec == nil {
		return fmt.Errorf("location record required")
	}
	if !source.IsValid() {
		return fmt.Errorf("invalid change source %q", source)
	}

	stamp, err := stampJSON(rec)
	if err != nil {
		return err
	}
	entry := &models.FieldHistoryEntry{
		TenantID:   rec.TenantID,
		LocationID: rec.ID,
		Field:      field,
		ActorID:    actor.ID,
		ActorEmail: actor.Email,
		Source:     source,
	}
	if field == models.HistoryFieldCreated {
		entry.NewValue = stamp
	} else {
		entry.OldValue = stamp
	}

	if err := s.repo.Insert(ctx, entry); err != nil {
		return err
	}
	_, err = s.repo.PruneField(ctx, rec.ID, field, s.retain)
	return err
}

func (s *service) List(ctx context.Context, filter ListFilter, page pagination.Params) ([]models.FieldHistoryEntry, string, error) {
	if filter.TenantID == uuid.Nil {
		return nil, "", fmt.Errorf("tenant id is required")
	}
	return s.repo.List(ctx, filter, page)
}

// Rollback restores the old value of a ledger entry onto the owning record
// and appends a fresh rollback entry describing the restore. The original
// entry is never mutated. Entries are restored last-write-wins: rolling back
// an old entry simply overwrites whatever the field holds now.
func (s *service) Rollback(ctx context.Context, input RollbackInput) (*models.FieldHistoryEntry, error) {
	if input.TenantID == uuid.Nil {
		return nil, fmt.Errorf("tenant id is required")
	}
	if input.EntryID == uuid.Nil {
		return nil, fmt.Errorf("entry id is required")
	}

	var recorded *models.FieldHistoryEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txService := s.WithTx(tx).(*service)

		entry, err := txService.repo.FindByID(ctx, input.TenantID, input.EntryID)
		if err != nil {
			if isRecordNotFound(err) {
				return apperrors.New(apperrors.CodeNotFound, "history entry not found")
			}
			return err
		}
		if entry.IsSentinel() {
			return apperrors.New(apperrors.CodeStateConflict, "creation and deletion events cannot be rolled back")
		}

		previous, err := txService.store.ApplyField(ctx, entry.TenantID, entry.LocationID, entry.Field, entry.OldValue)
		if err != nil {
			return err
		}

		recorded, err = txService.RecordChange(ctx, ChangeInput{
			TenantID:   entry.TenantID,
			LocationID: entry.LocationID,
			Field:      entry.Field,
			OldValue:   previous,
			NewValue:   entry.OldValue,
			Actor:      input.Actor,
			Source:     enums.ChangeSourceRollback,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	if recorded != nil {
		s.captureBackup(ctx, input.TenantID)
	}
	return recorded, nil
}

func (s *service) PruneAll(ctx context.Context) (int64, error) {
	return s.repo.PruneAll(ctx, s.retain)
}

// captureBackup fires the on-write cadence after a restore mutates the
// record, detached so a slow snapshot never blocks the rollback response.
func (s *service) captureBackup(ctx context.Context, tenantID uuid.UUID) {
	logCtx := s.log.WithTenantID(context.Background(), tenantID.String())
	go func() {
		captureCtx, cancel := context.WithTimeout(logCtx, backupTimeout)
		defer cancel()
		if _, err := s.backups.Capture(captureCtx, tenantID, enums.BackupCadenceOnWrite); err != nil {
			s.log.Error(captureCtx, "on-write backup capture failed", err)
		}
	}()
}

func validateChange(input ChangeInput) error {
	if input.TenantID == uuid.Nil {
		return fmt.Errorf("tenant id is required")
	}
	if input.LocationID == uuid.Nil {
		return fmt.Errorf("location id is required")
	}
	if input.Field == "" {
		return fmt.Errorf("field name is required")
	}
	if !input.Source.IsValid() {
		return fmt.Errorf("invalid change source %q", input.Source)
	}
	return nil
}

func isRecordNotFound(err error) bool {
	return stdErrors.Is(err, gorm.ErrRecordNotFound)
}
