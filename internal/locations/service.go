package locations

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openlocus/locuspoint-backend/internal/backups"
	"github.com/openlocus/locuspoint-backend/internal/history"
	"github.com/openlocus/locuspoint-backend/internal/hours"
	"github.com/openlocus/locuspoint-backend/internal/lifecycle"
	"github.com/openlocus/locuspoint-backend/internal/validation"
	"github.com/openlocus/locuspoint-backend/pkg/db/models"
	"github.com/openlocus/locuspoint-backend/pkg/enums"
	apperrors "github.com/openlocus/locuspoint-backend/pkg/errors"
	"github.com/openlocus/locuspoint-backend/pkg/logger"
	"github.com/openlocus/locuspoint-backend/pkg/pagination"
)

// backupTimeout bounds the detached on-write backup capture.
const backupTimeout = time.Minute

// TxRunner runs a function inside a database transaction. *db.Client
// satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// ImportItem carries one record through a bulk import, together with the raw
// coordinate text the upload supplied.
type ImportItem struct {
	Input        CreateLocationInput
	RawLatitude  string
	RawLongitude string
}

// ImportItemResult reports the outcome of one import item. Items with
// blocking issues are rejected; warnings ride along on accepted items.
type ImportItemResult struct {
	Index   int                `json:"index"`
	ID      *uuid.UUID         `json:"id,omitempty"`
	Created bool               `json:"created"`
	Issues  []validation.Issue `json:"issues,omitempty"`
}

// ImportResult summarizes a bulk import.
type ImportResult struct {
	Created int                `json:"created"`
	Items   []ImportItemResult `json:"items"`
}

// LifecycleSummary counts a tenant's records per derived bucket.
type LifecycleSummary struct {
	Total          int `json:"total"`
	Active         int `json:"active"`
	NeedsAttention int `json:"needs_attention"`
	New            int `json:"new"`
}

// Service exposes location record operations.
type Service interface {
	Create(ctx context.Context, tenantID uuid.UUID, actor history.Actor, input CreateLocationInput) (*LocationDTO, []validation.Issue, error)
	Update(ctx context.Context, tenantID, locationID uuid.UUID, actor history.Actor, source enums.ChangeSource, input UpdateLocationInput) (*LocationDTO, []validation.Issue, error)
	Delete(ctx context.Context, tenantID, locationID uuid.UUID, actor history.Actor) error
	Get(ctx context.Context, tenantID, locationID uuid.UUID) (*LocationDTO, error)
	List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, page pagination.Params) ([]LocationDTO, string, error)
	Validate(ctx context.Context, tenantID, locationID uuid.UUID, tier int) ([]validation.Issue, error)
	ImportBatch(ctx context.Context, tenantID uuid.UUID, actor history.Actor, items []ImportItem) (*ImportResult, error)
	PublishFeed(ctx context.Context, tenantID uuid.UUID) ([]LocationDTO, error)
	Summary(ctx context.Context, tenantID uuid.UUID) (*LifecycleSummary, error)
}

// ServiceParams wires a location service.
type ServiceParams struct {
	Repo            Repository
	History         history.Service
	Backups         backups.Service
	Tx              TxRunner
	Logger          *logger.Logger
	NewRecordWindow time.Duration
	Now             func() time.Time
}

type service struct {
	repo      Repository
	history   history.Service
	backups   backups.Service
	tx        TxRunner
	log       *logger.Logger
	newWindow time.Duration
	now       func() time.Time
}

// NewService validates dependencies and returns a location service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("location repository required")
	}
	if params.History == nil {
		return nil, fmt.Errorf("history service required")
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

	svc := &service{
		repo:      params.Repo,
		history:   params.History,
		backups:   params.Backups,
		tx:        params.Tx,
		log:       params.Logger,
		newWindow: params.NewRecordWindow,
		now:       params.Now,
	}
	if svc.newWindow <= 0 {
		svc.newWindow = lifecycle.DefaultNewRecordWindow
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc, nil
}

func (s *service) Create(ctx context.Context, tenantID uuid.UUID, actor history.Actor, input CreateLocationInput) (*LocationDTO, []validation.Issue, error) {
	if tenantID == uuid.Nil {
		return nil, nil, apperrors.New(apperrors.CodeValidation, "tenant id is required")
	}
	if input.StoreCode == "" {
		return nil, nil, apperrors.New(apperrors.CodeValidation, "store code is required")
	}

	if _, err := s.repo.FindByStoreCode(ctx, tenantID, input.StoreCode); err == nil {
		return nil, nil, apperrors.New(apperrors.CodeConflict, fmt.Sprintf("store code %q is already in use", input.StoreCode))
	} else if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperrors.Wrap(apperrors.CodeDependency, err, "check store code")
	}

	rec := input.ToModel(tenantID)
	normalizeHours(rec)

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, rec); err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "create location")
		}
		return s.history.WithTx(tx).RecordCreation(ctx, rec, actor, enums.ChangeSourceCRUD)
	})
	if err != nil {
		return nil, nil, err
	}

	s.captureBackup(ctx, tenantID)
	now := s.now()
	return FromModel(rec, now, s.newWindow), validation.Tier1(rec, now), nil
}

func (s *service) Update(ctx context.Context, tenantID, locationID uuid.UUID, actor history.Actor, source enums.ChangeSource, input UpdateLocationInput) (*LocationDTO, []validation.Issue, error) {
	if !source.IsValid() {
		return nil, nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("invalid change source %q", source))
	}

	rec, err := s.load(ctx, tenantID, locationID)
	if err != nil {
		return nil, nil, err
	}

	before := *rec
	if err := applyUpdate(rec, input); err != nil {
		return nil, nil, err
	}
	normalizeHours(rec)

	if rec.StoreCode != before.StoreCode {
		if _, err := s.repo.FindByStoreCode(ctx, tenantID, rec.StoreCode); err == nil {
			return nil, nil, apperrors.New(apperrors.CodeConflict, fmt.Sprintf("store code %q is already in use", rec.StoreCode))
		} else if !stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.Wrap(apperrors.CodeDependency, err, "check store code")
		}
	}

	now := s.now()
	changes := Diff(&before, rec)
	if len(changes) == 0 {
		return FromModel(rec, now, s.newWindow), validation.Tier1(rec, now), nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Update(ctx, rec); err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "update location")
		}
		txHistory := s.history.WithTx(tx)
		for _, change := range changes {
			_, err := txHistory.RecordChange(ctx, history.ChangeInput{
				TenantID:   tenantID,
				LocationID: rec.ID,
				Field:      change.Field,
				OldValue:   change.Old,
				NewValue:   change.New,
				Actor:      actor,
				Source:     source,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.captureBackup(ctx, tenantID)
	return FromModel(rec, now, s.newWindow), validation.Tier1(rec, now), nil
}

// Delete removes a record. The deletion sentinel is written before the row
// disappears, inside the same transaction, so the ledger always captures the
// record's identifying snapshot.
func (s *service) Delete(ctx context.Context, tenantID, locationID uuid.UUID, actor history.Actor) error {
	rec, err := s.load(ctx, tenantID, locationID)
	if err != nil {
		return err
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.history.WithTx(tx).RecordDeletion(ctx, rec, actor, enums.ChangeSourceCRUD); err != nil {
			return err
		}
		if err := s.repo.WithTx(tx).Delete(ctx, tenantID, locationID); err != nil {
			return apperrors.Wrap(apperrors.CodeDependency, err, "delete location")
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.captureBackup(ctx, tenantID)
	return nil
}

func (s *service) Get(ctx context.Context, tenantID, locationID uuid.UUID) (*LocationDTO, error) {
	rec, err := s.load(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}
	return FromModel(rec, s.now(), s.newWindow), nil
}

func (s *service) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter, page pagination.Params) ([]LocationDTO, string, error) {
	records, next, err := s.repo.List(ctx, tenantID, filter, page)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.CodeDependency, err, "list locations")
	}

	now := s.now()
	dtos := make([]LocationDTO, len(records))
	for i := range records {
		dtos[i] = *FromModel(&records[i], now, s.newWindow)
	}
	return dtos, next, nil
}

func (s *service) Validate(ctx context.Context, tenantID, locationID uuid.UUID, tier int) ([]validation.Issue, error) {
	rec, err := s.load(ctx, tenantID, locationID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	switch tier {
	case 1:
		return validation.Tier1(rec, now), nil
	case 2:
		return validation.Tier2(rec, now), nil
	case 3:
		return validation.Tier3(rec, now), nil
	default:
		return nil, apperrors.New(apperrors.CodeValidation, fmt.Sprintf("unknown validation tier %d", tier))
	}
}

func (s *service) ImportBatch(ctx context.Context, tenantID uuid.UUID, actor history.Actor, items []ImportItem) (*ImportResult, error) {
	if tenantID == uuid.Nil {
		return nil, apperrors.New(apperrors.CodeValidation, "tenant id is required")
	}
	if len(items) == 0 {
		return &ImportResult{}, nil
	}

	now := s.now()
	batch := make([]validation.BatchItem, len(items))
	records := make([]*models.Location, len(items))
	codes := make([]string, 0, len(items))
	for i, item := range items {
		rec := item.Input.ToModel(tenantID)
		normalizeHours(rec)
		records[i] = rec
		batch[i] = validation.BatchItem{
			Record:       rec,
			RawLatitude:  item.RawLatitude,
			RawLongitude: item.RawLongitude,
		}
		if rec.StoreCode != "" {
			codes = append(codes, rec.StoreCode)
		}
	}

	issuesByItem := validation.Tier2Batch(batch, now)

	taken, err := s.repo.ExistingStoreCodes(ctx, tenantID, codes)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "check store codes")
	}

	result := &ImportResult{Items: make([]ImportItemResult, len(items))}
	for i, rec := range records {
		issues := issuesByItem[i]
		if rec.StoreCode != "" && taken[rec.StoreCode] {
			issues = append(issues, validation.Issue{
				Field:   "store_code",
				Kind:    validation.KindDuplicateStoreCode,
				Message: fmt.Sprintf("store code %q already exists", rec.StoreCode),
			})
		}

		item := ImportItemResult{Index: i, Issues: issues}
		if !hasBlocking(issues) && rec.StoreCode != "" {
			err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
				if err := s.repo.WithTx(tx).Create(ctx, rec); err != nil {
					return apperrors.Wrap(apperrors.CodeDependency, err, "create location")
				}
				return s.history.WithTx(tx).RecordCreation(ctx, rec, actor, enums.ChangeSourceImport)
			})
			if err != nil {
				return nil, err
			}
			item.ID = &rec.ID
			item.Created = true
			result.Created++
		}
		result.Items[i] = item
	}

	if result.Created > 0 {
		s.captureBackup(ctx, tenantID)
	}
	return result, nil
}

// PublishFeed returns the records eligible for export. Eligibility is the
// lifecycle classifier's Active bucket; the feed never re-derives its own
// rules.
func (s *service) PublishFeed(ctx context.Context, tenantID uuid.UUID) ([]LocationDTO, error) {
	records, err := s.repo.ListAll(ctx, tenantID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list locations")
	}

	now := s.now()
	feed := make([]LocationDTO, 0, len(records))
	for i := range records {
		if lifecycle.ClassifyWithWindow(&records[i], now, s.newWindow).Bucket != lifecycle.BucketActive {
			continue
		}
		feed = append(feed, *FromModel(&records[i], now, s.newWindow))
	}
	return feed, nil
}

func (s *service) Summary(ctx context.Context, tenantID uuid.UUID) (*LifecycleSummary, error) {
	records, err := s.repo.ListAll(ctx, tenantID)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "list locations")
	}

	now := s.now()
	summary := &LifecycleSummary{Total: len(records)}
	for i := range records {
		classification := lifecycle.ClassifyWithWindow(&records[i], now, s.newWindow)
		if classification.Bucket == lifecycle.BucketActive {
			summary.Active++
		} else {
			summary.NeedsAttention++
		}
		if classification.New {
			summary.New++
		}
	}
	return summary, nil
}

func (s *service) load(ctx context.Context, tenantID, locationID uuid.UUID) (*models.Location, error) {
	rec, err := s.repo.FindByID(ctx, tenantID, locationID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.New(apperrors.CodeNotFound, "location not found")
		}
		return nil, apperrors.Wrap(apperrors.CodeDependency, err, "load location")
	}
	return rec, nil
}

// captureBackup takes an on-write snapshot without blocking the caller.
// Backup failures are logged, never surfaced to the write path.
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

func normalizeHours(rec *models.Location) {
	rec.MondayHours = hours.Normalize(rec.MondayHours)
	rec.TuesdayHours = hours.Normalize(rec.TuesdayHours)
	rec.WednesdayHours = hours.Normalize(rec.WednesdayHours)
	rec.ThursdayHours = hours.Normalize(rec.ThursdayHours)
	rec.FridayHours = hours.Normalize(rec.FridayHours)
	rec.SaturdayHours = hours.Normalize(rec.SaturdayHours)
	rec.SundayHours = hours.Normalize(rec.SundayHours)
	rec.SpecialHours = hours.NormalizeSpecial(rec.SpecialHours)
}

func hasBlocking(issues []validation.Issue) bool {
	for _, issue := range issues {
		if !issue.Warning() {
			return true
		}
	}
	return false
}

func applyUpdate(rec *models.Location, input UpdateLocationInput) error {
	if input.StoreCode != nil {
		if *input.StoreCode == "" {
			return apperrors.New(apperrors.CodeValidation, "store code must not be empty")
		}
		rec.StoreCode = *input.StoreCode
	}
	if input.BusinessName != nil {
		rec.BusinessName = *input.BusinessName
	}
	if input.PrimaryCategory != nil {
		rec.PrimaryCategory = *input.PrimaryCategory
	}
	if input.AdditionalCategories != nil {
		rec.AdditionalCategories = *input.AdditionalCategories
	}
	if input.AddressLine1 != nil {
		rec.AddressLine1 = *input.AddressLine1
	}
	if input.AddressLine2 != nil {
		rec.AddressLine2 = toPtr(*input.AddressLine2)
	}
	if input.AddressLine3 != nil {
		rec.AddressLine3 = toPtr(*input.AddressLine3)
	}
	if input.AddressLine4 != nil {
		rec.AddressLine4 = toPtr(*input.AddressLine4)
	}
	if input.AddressLine5 != nil {
		rec.AddressLine5 = toPtr(*input.AddressLine5)
	}
	if input.City != nil {
		rec.City = toPtr(*input.City)
	}
	if input.StateProvince != nil {
		rec.StateProvince = toPtr(*input.StateProvince)
	}
	if input.PostalCode != nil {
		rec.PostalCode = toPtr(*input.PostalCode)
	}
	if input.District != nil {
		rec.District = toPtr(*input.District)
	}
	if input.CountryCode != nil {
		rec.CountryCode = *input.CountryCode
	}
	if input.Latitude != nil {
		rec.Latitude = input.Latitude
	}
	if input.Longitude != nil {
		rec.Longitude = input.Longitude
	}
	if input.Phone != nil {
		rec.Phone = toPtr(*input.Phone)
	}
	if input.SecondaryPhone != nil {
		rec.SecondaryPhone = toPtr(*input.SecondaryPhone)
	}
	if input.Website != nil {
		rec.Website = toPtr(*input.Website)
	}
	if input.OpeningDate != nil {
		rec.OpeningDate = input.OpeningDate
	}
	if input.MondayHours != nil {
		rec.MondayHours = *input.MondayHours
	}
	if input.TuesdayHours != nil {
		rec.TuesdayHours = *input.TuesdayHours
	}
	if input.WednesdayHours != nil {
		rec.WednesdayHours = *input.WednesdayHours
	}
	if input.ThursdayHours != nil {
		rec.ThursdayHours = *input.ThursdayHours
	}
	if input.FridayHours != nil {
		rec.FridayHours = *input.FridayHours
	}
	if input.SaturdayHours != nil {
		rec.SaturdayHours = *input.SaturdayHours
	}
	if input.SundayHours != nil {
		rec.SundayHours = *input.SundayHours
	}
	if input.SpecialHours != nil {
		rec.SpecialHours = *input.SpecialHours
	}
	if input.MenuURL != nil {
		rec.MenuURL = toPtr(*input.MenuURL)
	}
	if input.OrderAheadURL != nil {
		rec.OrderAheadURL = toPtr(*input.OrderAheadURL)
	}
	if input.ReservationURL != nil {
		rec.ReservationURL = toPtr(*input.ReservationURL)
	}
	if input.BookingURL != nil {
		rec.BookingURL = toPtr(*input.BookingURL)
	}
	if input.FacebookURL != nil {
		rec.FacebookURL = toPtr(*input.FacebookURL)
	}
	if input.InstagramURL != nil {
		rec.InstagramURL = toPtr(*input.InstagramURL)
	}
	if input.XURL != nil {
		rec.XURL = toPtr(*input.XURL)
	}
	if input.YoutubeURL != nil {
		rec.YoutubeURL = toPtr(*input.YoutubeURL)
	}
	if input.PinterestURL != nil {
		rec.PinterestURL = toPtr(*input.PinterestURL)
	}
	if input.Description != nil {
		rec.Description = *input.Description
	}
	if input.TemporarilyClosed != nil {
		rec.TemporarilyClosed = *input.TemporarilyClosed
	}
	if input.ExternalPending != nil {
		rec.ExternalPending = *input.ExternalPending
	}
	if input.Status != nil {
		if !input.Status.IsValid() {
			return apperrors.New(apperrors.CodeStateConflict, fmt.Sprintf("status %q is not a valid transition target", *input.Status))
		}
		rec.Status = *input.Status
	}
	if input.ServiceIDs != nil {
		rec.ServiceIDs = *input.ServiceIDs
	}
	return nil
}
