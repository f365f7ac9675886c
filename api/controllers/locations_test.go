package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openlocus/locuspoint-backend/api/middleware"
	"github.com/openlocus/locuspoint-backend/internal/history"
	"github.com/openlocus/locuspoint-backend/internal/locations"
	"github.com/openlocus/locuspoint-backend/internal/validation"
	"github.com/openlocus/locuspoint-backend/pkg/enums"
	pkgerrors "github.com/openlocus/locuspoint-backend/pkg/errors"
	"github.com/openlocus/locuspoint-backend/pkg/pagination"
)

type stubLocationService struct {
	createResp   *locations.LocationDTO
	createIssues []validation.Issue
	createErr    error
	getResp      *locations.LocationDTO
	getErr       error
	updateResp   *locations.LocationDTO
	updateErr    error
	deleteErr    error
	listResp     []locations.LocationDTO
	listCursor   string
	listErr      error
	issues       []validation.Issue
	validateErr  error
	importResp   *locations.ImportResult
	importErr    error
	feed         []locations.LocationDTO
	summary      *locations.LifecycleSummary

	gotTenant uuid.UUID
	gotActor  history.Actor
	gotSource enums.ChangeSource
	gotTier   int
	gotFilter locations.ListFilter
	gotItems  []locations.ImportItem
}

func (s *stubLocationService) Create(_ context.Context, tenantID uuid.UUID, actor history.Actor, _ locations.CreateLocationInput) (*locations.LocationDTO, []validation.Issue, error) {
	s.gotTenant, s.gotActor = tenantID, actor
	return s.createResp, s.createIssues, s.createErr
}

func (s *stubLocationService) Update(_ context.Context, tenantID, _ uuid.UUID, actor history.Actor, source enums.ChangeSource, _ locations.UpdateLocationInput) (*locations.LocationDTO, []validation.Issue, error) {
	s.gotTenant, s.gotActor, s.gotSource = tenantID, actor, source
	return s.updateResp, nil, s.updateErr
}

func (s *stubLocationService) Delete(_ context.Context, tenantID, _ uuid.UUID, actor history.Actor) error {
	s.gotTenant, s.gotActor = tenantID, actor
	return s.deleteErr
}

func (s *stubLocationService) Get(_ context.Context, tenantID, _ uuid.UUID) (*locations.LocationDTO, error) {
	s.gotTenant = tenantID
	return s.getResp, s.getErr
}

func (s *stubLocationService) List(_ context.Context, tenantID uuid.UUID, filter locations.ListFilter, _ pagination.Params) ([]locations.LocationDTO, string, error) {
	s.gotTenant, s.gotFilter = tenantID, filter
	return s.listResp, s.listCursor, s.listErr
}

func (s *stubLocationService) Validate(_ context.Context, tenantID, _ uuid.UUID, tier int) ([]validation.Issue, error) {
	s.gotTenant, s.gotTier = tenantID, tier
	return s.issues, s.validateErr
}

func (s *stubLocationService) ImportBatch(_ context.Context, tenantID uuid.UUID, actor history.Actor, items []locations.ImportItem) (*locations.ImportResult, error) {
	s.gotTenant, s.gotActor, s.gotItems = tenantID, actor, items
	return s.importResp, s.importErr
}

func (s *stubLocationService) PublishFeed(_ context.Context, tenantID uuid.UUID) ([]locations.LocationDTO, error) {
	s.gotTenant = tenantID
	return s.feed, nil
}

func (s *stubLocationService) Summary(_ context.Context, tenantID uuid.UUID) (*locations.LifecycleSummary, error) {
	s.gotTenant = tenantID
	return s.summary, nil
}

func tenantRequest(req *http.Request, tenantID, actorID uuid.UUID) *http.Request {
	ctx := middleware.WithTenantID(req.Context(), tenantID.String())
	ctx = middleware.WithActor(ctx, actorID.String(), "editor@example.com")
	return req.WithContext(ctx)
}

func withRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestLocationCreateSuccess(t *testing.T) {
	tenant := uuid.New()
	actor := uuid.New()
	svc := &stubLocationService{
		createResp: &locations.LocationDTO{ID: uuid.New(), StoreCode: "den-001"},
		createIssues: []validation.Issue{
			{Field: "business_name", Kind: "missing_required", Message: "business name is required"},
		},
	}
	handler := LocationCreate(svc, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations", bytes.NewReader([]byte(`{"store_code":"den-001"}`)))
	req.Header.Set("Content-Type", "application/json")
	req = tenantRequest(req, tenant, actor)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 got %d", rec.Code)
	}
	var envelope struct {
		Data struct {
			Location locations.LocationDTO `json:"location"`
			Issues   []validation.Issue    `json:"issues"`
		} `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Location.StoreCode != "den-001" {
		t.Fatalf("unexpected store code %s", envelope.Data.Location.StoreCode)
	}
	if len(envelope.Data.Issues) != 1 {
		t.Fatalf("expected creation warnings to ride along, got %v", envelope.Data.Issues)
	}
	if svc.gotTenant != tenant {
		t.Fatalf("tenant = %s", svc.gotTenant)
	}
	if svc.gotActor.ID != actor || svc.gotActor.Email != "editor@example.com" {
		t.Fatalf("actor = %+v", svc.gotActor)
	}
}

func TestLocationCreateRequiresStoreCode(t *testing.T) {
	handler := LocationCreate(&stubLocationService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations", bytes.NewReader([]byte(`{"business_name":"No Code"}`)))
	req.Header.Set("Content-Type", "application/json")
	req = tenantRequest(req, uuid.New(), uuid.New())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestLocationCreateMissingTenantContext(t *testing.T) {
	handler := LocationCreate(&stubLocationService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations", bytes.NewReader([]byte(`{"store_code":"x"}`)))
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for missing tenant wiring got %d", rec.Code)
	}
}

func TestLocationGetNotFound(t *testing.T) {
	svc := &stubLocationService{getErr: pkgerrors.New(pkgerrors.CodeNotFound, "location not found")}
	handler := LocationGet(svc, nil)

	locID := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations/"+locID, nil)
	req = tenantRequest(req, uuid.New(), uuid.New())
	req = withRouteParam(req, "locationId", locID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 got %d", rec.Code)
	}
}

func TestLocationListParsesFilters(t *testing.T) {
	svc := &stubLocationService{listCursor: "next"}
	handler := LocationList(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations?status=active&q=brew&limit=10", nil)
	req = tenantRequest(req, uuid.New(), uuid.New())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotFilter.Status != enums.LocationStatusActive || svc.gotFilter.Query != "brew" {
		t.Fatalf("filter = %+v", svc.gotFilter)
	}
	var envelope struct {
		NextCursor string `json:"next_cursor"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.NextCursor != "next" {
		t.Fatalf("cursor = %q", envelope.NextCursor)
	}
}

func TestLocationListRejectsUnknownStatus(t *testing.T) {
	handler := LocationList(&stubLocationService{}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations?status=dormant", nil)
	req = tenantRequest(req, uuid.New(), uuid.New())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestLocationUpdateTagsSource(t *testing.T) {
	svc := &stubLocationService{updateResp: &locations.LocationDTO{}}
	handler := LocationUpdate(svc, nil)

	locID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/locations/"+locID+"?source=bulk_update", bytes.NewReader([]byte(`{"business_name":"New Name"}`)))
	req.Header.Set("Content-Type", "application/json")
	req = tenantRequest(req, uuid.New(), uuid.New())
	req = withRouteParam(req, "locationId", locID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotSource != enums.ChangeSourceBulkUpdate {
		t.Fatalf("source = %s", svc.gotSource)
	}
}

func TestLocationUpdateDefaultsToManualEdit(t *testing.T) {
	svc := &stubLocationService{updateResp: &locations.LocationDTO{}}
	handler := LocationUpdate(svc, nil)

	locID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/locations/"+locID, bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req = tenantRequest(req, uuid.New(), uuid.New())
	req = withRouteParam(req, "locationId", locID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotSource != enums.ChangeSourceManualEdit {
		t.Fatalf("source = %s", svc.gotSource)
	}
}

func TestLocationUpdateRejectsUnknownSource(t *testing.T) {
	handler := LocationUpdate(&stubLocationService{}, nil)

	locID := uuid.NewString()
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/locations/"+locID+"?source=telepathy", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req = tenantRequest(req, uuid.New(), uuid.New())
	req = withRouteParam(req, "locationId", locID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestLocationDeleteSuccess(t *testing.T) {
	svc := &stubLocationService{}
	handler := LocationDelete(svc, nil)

	locID := uuid.NewString()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/locations/"+locID, nil)
	req = tenantRequest(req, uuid.New(), uuid.New())
	req = withRouteParam(req, "locationId", locID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}

func TestLocationValidateTier(t *testing.T) {
	svc := &stubLocationService{issues: []validation.Issue{{Field: "latitude", Kind: "missing_recommended"}}}
	handler := LocationValidate(svc, nil)

	locID := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations/"+locID+"/validation?tier=3", nil)
	req = tenantRequest(req, uuid.New(), uuid.New())
	req = withRouteParam(req, "locationId", locID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if svc.gotTier != 3 {
		t.Fatalf("tier = %d", svc.gotTier)
	}
}

func TestLocationValidateRejectsOutOfRangeTier(t *testing.T) {
	handler := LocationValidate(&stubLocationService{}, nil)

	locID := uuid.NewString()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations/"+locID+"/validation?tier=4", nil)
	req = tenantRequest(req, uuid.New(), uuid.New())
	req = withRouteParam(req, "locationId", locID)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestLocationImportForwardsItems(t *testing.T) {
	svc := &stubLocationService{importResp: &locations.ImportResult{Created: 1}}
	handler := LocationImport(svc, nil)

	payload := []byte(`{"items":[{"store_code":"den-001","raw_latitude":"39.7392","raw_longitude":"-104.9903"}]}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations/import", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req = tenantRequest(req, uuid.New(), uuid.New())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if len(svc.gotItems) != 1 {
		t.Fatalf("items = %d", len(svc.gotItems))
	}
	if svc.gotItems[0].Input.StoreCode != "den-001" || svc.gotItems[0].RawLatitude != "39.7392" {
		t.Fatalf("item = %+v", svc.gotItems[0])
	}
}

func TestLocationImportRejectsEmptyBatch(t *testing.T) {
	handler := LocationImport(&stubLocationService{}, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/locations/import", bytes.NewReader([]byte(`{"items":[]}`)))
	req.Header.Set("Content-Type", "application/json")
	req = tenantRequest(req, uuid.New(), uuid.New())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestLocationSummary(t *testing.T) {
	svc := &stubLocationService{summary: &locations.LifecycleSummary{Total: 4, Active: 2, NeedsAttention: 1, New: 1}}
	handler := LocationSummary(svc, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/locations/summary", nil)
	req = tenantRequest(req, uuid.New(), uuid.New())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	var envelope struct {
		Data locations.LifecycleSummary `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&envelope); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if envelope.Data.Total != 4 || envelope.Data.Active != 2 {
		t.Fatalf("summary = %+v", envelope.Data)
	}
}
