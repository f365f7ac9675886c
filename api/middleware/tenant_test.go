package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
)

func TestTenantContextInjectsTenantAndActor(t *testing.T) {
	tenantID := uuid.NewString()
	actorID := uuid.NewString()

	var gotTenant, gotActor, gotEmail string
	handler := TenantContext(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotTenant = TenantIDFromContext(r.Context())
		gotActor = ActorIDFromContext(r.Context())
		gotEmail = ActorEmailFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/locations", nil)
	req.Header.Set("X-Tenant-Id", tenantID)
	req.Header.Set("X-Actor-Id", actorID)
	req.Header.Set("X-Actor-Email", "ops@example.com")
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if gotTenant != tenantID {
		t.Fatalf("tenant id = %q", gotTenant)
	}
	if gotActor != actorID || gotEmail != "ops@example.com" {
		t.Fatalf("actor = %q %q", gotActor, gotEmail)
	}
}

func TestTenantContextRejectsMissingTenant(t *testing.T) {
	handler := TenantContext(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not run")
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/locations", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", rec.Code)
	}
}

func TestTenantContextRejectsMalformedHeaders(t *testing.T) {
	cases := map[string]http.Header{
		"bad tenant": {"X-Tenant-Id": []string{"not-a-uuid"}},
		"bad actor":  {"X-Tenant-Id": []string{uuid.NewString()}, "X-Actor-Id": []string{"nope"}},
	}
	for name, headers := range cases {
		t.Run(name, func(t *testing.T) {
			handler := TenantContext(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Fatal("handler should not run")
			}))
			req := httptest.NewRequest(http.MethodGet, "/v1/locations", nil)
			for k, vs := range headers {
				req.Header.Set(k, vs[0])
			}
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 got %d", rec.Code)
			}
		})
	}
}

func TestTenantContextAllowsAnonymousActor(t *testing.T) {
	handler := TenantContext(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ActorIDFromContext(r.Context()) != "" {
			t.Fatal("expected empty actor id")
		}
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/locations", nil)
	req.Header.Set("X-Tenant-Id", uuid.NewString())
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
}
