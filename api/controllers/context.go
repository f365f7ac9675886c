package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/openlocus/locuspoint-backend/api/middleware"
	"github.com/openlocus/locuspoint-backend/internal/history"
	pkgerrors "github.com/openlocus/locuspoint-backend/pkg/errors"
)

// tenantID pulls the tenant identifier the middleware resolved. Tenant-scoped
// routes always run behind middleware.TenantContext, so an empty value means a
// wiring mistake, not a client error.
func tenantID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.TenantIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeInternal, "tenant context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid tenant id")
	}
	return id, nil
}

// requestActor builds the audit actor from the resolved headers. Anonymous
// writes keep a nil actor id; the ledger stores them as-is.
func requestActor(r *http.Request) history.Actor {
	actor := history.Actor{Email: middleware.ActorEmailFromContext(r.Context())}
	if raw := middleware.ActorIDFromContext(r.Context()); raw != "" {
		if id, err := uuid.Parse(raw); err == nil {
			actor.ID = id
		}
	}
	return actor
}
