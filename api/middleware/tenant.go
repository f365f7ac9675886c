package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/openlocus/locuspoint-backend/api/responses"
	pkgerrors "github.com/openlocus/locuspoint-backend/pkg/errors"
	"github.com/openlocus/locuspoint-backend/pkg/logger"
)

const (
	tenantIDHeader   = "X-Tenant-Id"
	actorIDHeader    = "X-Actor-Id"
	actorEmailHeader = "X-Actor-Email"
)

// TenantContext resolves the tenant and acting user from request headers.
// Every directory route is tenant-scoped, so a missing or malformed tenant
// header fails the request before it reaches a handler.
func TenantContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			rawTenant := r.Header.Get(tenantIDHeader)
			if rawTenant == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "missing "+tenantIDHeader+" header"))
				return
			}
			tenantID, err := uuid.Parse(rawTenant)
			if err != nil {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "malformed "+tenantIDHeader+" header"))
				return
			}

			actorID := r.Header.Get(actorIDHeader)
			if actorID != "" {
				if _, err := uuid.Parse(actorID); err != nil {
					responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "malformed "+actorIDHeader+" header"))
					return
				}
			}

			ctx = WithTenantID(ctx, tenantID.String())
			ctx = WithActor(ctx, actorID, r.Header.Get(actorEmailHeader))
			if logg != nil {
				ctx = logg.WithField(ctx, "tenant_id", tenantID.String())
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
