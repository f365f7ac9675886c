package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/openlocus/locuspoint-backend/api/responses"
	"github.com/openlocus/locuspoint-backend/internal/backups"
	"github.com/openlocus/locuspoint-backend/pkg/enums"
	pkgerrors "github.com/openlocus/locuspoint-backend/pkg/errors"
	"github.com/openlocus/locuspoint-backend/pkg/logger"
)

// BackupList returns the tenant's snapshots for one cadence, newest first,
// metadata only.
func BackupList(svc backups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}

		tid, err := tenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cadence, err := cadenceParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshots, err := svc.List(r.Context(), tid, cadence)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, snapshots)
	}
}

// BackupCapture takes an on-demand snapshot for the tenant. The cadence query
// parameter picks which rotation window it counts against.
func BackupCapture(svc backups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}

		tid, err := tenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cadence, err := cadenceParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		snapshot, err := svc.Capture(r.Context(), tid, cadence)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, snapshot)
	}
}

// BackupDownload streams one snapshot's serialized export.
func BackupDownload(svc backups.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "backup service unavailable"))
			return
		}

		tid, err := tenantID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		raw := strings.TrimSpace(chi.URLParam(r, "backupId"))
		backupID, err := uuid.Parse(raw)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid backup id"))
			return
		}

		snapshot, err := svc.Get(r.Context(), tid, backupID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", "attachment; filename="+strconv.Quote(snapshot.Name))
		w.WriteHeader(http.StatusOK)
		w.Write(snapshot.Content)
	}
}

func cadenceParam(r *http.Request) (enums.BackupCadence, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("cadence"))
	if raw == "" {
		return enums.BackupCadenceOnWrite, nil
	}
	cadence, err := enums.ParseBackupCadence(raw)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cadence")
	}
	return cadence, nil
}
