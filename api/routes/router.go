package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/openlocus/locuspoint-backend/api/controllers"
	"github.com/openlocus/locuspoint-backend/api/middleware"
	"github.com/openlocus/locuspoint-backend/internal/backups"
	"github.com/openlocus/locuspoint-backend/internal/history"
	"github.com/openlocus/locuspoint-backend/internal/locations"
	"github.com/openlocus/locuspoint-backend/pkg/config"
	"github.com/openlocus/locuspoint-backend/pkg/logger"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	locationService locations.Service,
	historyService history.Service,
	backupService backups.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.TenantContext(logg))
		r.Get("/ping", controllers.TenantPing())

		r.Route("/locations", func(r chi.Router) {
			r.Post("/", controllers.LocationCreate(locationService, logg))
			r.Get("/", controllers.LocationList(locationService, logg))
			r.Get("/summary", controllers.LocationSummary(locationService, logg))
			r.Get("/publish-feed", controllers.LocationPublishFeed(locationService, logg))
			r.Post("/import", controllers.LocationImport(locationService, logg))
			r.Route("/{locationId}", func(r chi.Router) {
				r.Get("/", controllers.LocationGet(locationService, logg))
				r.Patch("/", controllers.LocationUpdate(locationService, logg))
				r.Delete("/", controllers.LocationDelete(locationService, logg))
				r.Get("/validation", controllers.LocationValidate(locationService, logg))
			})
		})

		r.Route("/history", func(r chi.Router) {
			r.Get("/", controllers.HistoryList(historyService, logg))
			r.Post("/{entryId}/rollback", controllers.HistoryRollback(historyService, logg))
		})

		r.Route("/backups", func(r chi.Router) {
			r.Get("/", controllers.BackupList(backupService, logg))
			r.Post("/", controllers.BackupCapture(backupService, logg))
			r.Get("/{backupId}/download", controllers.BackupDownload(backupService, logg))
		})
	})

	return r
}
