package cron

import (
	"context"
	"fmt"

	"github.com/openlocus/locuspoint-backend/pkg/enums"
	"github.com/openlocus/locuspoint-backend/pkg/logger"
)

// backupTaker is the slice of the backup service this job needs.
type backupTaker interface {
	CaptureAll(ctx context.Context, cadence enums.BackupCadence) (int, error)
}

// WeeklyBackupJob captures a weekly snapshot for every tenant.
type WeeklyBackupJob struct {
	backups backupTaker
	logg    *logger.Logger
}

// NewWeeklyBackupJob wires the weekly backup job.
func NewWeeklyBackupJob(backups backupTaker, logg *logger.Logger) (*WeeklyBackupJob, error) {
	if backups == nil {
		return nil, fmt.Errorf("backup service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &WeeklyBackupJob{backups: backups, logg: logg}, nil
}

// Name implements Job.
func (j *WeeklyBackupJob) Name() string { return "weekly_backup" }

// Run captures weekly snapshots. Per-tenant failures surface as a combined
// error after every tenant has been attempted.
func (j *WeeklyBackupJob) Run(ctx context.Context) error {
	taken, err := j.backups.CaptureAll(ctx, enums.BackupCadenceWeekly)
	ctx = j.logg.WithField(ctx, "snapshots", taken)
	if err != nil {
		return fmt.Errorf("weekly backup: %w", err)
	}
	j.logg.Info(ctx, "weekly snapshots captured")
	return nil
}
