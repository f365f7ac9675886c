package cron

import (
	"context"
	"fmt"

	"github.com/openlocus/locuspoint-backend/pkg/logger"
)

// historyPruner is the slice of the history service this job needs.
type historyPruner interface {
	PruneAll(ctx context.Context) (int64, error)
}

// HistoryRetentionJob sweeps ledger rows that outlived the per-field
// retention window. The on-write prune keeps the ledger tight in steady
// state; this job cleans up after bulk paths and config changes.
type HistoryRetentionJob struct {
	history historyPruner
	logg    *logger.Logger
}

// NewHistoryRetentionJob wires the retention job.
func NewHistoryRetentionJob(history historyPruner, logg *logger.Logger) (*HistoryRetentionJob, error) {
	if history == nil {
		return nil, fmt.Errorf("history service required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &HistoryRetentionJob{history: history, logg: logg}, nil
}

// Name implements Job.
func (j *HistoryRetentionJob) Name() string { return "history_retention" }

// Run implements Job.
func (j *HistoryRetentionJob) Run(ctx context.Context) error {
	pruned, err := j.history.PruneAll(ctx)
	if err != nil {
		return fmt.Errorf("history retention: %w", err)
	}
	j.logg.Info(j.logg.WithField(ctx, "pruned", pruned), "history retention sweep complete")
	return nil
}
