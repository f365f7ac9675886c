// Package lifecycle derives the observable bucket for a location record.
// Buckets are computed fresh on every call and never stored; only the
// pending/active status column persists.
package lifecycle

import (
	"time"

	"github.com/openlocus/locuspoint-backend/internal/validation"
	"github.com/openlocus/locuspoint-backend/pkg/db/models"
	"github.com/openlocus/locuspoint-backend/pkg/enums"
)

// DefaultNewRecordWindow is how long a record carries the New overlay.
const DefaultNewRecordWindow = 72 * time.Hour

// Bucket is the derived lifecycle classification. Every record lands in
// exactly one bucket.
type Bucket string

const (
	BucketActive         Bucket = "active"
	BucketNeedsAttention Bucket = "needs_attention"
)

// Classification is the classifier output consumed by the UI: the exclusive
// bucket plus the orthogonal New overlay.
type Classification struct {
	Bucket Bucket `json:"bucket"`
	New    bool   `json:"new"`
}

// Classify assigns a record to its bucket. Active requires all three of:
// stored status active, external-pending clear, and a clean publish check
// via the same validation.Publishable predicate the export feed uses.
// Anything else is Needs-Attention; the two buckets partition every
// possible record.
func Classify(rec *models.Location, now time.Time) Classification {
	return ClassifyWithWindow(rec, now, DefaultNewRecordWindow)
}

// ClassifyWithWindow is Classify with a configurable New-overlay window.
func ClassifyWithWindow(rec *models.Location, now time.Time, newWindow time.Duration) Classification {
	bucket := BucketNeedsAttention
	if rec.Status == enums.LocationStatusActive && !rec.ExternalPending && validation.Publishable(rec, now) {
		bucket = BucketActive
	}

	return Classification{
		Bucket: bucket,
		New:    now.Sub(rec.CreatedAt) <= newWindow && !rec.CreatedAt.IsZero(),
	}
}
