package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/backoffice/internal/catalog/products"
	"github.com/odyssey-erp/backoffice/internal/observability"
)

// DefaultSweepMinAge keeps recent uploads out of the sweep.
const DefaultSweepMinAge = time.Hour

// ImageFiles is the storage surface needed by the sweep.
type ImageFiles interface {
	List(ctx context.Context, area string) ([]string, error)
	ModTime(path string) (time.Time, error)
	Delete(ctx context.Context, path string) error
}

// ImageReferences lists the image paths still referenced by products.
type ImageReferences interface {
	ImagePaths(ctx context.Context) ([]string, error)
}

// SweepResult summarises one sweep run.
type SweepResult struct {
	Scanned int
	Removed []string
}

// ImageSweepJob deletes stored product images that no product references.
type ImageSweepJob struct {
	files   ImageFiles
	refs    ImageReferences
	metrics *observability.Metrics
	logger  *slog.Logger
	now     func() time.Time
}

// NewImageSweepJob wires the job.
func NewImageSweepJob(files ImageFiles, refs ImageReferences, metrics *observability.Metrics, logger *slog.Logger) *ImageSweepJob {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImageSweepJob{files: files, refs: refs, metrics: metrics, logger: logger, now: time.Now}
}

// Handle processes TaskImageSweep.
func (j *ImageSweepJob) Handle(ctx context.Context, t *asynq.Task) (err error) {
	started := time.Now()
	defer func() { j.metrics.ObserveJob(TaskImageSweep, started, err) }()

	payload := ImageSweepPayload{MinAge: DefaultSweepMinAge}
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
		}
	}
	result, err := j.Sweep(ctx, payload)
	if err != nil {
		return err
	}
	j.logger.Info("image sweep finished",
		slog.Int("scanned", result.Scanned),
		slog.Int("removed", len(result.Removed)),
		slog.Bool("dry_run", payload.DryRun),
	)
	return nil
}

// Sweep removes orphaned images older than payload.MinAge.
func (j *ImageSweepJob) Sweep(ctx context.Context, payload ImageSweepPayload) (SweepResult, error) {
	stored, err := j.files.List(ctx, products.ImageArea)
	if err != nil {
		return SweepResult{}, err
	}
	referenced, err := j.refs.ImagePaths(ctx)
	if err != nil {
		return SweepResult{}, err
	}
	keep := make(map[string]struct{}, len(referenced))
	for _, p := range referenced {
		keep[p] = struct{}{}
	}

	result := SweepResult{Scanned: len(stored)}
	cutoff := j.now().Add(-payload.MinAge)
	for _, p := range stored {
		if _, ok := keep[p]; ok {
			continue
		}
		modified, err := j.files.ModTime(p)
		if err != nil || modified.After(cutoff) {
			continue
		}
		if !payload.DryRun {
			if err := j.files.Delete(ctx, p); err != nil {
				return result, err
			}
		}
		result.Removed = append(result.Removed, p)
	}
	return result, nil
}
