package check

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"titlemark/internal/beatmap"
	"titlemark/internal/logging"
	"titlemark/internal/markers"
)

// Runner validates beatmap files.
type Runner struct {
	validator *markers.Validator
	logger    *slog.Logger
	workers   int
	load      func(string) (*beatmap.Beatmap, error)
}

// NewRunner builds a runner. A nil validator checks every marker kind and
// workers below one run sequentially.
func NewRunner(validator *markers.Validator, logger *slog.Logger, workers int) *Runner {
	if validator == nil {
		validator = markers.NewValidator()
	}
	return &Runner{
		validator: validator,
		logger:    logging.NewComponentLogger(logger, "check"),
		workers:   max(workers, 1),
		load:      beatmap.Load,
	}
}

// Run validates every path and returns the report. Only context cancellation
// produces an error. The report ID is reused from the context when the caller
// set one with logging.WithRunID.
func (r *Runner) Run(ctx context.Context, paths []string) (*Report, error) {
	runID, ok := logging.RunIDFromContext(ctx)
	if !ok {
		runID = uuid.NewString()
		ctx = logging.WithRunID(ctx, runID)
	}
	logger := logging.WithContext(ctx, r.logger)
	sorted := slices.Clone(paths)
	slices.Sort(sorted)
	sorted = slices.Compact(sorted)

	started := time.Now()
	results := make([]FileResult, len(sorted))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, path := range sorted {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.checkFile(logger, path)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := &Report{
		ID:         runID,
		StartedAt:  started.UTC(),
		FinishedAt: time.Now().UTC(),
		Files:      results,
	}
	logger.Info("check complete",
		logging.Int("files", len(report.Files)),
		logging.Int("violations", report.ViolationCount()),
		logging.Int("failed", report.FailedCount()),
	)
	return report, nil
}

func (r *Runner) checkFile(logger *slog.Logger, path string) FileResult {
	result := FileResult{Path: path}
	bm, err := r.load(path)
	if err != nil {
		result.Err = err
		logging.WarnWithContext(logger, "skipping unreadable beatmap", "beatmap_parse_failed",
			logging.String(logging.FieldPath, path),
			logging.Error(err),
		)
		return result
	}

	result.Beatmap = summarize(bm)
	result.Violations = r.validator.Validate(bm.Record())
	logger.Debug("checked beatmap",
		logging.String(logging.FieldPath, path),
		logging.String("beatmap", bm.DisplayName()),
		logging.Int("violations", len(result.Violations)),
	)
	return result
}
