package task

import (
	"context"
	"errors"
	"time"

	"audiomirror/internal/encode"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

var errBatchFailed = errors.New("batch failed")

// Manager plans a mirror run and executes it as two bounded batches.
type Manager struct {
	walker Walker
	runner Runner
	opts   Options
	store  ReportStore
}

// NewManager creates a manager that converts through encoder.
func NewManager(opts Options, encoder encode.Encoder) *Manager {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	m := &Manager{
		walker: NewWalker(NewClassifier(opts.ConvertFrom, opts.TargetExtension)),
		runner: NewRunner(encoder),
		opts:   opts,
	}
	if opts.ReportDir != "" {
		m.store = NewFileStore(opts.ReportDir)
	}
	return m
}

// UseReportStore replaces where run reports are saved. Intended for test setup.
func (m *Manager) UseReportStore(store ReportStore) {
	m.store = store
}

// Run mirrors srcRoot into dstRoot, or only the files listed in manifest
// when it is non-empty. It returns once both the copy and the convert batch
// are drained. Item failures are collected in the report; the returned
// error covers planning failures and cancellation.
func (m *Manager) Run(ctx context.Context, srcRoot, dstRoot, manifest string) (*Report, error) {
	report := &Report{
		RunID:      uuid.NewString(),
		SourceRoot: srcRoot,
		DestRoot:   dstRoot,
		Manifest:   manifest,
		StartedAt:  time.Now(),
	}
	logger := log.Ctx(ctx).With().Str("run_id", report.RunID).Logger()
	ctx = logger.WithContext(ctx)

	plan, err := m.plan(srcRoot, dstRoot, manifest)
	if err != nil {
		return report, err
	}
	report.Directories = len(plan.Skeleton)
	logger.Info().
		Int("copies", len(plan.Copies)).
		Int("converts", len(plan.Converts)).
		Int("workers_per_batch", m.opts.Workers).
		Msg("work planned")

	copies, converts := m.execute(ctx, plan)

	report.Copied = copies.Done
	report.Converted = converts.Done
	report.Skipped = copies.Skipped + converts.Skipped
	report.Failures = append(copies.Failures, converts.Failures...)
	report.FinishedAt = time.Now()

	for _, failure := range report.Failures {
		logger.Warn().
			Str("action", string(failure.Item.Action)).
			Str("src", failure.Item.Source).
			Str("dst", failure.Item.Destination).
			Err(failure.Err).
			Msg("work item failed")
	}
	if abandoned := copies.Abandoned + converts.Abandoned; abandoned > 0 {
		logger.Warn().Int("abandoned", abandoned).Msg("run stopped before all items were processed")
	}
	m.saveReport(ctx, logger, report)

	logger.Info().
		Int("copied", report.Copied).
		Int("converted", report.Converted).
		Int("skipped", report.Skipped).
		Int("failed", len(report.Failures)).
		Dur("duration", report.FinishedAt.Sub(report.StartedAt)).
		Msg("run finished")

	if err := ctx.Err(); err != nil {
		return report, err //nolint:wrapcheck
	}
	return report, nil
}

func (m *Manager) plan(srcRoot, dstRoot, manifest string) (Plan, error) {
	if manifest != "" {
		return m.walker.WalkManifest(manifest, srcRoot, dstRoot)
	}
	return m.walker.Walk(srcRoot, dstRoot)
}

// execute runs the copy and convert batches side by side so a slow encoder
// never holds back copies, or one after the other when SequentialBatches is
// set. With FailFast a failure in either batch cancels the other.
func (m *Manager) execute(ctx context.Context, plan Plan) (BatchResult, BatchResult) {
	var copies, converts BatchResult
	if m.opts.SequentialBatches {
		copies = RunBatch(ctx, plan.Copies, m.opts.Workers, m.opts.FailFast, m.runner.Run)
		convertCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if m.batchErr(copies) != nil {
			cancel()
		}
		converts = RunBatch(convertCtx, plan.Converts, m.opts.Workers, m.opts.FailFast, m.runner.Run)
		return copies, converts
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		copies = RunBatch(groupCtx, plan.Copies, m.opts.Workers, m.opts.FailFast, m.runner.Run)
		return m.batchErr(copies)
	})
	group.Go(func() error {
		converts = RunBatch(groupCtx, plan.Converts, m.opts.Workers, m.opts.FailFast, m.runner.Run)
		return m.batchErr(converts)
	})
	_ = group.Wait()
	return copies, converts
}

func (m *Manager) batchErr(result BatchResult) error {
	if m.opts.FailFast && len(result.Failures) > 0 {
		return errBatchFailed
	}
	return nil
}

func (m *Manager) saveReport(ctx context.Context, logger zerolog.Logger, report *Report) {
	if m.store == nil {
		return
	}
	if err := m.store.SaveReport(ctx, report); err != nil { // best-effort
		logger.Warn().Err(err).Msg("persist run report failed")
	}
}
