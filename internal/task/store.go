package task

import (
	"context"
	"path/filepath"

	fileutil "audiomirror/internal/file"
)

// ReportStore persists run reports.
type ReportStore interface {
	SaveReport(ctx context.Context, r *Report) error
}

// fileStore writes each report to <dir>/runs/<run_id>.json.
type fileStore struct {
	dir string
}

func NewFileStore(dir string) ReportStore { //nolint:ireturn
	return &fileStore{dir: dir}
}

func (s *fileStore) reportPath(runID string) string {
	return filepath.Join(s.dir, "runs", runID+".json")
}

func (s *fileStore) SaveReport(_ context.Context, r *Report) error {
	return fileutil.WriteJSONAtomic(s.reportPath(r.RunID), r) //nolint:wrapcheck
}
