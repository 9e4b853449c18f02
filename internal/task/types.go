package task

import "time"

type Action string

const (
	ActionCopy    Action = "copy"
	ActionConvert Action = "convert"
)

// WorkItem is one source to destination file operation.
type WorkItem struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Action      Action `json:"action"`
}

// Plan is the outcome of walking a source tree or manifest.
type Plan struct {
	// Skeleton lists destination directories mirroring the source tree.
	Skeleton []string
	Copies   []WorkItem
	Converts []WorkItem
}

// Items returns copy items followed by convert items.
func (p Plan) Items() []WorkItem {
	items := make([]WorkItem, 0, len(p.Copies)+len(p.Converts))
	items = append(items, p.Copies...)
	return append(items, p.Converts...)
}

type Outcome string

const (
	OutcomeDone    Outcome = "done"
	OutcomeSkipped Outcome = "skipped"
)

// Report summarizes one mirror run.
type Report struct {
	RunID       string      `json:"run_id"`
	SourceRoot  string      `json:"source_root"`
	DestRoot    string      `json:"dest_root"`
	Manifest    string      `json:"manifest,omitempty"`
	StartedAt   time.Time   `json:"started_at"`
	FinishedAt  time.Time   `json:"finished_at"`
	Directories int         `json:"directories"`
	Copied      int         `json:"copied"`
	Converted   int         `json:"converted"`
	Skipped     int         `json:"skipped"`
	Failures    []ItemError `json:"failures,omitempty"`
}

// Failed reports whether any work item failed.
func (r *Report) Failed() bool { return len(r.Failures) > 0 }

type Options struct {
	ConvertFrom     []string
	TargetExtension string
	// Workers bounds each batch; copy and convert batches run side by side.
	Workers int
	// SequentialBatches runs the copy batch to completion before the
	// convert batch, for a budget too small to split.
	SequentialBatches bool
	FailFast          bool
	// ReportDir, when set, receives runs/<run_id>.json.
	ReportDir string
}

const defaultWorkers = 8
