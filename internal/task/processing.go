package task

import (
	"context"
	"fmt"
	"os"

	"audiomirror/internal/encode"
	fileutil "audiomirror/internal/file"

	"github.com/rs/zerolog"
)

// Runner executes work items. Both actions are no-ops when the destination
// already exists, so repeated runs only do the missing work.
type Runner struct {
	encoder encode.Encoder
}

func NewRunner(encoder encode.Encoder) Runner {
	return Runner{encoder: encoder}
}

// Run dispatches item to the runner for its action.
func (r Runner) Run(ctx context.Context, item WorkItem) (Outcome, error) {
	switch item.Action {
	case ActionCopy:
		return r.Copy(ctx, item.Source, item.Destination)
	case ActionConvert:
		return r.Convert(ctx, item.Source, item.Destination)
	}
	return "", fmt.Errorf("unknown action %q", item.Action)
}

// Copy copies src to dst byte for byte unless dst exists.
func (r Runner) Copy(ctx context.Context, src, dst string) (Outcome, error) {
	logger := zerolog.Ctx(ctx)
	if fileutil.Exists(dst) {
		logger.Debug().Str("dst", dst).Msg("destination exists, skipping copy")
		return OutcomeSkipped, nil
	}
	logger.Info().Str("src", src).Str("dst", dst).Msg("copying file")
	copied, err := fileutil.CopyNoClobber(src, dst)
	if err != nil {
		return "", err //nolint:wrapcheck // ItemError names the action and paths
	}
	if !copied {
		return OutcomeSkipped, nil
	}
	return OutcomeDone, nil
}

// Convert runs the encoder for src unless dst exists. The encoder writes to
// a staging file that is published without overwriting dst, so a failed or
// concurrent encode never touches a file another item produced.
func (r Runner) Convert(ctx context.Context, src, dst string) (Outcome, error) {
	logger := zerolog.Ctx(ctx)
	if fileutil.Exists(dst) {
		logger.Debug().Str("dst", dst).Msg("destination exists, skipping conversion")
		return OutcomeSkipped, nil
	}
	logger.Info().Str("src", src).Str("dst", dst).Msg("converting file")
	staged := fileutil.StagingPath(dst)
	defer func() { _ = os.Remove(staged) }()

	if err := r.encoder.Encode(ctx, src, staged); err != nil {
		return "", err //nolint:wrapcheck // ItemError names the action and paths
	}
	published, err := fileutil.Publish(staged, dst)
	if err != nil {
		return "", err //nolint:wrapcheck // ItemError names the action and paths
	}
	if !published {
		logger.Debug().Str("dst", dst).Msg("destination appeared during conversion, keeping it")
		return OutcomeSkipped, nil
	}
	return OutcomeDone, nil
}
