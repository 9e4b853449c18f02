package task

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

// spyEncoder records invocations and writes a placeholder output file.
type spyEncoder struct {
	mu       sync.Mutex
	calls    []string
	delay    time.Duration
	fail     map[string]error
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func (s *spyEncoder) Encode(ctx context.Context, src, dst string) error {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		seen := s.maxSeen.Load()
		if n <= seen || s.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}

	s.mu.Lock()
	s.calls = append(s.calls, src)
	err := s.fail[filepath.Base(src)]
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err != nil {
		return err
	}
	return os.WriteFile(dst, []byte("encoded:"+src), 0o600)
}

func (s *spyEncoder) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

type encoderFunc func(ctx context.Context, src, dst string) error

func (f encoderFunc) Encode(ctx context.Context, src, dst string) error { return f(ctx, src, dst) }

func testOptions() Options {
	return Options{
		ConvertFrom:     []string{".m4a", ".flac", ".wav"},
		TargetExtension: ".mp3",
		Workers:         4,
	}
}
