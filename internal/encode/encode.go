package encode

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Encoder converts one audio file into the target format.
type Encoder interface {
	Encode(ctx context.Context, src, dst string) error
}

// EncodingError is returned when the encoder process cannot be started or
// exits unsuccessfully. Output holds its combined stdout and stderr.
type EncodingError struct {
	Src    string
	Dst    string
	Output string
	Err    error
}

func (e *EncodingError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("encode %s: %v", e.Src, e.Err)
	}
	return fmt.Sprintf("encode %s: %v: %s", e.Src, e.Err, out)
}

func (e *EncodingError) Unwrap() error { return e.Err }

// FFmpeg runs the ffmpeg binary once per file.
type FFmpeg struct {
	Path        string
	SampleRate  int
	BitRateKbps int
	Channels    int
	// Format is the ffmpeg muxer name, e.g. "mp3".
	Format string
}

// Args returns the command line used to encode src into dst, without the
// binary name. -n makes ffmpeg refuse to overwrite an existing dst.
func (f FFmpeg) Args(src, dst string) []string {
	return []string{
		"-hide_banner", "-nostdin",
		"-i", src,
		"-vn",
		"-ar", strconv.Itoa(f.SampleRate),
		"-ac", strconv.Itoa(f.Channels),
		"-b:a", strconv.Itoa(f.BitRateKbps) + "k",
		"-n",
		"-f", f.Format,
		dst,
	}
}

// Encode runs ffmpeg and blocks until it exits. Cancelling ctx kills the
// process.
func (f FFmpeg) Encode(ctx context.Context, src, dst string) error {
	path := f.Path
	if path == "" {
		path = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, path, f.Args(src, dst)...) //nolint:gosec // encoder path comes from operator config
	output, err := cmd.CombinedOutput()
	if err != nil {
		return &EncodingError{Src: src, Dst: dst, Output: string(output), Err: err}
	}
	return nil
}

// FormatForExtension maps a target file extension to the ffmpeg muxer name.
func FormatForExtension(ext string) string {
	format := strings.TrimPrefix(strings.ToLower(ext), ".")
	switch format {
	case "m4a", "aac":
		return "ipod"
	case "oga":
		return "ogg"
	}
	return format
}
