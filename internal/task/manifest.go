package task

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ReadManifest returns the file paths listed in a manifest, one per line.
// Trailing whitespace is stripped and blank lines are ignored.
func ReadManifest(path string) ([]string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // manifest path is given on the command line
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrManifestRead, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s is not valid UTF-8", ErrManifestRead, path)
	}

	lines := strings.Split(string(data), "\n")
	paths := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if line == "" {
			continue
		}
		paths = append(paths, line)
	}
	return paths, nil
}
