package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// ErrEmptyPath is returned when a helper is called with an empty path.
var ErrEmptyPath = errors.New("empty path")

// EnsureDir creates the directory and any missing parents. An existing
// directory is not an error, so concurrent callers may race on the same path.
func EnsureDir(dirPath string) error {
	if dirPath == "" {
		return ErrEmptyPath
	}
	if err := os.MkdirAll(dirPath, dirPerm); err != nil {
		return fmt.Errorf("ensure dir: %w", err)
	}
	return nil
}

// Exists reports whether anything is present at path.
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// CopyNoClobber copies src to dst byte for byte. The data is staged in a
// temporary file next to dst and published with a hard link, so dst either
// appears complete or not at all and an existing dst is never replaced.
// It reports false when dst was already present.
func CopyNoClobber(src, dst string) (bool, error) {
	if src == "" || dst == "" {
		return false, ErrEmptyPath
	}
	in, err := os.Open(src) //nolint:gosec // caller-provided source path
	if err != nil {
		return false, fmt.Errorf("open source: %w", err)
	}
	defer func() { _ = in.Close() }()

	tmpName, err := writeTemp(filepath.Dir(dst), in)
	if err != nil {
		return false, err
	}
	defer func() { _ = os.Remove(tmpName) }()

	return Publish(tmpName, dst)
}

// StagingPath returns an unused path next to dst for a writer that stages
// its output before Publish. The extension of dst is kept.
func StagingPath(dst string) string {
	return filepath.Join(filepath.Dir(dst), ".tmp-"+uuid.NewString()+filepath.Ext(dst))
}

// Publish moves the staged file into place without overwriting dst. It
// reports false when dst was already present; the caller removes tmpName.
func Publish(tmpName, dst string) (bool, error) {
	err := os.Link(tmpName, dst)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrExist) {
		return false, nil
	}
	// Filesystems without hard links (FAT, exFAT) fall back to rename.
	if Exists(dst) {
		return false, nil
	}
	if err := os.Rename(tmpName, dst); err != nil {
		return false, fmt.Errorf("rename temp: %w", err)
	}
	return true, nil
}

func writeTemp(dir string, reader io.Reader) (string, error) {
	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	tmpName := tempFile.Name()
	if _, err := io.Copy(tempFile, reader); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("copy to temp: %w", err)
	}
	if err := tempFile.Sync(); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("sync temp: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, filePerm); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("chmod temp: %w", err)
	}
	return tmpName, nil
}

// WriteJSONAtomic marshals the value and atomically writes it to filename
// through a temporary file in the same directory followed by a rename.
func WriteJSONAtomic(filename string, v any) error {
	if filename == "" {
		return ErrEmptyPath
	}

	dir := filepath.Dir(filename)
	if err := EnsureDir(dir); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode json: %w", err)
	}

	tempFile, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tempFile.Name()
	if _, err := tempFile.Write(append(data, '\n')); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmpName, filename); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("rename temp: %w", err)
	}
	return nil
}
