package task

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	fileutil "audiomirror/internal/file"

	"github.com/rs/zerolog/log"
)

// Walker turns a source tree or manifest into a Plan, creating the
// destination directories the plan needs on the way.
type Walker struct {
	classifier Classifier
}

func NewWalker(classifier Classifier) Walker {
	return Walker{classifier: classifier}
}

// Walk mirrors every directory under srcRoot into dstRoot, then classifies
// every file. All directories exist before Walk returns.
func (w Walker) Walk(srcRoot, dstRoot string) (Plan, error) {
	srcRoot, dstRoot, err := absRoots(srcRoot, dstRoot)
	if err != nil {
		return Plan{}, err
	}

	var files []string
	skeleton, err := scanTree(srcRoot, dstRoot, func(path string) { files = append(files, path) })
	if err != nil {
		return Plan{}, err
	}

	if err := fileutil.EnsureDir(dstRoot); err != nil {
		return Plan{}, err
	}
	for _, dir := range skeleton {
		if err := fileutil.EnsureDir(dir); err != nil {
			return Plan{}, err
		}
	}
	log.Debug().Int("directories", len(skeleton)).Str("dst", dstRoot).Msg("directory skeleton created")

	plan := Plan{Skeleton: skeleton}
	for _, path := range files {
		destFolder := mirrorDir(srcRoot, dstRoot, filepath.Dir(path))
		w.add(&plan, path, destFolder)
	}
	return plan, nil
}

// WalkManifest classifies only the files listed in the manifest. srcRoot
// anchors destination paths; it does not need to exist. Directories are
// created per listed file.
func (w Walker) WalkManifest(manifestPath, srcRoot, dstRoot string) (Plan, error) {
	paths, err := ReadManifest(manifestPath)
	if err != nil {
		return Plan{}, err
	}
	srcRoot, dstRoot, err = absRoots(srcRoot, dstRoot)
	if err != nil {
		return Plan{}, err
	}

	skeleton, err := scanTree(srcRoot, dstRoot, nil)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Plan{}, err
	}

	plan := Plan{Skeleton: skeleton}
	created := make(map[string]struct{})
	ensure := func(dir string) error {
		if _, ok := created[dir]; ok {
			return nil
		}
		if err := fileutil.EnsureDir(dir); err != nil {
			return err
		}
		created[dir] = struct{}{}
		return nil
	}

	for _, line := range paths {
		path, err := filepath.Abs(line)
		if err != nil {
			return Plan{}, fmt.Errorf("resolve %q: %w", line, err)
		}
		parent := filepath.Dir(path)

		// Skeleton directories whose path mentions the parent folder name
		// are created too. The destination folder below is authoritative.
		if name := filepath.Base(parent); name != string(filepath.Separator) && name != "." {
			for _, dir := range skeleton {
				if strings.Contains(dir, name) {
					if err := ensure(dir); err != nil {
						return Plan{}, err
					}
				}
			}
		}

		destFolder := mirrorDir(srcRoot, dstRoot, parent)
		if err := ensure(destFolder); err != nil {
			return Plan{}, err
		}
		w.add(&plan, path, destFolder)
	}
	return plan, nil
}

func (w Walker) add(plan *Plan, path, destFolder string) {
	item, ok := w.classifier.Classify(path, destFolder)
	if !ok {
		return
	}
	switch item.Action {
	case ActionCopy:
		plan.Copies = append(plan.Copies, item)
	case ActionConvert:
		plan.Converts = append(plan.Converts, item)
	}
}

// scanTree lists the destination directories mirroring srcRoot and calls
// onFile for each non-directory entry. dstRoot is pruned when it lies
// inside srcRoot.
func scanTree(srcRoot, dstRoot string, onFile func(string)) ([]string, error) {
	info, err := os.Stat(srcRoot)
	if err != nil {
		return nil, fmt.Errorf("stat source root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNoSourceRoot, srcRoot)
	}

	var skeleton []string
	err = filepath.WalkDir(srcRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path == srcRoot {
				return nil
			}
			if path == dstRoot {
				return filepath.SkipDir
			}
			skeleton = append(skeleton, mirrorDir(srcRoot, dstRoot, path))
			return nil
		}
		if onFile != nil {
			onFile(path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", srcRoot, err)
	}
	return skeleton, nil
}

// mirrorDir maps dir under srcRoot to the same relative place under
// dstRoot. A dir outside srcRoot is appended whole to dstRoot.
func mirrorDir(srcRoot, dstRoot, dir string) string {
	rel, err := filepath.Rel(srcRoot, dir)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return filepath.Join(dstRoot, strings.TrimPrefix(dir, filepath.VolumeName(dir)))
	}
	return filepath.Join(dstRoot, rel)
}

func absRoots(srcRoot, dstRoot string) (string, string, error) {
	src, err := filepath.Abs(srcRoot)
	if err != nil {
		return "", "", fmt.Errorf("resolve source root: %w", err)
	}
	dst, err := filepath.Abs(dstRoot)
	if err != nil {
		return "", "", fmt.Errorf("resolve destination root: %w", err)
	}
	return src, dst, nil
}
