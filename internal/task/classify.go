package task

import (
	"path/filepath"
	"strings"
)

// Classifier decides what to do with a single source file.
type Classifier struct {
	convertFrom map[string]struct{}
	target      string
}

func NewClassifier(convertFrom []string, target string) Classifier {
	set := make(map[string]struct{}, len(convertFrom))
	for _, ext := range convertFrom {
		set[normalizeExt(ext)] = struct{}{}
	}
	return Classifier{convertFrom: set, target: normalizeExt(target)}
}

// Classify returns the work item for path with its output placed in
// destFolder, or false when the file is not handled. Extensions compare
// case-insensitively; the destination always takes the target extension.
func (c Classifier) Classify(path, destFolder string) (WorkItem, bool) {
	ext := filepath.Ext(path)
	stem := strings.TrimSuffix(filepath.Base(path), ext)
	if stem == "" {
		// ".flac" on its own is a hidden file, not a track.
		return WorkItem{}, false
	}
	ext = strings.ToLower(ext)
	dst := filepath.Join(destFolder, stem+c.target)

	if _, ok := c.convertFrom[ext]; ok && ext != c.target {
		return WorkItem{Source: path, Destination: dst, Action: ActionConvert}, true
	}
	if ext == c.target {
		return WorkItem{Source: path, Destination: dst, Action: ActionCopy}, true
	}
	return WorkItem{}, false
}

func normalizeExt(ext string) string {
	e := strings.ToLower(strings.TrimSpace(ext))
	if e != "" && !strings.HasPrefix(e, ".") {
		e = "." + e
	}
	return e
}
