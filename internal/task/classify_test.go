package task

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	c := NewClassifier([]string{".m4a", "flac", ".WAV"}, "mp3")
	out := filepath.Join("dst", "album")

	cases := []struct {
		path   string
		ok     bool
		action Action
		dst    string
	}{
		{"/src/album/01 intro.flac", true, ActionConvert, filepath.Join(out, "01 intro.mp3")},
		{"/src/album/02.WAV", true, ActionConvert, filepath.Join(out, "02.mp3")},
		{"/src/album/03.m4a", true, ActionConvert, filepath.Join(out, "03.mp3")},
		{"/src/album/04.mp3", true, ActionCopy, filepath.Join(out, "04.mp3")},
		{"/src/album/05.MP3", true, ActionCopy, filepath.Join(out, "05.mp3")},
		{"/src/album/cover.jpg", false, "", ""},
		{"/src/album/README", false, "", ""},
		{"/src/album/live.v2.flac", true, ActionConvert, filepath.Join(out, "live.v2.mp3")},
		{"/src/album/.flac", false, "", ""},
		{"/src/album/.mp3", false, "", ""},
	}
	for _, tc := range cases {
		item, ok := c.Classify(tc.path, out)
		assert.Equal(t, tc.ok, ok, tc.path)
		if !tc.ok {
			continue
		}
		assert.Equal(t, tc.action, item.Action, tc.path)
		assert.Equal(t, tc.path, item.Source, tc.path)
		assert.Equal(t, tc.dst, item.Destination, tc.path)
	}
}

func TestClassifyTargetInConvertSetCopies(t *testing.T) {
	c := NewClassifier([]string{".flac", ".mp3"}, ".mp3")
	item, ok := c.Classify("/src/a.mp3", "/dst")
	assert.True(t, ok)
	assert.Equal(t, ActionCopy, item.Action)
}
