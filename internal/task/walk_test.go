package task

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWalker() Walker {
	opts := testOptions()
	return NewWalker(NewClassifier(opts.ConvertFrom, opts.TargetExtension))
}

func TestWalkMirrorsTreeAndClassifies(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	writeFile(t, filepath.Join(src, "albumA", "track1.flac"), "a1")
	writeFile(t, filepath.Join(src, "albumA", "track2.mp3"), "a2")
	writeFile(t, filepath.Join(src, "albumA", "cover.jpg"), "img")
	writeFile(t, filepath.Join(src, "albumB", "disc1", "track3.wav"), "b3")
	writeFile(t, filepath.Join(src, "loose.m4a"), "l")
	require.NoError(t, os.MkdirAll(filepath.Join(src, "empty", "nested"), 0o755))

	plan, err := newTestWalker().Walk(src, dst)
	require.NoError(t, err)

	for _, rel := range []string{"albumA", "albumB", filepath.Join("albumB", "disc1"), "empty", filepath.Join("empty", "nested")} {
		assert.DirExists(t, filepath.Join(dst, rel))
	}
	assert.Len(t, plan.Skeleton, 5)

	require.Len(t, plan.Copies, 1)
	assert.Equal(t, filepath.Join(dst, "albumA", "track2.mp3"), plan.Copies[0].Destination)

	var converted []string
	for _, item := range plan.Converts {
		assert.Equal(t, ActionConvert, item.Action)
		assert.True(t, filepath.IsAbs(item.Source))
		converted = append(converted, item.Destination)
	}
	assert.ElementsMatch(t, []string{
		filepath.Join(dst, "albumA", "track1.mp3"),
		filepath.Join(dst, "albumB", "disc1", "track3.mp3"),
		filepath.Join(dst, "loose.mp3"),
	}, converted)

	assert.Len(t, plan.Items(), 4)
}

func TestWalkSkipsDestinationInsideSource(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(src, "converted")
	writeFile(t, filepath.Join(src, "a.flac"), "a")
	writeFile(t, filepath.Join(dst, "a.mp3"), "already")

	plan, err := newTestWalker().Walk(src, dst)
	require.NoError(t, err)
	assert.Empty(t, plan.Copies)
	require.Len(t, plan.Converts, 1)
	assert.NoDirExists(t, filepath.Join(dst, "converted"))
}

func TestWalkMissingSourceRoot(t *testing.T) {
	_, err := newTestWalker().Walk(filepath.Join(t.TempDir(), "nope"), t.TempDir())
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file.txt")
	writeFile(t, file, "x")
	_, err = newTestWalker().Walk(file, t.TempDir())
	require.ErrorIs(t, err, ErrNoSourceRoot)
}

func TestWalkManifest(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "dst")
	writeFile(t, filepath.Join(src, "albumA", "track1.flac"), "a")
	writeFile(t, filepath.Join(src, "albumB", "track2.wav"), "b")
	writeFile(t, filepath.Join(src, "albumC", "track3.flac"), "c")

	manifest := filepath.Join(t.TempDir(), "list.txt")
	writeFile(t, manifest,
		filepath.Join(src, "albumA", "track1.flac")+"\n"+
			filepath.Join(src, "albumB", "track2.wav")+"  \n")

	plan, err := newTestWalker().WalkManifest(manifest, src, dst)
	require.NoError(t, err)

	assert.Empty(t, plan.Copies)
	require.Len(t, plan.Converts, 2)
	assert.Equal(t, filepath.Join(dst, "albumA", "track1.mp3"), plan.Converts[0].Destination)
	assert.Equal(t, filepath.Join(dst, "albumB", "track2.mp3"), plan.Converts[1].Destination)

	assert.DirExists(t, filepath.Join(dst, "albumA"))
	assert.DirExists(t, filepath.Join(dst, "albumB"))
	assert.NoDirExists(t, filepath.Join(dst, "albumC"), "unlisted folders are created lazily")
}

func TestWalkManifestCreatesMatchingSkeletonDirs(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "dst")
	writeFile(t, filepath.Join(src, "albumA", "t.flac"), "a")
	writeFile(t, filepath.Join(src, "albumA", "disc1", "u.flac"), "a1")
	writeFile(t, filepath.Join(src, "albumB", "v.flac"), "b")

	manifest := filepath.Join(t.TempDir(), "list.txt")
	writeFile(t, manifest, filepath.Join(src, "albumA", "t.flac")+"\n")

	plan, err := newTestWalker().WalkManifest(manifest, src, dst)
	require.NoError(t, err)
	require.Len(t, plan.Converts, 1)

	assert.DirExists(t, filepath.Join(dst, "albumA"))
	assert.DirExists(t, filepath.Join(dst, "albumA", "disc1"))
	assert.NoDirExists(t, filepath.Join(dst, "albumB"))
}

func TestWalkManifestWithoutSourceTree(t *testing.T) {
	// The source root only anchors destination paths.
	base := t.TempDir()
	src := filepath.Join(base, "src")
	dst := filepath.Join(base, "dst")
	manifest := filepath.Join(base, "list.txt")
	writeFile(t, manifest, filepath.Join(src, "albumA", "track1.flac")+"\n"+filepath.Join(src, "albumB", "track2.wav")+"\n")

	plan, err := newTestWalker().WalkManifest(manifest, src, dst)
	require.NoError(t, err)
	require.Len(t, plan.Converts, 2)
	assert.Equal(t, filepath.Join(dst, "albumA", "track1.mp3"), plan.Converts[0].Destination)
	assert.Equal(t, filepath.Join(dst, "albumB", "track2.mp3"), plan.Converts[1].Destination)
	assert.DirExists(t, filepath.Join(dst, "albumA"))
	assert.DirExists(t, filepath.Join(dst, "albumB"))
}

func TestWalkManifestPathOutsideSourceRoot(t *testing.T) {
	base := t.TempDir()
	src := filepath.Join(base, "src")
	dst := filepath.Join(base, "dst")
	other := filepath.Join(base, "elsewhere", "song.mp3")
	manifest := filepath.Join(base, "list.txt")
	writeFile(t, manifest, other+"\n")

	plan, err := newTestWalker().WalkManifest(manifest, src, dst)
	require.NoError(t, err)
	require.Len(t, plan.Copies, 1)
	assert.Equal(t, filepath.Join(dst, filepath.Dir(other), "song.mp3"), plan.Copies[0].Destination)
	assert.DirExists(t, filepath.Dir(plan.Copies[0].Destination))
}

func TestWalkManifestMissing(t *testing.T) {
	_, err := newTestWalker().WalkManifest(filepath.Join(t.TempDir(), "missing.txt"), t.TempDir(), t.TempDir())
	require.ErrorIs(t, err, ErrManifestRead)
}
