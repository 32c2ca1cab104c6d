package library

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeFile creates path (and parent dirs) with throwaway content.
func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0750))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))
}

func TestScan_FiltersUnsupportedExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.mp3"))
	writeFile(t, filepath.Join(root, "sub", "b.wav"))
	writeFile(t, filepath.Join(root, "c.txt"))

	entries, err := Scan(root)
	require.NoError(t, err)

	rels := lo.Map(entries, func(e Entry, _ int) string { return e.Rel })
	assert.ElementsMatch(t, []string{"a.mp3", "sub/b.wav"}, rels)
}

func TestScan_CaseInsensitiveExtensions(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "LOUD.MP3"))
	writeFile(t, filepath.Join(root, "rain.Ogg"))

	entries, err := Scan(root)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestScan_RelativeIDsUseForwardSlashes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "ambience", "forest", "birds.ogg"))

	entries, err := Scan(root)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ambience/forest/birds.ogg", entries[0].Rel)
	assert.True(t, filepath.IsAbs(entries[0].AbsPath))
}

func TestScan_CreatesMissingRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "sounds")

	entries, err := Scan(root)
	require.NoError(t, err)
	assert.Empty(t, entries)

	// Root gets created so users can drop files in.
	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestScan_Deterministic(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"c.mp3", "a.mp3", "sub/b.wav", "b.ogg"} {
		writeFile(t, filepath.Join(root, name))
	}

	first, err := Scan(root)
	require.NoError(t, err)
	second, err := Scan(root)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSupported(t *testing.T) {
	assert.True(t, Supported("a.mp3"))
	assert.True(t, Supported("dir/b.WAV"))
	assert.True(t, Supported("c.ogg"))
	assert.False(t, Supported("d.flac"))
	assert.False(t, Supported("noext"))
}
