package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 44, cfg.Language)
	assert.InDelta(t, 0.8, cfg.Thresholds.SurplusBelow, 1e-9)
	assert.InDelta(t, 1.2, cfg.Thresholds.ShortageAbove, 1e-9)
	assert.InDelta(t, 0.10, cfg.Thresholds.MarginalBuffer, 1e-9)
}

func TestLoadMergesOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
game_dir: /opt/x4
thresholds:
  shortage_above: 1.5
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/opt/x4", cfg.GameDir)
	assert.InDelta(t, 1.5, cfg.Thresholds.ShortageAbove, 1e-9)
	// Everything the file does not mention keeps its default.
	assert.InDelta(t, 0.8, cfg.Thresholds.SurplusBelow, 1e-9)
	assert.InDelta(t, 10000.0, cfg.Thresholds.MinerRate, 1e-9)
	assert.Equal(t, 44, cfg.Language)
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("thresholds: [not, a, map]"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLatestSave(t *testing.T) {
	dir := t.TempDir()
	write := func(name string, age time.Duration) {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
		mod := time.Now().Add(-age)
		require.NoError(t, os.Chtimes(path, mod, mod))
	}
	write("save_001.xml.gz", 3*time.Hour)
	write("quicksave.xml.gz", 30*time.Minute)
	write("autosave_01.xml", 2*time.Hour)
	write("notes.txt", 0)
	write("backup.xml", 0) // wrong prefix, ignored

	got, err := LatestSave(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "quicksave.xml.gz"), got)
}

func TestLatestSaveEmptyDir(t *testing.T) {
	_, err := LatestSave(t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}
