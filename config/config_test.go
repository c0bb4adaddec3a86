package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	require.NoError(t, v.Unmarshal(&cfg))

	assert.Equal(t, "seekwell.db", cfg.Database.Path)
	assert.Equal(t, "auto", cfg.Inference.Provider)
	assert.Equal(t, 2, cfg.Scrape.PageCount)
	assert.Equal(t, 10, cfg.Flow.ChunkSize)
	assert.Equal(t, 5, cfg.Flow.ScoreThreshold)
	assert.Equal(t, "html", cfg.Output.Format)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seekwell.toml")
	content := `
[database]
path = "/tmp/test-checkpoints.db"

[scrape]
page_count = 3

[flow]
chunk_size = 5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test-checkpoints.db", cfg.Database.Path)
	assert.Equal(t, 3, cfg.Scrape.PageCount)
	assert.Equal(t, 5, cfg.Flow.ChunkSize)
	// Untouched values keep their defaults
	assert.Equal(t, 5, cfg.Flow.ScoreThreshold)
}

func TestLoadFromFileMissing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.toml"))
	require.Error(t, err)
}

func TestLoadCachesAndReset(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	first, err := Load()
	require.NoError(t, err)
	second, err := Load()
	require.NoError(t, err)
	assert.Same(t, first, second)

	Reset()
	third, err := Load()
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}

func TestEnvOverride(t *testing.T) {
	Reset()
	t.Cleanup(Reset)
	t.Setenv("SEEKWELL_SCRAPE_PAGE_COUNT", "7")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.Scrape.PageCount)
}
