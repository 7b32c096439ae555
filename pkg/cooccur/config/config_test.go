package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/cooccur/pkg/cooccur/indicator"
	"github.com/cognicore/cooccur/pkg/cooccur/internalerr"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
engine:
  row_cap: 50
  item_cap: 1000
  workers: 4
  seed: 7
text:
  stopwords: [the, a]
output:
  db: run.db
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 50, cfg.Engine.RowCap)
	assert.Equal(t, 1000, cfg.Engine.ItemCap)
	assert.Equal(t, 4, cfg.Engine.Workers)
	assert.Equal(t, uint64(7), cfg.Engine.Seed)
	assert.Equal(t, 5, cfg.Text.Window, "window keeps its default")
	assert.Equal(t, []string{"the", "a"}, cfg.Text.Stopwords)
	assert.Equal(t, 10, cfg.Output.TopK)
	assert.Equal(t, "run.db", cfg.Output.DB)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	assert.Error(t, err)
}

func TestLoadMalformed(t *testing.T) {
	_, err := Load(writeFile(t, "engine: [not, a, map"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Engine.Workers = 0
	assert.ErrorIs(t, cfg.Validate(), internalerr.ErrInvalidConfig)

	cfg = Default()
	cfg.Text.Window = -1
	assert.ErrorIs(t, cfg.Validate(), internalerr.ErrInvalidConfig)

	cfg = Default()
	cfg.Engine.RowCap = -1
	assert.NoError(t, cfg.Validate(), "negative caps disable capping")
}

func TestEngineOptions(t *testing.T) {
	cfg := Default()
	cfg.Engine.ItemCap = 30
	cfg.Engine.Workers = 3
	opts := indicator.New(cfg.EngineOptions()...).Options()
	assert.Equal(t, indicator.DefaultRowCap, opts.RowCap)
	assert.Equal(t, 30, opts.ItemCap)
	assert.Equal(t, 3, opts.Workers)
}

func TestAllStopwords(t *testing.T) {
	stopPath := filepath.Join(t.TempDir(), "stop.yaml")
	require.NoError(t, os.WriteFile(stopPath, []byte("terms:\n  - of\n  - to\n"), 0644))

	txt := Text{Stopwords: []string{"the"}, StopwordsFile: stopPath}
	words, err := txt.AllStopwords()
	require.NoError(t, err)
	assert.Equal(t, []string{"the", "of", "to"}, words)

	txt.StopwordsFile = "/nonexistent/stop.yaml"
	_, err = txt.AllStopwords()
	assert.Error(t, err)
}
