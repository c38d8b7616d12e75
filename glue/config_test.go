package glue

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigMatchesDocumentedPolicy(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "nulls_last_asc", cfg.NullOrdering)
	assert.Equal(t, "GLUE_", cfg.DictionaryPrefix)
	assert.False(t, cfg.nullsFirst())
}

func TestLoadConfigFillsOmittedFieldsFromDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "glue.toml")
	require.NoError(t, os.WriteFile(path, []byte(`null_ordering = "nulls_first"`+"\n"), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "nulls_first", cfg.NullOrdering)
	assert.True(t, cfg.nullsFirst())
	assert.Equal(t, "GLUE_", cfg.DictionaryPrefix, "omitted field falls back to the default")
}

func TestLoadConfigMissingFileErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
