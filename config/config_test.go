package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withConfigPath(t *testing.T) string {
	t.Helper()
	prev := FilePath
	FilePath = filepath.Join(t.TempDir(), "mfg_config.json")
	t.Cleanup(func() { FilePath = prev })
	return FilePath
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	withConfigPath(t)

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "mfg.db", c.DatabasePath)
	assert.Equal(t, "WO", c.WorkOrderPrefix)
	assert.False(t, c.LegacyParenArithmetic)
	assert.Equal(t, c, GetConfig())
}

func TestSaveConfigRoundTrip(t *testing.T) {
	path := withConfigPath(t)

	require.NoError(t, SaveConfig(Config{DatabasePath: "x.db", LegacyParenArithmetic: true}))
	_, err := os.Stat(path)
	require.NoError(t, err)

	c, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "x.db", c.DatabasePath)
	assert.True(t, c.LegacyParenArithmetic)
	assert.Equal(t, ":8090", c.ListenAddr)
}

func TestLoadConfigInvalidJSON(t *testing.T) {
	path := withConfigPath(t)
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	c, err := LoadConfig()
	assert.Error(t, err)
	assert.Equal(t, "mfg.db", c.DatabasePath)
	assert.Equal(t, ":8090", GetConfig().ListenAddr)
}
