package configs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aman-CERP/indentstat/internal/config"
)

func TestConfigTemplate_MatchesDefaults(t *testing.T) {
	// Given: the embedded template written to disk
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ConfigTemplate), 0o644))

	// When: loading it
	cfg, err := config.LoadFile(path)

	// Then: every section equals the built-in defaults
	require.NoError(t, err)
	defaults := config.NewConfig()
	assert.Equal(t, defaults.Version, cfg.Version)
	assert.Equal(t, defaults.Analysis, cfg.Analysis)
	assert.Equal(t, defaults.Output, cfg.Output)
	assert.Equal(t, defaults.Logging, cfg.Logging)
	assert.Equal(t, defaults.Scan.MaxFileSize, cfg.Scan.MaxFileSize)
	assert.Equal(t, defaults.Scan.Recursive, cfg.Scan.Recursive)
	assert.Equal(t, defaults.Scan.RespectGitignore, cfg.Scan.RespectGitignore)
	assert.ElementsMatch(t, defaults.Paths.Exclude, cfg.Paths.Exclude)
	assert.Empty(t, cfg.Paths.Include)
	assert.Empty(t, cfg.Scan.Languages)
}
