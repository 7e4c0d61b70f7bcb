package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("missing file returns defaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), "/data")
		require.NoError(t, err)
		assert.Equal(t, "git", cfg.GitPath)
		assert.Equal(t, 5, cfg.Scan.MaxDepth)
		assert.Equal(t, "/data", cfg.DataDir)
	})

	t.Run("partial file keeps defaults for the rest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scan:\n  max_depth: 3\n  ignore:\n    - \"tmp-*\"\n"), 0o644))

		cfg, err := Load(path, "/data")
		require.NoError(t, err)
		assert.Equal(t, 3, cfg.Scan.MaxDepth)
		assert.Equal(t, []string{"tmp-*"}, cfg.Scan.Ignore)
		assert.Equal(t, 60, cfg.Scan.DirTimeoutSeconds)
		assert.Equal(t, "git", cfg.GitPath)
	})

	t.Run("invalid depth rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scan:\n  max_depth: 100\n"), 0o644))

		_, err := Load(path, "/data")
		require.Error(t, err)
	})

	t.Run("invalid glob rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("scan:\n  ignore:\n    - \"[bad\"\n"), 0o644))

		_, err := Load(path, "/data")
		require.Error(t, err)
	})
}
