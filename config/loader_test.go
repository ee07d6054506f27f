package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Validates(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
}

func TestLoader_LoadFromFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yamlBody := "retrieval:\n  top_k: 25\n  hot_confidence: 0.8\nlog:\n  level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(yamlBody), 0o644))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)
	require.Equal(t, 25, cfg.Retrieval.TopK)
	require.Equal(t, 0.8, cfg.Retrieval.HotConfidence)
	require.Equal(t, "debug", cfg.Log.Level)
	// Untouched fields keep their defaults.
	require.Equal(t, 2, cfg.Consolidation.SemanticMinCount)
}

func TestLoader_EnvOverride(t *testing.T) {
	t.Setenv("MEMENGINE_RETRIEVAL_TOP_K", "7")
	t.Setenv("MEMENGINE_LOG_LEVEL", "warn")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.Equal(t, 7, cfg.Retrieval.TopK)
	require.Equal(t, "warn", cfg.Log.Level)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("retrieval:\n  top_k: 25\n"), 0o644))
	t.Setenv("MEMENGINE_RETRIEVAL_TOP_K", "99")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)
	require.Equal(t, 99, cfg.Retrieval.TopK)
}

func TestConfig_Validate_RejectsBadWeights(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Confidence.SemanticRelevanceWeight = 0.9
	require.Error(t, cfg.Validate())
}
