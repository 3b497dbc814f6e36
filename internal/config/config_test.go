package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSanitizeFillsDefaultsWithoutClobberingSetFields(t *testing.T) {
	cfg := &Config{
		Server: ServerConfig{ListenAddr: ":9999"},
		Rerank: RerankConfig{PointwiseConcurrency: 50},
	}
	out := sanitize(cfg)

	require.Equal(t, ":9999", out.Server.ListenAddr)
	require.Equal(t, 50, out.Rerank.PointwiseConcurrency)
	require.Equal(t, Default().Editor.Timeout, out.Editor.Timeout)
	require.Equal(t, Default().Plan.StorageDir, out.Plan.StorageDir)
}

func TestLoadYAMLAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  listen_addr: ":8080"
llm:
  default_provider: anthropic
  providers:
    anthropic:
      api_key: test-key
      default_model: claude-sonnet
`), 0o644))

	cfg, err := LoadYAML(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.ListenAddr)
	require.Equal(t, "anthropic", cfg.LLM.DefaultProvider)
	require.Equal(t, "test-key", cfg.LLM.Providers["anthropic"].APIKey)
	require.Equal(t, Default().Rerank.ListwiseTokenBudget, cfg.Rerank.ListwiseTokenBudget)
}

func TestLoadTOMLAppliesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[server]
listen_addr = ":8080"

[plan]
storage_dir = "/tmp/plans"
`), 0o644))

	cfg, err := LoadTOML(path)
	require.NoError(t, err)
	require.Equal(t, ":8080", cfg.Server.ListenAddr)
	require.Equal(t, "/tmp/plans", cfg.Plan.StorageDir)
	require.Equal(t, Default().Search.MaxIterations, cfg.Search.MaxIterations)
}

func TestLoadYAMLMissingFile(t *testing.T) {
	_, err := LoadYAML(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
