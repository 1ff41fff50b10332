package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func showConfig(t *testing.T, args ...string) runConfig {
	t.Helper()
	out, err := execute(t, append([]string{"config", "show"}, args...)...)
	require.NoError(t, err)
	var cfg runConfig
	require.NoError(t, yaml.Unmarshal([]byte(out), &cfg))
	return cfg
}

func TestConfigShowDefaults(t *testing.T) {
	cfg := showConfig(t)

	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Equal(t, 0, cfg.StartOffset)
	assert.Equal(t, 0, cfg.MaxRecords)
	assert.Equal(t, 4, cfg.Workers)
	assert.Equal(t, 0.85, cfg.MatchThreshold)
	assert.Equal(t, 0.60, cfg.ReviewThreshold)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestConfigPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "resolve.yaml")
	require.NoError(t, os.WriteFile(file, []byte("batch-size: 250\nworkers: 8\nmax-records: 10\n"), 0o600))

	t.Setenv("LINEAGE_WORKERS", "6")
	t.Setenv("LINEAGE_DATABASE_URL", "postgres://user:secret@db/lineage")

	cfg := showConfig(t, "--config", file, "--max-records", "20")

	assert.Equal(t, 250, cfg.BatchSize, "config file")
	assert.Equal(t, 6, cfg.Workers, "env overrides file")
	assert.Equal(t, 20, cfg.MaxRecords, "flag overrides file")
	assert.Equal(t, "<set>", cfg.DatabaseURL, "credentials are redacted")
}

func TestRunRequiresDatabaseURL(t *testing.T) {
	_, err := execute(t)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database-url")
}

func TestCheckpointRequiresRedis(t *testing.T) {
	_, err := execute(t, "--database-url", "postgres://localhost/lineage", "--checkpoint", "resolve:leads")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "redis-url")
}

func TestMissingConfigFile(t *testing.T) {
	_, err := execute(t, "config", "show", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
