package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	os.Clearenv()
	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.Server.BindAddress)
	assert.Equal(t, "mock", cfg.Prover.Backend)
	assert.Equal(t, "local", cfg.KeyStore.Backend)
	assert.Empty(t, cfg.Admin.Key)
}

func TestLoadEnvOverride(t *testing.T) {
	os.Clearenv()
	t.Setenv("ADMIN_KEY", "super-secret")
	t.Setenv("PROVER_BACKEND", "external")

	cfg, err := Load("", "")
	require.NoError(t, err)

	assert.Equal(t, "super-secret", cfg.Admin.Key)
	assert.Equal(t, "external", cfg.Prover.Backend)
}

func TestLoadYAMLOverride(t *testing.T) {
	os.Clearenv()
	dir := t.TempDir()
	path := filepath.Join(dir, "override.yaml")
	require.NoError(t, os.WriteFile(path, []byte("admin:\n  key: from-yaml\n"), 0o600))

	cfg, err := Load("", path)
	require.NoError(t, err)
	assert.Equal(t, "from-yaml", cfg.Admin.Key)
}

func TestLoadMissingYAMLOverrideIsNotAnError(t *testing.T) {
	os.Clearenv()
	cfg, err := Load("", filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.NotNil(t, cfg)
}
