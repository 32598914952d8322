package config

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("BRAVELY_BACKEND", "")
	t.Setenv("BRAVELY_STORE_PATH", t.TempDir())
	t.Setenv("BRAVELY_TENANT", "")
	t.Setenv("BRAVELY_DEBOUNCE_MS", "")
	t.Setenv("BRAVELY_SESSION_TOKEN", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendSQLite, cfg.Backend)
	assert.Equal(t, "bravely", cfg.Tenant)
	assert.Equal(t, DefaultDebounce, cfg.Debounce)
	assert.Equal(t, "1234", cfg.MentorPIN)
}

func TestLoad_UnknownBackendFallsBackToJSON(t *testing.T) {
	t.Setenv("BRAVELY_BACKEND", "cassandra")
	t.Setenv("BRAVELY_STORE_PATH", t.TempDir())

	cfg, err := Load()
	require.Error(t, err)

	var confErr *ConfigError
	assert.True(t, errors.As(err, &confErr), "error must be a *ConfigError")
	assert.Equal(t, BackendJSON, cfg.Backend, "invalid config downgrades to local-only mode")
}

func TestLoad_Overrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("BRAVELY_BACKEND", "json")
	t.Setenv("BRAVELY_STORE_PATH", dir)
	t.Setenv("BRAVELY_TENANT", "acme-coaching")
	t.Setenv("BRAVELY_DEBOUNCE_MS", "250")
	t.Setenv("BRAVELY_SESSION_TOKEN", "tok")
	t.Setenv("BRAVELY_MENTOR_PIN", "9999")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, BackendJSON, cfg.Backend)
	assert.Equal(t, "acme-coaching", cfg.Tenant)
	assert.Equal(t, 250*time.Millisecond, cfg.Debounce)
	assert.Equal(t, "tok", cfg.SessionToken)
	assert.Equal(t, "9999", cfg.MentorPIN)
}

func TestDocumentPath_NamespacedByTenant(t *testing.T) {
	cfg := Config{Backend: BackendJSON, StorePath: "/var/lib/bravely", Tenant: "acme"}
	assert.Equal(t, filepath.Join("/var/lib/bravely", "acme.json"), cfg.DocumentPath())

	cfg.Backend = BackendSQLite
	assert.Equal(t, filepath.Join("/var/lib/bravely", "acme.db"), cfg.DocumentPath())

	other := cfg
	other.Tenant = "globex"
	assert.NotEqual(t, cfg.DocumentPath(), other.DocumentPath(), "tenants must not collide on one store path")
}
