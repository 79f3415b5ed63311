package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWhenFileMissing(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	require.NoError(t, err)
	assert.Equal(t, ":8181", cfg.Addr)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 30, cfg.PiggyBank.LookbackDays)
	assert.Equal(t, 4, cfg.Dashboard.WindowMonths)
	assert.Equal(t, 5, cfg.Report.TopCategories)
	assert.Equal(t, 50, cfg.Report.MaxTransactions)
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	// given
	path := filepath.Join(t.TempDir(), "application.yaml")
	content := []byte("db:\n  host: db.internal\n  name: money\npiggybank:\n  lookbackdays: 60\n")
	require.NoError(t, os.WriteFile(path, content, 0o600))
	t.Setenv("FINPRO_DASHBOARD_WINDOWMONTHS", "6")
	t.Setenv("FINPRO_DB_NAME", "override")

	// when
	cfg, err := Load(path)

	// then
	require.NoError(t, err)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "override", cfg.Database.Name)
	assert.Equal(t, 60, cfg.PiggyBank.LookbackDays)
	assert.Equal(t, 6, cfg.Dashboard.WindowMonths)
}

func TestLoad_InvalidYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db: [unclosed"), 0o600))

	_, err := Load(path)

	assert.Error(t, err)
}
