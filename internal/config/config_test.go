package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Simplici0/salesdash/internal/unitecon"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"APP_ENV", "PORT", "LOG_LEVEL", "DB_PATH", "DATA_PATH", "CHART_MONTH", "PRESETS_PATH", "ANALYST_EMAIL", "ANALYST_PASSWORD", "SESSION_SECRET"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "2025-02", cfg.ChartMonth)
	assert.Equal(t, "./salesdash.db", cfg.DBPath)
	assert.True(t, cfg.IsDev())
	assert.False(t, cfg.AuthEnabled())
}

func TestLoad_AuthRequiresSecret(t *testing.T) {
	clearEnv(t)
	t.Setenv("ANALYST_EMAIL", "analyst@example.com")
	t.Setenv("ANALYST_PASSWORD", "secret")

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("SESSION_SECRET", "s3cr3t")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.AuthEnabled())
}

func TestLoadPresets_Defaults(t *testing.T) {
	presets, err := LoadPresets("")
	require.NoError(t, err)

	assert.Equal(t, unitecon.DefaultParameters(), presets.Parameters)
	assert.Equal(t, unitecon.DefaultTariff(), presets.Tariff)
}

func TestLoadPresets_FileOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	content := []byte(`
parameters:
  unit_cost: 250
  vat_rate: 20
  dimensions_mm: 100x200x300
tariff:
  base_delivery_fee: 45
`)
	require.NoError(t, os.WriteFile(path, content, 0o600))

	presets, err := LoadPresets(path)
	require.NoError(t, err)

	assert.Equal(t, 250.0, presets.Parameters.UnitCost)
	assert.Equal(t, 20.0, presets.Parameters.VATRate)
	assert.Equal(t, "100x200x300", presets.Parameters.DimensionsMm)
	assert.Equal(t, 21.0, presets.Parameters.CommissionRate)
	assert.Equal(t, 30, presets.Parameters.StorageDays)
	assert.Equal(t, 45.0, presets.Tariff.BaseDeliveryFee)
	assert.Equal(t, 9.5, presets.Tariff.DeliveryFeePerLiter)
}

func TestLoadPresets_RejectsBadDimensions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, []byte("parameters:\n  dimensions_mm: 10x20\n"), 0o600))

	_, err := LoadPresets(path)
	assert.Error(t, err)
}

func TestLoadPresets_MissingFile(t *testing.T) {
	_, err := LoadPresets(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}
