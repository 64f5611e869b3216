package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"dream-tool/internal/assessment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "api:\n  port: 9000\n"))
	require.NoError(t, err)

	assert.Equal(t, assessment.DefaultAssumptions(), cfg.Assumptions)
	assert.Equal(t, 9000, cfg.API.Port)
	assert.True(t, cfg.API.Enabled)
	assert.False(t, cfg.MQTT.Enabled)
	assert.Equal(t, "dream", cfg.MQTT.TopicPrefix)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadOverridesAssumptions(t *testing.T) {
	path := writeConfig(t, `
assumptions:
  discount_rate: 0.08
  project_lifetime_years: 25
  seasonal_factors:
    winter: 0.6
  irr:
    max_iterations: 50
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	a := cfg.Assumptions
	assert.Equal(t, 0.08, a.DiscountRate)
	assert.Equal(t, 25, a.ProjectLifetimeYears)
	assert.Equal(t, 0.6, a.SeasonalFactors.Winter)
	assert.Equal(t, 1.2, a.SeasonalFactors.Summer)
	assert.Equal(t, 50, a.IRR.MaxIterations)
	assert.Equal(t, 1e-6, a.IRR.Tolerance)
	assert.Equal(t, 0.30, a.PVPanelCostPerWatt)
}

func TestLoadEnvironmentOverride(t *testing.T) {
	t.Setenv("DREAM_ASSUMPTIONS_DIESEL_FUEL_COST_PER_LITER", "2.25")
	t.Setenv("DREAM_DATABASE_DRIVER", "postgres")

	cfg, err := Load(writeConfig(t, "log:\n  level: debug\n"))
	require.NoError(t, err)

	assert.Equal(t, 2.25, cfg.Assumptions.DieselFuelCostPerLiter)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsInvalidAssumptions(t *testing.T) {
	_, err := Load(writeConfig(t, "assumptions:\n  discount_rate: -2\n"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, assessment.ErrInvalidAssumptions))
}
