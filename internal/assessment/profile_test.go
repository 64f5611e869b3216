package assessment

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func problemFields(t *testing.T, err error) []string {
	t.Helper()
	var ve *ValidationError
	require.True(t, errors.As(err, &ve), "expected *ValidationError, got %v", err)
	fields := make([]string, len(ve.Problems))
	for i, p := range ve.Problems {
		fields[i] = p.Field
	}
	return fields
}

func TestNewEnergyProfileRejectsDivisors(t *testing.T) {
	tests := []struct {
		name  string
		psh   float64
		panel float64
		batt  float64
		field string
	}{
		{"zero peak sun hours", 0, 0.18, 0.9, "peak_sun_hours"},
		{"negative peak sun hours", -3, 0.18, 0.9, "peak_sun_hours"},
		{"NaN peak sun hours", math.NaN(), 0.18, 0.9, "peak_sun_hours"},
		{"zero panel efficiency", 5, 0, 0.9, "panel_efficiency"},
		{"panel efficiency above one", 5, 1.2, 0.9, "panel_efficiency"},
		{"zero battery efficiency", 5, 0.18, 0, "battery_efficiency"},
		{"negative battery efficiency", 5, 0.18, -0.5, "battery_efficiency"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewEnergyProfile(nil, 10, tt.psh, tt.panel, tt.batt)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidProfile))
			assert.Equal(t, []string{tt.field}, problemFields(t, err))
		})
	}
}

func TestNewEnergyProfileListsEveryProblem(t *testing.T) {
	_, err := NewEnergyProfile([]Equipment{
		{PowerWatts: 100, HoursPerDay: 5, Efficiency: 0.9},
		{PowerWatts: -1, HoursPerDay: -2, Efficiency: 0},
	}, -4, 0, 0.18, 0.9)

	require.Error(t, err)
	assert.Equal(t, []string{
		"peak_sun_hours",
		"daily_usage_kwh",
		"equipment[1].power_watts",
		"equipment[1].hours_per_day",
		"equipment[1].efficiency",
	}, problemFields(t, err))
	assert.Contains(t, err.Error(), "invalid energy profile")
	assert.Contains(t, err.Error(), "peak_sun_hours = 0, expected > 0")
}

func TestNewEnergyProfileCopiesEquipment(t *testing.T) {
	equipment := []Equipment{{PowerWatts: 100, HoursPerDay: 10, Efficiency: 0.9}}
	p, err := NewEnergyProfile(equipment, 0, 5, 0.18, 0.9)
	require.NoError(t, err)

	equipment[0].PowerWatts = 9999
	assert.Equal(t, 100.0, p.Equipment[0].PowerWatts)
}

func TestTotalDailyEnergy(t *testing.T) {
	p, err := NewEnergyProfile([]Equipment{
		{PowerWatts: 100, HoursPerDay: 10, Efficiency: 0.9},
		{PowerWatts: 50, HoursPerDay: 4, Efficiency: 1},
	}, 0, 5, 0.18, 0.9)
	require.NoError(t, err)

	assert.InDelta(t, 1100.0, p.TotalDailyEnergyWh(), 1e-9)
	assert.InDelta(t, 1.1, p.TotalDailyEnergyKwh(), 1e-12)
}

func TestAssumptionsValidate(t *testing.T) {
	require.NoError(t, DefaultAssumptions().Validate())

	a := DefaultAssumptions()
	a.DiscountRate = -1
	a.SeasonalFactors.Summer = 0
	a.IRR.MaxIterations = 0
	a.IRR.Tolerance = 0
	a.SystemEfficiency = 1.5

	err := a.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidAssumptions))
	assert.ElementsMatch(t, []string{
		"system_efficiency",
		"discount_rate",
		"seasonal_factors.summer",
		"irr.tolerance",
		"irr.max_iterations",
	}, problemFields(t, err))
}
