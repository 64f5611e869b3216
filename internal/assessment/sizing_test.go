package assessment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scenarioA(t *testing.T) EnergyProfile {
	t.Helper()
	p, err := NewEnergyProfile(
		[]Equipment{{PowerWatts: 100, HoursPerDay: 10, Efficiency: 0.9}},
		0, 5, 0.18, 0.9,
	)
	require.NoError(t, err)
	return p
}

func TestSizePVScenarioA(t *testing.T) {
	s := SizePV(scenarioA(t), DefaultAssumptions())

	assert.InDelta(t, 900.0, s.TotalDailyEnergyWh, 1e-9)
	assert.InDelta(t, 180.0, s.DailyPeakPowerW, 1e-9)
	assert.InDelta(t, 1.176, s.RawPVSizeKw, 1e-3)
	assert.Equal(t, 2.0, s.PVSizeKw)
	assert.InDelta(t, 1100.0, s.BatteryCapacityWh, 1e-9)
}

func TestSizePVOversizeMarginHolds(t *testing.T) {
	a := DefaultAssumptions()
	loads := [][]Equipment{
		{{PowerWatts: 100, HoursPerDay: 10, Efficiency: 0.9}},
		{{PowerWatts: 60, HoursPerDay: 24, Efficiency: 1}, {PowerWatts: 1500, HoursPerDay: 0.5, Efficiency: 0.7}},
		{{PowerWatts: 12000, HoursPerDay: 8, Efficiency: 0.85}},
		{{PowerWatts: 3, HoursPerDay: 1, Efficiency: 0.5}},
		{},
	}

	for _, equipment := range loads {
		for _, psh := range []float64{2.5, 4, 5.7} {
			p, err := NewEnergyProfile(equipment, 10, psh, 0.2, 0.95)
			require.NoError(t, err)

			s := SizePV(p, a)
			assert.GreaterOrEqual(t, s.PVSizeKw, s.RawPVSizeKw*1.2)
			assert.Equal(t, math.Trunc(s.PVSizeKw), s.PVSizeKw, "pv size must be a whole kW")
		}
	}
}

func TestSizePVBatteryCapacity(t *testing.T) {
	a := DefaultAssumptions()
	for _, eff := range []float64{0.5, 0.8, 0.9, 0.95, 1} {
		p, err := NewEnergyProfile(
			[]Equipment{{PowerWatts: 250, HoursPerDay: 6, Efficiency: 0.8}, {PowerWatts: 40, HoursPerDay: 12, Efficiency: 1}},
			0, 5, 0.18, eff,
		)
		require.NoError(t, err)

		s := SizePV(p, a)
		total := p.TotalDailyEnergyWh()
		assert.Equal(t, (total/eff)*1.1, s.BatteryCapacityWh)
		assert.InEpsilon(t, 1.1*total/eff, s.BatteryCapacityWh, 1e-12)
	}
}

func TestSizeDieselScenarioB(t *testing.T) {
	p, err := NewEnergyProfile(nil, 240, 5, 0.18, 0.9)
	require.NoError(t, err)

	assert.Equal(t, 10.0, SizeDiesel(p).GeneratorSizeKw)
}
