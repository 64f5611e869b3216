package assessment

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeasonalFactorsArePositional(t *testing.T) {
	f := SeasonalFactors{Winter: 0.8, Spring: 1.0, Summer: 1.2, Fall: 1.1}
	want := []float64{0.8, 0.8, 0.8, 1.0, 1.0, 1.0, 1.2, 1.2, 1.2, 1.1, 1.1, 1.1}

	for m, w := range want {
		assert.Equal(t, w, f.ForMonth(m), "month %d", m)
	}
}

func TestEstimatePVProductionMonthlyFactors(t *testing.T) {
	a := DefaultAssumptions()
	prod := EstimatePVProduction(2, a)

	require.Len(t, prod.MonthlyWh, 12)
	base := 2 * 1000 * 4 * 30.0
	for m := 0; m < 3; m++ {
		assert.Equal(t, base*0.8, prod.MonthlyWh[m], "winter month %d", m)
		assert.Equal(t, base*1.0, prod.MonthlyWh[m+3], "spring month %d", m+3)
		assert.Equal(t, base*1.2, prod.MonthlyWh[m+6], "summer month %d", m+6)
		assert.Equal(t, base*1.1, prod.MonthlyWh[m+9], "fall month %d", m+9)
	}

	assert.InDelta(t, 3*base*0.8, prod.SeasonalWh.Winter, 1e-6)
	assert.InDelta(t, 3*base*1.0, prod.SeasonalWh.Spring, 1e-6)
	assert.InDelta(t, 3*base*1.2, prod.SeasonalWh.Summer, 1e-6)
	assert.InDelta(t, 3*base*1.1, prod.SeasonalWh.Fall, 1e-6)
	assert.InDelta(t, 2_952_000.0, prod.YearlyWh, 1e-6)
}

func TestEstimatePVProductionUsesInjectedFactors(t *testing.T) {
	a := DefaultAssumptions()
	a.SeasonalFactors = SeasonalFactors{Winter: 1, Spring: 2, Summer: 3, Fall: 4}

	prod := EstimatePVProduction(1, a)

	assert.Equal(t, 120000.0, prod.MonthlyWh[0])
	assert.Equal(t, 240000.0, prod.MonthlyWh[5])
	assert.Equal(t, 360000.0, prod.MonthlyWh[6])
	assert.Equal(t, 480000.0, prod.MonthlyWh[11])
}

func TestEstimateDieselConsumption(t *testing.T) {
	a := DefaultAssumptions()
	c := EstimateDieselConsumption(240, a)

	require.Len(t, c.MonthlyKwh, 12)
	require.Len(t, c.MonthlyLiters, 12)
	assert.InDelta(t, 5760.0, c.MonthlyKwh[0], 1e-9)
	assert.InDelta(t, 8640.0, c.MonthlyKwh[7], 1e-9)
	assert.InDelta(t, c.MonthlyKwh[10]*0.3, c.MonthlyLiters[10], 1e-9)

	assert.InDelta(t, 88_560.0, c.YearlyKwh, 1e-6)
	assert.InDelta(t, 26_568.0, c.YearlyLiters, 1e-6)
	assert.InDelta(t, 39_852.0, c.YearlyFuelCost, 1e-6)
	assert.InDelta(t, 3*240*30*1.1, c.SeasonalKwh.Fall, 1e-6)
}
