package assessment

import "gonum.org/v1/gonum/floats"

// SeasonalTotals holds the sum of the three months belonging to each season.
type SeasonalTotals struct {
	Winter float64 `json:"winter"`
	Spring float64 `json:"spring"`
	Summer float64 `json:"summer"`
	Fall   float64 `json:"fall"`
}

func seasonalTotals(monthly []float64) SeasonalTotals {
	var s [4]float64
	for m, v := range monthly {
		s[m/3] += v
	}
	return SeasonalTotals{Winter: s[Winter], Spring: s[Spring], Summer: s[Summer], Fall: s[Fall]}
}

type PVProduction struct {
	MonthlyWh  []float64      `json:"monthly_wh"`
	SeasonalWh SeasonalTotals `json:"seasonal_wh"`
	YearlyWh   float64        `json:"yearly_wh"`
}

type DieselConsumption struct {
	MonthlyKwh     []float64      `json:"monthly_kwh"`
	MonthlyLiters  []float64      `json:"monthly_liters"`
	SeasonalKwh    SeasonalTotals `json:"seasonal_kwh"`
	YearlyKwh      float64        `json:"yearly_kwh"`
	YearlyLiters   float64        `json:"yearly_liters"`
	YearlyFuelCost float64        `json:"yearly_fuel_cost"`
}

// EstimatePVProduction projects twelve 30-day months at the fixed solar hours
// per day, scaled by the month's seasonal factor.
func EstimatePVProduction(pvSizeKw float64, a Assumptions) PVProduction {
	monthly := make([]float64, MonthsPerYear)
	for m := range monthly {
		monthly[m] = pvSizeKw * 1000 * a.SolarHoursPerDay * a.DaysPerMonth * a.SeasonalFactors.ForMonth(m)
	}

	return PVProduction{
		MonthlyWh:  monthly,
		SeasonalWh: seasonalTotals(monthly),
		YearlyWh:   floats.Sum(monthly),
	}
}

// EstimateDieselConsumption projects the facility's stated daily usage over
// twelve 30-day months and converts it to fuel volume and cost.
func EstimateDieselConsumption(dailyUsageKwh float64, a Assumptions) DieselConsumption {
	kwh := make([]float64, MonthsPerYear)
	liters := make([]float64, MonthsPerYear)
	for m := range kwh {
		kwh[m] = dailyUsageKwh * a.DaysPerMonth * a.SeasonalFactors.ForMonth(m)
		liters[m] = kwh[m] * a.DieselConsumptionPerKwh
	}

	yearlyLiters := floats.Sum(liters)
	return DieselConsumption{
		MonthlyKwh:     kwh,
		MonthlyLiters:  liters,
		SeasonalKwh:    seasonalTotals(kwh),
		YearlyKwh:      floats.Sum(kwh),
		YearlyLiters:   yearlyLiters,
		YearlyFuelCost: yearlyLiters * a.DieselFuelCostPerLiter,
	}
}
