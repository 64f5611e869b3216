package assessment

import "dream-tool/internal/finance"

type PVCost struct {
	PanelCost         float64 `json:"panel_cost"`
	BatteryCost       float64 `json:"battery_cost"`
	InverterCost      float64 `json:"inverter_cost"`
	InitialCost       float64 `json:"initial_cost"`
	AnnualMaintenance float64 `json:"annual_maintenance"`
	LifecycleCost     float64 `json:"lifecycle_cost"`
}

type DieselCost struct {
	InitialCost       float64 `json:"initial_cost"`
	AnnualMaintenance float64 `json:"annual_maintenance"`
	AnnualFuelCost    float64 `json:"annual_fuel_cost"`
	LifecycleCost     float64 `json:"lifecycle_cost"`
}

// PVEnvironmentalImpact holds proxy figures. The per-kWh coefficients are
// applied to the yearly production in Wh, so each value is 1000 times what
// its unit suffix suggests; compare them with each other, not with physical
// quantities.
type PVEnvironmentalImpact struct {
	CO2ReductionKg float64 `json:"co2_reduction_kg"`
	WaterSavedM3   float64 `json:"water_saved_m3"`
	LandRequiredM2 float64 `json:"land_required_m2"`
}

type DieselEnvironmentalImpact struct {
	CO2EmissionsKg   float64 `json:"co2_emissions_kg"`
	NoisePollution   float64 `json:"noise_pollution"`
	MaintenanceWaste float64 `json:"maintenance_waste"`
}

// lifecycleCost discounts initial+recurring for every year 1..lifetime.
// The initial cost is charged again in each year rather than once at year 0;
// downstream reports depend on these figures, so keep the formula as is.
func lifecycleCost(initial, recurring float64, a Assumptions) float64 {
	var total float64
	for year := 1; year <= a.ProjectLifetimeYears; year++ {
		total += finance.PresentValue(initial, a.DiscountRate, year) +
			finance.PresentValue(recurring, a.DiscountRate, year)
	}
	return total
}

func CostPV(s PVSizing, a Assumptions) PVCost {
	panel := s.PVSizeKw * 1000 * a.PVPanelCostPerWatt
	battery := s.BatteryCapacityWh * a.BatteryCostPerWh
	inverter := s.PVSizeKw * 1000 * a.InverterCostPerWatt
	initial := panel + battery + inverter
	maintenance := initial * a.PVMaintenanceRate

	return PVCost{
		PanelCost:         panel,
		BatteryCost:       battery,
		InverterCost:      inverter,
		InitialCost:       initial,
		AnnualMaintenance: maintenance,
		LifecycleCost:     lifecycleCost(initial, maintenance, a),
	}
}

func CostDiesel(s DieselSizing, c DieselConsumption, a Assumptions) DieselCost {
	initial := s.GeneratorSizeKw * a.DieselGeneratorCostPerKw
	maintenance := initial * a.DieselMaintenanceRate

	return DieselCost{
		InitialCost:       initial,
		AnnualMaintenance: maintenance,
		AnnualFuelCost:    c.YearlyFuelCost,
		LifecycleCost:     lifecycleCost(initial, c.YearlyFuelCost+maintenance, a),
	}
}

// PVImpact applies the per-kWh coefficients directly to the yearly
// production figure.
func PVImpact(p PVProduction, a Assumptions) PVEnvironmentalImpact {
	e := a.Environment
	return PVEnvironmentalImpact{
		CO2ReductionKg: p.YearlyWh * e.PVCO2PerKwh,
		WaterSavedM3:   p.YearlyWh * e.PVWaterPerKwh,
		LandRequiredM2: p.YearlyWh * e.PVLandPerKwh,
	}
}

// DieselImpact: noise and waste are linear proxy indexes of the yearly
// consumption, not physical measurements.
func DieselImpact(c DieselConsumption, a Assumptions) DieselEnvironmentalImpact {
	e := a.Environment
	return DieselEnvironmentalImpact{
		CO2EmissionsKg:   c.YearlyLiters * e.DieselCO2PerLiter,
		NoisePollution:   c.YearlyKwh * e.DieselNoisePerKwh,
		MaintenanceWaste: c.YearlyKwh * e.DieselWastePerKwh,
	}
}
