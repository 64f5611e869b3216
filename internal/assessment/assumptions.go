package assessment

import (
	"math"
)

// Season indexes follow the month grouping used by the estimator:
// months 0-2 winter, 3-5 spring, 6-8 summer, 9-11 fall.
const (
	Winter = iota
	Spring
	Summer
	Fall
)

const MonthsPerYear = 12

type SeasonalFactors struct {
	Winter float64 `mapstructure:"winter" json:"winter" yaml:"winter"`
	Spring float64 `mapstructure:"spring" json:"spring" yaml:"spring"`
	Summer float64 `mapstructure:"summer" json:"summer" yaml:"summer"`
	Fall   float64 `mapstructure:"fall" json:"fall" yaml:"fall"`
}

// Ordered returns the factors in winter, spring, summer, fall order.
func (f SeasonalFactors) Ordered() [4]float64 {
	return [4]float64{f.Winter, f.Spring, f.Summer, f.Fall}
}

// ForMonth selects the factor positionally: month/3 indexes Ordered().
func (f SeasonalFactors) ForMonth(month int) float64 {
	return f.Ordered()[month/3]
}

type IRRSettings struct {
	InitialGuess  float64 `mapstructure:"initial_guess" json:"initial_guess" yaml:"initial_guess"`
	Tolerance     float64 `mapstructure:"tolerance" json:"tolerance" yaml:"tolerance"`
	MaxIterations int     `mapstructure:"max_iterations" json:"max_iterations" yaml:"max_iterations"`
}

type EnvironmentFactors struct {
	PVCO2PerKwh       float64 `mapstructure:"pv_co2_per_kwh" json:"pv_co2_per_kwh" yaml:"pv_co2_per_kwh"`
	PVWaterPerKwh     float64 `mapstructure:"pv_water_per_kwh" json:"pv_water_per_kwh" yaml:"pv_water_per_kwh"`
	PVLandPerKwh      float64 `mapstructure:"pv_land_per_kwh" json:"pv_land_per_kwh" yaml:"pv_land_per_kwh"`
	DieselCO2PerLiter float64 `mapstructure:"diesel_co2_per_liter" json:"diesel_co2_per_liter" yaml:"diesel_co2_per_liter"`
	DieselNoisePerKwh float64 `mapstructure:"diesel_noise_per_kwh" json:"diesel_noise_per_kwh" yaml:"diesel_noise_per_kwh"`
	DieselWastePerKwh float64 `mapstructure:"diesel_waste_per_kwh" json:"diesel_waste_per_kwh" yaml:"diesel_waste_per_kwh"`
}

// Assumptions carries every constant the engine computes with. The zero value
// is not usable; start from DefaultAssumptions and override fields.
type Assumptions struct {
	// Sizing
	SystemEfficiency float64 `mapstructure:"system_efficiency" json:"system_efficiency" yaml:"system_efficiency"`
	PVOversizeMargin float64 `mapstructure:"pv_oversize_margin" json:"pv_oversize_margin" yaml:"pv_oversize_margin"`
	BatteryMargin    float64 `mapstructure:"battery_margin" json:"battery_margin" yaml:"battery_margin"`

	// Production
	SolarHoursPerDay float64 `mapstructure:"solar_hours_per_day" json:"solar_hours_per_day" yaml:"solar_hours_per_day"`
	DaysPerMonth     float64 `mapstructure:"days_per_month" json:"days_per_month" yaml:"days_per_month"`

	// PV costs
	PVPanelCostPerWatt  float64 `mapstructure:"pv_panel_cost_per_watt" json:"pv_panel_cost_per_watt" yaml:"pv_panel_cost_per_watt"`
	BatteryCostPerWh    float64 `mapstructure:"battery_cost_per_wh" json:"battery_cost_per_wh" yaml:"battery_cost_per_wh"`
	InverterCostPerWatt float64 `mapstructure:"inverter_cost_per_watt" json:"inverter_cost_per_watt" yaml:"inverter_cost_per_watt"`
	PVMaintenanceRate   float64 `mapstructure:"pv_maintenance_rate" json:"pv_maintenance_rate" yaml:"pv_maintenance_rate"`

	// Diesel costs
	DieselGeneratorCostPerKw float64 `mapstructure:"diesel_generator_cost_per_kw" json:"diesel_generator_cost_per_kw" yaml:"diesel_generator_cost_per_kw"`
	DieselMaintenanceRate    float64 `mapstructure:"diesel_maintenance_rate" json:"diesel_maintenance_rate" yaml:"diesel_maintenance_rate"`
	DieselConsumptionPerKwh  float64 `mapstructure:"diesel_consumption_per_kwh" json:"diesel_consumption_per_kwh" yaml:"diesel_consumption_per_kwh"`
	DieselFuelCostPerLiter   float64 `mapstructure:"diesel_fuel_cost_per_liter" json:"diesel_fuel_cost_per_liter" yaml:"diesel_fuel_cost_per_liter"`

	// Finance
	DiscountRate         float64 `mapstructure:"discount_rate" json:"discount_rate" yaml:"discount_rate"`
	ProjectLifetimeYears int     `mapstructure:"project_lifetime_years" json:"project_lifetime_years" yaml:"project_lifetime_years"`

	SeasonalFactors SeasonalFactors    `mapstructure:"seasonal_factors" json:"seasonal_factors" yaml:"seasonal_factors"`
	IRR             IRRSettings        `mapstructure:"irr" json:"irr" yaml:"irr"`
	Environment     EnvironmentFactors `mapstructure:"environment" json:"environment" yaml:"environment"`
}

func DefaultAssumptions() Assumptions {
	return Assumptions{
		SystemEfficiency: 0.85, // wiring, inverter and temperature derate
		PVOversizeMargin: 0.20,
		BatteryMargin:    0.10, // one day of autonomy

		SolarHoursPerDay: 4,
		DaysPerMonth:     30,

		PVPanelCostPerWatt:  0.30, // $/W
		BatteryCostPerWh:    0.20, // $/Wh
		InverterCostPerWatt: 0.15, // $/W
		PVMaintenanceRate:   0.02, // share of initial cost per year

		DieselGeneratorCostPerKw: 500,  // $/kW
		DieselMaintenanceRate:    0.05, // share of initial cost per year
		DieselConsumptionPerKwh:  0.3,  // L/kWh
		DieselFuelCostPerLiter:   1.50, // $/L

		DiscountRate:         0.12,
		ProjectLifetimeYears: 20,

		SeasonalFactors: SeasonalFactors{
			Winter: 0.8,
			Spring: 1.0,
			Summer: 1.2,
			Fall:   1.1,
		},
		IRR: IRRSettings{
			InitialGuess:  0.10,
			Tolerance:     1e-6,
			MaxIterations: 100,
		},
		Environment: EnvironmentFactors{
			PVCO2PerKwh:       0.5,     // kg/kWh avoided
			PVWaterPerKwh:     0.001,   // m³/kWh saved
			PVLandPerKwh:      0.0001,  // m²/kWh
			DieselCO2PerLiter: 2.68,    // kg/L
			DieselNoisePerKwh: 0.0001,  // proxy index
			DieselWastePerKwh: 0.00001, // proxy index
		},
	}
}

// Validate reports every assumption that would make the engine divide by
// zero, loop without bound or produce meaningless figures.
func (a Assumptions) Validate() error {
	v := newValidator(ErrInvalidAssumptions)

	v.check(inOpenUnit(a.SystemEfficiency), "system_efficiency", a.SystemEfficiency, "in (0, 1]")
	v.check(nonNegative(a.PVOversizeMargin), "pv_oversize_margin", a.PVOversizeMargin, ">= 0")
	v.check(nonNegative(a.BatteryMargin), "battery_margin", a.BatteryMargin, ">= 0")
	v.check(nonNegative(a.SolarHoursPerDay), "solar_hours_per_day", a.SolarHoursPerDay, ">= 0")
	v.check(nonNegative(a.DaysPerMonth), "days_per_month", a.DaysPerMonth, ">= 0")

	v.check(nonNegative(a.PVPanelCostPerWatt), "pv_panel_cost_per_watt", a.PVPanelCostPerWatt, ">= 0")
	v.check(nonNegative(a.BatteryCostPerWh), "battery_cost_per_wh", a.BatteryCostPerWh, ">= 0")
	v.check(nonNegative(a.InverterCostPerWatt), "inverter_cost_per_watt", a.InverterCostPerWatt, ">= 0")
	v.check(nonNegative(a.PVMaintenanceRate), "pv_maintenance_rate", a.PVMaintenanceRate, ">= 0")
	v.check(nonNegative(a.DieselGeneratorCostPerKw), "diesel_generator_cost_per_kw", a.DieselGeneratorCostPerKw, ">= 0")
	v.check(nonNegative(a.DieselMaintenanceRate), "diesel_maintenance_rate", a.DieselMaintenanceRate, ">= 0")
	v.check(nonNegative(a.DieselConsumptionPerKwh), "diesel_consumption_per_kwh", a.DieselConsumptionPerKwh, ">= 0")
	v.check(nonNegative(a.DieselFuelCostPerLiter), "diesel_fuel_cost_per_liter", a.DieselFuelCostPerLiter, ">= 0")

	v.check(finite(a.DiscountRate) && a.DiscountRate > -1, "discount_rate", a.DiscountRate, "> -1")
	v.check(a.ProjectLifetimeYears >= 1, "project_lifetime_years", a.ProjectLifetimeYears, ">= 1")

	for i, name := range []string{"winter", "spring", "summer", "fall"} {
		f := a.SeasonalFactors.Ordered()[i]
		v.check(positive(f), "seasonal_factors."+name, f, "> 0")
	}

	v.check(finite(a.IRR.InitialGuess) && a.IRR.InitialGuess > -1, "irr.initial_guess", a.IRR.InitialGuess, "> -1")
	v.check(positive(a.IRR.Tolerance), "irr.tolerance", a.IRR.Tolerance, "> 0")
	v.check(a.IRR.MaxIterations >= 1, "irr.max_iterations", a.IRR.MaxIterations, ">= 1")

	e := a.Environment
	v.check(nonNegative(e.PVCO2PerKwh), "environment.pv_co2_per_kwh", e.PVCO2PerKwh, ">= 0")
	v.check(nonNegative(e.PVWaterPerKwh), "environment.pv_water_per_kwh", e.PVWaterPerKwh, ">= 0")
	v.check(nonNegative(e.PVLandPerKwh), "environment.pv_land_per_kwh", e.PVLandPerKwh, ">= 0")
	v.check(nonNegative(e.DieselCO2PerLiter), "environment.diesel_co2_per_liter", e.DieselCO2PerLiter, ">= 0")
	v.check(nonNegative(e.DieselNoisePerKwh), "environment.diesel_noise_per_kwh", e.DieselNoisePerKwh, ">= 0")
	v.check(nonNegative(e.DieselWastePerKwh), "environment.diesel_waste_per_kwh", e.DieselWastePerKwh, ">= 0")

	return v.err()
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func positive(x float64) bool {
	return finite(x) && x > 0
}

func nonNegative(x float64) bool {
	return finite(x) && x >= 0
}

func inOpenUnit(x float64) bool {
	return finite(x) && x > 0 && x <= 1
}
