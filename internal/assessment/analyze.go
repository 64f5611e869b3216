// Package assessment compares the lifecycle economics of a solar PV plus
// battery system against a diesel generator for one facility.
//
// Everything here is a pure function of an EnergyProfile and a set of
// Assumptions: no I/O, no shared state, safe to call concurrently.
package assessment

import (
	"errors"
	"fmt"

	"dream-tool/internal/finance"
)

const (
	OptionPV     = "pv"
	OptionDiesel = "diesel"
	OptionEqual  = "equal"
)

// SystemCostResult holds the figures both options report.
type SystemCostResult struct {
	InitialCost       float64                `json:"initial_cost"`
	AnnualMaintenance float64                `json:"annual_maintenance"`
	LifecycleCost     float64                `json:"lifecycle_cost"`
	NPV               float64                `json:"npv"`
	IRR               finance.IRRResult      `json:"irr"`
	CashFlows         finance.CashFlowSeries `json:"cash_flows"`
}

type PVResult struct {
	SystemCostResult
	PanelCost     float64               `json:"panel_cost"`
	BatteryCost   float64               `json:"battery_cost"`
	InverterCost  float64               `json:"inverter_cost"`
	Sizing        PVSizing              `json:"sizing"`
	Production    PVProduction          `json:"production"`
	Environmental PVEnvironmentalImpact `json:"environmental"`
}

type DieselResult struct {
	SystemCostResult
	AnnualFuelCost float64                   `json:"annual_fuel_cost"`
	Sizing         DieselSizing              `json:"sizing"`
	Consumption    DieselConsumption         `json:"consumption"`
	Environmental  DieselEnvironmentalImpact `json:"environmental"`
}

type Summary struct {
	LowerLifecycleCost    string  `json:"lower_lifecycle_cost"`
	LifecycleSavings      float64 `json:"lifecycle_savings"`
	InitialCostDifference float64 `json:"initial_cost_difference"`
}

type Comparison struct {
	PV      PVResult     `json:"pv"`
	Diesel  DieselResult `json:"diesel"`
	Summary Summary      `json:"summary"`
}

// Analyze sizes, costs and scores both options. Invalid input is rejected
// with a *ValidationError before anything is computed; inputs that are valid
// but overflow a computed figure are rejected with ErrNumericOverflow.
func Analyze(p EnergyProfile, a Assumptions) (Comparison, error) {
	if err := errors.Join(p.Validate(), a.Validate()); err != nil {
		return Comparison{}, err
	}

	pv := analyzePV(p, a)
	diesel := analyzeDiesel(p, a)

	c := Comparison{
		PV:      pv,
		Diesel:  diesel,
		Summary: summarize(pv.SystemCostResult, diesel.SystemCostResult),
	}
	if err := c.checkFinite(); err != nil {
		return Comparison{}, err
	}
	return c, nil
}

// checkFinite lists every computed figure that overflowed. The offending
// value is reported as text since NaN and infinities have no JSON form.
func (c Comparison) checkFinite() error {
	v := newValidator(ErrNumericOverflow)
	check := func(field string, x float64) {
		v.check(finite(x), field, fmt.Sprint(x), "a finite number")
	}

	pv, d := c.PV, c.Diesel
	check("pv.sizing.total_daily_energy_wh", pv.Sizing.TotalDailyEnergyWh)
	check("pv.sizing.daily_peak_power_w", pv.Sizing.DailyPeakPowerW)
	check("pv.sizing.raw_pv_size_kw", pv.Sizing.RawPVSizeKw)
	check("pv.sizing.pv_size_kw", pv.Sizing.PVSizeKw)
	check("pv.sizing.battery_capacity_wh", pv.Sizing.BatteryCapacityWh)
	check("pv.production.yearly_wh", pv.Production.YearlyWh)
	check("pv.panel_cost", pv.PanelCost)
	check("pv.battery_cost", pv.BatteryCost)
	check("pv.inverter_cost", pv.InverterCost)
	check("pv.initial_cost", pv.InitialCost)
	check("pv.annual_maintenance", pv.AnnualMaintenance)
	check("pv.lifecycle_cost", pv.LifecycleCost)
	check("pv.npv", pv.NPV)
	check("pv.environmental.co2_reduction_kg", pv.Environmental.CO2ReductionKg)
	check("pv.environmental.water_saved_m3", pv.Environmental.WaterSavedM3)
	check("pv.environmental.land_required_m2", pv.Environmental.LandRequiredM2)

	check("diesel.sizing.generator_size_kw", d.Sizing.GeneratorSizeKw)
	check("diesel.consumption.yearly_kwh", d.Consumption.YearlyKwh)
	check("diesel.consumption.yearly_liters", d.Consumption.YearlyLiters)
	check("diesel.consumption.yearly_fuel_cost", d.Consumption.YearlyFuelCost)
	check("diesel.initial_cost", d.InitialCost)
	check("diesel.annual_maintenance", d.AnnualMaintenance)
	check("diesel.annual_fuel_cost", d.AnnualFuelCost)
	check("diesel.lifecycle_cost", d.LifecycleCost)
	check("diesel.npv", d.NPV)
	check("diesel.environmental.co2_emissions_kg", d.Environmental.CO2EmissionsKg)
	check("diesel.environmental.noise_pollution", d.Environmental.NoisePollution)
	check("diesel.environmental.maintenance_waste", d.Environmental.MaintenanceWaste)

	check("summary.lifecycle_savings", c.Summary.LifecycleSavings)
	check("summary.initial_cost_difference", c.Summary.InitialCostDifference)

	return v.err()
}

func analyzePV(p EnergyProfile, a Assumptions) PVResult {
	sizing := SizePV(p, a)
	production := EstimatePVProduction(sizing.PVSizeKw, a)
	cost := CostPV(sizing, a)

	return PVResult{
		SystemCostResult: score(cost.InitialCost, cost.AnnualMaintenance, cost.LifecycleCost, a),
		PanelCost:        cost.PanelCost,
		BatteryCost:      cost.BatteryCost,
		InverterCost:     cost.InverterCost,
		Sizing:           sizing,
		Production:       production,
		Environmental:    PVImpact(production, a),
	}
}

func analyzeDiesel(p EnergyProfile, a Assumptions) DieselResult {
	sizing := SizeDiesel(p)
	consumption := EstimateDieselConsumption(p.DailyUsageKwh, a)
	cost := CostDiesel(sizing, consumption, a)

	return DieselResult{
		SystemCostResult: score(cost.InitialCost, cost.AnnualMaintenance, cost.LifecycleCost, a),
		AnnualFuelCost:   cost.AnnualFuelCost,
		Sizing:           sizing,
		Consumption:      consumption,
		Environmental:    DieselImpact(consumption, a),
	}
}

// score builds the NPV/IRR series from the initial outlay and maintenance
// only. Diesel fuel is part of the lifecycle cost but not of this series.
// Every flow in it is a cost, so the series never changes sign and the IRR
// here is always IRRUndefined ("no return"); Newton-Raphson never runs.
func score(initial, maintenance, lifecycle float64, a Assumptions) SystemCostResult {
	cf := finance.NewCostSeries(initial, maintenance, a.ProjectLifetimeYears)

	return SystemCostResult{
		InitialCost:       initial,
		AnnualMaintenance: maintenance,
		LifecycleCost:     lifecycle,
		NPV:               finance.NPV(cf, a.DiscountRate),
		IRR: finance.IRR(cf, finance.IRROptions{
			InitialGuess:  a.IRR.InitialGuess,
			Tolerance:     a.IRR.Tolerance,
			MaxIterations: a.IRR.MaxIterations,
		}),
		CashFlows: cf,
	}
}

func summarize(pv, diesel SystemCostResult) Summary {
	s := Summary{InitialCostDifference: pv.InitialCost - diesel.InitialCost}

	switch {
	case pv.LifecycleCost < diesel.LifecycleCost:
		s.LowerLifecycleCost = OptionPV
		s.LifecycleSavings = diesel.LifecycleCost - pv.LifecycleCost
	case diesel.LifecycleCost < pv.LifecycleCost:
		s.LowerLifecycleCost = OptionDiesel
		s.LifecycleSavings = pv.LifecycleCost - diesel.LifecycleCost
	default:
		s.LowerLifecycleCost = OptionEqual
	}
	return s
}
