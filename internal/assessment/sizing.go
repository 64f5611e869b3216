package assessment

import "math"

const hoursPerDay = 24

type PVSizing struct {
	TotalDailyEnergyWh float64 `json:"total_daily_energy_wh"`
	DailyPeakPowerW    float64 `json:"daily_peak_power_w"`
	RawPVSizeKw        float64 `json:"raw_pv_size_kw"`
	PVSizeKw           float64 `json:"pv_size_kw"`
	BatteryCapacityWh  float64 `json:"battery_capacity_wh"`
}

type DieselSizing struct {
	GeneratorSizeKw float64 `json:"generator_size_kw"`
}

// SizePV derates the panel output by the system efficiency, applies the
// oversize margin and rounds up to a whole kW. The battery covers one day
// of autonomy plus the battery margin.
func SizePV(p EnergyProfile, a Assumptions) PVSizing {
	total := p.TotalDailyEnergyWh()
	peak := total / p.PeakSunHours
	raw := peak / (p.PanelEfficiency * a.SystemEfficiency) / 1000

	return PVSizing{
		TotalDailyEnergyWh: total,
		DailyPeakPowerW:    peak,
		RawPVSizeKw:        raw,
		PVSizeKw:           math.Ceil(raw * (1 + a.PVOversizeMargin)),
		BatteryCapacityWh:  (total / p.BatteryEfficiency) * (1 + a.BatteryMargin),
	}
}

// SizeDiesel sizes the generator for the average load over the day, not for
// peak demand.
func SizeDiesel(p EnergyProfile) DieselSizing {
	return DieselSizing{GeneratorSizeKw: p.DailyUsageKwh / hoursPerDay}
}
