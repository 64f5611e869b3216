package assessment

import (
	"fmt"
)

// Equipment is one load in the facility inventory.
type Equipment struct {
	Name        string  `json:"name,omitempty"`
	PowerWatts  float64 `json:"power_watts"`
	HoursPerDay float64 `json:"hours_per_day"`
	Efficiency  float64 `json:"efficiency"`
}

// DailyEnergyWh is the effective daily energy of the load:
// power × hours × efficiency.
func (e Equipment) DailyEnergyWh() float64 {
	return e.PowerWatts * e.HoursPerDay * e.Efficiency
}

// EnergyProfile is the canonical engine input. Build it with NewEnergyProfile
// so the validation rules hold; the engine never mutates it.
type EnergyProfile struct {
	Equipment         []Equipment `json:"equipment"`
	DailyUsageKwh     float64     `json:"daily_usage_kwh"`
	PeakSunHours      float64     `json:"peak_sun_hours"`
	PanelEfficiency   float64     `json:"panel_efficiency"`
	BatteryEfficiency float64     `json:"battery_efficiency"`
}

// NewEnergyProfile copies the equipment list and validates every field.
func NewEnergyProfile(equipment []Equipment, dailyUsageKwh, peakSunHours, panelEfficiency, batteryEfficiency float64) (EnergyProfile, error) {
	p := EnergyProfile{
		Equipment:         append([]Equipment(nil), equipment...),
		DailyUsageKwh:     dailyUsageKwh,
		PeakSunHours:      peakSunHours,
		PanelEfficiency:   panelEfficiency,
		BatteryEfficiency: batteryEfficiency,
	}
	if err := p.Validate(); err != nil {
		return EnergyProfile{}, err
	}
	return p, nil
}

func (p EnergyProfile) Validate() error {
	v := newValidator(ErrInvalidProfile)

	v.check(positive(p.PeakSunHours), "peak_sun_hours", p.PeakSunHours, "> 0")
	v.check(inOpenUnit(p.PanelEfficiency), "panel_efficiency", p.PanelEfficiency, "in (0, 1]")
	v.check(inOpenUnit(p.BatteryEfficiency), "battery_efficiency", p.BatteryEfficiency, "in (0, 1]")
	v.check(nonNegative(p.DailyUsageKwh), "daily_usage_kwh", p.DailyUsageKwh, ">= 0")

	for i, e := range p.Equipment {
		prefix := fmt.Sprintf("equipment[%d]", i)
		v.check(nonNegative(e.PowerWatts), prefix+".power_watts", e.PowerWatts, ">= 0")
		v.check(nonNegative(e.HoursPerDay), prefix+".hours_per_day", e.HoursPerDay, ">= 0")
		v.check(inOpenUnit(e.Efficiency), prefix+".efficiency", e.Efficiency, "in (0, 1]")
	}

	return v.err()
}

// TotalDailyEnergyWh sums the effective daily energy of every load.
func (p EnergyProfile) TotalDailyEnergyWh() float64 {
	var total float64
	for _, e := range p.Equipment {
		total += e.DailyEnergyWh()
	}
	return total
}

// TotalDailyEnergyKwh is TotalDailyEnergyWh in kWh.
func (p EnergyProfile) TotalDailyEnergyKwh() float64 {
	return p.TotalDailyEnergyWh() / 1000
}
