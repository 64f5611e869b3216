// Package facility reads facility descriptions and turns them into the
// canonical assessment.EnergyProfile.
package facility

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"dream-tool/internal/assessment"

	"gopkg.in/yaml.v3"
)

type Equipment struct {
	Name        string  `yaml:"name" json:"name"`
	PowerWatts  float64 `yaml:"power_watts" json:"power_watts"`
	HoursPerDay float64 `yaml:"hours_per_day" json:"hours_per_day"`
	Efficiency  float64 `yaml:"efficiency" json:"efficiency"`
	Quantity    int     `yaml:"quantity" json:"quantity"`
}

// Facility is the on-disk description of one site. DailyUsageKwh is optional;
// when absent it is derived from the equipment inventory.
type Facility struct {
	Name              string      `yaml:"name" json:"name"`
	DailyUsageKwh     *float64    `yaml:"daily_usage_kwh" json:"daily_usage_kwh,omitempty"`
	PeakSunHours      float64     `yaml:"peak_sun_hours" json:"peak_sun_hours"`
	PanelEfficiency   float64     `yaml:"panel_efficiency" json:"panel_efficiency"`
	BatteryEfficiency float64     `yaml:"battery_efficiency" json:"battery_efficiency"`
	Equipment         []Equipment `yaml:"equipment" json:"equipment"`
}

// Load reads a facility from a YAML file.
func Load(path string) (*Facility, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading facility file: %w", err)
	}

	var f Facility
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing facility YAML: %w", err)
	}

	if f.Name == "" {
		f.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return &f, nil
}

// LoadDir loads every *.yaml and *.yml file in dir, ordered by file name.
func LoadDir(dir string) ([]*Facility, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading facility directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml":
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	facilities := make([]*Facility, 0, len(paths))
	for _, p := range paths {
		f, err := Load(p)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(p), err)
		}
		facilities = append(facilities, f)
	}
	return facilities, nil
}

// Profile normalizes the facility into an EnergyProfile. Each equipment
// line's quantity multiplies its power (a missing quantity counts as one).
func (f *Facility) Profile() (assessment.EnergyProfile, error) {
	equipment := make([]assessment.Equipment, 0, len(f.Equipment))
	for i, e := range f.Equipment {
		qty := e.Quantity
		if qty == 0 {
			qty = 1
		}
		if qty < 0 {
			return assessment.EnergyProfile{}, fmt.Errorf("%w: equipment[%d].quantity = %d, expected >= 1",
				assessment.ErrInvalidProfile, i, e.Quantity)
		}
		equipment = append(equipment, assessment.Equipment{
			Name:        e.Name,
			PowerWatts:  e.PowerWatts * float64(qty),
			HoursPerDay: e.HoursPerDay,
			Efficiency:  e.Efficiency,
		})
	}

	var dailyUsage float64
	if f.DailyUsageKwh != nil {
		dailyUsage = *f.DailyUsageKwh
	} else {
		dailyUsage = assessment.EnergyProfile{Equipment: equipment}.TotalDailyEnergyKwh()
	}

	return assessment.NewEnergyProfile(equipment, dailyUsage, f.PeakSunHours, f.PanelEfficiency, f.BatteryEfficiency)
}
