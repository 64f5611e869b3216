package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"dream-tool/internal/assessment"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "DREAM"

type Config struct {
	Assumptions assessment.Assumptions `mapstructure:"assumptions"`
	API         APIConfig              `mapstructure:"api"`
	MQTT        MQTTConfig             `mapstructure:"mqtt"`
	Database    DatabaseConfig         `mapstructure:"database"`
	Log         LogConfig              `mapstructure:"log"`
}

type APIConfig struct {
	Port    int  `mapstructure:"port"`
	Enabled bool `mapstructure:"enabled"`
}

type MQTTConfig struct {
	Enabled     bool   `mapstructure:"enabled"`
	Broker      string `mapstructure:"broker"`
	TopicPrefix string `mapstructure:"topic_prefix"`
	ClientID    string `mapstructure:"client_id"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

// Load reads configuration from configPath, or from config.yaml in the
// working directory or /etc/dream-tool when configPath is empty. A .env file
// is loaded first and DREAM_* environment variables override file values
// (assumptions.discount_rate -> DREAM_ASSUMPTIONS_DISCOUNT_RATE).
func Load(configPath string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/dream-tool")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setAssumptionDefaults(v, assessment.DefaultAssumptions())
	v.SetDefault("api.port", 8050)
	v.SetDefault("api.enabled", true)
	v.SetDefault("mqtt.enabled", false)
	v.SetDefault("mqtt.broker", "tcp://localhost:1883")
	v.SetDefault("mqtt.topic_prefix", "dream")
	v.SetDefault("mqtt.client_id", "dream-tool")
	v.SetDefault("mqtt.username", "")
	v.SetDefault("mqtt.password", "")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./dream.db")
	v.SetDefault("database.dsn", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Assumptions.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setAssumptionDefaults(v *viper.Viper, d assessment.Assumptions) {
	v.SetDefault("assumptions.system_efficiency", d.SystemEfficiency)
	v.SetDefault("assumptions.pv_oversize_margin", d.PVOversizeMargin)
	v.SetDefault("assumptions.battery_margin", d.BatteryMargin)
	v.SetDefault("assumptions.solar_hours_per_day", d.SolarHoursPerDay)
	v.SetDefault("assumptions.days_per_month", d.DaysPerMonth)

	v.SetDefault("assumptions.pv_panel_cost_per_watt", d.PVPanelCostPerWatt)
	v.SetDefault("assumptions.battery_cost_per_wh", d.BatteryCostPerWh)
	v.SetDefault("assumptions.inverter_cost_per_watt", d.InverterCostPerWatt)
	v.SetDefault("assumptions.pv_maintenance_rate", d.PVMaintenanceRate)

	v.SetDefault("assumptions.diesel_generator_cost_per_kw", d.DieselGeneratorCostPerKw)
	v.SetDefault("assumptions.diesel_maintenance_rate", d.DieselMaintenanceRate)
	v.SetDefault("assumptions.diesel_consumption_per_kwh", d.DieselConsumptionPerKwh)
	v.SetDefault("assumptions.diesel_fuel_cost_per_liter", d.DieselFuelCostPerLiter)

	v.SetDefault("assumptions.discount_rate", d.DiscountRate)
	v.SetDefault("assumptions.project_lifetime_years", d.ProjectLifetimeYears)

	v.SetDefault("assumptions.seasonal_factors.winter", d.SeasonalFactors.Winter)
	v.SetDefault("assumptions.seasonal_factors.spring", d.SeasonalFactors.Spring)
	v.SetDefault("assumptions.seasonal_factors.summer", d.SeasonalFactors.Summer)
	v.SetDefault("assumptions.seasonal_factors.fall", d.SeasonalFactors.Fall)

	v.SetDefault("assumptions.irr.initial_guess", d.IRR.InitialGuess)
	v.SetDefault("assumptions.irr.tolerance", d.IRR.Tolerance)
	v.SetDefault("assumptions.irr.max_iterations", d.IRR.MaxIterations)

	v.SetDefault("assumptions.environment.pv_co2_per_kwh", d.Environment.PVCO2PerKwh)
	v.SetDefault("assumptions.environment.pv_water_per_kwh", d.Environment.PVWaterPerKwh)
	v.SetDefault("assumptions.environment.pv_land_per_kwh", d.Environment.PVLandPerKwh)
	v.SetDefault("assumptions.environment.diesel_co2_per_liter", d.Environment.DieselCO2PerLiter)
	v.SetDefault("assumptions.environment.diesel_noise_per_kwh", d.Environment.DieselNoisePerKwh)
	v.SetDefault("assumptions.environment.diesel_waste_per_kwh", d.Environment.DieselWastePerKwh)
}
