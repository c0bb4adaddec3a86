package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/seekwell/seekwell/errors"
)

var globalConfig *Config
var viperInstance *viper.Viper

// Load reads the seekwell configuration using Viper.
// Results are cached; call Reset to force a reload.
func Load() (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	v := initViper()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	globalConfig = &config
	return globalConfig, nil
}

// LoadFromFile loads configuration from a specific file path
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")

	BindSensitiveEnvVars(v)
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config from %s", configPath)
	}

	return &config, nil
}

// Reset clears the cached configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viperInstance = nil
}

// initViper initializes Viper with configuration sources and defaults
func initViper() *viper.Viper {
	if viperInstance != nil {
		return viperInstance
	}

	v := viper.New()

	// Environment variable binding: SEEKWELL_SCRAPE_PAGE_COUNT etc.
	v.SetEnvPrefix("SEEKWELL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	BindSensitiveEnvVars(v)
	SetDefaults(v)

	// Optional config file in the working directory
	v.SetConfigName("seekwell")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	// Config file is optional; defaults plus env vars apply when absent
	_ = v.ReadInConfig()

	viperInstance = v
	return v
}
