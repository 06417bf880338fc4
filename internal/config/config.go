package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"os"
)

type Config struct {
	Logger        LoggerConfig        `mapstructure:"logger"`
	DB            DBConfig            `mapstructure:"db"`
	Session       SessionConfig       `mapstructure:"session"`
	Geocoding     GeocodingConfig     `mapstructure:"geocoding"`
	Push          PushConfig          `mapstructure:"push"`
	Storage       StorageConfig       `mapstructure:"storage"`
	Metrics       MetricsConfig       `mapstructure:"metrics"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
}

type section interface {
	validate() error
	bindEnvironmentVariables(v *viper.Viper) error
}

type namedSection struct {
	name    string
	section section
}

var configFile = "./configs/config.yaml"

func Get() (*Config, error) {

	file := configFile
	if value, ok := os.LookupEnv("CONFIG_PATH"); ok && value != "" {
		file = value
	} else if value, _ := os.LookupEnv("MODE"); value == "test" {
		file = "../../configs/config.yaml"
	}

	return loadConfig(file)
}

func loadConfig(file string) (*Config, error) {

	v := viper.New()
	v.SetConfigFile(file)
	v.AutomaticEnv()
	setDefaults(v)

	if err := bindEnvironmentVariables(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file %s: %w", file, err)
	}

	config := Config{}
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if err := config.validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.log_level", string(LevelInfo))
	v.SetDefault("logger.app_name", "jobmarket")
	v.SetDefault("logger.output_file", "./logs/app.log")
	v.SetDefault("session.profile_fetch_timeout", "10s")
	v.SetDefault("session.profile_fetch_attempts", 1)
	v.SetDefault("session.profile_fetch_retry_delay", "500ms")
	v.SetDefault("session.profile_cache_ttl", "5m")
	v.SetDefault("geocoding.base_url", "https://maps.googleapis.com/maps/api")
	v.SetDefault("geocoding.max_requests_per_second", 10)
	v.SetDefault("geocoding.country", "ca")
	v.SetDefault("metrics.port", 8080)
	v.SetDefault("notifications.retention_days", 30)
	v.SetDefault("notifications.cleanup_schedule", "0 0 * * *")
}

func (config Config) sections() []namedSection {
	return []namedSection{
		{"LoggerConfig", config.Logger},
		{"DBConfig", config.DB},
		{"SessionConfig", config.Session},
		{"GeocodingConfig", config.Geocoding},
		{"PushConfig", config.Push},
		{"StorageConfig", config.Storage},
		{"MetricsConfig", config.Metrics},
		{"NotificationsConfig", config.Notifications},
	}
}

func bindEnvironmentVariables(v *viper.Viper) error {
	var errs []error

	for _, s := range (Config{}).sections() {
		if err := s.section.bindEnvironmentVariables(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func (config Config) validate() error {
	var errs []error

	for _, s := range config.sections() {
		if err := s.section.validate(); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("multiple errors occurred: %w", errors.Join(errs...))
	}

	return nil
}

func bindEnvs(v *viper.Viper, bindings ...string) error {
	var errs []error
	for i := 0; i+1 < len(bindings); i += 2 {
		if err := v.BindEnv(bindings[i], bindings[i+1]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
