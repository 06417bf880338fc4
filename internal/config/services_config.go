package config

import (
	"fmt"
	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
	"net/url"
)

type GeocodingConfig struct {
	APIKey               string  `mapstructure:"api_key"`
	BaseURL              string  `mapstructure:"base_url"`
	Country              string  `mapstructure:"country"`
	MaxRequestsPerSecond float32 `mapstructure:"max_requests_per_second"`
}

func (config GeocodingConfig) validate() error {
	if _, err := url.ParseRequestURI(config.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if config.MaxRequestsPerSecond <= 0 {
		return fmt.Errorf("max_requests_per_second must be positive")
	}
	return nil
}

func (config GeocodingConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindEnvs(v,
		"geocoding.api_key", "GEOCODING_API_KEY",
		"geocoding.base_url", "GEOCODING_BASE_URL",
	)
}

// PushConfig enables Telegram delivery when TelegramToken is set; otherwise pushes are only logged.
type PushConfig struct {
	TelegramToken string `mapstructure:"telegram_token"`
}

func (config PushConfig) validate() error {
	return nil
}

func (config PushConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("push.telegram_token", "TELEGRAM_TOKEN")
}

type StorageConfig struct {
	BaseURL string `mapstructure:"base_url"`
}

func (config StorageConfig) validate() error {
	if config.BaseURL == "" {
		return fmt.Errorf("missing variable: storage base_url")
	}
	if _, err := url.ParseRequestURI(config.BaseURL); err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	return nil
}

func (config StorageConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("storage.base_url", "STORAGE_BASE_URL")
}

type MetricsConfig struct {
	Port int `mapstructure:"port"`
}

func (config MetricsConfig) validate() error {
	if config.Port <= 0 || config.Port > 65535 {
		return fmt.Errorf("invalid metrics port: %d", config.Port)
	}
	return nil
}

func (config MetricsConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return v.BindEnv("metrics.port", "METRICS_PORT")
}

type NotificationsConfig struct {
	RetentionDays   int    `mapstructure:"retention_days"`
	CleanupSchedule string `mapstructure:"cleanup_schedule"`
}

func (config NotificationsConfig) validate() error {
	if config.RetentionDays <= 0 {
		return fmt.Errorf("retention_days must be greater than zero")
	}
	if _, err := cron.ParseStandard(config.CleanupSchedule); err != nil {
		return fmt.Errorf("invalid cleanup_schedule: %w", err)
	}
	return nil
}

func (config NotificationsConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindEnvs(v,
		"notifications.retention_days", "NOTIFICATIONS_RETENTION_DAYS",
		"notifications.cleanup_schedule", "NOTIFICATIONS_CLEANUP_SCHEDULE",
	)
}
