package config

import (
	"errors"
	"fmt"
	"github.com/spf13/viper"
	"time"
)

type SessionConfig struct {
	ProfileFetchTimeout    time.Duration `mapstructure:"profile_fetch_timeout"`
	ProfileFetchAttempts   int           `mapstructure:"profile_fetch_attempts"`
	ProfileFetchRetryDelay time.Duration `mapstructure:"profile_fetch_retry_delay"`
	ProfileCacheTTL        time.Duration `mapstructure:"profile_cache_ttl"`
}

func (config SessionConfig) validate() error {
	var errs []error

	if config.ProfileFetchTimeout <= 0 {
		errs = append(errs, fmt.Errorf("profile_fetch_timeout must be positive"))
	}
	if config.ProfileFetchAttempts < 1 || config.ProfileFetchAttempts > 5 {
		errs = append(errs, fmt.Errorf("profile_fetch_attempts must be between 1 and 5"))
	}
	if config.ProfileFetchRetryDelay < 0 {
		errs = append(errs, fmt.Errorf("profile_fetch_retry_delay must not be negative"))
	}

	return errors.Join(errs...)
}

func (config SessionConfig) bindEnvironmentVariables(v *viper.Viper) error {
	return bindEnvs(v,
		"session.profile_fetch_timeout", "PROFILE_FETCH_TIMEOUT",
		"session.profile_fetch_attempts", "PROFILE_FETCH_ATTEMPTS",
		"session.profile_fetch_retry_delay", "PROFILE_FETCH_RETRY_DELAY",
		"session.profile_cache_ttl", "PROFILE_CACHE_TTL",
	)
}
