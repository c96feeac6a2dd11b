package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turtacn/ecowarn/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/ecowarn/pkg/errors"
)

// envPrefix is the environment variable prefix used by all settings.
const envPrefix = "ECOWARN"

// newViper builds a Viper instance with YAML file type, the ECOWARN_ env
// prefix and a "." → "_" key replacer, so "cache.results.ttl" resolves to
// ECOWARN_CACHE_RESULTS_TTL.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerKeys(v)
	return v
}

// Load reads the YAML file at configPath, merges ECOWARN_* environment
// overrides, applies defaults and validates the result.  An empty path
// loads from the environment only.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to read config file").WithDetail(configPath)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from ECOWARN_* environment variables and
// defaults, with no config file.
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to unmarshal configuration")
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Watch invokes onChange with the re-parsed Config whenever configPath is
// modified.  Only the log level is safe to apply at runtime; callers decide.
// An edit that fails to parse or validate is logged and skipped.
func Watch(configPath string, log logging.Logger, onChange func(*Config)) {
	if log == nil {
		log = logging.NewNopLogger()
	}
	v := newViper()
	v.SetConfigFile(configPath)
	_ = v.ReadInConfig()

	v.OnConfigChange(func(ev fsnotify.Event) {
		if err := v.ReadInConfig(); err != nil {
			log.Warn("config reload failed", logging.String("path", ev.Name), logging.Err(err))
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			log.Warn("config reload rejected", logging.String("path", ev.Name), logging.Err(err))
			return
		}
		log.Info("config reloaded", logging.String("path", ev.Name))
		onChange(cfg)
	})
	v.WatchConfig()
}

// MustLoad is Load that panics on error.  For main() only.
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic("config: " + err.Error())
	}
	return cfg
}

//Personal.AI order the ending
