// Package config provides centralized management for application settings, defaults, and the Viper-based configuration engine.
package config

import (
	"fmt"
	"strings"

	"github.com/samber/lo"
	"github.com/scrubdeck/scrubdeck/constant"
	"github.com/scrubdeck/scrubdeck/filesystem"
	"github.com/scrubdeck/scrubdeck/key"
	"github.com/scrubdeck/scrubdeck/where"
	"github.com/spf13/viper"
)

// EnvKeyReplacer is a strings.Replacer used to normalize configuration keys into environment variable naming conventions.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Setup initializes the global configuration state, including defaults, environment bindings, and localized file resolution.
func Setup() error {
	viper.SetConfigName(constant.Scrubdeck)
	viper.SetConfigType("toml")
	viper.SetFs(filesystem.API())
	viper.AddConfigPath(where.Config())

	viper.SetEnvPrefix(constant.Scrubdeck)
	viper.SetEnvKeyReplacer(EnvKeyReplacer)
	for _, env := range EnvExposed {
		viper.MustBindEnv(env)
	}

	viper.SetTypeByDefaultValue(true)
	for name, field := range Default {
		viper.SetDefault(name, field.Value)
	}

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
	}

	return Validate()
}

// Validate checks enumerated settings against their accepted values.
func Validate() error {
	enums := map[string][]string{
		key.SeekFailurePolicy: FailurePolicies,
		key.ResumeBackend:     ResumeBackends,
	}

	for k, allowed := range enums {
		value := viper.GetString(k)
		if !lo.Contains(allowed, value) {
			return fmt.Errorf("invalid value %q for %s, expected one of: %s", value, k, strings.Join(allowed, ", "))
		}
	}

	if viper.GetFloat64(key.ScrubSensitivity) <= 0 {
		return fmt.Errorf("%s must be positive", key.ScrubSensitivity)
	}

	if viper.GetFloat64(key.ScrubVerticalScale) <= 0 {
		return fmt.Errorf("%s must be positive", key.ScrubVerticalScale)
	}

	return nil
}
