// Package config provides configuration management for modkit applications
// using Viper for flexible configuration loading from files, environment
// variables, and command-line flags.
//
// The configuration system supports YAML files, environment variable
// overrides with MODKIT_ prefix, and validation. It declares the unit
// dependency graph, per-prefix access policies, navigation limits, and the
// event monitor server settings.
package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	LogLevel   string           `yaml:"log_level" mapstructure:"log_level"`
	Dispatch   DispatchConfig   `yaml:"dispatch" mapstructure:"dispatch"`
	Units      []UnitConfig     `yaml:"units" mapstructure:"units"`
	Navigation NavigationConfig `yaml:"navigation" mapstructure:"navigation"`
	Policies   []PolicyConfig   `yaml:"policies" mapstructure:"policies"`
	Monitor    MonitorConfig    `yaml:"monitor" mapstructure:"monitor"`
}

type DispatchConfig struct {
	Separator string `yaml:"separator" mapstructure:"separator"`
}

type UnitConfig struct {
	Name         string   `yaml:"name" mapstructure:"name"`
	Dependencies []string `yaml:"dependencies,omitempty" mapstructure:"dependencies"`
	Active       *bool    `yaml:"active,omitempty" mapstructure:"active"`
}

type NavigationConfig struct {
	DefaultUnit string `yaml:"default_unit" mapstructure:"default_unit"`
	MaxDepth    int    `yaml:"max_depth" mapstructure:"max_depth"`
}

type PolicyConfig struct {
	Name         string      `yaml:"name" mapstructure:"name"`
	EmitLevel    string      `yaml:"emit_level" mapstructure:"emit_level"`
	ReceiveLevel string      `yaml:"receive_level" mapstructure:"receive_level"`
	Permissions  []string    `yaml:"permissions,omitempty" mapstructure:"permissions"`
	Reason       string      `yaml:"reason,omitempty" mapstructure:"reason"`
	Scope        ScopeConfig `yaml:"scope,omitempty" mapstructure:"scope"`
}

type ScopeConfig struct {
	Includes  []string                `yaml:"includes,omitempty" mapstructure:"includes"`
	Excludes  []string                `yaml:"excludes,omitempty" mapstructure:"excludes"`
	Overrides map[string]PolicyConfig `yaml:"overrides,omitempty" mapstructure:"overrides"`
}

type MonitorConfig struct {
	Host           string   `yaml:"host" mapstructure:"host"`
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty" mapstructure:"allowed_origins"`
}

// Load builds a Config from the already-initialized viper instance and
// applies defaults and validation.
func Load() (*Config, error) {
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	ApplyDefaults(&config)

	if err := Validate(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// ApplyDefaults fills in defaults for unset values.
func ApplyDefaults(config *Config) {
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.Dispatch.Separator == "" {
		config.Dispatch.Separator = "."
	}
	if config.Navigation.MaxDepth == 0 {
		config.Navigation.MaxDepth = 32
	}
	if config.Monitor.Host == "" {
		config.Monitor.Host = "localhost"
	}
	if config.Monitor.Port == 0 {
		config.Monitor.Port = 8917
	}

	for i := range config.Policies {
		applyPolicyDefaults(&config.Policies[i])
	}
}

func applyPolicyDefaults(pc *PolicyConfig) {
	if pc.EmitLevel == "" {
		pc.EmitLevel = "public"
	}
	if pc.ReceiveLevel == "" {
		pc.ReceiveLevel = "public"
	}
	if len(pc.Permissions) == 0 {
		pc.Permissions = []string{"emit", "listen", "retain", "clearRetained", "createChannels"}
	}

	for prefix, nested := range pc.Scope.Overrides {
		applyPolicyDefaults(&nested)
		pc.Scope.Overrides[prefix] = nested
	}
}
