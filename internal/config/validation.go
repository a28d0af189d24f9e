package config

import (
	"fmt"

	"github.com/conneroisu/modkit/internal/errors"
	"github.com/conneroisu/modkit/internal/policy"
)

// Validate checks the configuration for consistency: units must be unique,
// dependency edges must point at declared units, the navigation default
// must exist, and policy levels and permissions must parse.
func Validate(config *Config) error {
	units := make(map[string]bool, len(config.Units))
	for _, unit := range config.Units {
		if unit.Name == "" {
			return errors.NewConfigError("unit with empty name", nil)
		}
		if units[unit.Name] {
			return errors.NewConfigError(fmt.Sprintf("duplicate unit %q", unit.Name), nil)
		}
		units[unit.Name] = true
	}

	for _, unit := range config.Units {
		for _, dep := range unit.Dependencies {
			if !units[dep] {
				return errors.NewConfigError(
					fmt.Sprintf("unit %q depends on undeclared unit %q", unit.Name, dep), nil)
			}
		}
	}

	if config.Navigation.DefaultUnit != "" && !units[config.Navigation.DefaultUnit] {
		return errors.NewConfigError(
			fmt.Sprintf("navigation default_unit %q is not a declared unit", config.Navigation.DefaultUnit), nil)
	}
	if config.Navigation.MaxDepth < 1 {
		return errors.NewConfigError("navigation max_depth must be at least 1", nil)
	}

	if config.Monitor.Port < 1 || config.Monitor.Port > 65535 {
		return errors.NewConfigError(
			fmt.Sprintf("monitor port %d is out of range", config.Monitor.Port), nil)
	}

	for i := range config.Policies {
		if err := validatePolicy(&config.Policies[i]); err != nil {
			return err
		}
	}

	return nil
}

func validatePolicy(pc *PolicyConfig) error {
	if pc.Name == "" {
		return errors.NewConfigError("policy with empty name", nil)
	}

	if _, ok := policy.ParseLevel(pc.EmitLevel); !ok {
		return errors.NewConfigError(
			fmt.Sprintf("policy %q: unknown emit_level %q", pc.Name, pc.EmitLevel), nil)
	}
	if _, ok := policy.ParseLevel(pc.ReceiveLevel); !ok {
		return errors.NewConfigError(
			fmt.Sprintf("policy %q: unknown receive_level %q", pc.Name, pc.ReceiveLevel), nil)
	}

	for _, permission := range pc.Permissions {
		if _, ok := policy.ParseKind(permission); !ok {
			return errors.NewConfigError(
				fmt.Sprintf("policy %q: unknown permission %q", pc.Name, permission), nil)
		}
	}

	for prefix, nested := range pc.Scope.Overrides {
		if nested.Name == "" {
			nested.Name = pc.Name + "/" + prefix
		}
		if err := validatePolicy(&nested); err != nil {
			return err
		}
	}

	return nil
}
