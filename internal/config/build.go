package config

import (
	"github.com/conneroisu/modkit/internal/policy"
	"github.com/conneroisu/modkit/internal/registry"
)

// BuildRegistry populates a unit registry from the configured unit graph.
func BuildRegistry(config *Config) *registry.UnitRegistry {
	reg := registry.NewUnitRegistry()

	for _, unit := range config.Units {
		active := true
		if unit.Active != nil {
			active = *unit.Active
		}
		reg.Register(&registry.UnitInfo{
			Name:         unit.Name,
			Dependencies: unit.Dependencies,
			Active:       active,
		})
	}

	if config.Navigation.DefaultUnit != "" {
		reg.SetCurrent(config.Navigation.DefaultUnit)
	}

	return reg
}

// BuildPolicy converts a policy configuration into the engine's declarative
// form. Levels and kinds are assumed validated; unparseable values fall
// back to the strictest interpretation.
func BuildPolicy(pc *PolicyConfig, onViolation policy.ViolationFunc) *policy.Policy {
	emitLevel, _ := policy.ParseLevel(pc.EmitLevel)
	receiveLevel, _ := policy.ParseLevel(pc.ReceiveLevel)

	permissions := make(map[policy.ActionKind]bool, len(pc.Permissions))
	for _, permission := range pc.Permissions {
		if kind, ok := policy.ParseKind(permission); ok {
			permissions[kind] = true
		}
	}

	var overrides map[string]*policy.Policy
	if len(pc.Scope.Overrides) > 0 {
		overrides = make(map[string]*policy.Policy, len(pc.Scope.Overrides))
		for prefix, nested := range pc.Scope.Overrides {
			overrides[prefix] = BuildPolicy(&nested, onViolation)
		}
	}

	return &policy.Policy{
		EmitLevel:    emitLevel,
		ReceiveLevel: receiveLevel,
		Permissions:  permissions,
		Scope: policy.Scope{
			Includes:  pc.Scope.Includes,
			Excludes:  pc.Scope.Excludes,
			Overrides: overrides,
		},
		OnViolation: onViolation,
		Reason:      pc.Reason,
	}
}
