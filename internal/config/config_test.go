package config

import (
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/modkit/internal/policy"
	"github.com/conneroisu/modkit/internal/relationship"
)

func loadYAML(t *testing.T, content string) (*Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetConfigType("yaml")
	require.NoError(t, viper.ReadConfig(strings.NewReader(content)))
	return Load()
}

const sampleConfig = `
log_level: debug
dispatch:
  separator: "."
units:
  - name: home
    dependencies: [settings, profile]
  - name: settings
  - name: profile
    dependencies: [settings]
    active: false
navigation:
  default_unit: home
  max_depth: 8
policies:
  - name: chat
    emit_level: dependencies
    receive_level: graph
    permissions: [emit, listen]
    reason: chat traffic stays close
    scope:
      includes: [chat]
      excludes: [chat.admin]
      overrides:
        chat.admin.health:
          emit_level: public
monitor:
  host: 0.0.0.0
  port: 9001
  allowed_origins: ["http://localhost:9001"]
`

func TestLoad_Sample(t *testing.T) {
	config, err := loadYAML(t, sampleConfig)
	require.NoError(t, err)

	assert.Equal(t, "debug", config.LogLevel)
	assert.Equal(t, ".", config.Dispatch.Separator)
	assert.Len(t, config.Units, 3)
	assert.Equal(t, []string{"settings", "profile"}, config.Units[0].Dependencies)
	assert.Equal(t, "home", config.Navigation.DefaultUnit)
	assert.Equal(t, 8, config.Navigation.MaxDepth)
	assert.Equal(t, 9001, config.Monitor.Port)

	require.Len(t, config.Policies, 1)
	pc := config.Policies[0]
	assert.Equal(t, "dependencies", pc.EmitLevel)
	assert.Equal(t, []string{"chat.admin"}, pc.Scope.Excludes)
	require.Contains(t, pc.Scope.Overrides, "chat.admin.health")
	// Defaults cascade into overrides
	assert.Equal(t, "public", pc.Scope.Overrides["chat.admin.health"].ReceiveLevel)
}

func TestLoad_Defaults(t *testing.T) {
	config, err := loadYAML(t, "units:\n  - name: home\n")
	require.NoError(t, err)

	assert.Equal(t, "info", config.LogLevel)
	assert.Equal(t, ".", config.Dispatch.Separator)
	assert.Equal(t, 32, config.Navigation.MaxDepth)
	assert.Equal(t, "localhost", config.Monitor.Host)
	assert.Equal(t, 8917, config.Monitor.Port)
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name:    "duplicate unit",
			content: "units:\n  - name: home\n  - name: home\n",
		},
		{
			name:    "undeclared dependency",
			content: "units:\n  - name: home\n    dependencies: [ghost]\n",
		},
		{
			name:    "unknown default unit",
			content: "units:\n  - name: home\nnavigation:\n  default_unit: ghost\n",
		},
		{
			name:    "negative max depth",
			content: "units:\n  - name: home\nnavigation:\n  max_depth: -1\n",
		},
		{
			name:    "unknown emit level",
			content: "policies:\n  - name: p\n    emit_level: cosmic\n",
		},
		{
			name:    "unknown permission",
			content: "policies:\n  - name: p\n    permissions: [teleport]\n",
		},
		{
			name:    "nameless policy",
			content: "policies:\n  - emit_level: public\n",
		},
		{
			name:    "port out of range",
			content: "units:\n  - name: home\nmonitor:\n  port: 99999\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadYAML(t, tt.content)
			assert.Error(t, err)
		})
	}
}

func TestBuildRegistry(t *testing.T) {
	config, err := loadYAML(t, sampleConfig)
	require.NoError(t, err)

	reg := BuildRegistry(config)

	assert.Equal(t, 3, reg.Count())
	assert.Equal(t, "home", reg.CurrentIdentity())
	assert.True(t, reg.IsActive("home"), "active defaults to true")
	assert.False(t, reg.IsActive("profile"), "explicit active: false is honored")
	assert.Equal(t, []string{"settings"}, reg.DependenciesOf("profile"))

	resolver := relationship.NewResolver(reg)
	assert.Equal(t, relationship.DirectDependency, resolver.Between("home", "settings"))
	assert.Equal(t, relationship.Unrelated, resolver.Between("settings", "home"))
}

func TestBuildPolicy(t *testing.T) {
	config, err := loadYAML(t, sampleConfig)
	require.NoError(t, err)

	var violations []policy.Violation
	pol := BuildPolicy(&config.Policies[0], func(v policy.Violation) {
		violations = append(violations, v)
	})

	assert.Equal(t, policy.LevelDependencies, pol.EmitLevel)
	assert.Equal(t, policy.LevelGraph, pol.ReceiveLevel)
	assert.True(t, pol.Permissions[policy.KindEmit])
	assert.False(t, pol.Permissions[policy.KindRetain])
	assert.Equal(t, "chat traffic stays close", pol.Reason)
	require.Contains(t, pol.Scope.Overrides, "chat.admin.health")
	assert.Equal(t, policy.LevelPublic, pol.Scope.Overrides["chat.admin.health"].EmitLevel)

	engine := policy.NewEngine()
	decision := engine.Authorize(policy.Request{
		Kind:         policy.KindEmit,
		Relationship: relationship.TransitivelyReachable,
		Path:         "chat.message",
	}, pol)
	assert.False(t, decision.Allowed)
	assert.Len(t, violations, 1, "config-built policies carry the violation callback")
}
