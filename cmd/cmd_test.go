package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/modkit/internal/config"
)

func loadFile(t *testing.T, path string) (*config.Config, error) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	viper.SetConfigFile(path)
	require.NoError(t, viper.ReadInConfig())
	return config.Load()
}

func TestStarterConfig_IsValid(t *testing.T) {
	starter := starterConfig()
	config.ApplyDefaults(starter)
	require.NoError(t, config.Validate(starter))
}

func TestStarterConfig_RoundTripsThroughViper(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".modkit.yml")

	payload, err := yaml.Marshal(starterConfig())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, payload, 0644))

	cfg, err := loadFile(t, path)
	require.NoError(t, err)

	assert.Equal(t, "home", cfg.Navigation.DefaultUnit)
	assert.Len(t, cfg.Units, 3)
	require.Len(t, cfg.Policies, 1)
	assert.Equal(t, "dependencies", cfg.Policies[0].EmitLevel)
}

func TestBuildGraphReport(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".modkit.yml")

	payload, err := yaml.Marshal(starterConfig())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, payload, 0644))

	cfg, err := loadFile(t, path)
	require.NoError(t, err)

	report := buildGraphReport(cfg)

	assert.Len(t, report.Units, 3)
	assert.Equal(t, "direct_dependency", report.Relationships["home -> settings"])
	assert.Equal(t, "unrelated", report.Relationships["settings -> home"])
	assert.Empty(t, report.Cycles)
}

func TestFindCycles(t *testing.T) {
	cfg := &config.Config{
		Units: []config.UnitConfig{
			{Name: "a", Dependencies: []string{"b"}},
			{Name: "b", Dependencies: []string{"c"}},
			{Name: "c", Dependencies: []string{"a"}},
			{Name: "standalone"},
		},
	}

	cycles := findCycles(cfg)
	require.Len(t, cycles, 1)
	assert.Len(t, cycles[0], 3)
	assert.Contains(t, cycles[0], "a")
	assert.Contains(t, cycles[0], "b")
	assert.Contains(t, cycles[0], "c")
}

func TestFindCycles_SelfLoop(t *testing.T) {
	cfg := &config.Config{
		Units: []config.UnitConfig{
			{Name: "a", Dependencies: []string{"a"}},
		},
	}

	cycles := findCycles(cfg)
	require.Len(t, cycles, 1)
	assert.Equal(t, []string{"a"}, cycles[0])
}

func TestRunInit_ScaffoldsConfig(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "my-app")

	initForce = false
	require.NoError(t, runInit(nil, []string{target}))

	path := filepath.Join(target, ".modkit.yml")
	payload, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg config.Config
	require.NoError(t, yaml.Unmarshal(payload, &cfg))
	assert.Equal(t, "home", cfg.Navigation.DefaultUnit)

	// Second run without --force refuses to overwrite
	err = runInit(nil, []string{target})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	initForce = true
	t.Cleanup(func() { initForce = false })
	require.NoError(t, runInit(nil, []string{target}))
}

func TestCommandsRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	for _, want := range []string{"init", "graph", "validate", "monitor", "version"} {
		assert.True(t, names[want], "expected subcommand %q", want)
	}
}
