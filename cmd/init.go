package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/conneroisu/modkit/internal/config"
)

var initCmd = &cobra.Command{
	Use:     "init [dir]",
	Aliases: []string{"i"},
	Short:   "Scaffold a .modkit.yml configuration",
	Long: `Initialize a modkit project by writing a starter .modkit.yml with a
small example unit graph and a commented policy. If no directory is given,
the file is written to the current directory.

Examples:
  modkit init                  # Write .modkit.yml here
  modkit init my-app           # Create my-app/ and write .modkit.yml inside
  modkit init --force          # Overwrite an existing .modkit.yml`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInit,
}

var initForce bool

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing configuration file")
}

func runInit(_ *cobra.Command, args []string) error {
	dir := "."
	if len(args) == 1 {
		dir = args[0]
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create project directory: %w", err)
		}
	}

	path := filepath.Join(dir, ".modkit.yml")
	if _, err := os.Stat(path); err == nil && !initForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}

	starter := starterConfig()
	payload, err := yaml.Marshal(starter)
	if err != nil {
		return fmt.Errorf("failed to render configuration: %w", err)
	}

	if err := os.WriteFile(path, payload, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	fmt.Printf("Created %s\n", path)
	fmt.Println("Next steps:")
	fmt.Println("  modkit validate    Check the configuration")
	fmt.Println("  modkit graph       Inspect the unit graph")
	return nil
}

// starterConfig is the scaffolded example: three units with one dependency
// chain and a policy that keeps chat traffic inside the dependency set.
func starterConfig() *config.Config {
	return &config.Config{
		LogLevel: "info",
		Dispatch: config.DispatchConfig{Separator: "."},
		Units: []config.UnitConfig{
			{Name: "home", Dependencies: []string{"settings", "profile"}},
			{Name: "settings"},
			{Name: "profile", Dependencies: []string{"settings"}},
		},
		Navigation: config.NavigationConfig{
			DefaultUnit: "home",
			MaxDepth:    32,
		},
		Policies: []config.PolicyConfig{
			{
				Name:         "chat",
				EmitLevel:    "dependencies",
				ReceiveLevel: "graph",
				Permissions:  []string{"emit", "listen"},
				Reason:       "chat traffic stays within the dependency set",
				Scope: config.ScopeConfig{
					Includes: []string{"chat"},
				},
			},
		},
		Monitor: config.MonitorConfig{
			Host: "localhost",
			Port: 8917,
		},
	}
}
