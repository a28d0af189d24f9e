package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/modkit/internal/config"
)

var validateCmd = &cobra.Command{
	Use:     "validate",
	Aliases: []string{"v"},
	Short:   "Validate the modkit configuration",
	Long: `Load the configuration and check it for consistency: unit names
must be unique, dependency edges must point at declared units, the default
navigation unit must exist, and policy levels and permissions must parse.

Exits non-zero when the configuration is invalid.`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("configuration invalid: %w", err)
	}

	fmt.Printf("Configuration valid: %d units, %d policies\n",
		len(cfg.Units), len(cfg.Policies))
	return nil
}
