// Package cmd provides the command-line interface for modkit with
// configuration management supporting multiple sources.
//
// Configuration Loading Priority (highest to lowest):
//  1. Command-line flags (--config, --log-level)
//  2. MODKIT_CONFIG_FILE environment variable - custom config file path
//  3. Individual environment variables (MODKIT_NAVIGATION_MAX_DEPTH, etc.)
//  4. Configuration file (.modkit.yml in the current directory)
package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "modkit",
	Short: "Inter-module communication substrate for modular applications",
	Long: `Modkit wires independent application units together: a hierarchical
action dispatcher, a dependency-graph relationship resolver, a declarative
access policy engine, and a history-tracking navigation coordinator.

Quick Start:
  modkit init                     Scaffold a .modkit.yml configuration
  modkit validate                 Check the configuration for consistency
  modkit graph                    Inspect the unit graph and relationships
  modkit monitor                  Stream substrate events over WebSocket

Documentation: https://github.com/conneroisu/modkit`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	bindRootFlags(rootCmd.PersistentFlags())
}

func bindRootFlags(flags *pflag.FlagSet) {
	flags.StringVar(&cfgFile, "config", "", "config file (default is .modkit.yml, can also use MODKIT_CONFIG_FILE env var)")
	flags.StringP("log-level", "l", "info", "log level (debug, info, warn, error)")
	_ = viper.BindPFlag("log_level", flags.Lookup("log-level"))
}

// initConfig wires viper to the config file and MODKIT_ environment
// variables. A missing config file is not an error; defaults apply.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("MODKIT_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".modkit")
	}

	viper.SetEnvPrefix("MODKIT")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
