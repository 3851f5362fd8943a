// Package cmd provides the command-line interface for Workdeck.
//
// Configuration sources, in order of precedence:
//  1. Command-line flags (--config, --log-level)
//  2. WORKDECK_CONFIG_FILE environment variable
//  3. Individual environment variables (WORKDECK_SERVER_PORT, ...)
//  4. Configuration file (.workdeck.yml)
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

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "workdeck",
	Short: "Application-shell core for a desktop workbench",
	Long: `Workdeck is the application-shell core for a desktop workbench: ordered
workspaces (documents/tabs) with a single active selection and asynchronous
close-confirmation, plus a debug console that captures application logging
into a bounded buffer with secret redaction.

Quick Start:
  workdeck run file.csv           Open workspaces for files and run the shell
  workdeck logs                   Fetch the captured console text
  workdeck config init            Write a default .workdeck.yml
  workdeck version                Print the version`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .workdeck.yml, can also use WORKDECK_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", "info", "log level (trace, debug, info, warning, error, critical)")
	_ = viper.BindPFlag("log-level", rootCmd.PersistentFlags().Lookup("log-level"))

	// Accept both dash and underscore spellings for flag names.
	rootCmd.PersistentFlags().SetNormalizeFunc(func(f *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
}

// initConfig initializes viper from flags, environment and the config
// file, with graceful degradation when the file is missing.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("WORKDECK_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".workdeck")
	}

	viper.SetEnvPrefix("WORKDECK")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
