package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"breakaudit/config"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "breakaudit",
	Short: "Check provider timesheets for break compliance and data quality issues.",
	Long: `
**********************************************
*              BREAK AUDIT                   *
**********************************************

This CLI reads provider timesheet exports (Excel, CSV), checks each provider's
daily work hours against table-driven break entitlement rules, audits the raw
entries for data quality problems, and writes four report views plus a run
summary.

Supported input formats:
- Excel: .xlsx
- CSV: .csv
`,
	Example: `
  # Create configuration file
  breakaudit config create

  # Process one timesheet export
  breakaudit process -i march_timesheets.csv

  # Process several files as one run, Excel output
  breakaudit process -i week1.xlsx -i week2.xlsx --output-format excel

  # Start the upload web UI
  breakaudit serve

  # List previously processed uploads
  breakaudit history
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	config.SetDefaults()

	rootCmd.PersistentFlags().StringVar(&cfgFile, "configFile", "", "Config file override (default discovery: $HOME/.breakaudit.yaml, then ./.breakaudit.yaml)")

	rootCmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if !requiresConfig(cmd) {
			return nil
		}

		_, err := config.LoadAndValidate()
		return err
	}
}

func requiresConfig(cmd *cobra.Command) bool {
	if cmd == nil {
		return false
	}
	switch cmd.Name() {
	case "process", "serve":
		return true
	default:
		return false
	}
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".breakaudit" (without extension).
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".breakaudit")
	}

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in. Defaults cover the common case.
	if err := viper.ReadInConfig(); err != nil {
		fmt.Fprintln(os.Stderr, "No config file found, using defaults. Create one with: breakaudit config create")
	}
}
