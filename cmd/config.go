package cmd

import "github.com/spf13/cobra"

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage breakaudit configuration file values.",
	Long: `Create and display the breakaudit configuration file.

The configuration stores server, storage, and rule values:
- server.host / server.port / server.session_timeout_hours
- storage.db / storage.upload_dir / storage.output_dir
- rules.break_tiers / rules.break_markers / rules.lunch_markers
- audit thresholds`,
	Example: `
  # Create default config in $HOME/.breakaudit.yaml
  breakaudit config create

  # Show active config and source file
  breakaudit config show
`,
}

func init() {
	rootCmd.AddCommand(configCmd)
}
