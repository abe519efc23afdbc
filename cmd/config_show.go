package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"breakaudit/config"
)

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show active configuration values.",
	Long: `Display the currently loaded configuration and the resolved config file path.

This command validates the configuration before printing values.`,
	Example: `
  # Show active configuration
  breakaudit config show
`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			fmt.Println("Invalid config:", err)
			return
		}

		if configPath := viper.ConfigFileUsed(); configPath != "" {
			fmt.Println("Config file loaded from:", configPath)
		} else {
			fmt.Println("No config file loaded, showing defaults.")
		}

		fmt.Println("Configuration:")
		fmt.Printf("server.host: %s\n", cfg.Server.Host)
		fmt.Printf("server.port: %d\n", cfg.Server.Port)
		fmt.Printf("server.session_timeout_hours: %d\n", cfg.Server.SessionTimeoutHours)
		fmt.Printf("storage.db: %s\n", cfg.Storage.DBPath)
		fmt.Printf("storage.upload_dir: %s\n", cfg.Storage.UploadDir)
		fmt.Printf("storage.output_dir: %s\n", cfg.Storage.OutputDir)
		fmt.Printf("rules.break_markers: %v\n", cfg.Rules.BreakMarkers)
		fmt.Printf("rules.lunch_markers: %v\n", cfg.Rules.LunchMarkers)
		for i, tier := range cfg.Rules.BreakTiers {
			fmt.Printf("rules.break_tiers[%d]: >= %.2f hours -> %d minutes\n", i, tier.MinHours, tier.BreakMinutes)
		}
		fmt.Printf("audit.duration_tolerance_minutes: %d\n", cfg.Audit.DurationToleranceMinutes)
		fmt.Printf("audit.shift_gap_minutes: %d\n", cfg.Audit.ShiftGapMinutes)
		fmt.Printf("audit.deficit_high_minutes: %d\n", cfg.Audit.DeficitHighMinutes)
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
}
