package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"breakaudit/config"
	"breakaudit/importer"
	"breakaudit/process"
	"breakaudit/report"
	"breakaudit/timesheet"
)

var (
	processInputs       []string
	processFormat       string
	processOutputDir    string
	processOutputFormat string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process timesheet exports and write break compliance reports",
	Long: `Read one or more timesheet export files, evaluate each provider's daily break
compliance against the configured entitlement tiers, audit entries for data
quality issues, and write four report views:

- daily: one row per provider per day
- summary: one rollup row per provider
- provider-date: per-provider-per-day breakdown
- audit: every flagged data quality finding

When --format is omitted, format is inferred from each input file extension.`,
	Example: `
  # Process one CSV export
  breakaudit process -i march_timesheets.csv

  # Process several files as one run
  breakaudit process -i week1.xlsx -i week2.xlsx

  # Write Excel reports to a custom directory
  breakaudit process -i march_timesheets.csv --output-dir ./reports --output-format excel
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}

		markers := timesheet.Markers{
			Break: cfg.Rules.BreakMarkers,
			Lunch: cfg.Rules.LunchMarkers,
		}
		input, err := importer.Run(processInputs, processFormat, markers)
		if err != nil {
			return err
		}

		result, err := process.Run(input, *cfg)
		if err != nil {
			return err
		}

		if err := os.MkdirAll(processOutputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		ext := ".csv"
		if strings.EqualFold(processOutputFormat, "excel") || strings.EqualFold(processOutputFormat, "xlsx") {
			ext = ".xlsx"
		}
		for _, table := range result.Tables() {
			path := filepath.Join(processOutputDir, "breakaudit-"+table.Name+ext)
			if err := report.Write(path, processOutputFormat, table); err != nil {
				return err
			}
			fmt.Printf("Wrote %s view: %s\n", table.Name, path)
		}

		fmt.Printf("Processing completed. Records: %d, Providers: %d, Rejected rows: %d, Date range: %s, Audit issues: %d\n",
			result.Summary.TotalRecords,
			result.Summary.TotalProviders,
			result.Summary.RejectedRows,
			result.Summary.DateRange,
			result.Summary.AuditIssueCount,
		)

		return nil
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringArrayVarP(&processInputs, "input", "i", nil, "Input file path (repeatable)")
	processCmd.Flags().StringVarP(&processFormat, "format", "f", "", "Input format: csv|excel (optional, inferred from extension when omitted)")
	processCmd.Flags().StringVar(&processOutputDir, "output-dir", "./output", "Directory for generated report files")
	processCmd.Flags().StringVar(&processOutputFormat, "output-format", "csv", "Report output format: csv|excel")

	_ = processCmd.MarkFlagRequired("input")
}
