package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"breakaudit/config"
	"breakaudit/storage"
)

var historyDBPath string

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List previously processed uploads",
	Long: `List uploads recorded in the SQLite database, newest first, with their run
summary figures.`,
	Example: `
  # List all recorded uploads
  breakaudit history

  # List uploads from an explicit database
  breakaudit history --db ./breakaudit.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath := historyDBPath
		if dbPath == "" {
			cfg, err := config.LoadAndValidate()
			if err != nil {
				return err
			}
			dbPath = cfg.Storage.DBPath
		}

		store, err := storage.OpenSQLite(dbPath)
		if err != nil {
			return err
		}
		defer store.Close()

		uploads, err := store.ListAllUploads()
		if err != nil {
			return err
		}
		if len(uploads) == 0 {
			fmt.Println("No uploads recorded.")
			return nil
		}

		for _, upload := range uploads {
			status := "pending"
			if upload.Processed {
				status = "processed"
			}
			fmt.Printf("%s  %s  %s  %s\n", upload.CreatedAt.Format("2006-01-02 15:04"), upload.ID, status, upload.OriginalFilename)
			if upload.Processed {
				fmt.Printf("    Records: %d, Providers: %d, Rejected rows: %d, Date range: %s, Audit issues: %d\n",
					upload.TotalRecords,
					upload.TotalProviders,
					upload.RejectedRows,
					upload.DateRange,
					upload.AuditIssues,
				)
			}
		}

		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)

	historyCmd.Flags().StringVar(&historyDBPath, "db", "", "Path to SQLite database (default: configured storage.db)")
}
