package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"breakaudit/config"
	"breakaudit/storage"
	"breakaudit/web"
)

var (
	serveHost   string
	servePort   int
	serveDBPath string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the timesheet upload web UI",
	Long: `Start a local HTTP server with account registration, timesheet upload and
processing, run history, and report downloads.

Uploaded files and generated reports are stored under the configured storage
directories; run metadata is kept in the SQLite database.`,
	Example: `
  # Start the server with configured host/port
  breakaudit serve

  # Start on a custom port with an explicit database
  breakaudit serve --port 9090 --db ./breakaudit.db
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadAndValidate()
		if err != nil {
			return err
		}
		if serveHost != "" {
			cfg.Server.Host = serveHost
		}
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if serveDBPath != "" {
			cfg.Storage.DBPath = serveDBPath
		}

		logger, err := zap.NewProduction()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
		defer logger.Sync()

		if err := os.MkdirAll(cfg.Storage.UploadDir, 0o755); err != nil {
			return fmt.Errorf("create upload dir: %w", err)
		}
		if err := os.MkdirAll(cfg.Storage.OutputDir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}

		store, err := storage.OpenSQLite(cfg.Storage.DBPath)
		if err != nil {
			return err
		}
		defer store.Close()

		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		server := &http.Server{
			Addr:    addr,
			Handler: web.NewServer(store, *cfg, logger),
		}

		errCh := make(chan error, 1)
		go func() {
			errCh <- server.ListenAndServe()
		}()

		logger.Info("listening", zap.String("addr", addr))

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
		defer signal.Stop(sigCh)

		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-sigCh:
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := server.Shutdown(ctx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			err := <-errCh
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Override configured listen host")
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Override configured HTTP port")
	serveCmd.Flags().StringVar(&serveDBPath, "db", "", "Override configured SQLite database path")
}
