package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/KaramelBytes/paperstack-cli/internal/runner"
	"github.com/KaramelBytes/paperstack-cli/internal/server"
	"github.com/KaramelBytes/paperstack-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	serveAddr    string
	serveUploads string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the upload and download HTTP API",
	Example: `  paperstack serve
  paperstack serve --addr :9000 --uploads /var/lib/paperstack`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		uploads := expandHome(c.UploadsDir)
		if serveUploads != "" {
			uploads = serveUploads
		}
		if err := utils.EnsureDir(uploads); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		svc, err := buildServices(ctx, c, serviceOptions{OutputDir: uploads, WithMetrics: true})
		if err != nil {
			return err
		}
		defer svc.Close()

		opts := server.Options{
			Pipeline:       svc.pipe,
			MaxUploadBytes: c.MaxUploadBytes(),
			Metrics:        svc.metrics,
			Logger:         slog.Default(),
		}
		if svc.history != nil {
			opts.History = svc.history
		}
		if c.RunEnabled {
			sup := runner.NewSupervisor(time.Duration(c.RunTimeoutSec)*time.Second, slog.Default())
			sup.SetRetention(time.Duration(c.RunRetentionSec)*time.Second, true)
			opts.Runner = sup
		}
		srv := server.New(opts)
		defer srv.Close()

		fmt.Fprintf(cmd.OutOrStdout(), "✓ Serving on %s (archives in %s)\n", addr, uploads)
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	serveCmd.Flags().StringVar(&serveUploads, "uploads", "", "archive directory (default from config)")
}
