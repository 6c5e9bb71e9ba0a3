package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/KaramelBytes/paperstack-cli/internal/repl"
	"github.com/KaramelBytes/paperstack-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	replSession string
	replOutput  string
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive session",
	Long: `Start an interactive session: greet, give the path to a PDF, then pick a
technology stack by number or name. Pass --session to resume a conversation
kept in the configured session store.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		out := replOutput
		if out == "" {
			out, err = defaultDownloads()
			if err != nil {
				return err
			}
		}
		if err := utils.EnsureDir(out); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()

		svc, err := buildServices(ctx, c, serviceOptions{OutputDir: out, AllowedExtensions: cliExtensions})
		if err != nil {
			return err
		}
		defer svc.Close()

		store, closeStore, err := sessionStore(c)
		if err != nil {
			return err
		}
		defer closeStore()

		r := repl.New(repl.Options{
			In:        cmd.InOrStdin(),
			Out:       cmd.OutOrStdout(),
			Pipeline:  svc.pipe,
			Store:     store,
			SessionID: replSession,
			Logger:    slog.Default(),
		})
		slog.Debug("repl session", "id", r.SessionID(), "store", c.SessionStore)
		if err := r.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

// defaultDownloads is where the interactive session saves archives.
func defaultDownloads() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home: %w", err)
	}
	return filepath.Join(home, "Downloads"), nil
}

func init() {
	rootCmd.AddCommand(replCmd)
	replCmd.Flags().StringVar(&replSession, "session", "", "session ID to resume")
	replCmd.Flags().StringVarP(&replOutput, "output", "o", "", "directory for ZIP archives (default ~/Downloads)")
}
