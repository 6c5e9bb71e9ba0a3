package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/KaramelBytes/paperstack-cli/internal/history"
	"github.com/KaramelBytes/paperstack-cli/internal/utils"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded generations",
	Long:  "List recorded generations, newest first. Requires history_db to be set.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := currentConfig()
		if err != nil {
			return err
		}
		if c.HistoryDB == "" {
			return errors.New("history is not configured (set history_db)")
		}
		store, err := history.Open(expandHome(c.HistoryDB))
		if err != nil {
			return err
		}
		defer store.Close()

		recs, err := store.List(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		if historyJSON {
			if recs == nil {
				recs = []history.Record{}
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(recs)
		}
		if len(recs) == 0 {
			fmt.Fprintln(w, "No generations recorded")
			return nil
		}
		for _, r := range recs {
			fmt.Fprintf(w, "- %s  %-20s %s (%d files, %s)\n",
				r.CreatedAt.Local().Format(time.DateTime), r.Technology, r.ArchiveName, r.FileCount, utils.HumanSize(r.ArchiveSize))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum entries to show (0 for all)")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output JSON")
}
