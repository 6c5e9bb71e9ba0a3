package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/KaramelBytes/paperstack-cli/internal/stack"
	"github.com/spf13/cobra"
)

var techJSON bool

var technologiesCmd = &cobra.Command{
	Use:     "technologies",
	Aliases: []string{"stacks"},
	Short:   "List the supported technology stacks",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := cmd.OutOrStdout()
		if techJSON {
			type entry struct {
				Name        string   `json:"name"`
				Description string   `json:"description"`
				Aliases     []string `json:"aliases"`
			}
			var list []entry
			for _, s := range stack.All() {
				list = append(list, entry{Name: string(s.ID), Description: s.Description, Aliases: s.Aliases})
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		for i, s := range stack.All() {
			fmt.Fprintf(w, "%d. %s (%s)\n", i+1, s.ID, s.Description)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(technologiesCmd)
	technologiesCmd.Flags().BoolVar(&techJSON, "json", false, "output JSON")
}
