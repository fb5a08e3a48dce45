package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/featrack/featrack/internal/types"
	"github.com/featrack/featrack/internal/ui"
)

var archiveCmd = &cobra.Command{
	Use:     "archive <id>",
	GroupID: "features",
	Short:   "Archive a feature (terminal; cannot be undone)",
	Long: `Move a feature to the archived state. Archived is reachable from every
non-terminal state but has no outgoing transitions: once archived, the
record is frozen for audit purposes.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		notes, _ := cmd.Flags().GetString("notes")

		f, err := requestTransition(id, types.StateArchived, types.TriggerManual, notes)
		if err != nil {
			reportTransitionError(id, err)
		}

		runTransitionHooks(f)

		if jsonOutput {
			out, _ := json.MarshalIndent(f, "", "  ")
			fmt.Println(string(out))
			return
		}
		if !quietFlag {
			fmt.Printf("%s Archived %s: %s\n", ui.RenderPass(ui.IconPass), f.ID, f.Title)
		}
	},
}

func init() {
	archiveCmd.Flags().StringP("notes", "m", "", "Free-text rationale recorded on the transition")
	rootCmd.AddCommand(archiveCmd)
}
