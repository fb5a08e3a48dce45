package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/featrack/featrack/internal/store"
	"github.com/featrack/featrack/internal/types"
	"github.com/featrack/featrack/internal/ui"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	GroupID: "views",
	Short:   "Show a feature with its full transition history",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		f, err := theStore.Get(rootCtx, args[0])
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				fatalError("feature %s not found", args[0])
			}
			fatalError("%v", err)
		}

		if jsonOutput {
			out, _ := json.MarshalIndent(f, "", "  ")
			fmt.Println(string(out))
			return
		}

		fmt.Printf("%s: %s [%s]\n", f.ID, f.Title, ui.RenderState(f.State))
		fmt.Printf("Created: %s\n", f.CreatedAt.Format(time.RFC3339))
		fmt.Println("History:")
		for _, rec := range f.StateHistory {
			line := fmt.Sprintf("  %s  %-14s %s", rec.Timestamp.Format(time.RFC3339), rec.State, rec.TriggeredBy)
			if rec.Notes != "" {
				line += "  " + ui.RenderMuted(rec.Notes)
			}
			fmt.Println(line)
		}
		if !f.State.IsTerminal() {
			fmt.Printf("Next: %v\n", types.AllowedDestinations(f.State))
		}
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
