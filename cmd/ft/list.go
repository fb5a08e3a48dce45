package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/featrack/featrack/internal/types"
	"github.com/featrack/featrack/internal/ui"
)

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "views",
	Short:   "List features, optionally filtered by state",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		stateFlag, _ := cmd.Flags().GetString("state")

		var features []*types.Feature
		var err error
		if stateFlag != "" {
			state := types.State(stateFlag)
			if !state.IsValid() {
				fatalError("unknown state %q (want one of %v)", stateFlag, types.AllStates)
			}
			features, err = theStore.QueryByState(rootCtx, state)
		} else {
			features, err = theStore.Load(rootCtx)
		}
		if err != nil {
			fatalError("%v", err)
		}

		if jsonOutput {
			out, _ := json.MarshalIndent(features, "", "  ")
			fmt.Println(string(out))
			return
		}

		if len(features) == 0 {
			if !quietFlag {
				fmt.Println("No features found.")
			}
			return
		}
		printFeatureTable(features)
	},
}

func printFeatureTable(features []*types.Feature) {
	for _, f := range features {
		last := f.LastTransition()
		fmt.Printf("%-12s %-14s %s %s\n",
			f.ID,
			ui.RenderState(f.State),
			f.Title,
			ui.RenderMuted(last.Timestamp.Format(time.RFC3339)))
	}
}

func init() {
	listCmd.Flags().StringP("state", "s", "", "Only show features in this state")
	rootCmd.AddCommand(listCmd)
}
