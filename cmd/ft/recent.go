package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/featrack/featrack/internal/config"
	"github.com/featrack/featrack/internal/timeparsing"
	"github.com/featrack/featrack/internal/types"
)

var recentCmd = &cobra.Command{
	Use:     "recent <state>",
	GroupID: "views",
	Short:   "List features that recently entered a state",
	Long: `List features whose history shows them entering the given state within a
lookback window. Re-entered states count from the most recent entry.

The window comes from --within (24h, 2d, 1w) or --since, which accepts
natural language ("yesterday", "last monday") as well as dates.`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		target := types.State(args[0])
		if !target.IsValid() {
			fatalError("unknown state %q (want one of %v)", args[0], types.AllStates)
		}

		withinFlag, _ := cmd.Flags().GetString("within")
		sinceFlag, _ := cmd.Flags().GetString("since")
		if withinFlag != "" && sinceFlag != "" {
			fatalError("--within and --since are mutually exclusive")
		}

		now := time.Now().UTC()
		var within time.Duration
		switch {
		case sinceFlag != "":
			since, err := timeparsing.ParseSince(sinceFlag, now)
			if err != nil {
				fatalError("%v", err)
			}
			if since.After(now) {
				fatalError("--since %q is in the future", sinceFlag)
			}
			within = now.Sub(since)
		case withinFlag != "":
			var err error
			within, err = timeparsing.ParseWindow(withinFlag)
			if err != nil {
				fatalError("%v", err)
			}
		default:
			within = config.GetDuration(config.KeyRecentWindow)
		}

		features, err := theStore.QueryRecentlyReached(rootCtx, target, within)
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
				fmt.Printf("No features entered %s in the last %s.\n", target, within)
			}
			return
		}
		printFeatureTable(features)
	},
}

func init() {
	recentCmd.Flags().String("within", "", "Lookback window (24h, 2d, 1w)")
	recentCmd.Flags().String("since", "", "Lookback start (RFC3339, date, or natural language)")
	rootCmd.AddCommand(recentCmd)
}
