package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/featrack/featrack/internal/ui"
)

var migrateCmd = &cobra.Command{
	Use:     "migrate",
	GroupID: "setup",
	Short:   "Migrate legacy records to the state-and-history schema",
	Long: `Run a batch migration pass over the collection. Records that only carry
legacy milestone timestamps gain an explicit state and a synthesized
transition history; already-current records are untouched, so the pass is
safe to repeat.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		count, err := theStore.Migrate(rootCtx)
		if err != nil {
			fatalError("%v", err)
		}
		if jsonOutput {
			fmt.Printf("{\"migrated\": %d}\n", count)
			return
		}
		if !quietFlag {
			if count == 0 {
				fmt.Println("Collection already current; nothing to migrate.")
			} else {
				fmt.Printf("%s Migrated %d feature(s)\n", ui.RenderPass(ui.IconPass), count)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
