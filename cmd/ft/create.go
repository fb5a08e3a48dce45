package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/featrack/featrack/internal/store"
	"github.com/featrack/featrack/internal/ui"
)

var createCmd = &cobra.Command{
	Use:     "create <id> <title>",
	GroupID: "features",
	Short:   "Create a new feature in the planned state",
	Args:    cobra.MinimumNArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		title := strings.Join(args[1:], " ")

		f, err := theStore.Create(rootCtx, id, title, time.Now().UTC())
		if err != nil {
			if errors.Is(err, store.ErrExists) {
				fatalError("feature %s already exists", id)
			}
			fatalError("creating %s: %v", id, err)
		}

		if jsonOutput {
			out, _ := json.MarshalIndent(f, "", "  ")
			fmt.Println(string(out))
			return
		}
		if !quietFlag {
			fmt.Printf("%s Created %s: %s [%s]\n",
				ui.RenderPass(ui.IconPass), f.ID, f.Title, ui.RenderState(f.State))
		}
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
}
