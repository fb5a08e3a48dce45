package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/spf13/cobra"

	"github.com/featrack/featrack/internal/config"
	"github.com/featrack/featrack/internal/hooks"
	"github.com/featrack/featrack/internal/store"
	"github.com/featrack/featrack/internal/types"
	"github.com/featrack/featrack/internal/ui"
)

var moveCmd = &cobra.Command{
	Use:     "move <id> <state>",
	GroupID: "features",
	Short:   "Move a feature to a new lifecycle state",
	Long: `Move a feature to a new lifecycle state, recording the transition in its
history. Only legal transitions are accepted; 'ft show <id>' lists the
destinations reachable from the current state.`,
	Args: cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		id := args[0]
		next := types.State(args[1])

		triggerFlag, _ := cmd.Flags().GetString("trigger")
		notes, _ := cmd.Flags().GetString("notes")
		trigger := types.Trigger(triggerFlag)
		if !trigger.IsValid() {
			fatalError("invalid trigger %q (want command, agent, or manual)", triggerFlag)
		}

		f, err := requestTransition(id, next, trigger, notes)
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
			fmt.Printf("%s Moved %s to %s (%d transitions recorded)\n",
				ui.RenderPass(ui.IconPass), f.ID, ui.RenderState(f.State), len(f.StateHistory))
		}
	},
}

// requestTransition applies the transition with a bounded retry loop.
// Only persistence failures are retried; validation errors are permanent
// and surface immediately.
func requestTransition(id string, next types.State, trigger types.Trigger, notes string) (*types.Feature, error) {
	maxAttempts := config.GetInt(config.KeyRetryAttempts)
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var f *types.Feature
	op := func() error {
		var err error
		f, err = theStore.RequestTransition(rootCtx, id, next, trigger, notes)
		if err == nil {
			return nil
		}
		var pe *store.PersistenceError
		if errors.As(err, &pe) {
			return err
		}
		return backoff.Permanent(err)
	}

	policy := backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxAttempts-1))
	if err := backoff.Retry(op, backoff.WithContext(policy, rootCtx)); err != nil {
		return nil, err
	}
	return f, nil
}

// runTransitionHooks notifies configured external consumers of the
// state change.
func runTransitionHooks(f *types.Feature) {
	commands := config.GetTransitionHooks()
	if len(commands) == 0 {
		return
	}
	hooks.RunTransitionHooks(rootCtx, commands, f, f.LastTransition(), getActor(),
		config.GetDuration(config.KeyHooksTimeout))
}

// reportTransitionError prints a transition failure and exits.
func reportTransitionError(id string, err error) {
	if errors.Is(err, store.ErrNotFound) {
		fatalError("feature %s not found", id)
	}
	fatalError("moving %s: %v", id, err)
}

func init() {
	moveCmd.Flags().String("trigger", string(types.TriggerManual), "Transition origin: command, agent, or manual")
	moveCmd.Flags().StringP("notes", "m", "", "Free-text rationale recorded on the transition")
	rootCmd.AddCommand(moveCmd)
}
