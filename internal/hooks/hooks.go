// Package hooks delivers state-change events to external consumers.
//
// Consumers are user-configured shell commands (config key
// hooks.on-transition). Each command receives the transition via FEATURE_*
// environment variables. Hooks run synchronously after a successful
// transition; a failing hook is reported as a warning and never rolls the
// transition back.
package hooks

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/featrack/featrack/internal/types"
)

// DefaultTimeout bounds each hook command's runtime.
const DefaultTimeout = 10 * time.Second

// RunTransitionHooks executes the given hook commands for a transition
// that just landed on f. rec is the record appended by the transition;
// actor names who initiated it.
func RunTransitionHooks(ctx context.Context, commands []string, f *types.Feature, rec *types.TransitionRecord, actor string, timeout time.Duration) {
	if len(commands) == 0 {
		return
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	prev := types.State("")
	if n := len(f.StateHistory); n >= 2 {
		prev = f.StateHistory[n-2].State
	}

	env := append(os.Environ(),
		"FEATURE_ID="+f.ID,
		"FEATURE_TITLE="+f.Title,
		"FEATURE_STATE="+string(rec.State),
		"FEATURE_PREV_STATE="+string(prev),
		"FEATURE_TRIGGER="+string(rec.TriggeredBy),
		"FEATURE_ACTOR="+actor,
		"FEATURE_NOTES="+rec.Notes,
		"FEATURE_TIMESTAMP="+rec.Timestamp.Format(time.RFC3339),
	)

	for _, command := range commands {
		hookCtx, cancel := context.WithTimeout(ctx, timeout)

		// #nosec G204 -- command comes from the user's own config file
		cmd := exec.CommandContext(hookCtx, "sh", "-c", command)
		cmd.Env = env
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		err := cmd.Run()
		cancel()

		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: transition hook %q failed: %v\n", command, err)
		}
	}
}
