package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/featrack/featrack/internal/config"
	"github.com/featrack/featrack/internal/configfile"
	"github.com/featrack/featrack/internal/store"
	"github.com/featrack/featrack/internal/ui"
)

var (
	actor      string
	jsonOutput bool
	quietFlag  bool

	projectDir string
	theStore   *store.FileStore

	// Signal-aware context for graceful cancellation
	rootCtx    context.Context
	rootCancel context.CancelFunc
)

// noStoreCommands don't need a project directory or an open store.
var noStoreCommands = map[string]bool{
	"init":       true,
	"version":    true,
	"help":       true,
	"completion": true,
}

func needsStore(cmd *cobra.Command) bool {
	if cmd.Parent() == nil {
		// Bare "ft" just prints help
		return false
	}
	if noStoreCommands[cmd.Name()] {
		return false
	}
	if cmd.Parent().Name() == "completion" {
		return false
	}
	return true
}

// getActor returns the actor recorded against transitions.
// Priority: --actor flag > FT_ACTOR env > config > git user.name > $USER > "unknown"
func getActor() string {
	if actor != "" {
		return actor
	}
	if envActor := os.Getenv("FT_ACTOR"); envActor != "" {
		return envActor
	}
	if cfgActor := config.GetString(config.KeyActor); cfgActor != "" {
		return cfgActor
	}
	if out, err := exec.Command("git", "config", "user.name").Output(); err == nil {
		if gitUser := strings.TrimSpace(string(out)); gitUser != "" {
			return gitUser
		}
	}
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "unknown"
}

// printError writes an error line to w: a JSON object in --json mode so
// scripting consumers can parse it, a styled human line otherwise. Both
// modes go to the same stream.
func printError(w io.Writer, jsonMode bool, msg string) {
	if jsonMode {
		fmt.Fprintf(w, "{\"error\": %q}\n", msg)
	} else {
		fmt.Fprintf(w, "%s Error: %s\n", ui.RenderFail(ui.IconFail), msg)
	}
}

func fatalError(format string, args ...interface{}) {
	printError(os.Stderr, jsonOutput, fmt.Sprintf(format, args...))
	os.Exit(1)
}

func init() {
	if err := config.Initialize(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize config: %v\n", err)
	}

	rootCmd.PersistentFlags().StringVar(&actor, "actor", "", "Actor name for the audit trail (default: $FT_ACTOR, git user.name, $USER)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVarP(&quietFlag, "quiet", "q", false, "Suppress non-essential output (errors only)")

	rootCmd.Flags().BoolP("version", "V", false, "Print version information")

	rootCmd.AddGroup(&cobra.Group{ID: "features", Title: "Working With Features:"})
	rootCmd.AddGroup(&cobra.Group{ID: "views", Title: "Views & Reports:"})
	rootCmd.AddGroup(&cobra.Group{ID: "setup", Title: "Setup & Maintenance:"})
}

var rootCmd = &cobra.Command{
	Use:   "ft",
	Short: "ft - Feature lifecycle tracker",
	Long: `Track features through their delivery lifecycle with a complete,
append-only audit trail of every state transition.`,
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("ft version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help() // Help() always returns nil for cobra commands
	},
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		rootCtx, rootCancel = signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

		if !jsonOutput {
			jsonOutput = config.GetBool(config.KeyJSON)
		}

		if !needsStore(cmd) {
			return
		}

		dir, err := config.FindProjectDir()
		if err != nil {
			fatalError("%v", err)
		}
		projectDir = dir

		// no-color must take effect before any styled output, so read it
		// straight from config.yaml rather than through viper.
		if local := config.LoadLocalConfig(projectDir); local.NoColor && os.Getenv("NO_COLOR") == "" {
			_ = os.Setenv("NO_COLOR", "1")
		}

		cfg, err := configfile.Load(projectDir)
		if err != nil {
			fatalError("%v", err)
		}
		if cfg == nil {
			cfg = configfile.DefaultConfig()
		}
		theStore = store.New(cfg.CollectionPath(projectDir))
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if rootCancel != nil {
			rootCancel()
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
