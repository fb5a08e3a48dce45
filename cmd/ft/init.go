package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/featrack/featrack/internal/config"
	"github.com/featrack/featrack/internal/configfile"
	"github.com/featrack/featrack/internal/ui"
)

var initCmd = &cobra.Command{
	Use:     "init",
	GroupID: "setup",
	Short:   "Initialize feature tracking in the current directory",
	Long: `Create a .featrack directory with project metadata and an empty
feature collection.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		cwd, err := os.Getwd()
		if err != nil {
			fatalError("getting working directory: %v", err)
		}
		dir := filepath.Join(cwd, config.ProjectDirName)

		if _, err := os.Stat(configfile.ConfigPath(dir)); err == nil {
			fatalError("%s already initialized", dir)
		}

		if err := os.MkdirAll(dir, 0755); err != nil {
			fatalError("creating %s: %v", dir, err)
		}

		cfg := configfile.DefaultConfig()
		if err := cfg.Save(dir); err != nil {
			fatalError("%v", err)
		}

		collection := cfg.CollectionPath(dir)
		if _, err := os.Stat(collection); os.IsNotExist(err) {
			if err := os.WriteFile(collection, []byte("[]\n"), 0600); err != nil {
				fatalError("creating collection: %v", err)
			}
		}

		// Re-read config now that the project directory exists
		if err := config.Initialize(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to re-initialize config: %v\n", err)
		}

		if !quietFlag {
			fmt.Printf("%s Initialized feature tracking in %s\n", ui.RenderPass(ui.IconPass), dir)
		}
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
