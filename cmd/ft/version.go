package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// Version is the release version, overridden at build time via ldflags.
var Version = "0.3.0"

// Build is the build identifier, overridden at build time via ldflags.
var Build = "dev"

var versionCmd = &cobra.Command{
	Use:     "version",
	GroupID: "setup",
	Short:   "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("ft version %s (%s)\n", Version, Build)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
