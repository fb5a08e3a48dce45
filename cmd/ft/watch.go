package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/featrack/featrack/internal/config"
	"github.com/featrack/featrack/internal/ui"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	GroupID: "views",
	Short:   "Watch the collection and re-render on changes",
	Long: `Watch the feature collection file and re-render the list whenever another
process writes it. Useful alongside automated transitions. Ctrl-C stops.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			fatalError("starting watcher: %v", err)
		}
		defer func() { _ = watcher.Close() }()

		// Watch the directory, not the file: atomic saves rename a temp
		// file over the collection, which replaces the watched inode.
		collection := theStore.Path()
		if err := watcher.Add(filepath.Dir(collection)); err != nil {
			fatalError("watching %s: %v", filepath.Dir(collection), err)
		}

		debounce := config.GetDuration(config.KeyWatchDebounce)
		if debounce <= 0 {
			debounce = 250 * time.Millisecond
		}

		renderCollection()

		var timer *time.Timer
		pending := make(chan struct{}, 1)
		for {
			select {
			case <-rootCtx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != collection {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				// Debounce: a save produces several events in quick succession
				if timer != nil {
					timer.Stop()
				}
				timer = time.AfterFunc(debounce, func() {
					select {
					case pending <- struct{}{}:
					default:
					}
				})
			case <-pending:
				renderCollection()
			case watchErr, ok := <-watcher.Errors:
				if !ok {
					return
				}
				fmt.Fprintf(os.Stderr, "Warning: watch error: %v\n", watchErr)
			}
		}
	},
}

func renderCollection() {
	features, err := theStore.Load(rootCtx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: reload failed: %v\n", err)
		return
	}
	fmt.Printf("%s %s\n", ui.RenderAccent("──"), time.Now().Format(time.RFC3339))
	if len(features) == 0 {
		fmt.Println("No features found.")
		return
	}
	printFeatureTable(features)
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
