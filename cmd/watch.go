package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sjkxq/gofind/find"
)

var (
	watchEvents  []string
	watchTimeout time.Duration
)

// watchCmd monitors the given paths and reports entries that change and
// match the same filters as a regular search.
var watchCmd = &cobra.Command{
	Use:   "watch [flags] [path...]",
	Short: "Watch paths and report matching changes",
	Long: `Watch one or more paths for filesystem changes and print entries that
match the configured filters as they are created, modified or removed.

Examples:
  gofind watch .
  gofind watch --events=create --name="*.log" /var/log
  gofind watch --timeout=30s src`,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := args
		if len(paths) == 0 {
			paths = []string{"."}
		}
		return runWatch(cmd, paths)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringSliceVar(&watchEvents, "events", nil,
		"Events to report: create, modify, delete, rename, chmod (default all)")
	watchCmd.Flags().DurationVar(&watchTimeout, "timeout", 0,
		"Stop watching after this duration (0 = watch until interrupted)")
}

func runWatch(cmd *cobra.Command, paths []string) error {
	opts, err := buildOptions(paths)
	if err != nil {
		return err
	}
	// Progress reporting is a walk concern; it has no meaning while
	// watching.
	opts.Progress = nil

	walker, err := find.New(opts)
	if err != nil {
		return err
	}

	wopts := find.WatchOptions{Timeout: watchTimeout}
	for _, name := range watchEvents {
		ev, err := find.ParseWatchEvent(name)
		if err != nil {
			return err
		}
		wopts.Events = append(wopts.Events, ev)
	}

	return walker.Watch(cmd.Context(), wopts, func(_ context.Context, r find.Result) error {
		if r.Err != nil {
			fmt.Fprintf(os.Stderr, "gofind: %v\n", r.Err)
			return nil
		}
		fmt.Printf("%s %s\n", strings.ToUpper(r.Match.Type.String()), r.Match.DisplayPath)
		return nil
	})
}
