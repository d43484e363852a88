// Package cmd wires the command-line interface to the search engine.
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/sjkxq/gofind/find"
)

var (
	cfgFile string
	version = "0.1.0"
)

// rootCmd is the find command itself: walk the given paths and print
// entries matching the configured filters.
var rootCmd = &cobra.Command{
	Use:   "gofind [flags] [path...]",
	Short: "Find files and directories concurrently",
	Long: `gofind recursively searches one or more directory trees with a pool of
concurrent workers and prints entries matching the configured filters.

Examples:
  gofind . --name="*.go"
  gofind src tests -i "*.RS" --max-depth=2
  gofind / --name="*.conf" --type=f --workers=16 --strict
  gofind . -L --relative --sort`,
	Version:      version,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		paths := args
		if len(paths) == 0 {
			paths = []string{"."}
		}
		return runFind(cmd.Context(), paths)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default $HOME/.gofind.yaml)")

	rootCmd.Flags().StringSliceP("name", "n", nil, "Match entry names against a glob pattern (repeatable)")
	rootCmd.Flags().StringSliceP("iname", "i", nil, "Like --name but case-insensitive (repeatable)")
	rootCmd.Flags().Int("max-depth", -1, "Maximum directory depth to expand below each root (-1 for unlimited)")
	rootCmd.Flags().BoolP("follow-symlinks", "L", false, "Follow symbolic links to directories")
	rootCmd.Flags().StringSliceP("type", "t", nil, "Restrict matches to entry types: f, d, l (repeatable)")
	rootCmd.Flags().Bool("hidden", false, "Include hidden files and directories")
	rootCmd.Flags().Bool("absolute", false, "Print absolute paths")
	rootCmd.Flags().Bool("relative", false, "Print paths relative to their root")
	rootCmd.Flags().IntP("workers", "j", 0, "Number of concurrent workers (0 = number of CPUs)")
	rootCmd.Flags().Bool("sort", false, "Sort output by path (forces batch mode)")
	rootCmd.Flags().Bool("strict", false, "Exit non-zero when any path could not be searched")
	rootCmd.Flags().Bool("progress", false, "Print periodic progress to stderr")
	rootCmd.Flags().BoolP("verbose", "v", false, "Enable debug logging")
	rootCmd.Flags().Bool("silent", false, "Disable all output except matches and errors")

	rootCmd.MarkFlagsMutuallyExclusive("name", "iname")
	rootCmd.MarkFlagsMutuallyExclusive("absolute", "relative")

	// Bind flags to viper
	viper.BindPFlag("name", rootCmd.Flags().Lookup("name"))
	viper.BindPFlag("iname", rootCmd.Flags().Lookup("iname"))
	viper.BindPFlag("max-depth", rootCmd.Flags().Lookup("max-depth"))
	viper.BindPFlag("follow-symlinks", rootCmd.Flags().Lookup("follow-symlinks"))
	viper.BindPFlag("type", rootCmd.Flags().Lookup("type"))
	viper.BindPFlag("hidden", rootCmd.Flags().Lookup("hidden"))
	viper.BindPFlag("absolute", rootCmd.Flags().Lookup("absolute"))
	viper.BindPFlag("relative", rootCmd.Flags().Lookup("relative"))
	viper.BindPFlag("workers", rootCmd.Flags().Lookup("workers"))
	viper.BindPFlag("sort", rootCmd.Flags().Lookup("sort"))
	viper.BindPFlag("strict", rootCmd.Flags().Lookup("strict"))
	viper.BindPFlag("progress", rootCmd.Flags().Lookup("progress"))
	viper.BindPFlag("verbose", rootCmd.Flags().Lookup("verbose"))
	viper.BindPFlag("silent", rootCmd.Flags().Lookup("silent"))
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.SetConfigType("yaml")
			viper.SetConfigName(".gofind")
		}
	}

	viper.SetEnvPrefix("GOFIND")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && viper.GetBool("verbose") {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// buildOptions assembles a validated SearchOptions value from viper state.
func buildOptions(paths []string) (find.SearchOptions, error) {
	opts := find.SearchOptions{
		Roots:          paths,
		FollowSymlinks: viper.GetBool("follow-symlinks"),
		IncludeHidden:  viper.GetBool("hidden"),
		Parallelism:    viper.GetInt("workers"),
		Sort:           viper.GetBool("sort"),
	}

	if patterns := viper.GetStringSlice("iname"); len(patterns) > 0 {
		opts.NamePatterns = patterns
		opts.IgnoreCase = true
	} else {
		opts.NamePatterns = viper.GetStringSlice("name")
	}

	if depth := viper.GetInt("max-depth"); depth >= 0 {
		opts.MaxDepth = &depth
	}

	for _, code := range viper.GetStringSlice("type") {
		t, err := find.ParseEntryType(code)
		if err != nil {
			return opts, err
		}
		opts.Types = append(opts.Types, t)
	}

	switch {
	case viper.GetBool("absolute"):
		opts.PathFormat = find.PathFormatAbsolute
	case viper.GetBool("relative"):
		opts.PathFormat = find.PathFormatRelative
	}

	opts.Logger = newLogger()
	if viper.GetBool("progress") {
		opts.Progress = func(stats find.Stats) {
			fmt.Fprintf(os.Stderr, "\rscanned %d entries, %d dirs, %d matches, %d errors",
				stats.EntriesSeen, stats.DirsExpanded, stats.Matches, stats.Errors)
		}
	}

	return opts, nil
}

func runFind(ctx context.Context, paths []string) error {
	opts, err := buildOptions(paths)
	if err != nil {
		return err
	}

	walker, err := find.New(opts)
	if err != nil {
		return err
	}

	var errCount int
	if opts.Sort {
		// Batch mode: collect, sort, then print.
		matches, walkErrs, err := walker.Run(ctx)
		if err != nil {
			return err
		}
		for _, we := range walkErrs {
			fmt.Fprintf(os.Stderr, "gofind: %v\n", we)
		}
		for _, m := range matches {
			fmt.Println(m.DisplayPath)
		}
		errCount = len(walkErrs)
	} else {
		// Streaming mode: print matches as workers produce them.
		results, err := walker.Stream(ctx)
		if err != nil {
			return err
		}
		for r := range results {
			if r.Err != nil {
				fmt.Fprintf(os.Stderr, "gofind: %v\n", r.Err)
				errCount++
				continue
			}
			fmt.Println(r.Match.DisplayPath)
		}
	}

	if viper.GetBool("progress") {
		fmt.Fprintln(os.Stderr)
	}
	if viper.GetBool("strict") && errCount > 0 {
		return fmt.Errorf("%d paths could not be searched", errCount)
	}
	return nil
}

// newLogger builds a zap logger matching the requested verbosity.
func newLogger() *zap.Logger {
	var config zap.Config
	switch {
	case viper.GetBool("verbose"):
		config = zap.NewDevelopmentConfig()
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case viper.GetBool("silent"):
		config = zap.NewProductionConfig()
		config.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return zap.NewNop()
	}
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
