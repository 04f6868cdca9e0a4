package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/QuangTung97/pframe/allocator"
	"github.com/QuangTung97/pframe/config"
	"github.com/QuangTung97/pframe/internal/logger"
)

var (
	// Global flags
	configPath string
	strategy   string
	verbose    bool
	quiet      bool
	jsonOut    bool
)

var rootCmd = &cobra.Command{
	Use:   "framectl",
	Short: "Exercise and inspect the physical frame allocators",
	Long: `framectl boots the frame allocator over a simulated physical memory
arena and runs diagnostics on it: allocation dumps, segment tables, boot self
tests, page cache workloads and strategy benchmarks.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger.Init(logger.Options{
			Enabled: verbose,
			Output:  os.Stderr,
			Level:   slog.LevelDebug,
			JSON:    jsonOut,
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().
		StringVarP(&strategy, "strategy", "s", "", "Frame allocator strategy (stack, bitmap, linkedlist)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output and logging")
	rootCmd.PersistentFlags().
		BoolVarP(&quiet, "quiet", "q", false, "Suppress all output except errors")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Output in JSON format")
}

func execute() {
	if err := rootCmd.Execute(); err != nil {
		printError("%v\n", err)
		os.Exit(1)
	}
}

// loadConfig returns the defaults, the --config file if given, and the
// --strategy override on top.
func loadConfig() (config.Config, error) {
	conf := config.Default()
	if configPath != "" {
		var err error
		conf, err = config.Load(configPath)
		if err != nil {
			return config.Config{}, err
		}
	}

	if strategy != "" {
		kind, err := allocator.ParseKind(strategy)
		if err != nil {
			return config.Config{}, err
		}
		conf.FrameAllocator = kind
	}
	return conf, nil
}

// Helper functions for output

var numbers = message.NewPrinter(language.English)

// formatCount renders n with thousands separators.
func formatCount(n uint64) string {
	return numbers.Sprintf("%d", n)
}

// printInfo prints an info message if not in quiet mode
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printError prints an error message
func printError(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "Error: "+format, args...)
}

// printVerbose prints a verbose message if verbose mode is enabled
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format, args...)
	}
}

// printJSON outputs data as JSON
func printJSON(v interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}
