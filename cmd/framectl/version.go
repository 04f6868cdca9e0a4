package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/QuangTung97/pframe/config"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("framectl %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built: %s\n", date)
		fmt.Printf("  frame allocator: %s\n", config.DefaultFrameAllocator)
		fmt.Printf("  memory allocator: %s\n", config.DefaultMemoryAllocator)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
