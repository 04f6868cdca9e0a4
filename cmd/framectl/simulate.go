package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/QuangTung97/pframe"
	"github.com/QuangTung97/pframe/config"
	"github.com/QuangTung97/pframe/internal/boot"
)

var (
	simulateFrames int
)

func init() {
	cmd := newSimulateCmd()
	cmd.Flags().IntVarP(&simulateFrames, "frames", "n", 5, "Number of frames to allocate")
	rootCmd.AddCommand(cmd)
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Allocate and release frames, dumping the allocator state",
		Long: `The simulate command boots the frame allocator, allocates frames,
dumps the allocator state, releases every frame and dumps the state again.

Example:
  framectl simulate
  framectl simulate --strategy bitmap --frames 100
  framectl simulate --config pframe.yaml --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate()
		},
	}
	return cmd
}

type simulateResult struct {
	Strategy  string       `json:"strategy"`
	Range     string       `json:"range"`
	Frames    []string     `json:"frames"`
	Exhausted bool         `json:"exhausted"`
	Remaining uint64       `json:"remaining_after_alloc"`
	Stats     pframe.Stats `json:"stats"`
}

func runSimulate() error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	conf.MemoryAllocator = config.MemoryFrame
	conf.TestFrame = false
	conf.TestSegment = false

	sys, err := boot.Boot(conf, os.Stdout)
	if err != nil {
		return err
	}
	defer sys.Close()

	reg := sys.Registry
	printVerbose("Booted %s frame allocator over %v\n", reg.Kind(), reg.Range())

	return boot.Guard(func() error {
		result := simulateResult{
			Strategy: reg.Kind().String(),
			Range:    reg.Range().String(),
		}

		frames := make([]*pframe.FrameTracker, 0, simulateFrames)
		for i := 0; i < simulateFrames; i++ {
			f, ok := reg.Alloc()
			if !ok {
				result.Exhausted = true
				break
			}
			frames = append(frames, f)
			result.Frames = append(result.Frames, f.String())
		}
		result.Remaining = reg.Remaining()

		if jsonOut {
			pframe.ReleaseAll(frames)
			result.Stats = reg.Stats()
			return printJSON(result)
		}

		for _, s := range result.Frames {
			printInfo("%s\n", s)
		}
		if result.Exhausted {
			printInfo("frame allocator exhausted after %s frames\n", formatCount(uint64(len(frames))))
		}

		printInfo("After allocating %s frames, frames state:\n", formatCount(uint64(len(frames))))
		if !quiet {
			reg.Visible(os.Stdout)
		}

		pframe.ReleaseAll(frames)
		printInfo("After releasing every frame, frames state:\n")
		if !quiet {
			reg.Visible(os.Stdout)
		}
		return nil
	})
}
