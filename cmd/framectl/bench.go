package main

import (
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/QuangTung97/pframe"
	"github.com/QuangTung97/pframe/allocator"
	"github.com/QuangTung97/pframe/config"
	"github.com/QuangTung97/pframe/internal/boot"
)

var (
	benchCount      int
	benchRounds     int
	benchStrategies []string
)

func init() {
	cmd := newBenchCmd()
	cmd.Flags().IntVarP(&benchCount, "count", "n", 0, "Frames per round (0 means every frame)")
	cmd.Flags().IntVar(&benchRounds, "rounds", 3, "Alloc and release rounds per strategy")
	cmd.Flags().StringSliceVar(&benchStrategies, "strategies", nil,
		"Strategies to measure (default all)")
	rootCmd.AddCommand(cmd)
}

func newBenchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time frame allocation and release for each strategy",
		Long: `The bench command boots a fresh frame allocator per strategy and times
rounds of allocating frames until the count (or exhaustion) followed by
releasing them all.

Example:
  framectl bench
  framectl bench --strategies stack,bitmap --count 512 --rounds 10`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench()
		},
	}
	return cmd
}

type benchResult struct {
	Strategy       string  `json:"strategy"`
	Frames         uint64  `json:"frames"`
	Rounds         int     `json:"rounds"`
	Ops            uint64  `json:"ops"`
	AllocNsPerOp   float64 `json:"alloc_ns_per_op"`
	ReleaseNsPerOp float64 `json:"release_ns_per_op"`
}

func benchKinds() ([]allocator.Kind, error) {
	if len(benchStrategies) == 0 {
		return allocator.Kinds(), nil
	}
	kinds := make([]allocator.Kind, 0, len(benchStrategies))
	for _, s := range benchStrategies {
		kind, err := allocator.ParseKind(s)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, kind)
	}
	return kinds, nil
}

func runBench() error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	conf.MemoryAllocator = config.MemoryFrame
	conf.TestFrame = false
	conf.TestSegment = false

	kinds, err := benchKinds()
	if err != nil {
		return err
	}

	results := make([]benchResult, 0, len(kinds))
	for _, kind := range kinds {
		conf.FrameAllocator = kind
		res, err := benchStrategy(conf)
		if err != nil {
			return err
		}
		results = append(results, res)
	}

	if jsonOut {
		return printJSON(results)
	}

	printInfo("%-12s %10s %8s %14s %14s\n", "STRATEGY", "FRAMES", "ROUNDS", "ALLOC ns/op", "RELEASE ns/op")
	for _, r := range results {
		printInfo("%-12s %10s %8d %14.1f %14.1f\n",
			r.Strategy, formatCount(r.Frames), r.Rounds, r.AllocNsPerOp, r.ReleaseNsPerOp)
	}
	return nil
}

func benchStrategy(conf config.Config) (benchResult, error) {
	sys, err := boot.Boot(conf, io.Discard)
	if err != nil {
		return benchResult{}, err
	}
	defer sys.Close()

	reg := sys.Registry
	count := reg.Range().Len()
	if benchCount > 0 && uint64(benchCount) < count {
		count = uint64(benchCount)
	}

	result := benchResult{
		Strategy: conf.FrameAllocator.String(),
		Frames:   count,
		Rounds:   benchRounds,
	}
	if count == 0 || benchRounds <= 0 {
		return result, nil
	}

	var (
		allocTotal, releaseTotal time.Duration
		ops                      uint64
	)
	err = boot.Guard(func() error {
		frames := make([]*pframe.FrameTracker, 0, count)
		for round := 0; round < benchRounds; round++ {
			frames = frames[:0]

			start := time.Now()
			for i := uint64(0); i < count; i++ {
				f, ok := reg.Alloc()
				if !ok {
					break
				}
				frames = append(frames, f)
			}
			allocTotal += time.Since(start)
			ops += uint64(len(frames))

			start = time.Now()
			pframe.ReleaseAll(frames)
			releaseTotal += time.Since(start)
		}
		return nil
	})
	if err != nil {
		return benchResult{}, err
	}

	result.Ops = ops
	result.AllocNsPerOp = nsPerOp(allocTotal, ops)
	result.ReleaseNsPerOp = nsPerOp(releaseTotal, ops)

	printVerbose("%s: %s allocs, %s deallocs\n", result.Strategy,
		formatCount(reg.Stats().Allocs), formatCount(reg.Stats().Deallocs))
	return result, nil
}

// nsPerOp divides by the frames actually allocated, which is below the
// requested count when a round hits exhaustion.
func nsPerOp(total time.Duration, ops uint64) float64 {
	if ops == 0 {
		return 0
	}
	return float64(total.Nanoseconds()) / float64(ops)
}
