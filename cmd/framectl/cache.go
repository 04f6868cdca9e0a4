package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/QuangTung97/pframe"
	"github.com/QuangTung97/pframe/config"
	"github.com/QuangTung97/pframe/internal/boot"
	"github.com/QuangTung97/pframe/pagecache"
)

var (
	cacheCapacity int
	cacheKeys     uint64
	cacheSkew     float64
	cacheAccesses int
	cacheSeed     uint64
)

func init() {
	cmd := newCacheCmd()
	cmd.Flags().IntVar(&cacheCapacity, "capacity", 0, "Cached pages (0 means every frame)")
	cmd.Flags().Uint64Var(&cacheKeys, "keys", 4096, "Distinct keys in the workload")
	cmd.Flags().Float64Var(&cacheSkew, "skew", 1.1, "Zipf skew of the workload, must be > 1")
	cmd.Flags().IntVarP(&cacheAccesses, "accesses", "n", 100000, "Number of accesses")
	cmd.Flags().Uint64Var(&cacheSeed, "seed", 1, "Workload random seed")
	rootCmd.AddCommand(cmd)
}

func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Run a page cache workload on top of the frame allocator",
		Long: `The cache command runs a Zipf distributed key workload against a page
cache in which every cached key owns one frame. Misses allocate frames and
evictions release them, so the frame allocator sees steady churn.

Example:
  framectl cache
  framectl cache --capacity 256 --keys 10000 --skew 1.3 --strategy linkedlist`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCache()
		},
	}
	return cmd
}

type cacheResult struct {
	Strategy string          `json:"strategy"`
	Capacity int             `json:"capacity"`
	Cached   int             `json:"cached"`
	HitRatio float64         `json:"hit_ratio"`
	Cache    pagecache.Stats `json:"cache"`
	Frames   pframe.Stats    `json:"frames"`
}

func runCache() error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	conf.MemoryAllocator = config.MemoryFrame
	conf.TestFrame = false
	conf.TestSegment = false

	workload, err := pagecache.NewWorkload(cacheSeed, cacheKeys, cacheSkew)
	if err != nil {
		return err
	}

	sys, err := boot.Boot(conf, os.Stdout)
	if err != nil {
		return err
	}
	defer sys.Close()

	return boot.Guard(func() error {
		c := pagecache.New(sys.Registry, pagecache.Config{Capacity: cacheCapacity})
		defer c.Close()

		stats := pagecache.Run(c, workload, cacheAccesses)
		result := cacheResult{
			Strategy: conf.FrameAllocator.String(),
			Capacity: c.Capacity(),
			Cached:   c.Len(),
			Cache:    stats,
			Frames:   sys.Registry.Stats(),
		}
		if total := stats.Hits + stats.Misses; total > 0 {
			result.HitRatio = float64(stats.Hits) / float64(total)
		}

		if jsonOut {
			return printJSON(result)
		}

		printInfo("strategy=%s capacity=%d cached=%d\n", result.Strategy, result.Capacity, result.Cached)
		printInfo("hits=%s misses=%s hit_ratio=%.3f\n",
			formatCount(stats.Hits), formatCount(stats.Misses), result.HitRatio)
		printInfo("admitted=%s rejected=%s evictions=%s\n",
			formatCount(stats.Admitted), formatCount(stats.Rejected), formatCount(stats.Evictions))
		printInfo("frame allocs=%s deallocs=%s failed=%s\n",
			formatCount(result.Frames.Allocs), formatCount(result.Frames.Deallocs),
			formatCount(result.Frames.FailedAllocs))
		return nil
	})
}
