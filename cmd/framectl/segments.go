package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/QuangTung97/pframe/config"
	"github.com/QuangTung97/pframe/internal/boot"
	"github.com/QuangTung97/pframe/segment"
)

var (
	segmentRequests []int
)

func init() {
	cmd := newSegmentsCmd()
	cmd.Flags().IntSliceVarP(&segmentRequests, "request", "r", []int{0, 1, 3},
		"Segment sizes to request, in order")
	rootCmd.AddCommand(cmd)
}

func newSegmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "segments",
		Short: "Build the segment table and run an allocation round",
		Long: `The segments command boots with the segment allocator, which drains
every free frame into segments of 1, 2, 4, 8 and 16 frames. It then requests
segments first fit (a request of n frames gets a segment larger than n),
prints the segment table and deallocates them again.

Example:
  framectl segments
  framectl segments --request 2,2,7 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSegments()
		},
	}
	return cmd
}

type segmentAllocation struct {
	Request int    `json:"request"`
	Found   bool   `json:"found"`
	Index   int    `json:"index"`
	Size    int    `json:"size,omitempty"`
	First   string `json:"first,omitempty"`
}

type segmentsResult struct {
	Sizes       []int               `json:"sizes"`
	Allocations []segmentAllocation `json:"allocations"`
}

func runSegments() error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}
	conf.MemoryAllocator = config.MemorySegment
	conf.TestFrame = false
	conf.TestSegment = false

	sys, err := boot.Boot(conf, os.Stdout)
	if err != nil {
		return err
	}
	defer sys.Close()

	segs := sys.Segments
	printVerbose("Built %d segments from %v\n", segs.Len(), sys.Registry.Range())

	return boot.Guard(func() error {
		result := segmentsResult{
			Sizes: segs.Sizes(),
		}

		var held []segment.Tracker
		for _, req := range segmentRequests {
			t, ok := segs.Alloc(req)
			alloc := segmentAllocation{
				Request: req,
				Found:   ok,
				Index:   t.Index(),
			}
			if ok {
				held = append(held, t)
				alloc.Size = segs.Size(t)
				alloc.First = segs.Frames(t)[0].String()
			}
			result.Allocations = append(result.Allocations, alloc)
		}

		if !jsonOut {
			for _, a := range result.Allocations {
				if !a.Found {
					printInfo("request=%d -> no free segment\n", a.Request)
					continue
				}
				printInfo("request=%d -> segment #%d size=%d first=%s\n", a.Request, a.Index, a.Size, a.First)
			}
			if !quiet {
				segs.Visible(os.Stdout)
			}
		}

		for _, t := range held {
			segs.Dealloc(t)
		}

		if jsonOut {
			return printJSON(result)
		}
		printInfo("%d of %d segments free\n", segs.Free(), segs.Len())
		return nil
	})
}
