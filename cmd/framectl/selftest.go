package main

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/QuangTung97/pframe/internal/boot"
)

var (
	selfTestFrame   bool
	selfTestSegment bool
)

func init() {
	cmd := newSelfTestCmd()
	cmd.Flags().BoolVar(&selfTestFrame, "frame", false, "Run the frame allocator self test")
	cmd.Flags().BoolVar(&selfTestSegment, "segment", false, "Run the segment allocator self test")
	rootCmd.AddCommand(cmd)
}

func newSelfTestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "selftest",
		Short: "Run the boot self tests",
		Long: `The selftest command boots the allocator with the frame and segment
self tests enabled. Without --frame or --segment the tests enabled in the
configuration file run; if none are enabled there, both run.

Example:
  framectl selftest
  framectl selftest --segment --strategy linkedlist`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSelfTest()
		},
	}
	return cmd
}

type selfTestResult struct {
	Strategy string `json:"strategy"`
	Frame    bool   `json:"frame"`
	Segment  bool   `json:"segment"`
	Passed   bool   `json:"passed"`
}

func runSelfTest() error {
	conf, err := loadConfig()
	if err != nil {
		return err
	}

	if selfTestFrame || selfTestSegment {
		conf.TestFrame = selfTestFrame
		conf.TestSegment = selfTestSegment
	}
	if !conf.TestFrame && !conf.TestSegment {
		conf.TestFrame = true
		conf.TestSegment = true
	}

	var out io.Writer = os.Stdout
	if quiet || jsonOut {
		out = io.Discard
	}

	sys, err := boot.Boot(conf, out)
	if err != nil {
		return err
	}
	defer sys.Close()

	if jsonOut {
		return printJSON(selfTestResult{
			Strategy: conf.FrameAllocator.String(),
			Frame:    conf.TestFrame,
			Segment:  conf.TestSegment,
			Passed:   true,
		})
	}
	return nil
}
