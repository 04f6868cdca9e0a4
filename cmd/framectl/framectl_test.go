package main

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/QuangTung97/pframe/allocator"
	"github.com/QuangTung97/pframe/internal/boot"
	"github.com/QuangTung97/pframe/pagecache"
)

func TestLoadConfig(t *testing.T) {
	resetFlags(t)

	writeTestConfig(t, 8, "frame_allocator: bitmap\n")
	conf, err := loadConfig()
	require.NoError(t, err)
	assert.Equal(t, allocator.KindBitmap, conf.FrameAllocator)
	assert.Equal(t, uint64(8), conf.Pages().Len())

	strategy = "linkedlist"
	conf, err = loadConfig()
	require.NoError(t, err)
	assert.Equal(t, allocator.KindLinkedList, conf.FrameAllocator)

	strategy = "buddy"
	_, err = loadConfig()
	assert.Error(t, err)
}

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "7", formatCount(7))
	assert.Equal(t, "1,234,567", formatCount(1234567))
}

func TestSimulateCommand(t *testing.T) {
	resetFlags(t)
	writeTestConfig(t, 8, "")
	strategy = "stack"
	simulateFrames = 3

	out, err := captureOutput(t, runSimulate)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "FrameTracker:PPN=0x80400\nFrameTracker:PPN=0x80401\nFrameTracker:PPN=0x80402\n"))
	assert.Contains(t, out, "After allocating 3 frames, frames state:\n")
	assert.Contains(t, out, "[frame_alloc] strategy=stack range=[0x80400, 0x80408) remaining=5\n")
	assert.Contains(t, out, "[frame_alloc] strategy=stack range=[0x80400, 0x80408) remaining=8\n")
	assert.NotContains(t, out, "exhausted")
}

func TestSimulateCommand_Exhausted(t *testing.T) {
	resetFlags(t)
	writeTestConfig(t, 4, "")
	strategy = "bitmap"
	simulateFrames = 10

	out, err := captureOutput(t, runSimulate)
	require.NoError(t, err)
	assert.Contains(t, out, "frame allocator exhausted after 4 frames\n")
}

func TestSimulateCommand_JSON(t *testing.T) {
	resetFlags(t)
	writeTestConfig(t, 8, "")
	strategy = "linkedlist"
	simulateFrames = 2
	jsonOut = true

	out, err := captureOutput(t, runSimulate)
	require.NoError(t, err)

	var result simulateResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, "linkedlist", result.Strategy)
	assert.Equal(t, "[0x80400, 0x80408)", result.Range)
	assert.Equal(t, []string{"FrameTracker:PPN=0x80407", "FrameTracker:PPN=0x80406"}, result.Frames)
	assert.Equal(t, uint64(6), result.Remaining)
	assert.Equal(t, uint64(2), result.Stats.Allocs)
	assert.Equal(t, uint64(2), result.Stats.Deallocs)
}

func TestSegmentsCommand(t *testing.T) {
	resetFlags(t)
	writeTestConfig(t, 7, "")
	strategy = "stack"
	segmentRequests = []int{0, 1, 3, 3}

	out, err := captureOutput(t, runSegments)
	require.NoError(t, err)

	assert.Contains(t, out, "request=0 -> segment #0 size=1 first=0x80400\n")
	assert.Contains(t, out, "request=1 -> segment #1 size=2 first=0x80401\n")
	assert.Contains(t, out, "request=3 -> segment #2 size=4 first=0x80403\n")
	assert.Contains(t, out, "request=3 -> no free segment\n")
	assert.Contains(t, out, "    #2 size=4 in_use=true first=0x80403\n")
	assert.True(t, strings.HasSuffix(out, "3 of 3 segments free\n"))
}

func TestSegmentsCommand_JSON(t *testing.T) {
	resetFlags(t)
	writeTestConfig(t, 7, "")
	strategy = "stack"
	segmentRequests = []int{2, 4}
	jsonOut = true

	out, err := captureOutput(t, runSegments)
	require.NoError(t, err)

	var result segmentsResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, segmentsResult{
		Sizes: []int{1, 2, 4},
		Allocations: []segmentAllocation{
			{Request: 2, Found: true, Index: 2, Size: 4, First: "0x80403"},
			{Request: 4, Found: false, Index: -1},
		},
	}, result)
}

func TestSelfTestCommand(t *testing.T) {
	resetFlags(t)
	writeTestConfig(t, 16, "")

	out, err := captureOutput(t, runSelfTest)
	require.NoError(t, err)
	assert.Contains(t, out, "---frame allocator test passed!---\n")
	assert.Contains(t, out, "---segment allocator test passed!---\n")
}

func TestSelfTestCommand_Selected(t *testing.T) {
	resetFlags(t)
	writeTestConfig(t, 16, "test_frame: true\ntest_segment: true\n")
	selfTestSegment = true

	out, err := captureOutput(t, runSelfTest)
	require.NoError(t, err)
	assert.NotContains(t, out, "frame allocator test")
	assert.Contains(t, out, "---segment allocator test passed!---\n")
}

func TestSelfTestCommand_Fails(t *testing.T) {
	resetFlags(t)
	writeTestConfig(t, 3, "")
	selfTestFrame = true

	_, err := captureOutput(t, runSelfTest)
	assert.ErrorIs(t, err, boot.ErrSelfTest)
}

func TestBenchCommand_JSON(t *testing.T) {
	resetFlags(t)
	writeTestConfig(t, 32, "")
	benchStrategies = []string{"stack", "bitmap"}
	benchCount = 16
	benchRounds = 2
	jsonOut = true

	out, err := captureOutput(t, runBench)
	require.NoError(t, err)

	var results []benchResult
	require.NoError(t, json.Unmarshal([]byte(out), &results))
	require.Equal(t, 2, len(results))
	assert.Equal(t, "stack", results[0].Strategy)
	assert.Equal(t, "bitmap", results[1].Strategy)
	for _, r := range results {
		assert.Equal(t, uint64(16), r.Frames)
		assert.Equal(t, 2, r.Rounds)
		assert.Equal(t, uint64(32), r.Ops)
		assert.GreaterOrEqual(t, r.AllocNsPerOp, 0.0)
	}
}

func TestNsPerOp(t *testing.T) {
	assert.Equal(t, 0.0, nsPerOp(time.Second, 0))
	assert.Equal(t, 250.0, nsPerOp(time.Microsecond, 4))
}

func TestBenchCommand_UnknownStrategy(t *testing.T) {
	resetFlags(t)
	writeTestConfig(t, 8, "")
	benchStrategies = []string{"buddy"}

	_, err := captureOutput(t, runBench)
	assert.Error(t, err)
}

func TestCacheCommand_JSON(t *testing.T) {
	resetFlags(t)
	writeTestConfig(t, 16, "")
	cacheCapacity = 4
	cacheKeys = 32
	cacheAccesses = 200
	jsonOut = true

	out, err := captureOutput(t, runCache)
	require.NoError(t, err)

	var result cacheResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	assert.Equal(t, 4, result.Capacity)
	assert.LessOrEqual(t, result.Cached, 4)
	assert.Equal(t, uint64(200), result.Cache.Hits+result.Cache.Misses)
	assert.Equal(t, result.Cache.Admitted, result.Frames.Allocs)
}

func TestCacheCommand_InvalidWorkload(t *testing.T) {
	resetFlags(t)
	writeTestConfig(t, 16, "")
	cacheSkew = 0.5

	_, err := captureOutput(t, runCache)
	assert.ErrorIs(t, err, pagecache.ErrInvalidWorkload)
}
