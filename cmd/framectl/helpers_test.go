package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

// captureOutput captures stdout while running a function
func captureOutput(t *testing.T, fn func() error) (string, error) {
	t.Helper()

	origStdout := os.Stdout

	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("failed to create pipe: %v", err)
	}
	os.Stdout = w

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		defer close(done)
		_, _ = buf.ReadFrom(r)
	}()

	fnErr := fn()

	_ = w.Close()
	os.Stdout = origStdout
	<-done
	_ = r.Close()

	return buf.String(), fnErr
}

// writeTestConfig writes a YAML config for a small arena of numPages pages
// starting at 0x80400000 and points --config at it.
func writeTestConfig(t *testing.T, numPages uint64, extra string) {
	t.Helper()

	end := 0x80400000 + numPages*0x1000
	data := []byte("kernel_end: 0x80400000\n" +
		fmt.Sprintf("memory_end: %#x\n", end) +
		extra)

	path := filepath.Join(t.TempDir(), "pframe.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	configPath = path
}

// resetFlags restores every global flag once the test finishes.
func resetFlags(t *testing.T) {
	t.Helper()
	t.Cleanup(func() {
		configPath = ""
		strategy = ""
		verbose = false
		quiet = false
		jsonOut = false

		simulateFrames = 5
		segmentRequests = []int{0, 1, 3}
		selfTestFrame = false
		selfTestSegment = false

		benchCount = 0
		benchRounds = 3
		benchStrategies = nil

		cacheCapacity = 0
		cacheKeys = 4096
		cacheSkew = 1.1
		cacheAccesses = 100000
		cacheSeed = 1
	})
}
