package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"
)

func captureStatus(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	old := statusOut
	statusOut = &buf
	t.Cleanup(func() { statusOut = old })
	return &buf
}

func TestSpinnerStopWithSuccess(t *testing.T) {
	buf := captureStatus(t)
	s := newSpinner("Checking 2 requirements")
	s.Start()
	time.Sleep(100 * time.Millisecond)
	s.StopWithSuccess("All 2 requirements satisfied")

	out := buf.String()
	if !strings.Contains(out, "Checking 2 requirements") {
		t.Errorf("spinner never drew its message: %q", out)
	}
	if !strings.HasSuffix(out, iconSuccess+" All 2 requirements satisfied\n") {
		t.Errorf("output should end with the success line: %q", out)
	}
	if s.Cancelled() {
		t.Error("a stopped spinner is not cancelled")
	}
}

func TestSpinnerContextCancel(t *testing.T) {
	captureStatus(t)
	ctx, cancel := context.WithCancel(context.Background())
	s := newSpinnerWithContext(ctx, "Publishing")
	s.Start()
	cancel()

	deadline := time.Now().Add(time.Second)
	for !s.Cancelled() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if !s.Cancelled() {
		t.Error("spinner should be cancelled after context cancellation")
	}
	s.Stop()
}

func TestSpinnerStop(t *testing.T) {
	captureStatus(t)

	s := newSpinner("started")
	s.Start()
	s.Stop()
	s.Stop()

	// Stopping a spinner that never started must not block.
	done := make(chan struct{})
	go func() {
		newSpinner("never started").StopWithError("failed")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Stop() blocked on a spinner that was never started")
	}
}
