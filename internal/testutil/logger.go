// Package testutil provides shared test helpers: loggers that write through
// the test log and dataset builders.
package testutil

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// NewTestLogger returns a debug-level logger whose records go to t.Log.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	logger, _ := NewCaptureLogger(t)
	return logger
}

// LogCapture keeps every record written by a capture logger.
type LogCapture struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// String returns everything logged so far.
func (c *LogCapture) String() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.buf.String()
}

// Contains reports whether any record mentions s.
func (c *LogCapture) Contains(s string) bool {
	return strings.Contains(c.String(), s)
}

// NewCaptureLogger returns a debug-level logger that mirrors records to
// t.Log and keeps them for assertions. Handlers run on many goroutines
// during parallel fits, so writes are serialized.
func NewCaptureLogger(t testing.TB) (*slog.Logger, *LogCapture) {
	t.Helper()
	capture := &LogCapture{}
	w := &tbWriter{t: t, capture: capture}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})), capture
}

type tbWriter struct {
	t       testing.TB
	capture *LogCapture
}

func (w *tbWriter) Write(p []byte) (int, error) {
	w.capture.mu.Lock()
	w.capture.buf.Write(p)
	w.capture.mu.Unlock()
	w.t.Log(strings.TrimRight(string(p), "\n"))
	return len(p), nil
}
