//go:build trace

package tracing

import (
	"context"
	"os"
	"runtime/trace"
)

// DefaultFile receives the execution trace when SDKMATCH_TRACE_FILE is unset.
const DefaultFile = "sdkmatch.trace"

var traceFile *os.File

// Enabled reports whether the binary was built with the trace tag.
func Enabled() bool { return true }

// Start writes a runtime execution trace to path, or DefaultFile when path
// is empty.
func Start(path string) error {
	if path == "" {
		path = DefaultFile
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	if err := trace.Start(f); err != nil {
		f.Close()
		return err
	}
	traceFile = f
	return nil
}

// Stop ends tracing and closes the trace file.
func Stop() {
	trace.Stop()
	if traceFile != nil {
		traceFile.Close()
		traceFile = nil
	}
}

// StartTask opens a task named after a scan or ranking phase.
func StartTask(ctx context.Context, name string) (context.Context, func()) {
	ctx, task := trace.NewTask(ctx, name)
	return ctx, task.End
}

func StartRegion(ctx context.Context, name string) func() {
	return trace.StartRegion(ctx, name).End
}

func Log(ctx context.Context, category, message string) {
	trace.Log(ctx, category, message)
}
