//go:build !trace

package tracing

import "context"

// Enabled reports whether the binary was built with the trace tag.
func Enabled() bool { return false }

// Start is a no-op without the trace tag.
func Start(path string) error { return nil }

func Stop() {}

func StartTask(ctx context.Context, name string) (context.Context, func()) {
	return ctx, func() {}
}

func StartRegion(ctx context.Context, name string) func() {
	return func() {}
}

func Log(ctx context.Context, category, message string) {}
