//go:build !trace

package tracing

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStubIsNoOp(t *testing.T) {
	assert.False(t, Enabled())

	path := filepath.Join(t.TempDir(), "scan.trace")
	require.NoError(t, Start(path))
	defer Stop()

	ctx, endTask := StartTask(context.Background(), "scan_root")
	require.NotNil(t, ctx)
	endRegion := StartRegion(ctx, "classify")
	Log(ctx, "root", "/sdk")
	endRegion()
	endTask()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}
