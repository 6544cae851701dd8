package systeminfo

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"sdkmatch/logger"

	"github.com/shirou/gopsutil/v4/host"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.Init("error")
}

func stubHostInfo(t *testing.T, fn func(context.Context) (*host.InfoStat, error)) {
	t.Helper()
	orig := hostInfo
	hostInfo = fn
	t.Cleanup(func() { hostInfo = orig })
}

func TestGetSystemInfo(t *testing.T) {
	stubHostInfo(t, func(context.Context) (*host.InfoStat, error) {
		return &host.InfoStat{
			Hostname:        "bench-01",
			Platform:        "ubuntu",
			PlatformVersion: "24.04",
			KernelVersion:   "6.8.0",
			KernelArch:      "x86_64",
		}, nil
	})

	info, err := GetSystemInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "bench-01", info.Hostname)
	assert.Equal(t, "ubuntu", info.Platform)
	assert.Equal(t, "x86_64", info.Arch)
	assert.Equal(t, runtime.GOOS, info.OS)
	assert.NotEmpty(t, info.CollectedAt)
}

func TestGetSystemInfoHostFailure(t *testing.T) {
	stubHostInfo(t, func(context.Context) (*host.InfoStat, error) {
		return nil, errors.New("no host")
	})

	info, err := GetSystemInfo(context.Background())
	assert.Error(t, err)
	require.NotNil(t, info)
	assert.Equal(t, runtime.GOARCH, info.Arch)
	assert.Empty(t, info.Hostname)
}

func TestGetSystemInfoLive(t *testing.T) {
	info, _ := GetSystemInfo(context.Background())
	require.NotNil(t, info)
	assert.Equal(t, runtime.GOOS, info.OS)
}
