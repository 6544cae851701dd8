// Package systeminfo describes the host a report was produced on.
package systeminfo

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"sdkmatch/logger"

	"github.com/shirou/gopsutil/v4/host"
)

type SystemInfo struct {
	Hostname        string `json:"hostname,omitempty"`
	OS              string `json:"os"`
	Platform        string `json:"platform,omitempty"`
	PlatformVersion string `json:"platform_version,omitempty"`
	KernelVersion   string `json:"kernel_version,omitempty"`
	Arch            string `json:"arch"`
	CollectedAt     string `json:"collected_at"`
}

var hostInfo = host.InfoWithContext

// GetSystemInfo always returns a usable value; host lookups that fail leave
// their fields empty and are reported through the error.
func GetSystemInfo(ctx context.Context) (*SystemInfo, error) {
	sysInfo := &SystemInfo{
		OS:          runtime.GOOS,
		Arch:        runtime.GOARCH,
		CollectedAt: time.Now().UTC().Format(time.RFC3339),
	}

	info, err := hostInfo(ctx)
	if err != nil {
		return sysInfo, fmt.Errorf("failed to get host info: %w", err)
	}
	if info == nil {
		return sysInfo, nil
	}
	sysInfo.Hostname = info.Hostname
	sysInfo.Platform = info.Platform
	sysInfo.PlatformVersion = info.PlatformVersion
	sysInfo.KernelVersion = info.KernelVersion
	if info.KernelArch != "" {
		sysInfo.Arch = info.KernelArch
	}
	logger.WithField("platform", info.Platform).Debug("Collected host information")
	return sysInfo, nil
}
