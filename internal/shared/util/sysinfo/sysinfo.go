// Copyright (c) 2025 Justin Cranford
//
//

// Package sysinfo collects host/process facts for the demo CLI's status
// subcommand, behind a SysInfoProvider interface so tests can swap in a
// deterministic mock instead of querying the real machine.
package sysinfo

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/mem"
)

const cpuInfoTimeout = 10 * time.Second

// SysInfoProvider reports static and runtime facts about the host.
type SysInfoProvider interface {
	RuntimeGoArch() string
	RuntimeGoOS() string
	RuntimeNumCPU() int
	CPUInfo() (vendorID string, family string, physicalID string, modelName string, err error)
	RAMSize() (uint64, error)
	OSHostname() (string, error)
	HostID() (string, error)
	UserInfo() (userID string, groupID string, username string, err error)
}

type defaultSysInfoProviderType struct{}

var defaultSysInfoProvider SysInfoProvider = &defaultSysInfoProviderType{}

// Default returns the real, gopsutil-backed SysInfoProvider.
func Default() SysInfoProvider { return defaultSysInfoProvider }

func (*defaultSysInfoProviderType) RuntimeGoArch() string { return runtime.GOARCH }

func (*defaultSysInfoProviderType) RuntimeGoOS() string { return runtime.GOOS }

func (*defaultSysInfoProviderType) RuntimeNumCPU() int { return runtime.NumCPU() }

func (*defaultSysInfoProviderType) CPUInfo() (string, string, string, string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cpuInfoTimeout)
	defer cancel()

	infos, err := cpu.InfoWithContext(ctx)
	if err != nil {
		return "", "", "", "", fmt.Errorf("failed to collect CPU info: %w", err)
	}

	if len(infos) == 0 {
		return "", "", "", "", fmt.Errorf("no CPU info available")
	}

	info := infos[0]

	return info.VendorID, info.Family, info.PhysicalID, info.ModelName, nil
}

func (*defaultSysInfoProviderType) RAMSize() (uint64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cpuInfoTimeout)
	defer cancel()

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to collect RAM size: %w", err)
	}

	return vm.Total, nil
}

func (*defaultSysInfoProviderType) OSHostname() (string, error) {
	hostname, err := os.Hostname()
	if err != nil {
		return "", fmt.Errorf("failed to get hostname: %w", err)
	}

	return hostname, nil
}

func (*defaultSysInfoProviderType) HostID() (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), cpuInfoTimeout)
	defer cancel()

	id, err := host.HostIDWithContext(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to get host id: %w", err)
	}

	return id, nil
}

func (*defaultSysInfoProviderType) UserInfo() (string, string, string, error) {
	current, err := user.Current()
	if err != nil {
		return "", "", "", fmt.Errorf("failed to get user info: %w", err)
	}

	return current.Uid, current.Gid, current.Username, nil
}

// MockSysInfoProvider returns fixed values for every call, never an error.
type MockSysInfoProvider struct{}

var mockSysInfoProvider SysInfoProvider = &MockSysInfoProvider{}

func (*MockSysInfoProvider) RuntimeGoArch() string { return runtime.GOARCH }

func (*MockSysInfoProvider) RuntimeGoOS() string { return runtime.GOOS }

func (*MockSysInfoProvider) RuntimeNumCPU() int { return runtime.NumCPU() }

func (*MockSysInfoProvider) CPUInfo() (string, string, string, string, error) {
	return "MockVendor", "MockFamily", "MockPhysicalID", "MockModel", nil
}

func (*MockSysInfoProvider) RAMSize() (uint64, error) {
	return 16 * 1024 * 1024 * 1024, nil
}

func (*MockSysInfoProvider) OSHostname() (string, error) {
	return "mock-host", nil
}

func (*MockSysInfoProvider) HostID() (string, error) {
	return "mock-host-id", nil
}

func (*MockSysInfoProvider) UserInfo() (string, string, string, error) {
	return "1000", "1000", "mockuser", nil
}
