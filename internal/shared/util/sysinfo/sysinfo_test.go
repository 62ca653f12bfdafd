// Copyright (c) 2025 Justin Cranford
//
//

package sysinfo

import (
	"fmt"
	"runtime"
	"testing"
	"time"


	nettlsMagic "nettls/internal/shared/magic"

	"github.com/stretchr/testify/require"
)

// Operating system constants for platform-specific test skipping.

var testSysInfoProviders = []SysInfoProvider{mockSysInfoProvider, defaultSysInfoProvider}

func TestSysInfo(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name   string
		testFn func(t *testing.T, provider SysInfoProvider)
	}{
		{
			name: "runtime_go_arch",
			testFn: func(t *testing.T, provider SysInfoProvider) {
				t.Helper()

				start := time.Now().UTC()
				arch := provider.RuntimeGoArch()
				fmt.Printf("Time: %.3f msec >>> RuntimeGoArch: %s\n", float32(time.Since(start).Microseconds())/1000, arch)
				require.NotEmpty(t, arch)
			},
		},
		{
			name: "runtime_go_os",
			testFn: func(t *testing.T, provider SysInfoProvider) {
				t.Helper()

				start := time.Now().UTC()
				os := provider.RuntimeGoOS()
				fmt.Printf("Time: %.3f msec >>> RuntimeGoOS: %s\n", float32(time.Since(start).Microseconds())/1000, os)
				require.NotEmpty(t, os)
			},
		},
		{
			name: "runtime_num_cpu",
			testFn: func(t *testing.T, provider SysInfoProvider) {
				t.Helper()

				start := time.Now().UTC()
				numCPU := provider.RuntimeNumCPU()
				fmt.Printf("Time: %.3f msec >>> RuntimeNumCPU: %d\n", float32(time.Since(start).Microseconds())/1000, numCPU)
				require.NotZero(t, numCPU)
			},
		},
		{
			name: "cpu_info",
			testFn: func(t *testing.T, provider SysInfoProvider) {
				t.Helper()

				// Skip real provider on Windows - CPU info collection can take 10+ seconds
				// which exceeds the 10-second timeout set in cpuInfoTimeout.
				// The mock provider covers the code paths without the timeout risk.
				if _, isMock := provider.(*MockSysInfoProvider); !isMock {
					if runtime.GOOS == nettlsMagic.OSNameWindows {
						t.Skip("Skipping real CPU info test on Windows due to slow gopsutil collection")
					}
				}

				start := time.Now().UTC()
				vendorID, family, physicalID, modelName, err := provider.CPUInfo()
				fmt.Printf("Time: %.3f msec >>> CPUInfo: VendorID=%s, Family=%s, PhysicalID=%s, ModelName=%s\n", float32(time.Since(start).Microseconds())/1000, vendorID, family, physicalID, modelName)
				require.NoError(t, err)
				require.NotEmpty(t, vendorID, "vendorID was empty")
				require.NotEmpty(t, family, "family was empty")
				require.NotEmpty(t, physicalID, "physicalID was empty")
				require.NotEmpty(t, modelName, "modelName was empty")
			},
		},

		{
			name: "ram_size",
			testFn: func(t *testing.T, provider SysInfoProvider) {
				t.Helper()

				start := time.Now().UTC()
				ramSize, err := provider.RAMSize()
				fmt.Printf("Time: %.3f msec >>> RAMSize: %d\n", float32(time.Since(start).Microseconds())/1000, ramSize)
				require.NoError(t, err)
				require.NotZero(t, ramSize)
			},
		},
		{
			name: "ram_size_error_handling",
			testFn: func(t *testing.T, provider SysInfoProvider) {
				t.Helper()
				// Real provider returns error only on context timeout or API failure
				// Mock provider always returns success
				// Nothing further is checked for the real provider
				if _, ok := provider.(*MockSysInfoProvider); ok {
					t.Skip("Mock provider cannot simulate errors")
				}
			},
		},
		{
			name: "os_hostname",
			testFn: func(t *testing.T, provider SysInfoProvider) {
				t.Helper()

				start := time.Now().UTC()
				hostname, err := provider.OSHostname()
				fmt.Printf("Time: %.3f msec >>> OSHostname: %s\n", float32(time.Since(start).Microseconds())/1000, hostname)
				require.NoError(t, err)
				require.NotEmpty(t, hostname)
			},
		},
		{
			name: "os_hostname_error_handling",
			testFn: func(t *testing.T, provider SysInfoProvider) {
				t.Helper()
				// Real provider returns error only on os.Hostname() failure
				// Mock provider always returns success
				// Nothing further is checked for the real provider
				if _, ok := provider.(*MockSysInfoProvider); ok {
					t.Skip("Mock provider cannot simulate errors")
				}
			},
		},
		{
			name: "host_id",
			testFn: func(t *testing.T, provider SysInfoProvider) {
				t.Helper()

				start := time.Now().UTC()
				hostID, err := provider.HostID()
				fmt.Printf("Time: %.3f msec >>> HostID: %s\n", float32(time.Since(start).Microseconds())/1000, hostID)
				require.NoError(t, err)
				require.NotEmpty(t, hostID)
			},
		},
		{
			name: "host_id_error_handling",
			testFn: func(t *testing.T, provider SysInfoProvider) {
				t.Helper()
				// Real provider returns error only on context timeout or API failure
				// Mock provider always returns success
				// Nothing further is checked for the real provider
				if _, ok := provider.(*MockSysInfoProvider); ok {
					t.Skip("Mock provider cannot simulate errors")
				}
			},
		},
		{
			name: "user_info",
			testFn: func(t *testing.T, provider SysInfoProvider) {
				t.Helper()

				start := time.Now().UTC()
				userID, groupID, username, err := provider.UserInfo()
				fmt.Printf("Time: %.3f msec >>> UserInfo: UserID=%s, GroupID=%s, Username=%s\n", float32(time.Since(start).Microseconds())/1000, userID, groupID, username)
				require.NoError(t, err)
				require.NotEmpty(t, userID)
				require.NotEmpty(t, groupID)
				require.NotEmpty(t, username)
			},
		},
		{
			name: "user_info_error_handling",
			testFn: func(t *testing.T, provider SysInfoProvider) {
				t.Helper()
				// Real provider returns error only on user.Current() failure
				// Mock provider always returns success
				// Nothing further is checked for the real provider
				if _, ok := provider.(*MockSysInfoProvider); ok {
					t.Skip("Mock provider cannot simulate errors")
				}
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for _, provider := range testSysInfoProviders {
				tc.testFn(t, provider)
			}
		})
	}
}
