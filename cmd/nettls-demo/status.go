// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	nettlsSysInfo "nettls/internal/shared/util/sysinfo"
)

func newStatusCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report host and process facts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStatus(cmd, nettlsSysInfo.Default())
		},
	}
}

func runStatus(cmd *cobra.Command, provider nettlsSysInfo.SysInfoProvider) error {
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "GOOS:       %s\n", provider.RuntimeGoOS())
	fmt.Fprintf(out, "GOARCH:     %s\n", provider.RuntimeGoArch())
	fmt.Fprintf(out, "NumCPU:     %d\n", provider.RuntimeNumCPU())

	if vendorID, family, physicalID, modelName, err := provider.CPUInfo(); err == nil {
		fmt.Fprintf(out, "CPU:        vendor=%s family=%s physical_id=%s model=%s\n", vendorID, family, physicalID, modelName)
	}

	if ramBytes, err := provider.RAMSize(); err == nil {
		fmt.Fprintf(out, "RAM bytes:  %d\n", ramBytes)
	}

	if hostname, err := provider.OSHostname(); err == nil {
		fmt.Fprintf(out, "Hostname:   %s\n", hostname)
	}

	if hostID, err := provider.HostID(); err == nil {
		fmt.Fprintf(out, "Host ID:    %s\n", hostID)
	}

	if uid, gid, username, err := provider.UserInfo(); err == nil {
		fmt.Fprintf(out, "User:       uid=%s gid=%s username=%s\n", uid, gid, username)
	}

	return nil
}
