// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

// Package main provides nettls-demo, a small CLI exercising the
// internal/nettls endpoint abstraction layer over a real TCP connection:
// "serve" accepts one connection and echoes a line back, "dial" sends one
// line and prints the echo, and "status" reports host facts via
// internal/shared/util/sysinfo.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "nettls-demo",
		Short: "Exercise the nettls endpoint abstraction layer over TCP",
	}

	cmd.AddCommand(newServeCommand())
	cmd.AddCommand(newDialCommand())
	cmd.AddCommand(newStatusCommand())

	return cmd
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
