// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	nettlsEndpoint "nettls/internal/nettls/endpoint"
	nettlsEngine "nettls/internal/nettls/engine"
	nettlsTLSConfig "nettls/internal/nettls/tlsconfig"
)

func newDialCommand() *cobra.Command {
	var (
		addr         string
		peerName     string
		manifestPath string
		insecure     bool
		priority     string
		line         string
	)

	cmd := &cobra.Command{
		Use:   "dial",
		Short: "Open a TLS connection, send one line, and print the echo",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDial(cmd, dialOptions{
				addr:         addr,
				peerName:     peerName,
				manifestPath: manifestPath,
				insecure:     insecure,
				priority:     priority,
				line:         line,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8443", "address to dial")
	cmd.Flags().StringVar(&peerName, "peer-name", "localhost", "expected server name, checked against the presented certificate")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "path to a credential manifest YAML file naming trusted CAs")
	cmd.Flags().BoolVar(&insecure, "insecure", false, "skip server certificate verification (for use against --dev servers)")
	cmd.Flags().StringVar(&priority, "priority", "NORMAL", "GnuTLS-style priority string")
	cmd.Flags().StringVar(&line, "line", "hello from nettls-demo\n", "line of application data to send")

	return cmd
}

type dialOptions struct {
	addr         string
	peerName     string
	manifestPath string
	insecure     bool
	priority     string
	line         string
}

func runDial(cmd *cobra.Command, opts dialOptions) error {
	out := cmd.OutOrStdout()

	builder := nettlsTLSConfig.NewBuilder().WithPriority(opts.priority)

	peerName := opts.peerName

	if opts.insecure {
		builder = builder.WithPeerAuth(nettlsTLSConfig.PeerAuthNone).WithPeerNameUnchecked(true)
		peerName = ""
	} else {
		if opts.manifestPath == "" {
			return fmt.Errorf("either --insecure or --manifest must be given")
		}

		manifest, err := LoadManifest(opts.manifestPath)
		if err != nil {
			return err
		}

		credentials, err := manifest.BuildCredentials()
		if err != nil {
			return err
		}

		builder = builder.WithCredentials(credentials).WithPeerAuth(nettlsTLSConfig.PeerAuthRequired)
	}

	config, err := builder.Build()
	if err != nil {
		return fmt.Errorf("failed to build client configuration: %w", err)
	}

	conn, err := net.Dial("tcp", opts.addr)
	if err != nil {
		return fmt.Errorf("failed to dial %s: %w", opts.addr, err)
	}
	defer conn.Close()

	ep, err := nettlsEndpoint.New(nettlsEngine.RoleClient, NewConnTransport(conn), peerName, config)
	if err != nil {
		return fmt.Errorf("failed to create endpoint: %w", err)
	}

	echoed, err := runEchoSession(ep, "client", opts.line)
	if err != nil {
		return fmt.Errorf("session failed: %w", err)
	}

	fmt.Fprintf(out, "server echoed %d bytes: %q\n", len(echoed), echoed)

	return nil
}
