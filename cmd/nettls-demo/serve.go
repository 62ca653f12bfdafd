// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"net"

	"github.com/spf13/cobra"

	nettlsCreds "nettls/internal/nettls/creds"
	nettlsEndpoint "nettls/internal/nettls/endpoint"
	nettlsEngine "nettls/internal/nettls/engine"
	nettlsTLSConfig "nettls/internal/nettls/tlsconfig"
)

func newServeCommand() *cobra.Command {
	var (
		addr         string
		dnsName      string
		manifestPath string
		devMode      bool
		priority     string
		peerAuth     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Accept one TLS connection, echo a line, and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, serveOptions{
				addr:         addr,
				dnsName:      dnsName,
				manifestPath: manifestPath,
				devMode:      devMode,
				priority:     priority,
				peerAuth:     peerAuth,
			})
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:8443", "address to listen on")
	cmd.Flags().StringVar(&dnsName, "dns-name", "localhost", "DNS name presented in the dev-mode server certificate")
	cmd.Flags().StringVar(&manifestPath, "manifest", "", "path to a credential manifest YAML file")
	cmd.Flags().BoolVar(&devMode, "dev", false, "mint an ephemeral self-signed CA and server certificate instead of loading a manifest")
	cmd.Flags().StringVar(&priority, "priority", "NORMAL", "GnuTLS-style priority string")
	cmd.Flags().StringVar(&peerAuth, "peer-auth", "none", "peer authentication policy: none, optional, required")

	return cmd
}

type serveOptions struct {
	addr         string
	dnsName      string
	manifestPath string
	devMode      bool
	priority     string
	peerAuth     string
}

func runServe(cmd *cobra.Command, opts serveOptions) error {
	out := cmd.OutOrStdout()

	credentials, err := loadServerCredentials(opts)
	if err != nil {
		return err
	}

	peerAuth, err := parsePeerAuth(opts.peerAuth)
	if err != nil {
		return err
	}

	config, err := nettlsTLSConfig.NewBuilder().
		WithPriority(opts.priority).
		WithCredentials(credentials).
		WithPeerAuth(peerAuth).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build server configuration: %w", err)
	}

	listener, err := net.Listen("tcp", opts.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", opts.addr, err)
	}
	defer listener.Close()

	fmt.Fprintf(out, "listening on %s (dev=%v)\n", listener.Addr(), opts.devMode)

	conn, err := listener.Accept()
	if err != nil {
		return fmt.Errorf("failed to accept connection: %w", err)
	}
	defer conn.Close()

	ep, err := nettlsEndpoint.New(nettlsEngine.RoleServer, NewConnTransport(conn), "", config)
	if err != nil {
		return fmt.Errorf("failed to create endpoint: %w", err)
	}

	echoed, err := runEchoSession(ep, "server", "")
	if err != nil {
		return fmt.Errorf("session failed: %w", err)
	}

	fmt.Fprintf(out, "echoed %d bytes: %q\n", len(echoed), echoed)

	return nil
}

func loadServerCredentials(opts serveOptions) (*nettlsCreds.Credentials, error) {
	if opts.devMode {
		return devModeCredentials(opts.dnsName)
	}

	if opts.manifestPath == "" {
		return nil, fmt.Errorf("either --dev or --manifest must be given")
	}

	manifest, err := LoadManifest(opts.manifestPath)
	if err != nil {
		return nil, err
	}

	return manifest.BuildCredentials()
}

func parsePeerAuth(value string) (nettlsTLSConfig.PeerAuth, error) {
	switch value {
	case "none", "":
		return nettlsTLSConfig.PeerAuthNone, nil
	case "optional":
		return nettlsTLSConfig.PeerAuthOptional, nil
	case "required":
		return nettlsTLSConfig.PeerAuthRequired, nil
	default:
		return 0, fmt.Errorf("unknown peer-auth policy %q", value)
	}
}
