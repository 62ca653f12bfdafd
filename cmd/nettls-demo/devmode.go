// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

package main

import (
	"crypto/tls"
	"fmt"

	nettlsCreds "nettls/internal/nettls/creds"
	nettlsCertificate "nettls/internal/shared/crypto/certificate"
	nettlsTLS "nettls/internal/shared/crypto/tls"
)

// devModeCredentials mints an ephemeral self-signed CA and a server leaf
// certificate for dnsName, so `serve --dev` works without an external PKI.
// Never used by real credential loading paths (manifest.go / creds.Builder).
func devModeCredentials(dnsName string) (*nettlsCreds.Credentials, error) {
	chain, err := nettlsTLS.CreateCAChain(nettlsTLS.DefaultCAChainOptions(dnsName))
	if err != nil {
		return nil, fmt.Errorf("failed to create dev-mode CA chain: %w", err)
	}

	serverSubject, err := chain.CreateEndEntity(nettlsTLS.ServerEndEntityOptions(dnsName, []string{dnsName}, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to issue dev-mode server certificate: %w", err)
	}

	tlsCert, rootPool, _, err := nettlsCertificate.BuildTLSCertificate(serverSubject)
	if err != nil {
		return nil, fmt.Errorf("failed to build dev-mode TLS certificate: %w", err)
	}

	return &nettlsCreds.Credentials{
		TrustPool:  rootPool,
		Identities: []tls.Certificate{*tlsCert},
	}, nil
}
