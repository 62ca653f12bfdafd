// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	nettlsCreds "nettls/internal/nettls/creds"
)

// CredentialManifest is the optional YAML file naming PEM files to load into
// a Credentials bundle (SPEC_FULL DOMAIN STACK's "Config manifest").
type CredentialManifest struct {
	SystemTrust bool             `yaml:"system-trust"`
	Trust       []string         `yaml:"trust"`
	Revoke      []string         `yaml:"revoke"`
	Identities  []ManifestKeyRef `yaml:"identities"`
}

// ManifestKeyRef names one identity's certificate chain and private key PEM
// files, with an optional password for an encrypted key.
type ManifestKeyRef struct {
	CertFile string `yaml:"cert-file"`
	KeyFile  string `yaml:"key-file"`
	Password string `yaml:"password,omitempty"`
}

// LoadManifest reads and parses a CredentialManifest YAML file.
func LoadManifest(path string) (*CredentialManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credential manifest %s: %w", path, err)
	}

	var manifest CredentialManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse credential manifest %s: %w", path, err)
	}

	return &manifest, nil
}

// BuildCredentials turns a CredentialManifest into a Credentials bundle via
// internal/nettls/creds.Builder.
func (m *CredentialManifest) BuildCredentials() (*nettlsCreds.Credentials, error) {
	builder := nettlsCreds.NewBuilder().WithSystemTrust(m.SystemTrust)

	for _, path := range m.Trust {
		builder = builder.AddTrust(nettlsCreds.PemFileCertSource{Path: path})
	}

	for _, path := range m.Revoke {
		builder = builder.AddRevoke(nettlsCreds.PemFileCRLSource{Path: path})
	}

	for _, id := range m.Identities {
		var password []byte
		if id.Password != "" {
			password = []byte(id.Password)
		}

		builder = builder.AddIdentity(
			nettlsCreds.PemFileCertSource{Path: id.CertFile},
			nettlsCreds.PemFileKeySource{Path: id.KeyFile},
			password,
		)
	}

	return builder.Build()
}
