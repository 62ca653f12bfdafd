// Copyright (c) 2025 Justin Cranford
//
//

// Package tlsconfig implements the Configuration component (SPEC_FULL
// §4.3): an immutable, shareable tuple of priority string, DH parameters,
// peer-authentication policy, credentials, user verify hook, and name-check
// policy, built once and handed to one or more endpoints.
package tlsconfig

import (
	"crypto/dsa" //nolint:staticcheck // DH parameter material reuses dsa.Parameters' (P, G) shape; no DSA signing involved.
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"math/big"
	"strings"

	nettlsCreds "nettls/internal/nettls/creds"
)

// PeerAuth is the peer-authentication policy.
type PeerAuth int

const (
	PeerAuthNone PeerAuth = iota
	PeerAuthOptional
	PeerAuthRequired
)

// VerifyHook is invoked after chain and name validation; returning false
// fails the handshake with UserVerificationFailed.
type VerifyHook func(chain []*x509.Certificate) bool

// ConfigError wraps a failure building a Configuration, including a
// priority string the engine could not parse.
type ConfigError struct {
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nettls/tlsconfig: %s: %v", e.Reason, e.Err)
	}

	return "nettls/tlsconfig: " + e.Reason
}

func (e *ConfigError) Unwrap() error { return e.Err }

// DHParams holds Diffie-Hellman domain parameters for cipher suites that
// need them (legacy non-ECDHE key exchange; crypto/tls itself only offers
// ECDHE/X25519 groups, so these are surfaced for completeness and for
// engines that do support classic DH, matching the GnuTLS-inspired
// priority model).
type DHParams struct {
	P *big.Int
	G *big.Int
}

// Config is the immutable result of Builder.Build.
type Config struct {
	Priority          string
	MinVersion        uint16
	MaxVersion        uint16
	CipherSuites      []uint16
	DHParams          *DHParams
	PeerAuth          PeerAuth
	Credentials       *nettlsCreds.Credentials
	VerifyHook        VerifyHook
	PeerNameUnchecked bool
}

// Builder collects Configuration fields before Build assembles them.
type Builder struct {
	priority          string
	dhParams          *DHParams
	peerAuth          PeerAuth
	credentials       *nettlsCreds.Credentials
	verifyHook        VerifyHook
	peerNameUnchecked bool
}

func NewBuilder() *Builder { return &Builder{priority: "NORMAL"} }

func (b *Builder) WithPriority(priority string) *Builder {
	b.priority = priority
	return b
}

func (b *Builder) WithDHParams(p DHParams) *Builder {
	b.dhParams = &p
	return b
}

// WithDHParamsGenerated generates fresh DH domain parameters using
// crypto/dsa's parameter generator (the stdlib's only DH-shaped parameter
// generator; its primes are not safe primes): 2048-bit (L2048N256) when
// bits >= 2048, otherwise 1024-bit (L1024N160). It is for engines/priority
// strings that still enable classic (EC)DHE_DSS-style key exchange.
func (b *Builder) WithDHParamsGenerated(bits int) (*Builder, error) {
	var params dsa.Parameters

	sizes := dsa.L1024N160
	if bits >= 2048 {
		sizes = dsa.L2048N256
	}

	if err := dsa.GenerateParameters(&params, rand.Reader, sizes); err != nil {
		return nil, fmt.Errorf("failed to generate DH parameters: %w", err)
	}

	b.dhParams = &DHParams{P: params.P, G: params.G}

	return b, nil
}

func (b *Builder) WithPeerAuth(policy PeerAuth) *Builder {
	b.peerAuth = policy
	return b
}

func (b *Builder) WithCredentials(c *nettlsCreds.Credentials) *Builder {
	b.credentials = c
	return b
}

func (b *Builder) WithVerifyHook(hook VerifyHook) *Builder {
	b.verifyHook = hook
	return b
}

func (b *Builder) WithPeerNameUnchecked(unchecked bool) *Builder {
	b.peerNameUnchecked = unchecked
	return b
}

// Build parses the priority string through the (simulated) engine and
// assembles the Configuration.
func (b *Builder) Build() (*Config, error) {
	minVersion, maxVersion, suites, err := parsePriority(b.priority)
	if err != nil {
		return nil, &ConfigError{Reason: "failed to parse priority string", Err: err}
	}

	return &Config{
		Priority:          b.priority,
		MinVersion:        minVersion,
		MaxVersion:        maxVersion,
		CipherSuites:      suites,
		DHParams:          b.dhParams,
		PeerAuth:          b.peerAuth,
		Credentials:       b.credentials,
		VerifyHook:        b.verifyHook,
		PeerNameUnchecked: b.peerNameUnchecked,
	}, nil
}

var versionTokens = map[string]uint16{
	"VERS-TLS1.0": tls.VersionTLS10,
	"VERS-TLS1.1": tls.VersionTLS11,
	"VERS-TLS1.2": tls.VersionTLS12,
	"VERS-TLS1.3": tls.VersionTLS13,
}

// parsePriority accepts "NORMAL" (the engine's default priority, TLS 1.2
// through 1.3 with the Go stdlib's default cipher suite selection) or a
// colon-separated GnuTLS-style priority string of "+VERS-TLS1.x" /
// "-VERS-TLS1.x" tokens narrowing the allowed version range: if any "+"
// token is present only the "+" versions are allowed, otherwise TLS 1.0
// through 1.3 start allowed; "-" tokens then remove versions. Unknown
// tokens are rejected, mirroring the engine propagating a parse failure.
func parsePriority(priority string) (minVersion, maxVersion uint16, suites []uint16, err error) {
	if priority == "" || priority == "NORMAL" {
		return tls.VersionTLS12, tls.VersionTLS13, nil, nil
	}

	allowed := map[uint16]bool{
		tls.VersionTLS10: true,
		tls.VersionTLS11: true,
		tls.VersionTLS12: true,
		tls.VersionTLS13: true,
	}

	tokens := strings.Split(priority, ":")
	for _, token := range tokens {
		if strings.HasPrefix(strings.TrimSpace(token), "+") {
			allowed = map[uint16]bool{}
			break
		}
	}

	for _, token := range tokens {
		token = strings.TrimSpace(token)
		if token == "" || token == "NORMAL" {
			continue
		}

		sign := token[0]
		if sign != '+' && sign != '-' {
			return 0, 0, nil, fmt.Errorf("priority token %q must start with '+' or '-'", token)
		}

		name := token[1:]

		version, ok := versionTokens[name]
		if !ok {
			return 0, 0, nil, fmt.Errorf("unrecognized priority token: %q", token)
		}

		allowed[version] = sign == '+'
	}

	minVersion, maxVersion = 0, 0

	for _, v := range []uint16{tls.VersionTLS10, tls.VersionTLS11, tls.VersionTLS12, tls.VersionTLS13} {
		if !allowed[v] {
			continue
		}

		if minVersion == 0 {
			minVersion = v
		}

		maxVersion = v
	}

	if minVersion == 0 {
		return 0, 0, nil, fmt.Errorf("priority string %q disables every supported TLS version", priority)
	}

	return minVersion, maxVersion, nil, nil
}

// ToStdlibConfig translates Config into a *tls.Config suitable for
// internal/nettls/engine, given the endpoint's role and an optional
// expected peer name for client-side server-name verification.
func (c *Config) ToStdlibConfig(isServer bool, peerName string) *tls.Config {
	cfg := &tls.Config{
		MinVersion: c.MinVersion,
		MaxVersion: c.MaxVersion,
		ServerName: peerName,
	}

	if c.Credentials != nil {
		cfg.Certificates = c.Credentials.Identities
		cfg.RootCAs = c.Credentials.TrustPool
		cfg.ClientCAs = c.Credentials.TrustPool
	}

	if isServer {
		switch c.PeerAuth {
		case PeerAuthRequired:
			cfg.ClientAuth = tls.RequireAndVerifyClientCert
		case PeerAuthOptional:
			cfg.ClientAuth = tls.VerifyClientCertIfGiven
		default:
			cfg.ClientAuth = tls.NoClientCert
		}
	} else {
		// Chain, hostname, and client-cert-presence checks are all deferred to
		// the endpoint's explicit Verify step (SPEC_FULL §4.4): hello only
		// drives the handshake. Letting crypto/tls enforce verification here
		// too would make it run (and fail) before Verify ever gets a chance to
		// produce NameVerificationFailedError / CertVerificationFailedError.
		cfg.InsecureSkipVerify = true
	}

	return cfg
}
