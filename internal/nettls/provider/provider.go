// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

// Package provider is the facade over the whole nettls domain (SPEC_FULL §6
// External Interfaces): a single entry point exposing credential/config
// construction, endpoint lifecycle operations, stash/restore, session-cache
// wiring, and sentinel-code-to-human-text translation, so a caller (the demo
// CLI, or an embedding application) never has to reach into
// internal/nettls/* sub-packages directly.
package provider

import (
	"context"
	"sync"

	nettlsCreds "nettls/internal/nettls/creds"
	nettlsEndpoint "nettls/internal/nettls/endpoint"
	nettlsEngine "nettls/internal/nettls/engine"
	nettlsErrtrans "nettls/internal/nettls/errtrans"
	nettlsSessionCache "nettls/internal/nettls/sessioncache"
	nettlsTLSConfig "nettls/internal/nettls/tlsconfig"
)

// TlsProvider is the capability surface a caller (the demo CLI, or an
// embedding application) drives instead of reaching into internal/nettls/*
// sub-packages directly (SPEC_FULL §6 External Interfaces, §9 "dynamic
// dispatch over a provider"). Implementation names the concrete provider
// backing the interface, standing in for the source's boxed
// self-reference.
type TlsProvider interface {
	Implementation() string

	CreateX509Credentials(
		systemTrust bool,
		trust []nettlsCreds.CertSource,
		revoke []nettlsCreds.CRLSource,
		identities []Identity,
	) (*nettlsCreds.Credentials, error)

	CreateConfig(
		peerAuth nettlsTLSConfig.PeerAuth,
		credentials *nettlsCreds.Credentials,
		opts ConfigOptions,
	) (*nettlsTLSConfig.Config, error)

	CreateEndpoint(
		role nettlsEngine.Role,
		transport nettlsEndpoint.Transport,
		peerName string,
		config *nettlsTLSConfig.Config,
	) (*nettlsEndpoint.Endpoint, error)

	ResumeClient(
		transport nettlsEndpoint.Transport,
		peerName string,
		config *nettlsTLSConfig.Config,
		sessionBlob []byte,
	) (*nettlsEndpoint.Endpoint, error)

	StashEndpoint(ep *nettlsEndpoint.Endpoint) *nettlsEndpoint.StashToken
	RestoreEndpoint(token *nettlsEndpoint.StashToken, transport nettlsEndpoint.Transport) *nettlsEndpoint.Endpoint
	SetSessionCache(ctx context.Context, ep *nettlsEndpoint.Endpoint, store nettlsSessionCache.Store)
	ErrorMessage(err error) string
}

// Provider is the reference TlsProvider implementation. It holds no mutable
// state of its own beyond what's needed to mint new Credentials/Config/
// Endpoint values; all per-connection state lives on the returned
// *endpoint.Endpoint.
type Provider struct {
	name string
}

// New constructs a Provider. Kept as a constructor (rather than a package
// value) so a future version can carry shared resources (e.g. a pooled DH
// parameter cache) without an API break.
func New() *Provider {
	return &Provider{name: "nettls"}
}

// Implementation names this provider, matching SPEC_FULL §2/§9's "names
// implementation" responsibility.
func (p *Provider) Implementation() string {
	return p.name
}

var (
	defaultMu       sync.RWMutex
	defaultProvider TlsProvider = New()
)

// Default returns the process-wide default TlsProvider. Safe for concurrent
// use; reflects the most recent SetDefault call (or the built-in Provider
// registered at package init).
func Default() TlsProvider {
	defaultMu.RLock()
	defer defaultMu.RUnlock()

	return defaultProvider
}

// SetDefault replaces the process-wide default TlsProvider, the re-architected
// form of the source's "provider registers itself as the process-wide
// default" (SPEC_FULL §9). Embedding applications supplying their own
// TlsProvider call this once at startup before anything calls Default.
func SetDefault(p TlsProvider) {
	defaultMu.Lock()
	defer defaultMu.Unlock()

	defaultProvider = p
}

// CreateX509Credentials builds a Credentials bundle from system trust,
// additional trust anchors, revocation lists, and identities.
func (p *Provider) CreateX509Credentials(
	systemTrust bool,
	trust []nettlsCreds.CertSource,
	revoke []nettlsCreds.CRLSource,
	identities []Identity,
) (*nettlsCreds.Credentials, error) {
	builder := nettlsCreds.NewBuilder().WithSystemTrust(systemTrust)

	for _, t := range trust {
		builder = builder.AddTrust(t)
	}

	for _, r := range revoke {
		builder = builder.AddRevoke(r)
	}

	for _, id := range identities {
		builder = builder.AddIdentity(id.Cert, id.Key, id.Password)
	}

	return builder.Build()
}

// Identity is one (certificate source, private key source, optional
// password) tuple passed to CreateX509Credentials.
type Identity struct {
	Cert     nettlsCreds.CertSource
	Key      nettlsCreds.PrivateKeySource
	Password []byte
}

// ConfigOptions collects the optional knobs create_config accepts beyond
// the mandatory peer-auth policy and credentials.
type ConfigOptions struct {
	Priority          string
	DHParams          *nettlsTLSConfig.DHParams
	VerifyHook        nettlsTLSConfig.VerifyHook
	PeerNameUnchecked bool
}

// CreateConfig builds an immutable Configuration.
func (p *Provider) CreateConfig(
	peerAuth nettlsTLSConfig.PeerAuth,
	credentials *nettlsCreds.Credentials,
	opts ConfigOptions,
) (*nettlsTLSConfig.Config, error) {
	builder := nettlsTLSConfig.NewBuilder().
		WithPeerAuth(peerAuth).
		WithCredentials(credentials).
		WithPeerNameUnchecked(opts.PeerNameUnchecked)

	if opts.Priority != "" {
		builder = builder.WithPriority(opts.Priority)
	}

	if opts.DHParams != nil {
		builder = builder.WithDHParams(*opts.DHParams)
	}

	if opts.VerifyHook != nil {
		builder = builder.WithVerifyHook(opts.VerifyHook)
	}

	return builder.Build()
}

// CreateEndpoint binds a new Endpoint to transport for the given role.
func (p *Provider) CreateEndpoint(
	role nettlsEngine.Role,
	transport nettlsEndpoint.Transport,
	peerName string,
	config *nettlsTLSConfig.Config,
) (*nettlsEndpoint.Endpoint, error) {
	return nettlsEndpoint.New(role, transport, peerName, config)
}

// ResumeClient creates a client endpoint via endpoint.ResumeClient, which
// ignores sessionBlob, so the handshake is a full one, as with
// CreateEndpoint.
func (p *Provider) ResumeClient(
	transport nettlsEndpoint.Transport,
	peerName string,
	config *nettlsTLSConfig.Config,
	sessionBlob []byte,
) (*nettlsEndpoint.Endpoint, error) {
	return nettlsEndpoint.ResumeClient(transport, peerName, config, sessionBlob)
}

// StashEndpoint detaches ep's transport and returns an opaque token.
func (p *Provider) StashEndpoint(ep *nettlsEndpoint.Endpoint) *nettlsEndpoint.StashToken {
	return ep.Stash()
}

// RestoreEndpoint reattaches a stash token to a new transport.
func (p *Provider) RestoreEndpoint(token *nettlsEndpoint.StashToken, transport nettlsEndpoint.Transport) *nettlsEndpoint.Endpoint {
	return nettlsEndpoint.Restore(token, transport)
}

// SetSessionCache wires ep's session-cache callbacks to store, using ctx for
// every underlying storage call the adapter issues.
func (p *Provider) SetSessionCache(ctx context.Context, ep *nettlsEndpoint.Endpoint, store nettlsSessionCache.Store) {
	storeFn, removeFn, retrieveFn := nettlsSessionCache.Callbacks(ctx, ep, store)
	ep.SetSessionCache(storeFn, removeFn, retrieveFn)
}

// ErrorMessage maps a sentinel error to human text, falling back to the raw
// error's own message for anything this facade doesn't specifically name
// (SPEC_FULL §4.5's "defers to the engine for everything else").
func (p *Provider) ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	switch err.(type) {
	case *nettlsErrtrans.UnexpectedStateError:
		return "operation not allowed in the endpoint's current state"
	case *nettlsErrtrans.CertVerificationFailedError:
		return "peer certificate chain failed verification"
	case *nettlsErrtrans.NameVerificationFailedError:
		return "peer certificate name does not match the expected peer name"
	case *nettlsErrtrans.UserVerificationFailedError:
		return "the configured verify hook rejected the peer"
	case *nettlsErrtrans.NoCertificateError:
		return "no certificate was presented by the peer"
	case *nettlsErrtrans.TLSError:
		return "TLS protocol error: " + err.Error()
	}

	switch err {
	case nettlsErrtrans.ErrEAGAINRead:
		return "operation would block waiting to read from the transport"
	case nettlsErrtrans.ErrEAGAINWrite:
		return "operation would block waiting to write to the transport"
	case nettlsErrtrans.ErrInterrupted:
		return "operation was interrupted and is safe to retry"
	}

	return err.Error()
}
