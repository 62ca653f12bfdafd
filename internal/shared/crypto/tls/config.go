// Copyright (c) 2025 Justin Cranford
//
//

package tls

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net/http"

	nettlsCertificate "nettls/internal/shared/crypto/certificate"
)

// MinTLSVersion is the floor this package enforces for every tls.Config it
// builds or validates.
const MinTLSVersion = tls.VersionTLS13

// configBuildTLSCertificateFn lets tests inject a BuildTLSCertificate
// failure without constructing a broken Subject.
var configBuildTLSCertificateFn = nettlsCertificate.BuildTLSCertificate

// ServerConfigOptions configures NewServerConfig.
type ServerConfigOptions struct {
	Subject      *nettlsCertificate.Subject
	ClientAuth   tls.ClientAuthType
	ClientCAs    *x509.CertPool
	CipherSuites []uint16
}

// ServerTLSConfig is a ready-to-serve tls.Config plus the certificate pools
// a caller may need for out-of-band verification.
type ServerTLSConfig struct {
	TLSConfig          *tls.Config
	RootCAPool         *x509.CertPool
	IntermediateCAPool *x509.CertPool
}

func clientAuthWantsCAs(auth tls.ClientAuthType) bool {
	switch auth {
	case tls.VerifyClientCertIfGiven, tls.RequireAnyClientCert, tls.RequireAndVerifyClientCert:
		return true
	default:
		return false
	}
}

// NewServerConfig builds a server-side tls.Config for opts.Subject. When
// opts.ClientAuth requires verifying client certificates and opts.ClientCAs
// is nil, the subject's own root CA pool is used as the trust anchor.
func NewServerConfig(opts *ServerConfigOptions) (*ServerTLSConfig, error) {
	if opts == nil {
		return nil, fmt.Errorf("options cannot be nil")
	}

	if opts.Subject == nil {
		return nil, fmt.Errorf("subject cannot be nil")
	}

	tlsCert, rootPool, intermediatePool, err := configBuildTLSCertificateFn(opts.Subject)
	if err != nil {
		return nil, fmt.Errorf("failed to build TLS certificate: %w", err)
	}

	clientCAs := opts.ClientCAs
	if clientCAs == nil && clientAuthWantsCAs(opts.ClientAuth) {
		clientCAs = rootPool
	}

	return &ServerTLSConfig{
		TLSConfig: &tls.Config{
			Certificates: []tls.Certificate{*tlsCert},
			MinVersion:   MinTLSVersion,
			ClientAuth:   opts.ClientAuth,
			ClientCAs:    clientCAs,
			CipherSuites: opts.CipherSuites,
		},
		RootCAPool:         rootPool,
		IntermediateCAPool: intermediatePool,
	}, nil
}

// ClientConfigOptions configures NewClientConfig.
type ClientConfigOptions struct {
	ClientSubject *nettlsCertificate.Subject
	RootCAs       *x509.CertPool
	ServerName    string
}

// ClientTLSConfig is a ready-to-dial tls.Config.
type ClientTLSConfig struct {
	TLSConfig *tls.Config
}

// NewClientConfig builds a client-side tls.Config trusting opts.RootCAs and
// presenting opts.ClientSubject's certificate for mTLS when set.
func NewClientConfig(opts *ClientConfigOptions) (*ClientTLSConfig, error) {
	if opts == nil {
		return nil, fmt.Errorf("options cannot be nil")
	}

	cfg := &tls.Config{
		MinVersion: MinTLSVersion,
		RootCAs:    opts.RootCAs,
		ServerName: opts.ServerName,
	}

	if opts.ClientSubject != nil {
		tlsCert, _, _, err := configBuildTLSCertificateFn(opts.ClientSubject)
		if err != nil {
			return nil, fmt.Errorf("failed to build client TLS certificate: %w", err)
		}

		cfg.Certificates = []tls.Certificate{*tlsCert}
	}

	return &ClientTLSConfig{TLSConfig: cfg}, nil
}

// ValidateConfig rejects a tls.Config that falls below MinTLSVersion or
// disables certificate verification.
func ValidateConfig(cfg *tls.Config) error {
	if cfg == nil {
		return fmt.Errorf("config cannot be nil")
	}

	if cfg.MinVersion < MinTLSVersion {
		return fmt.Errorf("TLS version too low: minimum version %#x is below required %#x", cfg.MinVersion, uint16(MinTLSVersion))
	}

	if cfg.InsecureSkipVerify {
		return fmt.Errorf("InsecureSkipVerify must not be set")
	}

	return nil
}

// NewClientForTest returns a plain *http.Client with no TLS configuration,
// for tests that only need a transport to exercise, not a trusted one.
func NewClientForTest() *http.Client {
	return &http.Client{}
}
