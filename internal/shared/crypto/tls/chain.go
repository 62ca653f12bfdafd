// Copyright (c) 2025 Justin Cranford
//
//

// Package tls builds CA chains and end-entity certificates for development
// and test environments that need a working TLS listener without an
// external PKI, and assembles the results into server/client tls.Config
// values.
package tls

import (
	"crypto/elliptic"
	"crypto/x509"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	nettlsCertificate "nettls/internal/shared/crypto/certificate"
	nettlsKeyGen "nettls/internal/shared/crypto/keygen"
	nettlsMagic "nettls/internal/shared/magic"
)

// ECCurve selects the elliptic curve used for generated CA and end-entity
// keys.
type ECCurve int

const (
	CurveP256 ECCurve = iota
	CurveP384
	CurveP521
)

func curveFor(curve ECCurve) elliptic.Curve {
	switch curve {
	case CurveP384:
		return elliptic.P384()
	case CurveP521:
		return elliptic.P521()
	default:
		return elliptic.P256()
	}
}

// CNStyle selects how CAChainOptions.CommonNamePrefix is validated: as an
// FQDN (subject to ValidateFQDN) or as free-form descriptive text.
type CNStyle int

const (
	CNStyleFQDN CNStyle = iota
	CNStyleDescriptive
)

const defaultCADuration = nettlsMagic.TLSDefaultValidityCACertYears * 365 * 24 * time.Hour

const defaultEndEntityDuration = 365 * 24 * time.Hour

// CAChainOptions configures CreateCAChain.
type CAChainOptions struct {
	ChainLength      int
	CommonNamePrefix string
	CNStyle          CNStyle
	Duration         time.Duration
	Curve            ECCurve
}

// DefaultCAChainOptions returns a single self-signed root CA, FQDN-style
// naming, using commonNamePrefix as both the root's and the chain's name.
func DefaultCAChainOptions(commonNamePrefix string) *CAChainOptions {
	return &CAChainOptions{
		ChainLength:      1,
		CommonNamePrefix: commonNamePrefix,
		CNStyle:          CNStyleFQDN,
		Duration:         defaultCADuration,
		Curve:            CurveP256,
	}
}

// CAChain is a generated CA hierarchy, root first and issuing (most
// subordinate) CA last.
type CAChain struct {
	CAs       []*nettlsCertificate.Subject
	RootCA    *nettlsCertificate.Subject
	IssuingCA *nettlsCertificate.Subject
}

// Indirections over keygen/certificate so tests can inject failures without
// reaching into the file system or real cryptographic primitives.
var (
	chainGenerateECDSAKeyPairFn   = nettlsKeyGen.GenerateECDSAKeyPair
	chainCreateCASubjectsFn       = nettlsCertificate.CreateCASubjects
	chainCreateEndEntitySubjectFn = nettlsCertificate.CreateEndEntitySubject
)

// ValidateFQDN checks name against RFC 1035 length and label rules.
func ValidateFQDN(name string) error {
	if name == "" {
		return fmt.Errorf("fqdn cannot be empty")
	}

	if len(name) > nettlsMagic.FQDNMaxLength {
		return fmt.Errorf("fqdn too long: %d characters exceeds maximum of %d", len(name), nettlsMagic.FQDNMaxLength)
	}

	labels := strings.Split(name, ".")

	for _, label := range labels {
		if label == "" {
			return fmt.Errorf("fqdn %q has an empty label", name)
		}

		if len(label) > nettlsMagic.FQDNLabelMaxLength {
			return fmt.Errorf("fqdn %q: label too long: %d characters exceeds maximum of %d", name, len(label), nettlsMagic.FQDNLabelMaxLength)
		}

		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return fmt.Errorf("fqdn %q: label %q cannot start or end with a hyphen", name, label)
		}

		for _, r := range label {
			isAlnum := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
			if !isAlnum && r != '-' {
				return fmt.Errorf("fqdn %q: label %q contains invalid character %q", name, label, r)
			}
		}
	}

	return nil
}

// CreateCAChain builds a ChainLength-deep CA hierarchy under
// opts.CommonNamePrefix.
func CreateCAChain(opts *CAChainOptions) (*CAChain, error) {
	if opts == nil {
		return nil, fmt.Errorf("options cannot be nil")
	}

	if opts.ChainLength <= 0 {
		return nil, fmt.Errorf("chain length must be positive")
	}

	if opts.CommonNamePrefix == "" {
		return nil, fmt.Errorf("common name prefix cannot be empty")
	}

	if opts.Duration <= 0 {
		return nil, fmt.Errorf("duration must be positive")
	}

	if opts.CNStyle == CNStyleFQDN {
		if err := ValidateFQDN(opts.CommonNamePrefix); err != nil {
			return nil, fmt.Errorf("invalid common name prefix: %w", err)
		}
	}

	curve := curveFor(opts.Curve)

	keyPairs := make([]*nettlsKeyGen.KeyPair, opts.ChainLength)

	for i := range keyPairs {
		kp, err := chainGenerateECDSAKeyPairFn(curve)
		if err != nil {
			return nil, fmt.Errorf("failed to generate CA key pair %d: %w", i, err)
		}

		keyPairs[i] = kp
	}

	subjects, err := chainCreateCASubjectsFn(keyPairs, opts.CommonNamePrefix, opts.Duration)
	if err != nil {
		return nil, fmt.Errorf("failed to create CA subjects: %w", err)
	}

	// CreateCASubjects clears PrivateKey on its returned subjects; restore it
	// here since the chain needs it to sign end-entity certificates later.
	for i, subject := range subjects {
		subject.KeyMaterial.PrivateKey = keyPairs[i].Private
	}

	return &CAChain{
		CAs:       subjects,
		RootCA:    subjects[0],
		IssuingCA: subjects[len(subjects)-1],
	}, nil
}

// RootCAsPool returns a pool containing only the chain's root CA
// certificate.
func (c *CAChain) RootCAsPool() *x509.CertPool {
	pool := x509.NewCertPool()
	pool.AddCert(c.RootCA.KeyMaterial.CertificateChain[0])

	return pool
}

// IntermediateCAsPool returns a pool containing every CA in the chain
// except the root.
func (c *CAChain) IntermediateCAsPool() *x509.CertPool {
	pool := x509.NewCertPool()

	for i := 1; i < len(c.CAs); i++ {
		pool.AddCert(c.CAs[i].KeyMaterial.CertificateChain[0])
	}

	return pool
}

// EndEntityOptions configures CAChain.CreateEndEntity.
type EndEntityOptions struct {
	SubjectName    string
	DNSNames       []string
	IPAddresses    []net.IP
	EmailAddresses []string
	URIs           []*url.URL
	Duration       time.Duration
	KeyUsage       x509.KeyUsage
	ExtKeyUsage    []x509.ExtKeyUsage
	Curve          ECCurve
}

// CreateEndEntity issues a leaf certificate signed by c.IssuingCA.
func (c *CAChain) CreateEndEntity(opts *EndEntityOptions) (*nettlsCertificate.Subject, error) {
	if opts == nil {
		return nil, fmt.Errorf("options cannot be nil")
	}

	if opts.SubjectName == "" {
		return nil, fmt.Errorf("subject name cannot be empty")
	}

	if c.IssuingCA == nil {
		return nil, fmt.Errorf("no issuing CA available")
	}

	duration := opts.Duration
	if duration <= 0 {
		duration = defaultEndEntityDuration
	}

	kp, err := chainGenerateECDSAKeyPairFn(curveFor(opts.Curve))
	if err != nil {
		return nil, fmt.Errorf("failed to generate end entity key pair: %w", err)
	}

	subject, err := chainCreateEndEntitySubjectFn(
		c.IssuingCA, kp, opts.SubjectName, duration,
		opts.DNSNames, opts.IPAddresses, opts.EmailAddresses, opts.URIs,
		opts.KeyUsage, opts.ExtKeyUsage,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create end entity subject: %w", err)
	}

	return subject, nil
}

// ServerEndEntityOptions builds options for a TLS server leaf certificate.
func ServerEndEntityOptions(name string, dnsNames []string, ipAddresses []net.IP) *EndEntityOptions {
	return &EndEntityOptions{
		SubjectName: name,
		DNSNames:    dnsNames,
		IPAddresses: ipAddresses,
		KeyUsage:    x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
}

// ClientEndEntityOptions builds options for a TLS client leaf certificate.
func ClientEndEntityOptions(name string) *EndEntityOptions {
	return &EndEntityOptions{
		SubjectName: name,
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
}
