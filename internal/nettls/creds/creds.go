// Copyright (c) 2025 Justin Cranford
//
//

// Package creds implements the Credential Store (SPEC_FULL §4.2): a
// builder that collects trust anchors, CRLs, and (certificate chain,
// private key) identities from PEM files or raw DER/PKCS#7 bytes, and
// assembles them into an immutable Credentials bundle usable by both
// client and server Configurations.
package creds

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	nettlsAsn1 "nettls/internal/shared/crypto/asn1"

	"go.mozilla.org/pkcs7"
)

// CredentialError wraps any failure assembling a Credentials bundle,
// including a mismatched key/chain pair.
type CredentialError struct {
	Reason string
	Err    error
}

func (e *CredentialError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("nettls/creds: %s: %v", e.Reason, e.Err)
	}

	return "nettls/creds: " + e.Reason
}

func (e *CredentialError) Unwrap() error { return e.Err }

// ErrPasswordRequired is returned when a PKCS8Encrypted key source is used
// without a password.
var ErrPasswordRequired = nettlsAsn1.ErrPasswordRequired

// CertSource identifies where to load one or more certificates from.
type CertSource interface{ certSource() }

type PemFileCertSource struct{ Path string }

func (PemFileCertSource) certSource() {}

type DerCertSource struct{ Bytes []byte }

func (DerCertSource) certSource() {}

type PKCS7BundleCertSource struct{ Bytes []byte }

func (PKCS7BundleCertSource) certSource() {}

// CRLSource identifies where to load a CRL from.
type CRLSource interface{ crlSource() }

type PemFileCRLSource struct{ Path string }

func (PemFileCRLSource) crlSource() {}

type DerCRLSource struct{ Bytes []byte }

func (DerCRLSource) crlSource() {}

// PrivateKeySource identifies a private key's origin and DER encoding.
type PrivateKeySource interface{ privateKeySource() }

type PemFileKeySource struct{ Path string }

func (PemFileKeySource) privateKeySource() {}

type RSAKeySource struct{ DER []byte }

func (RSAKeySource) privateKeySource() {}

type ECKeySource struct{ DER []byte }

func (ECKeySource) privateKeySource() {}

type Ed448KeySource struct{ DER []byte }

func (Ed448KeySource) privateKeySource() {}

type PKCS8KeySource struct{ DER []byte }

func (PKCS8KeySource) privateKeySource() {}

type PKCS8EncryptedKeySource struct {
	DER      []byte
	Password []byte
}

func (PKCS8EncryptedKeySource) privateKeySource() {}

// Credentials is the immutable result of Builder.Build: trust anchors,
// revocation lists, and identity certificates ready to hand to a
// Configuration.
type Credentials struct {
	SystemTrust     bool
	TrustPool       *x509.CertPool
	RevocationLists []*x509.RevocationList
	Identities      []tls.Certificate
}

type identityEntry struct {
	cert     CertSource
	key      PrivateKeySource
	password []byte
}

// Builder collects credential material before Build assembles it.
type Builder struct {
	systemTrust bool
	trust       []CertSource
	revoke      []CRLSource
	identities  []identityEntry
}

func NewBuilder() *Builder { return &Builder{} }

// WithSystemTrust loads the platform trust store (via x509.SystemCertPool)
// when enabled is true. There is no option to read system trust anchors
// from a PEM file instead.
func (b *Builder) WithSystemTrust(enabled bool) *Builder {
	b.systemTrust = enabled
	return b
}

func (b *Builder) AddTrust(source CertSource) *Builder {
	b.trust = append(b.trust, source)
	return b
}

func (b *Builder) AddRevoke(source CRLSource) *Builder {
	b.revoke = append(b.revoke, source)
	return b
}

func (b *Builder) AddIdentity(cert CertSource, key PrivateKeySource, password []byte) *Builder {
	b.identities = append(b.identities, identityEntry{cert: cert, key: key, password: password})
	return b
}

// Build assembles the collected sources into a Credentials bundle.
func (b *Builder) Build() (*Credentials, error) {
	creds := &Credentials{SystemTrust: b.systemTrust}

	pool, err := b.buildTrustPool()
	if err != nil {
		return nil, err
	}

	creds.TrustPool = pool

	for _, source := range b.revoke {
		crl, err := loadCRL(source)
		if err != nil {
			return nil, &CredentialError{Reason: "failed to load CRL", Err: err}
		}

		creds.RevocationLists = append(creds.RevocationLists, crl)
	}

	for _, entry := range b.identities {
		certs, err := loadCertChain(entry.cert)
		if err != nil {
			return nil, &CredentialError{Reason: "failed to load identity certificate", Err: err}
		}

		key, err := loadPrivateKey(entry.key, entry.password)
		if err != nil {
			return nil, &CredentialError{Reason: "failed to load identity private key", Err: err}
		}

		tlsCert := tls.Certificate{PrivateKey: key}
		for _, c := range certs {
			tlsCert.Certificate = append(tlsCert.Certificate, c.Raw)
		}

		tlsCert.Leaf = certs[0]

		if err := verifyKeyMatchesChain(key, certs[0]); err != nil {
			return nil, &CredentialError{Reason: "private key does not match certificate", Err: err}
		}

		creds.Identities = append(creds.Identities, tlsCert)
	}

	return creds, nil
}

func (b *Builder) buildTrustPool() (*x509.CertPool, error) {
	var pool *x509.CertPool

	if b.systemTrust {
		sysPool, err := x509.SystemCertPool()
		if err != nil {
			pool = x509.NewCertPool()
		} else {
			pool = sysPool
		}
	} else {
		pool = x509.NewCertPool()
	}

	for _, source := range b.trust {
		certs, err := loadCertChain(source)
		if err != nil {
			return nil, &CredentialError{Reason: "failed to load trust anchor", Err: err}
		}

		for _, c := range certs {
			pool.AddCert(c)
		}
	}

	return pool, nil
}

func loadCertChain(source CertSource) ([]*x509.Certificate, error) {
	switch s := source.(type) {
	case PemFileCertSource:
		data, err := os.ReadFile(s.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read cert file %s: %w", s.Path, err)
		}

		tagged, err := nettlsAsn1.DecodeTagged(data, []string{"CERTIFICATE", "X509 CERTIFICATE"}, true)
		if err != nil {
			return nil, err
		}

		var certs []*x509.Certificate

		for _, t := range tagged {
			cert, err := x509.ParseCertificate(t.DER)
			if err != nil {
				return nil, fmt.Errorf("failed to parse certificate: %w", err)
			}

			certs = append(certs, cert)
		}

		return certs, nil
	case DerCertSource:
		cert, err := x509.ParseCertificate(s.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse DER certificate: %w", err)
		}

		return []*x509.Certificate{cert}, nil
	case PKCS7BundleCertSource:
		p7, err := pkcs7.Parse(s.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS#7 bundle: %w", err)
		}

		if len(p7.Certificates) == 0 {
			return nil, fmt.Errorf("PKCS#7 bundle contained no certificates")
		}

		return p7.Certificates, nil
	default:
		return nil, fmt.Errorf("unsupported cert source type: %T", source)
	}
}

func loadCRL(source CRLSource) (*x509.RevocationList, error) {
	switch s := source.(type) {
	case PemFileCRLSource:
		data, err := os.ReadFile(s.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read CRL file %s: %w", s.Path, err)
		}

		tagged, err := nettlsAsn1.DecodeTagged(data, []string{"X509 CRL"}, true)
		if err != nil {
			return nil, err
		}

		return x509.ParseRevocationList(tagged[0].DER)
	case DerCRLSource:
		return x509.ParseRevocationList(s.Bytes)
	default:
		return nil, fmt.Errorf("unsupported CRL source type: %T", source)
	}
}

func loadPrivateKey(source PrivateKeySource, password []byte) (any, error) {
	switch s := source.(type) {
	case PemFileKeySource:
		data, err := os.ReadFile(s.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read key file %s: %w", s.Path, err)
		}

		return decodeFirstKeyFromPEM(data, password)
	case RSAKeySource:
		return x509.ParsePKCS1PrivateKey(s.DER)
	case ECKeySource:
		return x509.ParseECPrivateKey(s.DER)
	case Ed448KeySource:
		return parseEd448PrivateKey(s.DER)
	case PKCS8KeySource:
		return x509.ParsePKCS8PrivateKey(s.DER)
	case PKCS8EncryptedKeySource:
		if len(s.Password) == 0 {
			return nil, ErrPasswordRequired
		}

		return nettlsAsn1.DecryptPKCS8(s.DER, s.Password)
	default:
		return nil, fmt.Errorf("unsupported private key source type: %T", source)
	}
}

// decodeFirstKeyFromPEM finds the first recognized private-key PEM block
// and decodes its DER directly: RSA PRIVATE KEY as PKCS#1, EC PRIVATE KEY
// as SEC 1, PRIVATE KEY as PKCS#8; ENCRYPTED PRIVATE KEY requires password.
func decodeFirstKeyFromPEM(data []byte, password []byte) (any, error) {
	acceptedTags := []string{
		"RSA PRIVATE KEY", "EC PRIVATE KEY", "PRIVATE KEY", "ENCRYPTED PRIVATE KEY",
	}

	tagged, err := nettlsAsn1.DecodeTagged(data, acceptedTags, true)
	if err != nil {
		return nil, err
	}

	first := tagged[0]

	switch first.Tag {
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(first.DER)
	case "EC PRIVATE KEY":
		return x509.ParseECPrivateKey(first.DER)
	case "PRIVATE KEY":
		return x509.ParsePKCS8PrivateKey(first.DER)
	case "ENCRYPTED PRIVATE KEY":
		if len(password) == 0 {
			return nil, ErrPasswordRequired
		}

		return nettlsAsn1.DecryptPKCS8(first.DER, password)
	default:
		return nil, fmt.Errorf("no recognized private key block found")
	}
}

// parseEd448PrivateKey is a placeholder decode path: Go's x509 package has
// no dedicated Ed448 DER importer (crypto/ed25519 only), so the DER is
// handed to x509.ParsePKCS8PrivateKey unchanged.
func parseEd448PrivateKey(der []byte) (any, error) {
	return x509.ParsePKCS8PrivateKey(der)
}

func verifyKeyMatchesChain(key any, leaf *x509.Certificate) error {
	switch pub := leaf.PublicKey.(type) {
	case *rsa.PublicKey:
		priv, ok := key.(*rsa.PrivateKey)
		if !ok || priv.PublicKey.N.Cmp(pub.N) != 0 {
			return fmt.Errorf("RSA key does not match certificate public key")
		}
	case *ecdsa.PublicKey:
		priv, ok := key.(*ecdsa.PrivateKey)
		if !ok || priv.PublicKey.X.Cmp(pub.X) != 0 || priv.PublicKey.Y.Cmp(pub.Y) != 0 {
			return fmt.Errorf("EC key does not match certificate public key")
		}
	case ed25519.PublicKey:
		priv, ok := key.(ed25519.PrivateKey)
		if !ok || !priv.Public().(ed25519.PublicKey).Equal(pub) {
			return fmt.Errorf("Ed25519 key does not match certificate public key")
		}
	default:
		return nil // Ed448 and any future types: no convenient comparator, trust caller.
	}

	return nil
}
