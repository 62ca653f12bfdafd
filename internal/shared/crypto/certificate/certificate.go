// Copyright (c) 2025 Justin Cranford
//
//

// Package certificate builds and serializes X.509 certificate chains (CA
// hierarchies and end-entity leaves) from keygen key pairs, and assembles
// them into tls.Certificate values ready for a tls.Config.
package certificate

import (
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"fmt"
	"net"
	"net/url"
	"time"

	"nettls/internal/shared/crypto/keygen"
)

// KeyMaterial is a certificate chain together with the key pair it was
// issued for. CertificateChain is ordered leaf-first; for a CA subject it
// includes that CA's own certificate followed by every ancestor up to (and
// including) the root. PrivateKey may be nil once a chain has been handed
// off to a holder that doesn't need to sign with it.
type KeyMaterial struct {
	CertificateChain []*x509.Certificate
	PublicKey        any
	PrivateKey       any
}

// Subject describes one issued certificate, CA or end-entity, along with
// the fields used to build it.
type Subject struct {
	SubjectName string
	IssuerName  string
	Duration    time.Duration
	IsCA        bool
	MaxPathLen  int

	DNSNames       []string
	IPAddresses    []net.IP
	EmailAddresses []string
	URIs           []*url.URL

	KeyMaterial KeyMaterial
}

// CertificateTemplateCA builds an unsigned CA certificate template.
func CertificateTemplateCA(issuerName, subjectName string, duration time.Duration, maxPathLen int) (*x509.Certificate, error) {
	if subjectName == "" {
		return nil, fmt.Errorf("subjectName cannot be empty")
	}

	serial, err := GenerateSerialNumber()
	if err != nil {
		return nil, err
	}

	notBefore, notAfter, err := randomizedNotBeforeNotAfterCA(time.Now(), duration, 0, 10*time.Minute)
	if err != nil {
		return nil, err
	}

	return &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: subjectName},
		Issuer:                pkix.Name{CommonName: issuerName},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            maxPathLen,
		MaxPathLenZero:        maxPathLen == 0,
	}, nil
}

func certificateTemplateEndEntity(
	issuerName, subjectName string,
	duration time.Duration,
	dnsNames []string,
	ipAddresses []net.IP,
	emailAddresses []string,
	uris []*url.URL,
	keyUsage x509.KeyUsage,
	extKeyUsage []x509.ExtKeyUsage,
) (*x509.Certificate, error) {
	if subjectName == "" {
		return nil, fmt.Errorf("subjectName cannot be empty")
	}

	serial, err := GenerateSerialNumber()
	if err != nil {
		return nil, err
	}

	notBefore, notAfter, err := randomizedNotBeforeNotAfterEndEntity(time.Now(), duration, 0, 10*time.Minute)
	if err != nil {
		return nil, err
	}

	return &x509.Certificate{
		SerialNumber:          serial,
		Subject:               pkix.Name{CommonName: subjectName},
		Issuer:                pkix.Name{CommonName: issuerName},
		NotBefore:             notBefore,
		NotAfter:              notAfter,
		KeyUsage:              keyUsage,
		ExtKeyUsage:           extKeyUsage,
		BasicConstraintsValid: true,
		IsCA:                  false,
		DNSNames:              dnsNames,
		IPAddresses:           ipAddresses,
		EmailAddresses:        emailAddresses,
		URIs:                  uris,
	}, nil
}

// signatureAlgorithmFor picks a signature algorithm matching the signer's
// key type, since x509.CreateCertificate needs one consistent with the
// signing key rather than the subject key.
func signatureAlgorithmFor(signerKey any) x509.SignatureAlgorithm {
	switch signerKey.(type) {
	case *ecdsa.PrivateKey:
		return x509.ECDSAWithSHA256
	case ed25519.PrivateKey:
		return x509.PureEd25519
	default:
		return x509.SHA256WithRSA
	}
}

// SignCertificate signs template with signerKey, self-signing when parent is
// nil. It returns the parsed certificate, its DER encoding, and the parent
// certificate it chains to (nil for a self-signed root).
func SignCertificate(parent *x509.Certificate, signerKey any, template *x509.Certificate, publicKey any) (*x509.Certificate, []byte, *x509.Certificate, error) {
	template.SignatureAlgorithm = signatureAlgorithmFor(signerKey)

	issuerTemplate := template
	if parent != nil {
		issuerTemplate = parent
	}

	der, err := x509.CreateCertificate(rand.Reader, template, issuerTemplate, publicKey, signerKey)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to parse created certificate: %w", err)
	}

	return cert, der, parent, nil
}

// CreateCASubject issues one CA certificate signed by parent (or
// self-signed when parent is nil, producing a root).
func CreateCASubject(parent *Subject, parentPrivateKey any, name string, keyPair *keygen.KeyPair, duration time.Duration, maxPathLen int) (*Subject, error) {
	if keyPair == nil {
		return nil, fmt.Errorf("keyPair cannot be nil")
	}

	issuerName := name

	var parentCert *x509.Certificate

	var signerKey any = keyPair.Private

	if parent != nil {
		if len(parent.KeyMaterial.CertificateChain) == 0 {
			return nil, fmt.Errorf("parent has no certificate chain")
		}

		issuerName = parent.SubjectName
		parentCert = parent.KeyMaterial.CertificateChain[0]
		signerKey = parentPrivateKey
	}

	template, err := CertificateTemplateCA(issuerName, name, duration, maxPathLen)
	if err != nil {
		return nil, err
	}

	cert, _, _, err := SignCertificate(parentCert, signerKey, template, keyPair.Public)
	if err != nil {
		return nil, err
	}

	chain := []*x509.Certificate{cert}
	if parent != nil {
		chain = append(chain, parent.KeyMaterial.CertificateChain...)
	}

	return &Subject{
		SubjectName: name,
		IssuerName:  issuerName,
		Duration:    duration,
		IsCA:        true,
		MaxPathLen:  maxPathLen,
		KeyMaterial: KeyMaterial{
			CertificateChain: chain,
			PublicKey:        keyPair.Public,
			PrivateKey:       keyPair.Private,
		},
	}, nil
}

// CreateCASubjects builds a full CA hierarchy from keyPairs, one subject per
// key pair, root first and most-subordinate ("issuing") CA last. Every
// intermediate CA is signed by its predecessor; the root is self-signed.
// The returned subjects have their PrivateKey cleared, since the caller
// already holds it via keyPairs and accidental reuse of a chain-embedded
// key is a common source of key-confusion bugs.
func CreateCASubjects(keyPairs []*keygen.KeyPair, caName string, duration time.Duration) ([]*Subject, error) {
	if len(keyPairs) == 0 {
		return nil, fmt.Errorf("keyPairs cannot be empty")
	}

	subjects := make([]*Subject, 0, len(keyPairs))

	var parent *Subject

	for i, kp := range keyPairs {
		maxPathLen := len(keyPairs) - i - 1

		name := caName
		if len(keyPairs) > 1 {
			name = fmt.Sprintf("%s Tier %d", caName, i)
		}

		var parentKey any
		if parent != nil {
			parentKey = parent.KeyMaterial.PrivateKey
		}

		subject, err := CreateCASubject(parent, parentKey, name, kp, duration, maxPathLen)
		if err != nil {
			return nil, fmt.Errorf("failed to create CA subject %d: %w", i, err)
		}

		subjects = append(subjects, subject)
		parent = subject
	}

	for _, subject := range subjects {
		subject.KeyMaterial.PrivateKey = nil
	}

	return subjects, nil
}

// CreateEndEntitySubject issues a leaf certificate signed by issuingCA, whose
// PrivateKey must be populated by the caller beforehand.
func CreateEndEntitySubject(
	issuingCA *Subject,
	keyPair *keygen.KeyPair,
	name string,
	duration time.Duration,
	dnsNames []string,
	ipAddresses []net.IP,
	emailAddresses []string,
	uris []*url.URL,
	keyUsage x509.KeyUsage,
	extKeyUsage []x509.ExtKeyUsage,
) (*Subject, error) {
	if issuingCA == nil {
		return nil, fmt.Errorf("issuingCA cannot be nil")
	}

	if issuingCA.KeyMaterial.PrivateKey == nil {
		return nil, fmt.Errorf("issuingCA has no private key to sign with")
	}

	if keyPair == nil {
		return nil, fmt.Errorf("keyPair cannot be nil")
	}

	if len(issuingCA.KeyMaterial.CertificateChain) == 0 {
		return nil, fmt.Errorf("issuingCA has no certificate chain")
	}

	template, err := certificateTemplateEndEntity(issuingCA.SubjectName, name, duration, dnsNames, ipAddresses, emailAddresses, uris, keyUsage, extKeyUsage)
	if err != nil {
		return nil, err
	}

	issuerCert := issuingCA.KeyMaterial.CertificateChain[0]

	cert, _, _, err := SignCertificate(issuerCert, issuingCA.KeyMaterial.PrivateKey, template, keyPair.Public)
	if err != nil {
		return nil, err
	}

	chain := append([]*x509.Certificate{cert}, issuingCA.KeyMaterial.CertificateChain...)

	return &Subject{
		SubjectName:    name,
		IssuerName:     issuingCA.SubjectName,
		Duration:       duration,
		IsCA:           false,
		DNSNames:       dnsNames,
		IPAddresses:    ipAddresses,
		EmailAddresses: emailAddresses,
		URIs:           uris,
		KeyMaterial: KeyMaterial{
			CertificateChain: chain,
			PublicKey:        keyPair.Public,
			PrivateKey:       keyPair.Private,
		},
	}, nil
}

// BuildTLSCertificate assembles subject's chain into a tls.Certificate
// suitable for tls.Config.Certificates, plus the separated root and
// intermediate CA pools a verifier needs. The root certificate (the chain's
// last entry) is excluded from the returned tls.Certificate, since TLS peers
// are expected to already trust it out of band rather than receive it on
// the wire.
func BuildTLSCertificate(subject *Subject) (*tls.Certificate, *x509.CertPool, *x509.CertPool, error) {
	if subject == nil {
		return nil, nil, nil, fmt.Errorf("subject cannot be nil")
	}

	chain := subject.KeyMaterial.CertificateChain
	if len(chain) == 0 {
		return nil, nil, nil, fmt.Errorf("subject has no certificate chain")
	}

	if subject.KeyMaterial.PrivateKey == nil {
		return nil, nil, nil, fmt.Errorf("subject has no private key")
	}

	rootPool := x509.NewCertPool()
	intermediatePool := x509.NewCertPool()

	served := chain
	if len(chain) > 1 {
		root := chain[len(chain)-1]
		rootPool.AddCert(root)
		served = chain[:len(chain)-1]

		for _, intermediate := range served[1:] {
			intermediatePool.AddCert(intermediate)
		}
	}

	rawCerts := make([][]byte, 0, len(served))
	for _, cert := range served {
		rawCerts = append(rawCerts, cert.Raw)
	}

	return &tls.Certificate{
		Certificate: rawCerts,
		PrivateKey:  subject.KeyMaterial.PrivateKey,
		Leaf:        served[0],
	}, rootPool, intermediatePool, nil
}

// serializableSubject is the JSON-friendly projection of a Subject used by
// SerializeSubjects/DeserializeSubjects. Certificates and keys are DER
// encoded; everything else round-trips as plain fields.
type serializableSubject struct {
	SubjectName string        `json:"subject_name"`
	IssuerName  string        `json:"issuer_name"`
	Duration    time.Duration `json:"duration"`
	IsCA        bool          `json:"is_ca"`
	MaxPathLen  int           `json:"max_path_len"`

	DNSNames       []string `json:"dns_names,omitempty"`
	IPAddresses    []string `json:"ip_addresses,omitempty"`
	EmailAddresses []string `json:"email_addresses,omitempty"`
	URIs           []string `json:"uris,omitempty"`

	CertificateChainDER [][]byte `json:"certificate_chain_der"`
	PublicKeyDER        []byte   `json:"public_key_der,omitempty"`
	PrivateKeyDER       []byte   `json:"private_key_der,omitempty"`
}

func validateSubjectForSerialization(subjects []*Subject) error {
	if subjects == nil {
		return fmt.Errorf("subjects cannot be nil")
	}

	for i, subject := range subjects {
		if subject.SubjectName == "" {
			return fmt.Errorf("subject %d has empty SubjectName", i)
		}

		hasEndEntityFields := len(subject.DNSNames) > 0 || len(subject.IPAddresses) > 0 ||
			len(subject.EmailAddresses) > 0 || len(subject.URIs) > 0

		if !subject.IsCA && subject.MaxPathLen != 0 {
			return fmt.Errorf("subject %d (%s) is not a CA but has MaxPathLen populated", i, subject.SubjectName)
		}

		if subject.IsCA && hasEndEntityFields {
			return fmt.Errorf("subject %d (%s) is a CA but has end-entity fields", i, subject.SubjectName)
		}

		if subject.IsCA && subject.MaxPathLen < 0 {
			return fmt.Errorf("subject %d (%s) has invalid MaxPathLen (%d), must be >= 0", i, subject.SubjectName, subject.MaxPathLen)
		}
	}

	return nil
}

// marshalPublicKey serializes pub to DER. A raw []byte is passed through
// unchanged so callers that populate KeyMaterial.PublicKey with pre-encoded
// bytes (e.g. a placeholder in tests, or a key type PKIX can't marshal) are
// still round-trippable.
func marshalPublicKey(pub any) ([]byte, error) {
	if raw, ok := pub.([]byte); ok {
		return raw, nil
	}

	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("unsupported public key type %T: %w", pub, err)
	}

	return der, nil
}

func marshalPrivateKey(priv any) ([]byte, error) {
	if priv == nil {
		return nil, nil
	}

	if raw, ok := priv.([]byte); ok {
		return raw, nil
	}

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	if err != nil {
		return nil, fmt.Errorf("unsupported private key type %T: %w", priv, err)
	}

	return der, nil
}

// serializeKeyMaterial projects a KeyMaterial to its JSON-ready form.
func serializeKeyMaterial(km *KeyMaterial, includePrivateKey bool) (*serializableSubject, error) {
	if km == nil {
		return nil, fmt.Errorf("keyMaterial cannot be nil")
	}

	if km.PublicKey == nil {
		return nil, fmt.Errorf("PublicKey cannot be nil")
	}

	if len(km.CertificateChain) == 0 {
		return nil, fmt.Errorf("certificate chain cannot be empty")
	}

	chainDER := make([][]byte, len(km.CertificateChain))

	for i, cert := range km.CertificateChain {
		if cert == nil {
			return nil, fmt.Errorf("certificate %d in chain cannot be nil", i)
		}

		chainDER[i] = cert.Raw
	}

	pubDER, err := marshalPublicKey(km.PublicKey)
	if err != nil {
		return nil, err
	}

	var privDER []byte

	if includePrivateKey {
		privDER, err = marshalPrivateKey(km.PrivateKey)
		if err != nil {
			return nil, err
		}
	}

	return &serializableSubject{
		CertificateChainDER: chainDER,
		PublicKeyDER:        pubDER,
		PrivateKeyDER:       privDER,
	}, nil
}

// SerializeSubjects encodes subjects to JSON, embedding DER-encoded
// certificates and (optionally) private keys.
func SerializeSubjects(subjects []*Subject, includePrivateKey bool) ([]byte, error) {
	if err := validateSubjectForSerialization(subjects); err != nil {
		return nil, err
	}

	out := make([]serializableSubject, len(subjects))

	for i, subject := range subjects {
		km, err := serializeKeyMaterial(&subject.KeyMaterial, includePrivateKey)
		if err != nil {
			return nil, fmt.Errorf("subject %d: %w", i, err)
		}

		km.SubjectName = subject.SubjectName
		km.IssuerName = subject.IssuerName
		km.Duration = subject.Duration
		km.IsCA = subject.IsCA
		km.MaxPathLen = subject.MaxPathLen
		km.DNSNames = subject.DNSNames
		km.EmailAddresses = subject.EmailAddresses

		for _, ip := range subject.IPAddresses {
			km.IPAddresses = append(km.IPAddresses, ip.String())
		}

		for _, u := range subject.URIs {
			km.URIs = append(km.URIs, u.String())
		}

		out[i] = *km
	}

	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal subjects: %w", err)
	}

	return data, nil
}

// DeserializeSubjects reverses SerializeSubjects.
func DeserializeSubjects(data []byte) ([]*Subject, error) {
	var in []serializableSubject

	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("failed to unmarshal subjects: %w", err)
	}

	subjects := make([]*Subject, len(in))

	for i, s := range in {
		chain := make([]*x509.Certificate, len(s.CertificateChainDER))

		for j, der := range s.CertificateChainDER {
			cert, err := x509.ParseCertificate(der)
			if err != nil {
				return nil, fmt.Errorf("subject %d certificate %d: %w", i, j, err)
			}

			chain[j] = cert
		}

		pub, err := unmarshalPublicKey(s.PublicKeyDER)
		if err != nil {
			return nil, fmt.Errorf("subject %d: %w", i, err)
		}

		var priv any

		if len(s.PrivateKeyDER) > 0 {
			priv, err = x509.ParsePKCS8PrivateKey(s.PrivateKeyDER)
			if err != nil {
				return nil, fmt.Errorf("subject %d private key: %w", i, err)
			}
		}

		ips := make([]net.IP, 0, len(s.IPAddresses))
		for _, ipStr := range s.IPAddresses {
			ips = append(ips, net.ParseIP(ipStr))
		}

		uris := make([]*url.URL, 0, len(s.URIs))

		for _, uriStr := range s.URIs {
			u, err := url.Parse(uriStr)
			if err != nil {
				return nil, fmt.Errorf("subject %d URI %q: %w", i, uriStr, err)
			}

			uris = append(uris, u)
		}

		subjects[i] = &Subject{
			SubjectName:    s.SubjectName,
			IssuerName:     s.IssuerName,
			Duration:       s.Duration,
			IsCA:           s.IsCA,
			MaxPathLen:     s.MaxPathLen,
			DNSNames:       s.DNSNames,
			IPAddresses:    ips,
			EmailAddresses: s.EmailAddresses,
			URIs:           uris,
			KeyMaterial: KeyMaterial{
				CertificateChain: chain,
				PublicKey:        pub,
				PrivateKey:       priv,
			},
		}
	}

	return subjects, nil
}

func unmarshalPublicKey(der []byte) (any, error) {
	pub, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		// Not a recognized PKIX key; treat as an opaque pass-through value
		// (mirrors marshalPublicKey's []byte fallback).
		return der, nil //nolint:nilerr // intentional fallback, see marshalPublicKey
	}

	return pub, nil
}
