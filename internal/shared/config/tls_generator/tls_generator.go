// Copyright (c) 2025 Justin Cranford

// Package tls_generator turns a TLSGeneratedSettings descriptor into a ready
// tls.Config, covering three provisioning modes: load an already-issued
// certificate (static), sign a fresh server certificate under a
// caller-supplied CA (mixed), or generate an entire ephemeral CA hierarchy
// plus server certificate (auto). It exists for dev/test environments that
// need a working TLS listener without an external PKI.
package tls_generator

import (
	"crypto/elliptic"
	"crypto/tls"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"net"
	"time"

	nettlsConfig "nettls/internal/shared/config"
	nettlsCertificate "nettls/internal/shared/crypto/certificate"
	nettlsKeyGen "nettls/internal/shared/crypto/keygen"
)

const defaultAutoValidityDays = 365

// TLSGeneratedSettings selects a provisioning mode and carries the inputs
// that mode needs; fields belonging to other modes are ignored.
type TLSGeneratedSettings struct {
	Mode nettlsConfig.TLSMode

	StaticCertPEM []byte
	StaticKeyPEM  []byte

	MixedCACertPEM []byte
	MixedCAKeyPEM  []byte

	AutoDNSNames     []string
	AutoIPAddresses  []string
	AutoValidityDays int
}

// TLSMaterial is a ready-to-use tls.Config plus the certificate pools a
// verifier needs to validate the chain it serves.
type TLSMaterial struct {
	Config             *tls.Config
	RootCAPool         *x509.CertPool
	IntermediateCAPool *x509.CertPool
}

// GenerateTLSMaterial builds TLSMaterial per cfg.Mode.
func GenerateTLSMaterial(cfg *TLSGeneratedSettings) (*TLSMaterial, error) {
	if cfg == nil {
		return nil, fmt.Errorf("TLS config cannot be nil")
	}

	switch cfg.Mode {
	case nettlsConfig.TLSModeStatic:
		return generateStatic(cfg)
	case nettlsConfig.TLSModeMixed:
		return generateMixed(cfg)
	case nettlsConfig.TLSModeAuto:
		return generateAuto(cfg)
	default:
		return nil, fmt.Errorf("unknown TLS mode: %s", cfg.Mode)
	}
}

func generateStatic(cfg *TLSGeneratedSettings) (*TLSMaterial, error) {
	if len(cfg.StaticCertPEM) == 0 {
		return nil, fmt.Errorf("static mode requires StaticCertPEM")
	}

	if len(cfg.StaticKeyPEM) == 0 {
		return nil, fmt.Errorf("static mode requires StaticKeyPEM")
	}

	tlsCert, err := tls.X509KeyPair(cfg.StaticCertPEM, cfg.StaticKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse static TLS certificate: %w", err)
	}

	if tlsCert.Leaf == nil {
		leaf, err := x509.ParseCertificate(tlsCert.Certificate[0])
		if err != nil {
			return nil, fmt.Errorf("failed to parse static TLS certificate: %w", err)
		}

		tlsCert.Leaf = leaf
	}

	rootPool := x509.NewCertPool()
	intermediatePool := x509.NewCertPool()

	for i := 1; i < len(tlsCert.Certificate); i++ {
		cert, err := x509.ParseCertificate(tlsCert.Certificate[i])
		if err != nil {
			return nil, fmt.Errorf("failed to parse static TLS certificate: %w", err)
		}

		if i == len(tlsCert.Certificate)-1 {
			rootPool.AddCert(cert)
		} else {
			intermediatePool.AddCert(cert)
		}
	}

	return &TLSMaterial{
		Config:             &tls.Config{Certificates: []tls.Certificate{tlsCert}, MinVersion: tls.VersionTLS13},
		RootCAPool:         rootPool,
		IntermediateCAPool: intermediatePool,
	}, nil
}

func generateMixed(cfg *TLSGeneratedSettings) (*TLSMaterial, error) {
	if len(cfg.MixedCACertPEM) == 0 {
		return nil, fmt.Errorf("mixed mode requires MixedCACertPEM")
	}

	if len(cfg.MixedCAKeyPEM) == 0 {
		return nil, fmt.Errorf("mixed mode requires MixedCAKeyPEM")
	}

	caCertBlock, _ := pem.Decode(cfg.MixedCACertPEM)
	if caCertBlock == nil {
		return nil, fmt.Errorf("failed to decode MixedCACertPEM")
	}

	caCert, err := x509.ParseCertificate(caCertBlock.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MixedCACertPEM: %w", err)
	}

	caKey, err := parsePrivateKeyPEM(cfg.MixedCAKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("failed to parse MixedCAKeyPEM: %w", err)
	}

	caSubject := &nettlsCertificate.Subject{
		SubjectName: caCert.Subject.CommonName,
		IsCA:        true,
		KeyMaterial: nettlsCertificate.KeyMaterial{
			CertificateChain: []*x509.Certificate{caCert},
			PublicKey:        caCert.PublicKey,
			PrivateKey:       caKey,
		},
	}

	return generateServerUnder(caSubject, cfg, "Server Certificate")
}

func generateAuto(cfg *TLSGeneratedSettings) (*TLSMaterial, error) {
	validityDays := cfg.AutoValidityDays
	if validityDays == 0 {
		validityDays = defaultAutoValidityDays
	}

	caDuration := time.Duration(validityDays) * 24 * time.Hour * 10

	keyPairs := make([]*nettlsKeyGen.KeyPair, 2)

	for i := range keyPairs {
		kp, err := nettlsKeyGen.GenerateECDSAKeyPair(elliptic.P384())
		if err != nil {
			return nil, fmt.Errorf("failed to generate auto CA key pair: %w", err)
		}

		keyPairs[i] = kp
	}

	caSubjects, err := nettlsCertificate.CreateCASubjects(keyPairs, "Auto-Generated CA", caDuration)
	if err != nil {
		return nil, fmt.Errorf("failed to create auto CA hierarchy: %w", err)
	}

	issuingCA := caSubjects[len(caSubjects)-1]
	issuingCA.KeyMaterial.PrivateKey = keyPairs[len(keyPairs)-1].Private

	return generateServerUnder(issuingCA, cfg, "Auto-Generated Server Certificate")
}

func generateServerUnder(issuingCA *nettlsCertificate.Subject, cfg *TLSGeneratedSettings, commonName string) (*TLSMaterial, error) {
	validityDays := cfg.AutoValidityDays
	if validityDays == 0 {
		validityDays = defaultAutoValidityDays
	}

	ips, err := parseIPAddresses(cfg.AutoIPAddresses)
	if err != nil {
		return nil, err
	}

	serverKeyPair, err := nettlsKeyGen.GenerateECDSAKeyPair(elliptic.P384())
	if err != nil {
		return nil, fmt.Errorf("failed to generate server key pair: %w", err)
	}

	duration := time.Duration(validityDays) * 24 * time.Hour

	serverSubject, err := nettlsCertificate.CreateEndEntitySubject(
		issuingCA, serverKeyPair, commonName, duration,
		cfg.AutoDNSNames, ips, nil, nil,
		x509.KeyUsageDigitalSignature|x509.KeyUsageKeyEncipherment,
		[]x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create server certificate: %w", err)
	}

	tlsCert, rootPool, intermediatePool, err := nettlsCertificate.BuildTLSCertificate(serverSubject)
	if err != nil {
		return nil, fmt.Errorf("failed to build TLS certificate: %w", err)
	}

	return &TLSMaterial{
		Config:             &tls.Config{Certificates: []tls.Certificate{*tlsCert}, MinVersion: tls.VersionTLS13},
		RootCAPool:         rootPool,
		IntermediateCAPool: intermediatePool,
	}, nil
}

func parseIPAddresses(addrs []string) ([]net.IP, error) {
	ips := make([]net.IP, 0, len(addrs))

	for _, addr := range addrs {
		ip := net.ParseIP(addr)
		if ip == nil {
			return nil, fmt.Errorf("invalid IP address: %s", addr)
		}

		ips = append(ips, ip)
	}

	return ips, nil
}

func parsePrivateKeyPEM(keyPEM []byte) (any, error) {
	block, _ := pem.Decode(keyPEM)
	if block == nil {
		return nil, fmt.Errorf("failed to decode PEM block")
	}

	switch block.Type {
	case "EC PRIVATE KEY":
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse SEC1 EC private key: %w", err)
		}

		return key, nil
	default:
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse PKCS8 private key: %w", err)
		}

		return key, nil
	}
}
