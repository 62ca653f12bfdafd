// Copyright (c) 2025 Justin Cranford
//
//

package tls

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	nettlsCertificate "nettls/internal/shared/crypto/certificate"
	nettlsMagic "nettls/internal/shared/magic"
)

// StorageFormat selects the on-disk encoding StoreCertificate writes.
type StorageFormat string

const (
	FormatPEM    StorageFormat = "pem"
	FormatPKCS12 StorageFormat = "pkcs12"
)

// StorageOptions configures StoreCertificate.
type StorageOptions struct {
	Format              StorageFormat
	Directory           string
	CertificateFilename string
	IncludePrivateKey   bool
	FileMode            os.FileMode
	DirMode             os.FileMode
}

// DefaultStorageOptions writes a PEM-encoded leaf certificate and private
// key into dir.
func DefaultStorageOptions(dir string) *StorageOptions {
	return &StorageOptions{
		Format:              FormatPEM,
		Directory:           dir,
		CertificateFilename: "cert.pem",
		IncludePrivateKey:   true,
		FileMode:            nettlsMagic.FilePermOwnerReadWriteOnly,
		DirMode:             nettlsMagic.FilePermOwnerReadWriteExecuteGroupOtherReadExecute,
	}
}

// StoredCertificate is the set of file paths StoreCertificate wrote.
type StoredCertificate struct {
	CertificatePath string
	PrivateKeyPath  string
}

// Indirections over the file system and PKCS8 marshaling so tests can
// inject I/O failures.
var (
	storageMkdirAllFn     = os.MkdirAll
	storageWriteFileFn    = os.WriteFile
	storageMarshalPKCS8Fn = x509.MarshalPKCS8PrivateKey
)

// StoreCertificate writes subject's leaf certificate (and, if requested, its
// private key) to opts.Directory in opts.Format.
func StoreCertificate(subject *nettlsCertificate.Subject, opts *StorageOptions) (*StoredCertificate, error) {
	if subject == nil {
		return nil, fmt.Errorf("subject cannot be nil")
	}

	if opts == nil {
		return nil, fmt.Errorf("options cannot be nil")
	}

	if opts.Directory == "" {
		return nil, fmt.Errorf("directory cannot be empty")
	}

	switch opts.Format {
	case FormatPEM:
		return storeCertificatePEM(subject, opts)
	case FormatPKCS12:
		return nil, fmt.Errorf("PKCS12 storage not yet implemented")
	default:
		return nil, fmt.Errorf("unsupported storage format: %s", opts.Format)
	}
}

func storeCertificatePEM(subject *nettlsCertificate.Subject, opts *StorageOptions) (*StoredCertificate, error) {
	if err := storageMkdirAllFn(opts.Directory, opts.DirMode); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	certFilename := opts.CertificateFilename
	if certFilename == "" {
		certFilename = "cert.pem"
	}

	certPath := filepath.Join(opts.Directory, certFilename)

	leaf := subject.KeyMaterial.CertificateChain[0]
	certPEMBytes := pem.EncodeToMemory(&pem.Block{Type: nettlsMagic.StringPEMTypeCertificate, Bytes: leaf.Raw})

	if err := storageWriteFileFn(certPath, certPEMBytes, opts.FileMode); err != nil {
		return nil, fmt.Errorf("failed to write certificate: %w", err)
	}

	stored := &StoredCertificate{CertificatePath: certPath}

	if opts.IncludePrivateKey && subject.KeyMaterial.PrivateKey != nil {
		keyDER, err := storageMarshalPKCS8Fn(subject.KeyMaterial.PrivateKey)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal private key: %w", err)
		}

		keyPath := certPath + ".key"
		keyPEMBytes := pem.EncodeToMemory(&pem.Block{Type: nettlsMagic.StringPEMTypePKCS8PrivateKey, Bytes: keyDER})

		if err := storageWriteFileFn(keyPath, keyPEMBytes, opts.FileMode); err != nil {
			return nil, fmt.Errorf("failed to write private key: %w", err)
		}

		stored.PrivateKeyPath = keyPath
	}

	return stored, nil
}

// LoadCertificatePEM reads a PEM-encoded certificate chain from certPath
// and, if keyPath is non-empty, its PKCS8-encoded private key.
func LoadCertificatePEM(certPath, keyPath string) (*nettlsCertificate.Subject, error) {
	certBytes, err := os.ReadFile(certPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read certificate file: %w", err)
	}

	var chain []*x509.Certificate

	rest := certBytes

	for {
		var block *pem.Block

		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}

		if block.Type != nettlsMagic.StringPEMTypeCertificate {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate: %w", err)
		}

		chain = append(chain, cert)
	}

	if len(chain) == 0 {
		return nil, fmt.Errorf("no certificates found in %s", certPath)
	}

	leaf := chain[0]

	subject := &nettlsCertificate.Subject{
		SubjectName: leaf.Subject.CommonName,
		IssuerName:  leaf.Issuer.CommonName,
		IsCA:        leaf.IsCA,
		DNSNames:    leaf.DNSNames,
		IPAddresses: leaf.IPAddresses,
		KeyMaterial: nettlsCertificate.KeyMaterial{
			CertificateChain: chain,
			PublicKey:        leaf.PublicKey,
		},
	}

	if leaf.IsCA {
		subject.MaxPathLen = leaf.MaxPathLen
	}

	if keyPath == "" {
		return subject, nil
	}

	keyBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key file: %w", err)
	}

	block, _ := pem.Decode(keyBytes)
	if block == nil {
		return nil, fmt.Errorf("failed to decode private key PEM")
	}

	key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	subject.KeyMaterial.PrivateKey = key

	return subject, nil
}

// LoadCertificatePKCS12 is reserved for a future PKCS#12 bundle loader.
func LoadCertificatePKCS12(_, _ string) (*nettlsCertificate.Subject, error) {
	return nil, fmt.Errorf("PKCS12 loading not yet implemented")
}
