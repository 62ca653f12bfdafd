// Copyright (c) 2025 Justin Cranford
//
//

// Package asn1 encodes and decodes the PEM/DER blocks the module's
// credential store accepts: certificates, CRLs, public/private keys in
// their various DER encodings, and PKCS#8 (plain and password-encrypted)
// private keys.
package asn1

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"fmt"

	nettlsMagic "nettls/internal/shared/magic"

	"github.com/youmark/pkcs8"
)

// ErrParse signals that a PEM blob could not be read or its armor is
// malformed.
type ErrParse struct {
	Reason string
}

func (e *ErrParse) Error() string { return "failed to parse PEM data: " + e.Reason }

// ErrEmptyPEM signals that decoding produced zero recognized blocks and
// the caller required at least one.
var ErrEmptyPEM = fmt.Errorf("PEM data contained no recognized blocks")

// ErrPasswordRequired signals that an ENCRYPTED PRIVATE KEY block was
// decoded without a password.
var ErrPasswordRequired = fmt.Errorf("password required to decrypt private key")

// TaggedDER is one decoded PEM block: its header tag and raw DER payload,
// in file order.
type TaggedDER struct {
	Tag string
	DER []byte
}

// PEMEncode encodes a supported key, public key, or certificate as a single
// PEM block.
func PEMEncode(v any) ([]byte, error) {
	var (
		blockType string
		der       []byte
		err       error
	)

	switch key := v.(type) {
	case *rsa.PrivateKey, *ecdsa.PrivateKey, ed25519.PrivateKey, *ecdh.PrivateKey:
		blockType = nettlsMagic.StringPEMTypePKCS8PrivateKey
		der, err = x509.MarshalPKCS8PrivateKey(key)
	case *rsa.PublicKey, *ecdsa.PublicKey, ed25519.PublicKey, *ecdh.PublicKey:
		blockType = "PUBLIC KEY"
		der, err = x509.MarshalPKIXPublicKey(key)
	case *x509.Certificate:
		blockType = nettlsMagic.StringPEMTypeCertificate
		der = key.Raw
	case *x509.RevocationList:
		blockType = "X509 CRL"
		der = key.Raw
	default:
		return nil, fmt.Errorf("unsupported type for PEM encoding: %T", v)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", v, err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: blockType, Bytes: der}), nil
}

// PEMDecode decodes a single PEM block into its concrete Go type:
// *rsa.PrivateKey, *ecdsa.PrivateKey, ed25519.PrivateKey, *ecdh.PrivateKey,
// the matching public key types, *x509.Certificate, or *x509.RevocationList.
func PEMDecode(data []byte) (any, error) {
	block, _ := pem.Decode(data)
	if block == nil {
		return nil, &ErrParse{Reason: "no PEM block found"}
	}

	return decodeDERByTag(block.Type, block.Bytes, nil)
}

func decodeDERByTag(tag string, der []byte, password []byte) (any, error) {
	switch tag {
	case nettlsMagic.StringPEMTypeCertificate, "X509 CERTIFICATE":
		return x509.ParseCertificate(der)
	case "X509 CRL":
		return x509.ParseRevocationList(der)
	case nettlsMagic.StringPEMTypePKCS8PrivateKey:
		return x509.ParsePKCS8PrivateKey(der)
	case "ENCRYPTED PRIVATE KEY":
		if len(password) == 0 {
			return nil, ErrPasswordRequired
		}

		key, err := pkcs8.ParsePrivateKey(der, password)
		if err != nil {
			return nil, fmt.Errorf("failed to decrypt PKCS#8 private key: %w", err)
		}

		return key, nil
	case nettlsMagic.StringPEMTypeECPrivateKey:
		return x509.ParseECPrivateKey(der)
	case "RSA PRIVATE KEY":
		return x509.ParsePKCS1PrivateKey(der)
	case "PUBLIC KEY":
		return x509.ParsePKIXPublicKey(der)
	case "PKCS7":
		return der, nil
	default:
		return nil, fmt.Errorf("unrecognized PEM tag: %s", tag)
	}
}

// DecodeTagged walks every PEM block in data in file order, keeping only
// blocks whose tag appears in acceptedTags (unrecognized tags are silently
// skipped), and returns the ordered (tag, der) pairs. It fails with
// ErrEmptyPEM if no block matched and requireNonEmpty is true.
func DecodeTagged(data []byte, acceptedTags []string, requireNonEmpty bool) ([]TaggedDER, error) {
	accepted := make(map[string]bool, len(acceptedTags))
	for _, tag := range acceptedTags {
		accepted[tag] = true
	}

	var results []TaggedDER

	rest := data

	for {
		var block *pem.Block

		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}

		if accepted[block.Type] {
			results = append(results, TaggedDER{Tag: block.Type, DER: block.Bytes})
		}
	}

	if len(results) == 0 && len(data) > 0 && !looksLikePEM(data) {
		return nil, &ErrParse{Reason: "input is not PEM-armored"}
	}

	if len(results) == 0 && requireNonEmpty {
		return nil, ErrEmptyPEM
	}

	return results, nil
}

func looksLikePEM(data []byte) bool {
	const pemHeaderPrefix = "-----BEGIN "

	return len(data) >= len(pemHeaderPrefix) && string(data[:len(pemHeaderPrefix)]) == pemHeaderPrefix
}

// DecryptPKCS8 decodes a DER-encoded PKCS#8 ENCRYPTED PRIVATE KEY block
// (RFC 5958, PBES2/PBKDF2 per RFC 8018) using password, returning the
// decrypted private key.
func DecryptPKCS8(der []byte, password []byte) (any, error) {
	return decodeDERByTag("ENCRYPTED PRIVATE KEY", der, password)
}

// EncryptPKCS8 encodes key as a password-protected PKCS#8 ENCRYPTED
// PRIVATE KEY PEM block using PBES2/PBKDF2 with AES-256-CBC, the same
// defaults youmark/pkcs8 applies when no explicit cipher is requested.
func EncryptPKCS8(key any, password []byte) ([]byte, error) {
	der, err := pkcs8.MarshalPrivateKey(key, password, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to encrypt PKCS#8 private key: %w", err)
	}

	return pem.EncodeToMemory(&pem.Block{Type: "ENCRYPTED PRIVATE KEY", Bytes: der}), nil
}
