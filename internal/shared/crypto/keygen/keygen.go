// Copyright (c) 2025 Justin Cranford
//
//

// Package keygen generates asymmetric and symmetric key material used to
// build certificates, plus AES, AES-HS and HMAC secret-key generators.
package keygen

import (
	"crypto/ecdh"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/hmac"
	crand "crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"fmt"

	"github.com/cloudflare/circl/sign/ed448"
)

const (
	EdCurveEd25519 = "Ed25519"
	EdCurveEd448   = "Ed448"
)

// Key is implemented by every value this package returns, so callers can
// hold either a KeyPair or a SecretKey behind one interface when the
// distinction doesn't matter (e.g. a generic key-rotation log).
type Key interface {
	isKey()
}

// KeyPair holds an asymmetric key pair. Private and Public are one of the
// stdlib/circl concrete key types (*rsa.PrivateKey, *ecdsa.PrivateKey,
// *ecdh.PrivateKey, ed25519.PrivateKey, ed448.PrivateKey, and their Public
// counterparts).
type KeyPair struct {
	Private any
	Public  any
}

func (*KeyPair) isKey() {}

// SecretKey holds symmetric key bytes.
type SecretKey []byte

func (SecretKey) isKey() {}

func GenerateRSAKeyPair(bits int) (*KeyPair, error) {
	priv, err := rsa.GenerateKey(crand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA key: %w", err)
	}

	return &KeyPair{Private: priv, Public: &priv.PublicKey}, nil
}

func GenerateRSAKeyPairFunction(bits int) func() (*KeyPair, error) {
	return func() (*KeyPair, error) { return GenerateRSAKeyPair(bits) }
}

func GenerateECDSAKeyPair(curve elliptic.Curve) (*KeyPair, error) {
	priv, err := ecdsa.GenerateKey(curve, crand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ECDSA key: %w", err)
	}

	return &KeyPair{Private: priv, Public: &priv.PublicKey}, nil
}

func GenerateECDSAKeyPairFunction(curve elliptic.Curve) func() (*KeyPair, error) {
	return func() (*KeyPair, error) { return GenerateECDSAKeyPair(curve) }
}

func GenerateECDHKeyPair(curve ecdh.Curve) (*KeyPair, error) {
	priv, err := curve.GenerateKey(crand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate ECDH key: %w", err)
	}

	return &KeyPair{Private: priv, Public: priv.PublicKey()}, nil
}

func GenerateECDHKeyPairFunction(curve ecdh.Curve) func() (*KeyPair, error) {
	return func() (*KeyPair, error) { return GenerateECDHKeyPair(curve) }
}

func GenerateEDDSAKeyPair(curve string) (*KeyPair, error) {
	switch curve {
	case EdCurveEd25519:
		pub, priv, err := ed25519.GenerateKey(crand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate Ed25519 key: %w", err)
		}

		return &KeyPair{Private: priv, Public: pub}, nil
	case EdCurveEd448:
		pub, priv, err := ed448.GenerateKey(crand.Reader)
		if err != nil {
			return nil, fmt.Errorf("failed to generate Ed448 key: %w", err)
		}

		return &KeyPair{Private: priv, Public: pub}, nil
	default:
		return nil, fmt.Errorf("unsupported Ed curve: %s", curve)
	}
}

func GenerateEDDSAKeyPairFunction(curve string) func() (*KeyPair, error) {
	return func() (*KeyPair, error) { return GenerateEDDSAKeyPair(curve) }
}

func GenerateAESKey(bits int) (SecretKey, error) {
	switch bits {
	case 128, 192, 256:
		key := make([]byte, bits/8)
		if _, err := crand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate AES key: %w", err)
		}

		return key, nil
	default:
		return nil, fmt.Errorf("invalid AES key size: %d", bits)
	}
}

func GenerateAESKeyFunction(bits int) func() (SecretKey, error) {
	return func() (SecretKey, error) { return GenerateAESKey(bits) }
}

// GenerateAESHSKey generates a combined AES-CBC + HMAC-SHA2 key as used by
// AES-HS authenticated-encryption constructions (AES key || HMAC key, each
// half the requested total bit size).
func GenerateAESHSKey(bits int) (SecretKey, error) {
	switch bits {
	case 256, 384, 512:
		key := make([]byte, bits/8)
		if _, err := crand.Read(key); err != nil {
			return nil, fmt.Errorf("failed to generate AES HAMC-SHA2 key: %w", err)
		}

		return key, nil
	default:
		return nil, fmt.Errorf("invalid AES HAMC-SHA2 key size: %d", bits)
	}
}

func GenerateAESHSKeyFunction(bits int) func() (SecretKey, error) {
	return func() (SecretKey, error) { return GenerateAESHSKey(bits) }
}

const minHMACKeyBits = 256

func GenerateHMACKey(bits int) (SecretKey, error) {
	if bits < minHMACKeyBits {
		return nil, fmt.Errorf("invalid HMAC key size: %d, must be >= %d", bits, minHMACKeyBits)
	}

	key := make([]byte, bits/8)
	if _, err := crand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate HMAC key: %w", err)
	}

	return key, nil
}

func GenerateHMACKeyFunction(bits int) func() (SecretKey, error) {
	return func() (SecretKey, error) { return GenerateHMACKey(bits) }
}

// HMACSHA256 returns the HMAC-SHA256 tag of data under key. It is a small
// helper kept next to the HMAC key generators.
func HMACSHA256(key, data []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(data)

	return mac.Sum(nil)
}
