// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

// Package sessioncache is the Session Cache Adapter (SPEC_FULL §4.4): it
// wraps a raw key/bytes storage backend (internal/nettls/sessionstore, or
// anything satisfying Store) into the three store/remove/retrieve
// callbacks an Endpoint installs via SetSessionCache, threading our_cert
// through a small self-describing envelope alongside the engine's native
// session blob.
package sessioncache

import (
	"context"
	"crypto/x509"
	"encoding/binary"
	"fmt"
)

// Store is the raw key/bytes collaborator the adapter persists envelopes
// into (§6's "Session cache store" collaborator interface).
type Store interface {
	Store(ctx context.Context, key string, data []byte) error
	Retrieve(ctx context.Context, key string) ([]byte, error)
	Remove(ctx context.Context, key string) error
}

// Endpoint is the subset of *endpoint.Endpoint the adapter needs: reading
// our_cert to populate it on store, and writing it back on retrieve.
type Endpoint interface {
	GetEndpointCreds() *x509.Certificate
	SetOurCert(cert *x509.Certificate)
}

// envelopeMagic tags the wire format so a future incompatible layout can be
// detected rather than silently misparsed.
const envelopeMagic uint32 = 0x6e746c73 // "ntls"

// encodeEnvelope packs {native_blob, our_cert} into a single self-describing,
// stable byte layout: magic, then length-prefixed native blob, then
// length-prefixed certificate DER (zero-length when our_cert is nil).
func encodeEnvelope(nativeBlob []byte, cert *x509.Certificate) []byte {
	var certDER []byte
	if cert != nil {
		certDER = cert.Raw
	}

	out := make([]byte, 0, 4+4+len(nativeBlob)+4+len(certDER))

	var header [4]byte
	binary.BigEndian.PutUint32(header[:], envelopeMagic)
	out = append(out, header[:]...)

	out = appendLengthPrefixed(out, nativeBlob)
	out = appendLengthPrefixed(out, certDER)

	return out
}

func appendLengthPrefixed(out []byte, data []byte) []byte {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(data)))

	out = append(out, length[:]...)

	return append(out, data...)
}

// decodeEnvelope reverses encodeEnvelope, returning the native blob and the
// parsed certificate (nil if none was stored).
func decodeEnvelope(raw []byte) (nativeBlob []byte, cert *x509.Certificate, err error) {
	if len(raw) < 4 {
		return nil, nil, fmt.Errorf("nettls/sessioncache: envelope too short")
	}

	if binary.BigEndian.Uint32(raw[:4]) != envelopeMagic {
		return nil, nil, fmt.Errorf("nettls/sessioncache: envelope has unrecognized magic")
	}

	rest := raw[4:]

	nativeBlob, rest, err = readLengthPrefixed(rest)
	if err != nil {
		return nil, nil, err
	}

	certDER, _, err := readLengthPrefixed(rest)
	if err != nil {
		return nil, nil, err
	}

	if len(certDER) == 0 {
		return nativeBlob, nil, nil
	}

	cert, err = x509.ParseCertificate(certDER)
	if err != nil {
		return nil, nil, fmt.Errorf("nettls/sessioncache: failed to parse envelope certificate: %w", err)
	}

	return nativeBlob, cert, nil
}

func readLengthPrefixed(buf []byte) (data []byte, rest []byte, err error) {
	if len(buf) < 4 {
		return nil, nil, fmt.Errorf("nettls/sessioncache: truncated length prefix")
	}

	length := binary.BigEndian.Uint32(buf[:4])
	buf = buf[4:]

	if uint32(len(buf)) < length {
		return nil, nil, fmt.Errorf("nettls/sessioncache: truncated envelope field")
	}

	return buf[:length], buf[length:], nil
}

// Callbacks builds the store/remove/retrieve callback trio described in
// SPEC_FULL §4.4, ready to hand to Endpoint.SetSessionCache, backed by
// store and reading/writing ep's our_cert.
func Callbacks(ctx context.Context, ep Endpoint, store Store) (
	storeFn func(key string, data []byte) error,
	removeFn func(key string) error,
	retrieveFn func(key string) ([]byte, error),
) {
	storeFn = func(key string, data []byte) error {
		return store.Store(ctx, key, encodeEnvelope(data, ep.GetEndpointCreds()))
	}

	removeFn = func(key string) error {
		return store.Remove(ctx, key)
	}

	retrieveFn = func(key string) ([]byte, error) {
		raw, err := store.Retrieve(ctx, key)
		if err != nil {
			return nil, err
		}

		nativeBlob, cert, err := decodeEnvelope(raw)
		if err != nil {
			return nil, err
		}

		ep.SetOurCert(cert)

		return nativeBlob, nil
	}

	return storeFn, removeFn, retrieveFn
}
