// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

package creds_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	nettlsCreds "nettls/internal/nettls/creds"
)

func writeSelfSignedPEM(t *testing.T) (certPath, keyPath string, cert *x509.Certificate) {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "creds-test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		IsCA:         true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	require.NoError(t, err)

	parsed, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	dir := t.TempDir()
	certPath = filepath.Join(dir, "cert.pem")
	keyPath = filepath.Join(dir, "key.pem")

	require.NoError(t, os.WriteFile(certPath, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyPath, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))

	return certPath, keyPath, parsed
}

func TestBuilderWithNoSourcesProducesEmptyPool(t *testing.T) {
	credentials, err := nettlsCreds.NewBuilder().Build()
	require.NoError(t, err)
	require.False(t, credentials.SystemTrust)
	require.NotNil(t, credentials.TrustPool)
	require.Empty(t, credentials.Identities)
}

func TestBuilderAddTrustFromPEMFile(t *testing.T) {
	certPath, _, cert := writeSelfSignedPEM(t)

	credentials, err := nettlsCreds.NewBuilder().
		AddTrust(nettlsCreds.PemFileCertSource{Path: certPath}).
		Build()
	require.NoError(t, err)

	_, err = cert.Verify(x509.VerifyOptions{Roots: credentials.TrustPool})
	require.NoError(t, err)
}

func TestBuilderAddIdentityMatchingKeyAndCertSucceeds(t *testing.T) {
	certPath, keyPath, cert := writeSelfSignedPEM(t)

	credentials, err := nettlsCreds.NewBuilder().
		AddIdentity(nettlsCreds.PemFileCertSource{Path: certPath}, nettlsCreds.PemFileKeySource{Path: keyPath}, nil).
		Build()
	require.NoError(t, err)
	require.Len(t, credentials.Identities, 1)
	require.Equal(t, cert.Raw, credentials.Identities[0].Leaf.Raw)
}

func TestBuilderAddIdentityMismatchedKeyFails(t *testing.T) {
	certPath, _, _ := writeSelfSignedPEM(t)
	_, otherKeyPath, _ := writeSelfSignedPEM(t)

	_, err := nettlsCreds.NewBuilder().
		AddIdentity(nettlsCreds.PemFileCertSource{Path: certPath}, nettlsCreds.PemFileKeySource{Path: otherKeyPath}, nil).
		Build()
	require.Error(t, err)

	var credErr *nettlsCreds.CredentialError
	require.ErrorAs(t, err, &credErr)
}

func TestBuilderAddTrustMissingFileFails(t *testing.T) {
	_, err := nettlsCreds.NewBuilder().
		AddTrust(nettlsCreds.PemFileCertSource{Path: "/nonexistent/path.pem"}).
		Build()
	require.Error(t, err)
}

func TestBuilderWithSystemTrustPopulatesNonNilPool(t *testing.T) {
	credentials, err := nettlsCreds.NewBuilder().WithSystemTrust(true).Build()
	require.NoError(t, err)
	require.True(t, credentials.SystemTrust)
	require.NotNil(t, credentials.TrustPool)
}
