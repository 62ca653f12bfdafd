// Copyright (c) 2025 Justin Cranford
//
//

// Package magic collects named constants used across the module so that call
// sites never carry bare numeric or string literals.
package magic

import "time"

// Key sizes (bits unless noted).
const (
	DefaultMetricsBatchSize = 2048 // default RSA modulus size, bits
	RSA3072KeySize          = 3072
	RSA4096KeySize          = 4096

	AESKeySize128 = 128
	AESKeySize192 = 192
	AESKeySize256 = 256

	AESHSKeySize256 = 256
	AESHSKeySize384 = 384
	AESHSKeySize512 = 512

	MinHMACKeySize              = 256
	DefaultTracesBatchSize      = 512  // reused below as an HMAC bit-size example
	DefaultLogsBatchSize        = 1024 // reused below as an HMAC bit-size example
	MaxUnsealSharedSecrets      = 256
	JoseJAMaxMaterials          = 7 // deliberately invalid key size for negative tests
	BitsToBytes                 = 8
	RealmMinBearerTokenLengthBytes = 32
	IMMinPasswordLength          = 512 // used only as an offset in a below-minimum test
)

const (
	EdCurveEd25519 = "Ed25519"
	EdCurveEd448   = "Ed448"
)

// Digest algorithm names accepted by the digests package, and the HKDF RFC
// 5869 output-length ceiling (255 * hash length) keyed per algorithm.
const (
	SHA224 = "SHA224"
	SHA256 = "SHA256"
	SHA384 = "SHA384"
	SHA512 = "SHA512"

	HKDFMaxMultiplier      = 255
	HKDFSHA224OutputLength = 28
	HMACSHA384KeySize      = 48
	MinSerialNumberBits    = 64
)

// FQDN validation limits (RFC 1035) and PEM block type labels shared by the
// tls and asn1 packages.
const (
	FQDNMaxLength      = 253
	FQDNLabelMaxLength = 63

	StringPEMTypeCertificate     = "CERTIFICATE"
	StringPEMTypePKCS8PrivateKey = "PRIVATE KEY"
	StringPEMTypeECPrivateKey    = "EC PRIVATE KEY"

	DefaultOTLPHostnameDefault = "localhost"
)

// Test probabilities, used by random.SkipByProbability to thin out expensive
// parameterized test cases in short runs.
const (
	TestProbAlways  float32 = 1.0
	TestProbTenth   float32 = 0.1
	TestProbQuarter float32 = 0.25
)

// File permissions.
const (
	FilePermOwnerReadWriteOnly                             = 0o600
	FilePermOwnerReadWriteExecuteGroupOtherReadExecute      = 0o755
	CacheFilePermissions                                    = 0o600
	CICDOutputFilePermissions                               = 0o644
)

// TLS certificate validity durations.
const (
	TLSDefaultValidityCACertYears           = 10
	TLSTestCACertValidity20Years            = 20
	TLSTestCACertValidity5Years             = 5
	TLSTestEndEntityCertValidity396Days     = 396
	TLSTestEndEntityCertValidity30Days      = 30
	TLSTestEndEntityCertValidity1Year       = 365
	TLSDefaultMaxCACertDuration             = 20 * 365 * 24 * time.Hour
	TLSDefaultSubscriberCertDuration        = 398 * 24 * time.Hour
	CertificateRandomizationNotBeforeMinutes = 10
)

// Test-only fixture values used by generic-helper table tests.
const (
	JoseJADefaultMaxMaterials = 10
	MaxErrorDisplay           = 20

	TestSleepCancelChanContext = 50 * time.Millisecond
)

// runtime.GOOS values used for platform-specific test skipping.
const (
	OSNameWindows = "windows"
)

// Test-only timing constants for TLS echo-server style integration tests.
const (
	TestTLSServerStartupDelay = 50 * time.Millisecond
	TestTLSServerWriteTimeout = 5 * time.Second
	TestTLSServerReadTimeout  = 5 * time.Second
	TestTLSRetryBaseDelay     = 10 * time.Millisecond
	TestTLSMaxRetries         = 5

	TestHTTPServerStartupDelay = 50 * time.Millisecond
	TestHTTPServerWriteTimeout = 5 * time.Second
	TestHTTPServerReadTimeout  = 5 * time.Second
	TestHTTPRetryBaseDelay     = 10 * time.Millisecond
	TestHTTPMaxRetries         = 5

	TestNegativeDuration = -1
	TestHourDuration      = time.Hour
)

// Misc network/test constants.
const (
	IPv4Loopback                       = "127.0.0.1"
	DefaultSidecarHealthCheckMaxRetries = 5
)
