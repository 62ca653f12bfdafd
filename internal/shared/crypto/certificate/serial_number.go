// Copyright (c) 2025 Justin Cranford

package certificate

import (
	crand "crypto/rand"
	"fmt"
	"math/big"
	"math/rand"
	"time"

	nettlsMagic "nettls/internal/shared/magic"
)

// minSerialNumber and maxSerialNumber bound generated certificate serial
// numbers to the range recommended by CA/Browser Forum baseline requirements:
// at least 64 bits of entropy, and comfortably under the 20-octet limit.
var (
	minSerialNumber = new(big.Int).Lsh(big.NewInt(1), 64)
	maxSerialNumber = new(big.Int).Lsh(big.NewInt(1), 159)
)

// GenerateSerialNumber returns a random serial number in [2^64, 2^159).
func GenerateSerialNumber() (*big.Int, error) {
	span := new(big.Int).Sub(maxSerialNumber, minSerialNumber)

	n, err := crand.Int(crand.Reader, span)
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	return n.Add(n, minSerialNumber), nil
}

// generateNotBeforeNotAfter returns a validity window starting at a random
// point in [now-maxSubtract, now-minSubtract] and lasting requestedDuration,
// so that two certificates issued moments apart don't share an identical
// NotBefore.
func generateNotBeforeNotAfter(now time.Time, requestedDuration, minSubtract, maxSubtract time.Duration) (time.Time, time.Time, error) {
	if requestedDuration <= 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("requestedDuration must be positive")
	}

	span := maxSubtract - minSubtract
	if span < 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("minSubtract must be <= maxSubtract")
	}

	subtract := minSubtract
	if span > 0 {
		subtract += time.Duration(rand.Int63n(int64(span))) //nolint:gosec // jitter only, not security sensitive
	}

	// NotBefore jitters backward from now to absorb clock skew between
	// issuer and relying party; NotAfter is anchored at now+requestedDuration,
	// so the resulting validity window (notAfter-notBefore) is
	// requestedDuration plus whatever backward jitter was applied.
	notBefore := now.Add(-subtract)
	notAfter := now.Add(requestedDuration)

	return notBefore, notAfter, nil
}

func randomizedNotBeforeNotAfterCA(now time.Time, requestedDuration, minSubtract, maxSubtract time.Duration) (time.Time, time.Time, error) {
	if requestedDuration > nettlsMagic.TLSDefaultMaxCACertDuration {
		return time.Time{}, time.Time{}, fmt.Errorf("requestedDuration exceeds maxCACertDuration")
	}

	notBefore, notAfter, err := generateNotBeforeNotAfter(now, requestedDuration, minSubtract, maxSubtract)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if notAfter.Sub(notBefore) > nettlsMagic.TLSDefaultMaxCACertDuration {
		return time.Time{}, time.Time{}, fmt.Errorf("actual duration exceeds maxCACertDuration")
	}

	return notBefore, notAfter, nil
}

func randomizedNotBeforeNotAfterEndEntity(now time.Time, requestedDuration, minSubtract, maxSubtract time.Duration) (time.Time, time.Time, error) {
	if requestedDuration > nettlsMagic.TLSDefaultSubscriberCertDuration {
		return time.Time{}, time.Time{}, fmt.Errorf("requestedDuration exceeds maxSubscriberCertDuration")
	}

	notBefore, notAfter, err := generateNotBeforeNotAfter(now, requestedDuration, minSubtract, maxSubtract)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	if notAfter.Sub(notBefore) > nettlsMagic.TLSDefaultSubscriberCertDuration {
		return time.Time{}, time.Time{}, fmt.Errorf("actual duration exceeds maxSubscriberCertDuration")
	}

	return notBefore, notAfter, nil
}
