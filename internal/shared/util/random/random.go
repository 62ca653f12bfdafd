// Copyright (c) 2025 Justin Cranford
//
//

// Package random generates cryptographically secure random byte material
// and simple, unique username/password fixtures for dev-mode and test
// bootstrapping.
package random

import (
	"crypto/rand"
	"fmt"
	mathrand "math/rand/v2"
	"testing"

	"github.com/google/uuid"
)

// GenerateMultipleBytes returns count independently-generated cryptographically
// secure random byte slices, each of the given length.
func GenerateMultipleBytes(count int, length int) ([][]byte, error) {
	if count < 1 {
		return nil, fmt.Errorf("count can't be less than 1")
	}

	if length < 1 {
		return nil, fmt.Errorf("length can't be less than 1")
	}

	result := make([][]byte, count)

	for i := range count {
		buf := make([]byte, length)

		if _, err := rand.Read(buf); err != nil {
			return nil, fmt.Errorf("failed to generate random bytes: %w", err)
		}

		result[i] = buf
	}

	return result, nil
}

// GenerateUsernameSimple returns a "user_<uuid>" username unique across
// calls.
func GenerateUsernameSimple() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate username: %w", err)
	}

	return "user_" + id.String(), nil
}

// GeneratePasswordSimple returns a "pass_<uuid>" password unique across
// calls.
func GeneratePasswordSimple() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}

	return "pass_" + id.String(), nil
}

// SkipByProbability skips t in -short runs unless a random draw in [0,1)
// falls below prob; outside -short runs it never skips.
func SkipByProbability(t *testing.T, prob float32) {
	t.Helper()

	if testing.Short() && mathrand.Float32() >= prob { //nolint:gosec // test sampling only
		t.Skipf("skipped in short mode (run probability %.2f)", prob)
	}
}
