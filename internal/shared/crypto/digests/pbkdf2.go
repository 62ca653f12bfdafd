// Copyright (c) 2025 Justin Cranford
//
//

package digests

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2" //nolint:staticcheck // teacher-aligned: pbkdf2 is deprecated upstream but still the chosen KDF here
)

const (
	pbkdf2Iterations = 600_000
	pbkdf2SaltBytes  = 16
	pbkdf2KeyBytes   = 32
	pbkdf2Algorithm  = "pbkdf2-sha256"
	pbkdf2Version    = "{1}"
)

var ErrEmptySecret = errors.New("secret cannot be empty")

// HashSecretPBKDF2 derives a salted PBKDF2-HMAC-SHA256 hash of secret,
// formatted as "{1}$pbkdf2-sha256$<iterations>$<salt>$<derived-key>" with
// unpadded standard base64 fields.
func HashSecretPBKDF2(secret string) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}

	salt := make([]byte, pbkdf2SaltBytes)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	dk := pbkdf2.Key([]byte(secret), salt, pbkdf2Iterations, pbkdf2KeyBytes, sha256.New)

	return fmt.Sprintf("%s$%s$%d$%s$%s",
		pbkdf2Version, pbkdf2Algorithm, pbkdf2Iterations,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(dk),
	), nil
}

// HashLowEntropyNonDeterministic hashes a low-entropy secret (e.g. a
// user-chosen password) the same way HashSecretPBKDF2 does; the name
// documents intent at call sites that hash passwords rather than
// high-entropy key material.
func HashLowEntropyNonDeterministic(secret string) (string, error) {
	return HashSecretPBKDF2(secret)
}

// VerifySecret checks provided against a stored hash produced by
// HashSecretPBKDF2 (current "{1}$pbkdf2-sha256$..." format), a bare legacy
// "pbkdf2-sha256$..." hash, or a legacy bcrypt hash ("$2a$"/"$2b$"/"$2y$"),
// to support migrating a credential store from an older format.
func VerifySecret(stored, provided string) (bool, error) {
	if stored == "" {
		return false, errors.New("stored hash empty")
	}

	if strings.HasPrefix(stored, "$2a$") || strings.HasPrefix(stored, "$2b$") || strings.HasPrefix(stored, "$2y$") {
		return verifyBcrypt(stored, provided)
	}

	return verifyPBKDF2(stored, provided)
}

func verifyBcrypt(stored, provided string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(provided))
	if err == nil {
		return true, nil
	}

	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}

	return false, fmt.Errorf("bcrypt comparison failed: %w", err)
}

func verifyPBKDF2(stored, provided string) (bool, error) {
	trimmed := strings.TrimPrefix(stored, pbkdf2Version+"$")

	parts := strings.Split(trimmed, "$")
	if len(parts) != 4 || parts[0] != pbkdf2Algorithm {
		return false, errors.New("invalid legacy hash format")
	}

	iterations, err := strconv.Atoi(parts[1])
	if err != nil || iterations <= 0 {
		return false, errors.New("invalid iterations")
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false, errors.New("invalid salt encoding")
	}

	dk, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false, errors.New("invalid dk encoding")
	}

	candidate := pbkdf2.Key([]byte(provided), salt, iterations, len(dk), sha256.New)

	return subtle.ConstantTimeCompare(candidate, dk) == 1, nil
}
