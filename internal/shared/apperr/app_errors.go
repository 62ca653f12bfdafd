// Copyright (c) 2025 Justin Cranford

// Package apperr collects sentinel errors shared across the module and small
// helpers for testing against them.
package apperr

import "errors"

var (
	ErrCantBeNil        = errors.New("value can't be nil")
	ErrCantBeEmpty      = errors.New("value can't be empty")
	ErrUUIDCantBeNil    = errors.New("UUID can't be nil")
	ErrUUIDCantBeZero   = errors.New("UUID can't be zero")
	ErrUUIDCantBeMax    = errors.New("UUID can't be max")
	ErrUUIDsCantBeNil   = errors.New("UUIDs can't be nil")
	ErrUUIDsCantBeEmpty = errors.New("UUIDs can't be empty")

	ErrJWKMustBeEncryptJWK = errors.New("JWK must be an encrypt JWK")
	ErrJWKMustBeDecryptJWK = errors.New("JWK must be a decrypt JWK")
	ErrJWKMustBeSignJWK    = errors.New("JWK must be a sign JWK")
	ErrJWKMustBeVerifyJWK  = errors.New("JWK must be a verify JWK")
)

// Errs is the registry of generic sentinel errors recognized by IsAppErr.
// JWK-specific sentinels are intentionally excluded from this slice: they are
// validated directly by message in their own tests.
var Errs = []error{
	ErrCantBeNil,
	ErrCantBeEmpty,
	ErrUUIDCantBeNil,
	ErrUUIDCantBeZero,
	ErrUUIDCantBeMax,
	ErrUUIDsCantBeNil,
	ErrUUIDsCantBeEmpty,
}

// IsAppErr reports whether target is one of this package's sentinel errors.
func IsAppErr(target error) bool {
	if target == nil {
		return false
	}

	return ContainsError(Errs, target)
}

// ContainsError reports whether errs contains target, compared with errors.Is.
func ContainsError(errs []error, target error) bool {
	if target == nil {
		return false
	}

	for _, err := range errs {
		if errors.Is(err, target) {
			return true
		}
	}

	return false
}
