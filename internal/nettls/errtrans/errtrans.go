// Copyright (c) 2025 Justin Cranford
//
//

// Package errtrans wraps every call into the native engine (internal/nettls/engine)
// and translates its raw error vocabulary into the endpoint's typed error
// taxonomy: suspension signals the caller retries, switch (renegotiation)
// signals threaded through the error channel, non-fatal warnings, and fatal
// verification/protocol errors.
package errtrans

import (
	"errors"
	"fmt"

	nettlsEngine "nettls/internal/nettls/engine"
)

// Direction distinguishes which half of the connection an Again/EAGAIN
// condition blocks on.
type Direction int

const (
	DirectionRead Direction = iota
	DirectionWrite
)

// Sentinel errors for the Suspension and Interrupted taxonomy tiers (§7).
var (
	ErrEAGAINRead  = errors.New("nettls: operation would block on read")
	ErrEAGAINWrite = errors.New("nettls: operation would block on write")
	ErrInterrupted = errors.New("nettls: operation interrupted, retry")
)

// SwitchRequest signals that the peer asked to rehandshake (responder side).
type SwitchRequest struct{}

func (SwitchRequest) Error() string { return "nettls: peer requested rehandshake" }

// SwitchResponse signals the outcome of a switch this endpoint initiated.
type SwitchResponse struct {
	Accepted bool
}

func (r SwitchResponse) Error() string {
	if r.Accepted {
		return "nettls: peer accepted rehandshake"
	}

	return "nettls: peer refused rehandshake"
}

// Warning is a non-fatal engine condition the caller may continue past.
type Warning struct {
	Code string
}

func (w Warning) Error() string { return "nettls: warning: " + w.Code }

// UnexpectedStateError is a programmer error: the operation is not allowed
// in the endpoint's current state.
type UnexpectedStateError struct {
	Op    string
	State string
}

func (e *UnexpectedStateError) Error() string {
	return fmt.Sprintf("nettls: operation %q not allowed in state %q", e.Op, e.State)
}

// CertVerificationFailedError wraps NETTLS_CERT_VERIFICATION_FAILED.
type CertVerificationFailedError struct {
	Reason error
}

func (e *CertVerificationFailedError) Error() string {
	return "nettls: NETTLS_CERT_VERIFICATION_FAILED: " + e.Reason.Error()
}

func (e *CertVerificationFailedError) Unwrap() error { return e.Reason }

// NameVerificationFailedError wraps NETTLS_NAME_VERIFICATION_FAILED.
type NameVerificationFailedError struct {
	Expected string
}

func (e *NameVerificationFailedError) Error() string {
	return "nettls: NETTLS_NAME_VERIFICATION_FAILED: peer name does not match " + e.Expected
}

// UserVerificationFailedError wraps NETTLS_USER_VERIFICATION_FAILED.
type UserVerificationFailedError struct{}

func (e *UserVerificationFailedError) Error() string {
	return "nettls: NETTLS_USER_VERIFICATION_FAILED"
}

// NoCertificateError wraps NETTLS_NO_CERTIFICATE_FOUND.
type NoCertificateError struct{}

func (e *NoCertificateError) Error() string { return "nettls: NETTLS_NO_CERTIFICATE_FOUND" }

// TLSError wraps any other fatal native engine error, including
// credential/configuration construction failures.
type TLSError struct {
	Code string
	Err  error
}

func (e *TLSError) Error() string {
	if e.Code == "" {
		return "nettls: tls error: " + e.Err.Error()
	}

	return fmt.Sprintf("nettls: tls error [%s]: %s", e.Code, e.Err.Error())
}

func (e *TLSError) Unwrap() error { return e.Err }

// Translate converts a raw error returned by the native engine (or nil) into
// the endpoint's typed error taxonomy, given the direction last attempted
// and whether warnings should surface as non-fatal Warning values rather
// than being swallowed.
func Translate(err error, direction Direction, warningsEnabled bool) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, nettlsEngine.ErrWouldBlock):
		if direction == DirectionWrite {
			return ErrEAGAINWrite
		}

		return ErrEAGAINRead
	case errors.Is(err, nettlsEngine.ErrInterrupted):
		return ErrInterrupted
	case errors.Is(err, nettlsEngine.ErrRehandshake):
		return SwitchRequest{}
	case errors.Is(err, nettlsEngine.ErrNoRenegotiation):
		return SwitchResponse{Accepted: false}
	}

	var warning *nettlsEngine.WarningAlertError
	if errors.As(err, &warning) {
		if warningsEnabled {
			return Warning{Code: warning.Code}
		}

		return nil
	}

	return &TLSError{Err: err}
}
