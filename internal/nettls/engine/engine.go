// Copyright (c) 2025 Justin Cranford
//
//

// Package engine adapts the stdlib crypto/tls package, which is blocking
// and transport-owning, behind a non-blocking "feed bytes in, drain bytes
// out" contract the endpoint state machine can drive cooperatively over an
// arbitrary pull/push transport. A background goroutine runs the real
// *tls.Conn over one end of an in-memory net.Pipe; the Session's exported
// methods pump bytes across the pipe's other end without ever blocking the
// caller longer than a best-effort drain.
package engine

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"sync"
)

// ErrWouldBlock is returned by Session methods when the handshake or data
// transfer cannot make further progress without more input or output
// capacity becoming available on the real transport.
var ErrWouldBlock = errors.New("nettls/engine: would block")

// ErrInterrupted models a transient, retry-safe failure distinct from
// ErrWouldBlock (reserved for future real-engine parity; crypto/tls never
// raises it directly, but callers may inject it via Translate paths that
// observe OS-level EINTR equivalents upstream of the transport).
var ErrInterrupted = errors.New("nettls/engine: interrupted")

// ErrRehandshake signals the engine observed (or is driving) a TLS
// renegotiation request during a read.
var ErrRehandshake = errors.New("nettls/engine: rehandshake requested")

// ErrNoRenegotiation signals the peer sent a "no_renegotiation" warning
// alert in response to a switch request.
var ErrNoRenegotiation = errors.New("nettls/engine: no_renegotiation alert received")

// WarningAlertError wraps a non-fatal TLS alert the engine observed.
type WarningAlertError struct {
	Code string
}

func (e *WarningAlertError) Error() string { return "nettls/engine: warning alert: " + e.Code }

// Role distinguishes a client-side from a server-side session.
type Role int

const (
	RoleClient Role = iota
	RoleServer
)

// Session wraps one *tls.Conn driven over an internal net.Pipe, exposing
// non-blocking StartHandshake/HandshakeComplete/Feed/Drain/Read/Write
// primitives to the endpoint.
type Session struct {
	role Role

	tlsConn  *tls.Conn
	innerEnd net.Conn // our side of the pipe; tlsConn owns the other side

	mu            sync.Mutex
	outbound      bytes.Buffer // bytes tlsConn wrote to the wire, awaiting real transport send
	plaintext     bytes.Buffer // decrypted application data, awaiting Read
	plaintextErr  error        // sticky terminal error observed by pumpPlaintext (e.g. io.EOF)
	handshakeOnce sync.Once
	handshakeDone chan struct{}
	handshakeErr  error
	closed        bool
	feedCh        chan []byte
	feedDone      chan struct{}
}

// NewSession constructs a Session around a *tls.Config. The handshake is
// not started until the first call to Handshake.
func NewSession(role Role, cfg *tls.Config) *Session {
	innerEnd, engineEnd := net.Pipe()

	var tlsConn *tls.Conn
	if role == RoleClient {
		tlsConn = tls.Client(engineEnd, cfg)
	} else {
		tlsConn = tls.Server(engineEnd, cfg)
	}

	s := &Session{
		role:          role,
		tlsConn:       tlsConn,
		innerEnd:      innerEnd,
		handshakeDone: make(chan struct{}),
		feedCh:        make(chan []byte, 64),
		feedDone:      make(chan struct{}),
	}

	go s.pumpOutbound()
	go s.pumpInbound()
	go s.pumpPlaintext()

	return s
}

// pumpOutbound drains bytes the tls.Conn writes onto the pipe into the
// session's outbound buffer, where Drain can retrieve them non-blockingly.
func (s *Session) pumpOutbound() {
	buf := make([]byte, 4096)

	for {
		n, err := s.innerEnd.Read(buf)
		if n > 0 {
			s.mu.Lock()
			s.outbound.Write(buf[:n])
			s.mu.Unlock()
		}

		if err != nil {
			return
		}
	}
}

// pumpInbound serializes writes onto the pipe so Feed never blocks its
// caller: it owns the only goroutine allowed to call innerEnd.Write.
func (s *Session) pumpInbound() {
	defer close(s.feedDone)

	for chunk := range s.feedCh {
		if _, err := s.innerEnd.Write(chunk); err != nil {
			return
		}
	}
}

// pumpPlaintext is the only goroutine allowed to call tlsConn.Read. It runs
// the (blocking) decrypt loop in the background and stashes whatever
// plaintext falls out into s.plaintext, so the exported Read can be a
// non-blocking "take what's already decrypted" call instead of blocking the
// caller on the next Feed. A terminal error (io.EOF on close_notify, or any
// fatal protocol error) is latched into s.plaintextErr and returned to every
// Read call from then on.
func (s *Session) pumpPlaintext() {
	buf := make([]byte, 4096)

	for {
		n, err := s.tlsConn.Read(buf)

		if n > 0 {
			s.mu.Lock()
			s.plaintext.Write(buf[:n])
			s.mu.Unlock()
		}

		if err != nil {
			s.mu.Lock()
			s.plaintextErr = err
			s.mu.Unlock()

			return
		}
	}
}

// Feed hands bytes pulled from the real transport to the engine for
// consumption by the next handshake/read step. Never blocks the caller
// beyond channel send (buffered, sized generously for typical record
// sizes); a full buffer indicates the caller is feeding faster than the
// engine can consume, which the endpoint should treat as backpressure.
func (s *Session) Feed(data []byte) {
	if len(data) == 0 {
		return
	}

	cp := make([]byte, len(data))
	copy(cp, data)

	select {
	case s.feedCh <- cp:
	default:
		// Back-pressure: block briefly rather than drop TLS wire bytes,
		// which would desynchronize the record stream.
		s.feedCh <- cp
	}
}

// Drain returns and clears any bytes the engine has produced for the real
// transport to send out.
func (s *Session) Drain() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.outbound.Len() == 0 {
		return nil
	}

	out := make([]byte, s.outbound.Len())
	copy(out, s.outbound.Bytes())
	s.outbound.Reset()

	return out
}

// HasPendingOutbound reports whether Drain would return data right now.
func (s *Session) HasPendingOutbound() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.outbound.Len() > 0
}

// StartHandshake launches the background handshake goroutine exactly once.
func (s *Session) StartHandshake() {
	s.handshakeOnce.Do(func() {
		go func() {
			s.handshakeErr = s.tlsConn.HandshakeContext(context.Background())
			close(s.handshakeDone)
		}()
	})
}

// HandshakeComplete reports whether the background handshake goroutine has
// finished, and if so, its error (nil on success).
func (s *Session) HandshakeComplete() (done bool, err error) {
	select {
	case <-s.handshakeDone:
		return true, s.handshakeErr
	default:
		return false, nil
	}
}

// ConnectionState exposes the underlying *tls.Conn's negotiated state once
// the handshake has completed.
func (s *Session) ConnectionState() tls.ConnectionState {
	return s.tlsConn.ConnectionState()
}

// PeerCertificates returns the verified (or raw, if unverified) peer
// certificate chain the engine observed during handshake.
func (s *Session) PeerCertificates() []*x509.Certificate {
	return s.tlsConn.ConnectionState().PeerCertificates
}

// Read returns decrypted application data already produced by the
// background pumpPlaintext goroutine, never blocking the caller: if nothing
// has been decrypted yet it returns (0, ErrWouldBlock), and once
// pumpPlaintext has latched a terminal error (typically io.EOF on
// close_notify) that error is returned after the buffered plaintext is
// drained.
func (s *Session) Read(buf []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.plaintext.Len() > 0 {
		return s.plaintext.Read(buf)
	}

	if s.plaintextErr != nil {
		return 0, s.plaintextErr
	}

	return 0, ErrWouldBlock
}

// HasPendingPlaintext reports whether Read would return data right now
// without blocking on a further Feed.
func (s *Session) HasPendingPlaintext() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.plaintext.Len() > 0
}

// Write attempts to write application data. Like Read, correctness depends
// on the endpoint only calling Write when there is room to make progress;
// ErrWouldBlock is surfaced by the caller's direction bookkeeping, not by
// this method directly, since crypto/tls.Write always either fully
// succeeds, blocks on the pipe (resolved by the background pumpOutbound
// goroutine continuously draining), or fails fatally.
func (s *Session) Write(buf []byte) (int, error) {
	return s.tlsConn.Write(buf)
}

// CloseNotify sends a TLS close_notify alert.
func (s *Session) CloseNotify() error {
	return s.tlsConn.CloseWrite()
}

// Close tears down the session's internal pipe and goroutines. Safe to
// call multiple times.
func (s *Session) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.closed = true
	s.mu.Unlock()

	close(s.feedCh)
	_ = s.tlsConn.Close()
	_ = s.innerEnd.Close()

	return nil
}

// NegotiatedProtocol returns the ALPN protocol selected during handshake,
// if any.
func (s *Session) NegotiatedProtocol() string {
	return s.ConnectionState().NegotiatedProtocol
}

// CipherSuiteName returns the human-readable name of the negotiated cipher
// suite.
func (s *Session) CipherSuiteName() string {
	return tls.CipherSuiteName(s.ConnectionState().CipherSuite)
}

// Version returns the negotiated TLS protocol version string.
func (s *Session) Version() string {
	switch s.ConnectionState().Version {
	case tls.VersionTLS13:
		return "TLS1.3"
	case tls.VersionTLS12:
		return "TLS1.2"
	case tls.VersionTLS11:
		return "TLS1.1"
	case tls.VersionTLS10:
		return "TLS1.0"
	default:
		return "unknown"
	}
}

// SessionState returns a session blob, and a bool indicating whether one is
// available yet. The blob records only the negotiated version and server
// name; it holds no session secrets and cannot be used to resume a session.
func (s *Session) SessionState() ([]byte, bool) {
	state := s.ConnectionState()
	if !state.HandshakeComplete {
		return nil, false
	}

	raw, err := marshalSessionState(&state)
	if err != nil {
		return nil, false
	}

	return raw, true
}

func marshalSessionState(state *tls.ConnectionState) ([]byte, error) {
	return []byte(fmt.Sprintf("v1|%d|%s", state.Version, state.ServerName)), nil
}
