// Copyright (c) 2025 Justin Cranford
//
//

// Package endpoint implements the Endpoint and its state machine
// (SPEC_FULL §4.4): a mutable TLS session bound to a non-blocking pull/push
// transport, sequencing handshake, data transfer, renegotiation ("switch"),
// and shutdown, translating engine outcomes into the typed suspension and
// error signals from internal/nettls/errtrans.
package endpoint

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
	"sync"

	nettlsEngine "nettls/internal/nettls/engine"
	nettlsErrtrans "nettls/internal/nettls/errtrans"
	nettlsTLSConfig "nettls/internal/nettls/tlsconfig"

	"github.com/google/uuid"
)

// State is one node of the endpoint state machine (SPEC_FULL §4.4).
type State int

const (
	StateStart State = iota
	StateHandshake
	StateDataRW
	StateDataR
	StateDataW
	StateDataRS
	StateSwitching
	StateAccepting
	StateRefusing
	StateEnd
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "Start"
	case StateHandshake:
		return "Handshake"
	case StateDataRW:
		return "DataRW"
	case StateDataR:
		return "DataR"
	case StateDataW:
		return "DataW"
	case StateDataRS:
		return "DataRS"
	case StateSwitching:
		return "Switching"
	case StateAccepting:
		return "Accepting"
	case StateRefusing:
		return "Refusing"
	case StateEnd:
		return "End"
	default:
		return "Unknown"
	}
}

// Direction selects which half of the connection an operation targets.
type Direction int

const (
	DirectionReceive Direction = iota
	DirectionSend
	DirectionAll
)

// Transport is the non-blocking pull/push byte-transfer collaborator
// interface (SPEC_FULL §6). Recv returns (0, nil) on transport EOF and
// (0, engine.ErrWouldBlock) when no bytes are currently available; Send
// returns the number of bytes actually accepted and
// (0, engine.ErrWouldBlock) when the transport cannot currently accept
// more.
type Transport struct {
	Recv func(buf []byte) (int, error)
	Send func(data []byte) (int, error)
}

// Domain is one SNI entry observed during a server-role handshake.
type Domain struct {
	Name string
}

// Endpoint is a TLS session bound to one peer over a Transport.
type Endpoint struct {
	mu sync.Mutex

	role      nettlsEngine.Role
	transport Transport
	config    *nettlsTLSConfig.Config
	session   *nettlsEngine.Session
	peerName  string

	ourCert  *x509.Certificate
	state    State
	transEOF bool

	pendingOutbound []byte
	addressedSNI    []Domain

	cacheStore    func(key string, data []byte) error
	cacheRemove   func(key string) error
	cacheRetrieve func(key string) ([]byte, error)
}

// New creates an Endpoint bound to transport for the given role and
// Configuration. A client Configuration requiring peer authentication
// without peer_name_unchecked must supply a non-empty peerName (fail
// closed per SPEC_FULL §3 invariants).
func New(role nettlsEngine.Role, transport Transport, peerName string, config *nettlsTLSConfig.Config) (*Endpoint, error) {
	if role == nettlsEngine.RoleClient && config.PeerAuth != nettlsTLSConfig.PeerAuthNone &&
		!config.PeerNameUnchecked && peerName == "" {
		return nil, &nettlsErrtrans.TLSError{Err: fmt.Errorf("client configuration requires peer_name unless peer_name_unchecked")}
	}

	stdlibCfg := config.ToStdlibConfig(role == nettlsEngine.RoleServer, peerName)

	ep := &Endpoint{
		role:      role,
		transport: transport,
		config:    config,
		peerName:  peerName,
		state:     StateStart,
	}

	if role == nettlsEngine.RoleServer {
		stdlibCfg.GetConfigForClient = func(hello *tls.ClientHelloInfo) (*tls.Config, error) {
			ep.mu.Lock()
			if hello.ServerName != "" {
				ep.addressedSNI = append(ep.addressedSNI, Domain{Name: hello.ServerName})
			}
			ep.mu.Unlock()

			return nil, nil
		}
	}

	ep.session = nettlsEngine.NewSession(role, stdlibCfg)

	return ep, nil
}

func requireState(op string, state State, allowed ...State) error {
	for _, s := range allowed {
		if state == s {
			return nil
		}
	}

	return &nettlsErrtrans.UnexpectedStateError{Op: op, State: state.String()}
}

// GetState returns the endpoint's current state.
func (e *Endpoint) GetState() State {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.state
}

// GetConfig returns the Configuration currently bound to the endpoint.
func (e *Endpoint) GetConfig() *nettlsTLSConfig.Config {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.config
}

// AtTransportEOF reports the latched transport-EOF bit.
func (e *Endpoint) AtTransportEOF() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.transEOF
}

// pumpLocked drains engine output to the transport and feeds transport
// input to the engine, without blocking beyond what each single
// Recv/Send call does. Caller must hold e.mu.
func (e *Endpoint) pumpLocked() (wouldBlockDirection nettlsErrtrans.Direction, blocked bool) {
	if len(e.pendingOutbound) > 0 {
		n, err := e.transport.Send(e.pendingOutbound)
		if n > 0 {
			e.pendingOutbound = e.pendingOutbound[n:]
		}

		if err != nil && !errors.Is(err, nettlsEngine.ErrWouldBlock) {
			return 0, false
		}

		if len(e.pendingOutbound) > 0 {
			return nettlsErrtrans.DirectionWrite, true
		}
	}

	if out := e.session.Drain(); len(out) > 0 {
		n, err := e.transport.Send(out)
		if n < len(out) {
			e.pendingOutbound = append(e.pendingOutbound, out[n:]...)
		}

		if (err != nil && !errors.Is(err, nettlsEngine.ErrWouldBlock)) || len(e.pendingOutbound) > 0 {
			return nettlsErrtrans.DirectionWrite, true
		}
	}

	buf := make([]byte, 4096)

	n, err := e.transport.Recv(buf)
	if err != nil && errors.Is(err, nettlsEngine.ErrWouldBlock) {
		return nettlsErrtrans.DirectionRead, true
	}

	if n == 0 && err == nil {
		e.transEOF = true
	}

	if n > 0 {
		e.session.Feed(buf[:n])
	}

	return nettlsErrtrans.DirectionRead, false
}

// Hello drives the handshake. Callers retry on EAGAIN_RD/EAGAIN_WR.
func (e *Endpoint) Hello() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := requireState("hello", e.state, StateStart, StateHandshake, StateSwitching); err != nil {
		return err
	}

	if e.state == StateStart {
		e.state = StateHandshake
		e.session.StartHandshake()
	}

	_, blocked := e.pumpLocked()

	done, hsErr := e.session.HandshakeComplete()
	if !done {
		if blocked {
			dir := nettlsErrtrans.DirectionRead
			if len(e.pendingOutbound) > 0 || e.session.HasPendingOutbound() {
				dir = nettlsErrtrans.DirectionWrite
			}

			return nettlsErrtrans.Translate(nettlsEngine.ErrWouldBlock, dir, true)
		}

		return nettlsErrtrans.Translate(nettlsEngine.ErrWouldBlock, nettlsErrtrans.DirectionRead, true)
	}

	if hsErr != nil {
		return &nettlsErrtrans.TLSError{Err: hsErr}
	}

	// ourCert is the leaf of the first identity in this endpoint's own
	// credentials, not anything the peer sent.
	if creds := e.config.Credentials; creds != nil && len(creds.Identities) > 0 {
		id := creds.Identities[0]
		if id.Leaf != nil {
			e.ourCert = id.Leaf
		} else if len(id.Certificate) > 0 {
			if leaf, err := x509.ParseCertificate(id.Certificate[0]); err == nil {
				e.ourCert = leaf
			}
		}
	}

	e.state = StateDataRW

	return nil
}

// Verify runs the post-handshake verification sequence described in
// SPEC_FULL §4.4 (peer presence, chain validation, name check, user hook).
func (e *Endpoint) Verify() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	state := e.session.ConnectionState()

	if len(state.PeerCertificates) == 0 {
		if e.config.PeerAuth == nettlsTLSConfig.PeerAuthRequired {
			return &nettlsErrtrans.NoCertificateError{}
		}

		return nil
	}

	if e.config.PeerAuth != nettlsTLSConfig.PeerAuthNone {
		opts := x509.VerifyOptions{Roots: e.config.Credentials.TrustPool}
		for _, cert := range state.PeerCertificates[1:] {
			if opts.Intermediates == nil {
				opts.Intermediates = x509.NewCertPool()
			}

			opts.Intermediates.AddCert(cert)
		}

		if _, err := state.PeerCertificates[0].Verify(opts); err != nil {
			return &nettlsErrtrans.CertVerificationFailedError{Reason: err}
		}
	}

	if !e.config.PeerNameUnchecked && e.peerName != "" {
		if err := state.PeerCertificates[0].VerifyHostname(e.peerName); err != nil {
			return &nettlsErrtrans.NameVerificationFailedError{Expected: e.peerName}
		}
	}

	if e.config.VerifyHook != nil && !e.config.VerifyHook(state.PeerCertificates) {
		return &nettlsErrtrans.UserVerificationFailedError{}
	}

	return nil
}

// Send writes up to len(buf) bytes of application data.
func (e *Endpoint) Send(buf []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := requireState("send", e.state, StateDataRW, StateDataW); err != nil {
		return 0, err
	}

	n, err := e.session.Write(buf)

	e.pumpLocked()

	if err != nil {
		if errors.Is(err, nettlsEngine.ErrWouldBlock) {
			return n, nettlsErrtrans.ErrEAGAINWrite
		}

		return n, &nettlsErrtrans.TLSError{Err: err}
	}

	return n, nil
}

// Recv reads at most len(buf) bytes of application data. 0, nil signals
// TLS-level EOF (close_notify received). engine.ErrRehandshake and
// ErrNoRenegotiation are never produced by this engine (see Switch) so they
// fall through to the default TLSError case below rather than having a
// dedicated branch.
func (e *Endpoint) Recv(buf []byte) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := requireState("recv", e.state, StateDataRW, StateDataR, StateDataRS); err != nil {
		return 0, err
	}

	e.pumpLocked()

	n, err := e.session.Read(buf)
	if err != nil {
		switch {
		case errors.Is(err, io.EOF):
			if e.state == StateDataRW {
				e.state = StateDataW
			} else if e.state == StateDataR {
				e.state = StateEnd
			}

			return 0, nil
		case errors.Is(err, nettlsEngine.ErrWouldBlock):
			return 0, nettlsErrtrans.ErrEAGAINRead
		default:
			return n, &nettlsErrtrans.TLSError{Err: err}
		}
	}

	return n, nil
}

// Bye issues a close_notify for the given direction.
func (e *Endpoint) Bye(direction Direction) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := requireState("bye", e.state, StateDataRW, StateDataR, StateDataW); err != nil {
		return err
	}

	if direction == DirectionReceive {
		return nil
	}

	if err := e.session.CloseNotify(); err != nil {
		return &nettlsErrtrans.TLSError{Err: err}
	}

	e.pumpLocked()

	switch {
	case direction == DirectionAll:
		e.state = StateEnd
	case e.state == StateDataRW:
		e.state = StateDataR
	case e.state == StateDataW:
		e.state = StateEnd
	}

	return nil
}

// Switch initiates TLS renegotiation with a new Configuration, entering
// state DataRS ("switching, reads only").
//
// This is local state-machine bookkeeping only; no rehandshake request is
// sent to the peer. crypto/tls exposes no public API for either side to
// initiate a renegotiation (it only lets a client honor a server-sent
// HelloRequest, and nothing in the standard library can produce that
// request), and the protocol this engine negotiates, TLS 1.3, removed
// renegotiation entirely (RFC 8446 §4.1.2 replaces it with post-handshake
// key updates). engine.ErrRehandshake/ErrNoRenegotiation and
// errtrans.SwitchRequest/SwitchResponse model the wire-level taxonomy SPEC_FULL
// §4.4 describes and are exercised directly by errtrans's own unit tests, but
// this engine never produces them, so Recv never observes a real
// SwitchRequest/SwitchResponse from a peer.
func (e *Endpoint) Switch(newConfig *nettlsTLSConfig.Config) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := requireState("switch", e.state, StateDataRW, StateDataW, StateSwitching); err != nil {
		return err
	}

	e.config = newConfig
	e.state = StateDataRS

	return nil
}

// AcceptSwitch accepts a peer-initiated renegotiation with a new
// Configuration, re-driving the handshake.
//
// Since no real rehandshake request ever arrives (see Switch), Hello
// observes the already-completed handshake and returns immediately; this
// method only updates config and passes through Handshake back to DataRW.
// It is allowed from DataRW, DataW and Accepting.
func (e *Endpoint) AcceptSwitch(newConfig *nettlsTLSConfig.Config) error {
	e.mu.Lock()
	if err := requireState("accept_switch", e.state, StateDataRW, StateDataW, StateAccepting); err != nil {
		e.mu.Unlock()
		return err
	}

	e.config = newConfig
	e.state = StateHandshake
	e.mu.Unlock()

	if err := e.Hello(); err != nil {
		return err
	}

	e.mu.Lock()
	e.state = StateDataRW
	e.mu.Unlock()

	return nil
}

// RefuseSwitch declines a peer-initiated renegotiation.
//
// Like AcceptSwitch, this only updates local state (see Switch for why no
// no_renegotiation alert is actually sent). It does not check the current
// state: it moves to DataRW from any state.
func (e *Endpoint) RefuseSwitch() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state = StateDataRW

	return nil
}

// RecvWillNotBlock reports whether the engine currently has buffered
// plaintext available without a further transport read.
func (e *Endpoint) RecvWillNotBlock() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.session.HasPendingPlaintext()
}

// GetSessionID returns the negotiated TLS session ID, if any.
func (e *Endpoint) GetSessionID() []byte {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.session.ConnectionState().SessionID
}

// GetSessionData returns the engine's SessionState blob, which records only
// the negotiated version and server name; it carries no secrets and cannot
// resume a session.
func (e *Endpoint) GetSessionData() ([]byte, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.session.SessionState()
}

// GetCipherSuiteName returns the negotiated cipher suite's name.
func (e *Endpoint) GetCipherSuiteName() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.session.CipherSuiteName()
}

// GetProtocol returns the negotiated TLS protocol version string.
func (e *Endpoint) GetProtocol() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.session.Version()
}

// GetAddressedServers enumerates SNI entries the client presented.
func (e *Endpoint) GetAddressedServers() []Domain {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.addressedSNI
}

// GetEndpointCreds returns this endpoint's own certificate: after Hello, the
// leaf of the first identity in its credentials (whether or not the peer
// asked for it), or one set through SetOurCert; nil (Anonymous) if there is
// none.
func (e *Endpoint) GetEndpointCreds() *x509.Certificate {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.ourCert
}

// SetOurCert overwrites the endpoint's own certificate, used by the session
// cache adapter to restore our_cert from a retrieved envelope ahead of an
// abbreviated handshake.
func (e *Endpoint) SetOurCert(cert *x509.Certificate) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ourCert = cert
}

// GetPeerCreds returns the peer's leaf certificate, or nil (Anonymous).
func (e *Endpoint) GetPeerCreds() *x509.Certificate {
	e.mu.Lock()
	defer e.mu.Unlock()

	certs := e.session.PeerCertificates()
	if len(certs) == 0 {
		return nil
	}

	return certs[0]
}

// GetPeerCredsList returns the peer's full presented chain.
func (e *Endpoint) GetPeerCredsList() []*x509.Certificate {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.session.PeerCertificates()
}

// StashToken is the opaque result of Stash, capturing everything needed to
// Restore an endpoint onto a new transport.
type StashToken struct {
	ID       string
	role     nettlsEngine.Role
	config   *nettlsTLSConfig.Config
	session  *nettlsEngine.Session
	peerName string
	ourCert  *x509.Certificate
	state    State
	transEOF bool
}

// Stash detaches the endpoint's transport callbacks, forces state to End,
// and returns an opaque token capturing the endpoint's attributes.
func (e *Endpoint) Stash() *StashToken {
	e.mu.Lock()
	defer e.mu.Unlock()

	token := &StashToken{
		ID:       uuid.NewString(),
		role:     e.role,
		config:   e.config,
		session:  e.session,
		peerName: e.peerName,
		ourCert:  e.ourCert,
		state:    e.state,
		transEOF: e.transEOF,
	}

	e.transport = Transport{
		Recv: func([]byte) (int, error) { return 0, nil },
		Send: func(data []byte) (int, error) { return len(data), nil },
	}
	e.state = StateEnd

	return token
}

// Restore creates a new Endpoint reattaching the stash token's session to
// a new transport.
func Restore(token *StashToken, transport Transport) *Endpoint {
	return &Endpoint{
		role:      token.role,
		transport: transport,
		config:    token.config,
		session:   token.session,
		peerName:  token.peerName,
		ourCert:   token.ourCert,
		state:     token.state,
		transEOF:  token.transEOF,
	}
}

// SetSessionCache records the three session-cache callbacks (as built by
// sessioncache.Callbacks, whose store persists {native_blob, our_cert} and
// whose retrieve decodes it and sets ourCert). The endpoint only keeps them:
// neither Hello nor the engine calls them, so no session is stored or
// looked up during a handshake.
func (e *Endpoint) SetSessionCache(store func(key string, data []byte) error, remove func(key string) error, retrieve func(key string) ([]byte, error)) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.cacheStore = store
	e.cacheRemove = remove
	e.cacheRetrieve = retrieve
}

// ResumeClient creates a client endpoint exactly as New(RoleClient, ...)
// does. The session blob argument is ignored: it is not loaded into the
// engine, so the next Hello runs a full handshake.
func ResumeClient(transport Transport, peerName string, config *nettlsTLSConfig.Config, _ []byte) (*Endpoint, error) {
	return New(nettlsEngine.RoleClient, transport, peerName, config)
}
