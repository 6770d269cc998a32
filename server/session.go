package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xuede/Letta-MCP-server-sub002/internal/collection"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

// ErrUnauthenticated is returned when a request presents no live session id.
// The caller must re-initialize; there is no retry.
var ErrUnauthenticated = errors.New("no active session: call initialize first")

// Session is the server-side state bound to one negotiated client. A session
// belongs to exactly one transport connection at a time.
type Session struct {
	ID              string
	ProtocolVersion string
	Created         time.Time
	ClientInfo      schema.Implementation

	// mu serializes dispatch for this session; requests for distinct
	// sessions never contend on it.
	mu sync.Mutex

	subMu         sync.RWMutex
	subscriptions map[string]bool
}

// Renegotiate applies a repeated initialize on a live session, updating the
// negotiated version and client identity in place.
func (s *Session) Renegotiate(params *schema.InitializeRequestParams) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.ProtocolVersion = schema.NegotiateProtocolVersion(params.ProtocolVersion)
	s.ClientInfo = params.ClientInfo
}

// Subscribe records a resource subscription; repeated subscriptions to the
// same URI are a no-op.
func (s *Session) Subscribe(uri string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	s.subscriptions[uri] = true
}

// Unsubscribe removes a subscription; unknown URIs are a no-op.
func (s *Session) Unsubscribe(uri string) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	delete(s.subscriptions, uri)
}

// Subscribed reports whether the URI has an active subscription.
func (s *Session) Subscribed(uri string) bool {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	return s.subscriptions[uri]
}

// Subscriptions returns the active subscription URIs.
func (s *Session) Subscriptions() []string {
	s.subMu.RLock()
	defer s.subMu.RUnlock()
	result := make([]string, 0, len(s.subscriptions))
	for uri := range s.subscriptions {
		result = append(result, uri)
	}
	return result
}

// Sessions owns the identifier-to-session table. It is the only component
// that mutates the table; everything else performs read-only lookups.
type Sessions struct {
	active *collection.SyncMap[string, *Session]
}

func NewSessions() *Sessions {
	return &Sessions{active: collection.NewSyncMap[string, *Session]()}
}

// Create registers a new session. It always succeeds: an unsupported client
// protocol version falls back to the server's latest supported one.
func (m *Sessions) Create(params *schema.InitializeRequestParams) *Session {
	session := &Session{
		ID:              uuid.NewString(),
		ProtocolVersion: schema.NegotiateProtocolVersion(params.ProtocolVersion),
		Created:         time.Now(),
		ClientInfo:      params.ClientInfo,
		subscriptions:   make(map[string]bool),
	}
	m.active.Put(session.ID, session)
	return session
}

// Validate resolves a session id to a live session; a missing or stale id is
// a hard failure.
func (m *Sessions) Validate(id string) (*Session, error) {
	if id == "" {
		return nil, ErrUnauthenticated
	}
	session, ok := m.active.Get(id)
	if !ok {
		return nil, ErrUnauthenticated
	}
	return session, nil
}

// Destroy removes a session and releases its subscriptions. Idempotent.
func (m *Sessions) Destroy(id string) {
	if session, ok := m.active.Get(id); ok {
		session.subMu.Lock()
		session.subscriptions = make(map[string]bool)
		session.subMu.Unlock()
	}
	m.active.Delete(id)
}

// Len returns the number of live sessions.
func (m *Sessions) Len() int {
	return m.active.Len()
}
