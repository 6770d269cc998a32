// Package server implements the MCP session, dispatch and transport core:
// a session manager with protocol version negotiation, a JSON-RPC method
// dispatcher over the capability registry, and two interchangeable
// transports (newline-delimited stdio and streamable HTTP with a push
// channel).
package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/xuede/Letta-MCP-server-sub002/registry"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

const (
	defaultReconnectDelay    = 500 * time.Millisecond
	defaultReconnectAttempts = 10
)

// Server glues the session manager, registry and transports together. It is
// explicitly constructed at startup and passed by reference; there is no
// ambient global state.
type Server struct {
	info         schema.Implementation
	instructions *string
	registry     *registry.Registry
	sessions     *Sessions
	logger       *slog.Logger
	clock        clockwork.Clock

	reconnectDelay    time.Duration
	reconnectAttempts int
}

// New creates a server over a populated capability registry.
func New(reg *registry.Registry, options ...Option) (*Server, error) {
	if reg == nil {
		return nil, errors.New("no registry specified")
	}
	s := &Server{
		info:              schema.Implementation{Name: "letta-mcp-server", Version: "1.0.0"},
		registry:          reg,
		sessions:          NewSessions(),
		logger:            slog.Default(),
		clock:             clockwork.NewRealClock(),
		reconnectDelay:    defaultReconnectDelay,
		reconnectAttempts: defaultReconnectAttempts,
	}
	for _, option := range options {
		if err := option(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Sessions exposes the session manager for transports and tests.
func (s *Server) Sessions() *Sessions {
	return s.sessions
}
