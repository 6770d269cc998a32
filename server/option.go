package server

import (
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

// Option is a function that configures the server.
type Option func(s *Server) error

// WithImplementation sets the server identity reported on initialize.
func WithImplementation(implementation schema.Implementation) Option {
	return func(s *Server) error {
		s.info = implementation
		return nil
	}
}

// WithInstructions sets the instructions string reported on initialize.
func WithInstructions(instructions string) Option {
	return func(s *Server) error {
		s.instructions = &instructions
		return nil
	}
}

// WithLogger sets the diagnostics logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			return errors.New("nil logger")
		}
		s.logger = logger
		return nil
	}
}

// WithClock sets the clock driving push-channel reconnect timers; tests pass
// a fake clock.
func WithClock(clock clockwork.Clock) Option {
	return func(s *Server) error {
		s.clock = clock
		return nil
	}
}

// WithReconnectPolicy sets the initial backoff delay and the attempt cap for
// push-channel reconnection.
func WithReconnectPolicy(initialDelay time.Duration, maxAttempts int) Option {
	return func(s *Server) error {
		if initialDelay <= 0 || maxAttempts <= 0 {
			return errors.New("invalid reconnect policy")
		}
		s.reconnectDelay = initialDelay
		s.reconnectAttempts = maxAttempts
		return nil
	}
}
