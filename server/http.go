package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/xuede/Letta-MCP-server-sub002/jsonrpc"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

const (
	// HeaderSessionID carries the session identifier on every HTTP call
	// except the initial initialize.
	HeaderSessionID = "Mcp-Session-Id"

	mcpEndpoint    = "/mcp"
	healthEndpoint = "/health"

	maxBodyBytes = 4 << 20
)

// HTTPHandler builds the HTTP transport: the message endpoint, the push
// channel endpoint, session termination and the health probe.
func (s *Server) HTTPHandler() http.Handler {
	push := newPushChannels(s)
	router := chi.NewRouter()
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", HeaderSessionID},
		ExposedHeaders: []string{HeaderSessionID},
	}))
	router.Get(healthEndpoint, s.handleHealth)
	router.Post(mcpEndpoint, s.handleMessage(push))
	router.Get(mcpEndpoint, push.open)
	router.Delete(mcpEndpoint, s.handleTerminate(push))
	return router
}

// HTTP returns a configured http.Server bound to addr.
func (s *Server) HTTP(_ context.Context, addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.HTTPHandler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

// handleMessage serves POST on the message endpoint: one JSON-RPC message
// per request. Malformed bodies are rejected at the transport with HTTP 400
// before dispatch; a missing or stale session on any method but initialize
// is rejected with HTTP 401.
func (s *Server) handleMessage(push *pushChannels) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, "unable to read request body")
			return
		}
		message, err := jsonrpc.ParseMessage(body)
		if err != nil {
			if errors.Is(err, jsonrpc.ErrInvalidJSON) {
				writeJSONError(w, http.StatusBadRequest, "Invalid JSON")
				return
			}
			writeJSONError(w, http.StatusBadRequest, "Invalid JSON-RPC message")
			return
		}

		sessionID := r.Header.Get(HeaderSessionID)
		if message.IsNotification() {
			if session, vErr := s.sessions.Validate(sessionID); vErr == nil {
				handler := s.NewHandler()
				handler.Attach(session)
				handler.OnNotification(r.Context(), message.Notification())
			}
			w.WriteHeader(http.StatusAccepted)
			return
		}

		request := message.Request()
		handler := s.NewHandler()
		var session *Session
		if request.Method == schema.MethodInitialize {
			// A session header on initialize renegotiates in place; its
			// absence allocates a fresh session during dispatch.
			if existing, vErr := s.sessions.Validate(sessionID); vErr == nil {
				session = existing
			}
		} else {
			session, err = s.sessions.Validate(sessionID)
			if err != nil {
				writeJSONError(w, http.StatusUnauthorized, err.Error())
				return
			}
		}
		if session != nil {
			handler.Attach(session)
		}

		response := jsonrpc.NewResponse(request.Id)
		pushed := false
		if session != nil {
			// Requests for the same session are serialized; distinct
			// sessions proceed independently. The push enqueue happens
			// under the same lock so stream delivery preserves dispatch
			// order; send never blocks, so the lock stays short.
			session.mu.Lock()
			handler.Serve(r.Context(), request, response)
			pushed = push.send(session.ID, response)
			session.mu.Unlock()
		} else {
			handler.Serve(r.Context(), request, response)
			session = handler.Session()
			if session != nil {
				pushed = push.send(session.ID, response)
			}
		}
		if session != nil {
			w.Header().Set(HeaderSessionID, session.ID)
		}

		// Sessions opened via the push channel receive results there; the
		// POST acknowledges acceptance only.
		if pushed {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusAccepted)
			_, _ = w.Write([]byte(`{"status":"accepted"}`))
			return
		}

		payload, err := json.Marshal(response)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, "failed to encode response")
			return
		}
		if acceptsEventStream(r) {
			w.Header().Set("Content-Type", "text/event-stream")
			fmt.Fprintf(w, "data: %s\n\n", payload)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(payload)
	}
}

// handleTerminate serves DELETE on the message endpoint, ending a session
// explicitly.
func (s *Server) handleTerminate(push *pushChannels) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessionID := r.Header.Get(HeaderSessionID)
		if sessionID == "" {
			writeJSONError(w, http.StatusBadRequest, "missing "+HeaderSessionID+" header")
			return
		}
		push.closeSession(sessionID)
		s.sessions.Destroy(sessionID)
		w.WriteHeader(http.StatusNoContent)
	}
}

// handleHealth reports liveness; it depends on no session existing.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "ok",
		"service": s.info.Name,
		"time":    time.Now().UTC().Format(time.RFC3339),
	})
}

func acceptsEventStream(r *http.Request) bool {
	for _, value := range r.Header.Values("Accept") {
		for _, part := range strings.Split(value, ",") {
			if strings.TrimSpace(strings.Split(part, ";")[0]) == "text/event-stream" {
				return true
			}
		}
	}
	return false
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
