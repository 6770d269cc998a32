package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/xuede/Letta-MCP-server-sub002/internal/collection"
	"github.com/xuede/Letta-MCP-server-sub002/jsonrpc"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

// sink is one attached HTTP response stream. A connection record outlives
// its sinks: a client that drops and reconnects with the same session id
// attaches a fresh sink to the existing record.
type sink struct {
	writer  http.ResponseWriter
	flusher http.Flusher
	done    <-chan struct{}
}

func (s *sink) write(payload []byte) error {
	if _, err := fmt.Fprintf(s.writer, "data: %s\n\n", payload); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// connection is the record of one push-channel client. It references at most
// one session and is owned exclusively by the transport.
type connection struct {
	id         string
	remoteAddr string
	session    *Session

	events chan []byte
	sinks  chan *sink

	closed    chan struct{}
	closeOnce sync.Once

	state        atomic.Int32
	lastActivity atomic.Int64
}

func newConnection(session *Session, remoteAddr string) *connection {
	c := &connection{
		id:         uuid.NewString(),
		remoteAddr: remoteAddr,
		session:    session,
		events:     make(chan []byte, 32),
		sinks:      make(chan *sink, 1),
		closed:     make(chan struct{}),
	}
	c.touch()
	return c
}

func (c *connection) State() connState {
	return connState(c.state.Load())
}

func (c *connection) setState(s connState) {
	c.state.Store(int32(s))
}

func (c *connection) touch() {
	c.lastActivity.Store(time.Now().UnixNano())
}

func (c *connection) close() {
	c.closeOnce.Do(func() { close(c.closed) })
}

// pushChannels owns the connection-record table of the HTTP transport; it is
// the only component that mutates it.
type pushChannels struct {
	server    *Server
	conns     *collection.SyncMap[string, *connection]
	bySession *collection.SyncMap[string, *connection]

	// acquireMu makes the resume-or-create decision in acquire atomic, so
	// one session never ends up with two connection records.
	acquireMu sync.Mutex
}

func newPushChannels(server *Server) *pushChannels {
	return &pushChannels{
		server:    server,
		conns:     collection.NewSyncMap[string, *connection](),
		bySession: collection.NewSyncMap[string, *connection](),
	}
}

// acquire resolves the session's connection record, creating one (and
// starting its pump) when none exists. A session owns at most one record;
// a concurrent reconnect re-attaches to the existing one.
func (p *pushChannels) acquire(session *Session, remoteAddr string) (*connection, bool) {
	p.acquireMu.Lock()
	defer p.acquireMu.Unlock()
	if conn, ok := p.bySession.Get(session.ID); ok {
		return conn, true
	}
	conn := newConnection(session, remoteAddr)
	conn.setState(stateConnecting)
	p.conns.Put(conn.id, conn)
	p.bySession.Put(session.ID, conn)
	go p.pump(conn)
	return conn, false
}

// attached reports whether the session has a live push channel.
func (p *pushChannels) attached(sessionID string) bool {
	_, ok := p.bySession.Get(sessionID)
	return ok
}

// send queues a dispatch result for delivery on the session's push channel.
// It returns false when the session has no channel or its queue is full; the
// caller falls back to a direct response.
func (p *pushChannels) send(sessionID string, response *jsonrpc.Response) bool {
	conn, ok := p.bySession.Get(sessionID)
	if !ok {
		return false
	}
	payload, err := json.Marshal(response)
	if err != nil {
		p.server.logger.Error("marshal push event", "error", err)
		return false
	}
	select {
	case conn.events <- payload:
		return true
	case <-conn.closed:
		return false
	default:
		p.server.logger.Warn("push queue full, dropping event",
			"connection", conn.id, "session", sessionID)
		return false
	}
}

// open serves GET on the stream endpoint: it upgrades to a server-push
// channel, allocates a connection record and a fresh session (or re-attaches
// to an existing one on reconnect), streams the handshake frame and holds
// the connection open.
func (p *pushChannels) open(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	var session *Session
	if id := r.Header.Get(HeaderSessionID); id != "" {
		if existing, err := p.server.sessions.Validate(id); err == nil {
			session = existing
		}
	}
	if session == nil {
		session = p.server.sessions.Create(&schema.InitializeRequestParams{})
	}

	conn, resumed := p.acquire(session, r.RemoteAddr)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set(HeaderSessionID, session.ID)
	w.WriteHeader(http.StatusOK)

	// Handshake frame: tells the client where to POST and which session to
	// echo on every call.
	fmt.Fprintf(w, "event: endpoint\ndata: %s?session_id=%s\n\n", mcpEndpoint, session.ID)
	flusher.Flush()

	p.server.logger.Debug("push channel opened",
		"connection", conn.id, "session", session.ID,
		"remote", r.RemoteAddr, "resumed", resumed)

	attached := &sink{writer: w, flusher: flusher, done: r.Context().Done()}
	select {
	case conn.sinks <- attached:
	case <-conn.closed:
		return
	}

	// Hold the response open until the client goes away or the pump gives
	// up on the record.
	select {
	case <-r.Context().Done():
	case <-conn.closed:
	}
}

// pump is the single writer of a connection record. It forwards queued
// events to the current sink; when the sink fails or detaches it runs the
// reconnect schedule, waiting for a replacement sink with exponentially
// growing delays. Exhausting the attempt cap closes the record and releases
// its session.
func (p *pushChannels) pump(conn *connection) {
	defer p.release(conn)
	backoff := newReconnector(p.server.clock, p.server.reconnectDelay, p.server.reconnectAttempts)
	var current *sink
	for {
		if current == nil {
			if conn.State() != stateConnecting {
				conn.setState(stateReconnecting)
			}
			delay, ok := backoff.next()
			if !ok {
				p.server.logger.Warn("push channel reconnect attempts exhausted",
					"connection", conn.id, "session", conn.session.ID)
				return
			}
			select {
			case current = <-conn.sinks:
				backoff.reset()
				conn.setState(stateOpen)
				conn.touch()
			case <-backoff.after(delay):
			case <-conn.closed:
				return
			}
			continue
		}
		select {
		case replacement := <-conn.sinks:
			current = replacement
			backoff.reset()
			conn.setState(stateOpen)
			conn.touch()
		case <-current.done:
			current = nil
		case payload := <-conn.events:
			if err := current.write(payload); err != nil {
				// Result is discarded; the reconnect schedule decides
				// whether the record survives.
				p.server.logger.Warn("push write failed",
					"connection", conn.id, "error", err)
				current = nil
				continue
			}
			conn.touch()
		case <-conn.closed:
			return
		}
	}
}

// release removes the connection record and destroys its session. A failure
// on one channel never propagates to sibling connections.
func (p *pushChannels) release(conn *connection) {
	conn.setState(stateClosed)
	conn.close()
	p.conns.Delete(conn.id)
	p.bySession.Delete(conn.session.ID)
	p.server.sessions.Destroy(conn.session.ID)
	p.server.logger.Debug("push channel closed",
		"connection", conn.id, "session", conn.session.ID)
}

// closeSession tears down the push channel of one session, if any.
func (p *pushChannels) closeSession(sessionID string) {
	if conn, ok := p.bySession.Get(sessionID); ok {
		conn.close()
	}
}

// closeAll tears down every push channel; used on shutdown.
func (p *pushChannels) closeAll() {
	p.conns.Range(func(_ string, conn *connection) bool {
		conn.close()
		return true
	})
}
