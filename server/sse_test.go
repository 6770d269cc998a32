package server

import (
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuede/Letta-MCP-server-sub002/jsonrpc"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

func TestPushSendWithoutChannel(t *testing.T) {
	srv := newTestServer(t)
	push := newPushChannels(srv)

	assert.False(t, push.send("no-such-session", jsonrpc.NewResponse(1)))
}

func TestPushSendQueueFull(t *testing.T) {
	srv := newTestServer(t)
	push := newPushChannels(srv)

	session := srv.Sessions().Create(&schema.InitializeRequestParams{})
	conn := newConnection(session, "test")
	push.conns.Put(conn.id, conn)
	push.bySession.Put(session.ID, conn)

	for i := 0; i < cap(conn.events); i++ {
		require.True(t, push.send(session.ID, jsonrpc.NewResponse(i)))
	}
	assert.False(t, push.send(session.ID, jsonrpc.NewResponse(99)))
}

func TestAcquireSingleRecordPerSession(t *testing.T) {
	srv := newTestServer(t)
	push := newPushChannels(srv)
	session := srv.Sessions().Create(&schema.InitializeRequestParams{})

	const clients = 32
	conns := make(chan *connection, clients)
	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			conn, _ := push.acquire(session, "test")
			conns <- conn
		}()
	}
	wg.Wait()
	close(conns)

	first := <-conns
	for conn := range conns {
		assert.Same(t, first, conn)
	}
	assert.Equal(t, 1, push.conns.Len())
	assert.True(t, push.attached(session.ID))
}

func TestPumpReleasesAfterExhaustedReconnects(t *testing.T) {
	clock := clockwork.NewFakeClock()
	srv := newTestServer(t, WithClock(clock), WithReconnectPolicy(500*time.Millisecond, 10))
	push := newPushChannels(srv)

	session := srv.Sessions().Create(&schema.InitializeRequestParams{})
	conn, resumed := push.acquire(session, "test")
	require.False(t, resumed)

	// No sink ever attaches: the pump walks the whole backoff schedule and
	// then tears the record down.
	delay := 500 * time.Millisecond
	for attempt := 0; attempt < 10; attempt++ {
		clock.BlockUntil(1)
		clock.Advance(delay)
		delay *= 2
	}

	require.Eventually(t, func() bool {
		_, ok := push.bySession.Get(session.ID)
		return !ok
	}, time.Second, 5*time.Millisecond)

	assert.Equal(t, stateClosed, conn.State())
	_, err := srv.Sessions().Validate(session.ID)
	assert.Error(t, err)
	assert.Equal(t, 0, push.conns.Len())
}

func TestCloseSessionReleasesChannel(t *testing.T) {
	srv := newTestServer(t)
	push := newPushChannels(srv)

	session := srv.Sessions().Create(&schema.InitializeRequestParams{})
	conn, _ := push.acquire(session, "test")

	push.closeSession(session.ID)

	require.Eventually(t, func() bool {
		return !push.attached(session.ID)
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, stateClosed, conn.State())
}
