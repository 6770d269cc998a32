package server

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

func TestSessionsCreateUniqueness(t *testing.T) {
	sessions := NewSessions()
	const clients = 64

	ids := make(chan string, clients)
	var wg sync.WaitGroup
	for i := 0; i < clients; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			session := sessions.Create(&schema.InitializeRequestParams{})
			ids <- session.ID
		}()
	}
	wg.Wait()
	close(ids)

	seen := map[string]bool{}
	for id := range ids {
		assert.NotEmpty(t, id)
		assert.False(t, seen[id], "duplicate session id %v", id)
		seen[id] = true
	}
	assert.Equal(t, clients, sessions.Len())
}

func TestSessionsVersionNegotiation(t *testing.T) {
	sessions := NewSessions()

	supported := sessions.Create(&schema.InitializeRequestParams{ProtocolVersion: "2024-11-05"})
	assert.Equal(t, "2024-11-05", supported.ProtocolVersion)

	outdated := sessions.Create(&schema.InitializeRequestParams{ProtocolVersion: "2024-10-01"})
	assert.Equal(t, schema.LatestProtocolVersion, outdated.ProtocolVersion)

	empty := sessions.Create(&schema.InitializeRequestParams{})
	assert.Equal(t, schema.LatestProtocolVersion, empty.ProtocolVersion)
}

func TestSessionsValidate(t *testing.T) {
	sessions := NewSessions()

	_, err := sessions.Validate("")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	_, err = sessions.Validate("no-such-session")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	session := sessions.Create(&schema.InitializeRequestParams{})
	resolved, err := sessions.Validate(session.ID)
	require.NoError(t, err)
	assert.Same(t, session, resolved)
}

func TestSessionsDestroyIdempotent(t *testing.T) {
	sessions := NewSessions()
	session := sessions.Create(&schema.InitializeRequestParams{})
	session.Subscribe("letta://agents")

	sessions.Destroy(session.ID)
	sessions.Destroy(session.ID)

	_, err := sessions.Validate(session.ID)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.Empty(t, session.Subscriptions())
	assert.Equal(t, 0, sessions.Len())
}

func TestSubscriptionIdempotence(t *testing.T) {
	sessions := NewSessions()
	session := sessions.Create(&schema.InitializeRequestParams{})

	session.Subscribe("letta://agents")
	session.Subscribe("letta://agents")
	assert.Len(t, session.Subscriptions(), 1)

	session.Unsubscribe("letta://agents")
	assert.Empty(t, session.Subscriptions())
	assert.False(t, session.Subscribed("letta://agents"))

	// unsubscribing an unknown URI is a no-op
	session.Unsubscribe("letta://tools")
}

func TestSessionRenegotiate(t *testing.T) {
	sessions := NewSessions()
	session := sessions.Create(&schema.InitializeRequestParams{ProtocolVersion: "2024-11-05"})
	id := session.ID

	session.Renegotiate(&schema.InitializeRequestParams{
		ProtocolVersion: schema.LatestProtocolVersion,
		ClientInfo:      schema.Implementation{Name: "client", Version: "2.0"},
	})
	assert.Equal(t, id, session.ID)
	assert.Equal(t, schema.LatestProtocolVersion, session.ProtocolVersion)
	assert.Equal(t, "client", session.ClientInfo.Name)
}
