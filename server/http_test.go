package server

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuede/Letta-MCP-server-sub002/jsonrpc"
	"github.com/xuede/Letta-MCP-server-sub002/registry"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

func postMessage(t *testing.T, handler http.Handler, sessionID string, payload string, header http.Header) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, mcpEndpoint, strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, value := range values {
			req.Header.Add(key, value)
		}
	}
	if sessionID != "" {
		req.Header.Set(HeaderSessionID, sessionID)
	}
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, req)
	return recorder
}

func initializeBody(t *testing.T, version string) string {
	t.Helper()
	request, err := jsonrpc.NewRequest(schema.MethodInitialize, &schema.InitializeRequestParams{
		ProtocolVersion: version,
		ClientInfo:      schema.Implementation{Name: "test", Version: "0.0.1"},
	})
	require.NoError(t, err)
	request.Id = 1
	payload, err := json.Marshal(request)
	require.NoError(t, err)
	return string(payload)
}

func TestHTTPInitialize(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.HTTPHandler()

	recorder := postMessage(t, handler, "", initializeBody(t, "2024-10-01"), nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	sessionID := recorder.Header().Get(HeaderSessionID)
	assert.NotEmpty(t, sessionID)

	response := &jsonrpc.Response{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), response))
	require.Nil(t, response.Error)

	result := &schema.InitializeResult{}
	require.NoError(t, json.Unmarshal(response.Result, result))
	assert.Equal(t, schema.LatestProtocolVersion, result.ProtocolVersion)
}

func TestHTTPInitializeAllocatesDistinctSessions(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.HTTPHandler()

	first := postMessage(t, handler, "", initializeBody(t, schema.LatestProtocolVersion), nil)
	second := postMessage(t, handler, "", initializeBody(t, schema.LatestProtocolVersion), nil)
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.NotEqual(t, first.Header().Get(HeaderSessionID), second.Header().Get(HeaderSessionID))
	assert.Equal(t, 2, srv.Sessions().Len())
}

func TestHTTPRejectsMalformedBodies(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.HTTPHandler()

	malformed := postMessage(t, handler, "", "{not json", nil)
	require.Equal(t, http.StatusBadRequest, malformed.Code)
	assert.Contains(t, malformed.Body.String(), "Invalid JSON")

	notMessage := postMessage(t, handler, "", `{"invalid":"request"}`, nil)
	require.Equal(t, http.StatusBadRequest, notMessage.Code)
	assert.Contains(t, notMessage.Body.String(), "Invalid JSON-RPC message")
}

func TestHTTPRequiresSession(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.HTTPHandler()

	body := `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`
	missing := postMessage(t, handler, "", body, nil)
	assert.Equal(t, http.StatusUnauthorized, missing.Code)

	stale := postMessage(t, handler, "no-such-session", body, nil)
	assert.Equal(t, http.StatusUnauthorized, stale.Code)
}

func TestHTTPToolsList(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.HTTPHandler()

	init := postMessage(t, handler, "", initializeBody(t, schema.LatestProtocolVersion), nil)
	sessionID := init.Header().Get(HeaderSessionID)

	recorder := postMessage(t, handler, sessionID, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`, nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	response := &jsonrpc.Response{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), response))
	require.Nil(t, response.Error)

	result := &schema.ListToolsResult{}
	require.NoError(t, json.Unmarshal(response.Result, result))
	assert.Len(t, result.Tools, 2)
}

func TestHTTPNotificationAccepted(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.HTTPHandler()

	init := postMessage(t, handler, "", initializeBody(t, schema.LatestProtocolVersion), nil)
	sessionID := init.Header().Get(HeaderSessionID)

	recorder := postMessage(t, handler, sessionID,
		`{"jsonrpc":"2.0","method":"notifications/initialized"}`, nil)
	assert.Equal(t, http.StatusAccepted, recorder.Code)
}

func TestHTTPEventStreamFraming(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.HTTPHandler()

	init := postMessage(t, handler, "", initializeBody(t, schema.LatestProtocolVersion), nil)
	sessionID := init.Header().Get(HeaderSessionID)

	header := http.Header{}
	header.Set("Accept", "text/event-stream")
	recorder := postMessage(t, handler, sessionID, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`, header)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, "text/event-stream", recorder.Header().Get("Content-Type"))

	body := recorder.Body.String()
	require.True(t, strings.HasPrefix(body, "data: "), "body %q", body)
	payload := strings.TrimSuffix(strings.TrimPrefix(body, "data: "), "\n\n")
	response := &jsonrpc.Response{}
	require.NoError(t, json.Unmarshal([]byte(payload), response))
	assert.Nil(t, response.Error)
}

func TestHTTPTerminate(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.HTTPHandler()

	missing := httptest.NewRecorder()
	handler.ServeHTTP(missing, httptest.NewRequest(http.MethodDelete, mcpEndpoint, nil))
	assert.Equal(t, http.StatusBadRequest, missing.Code)

	init := postMessage(t, handler, "", initializeBody(t, schema.LatestProtocolVersion), nil)
	sessionID := init.Header().Get(HeaderSessionID)

	terminate := httptest.NewRequest(http.MethodDelete, mcpEndpoint, nil)
	terminate.Header.Set(HeaderSessionID, sessionID)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, terminate)
	assert.Equal(t, http.StatusNoContent, recorder.Code)

	after := postMessage(t, handler, sessionID, `{"jsonrpc":"2.0","id":2,"method":"tools/list"}`, nil)
	assert.Equal(t, http.StatusUnauthorized, after.Code)
}

func TestHTTPHealth(t *testing.T) {
	srv := newTestServer(t)
	handler := srv.HTTPHandler()

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, healthEndpoint, nil))
	require.Equal(t, http.StatusOK, recorder.Code)

	payload := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	assert.Equal(t, "ok", payload["status"])
}

func TestHTTPPushChannel(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.HTTPHandler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+mcpEndpoint, nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))
	sessionID := resp.Header.Get(HeaderSessionID)
	require.NotEmpty(t, sessionID)

	reader := bufio.NewReader(resp.Body)
	event, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "event: endpoint\n", event)
	data, err := reader.ReadString('\n')
	require.NoError(t, err)
	assert.Equal(t, "data: "+mcpEndpoint+"?session_id="+sessionID+"\n", data)
	_, err = reader.ReadString('\n')
	require.NoError(t, err)

	// A session with a live push channel gets its dispatch results on the
	// stream; the POST only acknowledges acceptance.
	body := bytes.NewReader([]byte(`{"jsonrpc":"2.0","id":7,"method":"tools/list"}`))
	post, err := http.NewRequest(http.MethodPost, ts.URL+mcpEndpoint, body)
	require.NoError(t, err)
	post.Header.Set("Content-Type", "application/json")
	post.Header.Set(HeaderSessionID, sessionID)
	ack, err := http.DefaultClient.Do(post)
	require.NoError(t, err)
	defer ack.Body.Close()
	require.Equal(t, http.StatusAccepted, ack.StatusCode)
	acked := map[string]string{}
	require.NoError(t, json.NewDecoder(ack.Body).Decode(&acked))
	assert.Equal(t, "accepted", acked["status"])

	frame, err := reader.ReadString('\n')
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(frame, "data: "), "frame %q", frame)
	response := &jsonrpc.Response{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(frame), "data: ")), response))
	require.Nil(t, response.Error)
	result := &schema.ListToolsResult{}
	require.NoError(t, json.Unmarshal(response.Result, result))
	assert.Len(t, result.Tools, 2)
}

func TestHTTPPushChannelDeliveryOrder(t *testing.T) {
	// The tool stamps each call with its dispatch position; stream frames
	// must come back in the same order even under concurrent POSTs.
	var seq atomic.Int64
	reg := registry.New()
	reg.RegisterTool(schema.Tool{
		Name:        "sequence",
		Description: "Stamp the call with its dispatch position",
		InputSchema: schema.ToolInputSchema{Type: "object"},
	}, func(_ context.Context, _ map[string]interface{}) (*schema.CallToolResult, error) {
		return schema.NewJSONResult(map[string]interface{}{"seq": seq.Add(1)})
	})
	srv, err := New(reg, WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	require.NoError(t, err)

	ts := httptest.NewServer(srv.HTTPHandler())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodGet, ts.URL+mcpEndpoint, nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	sessionID := resp.Header.Get(HeaderSessionID)
	require.NotEmpty(t, sessionID)

	reader := bufio.NewReader(resp.Body)
	for i := 0; i < 3; i++ { // handshake frame
		_, err = reader.ReadString('\n')
		require.NoError(t, err)
	}

	const calls = 8
	var wg sync.WaitGroup
	for i := 0; i < calls; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body := fmt.Sprintf(
				`{"jsonrpc":"2.0","id":%d,"method":"tools/call","params":{"name":"sequence"}}`, i)
			post, err := http.NewRequest(http.MethodPost, ts.URL+mcpEndpoint, strings.NewReader(body))
			require.NoError(t, err)
			post.Header.Set("Content-Type", "application/json")
			post.Header.Set(HeaderSessionID, sessionID)
			ack, err := http.DefaultClient.Do(post)
			require.NoError(t, err)
			defer ack.Body.Close()
			assert.Equal(t, http.StatusAccepted, ack.StatusCode)
		}(i)
	}
	wg.Wait()

	for i := 0; i < calls; i++ {
		frame, err := reader.ReadString('\n')
		require.NoError(t, err)
		require.True(t, strings.HasPrefix(frame, "data: "), "frame %q", frame)
		_, err = reader.ReadString('\n')
		require.NoError(t, err)

		response := &jsonrpc.Response{}
		require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(strings.TrimSpace(frame), "data: ")), response))
		require.Nil(t, response.Error)
		result := &schema.CallToolResult{}
		require.NoError(t, json.Unmarshal(response.Result, result))
		payload := map[string]interface{}{}
		require.NoError(t, json.Unmarshal([]byte(result.Content[0].Text), &payload))
		assert.Equal(t, float64(i+1), payload["seq"], "frame %v out of dispatch order", i)
	}
}
