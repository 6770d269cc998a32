package server

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/xuede/Letta-MCP-server-sub002/jsonrpc"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

// Handler dispatches JSON-RPC requests for one attached session. The stdio
// transport keeps a single handler for the process lifetime; the HTTP
// transport builds one per request after resolving the session header.
type Handler struct {
	server *Server

	mu      sync.Mutex
	session *Session
}

// NewHandler creates a handler with no session attached yet.
func (s *Server) NewHandler() *Handler {
	return &Handler{server: s}
}

// Attach binds a validated session to the handler.
func (h *Handler) Attach(session *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session = session
}

// Session returns the attached session, if any.
func (h *Handler) Session() *Session {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session
}

// Serve dispatches one request. Every failure reachable from the wire is
// reported as a JSON-RPC error object on the response, never as an error
// flag inside a successful result.
func (h *Handler) Serve(ctx context.Context, request *jsonrpc.Request, response *jsonrpc.Response) {
	response.Jsonrpc = jsonrpc.Version
	response.Id = request.Id
	if request.Jsonrpc != jsonrpc.Version {
		response.Error = jsonrpc.NewInvalidRequest("invalid JSON-RPC version", nil)
		return
	}

	if request.Method == schema.MethodInitialize {
		result, jErr := h.initialize(request)
		h.setResponse(response, result, jErr)
		return
	}

	session := h.Session()
	if session == nil {
		response.Error = jsonrpc.NewInvalidRequest(ErrUnauthenticated.Error(), nil)
		return
	}

	switch request.Method {
	case schema.MethodToolsList:
		result, jErr := h.listTools(request)
		h.setResponse(response, result, jErr)
	case schema.MethodToolsCall:
		result, jErr := h.callTool(ctx, request)
		h.setResponse(response, result, jErr)
	case schema.MethodPromptsList:
		result, jErr := h.listPrompts(request)
		h.setResponse(response, result, jErr)
	case schema.MethodPromptsGet:
		result, jErr := h.getPrompt(ctx, request)
		h.setResponse(response, result, jErr)
	case schema.MethodResourcesList:
		result, jErr := h.listResources(request)
		h.setResponse(response, result, jErr)
	case schema.MethodResourcesTemplatesList:
		result, jErr := h.listResourceTemplates(request)
		h.setResponse(response, result, jErr)
	case schema.MethodResourcesRead:
		result, jErr := h.readResource(ctx, request)
		h.setResponse(response, result, jErr)
	case schema.MethodSubscribe:
		result, jErr := h.subscribe(session, request)
		h.setResponse(response, result, jErr)
	case schema.MethodUnsubscribe:
		result, jErr := h.unsubscribe(session, request)
		h.setResponse(response, result, jErr)
	default:
		response.Error = jsonrpc.NewMethodNotFound(
			fmt.Sprintf("Method not found: %v", request.Method), request.Params)
	}
}

// OnNotification handles incoming JSON-RPC notifications; notifications
// never produce a response.
func (h *Handler) OnNotification(ctx context.Context, notification *jsonrpc.Notification) {
	switch notification.Method {
	case schema.MethodNotificationInitialized:
		h.server.logger.Debug("client reported initialized")
	case schema.MethodNotificationCancel:
		// In-flight invocations run to completion; their results are
		// discarded by the transport once the channel is gone.
		h.server.logger.Debug("cancel notification ignored", "method", notification.Method)
	default:
		h.server.logger.Debug("unhandled notification", "method", notification.Method)
	}
}

func (h *Handler) setResponse(response *jsonrpc.Response, result interface{}, jErr *jsonrpc.Error) {
	if jErr != nil {
		response.Error = jErr
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		response.Error = jsonrpc.NewInternalError(err.Error(), nil)
		return
	}
	response.Result = data
}

func (h *Handler) initialize(request *jsonrpc.Request) (*schema.InitializeResult, *jsonrpc.Error) {
	params := &schema.InitializeRequestParams{}
	if len(request.Params) > 0 {
		if err := json.Unmarshal(request.Params, params); err != nil {
			return nil, jsonrpc.NewInvalidParamsError(
				fmt.Sprintf("Invalid initialize params: %v", err), request.Params)
		}
	}
	session := h.Session()
	if session != nil {
		// Renegotiation on a live session keeps the identifier stable.
		session.Renegotiate(params)
	} else {
		session = h.server.sessions.Create(params)
		h.Attach(session)
	}
	h.server.logger.Debug("session initialized",
		"session", session.ID, "protocolVersion", session.ProtocolVersion,
		"client", params.ClientInfo.Name)
	return &schema.InitializeResult{
		ProtocolVersion: session.ProtocolVersion,
		Capabilities:    schema.DefaultServerCapabilities(),
		ServerInfo:      h.server.info,
		Instructions:    h.server.instructions,
	}, nil
}

func (h *Handler) listTools(request *jsonrpc.Request) (*schema.ListToolsResult, *jsonrpc.Error) {
	params := &schema.PaginatedRequestParams{}
	if jErr := parseParams(request, params); jErr != nil {
		return nil, jErr
	}
	return &schema.ListToolsResult{Tools: h.server.registry.Tools()}, nil
}

func (h *Handler) callTool(ctx context.Context, request *jsonrpc.Request) (*schema.CallToolResult, *jsonrpc.Error) {
	params := &schema.CallToolRequestParams{}
	if jErr := parseParams(request, params); jErr != nil {
		return nil, jErr
	}
	if params.Name == "" {
		return nil, jsonrpc.NewInvalidParamsError("Missing required parameter: name", request.Params)
	}
	return h.server.registry.CallTool(ctx, params)
}

func (h *Handler) listPrompts(request *jsonrpc.Request) (*schema.ListPromptsResult, *jsonrpc.Error) {
	params := &schema.PaginatedRequestParams{}
	if jErr := parseParams(request, params); jErr != nil {
		return nil, jErr
	}
	return &schema.ListPromptsResult{Prompts: h.server.registry.Prompts()}, nil
}

func (h *Handler) getPrompt(ctx context.Context, request *jsonrpc.Request) (*schema.GetPromptResult, *jsonrpc.Error) {
	params := &schema.GetPromptRequestParams{}
	if jErr := parseParams(request, params); jErr != nil {
		return nil, jErr
	}
	if params.Name == "" {
		return nil, jsonrpc.NewInvalidParamsError("Missing required parameter: name", request.Params)
	}
	return h.server.registry.GetPrompt(ctx, params)
}

func (h *Handler) listResources(request *jsonrpc.Request) (*schema.ListResourcesResult, *jsonrpc.Error) {
	params := &schema.PaginatedRequestParams{}
	if jErr := parseParams(request, params); jErr != nil {
		return nil, jErr
	}
	return &schema.ListResourcesResult{Resources: h.server.registry.Resources()}, nil
}

func (h *Handler) listResourceTemplates(request *jsonrpc.Request) (*schema.ListResourceTemplatesResult, *jsonrpc.Error) {
	params := &schema.PaginatedRequestParams{}
	if jErr := parseParams(request, params); jErr != nil {
		return nil, jErr
	}
	return &schema.ListResourceTemplatesResult{ResourceTemplates: h.server.registry.ResourceTemplates()}, nil
}

func (h *Handler) readResource(ctx context.Context, request *jsonrpc.Request) (*schema.ReadResourceResult, *jsonrpc.Error) {
	params := &schema.ReadResourceRequestParams{}
	if jErr := parseParams(request, params); jErr != nil {
		return nil, jErr
	}
	if params.Uri == "" {
		return nil, jsonrpc.NewInvalidParamsError("Missing required parameter: uri", request.Params)
	}
	return h.server.registry.ReadResource(ctx, params.Uri)
}

func (h *Handler) subscribe(session *Session, request *jsonrpc.Request) (*schema.SubscribeResult, *jsonrpc.Error) {
	params := &schema.SubscribeRequestParams{}
	if jErr := parseParams(request, params); jErr != nil {
		return nil, jErr
	}
	if params.Uri == "" {
		return nil, jsonrpc.NewInvalidParamsError("Missing required parameter: uri", request.Params)
	}
	session.Subscribe(params.Uri)
	return &schema.SubscribeResult{}, nil
}

func (h *Handler) unsubscribe(session *Session, request *jsonrpc.Request) (*schema.UnsubscribeResult, *jsonrpc.Error) {
	params := &schema.SubscribeRequestParams{}
	if jErr := parseParams(request, params); jErr != nil {
		return nil, jErr
	}
	if params.Uri == "" {
		return nil, jsonrpc.NewInvalidParamsError("Missing required parameter: uri", request.Params)
	}
	session.Unsubscribe(params.Uri)
	return &schema.UnsubscribeResult{}, nil
}

func parseParams(request *jsonrpc.Request, target interface{}) *jsonrpc.Error {
	if len(request.Params) == 0 {
		return nil
	}
	if err := json.Unmarshal(request.Params, target); err != nil {
		return jsonrpc.NewInvalidParamsError(
			fmt.Sprintf("Invalid params: %v", err), request.Params)
	}
	return nil
}
