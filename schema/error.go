package schema

import (
	"github.com/xuede/Letta-MCP-server-sub002/jsonrpc"
)

const (
	// ResourceNotFound is the MCP error code for a missing resource URI.
	ResourceNotFound = -32002
)

// NewUnknownTool reports a tool name absent from the registry. Callers match
// the "unknown" substring to tell a missing capability from other failures.
func NewUnknownTool(name string) *jsonrpc.Error {
	return jsonrpc.NewError(jsonrpc.InvalidParams, "Unknown tool: "+name, nil)
}

// NewUnknownPrompt reports a prompt name absent from the registry.
func NewUnknownPrompt(name string) *jsonrpc.Error {
	return jsonrpc.NewError(jsonrpc.InvalidParams, "Unknown prompt: "+name, nil)
}

// NewResourceNotFound reports a resource URI no entry or template matches.
func NewResourceNotFound(uri string) *jsonrpc.Error {
	return jsonrpc.NewError(ResourceNotFound, "Resource not found: "+uri, nil)
}
