// Package schema defines the MCP wire types exchanged over the JSON-RPC
// transports: initialization, capability catalogs and their results.
package schema

// LatestProtocolVersion is the newest protocol revision this server speaks;
// it is also the version offered when a client requests an unsupported one.
const LatestProtocolVersion = "2025-03-26"

// SupportedProtocolVersions lists every protocol revision the server accepts.
// A client requesting one of these gets it echoed back on initialize.
var SupportedProtocolVersions = []string{LatestProtocolVersion, "2024-11-05"}

// NegotiateProtocolVersion applies the version selection policy: echo the
// requested version when supported, otherwise answer with the latest.
func NegotiateProtocolVersion(requested string) string {
	for _, candidate := range SupportedProtocolVersions {
		if candidate == requested {
			return requested
		}
	}
	return LatestProtocolVersion
}

// Implementation identifies a client or server by name and version.
type Implementation struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// ClientCapabilities carries the capability set announced by a client.
type ClientCapabilities struct {
	Roots        map[string]interface{} `json:"roots,omitempty"`
	Sampling     map[string]interface{} `json:"sampling,omitempty"`
	Experimental map[string]interface{} `json:"experimental,omitempty"`
}

// ServerCapabilities advertises what this server offers.
type ServerCapabilities struct {
	Tools     *ServerCapabilitiesTools     `json:"tools,omitempty"`
	Prompts   *ServerCapabilitiesPrompts   `json:"prompts,omitempty"`
	Resources *ServerCapabilitiesResources `json:"resources,omitempty"`
}

type ServerCapabilitiesTools struct {
	ListChanged *bool `json:"listChanged,omitempty"`
}

type ServerCapabilitiesPrompts struct {
	ListChanged *bool `json:"listChanged,omitempty"`
}

type ServerCapabilitiesResources struct {
	Subscribe   *bool `json:"subscribe,omitempty"`
	ListChanged *bool `json:"listChanged,omitempty"`
}

// DefaultServerCapabilities returns the capability set registered for every
// session: tools and prompts with list-changed, resources with subscribe.
func DefaultServerCapabilities() ServerCapabilities {
	enabled := true
	return ServerCapabilities{
		Tools:     &ServerCapabilitiesTools{ListChanged: &enabled},
		Prompts:   &ServerCapabilitiesPrompts{ListChanged: &enabled},
		Resources: &ServerCapabilitiesResources{Subscribe: &enabled, ListChanged: &enabled},
	}
}

// InitializeRequestParams is the payload of the initialize method.
type InitializeRequestParams struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ClientCapabilities `json:"capabilities"`
	ClientInfo      Implementation     `json:"clientInfo"`
}

// InitializeResult is the response to the initialize method.
type InitializeResult struct {
	ProtocolVersion string             `json:"protocolVersion"`
	Capabilities    ServerCapabilities `json:"capabilities"`
	ServerInfo      Implementation     `json:"serverInfo"`
	Instructions    *string            `json:"instructions,omitempty"`
}

// Tool describes a callable capability.
type Tool struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema ToolInputSchema `json:"inputSchema"`
}

// ToolInputSchema is the JSON schema constraining tool arguments.
type ToolInputSchema struct {
	Type       string                            `json:"type"`
	Properties map[string]map[string]interface{} `json:"properties,omitempty"`
	Required   []string                          `json:"required,omitempty"`
}

// CallToolRequestParams is the payload of tools/call.
type CallToolRequestParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments,omitempty"`
}

// ListToolsResult is the response to tools/list.
type ListToolsResult struct {
	Tools      []Tool  `json:"tools"`
	NextCursor *string `json:"nextCursor,omitempty"`
}

// Resource describes a URI-addressed readable entity.
type Resource struct {
	Uri      string  `json:"uri"`
	Name     string  `json:"name"`
	Title    *string `json:"title,omitempty"`
	MimeType *string `json:"mimeType,omitempty"`
}

// ResourceTemplate describes a parameterized resource URI.
type ResourceTemplate struct {
	UriTemplate string  `json:"uriTemplate"`
	Name        string  `json:"name"`
	Title       *string `json:"title,omitempty"`
	MimeType    *string `json:"mimeType,omitempty"`
}

// ResourceContents is one element of a resources/read result.
type ResourceContents struct {
	Uri      string `json:"uri"`
	MimeType string `json:"mimeType,omitempty"`
	Text     string `json:"text,omitempty"`
}

// ReadResourceRequestParams is the payload of resources/read.
type ReadResourceRequestParams struct {
	Uri string `json:"uri"`
}

// ReadResourceResult is the response to resources/read.
type ReadResourceResult struct {
	Contents []ResourceContents `json:"contents"`
}

// ListResourcesResult is the response to resources/list.
type ListResourcesResult struct {
	Resources  []Resource `json:"resources"`
	NextCursor *string    `json:"nextCursor,omitempty"`
}

// ListResourceTemplatesResult is the response to resources/templates/list.
type ListResourceTemplatesResult struct {
	ResourceTemplates []ResourceTemplate `json:"resourceTemplates"`
	NextCursor        *string            `json:"nextCursor,omitempty"`
}

// SubscribeRequestParams is the payload of resources/subscribe and
// resources/unsubscribe.
type SubscribeRequestParams struct {
	Uri string `json:"uri"`
}

// SubscribeResult is the empty acknowledgement of a subscription change.
type SubscribeResult struct{}

// UnsubscribeResult is the empty acknowledgement of an unsubscribe.
type UnsubscribeResult struct{}

// PromptArgument describes a single prompt argument.
type PromptArgument struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Required    *bool  `json:"required,omitempty"`
}

// Prompt describes a named prompt template.
type Prompt struct {
	Name        string           `json:"name"`
	Title       *string          `json:"title,omitempty"`
	Description string           `json:"description,omitempty"`
	Arguments   []PromptArgument `json:"arguments,omitempty"`
}

// GetPromptRequestParams is the payload of prompts/get.
type GetPromptRequestParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments,omitempty"`
}

// PromptMessage is one rendered message of a prompt.
type PromptMessage struct {
	Role    string  `json:"role"`
	Content Content `json:"content"`
}

// GetPromptResult is the response to prompts/get.
type GetPromptResult struct {
	Description string          `json:"description,omitempty"`
	Messages    []PromptMessage `json:"messages"`
}

// ListPromptsResult is the response to prompts/list.
type ListPromptsResult struct {
	Prompts    []Prompt `json:"prompts"`
	NextCursor *string  `json:"nextCursor,omitempty"`
}

// PaginatedRequestParams carries the opaque cursor of list methods.
type PaginatedRequestParams struct {
	Cursor *string `json:"cursor,omitempty"`
}
