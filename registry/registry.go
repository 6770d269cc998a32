// Package registry holds the static capability catalog: tools, resources,
// resource templates and prompts, each keyed by exact name and bound to a
// handler. The catalog is populated at startup and read-only afterwards, so
// lookups need no locking.
package registry

import (
	"context"

	"github.com/xuede/Letta-MCP-server-sub002/jsonrpc"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

// ToolHandler executes a tool call. A returned error is surfaced to the
// caller as a protocol-level error object, never as a success payload.
type ToolHandler func(ctx context.Context, args map[string]interface{}) (*schema.CallToolResult, error)

// ResourceHandler reads a fixed-URI resource.
type ResourceHandler func(ctx context.Context, uri string) (*schema.ReadResourceResult, error)

// TemplateHandler reads a templated resource; params carries the values
// extracted from the URI template placeholders.
type TemplateHandler func(ctx context.Context, uri string, params map[string]string) (*schema.ReadResourceResult, error)

// PromptHandler renders a prompt.
type PromptHandler func(ctx context.Context, args map[string]string) (*schema.GetPromptResult, error)

type ToolEntry struct {
	schema.Tool
	Handler ToolHandler
}

type ResourceEntry struct {
	schema.Resource
	Handler ResourceHandler
}

type TemplateEntry struct {
	schema.ResourceTemplate
	Handler TemplateHandler
}

type PromptEntry struct {
	schema.Prompt
	Handler PromptHandler
}

// Registry is the capability catalog. Registration order is preserved so
// list responses are stable.
type Registry struct {
	tools     map[string]*ToolEntry
	toolOrder []string

	resources     map[string]*ResourceEntry
	resourceOrder []string

	templates []*TemplateEntry

	prompts     map[string]*PromptEntry
	promptOrder []string
}

func New() *Registry {
	return &Registry{
		tools:     make(map[string]*ToolEntry),
		resources: make(map[string]*ResourceEntry),
		prompts:   make(map[string]*PromptEntry),
	}
}

// RegisterTool adds a tool; a duplicate name replaces the previous entry.
func (r *Registry) RegisterTool(tool schema.Tool, handler ToolHandler) {
	if _, ok := r.tools[tool.Name]; !ok {
		r.toolOrder = append(r.toolOrder, tool.Name)
	}
	r.tools[tool.Name] = &ToolEntry{Tool: tool, Handler: handler}
}

func (r *Registry) RegisterResource(resource schema.Resource, handler ResourceHandler) {
	if _, ok := r.resources[resource.Uri]; !ok {
		r.resourceOrder = append(r.resourceOrder, resource.Uri)
	}
	r.resources[resource.Uri] = &ResourceEntry{Resource: resource, Handler: handler}
}

func (r *Registry) RegisterTemplate(template schema.ResourceTemplate, handler TemplateHandler) {
	r.templates = append(r.templates, &TemplateEntry{ResourceTemplate: template, Handler: handler})
}

func (r *Registry) RegisterPrompt(prompt schema.Prompt, handler PromptHandler) {
	if _, ok := r.prompts[prompt.Name]; !ok {
		r.promptOrder = append(r.promptOrder, prompt.Name)
	}
	r.prompts[prompt.Name] = &PromptEntry{Prompt: prompt, Handler: handler}
}

// Tools returns the catalog in registration order.
func (r *Registry) Tools() []schema.Tool {
	result := make([]schema.Tool, 0, len(r.toolOrder))
	for _, name := range r.toolOrder {
		result = append(result, r.tools[name].Tool)
	}
	return result
}

func (r *Registry) Resources() []schema.Resource {
	result := make([]schema.Resource, 0, len(r.resourceOrder))
	for _, uri := range r.resourceOrder {
		result = append(result, r.resources[uri].Resource)
	}
	return result
}

func (r *Registry) ResourceTemplates() []schema.ResourceTemplate {
	result := make([]schema.ResourceTemplate, 0, len(r.templates))
	for _, entry := range r.templates {
		result = append(result, entry.ResourceTemplate)
	}
	return result
}

func (r *Registry) Prompts() []schema.Prompt {
	result := make([]schema.Prompt, 0, len(r.promptOrder))
	for _, name := range r.promptOrder {
		result = append(result, r.prompts[name].Prompt)
	}
	return result
}

// CallTool resolves the tool by exact name, validates arguments against the
// declared input schema and invokes the handler. Handler failures come back
// as internal errors so every reachable error path yields a protocol-level
// error object.
func (r *Registry) CallTool(ctx context.Context, params *schema.CallToolRequestParams) (*schema.CallToolResult, *jsonrpc.Error) {
	entry, ok := r.tools[params.Name]
	if !ok {
		return nil, schema.NewUnknownTool(params.Name)
	}
	if jErr := ValidateArguments(entry.InputSchema, params.Arguments); jErr != nil {
		return nil, jErr
	}
	result, err := entry.Handler(ctx, params.Arguments)
	if err != nil {
		if jErr, ok := err.(*jsonrpc.Error); ok {
			return nil, jErr
		}
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	return result, nil
}

// ReadResource resolves a URI against fixed resources first, then templates.
func (r *Registry) ReadResource(ctx context.Context, uri string) (*schema.ReadResourceResult, *jsonrpc.Error) {
	if entry, ok := r.resources[uri]; ok {
		result, err := entry.Handler(ctx, uri)
		if err != nil {
			return nil, jsonrpc.NewInternalError(err.Error(), nil)
		}
		return result, nil
	}
	for _, entry := range r.templates {
		params, ok := MatchTemplate(entry.UriTemplate, uri)
		if !ok {
			continue
		}
		result, err := entry.Handler(ctx, uri, params)
		if err != nil {
			return nil, jsonrpc.NewInternalError(err.Error(), nil)
		}
		return result, nil
	}
	return nil, schema.NewResourceNotFound(uri)
}

// GetPrompt resolves the prompt by exact name, checks required arguments and
// renders it.
func (r *Registry) GetPrompt(ctx context.Context, params *schema.GetPromptRequestParams) (*schema.GetPromptResult, *jsonrpc.Error) {
	entry, ok := r.prompts[params.Name]
	if !ok {
		return nil, schema.NewUnknownPrompt(params.Name)
	}
	for _, argument := range entry.Arguments {
		if argument.Required == nil || !*argument.Required {
			continue
		}
		if _, ok := params.Arguments[argument.Name]; !ok {
			return nil, jsonrpc.NewInvalidParamsError("Missing required argument: "+argument.Name, nil)
		}
	}
	result, err := entry.Handler(ctx, params.Arguments)
	if err != nil {
		return nil, jsonrpc.NewInternalError(err.Error(), nil)
	}
	return result, nil
}
