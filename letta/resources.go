package letta

import (
	"context"
	"encoding/json"

	"github.com/xuede/Letta-MCP-server-sub002/registry"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

const (
	agentsResourceURI  = "letta://agents"
	toolsResourceURI   = "letta://tools"
	memoryTemplateURI  = "letta://agents/{agent_id}/memory"
	jsonMimeType       = "application/json"
	agentsResourceName = "Agent roster"
	toolsResourceName  = "Tool catalog"
)

func registerResources(reg *registry.Registry, client *Client) {
	mimeType := jsonMimeType
	agentsTitle := "Agents on the Letta server"
	reg.RegisterResource(schema.Resource{
		Uri:      agentsResourceURI,
		Name:     agentsResourceName,
		Title:    &agentsTitle,
		MimeType: &mimeType,
	}, client.readAgentsResource)

	toolsTitle := "Tools available on the Letta server"
	reg.RegisterResource(schema.Resource{
		Uri:      toolsResourceURI,
		Name:     toolsResourceName,
		Title:    &toolsTitle,
		MimeType: &mimeType,
	}, client.readToolsResource)

	memoryTitle := "Core memory of one agent"
	reg.RegisterTemplate(schema.ResourceTemplate{
		UriTemplate: memoryTemplateURI,
		Name:        "Agent memory",
		Title:       &memoryTitle,
		MimeType:    &mimeType,
	}, client.readMemoryResource)
}

func jsonContents(uri string, value interface{}) (*schema.ReadResourceResult, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	return &schema.ReadResourceResult{Contents: []schema.ResourceContents{{
		Uri:      uri,
		MimeType: jsonMimeType,
		Text:     string(data),
	}}}, nil
}

func (c *Client) readAgentsResource(ctx context.Context, uri string) (*schema.ReadResourceResult, error) {
	summaries, err := c.ListAgents(ctx, "")
	if err != nil {
		return nil, err
	}
	return jsonContents(uri, summaries)
}

func (c *Client) readToolsResource(ctx context.Context, uri string) (*schema.ReadResourceResult, error) {
	tools, err := c.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	return jsonContents(uri, tools)
}

func (c *Client) readMemoryResource(ctx context.Context, uri string, params map[string]string) (*schema.ReadResourceResult, error) {
	memory, err := c.GetMemory(ctx, params["agent_id"])
	if err != nil {
		return nil, err
	}
	return jsonContents(uri, memory)
}
