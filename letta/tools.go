package letta

import (
	"context"
	"net/http"
	"strings"

	"github.com/xuede/Letta-MCP-server-sub002/registry"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

const defaultPageSize = 25

type listToolsArgs struct {
	Filter   string `json:"filter,omitempty" description:"Filter tools by name or description"`
	Page     *int   `json:"page,omitempty" description:"Page number, starting at 1"`
	PageSize *int   `json:"page_size,omitempty" description:"Number of tools per page, default 25"`
}

type attachToolArgs struct {
	AgentID string `json:"agent_id" description:"ID of the agent to attach the tool to"`
	ToolID  string `json:"tool_id" description:"ID of the tool to attach"`
}

func registerToolTools(reg *registry.Registry, client *Client) {
	reg.RegisterTool(schema.Tool{
		Name:        "list_tools",
		Description: "List tools available on the Letta server with optional filtering and pagination",
		InputSchema: schema.MustLoad(listToolsArgs{}),
	}, client.listTools)
	reg.RegisterTool(schema.Tool{
		Name:        "attach_tool",
		Description: "Attach a tool to an agent",
		InputSchema: schema.MustLoad(attachToolArgs{}),
	}, client.attachTool)
}

// ListTools fetches the upstream tool catalog.
func (c *Client) ListTools(ctx context.Context) ([]Tool, error) {
	var tools []Tool
	if err := c.do(ctx, http.MethodGet, "/tools/", nil, nil, &tools); err != nil {
		return nil, err
	}
	return tools, nil
}

// filterTools applies the substring filter and pagination the upstream API
// lacks; page numbering starts at 1.
func filterTools(tools []Tool, filter string, page, pageSize int) ([]Tool, int) {
	needle := strings.ToLower(filter)
	filtered := make([]Tool, 0, len(tools))
	for _, tool := range tools {
		if needle != "" &&
			!strings.Contains(strings.ToLower(tool.Name), needle) &&
			!strings.Contains(strings.ToLower(tool.Description), needle) {
			continue
		}
		filtered = append(filtered, tool)
	}
	total := len(filtered)
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if page <= 0 {
		page = 1
	}
	start := (page - 1) * pageSize
	if start >= total {
		return []Tool{}, total
	}
	end := start + pageSize
	if end > total {
		end = total
	}
	return filtered[start:end], total
}

func (c *Client) listTools(ctx context.Context, args map[string]interface{}) (*schema.CallToolResult, error) {
	params := listToolsArgs{}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	tools, err := c.ListTools(ctx)
	if err != nil {
		return nil, err
	}
	page, pageSize := 1, defaultPageSize
	if params.Page != nil {
		page = *params.Page
	}
	if params.PageSize != nil {
		pageSize = *params.PageSize
	}
	pageTools, total := filterTools(tools, params.Filter, page, pageSize)
	return schema.NewJSONResult(map[string]interface{}{
		"total":     total,
		"page":      page,
		"page_size": pageSize,
		"tools":     pageTools,
	})
}

func (c *Client) attachTool(ctx context.Context, args map[string]interface{}) (*schema.CallToolResult, error) {
	params := attachToolArgs{}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	agent := &Agent{}
	path := "/agents/" + params.AgentID + "/tools/attach/" + params.ToolID
	if err := c.do(ctx, http.MethodPatch, path, nil, nil, agent); err != nil {
		return nil, err
	}
	return schema.NewJSONResult(map[string]interface{}{
		"attached": true,
		"agent_id": params.AgentID,
		"tool_id":  params.ToolID,
	})
}
