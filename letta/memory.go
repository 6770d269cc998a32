package letta

import (
	"context"
	"net/http"

	"github.com/xuede/Letta-MCP-server-sub002/registry"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

type getMemoryArgs struct {
	AgentID string `json:"agent_id" description:"ID of the agent whose core memory to read"`
}

type updateMemoryArgs struct {
	AgentID    string `json:"agent_id" description:"ID of the agent whose core memory to update"`
	BlockLabel string `json:"block_label" description:"Label of the memory block, e.g. human or persona"`
	Value      string `json:"value" description:"New value of the memory block"`
}

func registerMemoryTools(reg *registry.Registry, client *Client) {
	reg.RegisterTool(schema.Tool{
		Name:        "get_agent_memory",
		Description: "Read an agent's core memory blocks",
		InputSchema: schema.MustLoad(getMemoryArgs{}),
	}, client.getAgentMemory)
	reg.RegisterTool(schema.Tool{
		Name:        "update_agent_memory",
		Description: "Update one labeled block of an agent's core memory",
		InputSchema: schema.MustLoad(updateMemoryArgs{}),
	}, client.updateAgentMemory)
}

// GetMemory reads an agent's core memory.
func (c *Client) GetMemory(ctx context.Context, agentID string) (*Memory, error) {
	memory := &Memory{}
	if err := c.do(ctx, http.MethodGet, "/agents/"+agentID+"/core-memory", nil, nil, memory); err != nil {
		return nil, err
	}
	return memory, nil
}

func (c *Client) getAgentMemory(ctx context.Context, args map[string]interface{}) (*schema.CallToolResult, error) {
	params := getMemoryArgs{}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	memory, err := c.GetMemory(ctx, params.AgentID)
	if err != nil {
		return nil, err
	}
	return schema.NewJSONResult(map[string]interface{}{
		"agent_id": params.AgentID,
		"memory":   memory,
	})
}

func (c *Client) updateAgentMemory(ctx context.Context, args map[string]interface{}) (*schema.CallToolResult, error) {
	params := updateMemoryArgs{}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	body := map[string]string{"value": params.Value}
	block := &MemoryBlock{}
	path := "/agents/" + params.AgentID + "/core-memory/blocks/" + params.BlockLabel
	if err := c.do(ctx, http.MethodPatch, path, nil, body, block); err != nil {
		return nil, err
	}
	return schema.NewJSONResult(map[string]interface{}{
		"agent_id": params.AgentID,
		"block":    block,
	})
}
