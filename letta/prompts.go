package letta

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xuede/Letta-MCP-server-sub002/registry"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

func registerPrompts(reg *registry.Registry, client *Client) {
	required := true
	reg.RegisterPrompt(schema.Prompt{
		Name:        "agent_summary",
		Description: "Summarize an agent's configuration and core memory",
		Arguments: []schema.PromptArgument{{
			Name:        "agent_id",
			Description: "ID of the agent to summarize",
			Required:    &required,
		}},
	}, client.agentSummaryPrompt)
}

// agentSummaryPrompt renders a user message embedding the agent's current
// memory so the model can summarize live state.
func (c *Client) agentSummaryPrompt(ctx context.Context, args map[string]string) (*schema.GetPromptResult, error) {
	agentID := args["agent_id"]
	memory, err := c.GetMemory(ctx, agentID)
	if err != nil {
		return nil, err
	}
	snapshot, err := json.MarshalIndent(memory, "", "  ")
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf(
		"Summarize the current state of Letta agent %s. Its core memory is:\n\n%s\n\n"+
			"Describe the agent's persona, what it knows about its human, and anything notable.",
		agentID, snapshot)
	return &schema.GetPromptResult{
		Description: "Summary request for agent " + agentID,
		Messages: []schema.PromptMessage{{
			Role:    "user",
			Content: schema.NewTextContent(text),
		}},
	}, nil
}
