package letta

import (
	"context"
	"net/http"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/xuede/Letta-MCP-server-sub002/registry"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

type listAgentsArgs struct {
	Filter string `json:"filter,omitempty" description:"Filter agents by name, description or tag"`
}

type promptAgentArgs struct {
	AgentID string `json:"agent_id" description:"ID of the agent to message"`
	Message string `json:"message" description:"Message to send to the agent"`
}

type createAgentArgs struct {
	Name        string `json:"name" description:"Name of the new agent"`
	Description string `json:"description,omitempty" description:"Description of the agent's purpose"`
	Model       string `json:"model,omitempty" description:"Model handle, defaults to the server's configured model"`
}

type deleteAgentArgs struct {
	AgentID string `json:"agent_id" description:"ID of the agent to delete"`
}

type bulkDeleteAgentsArgs struct {
	AgentIDs []string `json:"agent_ids" description:"IDs of the agents to delete"`
}

func registerAgentTools(reg *registry.Registry, client *Client) {
	reg.RegisterTool(schema.Tool{
		Name:        "list_agents",
		Description: "List all agents available on the Letta server, optionally filtered by name, description or tag",
		InputSchema: schema.MustLoad(listAgentsArgs{}),
	}, client.listAgents)
	reg.RegisterTool(schema.Tool{
		Name:        "prompt_agent",
		Description: "Send a message to an agent and return its reply",
		InputSchema: schema.MustLoad(promptAgentArgs{}),
	}, client.promptAgent)
	reg.RegisterTool(schema.Tool{
		Name:        "create_agent",
		Description: "Create a new agent on the Letta server",
		InputSchema: schema.MustLoad(createAgentArgs{}),
	}, client.createAgent)
	reg.RegisterTool(schema.Tool{
		Name:        "delete_agent",
		Description: "Delete an agent from the Letta server",
		InputSchema: schema.MustLoad(deleteAgentArgs{}),
	}, client.deleteAgent)
	reg.RegisterTool(schema.Tool{
		Name:        "bulk_delete_agents",
		Description: "Delete multiple agents in one call; failures are reported per agent",
		InputSchema: schema.MustLoad(bulkDeleteAgentsArgs{}),
	}, client.bulkDeleteAgents)
}

// ListAgents fetches the agent roster, optionally filtered by a substring of
// name, description or tag.
func (c *Client) ListAgents(ctx context.Context, filter string) ([]AgentSummary, error) {
	var agents []Agent
	if err := c.do(ctx, http.MethodGet, "/agents/", nil, nil, &agents); err != nil {
		return nil, err
	}
	needle := strings.ToLower(filter)
	summaries := make([]AgentSummary, 0, len(agents))
	for _, agent := range agents {
		if needle != "" && !matchesAgent(&agent, needle) {
			continue
		}
		summary := AgentSummary{
			ID:          agent.ID,
			Name:        agent.Name,
			Description: agent.Description,
			CreatedAt:   agent.CreatedAt,
		}
		if agent.LLMConfig != nil {
			summary.Model = agent.LLMConfig.Model
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

func matchesAgent(agent *Agent, needle string) bool {
	if strings.Contains(strings.ToLower(agent.Name), needle) ||
		strings.Contains(strings.ToLower(agent.Description), needle) {
		return true
	}
	for _, tag := range agent.Tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func (c *Client) listAgents(ctx context.Context, args map[string]interface{}) (*schema.CallToolResult, error) {
	params := listAgentsArgs{}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	summaries, err := c.ListAgents(ctx, params.Filter)
	if err != nil {
		return nil, err
	}
	return schema.NewJSONResult(map[string]interface{}{
		"count":  len(summaries),
		"agents": summaries,
	})
}

func (c *Client) promptAgent(ctx context.Context, args map[string]interface{}) (*schema.CallToolResult, error) {
	params := promptAgentArgs{}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	body := &promptRequest{Messages: []MessageCreate{{Role: "user", Content: params.Message}}}
	reply := &promptResponse{}
	if err := c.do(ctx, http.MethodPost, "/agents/"+params.AgentID+"/messages", nil, body, reply); err != nil {
		return nil, err
	}
	var assistant []string
	for _, message := range reply.Messages {
		if message.MessageType == "assistant_message" && message.Content != "" {
			assistant = append(assistant, message.Content)
		}
	}
	return schema.NewJSONResult(map[string]interface{}{
		"agent_id": params.AgentID,
		"response": strings.Join(assistant, "\n"),
		"messages": reply.Messages,
	})
}

func (c *Client) createAgent(ctx context.Context, args map[string]interface{}) (*schema.CallToolResult, error) {
	params := createAgentArgs{}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	body := map[string]interface{}{
		"name":        params.Name,
		"description": params.Description,
	}
	if params.Model != "" {
		body["model"] = params.Model
	}
	agent := &Agent{}
	if err := c.do(ctx, http.MethodPost, "/agents/", nil, body, agent); err != nil {
		return nil, err
	}
	return schema.NewJSONResult(map[string]interface{}{
		"created": true,
		"agent":   agent,
	})
}

func (c *Client) deleteAgent(ctx context.Context, args map[string]interface{}) (*schema.CallToolResult, error) {
	params := deleteAgentArgs{}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	if err := c.do(ctx, http.MethodDelete, "/agents/"+params.AgentID, nil, nil, nil); err != nil {
		return nil, err
	}
	return schema.NewJSONResult(map[string]interface{}{
		"deleted":  true,
		"agent_id": params.AgentID,
	})
}

// bulkDeleteAgents deletes each agent independently; one upstream failure
// does not abort the rest, and every failure is reported.
func (c *Client) bulkDeleteAgents(ctx context.Context, args map[string]interface{}) (*schema.CallToolResult, error) {
	params := bulkDeleteAgentsArgs{}
	if err := decodeArgs(args, &params); err != nil {
		return nil, err
	}
	var deleted []string
	var failures *multierror.Error
	for _, agentID := range params.AgentIDs {
		if err := c.do(ctx, http.MethodDelete, "/agents/"+agentID, nil, nil, nil); err != nil {
			failures = multierror.Append(failures, err)
			continue
		}
		deleted = append(deleted, agentID)
	}
	result := map[string]interface{}{
		"deleted": deleted,
		"count":   len(deleted),
	}
	if failures.ErrorOrNil() != nil {
		if len(deleted) == 0 {
			return nil, failures
		}
		result["errors"] = failures.Error()
	}
	return schema.NewJSONResult(result)
}
