package letta

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuede/Letta-MCP-server-sub002/registry"
)

func TestRegisterCatalog(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient(&Config{BaseURL: DefaultBaseURL}, logger)
	reg := registry.New()
	Register(reg, client)

	tools := reg.Tools()
	names := make([]string, 0, len(tools))
	for _, tool := range tools {
		names = append(names, tool.Name)
		assert.NotEmpty(t, tool.Description, "tool %v", tool.Name)
		assert.Equal(t, "object", tool.InputSchema.Type, "tool %v", tool.Name)
	}
	assert.Equal(t, []string{
		"list_agents", "prompt_agent", "create_agent", "delete_agent", "bulk_delete_agents",
		"get_agent_memory", "update_agent_memory",
		"list_tools", "attach_tool",
	}, names)

	resources := reg.Resources()
	require.Len(t, resources, 2)
	assert.Equal(t, agentsResourceURI, resources[0].Uri)
	assert.Equal(t, toolsResourceURI, resources[1].Uri)

	templates := reg.ResourceTemplates()
	require.Len(t, templates, 1)
	assert.Equal(t, memoryTemplateURI, templates[0].UriTemplate)

	prompts := reg.Prompts()
	require.Len(t, prompts, 1)
	assert.Equal(t, "agent_summary", prompts[0].Name)
}

func TestToolInputSchemasDeclareRequired(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := NewClient(&Config{BaseURL: DefaultBaseURL}, logger)
	reg := registry.New()
	Register(reg, client)

	required := map[string][]string{
		"prompt_agent":        {"agent_id", "message"},
		"create_agent":        {"name"},
		"delete_agent":        {"agent_id"},
		"bulk_delete_agents":  {"agent_ids"},
		"get_agent_memory":    {"agent_id"},
		"update_agent_memory": {"agent_id", "block_label", "value"},
		"attach_tool":         {"agent_id", "tool_id"},
	}
	for _, tool := range reg.Tools() {
		if want, ok := required[tool.Name]; ok {
			assert.Equal(t, want, tool.InputSchema.Required, "tool %v", tool.Name)
		}
	}
}
