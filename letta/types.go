package letta

import "encoding/json"

// Agent is the subset of the Letta agent state the handlers reshape.
type Agent struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	CreatedAt   string     `json:"created_at,omitempty"`
	Tags        []string   `json:"tags,omitempty"`
	LLMConfig   *LLMConfig `json:"llm_config,omitempty"`
}

type LLMConfig struct {
	Model         string `json:"model,omitempty"`
	ModelEndpoint string `json:"model_endpoint_type,omitempty"`
	ContextWindow int    `json:"context_window,omitempty"`
}

// AgentSummary is the reshaped roster entry returned by list_agents.
type AgentSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Model       string `json:"model,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// MemoryBlock is one labeled block of an agent's core memory.
type MemoryBlock struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
	Value string `json:"value"`
	Limit int    `json:"limit,omitempty"`
}

// Memory is an agent's core memory.
type Memory struct {
	Blocks []MemoryBlock `json:"blocks"`
}

// Tool is one entry of the upstream tool catalog.
type Tool struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	SourceType  string   `json:"source_type,omitempty"`
}

// MessageCreate is one message sent to an agent.
type MessageCreate struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Message is one entry of an agent's reply stream; MessageType discriminates
// assistant output from reasoning and tool traffic.
type Message struct {
	ID          string          `json:"id,omitempty"`
	MessageType string          `json:"message_type"`
	Content     string          `json:"content,omitempty"`
	Reasoning   string          `json:"reasoning,omitempty"`
	ToolCall    json.RawMessage `json:"tool_call,omitempty"`
}

type promptRequest struct {
	Messages []MessageCreate `json:"messages"`
}

type promptResponse struct {
	Messages []Message       `json:"messages"`
	Usage    json.RawMessage `json:"usage,omitempty"`
}
