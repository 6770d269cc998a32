package schema

import "encoding/json"

// Content is a single typed block of a tool result. Only text blocks are
// produced by this server; the type discriminator keeps the wire shape open
// for other block kinds.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text,omitempty"`
}

// CallToolResult is the response to tools/call. Content is never empty on a
// successful call.
type CallToolResult struct {
	Content []Content `json:"content"`
}

// NewTextContent creates a text block.
func NewTextContent(text string) Content {
	return Content{Type: "text", Text: text}
}

// NewTextResult wraps a single text block into a tool result.
func NewTextResult(text string) *CallToolResult {
	return &CallToolResult{Content: []Content{NewTextContent(text)}}
}

// NewJSONResult marshals a structured payload into a single text block so a
// caller can reparse it losslessly.
func NewJSONResult(value interface{}) (*CallToolResult, error) {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return nil, err
	}
	return NewTextResult(string(data)), nil
}
