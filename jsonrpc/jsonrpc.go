// Package jsonrpc implements the JSON-RPC 2.0 message envelope used by the
// MCP transports: requests, notifications, responses and the standard error
// object with its well-known codes.
package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidJSON marks a frame that is not valid JSON at all;
// ErrInvalidMessage marks valid JSON that is not a JSON-RPC message.
var (
	ErrInvalidJSON    = errors.New("invalid JSON")
	ErrInvalidMessage = errors.New("invalid JSON-RPC message")
)

// Version is the only protocol version this package speaks.
const Version = "2.0"

// Request represents a JSON-RPC request expecting a response.
type Request struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	Id      interface{}     `json:"id"`
}

// Notification represents a JSON-RPC message without an id; no response is
// ever produced for it.
type Notification struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response represents a JSON-RPC response; exactly one of Result or Error is
// populated.
type Response struct {
	Jsonrpc string          `json:"jsonrpc"`
	Id      interface{}     `json:"id"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// NewRequest creates a request with marshaled params.
func NewRequest(method string, params interface{}) (*Request, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return &Request{Jsonrpc: Version, Method: method, Params: data}, nil
}

// NewNotification creates a notification with marshaled params.
func NewNotification(method string, params interface{}) (*Notification, error) {
	data, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	return &Notification{Jsonrpc: Version, Method: method, Params: data}, nil
}

// NewResponse creates a response echoing the supplied request id.
func NewResponse(id interface{}) *Response {
	return &Response{Jsonrpc: Version, Id: id}
}

// Message is the raw decoded form of an incoming frame, before it is known
// whether it carries a request or a notification.
type Message struct {
	Jsonrpc string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	Id      interface{}     `json:"id,omitempty"`
}

// IsNotification reports whether the message carries no id and therefore
// expects no response.
func (m *Message) IsNotification() bool {
	return m.Id == nil
}

// Request converts the message to a request.
func (m *Message) Request() *Request {
	return &Request{Jsonrpc: m.Jsonrpc, Method: m.Method, Params: m.Params, Id: m.Id}
}

// Notification converts the message to a notification.
func (m *Message) Notification() *Notification {
	return &Notification{Jsonrpc: m.Jsonrpc, Method: m.Method, Params: m.Params}
}

// ParseMessage decodes a single JSON-RPC frame. A body that is not valid
// JSON-RPC shape (missing jsonrpc version or method) is rejected here so
// transports can refuse it before dispatch.
func ParseMessage(data []byte) (*Message, error) {
	message := &Message{}
	if err := json.Unmarshal(data, message); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if message.Jsonrpc != Version {
		return nil, fmt.Errorf("%w: version %q", ErrInvalidMessage, message.Jsonrpc)
	}
	if message.Method == "" {
		return nil, fmt.Errorf("%w: missing method", ErrInvalidMessage)
	}
	return message, nil
}
