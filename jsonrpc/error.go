package jsonrpc

import (
	"encoding/json"
	"fmt"
)

// Standard JSON-RPC 2.0 error codes.
const (
	ParseError     = -32700
	InvalidRequest = -32600
	MethodNotFound = -32601
	InvalidParams  = -32602
	InternalError  = -32603
)

// Error represents a JSON-RPC error object.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// NewError creates an error with arbitrary code and data.
func NewError(code int, message string, data []byte) *Error {
	return &Error{Code: code, Message: message, Data: data}
}

// NewParsingError creates a parse error (-32700).
func NewParsingError(message string, data []byte) *Error {
	return NewError(ParseError, message, data)
}

// NewInvalidRequest creates an invalid request error (-32600).
func NewInvalidRequest(message string, data []byte) *Error {
	return NewError(InvalidRequest, message, data)
}

// NewMethodNotFound creates a method not found error (-32601).
func NewMethodNotFound(message string, data []byte) *Error {
	return NewError(MethodNotFound, message, data)
}

// NewInvalidParamsError creates an invalid params error (-32602).
func NewInvalidParamsError(message string, data []byte) *Error {
	return NewError(InvalidParams, message, data)
}

// NewInternalError creates an internal error (-32603).
func NewInternalError(message string, data []byte) *Error {
	return NewError(InternalError, message, data)
}
