package registry

import (
	"fmt"
	"strings"

	"github.com/xuede/Letta-MCP-server-sub002/jsonrpc"
	"github.com/xuede/Letta-MCP-server-sub002/schema"
)

// ValidateArguments checks tool arguments against the declared input schema:
// every required property must be present and each supplied property must
// match its declared primitive type. Messages deliberately carry the words
// "required" or "invalid" so callers can classify the failure from the wire
// error alone.
func ValidateArguments(inputSchema schema.ToolInputSchema, args map[string]interface{}) *jsonrpc.Error {
	for _, name := range inputSchema.Required {
		value, ok := args[name]
		if !ok || value == nil {
			return jsonrpc.NewInvalidParamsError("Missing required parameter: "+name, nil)
		}
		if text, isString := value.(string); isString && strings.TrimSpace(text) == "" {
			return jsonrpc.NewInvalidParamsError("Missing required parameter: "+name, nil)
		}
	}
	for name, value := range args {
		property, ok := inputSchema.Properties[name]
		if !ok || value == nil {
			continue
		}
		declared, _ := property["type"].(string)
		if declared == "" {
			continue
		}
		if !matchesType(declared, value) {
			return jsonrpc.NewInvalidParamsError(
				fmt.Sprintf("Invalid parameter %v: expected %v", name, declared), nil)
		}
	}
	return nil
}

// matchesType checks a decoded JSON value against a schema type name. JSON
// numbers decode as float64, so integer accepts whole floats.
func matchesType(declared string, value interface{}) bool {
	switch declared {
	case "string":
		_, ok := value.(string)
		return ok
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "number":
		switch value.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case "integer":
		switch actual := value.(type) {
		case int, int64:
			return true
		case float64:
			return actual == float64(int64(actual))
		}
		return false
	case "array":
		_, ok := value.([]interface{})
		return ok
	case "object":
		_, ok := value.(map[string]interface{})
		return ok
	}
	return true
}
