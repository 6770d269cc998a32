package letta

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/xuede/Letta-MCP-server-sub002/registry"
)

// Register populates the capability registry with every Letta-backed tool,
// resource, resource template and prompt. It runs once at startup, before
// any transport serves.
func Register(reg *registry.Registry, client *Client) {
	registerAgentTools(reg, client)
	registerMemoryTools(reg, client)
	registerToolTools(reg, client)
	registerResources(reg, client)
	registerPrompts(reg, client)
}

// decodeArgs converts loosely typed tool arguments into a typed struct via a
// JSON round trip.
func decodeArgs(args map[string]interface{}, target interface{}) error {
	data, err := json.Marshal(args)
	if err != nil {
		return errors.Wrap(err, "invalid arguments")
	}
	if err := json.Unmarshal(data, target); err != nil {
		return errors.Wrap(err, "invalid arguments")
	}
	return nil
}
