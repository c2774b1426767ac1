package mcp

import (
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/anytrip/dashboard/internal/errors"
	"github.com/anytrip/dashboard/internal/record"
)

// decode unmarshals MCP request arguments into a typed struct.
// Avoids unsafe type assertions and handles JSON decoding safely.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	args := req.GetArguments()
	b, err := json.Marshal(args)
	if err != nil {
		return result, fmt.Errorf("marshal args: %w", err)
	}
	if err := json.Unmarshal(b, &result); err != nil {
		return result, fmt.Errorf("unmarshal args: %w", err)
	}
	return result, nil
}

// parseCollection resolves a collection argument ("tasks", "excel-sheets", "links", ...).
func parseCollection(name string) (record.Kind, error) {
	if name == "" {
		return "", errors.NewInvalidRequest("collection is required")
	}
	kind, ok := record.ParseKind(name)
	if !ok {
		return "", errors.NewInvalidRequest(fmt.Sprintf("unknown collection %q", name))
	}
	return kind, nil
}
