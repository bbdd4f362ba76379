package tools

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/models"
)

// stringArg returns a trimmed string argument, or "" when it is missing.
func stringArg(req mcp.CallToolRequest, name string) string {
	return strings.TrimSpace(req.GetString(name, ""))
}

// optionalUUID reads an optional UUID argument. A missing or blank value yields uuid.Nil;
// the nil UUID itself is refused so it cannot pass for "no scope".
func optionalUUID(req mcp.CallToolRequest, name string) (uuid.UUID, error) {
	raw := stringArg(req, name)
	if raw == "" {
		return uuid.Nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%s must be a UUID, got %q", name, raw)
	}
	return id, nil
}

// scopeArgs reads file_id and project_id. A non-nil result is the error to return.
func scopeArgs(req mcp.CallToolRequest) (models.Scope, *mcp.CallToolResult) {
	var scope models.Scope
	var err error
	if scope.FileID, err = optionalUUID(req, "file_id"); err != nil {
		return scope, NewErrorResult("invalid_parameters", err.Error())
	}
	if scope.ProjectID, err = optionalUUID(req, "project_id"); err != nil {
		return scope, NewErrorResult("invalid_parameters", err.Error())
	}
	return scope, nil
}

// intentArg reads the optional intent override.
func intentArg(req mcp.CallToolRequest) (models.Intent, *mcp.CallToolResult) {
	raw := stringArg(req, "intent")
	if raw == "" {
		return "", nil
	}
	intent, ok := models.ParseIntent(raw)
	if !ok {
		return "", NewErrorResultWithDetails("invalid_parameters", fmt.Sprintf("unknown intent %q", raw),
			map[string]any{"valid_intents": models.Intents()})
	}
	return intent, nil
}
