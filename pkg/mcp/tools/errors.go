package tools

import (
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/kannikakak/Roaming-Management-System-Project-sub000/pkg/apperrors"
)

// ErrorResponse is the JSON body of a tool result that reports a caller mistake.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult returns a tool result flagged IsError with a structured body.
// Server failures are returned as Go errors instead.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails is NewErrorResult with extra context for the client,
// such as the list of valid intents.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	body, _ := json.Marshal(ErrorResponse{Error: true, Code: code, Message: message, Details: details})
	result := mcp.NewToolResultText(string(body))
	result.IsError = true
	return result
}

// AsInputErrorResult turns a caller error from the engine or profile service into
// a tool result. It returns nil for server failures.
func AsInputErrorResult(err error) *mcp.CallToolResult {
	kind, ok := apperrors.Classify(err)
	if !ok {
		return nil
	}
	return NewErrorResult(kind.Code, kind.Message)
}

// IsInputError reports whether err is the caller's fault. Such errors are logged at DEBUG.
func IsInputError(err error) bool {
	_, ok := apperrors.Classify(err)
	return ok
}
