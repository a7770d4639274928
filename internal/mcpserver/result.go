package mcpserver

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ferdhika31/moneylover-mcp/internal/moneylover"
	"github.com/ferdhika31/moneylover-mcp/internal/session"
)

// toolError is the structured error envelope returned to MCP clients:
// a classification, a human-readable message, and, when available, the
// remote API's numeric code and diagnostic detail.
type toolError struct {
	Kind    string `json:"kind"`
	Code    int    `json:"code,omitempty"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// jsonResult renders a success payload as indented JSON text.
func jsonResult(v any) *mcp.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err))
	}
	return mcp.NewToolResultText(string(data))
}

// errorResult maps an operation failure onto the tool error envelope.
func errorResult(err error) *mcp.CallToolResult {
	te := toolError{Kind: "internal", Message: err.Error()}

	var apiErr *moneylover.Error
	switch {
	case errors.Is(err, session.ErrCredentialsRequired):
		te.Kind = "credentials_required"
	case errors.As(err, &apiErr):
		te.Kind = "api"
		if apiErr.Kind == moneylover.KindAuth {
			te.Kind = "auth"
		}
		te.Code = apiErr.Code
		te.Message = apiErr.Message
		te.Detail = err.Error()
	}

	data, err := json.Marshal(te)
	if err != nil {
		return mcp.NewToolResultError(te.Message)
	}
	return mcp.NewToolResultError(string(data))
}
