package api

import (
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// OAuthMetadata is the authorization server metadata document. Only the
// issuer is advertised; no tokens are ever issued.
type OAuthMetadata struct {
	Issuer string `json:"issuer"`
}

type McpServerList struct {
	Servers []McpServerListing `json:"servers"`
}

type McpServerListing struct {
	Name      string `json:"name"`
	Transport string `json:"transport"`
	Endpoint  string `json:"endpoint"`
}

type ToolList struct {
	ServerName string     `json:"serverName"`
	Tools      []mcp.Tool `json:"tools"`
}

type ToolId struct {
	Name       string `json:"name"`
	ServerName string `json:"serverName"`
}

// ToolCall records one tool invocation and its outcome.
type ToolCall struct {
	Error  string             `json:"error,omitempty"`
	Input  map[string]any     `json:"input"`
	Output mcp.CallToolResult `json:"output"`
	ToolId ToolId             `json:"toolId"`
}

func NewToolCall(input map[string]any, output mcp.CallToolResult, toolId ToolId) ToolCall {
	if input == nil {
		input = map[string]any{}
	}
	return ToolCall{
		Input:  input,
		Output: output,
		ToolId: toolId,
	}
}

func NewToolCallError(input map[string]any, errorText string, toolId ToolId) ToolCall {
	if input == nil {
		input = map[string]any{}
	}
	return ToolCall{
		Input:  input,
		Error:  errorText,
		ToolId: toolId,
	}
}
