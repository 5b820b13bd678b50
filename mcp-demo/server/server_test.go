package server_test

import (
	"bufio"
	"context"
	"net/http"
	"strings"
	"testing"

	"github.com/joshua-zingale/mcp-demo-servers/internal/testutil"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) map[string]any {
	t.Helper()
	params := &mcp.CallToolParams{Name: name}
	if args != nil {
		params.Arguments = args
	}
	res, err := session.CallTool(context.Background(), params)
	require.NoError(t, err)
	require.False(t, res.IsError)

	out, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok, "unexpected structured content %T", res.StructuredContent)
	return out
}

func TestStreamableAddNumbers(t *testing.T) {
	ts := testutil.NewAddServer(t)
	session := testutil.Connect(t, &mcp.StreamableClientTransport{Endpoint: ts.URL + "/mcp"})

	assert.Equal(t, "AddNumbers", session.InitializeResult().ServerInfo.Name)

	tools, err := session.ListTools(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, 1)
	assert.Equal(t, "add_numbers", tools.Tools[0].Name)
	assert.Equal(t, "Add two numbers", tools.Tools[0].Description)

	assert.Equal(t, map[string]any{"a": 10.0, "b": 5.0, "result": 15.0}, callTool(t, session, "add_numbers", nil))
	assert.Equal(t, map[string]any{"a": -2.5, "b": 5.0, "result": 2.5}, callTool(t, session, "add_numbers", map[string]any{"a": -2.5}))
}

func TestSSEMultiplyNumbers(t *testing.T) {
	ts := testutil.NewMultiplyServer(t)
	session := testutil.Connect(t, &mcp.SSEClientTransport{Endpoint: ts.URL + "/sse"})

	assert.Equal(t, "MultiplyNumbers", session.InitializeResult().ServerInfo.Name)

	assert.Equal(t, map[string]any{"a": 2.0, "b": 3.5, "result": 7.0}, callTool(t, session, "sse_multiply_numbers", nil))
	assert.Equal(t, map[string]any{"a": 4.0, "b": 0.5, "result": 2.0}, callTool(t, session, "sse_multiply_numbers", map[string]any{"a": 4, "b": 0.5}))
}

func TestSSEEndpointEvent(t *testing.T) {
	ts := testutil.NewMultiplyServer(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, "GET", ts.URL+"/sse", nil)
	require.NoError(t, err)
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Origin", "https://claude.ai")

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "text/event-stream", res.Header.Get("Content-Type"))
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))

	scanner := bufio.NewScanner(res.Body)
	require.True(t, scanner.Scan())
	assert.Equal(t, "event: endpoint", scanner.Text())
	require.True(t, scanner.Scan())
	assert.True(t, strings.HasPrefix(scanner.Text(), "data: /sse?sessionid="), "got %q", scanner.Text())
}

func TestSSEPostRequiresSession(t *testing.T) {
	ts := testutil.NewMultiplyServer(t)

	res, err := http.Post(ts.URL+"/sse", "application/json", strings.NewReader(`{"jsonrpc":"2.0","id":1,"method":"ping"}`))
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestOverflowingResultFailsCall(t *testing.T) {
	ts := testutil.NewAddServer(t)
	session := testutil.Connect(t, &mcp.StreamableClientTransport{Endpoint: ts.URL + "/mcp"})

	// +Inf has no JSON encoding, so the call is rejected rather than answered.
	_, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "add_numbers",
		Arguments: map[string]any{"a": 1e308, "b": 1e308},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported value")

	assert.Equal(t, map[string]any{"a": 1.0, "b": 2.0, "result": 3.0},
		callTool(t, session, "add_numbers", map[string]any{"a": 1, "b": 2}))
}
