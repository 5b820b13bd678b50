package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/joshua-zingale/mcp-demo-servers/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseToolArgs(t *testing.T) {
	args, err := parseToolArgs([]string{"a=2", "b=-3.5", "name=bob", "expr=1+1", "big=Inf", "empty="})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"a":     2.0,
		"b":     -3.5,
		"name":  "bob",
		"expr":  "1+1",
		"big":   "Inf",
		"empty": "",
	}, args)

	args, err = parseToolArgs(nil)
	require.NoError(t, err)
	assert.NotNil(t, args)
	assert.Empty(t, args)

	for _, bad := range []string{"a", "=3"} {
		_, err := parseToolArgs([]string{bad})
		assert.Error(t, err, bad)
	}
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCallAddNumbers(t *testing.T) {
	add := testutil.NewAddServer(t)

	out, err := run(t, "--connect", ">[add] "+add.URL+"/mcp", "call", "add", "add_numbers", "a=2", "b=3")
	require.NoError(t, err)

	var call struct {
		Output struct {
			StructuredContent map[string]float64 `json:"structuredContent"`
		} `json:"output"`
		ToolId struct {
			Name       string `json:"name"`
			ServerName string `json:"serverName"`
		} `json:"toolId"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &call))
	assert.Equal(t, "add_numbers", call.ToolId.Name)
	assert.Equal(t, "add", call.ToolId.ServerName)
	assert.Equal(t, 5.0, call.Output.StructuredContent["result"])
}

func TestCallUsesDefaults(t *testing.T) {
	multiply := testutil.NewMultiplyServer(t)

	out, err := run(t, "--connect", "~[multiply] "+multiply.URL+"/sse", "call", "multiply", "sse_multiply_numbers")
	require.NoError(t, err)
	assert.Contains(t, out, `"result": 7`)
}

func TestListServersAndTools(t *testing.T) {
	add := testutil.NewAddServer(t)
	multiply := testutil.NewMultiplyServer(t)
	connect := []string{
		"--connect", ">[add] " + add.URL + "/mcp",
		"--connect", "~[multiply] " + multiply.URL + "/sse",
	}

	out, err := run(t, append(connect, "servers")...)
	require.NoError(t, err)
	var servers struct {
		Servers []struct {
			Name      string `json:"name"`
			Transport string `json:"transport"`
		} `json:"servers"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &servers))
	require.Len(t, servers.Servers, 2)
	assert.Equal(t, "add", servers.Servers[0].Name)
	assert.Equal(t, "sse", servers.Servers[1].Transport)

	out, err = run(t, append(connect, "tools", "multiply")...)
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "sse_multiply_numbers"`)
}

func TestNoServers(t *testing.T) {
	_, err := run(t, "servers")
	assert.Error(t, err)
}
