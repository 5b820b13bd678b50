package testutil

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joshua-zingale/mcp-demo-servers/mcp-demo/server"
	"github.com/joshua-zingale/mcp-demo-servers/mcp-demo/tools"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap/zaptest"
)

// NewAddServer starts the add_numbers server on a local port. The server is
// closed when the test ends.
func NewAddServer(t testing.TB) *httptest.Server {
	t.Helper()
	logger := zaptest.NewLogger(t)
	s, err := tools.NewAddServer(logger)
	if err != nil {
		t.Fatalf("could not create add server: %s", err)
	}
	return serve(t, server.NewMcpMux(s, &server.Options{Transport: server.Streamable, Logger: logger}))
}

// NewMultiplyServer starts the sse_multiply_numbers server on a local port.
func NewMultiplyServer(t testing.TB) *httptest.Server {
	t.Helper()
	logger := zaptest.NewLogger(t)
	s, err := tools.NewMultiplyServer(logger)
	if err != nil {
		t.Fatalf("could not create multiply server: %s", err)
	}
	return serve(t, server.NewMcpMux(s, &server.Options{Transport: server.SSE, Logger: logger}))
}

func serve(t testing.TB, mux http.Handler) *httptest.Server {
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

// Connect opens a client session over transport and closes it when the test ends.
func Connect(t testing.TB, transport mcp.Transport) *mcp.ClientSession {
	t.Helper()
	client := mcp.NewClient(&mcp.Implementation{Name: "testutil", Version: "v0.0.1"}, nil)
	session, err := client.Connect(context.Background(), transport, nil)
	if err != nil {
		t.Fatalf("could not connect: %s", err)
	}
	t.Cleanup(func() { session.Close() })
	return session
}
