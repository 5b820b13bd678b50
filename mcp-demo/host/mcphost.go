package host

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/joshua-zingale/mcp-demo-servers/mcp-demo/api"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

const (
	TransportStreamable = "streamable-http"
	TransportSSE        = "sse"
)

var ErrUnknownServer = errors.New("unknown MCP server")

func NewMcpHost(opts *McpHostOptions) (*McpHost, error) {
	if opts == nil {
		opts = &McpHostOptions{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	client := mcp.NewClient(&mcp.Implementation{Name: "mcpcall", Version: "0.1.0"}, nil)

	return &McpHost{
		sessions:      make(map[string]*serverSession),
		defaultClient: client,
		opts:          opts,
	}, nil
}

// Opens MCP sessions with the servers listed in config, one per line:
//
//	>[name] http://host:port/mcp   streamable HTTP
//	~[name] http://host:port/sse   HTTP+SSE
//
// Blank lines and lines starting with '#' are skipped.
// If a client is not specified, the host's default client is used.
func (h *McpHost) AddSessionsFromConfig(ctx context.Context, config io.Reader, client *mcp.Client) error {
	if client == nil {
		client = h.defaultClient
	}
	sessions, err := h.loadSessionsFromConfig(ctx, client, config)
	if err != nil {
		closeAll(sessions)
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for name := range sessions {
		if _, ok := h.sessions[name]; ok {
			closeAll(sessions)
			return fmt.Errorf("server name conflict: %s", name)
		}
	}
	for name, session := range sessions {
		h.sessions[name] = session
	}
	return nil
}

func (h *McpHost) ListServerNames() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	keys := make([]string, 0, len(h.sessions))
	for k := range h.sessions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (h *McpHost) Servers() api.McpServerList {
	h.mu.RLock()
	defer h.mu.RUnlock()
	list := api.McpServerList{Servers: []api.McpServerListing{}}
	for name, s := range h.sessions {
		list.Servers = append(list.Servers, api.McpServerListing{
			Name:      name,
			Transport: s.transport,
			Endpoint:  s.endpoint,
		})
	}
	sort.Slice(list.Servers, func(i, j int) bool {
		return list.Servers[i].Name < list.Servers[j].Name
	})
	return list
}

// Gets a session for an MCP server with a particular name
func (h *McpHost) GetSession(ctx context.Context, name string) (*mcp.ClientSession, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownServer, name)
	}
	return s.session, nil
}

// Lists all tools for a server that has an open session with this host
func (h *McpHost) ListToolsOnServer(ctx context.Context, serverName string) ([]mcp.Tool, error) {
	session, err := h.GetSession(ctx, serverName)
	if err != nil {
		return nil, err
	}
	if session.InitializeResult().Capabilities.Tools == nil {
		return []mcp.Tool{}, nil
	}

	tools := []mcp.Tool{}
	for tool, err := range session.Tools(ctx, nil) {
		if err != nil {
			return nil, fmt.Errorf("fetching tools for `%s`: %w", serverName, err)
		}
		tools = append(tools, *tool)
	}

	return tools, nil
}

// CallTool invokes toolName on serverName. Protocol failures are returned as
// errors; a tool that reports an error yields a ToolCall with Error set.
func (h *McpHost) CallTool(ctx context.Context, serverName, toolName string, args map[string]any) (*api.ToolCall, error) {
	session, err := h.GetSession(ctx, serverName)
	if err != nil {
		return nil, err
	}

	params := &mcp.CallToolParams{Name: toolName}
	if args != nil {
		params.Arguments = args
	}
	toolId := api.ToolId{Name: toolName, ServerName: serverName}

	res, err := session.CallTool(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("error calling tool '%s': %w", toolName, err)
	}
	h.opts.Logger.Debug("tool call completed",
		zap.String("server", serverName),
		zap.String("tool", toolName),
		zap.Bool("is_error", res.IsError))

	if res.IsError {
		call := api.NewToolCallError(args, toolErrorText(res), toolId)
		call.Output = *res
		return &call, nil
	}
	call := api.NewToolCall(args, *res, toolId)
	return &call, nil
}

// Close ends every session. The host is empty afterwards.
func (h *McpHost) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	var errs []error
	for name, s := range h.sessions {
		if err := s.session.Close(); err != nil {
			errs = append(errs, fmt.Errorf("closing %s: %w", name, err))
		}
		delete(h.sessions, name)
	}
	return errors.Join(errs...)
}

func toolErrorText(res *mcp.CallToolResult) string {
	var parts []string
	for _, c := range res.Content {
		if tc, ok := c.(*mcp.TextContent); ok {
			parts = append(parts, tc.Text)
		}
	}
	if len(parts) == 0 {
		return "tool reported an error"
	}
	return strings.Join(parts, "\n")
}

func closeAll(sessions map[string]*serverSession) {
	for _, s := range sessions {
		s.session.Close()
	}
}

func (h *McpHost) loadSessionsFromConfig(ctx context.Context, client *mcp.Client, r io.Reader) (map[string]*serverSession, error) {
	scanner := bufio.NewScanner(r)

	sessions := make(map[string]*serverSession)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		sessionWithName, err := h.sessionFromLine(ctx, client, line)
		if err != nil {
			return sessions, err
		}

		if _, exists := sessions[sessionWithName.sessionName]; exists {
			sessionWithName.session.Close()
			return sessions, fmt.Errorf("server name conflict: %s", sessionWithName.sessionName)
		}
		s := sessionWithName.serverSession
		sessions[sessionWithName.sessionName] = &s
	}

	return sessions, scanner.Err()
}

var lineRegex = regexp.MustCompile(`^([>~])\[(\w[\w\d_-]*)\]\s*(https?://\S+)$`)

func parseLine(line string) (transport, name, endpoint string, err error) {
	matches := lineRegex.FindStringSubmatch(line)
	if len(matches) == 0 {
		return "", "", "", fmt.Errorf("invalid line in config: %s", line)
	}
	transport = TransportStreamable
	if matches[1] == "~" {
		transport = TransportSSE
	}
	return transport, matches[2], matches[3], nil
}

func (h *McpHost) sessionFromLine(ctx context.Context, client *mcp.Client, line string) (clientSessionWithName, error) {
	transportName, name, endpoint, err := parseLine(line)
	if err != nil {
		return clientSessionWithName{}, err
	}

	var transport mcp.Transport
	switch transportName {
	case TransportSSE:
		transport = &mcp.SSEClientTransport{Endpoint: endpoint, HTTPClient: h.opts.HTTPClient}
	default:
		transport = &mcp.StreamableClientTransport{Endpoint: endpoint, HTTPClient: h.opts.HTTPClient}
	}

	session, err := client.Connect(ctx, transport, nil)
	if err != nil {
		return clientSessionWithName{}, fmt.Errorf("connecting to %s at %s: %w", name, endpoint, err)
	}
	h.opts.Logger.Debug("connected",
		zap.String("server", name),
		zap.String("transport", transportName),
		zap.String("endpoint", endpoint))

	return clientSessionWithName{
		serverSession: serverSession{
			session:   session,
			transport: transportName,
			endpoint:  endpoint,
		},
		sessionName: name,
	}, nil
}
