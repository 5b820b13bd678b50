package server

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

// Transport selects how the MCP server is exposed over HTTP.
type Transport int

const (
	// Streamable is the streamable HTTP transport, served statelessly.
	Streamable Transport = iota
	// SSE is the HTTP+SSE transport: GET opens the event stream, POST
	// delivers messages for the session named by the sessionid query.
	SSE
)

func (t Transport) String() string {
	switch t {
	case Streamable:
		return "streamable-http"
	case SSE:
		return "sse"
	default:
		return fmt.Sprintf("Transport(%d)", int(t))
	}
}

// DefaultPath is where the transport is mounted when Options.Path is empty.
func (t Transport) DefaultPath() string {
	if t == SSE {
		return "/sse"
	}
	return "/mcp"
}

type Options struct {
	Transport Transport
	Path      string
	Logger    *zap.Logger
}

func (o *Options) path() string {
	if o.Path != "" {
		return o.Path
	}
	return o.Transport.DefaultPath()
}

// NewMcpMux serves mcpServer over the chosen transport, together with the
// OAuth metadata stub, behind a permissive CORS policy.
func NewMcpMux(mcpServer *mcp.Server, opts *Options) *chi.Mux {

	if mcpServer == nil {
		panic("The MCP server cannot be a null pointer")
	}
	if opts == nil {
		opts = &Options{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.RealIP)
	mux.Use(requestLogger(logger))
	mux.Use(middleware.Recoverer)
	mux.Use(corsPolicy(logger))
	mux.Use(middleware.StripSlashes)

	mux.Get(OAuthMetadataPath, toJson(getOAuthMetadata, nil, false, false, logger))
	mux.Handle(opts.path(), transportHandler(mcpServer, opts.Transport))

	return mux
}

func transportHandler(mcpServer *mcp.Server, transport Transport) http.Handler {
	getServer := func(*http.Request) *mcp.Server {
		return mcpServer
	}

	switch transport {
	case SSE:
		return mcp.NewSSEHandler(getServer, nil)
	default:
		return mcp.NewStreamableHTTPHandler(getServer, &mcp.StreamableHTTPOptions{Stateless: true})
	}
}
