package host

import (
	"net/http"
	"sync"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"
)

type McpHost struct {
	mu            sync.RWMutex
	sessions      map[string]*serverSession
	defaultClient *mcp.Client
	opts          *McpHostOptions
}

type McpHostOptions struct {
	// HTTPClient is used by every transport; nil means http.DefaultClient.
	HTTPClient *http.Client
	Logger     *zap.Logger
}

type serverSession struct {
	session   *mcp.ClientSession
	transport string
	endpoint  string
}

type clientSessionWithName struct {
	serverSession
	sessionName string
}
