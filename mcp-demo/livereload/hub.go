package livereload

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProtocolOfficial7 is the LiveReload protocol spoken to browsers.
const ProtocolOfficial7 = "http://livereload.com/protocols/official-7"

// Command is a LiveReload protocol message.
type Command struct {
	Command    string   `json:"command"`
	Protocols  []string `json:"protocols,omitempty"`
	ServerName string   `json:"serverName,omitempty"`
	Path       string   `json:"path,omitempty"`
	LiveCSS    bool     `json:"liveCSS,omitempty"`
}

func helloCommand() Command {
	return Command{
		Command:    "hello",
		Protocols:  []string{ProtocolOfficial7},
		ServerName: "mcp-demo-devserver",
	}
}

func reloadCommand(path string) Command {
	return Command{Command: "reload", Path: path, LiveCSS: true}
}

const clientBuffer = 8

// Hub fans reload commands out to connected browsers.
type Hub struct {
	mu      sync.Mutex
	clients map[uuid.UUID]chan Command
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[uuid.UUID]chan Command),
		logger:  logger,
	}
}

// Subscribe registers a client. The returned channel is closed by Unsubscribe.
func (h *Hub) Subscribe() (uuid.UUID, <-chan Command) {
	id := uuid.New()
	ch := make(chan Command, clientBuffer)

	h.mu.Lock()
	h.clients[id] = ch
	h.mu.Unlock()

	h.logger.Debug("client connected", zap.Stringer("client", id))
	return id, ch
}

func (h *Hub) Unsubscribe(id uuid.UUID) {
	h.mu.Lock()
	ch, ok := h.clients[id]
	delete(h.clients, id)
	h.mu.Unlock()

	if ok {
		close(ch)
		h.logger.Debug("client disconnected", zap.Stringer("client", id))
	}
}

// Broadcast queues cmd for every client and returns how many accepted it.
// A client whose buffer is full misses the command.
func (h *Hub) Broadcast(cmd Command) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	delivered := 0
	for id, ch := range h.clients {
		select {
		case ch <- cmd:
			delivered++
		default:
			h.logger.Warn("dropping command for slow client", zap.Stringer("client", id), zap.String("command", cmd.Command))
		}
	}
	return delivered
}

func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}
