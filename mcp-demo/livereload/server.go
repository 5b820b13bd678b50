// Package livereload serves a static directory and tells connected browsers
// to reload whenever one of a fixed set of files changes.
package livereload

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	ScriptPath    = "/livereload.js"
	WebSocketPath = "/livereload"
)

//go:embed livereload.js
var clientScript []byte

var scriptTag = []byte(`<script src="` + ScriptPath + `"></script>`)

type Options struct {
	Root     string
	Watch    []string
	Debounce time.Duration
	Logger   *zap.Logger
}

type Server struct {
	root     string
	hub      *Hub
	watcher  *Watcher
	logger   *zap.Logger
	upgrader websocket.Upgrader
}

func NewServer(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	root := opts.Root
	if root == "" {
		root = "."
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, errors.New("root is not a directory: " + root)
	}

	watcher, err := NewWatcher(root, opts.Watch, opts.Debounce, logger)
	if err != nil {
		return nil, err
	}

	return &Server{
		root:    root,
		hub:     NewHub(logger),
		watcher: watcher,
		logger:  logger,
		upgrader: websocket.Upgrader{
			// Any page served locally may connect.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}, nil
}

func (s *Server) Hub() *Hub {
	return s.hub
}

// Run forwards file changes to the hub until ctx is done.
func (s *Server) Run(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() {
		errc <- s.watcher.Run(ctx)
	}()

	for name := range s.watcher.Changes() {
		n := s.hub.Broadcast(reloadCommand(name))
		s.logger.Info("reload", zap.String("file", name), zap.Int("clients", n))
	}
	return <-errc
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get(WebSocketPath, s.serveWebSocket)
	r.Get(ScriptPath, s.serveScript)
	r.Get("/*", s.serveStatic)
	return r
}

func (s *Server) serveScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.Write(clientScript)
}

func (s *Server) serveWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	id, commands := s.hub.Subscribe()
	defer s.hub.Unsubscribe(id)

	// Only this goroutine writes to conn; the reader hands hello replies over.
	replies := make(chan Command, 1)
	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		for {
			var msg Command
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			if msg.Command == "hello" {
				select {
				case replies <- helloCommand():
				default:
				}
			}
		}
	}()

	for {
		var cmd Command
		select {
		case <-readerDone:
			return
		case cmd = <-replies:
		case c, ok := <-commands:
			if !ok {
				return
			}
			cmd = c
		}
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(cmd); err != nil {
			s.logger.Debug("websocket write failed", zap.Stringer("client", id), zap.Error(err))
			return
		}
	}
}

func (s *Server) serveStatic(w http.ResponseWriter, r *http.Request) {
	upath := path.Clean("/" + r.URL.Path)
	name := filepath.Join(s.root, filepath.FromSlash(upath))

	info, err := os.Stat(name)
	if err == nil && info.IsDir() {
		name = filepath.Join(name, "index.html")
		info, err = os.Stat(name)
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			http.NotFound(w, r)
			return
		}
		http.Error(w, "could not read file", http.StatusInternalServerError)
		return
	}

	if !isHTML(name) {
		w.Header().Set("Cache-Control", "no-cache")
		http.ServeFile(w, r, name)
		return
	}

	data, err := os.ReadFile(name)
	if err != nil {
		http.Error(w, "could not read file", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeContent(w, r, name, info.ModTime(), bytes.NewReader(injectScript(data)))
}

func isHTML(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".html" || ext == ".htm"
}

// injectScript places the client script tag before the last </body>, or at
// the end of documents without one.
func injectScript(page []byte) []byte {
	i := bytes.LastIndex(bytes.ToLower(page), []byte("</body>"))
	if i < 0 {
		return append(append(page[:len(page):len(page)], scriptTag...), '\n')
	}
	out := make([]byte, 0, len(page)+len(scriptTag))
	out = append(out, page[:i]...)
	out = append(out, scriptTag...)
	out = append(out, page[i:]...)
	return out
}
