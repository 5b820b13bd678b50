// Package config loads process configuration for the demo servers from the
// environment and, for the dev server, an optional YAML file.
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	AddServerPort      = 8001
	MultiplyServerPort = 8002
)

// Server is the configuration shared by both MCP servers.
type Server struct {
	Host     string
	Port     int
	LogLevel string
}

// Addr is the listen address, e.g. "0.0.0.0:8001".
func (s Server) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// LoadServer reads PORT and LOG_LEVEL. The server always binds all interfaces.
func LoadServer(defaultPort int) (Server, error) {
	port, err := getEnvInt("PORT", defaultPort)
	if err != nil {
		return Server{}, err
	}
	if port <= 0 || port > 65535 {
		return Server{}, fmt.Errorf("PORT out of range: %d", port)
	}
	return Server{
		Host:     "0.0.0.0",
		Port:     port,
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}, nil
}

// Dev configures the static-asset dev server.
type Dev struct {
	Root     string        `yaml:"root"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Watch    []string      `yaml:"watch"`
	Debounce time.Duration `yaml:"debounce"`
	LogLevel string        `yaml:"log_level"`
}

// DefaultDev returns the dev server defaults: the current directory served on
// 127.0.0.1:5500 with the front end's entry page and scripts watched.
func DefaultDev() Dev {
	return Dev{
		Root: ".",
		Host: "127.0.0.1",
		Port: 5500,
		Watch: []string{
			"index.html",
			"editor.js",
			"chat-engine.js",
			"defaults.js",
			"fetch-models.js",
		},
		Debounce: 100 * time.Millisecond,
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

func (d Dev) Addr() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(d.Port))
}

// LoadDev returns DefaultDev overlaid with the YAML file at path.
// An empty path yields the defaults.
func LoadDev(path string) (Dev, error) {
	cfg := DefaultDev()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Dev{}, fmt.Errorf("failed to read dev config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Dev{}, fmt.Errorf("failed to parse dev config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Dev{}, err
	}
	return cfg, nil
}

func (d Dev) Validate() error {
	if d.Port <= 0 || d.Port > 65535 {
		return fmt.Errorf("dev server port out of range: %d", d.Port)
	}
	if len(d.Watch) == 0 {
		return fmt.Errorf("dev server watches no files")
	}
	if d.Debounce < 0 {
		return fmt.Errorf("negative debounce: %s", d.Debounce)
	}
	return nil
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return i, nil
}
