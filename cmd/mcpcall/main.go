package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/joshua-zingale/mcp-demo-servers/internal/logging"
	"github.com/joshua-zingale/mcp-demo-servers/mcp-demo/api"
	"github.com/joshua-zingale/mcp-demo-servers/mcp-demo/host"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type rootOptions struct {
	configPath string
	connect    []string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "mcpcall",
		Short: "List and call tools on MCP servers over HTTP",
		Long: `mcpcall connects to one or more MCP servers and talks to them.

Servers are given one per line, either in a file (--config) or inline (--connect):

  >[add] http://localhost:8001/mcp        streamable HTTP
  ~[multiply] http://localhost:8002/sse   HTTP+SSE`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "file listing MCP servers")
	rootCmd.PersistentFlags().StringArrayVar(&opts.connect, "connect", nil, "server line, e.g. '>[add] http://localhost:8001/mcp' (repeatable)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "servers",
			Short: "List connected servers",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withHost(cmd, opts, func(h *host.McpHost) error {
					return printJSON(cmd.OutOrStdout(), h.Servers())
				})
			},
		},
		&cobra.Command{
			Use:   "tools <server>",
			Short: "List the tools a server offers",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return withHost(cmd, opts, func(h *host.McpHost) error {
					tools, err := h.ListToolsOnServer(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					return printJSON(cmd.OutOrStdout(), api.ToolList{ServerName: args[0], Tools: tools})
				})
			},
		},
		&cobra.Command{
			Use:   "call <server> <tool> [key=value ...]",
			Short: "Call a tool; numeric values are sent as numbers",
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				toolArgs, err := parseToolArgs(args[2:])
				if err != nil {
					return err
				}
				return withHost(cmd, opts, func(h *host.McpHost) error {
					call, err := h.CallTool(cmd.Context(), args[0], args[1], toolArgs)
					if err != nil {
						return err
					}
					if err := printJSON(cmd.OutOrStdout(), call); err != nil {
						return err
					}
					if call.Error != "" {
						return fmt.Errorf("tool %s failed: %s", args[1], call.Error)
					}
					return nil
				})
			},
		},
	)
	return rootCmd
}

// withHost connects to every configured server, runs fn and closes the sessions.
func withHost(cmd *cobra.Command, opts *rootOptions, fn func(*host.McpHost) error) error {
	logger, err := logging.New(opts.logLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	lines, err := serverLines(opts)
	if err != nil {
		return err
	}
	if strings.TrimSpace(lines) == "" {
		return fmt.Errorf("no servers given; use --config or --connect")
	}

	h, err := host.NewMcpHost(&host.McpHostOptions{Logger: logger})
	if err != nil {
		return err
	}
	defer h.Close()

	if err := h.AddSessionsFromConfig(cmd.Context(), strings.NewReader(lines), nil); err != nil {
		return err
	}
	return fn(h)
}

func serverLines(opts *rootOptions) (string, error) {
	var b strings.Builder
	if opts.configPath != "" {
		data, err := os.ReadFile(opts.configPath)
		if err != nil {
			return "", fmt.Errorf("failed to read server config: %w", err)
		}
		b.Write(data)
		b.WriteByte('\n')
	}
	for _, line := range opts.connect {
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String(), nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
