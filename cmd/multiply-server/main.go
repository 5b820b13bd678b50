package main

import (
	"fmt"
	"os"

	"github.com/joshua-zingale/mcp-demo-servers/internal/logging"
	"github.com/joshua-zingale/mcp-demo-servers/mcp-demo/config"
	"github.com/joshua-zingale/mcp-demo-servers/mcp-demo/server"
	"github.com/joshua-zingale/mcp-demo-servers/mcp-demo/tools"
	"github.com/spf13/cobra"
)

func main() {
	var port int

	rootCmd := &cobra.Command{
		Use:           "multiply-server",
		Short:         "Serve the sse_multiply_numbers MCP tool over HTTP+SSE",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadServer(config.MultiplyServerPort)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}

			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			mcpServer, err := tools.NewMultiplyServer(logger)
			if err != nil {
				return err
			}
			mux := server.NewMcpMux(mcpServer, &server.Options{
				Transport: server.SSE,
				Logger:    logger,
			})

			logger.Info(fmt.Sprintf("Multiply Service - MCP endpoint: http://localhost:%d%s", cfg.Port, server.SSE.DefaultPath()))
			return server.Serve(cfg.Addr(), mux, logger)
		},
	}
	rootCmd.Flags().IntVar(&port, "port", config.MultiplyServerPort, "port to listen on (overrides $PORT)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
