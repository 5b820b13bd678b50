package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joshua-zingale/mcp-demo-servers/internal/logging"
	"github.com/joshua-zingale/mcp-demo-servers/mcp-demo/config"
	"github.com/joshua-zingale/mcp-demo-servers/mcp-demo/livereload"
	"github.com/joshua-zingale/mcp-demo-servers/mcp-demo/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func main() {
	var (
		configPath string
		root       string
		port       int
	)

	rootCmd := &cobra.Command{
		Use:           "devserver",
		Short:         "Serve the chat front end and reload the browser when its files change",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadDev(configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("root") {
				cfg.Root = root
			}
			if cmd.Flags().Changed("port") {
				cfg.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			logger, err := logging.New(cfg.LogLevel)
			if err != nil {
				return err
			}
			defer logger.Sync()

			lr, err := livereload.NewServer(livereload.Options{
				Root:     cfg.Root,
				Watch:    cfg.Watch,
				Debounce: cfg.Debounce,
				Logger:   logger,
			})
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			go func() {
				if err := lr.Run(ctx); err != nil {
					logger.Error("watcher stopped", zap.Error(err))
				}
			}()

			logger.Info(fmt.Sprintf("Serving %s at http://%s", cfg.Root, cfg.Addr()),
				zap.Strings("watch", cfg.Watch))

			errc := make(chan error, 1)
			go func() { errc <- server.Serve(cfg.Addr(), lr.Handler(), logger) }()
			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
				return nil
			}
		},
	}
	rootCmd.Flags().StringVar(&configPath, "config", "", "YAML file overriding the dev server defaults")
	rootCmd.Flags().StringVar(&root, "root", ".", "directory to serve")
	rootCmd.Flags().IntVar(&port, "port", 5500, "port to listen on")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
