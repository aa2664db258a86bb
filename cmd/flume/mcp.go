package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/aretw0/flume/internal/cli"
	"github.com/aretw0/flume/internal/config"
	mcpAdapter "github.com/aretw0/flume/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Exposes the diagram engine over the Model Context Protocol so an
assistant can read diagrams and propose changes. By default it serves
on stdio; pass --port for SSE.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		port, _ := cmd.Flags().GetInt("port")

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logger := cli.NewLogger(cfg)
		manager, closeStore, err := cli.NewManager(cfg, logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := closeStore(); err != nil {
				logger.Warn("store close failed", "err", err)
			}
		}()

		server := mcpAdapter.NewServer(manager, mcpAdapter.WithLogger(logger))

		if port > 0 {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return server.ServeSSE(ctx, port)
		}
		return server.ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().IntP("port", "p", 0, "Serve over SSE on this port instead of stdio")
}
