package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"cwsmcp/internal/auth"
	"cwsmcp/internal/config"
	"cwsmcp/internal/logging"
	"cwsmcp/internal/mcpserver"
	"cwsmcp/internal/modules"
	"cwsmcp/internal/modules/dashboard"
	webstoremod "cwsmcp/internal/modules/webstore"
	"cwsmcp/internal/webstore"
)

// version is set at build time via -ldflags.
var version = "0.1.0"

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "cws-mcp",
		Short:   "Chrome Web Store MCP server",
		Long:    "An MCP stdio server exposing tools to upload, publish and manage a Chrome Web Store extension listing.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
	root.AddCommand(toolsCmd())
	return root
}

// setup loads the environment, wires the modules and returns the config.
func setup() *config.Config {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.New()

	tokens := auth.NewTokenSource(auth.Credentials{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		RefreshToken: cfg.RefreshToken,
	})
	client := webstore.NewClient(tokens)

	modules.RegisterModule(webstoremod.New(cfg, client))
	modules.RegisterModule(dashboard.New(cfg))

	return cfg
}

// serve runs the stdio MCP server. Only a transport failure here may
// terminate the process; every tool-level failure is answered in-band.
func serve(ctx context.Context) error {
	cfg := setup()

	logger := logging.NewLogger(cfg.LogLevel, cfg.LogFormat)
	defer func() { _ = logger.Sync() }()
	modules.SetLogger(logger)

	logger.Info("starting MCP server on stdio",
		zap.String("server", mcpserver.ServerName),
		zap.String("version", version))

	server := mcpserver.New(version)
	if err := mcpserver.Serve(ctx, server); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}

// toolsCmd prints the registered tool schemas as JSON, for client
// configuration and debugging.
func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "Print the registered tool schemas as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			setup()
			out, err := json.MarshalIndent(modules.AllTools(), "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}
