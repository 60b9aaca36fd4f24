package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/mj1618/skipad/internal/logging"
	"github.com/mj1618/skipad/internal/server"
	"github.com/mj1618/skipad/internal/version"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start an MCP server exposing skipad tools",
	Long: `Start a Model Context Protocol (MCP) server that exposes snapshot, locate,
patterns, capture and whitelist as tools, so an agent can teach skipad the
skip controls of new apps.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  skipad serve
  skipad serve --transport streamable-http --port 8080
  skipad serve --snapshot-ttl 600`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
	serveCmd.Flags().Int("snapshot-ttl", 600, "Seconds a snapshot stays available for capture")
}

func runServe(cmd *cobra.Command, args []string) error {
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")
	ttlSec, _ := cmd.Flags().GetInt("snapshot-ttl")

	rt, err := runtimeFromFlags(cmd, runtimeOptions{device: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	srv := server.New(server.Options{
		Version:     version.Version,
		Screen:      rt.provider.Screen,
		Locator:     rt.locator,
		Dispatcher:  rt.dispatcher,
		Patterns:    rt.patterns,
		Whitelist:   rt.whitelist,
		Walk:        rt.cfg.Locator.Walk(),
		SnapshotTTL: time.Duration(ttlSec) * time.Second,
		Logger:      logging.Module(rt.log, "mcp"),
	})
	return srv.Serve(server.Config{Transport: transport, Port: port})
}
