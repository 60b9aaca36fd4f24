// Package server exposes skipad operations as MCP tools for training
// clients: taking snapshots, locating skip controls, capturing patterns and
// managing the whitelist.
package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"

	"github.com/mj1618/skipad/internal/gesture"
	"github.com/mj1618/skipad/internal/locator"
	"github.com/mj1618/skipad/internal/patterns"
	"github.com/mj1618/skipad/internal/platform"
	"github.com/mj1618/skipad/internal/tree"
	"github.com/mj1618/skipad/internal/whitelist"
)

// Config holds MCP server configuration.
type Config struct {
	Transport string
	Port      int
}

// Options holds the services the tools operate on.
type Options struct {
	Name, Version string
	Screen        platform.Screen
	Locator       *locator.Locator
	Dispatcher    *gesture.Dispatcher
	Patterns      *patterns.Store
	Whitelist     *whitelist.Store
	Walk          tree.Options
	// SnapshotTTL is how long snapshots stay available for capture.
	SnapshotTTL   time.Duration
	Logger        zerolog.Logger
	Now           func() time.Time
}

// Server wraps the MCP server with the device screen and stores.
type Server struct {
	screen     platform.Screen
	locator    *locator.Locator
	dispatcher *gesture.Dispatcher
	patterns   *patterns.Store
	whitelist  *whitelist.Store
	walk       tree.Options
	log        zerolog.Logger
	now        func() time.Time

	cache *SnapshotCache
	// screenMu serializes device reads and taps.
	screenMu sync.Mutex
	mcp      *mcpserver.MCPServer
}

// New creates and configures an MCP server with all skipad tools.
func New(opts Options) *Server {
	s := &Server{
		screen:     opts.Screen,
		locator:    opts.Locator,
		dispatcher: opts.Dispatcher,
		patterns:   opts.Patterns,
		whitelist:  opts.Whitelist,
		walk:       opts.Walk,
		log:        opts.Logger,
		now:        opts.Now,
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.cache = NewSnapshotCache(opts.SnapshotTTL, s.now)

	name, version := opts.Name, opts.Version
	if name == "" {
		name = "skipad"
	}
	if version == "" {
		version = "dev"
	}
	s.mcp = mcpserver.NewMCPServer(name, version, mcpserver.WithToolCapabilities(true))
	s.registerTools()
	return s
}

// MCP returns the underlying MCP server.
func (s *Server) MCP() *mcpserver.MCPServer { return s.mcp }

// Serve starts the MCP server with the configured transport.
func (s *Server) Serve(cfg Config) error {
	switch cfg.Transport {
	case "", "stdio":
		return mcpserver.ServeStdio(s.mcp)
	case "streamable-http":
		httpServer := mcpserver.NewStreamableHTTPServer(s.mcp)
		s.log.Info().Int("port", cfg.Port).Msg("serving MCP over streamable-http")
		return httpServer.Start(fmt.Sprintf(":%d", cfg.Port))
	default:
		return fmt.Errorf("unsupported transport: %s (use stdio or streamable-http)", cfg.Transport)
	}
}

func (s *Server) registerTools() {
	// snapshot
	s.mcp.AddTool(
		mcp.NewTool("snapshot",
			mcp.WithDescription("Flatten the current window of the device into numbered nodes with class, text, bounds and depth. The snapshot_id can be passed to capture."),
			mcp.WithBoolean("clickable", mcp.Description("Only return clickable nodes")),
			mcp.WithString("text", mcp.Description("Filter nodes by text or description substring")),
			mcp.WithString("bbox", mcp.Description("Only return nodes intersecting x,y,width,height")),
		),
		s.handleSnapshot,
	)

	// locate
	s.mcp.AddTool(
		mcp.NewTool("locate",
			mcp.WithDescription("Find the skip control of the current window using learned patterns, then the skip vocabulary"),
			mcp.WithBoolean("tap", mcp.Description("Tap the control when found")),
		),
		s.handleLocate,
	)

	// patterns
	s.mcp.AddTool(
		mcp.NewTool("patterns",
			mcp.WithDescription("List learned skip-control patterns"),
			mcp.WithString("app", mcp.Description("Only list patterns of this application id")),
		),
		s.handlePatterns,
	)

	// capture
	s.mcp.AddTool(
		mcp.NewTool("capture",
			mcp.WithDescription("Save a node of an earlier snapshot as a skip-control pattern for its application"),
			mcp.WithString("snapshot_id", mcp.Description("Snapshot returned by the snapshot tool"), mcp.Required()),
			mcp.WithNumber("id", mcp.Description("Node id within the snapshot"), mcp.Required()),
			mcp.WithBoolean("keep_text", mcp.Description("Match the node text exactly instead of any text")),
		),
		s.handleCapture,
	)

	// whitelist
	s.mcp.AddTool(
		mcp.NewTool("whitelist",
			mcp.WithDescription("Manage applications that are never monitored"),
			mcp.WithString("action", mcp.Description("list, add, remove or clear (default: list)")),
			mcp.WithString("app", mcp.Description("Application id for add and remove")),
		),
		s.handleWhitelist,
	)
}
