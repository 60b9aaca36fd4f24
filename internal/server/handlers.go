package server

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"gopkg.in/yaml.v3"

	"github.com/mj1618/skipad/internal/model"
	"github.com/mj1618/skipad/internal/output"
	"github.com/mj1618/skipad/internal/platform"
)

// resultToText serializes a tool result to YAML for the MCP response.
func resultToText(v interface{}) (*mcp.CallToolResult, error) {
	b, err := yaml.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (s *Server) handleSnapshot(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	clickable := boolParam(params, "clickable", false)
	text := stringParam(params, "text", "")
	bboxStr := stringParam(params, "bbox", "")

	var bbox *model.Rect
	if bboxStr != "" {
		var err error
		if bbox, err = platform.ParseBBox(bboxStr); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}
	if s.screen == nil {
		return mcp.NewToolResultError("no device screen available"), nil
	}

	s.screenMu.Lock()
	snap, err := platform.TakeSnapshot(ctx, s.screen, s.walk, s.now())
	s.screenMu.Unlock()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	s.cache.Put(snap)
	s.log.Debug().Str("snapshot", snap.ID).Str("app", snap.App).Int("elements", len(snap.Elements)).Msg("snapshot cached")

	return resultToText(output.SnapshotResult{
		SnapshotID: snap.ID,
		App:        snap.App,
		TS:         snap.TakenAt.Unix(),
		Elements:   model.FilterFlat(snap.Elements, clickable, bbox, text),
	})
}

func (s *Server) handleLocate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	tap := boolParam(params, "tap", false)

	if s.screen == nil || s.locator == nil {
		return mcp.NewToolResultError("no device screen available"), nil
	}

	s.screenMu.Lock()
	defer s.screenMu.Unlock()

	m, err := s.locator.LocateWindow(ctx, s.screen)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	res := output.LocateResult{App: m.App, Found: m.Found}
	if !m.Found {
		return resultToText(res)
	}
	res.Source = string(m.Source)
	res.Bounds = &m.Bounds
	res.Point = &m.Point
	if tap {
		if s.dispatcher == nil {
			return mcp.NewToolResultError("no gesture injector available"), nil
		}
		accepted := s.dispatcher.Dispatch(ctx, m.Point)
		res.Tapped = &accepted
	}
	return resultToText(res)
}

func (s *Server) handlePatterns(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	app := stringParam(params, "app", "")

	if s.patterns == nil {
		return mcp.NewToolResultError("pattern store not available"), nil
	}
	all := s.patterns.All()
	if app != "" {
		all = map[string][]model.Pattern{app: s.patterns.Query(app)}
	}
	return resultToText(output.NewPatternsResult(all))
}

func (s *Server) handleCapture(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	snapshotID := stringParam(params, "snapshot_id", "")
	id := intParam(params, "id", 0)
	keepText := boolParam(params, "keep_text", false)

	if snapshotID == "" || id <= 0 {
		return mcp.NewToolResultError("snapshot_id and id are required"), nil
	}
	if s.patterns == nil {
		return mcp.NewToolResultError("pattern store not available"), nil
	}
	snap, ok := s.cache.Get(snapshotID)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("snapshot %s not found or expired; take a new snapshot", snapshotID)), nil
	}

	p, err := s.patterns.Capture(snap, id, keepText)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultToText(output.CaptureResult{
		App:        p.AppID,
		SnapshotID: snap.ID,
		ID:         id,
		Pattern:    output.NewPatternEntry(p),
	})
}

func (s *Server) handleWhitelist(_ context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	params := request.GetArguments()
	action := stringParam(params, "action", "list")
	app := stringParam(params, "app", "")

	if s.whitelist == nil {
		return mcp.NewToolResultError("whitelist not available"), nil
	}

	var (
		res output.WhitelistResult
		err error
	)
	switch action {
	case "list":
		res.Apps = s.whitelist.List()
	case "add", "remove":
		if app == "" {
			return mcp.NewToolResultError("app is required"), nil
		}
		var changed bool
		if action == "add" {
			changed, err = s.whitelist.Add(app)
		} else {
			changed, err = s.whitelist.Remove(app)
		}
		res.App, res.Changed = app, &changed
	case "clear":
		var n int
		n, err = s.whitelist.Clear()
		res.Cleared = &n
	default:
		return mcp.NewToolResultError(fmt.Sprintf("unknown action: %s (use list, add, remove or clear)", action)), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return resultToText(res)
}
