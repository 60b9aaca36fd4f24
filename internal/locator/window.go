package locator

import (
	"context"
	"fmt"

	"github.com/mj1618/skipad/internal/model"
	"github.com/mj1618/skipad/internal/tree"
)

// Window is the current window of a device.
type Window interface {
	Root(ctx context.Context) (tree.Node, error)
	Foreground(ctx context.Context) (string, error)
}

// Match is a located control detached from the tree it was found in.
type Match struct {
	App    string
	Found  bool
	Source Source
	Bounds model.Rect
	Point  model.Point
}

// LocateWindow reads the current window of w and locates its skip control.
// Every handle is released before it returns.
func (l *Locator) LocateWindow(ctx context.Context, w Window) (Match, error) {
	root, err := w.Root(ctx)
	if err != nil {
		return Match{}, fmt.Errorf("reading window: %w", err)
	}
	if root == nil {
		return Match{}, nil
	}
	defer tree.Release(root)

	app := root.AppID()
	if app == "" {
		app, _ = w.Foreground(ctx)
	}
	res, found, err := l.Locate(root, app)
	if err != nil {
		return Match{App: app}, err
	}
	defer res.Release()
	if !found {
		return Match{App: app}, nil
	}
	return Match{App: app, Found: true, Source: res.Source, Bounds: res.Bounds, Point: res.Point}, nil
}
