package platform

import (
	"context"

	"github.com/mj1618/skipad/internal/model"
	"github.com/mj1618/skipad/internal/tree"
)

// Screen reads the current window of the device.
type Screen interface {
	// Root returns the root of the current window's UI tree. The caller
	// owns the returned node.
	Root(ctx context.Context) (tree.Node, error)

	// Foreground returns the application id of the focused window.
	Foreground(ctx context.Context) (string, error)
}

// EventSource delivers host notifications until ctx is done, then closes
// the channel.
type EventSource interface {
	Events(ctx context.Context) <-chan model.Event
}
