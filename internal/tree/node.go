// Package tree walks live UI trees supplied by a host backend.
package tree

import "github.com/mj1618/skipad/internal/model"

// Node is a handle to one element of a live UI tree. Accessors may be
// backed by host calls and can fail by panicking; Walk recovers those.
type Node interface {
	ChildCount() int
	// Child returns the i-th child, or nil when the host cannot supply it.
	Child(i int) Node
	AppID() string
	ClassName() string
	// Text returns the node's text and whether the host reported one.
	Text() (string, bool)
	// Description returns the content description and whether one exists.
	Description() (string, bool)
	ResourceID() string
	Bounds() model.Rect
	Clickable() bool
}

// Releaser is implemented by nodes that hold host resources.
type Releaser interface {
	Release()
}

// Release frees n if it holds host resources. Nil is ignored.
func Release(n Node) {
	if n == nil {
		return
	}
	if r, ok := n.(Releaser); ok {
		r.Release()
	}
}

// Describe copies the node's attributes into a plain record.
func Describe(n Node, depth int) model.FlatElement {
	el := model.FlatElement{
		App:        n.AppID(),
		Class:      n.ClassName(),
		ResourceID: n.ResourceID(),
		Bounds:     n.Bounds(),
		Clickable:  n.Clickable(),
		Depth:      depth,
	}
	if t, ok := n.Text(); ok {
		el.Text = &t
	}
	if d, ok := n.Description(); ok {
		el.Description = &d
	}
	return el
}
