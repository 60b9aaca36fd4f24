package tree

import (
	"errors"
	"fmt"
)

var (
	// ErrTooDeep is returned when a pass descends past Options.MaxDepth.
	ErrTooDeep = errors.New("tree too deep")
	// ErrTooManyNodes is returned when a pass visits more than Options.MaxNodes.
	ErrTooManyNodes = errors.New("too many nodes")
	// ErrNodeAccess wraps a failure raised by a node accessor.
	ErrNodeAccess = errors.New("node access failed")
)

// TraversalError reports an aborted pass.
type TraversalError struct {
	Depth   int
	Visited int
	Err     error
}

func (e *TraversalError) Error() string {
	return fmt.Sprintf("traversal aborted at depth %d after %d nodes: %v", e.Depth, e.Visited, e.Err)
}

func (e *TraversalError) Unwrap() error { return e.Err }

// IsExhaustion reports whether err is a resource-exhaustion failure: the
// tree exceeded the depth or node budget of the pass.
func IsExhaustion(err error) bool {
	return errors.Is(err, ErrTooDeep) || errors.Is(err, ErrTooManyNodes)
}
