package tree

import (
	"fmt"
	"strings"

	"github.com/mj1618/skipad/internal/model"
)

// Default traversal budgets.
const (
	DefaultMaxDepth = 256
	DefaultMaxNodes = 20000
)

// Options bounds a single pass. Zero values select the defaults.
type Options struct {
	MaxDepth int
	MaxNodes int
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxNodes <= 0 {
		o.MaxNodes = DefaultMaxNodes
	}
	return o
}

// VisitFunc is called for every node in pre-order. Returning true stops the
// walk and makes the node the result.
type VisitFunc func(n Node, depth int) bool

type frame struct {
	node  Node
	depth int
	next  int // next child index to expand
}

// Walk visits root and its descendants depth-first, left to right, each node
// before its children. It returns the first node for which visit returns
// true, or nil. The returned node (when it is not root) is owned by the
// caller and must be released with Release. Every other handle obtained
// during the pass is released before Walk returns. Root is never released.
func Walk(root Node, visit VisitFunc, opts Options) (found Node, err error) {
	if root == nil {
		return nil, nil
	}
	opts = opts.withDefaults()

	stack := []frame{{node: root}}
	visited := 0
	depth := 0

	defer func() {
		if r := recover(); r != nil {
			found = nil
			err = &TraversalError{Depth: depth, Visited: visited, Err: fmt.Errorf("%w: %v", ErrNodeAccess, r)}
		}
		for i := len(stack) - 1; i >= 0; i-- {
			if n := stack[i].node; n != root && n != found {
				Release(n)
			}
		}
	}()

	// Root is visited before the loop starts expanding.
	visited++
	if visit(root, 0) {
		stack = stack[:0]
		return root, nil
	}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		depth = top.depth
		if top.next >= top.node.ChildCount() {
			if top.node != root {
				Release(top.node)
			}
			stack = stack[:len(stack)-1]
			continue
		}
		i := top.next
		top.next++

		child := top.node.Child(i)
		if child == nil {
			continue
		}
		childDepth := top.depth + 1
		depth = childDepth
		if childDepth > opts.MaxDepth {
			Release(child)
			return nil, &TraversalError{Depth: childDepth, Visited: visited, Err: ErrTooDeep}
		}
		visited++
		if visited > opts.MaxNodes {
			Release(child)
			return nil, &TraversalError{Depth: childDepth, Visited: visited, Err: ErrTooManyNodes}
		}

		stack = append(stack, frame{node: child, depth: childDepth})
		if visit(child, childDepth) {
			// found is excluded from the deferred release.
			stack = stack[:len(stack)-1]
			return child, nil
		}
	}
	return nil, nil
}

// Snapshot flattens the tree under root into pre-order records numbered
// from 1, each with its depth and class path.
func Snapshot(root Node, opts Options) ([]model.FlatElement, error) {
	var (
		result []model.FlatElement
		paths  []string
	)
	_, err := Walk(root, func(n Node, depth int) bool {
		el := Describe(n, depth)
		el.ID = len(result) + 1
		paths = append(paths[:depth], model.ShortClass(el.Class))
		el.Path = strings.Join(paths, " > ")
		result = append(result, el)
		return false
	}, opts)
	if err != nil {
		return nil, err
	}
	return result, nil
}
