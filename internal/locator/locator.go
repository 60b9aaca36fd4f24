// Package locator finds the skip control in a live UI tree.
package locator

import (
	"regexp"

	"github.com/rs/zerolog"

	"github.com/mj1618/skipad/internal/model"
	"github.com/mj1618/skipad/internal/tree"
)

// Source names the strategy that produced a Result.
type Source string

const (
	SourcePattern Source = "pattern"
	SourceText    Source = "text"
)

// PatternSource supplies the learned patterns of an application.
type PatternSource interface {
	Query(appID string) []model.Pattern
}

// Options configures a Locator.
type Options struct {
	Patterns PatternSource
	// Vocabulary overrides the text fallback matcher.
	Vocabulary *regexp.Regexp
	// FallbackOnPatternMiss runs the text fallback when an application has
	// patterns but none of them matched.
	FallbackOnPatternMiss bool
	Walk                  tree.Options
	Logger                zerolog.Logger
}

// Locator searches a tree for a skip control.
type Locator struct {
	patterns PatternSource
	vocab    *regexp.Regexp
	fallback bool
	walk     tree.Options
	log      zerolog.Logger
}

// New creates a Locator.
func New(opts Options) *Locator {
	l := &Locator{
		patterns: opts.Patterns,
		vocab:    opts.Vocabulary,
		fallback: opts.FallbackOnPatternMiss,
		walk:     opts.Walk,
		log:      opts.Logger,
	}
	if l.vocab == nil {
		l.vocab = defaultMatcher
	}
	return l
}

// Result is a located control. Node is borrowed from the current tree and
// is valid only until Release is called.
type Result struct {
	Node   tree.Node
	Point  model.Point
	Bounds model.Rect
	Source Source

	root tree.Node
}

// Release frees the located node's host handle.
func (r *Result) Release() {
	if r.Node != nil && r.Node != r.root {
		tree.Release(r.Node)
	}
	r.Node = nil
}

// Locate searches root for the skip control of appID. Learned patterns are
// tried first; when the application has none, node text is matched against
// the vocabulary. Failures are reported as not found, except resource
// exhaustion, which is returned so the caller can stop monitoring.
func (l *Locator) Locate(root tree.Node, appID string) (res Result, found bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			res.Release()
			l.log.Error().Interface("panic", r).Str("app", appID).Msg("locate failed")
			res, found, err = Result{}, false, nil
		}
	}()
	if root == nil {
		return Result{}, false, nil
	}

	var patterns []model.Pattern
	if l.patterns != nil {
		patterns = l.patterns.Query(appID)
	}
	if len(patterns) > 0 {
		res, found, err = l.find(root, SourcePattern, l.matchPatterns(patterns))
		if err != nil || found || !l.fallback {
			return res, found, err
		}
		l.log.Debug().Str("app", appID).Int("patterns", len(patterns)).Msg("no pattern matched, trying text")
	}
	return l.find(root, SourceText, l.matchText)
}

type matchFunc func(n tree.Node, depth int) bool

func (l *Locator) find(root tree.Node, source Source, match matchFunc) (Result, bool, error) {
	var bounds model.Rect
	n, err := tree.Walk(root, func(n tree.Node, depth int) bool {
		if !match(n, depth) {
			return false
		}
		bounds = n.Bounds()
		return true
	}, l.walk)
	if err != nil {
		if tree.IsExhaustion(err) {
			return Result{}, false, err
		}
		l.log.Warn().Err(err).Str("source", string(source)).Msg("traversal failed, treating as not found")
		return Result{}, false, nil
	}
	if n == nil {
		return Result{}, false, nil
	}
	return Result{
		Node:   n,
		Point:  bounds.Center(),
		Bounds: bounds,
		Source: source,
		root:   root,
	}, true, nil
}

func (l *Locator) matchPatterns(patterns []model.Pattern) matchFunc {
	return func(n tree.Node, depth int) bool {
		el := tree.Describe(n, depth)
		for _, p := range patterns {
			if p.Matches(el) {
				return true
			}
		}
		return false
	}
}

func (l *Locator) matchText(n tree.Node, _ int) bool {
	text, _ := n.Text()
	return l.vocab.MatchString(text)
}
