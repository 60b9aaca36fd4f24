package adb

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mj1618/skipad/internal/model"
	"github.com/mj1618/skipad/internal/tree"
)

const dumpFile = "/data/local/tmp/skipad_view.xml"

// treeCache keeps the latest dump for a short TTL so the poller and the
// monitor share one uiautomator run.
type treeCache struct {
	mu        sync.Mutex
	root      *model.Element
	timestamp time.Time
	ttl       time.Duration
	now       func() time.Time
}

func (c *treeCache) get() (*model.Element, bool) {
	if c.ttl == 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.root != nil && c.now().Sub(c.timestamp) < c.ttl {
		return c.root, true
	}
	return nil, false
}

func (c *treeCache) put(root *model.Element) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root = root
	c.timestamp = c.now()
}

// invalidate drops the cached dump.
func (c *treeCache) invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.root = nil
}

// Screen reads the device's current window through uiautomator.
type Screen struct {
	run   Runner
	cache *treeCache
	log   zerolog.Logger
	// dumpMu serializes uiautomator runs; concurrent dumps fail on device.
	dumpMu sync.Mutex
}

// NewScreen creates a Screen. A ttl of 0 disables caching.
func NewScreen(r Runner, ttl time.Duration, logger zerolog.Logger) *Screen {
	return &Screen{
		run:   r,
		cache: &treeCache{ttl: ttl, now: time.Now},
		log:   logger,
	}
}

// Root dumps the current window and returns its root node. Dumped trees
// are plain records, so the returned node needs no release.
func (s *Screen) Root(ctx context.Context) (tree.Node, error) {
	el, err := s.Dump(ctx)
	if err != nil {
		return nil, err
	}
	return tree.FromElement(el), nil
}

// Dump returns the current window as an element tree. The result is shared
// with other callers and must not be modified.
func (s *Screen) Dump(ctx context.Context) (*model.Element, error) {
	if el, ok := s.cache.get(); ok {
		return el, nil
	}
	s.dumpMu.Lock()
	defer s.dumpMu.Unlock()
	if el, ok := s.cache.get(); ok {
		return el, nil
	}

	const maxRetries = 3
	var (
		out string
		err error
	)
	for i := 0; i < maxRetries; i++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if i > 0 {
			_, _ = shell(ctx, s.run, "pkill uiautomator")
		}
		out, err = shell(ctx, s.run, fmt.Sprintf("uiautomator dump %s >/dev/null && cat %s", dumpFile, dumpFile))
		if err == nil && strings.Contains(out, "<?xml") {
			break
		}
		if err == nil {
			err = fmt.Errorf("unexpected dump output: %.80q", out)
		}
		s.log.Debug().Int("retry", i+1).Int("maxRetries", maxRetries).Err(err).Msg("UI dump retry")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dump UI after %d attempts: %w", maxRetries, err)
	}

	el, err := ParseHierarchy(out)
	if err != nil {
		return nil, err
	}
	s.cache.put(el)
	return el, nil
}

// Invalidate forces the next Root or Dump to read the device.
func (s *Screen) Invalidate() { s.cache.invalidate() }

var (
	focusActivityRe = regexp.MustCompile(`mCurrentFocus=Window\{[^}]*\s+(\S+)/\S+\}`)
	focusWindowRe   = regexp.MustCompile(`mCurrentFocus=Window\{[^}]*\s+(\S+)\}`)
)

// parseForegroundPackage extracts the focused package from
// `dumpsys window` output.
func parseForegroundPackage(output string) string {
	if m := focusActivityRe.FindStringSubmatch(output); len(m) >= 2 {
		return m[1]
	}
	// Some windows report only the package, e.g. Window{... com.foo}.
	if m := focusWindowRe.FindStringSubmatch(output); len(m) >= 2 {
		if strings.Contains(m[1], ".") {
			return m[1]
		}
	}
	return ""
}

// Foreground returns the package of the focused window, or "" when the
// focused window belongs to no package (e.g. the status bar).
func (s *Screen) Foreground(ctx context.Context) (string, error) {
	out, err := shell(ctx, s.run, "dumpsys window | grep mCurrentFocus")
	if err != nil {
		// grep exits 1 when nothing matched.
		if strings.TrimSpace(out) == "" {
			return "", nil
		}
		return "", err
	}
	return parseForegroundPackage(out), nil
}
