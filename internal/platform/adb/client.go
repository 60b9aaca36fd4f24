// Package adb drives an Android device through the adb command-line tool.
package adb

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultCommandTimeout bounds a single adb invocation.
const DefaultCommandTimeout = 10 * time.Second

// Runner runs adb commands. Client is the production implementation.
type Runner interface {
	Run(ctx context.Context, args ...string) (string, error)
}

// Client runs adb against one device.
type Client struct {
	path    string
	serial  string
	timeout time.Duration
	log     zerolog.Logger
}

// NewClient creates a client. An empty serial lets adb pick the only
// connected device.
func NewClient(path, serial string, timeout time.Duration, logger zerolog.Logger) *Client {
	if path == "" {
		path = "adb"
	}
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	return &Client{path: path, serial: serial, timeout: timeout, log: logger}
}

// Run executes adb with args and returns its trimmed combined output.
func (c *Client) Run(ctx context.Context, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var full []string
	if c.serial != "" {
		full = append(full, "-s", c.serial)
	}
	full = append(full, args...)

	start := time.Now()
	out, err := exec.CommandContext(ctx, c.path, full...).CombinedOutput()
	res := string(out)
	c.log.Debug().Strs("args", full).Dur("took", time.Since(start)).Err(err).Msg("adb")
	if err != nil {
		if ctx.Err() != nil {
			return res, fmt.Errorf("adb %s: %w", strings.Join(args, " "), ctx.Err())
		}
		return res, fmt.Errorf("adb %s failed: %w, output: %s", strings.Join(args, " "), err, strings.TrimSpace(res))
	}
	return strings.TrimSpace(res), nil
}

// shell runs a command line on the device.
func shell(ctx context.Context, r Runner, cmdline string) (string, error) {
	return r.Run(ctx, "shell", cmdline)
}
