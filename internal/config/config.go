// Package config loads the skipad configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/mj1618/skipad/internal/locator"
	"github.com/mj1618/skipad/internal/tree"
)

// FileName is the default config file name inside the data directory.
const FileName = "config.yaml"

// Config holds application configuration.
type Config struct {
	// Device is the adb serial; empty selects the only connected device.
	Device  string `yaml:"device,omitempty"`
	ADBPath string `yaml:"adb_path,omitempty"`
	// DataDir holds the pattern document and whitelist database.
	DataDir      string `yaml:"data_dir,omitempty"`
	PatternsFile string `yaml:"patterns_file,omitempty"`
	WhitelistDB  string `yaml:"whitelist_db,omitempty"`

	Monitor MonitorConfig `yaml:"monitor"`
	Locator LocatorConfig `yaml:"locator"`
	Gesture GestureConfig `yaml:"gesture"`
	Poll    PollConfig    `yaml:"poll"`
	Log     LogConfig     `yaml:"log"`
}

// MonitorConfig sets the launch window.
type MonitorConfig struct {
	IntervalMS int `yaml:"interval_ms,omitempty"`
	WindowMS   int `yaml:"window_ms,omitempty"`
}

// LocatorConfig sets the skip-control search.
type LocatorConfig struct {
	Vocabulary            []string `yaml:"vocabulary,omitempty"`
	FallbackOnPatternMiss bool     `yaml:"fallback_on_pattern_miss,omitempty"`
	MaxDepth              int      `yaml:"max_depth,omitempty"`
	MaxNodes              int      `yaml:"max_nodes,omitempty"`
}

// GestureConfig sets the tap gesture.
type GestureConfig struct {
	DurationMS          int  `yaml:"duration_ms,omitempty"`
	AwaitCompletion     bool `yaml:"await_completion,omitempty"`
	CompletionTimeoutMS int  `yaml:"completion_timeout_ms,omitempty"`
}

// PollConfig sets how the adb backend samples the device.
type PollConfig struct {
	IntervalMS       int `yaml:"interval_ms,omitempty"`
	CacheTTLMS       int `yaml:"cache_ttl_ms,omitempty"`
	CommandTimeoutMS int `yaml:"command_timeout_ms,omitempty"`
}

// LogConfig sets logging.
type LogConfig struct {
	Level string `yaml:"level,omitempty"`
	File  string `yaml:"file,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		ADBPath: "adb",
		DataDir: DefaultDataDir(),
		Monitor: MonitorConfig{IntervalMS: 200, WindowMS: 5000},
		Locator: LocatorConfig{
			Vocabulary: append([]string(nil), locator.DefaultVocabulary...),
			MaxDepth:   tree.DefaultMaxDepth,
			MaxNodes:   tree.DefaultMaxNodes,
		},
		Gesture: GestureConfig{DurationMS: 100, CompletionTimeoutMS: 1000},
		Poll:    PollConfig{IntervalMS: 250, CacheTTLMS: 150, CommandTimeoutMS: 10000},
		Log:     LogConfig{Level: "info"},
	}
}

// DefaultDataDir returns ~/.skipad, or .skipad when the home directory is
// unknown.
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".skipad"
	}
	return filepath.Join(home, ".skipad")
}

// Load reads the YAML file at path over the defaults. A missing file yields
// the defaults.
func Load(path string) (*Config, error) {
	raw, err := loadFileRaw(path)
	if err != nil {
		return nil, err
	}
	return Merge(DefaultConfig(), raw), nil
}

// loadFileRaw returns the zero config when the file doesn't exist.
func loadFileRaw(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, err
	}

	cfg := &Config{}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, nil
}

// Merge combines base and overlay. Overlay scalars win when non-zero,
// booleans when true, and lists replace when non-empty.
func Merge(base, overlay *Config) *Config {
	r := *base
	r.Locator.Vocabulary = append([]string(nil), base.Locator.Vocabulary...)

	mergeString(&r.Device, overlay.Device)
	mergeString(&r.ADBPath, overlay.ADBPath)
	mergeString(&r.DataDir, overlay.DataDir)
	mergeString(&r.PatternsFile, overlay.PatternsFile)
	mergeString(&r.WhitelistDB, overlay.WhitelistDB)

	mergeInt(&r.Monitor.IntervalMS, overlay.Monitor.IntervalMS)
	mergeInt(&r.Monitor.WindowMS, overlay.Monitor.WindowMS)

	if len(overlay.Locator.Vocabulary) > 0 {
		r.Locator.Vocabulary = append([]string(nil), overlay.Locator.Vocabulary...)
	}
	r.Locator.FallbackOnPatternMiss = base.Locator.FallbackOnPatternMiss || overlay.Locator.FallbackOnPatternMiss
	mergeInt(&r.Locator.MaxDepth, overlay.Locator.MaxDepth)
	mergeInt(&r.Locator.MaxNodes, overlay.Locator.MaxNodes)

	mergeInt(&r.Gesture.DurationMS, overlay.Gesture.DurationMS)
	r.Gesture.AwaitCompletion = base.Gesture.AwaitCompletion || overlay.Gesture.AwaitCompletion
	mergeInt(&r.Gesture.CompletionTimeoutMS, overlay.Gesture.CompletionTimeoutMS)

	mergeInt(&r.Poll.IntervalMS, overlay.Poll.IntervalMS)
	mergeInt(&r.Poll.CacheTTLMS, overlay.Poll.CacheTTLMS)
	mergeInt(&r.Poll.CommandTimeoutMS, overlay.Poll.CommandTimeoutMS)

	mergeString(&r.Log.Level, overlay.Log.Level)
	mergeString(&r.Log.File, overlay.Log.File)
	return &r
}

func mergeString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func mergeInt(dst *int, v int) {
	if v != 0 {
		*dst = v
	}
}

// PatternsPath returns the pattern document location.
func (c *Config) PatternsPath() string {
	if c.PatternsFile != "" {
		return c.PatternsFile
	}
	return filepath.Join(c.DataDir, "nodes.json")
}

// WhitelistPath returns the whitelist database location.
func (c *Config) WhitelistPath() string {
	if c.WhitelistDB != "" {
		return c.WhitelistDB
	}
	return filepath.Join(c.DataDir, "whitelist.db")
}

func ms(v int) time.Duration { return time.Duration(v) * time.Millisecond }

// Interval is the minimum spacing between locate attempts.
func (m MonitorConfig) Interval() time.Duration { return ms(m.IntervalMS) }

// Window is how long monitoring lasts after a launch.
func (m MonitorConfig) Window() time.Duration { return ms(m.WindowMS) }

// Duration is the tap stroke length.
func (g GestureConfig) Duration() time.Duration { return ms(g.DurationMS) }

// CompletionTimeout bounds the wait for a completed callback.
func (g GestureConfig) CompletionTimeout() time.Duration { return ms(g.CompletionTimeoutMS) }

// Interval is the minimum spacing between device samples.
func (p PollConfig) Interval() time.Duration { return ms(p.IntervalMS) }

// CacheTTL is how long a tree dump is reused.
func (p PollConfig) CacheTTL() time.Duration { return ms(p.CacheTTLMS) }

// CommandTimeout bounds a single adb invocation.
func (p PollConfig) CommandTimeout() time.Duration { return ms(p.CommandTimeoutMS) }

// Walk returns the traversal limits.
func (l LocatorConfig) Walk() tree.Options {
	return tree.Options{MaxDepth: l.MaxDepth, MaxNodes: l.MaxNodes}
}
