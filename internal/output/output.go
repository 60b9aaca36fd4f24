package output

import (
	"fmt"

	"github.com/mj1618/skipad/internal/model"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// SnapshotResult is the top-level output of the `snapshot` command.
type SnapshotResult struct {
	SnapshotID string              `yaml:"snapshot_id,omitempty" json:"snapshot_id,omitempty"`
	App        string              `yaml:"app,omitempty"         json:"app,omitempty"`
	TS         int64               `yaml:"ts"                    json:"ts"`
	Elements   []model.FlatElement `yaml:"elements"              json:"elements"`
}

// LocateResult is the output of the `locate` command.
type LocateResult struct {
	App    string       `yaml:"app"              json:"app"`
	Found  bool         `yaml:"found"            json:"found"`
	Source string       `yaml:"source,omitempty" json:"source,omitempty"`
	Bounds *model.Rect  `yaml:"bounds,omitempty" json:"bounds,omitempty"`
	Point  *model.Point `yaml:"point,omitempty"  json:"point,omitempty"`
	Tapped *bool        `yaml:"tapped,omitempty" json:"tapped,omitempty"`
}

// PatternEntry is one stored pattern in `patterns list` output.
type PatternEntry struct {
	Class       string `yaml:"class"          json:"class"`
	Text        string `yaml:"text,omitempty" json:"text,omitempty"`
	Description string `yaml:"desc,omitempty" json:"desc,omitempty"`
	Bounds      string `yaml:"bounds"         json:"bounds"`
	Clickable   bool   `yaml:"clickable"      json:"clickable"`
	Depth       int    `yaml:"depth"          json:"depth"`
}

// PatternsResult groups stored patterns by application.
type PatternsResult struct {
	Apps map[string][]PatternEntry `yaml:"apps" json:"apps"`
}

// NewPatternsResult converts store contents for printing.
func NewPatternsResult(all map[string][]model.Pattern) PatternsResult {
	res := PatternsResult{Apps: make(map[string][]PatternEntry, len(all))}
	for app, list := range all {
		entries := make([]PatternEntry, 0, len(list))
		for _, p := range list {
			entries = append(entries, NewPatternEntry(p))
		}
		res.Apps[app] = entries
	}
	return res
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		if PrettyOutput {
			return PrintPrettyJSON(v)
		}
		return PrintJSON(v)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// NewPatternEntry converts one pattern for printing.
func NewPatternEntry(p model.Pattern) PatternEntry {
	return PatternEntry{
		Class:       p.ClassName,
		Text:        model.Deref(p.Text),
		Description: model.Deref(p.Description),
		Bounds:      p.Bounds.String(),
		Clickable:   p.Clickable,
		Depth:       p.Depth,
	}
}

// CaptureResult is the output of `patterns capture`.
type CaptureResult struct {
	App        string       `yaml:"app"                   json:"app"`
	SnapshotID string       `yaml:"snapshot_id,omitempty" json:"snapshot_id,omitempty"`
	ID         int          `yaml:"id"                    json:"id"`
	Pattern    PatternEntry `yaml:"pattern"               json:"pattern"`
}

// WhitelistResult is the output of the `whitelist` commands. Changed is set
// by add and remove, Cleared by clear.
type WhitelistResult struct {
	Apps    []string `yaml:"apps,omitempty"    json:"apps,omitempty"`
	App     string   `yaml:"app,omitempty"     json:"app,omitempty"`
	Changed *bool    `yaml:"changed,omitempty" json:"changed,omitempty"`
	Cleared *int     `yaml:"cleared,omitempty" json:"cleared,omitempty"`
}

// TapResult is the output of the `tap` command.
type TapResult struct {
	Point    model.Point `yaml:"point"    json:"point"`
	Accepted bool        `yaml:"accepted" json:"accepted"`
}
