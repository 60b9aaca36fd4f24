package output

import (
	"bytes"
	"strings"
	"testing"

	"github.com/mj1618/skipad/internal/model"
	"gopkg.in/yaml.v3"
)

func TestPrintYAML(t *testing.T) {
	output := captureStdout(t, func() error { return PrintYAML(sampleSnapshot()) })

	// YAML output should be multi-line
	if bytes.Count([]byte(output), []byte("\n")) <= 1 {
		t.Errorf("YAML output should be multi-line, got:\n%s", output)
	}

	var decoded SnapshotResult
	if err := yaml.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if decoded.SnapshotID != "3f1c" {
		t.Errorf("snapshot_id: got %q, want %q", decoded.SnapshotID, "3f1c")
	}
	if len(decoded.Elements) != 1 || model.Deref(decoded.Elements[0].Text) != "跳过 <5>" {
		t.Errorf("elements: got %+v", decoded.Elements)
	}
}

func TestPrint_FormatSwitch(t *testing.T) {
	origFormat, origPretty := OutputFormat, PrettyOutput
	defer func() { OutputFormat, PrettyOutput = origFormat, origPretty }()

	OutputFormat = FormatJSON
	out := captureStdout(t, func() error { return Print(LocateResult{App: "com.a"}) })
	if !strings.HasPrefix(out, "{") {
		t.Errorf("expected JSON output, got %q", out)
	}

	OutputFormat = FormatYAML
	out = captureStdout(t, func() error { return Print(LocateResult{App: "com.a"}) })
	if !strings.Contains(out, "app: com.a") {
		t.Errorf("expected YAML output, got %q", out)
	}

	OutputFormat = "xml"
	if err := Print(LocateResult{}); err == nil {
		t.Error("expected error for unsupported format")
	}
}

func TestNewPatternsResult(t *testing.T) {
	res := NewPatternsResult(map[string][]model.Pattern{
		"com.a": {{
			ClassName: "android.widget.TextView",
			Text:      model.StringPtr("跳过"),
			Bounds:    model.Rect{Left: 1, Top: 2, Right: 3, Bottom: 4},
			Clickable: true,
			Depth:     2,
		}},
	})
	entries := res.Apps["com.a"]
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	e := entries[0]
	if e.Bounds != "Rect(1, 2 - 3, 4)" || e.Text != "跳过" || e.Description != "" || !e.Clickable {
		t.Errorf("unexpected entry: %+v", e)
	}
}
