package output

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/mj1618/skipad/internal/model"
)

// captureStdout runs fn with stdout redirected and returns what it wrote.
func captureStdout(t *testing.T, fn func() error) string {
	t.Helper()
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := fn()
	w.Close()
	os.Stdout = old

	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	buf.ReadFrom(r)
	return buf.String()
}

func sampleSnapshot() SnapshotResult {
	return SnapshotResult{
		SnapshotID: "3f1c",
		App:        "com.example.news",
		TS:         1707500000,
		Elements: []model.FlatElement{
			{ID: 1, Class: "android.widget.TextView", Text: model.StringPtr("跳过 <5>"), Bounds: model.Rect{Left: 900, Top: 80, Right: 1040, Bottom: 160}, Clickable: true},
		},
	}
}

func TestPrintJSON_Compact(t *testing.T) {
	output := captureStdout(t, func() error { return PrintJSON(sampleSnapshot()) })

	// Compact output should be a single line (plus newline from Encode)
	if bytes.Count([]byte(output), []byte("\n")) > 1 {
		t.Errorf("compact output should be single line, got:\n%s", output)
	}
	if !bytes.Contains([]byte(output), []byte("跳过 <5>")) {
		t.Errorf("HTML characters should not be escaped: %s", output)
	}

	var decoded SnapshotResult
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.App != "com.example.news" {
		t.Errorf("app: got %q, want %q", decoded.App, "com.example.news")
	}
	if len(decoded.Elements) != 1 || decoded.Elements[0].Bounds.Right != 1040 {
		t.Errorf("elements: got %+v", decoded.Elements)
	}
}

func TestPrintJSON_Pretty(t *testing.T) {
	output := captureStdout(t, func() error { return PrintPrettyJSON(sampleSnapshot()) })

	// Pretty output should have multiple lines
	if bytes.Count([]byte(output), []byte("\n")) <= 1 {
		t.Errorf("pretty output should be multi-line, got:\n%s", output)
	}
	var decoded SnapshotResult
	if err := json.Unmarshal([]byte(output), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
}

func TestLocateResult_OmitEmpty(t *testing.T) {
	data, err := json.Marshal(LocateResult{App: "com.a"})
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]interface{}
	if err := json.Unmarshal(data, &m); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"source", "bounds", "point", "tapped"} {
		if _, ok := m[key]; ok {
			t.Errorf("empty %s should be omitted", key)
		}
	}
	if found, ok := m["found"]; !ok || found != false {
		t.Error("found should always be present")
	}
}
