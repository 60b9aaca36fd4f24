package patterns

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/mj1618/skipad/internal/model"
)

// Sentinel marks an absent text or content description in the document.
const Sentinel = "无"

// TimestampLayout is the format of the timestamp stamped on saved records.
const TimestampLayout = "2006-01-02 15:04:05"

// ErrMalformed is wrapped by every ParseError.
var ErrMalformed = errors.New("malformed pattern document")

// ParseError locates a rejected document or record. App and Index are
// empty/-1 when the document itself is the problem.
type ParseError struct {
	Path  string
	App   string
	Index int
	Err   error
}

func (e *ParseError) Error() string {
	if e.App == "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %s[%d]: %v", e.Path, e.App, e.Index, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// record is the persisted form of a pattern. Field order is the on-disk order.
type record struct {
	ClassName          string `json:"className"`
	Text               string `json:"text"`
	ContentDescription string `json:"contentDescription"`
	Bounds             string `json:"bounds"`
	IsClickable        bool   `json:"isClickable"`
	Depth              int    `json:"depth"`
	Timestamp          string `json:"timestamp"`
}

func newRecord(p model.Pattern, stamp string) record {
	return record{
		ClassName:          p.ClassName,
		Text:               orSentinel(p.Text),
		ContentDescription: orSentinel(p.Description),
		Bounds:             p.Bounds.String(),
		IsClickable:        p.Clickable,
		Depth:              p.Depth,
		Timestamp:          stamp,
	}
}

func orSentinel(s *string) string {
	if s == nil || *s == "" {
		return Sentinel
	}
	return *s
}

// parseDocument decodes the whole document. Any bad record fails the whole
// document.
func parseDocument(path string, data []byte) (map[string][]model.Pattern, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return map[string][]model.Pattern{}, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, &ParseError{Path: path, Index: -1, Err: fmt.Errorf("%w: invalid JSON", ErrMalformed)}
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return nil, &ParseError{Path: path, Index: -1, Err: fmt.Errorf("%w: top level is not an object", ErrMalformed)}
	}

	result := make(map[string][]model.Pattern)
	var perr error
	root.ForEach(func(key, value gjson.Result) bool {
		app := key.String()
		if !value.IsArray() {
			perr = &ParseError{Path: path, App: app, Index: -1, Err: fmt.Errorf("%w: value is not an array", ErrMalformed)}
			return false
		}
		list := make([]model.Pattern, 0, len(value.Array()))
		for i, item := range value.Array() {
			p, err := parseRecord(app, item)
			if err != nil {
				perr = &ParseError{Path: path, App: app, Index: i, Err: err}
				return false
			}
			list = append(list, p)
		}
		result[app] = append(result[app], list...)
		return true
	})
	if perr != nil {
		return nil, perr
	}
	return result, nil
}

func parseRecord(app string, item gjson.Result) (model.Pattern, error) {
	if !item.IsObject() {
		return model.Pattern{}, fmt.Errorf("%w: record is not an object", ErrMalformed)
	}

	class := item.Get("className")
	if class.Type != gjson.String {
		return model.Pattern{}, fmt.Errorf("%w: className must be a string", ErrMalformed)
	}
	boundsField := item.Get("bounds")
	if boundsField.Type != gjson.String {
		return model.Pattern{}, fmt.Errorf("%w: bounds must be a string", ErrMalformed)
	}
	bounds, err := model.ParseRect(boundsField.Str)
	if err != nil {
		return model.Pattern{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	clickable := item.Get("isClickable")
	if clickable.Type != gjson.True && clickable.Type != gjson.False {
		return model.Pattern{}, fmt.Errorf("%w: isClickable must be a boolean", ErrMalformed)
	}
	depth := item.Get("depth")
	if depth.Type != gjson.Number {
		return model.Pattern{}, fmt.Errorf("%w: depth must be a number", ErrMalformed)
	}
	text, err := optionalString(item, "text")
	if err != nil {
		return model.Pattern{}, err
	}
	desc, err := optionalString(item, "contentDescription")
	if err != nil {
		return model.Pattern{}, err
	}

	return model.Pattern{
		AppID:       app,
		ClassName:   class.Str,
		Text:        text,
		Description: desc,
		Bounds:      bounds,
		Clickable:   clickable.Bool(),
		Depth:       int(depth.Int()),
	}, nil
}

// optionalString reads a text field; missing, null and the sentinel all
// mean "absent".
func optionalString(item gjson.Result, field string) (*string, error) {
	v := item.Get(field)
	switch v.Type {
	case gjson.Null:
		return nil, nil
	case gjson.String:
		if v.Str == Sentinel {
			return nil, nil
		}
		s := v.Str
		return &s, nil
	default:
		return nil, fmt.Errorf("%w: %s must be a string", ErrMalformed, field)
	}
}

// appendRecord returns data with rec appended to app's array. Key order and
// every existing value are carried over byte for byte before indenting.
func appendRecord(data []byte, app string, rec record) ([]byte, error) {
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encoding record: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		data = []byte("{}")
	}
	root := gjson.ParseBytes(data)

	var buf bytes.Buffer
	buf.WriteByte('{')
	n := 0
	found := false
	writeKey := func(k string) {
		if n > 0 {
			buf.WriteByte(',')
		}
		n++
		kb, _ := json.Marshal(k)
		buf.Write(kb)
		buf.WriteByte(':')
	}
	root.ForEach(func(key, value gjson.Result) bool {
		writeKey(key.String())
		if key.String() != app || found {
			buf.WriteString(value.Raw)
			return true
		}
		found = true
		buf.WriteByte('[')
		for _, item := range value.Array() {
			buf.WriteString(item.Raw)
			buf.WriteByte(',')
		}
		buf.Write(raw)
		buf.WriteByte(']')
		return true
	})
	if !found {
		writeKey(app)
		buf.WriteByte('[')
		buf.Write(raw)
		buf.WriteByte(']')
	}
	buf.WriteByte('}')

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, fmt.Errorf("formatting document: %w", err)
	}
	out.WriteByte('\n')
	return out.Bytes(), nil
}

// writeFileAtomic replaces path so readers see either the old or the new
// document, never a partial one.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}
