package adb

import (
	"encoding/xml"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/mj1618/skipad/internal/model"
)

type uiNode struct {
	Text        string   `xml:"text,attr"`
	ResourceID  string   `xml:"resource-id,attr"`
	Class       string   `xml:"class,attr"`
	Package     string   `xml:"package,attr"`
	ContentDesc string   `xml:"content-desc,attr"`
	Clickable   string   `xml:"clickable,attr"`
	Bounds      string   `xml:"bounds,attr"`
	Nodes       []uiNode `xml:"node"`
}

type uiHierarchy struct {
	XMLName xml.Name `xml:"hierarchy"`
	Nodes   []uiNode `xml:"node"`
}

var boundsRe = regexp.MustCompile(`^\[(-?\d+),(-?\d+)\]\[(-?\d+),(-?\d+)\]$`)

// parseBounds parses uiautomator's "[l,t][r,b]".
func parseBounds(s string) (model.Rect, error) {
	m := boundsRe.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return model.Rect{}, fmt.Errorf("invalid bounds %q", s)
	}
	v := make([]int, 4)
	for i := range v {
		v[i], _ = strconv.Atoi(m[i+1])
	}
	return model.Rect{Left: v[0], Top: v[1], Right: v[2], Bottom: v[3]}, nil
}

// cleanDump strips noise adb prints around the XML and repairs stray
// ampersands.
func cleanDump(s string) string {
	if i := strings.Index(s, "<?xml"); i >= 0 {
		s = s[i:]
	}
	if i := strings.LastIndex(s, ">"); i >= 0 && i < len(s)-1 {
		s = s[:i+1]
	}
	s = strings.ReplaceAll(s, "&", "&amp;")
	for _, ent := range []string{"amp;", "lt;", "gt;", "quot;", "apos;", "#"} {
		s = strings.ReplaceAll(s, "&amp;"+ent, "&"+ent)
	}
	return s
}

// ParseHierarchy converts a uiautomator dump into an element tree. When the
// dump has several top-level nodes they are wrapped in a synthetic root.
func ParseHierarchy(dump string) (*model.Element, error) {
	var h uiHierarchy
	if err := xml.Unmarshal([]byte(cleanDump(dump)), &h); err != nil {
		return nil, fmt.Errorf("failed to parse UI XML (length: %d): %w", len(dump), err)
	}
	if len(h.Nodes) == 0 {
		return nil, fmt.Errorf("UI dump has no nodes")
	}

	var root model.Element
	if len(h.Nodes) == 1 {
		el, err := convertNode(h.Nodes[0])
		if err != nil {
			return nil, err
		}
		root = el
	} else {
		root = model.Element{Class: "android.view.View", App: h.Nodes[0].Package}
		for _, n := range h.Nodes {
			el, err := convertNode(n)
			if err != nil {
				return nil, err
			}
			root.Children = append(root.Children, el)
		}
	}
	roots := []model.Element{root}
	model.AssignIDs(roots)
	return &roots[0], nil
}

func convertNode(n uiNode) (model.Element, error) {
	bounds, err := parseBounds(n.Bounds)
	if err != nil {
		return model.Element{}, err
	}
	el := model.Element{
		App:         n.Package,
		Class:       n.Class,
		Text:        model.StringPtr(n.Text),
		Description: model.StringPtr(n.ContentDesc),
		ResourceID:  n.ResourceID,
		Bounds:      bounds,
		Clickable:   n.Clickable == "true",
	}
	if len(n.Nodes) > 0 {
		el.Children = make([]model.Element, 0, len(n.Nodes))
		for _, c := range n.Nodes {
			child, err := convertNode(c)
			if err != nil {
				return model.Element{}, err
			}
			el.Children = append(el.Children, child)
		}
	}
	return el, nil
}
