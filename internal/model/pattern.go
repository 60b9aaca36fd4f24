package model

// Pattern is a captured signature of a skip control for one application.
// A nil Text or Description matches any value.
type Pattern struct {
	AppID       string  `yaml:"app"            json:"app"`
	ClassName   string  `yaml:"class"          json:"class"`
	Text        *string `yaml:"text,omitempty" json:"text,omitempty"`
	Description *string `yaml:"desc,omitempty" json:"desc,omitempty"`
	Bounds      Rect    `yaml:"bounds"         json:"bounds"`
	Clickable   bool    `yaml:"clickable"      json:"clickable"`
	Depth       int     `yaml:"depth"          json:"depth"`
}

// Matches reports whether a live node satisfies the pattern. Class, bounds
// and clickability must be equal; text and description are compared only
// when the pattern carries a value. Depth is not compared.
func (p Pattern) Matches(el FlatElement) bool {
	if p.ClassName != el.Class || p.Bounds != el.Bounds || p.Clickable != el.Clickable {
		return false
	}
	if p.Text != nil && (el.Text == nil || *p.Text != *el.Text) {
		return false
	}
	if p.Description != nil && (el.Description == nil || *p.Description != *el.Description) {
		return false
	}
	return true
}

// PatternFromElement captures a snapshot row as a pattern. When keepText is
// false the text is left as a wildcard, which survives countdown labels such
// as "5s" ticking down.
func PatternFromElement(el FlatElement, keepText bool) Pattern {
	p := Pattern{
		AppID:       el.App,
		ClassName:   el.Class,
		Description: el.Description,
		Bounds:      el.Bounds,
		Clickable:   el.Clickable,
		Depth:       el.Depth,
	}
	if keepText {
		p.Text = el.Text
	}
	return p
}
