package model

// FlatElement is an element with a depth and path breadcrumb instead of children.
type FlatElement struct {
	ID          int     `yaml:"i"              json:"i"`
	App         string  `yaml:"app,omitempty"  json:"app,omitempty"`
	Class       string  `yaml:"c"              json:"c"`
	Text        *string `yaml:"t,omitempty"    json:"t,omitempty"`
	Description *string `yaml:"d,omitempty"    json:"d,omitempty"`
	ResourceID  string  `yaml:"rid,omitempty"  json:"rid,omitempty"`
	Bounds      Rect    `yaml:"b"              json:"b"`
	Clickable   bool    `yaml:"k,omitempty"    json:"k,omitempty"`
	Depth       int     `yaml:"depth"          json:"depth"`
	Path        string  `yaml:"p,omitempty"    json:"p,omitempty"`
}
