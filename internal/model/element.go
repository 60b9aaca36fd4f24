package model

// Element is a node of a dumped UI tree.
// Text and Description are nil when the host reports no value.
type Element struct {
	ID          int       `yaml:"i"              json:"i"`
	App         string    `yaml:"app,omitempty"  json:"app,omitempty"`
	Class       string    `yaml:"c"              json:"c"`
	Text        *string   `yaml:"t,omitempty"    json:"t,omitempty"`
	Description *string   `yaml:"d,omitempty"    json:"d,omitempty"`
	ResourceID  string    `yaml:"rid,omitempty"  json:"rid,omitempty"`
	Bounds      Rect      `yaml:"b"              json:"b"`
	Clickable   bool      `yaml:"k,omitempty"    json:"k,omitempty"`
	Children    []Element `yaml:"ch,omitempty"   json:"ch,omitempty"`
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// AssignIDs numbers the tree in pre-order starting at 1 and returns the
// number of elements visited.
func AssignIDs(elements []Element) int {
	next := 1
	var walk func(els []Element)
	walk = func(els []Element) {
		for i := range els {
			els[i].ID = next
			next++
			walk(els[i].Children)
		}
	}
	walk(elements)
	return next - 1
}
