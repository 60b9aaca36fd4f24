package tree

import "github.com/mj1618/skipad/internal/model"

type elementNode struct {
	el *model.Element
}

// FromElement exposes a dumped element tree as a Node. The returned nodes
// hold no host resources.
func FromElement(el *model.Element) Node {
	if el == nil {
		return nil
	}
	return elementNode{el: el}
}

func (n elementNode) ChildCount() int { return len(n.el.Children) }

func (n elementNode) Child(i int) Node {
	if i < 0 || i >= len(n.el.Children) {
		return nil
	}
	return elementNode{el: &n.el.Children[i]}
}

func (n elementNode) AppID() string      { return n.el.App }
func (n elementNode) ClassName() string  { return n.el.Class }
func (n elementNode) ResourceID() string { return n.el.ResourceID }
func (n elementNode) Bounds() model.Rect { return n.el.Bounds }
func (n elementNode) Clickable() bool    { return n.el.Clickable }

func (n elementNode) Text() (string, bool) {
	if n.el.Text == nil {
		return "", false
	}
	return *n.el.Text, true
}

func (n elementNode) Description() (string, bool) {
	if n.el.Description == nil {
		return "", false
	}
	return *n.el.Description, true
}

// Element returns the backing record when n was built by FromElement.
func Element(n Node) (*model.Element, bool) {
	en, ok := n.(elementNode)
	if !ok {
		return nil, false
	}
	return en.el, true
}
