package tree

import (
	"errors"
	"testing"

	"github.com/mj1618/skipad/internal/model"
)

// shape describes a fake tree; handles are minted on every Child call.
type shape struct {
	class    string
	text     *string
	children []*shape
	panics   bool
}

type tracker struct {
	acquired int
	released int
	double   int
}

type handle struct {
	s    *shape
	t    *tracker
	done bool
}

func (h *handle) ChildCount() int { return len(h.s.children) }

func (h *handle) Child(i int) Node {
	if i >= len(h.s.children) || h.s.children[i] == nil {
		return nil
	}
	h.t.acquired++
	return &handle{s: h.s.children[i], t: h.t}
}

func (h *handle) AppID() string { return "com.example" }

func (h *handle) ClassName() string {
	if h.s.panics {
		panic("stale node")
	}
	return h.s.class
}

func (h *handle) Text() (string, bool) {
	if h.s.text == nil {
		return "", false
	}
	return *h.s.text, true
}

func (h *handle) Description() (string, bool) { return "", false }
func (h *handle) ResourceID() string          { return "" }
func (h *handle) Bounds() model.Rect          { return model.Rect{} }
func (h *handle) Clickable() bool             { return false }

func (h *handle) Release() {
	if h.done {
		h.t.double++
		return
	}
	h.done = true
	h.t.released++
}

func leaf(class string) *shape { return &shape{class: class} }

func node(class string, children ...*shape) *shape {
	return &shape{class: class, children: children}
}

func chain(depth int) *shape {
	root := leaf("n0")
	cur := root
	for i := 1; i <= depth; i++ {
		next := leaf("n")
		cur.children = []*shape{next}
		cur = next
	}
	return root
}

func rootHandle(s *shape) (*handle, *tracker) {
	t := &tracker{}
	return &handle{s: s, t: t}, t
}

func byClass(class string) VisitFunc {
	return func(n Node, _ int) bool { return n.ClassName() == class }
}

func TestWalk_PreOrder(t *testing.T) {
	s := node("a", node("b", leaf("c")), leaf("d"))
	root, tr := rootHandle(s)

	var order []string
	found, err := Walk(root, func(n Node, _ int) bool {
		order = append(order, n.ClassName())
		return false
	}, Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != nil {
		t.Errorf("expected no match, got %v", found)
	}
	want := []string{"a", "b", "c", "d"}
	if len(order) != len(want) {
		t.Fatalf("got order %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
	if tr.acquired != tr.released {
		t.Errorf("acquired %d handles, released %d", tr.acquired, tr.released)
	}
	if root.done {
		t.Error("root must not be released by Walk")
	}
}

func TestWalk_FirstMatchIsNotReleased(t *testing.T) {
	s := node("a", node("b", leaf("target")), leaf("target"), leaf("e"))
	root, tr := rootHandle(s)

	found, err := Walk(root, byClass("target"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h, ok := found.(*handle)
	if !ok || h.s != s.children[0].children[0] {
		t.Fatalf("expected the first pre-order target, got %v", found)
	}
	if h.done {
		t.Error("returned node was released")
	}
	if tr.released != tr.acquired-1 {
		t.Errorf("acquired %d, released %d; want all but the result released", tr.acquired, tr.released)
	}
	Release(found)
	if tr.released != tr.acquired || tr.double != 0 {
		t.Errorf("after Release: acquired %d, released %d, double %d", tr.acquired, tr.released, tr.double)
	}
}

func TestWalk_RootMatch(t *testing.T) {
	root, tr := rootHandle(node("a", leaf("b")))
	found, err := Walk(root, byClass("a"), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != Node(root) {
		t.Errorf("expected root, got %v", found)
	}
	if tr.acquired != 0 || root.done {
		t.Errorf("root match should acquire nothing: %+v", tr)
	}
}

func TestWalk_TooDeep(t *testing.T) {
	root, tr := rootHandle(chain(50))
	_, err := Walk(root, byClass("none"), Options{MaxDepth: 10})
	if !errors.Is(err, ErrTooDeep) {
		t.Fatalf("got %v, want ErrTooDeep", err)
	}
	if !IsExhaustion(err) {
		t.Error("ErrTooDeep should be classified as exhaustion")
	}
	var te *TraversalError
	if !errors.As(err, &te) || te.Depth != 11 {
		t.Errorf("unexpected traversal error: %#v", err)
	}
	if tr.acquired != tr.released || tr.double != 0 {
		t.Errorf("acquired %d, released %d, double %d", tr.acquired, tr.released, tr.double)
	}
}

func TestWalk_DeepTreeWithinBudget(t *testing.T) {
	root, _ := rootHandle(chain(100000))
	_, err := Walk(root, byClass("none"), Options{MaxDepth: 200000, MaxNodes: 200000})
	if err != nil {
		t.Fatalf("iterative walk should handle a deep chain: %v", err)
	}
}

func TestWalk_TooManyNodes(t *testing.T) {
	var kids []*shape
	for i := 0; i < 20; i++ {
		kids = append(kids, leaf("k"))
	}
	root, tr := rootHandle(node("a", kids...))
	_, err := Walk(root, byClass("none"), Options{MaxNodes: 5})
	if !errors.Is(err, ErrTooManyNodes) {
		t.Fatalf("got %v, want ErrTooManyNodes", err)
	}
	if !IsExhaustion(err) {
		t.Error("ErrTooManyNodes should be classified as exhaustion")
	}
	if tr.acquired != tr.released {
		t.Errorf("acquired %d, released %d", tr.acquired, tr.released)
	}
}

func TestWalk_AccessorPanic(t *testing.T) {
	bad := leaf("bad")
	bad.panics = true
	root, tr := rootHandle(node("a", leaf("b"), node("c", bad)))

	found, err := Walk(root, byClass("none"), Options{})
	if found != nil {
		t.Errorf("expected nil result, got %v", found)
	}
	if !errors.Is(err, ErrNodeAccess) {
		t.Fatalf("got %v, want ErrNodeAccess", err)
	}
	if IsExhaustion(err) {
		t.Error("accessor failure must not be classified as exhaustion")
	}
	if tr.acquired != tr.released {
		t.Errorf("acquired %d, released %d", tr.acquired, tr.released)
	}
}

func TestWalk_NilChildSkipped(t *testing.T) {
	root, _ := rootHandle(node("a", nil, leaf("b")))
	found, err := Walk(root, byClass("b"), Options{})
	if err != nil || found == nil {
		t.Fatalf("expected b, got %v, %v", found, err)
	}
	Release(found)
}

func TestWalk_NilRoot(t *testing.T) {
	found, err := Walk(nil, byClass("a"), Options{})
	if found != nil || err != nil {
		t.Errorf("got %v, %v; want nil, nil", found, err)
	}
}

func TestSnapshot(t *testing.T) {
	root := &model.Element{
		App:   "com.example",
		Class: "android.widget.FrameLayout",
		Children: []model.Element{
			{
				Class: "android.widget.LinearLayout",
				Children: []model.Element{
					{Class: "android.widget.TextView", Text: model.StringPtr("5s"), Clickable: true},
				},
			},
			{Class: "android.widget.ImageView", Description: model.StringPtr("close")},
		},
	}

	got, err := Snapshot(FromElement(root), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 elements, got %d", len(got))
	}
	wantPaths := []string{"frame", "frame > linear", "frame > linear > txt", "frame > img"}
	wantDepths := []int{0, 1, 2, 1}
	for i, el := range got {
		if el.ID != i+1 {
			t.Errorf("element %d: ID = %d, want %d", i, el.ID, i+1)
		}
		if el.Path != wantPaths[i] {
			t.Errorf("element %d: path = %q, want %q", i, el.Path, wantPaths[i])
		}
		if el.Depth != wantDepths[i] {
			t.Errorf("element %d: depth = %d, want %d", i, el.Depth, wantDepths[i])
		}
	}
	if model.Deref(got[2].Text) != "5s" || !got[2].Clickable {
		t.Errorf("unexpected text row: %+v", got[2])
	}
	if got[3].Text != nil || model.Deref(got[3].Description) != "close" {
		t.Errorf("unexpected description row: %+v", got[3])
	}
}

func TestFromElement_Element(t *testing.T) {
	el := &model.Element{Class: "x"}
	n := FromElement(el)
	back, ok := Element(n)
	if !ok || back != el {
		t.Errorf("Element() = %v, %v; want the backing record", back, ok)
	}
	if FromElement(nil) != nil {
		t.Error("FromElement(nil) should be nil")
	}
}
