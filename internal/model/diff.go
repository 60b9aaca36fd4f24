package model

import (
	"fmt"
	"time"
)

// ChangeType represents the kind of UI change detected.
type ChangeType string

const (
	ChangeAdded   ChangeType = "added"
	ChangeRemoved ChangeType = "removed"
	ChangeChanged ChangeType = "changed"
)

// UIChange represents a single change between two dumps.
type UIChange struct {
	Type    ChangeType           `json:"type"`
	TS      int64                `json:"ts"`
	Element *FlatElement         `json:"el,omitempty"`      // For added: the full element
	ID      int                  `json:"id,omitempty"`      // For removed/changed: element ID
	Class   string               `json:"c,omitempty"`       // For removed: class
	Changes map[string][2]string `json:"changes,omitempty"` // For changed: field diffs
}

// DiffElements compares two flat element lists and returns the changes.
// Elements are matched by their ID (sequential traversal index).
func DiffElements(prev, curr []FlatElement) []UIChange {
	prevMap := make(map[int]FlatElement, len(prev))
	for _, el := range prev {
		prevMap[el.ID] = el
	}
	currMap := make(map[int]FlatElement, len(curr))
	for _, el := range curr {
		currMap[el.ID] = el
	}

	var changes []UIChange
	now := time.Now().Unix()

	for _, el := range curr {
		prevEl, existed := prevMap[el.ID]
		if !existed {
			elCopy := el
			changes = append(changes, UIChange{
				Type:    ChangeAdded,
				TS:      now,
				Element: &elCopy,
			})
			continue
		}
		if diffs := diffProperties(prevEl, el); len(diffs) > 0 {
			changes = append(changes, UIChange{
				Type:    ChangeChanged,
				TS:      now,
				ID:      el.ID,
				Changes: diffs,
			})
		}
	}

	for _, el := range prev {
		if _, exists := currMap[el.ID]; !exists {
			changes = append(changes, UIChange{
				Type:  ChangeRemoved,
				TS:    now,
				ID:    el.ID,
				Class: el.Class,
			})
		}
	}

	return changes
}

// TreeChanged reports whether two dumps differ in any element. It is
// cheaper than DiffElements when only a yes/no answer is needed.
func TreeChanged(prev, curr []FlatElement) bool {
	if len(prev) != len(curr) {
		return true
	}
	for i := range curr {
		if prev[i].ID != curr[i].ID || diffProperties(prev[i], curr[i]) != nil {
			return true
		}
	}
	return false
}

// diffProperties compares two elements and returns changed fields.
func diffProperties(prev, curr FlatElement) map[string][2]string {
	diffs := make(map[string][2]string)

	if prev.App != curr.App {
		diffs["app"] = [2]string{prev.App, curr.App}
	}
	if prev.Class != curr.Class {
		diffs["c"] = [2]string{prev.Class, curr.Class}
	}
	if Deref(prev.Text) != Deref(curr.Text) || (prev.Text == nil) != (curr.Text == nil) {
		diffs["t"] = [2]string{Deref(prev.Text), Deref(curr.Text)}
	}
	if Deref(prev.Description) != Deref(curr.Description) || (prev.Description == nil) != (curr.Description == nil) {
		diffs["d"] = [2]string{Deref(prev.Description), Deref(curr.Description)}
	}
	if prev.Bounds != curr.Bounds {
		diffs["b"] = [2]string{prev.Bounds.String(), curr.Bounds.String()}
	}
	if prev.Clickable != curr.Clickable {
		diffs["k"] = [2]string{
			fmt.Sprintf("%v", prev.Clickable),
			fmt.Sprintf("%v", curr.Clickable),
		}
	}

	if len(diffs) == 0 {
		return nil
	}
	return diffs
}
