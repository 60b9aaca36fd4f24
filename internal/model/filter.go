package model

import "strings"

// FilterFlat returns the flat elements that pass every non-zero filter:
// clickable-only, intersecting bbox, and text substring (case-insensitive,
// on text or description).
func FilterFlat(elements []FlatElement, clickableOnly bool, bbox *Rect, text string) []FlatElement {
	if !clickableOnly && bbox == nil && text == "" {
		return elements
	}
	textLower := strings.ToLower(text)
	var result []FlatElement
	for _, el := range elements {
		if clickableOnly && !el.Clickable {
			continue
		}
		if bbox != nil && !el.Bounds.Intersects(*bbox) {
			continue
		}
		if text != "" && !textMatchesElement(el, textLower) {
			continue
		}
		result = append(result, el)
	}
	return result
}

func textMatchesElement(el FlatElement, textLower string) bool {
	return strings.Contains(strings.ToLower(Deref(el.Text)), textLower) ||
		strings.Contains(strings.ToLower(Deref(el.Description)), textLower)
}

// isEmptyContainer returns true if the element is a non-clickable node with
// no text, description or resource id: a purely structural layout node.
func isEmptyContainer(el FlatElement) bool {
	return !el.Clickable && el.Text == nil && el.Description == nil && el.ResourceID == ""
}

// PruneEmptyContainers removes structural-only nodes from a flat list. The
// path breadcrumbs of remaining elements are not modified.
func PruneEmptyContainers(elements []FlatElement) []FlatElement {
	var result []FlatElement
	for _, el := range elements {
		if isEmptyContainer(el) {
			continue
		}
		result = append(result, el)
	}
	return result
}
