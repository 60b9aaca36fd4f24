package model

import "testing"

func TestFilterFlat_NoFilters(t *testing.T) {
	elements := []FlatElement{
		{ID: 1, Class: "android.widget.Button", Bounds: Rect{0, 0, 100, 30}},
		{ID: 2, Class: "android.widget.TextView", Bounds: Rect{0, 30, 100, 50}},
	}
	result := FilterFlat(elements, false, nil, "")
	if len(result) != 2 {
		t.Errorf("expected 2 elements, got %d", len(result))
	}
}

func TestFilterFlat_ClickableOnly(t *testing.T) {
	elements := []FlatElement{
		{ID: 1, Clickable: true},
		{ID: 2},
		{ID: 3, Clickable: true},
	}
	result := FilterFlat(elements, true, nil, "")
	if len(result) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(result))
	}
	if result[0].ID != 1 || result[1].ID != 3 {
		t.Errorf("unexpected ids: %d, %d", result[0].ID, result[1].ID)
	}
}

func TestFilterFlat_BBox(t *testing.T) {
	elements := []FlatElement{
		{ID: 1, Bounds: Rect{10, 10, 60, 40}},    // inside
		{ID: 2, Bounds: Rect{200, 200, 250, 230}}, // outside
		{ID: 3, Bounds: Rect{90, 90, 140, 120}},   // overlaps
	}
	bbox := Rect{0, 0, 100, 100}
	result := FilterFlat(elements, false, &bbox, "")
	if len(result) != 2 {
		t.Errorf("expected 2 elements (inside + overlapping), got %d", len(result))
	}
}

func TestFilterFlat_Text(t *testing.T) {
	elements := []FlatElement{
		{ID: 1, Text: StringPtr("Skip Ad")},
		{ID: 2, Description: StringPtr("close SKIP")},
		{ID: 3, Text: StringPtr("Continue")},
	}
	result := FilterFlat(elements, false, nil, "skip")
	if len(result) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(result))
	}
}

func TestPruneEmptyContainers(t *testing.T) {
	elements := []FlatElement{
		{ID: 1, Class: "android.widget.FrameLayout"},
		{ID: 2, Class: "android.widget.LinearLayout", Clickable: true},
		{ID: 3, Class: "android.widget.TextView", Text: StringPtr("x")},
		{ID: 4, Class: "android.view.View", ResourceID: "app:id/banner"},
	}
	result := PruneEmptyContainers(elements)
	if len(result) != 3 {
		t.Fatalf("expected 3 elements, got %d", len(result))
	}
	if result[0].ID != 2 {
		t.Errorf("expected first kept id 2, got %d", result[0].ID)
	}
}

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		want bool
	}{
		{"overlapping", Rect{0, 0, 100, 100}, Rect{50, 50, 150, 150}, true},
		{"adjacent_no_overlap", Rect{0, 0, 100, 100}, Rect{100, 0, 200, 100}, false},
		{"contained", Rect{0, 0, 200, 200}, Rect{50, 50, 60, 60}, true},
		{"no_overlap", Rect{0, 0, 10, 10}, Rect{20, 20, 30, 30}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.a.Intersects(tt.b)
			if got != tt.want {
				t.Errorf("%v.Intersects(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}
