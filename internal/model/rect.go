package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Point is a screen coordinate in pixels.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// Rect is a screen rectangle in pixels, edges inclusive of Left/Top and
// exclusive of Right/Bottom.
type Rect struct {
	Left   int `yaml:"l" json:"l"`
	Top    int `yaml:"t" json:"t"`
	Right  int `yaml:"r" json:"r"`
	Bottom int `yaml:"b" json:"b"`
}

// Width returns the horizontal extent of the rectangle.
func (r Rect) Width() int { return r.Right - r.Left }

// Height returns the vertical extent of the rectangle.
func (r Rect) Height() int { return r.Bottom - r.Top }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width() <= 0 || r.Height() <= 0 }

// Center returns the geometric center, rounded toward the top-left.
func (r Rect) Center() Point {
	return Point{X: (r.Left + r.Right) / 2, Y: (r.Top + r.Bottom) / 2}
}

// String renders the rectangle as "Rect(L, T - R, B)", the textual form used
// in the persisted pattern document.
func (r Rect) String() string {
	return fmt.Sprintf("Rect(%d, %d - %d, %d)", r.Left, r.Top, r.Right, r.Bottom)
}

// ParseRect parses "L, T - R, B", optionally wrapped in "Rect(" and ")".
func ParseRect(s string) (Rect, error) {
	body := strings.TrimSpace(s)
	body = strings.TrimPrefix(body, "Rect(")
	body = strings.TrimSuffix(body, ")")
	body = strings.Replace(body, " - ", ", ", 1)

	parts := strings.Split(body, ",")
	if len(parts) != 4 {
		return Rect{}, fmt.Errorf("invalid rect %q: expected \"L, T - R, B\"", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Rect{}, fmt.Errorf("invalid rect %q: %w", s, err)
		}
		vals[i] = v
	}
	return Rect{Left: vals[0], Top: vals[1], Right: vals[2], Bottom: vals[3]}, nil
}

// Intersects reports whether two rectangles overlap.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right && r.Right > o.Left && r.Top < o.Bottom && r.Bottom > o.Top
}
