package platform

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mj1618/skipad/internal/model"
)

func parseInts(s string, n int, form string) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("invalid value %q: expected %s", s, form)
	}
	vals := make([]int, n)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", s, err)
		}
		vals[i] = v
	}
	return vals, nil
}

// ParseBBox parses a "x,y,w,h" string into a screen rectangle.
func ParseBBox(s string) (*model.Rect, error) {
	vals, err := parseInts(s, 4, "x,y,w,h")
	if err != nil {
		return nil, fmt.Errorf("bbox: %w", err)
	}
	if vals[2] < 0 || vals[3] < 0 {
		return nil, fmt.Errorf("bbox %q: negative size", s)
	}
	return &model.Rect{Left: vals[0], Top: vals[1], Right: vals[0] + vals[2], Bottom: vals[1] + vals[3]}, nil
}

// ParsePoint parses a "x,y" string into a screen point.
func ParsePoint(s string) (model.Point, error) {
	vals, err := parseInts(s, 2, "x,y")
	if err != nil {
		return model.Point{}, fmt.Errorf("point: %w", err)
	}
	return model.Point{X: vals[0], Y: vals[1]}, nil
}
