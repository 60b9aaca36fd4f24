// Package outline renders the bounds of snapshot nodes to an image so a
// node can be picked for capture by its id.
package outline

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/mj1618/skipad/internal/model"
)

// Options controls rendering.
type Options struct {
	// Scale shrinks the device resolution; 0 means 0.5.
	Scale float64
	// ClickableOnly highlights only clickable nodes.
	ClickableOnly bool
}

var (
	background   = color.RGBA{R: 32, G: 32, B: 32, A: 255}
	boxColor     = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	clickColor   = color.RGBA{R: 0, G: 200, B: 0, A: 255}
	textColor    = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	outlineColor = color.RGBA{R: 0, G: 0, B: 0, A: 200}
)

// Canvas returns the screen area covered by elements.
func Canvas(elements []model.FlatElement) model.Rect {
	var r model.Rect
	for _, el := range elements {
		if el.Bounds.Right > r.Right {
			r.Right = el.Bounds.Right
		}
		if el.Bounds.Bottom > r.Bottom {
			r.Bottom = el.Bounds.Bottom
		}
	}
	return r
}

// Render draws every node's bounds with its "[id]" label. Clickable nodes
// are drawn in green.
func Render(elements []model.FlatElement, opts Options) *image.RGBA {
	scale := opts.Scale
	if scale <= 0 {
		scale = 0.5
	}
	canvas := Canvas(elements)
	w := int(float64(canvas.Right) * scale)
	h := int(float64(canvas.Bottom) * scale)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.NewUniform(background), image.Point{}, draw.Src)

	for _, el := range elements {
		if el.Bounds.Empty() || (opts.ClickableOnly && !el.Clickable) {
			continue
		}
		drawElementBox(img, el, scale)
	}
	return img
}

// WritePNG renders elements and encodes the result as PNG.
func WritePNG(w io.Writer, elements []model.FlatElement, opts Options) error {
	if err := png.Encode(w, Render(elements, opts)); err != nil {
		return fmt.Errorf("encoding outline: %w", err)
	}
	return nil
}

func drawElementBox(img *image.RGBA, el model.FlatElement, scale float64) {
	x1 := int(float64(el.Bounds.Left) * scale)
	y1 := int(float64(el.Bounds.Top) * scale)
	x2 := int(float64(el.Bounds.Right) * scale)
	y2 := int(float64(el.Bounds.Bottom) * scale)

	c := boxColor
	if el.Clickable {
		c = clickColor
	}
	drawRectangle(img, x1, y1, x2, y2, c)
	drawTextWithOutline(img, fmt.Sprintf("[%d]", el.ID), (x1+x2)/2, (y1+y2)/2)
}

// drawRectangle draws a rectangle outline clamped to the image.
func drawRectangle(img *image.RGBA, x1, y1, x2, y2 int, c color.Color) {
	r := image.Rect(x1, y1, x2, y2).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.Set(x, r.Min.Y, c)
		img.Set(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.Set(r.Min.X, y, c)
		img.Set(r.Max.X-1, y, c)
	}
}

// drawTextWithOutline centers text at (x, y) with a dark halo.
func drawTextWithOutline(img *image.RGBA, text string, x, y int) {
	// basicfont.Face7x13 glyphs are 7 pixels wide and 13 high
	offsetX := x - len(text)*7/2
	offsetY := y + 13/2

	d := &font.Drawer{Dst: img, Face: basicfont.Face7x13}
	d.Src = image.NewUniform(outlineColor)
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			if dx == 0 && dy == 0 {
				continue
			}
			d.Dot = fixed.P(offsetX+dx, offsetY+dy)
			d.DrawString(text)
		}
	}
	d.Src = image.NewUniform(textColor)
	d.Dot = fixed.P(offsetX, offsetY)
	d.DrawString(text)
}
