package chart

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

type canvas struct {
	img *image.RGBA
}

func newCanvas(size image.Point) *canvas {
	img := image.NewRGBA(image.Rect(0, 0, size.X, size.Y))
	draw.Draw(img, img.Bounds(), image.NewUniform(white), image.Point{}, draw.Src)
	return &canvas{img: img}
}

func (c *canvas) fill(r image.Rectangle, col color.Color) {
	draw.Draw(c.img, r.Intersect(c.img.Bounds()), image.NewUniform(col), image.Point{}, draw.Over)
}

// line strokes a segment of the given pen width between two pixel centers.
func (c *canvas) line(x0, y0, x1, y1 int, width float64, col color.Color) {
	b := c.img.Bounds()
	if b.Empty() {
		return
	}

	ax, ay := float64(x0)+0.5, float64(y0)+0.5
	bx, by := float64(x1)+0.5, float64(y1)+0.5
	dx, dy := bx-ax, by-ay
	length := math.Hypot(dx, dy)
	half := width / 2
	if length == 0 {
		c.fill(image.Rect(int(ax-half), int(ay-half), int(math.Ceil(ax+half)), int(math.Ceil(ay+half))), col)
		return
	}

	// Extend the ends by half the pen width so joined segments meet without gaps.
	ux, uy := dx/length*half, dy/length*half
	nx, ny := -uy, ux
	ax, ay = ax-ux, ay-uy
	bx, by = bx+ux, by+uy

	w, h := float64(b.Dx()), float64(b.Dy())
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.MoveTo(clampPoint(ax+nx, ay+ny, w, h))
	z.LineTo(clampPoint(bx+nx, by+ny, w, h))
	z.LineTo(clampPoint(bx-nx, by-ny, w, h))
	z.LineTo(clampPoint(ax-nx, ay-ny, w, h))
	z.ClosePath()
	z.Draw(c.img, b, image.NewUniform(col), image.Point{})
}

// clampPoint keeps path vertices inside the rasterizer's bounds.
func clampPoint(x, y, w, h float64) (float32, float32) {
	return float32(min(max(x, 0), w)), float32(min(max(y, 0), h))
}

func (c *canvas) strokeRect(r image.Rectangle, width float64, col color.Color) {
	c.line(r.Min.X, r.Min.Y, r.Max.X, r.Min.Y, width, col)
	c.line(r.Max.X, r.Min.Y, r.Max.X, r.Max.Y, width, col)
	c.line(r.Max.X, r.Max.Y, r.Min.X, r.Max.Y, width, col)
	c.line(r.Min.X, r.Max.Y, r.Min.X, r.Min.Y, width, col)
}

// text draws s with its top-left corner at (x, y).
func (c *canvas) text(face font.Face, s string, x, y int, col color.Color) {
	drawText(c.img, face, s, x, y, col)
}

// rotatedText draws s turned 270 degrees (reading top to bottom) with the
// rotated block's top-right corner at (x, y).
func (c *canvas) rotatedText(face font.Face, s string, x, y int, col color.Color) {
	w := font.MeasureString(face, s).Ceil()
	h := face.Metrics().Height.Ceil()
	if w <= 0 || h <= 0 {
		return
	}

	flat := image.NewRGBA(image.Rect(0, 0, w, h))
	drawText(flat, face, s, 0, 0, col)

	turned := image.NewRGBA(image.Rect(0, 0, h, w))
	for sy := 0; sy < h; sy++ {
		for sx := 0; sx < w; sx++ {
			turned.SetRGBA(h-1-sy, sx, flat.RGBAAt(sx, sy))
		}
	}

	dst := image.Rect(x-h, y, x, y+w)
	draw.Draw(c.img, dst, turned, image.Point{}, draw.Over)
}

func drawText(dst draw.Image, face font.Face, s string, x, y int, col color.Color) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y) + face.Metrics().Ascent},
	}
	d.DrawString(s)
}
