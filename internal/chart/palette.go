package chart

import "image/color"

var (
	black  = color.RGBA{A: 0xff}
	white  = color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	accent = color.RGBA{R: 0xff, A: 0xff}
)

var palette = []color.RGBA{
	{R: 0, G: 255, B: 0, A: 255},     // green
	{R: 0, G: 0, B: 255, A: 255},     // blue
	{R: 255, G: 0, B: 0, A: 255},     // red
	{R: 255, G: 0, B: 255, A: 255},   // magenta
	{R: 0, G: 128, B: 255, A: 255},   // greenish blue
	{R: 128, G: 128, B: 128, A: 255}, // grey
	{R: 128, G: 0, B: 128, A: 255},   // dark magenta
	{R: 204, G: 50, B: 153, A: 255},  // violet red
	{R: 255, G: 0, B: 128, A: 255},   // light magenta
	{R: 255, G: 128, B: 128, A: 255}, // light red
	{R: 0, G: 255, B: 255, A: 255},   // cyan
	{R: 0, G: 128, B: 0, A: 255},     // dark green
	{R: 128, G: 0, B: 255, A: 255},   // dark purple
	{R: 128, G: 0, B: 0, A: 255},     // brown
	{R: 128, G: 128, B: 255, A: 255}, // light blue
	{R: 255, G: 128, B: 0, A: 255},   // light orange
	{R: 0, G: 0, B: 128, A: 255},     // dark blue
	{R: 128, G: 255, B: 0, A: 255},   // light green
	{R: 0, G: 128, B: 128, A: 255},   // turquoise
	{R: 142, G: 107, B: 35, A: 255},  // sienna
	{R: 176, G: 0, B: 255, A: 255},   // purple
	{R: 79, G: 47, B: 47, A: 255},    // indian red
	{R: 255, G: 128, B: 255, A: 255}, // pink
	{R: 204, G: 50, B: 50, A: 255},   // orange
	{R: 219, G: 219, B: 112, A: 255}, // goldenrod
}

// SeriesColor returns the color of the series first seen at position index.
func SeriesColor(index int) color.RGBA {
	return palette[index%len(palette)]
}
