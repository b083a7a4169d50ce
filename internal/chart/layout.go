package chart

import (
	"errors"
	"image"
	"math"
)

const (
	defaultLeftMargin  = 70
	defaultRightMargin = 25
	titledTopMargin    = 50
	untitledTopMargin  = 20
	labelGap           = 30
	headroom           = 0.95
)

var ErrNoCategories = errors.New("chart needs at least one category")

// Geometry is the pixel layout of one chart. It is computed once per render.
type Geometry struct {
	ImageWidth  int
	ImageHeight int
	LeftMargin  int
	RightMargin int
	TopMargin   int
	Chart       image.Rectangle
	Categories  int
}

func Layout(size image.Point, labels []string, hasTitle bool, m Measurer) (Geometry, error) {
	if len(labels) == 0 {
		return Geometry{}, ErrNoCategories
	}

	longest := 0
	for _, label := range labels {
		w, _ := m.Measure(label)
		longest = max(longest, w)
	}

	top := untitledTopMargin
	if hasTitle {
		top = titledTopMargin
	}

	width := max(size.X-defaultLeftMargin-defaultRightMargin, 0)
	height := max(size.Y/2, size.Y-longest-top-labelGap, 0)

	return Geometry{
		ImageWidth:  size.X,
		ImageHeight: size.Y,
		LeftMargin:  defaultLeftMargin,
		RightMargin: defaultRightMargin,
		TopMargin:   top,
		Chart:       image.Rect(defaultLeftMargin, top, defaultLeftMargin+width, top+height),
		Categories:  len(labels),
	}, nil
}

// CategoryX is the horizontal center of the column for category index.
func (g Geometry) CategoryX(index int) int {
	width := float64(g.Chart.Dx())
	n := float64(g.Categories)
	return int(math.Round(float64(index)/n*width + width/(2*n) + float64(g.Chart.Min.X)))
}

// ValueY is the height above the chart baseline for value on an axis whose
// largest value is axisMax.
func (g Geometry) ValueY(value, axisMax float64) int {
	if axisMax <= 0 {
		return 0
	}
	return int(math.Round(value / axisMax * float64(g.Chart.Dy()) * headroom))
}

// Baseline is the y coordinate of the chart's bottom edge.
func (g Geometry) Baseline() int {
	return g.Chart.Max.Y
}
