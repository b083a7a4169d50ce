package chart

import (
	"fmt"
	"image"
	"image/color"
	"strconv"

	"golang.org/x/image/font"
)

const (
	borderWidth = 2
	markerSize  = 6
)

// Render draws data as a line chart with two vertical scales: magnitude
// metrics on the left axis and accuracy on the right. The returned image is
// exactly size pixels.
func Render(title string, data *Dataset, size image.Point) (*image.RGBA, error) {
	if data.Len() == 0 {
		return nil, ErrNoCategories
	}

	fc, err := newFaces()
	if err != nil {
		return nil, err
	}

	geo, err := Layout(size, data.Categories(), title != "", FaceMeasurer{Face: fc.axis})
	if err != nil {
		return nil, err
	}

	magnitudeMax, accuracyMax := data.maxima()
	magnitudeAxis, err := Scale(magnitudeMax)
	if err != nil {
		return nil, fmt.Errorf("scale magnitude axis: %w", err)
	}
	accuracyAxis, err := Scale(accuracyMax)
	if err != nil {
		return nil, fmt.Errorf("scale accuracy axis: %w", err)
	}

	r := &renderer{
		c:           newCanvas(size),
		faces:       fc,
		geo:         geo,
		data:        data,
		magnitudeAx: magnitudeAxis,
		accuracyAx:  accuracyAxis,
	}

	r.c.strokeRect(image.Rect(1, 1, size.X-1, size.Y-1), borderWidth, black)
	r.drawTitle(title)
	r.c.strokeRect(image.Rect(geo.Chart.Min.X-3, geo.Chart.Min.Y, geo.Chart.Max.X+3, geo.Chart.Max.Y), borderWidth, black)
	r.drawMagnitudeAxis()
	r.drawAccuracyAxis()
	r.drawLegend()
	r.drawCategories()
	r.drawSeries()

	return r.c.img, nil
}

type renderer struct {
	c           *canvas
	faces       faces
	geo         Geometry
	data        *Dataset
	magnitudeAx AxisSpec
	accuracyAx  AxisSpec
}

func (r *renderer) drawTitle(title string) {
	if title == "" {
		return
	}
	w := font.MeasureString(r.faces.title, title).Ceil()
	r.c.text(r.faces.title, title, r.geo.ImageWidth/2-w/2, 10, black)
}

func (r *renderer) drawMagnitudeAxis() {
	left := r.geo.Chart.Min.X
	for _, tick := range r.magnitudeAx.Ticks {
		y := r.axisY(tick, r.magnitudeAx.Max)
		r.c.line(left-8, y, left-3, y, borderWidth, black)
		r.tickLabel(tick, left-13, y, black)
	}
}

func (r *renderer) drawAccuracyAxis() {
	right := r.geo.Chart.Max.X
	for _, tick := range r.accuracyAx.Ticks {
		y := r.axisY(tick, r.accuracyAx.Max)
		r.c.line(right-5, y, right, y, borderWidth, accent)
		r.tickLabel(tick, right-6, y, accent)
	}
}

// tickLabel draws the label right-justified against x and vertically centered on y.
func (r *renderer) tickLabel(tick float64, x, y int, col color.Color) {
	label := formatTick(tick)
	w, h := FaceMeasurer{Face: r.faces.axis}.Measure(label)
	r.c.text(r.faces.axis, label, x-w, y-h/2, col)
}

// formatTick prints whole numbers in full and switches to exponent form
// once they would no longer fit beside the axis.
func formatTick(tick float64) string {
	if tick < 1e15 {
		return strconv.FormatFloat(tick, 'f', -1, 64)
	}
	return strconv.FormatFloat(tick, 'g', 3, 64)
}

func (r *renderer) axisY(value, axisMax float64) int {
	return r.geo.Baseline() - r.geo.ValueY(value, axisMax) - 1
}

func (r *renderer) drawLegend() {
	lineHeight := r.faces.legend.Metrics().Height.Ceil() + 2
	for i, metric := range r.data.Metrics() {
		r.c.text(r.faces.legend, metric.String(), r.geo.Chart.Min.X+5, r.geo.Chart.Min.Y+5+i*lineHeight, SeriesColor(i))
	}
}

func (r *renderer) drawCategories() {
	base := r.geo.Baseline()
	for i, label := range r.data.Categories() {
		x := r.geo.CategoryX(i)
		r.c.line(x, base, x, base+3, borderWidth, black)
		_, h := FaceMeasurer{Face: r.faces.axis}.Measure(label)
		r.c.rotatedText(r.faces.axis, label, x+h/2, base+10, black)
	}
}

type point struct {
	x, y  int
	value float64
}

func (r *renderer) drawSeries() {
	base := r.geo.Baseline()
	categories := r.data.Categories()

	for mi, metric := range r.data.Metrics() {
		col := SeriesColor(mi)
		axisMax := r.magnitudeAx.Max
		if metric.IsAccuracy() {
			axisMax = r.accuracyAx.Max
		}

		var prev *point
		for ci, category := range categories {
			value, ok := r.data.Value(category, metric)
			if !ok {
				prev = nil
				continue
			}

			cur := point{x: r.geo.CategoryX(ci), y: base - r.geo.ValueY(value, axisMax), value: value}
			r.c.fill(image.Rect(cur.x, cur.y-markerSize/2, cur.x+markerSize, cur.y+markerSize/2), col)
			if prev != nil && prev.value != 0 {
				r.c.line(prev.x+2, prev.y, cur.x+2, cur.y, borderWidth, col)
			}
			prev = &cur
		}
	}
}
