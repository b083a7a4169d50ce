package chart

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Measurer reports the pixel extent of a label in the font it will be drawn with.
type Measurer interface {
	Measure(text string) (width, height int)
}

type FaceMeasurer struct {
	Face font.Face
}

func (m FaceMeasurer) Measure(text string) (int, int) {
	return font.MeasureString(m.Face, text).Ceil(), m.Face.Metrics().Height.Ceil()
}

const (
	axisLabelSize = 11
	legendSize    = axisLabelSize + 2
	titleSize     = 18
)

var (
	parseRegular = sync.OnceValues(func() (*opentype.Font, error) { return opentype.Parse(goregular.TTF) })
	parseBold    = sync.OnceValues(func() (*opentype.Font, error) { return opentype.Parse(gobold.TTF) })
)

// faces holds the font faces of a single render. Faces keep glyph buffers,
// so every render gets its own set.
type faces struct {
	axis   font.Face
	legend font.Face
	title  font.Face
}

func newFaces() (faces, error) {
	regular, err := parseRegular()
	if err != nil {
		return faces{}, fmt.Errorf("parse regular font: %w", err)
	}
	bold, err := parseBold()
	if err != nil {
		return faces{}, fmt.Errorf("parse bold font: %w", err)
	}

	axis, err := newFace(regular, axisLabelSize)
	if err != nil {
		return faces{}, err
	}
	legend, err := newFace(bold, legendSize)
	if err != nil {
		return faces{}, err
	}
	title, err := newFace(regular, titleSize)
	if err != nil {
		return faces{}, err
	}

	return faces{axis: axis, legend: legend, title: title}, nil
}

func newFace(f *opentype.Font, size float64) (font.Face, error) {
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("create %gpt font face: %w", size, err)
	}
	return face, nil
}

// NewAxisMeasurer returns a Measurer using the face category and tick labels are drawn with.
func NewAxisMeasurer() (Measurer, error) {
	f, err := parseRegular()
	if err != nil {
		return nil, fmt.Errorf("parse regular font: %w", err)
	}
	face, err := newFace(f, axisLabelSize)
	if err != nil {
		return nil, err
	}
	return FaceMeasurer{Face: face}, nil
}
