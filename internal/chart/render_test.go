package chart

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleDataset() *Dataset {
	data := NewDataset()
	rows := []struct {
		model    string
		cpu, gpu float64
		accuracy float64
	}{
		{model: "tiny", cpu: 1.78, gpu: 1.27, accuracy: 94.12},
		{model: "base", cpu: 4.10, gpu: 1.05, accuracy: 93.14},
		{model: "small", cpu: 8.97, gpu: 1.90, accuracy: 93.14},
		{model: "medium", cpu: 27.68, gpu: 3.91, accuracy: 96.00},
		{model: "large-v3", cpu: 52.50, gpu: 140.59, accuracy: 92.23},
	}
	for _, row := range rows {
		data.Set(row.model, Magnitude("CPU"), row.cpu)
		data.Set(row.model, Magnitude("GPU"), row.gpu)
		data.Set(row.model, Accuracy(), row.accuracy)
	}
	return data
}

func countColor(img *image.RGBA, want color.RGBA) int {
	n := 0
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.RGBAAt(x, y) == want {
				n++
			}
		}
	}
	return n
}

func TestRenderMatchesRequestedSize(t *testing.T) {
	t.Parallel()

	for _, size := range []image.Point{image.Pt(800, 700), image.Pt(1024, 600), image.Pt(320, 240)} {
		img, err := Render("Accuracy and Processing Times", sampleDataset(), size)
		require.NoError(t, err)
		require.Equal(t, image.Rectangle{Max: size}, img.Bounds())
	}
}

func TestRenderDrawsBorderAxesAndSeries(t *testing.T) {
	t.Parallel()

	img, err := Render("Accuracy and Processing Times", sampleDataset(), image.Pt(800, 700))
	require.NoError(t, err)

	require.Equal(t, black, img.RGBAAt(1, 1))
	require.Equal(t, white, img.RGBAAt(400, 45))

	for i := 0; i < 3; i++ {
		require.Greater(t, countColor(img, SeriesColor(i)), markerSize*markerSize, "series %d", i)
	}
	require.Greater(t, countColor(img, accent), 0)
}

func TestRenderToleratesMissingAndZeroValues(t *testing.T) {
	t.Parallel()

	data := NewDataset()
	data.Set("tiny", Magnitude("CPU"), 0)
	data.Set("tiny", Accuracy(), 0)
	data.Set("base", Magnitude("GPU"), 3)
	data.Set("small", Magnitude("CPU"), 4)

	img, err := Render("", data, image.Pt(400, 300))
	require.NoError(t, err)
	require.Equal(t, image.Rect(0, 0, 400, 300), img.Bounds())
}

func TestRenderRequiresCategories(t *testing.T) {
	t.Parallel()

	_, err := Render("empty", NewDataset(), image.Pt(800, 700))
	require.ErrorIs(t, err, ErrNoCategories)
}

func TestDatasetKeepsFirstSeenOrder(t *testing.T) {
	t.Parallel()

	data := NewDataset()
	data.Set("b", Magnitude("GPU"), 1)
	data.Set("a", Magnitude("CPU"), 2)
	data.Set("b", Accuracy(), 90)
	data.Set("a", Magnitude("GPU"), 3)

	require.Equal(t, []string{"b", "a"}, data.Categories())
	require.Equal(t, []Metric{Magnitude("GPU"), Magnitude("CPU"), Accuracy()}, data.Metrics())

	v, ok := data.Value("a", Magnitude("GPU"))
	require.True(t, ok)
	require.Equal(t, 3.0, v)
	_, ok = data.Value("a", Accuracy())
	require.False(t, ok)

	magnitude, accuracy := data.maxima()
	require.Equal(t, 3.0, magnitude)
	require.Equal(t, 100.0, accuracy)
}
