package chart

import "slices"

type metricKind uint8

const (
	magnitudeMetric metricKind = iota
	accuracyMetric
)

// Metric names one plotted series. Magnitude metrics share the left axis;
// the accuracy metric is plotted on the fixed 0-100 right axis.
type Metric struct {
	kind metricKind
	name string
}

func Magnitude(name string) Metric {
	return Metric{kind: magnitudeMetric, name: name}
}

func Accuracy() Metric {
	return Metric{kind: accuracyMetric, name: "Accuracy"}
}

func (m Metric) IsAccuracy() bool {
	return m.kind == accuracyMetric
}

func (m Metric) String() string {
	return m.name
}

// Dataset is an ordered set of categories, each with values for some metrics.
// Categories and metrics keep the order in which they were first set.
type Dataset struct {
	categories []string
	metrics    []Metric
	values     map[string]map[Metric]float64
}

func NewDataset() *Dataset {
	return &Dataset{values: make(map[string]map[Metric]float64)}
}

func (d *Dataset) Set(category string, metric Metric, value float64) {
	row, ok := d.values[category]
	if !ok {
		row = make(map[Metric]float64)
		d.values[category] = row
		d.categories = append(d.categories, category)
	}
	if !slices.Contains(d.metrics, metric) {
		d.metrics = append(d.metrics, metric)
	}
	row[metric] = value
}

func (d *Dataset) Value(category string, metric Metric) (float64, bool) {
	v, ok := d.values[category][metric]
	return v, ok
}

func (d *Dataset) Categories() []string {
	return slices.Clone(d.categories)
}

func (d *Dataset) Metrics() []Metric {
	return slices.Clone(d.metrics)
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.categories)
}

// maxima returns the largest magnitude value and the accuracy axis maximum,
// which never drops below 100.
func (d *Dataset) maxima() (magnitude, accuracy float64) {
	accuracy = 100
	for _, row := range d.values {
		for metric, value := range row {
			if metric.IsAccuracy() {
				accuracy = max(accuracy, value)
				continue
			}
			magnitude = max(magnitude, value)
		}
	}
	return magnitude, accuracy
}
