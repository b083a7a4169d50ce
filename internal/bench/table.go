package bench

import (
	"fmt"
	"slices"
	"time"

	"github.com/fmueller/whisperbench/internal/whisper"
)

// Result is one measured cell of the models x devices matrix.
type Result struct {
	Model    string
	Device   whisper.Device
	Elapsed  time.Duration
	Accuracy float64
}

type cell struct {
	model  string
	device whisper.Device
}

// Table holds results keyed by (model, device). Entries are write-once and
// iterate in insertion order.
type Table struct {
	order []cell
	rows  map[cell]Result
}

func NewTable() *Table {
	return &Table{rows: make(map[cell]Result)}
}

func (t *Table) Record(r Result) error {
	key := cell{model: r.Model, device: r.Device}
	if _, ok := t.rows[key]; ok {
		return fmt.Errorf("result for %s on %s already recorded", r.Model, r.Device)
	}
	t.order = append(t.order, key)
	t.rows[key] = r
	return nil
}

func (t *Table) Get(model string, device whisper.Device) (Result, bool) {
	if t == nil {
		return Result{}, false
	}
	r, ok := t.rows[cell{model: model, device: device}]
	return r, ok
}

func (t *Table) Results() []Result {
	if t == nil {
		return nil
	}
	out := make([]Result, 0, len(t.order))
	for _, key := range t.order {
		out = append(out, t.rows[key])
	}
	return out
}

// Models lists models in the order their first result was recorded.
func (t *Table) Models() []string {
	var models []string
	for _, r := range t.Results() {
		if !slices.Contains(models, r.Model) {
			models = append(models, r.Model)
		}
	}
	return models
}

// Devices lists every device with at least one result, CPU first.
func (t *Table) Devices() []whisper.Device {
	var devices []whisper.Device
	for _, r := range t.Results() {
		if !slices.Contains(devices, r.Device) {
			devices = append(devices, r.Device)
		}
	}
	slices.Sort(devices)
	return devices
}

// Accuracy returns the model's accuracy; all devices of a model share it.
func (t *Table) Accuracy(model string) (float64, bool) {
	for _, r := range t.Results() {
		if r.Model == model {
			return r.Accuracy, true
		}
	}
	return 0, false
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.order)
}
