package bench

import (
	"time"

	"github.com/fmueller/whisperbench/internal/chart"
	"github.com/fmueller/whisperbench/internal/scoring"
	"github.com/fmueller/whisperbench/internal/whisper"
	"github.com/google/uuid"
)

// Comparison is the scored alignment of one model's transcript against the
// reference.
type Comparison struct {
	Model  string
	Device whisper.Device
	Pairs  []scoring.Pair
	Score  scoring.Result
}

// Transcript is the sentence-per-line hypothesis produced by one cell.
type Transcript struct {
	Model  string
	Device whisper.Device
	Text   string
}

type Report struct {
	RunID         uuid.UUID
	AudioPath     string
	AudioDuration time.Duration
	Language      string
	Started       time.Time
	Finished      time.Time
	Table         *Table
	Skipped       []Skip
	Failures      []Failure
	Comparisons   []Comparison
	Transcripts   []Transcript
}

func newReport(plan Plan, started time.Time) *Report {
	return &Report{
		RunID:         uuid.New(),
		AudioPath:     plan.AudioPath,
		AudioDuration: plan.AudioDuration,
		Language:      plan.Language,
		Started:       started,
		Table:         NewTable(),
	}
}

// Dataset converts the results into chart series: elapsed seconds per
// device label and the model accuracy.
func (r *Report) Dataset() *chart.Dataset {
	return DatasetFromTable(r.Table)
}

func DatasetFromTable(t *Table) *chart.Dataset {
	data := chart.NewDataset()
	for _, model := range t.Models() {
		for _, device := range t.Devices() {
			if res, ok := t.Get(model, device); ok {
				data.Set(model, chart.Magnitude(device.Label()), res.Elapsed.Seconds())
			}
		}
		if acc, ok := t.Accuracy(model); ok {
			data.Set(model, chart.Accuracy(), acc)
		}
	}
	return data
}

// Recommendation compares the CPU and GPU timings of one model.
type Recommendation struct {
	Model   string
	CPU     Result
	GPU     Result
	Faster  whisper.Device
	Percent float64
}

// Recommend reports which device ran model faster and by how much, as
// 1 - faster/slower. It needs results on both devices.
func Recommend(t *Table, model string) (Recommendation, bool) {
	cpu, ok := t.Get(model, whisper.CPU)
	if !ok {
		return Recommendation{}, false
	}
	gpu, ok := t.Get(model, whisper.CUDA)
	if !ok {
		return Recommendation{}, false
	}

	rec := Recommendation{Model: model, CPU: cpu, GPU: gpu}
	faster, slower := cpu.Elapsed, gpu.Elapsed
	rec.Faster = whisper.CPU
	if gpu.Elapsed < cpu.Elapsed {
		faster, slower = gpu.Elapsed, cpu.Elapsed
		rec.Faster = whisper.CUDA
	}
	if slower > 0 {
		rec.Percent = (1 - faster.Seconds()/slower.Seconds()) * 100
	}
	return rec, true
}
