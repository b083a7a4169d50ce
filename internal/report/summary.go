package report

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fmueller/whisperbench/internal/bench"
	"github.com/fmueller/whisperbench/internal/whisper"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Summary renders the human-readable results file: run metadata, a timing
// table with per-model recommendations, then skipped models and failures.
func Summary(r *bench.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Run:       %s\n", r.RunID)
	fmt.Fprintf(&b, "Audio:     %s\n", filepath.Base(r.AudioPath))
	if r.AudioDuration > 0 {
		fmt.Fprintf(&b, "Duration:  %s\n", FormatClock(r.AudioDuration))
	}
	fmt.Fprintf(&b, "Language:  %s\n", languageName(r.Language))
	if !r.Finished.IsZero() {
		fmt.Fprintf(&b, "Wall time: %s\n", r.Finished.Sub(r.Started).Round(100*time.Millisecond))
	}
	b.WriteString("\n")

	if r.Table.Len() > 0 {
		b.WriteString("This tool is designed to let you know when to use the GPU and when not to. Here's what we found:\n\n")
		b.WriteString(resultsTable(r))
		b.WriteString("\n")
	} else {
		b.WriteString("No results were recorded.\n")
	}

	if len(r.Skipped) > 0 {
		b.WriteString("\nSkipped models:\n")
		for _, skip := range r.Skipped {
			fmt.Fprintf(&b, "  %s: %v\n", skip.Model, skip.Reason)
		}
	}
	if len(r.Failures) > 0 {
		b.WriteString("\nFailed cells:\n")
		for _, failure := range r.Failures {
			fmt.Fprintf(&b, "  %s\n", failure.Error())
		}
	}
	return b.String()
}

func resultsTable(r *bench.Report) string {
	withRTF := r.AudioDuration > 0
	headers := []string{"Model", "CPU (s)", "GPU (s)", "Accuracy (%)"}
	aligns := []Alignment{AlignLeft, AlignRight, AlignRight, AlignRight}
	if withRTF {
		headers = append(headers, "Best RTF")
		aligns = append(aligns, AlignRight)
	}
	headers = append(headers, "Recommendation")
	aligns = append(aligns, AlignLeft)

	var rows [][]string
	for _, model := range r.Table.Models() {
		acc, _ := r.Table.Accuracy(model)
		row := []string{
			model,
			elapsedCell(r.Table, model, whisper.CPU),
			elapsedCell(r.Table, model, whisper.CUDA),
			fmt.Sprintf("%.2f", acc),
		}
		if withRTF {
			row = append(row, fmt.Sprintf("%.2f", bestElapsed(r.Table, model).Seconds()/r.AudioDuration.Seconds()))
		}

		speed, accuracy := recommendation(r.Table, model)
		rows = append(rows, append(row, speed))
		if accuracy != "" {
			follow := make([]string, len(headers))
			follow[len(follow)-1] = accuracy
			rows = append(rows, follow)
		}
	}
	return RenderTable(headers, rows, aligns)
}

func recommendation(t *bench.Table, model string) (speed, accuracy string) {
	rec, ok := bench.Recommend(t, model)
	if !ok {
		return "", ""
	}
	slower := whisper.CUDA
	if rec.Faster == whisper.CUDA {
		slower = whisper.CPU
	}
	speed = fmt.Sprintf("%s is %.2f percent faster than %s", rec.Faster.Label(), rec.Percent, slower.Label())

	switch {
	case rec.CPU.Accuracy > rec.GPU.Accuracy:
		accuracy = "CPU is more accurate than GPU"
	case rec.CPU.Accuracy < rec.GPU.Accuracy:
		accuracy = "GPU is more accurate than CPU"
	default:
		accuracy = "CPU and GPU are equally accurate"
	}
	return speed, accuracy
}

func elapsedCell(t *bench.Table, model string, device whisper.Device) string {
	res, ok := t.Get(model, device)
	if !ok {
		return "-"
	}
	return fmt.Sprintf("%.2f", res.Elapsed.Seconds())
}

func bestElapsed(t *bench.Table, model string) (best time.Duration) {
	for _, res := range t.Results() {
		if res.Model == model && (best == 0 || res.Elapsed < best) {
			best = res.Elapsed
		}
	}
	return best
}

// FormatClock renders d as m:ss, or h:mm:ss from one hour on.
func FormatClock(d time.Duration) string {
	total := int(d / time.Second)
	hours, minutes, seconds := total/3600, total%3600/60, total%60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

func languageName(code string) string {
	if lang, ok := whisper.LookupLanguage(code); ok {
		return lang.Name
	}
	return code
}

type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// RenderTable draws rows under headers as a box table. Short rows are
// padded with empty cells.
func RenderTable(headers []string, rows [][]string, aligns []Alignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)

	header := make(table.Row, columns)
	for i := range columns {
		header[i] = headers[i]
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}
