package report

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/fmueller/whisperbench/internal/bench"
	"github.com/fmueller/whisperbench/internal/whisper"
)

// WriteCSV writes one row per model: elapsed seconds per device and the
// model accuracy. The GPU column is present only when a GPU result exists.
func WriteCSV(w io.Writer, table *bench.Table) error {
	devices := []whisper.Device{whisper.CPU}
	if slices.Contains(table.Devices(), whisper.CUDA) {
		devices = append(devices, whisper.CUDA)
	}

	header := []string{"Model"}
	for _, device := range devices {
		header = append(header, device.Label())
	}
	header = append(header, "Accuracy")
	if _, err := fmt.Fprintln(w, joinCSV(header)); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, model := range table.Models() {
		fields := []string{model}
		for _, device := range devices {
			if res, ok := table.Get(model, device); ok {
				fields = append(fields, fmt.Sprintf("%.2f", res.Elapsed.Seconds()))
			} else {
				fields = append(fields, "")
			}
		}
		acc, _ := table.Accuracy(model)
		fields = append(fields, fmt.Sprintf("%.2f", acc))
		if _, err := fmt.Fprintln(w, joinCSV(fields)); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	return nil
}

// joinCSV separates fields with ", " and quotes only those that need it, so
// the common case stays readable and ReadCSV still splits names with commas.
func joinCSV(fields []string) string {
	quoted := make([]string, len(fields))
	for i, field := range fields {
		quoted[i] = csvField(field)
	}
	return strings.Join(quoted, ", ")
}

func csvField(field string) string {
	if field == "" {
		return field
	}
	var sb strings.Builder
	cw := csv.NewWriter(&sb)
	// Writing to a strings.Builder cannot fail.
	_ = cw.Write([]string{field})
	cw.Flush()
	return strings.TrimSuffix(sb.String(), "\n")
}

// ReadCSV parses a file written by WriteCSV back into a result table.
func ReadCSV(r io.Reader) (*bench.Table, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("csv is empty")
		}
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) < 3 || header[0] != "Model" || header[len(header)-1] != "Accuracy" {
		return nil, fmt.Errorf("unexpected csv header %q", strings.Join(header, ","))
	}

	devices := make([]whisper.Device, 0, len(header)-2)
	for _, label := range header[1 : len(header)-1] {
		device, err := whisper.ParseDevice(label)
		if err != nil {
			return nil, fmt.Errorf("csv header: %w", err)
		}
		devices = append(devices, device)
	}

	table := bench.NewTable()
	for line := 2; ; line++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv line %d: %w", line, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("csv line %d: expected %d fields, got %d", line, len(header), len(record))
		}

		accuracy, err := strconv.ParseFloat(strings.TrimSpace(record[len(record)-1]), 64)
		if err != nil {
			return nil, fmt.Errorf("csv line %d: accuracy: %w", line, err)
		}
		for i, device := range devices {
			value := strings.TrimSpace(record[i+1])
			if value == "" {
				continue
			}
			seconds, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return nil, fmt.Errorf("csv line %d: %s: %w", line, device.Label(), err)
			}
			if err := table.Record(bench.Result{
				Model:    strings.TrimSpace(record[0]),
				Device:   device,
				Elapsed:  time.Duration(seconds * float64(time.Second)),
				Accuracy: accuracy,
			}); err != nil {
				return nil, fmt.Errorf("csv line %d: %w", line, err)
			}
		}
	}
	return table, nil
}
