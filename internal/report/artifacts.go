package report

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmueller/whisperbench/internal/bench"
	"github.com/fmueller/whisperbench/internal/whisper"
)

// Artifacts are the files written for one benchmark run, named after the
// audio file's stem.
type Artifacts struct {
	Results     string
	Data        string
	Comparisons string
	Graph       string
	Transcripts []string
}

func Stem(audioPath string) string {
	base := filepath.Base(audioPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func TranscriptPath(dir, stem string, device whisper.Device, model string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s_%s.txt", stem, device, sanitize(model)))
}

func ReferencePath(dir, stem string) string {
	return filepath.Join(dir, stem+"_reference.txt")
}

type SaveOptions struct {
	Dir         string
	Graph       image.Image
	Transcripts bool
}

// Save writes the results summary, CSV data, comparison HTML, the chart
// when one is given, and optionally the per-cell transcripts.
func Save(r *bench.Report, opts SaveOptions) (Artifacts, error) {
	if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
		return Artifacts{}, fmt.Errorf("create output directory: %w", err)
	}
	stem := Stem(r.AudioPath)
	out := Artifacts{
		Results:     filepath.Join(opts.Dir, stem+"_results.txt"),
		Data:        filepath.Join(opts.Dir, stem+"_data.csv"),
		Comparisons: filepath.Join(opts.Dir, stem+"_comparisons.html"),
	}

	if err := writeFile(out.Results, func(w io.Writer) error {
		_, err := io.WriteString(w, Summary(r))
		return err
	}); err != nil {
		return out, err
	}
	if err := writeFile(out.Data, func(w io.Writer) error {
		return WriteCSV(w, r.Table)
	}); err != nil {
		return out, err
	}
	if err := writeFile(out.Comparisons, func(w io.Writer) error {
		return WriteHTML(w, SectionsFor(filepath.Base(r.AudioPath), r.Comparisons))
	}); err != nil {
		return out, err
	}
	if opts.Graph != nil {
		out.Graph = filepath.Join(opts.Dir, stem+"_graph.png")
		if err := WritePNG(out.Graph, opts.Graph); err != nil {
			return out, err
		}
	}
	if opts.Transcripts {
		for _, tr := range r.Transcripts {
			path := TranscriptPath(opts.Dir, stem, tr.Device, tr.Model)
			if err := WriteText(path, tr.Text); err != nil {
				return out, err
			}
			out.Transcripts = append(out.Transcripts, path)
		}
	}
	return out, nil
}

func WritePNG(path string, img image.Image) error {
	return writeFile(path, func(w io.Writer) error {
		return png.Encode(w, img)
	})
}

// WriteText writes UTF-8 text, replacing any existing file.
func WriteText(path, content string) error {
	return writeFile(path, func(w io.Writer) error {
		_, err := io.WriteString(w, content)
		return err
	})
}

// writeFile renders into memory first so a failed render leaves no
// truncated file behind.
func writeFile(path string, render func(io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(&buf); err != nil {
		return fmt.Errorf("render %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// sanitize keeps model paths usable inside a file name.
func sanitize(model string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', ' ':
			return '_'
		}
		return r
	}, model)
}
