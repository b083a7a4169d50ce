package cli

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmueller/whisperbench/internal/align"
	"github.com/fmueller/whisperbench/internal/audio"
	"github.com/fmueller/whisperbench/internal/bench"
	"github.com/fmueller/whisperbench/internal/chart"
	"github.com/fmueller/whisperbench/internal/config"
	"github.com/fmueller/whisperbench/internal/report"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newEvaluateCmd(app *appState) *cobra.Command {
	var referencePath string

	cmd := &cobra.Command{
		Use:   "evaluate <audio-file>",
		Short: "Benchmark models on an audio file against its reference transcript",
		Long: `Transcribe the audio with every configured model on every configured device,
time each run, score the transcripts against the reference, and write the
results summary, CSV data, HTML comparisons, and chart next to the audio.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runEvaluate(cmd.Context(), cmd.OutOrStdout(), args[0], referencePath)
		},
	}

	bindBenchmarkFlags(cmd, app)
	bindChartFlags(cmd, app)
	cmd.Flags().StringVar(&referencePath, "reference", "", "Reference transcript (default: <audio>_reference.txt next to the audio)")
	cmd.Flags().BoolVar(&app.noTranscripts, "no-transcripts", false, "Do not write per-model transcripts")

	return cmd
}

func (a *appState) runEvaluate(ctx context.Context, out io.Writer, audioArg, referenceArg string) error {
	audioPath, info, err := a.inspectAudio(audioArg)
	if err != nil {
		return err
	}

	referencePath := referenceArg
	if referencePath == "" {
		referencePath = report.ReferencePath(filepath.Dir(audioPath), report.Stem(audioPath))
	}
	reference, err := os.ReadFile(referencePath)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("reference transcript %s not found; run `whisperbench reference %s` first or pass --reference", referencePath, audioArg)
	}
	if err != nil {
		return fmt.Errorf("read reference transcript: %w", err)
	}

	language, err := a.languageCode()
	if err != nil {
		return err
	}
	devices, err := a.cfg.DeviceList()
	if err != nil {
		return err
	}
	engine, err := a.engineFn()
	if err != nil {
		return err
	}
	store, err := a.modelsFn()
	if err != nil {
		return err
	}

	plan := bench.Plan{
		AudioPath:     audioPath,
		AudioDuration: info.Duration,
		Reference:     string(reference),
		Models:        a.cfg.Models.Names,
		Devices:       devices,
		Language:      language,
		Options:       a.cfg.DecodeOptions(),
	}

	progress := startSpinner(a.progressEnabled(), "Preparing")
	runner := &bench.Runner{
		Engine:   engine,
		Models:   store,
		Aligner:  align.Aligner{},
		Logger:   a.log(),
		Observer: a.benchObserver(progress),
		Now:      a.now,
	}
	result, runErr := runner.Run(ctx, plan)
	progress.Stop()
	if result == nil {
		return runErr
	}

	outputDir := a.cfg.Output.Dir
	if outputDir == "" {
		outputDir = filepath.Dir(audioPath)
	}
	graph, err := chart.Render(a.cfg.Chart.Title, result.Dataset(), image.Pt(a.cfg.Chart.Width, a.cfg.Chart.Height))
	switch {
	case errors.Is(err, chart.ErrNoCategories):
		a.log().Warn("no results to chart")
	case err != nil:
		return fmt.Errorf("render chart: %w", err)
	}

	opts := report.SaveOptions{Dir: outputDir, Transcripts: a.cfg.Output.Transcripts}
	if graph != nil {
		opts.Graph = graph
	}
	artifacts, err := report.Save(result, opts)
	if err != nil {
		return err
	}

	fmt.Fprint(out, report.Summary(result))
	fmt.Fprintln(out)
	for _, path := range artifactPaths(artifacts) {
		fmt.Fprintf(out, "Wrote %s\n", path)
	}

	if runErr != nil {
		return runErr
	}
	if result.Table.Len() == 0 && len(result.Failures) > 0 {
		return fmt.Errorf("no model produced a result: %w", result.Failures[0])
	}
	return nil
}

// inspectAudio resolves the audio path and rejects unreadable or silent WAV
// input. Other containers are passed to whisper unchecked.
func (a *appState) inspectAudio(audioArg string) (string, audio.Info, error) {
	audioPath, err := config.ExpandPath(strings.TrimSpace(audioArg))
	if err != nil {
		return "", audio.Info{}, err
	}
	if audioPath == "" {
		return "", audio.Info{}, errors.New("audio file is required")
	}
	if _, err := os.Stat(audioPath); err != nil {
		return "", audio.Info{}, fmt.Errorf("audio file: %w", err)
	}

	info, err := a.inspectFn(audioPath)
	if err != nil {
		if strings.EqualFold(filepath.Ext(audioPath), ".wav") {
			return "", audio.Info{}, fmt.Errorf("read audio %s: %w", audioPath, err)
		}
		a.log().Debug("audio is not a readable WAV file; duration unknown", zap.String("path", audioPath), zap.Error(err))
		return audioPath, audio.Info{}, nil
	}
	if info.Silent(audio.SilenceThresholdDBFS) {
		return "", audio.Info{}, fmt.Errorf("audio %s is silent (rms %.1f dBFS, peak %.1f dBFS)", audioPath, info.RMSdBFS, info.PeakdBFS)
	}
	a.log().Debug("audio inspected",
		zap.String("path", audioPath),
		zap.Duration("duration", info.Duration),
		zap.Int("sample_rate", info.SampleRate),
		zap.Int("channels", info.Channels),
	)
	return audioPath, info, nil
}

// benchObserver mirrors cell progress on the spinner and in debug logs.
func (a *appState) benchObserver(progress *spinner) bench.Observer {
	return func(ev bench.Event) {
		switch ev.State {
		case bench.DownloadingModel:
			progress.Describe(fmt.Sprintf("Downloading %s: %d%%", ev.Model, int(ev.Fraction*100)))
		case bench.Transcribing:
			label := fmt.Sprintf("Processing with %s - %s", ev.Model, ev.Device)
			if ev.Position == 0 {
				progress.Track(label)
			} else {
				progress.Describe(label + " : " + report.FormatClock(ev.Position))
			}
		case bench.Scoring:
			progress.Describe("Scoring " + ev.Model)
		}

		fields := []zap.Field{
			zap.String("model", ev.Model),
			zap.Stringer("device", ev.Device),
			zap.Stringer("state", ev.State),
		}
		if ev.Position > 0 {
			fields = append(fields, zap.Duration("position", ev.Position))
		}
		if ev.Err != nil {
			fields = append(fields, zap.Error(ev.Err))
		}
		if ev.State == bench.DownloadingModel && ev.Fraction > 0 {
			return
		}
		a.log().Debug("cell update", fields...)
	}
}

func artifactPaths(a report.Artifacts) []string {
	paths := []string{a.Results, a.Data, a.Comparisons}
	if a.Graph != "" {
		paths = append(paths, a.Graph)
	}
	return append(paths, a.Transcripts...)
}
