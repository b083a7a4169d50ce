package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmueller/whisperbench/internal/report"
	"github.com/fmueller/whisperbench/internal/transcript"
	"github.com/fmueller/whisperbench/internal/whisper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type referenceOptions struct {
	model  string
	device string
	out    string
	force  bool
}

func newReferenceCmd(app *appState) *cobra.Command {
	var opts referenceOptions

	cmd := &cobra.Command{
		Use:   "reference <audio-file>",
		Short: "Create a reference transcript with the most accurate model",
		Long: `Transcribe the audio once with the reference model and write it, one sentence
per line, to <audio>_reference.txt. Review and correct the file before
evaluating, since every accuracy score is measured against it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return app.runReference(cmd.Context(), cmd.OutOrStdout(), args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.model, "model", "", "Reference model name or path (default from config, large-v3)")
	cmd.Flags().StringVar(&opts.device, "device", "", "Device to transcribe on (default: first configured device)")
	cmd.Flags().StringVar(&opts.out, "out", "", "Output file (default: <audio>_reference.txt next to the audio)")
	cmd.Flags().BoolVar(&opts.force, "force", false, "Overwrite an existing reference transcript")
	cmd.Flags().IntVar(&app.threads, "threads", 0, "Decoder threads; 0 lets whisper decide")

	return cmd
}

func (a *appState) runReference(ctx context.Context, out io.Writer, audioArg string, opts referenceOptions) error {
	audioPath, _, err := a.inspectAudio(audioArg)
	if err != nil {
		return err
	}

	target := opts.out
	if target == "" {
		target = report.ReferencePath(filepath.Dir(audioPath), report.Stem(audioPath))
	}
	if _, err := os.Stat(target); err == nil && !opts.force {
		return fmt.Errorf("reference transcript %s already exists; pass --force to replace it", target)
	}

	modelRef := strings.TrimSpace(opts.model)
	if modelRef == "" {
		modelRef = a.cfg.Models.Reference
	}
	device, err := a.referenceDevice(opts.device)
	if err != nil {
		return err
	}
	language, err := a.languageCode()
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

	model, err := store.Resolve(modelRef)
	if err != nil {
		return err
	}
	if !engine.SupportsLanguage(model, language) {
		return fmt.Errorf("%w: model %s cannot transcribe %q", whisper.ErrUnsupportedLanguage, model.Name, language)
	}

	progress := startSpinner(a.progressEnabled(), "Preparing")
	defer progress.Stop()

	model, err = store.Fetch(ctx, model, func(fraction float64) {
		progress.Describe(fmt.Sprintf("Downloading %s: %d%%", model.Name, int(fraction*100)))
	})
	if err != nil {
		return err
	}

	session, err := engine.Open(ctx, model, device)
	if err != nil {
		return fmt.Errorf("load model %s on %s: %w", model.Name, device, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			a.log().Warn("failed to release session", zap.Error(err))
		}
	}()

	progress.Track(fmt.Sprintf("Processing with %s - %s", model.Name, device))
	started := a.now()
	segments, err := session.Transcribe(ctx, whisper.TranscriptionRequest{
		AudioPath: audioPath,
		Language:  language,
		Options:   a.cfg.DecodeOptions(),
	}, nil)
	if err != nil {
		return fmt.Errorf("transcribe %s: %w", audioPath, err)
	}
	elapsed := a.now().Sub(started)
	progress.Stop()

	text := transcript.Sentences(segments)
	if strings.TrimSpace(text) == "" {
		return errors.New("reference model produced no text")
	}
	if err := report.WriteText(target, text); err != nil {
		return err
	}

	a.log().Info("reference transcript written",
		zap.String("model", model.Name),
		zap.Stringer("device", device),
		zap.Duration("elapsed", elapsed),
		zap.String("path", target),
	)
	fmt.Fprintf(out, "Wrote %s (%s on %s in %s)\n", target, model.Name, device.Label(), report.FormatClock(elapsed))
	return nil
}

func (a *appState) referenceDevice(flag string) (whisper.Device, error) {
	if strings.TrimSpace(flag) != "" {
		return whisper.ParseDevice(flag)
	}
	devices, err := a.cfg.DeviceList()
	if err != nil {
		return 0, err
	}
	return devices[0], nil
}
