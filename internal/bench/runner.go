package bench

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fmueller/whisperbench/internal/align"
	"github.com/fmueller/whisperbench/internal/scoring"
	"github.com/fmueller/whisperbench/internal/transcript"
	"github.com/fmueller/whisperbench/internal/whisper"
	"go.uber.org/zap"
)

// Plan is the configuration of one benchmark run.
type Plan struct {
	AudioPath string
	// AudioDuration, when known, lets reports show real-time factors.
	AudioDuration time.Duration
	// Reference is the ground-truth transcript, one sentence per line.
	Reference string
	Models    []string
	Devices   []whisper.Device
	Language  string
	Options   whisper.DecodeOptions
}

func (p Plan) validate() error {
	if strings.TrimSpace(p.AudioPath) == "" {
		return errors.New("audio path is required")
	}
	if len(p.Models) == 0 {
		return errors.New("at least one model is required")
	}
	if len(p.Devices) == 0 {
		return errors.New("at least one device is required")
	}
	return nil
}

type Runner struct {
	Engine   whisper.Engine
	Models   ModelStore
	Aligner  align.Aligner
	Logger   *zap.Logger
	Observer Observer
	Now      func() time.Time
}

// Run measures every model on every device in plan order. Cell faults are
// recorded in the report and do not stop the run. On cancellation the
// partial report is returned together with the context error.
func (r *Runner) Run(ctx context.Context, plan Plan) (*Report, error) {
	if err := plan.validate(); err != nil {
		return nil, err
	}

	resolved := make([]whisper.ResolvedModel, 0, len(plan.Models))
	for _, ref := range plan.Models {
		model, err := r.Models.Resolve(ref)
		if err != nil {
			return nil, fmt.Errorf("resolve model %q: %w", ref, err)
		}
		resolved = append(resolved, model)
	}

	report := newReport(plan, r.now())
	reference := transcript.Tokenize(plan.Reference)
	defer func() { report.Finished = r.now() }()

	for _, model := range resolved {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := r.runModel(ctx, plan, model, reference, report); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (r *Runner) runModel(ctx context.Context, plan Plan, model whisper.ResolvedModel, reference []string, report *Report) error {
	log := r.log().With(zap.String("model", model.Name))

	if !r.Engine.SupportsLanguage(model, plan.Language) {
		reason := fmt.Errorf("%w: %q", whisper.ErrUnsupportedLanguage, plan.Language)
		report.Skipped = append(report.Skipped, Skip{Model: model.Name, Reason: reason})
		for _, device := range plan.Devices {
			r.emit(Event{Model: model.Name, Device: device, State: Skipped, Err: reason})
		}
		log.Warn("language not supported by model; skipping", zap.String("language", plan.Language))
		return nil
	}

	if model.NeedsDownload {
		first := plan.Devices[0]
		r.emit(Event{Model: model.Name, Device: first, State: DownloadingModel})
		fetched, err := r.Models.Fetch(ctx, model, func(fraction float64) {
			r.emit(Event{Model: model.Name, Device: first, State: DownloadingModel, Fraction: fraction})
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			for _, device := range plan.Devices {
				r.fail(report, model.Name, device, err)
			}
			return nil
		}
		model = fetched
	}

	type measured struct {
		device   whisper.Device
		elapsed  time.Duration
		segments []whisper.Segment
	}
	var done []measured

	for _, device := range plan.Devices {
		if err := ctx.Err(); err != nil {
			return err
		}
		segments, elapsed, err := r.runCell(ctx, plan, model, device)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.fail(report, model.Name, device, err)
			continue
		}
		log.Info("transcription finished", zap.Stringer("device", device), zap.Duration("elapsed", elapsed))
		done = append(done, measured{device: device, elapsed: elapsed, segments: segments})
	}
	if len(done) == 0 {
		return nil
	}

	// Device variants of a model produce the same text, so only the first
	// successful cell is scored.
	scored := done[0]
	r.emit(Event{Model: model.Name, Device: scored.device, State: Scoring})
	text := transcript.Sentences(scored.segments)
	pairs, score := scoring.Compare(r.Aligner, reference, transcript.Tokenize(text))
	report.Comparisons = append(report.Comparisons, Comparison{
		Model:  model.Name,
		Device: scored.device,
		Pairs:  pairs,
		Score:  score,
	})
	if score.Degenerate() {
		log.Warn("nothing to compare; accuracy reported as 0")
	}

	for _, m := range done {
		cellText := text
		if m.device != scored.device {
			cellText = transcript.Sentences(m.segments)
		}
		report.Transcripts = append(report.Transcripts, Transcript{Model: model.Name, Device: m.device, Text: cellText})
		if err := report.Table.Record(Result{
			Model:    model.Name,
			Device:   m.device,
			Elapsed:  m.elapsed,
			Accuracy: score.Accuracy,
		}); err != nil {
			return err
		}
		r.emit(Event{Model: model.Name, Device: m.device, State: Recorded})
	}
	return nil
}

func (r *Runner) runCell(ctx context.Context, plan Plan, model whisper.ResolvedModel, device whisper.Device) ([]whisper.Segment, time.Duration, error) {
	r.emit(Event{Model: model.Name, Device: device, State: Pending})

	session, err := r.Engine.Open(ctx, model, device)
	if err != nil {
		return nil, 0, fmt.Errorf("load model on %s: %w", device, err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			r.log().Warn("failed to release session", zap.String("model", model.Name), zap.Stringer("device", device), zap.Error(err))
		}
	}()

	r.emit(Event{Model: model.Name, Device: device, State: Transcribing})
	started := r.now()
	segments, err := session.Transcribe(ctx, whisper.TranscriptionRequest{
		AudioPath: plan.AudioPath,
		Language:  plan.Language,
		Options:   plan.Options,
	}, func(seg whisper.Segment) {
		r.emit(Event{Model: model.Name, Device: device, State: Transcribing, Position: seg.End})
	})
	if err != nil {
		return nil, 0, err
	}
	return segments, r.now().Sub(started), nil
}

func (r *Runner) fail(report *Report, model string, device whisper.Device, err error) {
	report.Failures = append(report.Failures, Failure{Model: model, Device: device, Err: err})
	r.emit(Event{Model: model, Device: device, State: Aborted, Err: err})
	r.log().Warn("cell aborted", zap.String("model", model), zap.Stringer("device", device), zap.Error(err))
}

func (r *Runner) emit(ev Event) {
	if r.Observer != nil {
		r.Observer(ev)
	}
}

func (r *Runner) now() time.Time {
	if r.Now == nil {
		return time.Now()
	}
	return r.Now()
}

func (r *Runner) log() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}
