package bench

import (
	"context"
	"fmt"
	"os"

	"github.com/fmueller/whisperbench/internal/download"
	"github.com/fmueller/whisperbench/internal/whisper"
	"go.uber.org/zap"
)

// ModelStore resolves model references and makes sure their files exist.
type ModelStore interface {
	Resolve(ref string) (whisper.ResolvedModel, error)
	Fetch(ctx context.Context, model whisper.ResolvedModel, progress func(fraction float64)) (whisper.ResolvedModel, error)
}

// DiskModels keeps catalog models in Dir and downloads missing ones.
type DiskModels struct {
	Dir          string
	AutoDownload bool
	NoProgress   bool
	Logger       *zap.Logger

	download func(ctx context.Context, opts download.Options) error
}

func (d *DiskModels) Resolve(ref string) (whisper.ResolvedModel, error) {
	if err := os.MkdirAll(d.Dir, 0o755); err != nil {
		return whisper.ResolvedModel{}, fmt.Errorf("create model directory %s: %w", d.Dir, err)
	}
	return whisper.ResolveModel(ref, d.Dir)
}

func (d *DiskModels) Fetch(ctx context.Context, model whisper.ResolvedModel, progress func(float64)) (whisper.ResolvedModel, error) {
	if !model.NeedsDownload {
		return model, nil
	}
	if !d.AutoDownload {
		return whisper.ResolvedModel{}, fmt.Errorf("model %q is missing at %s; run `whisperbench setup --model %s` or use --auto-download=true", model.Name, model.Path, model.Name)
	}

	logger := d.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	fetch := d.download
	if fetch == nil {
		fetch = download.DownloadFile
	}

	logger.Info("model not found, downloading", zap.String("model", model.Name), zap.String("destination", model.Path))
	if err := fetch(ctx, download.Options{
		URL:            model.URL,
		Destination:    model.Path,
		ExpectedSHA256: model.SHA256,
		ChecksumURL:    model.SHA256URL,
		NoProgress:     d.NoProgress,
		Description:    "downloading " + model.Name,
		OnProgress:     progress,
		Logger:         logger,
	}); err != nil {
		return whisper.ResolvedModel{}, fmt.Errorf("download model %q: %w", model.Name, err)
	}

	model.NeedsDownload = false
	return model, nil
}
