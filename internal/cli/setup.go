package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/fmueller/whisperbench/internal/config"
	"github.com/fmueller/whisperbench/internal/download"
	"github.com/fmueller/whisperbench/internal/platform"
	"github.com/fmueller/whisperbench/internal/whisper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newSetupCmd(app *appState) *cobra.Command {
	var (
		models     []string
		initConfig bool
	)

	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Download and verify speech model assets",
		Long: `Download and verify the configured models, or only those named with --model.
With --init-config a commented sample configuration is written as well.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			modelDir, err := platform.ResolveModelDir(app.cfg.Models.Dir)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(modelDir, 0o755); err != nil {
				return fmt.Errorf("create model directory %s: %w", modelDir, err)
			}

			names := models
			if len(names) == 0 {
				names = app.cfg.Models.Names
			}
			for _, name := range names {
				if err := app.installModel(cmd.Context(), out, name, modelDir); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringSliceVar(&models, "model", nil, "Model to install; repeat for several (default: configured models)")
	// Handled before the config is loaded, see NewRootCmd.
	cmd.Flags().BoolVar(&initConfig, "init-config", false, "Write a sample config file if none exists")

	return cmd
}

func (a *appState) installModel(ctx context.Context, out io.Writer, name, modelDir string) error {
	resolved, err := whisper.ResolveModel(name, modelDir)
	if err != nil {
		return err
	}
	if resolved.IsCustomPath {
		a.log().Info("skipping custom model path", zap.String("path", resolved.Path))
		return nil
	}

	expectedChecksum := resolved.SHA256
	if expectedChecksum == "" && resolved.SHA256URL != "" {
		checksum, err := download.ResolveExpectedChecksum(ctx, resolved.SHA256URL, filepath.Base(resolved.Path), nil)
		if err != nil {
			return fmt.Errorf("resolve checksum for model %s: %w", resolved.Name, err)
		}
		expectedChecksum = checksum
	}

	if !resolved.NeedsDownload && expectedChecksum != "" {
		if err := download.VerifyFileChecksum(resolved.Path, expectedChecksum); err != nil {
			a.log().Warn("model checksum verification failed; downloading fresh copy", zap.String("model", resolved.Name), zap.Error(err))
			resolved.NeedsDownload = true
		}
	}

	if !resolved.NeedsDownload {
		a.log().Info("model already present", zap.String("model", resolved.Name), zap.String("path", resolved.Path))
		fmt.Fprintf(out, "Model %s already present at %s\n", resolved.Name, resolved.Path)
		return nil
	}

	a.log().Info("downloading model", zap.String("model", resolved.Name), zap.String("path", resolved.Path))
	if err := download.DownloadFile(ctx, download.Options{
		URL:            resolved.URL,
		Destination:    resolved.Path,
		ExpectedSHA256: expectedChecksum,
		ChecksumURL:    resolved.SHA256URL,
		NoProgress:     a.noProgress,
		Description:    "downloading " + resolved.Name,
		Logger:         a.log(),
	}); err != nil {
		return fmt.Errorf("download model %s: %w", resolved.Name, err)
	}

	fmt.Fprintf(out, "Model %s installed at %s\n", resolved.Name, resolved.Path)
	return nil
}

func (a *appState) writeSampleConfig(out io.Writer) error {
	path := a.configPath
	if path == "" {
		var err error
		if path, err = platform.DefaultConfigPath(); err != nil {
			return err
		}
	}
	path, err := config.ExpandPath(path)
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		fmt.Fprintf(out, "Config already exists at %s\n", path)
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("check config %s: %w", path, err)
	}

	if err := config.CreateSample(path); err != nil {
		return err
	}
	fmt.Fprintf(out, "Wrote sample config to %s\n", path)
	return nil
}
