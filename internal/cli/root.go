package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fmueller/whisperbench/internal/audio"
	"github.com/fmueller/whisperbench/internal/bench"
	"github.com/fmueller/whisperbench/internal/config"
	"github.com/fmueller/whisperbench/internal/logging"
	"github.com/fmueller/whisperbench/internal/platform"
	"github.com/fmueller/whisperbench/internal/version"
	"github.com/fmueller/whisperbench/internal/whisper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

type appState struct {
	verbose      bool
	jsonLogs     bool
	logFile      string
	noProgress   bool
	configPath   string
	modelDir     string
	autoDownload bool
	language     string

	models        []string
	devices       []string
	outputDir     string
	threads       int
	title         string
	width         int
	height        int
	noTranscripts bool

	cfg    *config.Config
	logger *zap.Logger
	now    func() time.Time

	engineFn  func() (whisper.Engine, error)
	modelsFn  func() (bench.ModelStore, error)
	inspectFn func(path string) (audio.Info, error)
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(newAppState())
}

func newAppState() *appState {
	app := &appState{
		autoDownload: true,
		language:     whisper.AutoDetect,
		now:          time.Now,
	}
	app.engineFn = app.bundledEngine
	app.modelsFn = app.diskModels
	app.inspectFn = audio.Inspect
	return app
}

func newRootCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "whisperbench",
		Short:         "Benchmark whisper models for speed and accuracy across CPU and GPU",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve().String(),
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs, File: app.logFile})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.logger = logger
			if flag := cmd.Flags().Lookup("init-config"); flag != nil && flag.Value.String() == "true" {
				if err := app.writeSampleConfig(cmd.OutOrStdout()); err != nil {
					return err
				}
			}
			return app.loadConfig(cmd)
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	flags := cmd.PersistentFlags()
	flags.BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	flags.BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
	flags.StringVar(&app.logFile, "log-file", app.logFile, "Also write logs to this file")
	flags.BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
	flags.StringVar(&app.configPath, "config", app.configPath, "Config file (default ~/.config/whisperbench/config.toml or ./whisperbench.toml)")
	flags.StringVar(&app.modelDir, "model-dir", app.modelDir, "Directory where models are stored")
	flags.BoolVar(&app.autoDownload, "auto-download", app.autoDownload, "Automatically download missing models")
	flags.StringVar(&app.language, "language", app.language, "Language name or code (auto|en|de|...); see \"whisperbench languages\"")

	cmd.AddCommand(newEvaluateCmd(app))
	cmd.AddCommand(newReferenceCmd(app))
	cmd.AddCommand(newCompareCmd(app))
	cmd.AddCommand(newChartCmd(app))
	cmd.AddCommand(newLanguagesCmd(app))
	cmd.AddCommand(newSetupCmd(app))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindBenchmarkFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringSliceVar(&app.models, "models", nil, "Models to benchmark, smallest first (names or ggml file paths)")
	cmd.Flags().StringSliceVar(&app.devices, "devices", nil, "Devices to benchmark: cpu, cuda")
	cmd.Flags().IntVar(&app.threads, "threads", 0, "Decoder threads; 0 lets whisper decide")
	cmd.Flags().StringVar(&app.outputDir, "output-dir", "", "Directory for result files (default: next to the input)")
}

func bindChartFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.title, "title", "", "Chart title")
	cmd.Flags().IntVar(&app.width, "width", 0, "Chart width in pixels")
	cmd.Flags().IntVar(&app.height, "height", 0, "Chart height in pixels")
}

// loadConfig reads the config file and lets explicitly set flags override it.
func (a *appState) loadConfig(cmd *cobra.Command) error {
	cfg, path, exists, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if exists {
		a.log().Debug("loaded config", zap.String("path", path))
	}

	flags := cmd.Flags()
	if flags.Changed("model-dir") {
		if cfg.Models.Dir, err = config.ExpandPath(a.modelDir); err != nil {
			return err
		}
	}
	if flags.Changed("auto-download") {
		cfg.Models.AutoDownload = a.autoDownload
	}
	if flags.Changed("language") {
		cfg.Decode.Language = strings.TrimSpace(a.language)
	}
	if flags.Changed("models") {
		cfg.Models.Names = a.models
	}
	if flags.Changed("devices") {
		cfg.Devices.Names = a.devices
	}
	if flags.Changed("output-dir") {
		if cfg.Output.Dir, err = config.ExpandPath(a.outputDir); err != nil {
			return err
		}
	}
	if flags.Changed("threads") {
		cfg.Decode.Threads = a.threads
	}
	if flags.Changed("title") {
		cfg.Chart.Title = a.title
	}
	if flags.Changed("width") {
		cfg.Chart.Width = a.width
	}
	if flags.Changed("height") {
		cfg.Chart.Height = a.height
	}
	if flags.Changed("no-transcripts") {
		cfg.Output.Transcripts = !a.noTranscripts
	}
	if err := cfg.Normalize(); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	a.cfg = cfg
	return nil
}

// languageCode maps the configured language name or code to a whisper code.
func (a *appState) languageCode() (string, error) {
	lang, ok := whisper.LookupLanguage(a.cfg.Decode.Language)
	if !ok {
		return "", fmt.Errorf("unknown language %q; run `whisperbench languages` to list supported languages", a.cfg.Decode.Language)
	}
	return lang.Code, nil
}

func (a *appState) bundledEngine() (whisper.Engine, error) {
	lockDir, err := platform.ResolveLockDir()
	if err != nil {
		return nil, err
	}
	engine, err := whisper.NewBundledEngine(a.log(), lockDir)
	if err != nil {
		return nil, err
	}
	return engine, nil
}

func (a *appState) diskModels() (bench.ModelStore, error) {
	dir, err := platform.ResolveModelDir(a.cfg.Models.Dir)
	if err != nil {
		return nil, err
	}
	return &bench.DiskModels{
		Dir:          dir,
		AutoDownload: a.cfg.Models.AutoDownload,
		NoProgress:   a.noProgress || a.progressEnabled(),
		Logger:       a.log(),
	}, nil
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}
