package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/fmueller/whisperbench/internal/platform"
	"github.com/fmueller/whisperbench/internal/whisper"
	"github.com/pelletier/go-toml/v2"
)

// ProjectFile is looked up in the working directory when no user config exists.
const ProjectFile = "whisperbench.toml"

type Config struct {
	Models  Models  `toml:"models"`
	Devices Devices `toml:"devices"`
	Output  Output  `toml:"output"`
	Chart   Chart   `toml:"chart"`
	Decode  Decode  `toml:"decode"`
}

type Models struct {
	Names        []string `toml:"names"`
	Dir          string   `toml:"dir"`
	AutoDownload bool     `toml:"auto_download"`
	// Reference is the model used by the reference command.
	Reference string `toml:"reference"`
}

type Devices struct {
	Names []string `toml:"names"`
}

type Output struct {
	Dir string `toml:"dir"`
	// Transcripts controls whether per-cell hypothesis transcripts are written.
	Transcripts bool `toml:"transcripts"`
}

type Chart struct {
	Title  string `toml:"title"`
	Width  int    `toml:"width"`
	Height int    `toml:"height"`
}

type Decode struct {
	Language         string  `toml:"language"`
	Temperature      float64 `toml:"temperature"`
	EntropyThreshold float64 `toml:"entropy_threshold"`
	LogProbThreshold float64 `toml:"log_prob_threshold"`
	Threads          int     `toml:"threads"`
}

func Default() Config {
	opts := whisper.DefaultDecodeOptions()
	return Config{
		Models: Models{
			Names:        whisper.ModelNames(),
			AutoDownload: true,
			Reference:    whisper.ReferenceModel,
		},
		Devices: Devices{Names: []string{"cpu"}},
		Output:  Output{Transcripts: true},
		Chart: Chart{
			Title:  "Whisper Accuracy and Processing Times",
			Width:  800,
			Height: 700,
		},
		Decode: Decode{
			Language:         whisper.AutoDetect,
			Temperature:      opts.Temperature,
			EntropyThreshold: opts.EntropyThreshold,
			LogProbThreshold: opts.LogProbThreshold,
		},
	}
}

// Load locates, parses, and validates a configuration file. It returns the
// path that was considered and whether a file existed there; a missing file
// yields the defaults.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file).DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config %s: %w", resolvedPath, err)
		}
	}

	if err := cfg.Normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := ExpandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return "", false, fmt.Errorf("config file not found: %s", expanded)
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	userPath, err := platform.DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs(ProjectFile)
	if err != nil {
		return "", false, err
	}

	for _, candidate := range []string{userPath, projectPath} {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true, nil
		}
	}
	return userPath, false, nil
}

// Normalize expands paths, trims names and drops repeated models. It is
// idempotent, so callers may run it again after applying overrides.
func (c *Config) Normalize() error {
	for _, p := range []*string{&c.Models.Dir, &c.Output.Dir} {
		expanded, err := ExpandPath(strings.TrimSpace(*p))
		if err != nil {
			return err
		}
		*p = expanded
	}
	for i, name := range c.Devices.Names {
		c.Devices.Names[i] = strings.ToLower(strings.TrimSpace(name))
	}
	// A model recorded twice would abort the run.
	models := make([]string, 0, len(c.Models.Names))
	seen := map[string]bool{}
	for _, name := range c.Models.Names {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		models = append(models, name)
	}
	c.Models.Names = models
	c.Decode.Language = strings.TrimSpace(c.Decode.Language)
	if c.Decode.Language == "" {
		c.Decode.Language = whisper.AutoDetect
	}
	return nil
}

func (c *Config) Validate() error {
	if len(c.Models.Names) == 0 {
		return errors.New("models.names must list at least one model")
	}
	if _, err := c.DeviceList(); err != nil {
		return err
	}
	if c.Chart.Width <= 0 || c.Chart.Height <= 0 {
		return fmt.Errorf("chart size must be positive, got %dx%d", c.Chart.Width, c.Chart.Height)
	}
	if _, ok := whisper.LookupLanguage(c.Decode.Language); !ok {
		return fmt.Errorf("decode.language: unknown language %q", c.Decode.Language)
	}
	if c.Decode.Threads < 0 {
		return errors.New("decode.threads must not be negative")
	}
	return nil
}

// DeviceList parses the configured devices, dropping duplicates.
func (c *Config) DeviceList() ([]whisper.Device, error) {
	if len(c.Devices.Names) == 0 {
		return nil, errors.New("devices.names must list at least one device")
	}
	var devices []whisper.Device
	seen := map[whisper.Device]bool{}
	for _, name := range c.Devices.Names {
		device, err := whisper.ParseDevice(name)
		if err != nil {
			return nil, fmt.Errorf("devices.names: %w", err)
		}
		if !seen[device] {
			seen[device] = true
			devices = append(devices, device)
		}
	}
	return devices, nil
}

func (c *Config) DecodeOptions() whisper.DecodeOptions {
	return whisper.DecodeOptions{
		Temperature:      c.Decode.Temperature,
		EntropyThreshold: c.Decode.EntropyThreshold,
		LogProbThreshold: c.Decode.LogProbThreshold,
		Threads:          c.Decode.Threads,
	}
}

func ExpandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	absolute, err := filepath.Abs(filepath.Clean(pathValue))
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", pathValue, err)
	}
	return absolute, nil
}

// CreateSample writes a commented sample configuration to path.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

const sampleConfig = `# whisperbench configuration

[models]
# Benchmarked models, smallest first. Entries may also be paths to ggml files.
names = ["tiny", "base", "small", "medium", "large-v3"]
# dir = "~/.local/share/whisperbench/models"
auto_download = true
reference = "large-v3"

[devices]
# "cpu" and/or "cuda".
names = ["cpu"]

[output]
# dir defaults to the directory of the audio file.
# dir = "~/whisperbench"
transcripts = true

[chart]
title = "Whisper Accuracy and Processing Times"
width = 800
height = 700

[decode]
language = "auto"
temperature = 0.0
entropy_threshold = 2.4
log_prob_threshold = -1.0
threads = 0
`
