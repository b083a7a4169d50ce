package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fmueller/whisperbench/internal/whisper"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"
)

func TestLoadExplicitFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bench.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[models]
names = ["tiny", " base "]

[devices]
names = ["CPU", "gpu", "cuda"]

[chart]
width = 1024

[decode]
language = "de"
threads = 4
`), 0o644))

	cfg, resolved, exists, err := Load(path)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, path, resolved)
	require.Equal(t, []string{"tiny", "base"}, cfg.Models.Names)
	require.Equal(t, 1024, cfg.Chart.Width)
	require.Equal(t, 700, cfg.Chart.Height)
	require.True(t, cfg.Models.AutoDownload)

	devices, err := cfg.DeviceList()
	require.NoError(t, err)
	require.Equal(t, []whisper.Device{whisper.CPU, whisper.CUDA}, devices)

	opts := cfg.DecodeOptions()
	require.Equal(t, 4, opts.Threads)
	require.InDelta(t, 2.4, opts.EntropyThreshold, 1e-9)
}

func TestLoadDropsRepeatedModels(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bench.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[models]
names = ["tiny", "tiny", " base", "", "base "]
`), 0o644))

	cfg, _, _, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, []string{"tiny", "base"}, cfg.Models.Names)
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Models.Names = []string{"small", " small", "tiny"}
	require.NoError(t, cfg.Normalize())
	require.NoError(t, cfg.Normalize())
	require.Equal(t, []string{"small", "tiny"}, cfg.Models.Names)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, _, _, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	require.ErrorContains(t, err, "config file not found")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"unknown device":   "[devices]\nnames = [\"tpu\"]\n",
		"no devices":       "[devices]\nnames = []\n",
		"bad chart size":   "[chart]\nwidth = 0\n",
		"unknown language": "[decode]\nlanguage = \"klingon\"\n",
		"unknown field":    "[chart]\ncolour = \"red\"\n",
		"no models":        "[models]\nnames = []\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			path := filepath.Join(t.TempDir(), "bench.toml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
			_, _, _, err := Load(path)
			require.Error(t, err)
		})
	}
}

func TestSampleConfigMatchesDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	require.NoError(t, toml.Unmarshal([]byte(sampleConfig), &cfg))
	require.NoError(t, cfg.Normalize())
	require.NoError(t, cfg.Validate())

	def := Default()
	require.Equal(t, def.Models.Names, cfg.Models.Names)
	require.Equal(t, def.Chart, cfg.Chart)
	require.Equal(t, def.Decode, cfg.Decode)
}

func TestCreateSample(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	require.NoError(t, CreateSample(path))

	cfg, _, exists, err := Load(path)
	require.NoError(t, err)
	require.True(t, exists)
	require.Equal(t, whisper.ReferenceModel, cfg.Models.Reference)
}
