//go:build e2e

package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fmueller/whisperbench/internal/report"
	"github.com/fmueller/whisperbench/internal/whisper"
	"github.com/stretchr/testify/require"
)

const (
	e2eWhisperPathEnv = "WHISPERBENCH_E2E_WHISPER_PATH"
	e2eModelDirEnv    = "WHISPERBENCH_E2E_MODEL_DIR"
	e2eAudioEnv       = "WHISPERBENCH_E2E_AUDIO"
)

func TestReferenceThenEvaluateEndToEnd(t *testing.T) {
	whisperPath := strings.TrimSpace(os.Getenv(e2eWhisperPathEnv))
	if whisperPath == "" {
		t.Skip("set WHISPERBENCH_E2E_WHISPER_PATH to run e2e test")
	}
	source := strings.TrimSpace(os.Getenv(e2eAudioEnv))
	if source == "" {
		t.Skip("set WHISPERBENCH_E2E_AUDIO to a short speech WAV to run e2e test")
	}

	modelDir := strings.TrimSpace(os.Getenv(e2eModelDirEnv))
	if modelDir == "" {
		modelDir = t.TempDir()
	}
	t.Setenv(whisper.EnginePathEnv, whisperPath)

	content, err := os.ReadFile(source)
	require.NoError(t, err)
	dir := t.TempDir()
	audioPath := filepath.Join(dir, "speech.wav")
	require.NoError(t, os.WriteFile(audioPath, content, 0o644))
	cfg := writeTestConfig(t, "")

	_, stderr, err := runCommand(t, []string{"setup", "--config", cfg, "--model", "tiny", "--model-dir", modelDir, "--no-progress"})
	require.NoErrorf(t, err, "setup command failed: %s", stderr)

	_, stderr, err = runCommand(t, []string{"reference", "--config", cfg, "--model", "tiny", "--model-dir", modelDir, "--language", "en", "--no-progress", audioPath})
	require.NoErrorf(t, err, "reference command failed: %s", stderr)
	require.FileExists(t, report.ReferencePath(dir, "speech"))

	stdout, stderr, err := runCommand(t, []string{
		"evaluate",
		"--config", cfg,
		"--models", "tiny",
		"--devices", "cpu",
		"--model-dir", modelDir,
		"--language", "en",
		"--no-progress",
		audioPath,
	})
	require.NoErrorf(t, err, "evaluate command failed: %s", stderr)
	require.Contains(t, stdout, "tiny")

	data, err := os.ReadFile(filepath.Join(dir, "speech_data.csv"))
	require.NoError(t, err)
	require.Contains(t, string(data), "100.00", "a model scored against its own transcript should match it")
	require.FileExists(t, filepath.Join(dir, "speech_graph.png"))
}
