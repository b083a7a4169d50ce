package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fmueller/whisperbench/internal/whisper"
	"github.com/stretchr/testify/require"
)

const twoModelConfig = `
[models]
names = ["tiny", "base"]
auto_download = false

[devices]
names = ["cpu", "cuda"]

[chart]
width = 640
height = 480
`

func newEvaluateFixture(t *testing.T) (dir, audioPath string) {
	t.Helper()

	dir = t.TempDir()
	audioPath = filepath.Join(dir, "talk.wav")
	writeToneWAV(t, audioPath)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "talk_reference.txt"), []byte("The cat sat on the mat.\n"), 0o644))
	return dir, audioPath
}

func TestEvaluateWritesAllArtifacts(t *testing.T) {
	t.Parallel()

	dir, audioPath := newEvaluateFixture(t)
	engine := &fakeEngine{texts: map[string]string{
		"tiny": "The cat sat on a mat.",
		"base": "The cat sat on the mat.",
	}}

	stdout, _, err := runApp(t, newFakeApp(engine), []string{
		"evaluate",
		"--config", writeTestConfig(t, twoModelConfig),
		"--no-progress",
		audioPath,
	})
	require.NoError(t, err)

	require.Equal(t, []string{"tiny/cpu", "tiny/cuda", "base/cpu", "base/cuda"}, engine.opened)

	data, err := os.ReadFile(filepath.Join(dir, "talk_data.csv"))
	require.NoError(t, err)
	require.Equal(t, "Model, CPU, GPU, Accuracy\ntiny, 1.00, 1.00, 83.33\nbase, 1.00, 1.00, 100.00\n", string(data))

	for _, name := range []string{
		"talk_results.txt",
		"talk_comparisons.html",
		"talk_graph.png",
		"talk_cpu_tiny.txt",
		"talk_cuda_base.txt",
	} {
		require.FileExists(t, filepath.Join(dir, name))
		require.Contains(t, stdout, "Wrote "+filepath.Join(dir, name))
	}

	hyp, err := os.ReadFile(filepath.Join(dir, "talk_cpu_tiny.txt"))
	require.NoError(t, err)
	require.Equal(t, "The cat sat on a mat.\n", string(hyp))

	require.Contains(t, stdout, "Audio:     talk.wav")
	require.Contains(t, stdout, "Duration:  0:01")
}

func TestEvaluateFlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	_, audioPath := newEvaluateFixture(t)
	outDir := filepath.Join(t.TempDir(), "results")
	engine := &fakeEngine{texts: map[string]string{"small": "The cat sat on the mat."}}

	_, _, err := runApp(t, newFakeApp(engine), []string{
		"evaluate",
		"--config", writeTestConfig(t, twoModelConfig),
		"--no-progress",
		"--models", "small",
		"--devices", "cpu",
		"--output-dir", outDir,
		"--no-transcripts",
		audioPath,
	})
	require.NoError(t, err)

	require.Equal(t, []string{"small/cpu"}, engine.opened)
	data, err := os.ReadFile(filepath.Join(outDir, "talk_data.csv"))
	require.NoError(t, err)
	require.Equal(t, "Model, CPU, Accuracy\nsmall, 1.00, 100.00\n", string(data))
	require.NoFileExists(t, filepath.Join(outDir, "talk_cpu_small.txt"))
}

func TestEvaluateIgnoresRepeatedModels(t *testing.T) {
	t.Parallel()

	dir, audioPath := newEvaluateFixture(t)
	engine := &fakeEngine{texts: map[string]string{"tiny": "The cat sat on the mat."}}

	_, _, err := runApp(t, newFakeApp(engine), []string{
		"evaluate",
		"--config", writeTestConfig(t, twoModelConfig),
		"--no-progress",
		"--models", "tiny, tiny,tiny",
		"--devices", "cpu",
		audioPath,
	})
	require.NoError(t, err)

	require.Equal(t, []string{"tiny/cpu"}, engine.opened)
	data, err := os.ReadFile(filepath.Join(dir, "talk_data.csv"))
	require.NoError(t, err)
	require.Equal(t, "Model, CPU, Accuracy\ntiny, 1.00, 100.00\n", string(data))
}

func TestEvaluateKeepsGoingAfterDeviceFault(t *testing.T) {
	t.Parallel()

	dir, audioPath := newEvaluateFixture(t)
	engine := &fakeEngine{
		texts:  map[string]string{"tiny": "The cat sat on the mat."},
		faulty: map[whisper.Device]bool{whisper.CUDA: true},
	}

	stdout, _, err := runApp(t, newFakeApp(engine), []string{
		"evaluate",
		"--config", writeTestConfig(t, twoModelConfig),
		"--no-progress",
		"--models", "tiny",
		audioPath,
	})
	require.NoError(t, err)
	require.Contains(t, stdout, "Failed cells:")

	data, err := os.ReadFile(filepath.Join(dir, "talk_data.csv"))
	require.NoError(t, err)
	require.Equal(t, "Model, CPU, Accuracy\ntiny, 1.00, 100.00\n", string(data))
}

func TestEvaluateFailsWhenNoCellSucceeds(t *testing.T) {
	t.Parallel()

	dir, audioPath := newEvaluateFixture(t)
	engine := &fakeEngine{faulty: map[whisper.Device]bool{whisper.CPU: true, whisper.CUDA: true}}

	_, _, err := runApp(t, newFakeApp(engine), []string{
		"evaluate",
		"--config", writeTestConfig(t, twoModelConfig),
		"--no-progress",
		audioPath,
	})
	require.Error(t, err)
	require.ErrorIs(t, err, whisper.ErrDeviceFault)
	require.FileExists(t, filepath.Join(dir, "talk_results.txt"))
	require.NoFileExists(t, filepath.Join(dir, "talk_graph.png"))
}

func TestEvaluateSkipsEnglishOnlyModelsForOtherLanguages(t *testing.T) {
	t.Parallel()

	dir, audioPath := newEvaluateFixture(t)
	engine := &fakeEngine{texts: map[string]string{"tiny": "The cat sat on the mat."}}

	stdout, _, err := runApp(t, newFakeApp(engine), []string{
		"evaluate",
		"--config", writeTestConfig(t, twoModelConfig),
		"--no-progress",
		"--models", "tiny.en,tiny",
		"--devices", "cpu",
		"--language", "German",
		audioPath,
	})
	require.NoError(t, err)
	require.Equal(t, []string{"tiny/cpu"}, engine.opened)
	require.Contains(t, stdout, "Skipped models:")
	require.Contains(t, stdout, "tiny.en")
	require.FileExists(t, filepath.Join(dir, "talk_data.csv"))
}

func TestEvaluateRequiresReference(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "talk.wav")
	writeToneWAV(t, audioPath)

	_, _, err := runApp(t, newFakeApp(&fakeEngine{}), []string{
		"evaluate",
		"--config", writeTestConfig(t, twoModelConfig),
		"--no-progress",
		audioPath,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "whisperbench reference")
}

func TestEvaluateRejectsSilentAudio(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	audioPath := filepath.Join(dir, "quiet.wav")
	require.NoError(t, os.WriteFile(audioPath, makePCM16WAVForTest(make([]int16, 1600), 16000, 1), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "quiet_reference.txt"), []byte("hello.\n"), 0o644))

	_, _, err := runApp(t, newFakeApp(&fakeEngine{}), []string{
		"evaluate",
		"--config", writeTestConfig(t, twoModelConfig),
		"--no-progress",
		audioPath,
	})
	require.Error(t, err)
	require.Contains(t, err.Error(), "silent")
}

func TestEvaluateRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	_, audioPath := newEvaluateFixture(t)
	cfg := writeTestConfig(t, twoModelConfig)

	tests := []struct {
		name     string
		args     []string
		contains string
	}{
		{name: "missing audio", args: []string{"evaluate", "--config", cfg, filepath.Join(t.TempDir(), "none.wav")}, contains: "audio file"},
		{name: "unknown device", args: []string{"evaluate", "--config", cfg, "--devices", "tpu", audioPath}, contains: "tpu"},
		{name: "unknown language", args: []string{"evaluate", "--config", cfg, "--language", "klingon", audioPath}, contains: "klingon"},
		{name: "bad chart size", args: []string{"evaluate", "--config", cfg, "--width", "0", audioPath}, contains: "chart size"},
		{name: "no audio", args: []string{"evaluate", "--config", cfg}, contains: "accepts 1 arg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, _, err := runApp(t, newFakeApp(&fakeEngine{}), append(tt.args, "--no-progress"))
			require.Error(t, err)
			require.Contains(t, err.Error(), tt.contains)
		})
	}
}
