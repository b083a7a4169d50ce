package cli

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/fmueller/whisperbench/internal/audio"
	"github.com/fmueller/whisperbench/internal/bench"
	"github.com/fmueller/whisperbench/internal/whisper"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args []string) (stdout string, stderr string, err error) {
	t.Helper()
	return runApp(t, newAppState(), args)
}

func runApp(t *testing.T, app *appState, args []string) (stdout string, stderr string, err error) {
	t.Helper()

	cmd := newRootCmd(app)
	outBuf := new(bytes.Buffer)
	errBuf := new(bytes.Buffer)

	cmd.SetOut(outBuf)
	cmd.SetErr(errBuf)
	cmd.SetArgs(args)

	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

// newFakeApp wires an appState to in-memory models and engine so commands
// run without whisper or network access.
func newFakeApp(engine *fakeEngine) *appState {
	app := newAppState()
	app.now = (&tickingClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}).Now
	app.engineFn = func() (whisper.Engine, error) { return engine, nil }
	app.modelsFn = func() (bench.ModelStore, error) { return fakeStore{}, nil }
	app.inspectFn = audio.Inspect
	return app
}

func writeTestConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "whisperbench.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// writeToneWAV writes a second of a 440 Hz tone.
func writeToneWAV(t *testing.T, path string) {
	t.Helper()

	const sampleRate = 16000
	samples := make([]int16, sampleRate)
	for i := range samples {
		samples[i] = int16(8000 * math.Sin(2*math.Pi*440*float64(i)/sampleRate))
	}
	require.NoError(t, os.WriteFile(path, makePCM16WAVForTest(samples, sampleRate, 1), 0o644))
}

func makePCM16WAVForTest(samples []int16, sampleRate int, channels int) []byte {
	bytesPerSample := 2
	dataSize := len(samples) * bytesPerSample
	fmtChunkSize := 16
	riffSize := 4 + (8 + fmtChunkSize) + (8 + dataSize)

	out := make([]byte, 12+8+fmtChunkSize+8+dataSize)
	off := 0

	copy(out[off:], []byte("RIFF"))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(riffSize))
	off += 4
	copy(out[off:], []byte("WAVE"))
	off += 4

	copy(out[off:], []byte("fmt "))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(fmtChunkSize))
	off += 4
	binary.LittleEndian.PutUint16(out[off:], 1)
	off += 2
	binary.LittleEndian.PutUint16(out[off:], uint16(channels))
	off += 2
	binary.LittleEndian.PutUint32(out[off:], uint32(sampleRate))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(sampleRate*channels*bytesPerSample))
	off += 4
	binary.LittleEndian.PutUint16(out[off:], uint16(channels*bytesPerSample))
	off += 2
	binary.LittleEndian.PutUint16(out[off:], 16)
	off += 2

	copy(out[off:], []byte("data"))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(dataSize))
	off += 4

	for _, s := range samples {
		binary.LittleEndian.PutUint16(out[off:], uint16(s))
		off += 2
	}

	return out
}

// tickingClock advances one second on every reading.
type tickingClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *tickingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fakeStore struct{}

func (fakeStore) Resolve(ref string) (whisper.ResolvedModel, error) {
	if strings.TrimSpace(ref) == "" {
		return whisper.ResolvedModel{}, errors.New("model is required")
	}
	return whisper.ResolvedModel{Name: ref, Path: "/models/ggml-" + ref + ".bin"}, nil
}

func (fakeStore) Fetch(_ context.Context, model whisper.ResolvedModel, _ func(float64)) (whisper.ResolvedModel, error) {
	return model, nil
}

// fakeEngine returns a fixed transcript per model. Devices listed in
// faulty fail to open.
type fakeEngine struct {
	texts  map[string]string
	faulty map[whisper.Device]bool

	mu     sync.Mutex
	opened []string
}

func (e *fakeEngine) SupportsLanguage(model whisper.ResolvedModel, language string) bool {
	return whisper.SupportsLanguage(model, language)
}

func (e *fakeEngine) Open(_ context.Context, model whisper.ResolvedModel, device whisper.Device) (whisper.Session, error) {
	if e.faulty[device] {
		return nil, whisper.ErrDeviceFault
	}
	e.mu.Lock()
	e.opened = append(e.opened, model.Name+"/"+device.String())
	e.mu.Unlock()
	return &fakeSession{text: e.texts[model.Name]}, nil
}

type fakeSession struct {
	text string
}

func (s *fakeSession) Transcribe(_ context.Context, _ whisper.TranscriptionRequest, onSegment func(whisper.Segment)) ([]whisper.Segment, error) {
	var words []whisper.Word
	for _, field := range strings.Fields(s.text) {
		words = append(words, whisper.Word{Text: " " + field})
	}
	segment := whisper.Segment{End: time.Second, Text: s.text, Words: words}
	if onSegment != nil {
		onSegment(segment)
	}
	return []whisper.Segment{segment}, nil
}

func (s *fakeSession) Close() error {
	return nil
}
