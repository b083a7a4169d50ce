package audio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestInspectDetectsSilence(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "silent.wav")
	require.NoError(t, os.WriteFile(path, makePCM16WAV(make([]int16, 16000), 16000, 1), 0o644))

	info, err := Inspect(path)
	require.NoError(t, err)
	require.True(t, info.Silent(SilenceThresholdDBFS))
	require.True(t, math.IsInf(info.RMSdBFS, -1))
	require.True(t, math.IsInf(info.PeakdBFS, -1))
	require.EqualValues(t, 16000, info.Samples)
	require.Equal(t, time.Second, info.Duration)
}

func TestInspectStereoDuration(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stereo.wav")
	require.NoError(t, os.WriteFile(path, makePCM16WAV(make([]int16, 32000), 16000, 2), 0o644))

	info, err := Inspect(path)
	require.NoError(t, err)
	require.Equal(t, 2, info.Channels)
	require.Equal(t, 16000, info.SampleRate)
	require.Equal(t, time.Second, info.Duration)
	require.InDelta(t, 2.5, info.RealTimeFactor(2500*time.Millisecond), 1e-9)
	require.Zero(t, Info{}.RealTimeFactor(time.Second))
}

func TestInspectDetectsSpeechLikeSignal(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 16000)
	for i := range samples {
		samples[i] = int16(0.25 * 32767 * math.Sin(2*math.Pi*440*float64(i)/16000.0))
	}

	path := filepath.Join(t.TempDir(), "voice.wav")
	require.NoError(t, os.WriteFile(path, makePCM16WAV(samples, 16000, 1), 0o644))

	info, err := Inspect(path)
	require.NoError(t, err)
	require.False(t, info.Silent(SilenceThresholdDBFS))
	require.Greater(t, info.PeakdBFS, -20.0)
	require.Greater(t, info.RMSdBFS, -20.0)
}

func TestInspectInvalidFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "not-wav.wav")
	require.NoError(t, os.WriteFile(path, []byte("hello"), 0o644))

	_, err := Inspect(path)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInvalidWAV)
}

func makePCM16WAV(samples []int16, sampleRate int, channels int) []byte {
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
