package whisper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	ErrUnsupportedLanguage = errors.New("language not supported by model")
	ErrDeviceFault         = errors.New("device fault")
)

type Device uint8

const (
	CPU Device = iota
	CUDA
)

func (d Device) String() string {
	switch d {
	case CPU:
		return "cpu"
	case CUDA:
		return "cuda"
	default:
		return fmt.Sprintf("device(%d)", uint8(d))
	}
}

// Label is the name a device is reported under in charts and tables.
func (d Device) Label() string {
	if d == CUDA {
		return "GPU"
	}
	return "CPU"
}

func ParseDevice(value string) (Device, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "cpu":
		return CPU, nil
	case "cuda", "gpu":
		return CUDA, nil
	default:
		return 0, fmt.Errorf("unknown device %q (known devices: cpu, cuda)", value)
	}
}

type Word struct {
	Text string
}

type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
	Words []Word
}

// DecodeOptions mirror the whisper sampling knobs a benchmark keeps fixed
// across models.
type DecodeOptions struct {
	Temperature      float64
	EntropyThreshold float64
	LogProbThreshold float64
	Threads          int
}

func DefaultDecodeOptions() DecodeOptions {
	return DecodeOptions{
		Temperature:      0,
		EntropyThreshold: 2.4,
		LogProbThreshold: -1,
	}
}

type TranscriptionRequest struct {
	AudioPath string
	Language  string
	Options   DecodeOptions
}

type Engine interface {
	SupportsLanguage(model ResolvedModel, language string) bool
	// Open loads model onto device. The returned Session owns the device
	// until Close is called.
	Open(ctx context.Context, model ResolvedModel, device Device) (Session, error)
}

type Session interface {
	// Transcribe calls onSegment, when non-nil, as segments are decoded.
	Transcribe(ctx context.Context, req TranscriptionRequest, onSegment func(Segment)) ([]Segment, error)
	Close() error
}

func splitWords(text string) []Word {
	fields := strings.Fields(text)
	words := make([]Word, 0, len(fields))
	for _, field := range fields {
		words = append(words, Word{Text: " " + field})
	}
	return words
}
