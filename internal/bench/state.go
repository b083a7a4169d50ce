package bench

import (
	"fmt"
	"time"

	"github.com/fmueller/whisperbench/internal/whisper"
)

// State is the lifecycle position of one (model, device) cell.
type State uint8

const (
	Pending State = iota
	DownloadingModel
	Transcribing
	Scoring
	Recorded
	Skipped
	Aborted
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case DownloadingModel:
		return "downloading-model"
	case Transcribing:
		return "transcribing"
	case Scoring:
		return "scoring"
	case Recorded:
		return "recorded"
	case Skipped:
		return "skipped"
	case Aborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Event reports a cell state change or progress within a state.
type Event struct {
	Model  string
	Device whisper.Device
	State  State
	// Fraction is the download progress while DownloadingModel.
	Fraction float64
	// Position is the end offset of the last decoded segment while Transcribing.
	Position time.Duration
	Err      error
}

type Observer func(Event)

type Skip struct {
	Model  string
	Reason error
}

type Failure struct {
	Model  string
	Device whisper.Device
	Err    error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s on %s: %v", f.Model, f.Device, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}
