package cli

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/fmueller/whisperbench/internal/report"
	"github.com/schollz/progressbar/v3"
)

// spinner is an indeterminate progress line whose label can change while it
// runs. A tracked label gets the elapsed time appended on every tick.
type spinner struct {
	bar *progressbar.ProgressBar
	now func() time.Time

	mu      sync.Mutex
	label   string
	started time.Time
	tracked bool

	stopCh chan struct{}
	doneCh chan struct{}
	once   sync.Once
}

// startSpinner returns nil when disabled; all methods are safe on nil.
func startSpinner(enabled bool, description string) *spinner {
	if !enabled {
		return nil
	}
	return newSpinner(os.Stderr, description, time.Now)
}

func newSpinner(w io.Writer, description string, now func() time.Time) *spinner {
	s := &spinner{
		bar: progressbar.NewOptions(
			-1,
			progressbar.OptionSetDescription(description),
			progressbar.OptionSetWriter(w),
			progressbar.OptionSpinnerType(14),
			progressbar.OptionThrottle(80*time.Millisecond),
			progressbar.OptionClearOnFinish(),
		),
		now:    now,
		label:  description,
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}

	go func() {
		defer close(s.doneCh)
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-s.stopCh:
				_ = s.bar.Finish()
				return
			case <-ticker.C:
				s.bar.Describe(s.description())
				_ = s.bar.Add(1)
			}
		}
	}()

	return s
}

// Describe shows a fixed label.
func (s *spinner) Describe(label string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
	s.tracked = false
}

// Track shows label followed by the time elapsed since this call.
func (s *spinner) Track(label string) {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.label = label
	s.started = s.now()
	s.tracked = true
}

func (s *spinner) description() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.tracked {
		return s.label
	}
	return s.label + " : " + report.FormatClock(s.now().Sub(s.started))
}

func (s *spinner) Stop() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		close(s.stopCh)
		<-s.doneCh
	})
}
