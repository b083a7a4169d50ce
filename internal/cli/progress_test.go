package cli

import (
	"bytes"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStartSpinnerDisabled(t *testing.T) {
	t.Parallel()

	s := startSpinner(false, "testing")
	require.Nil(t, s)
	s.Describe("ignored")
	s.Track("ignored")
	s.Stop()
}

func TestSpinnerStopIsIdempotent(t *testing.T) {
	t.Parallel()

	s := newSpinner(new(bytes.Buffer), "testing", time.Now)
	s.Stop()
	s.Stop()
}

func TestSpinnerTrackAppendsElapsedTime(t *testing.T) {
	t.Parallel()

	clock := &stepClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	s := newSpinner(new(bytes.Buffer), "preparing", clock.Now)
	defer s.Stop()

	require.Equal(t, "preparing", s.description())

	s.Track("Processing with tiny - cpu")
	clock.Advance(75 * time.Second)
	require.Equal(t, "Processing with tiny - cpu : 1:15", s.description())

	s.Describe("Scoring tiny")
	require.Equal(t, "Scoring tiny", s.description())
}

type stepClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *stepClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
