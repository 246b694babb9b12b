package trajectory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/badweather-data/bwmt/internal/timeutil"
)

func newTestClock(total float64) (*TrajectoryClock, *timeutil.MockClock) {
	mock := timeutil.NewMockClock(time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC))
	return newTrajectoryClock(mock, total), mock
}

func TestClockStartIdempotent(t *testing.T) {
	t.Parallel()

	c, mock := newTestClock(100)
	c.Start()
	mock.Advance(10 * time.Second)
	c.Start() // must not restart the elapsed time

	e, complete := c.Observe()
	assert.False(t, complete)
	assert.InDelta(t, 10.0, e, 1e-9)
	assert.True(t, c.Running())
}

func TestClockStopWhenStoppedIsNoop(t *testing.T) {
	t.Parallel()

	c, mock := newTestClock(100)
	c.Stop()
	e, _ := c.Observe()
	assert.Zero(t, e)

	c.Start()
	mock.Advance(5 * time.Second)
	c.Stop()
	c.Stop()
	mock.Advance(30 * time.Second)

	e, _ = c.Observe()
	assert.InDelta(t, 5.0, e, 1e-9)
	assert.False(t, c.Running())
}

func TestClockPauseResume(t *testing.T) {
	t.Parallel()

	c, mock := newTestClock(100)
	c.Start()
	mock.Advance(20 * time.Second)
	c.Stop()
	mock.Advance(1000 * time.Second) // wall time passing while paused is invisible
	c.Start()
	mock.Advance(5 * time.Second)

	e, _ := c.Observe()
	assert.InDelta(t, 25.0, e, 1e-9)
}

func TestClockSeek(t *testing.T) {
	t.Parallel()

	t.Run("paused", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestClock(100)
		c.Seek(42)
		e, _ := c.Observe()
		assert.InDelta(t, 42.0, e, 1e-9)
	})

	t.Run("running", func(t *testing.T) {
		t.Parallel()
		c, mock := newTestClock(100)
		c.Start()
		mock.Advance(10 * time.Second)
		c.Seek(42)
		mock.Advance(3 * time.Second)
		e, _ := c.Observe()
		assert.InDelta(t, 45.0, e, 1e-9)
	})

	t.Run("clamped", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestClock(100)
		c.Seek(-50)
		e, _ := c.Observe()
		assert.Zero(t, e)

		c.Seek(1e9)
		e, complete := c.Observe()
		assert.InDelta(t, 100.0, e, 1e-9)
		assert.True(t, complete)
	})
}

func TestClockSkip(t *testing.T) {
	t.Parallel()

	t.Run("relative while paused", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestClock(100)
		c.Seek(30)
		c.Skip(15)
		e, _ := c.Observe()
		assert.InDelta(t, 45.0, e, 1e-9)

		c.Skip(-20)
		e, _ = c.Observe()
		assert.InDelta(t, 25.0, e, 1e-9)
	})

	t.Run("relative while running", func(t *testing.T) {
		t.Parallel()
		c, mock := newTestClock(100)
		c.Start()
		mock.Advance(10 * time.Second)
		c.Skip(20)
		mock.Advance(5 * time.Second)
		e, _ := c.Observe()
		assert.InDelta(t, 35.0, e, 1e-9)
	})

	t.Run("huge positive skip completes", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestClock(100)
		c.Skip(1e9)
		e, complete := c.Observe()
		assert.InDelta(t, 100.0, e, 1e-9)
		assert.True(t, complete)
		assert.False(t, c.Running())
	})

	t.Run("huge negative skip clamps to zero", func(t *testing.T) {
		t.Parallel()
		c, _ := newTestClock(100)
		c.Seek(60)
		c.Skip(-1e9)
		e, _ := c.Observe()
		assert.Zero(t, e)
	})
}

func TestClockCompletionPinned(t *testing.T) {
	t.Parallel()

	c, mock := newTestClock(100)
	c.Start()
	mock.Advance(150 * time.Second)

	e, complete := c.Observe()
	assert.True(t, complete)
	assert.False(t, c.Running())
	assert.InDelta(t, 100.0, e, 1e-9)

	// Later observations stay stable even as wall time keeps moving.
	mock.Advance(time.Hour)
	e, complete = c.Observe()
	assert.True(t, complete)
	assert.InDelta(t, 100.0, e, 1e-9)
}

func TestClockReset(t *testing.T) {
	t.Parallel()

	c, mock := newTestClock(100)
	c.Start()
	mock.Advance(150 * time.Second)
	_, complete := c.Observe()
	assert.True(t, complete)

	c.Reset()
	e, complete := c.Observe()
	assert.Zero(t, e)
	assert.False(t, complete)
	assert.False(t, c.Running())
}

func TestClockSeekBackFromComplete(t *testing.T) {
	t.Parallel()

	c, mock := newTestClock(100)
	c.Start()
	mock.Advance(200 * time.Second)
	_, complete := c.Observe()
	assert.True(t, complete)

	c.Seek(50)
	e, complete := c.Observe()
	assert.False(t, complete)
	assert.InDelta(t, 50.0, e, 1e-9)
}
