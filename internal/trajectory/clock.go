package trajectory

import (
	"time"

	"github.com/badweather-data/bwmt/internal/timeutil"
)

// clockPhase names the trajectory clock states.
type clockPhase int

const (
	phaseIdle clockPhase = iota
	phaseRunning
	phasePaused
	phaseComplete
)

// TrajectoryClock tracks elapsed simulation time across start, stop, seek
// and skip commands. Exactly one representation is authoritative at any
// instant: the start timestamp while running, the stored elapsed value
// otherwise. Seek and skip targets outside [0, total] are silently
// clamped. Not safe for concurrent use; the Simulation serialises access.
type TrajectoryClock struct {
	clk   timeutil.Clock
	total float64

	phase     clockPhase
	startedAt time.Time // authoritative while running
	stored    float64   // authoritative otherwise, in [0, total]
}

func newTrajectoryClock(clk timeutil.Clock, totalSeconds float64) *TrajectoryClock {
	return &TrajectoryClock{clk: clk, total: totalSeconds}
}

// Running reports whether the clock is advancing.
func (c *TrajectoryClock) Running() bool {
	return c.phase == phaseRunning
}

// Start begins or resumes the trajectory. Idempotent while running.
func (c *TrajectoryClock) Start() {
	if c.phase == phaseRunning {
		return
	}
	c.startedAt = c.clk.Now().Add(-secondsToDuration(c.stored))
	c.phase = phaseRunning
}

// Stop pauses the trajectory, capturing the elapsed time. No-op when the
// clock is not running.
func (c *TrajectoryClock) Stop() {
	if c.phase != phaseRunning {
		return
	}
	c.stored = clamp(c.clk.Since(c.startedAt).Seconds(), 0, c.total)
	c.phase = phasePaused
}

// Reset returns the clock to idle at zero elapsed time.
func (c *TrajectoryClock) Reset() {
	c.stored = 0
	c.phase = phaseIdle
}

// Seek sets the elapsed time to an absolute target, clamped to the
// trajectory duration.
func (c *TrajectoryClock) Seek(targetSeconds float64) {
	c.setElapsed(targetSeconds)
}

// Skip adjusts the elapsed time by a relative delta, clamped to the
// trajectory duration.
func (c *TrajectoryClock) Skip(deltaSeconds float64) {
	c.setElapsed(c.elapsed() + deltaSeconds)
}

// Observe returns the current elapsed time and applies the completion
// transition once it reaches the total: the clock stops advancing and the
// elapsed value is pinned so later observations stay stable. Status
// queries are the only caller, which keeps the query-triggers-transition
// coupling in one place.
func (c *TrajectoryClock) Observe() (elapsedSeconds float64, complete bool) {
	e := c.elapsed()
	if c.total > 0 && e >= c.total {
		c.phase = phaseComplete
		c.stored = c.total
		return c.total, true
	}
	return e, c.phase == phaseComplete
}

func (c *TrajectoryClock) elapsed() float64 {
	if c.phase == phaseRunning {
		return clamp(c.clk.Since(c.startedAt).Seconds(), 0, c.total)
	}
	return c.stored
}

func (c *TrajectoryClock) setElapsed(target float64) {
	target = clamp(target, 0, c.total)
	if c.phase == phaseRunning {
		c.startedAt = c.clk.Now().Add(-secondsToDuration(target))
		return
	}
	c.stored = target
	// Seeking back from a completed trajectory leaves it paused at the
	// target rather than pinned at the end.
	if c.phase == phaseComplete && target < c.total {
		c.phase = phasePaused
	}
}

func secondsToDuration(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
