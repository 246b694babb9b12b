package trajectory

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/badweather-data/bwmt/internal/timeutil"
)

func newTestSimulation() (*Simulation, *timeutil.MockClock) {
	mock := timeutil.NewMockClock(time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC))
	return NewSimulation(mock), mock
}

func TestSimulationPointOps(t *testing.T) {
	t.Parallel()

	sim, _ := newTestSimulation()

	// Points insert in x order regardless of arrival order.
	assert.Equal(t, 0, sim.AddPoint(300, 90))
	assert.Equal(t, 0, sim.AddPoint(100, 90))
	assert.Equal(t, 1, sim.AddPoint(200, 85))

	want := []Point{{100, 90}, {200, 85}, {300, 90}}
	if diff := cmp.Diff(want, sim.Points()); diff != "" {
		t.Errorf("points mismatch (-want +got):\n%s", diff)
	}

	// Absolute update can move a point past its neighbours.
	idx, err := sim.UpdatePoint(0, 400, 95)
	require.NoError(t, err)
	assert.Equal(t, 2, idx)

	// Relative nudge.
	idx, err = sim.NudgePoint(0, 5, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, idx)
	assert.Equal(t, Point{205, 80}, sim.Points()[0])

	require.NoError(t, sim.DeletePoint(1))
	assert.Equal(t, 2, len(sim.Points()))

	_, err = sim.UpdatePoint(9, 0, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = sim.NudgePoint(-1, 0, 0)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	assert.ErrorIs(t, sim.DeletePoint(5), ErrIndexOutOfRange)

	sim.ClearPoints()
	assert.Zero(t, len(sim.Points()))
}

func TestSimulationFitCurveInvalidatedByPointChanges(t *testing.T) {
	t.Parallel()

	sim, _ := newTestSimulation()
	sim.SetPoints([]Point{{0, 100}, {100, 90}, {200, 85}, {300, 90}, {400, 100}})

	_, err := sim.FitCurve(CurveEllipse)
	require.NoError(t, err)
	assert.NotNil(t, sim.Model())

	// Any point mutation drops the stale model until the next fit.
	sim.AddPoint(500, 120)
	assert.Nil(t, sim.Model())
}

func TestSimulationStatusZeroWithoutSetup(t *testing.T) {
	t.Parallel()

	sim, _ := newTestSimulation()
	assert.Equal(t, Status{}, sim.Status())

	// A curve alone is not enough.
	sim.SetPoints([]Point{{0, 100}, {100, 90}, {200, 85}, {300, 90}, {400, 100}})
	_, err := sim.FitCurve(CurvePolynomial)
	require.NoError(t, err)
	assert.Equal(t, Status{}, sim.Status())
}

func TestSimulationStatusZeroOnDegenerateRange(t *testing.T) {
	t.Parallel()

	sim, _ := newTestSimulation()
	sim.SetPoints([]Point{{0, 100}, {100, 90}, {200, 85}, {300, 90}, {400, 100}})
	_, err := sim.FitCurve(CurvePolynomial)
	require.NoError(t, err)

	_, err = sim.Setup(500, 500, 5, nil)
	require.NoError(t, err)
	assert.Equal(t, Status{}, sim.Status())
}

// Constant velocity 5 px/s over x=[0,500]: 100 s crossing, seek to the
// midpoint lands the star at x=250 with 50% progress.
func TestSimulationConstantVelocityScenario(t *testing.T) {
	t.Parallel()

	sim, mock := newTestSimulation()
	sim.SetPoints([]Point{{0, 100}, {100, 90}, {250, 85}, {400, 90}, {500, 100}})
	_, err := sim.FitCurve(CurvePolynomial)
	require.NoError(t, err)

	total, err := sim.Setup(0, 500, 5, nil)
	require.NoError(t, err)
	assert.InDelta(t, 100.0, total, 1e-9)

	sim.Seek(50)
	st := sim.Status()
	assert.InDelta(t, 50.0, st.ElapsedSeconds, 1e-9)
	assert.InDelta(t, 250.0, st.X, 1.0)
	assert.InDelta(t, 50.0, st.Progress, 1e-6)
	assert.InDelta(t, 50.0, st.RemainingSeconds, 1e-9)
	assert.InDelta(t, 5.0, st.Velocity, 1e-9)
	assert.False(t, st.Running)
	assert.False(t, st.Complete)

	sim.Start()
	mock.Advance(25 * time.Second)
	st = sim.Status()
	assert.True(t, st.Running)
	assert.InDelta(t, 75.0, st.ElapsedSeconds, 1e-9)
	assert.InDelta(t, 375.0, st.X, 1.0)
}

// Skipping 200 s on a 100 s trajectory while paused at zero completes it.
func TestSimulationSkipPastEndScenario(t *testing.T) {
	t.Parallel()

	sim, _ := newTestSimulation()
	sim.SetPoints([]Point{{0, 100}, {100, 90}, {250, 85}, {400, 90}, {500, 100}})
	_, err := sim.FitCurve(CurvePolynomial)
	require.NoError(t, err)

	total, err := sim.Setup(0, 500, 5, nil)
	require.NoError(t, err)
	require.InDelta(t, 100.0, total, 1e-9)

	sim.Skip(200)
	st := sim.Status()
	assert.True(t, st.Complete)
	assert.False(t, st.Running)
	assert.InDelta(t, 100.0, st.ElapsedSeconds, 1e-9)
	assert.InDelta(t, 100.0, st.Progress, 1e-6)

	sim.Skip(-1e9)
	st = sim.Status()
	assert.False(t, st.Complete)
	assert.Zero(t, st.ElapsedSeconds)
}

func TestSimulationEllipseStatusFollowsArc(t *testing.T) {
	t.Parallel()

	sim, _ := newTestSimulation()
	pts := []Point{{0, 100}, {100, 90}, {200, 85}, {300, 90}, {400, 100}}
	sim.SetPoints(pts)
	model, err := sim.FitCurve(CurveEllipse)
	require.NoError(t, err)
	e := model.(*Ellipse)
	require.True(t, e.UpperArc())

	_, err = sim.Setup(0, 400, 4, nil)
	require.NoError(t, err)

	sim.Seek(50) // x=200, the middle calibration point
	st := sim.Status()
	assert.InDelta(t, 200.0, st.X, 1e-6)
	assert.InDelta(t, 85.0, st.Y, 2.0)
}

func TestSimulationControlBeforeSetupIsNoop(t *testing.T) {
	t.Parallel()

	sim, _ := newTestSimulation()
	sim.Start()
	sim.Stop()
	sim.Reset()
	sim.Skip(10)
	sim.Seek(10)
	assert.Equal(t, Status{}, sim.Status())
}

func TestSimulationResetAfterComplete(t *testing.T) {
	t.Parallel()

	sim, mock := newTestSimulation()
	sim.SetPoints([]Point{{0, 100}, {100, 90}, {250, 85}, {400, 90}, {500, 100}})
	_, err := sim.FitCurve(CurvePolynomial)
	require.NoError(t, err)
	_, err = sim.Setup(0, 500, 5, nil)
	require.NoError(t, err)

	sim.Start()
	mock.Advance(500 * time.Second)
	require.True(t, sim.Status().Complete)

	sim.Reset()
	st := sim.Status()
	assert.False(t, st.Complete)
	assert.False(t, st.Running)
	assert.Zero(t, st.ElapsedSeconds)
	assert.InDelta(t, 0.0, st.X, 1e-9)
}
