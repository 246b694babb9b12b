package trajectory

import (
	"sync"

	"github.com/badweather-data/bwmt/internal/monitoring"
	"github.com/badweather-data/bwmt/internal/timeutil"
)

// CurveMode selects which geometric model FitCurve builds.
type CurveMode string

const (
	// CurvePolynomial fits a degree-3 polynomial y(x).
	CurvePolynomial CurveMode = "polynomial"
	// CurveEllipse fits a general conic constrained to an ellipse.
	CurveEllipse CurveMode = "ellipse"
)

// polynomialDegree is the degree of the polynomial trace model.
const polynomialDegree = 3

// Status is the read-model consumed by the renderer every frame and by
// the control API on demand.
type Status struct {
	Running          bool    `json:"running"`
	Complete         bool    `json:"complete"`
	Progress         float64 `json:"progress"` // percent of the x range crossed
	ElapsedSeconds   float64 `json:"elapsed_seconds"`
	RemainingSeconds float64 `json:"remaining_seconds"`
	TotalSeconds     float64 `json:"total_seconds"`
	X                float64 `json:"x"`
	Y                float64 `json:"y"`
	Velocity         float64 `json:"velocity"`
}

// Simulation owns the calibration point set, the fitted curve model, the
// velocity profile and the trajectory clock behind a single mutex.
// Control commands mutate it from the API goroutine while the renderer
// polls Status concurrently. Note that Status is not side-effect-free:
// observing an elapsed time at the end of the trajectory is what flips
// the clock to complete.
type Simulation struct {
	mu      sync.Mutex
	clk     timeutil.Clock
	points  PointSet
	model   Model
	profile *Profile
	clock   *TrajectoryClock
}

// NewSimulation creates an idle simulation. A nil clock selects the real
// wall clock.
func NewSimulation(clk timeutil.Clock) *Simulation {
	if clk == nil {
		clk = timeutil.RealClock{}
	}
	return &Simulation{clk: clk}
}

// Points returns a snapshot of the calibration points.
func (s *Simulation) Points() []Point {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.points.Points()
}

// SetPoints replaces the calibration point set.
func (s *Simulation) SetPoints(pts []Point) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points.Set(pts)
	s.model = nil
}

// AddPoint records a calibration point and returns its index after the
// set re-sorts by x.
func (s *Simulation) AddPoint(x, y int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = nil
	return s.points.Add(x, y)
}

// UpdatePoint moves the point at index i to absolute coordinates and
// returns its post-sort index.
func (s *Simulation) UpdatePoint(i, x, y int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = nil
	return s.points.Update(i, x, y)
}

// NudgePoint moves the point at index i by a relative delta and returns
// its post-sort index.
func (s *Simulation) NudgePoint(i, dx, dy int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = nil
	return s.points.Nudge(i, dx, dy)
}

// DeletePoint removes the point at index i.
func (s *Simulation) DeletePoint(i int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.model = nil
	return s.points.Delete(i)
}

// ClearPoints removes all calibration points.
func (s *Simulation) ClearPoints() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.points.Clear()
	s.model = nil
}

// FitCurve recomputes the curve model from the current calibration
// snapshot. ErrInsufficientData leaves the simulation with no model; the
// operator keeps collecting points.
func (s *Simulation) FitCurve(mode CurveMode) (Model, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pts := s.points.Points()
	var (
		model Model
		err   error
	)
	switch mode {
	case CurveEllipse:
		model, err = FitEllipse(pts)
	default:
		model, err = FitPolynomial(pts, polynomialDegree)
	}
	if err != nil {
		s.model = nil
		return nil, err
	}
	s.model = model
	monitoring.Debugf("fitted %s curve through %d points", mode, len(pts))
	return model, nil
}

// Model returns the current curve model, or nil when no curve is
// available.
func (s *Simulation) Model() Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

// Setup builds a fresh velocity profile and trajectory clock for the
// given x range. The profile is immutable until the next Setup. Returns
// the total crossing time in seconds.
func (s *Simulation) Setup(xStart, xEnd, basePixelsPerSecond float64, samples []VelocitySample) (float64, error) {
	profile, err := NewProfile(xStart, xEnd, basePixelsPerSecond, samples)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = profile
	s.clock = newTrajectoryClock(s.clk, profile.TotalSeconds())
	monitoring.Debugf("trajectory setup: x=[%0.1f,%0.1f] total=%0.1fs measured=%v",
		xStart, xEnd, profile.TotalSeconds(), profile.Measured())
	return profile.TotalSeconds(), nil
}

// Profile returns the current velocity profile, or nil before Setup.
func (s *Simulation) Profile() *Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Start begins or resumes the trajectory. Idempotent while running; a
// no-op before Setup.
func (s *Simulation) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock != nil {
		s.clock.Start()
	}
}

// Stop pauses the trajectory. No-op when not running.
func (s *Simulation) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock != nil {
		s.clock.Stop()
	}
}

// Reset returns the trajectory to idle at zero elapsed time.
func (s *Simulation) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock != nil {
		s.clock.Reset()
	}
}

// Skip adjusts elapsed time by a relative delta, silently clamped.
func (s *Simulation) Skip(deltaSeconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock != nil {
		s.clock.Skip(deltaSeconds)
	}
}

// Seek sets elapsed time to an absolute target, silently clamped.
func (s *Simulation) Seek(targetSeconds float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.clock != nil {
		s.clock.Seek(targetSeconds)
	}
}

// Status composes the current star position, velocity and progress from
// the clock, profile and curve model. Without a curve, without a setup,
// or with a degenerate x range it returns a well-defined zero status.
func (s *Simulation) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.model == nil || s.profile == nil || s.clock == nil || s.profile.XStart() >= s.profile.XEnd() {
		return Status{}
	}

	elapsed, complete := s.clock.Observe()
	total := s.profile.TotalSeconds()
	x := s.profile.XAt(elapsed)

	y, ok := s.model.YAtX(x)
	if !ok {
		// Rounding at the trajectory boundary can push x just off the
		// ellipse; fall back to the center line instead of failing.
		if e, isEllipse := s.model.(*Ellipse); isEllipse {
			y = e.CenterY
		}
	}

	progress := 0.0
	if span := s.profile.XEnd() - s.profile.XStart(); span > 0 {
		progress = clamp((x-s.profile.XStart())/span*100, 0, 100)
	}

	return Status{
		Running:          s.clock.Running(),
		Complete:         complete,
		Progress:         progress,
		ElapsedSeconds:   elapsed,
		RemainingSeconds: clamp(total-elapsed, 0, total),
		TotalSeconds:     total,
		X:                x,
		Y:                y,
		Velocity:         s.profile.VAt(elapsed),
	}
}
