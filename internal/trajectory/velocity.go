package trajectory

import "sort"

const (
	// tableSize is the density of the time/position lookup table.
	tableSize = 1000

	// minVelocity floors the fitted velocity so the trapezoidal
	// integration never divides by a vanishing speed.
	minVelocity = 0.01 // px/s
)

// VelocitySample pairs a screen column with a measured star velocity in
// pixels per second.
type VelocitySample struct {
	X float64 `json:"x"`
	V float64 `json:"v"`
}

// Profile maps elapsed seconds to screen position for one trajectory
// setup. A constant profile uses closed-form linear motion; a measured
// profile fits a quadratic v(x) through the samples and integrates it
// into a dense lookup table. Profiles are immutable once built.
type Profile struct {
	xStart, xEnd float64
	speed        float64 // constant px/s, used when the table is absent

	coeffs     []float64 // quadratic v(x) for measured profiles
	xs, ts, vs []float64
	total      float64
}

// NewProfile builds the time/position mapping for a trajectory from
// xStart to xEnd. With fewer than three velocity samples the profile is
// constant at basePixelsPerSecond (non-positive speed or an empty range
// yields a zero-length trajectory); otherwise a quadratic velocity curve
// is fitted through the samples and integrated.
func NewProfile(xStart, xEnd, basePixelsPerSecond float64, samples []VelocitySample) (*Profile, error) {
	p := &Profile{xStart: xStart, xEnd: xEnd, speed: basePixelsPerSecond}

	if len(samples) < 3 || xEnd <= xStart {
		if basePixelsPerSecond > 0 && xEnd > xStart {
			p.total = (xEnd - xStart) / basePixelsPerSecond
		}
		return p, nil
	}

	sx := make([]float64, len(samples))
	sv := make([]float64, len(samples))
	for i, s := range samples {
		sx[i] = s.X
		sv[i] = s.V
	}
	coeffs, err := polyfit(sx, sv, 2)
	if err != nil {
		return nil, err
	}
	p.coeffs = coeffs
	p.build()
	return p, nil
}

// build evaluates the fitted velocity on a uniform grid and integrates
// dt = dx / avg(v_i, v_{i+1}) trapezoidally into cumulative time.
func (p *Profile) build() {
	p.xs = make([]float64, tableSize)
	p.ts = make([]float64, tableSize)
	p.vs = make([]float64, tableSize)

	step := (p.xEnd - p.xStart) / float64(tableSize-1)
	for i := range p.xs {
		x := p.xStart + float64(i)*step
		v := evalPoly(p.coeffs, x)
		if v < minVelocity {
			v = minVelocity
		}
		p.xs[i] = x
		p.vs[i] = v
		if i > 0 {
			p.ts[i] = p.ts[i-1] + step/((p.vs[i-1]+p.vs[i])/2)
		}
	}
	p.total = p.ts[tableSize-1]
}

// XStart returns the first screen column of the trajectory.
func (p *Profile) XStart() float64 { return p.xStart }

// XEnd returns the last screen column of the trajectory.
func (p *Profile) XEnd() float64 { return p.xEnd }

// TotalSeconds returns the full crossing time.
func (p *Profile) TotalSeconds() float64 { return p.total }

// Measured reports whether the profile was built from velocity samples.
func (p *Profile) Measured() bool { return p.ts != nil }

// XAt returns the screen column reached after t seconds, clamped to
// [xStart, xEnd].
func (p *Profile) XAt(t float64) float64 {
	t = clamp(t, 0, p.total)
	if p.ts == nil {
		return clamp(p.xStart+t*p.speed, p.xStart, p.xEnd)
	}
	i := sort.SearchFloat64s(p.ts, t)
	if i <= 0 {
		return p.xs[0]
	}
	if i >= len(p.ts) {
		return p.xs[len(p.xs)-1]
	}
	return interp(t, p.ts[i-1], p.ts[i], p.xs[i-1], p.xs[i])
}

// VAt returns the instantaneous velocity after t seconds.
func (p *Profile) VAt(t float64) float64 {
	if p.ts == nil {
		if p.speed > 0 {
			return p.speed
		}
		return 0
	}
	t = clamp(t, 0, p.total)
	i := sort.SearchFloat64s(p.ts, t)
	if i <= 0 {
		return p.vs[0]
	}
	if i >= len(p.ts) {
		return p.vs[len(p.vs)-1]
	}
	return interp(t, p.ts[i-1], p.ts[i], p.vs[i-1], p.vs[i])
}

func interp(t, t0, t1, y0, y1 float64) float64 {
	if t1 == t0 {
		return y0
	}
	return y0 + (y1-y0)*(t-t0)/(t1-t0)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
