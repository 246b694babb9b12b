package trajectory

import (
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/mat"
)

// degenerateEps bounds how close 4AC-B² may get to zero before the conic
// stops being a usable ellipse.
const degenerateEps = 1e-10

// Ellipse is a general conic Ax²+Bxy+Cy²+Dx+Ey+F=0 constrained to an
// ellipse (4AC-B² > 0), with the derived geometric parameters and the arc
// the calibration points voted for. The arc choice is fixed at fit time so
// evaluation stays referentially transparent for the whole run.
type Ellipse struct {
	A, B, C, D, E, F float64

	CenterX   float64
	CenterY   float64
	SemiMajor float64
	SemiMinor float64
	Angle     float64 // rotation of the major axis, radians in (-π/2, π/2]

	upper bool
}

// UpperArc reports whether evaluation follows the upper (smaller y) arc.
func (e *Ellipse) UpperArc() bool {
	return e.upper
}

// YAtX solves C·y² + (Bx+E)·y + (Ax²+Dx+F) = 0 for y on the selected arc.
// It reports false when the vertical line at x misses the ellipse.
func (e *Ellipse) YAtX(x float64) (float64, bool) {
	if math.Abs(e.C) < degenerateEps {
		return 0, false
	}
	b := e.B*x + e.E
	c := e.A*x*x + e.D*x + e.F
	disc := b*b - 4*e.C*c
	if disc < 0 {
		return 0, false
	}
	root := math.Sqrt(disc)
	y1 := (-b - root) / (2 * e.C)
	y2 := (-b + root) / (2 * e.C)
	lo, hi := math.Min(y1, y2), math.Max(y1, y2)
	// Smaller y is "up" in screen coordinates.
	if e.upper {
		return lo, true
	}
	return hi, true
}

// FitEllipse fits an ellipse through at least five calibration points
// using the direct least-squares method of Halir and Flusser: the conic
// coefficients are split into a quadratic part a1 and a linear part a2,
// the ellipse constraint 4AC-B² > 0 is folded into a reduced 3x3
// generalized eigenproblem, and a2 is recovered from a1. Degenerate
// inputs surface as ErrInsufficientData rather than a hard failure.
func FitEllipse(points []Point) (*Ellipse, error) {
	if len(points) < 5 {
		return nil, ErrInsufficientData
	}

	n := len(points)
	d1 := mat.NewDense(n, 3, nil)
	d2 := mat.NewDense(n, 3, nil)
	for i, p := range points {
		x, y := float64(p.X), float64(p.Y)
		d1.Set(i, 0, x*x)
		d1.Set(i, 1, x*y)
		d1.Set(i, 2, y*y)
		d2.Set(i, 0, x)
		d2.Set(i, 1, y)
		d2.Set(i, 2, 1)
	}

	var s1, s2, s3 mat.Dense
	s1.Mul(d1.T(), d1)
	s2.Mul(d1.T(), d2)
	s3.Mul(d2.T(), d2)

	var s3inv mat.Dense
	if err := s3inv.Inverse(&s3); err != nil {
		return nil, ErrInsufficientData
	}

	// T = -S3⁻¹ S2ᵀ recovers the linear part from the quadratic part.
	var t mat.Dense
	t.Mul(&s3inv, s2.T())
	t.Scale(-1, &t)

	var m0 mat.Dense
	m0.Mul(&s2, &t)
	m0.Add(&s1, &m0)

	// Left-multiply by C1⁻¹ where C1 encodes the ellipse constraint:
	// rows become (m2/2, -m1, m0/2).
	m := mat.NewDense(3, 3, nil)
	for j := 0; j < 3; j++ {
		m.Set(0, j, m0.At(2, j)/2)
		m.Set(1, j, -m0.At(1, j))
		m.Set(2, j, m0.At(0, j)/2)
	}

	var eig mat.Eigen
	if !eig.Factorize(m, mat.EigenRight) {
		return nil, ErrInsufficientData
	}
	vals := eig.Values(nil)
	var vecs mat.CDense
	eig.VectorsTo(&vecs)

	// Among eigenvectors satisfying the ellipse constraint, take the one
	// with the smallest eigenvalue magnitude; first wins on ties.
	best := -1
	bestMag := math.Inf(1)
	for j := 0; j < 3; j++ {
		a := real(vecs.At(0, j))
		b := real(vecs.At(1, j))
		c := real(vecs.At(2, j))
		if 4*a*c-b*b <= 0 {
			continue
		}
		if mag := cmplx.Abs(vals[j]); mag < bestMag {
			best, bestMag = j, mag
		}
	}
	if best < 0 {
		return nil, ErrInsufficientData
	}

	a1 := mat.NewVecDense(3, []float64{
		real(vecs.At(0, best)),
		real(vecs.At(1, best)),
		real(vecs.At(2, best)),
	})
	var a2 mat.VecDense
	a2.MulVec(&t, a1)

	e := &Ellipse{
		A: a1.AtVec(0), B: a1.AtVec(1), C: a1.AtVec(2),
		D: a2.AtVec(0), E: a2.AtVec(1), F: a2.AtVec(2),
	}
	e.normalizeSign()
	if err := e.deriveGeometry(); err != nil {
		return nil, err
	}
	e.upper = upperArcMajority(points, e.CenterY)
	return e, nil
}

// normalizeSign fixes the overall sign ambiguity of the eigenvector so
// that A+C > 0, which keeps the semi-axis and angle formulas stable.
func (e *Ellipse) normalizeSign() {
	if e.A+e.C < 0 {
		e.A, e.B, e.C, e.D, e.E, e.F = -e.A, -e.B, -e.C, -e.D, -e.E, -e.F
	}
}

// deriveGeometry computes center, semi-axes and rotation angle from the
// six conic coefficients using the closed-form conic-to-ellipse formulas.
func (e *Ellipse) deriveGeometry() error {
	den := 4*e.A*e.C - e.B*e.B
	if den <= degenerateEps {
		return ErrInsufficientData
	}

	e.CenterX = (e.B*e.E - 2*e.C*e.D) / den
	e.CenterY = (e.B*e.D - 2*e.A*e.E) / den

	disc := -den // B² - 4AC
	num := 2 * (e.A*e.E*e.E + e.C*e.D*e.D - e.B*e.D*e.E + disc*e.F)
	root := math.Hypot(e.A-e.C, e.B)

	opMajor := num * (e.A + e.C + root)
	opMinor := num * (e.A + e.C - root)
	if opMajor <= 0 || opMinor <= 0 {
		return ErrInsufficientData
	}

	e.SemiMajor = math.Sqrt(opMajor) / den
	e.SemiMinor = math.Sqrt(opMinor) / den
	e.Angle = 0.5 * math.Atan2(-e.B, e.C-e.A)

	if e.SemiMajor < e.SemiMinor {
		e.SemiMajor, e.SemiMinor = e.SemiMinor, e.SemiMajor
		e.Angle += math.Pi / 2
	}
	// Normalise to (-π/2, π/2].
	for e.Angle > math.Pi/2 {
		e.Angle -= math.Pi
	}
	for e.Angle <= -math.Pi/2 {
		e.Angle += math.Pi
	}
	return nil
}

// upperArcMajority votes once per fitted model on which arc the
// calibration points lie. A balanced or empty set selects the upper arc.
func upperArcMajority(points []Point, centerY float64) bool {
	above := 0
	for _, p := range points {
		if float64(p.Y) < centerY {
			above++
		}
	}
	return 2*above >= len(points)
}
