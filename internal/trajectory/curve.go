package trajectory

import "gonum.org/v1/gonum/mat"

// Model is a fitted screen-space curve. YAtX reports false when the curve
// does not reach the given x column.
type Model interface {
	YAtX(x float64) (float64, bool)
}

// Polynomial is a least-squares polynomial trace y(x). Coefficients are
// stored in ascending order of degree.
type Polynomial struct {
	Coeffs []float64 `json:"coeffs"`
}

// Eval evaluates the polynomial at x using Horner's method.
func (p *Polynomial) Eval(x float64) float64 {
	return evalPoly(p.Coeffs, x)
}

// YAtX implements Model. A polynomial trace covers every x column.
func (p *Polynomial) YAtX(x float64) (float64, bool) {
	return p.Eval(x), true
}

func evalPoly(coeffs []float64, x float64) float64 {
	y := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		y = y*x + coeffs[i]
	}
	return y
}

// FitPolynomial fits a least-squares polynomial of y as a function of x
// through the calibration points. It requires strictly more points than
// coefficients; fewer points or a singular fit (for example all points in
// the same x column) yield ErrInsufficientData.
func FitPolynomial(points []Point, degree int) (*Polynomial, error) {
	xs := make([]float64, len(points))
	ys := make([]float64, len(points))
	for i, p := range points {
		xs[i] = float64(p.X)
		ys[i] = float64(p.Y)
	}
	coeffs, err := polyfit(xs, ys, degree)
	if err != nil {
		return nil, err
	}
	return &Polynomial{Coeffs: coeffs}, nil
}

// polyfit solves the least-squares polynomial fit via QR factorisation of
// the Vandermonde matrix. Coefficients come back in ascending order.
func polyfit(xs, ys []float64, degree int) ([]float64, error) {
	if degree < 1 || len(xs) != len(ys) || len(xs) <= degree {
		return nil, ErrInsufficientData
	}

	a := mat.NewDense(len(xs), degree+1, nil)
	for i, x := range xs {
		v := 1.0
		for j := 0; j <= degree; j++ {
			a.Set(i, j, v)
			v *= x
		}
	}
	b := mat.NewVecDense(len(ys), ys)

	var qr mat.QR
	qr.Factorize(a)
	var sol mat.VecDense
	if err := qr.SolveVecTo(&sol, false, b); err != nil {
		return nil, ErrInsufficientData
	}

	coeffs := make([]float64, degree+1)
	for j := range coeffs {
		coeffs[j] = sol.AtVec(j)
	}
	return coeffs, nil
}
