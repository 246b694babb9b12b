package trajectory

import "errors"

var (
	// ErrInsufficientData reports that the calibration point set is too
	// small or too degenerate to fit the requested curve. Callers treat it
	// as "curve not yet available" and keep collecting points.
	ErrInsufficientData = errors.New("trajectory: insufficient calibration data")

	// ErrIndexOutOfRange reports a point index outside the calibration set.
	ErrIndexOutOfRange = errors.New("trajectory: point index out of range")
)
