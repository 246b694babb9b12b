// Package optics converts between angular rates on the sky and pixel
// rates on the simulator screen, and derives the setup quantities shown
// to the operator (effective focal length, camera resolution, binning).
package optics

import (
	"errors"
	"math"

	"github.com/badweather-data/bwmt/internal/trajectory"
)

// SiderealRateArcsec is the apparent angular rate of sky rotation in
// arcseconds per second.
const SiderealRateArcsec = 15.041

// crossingRateArcsec is the rounded sidereal rate used for the screen
// crossing speed and duration estimates.
const crossingRateArcsec = 15.0

// arcsecPerRadian converts small angles from radians to arcseconds.
const arcsecPerRadian = 206265

// ErrInvalidGeometry reports a non-positive screen or distance
// configuration. Setup requests carrying such geometry are rejected
// before any rate is computed.
var ErrInvalidGeometry = errors.New("optics: invalid geometry")

// PixelPitch returns the physical pitch of one screen pixel in mm and its
// angular size in arcseconds as seen from the mount at the given distance.
func PixelPitch(screenWidthMM float64, screenWidthPx int, distanceM float64) (mm, arcsec float64, err error) {
	if screenWidthMM <= 0 || screenWidthPx <= 0 || distanceM <= 0 {
		return 0, 0, ErrInvalidGeometry
	}
	mm = screenWidthMM / float64(screenWidthPx)
	arcsec = mm / (distanceM * 1000) * arcsecPerRadian
	return mm, arcsec, nil
}

// SiderealPixelsPerSecond converts a pixel pitch to the on-screen speed
// of a star moving at the sidereal rate. Returns 0 for a non-positive
// pitch.
func SiderealPixelsPerSecond(pitchArcsec float64) float64 {
	if pitchArcsec <= 0 {
		return 0
	}
	return crossingRateArcsec / pitchArcsec
}

// LatitudeCorrection scales the apparent motion for sites away from the
// celestial equator: cos(90° - |latitude|).
func LatitudeCorrection(latitudeDeg float64) float64 {
	return math.Cos((90 - math.Abs(latitudeDeg)) * math.Pi / 180)
}

// StripeVelocities converts three stripe crossing times into velocity
// samples anchored at the stripe centers, plus the representative
// constant speed (the fastest of the three).
func StripeVelocities(stripeWidthPx, screenWidthPx, tLeft, tMid, tRight float64) ([]trajectory.VelocitySample, float64, error) {
	if stripeWidthPx <= 0 || screenWidthPx <= 0 || tLeft <= 0 || tMid <= 0 || tRight <= 0 {
		return nil, 0, ErrInvalidGeometry
	}
	w := stripeWidthPx
	samples := []trajectory.VelocitySample{
		{X: w / 2, V: w / tLeft},
		{X: screenWidthPx / 2, V: w / tMid},
		{X: screenWidthPx - w/2, V: w / tRight},
	}
	rep := samples[0].V
	for _, s := range samples[1:] {
		if s.V > rep {
			rep = s.V
		}
	}
	return samples, rep, nil
}
