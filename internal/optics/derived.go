package optics

import (
	"math"

	"github.com/badweather-data/bwmt/internal/config"
)

// DerivedValues are the quantities recalculated for the setup UI whenever
// a configuration field changes.
type DerivedValues struct {
	EffectiveFocalLengthMM float64 `json:"effective_focal_length"`
	DurationMinutes        float64 `json:"duration_minutes"`
	CameraResolutionArcsec float64 `json:"camera_resolution_arcsec"`
	RecommendedBinning     int     `json:"recommended_binning"`
	AreaWidthMM            float64 `json:"area_width_mm"`
	AreaHeightMM           float64 `json:"area_height_mm"`
	PixelPitchMM           float64 `json:"pixel_pitch_mm"`
	PixelPitchArcsec       float64 `json:"pixel_pitch_arcsec"`
}

// Derive computes the setup quantities from the current configuration.
// Invalid geometry never fails here; the affected values simply come back
// as zero so the UI can show them as unavailable.
func Derive(cfg *config.AppConfig) DerivedValues {
	var d DerivedValues

	flM := cfg.Mount.FocalLengthMM / 1000 // metres
	dist := cfg.Mount.DistanceToScreenM

	// Focusing at close range pushes the effective focal length out past
	// the nominal one (thin lens equation).
	var effectiveFL float64
	if dist > flM && dist > 0 && cfg.Mount.FocalLengthMM > 0 {
		effectiveFL = (cfg.Mount.FocalLengthMM * dist) / (dist - flM)
	}

	pixelSizeUM := cfg.Camera.PixelSizeUM
	var cameraResolution float64
	if effectiveFL > 0 && pixelSizeUM > 0 {
		cameraResolution = 206.265 * pixelSizeUM / effectiveFL
	}

	// Binning: one binned camera pixel should span roughly a tenth of a
	// simulator pixel projected onto the screen.
	screenWidthMM := cfg.Display.ScreenWidthMM
	screenWidthPx := cfg.Display.ScreenWidth
	binning := 1
	if effectiveFL > 0 && pixelSizeUM > 0 && dist > 0 && screenWidthPx > 0 {
		cameraPixelOnScreen := (pixelSizeUM * dist) / effectiveFL // mm
		screenPixelSize := screenWidthMM / float64(screenWidthPx) // mm
		if b := int(math.Round(screenPixelSize / 10.0 / cameraPixelOnScreen)); b > 1 {
			binning = b
		}
	}

	// Physical area of the screen the camera sees.
	sensorWidthMM := float64(cfg.Camera.WidthPx) * pixelSizeUM / 1000
	sensorHeightMM := float64(cfg.Camera.HeightPx) * pixelSizeUM / 1000
	var areaWidthMM, areaHeightMM float64
	if effectiveFL > 0 {
		areaWidthMM = sensorWidthMM * dist * 1000 / effectiveFL
		areaHeightMM = sensorHeightMM * dist * 1000 / effectiveFL
	}

	pitchMM, pitchArcsec, err := PixelPitch(screenWidthMM, screenWidthPx, dist)
	if err != nil {
		pitchMM, pitchArcsec = 0, 0
	}

	// Minutes for a sidereal-rate star to cross the full screen width.
	durationMinutes := pitchArcsec * float64(screenWidthPx) / crossingRateArcsec / 60.0

	d.EffectiveFocalLengthMM = roundTo(effectiveFL, 1)
	d.DurationMinutes = roundTo(durationMinutes, 1)
	d.CameraResolutionArcsec = roundTo(cameraResolution, 2)
	d.RecommendedBinning = binning
	d.AreaWidthMM = roundTo(areaWidthMM, 1)
	d.AreaHeightMM = roundTo(areaHeightMM, 1)
	d.PixelPitchMM = roundTo(pitchMM, 3)
	d.PixelPitchArcsec = roundTo(pitchArcsec, 2)
	return d
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}
