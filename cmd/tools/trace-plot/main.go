// trace-plot renders a fitted star trace (and optionally its velocity
// profile) to PNG from a saved calibration point file. Offline companion
// to the /api/charts endpoints for writing up test sessions.
//
// Usage:
//
//	trace-plot -points points.json -mode ellipse -out trace.png
//	trace-plot -points points.json -speed 5 -velocity-out profile.png
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/badweather-data/bwmt/internal/trajectory"
)

var (
	pointsPath  = flag.String("points", "points.json", "JSON file holding {\"points\": [{\"x\":..,\"y\":..}, ...]}")
	mode        = flag.String("mode", "polynomial", "Curve mode: polynomial or ellipse")
	outPath     = flag.String("out", "trace.png", "Output PNG for the trace plot")
	speed       = flag.Float64("speed", 0, "Base speed in px/s; enables the velocity profile plot")
	velocityOut = flag.String("velocity-out", "profile.png", "Output PNG for the velocity profile")
)

func main() {
	flag.Parse()

	pts, err := loadPoints(*pointsPath)
	if err != nil {
		log.Fatalf("failed to load points: %v", err)
	}
	if len(pts) == 0 {
		log.Fatal("no calibration points in input file")
	}

	sim := trajectory.NewSimulation(nil)
	sim.SetPoints(pts)

	var curveMode trajectory.CurveMode
	switch *mode {
	case "polynomial":
		curveMode = trajectory.CurvePolynomial
	case "ellipse":
		curveMode = trajectory.CurveEllipse
	default:
		log.Fatalf("unknown mode %q", *mode)
	}

	model, err := sim.FitCurve(curveMode)
	if err != nil {
		log.Fatalf("curve fit failed: %v", err)
	}

	if err := plotTrace(pts, model, *outPath); err != nil {
		log.Fatalf("failed to plot trace: %v", err)
	}
	log.Printf("wrote %s", *outPath)

	if *speed > 0 {
		xStart := float64(pts[0].X)
		xEnd := float64(pts[len(pts)-1].X)
		profile, err := trajectory.NewProfile(xStart, xEnd, *speed, nil)
		if err != nil {
			log.Fatalf("failed to build velocity profile: %v", err)
		}
		if err := plotProfile(profile, *velocityOut); err != nil {
			log.Fatalf("failed to plot velocity profile: %v", err)
		}
		log.Printf("wrote %s", *velocityOut)
	}
}

func loadPoints(path string) ([]trajectory.Point, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc struct {
		Points []trajectory.Point `json:"points"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return doc.Points, nil
}

func plotTrace(pts []trajectory.Point, model trajectory.Model, path string) error {
	p := plot.New()
	p.Title.Text = "Star Trace"
	p.X.Label.Text = "X (px)"
	p.Y.Label.Text = "Y (px)"
	// Screen coordinates: y grows downward.
	p.Y.Scale = plot.InvertedScale{Normalizer: plot.LinearScale{}}

	scatterPts := make(plotter.XYs, len(pts))
	for i, pt := range pts {
		scatterPts[i].X = float64(pt.X)
		scatterPts[i].Y = float64(pt.Y)
	}
	scatter, err := plotter.NewScatter(scatterPts)
	if err != nil {
		return err
	}
	scatter.GlyphStyle.Radius = vg.Points(3)
	scatter.GlyphStyle.Color = color.RGBA{R: 200, A: 255}
	p.Add(scatter)
	p.Legend.Add("points", scatter)

	const samples = 400
	minX := float64(pts[0].X)
	maxX := float64(pts[len(pts)-1].X)
	if maxX > minX {
		tracePts := make(plotter.XYs, 0, samples+1)
		step := (maxX - minX) / samples
		for i := 0; i <= samples; i++ {
			x := minX + float64(i)*step
			if y, ok := model.YAtX(x); ok {
				tracePts = append(tracePts, plotter.XY{X: x, Y: y})
			}
		}
		line, err := plotter.NewLine(tracePts)
		if err != nil {
			return err
		}
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add("fitted curve", line)
	}

	p.Legend.Top = true
	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}

func plotProfile(profile *trajectory.Profile, path string) error {
	p := plot.New()
	p.Title.Text = "Velocity Profile"
	p.X.Label.Text = "X (px)"
	p.Y.Label.Text = "V (px/s)"

	const samples = 400
	total := profile.TotalSeconds()
	linePts := make(plotter.XYs, 0, samples+1)
	for i := 0; i <= samples; i++ {
		t := total * float64(i) / samples
		linePts = append(linePts, plotter.XY{X: profile.XAt(t), Y: profile.VAt(t)})
	}
	line, err := plotter.NewLine(linePts)
	if err != nil {
		return err
	}
	line.Width = vg.Points(1)
	p.Add(line)

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
