package api

import (
	"bytes"
	"fmt"
	"io"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/badweather-data/bwmt/internal/httputil"
)

const chartSamples = 200

// handleTrajectoryChart renders the calibration points and, when a curve
// has been fitted, the trace it predicts. Debugging aid for aligning the
// mount without the full UI.
func (s *Server) handleTrajectoryChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	pts := s.sim.Points()
	if len(pts) == 0 {
		httputil.NotFound(w, "no calibration points")
		return
	}

	data := make([]opts.ScatterData, 0, len(pts))
	minX, maxX := float64(pts[0].X), float64(pts[len(pts)-1].X)
	for _, p := range pts {
		data = append(data, opts.ScatterData{Value: []interface{}{p.X, p.Y}})
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Star Trace", Theme: "dark", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Calibration Points", Subtitle: fmt.Sprintf("points=%d", len(pts))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "X (px)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "Y (px)"}),
	)
	scatter.AddSeries("points", data, charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}))

	if model := s.sim.Model(); model != nil && maxX > minX {
		trace := make([]opts.LineData, 0, chartSamples+1)
		step := (maxX - minX) / chartSamples
		for i := 0; i <= chartSamples; i++ {
			x := minX + float64(i)*step
			if y, ok := model.YAtX(x); ok {
				trace = append(trace, opts.LineData{Value: []interface{}{x, y}})
			}
		}
		line := charts.NewLine()
		line.AddSeries("fitted curve", trace, charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))
		scatter.Overlap(line)
	}

	renderChart(w, scatter)
}

// handleVelocityChart renders the velocity profile the trajectory will
// follow across the screen.
func (s *Server) handleVelocityChart(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}

	p := s.sim.Profile()
	if p == nil || p.TotalSeconds() <= 0 {
		httputil.NotFound(w, "no trajectory configured")
		return
	}

	total := p.TotalSeconds()
	data := make([]opts.LineData, 0, chartSamples+1)
	for i := 0; i <= chartSamples; i++ {
		t := total * float64(i) / chartSamples
		data = append(data, opts.LineData{Value: []interface{}{p.XAt(t), p.VAt(t)}})
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Velocity Profile", Theme: "dark", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{Title: "Velocity Profile", Subtitle: fmt.Sprintf("total=%.1fs measured=%t", total, p.Measured())}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Type: "value", Name: "X (px)"}),
		charts.WithYAxisOpts(opts.YAxis{Type: "value", Name: "V (px/s)"}),
	)
	line.AddSeries("velocity", data)

	renderChart(w, line)
}

type renderer interface {
	Render(w io.Writer) error
}

func renderChart(w http.ResponseWriter, c renderer) {
	var buf bytes.Buffer
	if err := c.Render(&buf); err != nil {
		httputil.InternalServerError(w, fmt.Sprintf("failed to render chart: %v", err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
