// Package api exposes the HTTP control surface for the mount tester: the
// calibration point editor, curve fitting, trajectory setup and transport
// controls, configuration, and diagnostic charts. The on-screen renderer
// is a separate process that polls /api/status.
package api

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/badweather-data/bwmt/internal/config"
	"github.com/badweather-data/bwmt/internal/monitoring"
	"github.com/badweather-data/bwmt/internal/runlog"
	"github.com/badweather-data/bwmt/internal/timeutil"
	"github.com/badweather-data/bwmt/internal/trajectory"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// Display modes the renderer can be switched between.
const (
	ModeWaiting     = "waiting"
	ModeLocator     = "locator"
	ModeCalibration = "calibration"
	ModeSimulation  = "simulation"
)

type Server struct {
	sim     *trajectory.Simulation
	cfg     *config.AppConfig
	cfgPath string
	runs    *runlog.DB
	clk     timeutil.Clock

	mu           sync.Mutex
	mode         string
	activeRunID  string
	runCompleted bool
}

// NewServer wires the control surface. runs may be nil to disable run
// history; clk may be nil for the wall clock.
func NewServer(sim *trajectory.Simulation, cfg *config.AppConfig, cfgPath string, runs *runlog.DB, clk timeutil.Clock) *Server {
	if clk == nil {
		clk = timeutil.RealClock{}
	}
	return &Server{
		sim:     sim,
		cfg:     cfg,
		cfgPath: cfgPath,
		runs:    runs,
		clk:     clk,
		mode:    ModeWaiting,
	}
}

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}

func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/points", s.handlePoints)
	mux.HandleFunc("/api/points/update", s.handlePointUpdate)
	mux.HandleFunc("/api/points/delete", s.handlePointDelete)
	mux.HandleFunc("/api/curve", s.handleCurve)
	mux.HandleFunc("/api/curve/fit", s.handleCurveFit)
	mux.HandleFunc("/api/setup", s.handleSetup)
	mux.HandleFunc("/api/control", s.handleControl)
	mux.HandleFunc("/api/measure", s.handleMeasure)
	mux.HandleFunc("/api/mode", s.handleMode)
	mux.HandleFunc("/api/config", s.handleConfig)
	mux.HandleFunc("/api/config/mount", s.sectionHandler("mount"))
	mux.HandleFunc("/api/config/display", s.sectionHandler("display"))
	mux.HandleFunc("/api/config/camera", s.sectionHandler("camera"))
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/charts/trajectory", s.handleTrajectoryChart)
	mux.HandleFunc("/api/charts/velocity", s.handleVelocityChart)
	return mux
}
