package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/badweather-data/bwmt/internal/httputil"
	"github.com/badweather-data/bwmt/internal/monitoring"
	"github.com/badweather-data/bwmt/internal/optics"
	"github.com/badweather-data/bwmt/internal/trajectory"
)

const maxBodySize = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		httputil.BadRequest(w, "invalid request body: "+err.Error())
		return false
	}
	return true
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	st := s.sim.Status()
	s.noteCompletion(st)
	httputil.WriteJSONOK(w, st)
}

// noteCompletion stamps the active run's completion time the first time a
// status poll observes the trajectory complete.
func (s *Server) noteCompletion(st trajectory.Status) {
	if !st.Complete || s.runs == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.activeRunID == "" || s.runCompleted {
		return
	}
	if err := s.runs.MarkCompleted(s.activeRunID, s.clk.Now()); err != nil {
		monitoring.Logf("failed to mark run %s completed: %v", s.activeRunID, err)
		return
	}
	s.runCompleted = true
}

func (s *Server) handlePoints(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, map[string]interface{}{"points": s.sim.Points()})

	case http.MethodPost:
		var req struct {
			X int `json:"x"`
			Y int `json:"y"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		idx := s.sim.AddPoint(req.X, req.Y)
		httputil.WriteJSONOK(w, map[string]int{"index": idx})

	case http.MethodPut:
		var req struct {
			Points []trajectory.Point `json:"points"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		s.sim.SetPoints(req.Points)
		httputil.WriteAck(w)

	case http.MethodDelete:
		s.sim.ClearPoints()
		httputil.WriteAck(w)

	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) handlePointUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req struct {
		Index    int  `json:"index"`
		X        int  `json:"x"`
		Y        int  `json:"y"`
		Relative bool `json:"relative"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	var (
		idx int
		err error
	)
	if req.Relative {
		idx, err = s.sim.NudgePoint(req.Index, req.X, req.Y)
	} else {
		idx, err = s.sim.UpdatePoint(req.Index, req.X, req.Y)
	}
	if errors.Is(err, trajectory.ErrIndexOutOfRange) {
		httputil.NotFound(w, "point index out of range")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, map[string]int{"index": idx})
}

func (s *Server) handlePointDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req struct {
		Index int `json:"index"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if err := s.sim.DeletePoint(req.Index); err != nil {
		httputil.NotFound(w, "point index out of range")
		return
	}
	httputil.WriteAck(w)
}

func curvePayload(m trajectory.Model) map[string]interface{} {
	switch c := m.(type) {
	case *trajectory.Polynomial:
		return map[string]interface{}{
			"mode":   "polynomial",
			"coeffs": c.Coeffs,
		}
	case *trajectory.Ellipse:
		return map[string]interface{}{
			"mode":       "ellipse",
			"center_x":   c.CenterX,
			"center_y":   c.CenterY,
			"semi_major": c.SemiMajor,
			"semi_minor": c.SemiMinor,
			"angle":      c.Angle,
			"upper_arc":  c.UpperArc(),
		}
	default:
		return nil
	}
}

func (s *Server) handleCurve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	m := s.sim.Model()
	if m == nil {
		httputil.NotFound(w, "no curve fitted")
		return
	}
	httputil.WriteJSONOK(w, curvePayload(m))
}

func (s *Server) handleCurveFit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req struct {
		Mode string `json:"mode"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	var mode trajectory.CurveMode
	switch req.Mode {
	case "polynomial", "":
		mode = trajectory.CurvePolynomial
	case "ellipse":
		mode = trajectory.CurveEllipse
	default:
		httputil.BadRequest(w, "mode must be polynomial or ellipse")
		return
	}
	m, err := s.sim.FitCurve(mode)
	if errors.Is(err, trajectory.ErrInsufficientData) {
		httputil.WriteJSONError(w, http.StatusUnprocessableEntity, "insufficient calibration points for curve fit")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, curvePayload(m))
}

func (s *Server) handleSetup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req struct {
		XStart    float64                     `json:"x_start"`
		XEnd      float64                     `json:"x_end"`
		BaseSpeed float64                     `json:"base_speed"`
		Samples   []trajectory.VelocitySample `json:"samples"`
	}
	if !decodeBody(w, r, &req) {
		return
	}

	total, err := s.sim.Setup(req.XStart, req.XEnd, req.BaseSpeed, req.Samples)
	if errors.Is(err, trajectory.ErrInsufficientData) {
		httputil.WriteJSONError(w, http.StatusUnprocessableEntity, "degenerate velocity samples")
		return
	}
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}

	s.recordSetup(req.XStart, req.XEnd, req.BaseSpeed, len(req.Samples) >= 3, total)
	httputil.WriteJSONOK(w, map[string]float64{"total_seconds": total})
}

func (s *Server) recordSetup(xStart, xEnd, baseSpeed float64, measured bool, total float64) {
	if s.runs == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	mode := "polynomial"
	if _, ok := s.sim.Model().(*trajectory.Ellipse); ok {
		mode = "ellipse"
	}
	id, err := s.runs.RecordSetup(mode, xStart, xEnd, baseSpeed, measured, total, s.clk.Now())
	if err != nil {
		monitoring.Logf("failed to record run: %v", err)
		return
	}
	s.activeRunID = id
	s.runCompleted = false
}

func (s *Server) handleControl(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req struct {
		Action  string  `json:"action"`
		Seconds float64 `json:"seconds"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	switch req.Action {
	case "start":
		s.sim.Start()
	case "stop":
		s.sim.Stop()
	case "reset":
		s.sim.Reset()
	case "skip":
		s.sim.Skip(req.Seconds)
	case "seek":
		s.sim.Seek(req.Seconds)
	default:
		httputil.BadRequest(w, "action must be one of start, stop, reset, skip, seek")
		return
	}
	monitoring.Debugf("control %s seconds=%v", req.Action, req.Seconds)
	httputil.WriteAck(w)
}

func (s *Server) handleMeasure(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req struct {
		StripeWidth float64 `json:"stripe_width"`
		ScreenWidth float64 `json:"screen_width"`
		TimeLeft    float64 `json:"time_left"`
		TimeMiddle  float64 `json:"time_middle"`
		TimeRight   float64 `json:"time_right"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	samples, rep, err := optics.StripeVelocities(req.StripeWidth, req.ScreenWidth,
		req.TimeLeft, req.TimeMiddle, req.TimeRight)
	if err != nil {
		httputil.BadRequest(w, "stripe widths and crossing times must be positive")
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{
		"samples":           samples,
		"pixels_per_second": rep,
	})
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.mu.Lock()
		mode := s.mode
		s.mu.Unlock()
		httputil.WriteJSONOK(w, map[string]string{"mode": mode})

	case http.MethodPost:
		var req struct {
			Mode string `json:"mode"`
		}
		if !decodeBody(w, r, &req) {
			return
		}
		switch req.Mode {
		case ModeWaiting, ModeLocator, ModeCalibration, ModeSimulation:
		default:
			httputil.BadRequest(w, "unknown display mode")
			return
		}
		s.mu.Lock()
		s.mode = req.Mode
		s.mu.Unlock()
		httputil.WriteAck(w)

	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	if s.runs == nil {
		httputil.NotFound(w, "run history disabled")
		return
	}
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			httputil.BadRequest(w, "limit must be a positive integer")
			return
		}
		limit = v
	}
	runs, err := s.runs.ListRuns(limit)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	httputil.WriteJSONOK(w, map[string]interface{}{"runs": runs})
}
