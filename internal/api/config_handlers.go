package api

import (
	"net/http"

	"github.com/badweather-data/bwmt/internal/httputil"
	"github.com/badweather-data/bwmt/internal/monitoring"
	"github.com/badweather-data/bwmt/internal/optics"
)

func (s *Server) handleConfig(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	s.mu.Lock()
	payload := map[string]interface{}{
		"config":  s.cfg,
		"derived": optics.Derive(s.cfg),
	}
	s.mu.Unlock()
	httputil.WriteJSONOK(w, payload)
}

// sectionHandler builds a partial-update handler for one configuration
// section. Only the fields present in the body change; the whole config is
// validated, persisted, and the recalculated derived values returned so
// the setup UI can refresh in one round trip.
func (s *Server) sectionHandler(section string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httputil.MethodNotAllowed(w)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()

		updated := *s.cfg
		var target interface{}
		switch section {
		case "mount":
			target = &updated.Mount
		case "display":
			target = &updated.Display
		case "camera":
			target = &updated.Camera
		default:
			httputil.NotFound(w, "unknown config section")
			return
		}
		if !decodeBody(w, r, target) {
			return
		}
		if err := updated.Validate(); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if s.cfgPath != "" {
			if err := updated.Save(s.cfgPath); err != nil {
				monitoring.Logf("failed to persist config: %v", err)
				httputil.InternalServerError(w, "failed to persist config")
				return
			}
		}
		*s.cfg = updated

		httputil.WriteJSONOK(w, map[string]interface{}{
			"config":  s.cfg,
			"derived": optics.Derive(s.cfg),
		})
	}
}
