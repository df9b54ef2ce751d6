package ops

import (
	"net/http"

	"github.com/davecgh/go-spew/spew"
	"gimbal.openfield.org/internal/appconf"
)

// debugSnapshot is the state shape dumped by the debug endpoint.
type debugSnapshot struct {
	CenterLat   float64
	CenterLon   float64
	Zoom        float64
	Tracking    bool
	POICount    int
	TrackPoints int
}

// debugStateHandler dumps the current engine state as preformatted text.
// It is disabled in production.
func (s *Server) debugStateHandler(w http.ResponseWriter, r *http.Request) {
	if s.app.Config.Env == appconf.Production {
		http.NotFound(w, r)
		return
	}

	var dataType string
	switch r.URL.Query().Get("dataType") {
	case "track":
		dataType = "track"
	case "pois":
		dataType = "pois"
	default:
		dataType = "viewport"
	}

	var data interface{}
	switch dataType {
	case "track":
		if s.app.Recorder != nil {
			data = s.app.Recorder.Fixes()
		}
	case "pois":
		if s.app.Index != nil {
			data = s.app.Index.Len()
		}
	default:
		center := s.app.Controller.Center()
		snap := debugSnapshot{
			CenterLat: center.Lat,
			CenterLon: center.Lon,
			Zoom:      s.app.Controller.Zoom(),
			Tracking:  s.app.Follow.Tracking(),
		}
		if s.app.Index != nil {
			snap.POICount = s.app.Index.Len()
		}
		if s.app.Recorder != nil {
			snap.TrackPoints = s.app.Recorder.Len()
		}
		data = snap
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(spew.Sdump(data)))
}
