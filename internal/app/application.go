package app

import (
	"log/slog"

	"gimbal.openfield.org/internal/appconf"
	"gimbal.openfield.org/internal/clock"
	"gimbal.openfield.org/internal/follow"
	"gimbal.openfield.org/internal/metrics"
	"gimbal.openfield.org/internal/poi"
	"gimbal.openfield.org/internal/track"
	"gimbal.openfield.org/internal/viewport"
)

// Application holds the dependencies for the camera engine, the ops
// handlers, and middleware.
type Application struct {
	Config     appconf.Config
	Logger     *slog.Logger
	Controller *viewport.Controller
	Index      *poi.Index
	Follow     *follow.Manager
	Recorder   *track.Recorder
	Clock      clock.Clock
	Metrics    *metrics.Metrics
}
