package main

import (
	"fmt"
	"log/slog"
	"os"

	"gimbal.openfield.org/internal/app"
	"gimbal.openfield.org/internal/appconf"
	"gimbal.openfield.org/internal/camera"
	"gimbal.openfield.org/internal/clock"
	"gimbal.openfield.org/internal/follow"
	"gimbal.openfield.org/internal/metrics"
	"gimbal.openfield.org/internal/poi"
	"gimbal.openfield.org/internal/track"
	"gimbal.openfield.org/internal/viewport"
)

// BuildApplication assembles the camera engine from configuration and a
// location source. The returned application is fully wired but the follow
// session is not yet started.
func BuildApplication(cfg appconf.Config, vpCfg viewport.Config, source follow.LocationSource) (*app.Application, error) {
	logLevel := slog.LevelInfo
	if cfg.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))

	m := metrics.NewWithLogger(logger)
	controller := viewport.NewController(vpCfg, logger, m)
	index := poi.NewIndex(logger)
	recorder := track.NewRecorder(cfg.TrackCapacity, logger)
	clk := clock.RealClock{}

	followManager, err := follow.NewManager(
		follow.Config{
			Options:     camera.DefaultOptions(),
			RecomputeHz: cfg.RecomputeHz,
			Tracking:    true,
		},
		follow.Deps{
			Controller: controller,
			Index:      index,
			Source:     source,
			Recorder:   recorder,
			Clock:      clk,
			Metrics:    m,
			Logger:     logger,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build follow session: %w", err)
	}

	return &app.Application{
		Config:     cfg,
		Logger:     logger,
		Controller: controller,
		Index:      index,
		Follow:     followManager,
		Recorder:   recorder,
		Clock:      clk,
		Metrics:    m,
	}, nil
}
