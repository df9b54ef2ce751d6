package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gimbal.openfield.org/internal/appconf"
	"gimbal.openfield.org/internal/geo"
	"gimbal.openfield.org/internal/logging"
	"gimbal.openfield.org/internal/ops"
	"gimbal.openfield.org/internal/poi"
	"gimbal.openfield.org/internal/viewport"
)

func main() {
	var cfg appconf.Config
	var env string
	var startLat, startLon, startZoom float64
	var widthPx, heightPx float64
	var simInterval time.Duration

	flag.IntVar(&cfg.OpsPort, "ops-port", 4000, "Ops HTTP listener port")
	flag.StringVar(&env, "env", "development", "Environment (development|test|production)")
	flag.BoolVar(&cfg.Verbose, "verbose", false, "Enable verbose logging")
	flag.IntVar(&cfg.RecomputeHz, "recompute-hz", 5, "Max auto-fit recomputations per second (0 = unlimited)")
	flag.IntVar(&cfg.TrackCapacity, "track-capacity", 1000, "Max recorded track points")
	flag.Float64Var(&startLat, "lat", 47.6062, "Initial camera latitude")
	flag.Float64Var(&startLon, "lon", -122.3321, "Initial camera longitude")
	flag.Float64Var(&startZoom, "zoom", 16, "Initial camera zoom")
	flag.Float64Var(&widthPx, "width", 1080, "Viewport width in pixels")
	flag.Float64Var(&heightPx, "height", 1920, "Viewport height in pixels")
	flag.DurationVar(&simInterval, "sim-interval", time.Second, "Simulated location emission interval")
	flag.Parse()

	cfg.Env = appconf.EnvFlagToEnvironment(env)

	if err := run(cfg, startLat, startLon, startZoom, widthPx, heightPx, simInterval); err != nil {
		fmt.Fprintf(os.Stderr, "gimbal: %v\n", err)
		os.Exit(1)
	}
}

func run(cfg appconf.Config, startLat, startLon, startZoom, widthPx, heightPx float64, simInterval time.Duration) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	start := geo.Point{Lat: startLat, Lon: startLon}
	source := NewSimSource(start, simInterval, time.Now().UnixNano())

	application, err := BuildApplication(cfg, viewport.Config{
		Center:   start,
		Zoom:     startZoom,
		WidthPx:  widthPx,
		HeightPx: heightPx,
	}, source)
	if err != nil {
		return err
	}
	logger := application.Logger

	seedDemoPOIs(application.Index, start)

	go source.Run(ctx)
	application.Follow.Start(ctx)
	defer application.Follow.Stop()

	application.Metrics.StartEngineStatsCollector(application.Follow.Stats, 10*time.Second)
	defer application.Metrics.Shutdown()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.OpsPort),
		Handler:      ops.NewServer(application).Handler(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  time.Minute,
	}

	serverErr := make(chan error, 1)
	go func() {
		logging.LogOperation(logger, "ops_server_started", "addr", server.Addr, "env", cfg.Env.String())
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logging.LogOperation(logger, "shutting_down")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("ops server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.LogError(logger, "ops server shutdown failed", err)
	}
	return nil
}

// seedDemoPOIs populates the index with a few collection sites near the
// start point so the simulated session has something to fit.
func seedDemoPOIs(index *poi.Index, start geo.Point) {
	offsets := []struct {
		id   string
		dLat float64
		dLon float64
	}{
		{"site-1", 0.0004, 0.0002},
		{"site-2", -0.0003, 0.0005},
		{"site-3", 0.0001, -0.0004},
		{"site-4", -0.0005, -0.0001},
	}
	for _, o := range offsets {
		index.Upsert(poi.Entity{
			ID:   o.id,
			Name: "Collection site " + o.id,
			Point: geo.Point{
				Lat: start.Lat + o.dLat,
				Lon: start.Lon + o.dLon,
			},
		})
	}
}
