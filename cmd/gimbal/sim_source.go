package main

import (
	"context"
	"math/rand"
	"time"

	"gimbal.openfield.org/internal/follow"
	"gimbal.openfield.org/internal/geo"
)

// SimSource emits a slow random walk around a start point, standing in for
// a device geolocation provider. Roughly one emission in twenty is an
// invalid fix, which exercises the suppression path.
type SimSource struct {
	start    geo.Point
	interval time.Duration
	ch       chan follow.Location
	rng      *rand.Rand
}

// NewSimSource creates a simulated location provider centered on start.
func NewSimSource(start geo.Point, interval time.Duration, seed int64) *SimSource {
	return &SimSource{
		start:    start,
		interval: interval,
		ch:       make(chan follow.Location),
		rng:      rand.New(rand.NewSource(seed)),
	}
}

// Locations implements follow.LocationSource.
func (s *SimSource) Locations() <-chan follow.Location {
	return s.ch
}

// Run emits fixes until the context is canceled. The channel is closed on
// exit so the follow session shuts down with the source.
func (s *SimSource) Run(ctx context.Context) {
	defer close(s.ch)

	current := s.start
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.rng.Intn(20) == 0 {
				// Simulated GPS dropout
				s.emit(ctx, follow.Location{})
				continue
			}
			// Step up to ~5 meters in a random direction
			current.Lat += (s.rng.Float64() - 0.5) * 0.0001
			current.Lon += (s.rng.Float64() - 0.5) * 0.0001
			s.emit(ctx, follow.Location{Point: current, Valid: true})
		}
	}
}

func (s *SimSource) emit(ctx context.Context, loc follow.Location) {
	select {
	case s.ch <- loc:
	case <-ctx.Done():
	}
}
