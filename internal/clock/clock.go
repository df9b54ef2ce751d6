// Package clock provides time abstraction for testing and production use.
// It enables deterministic testing of time-dependent logic by allowing
// injection of mock clocks that return controlled time values.
package clock

import (
	"sync"
	"time"
)

// Clock provides an abstraction for time operations.
// Use RealClock in production and MockClock in tests.
type Clock interface {
	// Now returns the current time
	Now() time.Time
	// NowUnixMilli returns the current time as Unix milliseconds
	NowUnixMilli() int64
}

// RealClock implements Clock using actual system time.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// NowUnixMilli returns the current time as Unix milliseconds.
func (RealClock) NowUnixMilli() int64 {
	return time.Now().UnixMilli()
}

// MockClock implements Clock and provides a controllable, thread-safe time
// for tests. Use NewMockClock to create instances.
type MockClock struct {
	currentTime time.Time
	mu          sync.Mutex
}

// NewMockClock creates a new MockClock set to the specified time.
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{currentTime: t}
}

// Now returns the mock clock's current time.
func (m *MockClock) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime
}

// NowUnixMilli returns the mock clock's current time as Unix milliseconds.
func (m *MockClock) NowUnixMilli() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.currentTime.UnixMilli()
}

// Set changes the mock clock's current time.
func (m *MockClock) Set(t time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = t
}

// Advance moves the mock clock by the specified duration.
// Use positive durations to move forward, negative to move backward.
func (m *MockClock) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.currentTime = m.currentTime.Add(d)
}
