package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPerformanceTrackerAverages(t *testing.T) {
	tracker := NewPerformanceTracker()

	assert.Equal(t, time.Duration(0), tracker.AverageLatency())
	assert.Equal(t, 1.0, tracker.SuccessRate(), "idle tracker reports healthy")
	assert.Equal(t, 0.0, tracker.CallsPerMinute())

	tracker.RecordOperation(100*time.Millisecond, true)
	tracker.RecordOperation(300*time.Millisecond, false)

	assert.Equal(t, 200*time.Millisecond, tracker.AverageLatency())
	assert.Equal(t, 0.5, tracker.SuccessRate())
}

func TestCallsPerMinuteNormalizesByCoveredSpan(t *testing.T) {
	tracker := NewPerformanceTracker()
	start := time.Now()
	current := start
	tracker.now = func() time.Time { return current }

	// A fresh burst covers less than a minute: the denominator floors at one
	// minute instead of spreading the burst over the whole window.
	tracker.RecordOperation(100*time.Millisecond, true)
	tracker.RecordOperation(100*time.Millisecond, true)
	assert.InDelta(t, 2.0, tracker.CallsPerMinute(), 1e-9)

	// Two minutes in, the same two calls average out over the covered span.
	current = start.Add(2 * time.Minute)
	assert.InDelta(t, 1.0, tracker.CallsPerMinute(), 1e-9)

	assert.Equal(t, 0.0, NewPerformanceTracker().CallsPerMinute())
}

func TestPerformanceTrackerPrunesTrailingWindow(t *testing.T) {
	tracker := NewPerformanceTracker()
	current := time.Now()
	tracker.now = func() time.Time { return current }

	tracker.RecordOperation(5*time.Second, false)

	// Six minutes later the old sample must be gone: memory stays bounded
	// across warm invocations and stale failures stop skewing the rates.
	current = current.Add(6 * time.Minute)
	tracker.RecordOperation(100*time.Millisecond, true)

	assert.Equal(t, 100*time.Millisecond, tracker.AverageLatency())
	assert.Equal(t, 1.0, tracker.SuccessRate())
}
